package engine

import (
	"time"
)

// Action is one member of the tagged union the reducer dispatches on.
// Every action carries TS, the timestamp the event was stamped with
// when it entered the log; the reducer never reads the wall clock.
type Action interface {
	actionType() string
}

// Join adds a player to the room, or marks a returning player present
// again. The first player to join receives board control.
type Join struct {
	TS     time.Time
	UserID string
	Name   string
}

// ChangeName updates a player's display name.
type ChangeName struct {
	TS     time.Time
	UserID string
	Name   string
}

// Kick marks a player as having left; their score history is retained.
type Kick struct {
	TS     time.Time
	UserID string
}

// TransferPlayer rebinds all state keyed by OldUserID to NewUserID,
// used when an anonymous guest authenticates mid-game.
type TransferPlayer struct {
	TS        time.Time
	OldUserID string
	NewUserID string
}

// StartRound opens the given round's board for play.
type StartRound struct {
	TS     time.Time
	Round  int
	UserID string
}

// ChooseClue activates the clue at (I, J). Only the player holding
// board control may choose.
type ChooseClue struct {
	TS     time.Time
	I      int
	J      int
	UserID string
}

// Buzz registers a buzz on the active clue. DeltaMs is the elapsed
// time since the clue became answerable; the smallest delay wins.
type Buzz struct {
	TS      time.Time
	I       int
	J       int
	UserID  string
	DeltaMs int64
}

// Answer records a player's answer for the active clue along with its
// correctness judgment.
type Answer struct {
	TS      time.Time
	I       int
	J       int
	UserID  string
	Answer  string
	Correct bool
}

// SetClueWager records a player's wager during the wagering sub-phase.
type SetClueWager struct {
	TS     time.Time
	I      int
	J      int
	UserID string
	Wager  int
}

// NextClue dismisses the active clue and returns to the board, or
// advances to the next round once the board is exhausted.
type NextClue struct {
	TS     time.Time
	I      int
	J      int
	UserID string
}

// ToggleClock flips the shared game timer, folding elapsed time into
// its accumulation at the action's timestamp.
type ToggleClock struct {
	TS time.Time
}

// Restore replaces the in-memory state wholesale, bypassing the
// incremental transition rules. Used to resume a persisted solo game.
type Restore struct {
	TS    time.Time
	State *State
}

func (*Join) actionType() string           { return "join" }
func (*ChangeName) actionType() string     { return "change_name" }
func (*Kick) actionType() string           { return "kick" }
func (*TransferPlayer) actionType() string { return "transfer_player" }
func (*StartRound) actionType() string     { return "start_round" }
func (*ChooseClue) actionType() string     { return "choose_clue" }
func (*Buzz) actionType() string           { return "buzz" }
func (*Answer) actionType() string         { return "answer" }
func (*SetClueWager) actionType() string   { return "set_clue_wager" }
func (*NextClue) actionType() string       { return "next_clue" }
func (*ToggleClock) actionType() string    { return "toggle_clock" }
func (*Restore) actionType() string        { return "restore" }
