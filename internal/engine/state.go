package engine

import (
	"fmt"
	"time"

	"github.com/cmnord/jep-sub001/internal/models"
)

// Phase represents the top-level stage of a game.
type Phase string

const (
	// PhasePreview indicates the round's board is shown but play has not started
	PhasePreview Phase = "preview_round"

	// PhaseInRound indicates the board is open and a clue may be chosen
	PhaseInRound Phase = "in_round"

	// PhaseAnswering indicates a clue is active and being played
	PhaseAnswering Phase = "answering_clue"

	// PhaseGameOver indicates all rounds have been played
	PhaseGameOver Phase = "game_over"
)

// CluePhase represents the sub-stage of the active clue.
type CluePhase string

const (
	// CluePhaseWagering indicates wagers are being collected before the clue is shown
	CluePhaseWagering CluePhase = "wagering"

	// CluePhaseRevealed indicates the clue is shown and open for buzzes or answers
	CluePhaseRevealed CluePhase = "revealed"

	// CluePhaseBuzzed indicates a player has won the buzz and must answer
	CluePhaseBuzzed CluePhase = "buzzed"

	// CluePhaseAnswerRevealed indicates the clue is resolved and its answer shown
	CluePhaseAnswerRevealed CluePhase = "answer_revealed"
)

// CellStatus represents the lifecycle of a single board cell.
type CellStatus string

const (
	// CellUnanswered indicates the clue has not been chosen yet
	CellUnanswered CellStatus = "unanswered"

	// CellRevealed indicates the clue is the active clue
	CellRevealed CellStatus = "revealed"

	// CellAnswered indicates the clue is resolved; this status never regresses
	CellAnswered CellStatus = "answered"
)

// Cell tracks the per-cell status for the current round.
type Cell struct {
	// Status is the cell's lifecycle stage
	Status CellStatus `json:"status"`

	// BuzzedBy is the user currently holding the buzz, if any
	BuzzedBy string `json:"buzzedBy,omitempty"`

	// Outcomes maps user ID to whether their answer was correct,
	// frozen once the cell is answered
	Outcomes map[string]bool `json:"outcomes,omitempty"`
}

// ActiveClue tracks the clue currently in play. At most one clue is
// active per round.
type ActiveClue struct {
	// I is the category index of the clue
	I int `json:"i"`

	// J is the clue index within the category
	J int `json:"j"`

	// Chooser is the player who selected the clue
	Chooser string `json:"chooser"`

	// Phase is the clue's sub-stage
	Phase CluePhase `json:"phase"`

	// Buzzes maps user ID to buzz delay in milliseconds since the clue
	// became answerable; the smallest delay wins
	Buzzes map[string]int64 `json:"buzzes,omitempty"`

	// LockedOut holds users who answered incorrectly and may not buzz again
	LockedOut map[string]bool `json:"lockedOut,omitempty"`
}

// Clock is the shared game timer. AccumulatedMs only advances while
// Running; toggling folds the elapsed delta in at toggle time.
type Clock struct {
	// Running indicates the clock is counting
	Running bool `json:"running"`

	// AccumulatedMs is the total milliseconds accumulated across pauses
	AccumulatedMs int64 `json:"accumulatedMs"`

	// LastResumedAt is when the clock last started running
	LastResumedAt *time.Time `json:"lastResumedAt,omitempty"`
}

// ElapsedMs reports the clock reading at the given instant without
// mutating the stored accumulation.
func (c Clock) ElapsedMs(at time.Time) int64 {
	if c.Running && c.LastResumedAt != nil {
		return c.AccumulatedMs + at.Sub(*c.LastResumedAt).Milliseconds()
	}
	return c.AccumulatedMs
}

// Rules holds the game-design constants the reducer consults.
type Rules struct {
	// WagerFloor is the minimum wager ceiling: a player may wager up to
	// max(score, WagerFloor) on a wagerable clue
	WagerFloor int `json:"wagerFloor"`
}

// DefaultWagerFloor is the wager ceiling for players with low or
// negative scores.
const DefaultWagerFloor = 1000

// State is the full shared game state. It is only ever produced by
// StateFromGame or by Reduce; every reduction returns either the prior
// pointer unchanged or a fresh deep copy, so two states may be compared
// for equality and historical states stay valid.
type State struct {
	// Phase is the top-level game stage
	Phase Phase `json:"phase"`

	// Round is the zero-based index into the game's boards
	Round int `json:"round"`

	// Game is the read-only board content
	Game *models.Game `json:"game"`

	// Players maps user ID to player, including players who left
	Players map[string]*models.Player `json:"players"`

	// BoardControl is the user privileged to choose the next clue,
	// empty when no player holds control
	BoardControl string `json:"boardControl"`

	// Cells is the current round's cell matrix, indexed [category][clue]
	Cells [][]Cell `json:"cells"`

	// Answers maps "{round},{i},{j}" to each user's submitted answer text
	Answers map[string]map[string]string `json:"answers"`

	// Wagers maps "{round},{i},{j}" to each user's wager, frozen once
	// the clue is answered
	Wagers map[string]map[string]int `json:"wagers"`

	// ActiveClue is the clue in play, nil outside PhaseAnswering
	ActiveClue *ActiveClue `json:"activeClue,omitempty"`

	// Clock is the shared game timer
	Clock Clock `json:"clock"`

	// Rules holds the configured game constants
	Rules Rules `json:"rules"`
}

// StateFromGame builds the initial state for a game: round zero in
// preview, no players, clock stopped.
func StateFromGame(game *models.Game, rules Rules) *State {
	if rules.WagerFloor <= 0 {
		rules.WagerFloor = DefaultWagerFloor
	}
	return &State{
		Phase:   PhasePreview,
		Round:   0,
		Game:    game,
		Players: make(map[string]*models.Player),
		Answers: make(map[string]map[string]string),
		Wagers:  make(map[string]map[string]int),
		Rules:   rules,
	}
}

// CellKey is the map key for per-cell wager and answer records.
func CellKey(round, i, j int) string {
	return fmt.Sprintf("%d,%d,%d", round, i, j)
}

// Board returns the current round's board, or nil if the round index is
// out of range.
func (s *State) Board() *models.Board {
	if s.Game == nil || s.Round < 0 || s.Round >= len(s.Game.Boards) {
		return nil
	}
	return &s.Game.Boards[s.Round]
}

// boardDone reports whether every cell of the current round is answered.
func (s *State) boardDone() bool {
	board := s.Board()
	if board == nil {
		return false
	}

	answered := 0
	for i := range s.Cells {
		for j := range s.Cells[i] {
			if s.Cells[i][j].Status == CellAnswered {
				answered++
			}
		}
	}
	return answered == board.NumCells()
}

// presentPlayers returns the players who have not left.
func (s *State) presentPlayers() []*models.Player {
	var present []*models.Player
	for _, p := range s.Players {
		if !p.Left {
			present = append(present, p)
		}
	}
	return present
}

// firstJoinedPresent returns the present player with the lowest join
// order, or "" if the room is empty. This is the deterministic rule for
// reassigning board control when its holder leaves.
func (s *State) firstJoinedPresent() string {
	best := ""
	bestOrder := -1
	for _, p := range s.presentPlayers() {
		if best == "" || p.JoinOrder < bestOrder {
			best = p.UserID
			bestOrder = p.JoinOrder
		}
	}
	return best
}

// clone returns a deep copy of the state. The game content is shared;
// it is immutable by contract.
func (s *State) clone() *State {
	next := &State{
		Phase:        s.Phase,
		Round:        s.Round,
		Game:         s.Game,
		BoardControl: s.BoardControl,
		Clock:        s.Clock,
		Rules:        s.Rules,
	}

	if s.Clock.LastResumedAt != nil {
		t := *s.Clock.LastResumedAt
		next.Clock.LastResumedAt = &t
	}

	next.Players = make(map[string]*models.Player, len(s.Players))
	for id, p := range s.Players {
		cp := *p
		next.Players[id] = &cp
	}

	if s.Cells != nil {
		next.Cells = make([][]Cell, len(s.Cells))
		for i := range s.Cells {
			next.Cells[i] = make([]Cell, len(s.Cells[i]))
			for j := range s.Cells[i] {
				cell := s.Cells[i][j]
				cell.Outcomes = cloneBoolMap(s.Cells[i][j].Outcomes)
				next.Cells[i][j] = cell
			}
		}
	}

	next.Answers = make(map[string]map[string]string, len(s.Answers))
	for key, byUser := range s.Answers {
		inner := make(map[string]string, len(byUser))
		for id, answer := range byUser {
			inner[id] = answer
		}
		next.Answers[key] = inner
	}

	next.Wagers = make(map[string]map[string]int, len(s.Wagers))
	for key, byUser := range s.Wagers {
		inner := make(map[string]int, len(byUser))
		for id, wager := range byUser {
			inner[id] = wager
		}
		next.Wagers[key] = inner
	}

	if s.ActiveClue != nil {
		active := *s.ActiveClue
		active.Buzzes = cloneInt64Map(s.ActiveClue.Buzzes)
		active.LockedOut = cloneBoolMap(s.ActiveClue.LockedOut)
		next.ActiveClue = &active
	}

	return next
}

func cloneBoolMap(m map[string]bool) map[string]bool {
	if m == nil {
		return nil
	}
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneInt64Map(m map[string]int64) map[string]int64 {
	if m == nil {
		return nil
	}
	out := make(map[string]int64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
