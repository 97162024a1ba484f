package engine

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cmnord/jep-sub001/internal/models"
)

// Translation errors. Unlike the reducer, which silently ignores
// invalid actions, an event that cannot be translated indicates
// corrupted persisted data or a client/server version skew and must
// not be absorbed into game state.
var (
	// ErrUnknownEventType is returned for an unrecognized event type
	ErrUnknownEventType = errors.New("unknown room event type")

	// ErrBadEventPayload is returned when an event payload is missing
	// required fields or is not valid JSON
	ErrBadEventPayload = errors.New("malformed room event payload")
)

// Wire payload shapes, per event type.
type (
	joinPayload struct {
		UserID string `json:"userId"`
		Name   string `json:"name"`
	}

	changeNamePayload struct {
		UserID string `json:"userId"`
		Name   string `json:"name"`
	}

	kickPayload struct {
		UserID string `json:"userId"`
	}

	transferPlayerPayload struct {
		OldUserID string `json:"oldUserId"`
		NewUserID string `json:"newUserId"`
	}

	startRoundPayload struct {
		Round  *int   `json:"round"`
		UserID string `json:"userId"`
	}

	chooseCluePayload struct {
		I      *int   `json:"i"`
		J      *int   `json:"j"`
		UserID string `json:"userId"`
	}

	buzzPayload struct {
		I       *int   `json:"i"`
		J       *int   `json:"j"`
		UserID  string `json:"userId"`
		DeltaMs *int64 `json:"deltaMs"`
	}

	answerPayload struct {
		I      *int   `json:"i"`
		J      *int   `json:"j"`
		UserID string `json:"userId"`
		Answer string `json:"answer"`
		Result *bool  `json:"result"`
	}

	setClueWagerPayload struct {
		I      *int   `json:"i"`
		J      *int   `json:"j"`
		UserID string `json:"userId"`
		Wager  *int   `json:"wager"`
	}

	nextCluePayload struct {
		I      *int   `json:"i"`
		J      *int   `json:"j"`
		UserID string `json:"userId"`
	}
)

// ActionFromEvent translates one persisted room event into the action
// shape the reducer understands.
func ActionFromEvent(ev *models.RoomEvent) (Action, error) {
	if ev == nil {
		return nil, fmt.Errorf("%w: nil event", ErrBadEventPayload)
	}

	switch ev.Type {
	case "join":
		var p joinPayload
		if err := decodePayload(ev, &p); err != nil {
			return nil, err
		}
		if p.UserID == "" {
			return nil, payloadErr(ev, "missing userId")
		}
		return &Join{TS: ev.TS, UserID: p.UserID, Name: p.Name}, nil

	case "change_name":
		var p changeNamePayload
		if err := decodePayload(ev, &p); err != nil {
			return nil, err
		}
		if p.UserID == "" {
			return nil, payloadErr(ev, "missing userId")
		}
		return &ChangeName{TS: ev.TS, UserID: p.UserID, Name: p.Name}, nil

	case "kick":
		var p kickPayload
		if err := decodePayload(ev, &p); err != nil {
			return nil, err
		}
		if p.UserID == "" {
			return nil, payloadErr(ev, "missing userId")
		}
		return &Kick{TS: ev.TS, UserID: p.UserID}, nil

	case "transfer_player":
		var p transferPlayerPayload
		if err := decodePayload(ev, &p); err != nil {
			return nil, err
		}
		if p.OldUserID == "" || p.NewUserID == "" {
			return nil, payloadErr(ev, "missing oldUserId or newUserId")
		}
		return &TransferPlayer{TS: ev.TS, OldUserID: p.OldUserID, NewUserID: p.NewUserID}, nil

	case "start_round":
		var p startRoundPayload
		if err := decodePayload(ev, &p); err != nil {
			return nil, err
		}
		if p.Round == nil || p.UserID == "" {
			return nil, payloadErr(ev, "missing round or userId")
		}
		return &StartRound{TS: ev.TS, Round: *p.Round, UserID: p.UserID}, nil

	case "choose_clue":
		var p chooseCluePayload
		if err := decodePayload(ev, &p); err != nil {
			return nil, err
		}
		if p.I == nil || p.J == nil || p.UserID == "" {
			return nil, payloadErr(ev, "missing i, j, or userId")
		}
		return &ChooseClue{TS: ev.TS, I: *p.I, J: *p.J, UserID: p.UserID}, nil

	case "buzz":
		var p buzzPayload
		if err := decodePayload(ev, &p); err != nil {
			return nil, err
		}
		if p.I == nil || p.J == nil || p.UserID == "" || p.DeltaMs == nil {
			return nil, payloadErr(ev, "missing i, j, userId, or deltaMs")
		}
		return &Buzz{TS: ev.TS, I: *p.I, J: *p.J, UserID: p.UserID, DeltaMs: *p.DeltaMs}, nil

	case "answer":
		var p answerPayload
		if err := decodePayload(ev, &p); err != nil {
			return nil, err
		}
		if p.I == nil || p.J == nil || p.UserID == "" || p.Result == nil {
			return nil, payloadErr(ev, "missing i, j, userId, or result")
		}
		return &Answer{TS: ev.TS, I: *p.I, J: *p.J, UserID: p.UserID, Answer: p.Answer, Correct: *p.Result}, nil

	case "set_clue_wager":
		var p setClueWagerPayload
		if err := decodePayload(ev, &p); err != nil {
			return nil, err
		}
		if p.I == nil || p.J == nil || p.UserID == "" || p.Wager == nil {
			return nil, payloadErr(ev, "missing i, j, userId, or wager")
		}
		return &SetClueWager{TS: ev.TS, I: *p.I, J: *p.J, UserID: p.UserID, Wager: *p.Wager}, nil

	case "next_clue":
		var p nextCluePayload
		if err := decodePayload(ev, &p); err != nil {
			return nil, err
		}
		if p.I == nil || p.J == nil {
			return nil, payloadErr(ev, "missing i or j")
		}
		return &NextClue{TS: ev.TS, I: *p.I, J: *p.J, UserID: p.UserID}, nil

	case "toggle_clock":
		return &ToggleClock{TS: ev.TS}, nil

	case "restore":
		var restored State
		if err := decodePayload(ev, &restored); err != nil {
			return nil, err
		}
		return &Restore{TS: ev.TS, State: &restored}, nil

	default:
		return nil, fmt.Errorf("%w: %q (event %d)", ErrUnknownEventType, ev.Type, ev.ID)
	}
}

// ApplyRoomEvents folds an ordered sequence of persisted events into a
// state. It is a pure left-fold: the same ordered sequence always
// produces the same final state, which is what lets reconnecting
// clients converge by replaying the log.
func ApplyRoomEvents(initial *State, events []*models.RoomEvent) (*State, error) {
	state := initial
	for _, ev := range events {
		action, err := ActionFromEvent(ev)
		if err != nil {
			return nil, err
		}
		state = Reduce(state, action)
	}
	return state, nil
}

func decodePayload(ev *models.RoomEvent, into any) error {
	if len(ev.Payload) == 0 {
		return payloadErr(ev, "empty payload")
	}
	if err := json.Unmarshal(ev.Payload, into); err != nil {
		return fmt.Errorf("%w: event %d (%s): %v", ErrBadEventPayload, ev.ID, ev.Type, err)
	}
	return nil
}

func payloadErr(ev *models.RoomEvent, detail string) error {
	return fmt.Errorf("%w: event %d (%s): %s", ErrBadEventPayload, ev.ID, ev.Type, detail)
}
