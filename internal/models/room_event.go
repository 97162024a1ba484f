package models

import (
	"encoding/json"
	"time"
)

// RoomEvent is one persisted entry in a room's append-only event log.
// Events are totally ordered by TS with ID as the insertion tiebreak;
// the log is never compacted or rewritten.
type RoomEvent struct {
	// ID is the per-room monotonically increasing insertion id
	ID int64 `json:"id"`

	// RoomID identifies the room the event belongs to
	RoomID string `json:"roomId"`

	// Type is the wire name of the action, e.g. "buzz" or "join"
	Type string `json:"type"`

	// Payload is the action-specific JSON body
	Payload json.RawMessage `json:"payload"`

	// TS is the server-assigned timestamp used for ordering and for
	// buzz timing
	TS time.Time `json:"ts"`
}
