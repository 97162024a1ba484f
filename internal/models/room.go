package models

import (
	"time"
)

// Room is a persistent multiplayer session identified by an id/name
// pair and backed by an append-only event log.
type Room struct {
	// ID is the unique identifier for the room
	ID string `json:"id"`

	// Name is the human-readable join code for the room
	Name string `json:"name"`

	// GameID identifies the board content being played
	GameID string `json:"gameId"`

	// HostUserID is the player who created the room
	HostUserID string `json:"hostUserId"`

	// CreatedAt is when the room was created
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is when the room was last written
	UpdatedAt time.Time `json:"updatedAt"`
}
