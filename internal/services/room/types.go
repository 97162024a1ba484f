package room

import (
	"encoding/json"

	"github.com/cmnord/jep-sub001/internal/common/clock"
	"github.com/cmnord/jep-sub001/internal/common/uuid"
	"github.com/cmnord/jep-sub001/internal/engine"
	"github.com/cmnord/jep-sub001/internal/models"
	gameRepo "github.com/cmnord/jep-sub001/internal/repositories/game"
	roomRepo "github.com/cmnord/jep-sub001/internal/repositories/room"
	eventRepo "github.com/cmnord/jep-sub001/internal/repositories/room_event"
)

// Config holds configuration and dependencies for the room service
type Config struct {
	// RoomRepo persists room metadata
	RoomRepo roomRepo.Repository

	// GameRepo persists board content
	GameRepo gameRepo.Repository

	// EventRepo persists the append-only room event logs
	EventRepo eventRepo.Repository

	// Clock stamps dispatched events
	Clock clock.Clock

	// UUIDGenerator mints room and game IDs
	UUIDGenerator uuid.UUID

	// Rules holds the engine's game-design constants
	Rules engine.Rules
}

// SoloConfig configures a local game with no server round trips.
type SoloConfig struct {
	// Game is the board content to play
	Game *models.Game

	// Rules holds the engine's game-design constants
	Rules engine.Rules

	// Clock stamps dispatched events; defaults to the system clock
	Clock clock.Clock

	// UUIDGenerator mints ids; defaults to random UUIDs
	UUIDGenerator uuid.UUID
}

type CreateGameInput struct {
	Title  string
	Boards []models.Board
}

type CreateGameOutput struct {
	GameID string
}

type GetGameInput struct {
	GameID string
}

type GetGameOutput struct {
	Game *models.Game
}

type ListGamesInput struct {
}

type ListGamesOutput struct {
	Games []*gameRepo.GameSummary
}

type CreateRoomInput struct {
	Name       string
	GameID     string
	HostUserID string
}

type CreateRoomOutput struct {
	Room *models.Room
}

type GetRoomByNameInput struct {
	Name string
}

type GetRoomByNameOutput struct {
	Room *models.Room
}

type GetRoomStateInput struct {
	RoomID string
}

type GetRoomStateOutput struct {
	State *engine.State

	// LastEventID is the insertion id of the last event folded into
	// State; clients pass it to CatchUp after a disconnect
	LastEventID int64
}

type DispatchInput struct {
	RoomID string

	// Type is the wire name of the action, e.g. "buzz"
	Type string

	// Payload is the action-specific JSON body
	Payload json.RawMessage
}

type DispatchOutput struct {
	State *engine.State
	Event *models.RoomEvent
}

type CatchUpInput struct {
	RoomID  string
	AfterID int64
}

type CatchUpOutput struct {
	Events []*models.RoomEvent
}
