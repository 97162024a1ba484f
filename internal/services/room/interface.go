package room

import "context"

// Service defines the interface for room operations. It is the single
// dispatch surface for both solo and multiplayer play: the engine's
// reducer is only ever invoked through Dispatch or the replay in
// GetRoomState, so every client converges on the same state.
type Service interface {
	// CreateGame stores a new set of boards as playable game content
	CreateGame(ctx context.Context, input *CreateGameInput) (*CreateGameOutput, error)

	// GetGame retrieves stored game content
	GetGame(ctx context.Context, input *GetGameInput) (*GetGameOutput, error)

	// ListGames lists stored game content
	ListGames(ctx context.Context, input *ListGamesInput) (*ListGamesOutput, error)

	// CreateRoom creates a new room playing the given game
	CreateRoom(ctx context.Context, input *CreateRoomInput) (*CreateRoomOutput, error)

	// GetRoomByName looks up a room by its join name
	GetRoomByName(ctx context.Context, input *GetRoomByNameInput) (*GetRoomByNameOutput, error)

	// GetRoomState derives the room's current state by replaying its
	// event log
	GetRoomState(ctx context.Context, input *GetRoomStateInput) (*GetRoomStateOutput, error)

	// Dispatch timestamps an incoming action, appends it to the room's
	// event log, and folds it into the latest known state
	Dispatch(ctx context.Context, input *DispatchInput) (*DispatchOutput, error)

	// CatchUp returns the events appended after a client-known
	// insertion id, for reconnecting clients
	CatchUp(ctx context.Context, input *CatchUpInput) (*CatchUpOutput, error)
}
