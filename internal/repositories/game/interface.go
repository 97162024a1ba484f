package game

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/cmnord/jep-sub001/internal/repositories/game Repository

import (
	"context"

	"github.com/cmnord/jep-sub001/internal/models"
)

// Repository defines the interface for game content persistence.
// Boards are immutable once stored; the engine only ever reads them.
type Repository interface {
	// SaveGame persists a game's board content
	SaveGame(ctx context.Context, input *SaveGameInput) error

	// GetGame retrieves a game's board content by ID
	GetGame(ctx context.Context, input *GetGameInput) (*models.Game, error)

	// ListGames retrieves the IDs and titles of all stored games
	ListGames(ctx context.Context, input *ListGamesInput) (*ListGamesOutput, error)
}
