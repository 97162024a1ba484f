package game

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/cmnord/jep-sub001/internal/models"
)

// memoryRepository implements the Repository interface in process
// memory, backing solo games.
type memoryRepository struct {
	mu    sync.Mutex
	games map[string]*models.Game
}

// NewMemory creates an in-memory game repository.
func NewMemory() *memoryRepository {
	return &memoryRepository{
		games: make(map[string]*models.Game),
	}
}

// SaveGame persists a game's board content in memory
func (r *memoryRepository) SaveGame(ctx context.Context, input *SaveGameInput) error {
	if input == nil || input.Game == nil {
		return errors.New("input and game cannot be nil")
	}
	if input.Game.ID == "" {
		return errors.New("game ID cannot be empty")
	}
	if len(input.Game.Boards) == 0 {
		return errors.New("game must have at least one board")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *input.Game
	r.games[stored.ID] = &stored

	return nil
}

// GetGame retrieves a game's board content by ID
func (r *memoryRepository) GetGame(ctx context.Context, input *GetGameInput) (*models.Game, error) {
	if input == nil || input.GameID == "" {
		return nil, errors.New("input and game ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.games[input.GameID]
	if !ok {
		return nil, ErrGameNotFound
	}

	game := *stored
	return &game, nil
}

// ListGames retrieves the IDs and titles of all stored games
func (r *memoryRepository) ListGames(ctx context.Context, input *ListGamesInput) (*ListGamesOutput, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	output := &ListGamesOutput{}
	for _, game := range r.games {
		output.Games = append(output.Games, &GameSummary{
			ID:    game.ID,
			Title: game.Title,
		})
	}
	sort.Slice(output.Games, func(a, b int) bool {
		return output.Games[a].ID < output.Games[b].ID
	})

	return output, nil
}
