package room

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/cmnord/jep-sub001/internal/repositories/room Repository

import (
	"context"

	"github.com/cmnord/jep-sub001/internal/models"
)

// Repository defines the interface for room metadata persistence
type Repository interface {
	// SaveRoom persists a room
	SaveRoom(ctx context.Context, input *SaveRoomInput) error

	// GetRoom retrieves a room by ID
	GetRoom(ctx context.Context, input *GetRoomInput) (*models.Room, error)

	// GetRoomByName retrieves a room by its join name
	GetRoomByName(ctx context.Context, input *GetRoomByNameInput) (*models.Room, error)
}
