package room

import (
	"context"
	"errors"
	"sync"

	"github.com/cmnord/jep-sub001/internal/models"
)

// memoryRepository implements the Repository interface in process
// memory, backing solo games.
type memoryRepository struct {
	mu     sync.Mutex
	rooms  map[string]*models.Room
	byName map[string]string
}

// NewMemory creates an in-memory room repository.
func NewMemory() *memoryRepository {
	return &memoryRepository{
		rooms:  make(map[string]*models.Room),
		byName: make(map[string]string),
	}
}

// SaveRoom persists a room in memory
func (r *memoryRepository) SaveRoom(ctx context.Context, input *SaveRoomInput) error {
	if input == nil || input.Room == nil {
		return errors.New("input and room cannot be nil")
	}
	if input.Room.ID == "" {
		return errors.New("room ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *input.Room
	r.rooms[stored.ID] = &stored
	if stored.Name != "" {
		r.byName[stored.Name] = stored.ID
	}

	return nil
}

// GetRoom retrieves a room by ID
func (r *memoryRepository) GetRoom(ctx context.Context, input *GetRoomInput) (*models.Room, error) {
	if input == nil || input.RoomID == "" {
		return nil, errors.New("input and room ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.rooms[input.RoomID]
	if !ok {
		return nil, ErrRoomNotFound
	}

	room := *stored
	return &room, nil
}

// GetRoomByName retrieves a room by its join name
func (r *memoryRepository) GetRoomByName(ctx context.Context, input *GetRoomByNameInput) (*models.Room, error) {
	if input == nil || input.Name == "" {
		return nil, errors.New("input and room name cannot be empty")
	}

	r.mu.Lock()
	roomID, ok := r.byName[input.Name]
	r.mu.Unlock()

	if !ok {
		return nil, ErrRoomNotFound
	}

	return r.GetRoom(ctx, &GetRoomInput{RoomID: roomID})
}
