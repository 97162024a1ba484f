package room_event

import (
	"context"
	"errors"
	"sync"

	"github.com/cmnord/jep-sub001/internal/models"
)

// memoryRepository implements the Repository interface in process
// memory. Solo games use it so the engine sees the exact same
// append-then-replay contract without a server round trip.
type memoryRepository struct {
	mu   sync.Mutex
	logs map[string][]*models.RoomEvent
	seqs map[string]int64
}

// NewMemory creates an in-memory room event repository.
func NewMemory() *memoryRepository {
	return &memoryRepository{
		logs: make(map[string][]*models.RoomEvent),
		seqs: make(map[string]int64),
	}
}

// AppendEvent appends an event to the room's in-memory log.
func (r *memoryRepository) AppendEvent(ctx context.Context, input *AppendEventInput) (*AppendEventOutput, error) {
	if input == nil || input.Event == nil {
		return nil, errors.New("input and event cannot be nil")
	}
	if input.Event.RoomID == "" {
		return nil, errors.New("event room ID cannot be empty")
	}
	if input.Event.Type == "" {
		return nil, errors.New("event type cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *input.Event
	r.seqs[stored.RoomID]++
	stored.ID = r.seqs[stored.RoomID]
	r.logs[stored.RoomID] = append(r.logs[stored.RoomID], &stored)

	return &AppendEventOutput{Event: &stored}, nil
}

// ListEvents retrieves a room's full event log in replay order.
func (r *memoryRepository) ListEvents(ctx context.Context, input *ListEventsInput) (*ListEventsOutput, error) {
	if input == nil || input.RoomID == "" {
		return nil, errors.New("input and room ID cannot be empty")
	}

	return &ListEventsOutput{Events: r.snapshot(input.RoomID, 0)}, nil
}

// ListEventsAfter retrieves events with insertion id greater than
// AfterID, in replay order.
func (r *memoryRepository) ListEventsAfter(ctx context.Context, input *ListEventsAfterInput) (*ListEventsAfterOutput, error) {
	if input == nil || input.RoomID == "" {
		return nil, errors.New("input and room ID cannot be empty")
	}

	return &ListEventsAfterOutput{Events: r.snapshot(input.RoomID, input.AfterID)}, nil
}

func (r *memoryRepository) snapshot(roomID string, afterID int64) []*models.RoomEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	var events []*models.RoomEvent
	for _, ev := range r.logs[roomID] {
		if ev.ID > afterID {
			copied := *ev
			events = append(events, &copied)
		}
	}
	sortEvents(events)
	return events
}
