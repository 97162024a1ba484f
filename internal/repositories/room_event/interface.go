package room_event

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/cmnord/jep-sub001/internal/repositories/room_event Repository

import (
	"context"
)

// Repository defines the interface for the append-only room event log.
// The log is advisory-ordered by (ts, id); historical events are never
// rewritten, only appended.
type Repository interface {
	// AppendEvent durably appends an event to a room's log, assigning
	// its insertion id
	AppendEvent(ctx context.Context, input *AppendEventInput) (*AppendEventOutput, error)

	// ListEvents retrieves a room's full event log in replay order
	ListEvents(ctx context.Context, input *ListEventsInput) (*ListEventsOutput, error)

	// ListEventsAfter retrieves the events appended after a known
	// insertion id, in replay order
	ListEventsAfter(ctx context.Context, input *ListEventsAfterInput) (*ListEventsAfterOutput, error)
}
