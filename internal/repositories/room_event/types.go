package room_event

import "github.com/cmnord/jep-sub001/internal/models"

type AppendEventInput struct {
	Event *models.RoomEvent
}

type AppendEventOutput struct {
	Event *models.RoomEvent
}

type ListEventsInput struct {
	RoomID string
}

type ListEventsOutput struct {
	Events []*models.RoomEvent
}

type ListEventsAfterInput struct {
	RoomID  string
	AfterID int64
}

type ListEventsAfterOutput struct {
	Events []*models.RoomEvent
}
