package room

import "github.com/cmnord/jep-sub001/internal/models"

type SaveRoomInput struct {
	Room *models.Room
}

type GetRoomInput struct {
	RoomID string
}

type GetRoomByNameInput struct {
	Name string
}
