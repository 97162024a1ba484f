package room

// RoomError is a custom error type for room service errors
type RoomError string

// Error implements the error interface
func (e RoomError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrRoomNotFound      RoomError = "room not found"
	ErrRoomAlreadyExists RoomError = "room already exists with this name"
	ErrGameNotFound      RoomError = "game not found"
	ErrInvalidGame       RoomError = "game must have at least one board"
	ErrBadEvent          RoomError = "room event could not be translated"
	ErrNilConfig         RoomError = "config cannot be nil"
	ErrNilRoomRepo       RoomError = "room repository cannot be nil"
	ErrNilGameRepo       RoomError = "game repository cannot be nil"
	ErrNilEventRepo      RoomError = "room event repository cannot be nil"
	ErrNilClock          RoomError = "clock cannot be nil"
	ErrNilUUIDGenerator  RoomError = "UUID generator cannot be nil"
)
