package models

// Player represents one participant in a room. Players are never
// deleted; a kicked player is marked Left so their score history
// survives for the final standings.
type Player struct {
	// UserID is the opaque identity the session layer assigned
	UserID string `json:"userId"`

	// Name is the display name, mutable via change_name
	Name string `json:"name"`

	// Score is the player's current point total, may be negative
	Score int `json:"score"`

	// JoinOrder is the zero-based order in which the player joined,
	// used to reassign board control deterministically
	JoinOrder int `json:"joinOrder"`

	// Left indicates the player was kicked or left the room
	Left bool `json:"left"`
}
