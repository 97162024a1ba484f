package game

import "github.com/cmnord/jep-sub001/internal/models"

type SaveGameInput struct {
	Game *models.Game
}

type GetGameInput struct {
	GameID string
}

type ListGamesInput struct {
}

// GameSummary is a listing entry: enough to pick a game without
// loading its boards.
type GameSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type ListGamesOutput struct {
	Games []*GameSummary
}
