package models

import (
	"time"
)

// Game is a complete set of trivia boards, loaded once and treated as
// read-only by the engine. The last board conventionally holds the single
// final clue.
type Game struct {
	// ID is the unique identifier for the game content
	ID string `json:"id"`

	// Title is the display name of the game
	Title string `json:"title"`

	// Boards holds one board per round, in play order
	Boards []Board `json:"boards"`

	// CreatedAt is when the game content was stored
	CreatedAt time.Time `json:"createdAt"`
}

// Board is one round's grid of categories and clues.
type Board struct {
	// Categories are the columns of the board, in display order
	Categories []Category `json:"categories"`
}

// Category is a named, ordered list of clues.
type Category struct {
	// Name is the category title shown at the top of the column
	Name string `json:"name"`

	// Clues are ordered by ascending value
	Clues []Clue `json:"clues"`
}

// Clue is a single cell of the board.
type Clue struct {
	// Text is the prompt read to the players
	Text string `json:"text"`

	// Answer is the expected response
	Answer string `json:"answer"`

	// Value is the face value of the clue in points
	Value int `json:"value"`

	// IsDailyDouble marks a clue where the chooser wagers before answering
	IsDailyDouble bool `json:"isDailyDouble"`

	// IsWagerable marks a clue answered with wagers instead of buzzing
	IsWagerable bool `json:"isWagerable"`

	// IsFinal marks the single last clue of the game, answered by all
	// players simultaneously with individual wagers
	IsFinal bool `json:"isFinal"`
}

// NumCells returns the total number of clue cells on the board.
func (b *Board) NumCells() int {
	n := 0
	for i := range b.Categories {
		n += len(b.Categories[i].Clues)
	}
	return n
}

// Clue returns the clue at category i, row j, or false if the
// coordinates are out of range.
func (b *Board) Clue(i, j int) (Clue, bool) {
	if i < 0 || i >= len(b.Categories) {
		return Clue{}, false
	}
	if j < 0 || j >= len(b.Categories[i].Clues) {
		return Clue{}, false
	}
	return b.Categories[i].Clues[j], true
}
