package game

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/cmnord/jep-sub001/internal/models"
)

type RedisRepositoryTestSuite struct {
	suite.Suite
	mr      *miniredis.Miniredis
	client  *redis.Client
	repo    Repository
	testNow time.Time
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	// Create a new miniredis server for each test
	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr

	// Create a Redis client connected to the miniredis server
	s.client = redis.NewClient(&redis.Options{
		Addr: s.mr.Addr(),
	})

	// Create the repository
	repo, err := NewRedis(&Config{
		RedisClient: s.client,
	})
	s.Require().NoError(err)
	s.repo = repo

	s.testNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	s.client.Close()
	s.mr.Close()
}

func TestRedisRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}

func (s *RedisRepositoryTestSuite) newGame(id, title string, createdAt time.Time) *models.Game {
	return &models.Game{
		ID:    id,
		Title: title,
		Boards: []models.Board{
			{
				Categories: []models.Category{
					{
						Name: "History",
						Clues: []models.Clue{
							{Text: "First president", Answer: "Washington", Value: 200},
						},
					},
				},
			},
		},
		CreatedAt: createdAt,
	}
}

func (s *RedisRepositoryTestSuite) TestSaveAndGetGame() {
	game := s.newGame("test-game-id", "Pub Quiz 1", s.testNow)

	err := s.repo.SaveGame(context.Background(), &SaveGameInput{Game: game})
	s.Require().NoError(err)

	got, err := s.repo.GetGame(context.Background(), &GetGameInput{GameID: "test-game-id"})
	s.Require().NoError(err)
	s.Equal(game.ID, got.ID)
	s.Equal(game.Title, got.Title)
	s.Require().Len(got.Boards, 1)
	s.Equal("History", got.Boards[0].Categories[0].Name)
	s.Equal("Washington", got.Boards[0].Categories[0].Clues[0].Answer)
}

func (s *RedisRepositoryTestSuite) TestGetGameNotFound() {
	_, err := s.repo.GetGame(context.Background(), &GetGameInput{GameID: "missing"})
	s.ErrorIs(err, ErrGameNotFound)
}

func (s *RedisRepositoryTestSuite) TestListGamesOrderedByCreation() {
	second := s.newGame("game-b", "Second", s.testNow.Add(time.Hour))
	first := s.newGame("game-a", "First", s.testNow)

	s.Require().NoError(s.repo.SaveGame(context.Background(), &SaveGameInput{Game: second}))
	s.Require().NoError(s.repo.SaveGame(context.Background(), &SaveGameInput{Game: first}))

	out, err := s.repo.ListGames(context.Background(), &ListGamesInput{})
	s.Require().NoError(err)
	s.Require().Len(out.Games, 2)
	s.Equal("game-a", out.Games[0].ID)
	s.Equal("First", out.Games[0].Title)
	s.Equal("game-b", out.Games[1].ID)
	s.Equal("Second", out.Games[1].Title)
}

func (s *RedisRepositoryTestSuite) TestListGamesEmpty() {
	out, err := s.repo.ListGames(context.Background(), &ListGamesInput{})
	s.Require().NoError(err)
	s.Empty(out.Games)
}

func (s *RedisRepositoryTestSuite) TestSaveGameValidation() {
	err := s.repo.SaveGame(context.Background(), nil)
	s.Error(err)

	err = s.repo.SaveGame(context.Background(), &SaveGameInput{
		Game: &models.Game{Title: "no id"},
	})
	s.Error(err)

	err = s.repo.SaveGame(context.Background(), &SaveGameInput{
		Game: &models.Game{ID: "no-boards", Title: "empty"},
	})
	s.Error(err)
}
