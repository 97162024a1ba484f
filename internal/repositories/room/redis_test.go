package room

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
	mr       *miniredis.Miniredis
	client   *redis.Client
	repo     Repository
	testRoom *models.Room
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

	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	s.testRoom = &models.Room{
		ID:         "test-room-id",
		Name:       "quiz-night",
		GameID:     "test-game-id",
		HostUserID: "test-host-id",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	s.client.Close()
	s.mr.Close()
}

func TestRedisRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}

func (s *RedisRepositoryTestSuite) TestSaveAndGetRoom() {
	err := s.repo.SaveRoom(context.Background(), &SaveRoomInput{Room: s.testRoom})
	s.Require().NoError(err)

	got, err := s.repo.GetRoom(context.Background(), &GetRoomInput{RoomID: s.testRoom.ID})
	s.Require().NoError(err)
	s.Equal(s.testRoom.ID, got.ID)
	s.Equal(s.testRoom.Name, got.Name)
	s.Equal(s.testRoom.GameID, got.GameID)
	s.Equal(s.testRoom.HostUserID, got.HostUserID)
}

func (s *RedisRepositoryTestSuite) TestGetRoomByName() {
	err := s.repo.SaveRoom(context.Background(), &SaveRoomInput{Room: s.testRoom})
	s.Require().NoError(err)

	got, err := s.repo.GetRoomByName(context.Background(), &GetRoomByNameInput{Name: "quiz-night"})
	s.Require().NoError(err)
	s.Equal(s.testRoom.ID, got.ID)
}

func (s *RedisRepositoryTestSuite) TestGetRoomNotFound() {
	_, err := s.repo.GetRoom(context.Background(), &GetRoomInput{RoomID: "missing"})
	s.ErrorIs(err, ErrRoomNotFound)

	_, err = s.repo.GetRoomByName(context.Background(), &GetRoomByNameInput{Name: "missing"})
	s.ErrorIs(err, ErrRoomNotFound)
}

func (s *RedisRepositoryTestSuite) TestSaveRoomValidation() {
	err := s.repo.SaveRoom(context.Background(), nil)
	s.Error(err)

	err = s.repo.SaveRoom(context.Background(), &SaveRoomInput{
		Room: &models.Room{Name: "no-id"},
	})
	s.Error(err)
}
