package room_event

import (
	"context"
	"encoding/json"
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

	// Set up test time
	s.testNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	s.client.Close()
	s.mr.Close()
}

func TestRedisRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}

func (s *RedisRepositoryTestSuite) append(ts time.Time, eventType, payload string) *models.RoomEvent {
	out, err := s.repo.AppendEvent(context.Background(), &AppendEventInput{
		Event: &models.RoomEvent{
			RoomID:  "test-room-id",
			Type:    eventType,
			Payload: json.RawMessage(payload),
			TS:      ts,
		},
	})
	s.Require().NoError(err)
	return out.Event
}

func (s *RedisRepositoryTestSuite) TestAppendAssignsSequentialIDs() {
	first := s.append(s.testNow, "join", `{"userId":"user-a"}`)
	second := s.append(s.testNow.Add(time.Second), "join", `{"userId":"user-b"}`)

	s.Equal(int64(1), first.ID)
	s.Equal(int64(2), second.ID)
}

func (s *RedisRepositoryTestSuite) TestListEventsReplayOrder() {
	s.append(s.testNow, "join", `{"userId":"user-a"}`)
	s.append(s.testNow.Add(2*time.Second), "buzz", `{"i":0,"j":0,"userId":"user-a","deltaMs":10}`)
	s.append(s.testNow.Add(time.Second), "join", `{"userId":"user-b"}`)

	out, err := s.repo.ListEvents(context.Background(), &ListEventsInput{RoomID: "test-room-id"})
	s.Require().NoError(err)
	s.Require().Len(out.Events, 3)

	// Replay order is by timestamp, not insertion order.
	s.Equal(int64(1), out.Events[0].ID)
	s.Equal(int64(3), out.Events[1].ID)
	s.Equal(int64(2), out.Events[2].ID)
}

func (s *RedisRepositoryTestSuite) TestListEventsTimestampTiebreakByID() {
	s.append(s.testNow, "join", `{"userId":"user-a"}`)
	s.append(s.testNow, "join", `{"userId":"user-b"}`)

	out, err := s.repo.ListEvents(context.Background(), &ListEventsInput{RoomID: "test-room-id"})
	s.Require().NoError(err)
	s.Require().Len(out.Events, 2)

	s.Equal(int64(1), out.Events[0].ID)
	s.Equal(int64(2), out.Events[1].ID)
}

func (s *RedisRepositoryTestSuite) TestListEventsAfter() {
	s.append(s.testNow, "join", `{"userId":"user-a"}`)
	s.append(s.testNow.Add(time.Second), "join", `{"userId":"user-b"}`)
	s.append(s.testNow.Add(2*time.Second), "toggle_clock", `{}`)

	out, err := s.repo.ListEventsAfter(context.Background(), &ListEventsAfterInput{
		RoomID:  "test-room-id",
		AfterID: 1,
	})
	s.Require().NoError(err)
	s.Require().Len(out.Events, 2)

	s.Equal(int64(2), out.Events[0].ID)
	s.Equal(int64(3), out.Events[1].ID)
}

func (s *RedisRepositoryTestSuite) TestListEventsEmptyRoom() {
	out, err := s.repo.ListEvents(context.Background(), &ListEventsInput{RoomID: "empty-room"})
	s.Require().NoError(err)
	s.Empty(out.Events)
}

func (s *RedisRepositoryTestSuite) TestAppendDoesNotMutateInput() {
	input := &models.RoomEvent{
		RoomID:  "test-room-id",
		Type:    "join",
		Payload: json.RawMessage(`{"userId":"user-a"}`),
		TS:      s.testNow,
	}

	out, err := s.repo.AppendEvent(context.Background(), &AppendEventInput{Event: input})
	s.Require().NoError(err)

	s.Zero(input.ID)
	s.Equal(int64(1), out.Event.ID)
}

func (s *RedisRepositoryTestSuite) TestAppendValidation() {
	_, err := s.repo.AppendEvent(context.Background(), nil)
	s.Error(err)

	_, err = s.repo.AppendEvent(context.Background(), &AppendEventInput{
		Event: &models.RoomEvent{Type: "join"},
	})
	s.Error(err)

	_, err = s.repo.AppendEvent(context.Background(), &AppendEventInput{
		Event: &models.RoomEvent{RoomID: "test-room-id"},
	})
	s.Error(err)
}
