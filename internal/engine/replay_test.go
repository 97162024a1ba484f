package engine

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/cmnord/jep-sub001/internal/models"
)

type ReplayTestSuite struct {
	suite.Suite

	baseTime time.Time
}

func TestReplayTestSuite(t *testing.T) {
	suite.Run(t, new(ReplayTestSuite))
}

func (s *ReplayTestSuite) SetupTest() {
	s.baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func (s *ReplayTestSuite) event(id int64, eventType, payload string) *models.RoomEvent {
	return &models.RoomEvent{
		ID:      id,
		RoomID:  "test-room-id",
		Type:    eventType,
		Payload: json.RawMessage(payload),
		TS:      s.baseTime.Add(time.Duration(id) * time.Second),
	}
}

// gameLog is a full game of the single-clue board, as persisted events.
func (s *ReplayTestSuite) gameLog() []*models.RoomEvent {
	return []*models.RoomEvent{
		s.event(1, "join", `{"userId":"user-a","name":"Alice"}`),
		s.event(2, "join", `{"userId":"user-b","name":"Bob"}`),
		s.event(3, "start_round", `{"round":0,"userId":"user-a"}`),
		s.event(4, "choose_clue", `{"i":0,"j":0,"userId":"user-a"}`),
		s.event(5, "buzz", `{"i":0,"j":0,"userId":"user-a","deltaMs":50}`),
		s.event(6, "buzz", `{"i":0,"j":0,"userId":"user-b","deltaMs":30}`),
		s.event(7, "answer", `{"i":0,"j":0,"userId":"user-b","answer":"right","result":true}`),
		s.event(8, "next_clue", `{"i":0,"j":0,"userId":"user-b"}`),
	}
}

func (s *ReplayTestSuite) TestReplayFullGame() {
	state, err := ApplyRoomEvents(StateFromGame(singleClueGame(), Rules{}), s.gameLog())
	s.Require().NoError(err)

	s.Equal(PhaseGameOver, state.Phase)
	s.Equal(200, state.Players["user-b"].Score)
	s.Equal("user-b", state.BoardControl)
	s.Equal("Alice", state.Players["user-a"].Name)
}

func (s *ReplayTestSuite) TestReplayIsDeterministic() {
	first, err := ApplyRoomEvents(StateFromGame(singleClueGame(), Rules{}), s.gameLog())
	s.Require().NoError(err)

	second, err := ApplyRoomEvents(StateFromGame(singleClueGame(), Rules{}), s.gameLog())
	s.Require().NoError(err)

	s.Equal(first, second)
}

func (s *ReplayTestSuite) TestReplayWithDuplicateEventsConverges() {
	events := s.gameLog()
	// At-least-once delivery: duplicate the buzzes and the answer.
	events = append(events, events[4], events[5], events[6])

	state, err := ApplyRoomEvents(StateFromGame(singleClueGame(), Rules{}), events)
	s.Require().NoError(err)

	s.Equal(200, state.Players["user-b"].Score)
	s.Equal(PhaseGameOver, state.Phase)
}

func (s *ReplayTestSuite) TestUnknownEventTypeFails() {
	_, err := ApplyRoomEvents(StateFromGame(singleClueGame(), Rules{}), []*models.RoomEvent{
		s.event(1, "launch_confetti", `{}`),
	})

	s.Require().Error(err)
	s.ErrorIs(err, ErrUnknownEventType)
}

func (s *ReplayTestSuite) TestMissingFieldFails() {
	_, err := ActionFromEvent(s.event(1, "buzz", `{"i":0,"j":0,"userId":"user-a"}`))

	s.Require().Error(err)
	s.ErrorIs(err, ErrBadEventPayload)
}

func (s *ReplayTestSuite) TestMalformedJSONFails() {
	_, err := ActionFromEvent(s.event(1, "join", `{"userId":`))

	s.Require().Error(err)
	s.ErrorIs(err, ErrBadEventPayload)
}

func (s *ReplayTestSuite) TestToggleClockUsesEventTimestamp() {
	events := []*models.RoomEvent{
		s.event(1, "toggle_clock", `{}`),
		s.event(2, "toggle_clock", `{}`),
	}

	state, err := ApplyRoomEvents(StateFromGame(singleClueGame(), Rules{}), events)
	s.Require().NoError(err)

	// The two events are one second apart.
	s.False(state.Clock.Running)
	s.Equal(int64(1000), state.Clock.AccumulatedMs)
}

func (s *ReplayTestSuite) TestRestoreRoundTrip() {
	snapshot, err := ApplyRoomEvents(StateFromGame(singleClueGame(), Rules{}), s.gameLog()[:3])
	s.Require().NoError(err)

	payload, err := json.Marshal(snapshot)
	s.Require().NoError(err)

	state, err := ApplyRoomEvents(StateFromGame(singleClueGame(), Rules{}), []*models.RoomEvent{
		s.event(1, "restore", string(payload)),
	})
	s.Require().NoError(err)

	s.Equal(PhaseInRound, state.Phase)
	s.Len(state.Players, 2)
	s.Equal("user-a", state.BoardControl)
}
