package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/cmnord/jep-sub001/internal/models"
	roomService "github.com/cmnord/jep-sub001/internal/services/room"
)

type HandlerTestSuite struct {
	suite.Suite
	svc     roomService.Service
	room    *models.Room
	handler *Handler
	router  http.Handler
}

func (s *HandlerTestSuite) SetupTest() {
	game := &models.Game{
		ID:    "test-game-id",
		Title: "Test Game",
		Boards: []models.Board{
			{Categories: []models.Category{
				{Name: "Potpourri", Clues: []models.Clue{
					{Text: "This is the clue", Answer: "What is the answer?", Value: 200},
				}},
			}},
		},
	}

	svc, room, err := roomService.NewSolo(context.Background(), &roomService.SoloConfig{Game: game})
	s.Require().NoError(err)
	s.svc = svc
	s.room = room

	handler, err := New(&Config{BaseURL: "http://localhost:8080"}, svc)
	s.Require().NoError(err)
	s.handler = handler
	s.router = handler.Router()
}

func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

func (s *HandlerTestSuite) dispatch(eventType, payload string) {
	_, err := s.svc.Dispatch(context.Background(), &roomService.DispatchInput{
		RoomID:  s.room.ID,
		Type:    eventType,
		Payload: json.RawMessage(payload),
	})
	s.Require().NoError(err)
}

func (s *HandlerTestSuite) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlerTestSuite) TestRoomEventsCatchUp() {
	s.dispatch("join", `{"userId":"user-a","name":"Alice"}`)
	s.dispatch("join", `{"userId":"user-b","name":"Bob"}`)

	w := s.get("/rooms/solo/events?after=1")
	s.Equal(http.StatusOK, w.Code)

	var body struct {
		Events []*models.RoomEvent `json:"events"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	s.Require().Len(body.Events, 1)
	s.Equal(int64(2), body.Events[0].ID)
	s.Equal("join", body.Events[0].Type)
}

func (s *HandlerTestSuite) TestRoomEventsDefaultsToFullLog() {
	s.dispatch("join", `{"userId":"user-a","name":"Alice"}`)

	w := s.get("/rooms/solo/events")
	s.Equal(http.StatusOK, w.Code)

	var body struct {
		Events []*models.RoomEvent `json:"events"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	s.Len(body.Events, 1)
}

func (s *HandlerTestSuite) TestRoomEventsBadAfterParam() {
	w := s.get("/rooms/solo/events?after=bogus")
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerTestSuite) TestRoomEventsUnknownRoom() {
	w := s.get("/rooms/nowhere/events")
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *HandlerTestSuite) TestHandleClientMessageBroadcasts() {
	roomHub := s.handler.getHub(s.room.ID)
	c := &client{send: make(chan []byte, 1)}
	roomHub.register(c)

	err := s.handler.handleClientMessage(context.Background(), roomHub,
		[]byte(`{"type":"join","payload":{"userId":"user-a","name":"Alice"}}`))
	s.Require().NoError(err)

	select {
	case raw := <-c.send:
		var msg eventMessage
		s.Require().NoError(json.Unmarshal(raw, &msg))
		s.Equal("event", msg.Type)
		s.Equal("join", msg.Event.Type)
		s.Contains(msg.State.Players, "user-a")
	default:
		s.Fail("expected a broadcast message")
	}
}

func (s *HandlerTestSuite) TestHubReleasedWhenLastClientLeaves() {
	roomHub := s.handler.getHub(s.room.ID)
	c := &client{send: make(chan []byte, 1)}
	roomHub.register(c)

	roomHub.unregister(c)
	s.handler.releaseHub(roomHub)

	s.handler.mu.Lock()
	_, kept := s.handler.hubs[s.room.ID]
	s.handler.mu.Unlock()
	s.False(kept)
}
