package room

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cmnord/jep-sub001/internal/common/clock"
	"github.com/cmnord/jep-sub001/internal/common/uuid"
	"github.com/cmnord/jep-sub001/internal/engine"
	"github.com/cmnord/jep-sub001/internal/models"
	gameRepo "github.com/cmnord/jep-sub001/internal/repositories/game"
	roomRepo "github.com/cmnord/jep-sub001/internal/repositories/room"
	eventRepo "github.com/cmnord/jep-sub001/internal/repositories/room_event"
)

// roomState is the service's cache of a room's derived state. The
// reducer owns all mutation; the cache only ever holds states the
// reducer produced.
type roomState struct {
	state       *engine.State
	lastEventID int64
}

// service implements the Service interface
type service struct {
	config    *Config
	roomRepo  roomRepo.Repository
	gameRepo  gameRepo.Repository
	eventRepo eventRepo.Repository
	clock     clock.Clock
	uuidGen   uuid.UUID

	mu    sync.Mutex
	rooms map[string]*roomState
}

// NewService creates a new room service
func NewService(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if cfg.RoomRepo == nil {
		return nil, ErrNilRoomRepo
	}
	if cfg.GameRepo == nil {
		return nil, ErrNilGameRepo
	}
	if cfg.EventRepo == nil {
		return nil, ErrNilEventRepo
	}
	if cfg.Clock == nil {
		return nil, ErrNilClock
	}
	if cfg.UUIDGenerator == nil {
		return nil, ErrNilUUIDGenerator
	}

	return &service{
		config:    cfg,
		roomRepo:  cfg.RoomRepo,
		gameRepo:  cfg.GameRepo,
		eventRepo: cfg.EventRepo,
		clock:     cfg.Clock,
		uuidGen:   cfg.UUIDGenerator,
		rooms:     make(map[string]*roomState),
	}, nil
}

// NewSolo creates a room service backed by in-memory repositories and
// a ready-to-play room for the given game. Dispatch behaves exactly as
// in multiplayer, minus the server round trip; the in-memory event log
// keeps replay (and restore-from-snapshot) working locally.
func NewSolo(ctx context.Context, cfg *SoloConfig) (*service, *models.Room, error) {
	if cfg == nil || cfg.Game == nil {
		return nil, nil, ErrNilConfig
	}

	soloClock := cfg.Clock
	if soloClock == nil {
		soloClock = &clock.DefaultClock{}
	}
	soloUUID := cfg.UUIDGenerator
	if soloUUID == nil {
		soloUUID = uuid.New()
	}

	svc, err := NewService(&Config{
		RoomRepo:      roomRepo.NewMemory(),
		GameRepo:      gameRepo.NewMemory(),
		EventRepo:     eventRepo.NewMemory(),
		Clock:         soloClock,
		UUIDGenerator: soloUUID,
		Rules:         cfg.Rules,
	})
	if err != nil {
		return nil, nil, err
	}

	if err := svc.gameRepo.SaveGame(ctx, &gameRepo.SaveGameInput{Game: cfg.Game}); err != nil {
		return nil, nil, err
	}

	out, err := svc.CreateRoom(ctx, &CreateRoomInput{
		Name:   "solo",
		GameID: cfg.Game.ID,
	})
	if err != nil {
		return nil, nil, err
	}

	return svc, out.Room, nil
}

// CreateGame stores a new set of boards as playable game content
func (s *service) CreateGame(ctx context.Context, input *CreateGameInput) (*CreateGameOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}
	if len(input.Boards) == 0 {
		return nil, ErrInvalidGame
	}

	game := &models.Game{
		ID:        s.uuidGen.NewUUID(),
		Title:     input.Title,
		Boards:    input.Boards,
		CreatedAt: s.clock.Now(),
	}

	if err := s.gameRepo.SaveGame(ctx, &gameRepo.SaveGameInput{Game: game}); err != nil {
		return nil, err
	}

	return &CreateGameOutput{GameID: game.ID}, nil
}

// GetGame retrieves stored game content
func (s *service) GetGame(ctx context.Context, input *GetGameInput) (*GetGameOutput, error) {
	if input == nil || input.GameID == "" {
		return nil, errors.New("input and game ID cannot be empty")
	}

	game, err := s.gameRepo.GetGame(ctx, &gameRepo.GetGameInput{GameID: input.GameID})
	if err != nil {
		if errors.Is(err, gameRepo.ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}

	return &GetGameOutput{Game: game}, nil
}

// ListGames lists stored game content
func (s *service) ListGames(ctx context.Context, input *ListGamesInput) (*ListGamesOutput, error) {
	out, err := s.gameRepo.ListGames(ctx, &gameRepo.ListGamesInput{})
	if err != nil {
		return nil, err
	}

	return &ListGamesOutput{Games: out.Games}, nil
}

// CreateRoom creates a new room playing the given game
func (s *service) CreateRoom(ctx context.Context, input *CreateRoomInput) (*CreateRoomOutput, error) {
	if input == nil || input.Name == "" || input.GameID == "" {
		return nil, errors.New("input, room name, and game ID cannot be empty")
	}

	// Room names are join codes: they must be unique.
	existing, err := s.roomRepo.GetRoomByName(ctx, &roomRepo.GetRoomByNameInput{Name: input.Name})
	if err == nil && existing != nil {
		return nil, ErrRoomAlreadyExists
	}
	if err != nil && !errors.Is(err, roomRepo.ErrRoomNotFound) {
		return nil, err
	}

	// The room must reference content that exists before anyone joins.
	if _, err := s.gameRepo.GetGame(ctx, &gameRepo.GetGameInput{GameID: input.GameID}); err != nil {
		if errors.Is(err, gameRepo.ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}

	now := s.clock.Now()
	newRoom := &models.Room{
		ID:         s.uuidGen.NewUUID(),
		Name:       input.Name,
		GameID:     input.GameID,
		HostUserID: input.HostUserID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.roomRepo.SaveRoom(ctx, &roomRepo.SaveRoomInput{Room: newRoom}); err != nil {
		return nil, err
	}

	return &CreateRoomOutput{Room: newRoom}, nil
}

// GetRoomByName looks up a room by its join name
func (s *service) GetRoomByName(ctx context.Context, input *GetRoomByNameInput) (*GetRoomByNameOutput, error) {
	if input == nil || input.Name == "" {
		return nil, errors.New("input and room name cannot be empty")
	}

	found, err := s.roomRepo.GetRoomByName(ctx, &roomRepo.GetRoomByNameInput{Name: input.Name})
	if err != nil {
		if errors.Is(err, roomRepo.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}

	return &GetRoomByNameOutput{Room: found}, nil
}

// GetRoomState derives the room's current state by replaying its event
// log
func (s *service) GetRoomState(ctx context.Context, input *GetRoomStateInput) (*GetRoomStateOutput, error) {
	if input == nil || input.RoomID == "" {
		return nil, errors.New("input and room ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rs, err := s.loadRoomLocked(ctx, input.RoomID)
	if err != nil {
		return nil, err
	}

	return &GetRoomStateOutput{
		State:       rs.state,
		LastEventID: rs.lastEventID,
	}, nil
}

// Dispatch timestamps an incoming action, appends it to the room's
// event log, and folds it into the latest known state. An action the
// reducer considers invalid is still appended (other clients replay
// the same log and ignore it the same way); an action that cannot even
// be translated is rejected before it is persisted.
func (s *service) Dispatch(ctx context.Context, input *DispatchInput) (*DispatchOutput, error) {
	if input == nil || input.RoomID == "" || input.Type == "" {
		return nil, errors.New("input, room ID, and event type cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rs, err := s.loadRoomLocked(ctx, input.RoomID)
	if err != nil {
		return nil, err
	}

	event := &models.RoomEvent{
		RoomID:  input.RoomID,
		Type:    input.Type,
		Payload: input.Payload,
		TS:      s.clock.Now(),
	}

	// Reject garbage before it becomes part of the permanent log.
	if _, err := engine.ActionFromEvent(event); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadEvent, err)
	}

	out, err := s.eventRepo.AppendEvent(ctx, &eventRepo.AppendEventInput{Event: event})
	if err != nil {
		return nil, err
	}

	action, err := engine.ActionFromEvent(out.Event)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadEvent, err)
	}

	rs.state = engine.Reduce(rs.state, action)
	rs.lastEventID = out.Event.ID

	return &DispatchOutput{
		State: rs.state,
		Event: out.Event,
	}, nil
}

// CatchUp returns the events appended after a client-known insertion id
func (s *service) CatchUp(ctx context.Context, input *CatchUpInput) (*CatchUpOutput, error) {
	if input == nil || input.RoomID == "" {
		return nil, errors.New("input and room ID cannot be empty")
	}

	out, err := s.eventRepo.ListEventsAfter(ctx, &eventRepo.ListEventsAfterInput{
		RoomID:  input.RoomID,
		AfterID: input.AfterID,
	})
	if err != nil {
		return nil, err
	}

	return &CatchUpOutput{Events: out.Events}, nil
}

// loadRoomLocked returns the cached derived state for a room, folding
// in any events appended since the cache was last updated. The caller
// must hold s.mu: dispatches always reduce from the latest known
// state, never a stale snapshot.
func (s *service) loadRoomLocked(ctx context.Context, roomID string) (*roomState, error) {
	if rs, ok := s.rooms[roomID]; ok {
		out, err := s.eventRepo.ListEventsAfter(ctx, &eventRepo.ListEventsAfterInput{
			RoomID:  roomID,
			AfterID: rs.lastEventID,
		})
		if err != nil {
			return nil, err
		}
		if err := foldEvents(rs, out.Events); err != nil {
			return nil, err
		}
		return rs, nil
	}

	found, err := s.roomRepo.GetRoom(ctx, &roomRepo.GetRoomInput{RoomID: roomID})
	if err != nil {
		if errors.Is(err, roomRepo.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}

	game, err := s.gameRepo.GetGame(ctx, &gameRepo.GetGameInput{GameID: found.GameID})
	if err != nil {
		if errors.Is(err, gameRepo.ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}

	out, err := s.eventRepo.ListEvents(ctx, &eventRepo.ListEventsInput{RoomID: roomID})
	if err != nil {
		return nil, err
	}

	rs := &roomState{state: engine.StateFromGame(game, s.config.Rules)}
	if err := foldEvents(rs, out.Events); err != nil {
		return nil, err
	}

	s.rooms[roomID] = rs
	return rs, nil
}

func foldEvents(rs *roomState, events []*models.RoomEvent) error {
	state, err := engine.ApplyRoomEvents(rs.state, events)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadEvent, err)
	}
	rs.state = state
	for _, ev := range events {
		if ev.ID > rs.lastEventID {
			rs.lastEventID = ev.ID
		}
	}
	return nil
}
