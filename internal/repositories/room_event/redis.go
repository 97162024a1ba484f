package room_event

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/cmnord/jep-sub001/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	// Key prefixes for Redis
	eventKeyPrefix    = "room_event:"
	roomLogKeyPrefix  = "room_log:"
	eventSeqKeyPrefix = "room_event_seq:"
)

// Config holds configuration for the Redis room event repository
type Config struct {
	// Redis client
	RedisClient *redis.Client
}

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client *redis.Client
}

// NewRedis creates a new Redis-backed room event repository
func NewRedis(cfg *Config) (*redisRepository, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	// Test connection
	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisRepository{
		client: cfg.RedisClient,
	}, nil
}

// AppendEvent appends an event to the room's log. The insertion id is
// taken from a per-room counter so it is strictly increasing.
func (r *redisRepository) AppendEvent(ctx context.Context, input *AppendEventInput) (*AppendEventOutput, error) {
	if input == nil || input.Event == nil {
		return nil, errors.New("input and event cannot be nil")
	}
	if input.Event.RoomID == "" {
		return nil, errors.New("event room ID cannot be empty")
	}
	if input.Event.Type == "" {
		return nil, errors.New("event type cannot be empty")
	}

	stored := *input.Event

	seqKey := fmt.Sprintf("%s%s", eventSeqKeyPrefix, stored.RoomID)
	id, err := r.client.Incr(ctx, seqKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to assign event id: %w", err)
	}
	stored.ID = id

	eventJSON, err := json.Marshal(&stored)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}

	pipe := r.client.Pipeline()

	eventKey := fmt.Sprintf("%s%s:%d", eventKeyPrefix, stored.RoomID, stored.ID)
	pipe.Set(ctx, eventKey, eventJSON, 0)

	logKey := fmt.Sprintf("%s%s", roomLogKeyPrefix, stored.RoomID)
	pipe.ZAdd(ctx, logKey, redis.Z{
		Score:  float64(stored.ID),
		Member: strconv.FormatInt(stored.ID, 10),
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to append event: %w", err)
	}

	return &AppendEventOutput{Event: &stored}, nil
}

// ListEvents retrieves a room's full event log in replay order.
func (r *redisRepository) ListEvents(ctx context.Context, input *ListEventsInput) (*ListEventsOutput, error) {
	if input == nil || input.RoomID == "" {
		return nil, errors.New("input and room ID cannot be empty")
	}

	events, err := r.listFrom(ctx, input.RoomID, "1")
	if err != nil {
		return nil, err
	}

	return &ListEventsOutput{Events: events}, nil
}

// ListEventsAfter retrieves events with insertion id greater than
// AfterID, in replay order.
func (r *redisRepository) ListEventsAfter(ctx context.Context, input *ListEventsAfterInput) (*ListEventsAfterOutput, error) {
	if input == nil || input.RoomID == "" {
		return nil, errors.New("input and room ID cannot be empty")
	}

	min := fmt.Sprintf("(%d", input.AfterID)
	events, err := r.listFrom(ctx, input.RoomID, min)
	if err != nil {
		return nil, err
	}

	return &ListEventsAfterOutput{Events: events}, nil
}

func (r *redisRepository) listFrom(ctx context.Context, roomID, min string) ([]*models.RoomEvent, error) {
	logKey := fmt.Sprintf("%s%s", roomLogKeyPrefix, roomID)
	ids, err := r.client.ZRangeByScore(ctx, logKey, &redis.ZRangeBy{
		Min: min,
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read room log: %w", err)
	}

	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = fmt.Sprintf("%s%s:%s", eventKeyPrefix, roomID, id)
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}

	events := make([]*models.RoomEvent, 0, len(values))
	for _, value := range values {
		raw, ok := value.(string)
		if !ok {
			continue
		}
		var ev models.RoomEvent
		if err := json.Unmarshal([]byte(raw), &ev); err != nil {
			return nil, fmt.Errorf("failed to unmarshal event: %w", err)
		}
		events = append(events, &ev)
	}

	// Replay order is timestamp first, insertion id as tiebreak.
	sortEvents(events)

	return events, nil
}

func sortEvents(events []*models.RoomEvent) {
	sort.SliceStable(events, func(a, b int) bool {
		if !events[a].TS.Equal(events[b].TS) {
			return events[a].TS.Before(events[b].TS)
		}
		return events[a].ID < events[b].ID
	})
}
