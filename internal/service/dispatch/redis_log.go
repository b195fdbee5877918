package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"artisanal-futures/internal/domain/dispatch"

	"github.com/redis/go-redis/v9"
)

const redisLogTTL = 24 * time.Hour

// RedisLog shares dispatch state between instances: a capped list of
// messages and a hash of latest locations per scope.
type RedisLog struct {
	client *redis.Client
	prefix string
	cap    int64
}

func NewRedisLog(client *redis.Client, prefix string, capacity int) *RedisLog {
	if prefix == "" {
		prefix = "dispatch"
	}
	if capacity <= 0 {
		capacity = 500
	}
	return &RedisLog{client: client, prefix: prefix, cap: int64(capacity)}
}

func (l *RedisLog) messagesKey(scope string) string {
	return fmt.Sprintf("%s:messages:%s", l.prefix, scope)
}

func (l *RedisLog) locationsKey(scope string) string {
	return fmt.Sprintf("%s:locations:%s", l.prefix, scope)
}

func (l *RedisLog) AppendMessage(ctx context.Context, scope string, m dispatch.Message) ([]dispatch.Message, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	key := l.messagesKey(scope)
	var all *redis.StringSliceCmd
	_, err = l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, data)
		pipe.LTrim(ctx, key, -l.cap, -1)
		pipe.Expire(ctx, key, redisLogTTL)
		all = pipe.LRange(ctx, key, 0, -1)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to append message: %w", err)
	}

	return decodeMessages(all.Val())
}

func (l *RedisLog) Messages(ctx context.Context, scope string) ([]dispatch.Message, error) {
	raw, err := l.client.LRange(ctx, l.messagesKey(scope), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read messages: %w", err)
	}
	return decodeMessages(raw)
}

func (l *RedisLog) UpsertLocation(ctx context.Context, scope string, loc dispatch.Location) ([]dispatch.Location, error) {
	data, err := json.Marshal(loc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal location: %w", err)
	}

	key := l.locationsKey(scope)
	var all *redis.MapStringStringCmd
	_, err = l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, loc.UserID, data)
		pipe.Expire(ctx, key, redisLogTTL)
		all = pipe.HGetAll(ctx, key)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert location: %w", err)
	}

	return decodeLocations(all.Val())
}

func (l *RedisLog) Locations(ctx context.Context, scope string) ([]dispatch.Location, error) {
	raw, err := l.client.HGetAll(ctx, l.locationsKey(scope)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read locations: %w", err)
	}
	return decodeLocations(raw)
}

func decodeMessages(raw []string) ([]dispatch.Message, error) {
	out := make([]dispatch.Message, 0, len(raw))
	for _, r := range raw {
		var m dispatch.Message
		if err := json.Unmarshal([]byte(r), &m); err != nil {
			return nil, fmt.Errorf("failed to decode message: %w", err)
		}
		out = append(out, m)
	}
	return out, nil
}

func decodeLocations(raw map[string]string) ([]dispatch.Location, error) {
	byUser := make(map[string]dispatch.Location, len(raw))
	for userID, r := range raw {
		var loc dispatch.Location
		if err := json.Unmarshal([]byte(r), &loc); err != nil {
			return nil, fmt.Errorf("failed to decode location: %w", err)
		}
		byUser[userID] = loc
	}
	return sortedLocations(byUser), nil
}
