package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pgdesk/pgdesk/internal/models"
)

// maxStoredMessages caps the per-session list so abandoned sessions do
// not grow without bound before their TTL expires.
const maxStoredMessages = 200

// redisStore implements Store using a Redis list per session.
type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed conversation store. Session keys
// expire after ttl of inactivity; the TTL is refreshed on both reads and
// writes.
func NewRedisStore(client *redis.Client, ttl time.Duration) Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &redisStore{
		client: client,
		ttl:    ttl,
	}
}

func sessionKey(sessionID string) string {
	return "chat:" + sessionID
}

// Append implements Store.
func (s *redisStore) Append(ctx context.Context, sessionID, role, text string) error {
	msg := models.Message{
		Role:      role,
		Content:   text,
		Timestamp: time.Now().UTC(),
	}
	val, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	key := sessionKey(sessionID)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, val)
		pipe.LTrim(ctx, key, -maxStoredMessages, -1)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

// Recent implements Store.
func (s *redisStore) Recent(ctx context.Context, sessionID string, n int) ([]models.Message, error) {
	key := sessionKey(sessionID)

	start := int64(-n)
	if n <= 0 {
		start = 0
	}
	vals, err := s.client.LRange(ctx, key, start, -1).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	// Refresh TTL on read
	_ = s.client.Expire(ctx, key, s.ttl).Err()

	history := make([]models.Message, 0, len(vals))
	for _, val := range vals {
		var msg models.Message
		if err := json.Unmarshal([]byte(val), &msg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal message: %w", err)
		}
		history = append(history, msg)
	}
	return history, nil
}

// Close implements Store.
func (s *redisStore) Close() error {
	return s.client.Close()
}
