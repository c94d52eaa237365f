package pending

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "pending:"

// RedisStore keeps pending transcripts in Redis so multiple replicas behind
// one webhook share conversation state. GETDEL provides the same atomic
// check-and-remove the in-memory store gives under its mutex.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Put stores text as the sender's single pending slot, overwriting any
// earlier entry. No TTL: an entry lives until confirmed or overwritten.
func (s *RedisStore) Put(ctx context.Context, senderID, text string) error {
	if err := s.client.Set(ctx, keyPrefix+senderID, text, 0).Err(); err != nil {
		return fmt.Errorf("pending store: set sender %q: %w", senderID, err)
	}
	return nil
}

// TakeIfPresent removes and returns the sender's pending entry in one step.
func (s *RedisStore) TakeIfPresent(ctx context.Context, senderID string) (string, bool, error) {
	text, err := s.client.GetDel(ctx, keyPrefix+senderID).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("pending store: getdel sender %q: %w", senderID, err)
	}
	return text, true, nil
}
