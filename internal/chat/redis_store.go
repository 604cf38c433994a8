package chat

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// messagesKey is the Redis list holding the message log, oldest first.
const messagesKey = "parlor:messages"

// RedisStore keeps the message log in a Redis list, as an alternative backend
// to FileStore for deployments that already run Redis. Append and trim execute
// in one transactional pipeline, so the retention cap holds between
// operations and concurrent appends cannot interleave a read-modify-write.
type RedisStore struct {
	client *redis.Client
	key    string
	cap    int
}

// NewRedisStore creates a store on top of an already-connected client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, key: messagesKey, cap: RetentionCap}
}

// Append pushes msg onto the tail of the list and trims the head beyond the
// retention cap.
func (s *RedisStore) Append(msg *Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	ctx := context.Background()
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, s.key, data)
	pipe.LTrim(ctx, s.key, int64(-s.cap), -1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append to message list: %w", err)
	}
	return nil
}

// Recent returns up to limit of the most recent messages, oldest first.
// Redis errors and undecodable entries degrade to an empty or shorter result.
func (s *RedisStore) Recent(limit int) []*Message {
	if limit <= 0 {
		return nil
	}

	values, err := s.client.LRange(context.Background(), s.key, int64(-limit), -1).Result()
	if err != nil {
		return nil
	}

	messages := make([]*Message, 0, len(values))
	for _, value := range values {
		var msg Message
		if err := json.Unmarshal([]byte(value), &msg); err != nil {
			continue
		}
		messages = append(messages, &msg)
	}
	return messages
}
