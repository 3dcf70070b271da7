package transcript

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisOpTimeout = 5 * time.Second

// RedisStore keeps the transcript in a Redis list so it survives restarts.
// RPush followed by LTrim enforces the same drop-oldest bound as the
// in-memory store.
type RedisStore struct {
	client *redis.Client
	key    string
	max    int
}

func NewRedisStore(url, key string, maxMessages int) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if maxMessages < 1 {
		maxMessages = 1
	}
	return &RedisStore{client: client, key: key, max: maxMessages}, nil
}

func (s *RedisStore) Append(displayName, text string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	entry := fmt.Sprintf("%s: %s", displayName, text)
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, s.key, entry)
	pipe.LTrim(ctx, s.key, int64(-s.max), -1)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Render() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	entries, err := s.client.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return "", err
	}
	return render(entries), nil
}

func (s *RedisStore) Reset() error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	return s.client.Del(ctx, s.key).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
