package deduplication

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SeenStore is the durable per-source record of URLs already
// dispatched for curation.
type SeenStore interface {
	// Members returns every seen key for the source.
	Members(ctx context.Context, sourceID int64) (map[string]bool, error)
	// Add records keys as seen for the source.
	Add(ctx context.Context, sourceID int64, keys []string) error
	Close() error
}

// RedisSeenStore keeps one Redis set per source id.
type RedisSeenStore struct {
	client *redis.Client
}

// RedisConfig configures the Redis connection for seen sets.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisSeenStore connects to Redis and verifies connectivity.
func NewRedisSeenStore(cfg RedisConfig) (*RedisSeenStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	return &RedisSeenStore{client: client}, nil
}

// Client exposes the underlying Redis client so other components
// (progress event publishing) can share the connection.
func (s *RedisSeenStore) Client() *redis.Client {
	return s.client
}

func (s *RedisSeenStore) Close() error {
	return s.client.Close()
}

func seenKey(sourceID int64) string {
	return fmt.Sprintf("source:%d:seen", sourceID)
}

func (s *RedisSeenStore) Members(ctx context.Context, sourceID int64) (map[string]bool, error) {
	keys, err := s.client.SMembers(ctx, seenKey(sourceID)).Result()
	if err != nil {
		return nil, fmt.Errorf("load seen set for source %d: %w", sourceID, err)
	}
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		seen[k] = true
	}
	return seen, nil
}

func (s *RedisSeenStore) Add(ctx context.Context, sourceID int64, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	members := make([]interface{}, len(keys))
	for i, k := range keys {
		members[i] = k
	}
	if err := s.client.SAdd(ctx, seenKey(sourceID), members...).Err(); err != nil {
		return fmt.Errorf("persist seen set for source %d: %w", sourceID, err)
	}
	return nil
}
