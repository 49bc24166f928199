package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pong-stats-service/internal/config"
	"github.com/pong-stats-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// Cache provides the Redis-backed rating mirror and identity directory cache.
// The mirror feeds realtime broadcasts only; ranked reads always go to
// PostgreSQL.
type Cache struct {
	client *redis.Client
	logger *slog.Logger
}

// NewCache creates a new Redis cache
func NewCache(cfg *config.RedisConfig, logger *slog.Logger) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	// Test connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &Cache{
		client: client,
		logger: logger,
	}, nil
}

// Close closes the Redis connection
func (c *Cache) Close() error {
	return c.client.Close()
}

// Client returns the underlying Redis client
func (c *Cache) Client() *redis.Client {
	return c.client
}

const ratingsKey = "stats:ratings"

func userKey(idOrUsername string) string {
	return fmt.Sprintf("stats:user:%s", idOrUsername)
}

// SetRating mirrors one player's rating into the sorted set
func (c *Cache) SetRating(ctx context.Context, playerID string, elo int) error {
	err := c.client.ZAdd(ctx, ratingsKey, redis.Z{
		Score:  float64(elo),
		Member: playerID,
	}).Err()
	if err != nil {
		return fmt.Errorf("setting rating: %w", err)
	}
	return nil
}

// ReplaceAllRatings atomically rebuilds the mirror from the given snapshot
func (c *Cache) ReplaceAllRatings(ctx context.Context, ratings map[string]int64) error {
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, ratingsKey)
	for playerID, elo := range ratings {
		pipe.ZAdd(ctx, ratingsKey, redis.Z{
			Score:  float64(elo),
			Member: playerID,
		})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("rebuilding rating mirror: %w", err)
	}
	return nil
}

// TopRatings returns the mirror's top N entries for broadcast payloads
func (c *Cache) TopRatings(ctx context.Context, n int) ([]domain.RankedEntry, error) {
	results, err := c.client.ZRevRangeWithScores(ctx, ratingsKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("getting top ratings: %w", err)
	}

	entries := make([]domain.RankedEntry, len(results))
	for i, result := range results {
		entries[i] = domain.RankedEntry{
			Rank:     int64(i + 1),
			PlayerID: result.Member.(string),
			EloScore: int(result.Score),
		}
	}
	return entries, nil
}

// RatingCount returns the number of mirrored players
func (c *Cache) RatingCount(ctx context.Context) (int64, error) {
	count, err := c.client.ZCard(ctx, ratingsKey).Result()
	if err != nil {
		return 0, fmt.Errorf("counting ratings: %w", err)
	}
	return count, nil
}

// GetUser retrieves a cached identity directory record. A cache miss is
// reported as redis.Nil via the returned error.
func (c *Cache) GetUser(ctx context.Context, idOrUsername string) (*domain.User, error) {
	data, err := c.client.Get(ctx, userKey(idOrUsername)).Bytes()
	if err != nil {
		return nil, err
	}
	var user domain.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("unmarshaling cached user: %w", err)
	}
	return &user, nil
}

// IsCacheMiss reports whether an error from GetUser means the key was absent.
func IsCacheMiss(err error) bool {
	return errors.Is(err, redis.Nil)
}

// SetUser caches a directory record under both its id and username
func (c *Cache) SetUser(ctx context.Context, user *domain.User, ttl time.Duration) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshaling user: %w", err)
	}
	pipe := c.client.Pipeline()
	pipe.Set(ctx, userKey(user.ID), data, ttl)
	if user.Username != "" {
		pipe.Set(ctx, userKey(user.Username), data, ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("caching user: %w", err)
	}
	return nil
}
