package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Day board cache keys
const (
	DayBoardKeyFmt = "board:%s:%s" // date, period ("" for all periods)
	RouteBoardFmt  = "routes:%s:%s"
)

var client *redis.Client

// Init initializes the Redis connection. The cache degrades to a
// pass-through when Redis is unreachable.
func Init(addr, password string, db int) error {
	client = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		client = nil
		return err
	}
	return nil
}

// DayBoardKey builds the cache key for one day's delivery board.
func DayBoardKey(date time.Time, period string) string {
	return fmt.Sprintf(DayBoardKeyFmt, date.Format("2006-01-02"), period)
}

// RouteBoardKey builds the cache key for one day's route list.
func RouteBoardKey(date time.Time, period string) string {
	return fmt.Sprintf(RouteBoardFmt, date.Format("2006-01-02"), period)
}

// GetCached returns cached data for a key
func GetCached(ctx context.Context, key string) ([]byte, bool) {
	if client == nil {
		return nil, false
	}
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// SetCached stores data with a TTL
func SetCached(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if client == nil {
		return
	}
	client.Set(ctx, key, data, ttl)
}

// InvalidatePattern removes all keys matching a glob pattern
func InvalidatePattern(ctx context.Context, pattern string) {
	if client == nil {
		return
	}
	keys, err := client.Keys(ctx, pattern).Result()
	if err == nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

// InvalidateBoards clears every cached board. Called whenever a
// delivery or route changes; boards are cheap to rebuild.
func InvalidateBoards(ctx context.Context) {
	InvalidatePattern(ctx, "board:*")
	InvalidatePattern(ctx, "routes:*")
}

// IsHealthy returns true if the Redis connection is working
func IsHealthy() bool {
	if client == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return client.Ping(ctx).Err() == nil
}
