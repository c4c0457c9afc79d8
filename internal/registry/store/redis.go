package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ebirth/internal/ubrn"
	"ebirth/pkg/platform/sentinel"
)

// sequenceKeyTTL keeps daily counters around long enough to survive clock
// skew between replicas, then lets redis reclaim them.
const sequenceKeyTTL = 48 * time.Hour

// redisSequences overlays atomic redis INCR allocation on another Store so
// multiple replicas share one counter space. Save and Find pass through.
type redisSequences struct {
	Store
	rdb *redis.Client
}

// WithRedisSequences returns base with its NextSequence served by redis.
func WithRedisSequences(base Store, rdb *redis.Client) Store {
	return &redisSequences{Store: base, rdb: rdb}
}

func (s *redisSequences) NextSequence(ctx context.Context, regionCode, districtCode string, day time.Time) (int, error) {
	key := "ebirth:seq:" + sequenceKey(regionCode, districtCode, day)

	value, err := s.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis sequence: %w: %w", sentinel.ErrUnavailable, err)
	}
	if value == 1 {
		// Best effort; an un-expired counter only wastes a key.
		s.rdb.Expire(ctx, key, sequenceKeyTTL)
	}
	if value > ubrn.SequenceMax {
		return 0, sentinel.ErrExhausted
	}
	return int(value), nil
}
