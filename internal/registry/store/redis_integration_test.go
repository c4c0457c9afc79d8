//go:build integration

package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"ebirth/internal/registry/store"
	"ebirth/internal/ubrn"
	"ebirth/pkg/platform/sentinel"
	"ebirth/pkg/testutil/containers"
)

type RedisSequencesSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store store.Store
	day   time.Time
}

func TestRedisSequencesSuite(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	suite.Run(t, &RedisSequencesSuite{
		redis: rc,
		store: store.WithRedisSequences(store.NewInMemory(), rc.Client),
		day:   time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC),
	})
}

func (s *RedisSequencesSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisSequencesSuite) TestAllocationIsMonotonic() {
	ctx := context.Background()

	for want := 1; want <= 5; want++ {
		got, err := s.store.NextSequence(ctx, "GA", "01", s.day)
		s.Require().NoError(err)
		s.Equal(want, got)
	}
}

func (s *RedisSequencesSuite) TestCountersAreIndependentPerDistrictAndDay() {
	ctx := context.Background()

	_, err := s.store.NextSequence(ctx, "GA", "01", s.day)
	s.Require().NoError(err)

	otherDistrict, err := s.store.NextSequence(ctx, "GA", "02", s.day)
	s.Require().NoError(err)
	s.Equal(1, otherDistrict)

	nextDay, err := s.store.NextSequence(ctx, "GA", "01", s.day.AddDate(0, 0, 1))
	s.Require().NoError(err)
	s.Equal(1, nextDay)
}

func (s *RedisSequencesSuite) TestConcurrentAllocationsAreDistinct() {
	ctx := context.Background()
	const workers = 100

	var (
		mu     sync.Mutex
		values = make(map[int]bool, workers)
		wg     sync.WaitGroup
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seq, err := s.store.NextSequence(ctx, "AS", "01", s.day)
			s.NoError(err)
			mu.Lock()
			values[seq] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	s.Len(values, workers)
}

func (s *RedisSequencesSuite) TestExhaustedCounterRefusesAllocation() {
	ctx := context.Background()

	key := "ebirth:seq:GA:01:" + s.day.Format("060102")
	s.Require().NoError(s.redis.Client.Set(ctx, key, ubrn.SequenceMax, 0).Err())

	_, err := s.store.NextSequence(ctx, "GA", "01", s.day)
	s.ErrorIs(err, sentinel.ErrExhausted)
}

func (s *RedisSequencesSuite) TestCounterKeyCarriesATTL() {
	ctx := context.Background()

	_, err := s.store.NextSequence(ctx, "VR", "01", s.day)
	s.Require().NoError(err)

	ttl, err := s.redis.Client.TTL(ctx, "ebirth:seq:VR:01:"+s.day.Format("060102")).Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))
}
