//go:build integration

package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"ebirth/internal/registry/models"
	"ebirth/internal/registry/store"
	"ebirth/pkg/platform/sentinel"
	"ebirth/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	store *store.Postgres
	day   time.Time
}

func TestPostgresStoreSuite(t *testing.T) {
	pg := containers.NewPostgresContainer(t)

	s := &PostgresStoreSuite{
		store: store.NewPostgres(pg.Pool),
		day:   time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.store.EnsureSchema(context.Background()))
	suite.Run(t, s)
}

func (s *PostgresStoreSuite) record() *models.BirthRecord {
	return &models.BirthRecord{
		ChildName:    "Ama Mensah",
		DateOfBirth:  time.Date(1995, 3, 10, 0, 0, 0, 0, time.UTC),
		Sex:          models.SexFemale,
		PlaceName:    "Accra Metropolitan",
		MotherName:   "Efua Mensah",
		MotherNIN:    "GHA-123456789-0",
		ContactPhone: "+233241234567",
		RegionCode:   "GA",
		DistrictCode: "01",
		Status:       models.StatusProvisional,
		RegisteredAt: time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC),
	}
}

func (s *PostgresStoreSuite) TestNextSequenceIsMonotonicPerKey() {
	ctx := context.Background()

	first, err := s.store.NextSequence(ctx, "AS", "01", s.day)
	s.Require().NoError(err)
	second, err := s.store.NextSequence(ctx, "AS", "01", s.day)
	s.Require().NoError(err)
	s.Equal(first+1, second)

	// A different district starts its own counter.
	other, err := s.store.NextSequence(ctx, "AS", "02", s.day)
	s.Require().NoError(err)
	s.Equal(1, other)
}

func (s *PostgresStoreSuite) TestConcurrentAllocationsAreDistinct() {
	ctx := context.Background()
	const workers = 50

	var (
		mu     sync.Mutex
		values = make(map[int]bool, workers)
		wg     sync.WaitGroup
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seq, err := s.store.NextSequence(ctx, "WR", "01", s.day)
			s.NoError(err)
			mu.Lock()
			values[seq] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	s.Len(values, workers, "every allocation must be unique")
}

func (s *PostgresStoreSuite) TestSaveAndFindRoundTrip() {
	ctx := context.Background()
	record := s.record()
	record.FatherName = "Yaw Mensah"
	record.FatherNIN = "GHA-987654321-1"

	s.Require().NoError(s.store.Save(ctx, "GA0125081000017", record))

	found, err := s.store.Find(ctx, "GA0125081000017")
	s.Require().NoError(err)
	s.Equal(record.ChildName, found.ChildName)
	s.Equal(record.FatherNIN, found.FatherNIN)
	s.True(record.DateOfBirth.Equal(found.DateOfBirth))
	s.Equal(models.StatusProvisional, found.Status)
}

func (s *PostgresStoreSuite) TestDuplicateUBRNIsConflict() {
	ctx := context.Background()

	s.Require().NoError(s.store.Save(ctx, "GA0225081000018", s.record()))
	err := s.store.Save(ctx, "GA0225081000018", s.record())

	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestFindUnknownUBRNIsNotFound() {
	_, err := s.store.Find(context.Background(), "NR0125081000011")
	s.ErrorIs(err, sentinel.ErrNotFound)
}
