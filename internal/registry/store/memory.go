package store

import (
	"context"
	"sync"
	"time"

	"ebirth/internal/registry/models"
	"ebirth/internal/ubrn"
	"ebirth/pkg/platform/sentinel"
)

// InMemory keeps registrations and sequence counters in process memory.
// Default backend for development and tests; postgres serves production.
type InMemory struct {
	mu        sync.Mutex
	sequences map[string]int
	records   map[ubrn.UBRN]*models.BirthRecord
}

func NewInMemory() *InMemory {
	return &InMemory{
		sequences: make(map[string]int),
		records:   make(map[ubrn.UBRN]*models.BirthRecord),
	}
}

func (s *InMemory) NextSequence(ctx context.Context, regionCode, districtCode string, day time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := sequenceKey(regionCode, districtCode, day)
	next := s.sequences[key] + 1
	if next > ubrn.SequenceMax {
		return 0, sentinel.ErrExhausted
	}
	s.sequences[key] = next
	return next, nil
}

func (s *InMemory) Save(ctx context.Context, u ubrn.UBRN, record *models.BirthRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[u]; exists {
		return sentinel.ErrConflict
	}
	clone := *record
	s.records[u] = &clone
	return nil
}

func (s *InMemory) Find(ctx context.Context, u ubrn.UBRN) (*models.BirthRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[u]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *record
	return &clone, nil
}
