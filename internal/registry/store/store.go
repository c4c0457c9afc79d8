// Package store defines the registration store contract and its backends.
// The core only ever calls the three contract operations; which backend
// serves them is wiring in cmd/server.
package store

import (
	"context"
	"fmt"
	"time"

	"ebirth/internal/registry/models"
	"ebirth/internal/ubrn"
)

// Store is the registration persistence contract.
//
// NextSequence must never hand out the same number twice for one
// (region, district, day) key, whatever the backing; allocation past
// ubrn.SequenceMax fails with sentinel.ErrExhausted.
type Store interface {
	NextSequence(ctx context.Context, regionCode, districtCode string, day time.Time) (int, error)
	Save(ctx context.Context, u ubrn.UBRN, record *models.BirthRecord) error
	Find(ctx context.Context, u ubrn.UBRN) (*models.BirthRecord, error)
}

// sequenceKey collapses a (region, district, day) triple into the counter key
// shared by the memory and redis backends.
func sequenceKey(regionCode, districtCode string, day time.Time) string {
	return fmt.Sprintf("%s:%s:%s", regionCode, districtCode, day.Format("060102"))
}
