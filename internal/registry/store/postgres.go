package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"ebirth/internal/registry/models"
	"ebirth/internal/ubrn"
	"ebirth/pkg/platform/sentinel"
)

// Postgres persists registrations in PostgreSQL. Sequence allocation is a
// single atomic upsert-returning statement, so concurrent callers for the
// same (region, district, day) key always see distinct values.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const schema = `
CREATE TABLE IF NOT EXISTS birth_sequences (
	region_code   TEXT NOT NULL,
	district_code TEXT NOT NULL,
	day           DATE NOT NULL,
	value         INTEGER NOT NULL,
	PRIMARY KEY (region_code, district_code, day)
);

CREATE TABLE IF NOT EXISTS birth_records (
	ubrn          TEXT PRIMARY KEY,
	child_name    TEXT NOT NULL,
	date_of_birth DATE NOT NULL,
	sex           TEXT NOT NULL,
	place_name    TEXT NOT NULL,
	mother_name   TEXT NOT NULL,
	mother_nin    TEXT NOT NULL,
	father_name   TEXT NOT NULL DEFAULT '',
	father_nin    TEXT NOT NULL DEFAULT '',
	contact_phone TEXT NOT NULL,
	region_code   TEXT NOT NULL,
	district_code TEXT NOT NULL,
	registered_by TEXT NOT NULL DEFAULT '',
	status        TEXT NOT NULL,
	registered_at TIMESTAMPTZ NOT NULL
);
`

// EnsureSchema creates the tables when they do not exist yet. Called from
// cmd/server on startup and from integration tests.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *Postgres) NextSequence(ctx context.Context, regionCode, districtCode string, day time.Time) (int, error) {
	const q = `
		INSERT INTO birth_sequences (region_code, district_code, day, value)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (region_code, district_code, day)
		DO UPDATE SET value = birth_sequences.value + 1
		RETURNING value`

	var value int
	err := s.pool.QueryRow(ctx, q, regionCode, districtCode, day).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("allocate sequence: %w", err)
	}
	if value > ubrn.SequenceMax {
		return 0, sentinel.ErrExhausted
	}
	return value, nil
}

func (s *Postgres) Save(ctx context.Context, u ubrn.UBRN, record *models.BirthRecord) error {
	const q = `
		INSERT INTO birth_records (
			ubrn, child_name, date_of_birth, sex, place_name,
			mother_name, mother_nin, father_name, father_nin,
			contact_phone, region_code, district_code, registered_by,
			status, registered_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := s.pool.Exec(ctx, q,
		string(u), record.ChildName, record.DateOfBirth, string(record.Sex), record.PlaceName,
		record.MotherName, record.MotherNIN, record.FatherName, record.FatherNIN,
		record.ContactPhone, record.RegionCode, record.DistrictCode, record.RegisteredBy,
		string(record.Status), record.RegisteredAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("save record: %w", err)
	}
	return nil
}

func (s *Postgres) Find(ctx context.Context, u ubrn.UBRN) (*models.BirthRecord, error) {
	const q = `
		SELECT child_name, date_of_birth, sex, place_name,
		       mother_name, mother_nin, father_name, father_nin,
		       contact_phone, region_code, district_code, registered_by,
		       status, registered_at
		FROM birth_records WHERE ubrn = $1`

	var record models.BirthRecord
	var sex, status string
	err := s.pool.QueryRow(ctx, q, string(u)).Scan(
		&record.ChildName, &record.DateOfBirth, &sex, &record.PlaceName,
		&record.MotherName, &record.MotherNIN, &record.FatherName, &record.FatherNIN,
		&record.ContactPhone, &record.RegionCode, &record.DistrictCode, &record.RegisteredBy,
		&status, &record.RegisteredAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find record: %w", err)
	}
	record.Sex = models.Sex(sex)
	record.Status = models.Status(status)
	return &record, nil
}
