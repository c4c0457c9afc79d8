// Package service owns the registration unit of work: allocate a sequence,
// generate the UBRN, persist the record. The three steps either all complete
// or the caller gets an error and no UBRN; a UBRN is never handed out for a
// record that did not persist.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"ebirth/internal/platform/metrics"
	"ebirth/internal/registry/models"
	"ebirth/internal/registry/store"
	"ebirth/internal/sms"
	"ebirth/internal/ubrn"
	dErrors "ebirth/pkg/domain-errors"
	audit "ebirth/pkg/platform/audit"
	"ebirth/pkg/platform/sentinel"
)

// AuditPublisher is the slice of the audit publisher the service needs.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	store    store.Store
	notifier sms.Notifier
	auditPub AuditPublisher
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
	now      func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithNotifier(notifier sms.Notifier) Option {
	return func(s *Service) { s.notifier = notifier }
}

func WithAuditPublisher(pub AuditPublisher) Option {
	return func(s *Service) { s.auditPub = pub }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock fixes the service's notion of now; tests only.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(st store.Store, opts ...Option) (*Service, error) {
	if st == nil {
		return nil, fmt.Errorf("registration store is required")
	}
	svc := &Service{
		store:  st,
		logger: slog.Default(),
		tracer: otel.Tracer("ebirth/internal/registry/service"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Register completes a draft registration. On success the record is
// persisted under its new UBRN, the audit trail has a compliance event, and
// the contact number has been notified. SMS failures are logged, never
// returned: the registration stands.
func (s *Service) Register(ctx context.Context, record *models.BirthRecord) (ubrn.UBRN, error) {
	ctx, span := s.tracer.Start(ctx, "registry.Register",
		trace.WithAttributes(
			attribute.String("region", record.RegionCode),
			attribute.String("district", record.DistrictCode),
		))
	defer span.End()

	if err := validateDraft(record); err != nil {
		return "", err
	}

	now := s.now().UTC()
	record.RegisteredAt = now
	if record.Status == "" {
		record.Status = models.StatusProvisional
	}

	seq, err := s.store.NextSequence(ctx, record.RegionCode, record.DistrictCode, now)
	if err != nil {
		if errors.Is(err, sentinel.ErrExhausted) {
			s.metrics.IncSequenceExhausted()
			s.emitAudit(ctx, audit.Event{
				Category:     audit.CategoryOperations,
				Action:       string(audit.EventSequenceExhausted),
				RegionCode:   record.RegionCode,
				DistrictCode: record.DistrictCode,
			})
			return "", dErrors.Wrap(err, dErrors.CodeUnavailable, "daily sequence range exhausted")
		}
		return "", dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to allocate sequence")
	}

	u, err := ubrn.Generate(record.RegionCode, record.DistrictCode, now, seq)
	if err != nil {
		// Components were validated above; a generate failure means the
		// reference tables and the store disagree.
		return "", dErrors.Wrap(err, dErrors.CodeInvariantViolation, "failed to generate UBRN")
	}

	if err := s.store.Save(ctx, u, record); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return "", dErrors.Wrap(err, dErrors.CodeInvariantViolation, "UBRN already exists")
		}
		return "", dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to persist registration")
	}

	s.metrics.IncRegistration(flowLabel(record))
	s.emitAudit(ctx, audit.Event{
		Category:     audit.CategoryCompliance,
		Action:       string(audit.EventBirthRegistered),
		UBRN:         u.String(),
		RegionCode:   record.RegionCode,
		DistrictCode: record.DistrictCode,
		Flow:         flowLabel(record),
		MSISDNHash:   audit.HashPII(record.ContactPhone),
	})
	s.notify(ctx, record, u)

	return u, nil
}

// Verify checks a candidate UBRN locally first, then looks it up. Structural
// and checksum failures return the codec's *ubrn.Error without ever touching
// the store.
func (s *Service) Verify(ctx context.Context, candidate string) (*models.BirthRecord, error) {
	ctx, span := s.tracer.Start(ctx, "registry.Verify")
	defer span.End()

	if err := ubrn.Verify(candidate); err != nil {
		var ue *ubrn.Error
		if errors.As(err, &ue) {
			s.metrics.IncVerification(string(ue.Kind))
			s.emitAudit(ctx, audit.Event{
				Category: audit.CategoryOperations,
				Action:   string(audit.EventVerificationFailed),
				Reason:   string(ue.Kind),
			})
		}
		return nil, err
	}

	u := ubrn.UBRN(strings.ToUpper(strings.TrimSpace(candidate)))
	record, err := s.store.Find(ctx, u)
	if errors.Is(err, sentinel.ErrNotFound) {
		s.metrics.IncVerification("not_found")
		s.emitAudit(ctx, audit.Event{
			Category: audit.CategoryOperations,
			Action:   string(audit.EventVerificationNotFound),
			UBRN:     u.String(),
		})
		return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "registration not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to look up registration")
	}

	s.metrics.IncVerification("found")
	s.emitAudit(ctx, audit.Event{
		Category: audit.CategoryOperations,
		Action:   string(audit.EventVerificationOK),
		UBRN:     u.String(),
	})
	return record, nil
}

func validateDraft(record *models.BirthRecord) error {
	switch {
	case record.ChildName == "":
		return dErrors.New(dErrors.CodeInvalidInput, "child name is required")
	case record.DateOfBirth.IsZero():
		return dErrors.New(dErrors.CodeInvalidInput, "date of birth is required")
	case record.Sex != models.SexMale && record.Sex != models.SexFemale:
		return dErrors.New(dErrors.CodeInvalidInput, "sex is required")
	case record.MotherName == "" || record.MotherNIN == "":
		return dErrors.New(dErrors.CodeInvalidInput, "mother details are required")
	case record.ContactPhone == "":
		return dErrors.New(dErrors.CodeInvalidInput, "contact phone is required")
	case (record.FatherName == "") != (record.FatherNIN == ""):
		return dErrors.New(dErrors.CodeInvalidInput, "father name and NIN must be supplied together")
	case record.RegionCode == "" || record.DistrictCode == "":
		return dErrors.New(dErrors.CodeInvalidInput, "administrative codes are required")
	}
	return nil
}

func flowLabel(record *models.BirthRecord) string {
	if record.RegisteredBy != "" {
		return "health_worker"
	}
	return "parent"
}

func (s *Service) notify(ctx context.Context, record *models.BirthRecord, u ubrn.UBRN) {
	if s.notifier == nil {
		return
	}
	var msg string
	if record.RegisteredBy != "" {
		msg = fmt.Sprintf("The birth of %s has been registered by a health worker. Your UBRN is %s. Keep this safe.",
			record.ChildName, u)
	} else {
		msg = fmt.Sprintf("Congratulations! The birth of %s is registered. Your UBRN is %s. Keep this safe.",
			record.ChildName, u)
	}
	if err := s.notifier.Notify(ctx, record.ContactPhone, msg); err != nil {
		s.logger.WarnContext(ctx, "sms notification failed",
			"error", err.Error(),
			"ubrn", u.String(),
		)
	}
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditPub == nil {
		return
	}
	if err := s.auditPub.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "error", err.Error(), "action", event.Action)
	}
}
