// Package service turns one USSD callback into one response. It replays the
// session's accumulated input through the menu engine and executes whatever
// terminal action the engine returns.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"ebirth/internal/platform/metrics"
	"ebirth/internal/registry/models"
	"ebirth/internal/ubrn"
	"ebirth/internal/ussd/engine"
	"ebirth/internal/validate"
	dErrors "ebirth/pkg/domain-errors"
	audit "ebirth/pkg/platform/audit"
)

// maxTokenLength bounds a single answer; aggregators cap USSD input well
// below this, so longer tokens are junk and are truncated, not rejected.
const maxTokenLength = 100

const (
	msgUnavailable = "Service temporarily unavailable. Please try again later. Your details were not saved."
	msgNotFound    = "No registration found for this UBRN. Check the number and try again, or visit a Registry office."
)

// Registrar is the slice of the registry service the USSD layer needs.
type Registrar interface {
	Register(ctx context.Context, record *models.BirthRecord) (ubrn.UBRN, error)
	Verify(ctx context.Context, candidate string) (*models.BirthRecord, error)
}

// AuditPublisher records session-level events the registry never sees, such
// as a caller cancelling at the confirmation prompt.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// TurnRequest is one aggregator callback: the session so far.
type TurnRequest struct {
	SessionID   string
	PhoneNumber string

	// Text is the aggregator-accumulated input, answers joined with "*".
	Text string
}

// TurnResponse is the text to show plus whether the session stays open.
type TurnResponse struct {
	Text     string
	Continue bool
}

type Service struct {
	engine    *engine.Engine
	registrar Registrar
	auditPub  AuditPublisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditPublisher(pub AuditPublisher) Option {
	return func(s *Service) { s.auditPub = pub }
}

func New(eng *engine.Engine, registrar Registrar, opts ...Option) (*Service, error) {
	if eng == nil {
		return nil, fmt.Errorf("menu engine is required")
	}
	if registrar == nil {
		return nil, fmt.Errorf("registrar is required")
	}
	svc := &Service{
		engine:    eng,
		registrar: registrar,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Turn handles one callback. The returned error is reserved for transport
// failures; user-facing problems come back as terminal response text.
func (s *Service) Turn(ctx context.Context, req TurnRequest) (TurnResponse, error) {
	s.metrics.IncTurn()

	answers := splitAnswers(req.Text)
	out := s.engine.Replay(req.PhoneNumber, answers)

	if out.FieldErr != nil {
		s.metrics.IncValidationFailure(string(out.FieldErr.Kind))
		s.logger.InfoContext(ctx, "answer rejected",
			"session_id", req.SessionID,
			"state", string(out.State),
			"kind", string(out.FieldErr.Kind),
		)
	}

	switch out.Action {
	case engine.ActionRegister:
		return s.register(ctx, req, out)
	case engine.ActionVerify:
		return s.verify(ctx, req, out)
	}

	if out.State == engine.StateParentCancelled || out.State == engine.StateHWCancelled {
		s.emitAudit(ctx, audit.Event{
			Category:   audit.CategoryOperations,
			Action:     string(audit.EventRegistrationCancelled),
			Flow:       string(out.Draft.Flow),
			SessionID:  req.SessionID,
			MSISDNHash: audit.HashPII(req.PhoneNumber),
		})
	}

	return TurnResponse{Text: out.Prompt, Continue: !out.Terminal}, nil
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditPub == nil {
		return
	}
	if err := s.auditPub.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "error", err.Error(), "action", event.Action)
	}
}

func (s *Service) register(ctx context.Context, req TurnRequest, out engine.Outcome) (TurnResponse, error) {
	record := out.Draft.Record()
	u, err := s.registrar.Register(ctx, record)
	if err != nil {
		s.logger.ErrorContext(ctx, "registration failed",
			"session_id", req.SessionID,
			"flow", string(out.Draft.Flow),
			"error", err.Error(),
		)
		return TurnResponse{Text: msgUnavailable}, nil
	}

	text := fmt.Sprintf("Thank you! %s is provisionally registered.\nUBRN: %s\nAn SMS confirmation has been sent to %s.",
		record.ChildName, u, record.ContactPhone)
	return TurnResponse{Text: text}, nil
}

func (s *Service) verify(ctx context.Context, req TurnRequest, out engine.Outcome) (TurnResponse, error) {
	record, err := s.registrar.Verify(ctx, out.VerifyCandidate)
	if err != nil {
		var ue *ubrn.Error
		switch {
		case errors.As(err, &ue):
			return TurnResponse{Text: "INVALID UBRN: " + ue.Message}, nil
		case dErrors.HasCode(err, dErrors.CodeNotFound):
			return TurnResponse{Text: msgNotFound}, nil
		}
		s.logger.ErrorContext(ctx, "verification failed",
			"session_id", req.SessionID,
			"error", err.Error(),
		)
		return TurnResponse{Text: msgUnavailable}, nil
	}

	text := fmt.Sprintf("VALID UBRN\nName: %s\nDOB: %s\nStatus: %s",
		record.ChildName, record.DateOfBirth.Format(validate.DateLayout), record.Status)
	return TurnResponse{Text: text}, nil
}

// splitAnswers breaks the aggregator's "*"-joined input into answers. An
// empty text means the session just opened and no answer has been given.
func splitAnswers(text string) []string {
	if text == "" {
		return nil
	}
	parts := strings.Split(text, "*")
	for i, p := range parts {
		if len(p) > maxTokenLength {
			parts[i] = p[:maxTokenLength]
		}
	}
	return parts
}
