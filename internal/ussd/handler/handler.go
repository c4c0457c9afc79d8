// Package handler adapts aggregator USSD callbacks to the turn service. The
// aggregator POSTs a form per turn and expects a plain-text body prefixed
// with CON (keep the session open) or END (close it).
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"ebirth/internal/platform/metrics"
	"ebirth/internal/platform/middleware"
	ussd "ebirth/internal/ussd/service"
)

// Service defines the interface for handling one USSD turn.
type Service interface {
	Turn(ctx context.Context, req ussd.TurnRequest) (ussd.TurnResponse, error)
}

// Handler handles the aggregator callback endpoint.
type Handler struct {
	logger  *slog.Logger
	ussd    Service
	metrics *metrics.Metrics
}

// New creates a new USSD Handler.
func New(svc Service, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		logger:  logger,
		ussd:    svc,
		metrics: m,
	}
}

// Register registers the callback route with the chi router.
func (h *Handler) Register(r chi.Router) {
	callbackRouter := chi.NewRouter()
	callbackRouter.Use(middleware.Recovery(h.logger))
	callbackRouter.Use(middleware.RequestID)
	callbackRouter.Use(middleware.Logger(h.logger))
	callbackRouter.Use(middleware.Latency(h.metrics))
	callbackRouter.Post("/ussd/callback", h.handleCallback)

	r.Mount("/", callbackRouter)
}

func (h *Handler) handleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	if err := r.ParseForm(); err != nil {
		h.logger.WarnContext(ctx, "malformed callback form",
			"request_id", requestID,
			"error", err.Error(),
		)
		writeEnd(w, "Service temporarily unavailable. Please try again later.")
		return
	}

	req := ussd.TurnRequest{
		SessionID:   r.PostFormValue("sessionId"),
		PhoneNumber: r.PostFormValue("phoneNumber"),
		Text:        r.PostFormValue("text"),
	}
	if req.SessionID == "" || req.PhoneNumber == "" {
		h.logger.WarnContext(ctx, "callback missing session fields", "request_id", requestID)
		writeEnd(w, "Service temporarily unavailable. Please try again later.")
		return
	}

	turnCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	resp, err := h.ussd.Turn(turnCtx, req)
	if err != nil {
		h.logger.ErrorContext(ctx, "turn failed",
			"request_id", requestID,
			"session_id", req.SessionID,
			"error", err.Error(),
		)
		writeEnd(w, "Service temporarily unavailable. Please try again later.")
		return
	}

	if resp.Continue {
		writeText(w, "CON "+resp.Text)
		return
	}
	writeEnd(w, resp.Text)
}

func writeEnd(w http.ResponseWriter, text string) {
	writeText(w, "END "+text)
}

func writeText(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}
