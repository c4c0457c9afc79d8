package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// EventCategory classifies audit events by their primary purpose. Civil
// registration events carry legal significance and long retention;
// operational events exist for debugging and can be sampled.
type EventCategory string

const (
	CategoryCompliance EventCategory = "compliance"
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        string        `json:"id"`
	Category  EventCategory `json:"category"`
	Timestamp time.Time     `json:"timestamp"`
	Action    string        `json:"action"`

	// UBRN of the affected registration, when one exists.
	UBRN         string `json:"ubrn,omitempty"`
	RegionCode   string `json:"region_code,omitempty"`
	DistrictCode string `json:"district_code,omitempty"`
	Flow         string `json:"flow,omitempty"`

	// MSISDNHash is a SHA-256 of the caller's phone number; raw numbers
	// never enter the audit trail.
	MSISDNHash string `json:"msisdn_hash,omitempty"`

	SessionID string `json:"session_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

type AuditEvent string

const (
	EventBirthRegistered       AuditEvent = "birth_registered"
	EventRegistrationCancelled AuditEvent = "registration_cancelled"
	EventVerificationOK        AuditEvent = "verification_ok"
	EventVerificationFailed    AuditEvent = "verification_failed"
	EventVerificationNotFound  AuditEvent = "verification_not_found"
	EventSequenceExhausted     AuditEvent = "sequence_exhausted"
)

// Appender receives finished audit events. Implemented by the in-memory
// store and the Kafka sink.
type Appender interface {
	Append(ctx context.Context, event Event) error
}

// HashPII hex-encodes a SHA-256 over a personally identifying value so the
// trail stays correlatable without storing the raw value.
func HashPII(value string) string {
	if value == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
