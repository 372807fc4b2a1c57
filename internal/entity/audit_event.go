package entity

import (
	"time"

	"github.com/google/uuid"
)

// AuditKind names a diagnostic raised about a record.
type AuditKind string

const (
	AuditEnrollmentHasD AuditKind = "enrollment_contains_d"
	AuditUnknownToken   AuditKind = "unknown_status_token"
	AuditMalformed      AuditKind = "malformed_record"
)

// AuditEvent is a structured diagnostic keyed by run and record.
type AuditEvent struct {
	RunID        uuid.UUID `json:"run_id"`
	Seq          int       `json:"seq"`
	Kind         AuditKind `json:"kind"`
	EnrollmentID string    `json:"enrollment_id"`
	Name         string    `json:"name"`
	Token        string    `json:"token"`
	Detail       string    `json:"detail,omitempty"`
	At           time.Time `json:"at"`
}
