package entity

import (
	"time"

	"github.com/google/uuid"
)

// ExtractRun is one pipeline run as recorded in the audit store.
type ExtractRun struct {
	ID           uuid.UUID  `json:"id"`
	SourceName   string     `json:"source_name"`
	ContentHash  string     `json:"content_hash"`
	Method       *string    `json:"method,omitempty"`
	Pages        int        `json:"pages"`
	Status       string     `json:"status"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	Total        int        `json:"total"`
	Passed       int        `json:"passed"`
	Failed       int        `json:"failed"`
	Absent       int        `json:"absent"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}
