// Package audit turns per-record oddities into structured diagnostics. It
// reads classification output and never feeds back into it.
package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/marks-tracker/internal/core/classify"
	"github.com/joseph-ayodele/marks-tracker/internal/entity"
)

// Sink receives the diagnostics of one run.
type Sink interface {
	Record(ctx context.Context, events []entity.AuditEvent) error
}

// Inspect builds the events for a run: enrollment ids containing 'D' are
// flagged for manual review, records with an unrecognized token and records
// dropped as malformed are listed with what was read. unknownSheet names the
// report sheet that unrecognized records end up on; empty means no report.
func Inspect(runID uuid.UUID, p entity.Partitions, st classify.Stats, unknownSheet string) []entity.AuditEvent {
	now := time.Now().UTC()
	var out []entity.AuditEvent
	add := func(kind entity.AuditKind, r entity.StudentRecord, detail string) {
		out = append(out, entity.AuditEvent{
			RunID:        runID,
			Seq:          r.Seq,
			Kind:         kind,
			EnrollmentID: r.EnrollmentID,
			Name:         r.Name,
			Token:        r.Token,
			Detail:       detail,
			At:           now,
		})
	}

	for _, bucket := range [][]entity.StudentRecord{p.Passed, p.Failed, p.Absent, p.Unknown} {
		for _, r := range bucket {
			if strings.ContainsAny(r.EnrollmentID, "dD") {
				add(entity.AuditEnrollmentHasD, r, "enrollment id needs manual review")
			}
		}
	}
	for _, r := range p.Unknown {
		detail := fmt.Sprintf("token %q not recognized", r.Token)
		if unknownSheet != "" {
			detail = fmt.Sprintf("token %q not recognized, written to %q", r.Token, unknownSheet)
		}
		add(entity.AuditUnknownToken, r, detail)
	}
	for _, r := range st.Dropped {
		add(entity.AuditMalformed, r, "missing enrollment id or name")
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

// LogSink writes each event as a warning.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Record(ctx context.Context, events []entity.AuditEvent) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	for _, ev := range events {
		logger.WarnContext(ctx, "record flagged",
			"run_id", ev.RunID,
			"kind", ev.Kind,
			"seq", ev.Seq,
			"enrollment_id", ev.EnrollmentID,
			"name", ev.Name,
			"token", ev.Token,
			"detail", ev.Detail)
	}
	return nil
}

// MultiSink fans events out to every sink and joins their errors.
type MultiSink []Sink

func (m MultiSink) Record(ctx context.Context, events []entity.AuditEvent) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Record(ctx, events); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
