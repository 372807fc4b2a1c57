package repository

import (
	"context"
	"fmt"
	"log/slog"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/marks-tracker/internal/common"
	"github.com/joseph-ayodele/marks-tracker/internal/entity"
)

const tableAuditEvents = "audit_events"

// AuditEventRepository stores record diagnostics. It satisfies audit.Sink.
type AuditEventRepository interface {
	Record(ctx context.Context, events []entity.AuditEvent) error
	ListByRun(ctx context.Context, runID uuid.UUID) ([]entity.AuditEvent, error)
}

type auditEventRepo struct {
	db  *DB
	log *slog.Logger
}

func NewAuditEventRepository(db *DB, log *slog.Logger) AuditEventRepository {
	return &auditEventRepo{db: db, log: log}
}

func (r *auditEventRepo) Record(ctx context.Context, events []entity.AuditEvent) error {
	if len(events) == 0 {
		return nil
	}
	ins := entsql.Dialect(r.db.Dialect()).Insert(tableAuditEvents).
		Columns("run_id", "seq", "kind", "enrollment_id", "name", "token", "detail", "created_at")
	for _, ev := range events {
		ins.Values(ev.RunID.String(), ev.Seq, string(ev.Kind), ev.EnrollmentID, ev.Name, ev.Token, ev.Detail, toMillis(ev.At))
	}
	q, args := ins.Query()
	if err := r.db.Driver.Exec(ctx, q, args, nil); err != nil {
		r.log.Error("audit_events insert failed", "run_id", events[0].RunID, "count", len(events), "err", err)
		return fmt.Errorf("%w: insert audit events: %w", common.ErrDatabase, err)
	}
	r.log.Debug("audit_events recorded", "run_id", events[0].RunID, "count", len(events))
	return nil
}

func (r *auditEventRepo) ListByRun(ctx context.Context, runID uuid.UUID) ([]entity.AuditEvent, error) {
	q, args := entsql.Dialect(r.db.Dialect()).
		Select("seq", "kind", "enrollment_id", "name", "token", "detail", "created_at").
		From(entsql.Table(tableAuditEvents)).
		Where(entsql.EQ("run_id", runID.String())).
		OrderBy("seq", "id").
		Query()
	var rows entsql.Rows
	if err := r.db.Driver.Query(ctx, q, args, &rows); err != nil {
		return nil, fmt.Errorf("%w: select audit events: %w", common.ErrDatabase, err)
	}
	defer rows.Close()

	var out []entity.AuditEvent
	for rows.Next() {
		ev := entity.AuditEvent{RunID: runID}
		var (
			kind string
			at   int64
		)
		if err := rows.Scan(&ev.Seq, &kind, &ev.EnrollmentID, &ev.Name, &ev.Token, &ev.Detail, &at); err != nil {
			return nil, fmt.Errorf("%w: scan audit event: %w", common.ErrDatabase, err)
		}
		ev.Kind = entity.AuditKind(kind)
		ev.At = fromMillis(at)
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate audit events: %w", common.ErrDatabase, err)
	}
	return out, nil
}
