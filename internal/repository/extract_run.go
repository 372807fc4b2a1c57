package repository

import (
	"context"
	stdsql "database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/marks-tracker/constants"
	"github.com/joseph-ayodele/marks-tracker/internal/common"
	"github.com/joseph-ayodele/marks-tracker/internal/entity"
)

const tableExtractRuns = "extract_runs"

var extractRunColumns = []string{
	"id", "source_name", "content_hash", "method", "pages", "status", "error_message",
	"total", "passed", "failed", "absent", "started_at", "finished_at",
}

// RunCounts are the per-partition totals written when a run succeeds.
type RunCounts struct {
	Method string
	Pages  int
	Total  int
	Passed int
	Failed int
	Absent int
}

type ExtractRunRepository interface {
	Start(ctx context.Context, id uuid.UUID, sourceName, contentHash string) (*entity.ExtractRun, error)
	FinishSuccess(ctx context.Context, id uuid.UUID, counts RunCounts) error
	FinishFailure(ctx context.Context, id uuid.UUID, message string) error
	Get(ctx context.Context, id uuid.UUID) (*entity.ExtractRun, error)
	ListRecent(ctx context.Context, limit int) ([]*entity.ExtractRun, error)
}

type extractRunRepo struct {
	db  *DB
	log *slog.Logger
}

func NewExtractRunRepository(db *DB, log *slog.Logger) ExtractRunRepository {
	return &extractRunRepo{db: db, log: log}
}

func (r *extractRunRepo) sql() *entsql.DialectBuilder { return entsql.Dialect(r.db.Dialect()) }

func (r *extractRunRepo) Start(ctx context.Context, id uuid.UUID, sourceName, contentHash string) (*entity.ExtractRun, error) {
	run := &entity.ExtractRun{
		ID:          id,
		SourceName:  sourceName,
		ContentHash: contentHash,
		Status:      string(constants.JobStatusRunning),
		StartedAt:   time.Now().UTC().Truncate(time.Millisecond),
	}
	q, args := r.sql().Insert(tableExtractRuns).
		Columns("id", "source_name", "content_hash", "status", "started_at").
		Values(id.String(), sourceName, contentHash, run.Status, toMillis(run.StartedAt)).
		Query()
	if err := r.db.Driver.Exec(ctx, q, args, nil); err != nil {
		r.log.Error("extract_run start failed", "run_id", id, "err", err)
		return nil, fmt.Errorf("%w: insert run: %w", common.ErrDatabase, err)
	}
	r.log.Info("extract_run started", "run_id", id, "source", sourceName)
	return run, nil
}

func (r *extractRunRepo) FinishSuccess(ctx context.Context, id uuid.UUID, c RunCounts) error {
	q, args := r.sql().Update(tableExtractRuns).
		Set("status", string(constants.JobStatusOK)).
		Set("method", c.Method).
		Set("pages", c.Pages).
		Set("total", c.Total).
		Set("passed", c.Passed).
		Set("failed", c.Failed).
		Set("absent", c.Absent).
		Set("finished_at", toMillis(time.Now())).
		Where(entsql.EQ("id", id.String())).
		Query()
	if err := r.exec(ctx, q, args); err != nil {
		r.log.Error("extract_run finish(OK) failed", "run_id", id, "err", err)
		return err
	}
	r.log.Info("extract_run finished (OK)", "run_id", id, "method", c.Method, "total", c.Total)
	return nil
}

func (r *extractRunRepo) FinishFailure(ctx context.Context, id uuid.UUID, message string) error {
	q, args := r.sql().Update(tableExtractRuns).
		Set("status", string(constants.JobStatusFailed)).
		Set("error_message", message).
		Set("finished_at", toMillis(time.Now())).
		Where(entsql.EQ("id", id.String())).
		Query()
	if err := r.exec(ctx, q, args); err != nil {
		r.log.Error("extract_run finish(FAILED) failed", "run_id", id, "err", err)
		return err
	}
	r.log.Warn("extract_run finished (FAILED)", "run_id", id, "error", message)
	return nil
}

// exec runs an update and reports a missing row as ErrInvalidInput.
func (r *extractRunRepo) exec(ctx context.Context, q string, args []any) error {
	var res stdsql.Result
	if err := r.db.Driver.Exec(ctx, q, args, &res); err != nil {
		return fmt.Errorf("%w: update run: %w", common.ErrDatabase, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: unknown run", common.ErrInvalidInput)
	}
	return nil
}

func (r *extractRunRepo) Get(ctx context.Context, id uuid.UUID) (*entity.ExtractRun, error) {
	q, args := r.sql().Select(extractRunColumns...).
		From(entsql.Table(tableExtractRuns)).
		Where(entsql.EQ("id", id.String())).
		Query()
	runs, err := r.query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("%w: run %s not found", common.ErrInvalidInput, id)
	}
	return runs[0], nil
}

func (r *extractRunRepo) ListRecent(ctx context.Context, limit int) ([]*entity.ExtractRun, error) {
	if limit <= 0 {
		limit = 20
	}
	q, args := r.sql().Select(extractRunColumns...).
		From(entsql.Table(tableExtractRuns)).
		OrderBy(entsql.Desc("started_at")).
		Limit(limit).
		Query()
	return r.query(ctx, q, args)
}

func (r *extractRunRepo) query(ctx context.Context, q string, args []any) ([]*entity.ExtractRun, error) {
	var rows entsql.Rows
	if err := r.db.Driver.Query(ctx, q, args, &rows); err != nil {
		return nil, fmt.Errorf("%w: select runs: %w", common.ErrDatabase, err)
	}
	defer rows.Close()

	var out []*entity.ExtractRun
	for rows.Next() {
		var (
			id, source, hash, status string
			method, errMsg           stdsql.NullString
			pages, total             int
			passed, failed, absent   int
			started                  int64
			finished                 stdsql.NullInt64
		)
		if err := rows.Scan(&id, &source, &hash, &method, &pages, &status, &errMsg,
			&total, &passed, &failed, &absent, &started, &finished); err != nil {
			return nil, fmt.Errorf("%w: scan run: %w", common.ErrDatabase, err)
		}
		uid, err := uuid.Parse(id)
		if err != nil {
			return nil, errors.Join(common.ErrDatabase, err)
		}
		run := &entity.ExtractRun{
			ID:          uid,
			SourceName:  source,
			ContentHash: hash,
			Pages:       pages,
			Status:      status,
			Total:       total,
			Passed:      passed,
			Failed:      failed,
			Absent:      absent,
			StartedAt:   fromMillis(started),
		}
		if method.Valid {
			run.Method = &method.String
		}
		if errMsg.Valid {
			run.ErrorMessage = &errMsg.String
		}
		if finished.Valid {
			t := fromMillis(finished.Int64)
			run.FinishedAt = &t
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate runs: %w", common.ErrDatabase, err)
	}
	return out, nil
}
