// Package app wires the pipeline from configuration for the commands.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/marks-tracker/internal/common"
	"github.com/joseph-ayodele/marks-tracker/internal/core"
	"github.com/joseph-ayodele/marks-tracker/internal/core/audit"
	"github.com/joseph-ayodele/marks-tracker/internal/core/extract"
	"github.com/joseph-ayodele/marks-tracker/internal/core/ocr"
	"github.com/joseph-ayodele/marks-tracker/internal/export"
	repo "github.com/joseph-ayodele/marks-tracker/internal/repository"
)

// App holds the wired pipeline and the audit store, when one is configured.
type App struct {
	Processor *core.Processor
	Extractor *ocr.Extractor
	DB        *repo.DB
	logger    *slog.Logger
}

// New builds the processor described by cfg. With an audit DSN the store is
// opened and migrated, runs are recorded, and diagnostics go to both the log
// and the store.
func New(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*App, error) {
	a := &App{logger: logger}

	var (
		runs repo.ExtractRunRepository
		sink audit.Sink = audit.LogSink{Logger: logger}
	)
	if cfg.Audit.DSN != "" {
		db, err := repo.Open(ctx, repo.ConfigFrom(cfg.Audit), logger)
		if err != nil {
			return nil, fmt.Errorf("open audit store: %w", err)
		}
		if err := repo.Migrate(ctx, db); err != nil {
			repo.Close(db, logger)
			return nil, err
		}
		a.DB = db
		runs = repo.NewExtractRunRepository(db, logger)
		sink = audit.MultiSink{sink, repo.NewAuditEventRepository(db, logger)}
	}

	a.Extractor = ocr.NewExtractor(ocr.ConfigFrom(cfg.OCR), logger)
	a.Processor = core.NewProcessor(
		logger,
		a.Extractor,
		extract.NewExtractor(extract.Config{MaxNameWords: cfg.Extract.MaxNameWords}, logger),
		export.NewService(export.Options{UnknownSheet: cfg.Report.UnknownSheet}, logger),
		runs,
		sink,
	)
	return a, nil
}

// Close releases the audit store.
func (a *App) Close() {
	if a.DB != nil {
		repo.Close(a.DB, a.logger)
	}
}
