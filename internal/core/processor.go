package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/marks-tracker/internal/common"
	"github.com/joseph-ayodele/marks-tracker/internal/core/audit"
	"github.com/joseph-ayodele/marks-tracker/internal/core/classify"
	"github.com/joseph-ayodele/marks-tracker/internal/core/extract"
	"github.com/joseph-ayodele/marks-tracker/internal/core/ocr"
	"github.com/joseph-ayodele/marks-tracker/internal/entity"
	"github.com/joseph-ayodele/marks-tracker/internal/export"
	"github.com/joseph-ayodele/marks-tracker/internal/repository"
)

// TextAcquirer turns PDF bytes into text. *ocr.Extractor implements it.
type TextAcquirer interface {
	Extract(ctx context.Context, pdf []byte) (ocr.ExtractionResult, error)
}

// Result is everything one run produced. Report holds the XLSX bytes; where
// they are written is up to the caller.
type Result struct {
	RunID      uuid.UUID
	Extraction ocr.ExtractionResult
	Records    []entity.StudentRecord
	Partitions entity.Partitions
	Stats      classify.Stats
	Events     []entity.AuditEvent
	Summary    entity.Summary
	Report     []byte
}

// Processor coordinates text acquisition, record extraction, classification
// and report generation for a single document.
type Processor struct {
	logger    *slog.Logger
	acquirer  TextAcquirer
	extractor *extract.Extractor
	exporter  *export.Service
	runsRepo  repository.ExtractRunRepository // optional
	sink      audit.Sink                      // optional
}

func NewProcessor(
	logger *slog.Logger,
	acquirer TextAcquirer,
	extractor *extract.Extractor,
	exporter *export.Service,
	runsRepo repository.ExtractRunRepository,
	sink audit.Sink,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if extractor == nil {
		extractor = extract.NewExtractor(extract.Config{}, logger)
	}
	if exporter == nil {
		exporter = export.NewService(export.Options{}, logger)
	}
	if sink == nil {
		sink = audit.LogSink{Logger: logger}
	}
	return &Processor{
		logger:    logger,
		acquirer:  acquirer,
		extractor: extractor,
		exporter:  exporter,
		runsRepo:  runsRepo,
		sink:      sink,
	}
}

// Process runs the whole pipeline over PDF bytes. A document without any
// recoverable text fails with common.ErrExtractionFailed; one whose text
// holds no records fails with common.ErrNoRecords. Neither produces a report.
func (p *Processor) Process(ctx context.Context, pdf []byte) (*Result, error) {
	runID := uuid.New()
	ctx = common.WithRunID(ctx, runID)
	start := time.Now()
	p.startRun(ctx, runID, pdf)

	ext, err := p.acquirer.Extract(ctx, pdf)
	if err != nil {
		p.logger.Error("processor.acquire.failed", "run_id", runID, "err", err)
		p.failRun(ctx, runID, err)
		return nil, err
	}
	p.logger.Debug("processor acquire success",
		"run_id", runID,
		"method", ext.Method,
		"pages", ext.Pages,
		"confidence", ext.Confidence,
		"warnings", len(ext.Warnings),
	)

	res, err := p.run(ctx, runID, ext)
	if err != nil {
		p.failRun(ctx, runID, err)
		return nil, err
	}
	p.logger.Info("processor.ok",
		"run_id", runID,
		"method", ext.Method,
		"records", res.Summary.Total,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// ProcessText runs everything after text acquisition.
func (p *Processor) ProcessText(ctx context.Context, text string) (*Result, error) {
	runID := uuid.New()
	ctx = common.WithRunID(ctx, runID)
	p.startRun(ctx, runID, []byte(text))

	res, err := p.run(ctx, runID, ocr.ExtractionResult{Text: text})
	if err != nil {
		p.failRun(ctx, runID, err)
		return nil, err
	}
	return res, nil
}

func (p *Processor) run(ctx context.Context, runID uuid.UUID, ext ocr.ExtractionResult) (*Result, error) {
	raws := p.extractor.ExtractRecords(ext.Text)
	records := extract.NormalizeAll(raws)
	parts, stats := classify.ClassifyDetailed(records)

	res := &Result{
		RunID:      runID,
		Extraction: ext,
		Records:    records,
		Partitions: parts,
		Stats:      stats,
		Summary:    export.BuildSummary(runID.String(), ext.Method, ext.Pages, parts, len(stats.Dropped)),
	}
	p.logger.Debug("processor classify success",
		"run_id", runID,
		"matches", len(raws),
		"passed", res.Summary.Passed,
		"failed", res.Summary.Failed,
		"absent", res.Summary.Absent,
		"unknown", res.Summary.Unknown,
		"dropped", res.Summary.Dropped,
	)

	res.Events = audit.Inspect(runID, parts, stats, p.exporter.UnknownSheetName())
	if err := p.sink.Record(ctx, res.Events); err != nil {
		// diagnostics never fail a run
		p.logger.Warn("processor.audit.failed", "run_id", runID, "err", err)
	}

	report, err := p.exporter.GenerateDetailed(ctx, parts)
	if err != nil {
		if errors.Is(err, common.ErrNoRecords) {
			p.logger.Warn("processor.no_records", "run_id", runID, "text_bytes", len(ext.Text))
			return nil, err
		}
		return nil, fmt.Errorf("generate report: %w", err)
	}
	res.Report = report

	if p.runsRepo != nil {
		counts := repository.RunCounts{
			Method: ext.Method,
			Pages:  ext.Pages,
			Total:  res.Summary.Total,
			Passed: res.Summary.Passed,
			Failed: res.Summary.Failed,
			Absent: res.Summary.Absent,
		}
		if err := p.runsRepo.FinishSuccess(ctx, runID, counts); err != nil {
			p.logger.Warn("processor.run_record.failed", "run_id", runID, "err", err)
		}
	}
	return res, nil
}

func (p *Processor) startRun(ctx context.Context, runID uuid.UUID, content []byte) {
	if p.runsRepo == nil {
		return
	}
	sum := sha256.Sum256(content)
	if _, err := p.runsRepo.Start(ctx, runID, common.SourceNameFromContext(ctx), hex.EncodeToString(sum[:])); err != nil {
		p.logger.Warn("processor.run_record.failed", "run_id", runID, "err", err)
	}
}

func (p *Processor) failRun(ctx context.Context, runID uuid.UUID, cause error) {
	if p.runsRepo == nil {
		return
	}
	if err := p.runsRepo.FinishFailure(ctx, runID, cause.Error()); err != nil {
		p.logger.Warn("processor.run_record.failed", "run_id", runID, "err", err)
	}
}
