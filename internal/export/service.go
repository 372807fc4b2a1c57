package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/marks-tracker/constants"
	"github.com/joseph-ayodele/marks-tracker/internal/common"
	"github.com/joseph-ayodele/marks-tracker/internal/entity"
)

// Options tune the generated workbook.
type Options struct {
	// UnknownSheet writes records with an unrecognized token to their own
	// sheet instead of folding them into the absent sheet.
	UnknownSheet bool
}

// Service renders classified partitions as an XLSX workbook.
type Service struct {
	opts   Options
	logger *slog.Logger
}

func NewService(opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{opts: opts, logger: logger}
}

// UnknownSheetName is the sheet GenerateDetailed writes unrecognized
// records to.
func (s *Service) UnknownSheetName() string {
	if s.opts.UnknownSheet {
		return constants.SheetUnknown
	}
	return constants.SheetAbsent
}

type sheetSpec struct {
	name    string
	records []entity.StudentRecord
}

// GenerateReport returns the workbook for the three report partitions. A
// sheet is written only for a non-empty partition, in the order passed,
// failed, absent. With nothing to write it returns common.ErrNoRecords.
func (s *Service) GenerateReport(ctx context.Context, passed, failed, absent []entity.StudentRecord) ([]byte, error) {
	return s.generate(ctx, []sheetSpec{
		{constants.SheetPassed, passed},
		{constants.SheetFailed, failed},
		{constants.SheetAbsent, absent},
	})
}

// GenerateDetailed is GenerateReport over Partitions. Unknown records are
// folded into the absent sheet unless the service was built with
// Options.UnknownSheet.
func (s *Service) GenerateDetailed(ctx context.Context, p entity.Partitions) ([]byte, error) {
	if !s.opts.UnknownSheet {
		p = p.Fold()
	}
	return s.generate(ctx, []sheetSpec{
		{constants.SheetPassed, p.Passed},
		{constants.SheetFailed, p.Failed},
		{constants.SheetAbsent, p.Absent},
		{constants.SheetUnknown, p.Unknown},
	})
}

func (s *Service) generate(ctx context.Context, sheets []sheetSpec) ([]byte, error) {
	start := time.Now()
	var nonEmpty []sheetSpec
	rows := 0
	for _, sh := range sheets {
		if len(sh.records) > 0 {
			nonEmpty = append(nonEmpty, sh)
			rows += len(sh.records)
		}
	}
	if len(nonEmpty) == 0 {
		return nil, common.ErrNoRecords
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("xlsx style: %w", err)
	}

	const defaultSheet = "Sheet1"
	for _, sh := range nonEmpty {
		if err := writeSheet(f, sh, bold); err != nil {
			return nil, fmt.Errorf("xlsx sheet %q: %w", sh.name, err)
		}
	}
	if err := f.DeleteSheet(defaultSheet); err != nil {
		return nil, fmt.Errorf("xlsx delete %s: %w", defaultSheet, err)
	}
	if idx, err := f.GetSheetIndex(nonEmpty[0].name); err == nil && idx >= 0 {
		f.SetActiveSheet(idx)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.InfoContext(ctx, "report.xlsx.ok",
		"run_id", common.RunIDFromContext(ctx).String(),
		"sheets", len(nonEmpty),
		"rows", rows,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sh sheetSpec, headerStyle int) error {
	sheet := sh.name
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	for i, h := range constants.ReportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return err
	}

	row := 2
	for _, r := range sh.records {
		write := func(col int, v any) error {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			return f.SetCellValue(sheet, cell, v)
		}

		if err := write(1, r.EnrollmentID); err != nil {
			return err
		}
		if err := write(2, r.Name); err != nil {
			return err
		}
		// Marks stays empty for records without a parsed mark
		if r.Marks != nil {
			if err := write(3, *r.Marks); err != nil {
				return err
			}
		}
		if err := write(4, string(r.Status)); err != nil {
			return err
		}
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 16) // enrollment
	_ = f.SetColWidth(sheet, "B", "B", 32) // name
	_ = f.SetColWidth(sheet, "C", "D", 10) // marks, status
	return f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}
