package export

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/marks-tracker/constants"
	"github.com/joseph-ayodele/marks-tracker/internal/common"
	"github.com/joseph-ayodele/marks-tracker/internal/entity"
)

// ReadReport reads the records of a generated workbook back, sheet by
// sheet in workbook order. Seq numbers follow that order.
func ReadReport(data []byte) ([]entity.StudentRecord, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: open xlsx: %w", common.ErrInvalidInput, err)
	}
	defer func() { _ = f.Close() }()

	var out []entity.StudentRecord
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		if len(rows) == 0 {
			continue
		}
		if !headerMatches(rows[0]) {
			return nil, fmt.Errorf("%w: sheet %q has header %v", common.ErrInvalidInput, sheet, rows[0])
		}
		for i, row := range rows[1:] {
			rec, err := parseRow(row)
			if err != nil {
				return nil, fmt.Errorf("%w: sheet %q row %d: %w", common.ErrInvalidInput, sheet, i+2, err)
			}
			rec.Seq = len(out)
			out = append(out, rec)
		}
	}
	return out, nil
}

func headerMatches(row []string) bool {
	if len(row) < len(constants.ReportHeaders) {
		return false
	}
	for i, h := range constants.ReportHeaders {
		if strings.TrimSpace(row[i]) != h {
			return false
		}
	}
	return true
}

// parseRow maps one data row. GetRows trims trailing empty cells, so a
// short row is padded before reading.
func parseRow(row []string) (entity.StudentRecord, error) {
	cells := make([]string, len(constants.ReportHeaders))
	copy(cells, row)

	rec := entity.StudentRecord{
		EnrollmentID: strings.TrimSpace(cells[0]),
		Name:         strings.TrimSpace(cells[1]),
	}
	if m := strings.TrimSpace(cells[2]); m != "" {
		n, err := strconv.Atoi(m)
		if err != nil {
			return rec, fmt.Errorf("marks %q: %w", m, err)
		}
		rec.Marks = &n
		rec.Token = m
	}
	st, ok := constants.ParseStatus(strings.TrimSpace(cells[3]))
	if !ok {
		return rec, fmt.Errorf("status %q", cells[3])
	}
	rec.Status = st
	return rec, nil
}
