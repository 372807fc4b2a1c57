package export

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/marks-tracker/constants"
	"github.com/joseph-ayodele/marks-tracker/internal/common"
	"github.com/joseph-ayodele/marks-tracker/internal/core/classify"
	"github.com/joseph-ayodele/marks-tracker/internal/entity"
)

func intp(n int) *int { return &n }

func newService(opts Options) *Service {
	return NewService(opts, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func openBook(t *testing.T, b []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func rows(t *testing.T, f *excelize.File, sheet string) [][]string {
	t.Helper()
	r, err := f.GetRows(sheet)
	if err != nil {
		t.Fatalf("GetRows(%s): %v", sheet, err)
	}
	return r
}

func TestGenerateReport_SheetsOnlyForNonEmptyPartitions(t *testing.T) {
	passed := []entity.StudentRecord{{EnrollmentID: "0801CS001", Name: "Jane Doe", Marks: intp(25), Status: constants.StatusPass}}
	absent := []entity.StudentRecord{{EnrollmentID: "0801CS002", Name: "John Roe", Status: constants.StatusAbsent}}

	b, err := newService(Options{}).GenerateReport(context.Background(), passed, nil, absent)
	if err != nil {
		t.Fatalf("GenerateReport: %v", err)
	}
	f := openBook(t, b)
	if got, want := f.GetSheetList(), []string{constants.SheetPassed, constants.SheetAbsent}; !reflect.DeepEqual(got, want) {
		t.Fatalf("sheets = %v, want %v", got, want)
	}

	p := rows(t, f, constants.SheetPassed)
	if !reflect.DeepEqual(p[0], constants.ReportHeaders) {
		t.Fatalf("header = %v", p[0])
	}
	if !reflect.DeepEqual(p[1], []string{"0801CS001", "Jane Doe", "25", "Pass"}) {
		t.Fatalf("passed row = %v", p[1])
	}

	a := rows(t, f, constants.SheetAbsent)
	if len(a) != 2 || a[1][0] != "0801CS002" || a[1][2] != "" || a[1][3] != "Absent" {
		t.Fatalf("absent rows = %v", a)
	}
}

func TestGenerateReport_NoRecords(t *testing.T) {
	b, err := newService(Options{}).GenerateReport(context.Background(), nil, nil, nil)
	if !errors.Is(err, common.ErrNoRecords) {
		t.Fatalf("err = %v, want ErrNoRecords", err)
	}
	if b != nil {
		t.Fatalf("workbook produced for empty partitions")
	}
}

func TestGenerateDetailed_UnknownSheet(t *testing.T) {
	p := entity.Partitions{
		Absent:  []entity.StudentRecord{{Seq: 1, EnrollmentID: "a1", Name: "C One", Status: constants.StatusAbsent}},
		Unknown: []entity.StudentRecord{{Seq: 0, EnrollmentID: "u1", Name: "D One", Status: constants.StatusUnknown, Token: "N/A"}},
	}

	folded, err := newService(Options{}).GenerateDetailed(context.Background(), p)
	if err != nil {
		t.Fatalf("GenerateDetailed: %v", err)
	}
	f := openBook(t, folded)
	if got := f.GetSheetList(); !reflect.DeepEqual(got, []string{constants.SheetAbsent}) {
		t.Fatalf("folded sheets = %v", got)
	}
	a := rows(t, f, constants.SheetAbsent)
	if len(a) != 3 || a[1][0] != "u1" || a[1][3] != "Absent" {
		t.Fatalf("folded absent rows = %v", a)
	}

	split, err := newService(Options{UnknownSheet: true}).GenerateDetailed(context.Background(), p)
	if err != nil {
		t.Fatalf("GenerateDetailed: %v", err)
	}
	f = openBook(t, split)
	if got := f.GetSheetList(); !reflect.DeepEqual(got, []string{constants.SheetAbsent, constants.SheetUnknown}) {
		t.Fatalf("split sheets = %v", got)
	}
	u := rows(t, f, constants.SheetUnknown)
	if len(u) != 2 || u[1][3] != "Unknown" {
		t.Fatalf("unknown rows = %v", u)
	}
}

func TestGenerateReport_Deterministic(t *testing.T) {
	passed := []entity.StudentRecord{
		{EnrollmentID: "p1", Name: "A", Marks: intp(30), Status: constants.StatusPass},
		{EnrollmentID: "p2", Name: "B", Marks: intp(22), Status: constants.StatusPass},
	}
	failed := []entity.StudentRecord{{EnrollmentID: "f1", Name: "C", Marks: intp(3), Status: constants.StatusFail}}
	s := newService(Options{})

	first, err := s.GenerateReport(context.Background(), passed, failed, nil)
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.GenerateReport(context.Background(), passed, failed, nil)
	if err != nil {
		t.Fatal(err)
	}
	a, b := openBook(t, first), openBook(t, second)
	for _, sheet := range a.GetSheetList() {
		if !reflect.DeepEqual(rows(t, a, sheet), rows(t, b, sheet)) {
			t.Fatalf("sheet %s differs between runs", sheet)
		}
	}
}

func TestReadReport_RoundTrip(t *testing.T) {
	in := []entity.StudentRecord{
		{Seq: 0, EnrollmentID: "p1", Name: "A One", Marks: intp(25), Status: constants.StatusPresent},
		{Seq: 1, EnrollmentID: "f1", Name: "B One", Marks: intp(21), Status: constants.StatusPresent},
		{Seq: 2, EnrollmentID: "a1", Name: "C One", Status: constants.StatusAbsent},
		{Seq: 3, EnrollmentID: "u1", Name: "D One", Status: constants.StatusUnknown},
		{Seq: 4, EnrollmentID: "p2", Name: "E One", Marks: intp(22), Status: constants.StatusPresent},
	}
	passed, failed, absent := classify.Classify(in)
	b, err := newService(Options{}).GenerateReport(context.Background(), passed, failed, absent)
	if err != nil {
		t.Fatalf("GenerateReport: %v", err)
	}

	back, err := ReadReport(b)
	if err != nil {
		t.Fatalf("ReadReport: %v", err)
	}
	p2, f2, a2 := classify.Classify(back)

	statuses := func(recs []entity.StudentRecord) map[string]constants.Status {
		m := map[string]constants.Status{}
		for _, r := range recs {
			m[r.EnrollmentID] = r.Status
		}
		return m
	}
	for _, pair := range []struct{ a, b []entity.StudentRecord }{{passed, p2}, {failed, f2}, {absent, a2}} {
		if !reflect.DeepEqual(statuses(pair.a), statuses(pair.b)) {
			t.Fatalf("round trip changed statuses: %v -> %v", statuses(pair.a), statuses(pair.b))
		}
	}
}

func TestReadReport_Rejects(t *testing.T) {
	if _, err := ReadReport([]byte("not a workbook")); !errors.Is(err, common.ErrInvalidInput) {
		t.Fatalf("garbage err = %v", err)
	}

	f := excelize.NewFile()
	_ = f.SetSheetRow("Sheet1", "A1", &[]any{"Id", "Who"})
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ReadReport(buf.Bytes()); !errors.Is(err, common.ErrInvalidInput) {
		t.Fatalf("bad header err = %v", err)
	}
}

func TestService_UnknownSheetName(t *testing.T) {
	if got := NewService(Options{}, nil).UnknownSheetName(); got != constants.SheetAbsent {
		t.Fatalf("default = %q", got)
	}
	if got := NewService(Options{UnknownSheet: true}, nil).UnknownSheetName(); got != constants.SheetUnknown {
		t.Fatalf("unknown sheet = %q", got)
	}
}
