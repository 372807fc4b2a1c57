package audit

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/marks-tracker/constants"
	"github.com/joseph-ayodele/marks-tracker/internal/core/classify"
	"github.com/joseph-ayodele/marks-tracker/internal/entity"
)

func TestInspect(t *testing.T) {
	m := 30
	p := entity.Partitions{
		Passed:  []entity.StudentRecord{{Seq: 0, EnrollmentID: "0801ME12D", Name: "Priya Das", Marks: &m, Status: constants.StatusPass}},
		Absent:  []entity.StudentRecord{{Seq: 2, EnrollmentID: "0801CS002", Name: "John Roe", Status: constants.StatusAbsent}},
		Unknown: []entity.StudentRecord{{Seq: 1, EnrollmentID: "0801CS003", Name: "Foo Bar", Status: constants.StatusUnknown, Token: "N/A"}},
	}
	st := classify.Stats{Dropped: []entity.StudentRecord{{Seq: 3, EnrollmentID: "0801CS004"}}}
	run := uuid.New()

	events := Inspect(run, p, st, constants.SheetAbsent)
	want := []entity.AuditKind{entity.AuditEnrollmentHasD, entity.AuditUnknownToken, entity.AuditMalformed}
	if len(events) != len(want) {
		t.Fatalf("events = %+v", events)
	}
	for i, ev := range events {
		if ev.Kind != want[i] {
			t.Errorf("event %d kind = %s, want %s", i, ev.Kind, want[i])
		}
		if ev.RunID != run {
			t.Errorf("event %d run id = %s", i, ev.RunID)
		}
	}
	if events[1].Token != "N/A" {
		t.Fatalf("unknown token event = %+v", events[1])
	}
}

func TestInspect_UnknownDetailNamesSheet(t *testing.T) {
	p := entity.Partitions{
		Unknown: []entity.StudentRecord{{EnrollmentID: "0801CS003", Name: "Foo Bar", Status: constants.StatusUnknown, Token: "N/A"}},
	}
	tests := []struct {
		sheet string
		want  string
	}{
		{constants.SheetAbsent, `token "N/A" not recognized, written to "Absent Students"`},
		{constants.SheetUnknown, `token "N/A" not recognized, written to "Unknown Status"`},
		{"", `token "N/A" not recognized`},
	}
	for _, tt := range tests {
		events := Inspect(uuid.New(), p, classify.Stats{}, tt.sheet)
		if len(events) != 1 || events[0].Detail != tt.want {
			t.Errorf("sheet %q: events = %+v, want detail %q", tt.sheet, events, tt.want)
		}
	}
}

func TestInspect_Clean(t *testing.T) {
	p := entity.Partitions{Absent: []entity.StudentRecord{{EnrollmentID: "0801CS002", Name: "John Roe"}}}
	if events := Inspect(uuid.New(), p, classify.Stats{}, constants.SheetAbsent); len(events) != 0 {
		t.Fatalf("events = %+v, want none", events)
	}
}

type failingSink struct{ err error }

func (f failingSink) Record(context.Context, []entity.AuditEvent) error { return f.err }

type countingSink struct{ n int }

func (c *countingSink) Record(_ context.Context, ev []entity.AuditEvent) error {
	c.n += len(ev)
	return nil
}

func TestMultiSink(t *testing.T) {
	var buf bytes.Buffer
	boom := errors.New("boom")
	counter := &countingSink{}
	sink := MultiSink{
		LogSink{Logger: slog.New(slog.NewJSONHandler(&buf, nil))},
		failingSink{err: boom},
		nil,
		counter,
	}
	events := []entity.AuditEvent{{Kind: entity.AuditMalformed, EnrollmentID: "0801CS004"}}
	err := sink.Record(context.Background(), events)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if counter.n != 1 {
		t.Fatalf("counting sink saw %d events", counter.n)
	}
	if !strings.Contains(buf.String(), `"kind":"malformed_record"`) {
		t.Fatalf("log output = %s", buf.String())
	}
}
