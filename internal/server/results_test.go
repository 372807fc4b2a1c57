package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"testing"

	"github.com/xuri/excelize/v2"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/joseph-ayodele/marks-tracker/constants"
	"github.com/joseph-ayodele/marks-tracker/internal/common"
	"github.com/joseph-ayodele/marks-tracker/internal/core"
	"github.com/joseph-ayodele/marks-tracker/internal/core/ocr"
)

type stubAcquirer struct {
	text string
	err  error
}

func (s stubAcquirer) Extract(context.Context, []byte) (ocr.ExtractionResult, error) {
	if s.err != nil {
		return ocr.ExtractionResult{}, s.err
	}
	return ocr.ExtractionResult{Text: s.text, Pages: 1, Method: constants.MethodPDFText}, nil
}

func dial(t *testing.T, acq core.TextAcquirer, maxBytes int) *ResultsServiceClient {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	proc := core.NewProcessor(logger, acq, nil, nil, nil, nil)
	RegisterResultsServiceServer(srv, NewResultsServer(proc, maxBytes, logger))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return NewResultsServiceClient(conn)
}

func TestExtractReport(t *testing.T) {
	c := dial(t, stubAcquirer{text: "0801CS001 Jane Doe 25\n0801CS002 John Roe Absent"}, 0)
	ctx := metadata.AppendToOutgoingContext(context.Background(), MetadataSourceName, "results.pdf")

	out, err := c.ExtractReport(ctx, wrapperspb.Bytes([]byte("%PDF-1.4")))
	if err != nil {
		t.Fatalf("ExtractReport: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(out.GetValue()))
	if err != nil {
		t.Fatalf("open report: %v", err)
	}
	defer func() { _ = f.Close() }()
	got := f.GetSheetList()
	if len(got) != 2 || got[0] != constants.SheetPassed || got[1] != constants.SheetAbsent {
		t.Fatalf("sheets = %v", got)
	}
}

func TestSummarize(t *testing.T) {
	c := dial(t, stubAcquirer{text: "0801CS001 Jane Doe 25\n0801CS003 Ann Lee 4"}, 0)
	out, err := c.Summarize(context.Background(), wrapperspb.Bytes([]byte("%PDF")))
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	m := out.AsMap()
	if m["total"] != float64(2) || m["passed"] != float64(1) || m["failed"] != float64(1) {
		t.Fatalf("summary = %v", m)
	}
	if m["method"] != constants.MethodPDFText {
		t.Fatalf("method = %v", m["method"])
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		acq     stubAcquirer
		payload []byte
		max     int
		want    codes.Code
	}{
		{"empty payload", stubAcquirer{text: "x"}, nil, 0, codes.InvalidArgument},
		{"payload too large", stubAcquirer{text: "x"}, []byte("0123456789"), 4, codes.InvalidArgument},
		{"extraction failed", stubAcquirer{err: common.ErrExtractionFailed}, []byte("%PDF"), 0, codes.FailedPrecondition},
		{"no records", stubAcquirer{text: "just a heading"}, []byte("%PDF"), 0, codes.NotFound},
		{"internal", stubAcquirer{err: errors.New("disk on fire")}, []byte("%PDF"), 0, codes.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := dial(t, tt.acq, tt.max)
			_, err := c.ExtractReport(context.Background(), wrapperspb.Bytes(tt.payload))
			if got := status.Code(err); got != tt.want {
				t.Fatalf("code = %s, want %s (err %v)", got, tt.want, err)
			}
		})
	}
}
