package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/joseph-ayodele/marks-tracker/internal/common"
	"github.com/joseph-ayodele/marks-tracker/internal/core"
	"github.com/joseph-ayodele/marks-tracker/internal/export"
)

// MetadataSourceName carries the caller's file name for logs and the audit store.
const MetadataSourceName = "x-source-name"

// Processor runs the pipeline for one document. *core.Processor and the
// async.ProcessorQueue in front of it both satisfy it.
type Processor interface {
	Process(ctx context.Context, pdf []byte) (*core.Result, error)
}

type ResultsServer struct {
	proc     Processor
	maxBytes int
	logger   *slog.Logger
}

func NewResultsServer(proc Processor, maxBytes int, logger *slog.Logger) *ResultsServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResultsServer{proc: proc, maxBytes: maxBytes, logger: logger}
}

func (s *ResultsServer) ExtractReport(ctx context.Context, req *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	res, err := s.process(ctx, req.GetValue())
	if err != nil {
		return nil, err
	}
	return wrapperspb.Bytes(res.Report), nil
}

func (s *ResultsServer) Summarize(ctx context.Context, req *wrapperspb.BytesValue) (*structpb.Struct, error) {
	res, err := s.process(ctx, req.GetValue())
	if err != nil {
		return nil, err
	}
	b, err := export.MarshalSummary(res.Summary)
	if err != nil {
		s.logger.Error("summary.marshal.failed", "run_id", res.RunID, "err", err)
		return nil, common.InternalError("summary encoding failed")
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, common.InternalErrorf("summary decoding failed: %v", err)
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, common.InternalErrorf("summary struct: %v", err)
	}
	return out, nil
}

func (s *ResultsServer) process(ctx context.Context, pdf []byte) (*core.Result, error) {
	if len(pdf) == 0 {
		return nil, common.InvalidArgumentError("pdf payload is required")
	}
	if s.maxBytes > 0 && len(pdf) > s.maxBytes {
		return nil, common.InvalidArgumentErrorf("pdf payload is %d bytes, limit is %d", len(pdf), s.maxBytes)
	}
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get(MetadataSourceName); len(v) > 0 {
			ctx = common.WithSourceName(ctx, strings.TrimSpace(v[0]))
		}
	}

	res, err := s.proc.Process(ctx, pdf)
	if err != nil {
		s.logger.Warn("results.process.failed", "source", common.SourceNameFromContext(ctx), "err", err)
		return nil, common.ToStatus(fmt.Errorf("process: %w", err))
	}
	return res, nil
}
