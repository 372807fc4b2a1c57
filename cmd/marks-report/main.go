package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/marks-tracker/constants"
	"github.com/joseph-ayodele/marks-tracker/internal/app"
	"github.com/joseph-ayodele/marks-tracker/internal/common"
	"github.com/joseph-ayodele/marks-tracker/internal/export"
	"github.com/joseph-ayodele/marks-tracker/internal/watch"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

type options struct {
	in, out string
	asJSON  bool
}

func main() {
	var (
		in           = flag.String("in", "", "PDF file with the result table (required)")
		out          = flag.String("out", "", "output XLSX path (optional, defaults to "+constants.DefaultReportName+" next to the input)")
		cfgPath      = flag.String("config", "", "YAML config file overlaid on environment defaults")
		asJSON       = flag.Bool("json", false, "print the summary as JSON")
		unknownSheet = flag.Bool("unknown-sheet", false, "write unrecognized statuses to their own sheet")
		watchInput   = flag.Bool("watch", false, "regenerate the report whenever the input file changes")
	)
	flag.Parse()

	if *in == "" {
		printError("Error: --in is required\n")
		os.Exit(1)
	}
	if !constants.IsAllowedExt(filepath.Ext(*in)) {
		printError("Error: %s is not a PDF\n", *in)
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(*in), constants.DefaultReportName)
	}

	cfg, err := common.Load(*cfgPath)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	if *unknownSheet {
		cfg.Report.UnknownSheet = true
	}
	// logs go to stderr so stdout carries only the summary
	logger := common.NewLogger(os.Stderr, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	opts := options{in: *in, out: *out, asJSON: *asJSON}
	code := run(ctx, a, opts, logger)
	if !*watchInput {
		if code != 0 {
			a.Close()
			os.Exit(code)
		}
		return
	}

	events, errs, err := watch.File(ctx, watch.Config{Path: *in, Debounce: 500 * time.Millisecond}, logger)
	if err != nil {
		logger.Error("failed to watch input", "path", *in, "error", err)
		os.Exit(1)
	}
	logger.Info("watching input", "path", *in)
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-events:
			if !ok {
				return
			}
			run(ctx, a, opts, logger)
		case err, ok := <-errs:
			if ok {
				logger.Warn("watch error", "error", err)
			}
		}
	}
}

// run processes the input once and returns the process exit code.
func run(ctx context.Context, a *app.App, o options, logger *slog.Logger) int {
	pdf, err := os.ReadFile(o.in)
	if err != nil {
		logger.Error("failed to read input", "path", o.in, "error", err)
		return 1
	}

	ctx = common.WithSourceName(ctx, filepath.Base(o.in))
	res, err := a.Processor.Process(ctx, pdf)
	switch {
	case errors.Is(err, common.ErrExtractionFailed):
		printError("No text could be read from %s; no report written.\n", o.in)
		return 3
	case errors.Is(err, common.ErrNoRecords):
		printError("No student records found in %s; no report written.\n", o.in)
		return 3
	case err != nil:
		logger.Error("processing failed", "error", err)
		return 1
	}

	if err := os.WriteFile(o.out, res.Report, 0o644); err != nil {
		logger.Error("failed to write output file", "path", o.out, "error", err)
		return 1
	}
	logger.Info("report written", "run_id", res.RunID, "output", o.out, "bytes", len(res.Report))

	if o.asJSON {
		b, err := export.MarshalSummary(res.Summary)
		if err != nil {
			logger.Error("failed to encode summary", "error", err)
			return 1
		}
		fmt.Println(string(b))
		return 0
	}
	fmt.Print(res.Summary.Text())
	fmt.Printf("Report: %s\n", o.out)
	return 0
}
