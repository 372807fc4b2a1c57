package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joseph-ayodele/marks-tracker/internal/common"
	"github.com/joseph-ayodele/marks-tracker/internal/core/ocr"
)

func main() {
	cfgPath := flag.String("config", "", "YAML config file overlaid on environment defaults")
	flag.Parse()

	cfg, err := common.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	logger := common.NewLogger(os.Stderr, cfg.LogLevel)

	if flag.NArg() != 1 {
		logger.Error("usage", "cmd", "runocr [-config cfg.yaml] <file.pdf>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	pdf, err := os.ReadFile(path)
	if err != nil {
		logger.Error("read input", "path", path, "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	x := ocr.NewExtractor(ocr.ConfigFrom(cfg.OCR), logger)
	res, err := x.Extract(ctx, pdf)
	if err != nil {
		logger.Error("text extraction failed", "path", path, "error", err)
		os.Exit(1)
	}

	logger.Info("text extraction OK",
		"method", res.Method,
		"pages", res.Pages,
		"bytes", len(res.Text),
		"confidence", res.Confidence,
		"warnings", len(res.Warnings),
		"duration_ms", res.Duration.Milliseconds(),
	)
	fmt.Println(res.Text)
}
