package ocr

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Engine recognizes the text of one rendered page image.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, imagePath string) (string, error)
}

// Confidencer is implemented by engines that can score a page in 0..1.
type Confidencer interface {
	Confidence(ctx context.Context, imagePath string) (float32, error)
}

// tesseractEngine shells out to the tesseract CLI.
type tesseractEngine struct {
	e *Extractor
}

func (t *tesseractEngine) Name() string { return "tesseract" }

func (t *tesseractEngine) baseArgs(path string) []string {
	cfg := t.e.cfg
	args := []string{path, "stdout", "-l", cfg.TesseractLang}
	if cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(cfg.PSM))
	}
	if cfg.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(cfg.OEM))
	}
	if cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", cfg.TessdataDir)
	}
	return args
}

func (t *tesseractEngine) Recognize(ctx context.Context, path string) (string, error) {
	// tesseract <file> stdout -l <lang>
	out, _, err := t.e.runner.Run(ctx, t.e.cfg.Tesseract, t.e.logger, t.baseArgs(path)...)
	if err != nil {
		return "", fmt.Errorf("recognize %s: %w", filepath.Base(path), err)
	}
	return string(out), nil
}

// Confidence runs tesseract in TSV mode and returns mean word conf in 0..1.
func (t *tesseractEngine) Confidence(ctx context.Context, path string) (float32, error) {
	args := append(t.baseArgs(path), "tsv")
	out, _, err := t.e.runner.Run(ctx, t.e.cfg.Tesseract, t.e.logger, args...)
	if err != nil {
		return 0, fmt.Errorf("tsv confidence: %w", err)
	}
	return meanTSVConfidence(string(out)), nil
}

func meanTSVConfidence(tsv string) float32 {
	lines := strings.Split(tsv, "\n")
	// conf column is the 11th of 12; header line includes "conf"
	var sum, n float64
	for i, ln := range lines {
		if i == 0 || len(ln) == 0 {
			continue
		} // skip header
		cols := strings.Split(ln, "\t")
		if len(cols) < 12 {
			continue
		}
		confStr := cols[10]
		if confStr == "" || confStr == "-1" {
			continue
		}
		if v, err := strconv.ParseFloat(confStr, 64); err == nil && v >= 0 {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return float32(sum / n / 100.0)
}
