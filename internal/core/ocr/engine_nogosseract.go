//go:build !gosseract

package ocr

import (
	"context"
	"errors"
	"log/slog"
)

var errNoGosseract = errors.New("gosseract engine unavailable: rebuild with -tags gosseract")

type unavailableEngine struct{}

func newGosseractEngine(_ Config, logger *slog.Logger) Engine {
	logger.Warn("ocr engine gosseract requested but not compiled in; OCR will fail")
	return unavailableEngine{}
}

func (unavailableEngine) Name() string { return "gosseract" }

func (unavailableEngine) Recognize(context.Context, string) (string, error) {
	return "", errNoGosseract
}
