//go:build gosseract

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"strconv"

	"github.com/otiai10/gosseract/v2"
	"golang.org/x/image/draw"
)

// minOCRWidth is the page width below which images are upscaled before
// recognition; tesseract loses small glyphs under roughly 300 DPI A4.
const minOCRWidth = 2400

// gosseractEngine recognizes pages in-process through libtesseract.
type gosseractEngine struct {
	cfg    Config
	logger *slog.Logger
}

func newGosseractEngine(cfg Config, logger *slog.Logger) Engine {
	return &gosseractEngine{cfg: cfg, logger: logger}
}

func (g *gosseractEngine) Name() string { return "gosseract" }

func (g *gosseractEngine) Recognize(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := preprocessPage(path)
	if err != nil {
		return "", err
	}

	c := gosseract.NewClient()
	defer func() { _ = c.Close() }()

	if g.cfg.TessdataDir != "" {
		if err := c.SetTessdataPrefix(g.cfg.TessdataDir); err != nil {
			return "", fmt.Errorf("set tessdata: %w", err)
		}
	}
	if err := c.SetLanguage(g.cfg.TesseractLang); err != nil {
		return "", fmt.Errorf("set language: %w", err)
	}
	if g.cfg.PSM > 0 {
		if err := c.SetPageSegMode(gosseract.PageSegMode(g.cfg.PSM)); err != nil {
			return "", fmt.Errorf("set psm: %w", err)
		}
	}
	if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), strconv.Itoa(g.cfg.DPI)); err != nil {
		return "", fmt.Errorf("set dpi: %w", err)
	}
	if err := c.SetImageFromBytes(data); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return text, nil
}

// Confidence returns the mean word confidence in 0..1.
func (g *gosseractEngine) Confidence(ctx context.Context, path string) (float32, error) {
	data, err := preprocessPage(path)
	if err != nil {
		return 0, err
	}
	c := gosseract.NewClient()
	defer func() { _ = c.Close() }()
	if err := c.SetLanguage(g.cfg.TesseractLang); err != nil {
		return 0, err
	}
	if err := c.SetImageFromBytes(data); err != nil {
		return 0, err
	}
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return 0, err
	}
	var sum float64
	for _, b := range boxes {
		sum += b.Confidence
	}
	return float32(sum / float64(len(boxes)) / 100.0), nil
}

// preprocessPage converts the page to grayscale and upscales narrow renders.
func preprocessPage(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode page image: %w", err)
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > 0 && w < minOCRWidth {
		h = h * minOCRWidth / w
		w = minOCRWidth
	}
	dst := image.NewGray(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode page image: %w", err)
	}
	return buf.Bytes(), nil
}
