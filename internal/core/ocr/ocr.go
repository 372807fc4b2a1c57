package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/marks-tracker/constants"
	"github.com/joseph-ayodele/marks-tracker/internal/common"
)

type Config struct {
	TextLayer string // "native" (in-process) | "pdftotext"; default "native"
	Engine    string // "tesseract" (CLI) | "gosseract" (cgo build tag); default "tesseract"

	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng"
	DPI           int    // rasterization DPI for scanned PDFs, default 300
	MaxPages      int    // 0 = no limit
	Workers       int    // pages recognized concurrently, default 1

	TessdataDir         string
	EnableTSVConfidence bool

	PSM int // e.g., 6 is good for uniform block of text
	OEM int // 1 = LSTM; leave 0 to use default

	ArtifactCacheDir string // staging dir for the uploaded PDF; "" = os temp dir
}

// ConfigFrom maps the application config onto the extractor config.
func ConfigFrom(c common.OCRConfig) Config {
	return Config{
		TextLayer:           c.TextLayer,
		Engine:              c.Engine,
		Pdftotext:           c.Pdftotext,
		Pdftoppm:            c.Pdftoppm,
		Tesseract:           c.Tesseract,
		TesseractLang:       c.TesseractLang,
		DPI:                 c.DPI,
		MaxPages:            c.MaxPages,
		Workers:             c.Workers,
		TessdataDir:         c.TessdataDir,
		EnableTSVConfidence: c.EnableTSVConfidence,
		PSM:                 c.PSM,
		OEM:                 c.OEM,
		ArtifactCacheDir:    c.ArtifactCacheDir,
	}
}

type ExtractionResult struct {
	Text       string
	Pages      int
	Method     string // constants.MethodPDFText | constants.MethodPDFOCR
	Language   string
	Duration   time.Duration
	Warnings   []string
	Confidence float32
}

type Extractor struct {
	cfg    Config
	runner Runner
	text   TextLayer
	engine Engine
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.TextLayer == "" {
		cfg.TextLayer = "native"
	}
	if cfg.Engine == "" {
		cfg.Engine = "tesseract"
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	e := &Extractor{cfg: cfg, runner: execRunner{}, logger: logger}
	switch cfg.TextLayer {
	case "pdftotext":
		e.text = &pdftotextLayer{e: e}
	default:
		e.text = nativeTextLayer{}
	}
	switch cfg.Engine {
	case "gosseract":
		e.engine = newGosseractEngine(cfg, logger)
	default:
		e.engine = &tesseractEngine{e: e}
	}
	return e
}

// Extract returns the best-effort text of a PDF: the embedded text layer when
// it has any non-whitespace content, otherwise OCR of the rendered pages.
// When both come back blank the error wraps common.ErrExtractionFailed.
func (e *Extractor) Extract(ctx context.Context, pdf []byte) (ExtractionResult, error) {
	start := time.Now()
	if len(pdf) == 0 {
		return ExtractionResult{}, fmt.Errorf("empty pdf payload: %w", common.ErrInvalidInput)
	}

	path, cleanup, err := stagePDF(e.cfg.ArtifactCacheDir, pdf)
	if err != nil {
		return ExtractionResult{}, fmt.Errorf("stage pdf: %w", err)
	}
	defer cleanup()

	e.logger.Debug("starting text extraction", "path", path, "bytes", len(pdf), "text_layer", e.cfg.TextLayer, "engine", e.engine.Name())
	res, err := e.extractPDF(ctx, path)
	res.Duration = time.Since(start)
	return res, err
}

func (e *Extractor) extractPDF(ctx context.Context, path string) (ExtractionResult, error) {
	var warns []string

	pages, err := e.text.PageTexts(ctx, path)
	if err != nil {
		e.logger.Warn("text layer extraction failed", "text_layer", e.cfg.TextLayer, "error", err)
		warns = append(warns, fmt.Sprintf("text layer: %v", err))
	}
	if txt := strings.Join(pages, "\n"); strings.TrimSpace(txt) != "" {
		txt = Normalize(txt)
		return ExtractionResult{
			Text:       txt,
			Pages:      len(pages),
			Method:     constants.MethodPDFText,
			Warnings:   warns,
			Confidence: heuristicConfidence(txt),
		}, nil
	}

	e.logger.Warn("no text extracted from pdf, attempting OCR", "pages", len(pages), "engine", e.engine.Name())
	txt, n, ocrWarns, conf, err := e.pdfToOCR(ctx, path)
	warns = append(warns, ocrWarns...)
	res := ExtractionResult{
		Pages:    n,
		Method:   constants.MethodPDFOCR,
		Language: e.cfg.TesseractLang,
		Warnings: warns,
	}
	if err != nil {
		return res, fmt.Errorf("%w: ocr: %w", common.ErrExtractionFailed, err)
	}
	txt = Normalize(txt)
	if strings.TrimSpace(txt) == "" {
		return res, common.ErrExtractionFailed
	}

	// blend: weight OCR higher if present
	heur := heuristicConfidence(txt)
	if conf > 0 {
		conf = 0.7*conf + 0.3*heur
	} else {
		conf = heur
	}
	if conf > 1.0 {
		conf = 1.0
	}
	res.Text = txt
	res.Confidence = conf
	return res, nil
}
