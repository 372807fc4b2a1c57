package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// TextLayer reads the embedded text of every page, in page order.
type TextLayer interface {
	PageTexts(ctx context.Context, path string) ([]string, error)
}

// nativeTextLayer reads the text layer in-process.
type nativeTextLayer struct{}

func (nativeTextLayer) PageTexts(ctx context.Context, path string) (pages []string, err error) {
	// the pdf package panics on some malformed xref tables
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("read pdf: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer func() { _ = f.Close() }()

	n := r.NumPage()
	pages = make([]string, 0, n)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return pages, err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		txt, err := p.GetPlainText(nil)
		if err != nil {
			// image-only or undecodable page; OCR may still recover it
			pages = append(pages, "")
			continue
		}
		pages = append(pages, txt)
	}
	return pages, nil
}

// pdftotextLayer shells out to poppler's pdftotext.
type pdftotextLayer struct {
	e *Extractor
}

func (l *pdftotextLayer) PageTexts(ctx context.Context, path string) ([]string, error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, _, err := l.e.runner.Run(ctx, l.e.cfg.Pdftotext, l.e.logger, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return nil, fmt.Errorf("text layer: %w", err)
	}
	// A form-feed \f is used as page separator, including after the last page
	text := strings.TrimSuffix(string(out), "\f")
	if text == "" {
		return nil, nil
	}
	return strings.Split(text, "\f"), nil
}
