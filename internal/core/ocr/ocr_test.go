package ocr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/joseph-ayodele/marks-tracker/constants"
	"github.com/joseph-ayodele/marks-tracker/internal/common"
	"github.com/joseph-ayodele/marks-tracker/internal/testutil"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakeRunner simulates pdftotext, pdftoppm and tesseract.
type fakeRunner struct {
	mu        sync.Mutex
	calls     []string
	pages     int
	texts     map[string]string // keyed by image base name
	failPage  string
	pdftotext string
}

func (f *fakeRunner) Run(_ context.Context, name string, _ *slog.Logger, args ...string) ([]byte, []byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, name+" "+strings.Join(args, " "))
	f.mu.Unlock()

	switch name {
	case "pdftoppm":
		prefix := args[len(args)-1]
		for i := 1; i <= f.pages; i++ {
			if err := os.WriteFile(fmt.Sprintf("%s-%02d.png", prefix, i), nil, 0o644); err != nil {
				return nil, nil, err
			}
		}
		return nil, nil, nil
	case "tesseract":
		base := filepath.Base(args[0])
		if base == f.failPage {
			return nil, []byte("read error"), errors.New("exit status 1")
		}
		return []byte(f.texts[base]), nil, nil
	case "pdftotext":
		return []byte(f.pdftotext), nil, nil
	}
	return nil, nil, fmt.Errorf("unexpected command %q", name)
}

type fakeLayer struct {
	pages []string
	err   error
}

func (l fakeLayer) PageTexts(context.Context, string) ([]string, error) { return l.pages, l.err }

func newTestExtractor(cfg Config, r *fakeRunner, layer TextLayer) *Extractor {
	e := NewExtractor(cfg, discard)
	e.runner = r
	if layer != nil {
		e.text = layer
	}
	return e
}

func TestExtract_PrefersTextLayer(t *testing.T) {
	r := &fakeRunner{}
	e := newTestExtractor(Config{}, r, fakeLayer{pages: []string{"0801CS001 Jane Doe 25", "0801CS002 John Roe Absent"}})

	res, err := e.Extract(context.Background(), []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if res.Method != constants.MethodPDFText {
		t.Fatalf("method = %q, want %q", res.Method, constants.MethodPDFText)
	}
	if want := "0801CS001 Jane Doe 25\n0801CS002 John Roe Absent"; res.Text != want {
		t.Fatalf("text = %q, want %q", res.Text, want)
	}
	if res.Pages != 2 {
		t.Fatalf("pages = %d, want 2", res.Pages)
	}
	if len(r.calls) != 0 {
		t.Fatalf("OCR should not run when the text layer has content, calls = %v", r.calls)
	}
}

func TestExtract_FallsBackToOCRInPageOrder(t *testing.T) {
	r := &fakeRunner{
		pages: 11,
		texts: map[string]string{
			"page-01.png": "0801CS001 Jane Doe 25",
			"page-02.png": "0801CS002 John Roe Absent",
			"page-11.png": "0801CS011 Last Page 30",
		},
	}
	e := newTestExtractor(Config{Workers: 4}, r, fakeLayer{pages: []string{"  ", "\n"}})

	res, err := e.Extract(context.Background(), []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if res.Method != constants.MethodPDFOCR {
		t.Fatalf("method = %q, want %q", res.Method, constants.MethodPDFOCR)
	}
	if res.Pages != 11 {
		t.Fatalf("pages = %d, want 11", res.Pages)
	}
	first := strings.Index(res.Text, "0801CS001")
	second := strings.Index(res.Text, "0801CS002")
	last := strings.Index(res.Text, "0801CS011")
	if first < 0 || second < first || last < second {
		t.Fatalf("pages merged out of order: %q", res.Text)
	}
}

func TestExtract_TextLayerErrorFallsBackToOCR(t *testing.T) {
	r := &fakeRunner{pages: 1, texts: map[string]string{"page-01.png": "0801CS001 Jane Doe 25"}}
	e := newTestExtractor(Config{}, r, fakeLayer{err: errors.New("bad xref")})

	res, err := e.Extract(context.Background(), []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if res.Method != constants.MethodPDFOCR {
		t.Fatalf("method = %q, want %q", res.Method, constants.MethodPDFOCR)
	}
	if len(res.Warnings) == 0 || !strings.Contains(res.Warnings[0], "bad xref") {
		t.Fatalf("expected text layer warning, got %v", res.Warnings)
	}
}

func TestExtract_PageFailureIsAWarning(t *testing.T) {
	r := &fakeRunner{
		pages:    2,
		failPage: "page-01.png",
		texts:    map[string]string{"page-02.png": "0801CS002 John Roe 12"},
	}
	e := newTestExtractor(Config{}, r, fakeLayer{})

	res, err := e.Extract(context.Background(), []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if res.Text != "0801CS002 John Roe 12" {
		t.Fatalf("text = %q", res.Text)
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "page 1") {
		t.Fatalf("warnings = %v, want one page 1 warning", res.Warnings)
	}
}

func TestExtract_BlankEverywhereIsExtractionFailed(t *testing.T) {
	r := &fakeRunner{pages: 2, texts: map[string]string{"page-01.png": "  \n", "page-02.png": ""}}
	e := newTestExtractor(Config{}, r, fakeLayer{pages: []string{""}})

	_, err := e.Extract(context.Background(), []byte("%PDF-1.4"))
	if !errors.Is(err, common.ErrExtractionFailed) {
		t.Fatalf("err = %v, want ErrExtractionFailed", err)
	}
}

func TestExtract_RenderFailureIsExtractionFailed(t *testing.T) {
	r := &fakeRunner{} // renders zero pages
	e := newTestExtractor(Config{}, r, fakeLayer{})

	_, err := e.Extract(context.Background(), []byte("%PDF-1.4"))
	if !errors.Is(err, common.ErrExtractionFailed) {
		t.Fatalf("err = %v, want ErrExtractionFailed", err)
	}
}

func TestExtract_EmptyPayload(t *testing.T) {
	e := newTestExtractor(Config{}, &fakeRunner{}, fakeLayer{})
	if _, err := e.Extract(context.Background(), nil); !errors.Is(err, common.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestExtract_StagedFileIsRemoved(t *testing.T) {
	dir := t.TempDir()
	e := newTestExtractor(Config{ArtifactCacheDir: dir}, &fakeRunner{}, fakeLayer{pages: []string{"text"}})
	if _, err := e.Extract(context.Background(), []byte("%PDF-1.4")); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("staging dir not cleaned: %d entries", len(entries))
	}
}

func TestPdftotextLayer_SplitsOnFormFeed(t *testing.T) {
	r := &fakeRunner{pdftotext: "page one\fpage two\f"}
	e := newTestExtractor(Config{TextLayer: "pdftotext"}, r, nil)

	pages, err := e.text.PageTexts(context.Background(), "in.pdf")
	if err != nil {
		t.Fatalf("PageTexts() error = %v", err)
	}
	if len(pages) != 2 || pages[0] != "page one" || pages[1] != "page two" {
		t.Fatalf("pages = %q", pages)
	}
}

func TestNativeTextLayer_ReadsPages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "marks.pdf")
	data := testutil.MiniPDF([]string{"0801CS001 Jane Doe 25"}, nil)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	pages, err := nativeTextLayer{}.PageTexts(context.Background(), path)
	if err != nil {
		t.Fatalf("PageTexts() error = %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("pages = %d, want 2", len(pages))
	}
	if !strings.Contains(pages[0], "0801CS001 Jane Doe 25") {
		t.Fatalf("page 1 = %q", pages[0])
	}
	if strings.TrimSpace(pages[1]) != "" {
		t.Fatalf("page 2 should be blank, got %q", pages[1])
	}
}

func TestTesseractArgs(t *testing.T) {
	e := NewExtractor(Config{PSM: 6, OEM: 1, TessdataDir: "/td"}, discard)
	got := strings.Join(e.engine.(*tesseractEngine).baseArgs("p.png"), " ")
	want := "p.png stdout -l eng --psm 6 --oem 1 --tessdata-dir /td"
	if got != want {
		t.Fatalf("args = %q, want %q", got, want)
	}
}
