package common

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("OCR_DPI", "")
	t.Setenv("OCR_TEXT_LAYER", "")
	cfg := LoadConfig()
	if cfg.OCR.DPI != 300 || cfg.OCR.TextLayer != "native" || cfg.OCR.Workers != 1 {
		t.Fatalf("ocr defaults = %+v", cfg.OCR)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults do not validate: %v", err)
	}
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("OCR_DPI", "200")
	t.Setenv("OCR_WORKERS", "not-a-number")
	t.Setenv("REPORT_UNKNOWN_SHEET", "true")
	t.Setenv("SERVER_PROCESS_TIMEOUT", "45s")
	cfg := LoadConfig()
	if cfg.OCR.DPI != 200 {
		t.Fatalf("dpi = %d", cfg.OCR.DPI)
	}
	if cfg.OCR.Workers != 1 {
		t.Fatalf("unparseable workers should keep the default, got %d", cfg.OCR.Workers)
	}
	if !cfg.Report.UnknownSheet || cfg.Server.ProcessTimeout != 45*time.Second {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoad_YAMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	yaml := `
ocr:
  text_layer: pdftotext
  workers: 4
extract:
  max_name_words: 6
audit:
  dsn: "sqlite::memory:"
  dial_timeout: 2s
log_level: debug
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OCR.TextLayer != "pdftotext" || cfg.OCR.Workers != 4 || cfg.Extract.MaxNameWords != 6 {
		t.Fatalf("overlay not applied: %+v", cfg)
	}
	if cfg.Audit.DialTimeout != 2*time.Second || cfg.LogLevel != "debug" {
		t.Fatalf("audit/log overlay = %+v %s", cfg.Audit, cfg.LogLevel)
	}
	// untouched keys keep their env defaults
	if cfg.OCR.DPI != 300 {
		t.Fatalf("dpi = %d", cfg.OCR.DPI)
	}
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(path, []byte("ocr:\n  engine: paddle\n  dpi: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	for _, field := range []string{"ocr.engine", "ocr.dpi"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("error does not name %s: %v", field, err)
		}
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("missing file accepted")
	}
}
