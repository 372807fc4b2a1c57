package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	OCR      OCRConfig     `yaml:"ocr"`
	Extract  ExtractConfig `yaml:"extract"`
	Report   ReportConfig  `yaml:"report"`
	Audit    AuditConfig   `yaml:"audit"`
	Server   ServerConfig  `yaml:"server"`
	LogLevel string        `yaml:"log_level"`
}

// OCRConfig holds text acquisition configuration
type OCRConfig struct {
	TextLayer           string `yaml:"text_layer"` // "native" | "pdftotext"
	Engine              string `yaml:"engine"`     // "tesseract" | "gosseract"
	Pdftotext           string `yaml:"pdftotext"`
	Pdftoppm            string `yaml:"pdftoppm"`
	Tesseract           string `yaml:"tesseract"`
	TesseractLang       string `yaml:"tesseract_lang"`
	TessdataDir         string `yaml:"tessdata_dir"`
	DPI                 int    `yaml:"dpi"`
	MaxPages            int    `yaml:"max_pages"`
	Workers             int    `yaml:"workers"`
	PSM                 int    `yaml:"psm"`
	OEM                 int    `yaml:"oem"`
	EnableTSVConfidence bool   `yaml:"tsv_confidence"`
	ArtifactCacheDir    string `yaml:"artifact_cache_dir"`
}

// ExtractConfig holds record grammar configuration
type ExtractConfig struct {
	MaxNameWords int `yaml:"max_name_words"` // 0 = unlimited
}

// ReportConfig holds spreadsheet configuration
type ReportConfig struct {
	UnknownSheet bool `yaml:"unknown_sheet"`
}

// AuditConfig holds the optional audit store configuration.
// An empty DSN disables the store; diagnostics then go to the log only.
type AuditConfig struct {
	DSN             string        `yaml:"dsn"`
	MaxConns        int32         `yaml:"max_conns"`
	MinConns        int32         `yaml:"min_conns"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time"`
	DialTimeout     time.Duration `yaml:"dial_timeout"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr       string        `yaml:"grpc_addr"`
	MaxUploadBytes int           `yaml:"max_upload_bytes"`
	Workers        int           `yaml:"workers"`
	QueueSize      int           `yaml:"queue_size"`
	ProcessTimeout time.Duration `yaml:"process_timeout"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		OCR: OCRConfig{
			TextLayer:           getEnv("OCR_TEXT_LAYER", "native"),
			Engine:              getEnv("OCR_ENGINE", "tesseract"),
			Pdftotext:           getEnv("PDFTOTEXT_BIN", "pdftotext"),
			Pdftoppm:            getEnv("PDFTOPPM_BIN", "pdftoppm"),
			Tesseract:           getEnv("TESSERACT_BIN", "tesseract"),
			TesseractLang:       getEnv("TESSERACT_LANG", "eng"),
			TessdataDir:         getEnv("TESSDATA_PREFIX", ""),
			DPI:                 getEnvAsInt("OCR_DPI", 300),
			MaxPages:            getEnvAsInt("OCR_MAX_PAGES", 0),
			Workers:             getEnvAsInt("OCR_WORKERS", 1),
			PSM:                 getEnvAsInt("TESSERACT_PSM", 0),
			OEM:                 getEnvAsInt("TESSERACT_OEM", 0),
			EnableTSVConfidence: getEnvAsBool("OCR_TSV_CONFIDENCE", false),
			ArtifactCacheDir:    getEnv("ARTIFACT_CACHE_DIR", ""),
		},
		Extract: ExtractConfig{
			MaxNameWords: getEnvAsInt("EXTRACT_MAX_NAME_WORDS", 0),
		},
		Report: ReportConfig{
			UnknownSheet: getEnvAsBool("REPORT_UNKNOWN_SHEET", false),
		},
		Audit: AuditConfig{
			DSN:             getEnv("AUDIT_DB_URL", ""),
			MaxConns:        getEnvAsInt32("AUDIT_DB_MAX_CONNS", 4),
			MinConns:        getEnvAsInt32("AUDIT_DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("AUDIT_DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("AUDIT_DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("AUDIT_DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Server: ServerConfig{
			GRPCAddr:       getEnv("GRPC_ADDR", ":8080"),
			MaxUploadBytes: getEnvAsInt("MAX_UPLOAD_BYTES", 64<<20),
			Workers:        getEnvAsInt("SERVER_WORKERS", 2),
			QueueSize:      getEnvAsInt("SERVER_QUEUE_SIZE", 32),
			ProcessTimeout: getEnvAsDuration("SERVER_PROCESS_TIMEOUT", 3*time.Minute),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Load reads environment defaults and, when path is non-empty, overlays the
// YAML file at path. The result is validated.
func Load(path string) (*Config, error) {
	cfg := LoadConfig()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, NewAppError("CONFIG_ERROR", "parse "+path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator().
		Field("ocr.text_layer", c.OCR.TextLayer, OneOf("native", "pdftotext")).
		Field("ocr.engine", c.OCR.Engine, OneOf("tesseract", "gosseract")).
		Field("ocr.tesseract_lang", c.OCR.TesseractLang, Required).
		Field("ocr.dpi", c.OCR.DPI, Positive).
		Field("ocr.workers", c.OCR.Workers, Positive).
		Field("ocr.max_pages", c.OCR.MaxPages, NonNegative).
		Field("extract.max_name_words", c.Extract.MaxNameWords, NonNegative).
		Field("server.max_upload_bytes", c.Server.MaxUploadBytes, Positive).
		Field("server.workers", c.Server.Workers, Positive).
		Field("server.queue_size", c.Server.QueueSize, Positive).
		Field("log_level", strings.ToLower(c.LogLevel), OneOf("debug", "info", "warn", "error"))
	if v.HasErrors() {
		return NewAppError("CONFIG_ERROR", v.ErrorMessage(), ErrValidation)
	}
	return nil
}
