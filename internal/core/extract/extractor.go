package extract

import (
	"log/slog"

	"github.com/joseph-ayodele/marks-tracker/internal/entity"
)

// Config holds grammar knobs.
type Config struct {
	MaxNameWords int // 0 = unlimited
}

// Extractor finds (enrollment id, name, mark-or-status) triples in free text.
type Extractor struct {
	grammar Grammar
	logger  *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{grammar: Grammar{MaxNameWords: cfg.MaxNameWords}, logger: logger}
}

// ExtractRecords scans the whole text, line breaks included, and returns
// every non-overlapping match in text order.
func (x *Extractor) ExtractRecords(text string) []entity.RawRecord {
	toks := Tokenize(text)
	recs := x.grammar.Match(toks)
	x.logger.Debug("records extracted", "tokens", len(toks), "records", len(recs), "text_bytes", len(text))
	return recs
}

// ExtractRecords runs the default grammar over text.
func ExtractRecords(text string) []entity.RawRecord {
	return Grammar{}.Match(Tokenize(text))
}
