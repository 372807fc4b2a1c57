package export

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/marks-tracker/internal/common"
	"github.com/joseph-ayodele/marks-tracker/internal/entity"
)

//go:embed summary.schema.json
var summarySchema []byte

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

// BuildSummary counts the report partitions of a run. Passed, Failed and
// Absent follow the folded report; Unknown is the part of Absent whose token
// was not recognized.
func BuildSummary(runID, method string, pages int, p entity.Partitions, dropped int) entity.Summary {
	folded := p.Fold()
	return entity.Summary{
		RunID:   runID,
		Method:  method,
		Pages:   pages,
		Total:   folded.Len(),
		Passed:  len(folded.Passed),
		Failed:  len(folded.Failed),
		Absent:  len(folded.Absent),
		Unknown: len(p.Unknown),
		Dropped: dropped,
	}
}

// MarshalSummary encodes s and checks the result against the summary schema.
func MarshalSummary(s entity.Summary) ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal summary: %w", err)
	}
	if err := ValidateSummaryJSON(b); err != nil {
		return nil, err
	}
	return b, nil
}

// ValidateSummaryJSON validates data against the embedded summary schema.
func ValidateSummaryJSON(data []byte) error {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("summary.schema.json", bytes.NewReader(summarySchema)); err != nil {
			compileErr = fmt.Errorf("add schema: %w", err)
			return
		}
		compiled, compileErr = compiler.Compile("summary.schema.json")
	})
	if compileErr != nil {
		return fmt.Errorf("compile schema: %w", compileErr)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("%w: unmarshal summary: %w", common.ErrValidation, err)
	}
	if err := compiled.Validate(v); err != nil {
		return fmt.Errorf("%w: summary does not match schema: %w", common.ErrValidation, err)
	}
	return nil
}
