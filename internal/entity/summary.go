package entity

import (
	"fmt"
	"strings"
)

// Summary is the interactive-display view of one run.
type Summary struct {
	RunID   string `json:"run_id"`
	Method  string `json:"method"`
	Pages   int    `json:"pages"`
	Total   int    `json:"total"`
	Passed  int    `json:"passed"`
	Failed  int    `json:"failed"`
	Absent  int    `json:"absent"`
	Unknown int    `json:"unknown"`
	Dropped int    `json:"dropped"`
}

// Text renders the summary for a terminal.
func (s Summary) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total records: %d\n", s.Total)
	fmt.Fprintf(&b, "Passed: %d\n", s.Passed)
	fmt.Fprintf(&b, "Failed: %d\n", s.Failed)
	fmt.Fprintf(&b, "Absent: %d\n", s.Absent)
	if s.Unknown > 0 {
		fmt.Fprintf(&b, "  of which unrecognized status: %d\n", s.Unknown)
	}
	if s.Dropped > 0 {
		fmt.Fprintf(&b, "Dropped (missing id or name): %d\n", s.Dropped)
	}
	if s.Method != "" {
		fmt.Fprintf(&b, "Method: %s (%d pages)\n", s.Method, s.Pages)
	}
	return b.String()
}
