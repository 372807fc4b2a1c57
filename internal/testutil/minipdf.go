// Package testutil holds fixtures shared by tests across packages.
package testutil

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
)

// MiniPDF builds a small, well-formed PDF whose pages carry the given lines
// as a Helvetica text layer. A page with no lines has no text objects, which
// is what a scanned page looks like to a text extractor. It panics if the
// document cannot be written.
func MiniPDF(pages ...[]string) []byte {
	doc := fpdf.New("P", "pt", "Letter", "")
	doc.SetCompression(false)
	doc.SetCreationDate(time.Unix(0, 0).UTC())
	doc.SetFont("Helvetica", "", 12)
	for _, lines := range pages {
		doc.AddPage()
		for i, ln := range lines {
			// the text layer reader only breaks lines on T*, which Text never
			// emits; a trailing space keeps neighbouring lines apart
			doc.Text(72, 72+float64(i)*14, ln+" ")
		}
	}

	var b bytes.Buffer
	if err := doc.Output(&b); err != nil {
		panic(fmt.Sprintf("testutil: write pdf: %v", err))
	}
	return b.Bytes()
}
