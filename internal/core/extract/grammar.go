package extract

import (
	"strings"

	"github.com/joseph-ayodele/marks-tracker/internal/entity"
)

// Grammar recognizes
//
//	Enrollment Space Word (Space Word)* Space Status
//
// where Status is a Number or an absence keyword (A, None, Absent; any case).
// The name is non-greedy: the first Status after at least one name word ends
// the record. Matches never overlap; a sequence broken by an unexpected token
// restarts at that token.
type Grammar struct {
	// MaxNameWords bounds the name length; 0 means unlimited. A positive
	// bound rejects runs of prose that happen to end in a number.
	MaxNameWords int
}

type state int

const (
	stStart state = iota
	stAfterID
	stNeedName
	stInName
	stAfterNameSpace
)

// IsStatusKeyword reports whether s is one of the absence keywords the
// grammar accepts in the status slot.
func IsStatusKeyword(s string) bool {
	return strings.EqualFold(s, "A") || strings.EqualFold(s, "None") || strings.EqualFold(s, "Absent")
}

// Match runs the grammar over tokens and returns every record in text order.
func (g Grammar) Match(toks []Token) []entity.RawRecord {
	var (
		out   []entity.RawRecord
		st    = stStart
		id    Token
		names []string
	)
	reset := func() {
		st = stStart
		names = names[:0]
	}

	for i := 0; i < len(toks); i++ {
		t := toks[i]
		switch st {
		case stStart:
			if t.Kind == KindEnrollment {
				id = t
				st = stAfterID
			}
		case stAfterID:
			if t.Kind == KindSpace {
				st = stNeedName
				continue
			}
			reset()
			i--
		case stNeedName:
			if t.Kind == KindWord {
				names = append(names, t.Text)
				st = stInName
				continue
			}
			reset()
			i--
		case stInName:
			if t.Kind == KindSpace {
				st = stAfterNameSpace
				continue
			}
			reset()
			i--
		case stAfterNameSpace:
			switch {
			case t.Kind == KindNumber, t.Kind == KindWord && IsStatusKeyword(t.Text):
				out = append(out, entity.RawRecord{
					EnrollmentID: id.Text,
					Name:         strings.Join(names, " "),
					Token:        t.Text,
					Offset:       id.Pos,
				})
				reset()
			case t.Kind == KindWord:
				if g.MaxNameWords > 0 && len(names) >= g.MaxNameWords {
					reset()
					continue
				}
				names = append(names, t.Text)
				st = stInName
			default:
				reset()
				i--
			}
		}
	}
	return out
}
