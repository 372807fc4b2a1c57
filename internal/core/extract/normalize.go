package extract

import (
	"math"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/marks-tracker/constants"
	"github.com/joseph-ayodele/marks-tracker/internal/entity"
)

// Normalize turns a raw match into a StudentRecord with a provisional
// status. Numeric tokens are rounded up (ceiling) and marked Present;
// absence keywords carry no marks and are Absent; any other token is Unknown.
func Normalize(seq int, raw entity.RawRecord) entity.StudentRecord {
	tok := strings.TrimSpace(raw.Token)
	if tok == "" {
		tok = constants.NoneToken
	}
	rec := entity.StudentRecord{
		Seq:          seq,
		EnrollmentID: strings.TrimSpace(raw.EnrollmentID),
		Name:         strings.Join(strings.Fields(raw.Name), " "),
		Token:        tok,
	}
	switch {
	case isMark(tok):
		m, ok := ceilMark(tok)
		if !ok {
			rec.Status = constants.StatusUnknown
			break
		}
		rec.Marks = &m
		rec.Status = constants.StatusPresent
	case isAbsence(tok):
		rec.Status = constants.StatusAbsent
	default:
		rec.Status = constants.StatusUnknown
	}
	return rec
}

// NormalizeAll normalizes raws, numbering them in extraction order.
func NormalizeAll(raws []entity.RawRecord) []entity.StudentRecord {
	out := make([]entity.StudentRecord, 0, len(raws))
	for i, r := range raws {
		out = append(out, Normalize(i, r))
	}
	return out
}

// isMark accepts digits with at most one '.', e.g. "25", "21.5", "5.", ".5".
func isMark(s string) bool {
	digits := 0
	dots := 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= '0' && c <= '9':
			digits++
		case c == '.':
			dots++
		default:
			return false
		}
	}
	return digits > 0 && dots <= 1
}

// ceilMark rounds a non-negative decimal up. The only values refused are
// those whose ceiling does not fit in an int; they come back as not ok and
// the record is reported Unknown rather than truncated.
func ceilMark(s string) (int, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || f >= float64(math.MaxInt) {
		return 0, false
	}
	return int(math.Ceil(f)), true
}

func isAbsence(s string) bool {
	for _, a := range constants.AbsenceTokens {
		if strings.EqualFold(s, a) {
			return true
		}
	}
	return false
}
