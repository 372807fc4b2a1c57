// Package classify applies the institution's threshold rule to normalized
// records and partitions them for the report.
package classify

import (
	"strings"

	"github.com/joseph-ayodele/marks-tracker/constants"
	"github.com/joseph-ayodele/marks-tracker/internal/entity"
)

// Stats counts what classification did besides partitioning.
type Stats struct {
	Dropped  []entity.StudentRecord // empty enrollment id or name
	Unknown  int                    // provisional Unknown, kept in Partitions.Unknown
	Received int
}

// Classify assigns every well-formed record its final status and returns the
// three report partitions. Records whose token was not recognized are folded
// into absent where they occur in the input, so Seq plays no part in ordering.
func Classify(records []entity.StudentRecord) (passed, failed, absent []entity.StudentRecord) {
	p, _ := partition(records, true)
	return p.Passed, p.Failed, p.Absent
}

// ClassifyDetailed is Classify without the fold: records with an
// unrecognized token stay in Partitions.Unknown with status Unknown.
// Input order is preserved inside every bucket.
func ClassifyDetailed(records []entity.StudentRecord) (entity.Partitions, Stats) {
	return partition(records, false)
}

func partition(records []entity.StudentRecord, fold bool) (entity.Partitions, Stats) {
	var (
		p  entity.Partitions
		st = Stats{Received: len(records)}
	)
	for _, r := range records {
		if Malformed(r) {
			st.Dropped = append(st.Dropped, r)
			continue
		}
		r.Status = Status(r)
		switch r.Status {
		case constants.StatusPass:
			p.Passed = append(p.Passed, r)
		case constants.StatusFail:
			p.Failed = append(p.Failed, r)
		case constants.StatusUnknown:
			st.Unknown++
			if fold {
				r.Status = constants.StatusAbsent
				p.Absent = append(p.Absent, r)
				continue
			}
			p.Unknown = append(p.Unknown, r)
		default:
			p.Absent = append(p.Absent, r)
		}
	}
	return p, st
}

// Malformed reports whether r lacks an enrollment id or a name.
func Malformed(r entity.StudentRecord) bool {
	return strings.TrimSpace(r.EnrollmentID) == "" || strings.TrimSpace(r.Name) == ""
}

// Status is the final status of a single record. Marks decide Pass or Fail;
// a record without marks is Absent unless its provisional status was Unknown.
// Final statuses map onto themselves, so classifying a report's rows again
// yields the same assignment.
func Status(r entity.StudentRecord) constants.Status {
	if r.Marks != nil {
		if *r.Marks >= constants.PassMark {
			return constants.StatusPass
		}
		return constants.StatusFail
	}
	if r.Status == constants.StatusUnknown {
		return constants.StatusUnknown
	}
	return constants.StatusAbsent
}
