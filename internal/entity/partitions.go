package entity

import "github.com/joseph-ayodele/marks-tracker/constants"

// Partitions are the classified result sets. Passed, Failed and Absent are
// disjoint and feed the report; Unknown holds records whose token was neither
// numeric nor an absence keyword.
type Partitions struct {
	Passed  []StudentRecord `json:"passed"`
	Failed  []StudentRecord `json:"failed"`
	Absent  []StudentRecord `json:"absent"`
	Unknown []StudentRecord `json:"unknown"`
}

// Len returns the number of classified records across all buckets.
func (p Partitions) Len() int {
	return len(p.Passed) + len(p.Failed) + len(p.Absent) + len(p.Unknown)
}

// Empty reports whether no bucket holds a record.
func (p Partitions) Empty() bool { return p.Len() == 0 }

// Fold merges Unknown into Absent with status Absent. Both buckets keep
// their own order; Seq only decides how the two are interleaved, so records
// that share a Seq keep Absent first. The receiver is not modified.
func (p Partitions) Fold() Partitions {
	if len(p.Unknown) == 0 {
		return p
	}
	absent := make([]StudentRecord, 0, len(p.Absent)+len(p.Unknown))
	i, j := 0, 0
	for i < len(p.Absent) || j < len(p.Unknown) {
		if j == len(p.Unknown) || (i < len(p.Absent) && p.Absent[i].Seq <= p.Unknown[j].Seq) {
			absent = append(absent, p.Absent[i])
			i++
			continue
		}
		r := p.Unknown[j]
		r.Status = constants.StatusAbsent
		absent = append(absent, r)
		j++
	}
	return Partitions{Passed: p.Passed, Failed: p.Failed, Absent: absent}
}
