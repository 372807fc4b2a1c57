package entity

import "github.com/joseph-ayodele/marks-tracker/constants"

// RawRecord is one grammar match over the acquired text. It is transient:
// each one is normalized into a StudentRecord immediately.
type RawRecord struct {
	EnrollmentID string `json:"enrollment_id"`
	Name         string `json:"name"`
	Token        string `json:"token"`
	Offset       int    `json:"offset"`
}

// StudentRecord is a normalized record. Marks is set only when a numeric
// token was parsed; Status is provisional until classification.
type StudentRecord struct {
	Seq          int              `json:"seq"`
	EnrollmentID string           `json:"enrollment_id"`
	Name         string           `json:"name"`
	Marks        *int             `json:"marks,omitempty"`
	Status       constants.Status `json:"status"`
	Token        string           `json:"token,omitempty"`
}

// HasMarks reports whether a numeric mark was parsed.
func (r StudentRecord) HasMarks() bool { return r.Marks != nil }
