package constants

// EnrollmentPrefix starts every institutional enrollment id.
const EnrollmentPrefix = "0801"

// PassMark is the inclusive passing threshold of the grading scheme.
const PassMark = 22

// Absence keywords, compared case-insensitively.
var AbsenceTokens = []string{"a", "absent", "none"}

// NoneToken replaces an empty mark/status capture.
const NoneToken = "None"

// Report layout.
const (
	SheetPassed  = "Passed Students"
	SheetFailed  = "Failed Students"
	SheetAbsent  = "Absent Students"
	SheetUnknown = "Unknown Status"
)

// ReportHeaders are the columns of every report sheet, in order.
var ReportHeaders = []string{"Enrollment No", "Name", "Marks", "Status"}
