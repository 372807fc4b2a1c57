package constants

// Status is the per-record result status. Present is provisional: it is
// replaced by Pass or Fail once the threshold rule runs.
type Status string

// Stable values (written verbatim into the report's Status column).
const (
	StatusPresent Status = "Present" // numeric mark parsed, not yet classified
	StatusAbsent  Status = "Absent"  // absence keyword (A, Absent, None)
	StatusUnknown Status = "Unknown" // token neither numeric nor an absence keyword
	StatusPass    Status = "Pass"
	StatusFail    Status = "Fail"
)

// ParseStatus maps a report cell back to a Status.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusPresent, StatusAbsent, StatusUnknown, StatusPass, StatusFail:
		return Status(s), true
	}
	return "", false
}

// JobStatus is the lifecycle status of an extract_run row in the audit store.
type JobStatus string

const (
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusOK      JobStatus = "OK"
	JobStatusFailed  JobStatus = "FAILED"
)
