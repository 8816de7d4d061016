package drift

// Status classifies one tracked entry after a scan.
type Status string

const (
	// StatusCurrent means the computed hash matches the stored one.
	StatusCurrent Status = "CURRENT"
	// StatusDrifted means the tracked content changed since its hash
	// was recorded.
	StatusDrifted Status = "DRIFTED"
	// StatusMissing means a baseline exists but the tracked files are
	// gone or unreadable.
	StatusMissing Status = "MISSING"
	// StatusInvalid means the entry has no baseline to compare against:
	// no stored hash, a malformed pattern, or no discoverable project
	// root for a $ROOT/ spec.
	StatusInvalid Status = "INVALID"
)

// IsProblem reports whether the status should fail a CI report run.
func (s Status) IsProblem() bool {
	return s == StatusDrifted || s == StatusMissing
}

func (s Status) String() string {
	return string(s)
}
