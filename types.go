package picfield

// Severity expresses the severity level for failures.
type Severity int

const (
	Error Severity = iota // Rejects the input.
	Warn                  // Reported upstream (e.g., configuration warnings); does not reject.
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warn:
		return "warn"
	default:
		return "unknown"
	}
}
