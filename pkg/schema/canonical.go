package schema

// Status is the classified account state of a roster row.
type Status int

const (
	// StatusUnknown is a non-empty status in neither configured set.
	StatusUnknown Status = iota
	StatusActive
	StatusInactive
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusInactive:
		return "inactive"
	default:
		return "unknown"
	}
}

// UserRecord is a roster row with its identity fields extracted.
type UserRecord struct {
	ID        string            `json:"id"`
	RawID     string            `json:"rawId"`
	Status    Status            `json:"status"`
	RawStatus string            `json:"rawStatus"`
	Line      int               `json:"line"`
	Fields    map[string]string `json:"fields"`
}

// TerminationRecord is a terminations row.
type TerminationRecord struct {
	ID     string            `json:"id"`
	RawID  string            `json:"rawId"`
	Status string            `json:"status,omitempty"`
	Line   int               `json:"line"`
	Fields map[string]string `json:"fields"`
}

// InactivationCandidate is a roster user that must be set inactive.
// Fields holds the output columns, status already rewritten. RawID is
// the id as the roster spelled it.
type InactivationCandidate struct {
	ID     string            `json:"id"`
	RawID  string            `json:"rawId"`
	Line   int               `json:"line"`
	Fields map[string]string `json:"fields"`
}
