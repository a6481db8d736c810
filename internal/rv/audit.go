package rv

// Actions recorded in audit events, one per successful mutation.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Event is the payload of one audit-log entry. Field order is part of
// the canonical serialization the hash chain commits to: keep it
// lexicographic. Rev is empty (and omitted) for delete events.
type Event struct {
	Action   string `json:"action"`
	Resource string `json:"resource"`
	Rev      string `json:"rev,omitempty"`
	User     string `json:"user"`
}

// AuditLog is an append-only, hash-chained event log. It is never
// rewritten and outlives the resources whose history it records.
type AuditLog interface {
	// Append records one event, chaining its hash to the previous
	// entry's exact stored bytes.
	Append(event Event) error

	// Verify replays the chain from the beginning. Tampering — a hash
	// mismatch, an unparseable line, a truncated trailing append — is
	// reported as (false, nil); the error is reserved for I/O failures.
	// An empty or absent log verifies true.
	Verify() (bool, error)
}
