package core

// AuditEntry records one user-visible action for the audit trail.
type AuditEntry struct {
	ID     string `json:"id"`
	Time   string `json:"time"`
	Actor  string `json:"actor"`
	Action string `json:"action"`
	Target string `json:"target,omitempty"`
}
