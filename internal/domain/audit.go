package domain

import "time"

// AuditEntry records one administrative change to an account.
type AuditEntry struct {
	ID        string
	Action    string
	Target    string
	Actor     string
	Outcome   ActionOutcome
	Details   map[string]any
	CreatedAt time.Time
}
