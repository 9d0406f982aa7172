package domain

import "time"

// SuspensionRecord describes a time-boxed restriction owned by one account.
// DurationMinutes is always stored in minutes regardless of the unit the admin chose.
type SuspensionRecord struct {
	SuspendedBy     string
	DurationMinutes int
	StartedAt       time.Time
}

// Duration returns the suspension length.
func (r SuspensionRecord) Duration() time.Duration {
	return time.Duration(r.DurationMinutes) * time.Minute
}

// EndsAt returns the instant the suspension lapses.
func (r SuspensionRecord) EndsAt() time.Time {
	return r.StartedAt.Add(r.Duration())
}
