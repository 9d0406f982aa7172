package suspension

import (
	"time"

	"github.com/spec-kit/amats-service/internal/domain"
)

// Evaluation is the result of checking a suspension against the clock.
type Evaluation struct {
	Expired          bool
	Remaining        time.Duration
	RemainingMinutes int
	RemainingSeconds int
}

// Evaluate reports whether rec has lapsed at now and, if not, how much time is left.
// It is only ever invoked synchronously from a login attempt, a countdown or a sweep.
func Evaluate(rec domain.SuspensionRecord, now time.Time) Evaluation {
	end := rec.EndsAt()
	if !now.Before(end) {
		return Evaluation{Expired: true}
	}

	remaining := end.Sub(now)
	ms := remaining.Milliseconds()
	return Evaluation{
		Remaining:        remaining,
		RemainingMinutes: int(ms / 60000),
		RemainingSeconds: int((ms % 60000) / 1000),
	}
}
