package domain

// LoginOutcome describes how a login attempt was resolved.
type LoginOutcome string

const (
	LoginProceed          LoginOutcome = "proceed"
	LoginBlockedCountdown LoginOutcome = "blocked_countdown"
	LoginBlockedPermanent LoginOutcome = "blocked_permanent"
	LoginReactivated      LoginOutcome = "reactivated"
)

// Allowed reports whether the outcome lets the caller in.
func (o LoginOutcome) Allowed() bool {
	return o == LoginProceed || o == LoginReactivated
}

// ActionOutcome describes the effect of an admin action.
type ActionOutcome string

const (
	ActionApplied   ActionOutcome = "applied"
	ActionSynthetic ActionOutcome = "synthetic"
	ActionNoop      ActionOutcome = "noop"
)
