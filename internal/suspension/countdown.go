package suspension

import "fmt"

// State is a countdown lifecycle state.
type State string

const (
	StateIdle     State = "idle"
	StateCounting State = "counting"
	StateExpired  State = "expired"
)

// Countdown is the per-second remaining-time state machine shown to a suspended user.
// It is not safe for concurrent use; Presenter serialises access.
type Countdown struct {
	state   State
	minutes int
	seconds int
}

// NewCountdown returns an idle countdown.
func NewCountdown() *Countdown {
	return &Countdown{state: StateIdle}
}

// Start moves an idle countdown into counting. A zero start expires immediately.
func (c *Countdown) Start(minutes, seconds int) State {
	if c.state != StateIdle {
		return c.state
	}
	if minutes < 0 {
		minutes = 0
	}
	if seconds < 0 {
		seconds = 0
	}
	minutes += seconds / 60
	seconds %= 60

	c.minutes, c.seconds = minutes, seconds
	if minutes == 0 && seconds == 0 {
		c.state = StateExpired
		return c.state
	}
	c.state = StateCounting
	return c.state
}

// Tick advances the countdown by one second. The tick that reaches 00:00 expires it,
// so a countdown started at (m, s) expires after exactly 60*m+s ticks.
func (c *Countdown) Tick() State {
	if c.state != StateCounting {
		return c.state
	}
	c.seconds--
	if c.seconds < 0 {
		c.seconds = 59
		c.minutes--
	}
	if c.minutes < 0 || (c.minutes == 0 && c.seconds == 0) {
		c.minutes, c.seconds = 0, 0
		c.state = StateExpired
	}
	return c.state
}

// State returns the current lifecycle state.
func (c *Countdown) State() State { return c.state }

// Remaining returns the displayed minutes and seconds.
func (c *Countdown) Remaining() (int, int) { return c.minutes, c.seconds }

// TotalSeconds returns the displayed remaining time in seconds.
func (c *Countdown) TotalSeconds() int { return c.minutes*60 + c.seconds }

// Display renders the remaining time as mm:ss.
func (c *Countdown) Display() string {
	return fmt.Sprintf("%02d:%02d", c.minutes, c.seconds)
}
