package events

import (
	"time"

	"github.com/spec-kit/amats-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventAccountRegistered  EventType = "account.registered"
	EventAccountSuspended   EventType = "account.suspended"
	EventAccountActivated   EventType = "account.activated"
	EventAccountDeleted     EventType = "account.deleted"
	EventAccountReactivated EventType = "account.reactivated"
)

// Event is the refresh signal emitted after an account changes.
type Event struct {
	ID        string               `json:"id"`
	Type      EventType            `json:"type"`
	Email     string               `json:"email"`
	Actor     string               `json:"actor"`
	Outcome   domain.ActionOutcome `json:"outcome"`
	Timestamp time.Time            `json:"timestamp"`
	Payload   interface{}          `json:"payload,omitempty"`
}

// AccountSuspendedPayload payload.
type AccountSuspendedPayload struct {
	DurationMinutes int       `json:"duration_minutes"`
	Description     string    `json:"description"`
	EndsAt          time.Time `json:"ends_at"`
}

// AccountRegisteredPayload payload.
type AccountRegisteredPayload struct {
	Role         domain.Role `json:"role"`
	Reregistered bool        `json:"reregistered"`
}
