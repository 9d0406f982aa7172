package dto

import (
	"time"

	"github.com/spec-kit/amats-service/internal/domain"
)

// SuspendRequest payload for POST /admin/accounts/:email/suspend.
type SuspendRequest struct {
	Quantity int    `json:"quantity"`
	Unit     string `json:"unit"`
}

// ActionResponse reports the effect of an admin action.
type ActionResponse struct {
	Outcome domain.ActionOutcome `json:"outcome"`
	Email   string               `json:"email"`
	Account *AccountResponse     `json:"account,omitempty"`
}

// AccountSummaryResponse is one row of the admin account list.
type AccountSummaryResponse struct {
	*AccountResponse
	SuspensionLabel  string     `json:"suspension_label,omitempty"`
	RemainingLabel   string     `json:"remaining_label,omitempty"`
	RemainingMinutes int        `json:"remaining_minutes,omitempty"`
	EndsAt           *time.Time `json:"ends_at,omitempty"`
}

// AuditEntryResponse is one audit trail row.
type AuditEntryResponse struct {
	ID        string               `json:"id"`
	Action    string               `json:"action"`
	Target    string               `json:"target"`
	Actor     string               `json:"actor"`
	Outcome   domain.ActionOutcome `json:"outcome"`
	Details   map[string]any       `json:"details,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
}
