package dto

import (
	"time"

	"github.com/spec-kit/amats-service/internal/domain"
	"github.com/spec-kit/amats-service/internal/suspension"
)

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	Role          string `json:"role"`
	LicenseNumber string `json:"license_number"`
	Company       string `json:"company"`
	VehicleCount  int    `json:"vehicle_count"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AccountResponse is the public view of an account.
type AccountResponse struct {
	ID            string              `json:"id,omitempty"`
	Email         string              `json:"email"`
	FirstName     string              `json:"first_name"`
	LastName      string              `json:"last_name"`
	Role          domain.Role         `json:"role"`
	LicenseNumber string              `json:"license_number,omitempty"`
	Company       string              `json:"company,omitempty"`
	VehicleCount  *int                `json:"vehicle_count,omitempty"`
	Active        bool                `json:"active"`
	Synthetic     bool                `json:"synthetic"`
	Suspension    *SuspensionResponse `json:"suspension,omitempty"`
}

// SuspensionResponse describes an active suspension record.
type SuspensionResponse struct {
	SuspendedBy     string    `json:"suspended_by"`
	DurationMinutes int       `json:"duration_minutes"`
	Duration        string    `json:"duration"`
	StartedAt       time.Time `json:"started_at"`
	EndsAt          time.Time `json:"ends_at"`
}

// CountdownResponse is the live countdown shown to a suspended user.
type CountdownResponse struct {
	Email       string `json:"email"`
	SuspendedBy string `json:"suspended_by"`
	Minutes     int    `json:"minutes"`
	Seconds     int    `json:"seconds"`
	Display     string `json:"display"`
	State       string `json:"state"`
	// Token authorises polling and dismissing this countdown via X-Countdown-Token.
	Token string `json:"token,omitempty"`
}

// LoginResponse reports the resolved login outcome.
type LoginResponse struct {
	Outcome   domain.LoginOutcome `json:"outcome"`
	Message   string              `json:"message,omitempty"`
	Account   *AccountResponse    `json:"account,omitempty"`
	Auth      *AuthResponse       `json:"auth,omitempty"`
	Countdown *CountdownResponse  `json:"countdown,omitempty"`
}

// NewAccountResponse maps a domain account.
func NewAccountResponse(a *domain.Account) *AccountResponse {
	if a == nil {
		return nil
	}
	resp := &AccountResponse{
		ID:        a.ID,
		Email:     a.Email,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Role:      a.Role(),
		Active:    a.Active,
		Synthetic: a.Synthetic,
	}
	switch p := a.Profile.(type) {
	case domain.DriverProfile:
		resp.LicenseNumber = p.LicenseNumber
	case domain.FleetManagerProfile:
		count := p.VehicleCount
		resp.Company = p.Company
		resp.VehicleCount = &count
	}
	if a.Suspension != nil {
		resp.Suspension = &SuspensionResponse{
			SuspendedBy:     a.Suspension.SuspendedBy,
			DurationMinutes: a.Suspension.DurationMinutes,
			Duration:        suspension.Describe(a.Suspension.DurationMinutes),
			StartedAt:       a.Suspension.StartedAt,
			EndsAt:          a.Suspension.EndsAt(),
		}
	}
	return resp
}

// NewCountdownResponse maps a countdown snapshot.
func NewCountdownResponse(s suspension.CountdownState) *CountdownResponse {
	return &CountdownResponse{
		Email:       s.Email,
		SuspendedBy: s.SuspendedBy,
		Minutes:     s.Minutes,
		Seconds:     s.Seconds,
		Display:     s.Display(),
		State:       string(s.State),
		Token:       s.Token,
	}
}
