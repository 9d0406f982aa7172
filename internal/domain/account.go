package domain

import (
	"math"
	"strings"
	"time"
)

// Role enumerates account roles.
type Role string

const (
	RoleDriver       Role = "driver"
	RoleFleetManager Role = "fleet_manager"
	RoleAdmin        Role = "admin"
)

// SystemActor is recorded when the service itself changes an account.
const SystemActor = "system"

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleDriver, RoleFleetManager, RoleAdmin:
		return true
	}
	return false
}

// Profile carries the role-specific attributes of an account.
type Profile interface {
	Role() Role
}

// DriverProfile describes a monitored driver.
type DriverProfile struct {
	LicenseNumber string
}

func (DriverProfile) Role() Role { return RoleDriver }

// FleetManagerProfile describes a manager responsible for a fleet of vehicles.
// MaxVehicleCount is the largest fleet size the accounts table can store.
const MaxVehicleCount = math.MaxInt32

type FleetManagerProfile struct {
	Company      string
	VehicleCount int
}

func (FleetManagerProfile) Role() Role { return RoleFleetManager }

// AdminProfile describes a dashboard administrator.
type AdminProfile struct{}

func (AdminProfile) Role() Role { return RoleAdmin }

// Account is a registered identity. An account is either active or suspended;
// a suspended account always carries a SuspensionRecord.
type Account struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	Profile      Profile
	Active       bool
	Suspension   *SuspensionRecord
	Synthetic    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Role returns the account role, defaulting to driver for accounts without a profile.
func (a *Account) Role() Role {
	if a == nil || a.Profile == nil {
		return RoleDriver
	}
	return a.Profile.Role()
}

// DisplayName joins the name parts, falling back to the email.
func (a *Account) DisplayName() string {
	name := strings.TrimSpace(a.FirstName + " " + a.LastName)
	if name == "" {
		return a.Email
	}
	return name
}

// IsSuspended reports whether the account is currently flagged inactive.
func (a *Account) IsSuspended() bool {
	return !a.Active
}

// Suspend marks the account inactive with the given record, replacing any prior one.
func (a *Account) Suspend(rec SuspensionRecord) {
	a.Active = false
	a.Suspension = &rec
}

// Reactivate clears the suspension.
func (a *Account) Reactivate() {
	a.Active = true
	a.Suspension = nil
}

// Clone returns a deep copy so stores never hand out shared pointers.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	cp := *a
	if a.Suspension != nil {
		rec := *a.Suspension
		cp.Suspension = &rec
	}
	return &cp
}

// NormalizeEmail lowercases and trims an email so it can be used as an identity key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
