package seed

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/spec-kit/amats-service/internal/domain"
	"github.com/spec-kit/amats-service/internal/suspension"
)

// File is the on-disk layout of the synthetic account seed.
type File struct {
	Accounts []Account `yaml:"accounts"`
}

// Account is one synthetic demo account.
type Account struct {
	Email         string      `yaml:"email"`
	FirstName     string      `yaml:"first_name"`
	LastName      string      `yaml:"last_name"`
	Role          string      `yaml:"role"`
	LicenseNumber string      `yaml:"license_number"`
	Company       string      `yaml:"company"`
	VehicleCount  int         `yaml:"vehicle_count"`
	Suspension    *Suspension `yaml:"suspension"`
}

// Suspension pre-suspends a seeded account starting at load time.
type Suspension struct {
	SuspendedBy string `yaml:"suspended_by"`
	Quantity    int    `yaml:"quantity"`
	Unit        string `yaml:"unit"`
}

// LoadFile reads and parses a seed file. An empty path yields no accounts.
func LoadFile(path string, now time.Time) ([]domain.Account, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(raw, now)
}

// Parse decodes seed YAML into synthetic accounts.
func Parse(raw []byte, now time.Time) ([]domain.Account, error) {
	var file File
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	seen := make(map[string]struct{}, len(file.Accounts))
	accounts := make([]domain.Account, 0, len(file.Accounts))
	for i, entry := range file.Accounts {
		account, err := entry.toDomain(now)
		if err != nil {
			return nil, fmt.Errorf("seed account %d: %w", i, err)
		}
		if _, dup := seen[account.Email]; dup {
			return nil, fmt.Errorf("seed account %d: duplicate email %s", i, account.Email)
		}
		seen[account.Email] = struct{}{}
		accounts = append(accounts, account)
	}
	return accounts, nil
}

func (a Account) toDomain(now time.Time) (domain.Account, error) {
	email := domain.NormalizeEmail(a.Email)
	if email == "" {
		return domain.Account{}, fmt.Errorf("email required")
	}

	var profile domain.Profile
	switch domain.Role(a.Role) {
	case domain.RoleDriver, "":
		profile = domain.DriverProfile{LicenseNumber: a.LicenseNumber}
	case domain.RoleFleetManager:
		if a.VehicleCount < 0 || a.VehicleCount > domain.MaxVehicleCount {
			return domain.Account{}, fmt.Errorf("vehicle_count %d out of range for %s", a.VehicleCount, email)
		}
		profile = domain.FleetManagerProfile{Company: a.Company, VehicleCount: a.VehicleCount}
	case domain.RoleAdmin:
		profile = domain.AdminProfile{}
	default:
		return domain.Account{}, fmt.Errorf("unknown role %q", a.Role)
	}

	account := domain.Account{
		Email:     email,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Profile:   profile,
		Active:    true,
		Synthetic: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if a.Suspension != nil {
		unit, err := suspension.ParseUnit(a.Suspension.Unit)
		if err != nil {
			return domain.Account{}, err
		}
		minutes, err := suspension.Encode(a.Suspension.Quantity, unit)
		if err != nil {
			return domain.Account{}, err
		}
		by := domain.NormalizeEmail(a.Suspension.SuspendedBy)
		if by == "" {
			by = domain.SystemActor
		}
		account.Suspend(domain.SuspensionRecord{SuspendedBy: by, DurationMinutes: minutes, StartedAt: now})
	}
	return account, nil
}
