package seed

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/amats-service/internal/domain"
)

const sample = `
accounts:
  - email: Demo.Driver@amats.local
    first_name: Demo
    last_name: Driver
    role: driver
    license_number: DL-001
  - email: demo.manager@amats.local
    role: fleet_manager
    company: Acme Haulage
    vehicle_count: 14
    suspension:
      suspended_by: admin@amats.local
      quantity: 2
      unit: hours
`

func TestParse(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	accounts, err := Parse([]byte(sample), now)
	require.NoError(t, err)
	require.Len(t, accounts, 2)

	assert.Equal(t, "demo.driver@amats.local", accounts[0].Email)
	assert.Equal(t, domain.DriverProfile{LicenseNumber: "DL-001"}, accounts[0].Profile)
	assert.True(t, accounts[0].Active)
	assert.True(t, accounts[0].Synthetic)

	manager := accounts[1]
	assert.Equal(t, domain.RoleFleetManager, manager.Role())
	assert.False(t, manager.Active)
	require.NotNil(t, manager.Suspension)
	assert.Equal(t, 120, manager.Suspension.DurationMinutes)
	assert.Equal(t, now, manager.Suspension.StartedAt)
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"missing email": "accounts:\n  - first_name: x\n",
		"bad role":      "accounts:\n  - email: a@b.c\n    role: pilot\n",
		"bad unit":      "accounts:\n  - email: a@b.c\n    suspension: {quantity: 1, unit: eons}\n",
		"duplicate":     "accounts:\n  - email: a@b.c\n  - email: A@B.C\n",
		"not yaml":      "accounts: [",
		"too long":      "accounts:\n  - email: a@b.c\n    suspension: {quantity: 300, unit: years}\n",
		"huge fleet":    "accounts:\n  - email: a@b.c\n    role: fleet_manager\n    vehicle_count: 3000000000\n",
	}
	for name, raw := range cases {
		_, err := Parse([]byte(raw), time.Now())
		assert.Error(t, err, name)
	}
}

func TestLoadFile(t *testing.T) {
	accounts, err := LoadFile("", time.Now())
	require.NoError(t, err)
	assert.Empty(t, accounts)

	path := filepath.Join(t.TempDir(), "accounts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))
	accounts, err = LoadFile(path, time.Now())
	require.NoError(t, err)
	assert.Len(t, accounts, 2)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"), time.Now())
	assert.Error(t, err)
}
