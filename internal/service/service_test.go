package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/amats-service/internal/config"
	"github.com/spec-kit/amats-service/internal/domain"
	"github.com/spec-kit/amats-service/internal/events"
	"github.com/spec-kit/amats-service/internal/observability"
	"github.com/spec-kit/amats-service/internal/repository"
	"github.com/spec-kit/amats-service/internal/suspension"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type openCall struct {
	email, actor     string
	minutes, seconds int
}

type fakeOpener struct {
	mu    sync.Mutex
	calls []openCall
}

func (f *fakeOpener) Open(email, suspendedBy string, minutes, seconds int) (suspension.CountdownState, error) {
	f.mu.Lock()
	f.calls = append(f.calls, openCall{email, suspendedBy, minutes, seconds})
	f.mu.Unlock()

	state := suspension.StateCounting
	if minutes == 0 && seconds == 0 {
		state = suspension.StateExpired
	}
	return suspension.CountdownState{
		Email: email, SuspendedBy: suspendedBy, Minutes: minutes, Seconds: seconds, State: state,
	}, nil
}

type harness struct {
	clock     *fakeClock
	accounts  repository.AccountRepository
	deleted   repository.DeletedRegistry
	synthetic *repository.SyntheticRoster
	audit     *AuditService
	metrics   *observability.Metrics
	opener    *fakeOpener
	susp      *SuspensionService
	auth      *AuthService
	listing   *AccountService
}

func newHarness(t *testing.T, mutate func(*config.Config)) *harness {
	t.Helper()
	cfg := config.Config{
		Auth:       config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 5, BcryptCost: 4},
		Suspension: config.SuspensionConfig{TickMillis: 1000, AllowReregistration: true},
	}
	if mutate != nil {
		mutate(&cfg)
	}

	h := &harness{
		clock:    newFakeClock(),
		accounts: repository.NewMemoryAccountRepository(),
		deleted:  repository.NewMemoryDeletedRegistry(),
		synthetic: repository.NewSyntheticRoster([]domain.Account{
			{Email: "demo.driver@amats.local", FirstName: "Demo", LastName: "Driver", Active: true, Profile: domain.DriverProfile{}},
		}),
		metrics: observability.NewMetrics(),
		opener:  &fakeOpener{},
	}
	dispatcher := events.NewInMemoryDispatcher()
	h.audit = NewAuditService(dispatcher, repository.NewMemoryAuditRepository(100), nil)
	h.audit.RegisterHandlers()

	h.susp = NewSuspensionService(SuspensionDependencies{
		AccountRepo:     h.accounts,
		DeletedRegistry: h.deleted,
		Synthetic:       h.synthetic,
		Dispatcher:      dispatcher,
		Metrics:         h.metrics,
		Clock:           h.clock.Now,
	})
	h.auth = NewAuthService(cfg, AuthDependencies{
		AccountRepo:     h.accounts,
		DeletedRegistry: h.deleted,
		Synthetic:       h.synthetic,
		Suspensions:     h.susp,
		Countdowns:      h.opener,
		Dispatcher:      dispatcher,
	})
	h.listing = NewAccountService(h.accounts, h.synthetic, h.clock.Now)

	_, err := h.auth.EnsureAdmin(context.Background(), "root@amats.local", "admin-pass")
	require.NoError(t, err)
	require.NoError(t, h.accounts.Update(context.Background(), mustAccount(t, h, "root@amats.local", func(a *domain.Account) {
		a.FirstName, a.LastName = "Ada", "Admin"
	})))
	return h
}

func mustAccount(t *testing.T, h *harness, email string, fn func(*domain.Account)) *domain.Account {
	t.Helper()
	a, err := h.accounts.GetByEmail(context.Background(), email)
	require.NoError(t, err)
	if fn != nil {
		fn(a)
	}
	return a
}

func (h *harness) registerDriver(t *testing.T, email string) *domain.Account {
	t.Helper()
	account, token, _, err := h.auth.RegisterUser(context.Background(), RegisterInput{
		FirstName: "Dana",
		LastName:  "Driver",
		Email:     email,
		Password:  "pw-123456",
		Role:      domain.RoleDriver,
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	return account
}
