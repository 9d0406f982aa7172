package http

import (
	"bytes"
	"context"
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/amats-service/internal/api/http/handlers"
	"github.com/spec-kit/amats-service/internal/auth"
	"github.com/spec-kit/amats-service/internal/config"
	"github.com/spec-kit/amats-service/internal/domain"
	"github.com/spec-kit/amats-service/internal/events"
	"github.com/spec-kit/amats-service/internal/observability"
	"github.com/spec-kit/amats-service/internal/repository"
	"github.com/spec-kit/amats-service/internal/service"
	"github.com/spec-kit/amats-service/internal/suspension"
	"github.com/spec-kit/amats-service/internal/worker"
)

const (
	adminEmail    = "admin@amats.local"
	adminPassword = "admin-pass"
)

type testServer struct {
	app       *fiber.App
	presenter *suspension.Presenter
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := config.Config{
		Auth:       config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 5, BcryptCost: 4},
		Suspension: config.SuspensionConfig{TickMillis: 1000, AllowReregistration: true},
	}
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	accounts := repository.NewMemoryAccountRepository()
	deleted := repository.NewMemoryDeletedRegistry()
	synthetic := repository.NewSyntheticRoster([]domain.Account{
		{Email: "demo.driver@amats.local", FirstName: "Demo", Active: true, Profile: domain.DriverProfile{}},
	})

	suspensions := service.NewSuspensionService(service.SuspensionDependencies{
		AccountRepo:     accounts,
		DeletedRegistry: deleted,
		Synthetic:       synthetic,
		Dispatcher:      dispatcher,
		Metrics:         metrics,
		Logger:          logger,
	})
	presenter := suspension.NewPresenter(cfg.Suspension.TickInterval(), func(ctx context.Context, email string, openedAt time.Time) error {
		_, err := suspensions.ExpireCountdown(ctx, email, openedAt)
		return err
	}, logger)
	t.Cleanup(presenter.Close)

	authService := service.NewAuthService(cfg, service.AuthDependencies{
		AccountRepo:     accounts,
		DeletedRegistry: deleted,
		Synthetic:       synthetic,
		Suspensions:     suspensions,
		Countdowns:      presenter,
		Dispatcher:      dispatcher,
		Logger:          logger,
	})
	auditService := service.NewAuditService(dispatcher, repository.NewMemoryAuditRepository(100), logger)
	worker.StartAuditWorker(auditService)
	worker.StartCountdownWorker(dispatcher, presenter, logger)

	_, err := authService.EnsureAdmin(context.Background(), adminEmail, adminPassword)
	require.NoError(t, err)

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, 5*time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("amats", "test", nil, nil, metrics),
		Users:          handlers.NewUsersHandler(authService),
		Countdown:      handlers.NewCountdownHandler(presenter),
		Admin:          handlers.NewAdminHandler(suspensions, service.NewAccountService(accounts, synthetic, nil), auditService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), accounts),
	})
	return &testServer{app: app, presenter: presenter}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	headers := map[string]string{}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	return s.send(t, method, path, headers, body)
}

func (s *testServer) countdown(t *testing.T, method, email, countdownToken string) (int, map[string]any) {
	t.Helper()
	headers := map[string]string{}
	if countdownToken != "" {
		headers[handlers.CountdownTokenHeader] = countdownToken
	}
	return s.send(t, method, "/auth/countdown/"+email, headers, nil)
}

func (s *testServer) send(t *testing.T, method, path string, headers map[string]string, body any) (int, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	if resp.StatusCode != nethttp.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp.StatusCode, out
}

func (s *testServer) login(t *testing.T, email, password string) (int, map[string]any) {
	return s.do(t, nethttp.MethodPost, "/auth/users/login", "", map[string]string{"email": email, "password": password})
}

func (s *testServer) adminToken(t *testing.T) string {
	status, body := s.login(t, adminEmail, adminPassword)
	require.Equal(t, nethttp.StatusOK, status)
	return body["data"].(map[string]any)["auth"].(map[string]any)["token"].(string)
}

func errorCode(body map[string]any) string {
	return body["error"].(map[string]any)["code"].(string)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, nethttp.MethodGet, "/health/live", "", nil)
	assert.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "alive", body["status"])

	status, body = s.do(t, nethttp.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "disabled", body["dependencies"].(map[string]any)["postgres"])

	status, body = s.do(t, nethttp.MethodGet, "/metrics", "", nil)
	assert.Equal(t, nethttp.StatusOK, status)
	assert.Contains(t, body["data"], "requests")

	status, body = s.do(t, nethttp.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, nethttp.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, nethttp.MethodPost, "/auth/users/register", "", map[string]any{
		"first_name": "Dana", "email": "dana@fleet.io", "password": "pw", "role": "driver",
	})
	require.Equal(t, nethttp.StatusCreated, status)
	account := body["data"].(map[string]any)["account"].(map[string]any)
	assert.Equal(t, "driver", account["role"])

	status, body = s.do(t, nethttp.MethodPost, "/auth/users/register", "", map[string]any{
		"email": "dana@fleet.io", "password": "pw",
	})
	assert.Equal(t, nethttp.StatusConflict, status)
	assert.Equal(t, "CONFLICT", errorCode(body))

	status, body = s.do(t, nethttp.MethodPost, "/auth/users/register", "", map[string]any{"email": "x@y.z"})
	assert.Equal(t, nethttp.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))

	status, body = s.login(t, "dana@fleet.io", "pw")
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "proceed", body["data"].(map[string]any)["outcome"])

	status, body = s.login(t, "dana@fleet.io", "nope")
	assert.Equal(t, nethttp.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", errorCode(body))
}

func TestSuspendedLoginShowsCountdown(t *testing.T) {
	s := newTestServer(t)
	token := s.adminToken(t)
	s.do(t, nethttp.MethodPost, "/auth/users/register", "", map[string]any{"email": "dana@fleet.io", "password": "pw"})

	status, body := s.do(t, nethttp.MethodPost, "/admin/accounts/dana@fleet.io/suspend", token,
		map[string]any{"quantity": 90, "unit": "minutes"})
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "applied", body["data"].(map[string]any)["outcome"])

	status, body = s.login(t, "dana@fleet.io", "pw")
	require.Equal(t, nethttp.StatusForbidden, status)
	data := body["data"].(map[string]any)
	assert.Equal(t, "blocked_countdown", data["outcome"])
	countdown := data["countdown"].(map[string]any)
	assert.Equal(t, "System Administrator", countdown["suspended_by"])
	assert.InDelta(t, 89, countdown["minutes"], 1)
	countdownToken, _ := countdown["token"].(string)
	require.NotEmpty(t, countdownToken)

	status, body = s.countdown(t, nethttp.MethodGet, "dana@fleet.io", countdownToken)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "counting", body["data"].(map[string]any)["state"])

	status, _ = s.countdown(t, nethttp.MethodDelete, "dana@fleet.io", countdownToken)
	assert.Equal(t, nethttp.StatusNoContent, status)
	status, _ = s.countdown(t, nethttp.MethodGet, "dana@fleet.io", countdownToken)
	assert.Equal(t, nethttp.StatusNotFound, status)

	// dismissing the dialog keeps the suspension
	status, _ = s.login(t, "dana@fleet.io", "pw")
	assert.Equal(t, nethttp.StatusForbidden, status)

	status, _ = s.do(t, nethttp.MethodPost, "/admin/accounts/dana@fleet.io/activate", token, nil)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, 0, s.presenter.Active())

	status, _ = s.login(t, "dana@fleet.io", "pw")
	assert.Equal(t, nethttp.StatusOK, status)
}

func TestCountdownRequiresLoginToken(t *testing.T) {
	s := newTestServer(t)
	token := s.adminToken(t)
	s.do(t, nethttp.MethodPost, "/auth/users/register", "", map[string]any{"email": "dana@fleet.io", "password": "pw"})
	status, _ := s.do(t, nethttp.MethodPost, "/admin/accounts/dana@fleet.io/suspend", token,
		map[string]any{"quantity": 2, "unit": "hours"})
	require.Equal(t, nethttp.StatusOK, status)

	status, body := s.login(t, "dana@fleet.io", "pw")
	require.Equal(t, nethttp.StatusForbidden, status)
	countdownToken := body["data"].(map[string]any)["countdown"].(map[string]any)["token"].(string)

	for _, method := range []string{nethttp.MethodGet, nethttp.MethodDelete} {
		status, body = s.countdown(t, method, "dana@fleet.io", "")
		assert.Equal(t, nethttp.StatusNotFound, status, method)
		assert.Equal(t, "NOT_FOUND", errorCode(body))

		status, _ = s.countdown(t, method, "dana@fleet.io", "someone-else")
		assert.Equal(t, nethttp.StatusNotFound, status, method)
	}
	// an admin bearer token is not a countdown token either
	status, _ = s.do(t, nethttp.MethodDelete, "/auth/countdown/dana@fleet.io", token, nil)
	assert.Equal(t, nethttp.StatusNotFound, status)
	assert.Equal(t, 1, s.presenter.Active())

	status, _ = s.countdown(t, nethttp.MethodGet, "DANA@fleet.io", countdownToken)
	assert.Equal(t, nethttp.StatusOK, status)
}

func TestSuspendRejectsOverlongDuration(t *testing.T) {
	s := newTestServer(t)
	token := s.adminToken(t)
	s.do(t, nethttp.MethodPost, "/auth/users/register", "", map[string]any{"email": "dana@fleet.io", "password": "pw"})

	status, body := s.do(t, nethttp.MethodPost, "/admin/accounts/dana@fleet.io/suspend", token,
		map[string]any{"quantity": 300, "unit": "years"})
	assert.Equal(t, nethttp.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))

	status, _ = s.login(t, "dana@fleet.io", "pw")
	assert.Equal(t, nethttp.StatusOK, status)
}

func TestSuspendRejectsUnknownUnit(t *testing.T) {
	s := newTestServer(t)
	token := s.adminToken(t)

	status, body := s.do(t, nethttp.MethodPost, "/admin/accounts/dana@fleet.io/suspend", token,
		map[string]any{"quantity": 3, "unit": "fortnights"})
	assert.Equal(t, nethttp.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))
}

func TestDeletedAccountGetsGone(t *testing.T) {
	s := newTestServer(t)
	token := s.adminToken(t)
	s.do(t, nethttp.MethodPost, "/auth/users/register", "", map[string]any{"email": "dana@fleet.io", "password": "pw"})

	status, _ := s.do(t, nethttp.MethodDelete, "/admin/accounts/dana@fleet.io", token, nil)
	require.Equal(t, nethttp.StatusOK, status)

	status, body := s.login(t, "dana@fleet.io", "pw")
	assert.Equal(t, nethttp.StatusGone, status)
	assert.Equal(t, "ACCOUNT_DELETED", errorCode(body))

	status, body = s.do(t, nethttp.MethodGet, "/admin/audit", token, nil)
	require.Equal(t, nethttp.StatusOK, status)
	entries := body["data"].([]any)
	require.NotEmpty(t, entries)
	assert.Equal(t, "delete", entries[0].(map[string]any)["action"])
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	s := newTestServer(t)
	s.do(t, nethttp.MethodPost, "/auth/users/register", "", map[string]any{"email": "dana@fleet.io", "password": "pw"})
	_, body := s.login(t, "dana@fleet.io", "pw")
	driverToken := body["data"].(map[string]any)["auth"].(map[string]any)["token"].(string)

	status, body := s.do(t, nethttp.MethodGet, "/admin/accounts", driverToken, nil)
	assert.Equal(t, nethttp.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errorCode(body))

	status, _ = s.do(t, nethttp.MethodGet, "/admin/accounts", "", nil)
	assert.Equal(t, nethttp.StatusUnauthorized, status)

	status, body = s.do(t, nethttp.MethodGet, "/admin/accounts", s.adminToken(t), nil)
	require.Equal(t, nethttp.StatusOK, status)
	list := body["data"].([]any)
	assert.Len(t, list, 3)
}

func TestSyntheticAccountActions(t *testing.T) {
	s := newTestServer(t)
	token := s.adminToken(t)

	status, body := s.do(t, nethttp.MethodPost, "/admin/accounts/demo.driver@amats.local/suspend", token,
		map[string]any{"quantity": 1, "unit": "week"})
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "synthetic", body["data"].(map[string]any)["outcome"])

	status, body = s.do(t, nethttp.MethodPost, "/admin/accounts/ghost@amats.local/activate", token, nil)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "noop", body["data"].(map[string]any)["outcome"])
}
