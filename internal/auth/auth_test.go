package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/amats-service/internal/domain"
	"github.com/spec-kit/amats-service/internal/repository"
	apperrors "github.com/spec-kit/amats-service/pkg/util/errorutil"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("Drowsy-Driver-42", 4)
	require.NoError(t, err)
	assert.NoError(t, ComparePassword(hash, "Drowsy-Driver-42"))
	assert.Error(t, ComparePassword(hash, "wrong"))
}

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	account := &domain.Account{ID: "acc-1", Email: "root@sys", Profile: domain.AdminProfile{}}

	token, exp, err := tm.GenerateToken(account)
	require.NoError(t, err)
	assert.False(t, exp.IsZero())

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", claims.AccountID)
	assert.Equal(t, domain.RoleAdmin, claims.Role)

	_, err = NewTokenManager("other", 5).ParseToken(token)
	assert.Error(t, err)
}

func newProtectedApp(t *testing.T, repo repository.AccountRepository, tm *TokenManager) *fiber.App {
	t.Helper()
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.SendStatus(fe.Code)
			}
			return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
		},
	})
	mw := NewAuthMiddleware(tm, repo)
	app.Get("/admin", mw.Handle, RequireAdmin(), func(c *fiber.Ctx) error {
		p, _ := PrincipalFromContext(c)
		return c.SendString(p.Account.Email)
	})
	return app
}

func TestMiddlewareRoles(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryAccountRepository()
	tm := NewTokenManager("secret", 5)

	admin := &domain.Account{Email: "root@sys", Active: true, Profile: domain.AdminProfile{}}
	driver := &domain.Account{Email: "driver@fleet.io", Active: true, Profile: domain.DriverProfile{}}
	require.NoError(t, repo.Create(ctx, admin))
	require.NoError(t, repo.Create(ctx, driver))

	app := newProtectedApp(t, repo, tm)

	adminToken, _, err := tm.GenerateToken(admin)
	require.NoError(t, err)
	driverToken, _, err := tm.GenerateToken(driver)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"malformed header", "Token abc", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"driver", "Bearer " + driverToken, http.StatusForbidden},
		{"admin", "Bearer " + adminToken, http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		resp, err := app.Test(req)
		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.want, resp.StatusCode, tc.name)
	}
}

func TestMiddlewareRejectsSuspendedAdmin(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryAccountRepository()
	tm := NewTokenManager("secret", 5)

	admin := &domain.Account{Email: "root@sys", Active: true, Profile: domain.AdminProfile{}}
	require.NoError(t, repo.Create(ctx, admin))
	token, _, err := tm.GenerateToken(admin)
	require.NoError(t, err)

	admin.Suspend(domain.SuspensionRecord{SuspendedBy: "other@sys", DurationMinutes: 10})
	require.NoError(t, repo.Update(ctx, admin))

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := newProtectedApp(t, repo, tm).Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
