package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"it-incidents-backend/internal/core/domain"
	"it-incidents-backend/internal/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubGuard struct {
	claims    *jwt.Claims
	parseErr  error
	status    domain.AccessStatus
	statusErr error
}

func (g *stubGuard) ParseAccessToken(string) (*jwt.Claims, error) {
	return g.claims, g.parseErr
}

func (g *stubGuard) CheckAccess(context.Context, uint) (domain.AccessStatus, error) {
	return g.status, g.statusErr
}

func validClaims(role domain.Role) *jwt.Claims {
	c := &jwt.Claims{AccountID: 3, Role: string(role), Kind: jwt.KindAccess}
	c.Subject = "alice"
	return c
}

func newGuardedApp(guard AccessGuard, extra ...fiber.Handler) *fiber.App {
	app := fiber.New()
	handlers := append([]fiber.Handler{AuthMiddleware(guard, zap.NewNop())}, extra...)
	handlers = append(handlers, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"accountID": c.Locals("accountID"),
			"username":  c.Locals("username"),
		})
	})
	app.Get("/protected", handlers...)
	return app
}

func bearer(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func readBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func TestAuthMiddleware(t *testing.T) {
	t.Run("no token", func(t *testing.T) {
		resp, err := newGuardedApp(&stubGuard{}).Test(bearer(""))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("invalid token", func(t *testing.T) {
		resp, err := newGuardedApp(&stubGuard{parseErr: domain.ErrInvalidOrExpiredToken}).Test(bearer("bad"))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("granted sets locals", func(t *testing.T) {
		guard := &stubGuard{claims: validClaims(domain.RoleUser), status: domain.AccessGranted}
		resp, err := newGuardedApp(guard).Test(bearer("good"))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := readBody(t, resp)
		assert.Equal(t, float64(3), body["accountID"])
		assert.Equal(t, "alice", body["username"])
	})

	t.Run("token from cookie", func(t *testing.T) {
		guard := &stubGuard{claims: validClaims(domain.RoleUser), status: domain.AccessGranted}
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: "good"})

		resp, err := newGuardedApp(guard).Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	statuses := []domain.AccessStatus{
		domain.AccessAccountDisabled,
		domain.AccessAccountDeleted,
		domain.AccessAccountLocked,
		domain.AccessAccountNotApproved,
		domain.AccessAccountNotFound,
	}
	for _, status := range statuses {
		t.Run(string(status), func(t *testing.T) {
			guard := &stubGuard{claims: validClaims(domain.RoleUser), status: status}
			resp, err := newGuardedApp(guard).Test(bearer("good"))
			require.NoError(t, err)
			assert.Equal(t, http.StatusForbidden, resp.StatusCode)

			body := readBody(t, resp)
			assert.Equal(t, string(status), body["error"])
			assert.Equal(t, status.Message(), body["message"])
		})
	}

	t.Run("status lookup failure", func(t *testing.T) {
		guard := &stubGuard{claims: validClaims(domain.RoleUser), statusErr: errors.New("db down")}
		resp, err := newGuardedApp(guard).Test(bearer("good"))
		require.NoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
}

func TestAdminOnly(t *testing.T) {
	user := &stubGuard{claims: validClaims(domain.RoleUser), status: domain.AccessGranted}
	resp, err := newGuardedApp(user, AdminOnly()).Test(bearer("good"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	admin := &stubGuard{claims: validClaims(domain.RoleAdmin), status: domain.AccessGranted}
	resp, err = newGuardedApp(admin, AdminOnly()).Test(bearer("good"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNoStore(t *testing.T) {
	app := fiber.New()
	app.Get("/", NoStore(), func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
}
