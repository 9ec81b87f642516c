package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/tokens"
)

func newGuard(t *testing.T) (*Guard, *tokens.Service) {
	t.Helper()
	ts, err := tokens.NewService([]byte("guard-secret"), time.Hour)
	require.NoError(t, err)
	return NewGuard(ts), ts
}

func serve(t *testing.T, mw echo.MiddlewareFunc, authz string) (echo.Context, bool, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authz != "" {
		req.Header.Set(echo.HeaderAuthorization, authz)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	reached := false
	err := mw(func(c echo.Context) error {
		reached = true
		return c.NoContent(http.StatusOK)
	})(c)
	return c, reached, err
}

func requireHTTPError(t *testing.T, err error, code int, msg string) {
	t.Helper()
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, code, he.Code)
	assert.Equal(t, msg, he.Message)
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()

	g, ts := newGuard(t)
	good, _, err := ts.Issue(5, models.RoleCustomer)
	require.NoError(t, err)

	expiredSvc, err := tokens.NewService([]byte("guard-secret"), time.Hour)
	require.NoError(t, err)
	expired, _, err := expiredSvc.
		WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) }).
		Issue(5, models.RoleCustomer)
	require.NoError(t, err)

	parts := strings.Split(good, ".")
	require.Len(t, parts, 3)
	flip := "A"
	if strings.HasPrefix(parts[2], "A") {
		flip = "B"
	}
	tampered := parts[0] + "." + parts[1] + "." + flip + parts[2][1:]

	tests := []struct {
		name   string
		header string
		code   int
		msg    string
	}{
		{name: "no header", header: "", code: http.StatusUnauthorized, msg: msgAccessDenied},
		{name: "wrong scheme", header: "Basic dXNlcjpwYXNz", code: http.StatusUnauthorized, msg: msgInvalidToken},
		{name: "garbage token", header: "Bearer abc.def.ghi", code: http.StatusUnauthorized, msg: msgInvalidToken},
		{name: "expired", header: "Bearer " + expired, code: http.StatusUnauthorized, msg: msgInvalidToken},
		{name: "tampered", header: "Bearer " + tampered, code: http.StatusUnauthorized, msg: msgInvalidToken},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, reached, err := serve(t, g.RequireAuth, tt.header)
			assert.False(t, reached)
			requireHTTPError(t, err, tt.code, tt.msg)
		})
	}

	t.Run("valid", func(t *testing.T) {
		t.Parallel()

		c, reached, err := serve(t, g.RequireAuth, "Bearer "+good)
		require.NoError(t, err)
		assert.True(t, reached)

		id, ok := IdentityFrom(c)
		require.True(t, ok)
		assert.Equal(t, tokens.Identity{UserID: 5, Role: models.RoleCustomer}, id)
		assert.Equal(t, uint(5), c.Get(userIDKey))
		assert.Equal(t, models.RoleCustomer, c.Get(roleKey))
	})
}

func TestRequireAdmin(t *testing.T) {
	t.Parallel()

	g, ts := newGuard(t)
	admin, _, err := ts.Issue(1, models.RoleAdmin)
	require.NoError(t, err)
	customer, _, err := ts.Issue(2, models.RoleCustomer)
	require.NoError(t, err)

	t.Run("no token is unauthenticated, not forbidden", func(t *testing.T) {
		_, reached, err := serve(t, g.RequireAdmin, "")
		assert.False(t, reached)
		requireHTTPError(t, err, http.StatusUnauthorized, msgAccessDenied)
	})

	t.Run("customer", func(t *testing.T) {
		_, reached, err := serve(t, g.RequireAdmin, "Bearer "+customer)
		assert.False(t, reached)
		requireHTTPError(t, err, http.StatusForbidden, msgAdminRequired)
	})

	t.Run("admin", func(t *testing.T) {
		c, reached, err := serve(t, g.RequireAdmin, "Bearer "+admin)
		require.NoError(t, err)
		assert.True(t, reached)
		id, ok := IdentityFrom(c)
		require.True(t, ok)
		assert.Equal(t, uint(1), id.UserID)
	})
}

func TestAdminOnly_WithoutIdentity(t *testing.T) {
	t.Parallel()

	_, reached, err := serve(t, adminOnly, "")
	assert.False(t, reached)
	requireHTTPError(t, err, http.StatusForbidden, msgAdminRequired)
}
