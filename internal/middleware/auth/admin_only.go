package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
)

// RequireAdmin authenticates the request and then demands the admin role.
// The role check is only reachable through RequireAuth.
func (g *Guard) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return g.RequireAuth(adminOnly(next))
}

func adminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, ok := IdentityFrom(c)
		if !ok || id.Role != models.RoleAdmin {
			logging.FromContext(c.Request().Context()).With("middleware", "require_admin").
				Warn("auth_forbidden", "status", http.StatusForbidden, "user_id", id.UserID, "role", id.Role)
			return echo.NewHTTPError(http.StatusForbidden, msgAdminRequired)
		}
		return next(c)
	}
}
