package auth

import (
	"net/http"
	"strings"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
)

// RequireAuth verifies the bearer token and attaches the caller identity.
func (g *Guard) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  identityKey,
		TokenLookup: "header:Authorization:Bearer ",
		ParseTokenFunc: func(c echo.Context, raw string) (any, error) {
			id, err := g.Tokens.Verify(raw)
			if err != nil {
				return nil, err
			}
			setUserContext(c, id)
			return id, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			l := logging.FromContext(c.Request().Context()).With("middleware", "require_auth")
			if strings.TrimSpace(c.Request().Header.Get(echo.HeaderAuthorization)) == "" {
				l.Info("auth_rejected", "status", http.StatusUnauthorized, "reason", "missing token")
				return echo.NewHTTPError(http.StatusUnauthorized, msgAccessDenied)
			}
			l.Warn("auth_rejected", "status", http.StatusUnauthorized, "reason", "invalid token", "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, msgInvalidToken)
		},
	})(next)
}
