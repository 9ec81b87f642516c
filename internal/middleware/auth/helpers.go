package auth

import (
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/tokens"
)

const (
	identityKey = "identity"
	userIDKey   = "userID"
	roleKey     = "role"
)

const (
	msgAccessDenied  = "Access denied"
	msgInvalidToken  = "Invalid token"
	msgAdminRequired = "Admin access required"
)

type Verifier interface {
	Verify(token string) (tokens.Identity, error)
}

// Guard gates routes on a bearer session token.
type Guard struct {
	Tokens Verifier
}

func NewGuard(v Verifier) *Guard {
	return &Guard{Tokens: v}
}

func setUserContext(c echo.Context, id tokens.Identity) {
	c.Set(identityKey, id)
	c.Set(userIDKey, id.UserID)
	c.Set(roleKey, id.Role)
}

// IdentityFrom returns the identity attached by RequireAuth.
func IdentityFrom(c echo.Context) (tokens.Identity, bool) {
	id, ok := c.Get(identityKey).(tokens.Identity)
	return id, ok
}
