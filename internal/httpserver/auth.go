package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	authmw "github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func userResponse(u *models.User) transport.UserResponse {
	return transport.UserResponse{ID: u.ID, Email: u.Email, Role: u.Role}
}

// Register godoc
// @Summary Register a customer account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body transport.RegisterRequest true "Credentials"
// @Success 201 {object} transport.RegisterResponse
// @Failure 400 {object} transport.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		l.Warn("register_error", "status", 400, "reason", "validation failed", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.Svc.Register(ctx, req.Email, req.Password)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, transport.RegisterResponse{
		Message: "User registered",
		User:    userResponse(user),
	})
}

// Login godoc
// @Summary Exchange credentials for a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body transport.LoginRequest true "Credentials"
// @Success 200 {object} transport.LoginResponse
// @Failure 401 {object} transport.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		l.Warn("login_error", "status", 400, "reason", "validation failed", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, transport.LoginResponse{
		Token: res.Token,
		User:  userResponse(res.User),
	})
}

// Me godoc
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} transport.UserResponse
// @Failure 401 {object} transport.ErrorResponse
// @Router /auth/me [get]
func (h *AuthHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()

	id, ok := authmw.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Access denied")
	}

	user, err := h.Svc.Profile(ctx, id.UserID)
	if err != nil {
		logging.FromContext(ctx).With("handler", "auth_me").
			Warn("me_error", "user_id", id.UserID, "error", err)
		return httpError(err)
	}
	return c.JSON(http.StatusOK, userResponse(user))
}
