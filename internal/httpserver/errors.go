package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
)

const msgInternal = "Internal server error"

// ErrorHandler renders every error as {"error": "..."}.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := msgInternal

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		switch m := he.Message.(type) {
		case string:
			msg = m
		case error:
			msg = m.Error()
		default:
			msg = fmt.Sprint(m)
		}
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, transport.ErrorResponse{Error: msg})
}

// statusFor maps the service error taxonomy to an HTTP status and the
// message shown to the client.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, "Forbidden"
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrSearchDisabled):
		return http.StatusServiceUnavailable, "Search is not available"
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

func httpError(err error) *echo.HTTPError {
	code, msg := statusFor(err)
	return echo.NewHTTPError(code, msg).SetInternal(err)
}
