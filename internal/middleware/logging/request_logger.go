package loggingmw

import (
	"log/slog"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	authmw "github.com/Skotchmaster/storefront/internal/middleware/auth"
)

const probePrefix = "/health/"

// RequestLogger puts a request-scoped logger into the request context and
// writes one completion line per request, tagged with the caller identity
// when the route is guarded. Errors are rendered here so the logged status
// matches what the client received.
func RequestLogger(base *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			l := base.With("method", req.Method, "route", c.Path(), "url", req.URL.Path)
			if rid := requestID(c); rid != "" {
				l = l.With("request_id", rid)
			}
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))

			start := time.Now()
			if err := next(c); err != nil {
				c.Error(err)
				l = l.With("error", err.Error())
			}

			attrs := []any{
				"status", c.Response().Status,
				"duration_ms", time.Since(start).Milliseconds(),
				"bytes", c.Response().Size,
				"remote_ip", c.RealIP(),
			}
			if id, ok := authmw.IdentityFrom(c); ok {
				attrs = append(attrs, "user_id", id.UserID, "role", id.Role)
			}

			l.Log(req.Context(), levelFor(c.Response().Status, req.URL.Path), "request_completed", attrs...)
			return nil
		}
	}
}

func requestID(c echo.Context) string {
	if rid := c.Request().Header.Get(echo.HeaderXRequestID); rid != "" {
		return rid
	}
	return c.Response().Header().Get(echo.HeaderXRequestID)
}

func levelFor(status int, path string) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	case strings.HasPrefix(path, probePrefix):
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}
