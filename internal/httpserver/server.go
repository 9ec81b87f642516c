package httpserver

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	loggingmw "github.com/Skotchmaster/storefront/internal/middleware/logging"
)

const bodyLimit = "10M"

// New builds the echo instance with the shared middleware chain.
func New(log *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()
	e.HTTPErrorHandler = ErrorHandler

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(
		middleware.Recover(),
		middleware.RequestID(),
		loggingmw.RequestLogger(log),
		middleware.CORS(),
		middleware.BodyLimit(bodyLimit),
	)
	return e
}
