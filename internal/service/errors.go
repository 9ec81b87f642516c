package service

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
)

var (
	ErrValidation         = errors.New("validation error")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
	ErrSearchDisabled     = errors.New("search is not configured")
)

// isInfraError reports failures of the store itself rather than a
// rejection of the data: cancellation, timeouts and lost connections.
func isInfraError(err error) bool {
	if errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
