package loggingmw

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/logging"
	authmw "github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/tokens"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	sc := bufio.NewScanner(buf)
	for sc.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m))
		out = append(out, m)
	}
	return out
}

func TestRequestLogger_InjectsLoggerAndLogsStatus(t *testing.T) {
	var buf bytes.Buffer
	base := logging.NewWithWriter(&buf, "info")

	e := echo.New()
	e.Use(RequestLogger(base))
	e.GET("/ping", func(c echo.Context) error {
		logging.FromContext(c.Request().Context()).Info("inside_handler")
		return c.String(http.StatusOK, "pong")
	})
	e.GET("/boom", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "nope")
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(echo.HeaderXRequestID, "rid-42")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec2 := httptest.NewRecorder()
	e.ServeHTTP(rec2, httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.Equal(t, http.StatusNotFound, rec2.Code)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 3)
	assert.Equal(t, "inside_handler", lines[0]["msg"])
	assert.Equal(t, "rid-42", lines[0]["request_id"])
	assert.Equal(t, "request_completed", lines[1]["msg"])
	assert.EqualValues(t, 200, lines[1]["status"])
	assert.Equal(t, "WARN", lines[2]["level"])
	assert.EqualValues(t, 404, lines[2]["status"])
}

func TestRequestLogger_TagsIdentityAndQuietsProbes(t *testing.T) {
	var buf bytes.Buffer
	base := logging.NewWithWriter(&buf, "info")

	ts, err := tokens.NewService([]byte("logger-secret"), time.Hour)
	require.NoError(t, err)
	guard := authmw.NewGuard(ts)

	e := echo.New()
	e.Use(RequestLogger(base))
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/private", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, guard.RequireAuth)

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health/live", nil))

	token, _, err := ts.Issue(9, "admin")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "/private", lines[0]["route"])
	assert.EqualValues(t, 9, lines[0]["user_id"])
	assert.Equal(t, "admin", lines[0]["role"])
}
