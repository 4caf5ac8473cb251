package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecovery_NoPanic(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/check", http.NoBody)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Recovery(logger)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	err := handler(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, buf.String(), "no panic should produce no log output")
}

func TestRecovery_Panic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		method    string
		path      string
		value     any
		wantInLog []string
	}{
		{
			name:      "string value",
			method:    http.MethodGet,
			path:      "/api/v1/check",
			value:     "nil catalog client",
			wantInLog: []string{"panic recovered", "nil catalog client", "path=/api/v1/check"},
		},
		{
			name:      "non-string value",
			method:    http.MethodPost,
			path:      "/api/crash",
			value:     42,
			wantInLog: []string{"42", "method=POST"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, nil))

			e := echo.New()
			req := httptest.NewRequest(tt.method, tt.path, http.NoBody)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			handler := Recovery(logger)(func(_ echo.Context) error {
				panic(tt.value)
			})

			err := handler(c)
			require.NoError(t, err)
			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())

			for _, want := range tt.wantInLog {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestRecovery_IncludesRequestID(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/check", http.NoBody)
	req.Header.Set(requestIDHeader, "req-abc")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := RequestLog(logger)(Recovery(logger)(func(_ echo.Context) error {
		panic("boom")
	}))

	require.NoError(t, handler(c))
	assert.Contains(t, buf.String(), "request_id=req-abc")
	assert.Equal(t, "req-abc", rec.Header().Get(requestIDHeader))
}
