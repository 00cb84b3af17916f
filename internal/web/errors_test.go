package web

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/JonMunkholm/leavetrack/internal/core"
	"github.com/JonMunkholm/leavetrack/internal/logging"
	"github.com/stretchr/testify/require"
)

// captureLogs points slog.Default at a JSON buffer for the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(logging.NewHandler(&buf, "debug", "json")))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestRespondError_PlainTextFallback(t *testing.T) {
	captureLogs(t)
	s := &Server{}

	rec := httptest.NewRecorder()
	s.respondError(rec, httptest.NewRequest(http.MethodGet, "/gallery", nil), core.ErrPasswordMismatch)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	require.Equal(t, "Passwords do not match (Code: AUTH001). Enter the same password in both fields\n", rec.Body.String())
}

func TestRespondError_LogLevel(t *testing.T) {
	_, parseErr := time.Parse(time.DateOnly, "next tuesday")

	tests := []struct {
		name      string
		err       error
		wantLevel string
		wantMsg   string
	}{
		{"mapped client error", core.ErrMissingFields, `"level":"INFO"`, "request rejected"},
		{"unmapped client error", parseErr, `"level":"WARN"`, "unmapped request error"},
		{"server error", errors.New("disk full"), `"level":"ERROR"`, "request error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLogs(t)
			s := &Server{}

			rec := httptest.NewRecorder()
			s.respondError(rec, httptest.NewRequest(http.MethodGet, "/api/leave/requests", nil), tt.err)

			require.Contains(t, buf.String(), tt.wantLevel)
			require.Contains(t, buf.String(), tt.wantMsg)
		})
	}
}
