package web

// errors.go provides unified error response handling for the web layer.
//
// Every error is logged with its technical detail and request id, then
// mapped through core.MapError to a user message and code. The response
// format follows the client: an HTML fragment for HTMX, JSON for API
// callers, plain text otherwise. The status code is derived from the error.

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/JonMunkholm/leavetrack/internal/core"
	"github.com/JonMunkholm/leavetrack/internal/gallery"
	"github.com/JonMunkholm/leavetrack/internal/leave"
	"github.com/JonMunkholm/leavetrack/internal/logging"
	"github.com/JonMunkholm/leavetrack/internal/upload"
	"github.com/JonMunkholm/leavetrack/internal/web/templates"
)

// errNoFile is returned when a multipart form lacks the file part.
var errNoFile = errors.New("no file provided")

// errBadRequest wraps malformed request bodies.
var errBadRequest = errors.New("malformed request")

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs err and writes the user-facing response.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	userMsg := core.MapError(err)

	log := logging.FromContext(r.Context())
	args := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	switch {
	case status >= http.StatusInternalServerError:
		log.Error("request error", args...)
	case !core.IsUserFacing(err):
		log.Warn("unmapped request error", args...)
	default:
		log.Info("request rejected", args...)
	}

	switch {
	case isHTMX(r):
		renderErrorPartial(w, r, userMsg, status)
	case wantsJSON(r):
		respondErrorJSON(w, userMsg, status)
	default:
		http.Error(w, core.FormatUserError(err), status)
	}
}

// statusFor maps a service error to an HTTP status.
func statusFor(err error) int {
	var verr *upload.ValidationError
	if errors.As(err, &verr) {
		if verr.Reason == upload.TooLarge {
			return http.StatusRequestEntityTooLarge
		}
		return http.StatusUnsupportedMediaType
	}

	var perr *time.ParseError
	switch {
	case errors.Is(err, core.ErrUploaderNotFound), errors.Is(err, gallery.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, upload.ErrUploadInProgress):
		return http.StatusConflict
	case errors.Is(err, upload.ErrTooManyUploads):
		return http.StatusServiceUnavailable
	case errors.Is(err, upload.ErrUnreadableFile):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, core.ErrPasswordMismatch),
		errors.Is(err, core.ErrMissingFields),
		errors.Is(err, leave.ErrMissingDates),
		errors.Is(err, leave.ErrEndBeforeStart),
		errors.Is(err, leave.ErrInvalidFilter),
		errors.Is(err, leave.ErrInvalidKind),
		errors.Is(err, errNoFile),
		errors.Is(err, errBadRequest),
		errors.As(err, &perr):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// renderErrorPartial renders an HTMX-compatible error fragment.
func renderErrorPartial(w http.ResponseWriter, r *http.Request, msg core.UserMessage, status int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = templates.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(r.Context(), w)
}

// isHTMX checks if the request is an HTMX request.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON checks if the client prefers JSON response. API routes always do.
func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.Contains(r.Header.Get("Content-Type"), "application/json") ||
		strings.HasPrefix(r.URL.Path, "/api/")
}
