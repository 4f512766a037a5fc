package shared

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/bazaar-api/internal/platform/logger"
	"github.com/phrazzld/bazaar-api/internal/redact"
	"github.com/phrazzld/bazaar-api/internal/service/auth"
)

// Client-facing messages for authentication and authorization failures.
// They never say which check failed.
const (
	MsgAuthenticationRequired = "authentication required"
	MsgInvalidCredentials     = "authentication failed: invalid credentials"
	MsgInsufficientPermission = "insufficient permissions"
)

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Timestamp string `json:"timestamp"`
	Status    int    `json:"status"`
	Error     string `json:"error"`
	Message   string `json:"message"`
	Path      string `json:"path"`
	TraceID   string `json:"trace_id,omitempty"`
}

// ResponseOption customizes error response logging.
type ResponseOption func(*responseOptions)

type responseOptions struct {
	elevateLogLevel bool
}

// WithElevatedLogLevel logs a 4xx response at WARN instead of DEBUG.
func WithElevatedLogLevel() ResponseOption {
	return func(opts *responseOptions) {
		opts.elevateLogLevel = true
	}
}

// RespondWithJSON writes data as JSON with the given status code.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.FromContext(r.Context()).Error("failed to encode JSON response", "error", err)
	}
}

// NewErrorResponse builds the error body for r.
func NewErrorResponse(r *http.Request, status int, message string) ErrorResponse {
	return ErrorResponse{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
		Path:      r.URL.Path,
		TraceID:   GetTraceID(r.Context()),
	}
}

// RespondWithError writes an error body without logging the cause.
func RespondWithError(w http.ResponseWriter, r *http.Request, status int, message string) {
	RespondWithJSON(w, r, status, NewErrorResponse(r, status, message))
}

// RespondWithErrorAndLog writes an error body carrying only userMessage and
// logs err, redacted, alongside it.
//
// 5xx responses log at ERROR. 4xx responses log at DEBUG unless
// WithElevatedLogLevel is passed, in which case they log at WARN.
func RespondWithErrorAndLog(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	userMessage string,
	err error,
	opts ...ResponseOption,
) {
	responseOpts := responseOptions{}
	for _, opt := range opts {
		opt(&responseOpts)
	}

	attrs := []slog.Attr{
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method),
		slog.Int("status_code", status),
		slog.String("user_message", userMessage),
		slog.String("actor", auth.ActorFromContext(r.Context())),
	}
	if err != nil {
		attrs = append(attrs,
			slog.String("error", redact.Error(err)),
			slog.String("error_type", fmt.Sprintf("%T", err)))
	}

	level := slog.LevelDebug
	switch {
	case status >= http.StatusInternalServerError:
		level = slog.LevelError
	case responseOpts.elevateLogLevel:
		level = slog.LevelWarn
	}

	logger.FromContext(r.Context()).LogAttrs(r.Context(), level, "API error response", attrs...)
	RespondWithError(w, r, status, userMessage)
}

// RespondUnauthenticated writes a 401 with a generic message and audits it.
func RespondUnauthenticated(w http.ResponseWriter, r *http.Request, message string) {
	logger.FromContext(r.Context()).Info("request not authenticated",
		"actor", auth.ActorFromContext(r.Context()),
		"method", r.Method,
		"path", r.URL.Path)

	w.Header().Set("WWW-Authenticate", `Bearer realm="bazaar"`)
	RespondWithError(w, r, http.StatusUnauthorized, message)
}

// RespondForbidden writes a 403 and audits it at WARN.
func RespondForbidden(w http.ResponseWriter, r *http.Request) {
	logger.FromContext(r.Context()).Warn("access denied",
		"actor", auth.ActorFromContext(r.Context()),
		"method", r.Method,
		"path", r.URL.Path)

	RespondWithError(w, r, http.StatusForbidden, MsgInsufficientPermission)
}
