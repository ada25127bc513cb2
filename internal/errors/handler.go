package errors

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"runtime"

	"github.com/go-chi/render"

	"ctrlreport/internal/infrastructure"
	"ctrlreport/internal/onetrust"
)

// ErrorHandler provides centralized error handling for HTTP handlers
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	return &ErrorHandler{
		logger:       logger.With(slog.String("component", "error_handler")),
		includeStack: includeStack,
	}
}

// HandleError converts any error into an APIError response and writes it
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	traceID := infrastructure.GetTraceID(r.Context())

	h.logger.ErrorContext(r.Context(), "request failed",
		slog.String("error", err.Error()),
		slog.String("trace_id", traceID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("remote_addr", r.RemoteAddr),
	)

	apiErr := h.toAPIError(err)

	response := NewErrorResponse(apiErr)
	if renderErr := render.Render(w, r, response); renderErr != nil {
		WriteError(w, apiErr)
	}
}

// toAPIError maps domain errors to APIError values
func (h *ErrorHandler) toAPIError(err error) *APIError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrRequestTimeout
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	// Any collection failure aborts the whole request and surfaces as a
	// gateway error; callers only see success or failure.
	var upstreamErr *onetrust.UpstreamError
	if errors.As(err, &upstreamErr) {
		return UpstreamError(err)
	}
	if errors.Is(err, onetrust.ErrPageLimit) {
		return UpstreamError(err)
	}

	return ErrInternalServer
}

// HandlePanic writes a 500 response for a recovered panic
func (h *ErrorHandler) HandlePanic(w http.ResponseWriter, r *http.Request, recovered interface{}) {
	attrs := []any{
		slog.Any("panic", recovered),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	}
	if h.includeStack {
		attrs = append(attrs, slog.String("stack", getStackTrace()))
	}
	h.logger.ErrorContext(r.Context(), "panic recovered", attrs...)

	WriteError(w, ErrPanic(recovered))
}

// NotFound returns a standard 404 error
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	WriteError(w, ErrNotFound)
}

// getStackTrace returns the current stack trace
func getStackTrace() string {
	buf := make([]byte, 1024*8)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}
