// This file implements a small builder for JSON responses and the mapping
// from domain errors to HTTP status codes.

package http

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"

	"finboard/internal/amqp"
	"finboard/internal/core"
	"finboard/internal/dashboard"
	"finboard/internal/ingest"
	applog "finboard/internal/log"
	"finboard/internal/period"
)

// ErrConfirmationRequired is returned by destructive endpoints called
// without confirm=true.
var ErrConfirmationRequired = errors.New("confirmation required: repeat the request with confirm=true")

// ResponseBuilder provides a fluent API for building JSON responses.
type ResponseBuilder struct {
	statusCode int
	headers    map[string]string
	payload    any
}

// NewResponse creates a new response builder with default 200 status.
func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{statusCode: http.StatusOK, headers: make(map[string]string)}
}

func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	return b
}

func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

// JSON sets the value encoded as the response body.
func (b *ResponseBuilder) JSON(v any) *ResponseBuilder {
	b.payload = v
	return b
}

// Write sends the built response. A nil payload sends headers only.
func (b *ResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.payload == nil {
		w.WriteHeader(b.statusCode)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	_ = json.NewEncoder(w).Encode(b.payload)
}

// errorBody is the shape of every error response.
type errorBody struct {
	Error string `json:"error"`
}

// ErrorResponse creates a JSON error response.
func ErrorResponse(statusCode int, message string) *ResponseBuilder {
	return NewResponse().Status(statusCode).JSON(errorBody{Error: message})
}

// statusFor maps an error to the status code and message shown to clients.
// Anything unrecognised is a 500 with a generic message.
func statusFor(err error) (int, string) {
	var maxBytes *http.MaxBytesError
	var parseErr *csv.ParseError
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		return http.StatusBadRequest, reqErr.Error()
	case errors.Is(err, core.ErrUnknownKind), errors.Is(err, dashboard.ErrTransactionNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, ErrConfirmationRequired):
		return http.StatusPreconditionFailed, err.Error()
	case errors.Is(err, period.ErrInvalidFilter),
		errors.Is(err, core.ErrEmptyCategory),
		errors.Is(err, core.ErrNegativeGoal),
		errors.Is(err, ingest.ErrEmptyFile):
		return http.StatusBadRequest, err.Error()
	case errors.As(err, &parseErr):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge, "upload too large"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "request timed out"
	case errors.Is(err, amqp.ErrCircuitOpen):
		return http.StatusServiceUnavailable, "export queue unavailable, try again later"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// writeError logs err and writes the mapped error response.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, msg := statusFor(err)
	logger := applog.FromContext(r.Context())
	if code >= http.StatusInternalServerError {
		applog.NewStructuredLogger(logger).LogError(r.Context(), "Request failed", err, r.Method+" "+r.URL.Path, nil)
	} else {
		logger.DebugContext(r.Context(), "Request rejected", applog.FieldError, err, applog.FieldStatusCode, code)
	}
	ErrorResponse(code, msg).Write(w)
}
