package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Alvearie/hri-mgmt-api-sub000/kit/platform/errors"
)

// ErrBody is the JSON error response shape. Every non-2xx response carries an
// errorEventId for correlating with server logs.
type ErrBody struct {
	ErrorEventID     string `json:"errorEventId"`
	ErrorDescription string `json:"errorDescription"`
}

// ErrorHandler writes typed errors as JSON responses.
type ErrorHandler struct {
	logger *zap.Logger
}

// NewErrorHandler creates an error handler logging through logger.
func NewErrorHandler(logger *zap.Logger) *ErrorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorHandler{logger: logger}
}

// HandleHTTPError encodes err with the status code its error code maps to and
// a correlation id, and logs the full error chain.
func (h *ErrorHandler) HandleHTTPError(ctx context.Context, err error, w http.ResponseWriter) {
	if err == nil {
		return
	}

	code := errors.ErrorCode(err)
	status, ok := statusCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}

	body := ErrBody{
		ErrorEventID:     uuid.New().String(),
		ErrorDescription: errors.ErrorMessage(err),
	}

	h.logger.Error("request failed",
		zap.String("errorEventId", body.ErrorEventID),
		zap.String("code", code),
		zap.String("op", errors.ErrorOp(err)),
		zap.Error(err),
	)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	b, _ := json.Marshal(body)
	_, _ = w.Write(b)
}

// statusCode maps platform error codes to HTTP statuses.
var statusCode = map[string]int{
	errors.EInternal:         http.StatusInternalServerError,
	errors.EInvalid:          http.StatusBadRequest,
	errors.EConflict:         http.StatusConflict,
	errors.ENotFound:         http.StatusNotFound,
	errors.EUnavailable:      http.StatusServiceUnavailable,
	errors.EForbidden:        http.StatusForbidden,
	errors.EUnauthorized:     http.StatusUnauthorized,
	errors.EMethodNotAllowed: http.StatusMethodNotAllowed,
}
