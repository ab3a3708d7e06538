package http

import (
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/Alvearie/hri-mgmt-api-sub000/kit/platform/errors"
)

// API bundles the JSON encode/decode and error plumbing handlers share.
type API struct {
	logger     *zap.Logger
	errHandler *ErrorHandler
}

// NewAPI creates an API helper logging through logger.
func NewAPI(logger *zap.Logger) *API {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &API{
		logger:     logger,
		errHandler: NewErrorHandler(logger),
	}
}

// DecodeJSON unmarshals the request body into v, returning an EInvalid error
// on malformed JSON. An empty body leaves v untouched; required-field
// validation belongs to the caller.
func (a *API) DecodeJSON(r io.Reader, v interface{}) error {
	if err := json.NewDecoder(r).Decode(v); err != nil && err != io.EOF {
		return &errors.Error{
			Code: errors.EInvalid,
			Msg:  "unable to parse request body",
			Err:  err,
		}
	}
	return nil
}

// Respond writes v as JSON with the given status.
func (a *API) Respond(w http.ResponseWriter, status int, v interface{}) {
	if status == http.StatusNoContent || v == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Error("failed to encode response body", zap.Error(err))
	}
}

// Err writes err through the error handler.
func (a *API) Err(w http.ResponseWriter, r *http.Request, err error) {
	a.errHandler.HandleHTTPError(r.Context(), err, w)
}
