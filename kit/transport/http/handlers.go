package http

import (
	"fmt"
	"net/http"

	"github.com/Alvearie/hri-mgmt-api-sub000/kit/platform/errors"
)

// NotFoundHandler writes the JSON error shape for unmatched routes.
func NotFoundHandler(h *ErrorHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.HandleHTTPError(r.Context(), &errors.Error{
			Code: errors.ENotFound,
			Msg:  fmt.Sprintf("route not found: %s", r.URL.Path),
		}, w)
	}
}

// MethodNotAllowedHandler writes the JSON error shape for routes matched with
// an unsupported method.
func MethodNotAllowedHandler(h *ErrorHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.HandleHTTPError(r.Context(), &errors.Error{
			Code: errors.EMethodNotAllowed,
			Msg:  fmt.Sprintf("method %s not allowed for route %s", r.Method, r.URL.Path),
		}, w)
	}
}
