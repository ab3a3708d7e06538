package http

import (
	"context"
	"net/http"
	"time"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/Alvearie/hri-mgmt-api-sub000/kit/platform/errors"
	kithttp "github.com/Alvearie/hri-mgmt-api-sub000/kit/transport/http"
)

const healthCheckTimeout = 10 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports readiness: the document store and the message broker
// must both answer.
type HealthHandler struct {
	api        *kithttp.API
	errHandler *kithttp.ErrorHandler
	store      pinger
	events     pinger
}

// NewHealthHandler constructs the /healthcheck handler.
func NewHealthHandler(log *zap.Logger, store, events pinger) *HealthHandler {
	return &HealthHandler{
		api:        kithttp.NewAPI(log),
		errHandler: kithttp.NewErrorHandler(log),
		store:      store,
		events:     events,
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	var result *multierror.Error
	if err := h.store.Ping(ctx); err != nil {
		result = multierror.Append(result, err)
	}
	if err := h.events.Ping(ctx); err != nil {
		result = multierror.Append(result, err)
	}

	if result != nil {
		h.errHandler.HandleHTTPError(ctx, &errors.Error{
			Code: errors.EUnavailable,
			Msg:  result.Error(),
		}, w)
		return
	}

	h.api.Respond(w, http.StatusOK, map[string]string{"status": "green"})
}
