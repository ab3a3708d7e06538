package http

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	hri "github.com/Alvearie/hri-mgmt-api-sub000"
	"github.com/Alvearie/hri-mgmt-api-sub000/authorization"
	"github.com/Alvearie/hri-mgmt-api-sub000/batch"
	kithttp "github.com/Alvearie/hri-mgmt-api-sub000/kit/transport/http"
	"github.com/Alvearie/hri-mgmt-api-sub000/stream"
	"github.com/Alvearie/hri-mgmt-api-sub000/tenant"
)

// APIBackend is everything the top-level handler needs wired in.
type APIBackend struct {
	Logger *zap.Logger

	Store  hri.BatchStore
	Events hri.EventService

	TokenValidator hri.TokenValidator
	TenantService  hri.TenantService
	StreamService  hri.StreamService
	BatchService   hri.BatchService
}

// NewHandler assembles the full HTTP surface: liveness, health, metrics, and
// the authenticated tenant tree with streams and batches nested inside it.
func NewHandler(b *APIBackend) http.Handler {
	log := b.Logger
	if log == nil {
		log = zap.NewNop()
	}

	registry := prometheus.NewRegistry()
	reqMetric := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hri",
		Subsystem: "http",
		Name:      "api_requests_total",
		Help:      "Number of HTTP requests received.",
	}, []string{"handler", "method", "status"})
	durMetric := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hri",
		Subsystem: "http",
		Name:      "api_request_duration_seconds",
		Help:      "Time taken to respond to HTTP requests.",
	}, []string{"handler", "method", "status"})
	registry.MustRegister(reqMetric, durMetric)

	errHandler := kithttp.NewErrorHandler(log)

	r := chi.NewRouter()
	r.Use(kithttp.Logging(log))
	r.Use(kithttp.Metrics("hri", reqMetric, durMetric))
	r.NotFound(kithttp.NotFoundHandler(errHandler))
	r.MethodNotAllowed(kithttp.MethodNotAllowedHandler(errHandler))

	r.Get("/alive", handleAlive)
	r.Method(http.MethodGet, "/healthcheck", NewHealthHandler(log, b.Store, b.Events))
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	streamHandler := stream.NewHTTPStreamHandler(log, b.StreamService)
	batchHandler := batch.NewHTTPBatchHandler(log, b.BatchService)
	tenantHandler := tenant.NewHTTPTenantHandler(log, b.TenantService, streamHandler, batchHandler)

	authn := authorization.Middleware(b.TokenValidator, log)
	r.Mount(tenantHandler.Prefix(), authn(tenantHandler))

	return r
}

// handleAlive is the liveness probe; it touches no dependencies.
func handleAlive(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("yes"))
}
