package tenant

import (
	"net/http"

	"github.com/go-chi/chi"
	"go.uber.org/zap"

	hri "github.com/Alvearie/hri-mgmt-api-sub000"
	kithttp "github.com/Alvearie/hri-mgmt-api-sub000/kit/transport/http"
)

const prefixTenants = "/tenants"

// TenantHandler serves the tenant API and hosts the stream and batch
// sub-routers under each tenant.
type TenantHandler struct {
	chi.Router
	api *kithttp.API
	log *zap.Logger
	svc hri.TenantService
}

// NewHTTPTenantHandler constructs the tenant router. streamHandler and
// batchHandler are mounted under /{tenantId}/streams and /{tenantId}/batches
// when non-nil.
func NewHTTPTenantHandler(log *zap.Logger, svc hri.TenantService, streamHandler, batchHandler http.Handler) *TenantHandler {
	if log == nil {
		log = zap.NewNop()
	}
	h := &TenantHandler{
		api: kithttp.NewAPI(log),
		log: log,
		svc: svc,
	}

	r := chi.NewRouter()
	r.NotFound(kithttp.NotFoundHandler(kithttp.NewErrorHandler(log)))
	r.MethodNotAllowed(kithttp.MethodNotAllowedHandler(kithttp.NewErrorHandler(log)))

	r.Get("/", h.handleListTenants)
	r.Route("/{tenantId}", func(r chi.Router) {
		r.Post("/", h.handlePostTenant)
		r.Get("/", h.handleGetTenant)
		r.Delete("/", h.handleDeleteTenant)
		if streamHandler != nil {
			r.Mount("/streams", streamHandler)
		}
		if batchHandler != nil {
			r.Mount("/batches", batchHandler)
		}
	})

	h.Router = r
	return h
}

// Prefix returns the path prefix this handler mounts at.
func (h *TenantHandler) Prefix() string {
	return prefixTenants
}

type tenantResponse struct {
	TenantID string `json:"tenantId"`
}

type tenantsResponse struct {
	Results []string `json:"results"`
}

func (h *TenantHandler) handlePostTenant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := chi.URLParam(r, "tenantId")

	claims, err := hri.ClaimsFromContext(ctx)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	if err := claims.RequireTenant(tenantID); err != nil {
		h.api.Err(w, r, err)
		return
	}

	t, err := h.svc.CreateTenant(ctx, tenantID)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, http.StatusCreated, tenantResponse{TenantID: t.ID})
}

func (h *TenantHandler) handleGetTenant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := chi.URLParam(r, "tenantId")

	if _, err := hri.ClaimsFromContext(ctx); err != nil {
		h.api.Err(w, r, err)
		return
	}

	t, err := h.svc.FindTenantByID(ctx, tenantID)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, http.StatusOK, t)
}

func (h *TenantHandler) handleListTenants(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, err := hri.ClaimsFromContext(ctx); err != nil {
		h.api.Err(w, r, err)
		return
	}

	ids, err := h.svc.ListTenants(ctx)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, http.StatusOK, tenantsResponse{Results: ids})
}

func (h *TenantHandler) handleDeleteTenant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := chi.URLParam(r, "tenantId")

	claims, err := hri.ClaimsFromContext(ctx)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	if err := claims.RequireTenant(tenantID); err != nil {
		h.api.Err(w, r, err)
		return
	}

	if err := h.svc.DeleteTenant(ctx, tenantID); err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, http.StatusOK, nil)
}
