package batch

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi"
	"go.uber.org/zap"

	hri "github.com/Alvearie/hri-mgmt-api-sub000"
	"github.com/Alvearie/hri-mgmt-api-sub000/kit/platform/errors"
	kithttp "github.com/Alvearie/hri-mgmt-api-sub000/kit/transport/http"
)

// forbiddenQueryChars guards against query values being spliced into the
// index query language.
const forbiddenQueryChars = `"[]{}`

// BatchHandler serves the batch API, mounted under
// /tenants/{tenantId}/batches.
type BatchHandler struct {
	chi.Router
	api *kithttp.API
	log *zap.Logger
	svc hri.BatchService
}

// NewHTTPBatchHandler constructs the batch router.
func NewHTTPBatchHandler(log *zap.Logger, svc hri.BatchService) *BatchHandler {
	if log == nil {
		log = zap.NewNop()
	}
	h := &BatchHandler{
		api: kithttp.NewAPI(log),
		log: log,
		svc: svc,
	}

	r := chi.NewRouter()
	r.NotFound(kithttp.NotFoundHandler(kithttp.NewErrorHandler(log)))
	r.MethodNotAllowed(kithttp.MethodNotAllowedHandler(kithttp.NewErrorHandler(log)))

	r.Get("/", h.handleGetBatches)
	r.Post("/", h.handlePostBatch)
	r.Get("/{batchId}", h.handleGetBatch)
	r.Put("/{batchId}/action/{action}", h.handleAction)

	h.Router = r
	return h
}

type createBatchRequest struct {
	Name                string                 `json:"name"`
	Topic               string                 `json:"topic"`
	DataType            string                 `json:"dataType"`
	RecordCount         *int                   `json:"recordCount,omitempty"`
	ExpectedRecordCount *int                   `json:"expectedRecordCount,omitempty"`
	InvalidThreshold    int                    `json:"invalidThreshold,omitempty"`
	Metadata            map[string]interface{} `json:"metadata,omitempty"`
}

type createBatchResponse struct {
	ID string `json:"id"`
}

type batchesResponse struct {
	Total   int          `json:"total"`
	Results []*hri.Batch `json:"results"`
}

func (h *BatchHandler) handlePostBatch(w http.ResponseWriter, r *http.Request) {
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
	if err := claims.RequireRole(hri.RoleIntegrator, hri.RoleInternal); err != nil {
		h.api.Err(w, r, err)
		return
	}

	var req createBatchRequest
	if err := h.api.DecodeJSON(r.Body, &req); err != nil {
		h.api.Err(w, r, err)
		return
	}

	b := &hri.Batch{
		Name:                req.Name,
		Topic:               req.Topic,
		DataType:            req.DataType,
		RecordCount:         req.RecordCount,
		ExpectedRecordCount: req.ExpectedRecordCount,
		InvalidThreshold:    req.InvalidThreshold,
		Metadata:            req.Metadata,
	}

	created, err := h.svc.CreateBatch(ctx, tenantID, b)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, http.StatusCreated, createBatchResponse{ID: created.ID})
}

func (h *BatchHandler) handleGetBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := chi.URLParam(r, "tenantId")
	batchID := chi.URLParam(r, "batchId")

	claims, err := hri.ClaimsFromContext(ctx)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	if err := claims.RequireTenant(tenantID); err != nil {
		h.api.Err(w, r, err)
		return
	}
	if err := claims.RequireRole(hri.RoleConsumer, hri.RoleIntegrator, hri.RoleInternal); err != nil {
		h.api.Err(w, r, err)
		return
	}

	b, err := h.svc.FindBatchByID(ctx, tenantID, batchID)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, http.StatusOK, b)
}

func (h *BatchHandler) handleGetBatches(w http.ResponseWriter, r *http.Request) {
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
	if err := claims.RequireRole(hri.RoleConsumer, hri.RoleIntegrator, hri.RoleInternal); err != nil {
		h.api.Err(w, r, err)
		return
	}

	filter, err := decodeBatchFilter(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	batches, total, err := h.svc.FindBatches(ctx, tenantID, *filter)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, http.StatusOK, batchesResponse{Total: total, Results: batches})
}

func decodeBatchFilter(r *http.Request) (*hri.BatchFilter, error) {
	q := r.URL.Query()

	for _, name := range []string{"status", "name", "gteDate", "lteDate"} {
		if v := q.Get(name); strings.ContainsAny(v, forbiddenQueryChars) {
			return nil, &errors.Error{
				Code: errors.EInvalid,
				Msg:  fmt.Sprintf("query parameter '%s' may not contain any of these characters: %s", name, forbiddenQueryChars),
			}
		}
	}

	filter := &hri.BatchFilter{}
	if v := q.Get("status"); v != "" {
		status := hri.BatchStatus(v)
		filter.Status = &status
	}
	if v := q.Get("name"); v != "" {
		name := v
		filter.Name = &name
	}

	var err error
	if filter.GteDate, err = dateParam(q.Get("gteDate"), "gteDate"); err != nil {
		return nil, err
	}
	if filter.LteDate, err = dateParam(q.Get("lteDate"), "lteDate"); err != nil {
		return nil, err
	}
	if filter.Size, err = intParam(q.Get("size"), "size"); err != nil {
		return nil, err
	}
	if filter.From, err = intParam(q.Get("from"), "from"); err != nil {
		return nil, err
	}
	return filter, nil
}

func dateParam(v, name string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, &errors.Error{
			Code: errors.EInvalid,
			Msg:  fmt.Sprintf("query parameter '%s' must be an RFC 3339 date; '%s' is not valid", name, v),
		}
	}
	return &t, nil
}

func intParam(v, name string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, &errors.Error{
			Code: errors.EInvalid,
			Msg:  fmt.Sprintf("query parameter '%s' must be a non-negative integer; '%s' is not valid", name, v),
		}
	}
	return n, nil
}

func (h *BatchHandler) handleAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := chi.URLParam(r, "tenantId")
	batchID := chi.URLParam(r, "batchId")
	action := hri.BatchAction(chi.URLParam(r, "action"))

	claims, err := hri.ClaimsFromContext(ctx)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	if err := claims.RequireTenant(tenantID); err != nil {
		h.api.Err(w, r, err)
		return
	}
	if err := claims.RequireRole(actionRoles(action)...); err != nil {
		h.api.Err(w, r, err)
		return
	}

	var req hri.ActionRequest
	if err := h.api.DecodeJSON(r.Body, &req); err != nil {
		h.api.Err(w, r, err)
		return
	}

	b, err := h.svc.ProcessAction(ctx, tenantID, batchID, action, req)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, http.StatusOK, b)
}

// actionRoles maps actions to the roles permitted to invoke them: data
// integrators drive their own batches, the internal role reports validation
// outcomes.
func actionRoles(action hri.BatchAction) []string {
	switch action {
	case hri.ActionProcessingComplete, hri.ActionFail:
		return []string{hri.RoleInternal}
	default:
		return []string{hri.RoleIntegrator, hri.RoleInternal}
	}
}
