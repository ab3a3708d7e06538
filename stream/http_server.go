package stream

import (
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/go-chi/chi"
	"go.uber.org/zap"

	hri "github.com/Alvearie/hri-mgmt-api-sub000"
	"github.com/Alvearie/hri-mgmt-api-sub000/kit/platform/errors"
	kithttp "github.com/Alvearie/hri-mgmt-api-sub000/kit/transport/http"
)

// StreamHandler serves the stream API, mounted under
// /tenants/{tenantId}/streams.
type StreamHandler struct {
	chi.Router
	api *kithttp.API
	log *zap.Logger
	svc hri.StreamService
}

// NewHTTPStreamHandler constructs the stream router.
func NewHTTPStreamHandler(log *zap.Logger, svc hri.StreamService) *StreamHandler {
	if log == nil {
		log = zap.NewNop()
	}
	h := &StreamHandler{
		api: kithttp.NewAPI(log),
		log: log,
		svc: svc,
	}

	r := chi.NewRouter()
	r.NotFound(kithttp.NotFoundHandler(kithttp.NewErrorHandler(log)))
	r.MethodNotAllowed(kithttp.MethodNotAllowedHandler(kithttp.NewErrorHandler(log)))

	r.Get("/", h.handleListStreams)
	r.Post("/{streamId}", h.handlePostStream)
	r.Delete("/{streamId}", h.handleDeleteStream)

	h.Router = r
	return h
}

// createStreamRequest captures the raw body so presence and type of each
// field can be reported separately; a string where an integer belongs must
// name the field rather than fail generic JSON decoding.
type createStreamRequest struct {
	NumPartitions interface{} `json:"numPartitions"`
	RetentionMs   interface{} `json:"retentionMs"`
	CleanupPolicy interface{} `json:"cleanupPolicy"`
}

type streamResponse struct {
	ID string `json:"id"`
}

type streamsResponse struct {
	Results []streamResponse `json:"results"`
}

func (h *StreamHandler) handlePostStream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := chi.URLParam(r, "tenantId")
	streamID := chi.URLParam(r, "streamId")

	claims, err := hri.ClaimsFromContext(ctx)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	if err := claims.RequireTenant(tenantID); err != nil {
		h.api.Err(w, r, err)
		return
	}

	var req createStreamRequest
	if err := h.api.DecodeJSON(r.Body, &req); err != nil {
		h.api.Err(w, r, err)
		return
	}

	stream, err := decodeStream(tenantID, streamID, req)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	if err := h.svc.CreateStream(ctx, stream); err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, http.StatusCreated, streamResponse{ID: streamID})
}

func decodeStream(tenantID, streamID string, req createStreamRequest) (*hri.Stream, error) {
	var missing []string
	if req.NumPartitions == nil {
		missing = append(missing, "numPartitions")
	}
	if req.RetentionMs == nil {
		missing = append(missing, "retentionMs")
	}
	if len(missing) > 0 {
		return nil, &errors.Error{
			Code: errors.EInvalid,
			Msg:  fmt.Sprintf("invalid request arguments: missing required field(s): [%s]", strings.Join(missing, ", ")),
		}
	}

	numPartitions, err := intField("numPartitions", req.NumPartitions)
	if err != nil {
		return nil, err
	}
	retentionMs, err := intField("retentionMs", req.RetentionMs)
	if err != nil {
		return nil, err
	}

	cleanupPolicy := ""
	if req.CleanupPolicy != nil {
		s, ok := req.CleanupPolicy.(string)
		if !ok {
			return nil, &errors.Error{
				Code: errors.EInvalid,
				Msg:  fmt.Sprintf("invalid request arguments: cleanupPolicy must be a string; got %T", req.CleanupPolicy),
			}
		}
		cleanupPolicy = s
	}

	return &hri.Stream{
		TenantID:      tenantID,
		IntegratorID:  streamID,
		NumPartitions: numPartitions,
		RetentionMs:   retentionMs,
		CleanupPolicy: cleanupPolicy,
	}, nil
}

// intField rejects JSON values that are not integral numbers; a quoted number
// is a type mismatch, not an integer.
func intField(name string, v interface{}) (int, error) {
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) {
		return 0, &errors.Error{
			Code: errors.EInvalid,
			Msg:  fmt.Sprintf("invalid request arguments: %s must be an integer; got %s", name, jsonTypeName(v)),
		}
	}
	return int(f), nil
}

func jsonTypeName(v interface{}) string {
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case []interface{}:
		return "array"
	case map[string]interface{}:
		return "object"
	default:
		return "null"
	}
}

func (h *StreamHandler) handleListStreams(w http.ResponseWriter, r *http.Request) {
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

	ids, err := h.svc.ListStreams(ctx, tenantID)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	results := make([]streamResponse, 0, len(ids))
	for _, id := range ids {
		results = append(results, streamResponse{ID: id})
	}
	h.api.Respond(w, http.StatusOK, streamsResponse{Results: results})
}

func (h *StreamHandler) handleDeleteStream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := chi.URLParam(r, "tenantId")
	streamID := chi.URLParam(r, "streamId")

	claims, err := hri.ClaimsFromContext(ctx)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	if err := claims.RequireTenant(tenantID); err != nil {
		h.api.Err(w, r, err)
		return
	}

	if err := h.svc.DeleteStream(ctx, tenantID, streamID); err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, http.StatusOK, nil)
}
