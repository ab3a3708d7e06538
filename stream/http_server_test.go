package stream_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	hri "github.com/Alvearie/hri-mgmt-api-sub000"
	"github.com/Alvearie/hri-mgmt-api-sub000/mock"
	"github.com/Alvearie/hri-mgmt-api-sub000/stream"
)

// newTestServer mounts the stream handler the way the tenant router does,
// with pre-validated claims injected on every request.
func newTestServer(t *testing.T, events *mock.EventService, scopes ...string) *httptest.Server {
	t.Helper()

	svc := stream.NewService(events, zaptest.NewLogger(t))
	handler := stream.NewHTTPStreamHandler(zaptest.NewLogger(t), svc)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := hri.WithClaims(req.Context(), &hri.Claims{Subject: "test", Scopes: scopes})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Route("/tenants/{tenantId}", func(r chi.Router) {
		r.Mount("/streams", handler)
	})

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server
}

func doRequest(t *testing.T, method, url string, reqBody interface{}) (int, map[string]interface{}) {
	t.Helper()

	var body io.Reader
	if reqBody != nil {
		raw, err := json.Marshal(reqBody)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]interface{}{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func TestStreamHandlerCreateAndList(t *testing.T) {
	events := mock.NewEventService()
	var created []hri.TopicConfig
	events.CreateTopicsFn = func(_ context.Context, topics ...hri.TopicConfig) error {
		created = topics
		return nil
	}
	server := newTestServer(t, events, "tenant_t1")

	status, body := doRequest(t, http.MethodPost, server.URL+"/tenants/t1/streams/porter",
		map[string]interface{}{"numPartitions": 1, "retentionMs": 3600000})
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "porter", body["id"])
	require.Len(t, created, 4)

	events.ListTopicsFn = func(_ context.Context, prefix string) ([]string, error) {
		return []string{"ingest.t1.porter.in", "ingest.t1.porter.notification"}, nil
	}
	status, body = doRequest(t, http.MethodGet, server.URL+"/tenants/t1/streams", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, []interface{}{map[string]interface{}{"id": "porter"}}, body["results"])
}

func TestStreamHandlerMissingFields(t *testing.T) {
	server := newTestServer(t, mock.NewEventService(), "tenant_t1")

	status, body := doRequest(t, http.MethodPost, server.URL+"/tenants/t1/streams/porter",
		map[string]interface{}{"cleanupPolicy": "compact"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["errorDescription"],
		"missing required field(s): [numPartitions, retentionMs]")

	status, body = doRequest(t, http.MethodPost, server.URL+"/tenants/t1/streams/porter",
		map[string]interface{}{"numPartitions": 1})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["errorDescription"], "missing required field(s): [retentionMs]")
}

func TestStreamHandlerFieldTypes(t *testing.T) {
	server := newTestServer(t, mock.NewEventService(), "tenant_t1")

	status, body := doRequest(t, http.MethodPost, server.URL+"/tenants/t1/streams/porter",
		map[string]interface{}{"numPartitions": "1", "retentionMs": 3600000})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["errorDescription"], "numPartitions must be an integer; got string")

	status, body = doRequest(t, http.MethodPost, server.URL+"/tenants/t1/streams/porter",
		map[string]interface{}{"numPartitions": 1, "retentionMs": 1.5})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["errorDescription"], "retentionMs must be an integer; got number")
}

func TestStreamHandlerConflict(t *testing.T) {
	events := mock.NewEventService()
	events.ListTopicsFn = func(_ context.Context, prefix string) ([]string, error) {
		return []string{"ingest.t1.porter.in"}, nil
	}
	server := newTestServer(t, events, "tenant_t1")

	status, body := doRequest(t, http.MethodPost, server.URL+"/tenants/t1/streams/porter",
		map[string]interface{}{"numPartitions": 1, "retentionMs": 3600000})
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, body["errorDescription"], "topic 'ingest.t1.porter.in' already exists")
}

func TestStreamHandlerDelete(t *testing.T) {
	events := mock.NewEventService()
	events.ListTopicsFn = func(_ context.Context, prefix string) ([]string, error) {
		return []string{
			"ingest.t1.porter.in",
			"ingest.t1.porter.notification",
			"ingest.t1.porter.out",
			"ingest.t1.porter.invalid",
		}, nil
	}
	server := newTestServer(t, events, "tenant_t1")

	status, _ := doRequest(t, http.MethodDelete, server.URL+"/tenants/t1/streams/porter", nil)
	assert.Equal(t, http.StatusOK, status)

	events.ListTopicsFn = func(_ context.Context, prefix string) ([]string, error) { return nil, nil }
	status, body := doRequest(t, http.MethodDelete, server.URL+"/tenants/t1/streams/porter", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, body["errorDescription"], "unknown topic 'ingest.t1.porter.in'")
}

func TestStreamHandlerWrongTenantScope(t *testing.T) {
	server := newTestServer(t, mock.NewEventService(), "tenant_other")

	status, body := doRequest(t, http.MethodPost, server.URL+"/tenants/t1/streams/porter",
		map[string]interface{}{"numPartitions": 1, "retentionMs": 3600000})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Contains(t, body["errorDescription"], "t1")
}
