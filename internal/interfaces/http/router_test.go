package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/harborline/internal/application/assets"
	"github.com/orris-inc/harborline/internal/infrastructure/configstore"
	"github.com/orris-inc/harborline/internal/infrastructure/database"
	"github.com/orris-inc/harborline/internal/infrastructure/kvstore"
	"github.com/orris-inc/harborline/internal/infrastructure/localstore"
	"github.com/orris-inc/harborline/internal/shared/config"
	"github.com/orris-inc/harborline/internal/shared/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type apiResponse struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	RequestID string          `json:"request_id"`
	Error     *struct {
		Type string `json:"type"`
	} `json:"error"`
}

func newTestRouter(t *testing.T) *Router {
	t.Helper()
	log := logger.NewDiscardLogger()

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "local.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	kv, err := kvstore.New(db, log)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	controller := assets.NewController(ctx, assets.Options{
		Local:  localstore.New(kv, log),
		Config: configstore.New(kv, config.BackendOverride{}, log),
		Logger: log,
	})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = controller.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	router := NewRouter(assets.NewGateway(controller, nil), controller, config.ServerConfig{
		AllowedOrigins: []string{"http://dashboard.local"},
	}, log)
	router.SetupRoutes()
	return router
}

func serve(r *Router, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.GetEngine().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestRouter_LocalFacilityLifecycle(t *testing.T) {
	r := newTestRouter(t)

	w := serve(r, http.MethodPost, "/api/facilities", map[string]any{
		"name": "Depot 7", "location": "Quay 1", "capacity": 100, "used": 25, "status": "OK",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &created))
	require.NotEmpty(t, created.ID)

	w = serve(r, http.MethodPut, "/api/facilities/"+created.ID, map[string]any{
		"name": "Depot 7", "capacity": 100, "used": 100, "status": "Full",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.Eventually(t, func() bool {
		w := serve(r, http.MethodGet, "/api/facilities", nil)
		return strings.Contains(w.Body.String(), `"utilization":100`)
	}, 5*time.Second, 10*time.Millisecond)

	w = serve(r, http.MethodDelete, "/api/facilities/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = serve(r, http.MethodPut, "/api/facilities/"+created.ID, map[string]any{"name": "x", "status": "OK"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_VesselValidation(t *testing.T) {
	r := newTestRouter(t)

	w := serve(r, http.MethodPost, "/api/vessels", map[string]any{"name": "MV Test", "status": "Sunk"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "validation_error", resp.Error.Type)
}

func TestRouter_StatusAndHealthcheck(t *testing.T) {
	r := newTestRouter(t)

	w := serve(r, http.MethodGet, "/api/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"regime":"local"`)
	assert.Contains(t, w.Body.String(), `"configured":false`)

	w = serve(r, http.MethodGet, "/api/healthcheck", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	r := newTestRouter(t)

	serve(r, http.MethodGet, "/api/vessels", nil)
	w := serve(r, http.MethodGet, "/metrics", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "harborline_http_requests_total")
}

func TestRouter_CORS(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/facilities", nil)
	req.Header.Set("Origin", "http://dashboard.local")
	w := httptest.NewRecorder()
	r.GetEngine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://dashboard.local", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/facilities", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.GetEngine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_RequestID(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/vessels", nil)
	req.Header.Set("X-Request-ID", "trace-42")
	w := httptest.NewRecorder()
	r.GetEngine().ServeHTTP(w, req)

	assert.Equal(t, "trace-42", w.Header().Get("X-Request-ID"))
	assert.Equal(t, "trace-42", decode(t, w).RequestID)

	w = serve(r, http.MethodGet, "/api/vessels", nil)
	generated := w.Header().Get("X-Request-ID")
	assert.True(t, strings.HasPrefix(generated, "req_"), generated)
	assert.Equal(t, generated, decode(t, w).RequestID)
}
