package mcp

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/config"
	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/metrics"
	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/shutdown"
	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/tenant"
)

func newTestHTTPServer(t *testing.T, registry *Registry, enableAuth bool, tokens []string) *HTTPServer {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Auth.EnableAuth = enableAuth
	cfg.Auth.Tokens = tokens
	resolver := tenant.New(cfg)
	m := metrics.New(prometheus.NewRegistry())
	srv := NewServer(registry, ServerInfo{Name: "scratchmcp", Version: "0.1.0"}, discardLogger(), resolver, shutdown.New(), m)
	return NewHTTPServer(srv, resolver, "*", "/sse", discardLogger())
}

func TestHandleMCPPostDispatchesSingleMessage(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeTool{name: "scratch_create", result: &ToolsCallResult{Content: []ContentBlock{TextContent("ok")}}})
	h := newTestHTTPServer(t, r, false, nil)

	body := `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`
	req := httptest.NewRequest(http.MethodPost, "/http", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Handler("/http").ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "scratch_create")
}

func TestHandleMCPPostNotificationReturns202(t *testing.T) {
	h := newTestHTTPServer(t, NewRegistry(), false, nil)
	body := `{"jsonrpc":"2.0","method":"notifications/initialized"}`
	req := httptest.NewRequest(http.MethodPost, "/http", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Handler("/http").ServeHTTP(w, req)
	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestHandleMCPPostEmptyBodyIs400(t *testing.T) {
	h := newTestHTTPServer(t, NewRegistry(), false, nil)
	req := httptest.NewRequest(http.MethodPost, "/http", strings.NewReader(""))
	w := httptest.NewRecorder()
	h.Handler("/http").ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleMCPBatchDispatchesEachMessage(t *testing.T) {
	r := NewRegistry()
	h := newTestHTTPServer(t, r, false, nil)

	body := `[{"jsonrpc":"2.0","id":1,"method":"tools/list"},{"jsonrpc":"2.0","id":2,"method":"resources/list"}]`
	req := httptest.NewRequest(http.MethodPost, "/http", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Handler("/http").ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandleMCPBatchAllNotificationsReturns202(t *testing.T) {
	h := newTestHTTPServer(t, NewRegistry(), false, nil)
	body := `[{"jsonrpc":"2.0","method":"notifications/initialized"}]`
	req := httptest.NewRequest(http.MethodPost, "/http", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Handler("/http").ServeHTTP(w, req)
	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestHandleMCPRejectsUnauthorizedWithoutToken(t *testing.T) {
	h := newTestHTTPServer(t, NewRegistry(), true, []string{"alice:secret1"})
	req := httptest.NewRequest(http.MethodPost, "/http", strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	w := httptest.NewRecorder()
	h.Handler("/http").ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandleMCPAcceptsValidBearerToken(t *testing.T) {
	h := newTestHTTPServer(t, NewRegistry(), true, []string{"alice:secret1"})
	req := httptest.NewRequest(http.MethodPost, "/http", strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	req.Header.Set("Authorization", "Bearer secret1")
	w := httptest.NewRecorder()
	h.Handler("/http").ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandleMCPInitializeSetsSessionHeader(t *testing.T) {
	h := newTestHTTPServer(t, NewRegistry(), false, nil)
	req := httptest.NewRequest(http.MethodPost, "/http", strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"initialize"}`))
	w := httptest.NewRecorder()
	h.Handler("/http").ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("Mcp-Session-Id"))
}

func TestHandleMCPUnknownSessionIsRejected(t *testing.T) {
	h := newTestHTTPServer(t, NewRegistry(), false, nil)
	req := httptest.NewRequest(http.MethodPost, "/http", strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	req.Header.Set("Mcp-Session-Id", "nonexistent")
	w := httptest.NewRecorder()
	h.Handler("/http").ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleMCPGetWithoutSSEAcceptHeaderIs400(t *testing.T) {
	h := newTestHTTPServer(t, NewRegistry(), false, nil)
	req := httptest.NewRequest(http.MethodGet, "/http", nil)
	w := httptest.NewRecorder()
	h.Handler("/http").ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleMCPDeleteRequiresSessionHeader(t *testing.T) {
	h := newTestHTTPServer(t, NewRegistry(), false, nil)
	req := httptest.NewRequest(http.MethodDelete, "/http", nil)
	w := httptest.NewRecorder()
	h.Handler("/http").ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleMCPOptionsReturnsNoContent(t *testing.T) {
	h := newTestHTTPServer(t, NewRegistry(), false, nil)
	req := httptest.NewRequest(http.MethodOptions, "/http", nil)
	w := httptest.NewRecorder()
	h.Handler("/http").ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestHTTPServer(t, NewRegistry(), false, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	h.Handler("/http").ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}
