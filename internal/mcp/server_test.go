package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/config"
	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/metrics"
	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/shutdown"
	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/tenant"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, registry *Registry) *Server {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	resolver := tenant.New(cfg)
	m := metrics.New(prometheus.NewRegistry())
	return NewServer(registry, ServerInfo{Name: "scratchmcp", Version: "0.1.0"}, discardLogger(), resolver, shutdown.New(), m)
}

func TestHandleMessageNotificationReturnsNil(t *testing.T) {
	s := newTestServer(t, NewRegistry())
	resp := s.HandleMessage(context.Background(), "tenant-a", []byte(`{"jsonrpc":"2.0","method":"notifications/initialized"}`))
	assert.Nil(t, resp)
}

func TestHandleMessageParseErrorReturnsRPCError(t *testing.T) {
	s := newTestServer(t, NewRegistry())
	resp := s.HandleMessage(context.Background(), "tenant-a", []byte(`not json`))
	require.NotNil(t, resp)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeParse, resp.Error.Code)
}

func TestHandleMessageInitialize(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeTool{name: "scratch_create"})
	s := newTestServer(t, r)

	resp := s.HandleMessage(context.Background(), "tenant-a", []byte(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`))
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)

	result, ok := resp.Result.(*InitializeResult)
	require.True(t, ok)
	assert.NotNil(t, result.Capabilities.Tools)
	assert.Nil(t, result.Capabilities.Prompts)
}

func TestHandleMessageInitializeAdvertisesPromptsAndResources(t *testing.T) {
	r := NewRegistry()
	r.RegisterPrompt(&fakePrompt{def: PromptDefinition{Name: "guide"}})
	r.RegisterResource(&fakeResource{def: ResourceDefinition{URI: "scratchpad://data-model"}})
	s := newTestServer(t, r)

	resp := s.HandleMessage(context.Background(), "tenant-a", []byte(`{"jsonrpc":"2.0","id":1,"method":"initialize"}`))
	result := resp.Result.(*InitializeResult)
	assert.NotNil(t, result.Capabilities.Prompts)
	assert.NotNil(t, result.Capabilities.Resources)
}

func TestHandleMessageToolsList(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeTool{name: "scratch_create"})
	s := newTestServer(t, r)

	resp := s.HandleMessage(context.Background(), "tenant-a", []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	result := resp.Result.(*ToolsListResult)
	require.Len(t, result.Tools, 1)
	assert.Equal(t, "scratch_create", result.Tools[0].Name)
}

func TestHandleMessageToolsCallSuccess(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeTool{name: "scratch_create", result: &ToolsCallResult{Content: []ContentBlock{TextContent("ok")}}})
	s := newTestServer(t, r)

	params, err := json.Marshal(ToolsCallParams{Name: "scratch_create", Arguments: json.RawMessage(`{}`)})
	require.NoError(t, err)
	req, err := json.Marshal(map[string]any{"jsonrpc": "2.0", "id": 1, "method": "tools/call", "params": json.RawMessage(params)})
	require.NoError(t, err)

	resp := s.HandleMessage(context.Background(), "tenant-a", req)
	require.Nil(t, resp.Error)
	result := resp.Result.(*ToolsCallResult)
	assert.False(t, result.IsError)
	assert.Equal(t, "ok", result.Content[0].Text)
}

func TestHandleMessageToolsCallUnknownTool(t *testing.T) {
	s := newTestServer(t, NewRegistry())
	params, _ := json.Marshal(ToolsCallParams{Name: "missing"})
	req, _ := json.Marshal(map[string]any{"jsonrpc": "2.0", "id": 1, "method": "tools/call", "params": json.RawMessage(params)})

	resp := s.HandleMessage(context.Background(), "tenant-a", req)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeMethodNotFound, resp.Error.Code)
}

func TestHandleMessageToolsCallToolErrorBecomesErrorResult(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeTool{name: "scratch_create", err: assertErr("boom")})
	s := newTestServer(t, r)

	params, _ := json.Marshal(ToolsCallParams{Name: "scratch_create"})
	req, _ := json.Marshal(map[string]any{"jsonrpc": "2.0", "id": 1, "method": "tools/call", "params": json.RawMessage(params)})

	resp := s.HandleMessage(context.Background(), "tenant-a", req)
	require.Nil(t, resp.Error)
	result := resp.Result.(*ToolsCallResult)
	assert.True(t, result.IsError)
}

func TestHandleMessageToolsCallRejectedWhileDraining(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeTool{name: "scratch_create", result: &ToolsCallResult{}})
	s := newTestServer(t, r)
	s.Gate().BeginDraining()

	params, _ := json.Marshal(ToolsCallParams{Name: "scratch_create"})
	req, _ := json.Marshal(map[string]any{"jsonrpc": "2.0", "id": 1, "method": "tools/call", "params": json.RawMessage(params)})

	resp := s.HandleMessage(context.Background(), "tenant-a", req)
	require.Nil(t, resp.Error)
	result := resp.Result.(*ToolsCallResult)
	assert.True(t, result.IsError)
}

func TestHandleMessageUnknownMethod(t *testing.T) {
	s := newTestServer(t, NewRegistry())
	resp := s.HandleMessage(context.Background(), "tenant-a", []byte(`{"jsonrpc":"2.0","id":1,"method":"nope"}`))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeMethodNotFound, resp.Error.Code)
}

func TestHandleMessagePromptsGetAndList(t *testing.T) {
	r := NewRegistry()
	r.RegisterPrompt(&fakePrompt{def: PromptDefinition{Name: "guide"}})
	s := newTestServer(t, r)

	listResp := s.HandleMessage(context.Background(), "tenant-a", []byte(`{"jsonrpc":"2.0","id":1,"method":"prompts/list"}`))
	listResult := listResp.Result.(*PromptsListResult)
	require.Len(t, listResult.Prompts, 1)

	getParams, _ := json.Marshal(PromptsGetParams{Name: "guide"})
	req, _ := json.Marshal(map[string]any{"jsonrpc": "2.0", "id": 1, "method": "prompts/get", "params": json.RawMessage(getParams)})
	getResp := s.HandleMessage(context.Background(), "tenant-a", req)
	require.Nil(t, getResp.Error)
	getResult := getResp.Result.(*PromptsGetResult)
	require.Len(t, getResult.Messages, 1)
}

func TestHandleMessagePromptsGetUnknown(t *testing.T) {
	s := newTestServer(t, NewRegistry())
	params, _ := json.Marshal(PromptsGetParams{Name: "missing"})
	req, _ := json.Marshal(map[string]any{"jsonrpc": "2.0", "id": 1, "method": "prompts/get", "params": json.RawMessage(params)})
	resp := s.HandleMessage(context.Background(), "tenant-a", req)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeMethodNotFound, resp.Error.Code)
}

func TestHandleMessageResourcesReadAndList(t *testing.T) {
	r := NewRegistry()
	r.RegisterResource(&fakeResource{def: ResourceDefinition{URI: "scratchpad://data-model", Name: "Data Model"}})
	s := newTestServer(t, r)

	listResp := s.HandleMessage(context.Background(), "tenant-a", []byte(`{"jsonrpc":"2.0","id":1,"method":"resources/list"}`))
	listResult := listResp.Result.(*ResourcesListResult)
	require.Len(t, listResult.Resources, 1)

	readParams, _ := json.Marshal(ResourcesReadParams{URI: "scratchpad://data-model"})
	req, _ := json.Marshal(map[string]any{"jsonrpc": "2.0", "id": 1, "method": "resources/read", "params": json.RawMessage(readParams)})
	readResp := s.HandleMessage(context.Background(), "tenant-a", req)
	require.Nil(t, readResp.Error)
	readResult := readResp.Result.(*ResourcesReadResult)
	require.Len(t, readResult.Contents, 1)
	assert.Equal(t, "content", readResult.Contents[0].Text)
}

type simpleError string

func (e simpleError) Error() string { return string(e) }

func assertErr(msg string) error { return simpleError(msg) }
