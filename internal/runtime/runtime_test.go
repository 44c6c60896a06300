package runtime

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoHandler(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	return map[string]interface{}{"echo": args["msg"]}, nil
}

func failingHandler(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	return map[string]interface{}{"success": false, "error": "domain failure"}, nil
}

func panicHandler(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	panic("boom")
}

func newTestRegistry() *Registry {
	r := NewRegistry("test-service", "1.0.0")
	r.Register(Descriptor{Name: "echo", Description: "echoes msg"}, echoHandler)
	r.Register(Descriptor{Name: "fail", Description: "always fails"}, failingHandler)
	r.Register(Descriptor{Name: "panic", Description: "panics"}, panicHandler)
	return r
}

func TestDispatchUnknownTool(t *testing.T) {
	r := newTestRegistry()
	env := r.Dispatch(context.Background(), "nope", nil)
	require.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "Unknown tool: nope", *env.Error)
}

func TestDispatchSuccess(t *testing.T) {
	r := newTestRegistry()
	env := r.Dispatch(context.Background(), "echo", map[string]interface{}{"msg": "hi"})
	assert.True(t, env.Success)
	assert.Nil(t, env.Error)
}

func TestDispatchHandlerReportedFailure(t *testing.T) {
	r := newTestRegistry()
	env := r.Dispatch(context.Background(), "fail", nil)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "domain failure", *env.Error)
}

func TestDispatchRecoversFromPanic(t *testing.T) {
	r := newTestRegistry()
	env := r.Dispatch(context.Background(), "panic", nil)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Contains(t, *env.Error, "panicked")
}

func TestResolveArgumentsArgumentsWins(t *testing.T) {
	args := map[string]interface{}{"a": 1}
	params := map[string]interface{}{"a": 2}
	assert.Equal(t, args, ResolveArguments(args, params))
}

func TestResolveArgumentsFallsBackToParameters(t *testing.T) {
	params := map[string]interface{}{"a": 2}
	assert.Equal(t, params, ResolveArguments(nil, params))
}

func TestHTTPHealth(t *testing.T) {
	r := newTestRegistry()
	srv := httptest.NewServer(r.HTTPHandler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body healthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "test-service", body.Server)
}

func TestHTTPTools(t *testing.T) {
	r := newTestRegistry()
	srv := httptest.NewServer(r.HTTPHandler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/mcp/tools")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body toolsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Tools, 3)
}

func TestHTTPExecuteAliasing(t *testing.T) {
	r := newTestRegistry()
	srv := httptest.NewServer(r.HTTPHandler())
	defer srv.Close()

	reqBody := `{"tool":"echo","parameters":{"msg":"via-parameters"}}`
	resp, err := http.Post(srv.URL+"/mcp/execute", "application/json", strings.NewReader(reqBody))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var env Envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	assert.True(t, env.Success)
}

func TestStdioServeRoundTrip(t *testing.T) {
	r := newTestRegistry()
	in := strings.NewReader(`{"tool":"echo","arguments":{"msg":"hello"}}` + "\n")
	var out bytes.Buffer

	err := r.StdioServe(context.Background(), in, &out)
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(out.Bytes()), &env))
	assert.True(t, env.Success)
}

func TestStdioServeMalformedLine(t *testing.T) {
	r := newTestRegistry()
	in := strings.NewReader("not json\n")
	var out bytes.Buffer

	err := r.StdioServe(context.Background(), in, &out)
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(out.Bytes()), &env))
	assert.False(t, env.Success)
}
