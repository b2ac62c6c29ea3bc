package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/toolcase/toolcase"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestWorker(t *testing.T, opts ...Option) *Worker {
	t.Helper()
	catalog := toolcase.NewCatalog()
	tool, err := toolcase.NewTool("add", "Add two numbers", func(_ context.Context, a struct {
		X int `json:"x" description:"First addend"`
		Y int `json:"y" description:"Second addend"`
	}) (int, error) {
		return a.X + a.Y, nil
	})
	require.NoError(t, err)
	_, err = catalog.AddTool(tool, toolcase.NewToolkit("Math", "1.0.0", ""))
	require.NoError(t, err)

	executor := toolcase.NewExecutor(catalog)
	t.Cleanup(func() { require.NoError(t, executor.Shutdown(context.Background())) })
	return New(catalog, executor, opts...)
}

func TestWorker_Health(t *testing.T) {
	w := newTestWorker(t)
	rec := httptest.NewRecorder()
	w.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/worker/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var health HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.True(t, health.Healthy)
	assert.Equal(t, 1, health.ToolCount)
}

func TestWorker_Catalog(t *testing.T) {
	w := newTestWorker(t)
	rec := httptest.NewRecorder()
	w.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/worker/tools", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var defs []toolcase.ToolDefinition
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &defs))
	require.Len(t, defs, 1)
	assert.Equal(t, "Math.Add@1.0.0", defs[0].FullyQualifiedName)
	require.Len(t, defs[0].Input.Parameters, 2)
}

func TestWorker_Catalog_ToolkitFilter(t *testing.T) {
	w := newTestWorker(t)
	rec := httptest.NewRecorder()
	w.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/worker/tools?toolkit=other", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var defs []toolcase.ToolDefinition
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &defs))
	assert.Empty(t, defs)
}

func invokeBody(t *testing.T, req toolcase.CallRequest) *bytes.Reader {
	t.Helper()
	data, err := json.Marshal(req)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func TestWorker_Invoke(t *testing.T) {
	w := newTestWorker(t)
	rec := httptest.NewRecorder()
	body := invokeBody(t, toolcase.CallRequest{
		ToolName: "Math.Add",
		Inputs:   map[string]any{"x": 3, "y": 5},
	})
	w.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/worker/tools/invoke", body))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp toolcase.CallResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, float64(8), resp.Output.Value)
	assert.NotEmpty(t, resp.InvocationID)
}

func TestWorker_Invoke_ToolErrorStaysHTTP200(t *testing.T) {
	w := newTestWorker(t)
	rec := httptest.NewRecorder()
	body := invokeBody(t, toolcase.CallRequest{ToolName: "Math.Add"})
	w.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/worker/tools/invoke", body))

	// Missing inputs are an execution outcome, not a transport failure.
	require.Equal(t, http.StatusOK, rec.Code)
	var resp toolcase.CallResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Output.Error)
}

func TestWorker_Invoke_UnknownTool(t *testing.T) {
	w := newTestWorker(t)
	rec := httptest.NewRecorder()
	body := invokeBody(t, toolcase.CallRequest{ToolName: "Math.Missing"})
	w.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/worker/tools/invoke", body))

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWorker_Invoke_BadRequests(t *testing.T) {
	w := newTestWorker(t)

	rec := httptest.NewRecorder()
	w.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/worker/tools/invoke", bytes.NewReader([]byte("{not json"))))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	body := invokeBody(t, toolcase.CallRequest{})
	w.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/worker/tools/invoke", body))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWorker_SecretGuardsRoutes(t *testing.T) {
	w := newTestWorker(t, WithSecret("s3cr3t"))

	// Health stays open.
	rec := httptest.NewRecorder()
	w.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/worker/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	// No token.
	rec = httptest.NewRecorder()
	w.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/worker/tools", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Wrong token.
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/worker/tools", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Right token.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/worker/tools", nil)
	req.Header.Set("Authorization", "Bearer s3cr3t")
	w.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
