package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"warehouse-route-service/internal/api/dto"
	"warehouse-route-service/internal/domain"
	"warehouse-route-service/internal/ports"
	"warehouse-route-service/internal/solver"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingProvider struct{}

func (failingProvider) GetMatrix(context.Context, []string, string) ([][]int64, error) {
	return nil, &ports.DistanceProviderError{Reason: "upstream down"}
}

var squareMatrix = [][]int64{
	{0, 10, 15, 20},
	{10, 0, 12, 8},
	{15, 12, 0, 9},
	{20, 8, 9, 0},
}

func testFleet() domain.Fleet {
	return domain.Fleet{
		Vehicles:  2,
		Capacity:  12,
		WorkStart: 8 * domain.Hour,
		WorkEnd:   17 * domain.Hour,
	}
}

func newTestRouter(provider ports.MatrixProvider) http.Handler {
	return NewRouter(provider, solver.Options{TimeBudget: time.Second}, testFleet())
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func solveBody() map[string]any {
	return map[string]any{
		"matrix":           squareMatrix,
		"demands":          []float64{0, 5, 5, 5},
		"service_times":    []int64{0, 0, 0, 0},
		"time_windows":     [][2]int64{{0, 72000}, {0, 72000}, {0, 72000}, {0, 72000}},
		"vehicle_count":    2,
		"vehicle_capacity": 12,
		"depot_index":      0,
	}
}

func TestHealth(t *testing.T) {
	h := newTestRouter(nil)

	rec := do(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = do(t, h, http.MethodPost, "/health", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodGet, rec.Header().Get("Allow"))
}

func TestRequestIDIsPropagated(t *testing.T) {
	h := newTestRouter(nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestSolveReturnsRoutes(t *testing.T) {
	rec := do(t, newTestRouter(nil), http.MethodPost, "/v1/solve", solveBody())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res dto.SolveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "OK", res.Status)
	assert.Equal(t, int64(64), res.TotalCost)
	require.Len(t, res.Routes, 2)

	seen := map[int]int{}
	for _, route := range res.Routes {
		require.GreaterOrEqual(t, len(route), 3)
		assert.Equal(t, 0, route[0].LocationIndex)
		assert.Equal(t, 0, route[len(route)-1].LocationIndex)
		for _, v := range route[1 : len(route)-1] {
			seen[v.LocationIndex]++
		}
	}
	assert.Equal(t, map[int]int{1: 1, 2: 1, 3: 1}, seen)
	assert.Empty(t, res.Events)
}

func TestSolveDebugReturnsEvents(t *testing.T) {
	body := solveBody()
	body["debug"] = true

	rec := do(t, newTestRouter(nil), http.MethodPost, "/v1/solve", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var res dto.SolveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.NotEmpty(t, res.Events)
	assert.Equal(t, "solve.model", res.Events[0].Name)
	assert.Equal(t, "solve.done", res.Events[len(res.Events)-1].Name)
}

func TestSolveInfeasibleIsNotAnError(t *testing.T) {
	body := solveBody()
	body["vehicle_count"] = 1
	body["vehicle_capacity"] = 4

	rec := do(t, newTestRouter(nil), http.MethodPost, "/v1/solve", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var res dto.SolveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "No solution found", res.Status)
	assert.Empty(t, res.Routes)
}

func TestSolveRejectsBadInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(b map[string]any)
		want   string
	}{
		{"mismatched demands", func(b map[string]any) { b["demands"] = []float64{0, 5} }, "demands"},
		{"no vehicles", func(b map[string]any) { b["vehicle_count"] = 0 }, "VehicleCount"},
		{"unknown objective", func(b map[string]any) { b["objective"] = "fuel" }, "Objective"},
		{"unknown field", func(b map[string]any) { b["trucks"] = 3 }, "invalid json body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := solveBody()
			tt.mutate(body)
			rec := do(t, newTestRouter(nil), http.MethodPost, "/v1/solve", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}
}

func planBody() map[string]any {
	return map[string]any{
		"branch": "Esenyurt",
		"depot":  map[string]any{"name": "Esenyurt", "lat": 41.03, "lon": 28.68},
		"orders": []map[string]any{
			{"latitude": 41.05, "longitude": 28.67, "order_count": 2, "total_desi": 5, "total_used_desi": 5, "address_line_1": "A"},
			{"latitude": 41.06, "longitude": 28.66, "order_count": 1, "total_desi": 5, "total_used_desi": 5, "address_line_1": "B"},
			{"latitude": 41.07, "longitude": 28.65, "order_count": 4, "total_desi": 5, "total_used_desi": 5, "address_line_1": "C"},
		},
	}
}

func TestPlanWithInlineMatrix(t *testing.T) {
	body := planBody()
	body["matrix"] = squareMatrix

	req := httptest.NewRequest(http.MethodPost, "/v1/plans", strings.NewReader(mustJSON(t, body)))
	req.Header.Set("X-Request-ID", "run-7")
	rec := httptest.NewRecorder()
	newTestRouter(nil).ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res dto.PlanResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "Esenyurt", res.Branch)
	assert.Equal(t, "run-7", res.RunID)
	assert.Equal(t, "OK", res.Status)
	assert.Equal(t, int64(64), res.TotalCost)
	require.Len(t, res.Routes, 2)
	first := res.Routes[0].Stops[0]
	assert.Equal(t, "08:00:00", first.ArrivalClock)
	assert.Equal(t, "Esenyurt", first.Address)
}

func TestPlanWithoutMatrixOrProvider(t *testing.T) {
	rec := do(t, newTestRouter(nil), http.MethodPost, "/v1/plans", planBody())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "matrix is required")
}

func TestPlanProviderFailureIsBadGateway(t *testing.T) {
	rec := do(t, newTestRouter(failingProvider{}), http.MethodPost, "/v1/plans", planBody())
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestPlanRejectsInvalidFleetOverrides(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  any
	}{
		{"bad clock", "work_start", "25:00"},
		{"inverted shift", "work_end", "07:00"},
		{"too many vehicles", "vehicles", 5000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := planBody()
			body["matrix"] = squareMatrix
			body[tt.key] = tt.val
			rec := do(t, newTestRouter(nil), http.MethodPost, "/v1/plans", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestRouter(nil)
	do(t, h, http.MethodPost, "/v1/solve", solveBody())

	rec := do(t, h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "vrp_solves_total")
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="POST",path="/v1/solve",status="200"}`)
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}
