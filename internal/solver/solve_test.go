package solver

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedEvent struct {
	name   string
	fields map[string]any
}

type recordingSink struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *recordingSink) Record(event string, fields map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{name: event, fields: fields})
}

func (r *recordingSink) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.name)
	}
	return out
}

// assertValid checks the solution invariants against the raw request.
func assertValid(t *testing.T, req Request, sol *Solution) {
	t.Helper()
	require.Equal(t, StatusFeasible, sol.Status)

	seen := make(map[int]int)
	for _, r := range sol.Routes {
		require.GreaterOrEqual(t, len(r.Visits), 3, "depot-only routes must be filtered")
		assert.Equal(t, req.DepotIndex, r.Visits[0].LocationIndex, "route must start at the depot")
		assert.Equal(t, req.DepotIndex, r.Visits[len(r.Visits)-1].LocationIndex, "route must end at the depot")

		capacity := req.Capacity
		if len(req.Capacities) > 0 {
			capacity = req.Capacities[r.Vehicle]
		}

		var load float64
		for i, v := range r.Visits {
			tw := req.TimeWindows[v.LocationIndex]
			assert.GreaterOrEqual(t, v.ArrivalTime, tw.Earliest, "visit %d of vehicle %d arrives early", i, r.Vehicle)
			assert.LessOrEqual(t, v.ArrivalTime, tw.Latest, "visit %d of vehicle %d arrives late", i, r.Vehicle)
			if i > 0 {
				prev := r.Visits[i-1]
				minArrival := prev.ArrivalTime + req.ServiceTimes[prev.LocationIndex] + req.Matrix[prev.LocationIndex][v.LocationIndex]
				assert.GreaterOrEqual(t, v.ArrivalTime, minArrival, "arrival precedes travel from previous visit")
			}
			if i > 0 && i < len(r.Visits)-1 {
				seen[v.LocationIndex]++
				load += req.Demands[v.LocationIndex]
			}
		}
		assert.LessOrEqual(t, load, capacity, "vehicle %d over capacity", r.Vehicle)
		assert.InDelta(t, load, r.Load, 1e-9)
	}

	for i := range req.Matrix {
		if i == req.DepotIndex {
			assert.Zero(t, seen[i])
			continue
		}
		assert.Equal(t, 1, seen[i], "location %d must be visited exactly once", i)
	}
}

func TestSolveFourLocationScenario(t *testing.T) {
	req := validRequest()

	sol, err := Solve(context.Background(), req, Options{TimeBudget: time.Second})
	require.NoError(t, err)
	assertValid(t, req, sol)

	assert.Len(t, sol.Routes, 2)
	assert.Equal(t, int64(64), sol.TotalCost)
	assert.NoError(t, sol.Err())
	assert.Equal(t, StopLocalOptimum, sol.Stats.StopReason)
	assert.LessOrEqual(t, sol.Stats.FinalCost, sol.Stats.InitialCost)
}

func TestSolveDepotOnly(t *testing.T) {
	req := Request{
		Matrix:       [][]int64{{0}},
		Demands:      []float64{0},
		ServiceTimes: []int64{0},
		TimeWindows:  openWindows(1, DefaultHorizon),
		VehicleCount: 1,
		Capacity:     1,
	}

	sol, err := Solve(context.Background(), req, Options{})
	require.NoError(t, err)
	assert.Equal(t, StatusFeasible, sol.Status)
	assert.Empty(t, sol.Routes)
}

func TestSolveUnreachableWindowIsInfeasible(t *testing.T) {
	req := Request{
		Matrix:       [][]int64{{0, 100, 5}, {100, 0, 100}, {5, 100, 0}},
		Demands:      []float64{0, 1, 1},
		ServiceTimes: []int64{0, 0, 0},
		TimeWindows:  []TimeWindow{{0, 1000}, {0, 50}, {0, 1000}},
		VehicleCount: 3,
		Capacity:     10,
	}

	sol, err := Solve(context.Background(), req, Options{})
	require.NoError(t, err)
	assert.Equal(t, StatusInfeasible, sol.Status)
	assert.Empty(t, sol.Routes)
	assert.Equal(t, []int{1}, sol.Unassigned)
	assert.ErrorIs(t, sol.Err(), ErrNoFeasibleSolution)
}

func TestSolveDemandBeyondFleetIsInfeasible(t *testing.T) {
	req := validRequest()
	req.VehicleCount = 1

	sol, err := Solve(context.Background(), req, Options{})
	require.NoError(t, err)
	assert.False(t, sol.Feasible())
	assert.Len(t, sol.Unassigned, 1)
}

func TestSolveConfigurationErrorAbortsBeforeSearch(t *testing.T) {
	req := validRequest()
	req.Demands = req.Demands[:2]
	sink := &recordingSink{}

	sol, err := Solve(context.Background(), req, Options{Diagnostics: sink})
	require.Error(t, err)
	assert.Nil(t, sol)

	var cfgErr *ModelConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "demands", cfgErr.Field)
	assert.Equal(t, []string{"solve.rejected"}, sink.names())
}

func TestSolveRecordsDiagnostics(t *testing.T) {
	sink := &recordingSink{}
	_, err := Solve(context.Background(), validRequest(), Options{Diagnostics: sink})
	require.NoError(t, err)

	assert.Equal(t, []string{"solve.model", "solve.construct", "solve.improve", "solve.done"}, sink.names())
}

func TestSolveWaitsForLateOpeningWindow(t *testing.T) {
	req := Request{
		Matrix:       [][]int64{{0, 10, 10}, {10, 0, 10}, {10, 10, 0}},
		Demands:      []float64{0, 1, 1},
		ServiceTimes: []int64{0, 60, 60},
		TimeWindows:  []TimeWindow{{0, 5000}, {0, 5000}, {1000, 1200}},
		VehicleCount: 1,
		Capacity:     5,
	}

	sol, err := Solve(context.Background(), req, Options{})
	require.NoError(t, err)
	assertValid(t, req, sol)

	require.Len(t, sol.Routes, 1)
	assert.Equal(t, []int{1, 2}, sol.Routes[0].Stops())
	assert.Equal(t, int64(1000), sol.Routes[0].Visits[2].ArrivalTime)
}

func TestSolveHeterogeneousCapacities(t *testing.T) {
	req := Request{
		Matrix:       [][]int64{{0, 10, 10}, {10, 0, 1}, {10, 1, 0}},
		Demands:      []float64{0, 8, 8},
		ServiceTimes: []int64{0, 0, 0},
		TimeWindows:  openWindows(3, DefaultHorizon),
		VehicleCount: 2,
		Capacities:   []float64{5, 20},
	}

	sol, err := Solve(context.Background(), req, Options{})
	require.NoError(t, err)
	assertValid(t, req, sol)

	require.Len(t, sol.Routes, 1)
	assert.Equal(t, 1, sol.Routes[0].Vehicle)
}

func TestSolveNonZeroSelfCostAndAsymmetry(t *testing.T) {
	req := Request{
		Matrix: [][]int64{
			{50, 1, 100},
			{100, 50, 1},
			{1, 100, 50},
		},
		Demands:      []float64{0, 1, 1},
		ServiceTimes: []int64{0, 0, 0},
		TimeWindows:  openWindows(3, DefaultHorizon),
		VehicleCount: 2,
		Capacity:     10,
	}

	sol, err := Solve(context.Background(), req, Options{})
	require.NoError(t, err)
	assertValid(t, req, sol)

	require.Len(t, sol.Routes, 1)
	assert.Equal(t, []int{1, 2}, sol.Routes[0].Stops())
	assert.Equal(t, int64(3), sol.TotalCost)
}

func TestSolveNonZeroDepotIndex(t *testing.T) {
	req := validRequest()
	req.DepotIndex = 3
	req.Demands = []float64{5, 5, 5, 0}

	sol, err := Solve(context.Background(), req, Options{})
	require.NoError(t, err)
	assertValid(t, req, sol)
}

func TestSolveSimpleIgnoresHorizon(t *testing.T) {
	matrix := [][]int64{
		{0, 90000, 95000},
		{90000, 0, 1000},
		{95000, 1000, 0},
	}

	sol, err := SolveSimple(context.Background(), matrix, []float64{0, 4, 4}, 2, 10, 0, Options{})
	require.NoError(t, err)
	require.True(t, sol.Feasible())
	require.Len(t, sol.Routes, 1)
	assert.Equal(t, int64(90000+1000+95000), sol.TotalCost)
}

func randomRequest(seed int64, n, vehicles int) Request {
	rng := rand.New(rand.NewSource(seed))
	type point struct{ x, y float64 }
	pts := make([]point, n)
	for i := range pts {
		pts[i] = point{rng.Float64() * 1000, rng.Float64() * 1000}
	}

	req := Request{
		Matrix:       make([][]int64, n),
		Demands:      make([]float64, n),
		ServiceTimes: make([]int64, n),
		TimeWindows:  make([]TimeWindow, n),
		VehicleCount: vehicles,
		Capacity:     40,
	}
	for i := range pts {
		req.Matrix[i] = make([]int64, n)
		for j := range pts {
			dx, dy := pts[i].x-pts[j].x, pts[i].y-pts[j].y
			if dx < 0 {
				dx = -dx
			}
			if dy < 0 {
				dy = -dy
			}
			req.Matrix[i][j] = int64(dx + dy)
		}
		req.TimeWindows[i] = TimeWindow{Earliest: 0, Latest: 20000}
		if i == 0 {
			continue
		}
		req.Demands[i] = float64(1 + rng.Intn(9))
		req.ServiceTimes[i] = int64(30 + rng.Intn(90))
		if rng.Intn(3) == 0 {
			open := int64(rng.Intn(6000))
			req.TimeWindows[i] = TimeWindow{Earliest: open, Latest: open + 6000}
		}
	}
	return req
}

func TestSolveRandomInstancesKeepInvariants(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		req := randomRequest(seed, 25, 8)

		sol, err := Solve(context.Background(), req, Options{TimeBudget: 5 * time.Second})
		require.NoError(t, err)
		if !sol.Feasible() {
			t.Fatalf("seed %d: expected a feasible solution, unassigned=%v", seed, sol.Unassigned)
		}
		assertValid(t, req, sol)
		assert.LessOrEqual(t, sol.Stats.FinalCost, sol.Stats.InitialCost)
		assert.Equal(t, sol.Stats.FinalCost, sol.TotalCost)
	}
}

func TestSolveIsDeterministic(t *testing.T) {
	req := randomRequest(42, 20, 6)

	for _, seed := range []int64{0, 99} {
		opts := Options{TimeBudget: 5 * time.Second, Seed: seed}
		first, err := Solve(context.Background(), req, opts)
		require.NoError(t, err)
		second, err := Solve(context.Background(), req, opts)
		require.NoError(t, err)

		assert.Equal(t, first.TotalCost, second.TotalCost)
		assert.Equal(t, first.Routes, second.Routes)
	}
}

func TestSolveHonoursIterationLimit(t *testing.T) {
	req := randomRequest(3, 20, 6)

	sol, err := Solve(context.Background(), req, Options{IterationLimit: 1})
	require.NoError(t, err)
	require.True(t, sol.Feasible())
	assert.LessOrEqual(t, sol.Stats.Accepted(), 1)
	assertValid(t, req, sol)
}

func TestSolveReturnsBestSoFarWhenCanceled(t *testing.T) {
	req := randomRequest(5, 30, 8)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sol, err := Solve(ctx, req, Options{})
	require.NoError(t, err)
	require.True(t, sol.Feasible())
	assertValid(t, req, sol)
	assert.Contains(t, []StopReason{StopCanceled, StopLocalOptimum}, sol.Stats.StopReason)
}
