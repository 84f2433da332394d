package solver

import (
	"context"
	"math"
	"time"
)

// unbounded disables the time dimension without risking overflow.
const unbounded = math.MaxInt64 / 4

// Solve builds the model, constructs a seed with path cheapest arc and
// improves it by local search within opts.TimeBudget.
//
// Configuration problems return a *ModelConfigurationError and no solution.
// Infeasibility is not an error: the returned Solution carries
// StatusInfeasible and callers branch on Solution.Feasible.
func Solve(ctx context.Context, req Request, opts Options) (*Solution, error) {
	opts = opts.withDefaults()
	diag := opts.Diagnostics
	start := time.Now()

	m, err := NewModel(req, opts)
	if err != nil {
		diag.Record("solve.rejected", map[string]any{"err": err.Error()})
		return nil, err
	}
	diag.Record("solve.model", map[string]any{
		"locations": m.n,
		"vehicles":  m.vehicles,
		"objective": m.objective.String(),
		"breaks":    m.breaks != nil,
	})

	if m.n == 1 {
		return &Solution{Status: StatusFeasible, Stats: SearchStats{StopReason: StopNotAttempted}}, nil
	}

	seed := m.construct()
	if !seed.complete() {
		diag.Record("solve.construct", map[string]any{
			"complete":   false,
			"unassigned": len(seed.unassigned),
			"dur_ms":     time.Since(start).Milliseconds(),
		})
		return infeasible(seed.unassigned, SearchStats{StopReason: StopNotAttempted}), nil
	}
	diag.Record("solve.construct", map[string]any{
		"complete": true,
		"dur_ms":   time.Since(start).Milliseconds(),
	})

	imp := newImprover(ctx, m, seed.routes, opts)
	stats := imp.run()
	diag.Record("solve.improve", map[string]any{
		"initial_cost": stats.InitialCost,
		"final_cost":   stats.FinalCost,
		"passes":       stats.Passes,
		"evaluations":  stats.Evaluations,
		"accepted":     stats.Accepted(),
		"stop":         string(stats.StopReason),
	})

	sol := m.extract(imp.routes, stats)
	diag.Record("solve.done", map[string]any{
		"status":     string(sol.Status),
		"routes":     len(sol.Routes),
		"total_cost": sol.TotalCost,
		"dur_ms":     time.Since(start).Milliseconds(),
	})
	return sol, nil
}

// SolveSimple solves a capacity-only VRP: no service times, no time windows
// and plain distance as the objective.
func SolveSimple(
	ctx context.Context,
	matrix [][]int64,
	demands []float64,
	vehicleCount int,
	capacity float64,
	depotIndex int,
	opts Options,
) (*Solution, error) {
	opts = opts.withDefaults()
	opts.Objective = ObjectiveDistance
	opts.Horizon = unbounded
	opts.EnforceBreaks = false

	n := len(matrix)
	windows := make([]TimeWindow, n)
	for i := range windows {
		windows[i] = TimeWindow{Earliest: 0, Latest: unbounded}
	}

	return Solve(ctx, Request{
		Matrix:       matrix,
		Demands:      demands,
		ServiceTimes: make([]int64, n),
		TimeWindows:  windows,
		VehicleCount: vehicleCount,
		Capacity:     capacity,
		DepotIndex:   depotIndex,
	}, opts)
}
