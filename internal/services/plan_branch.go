package services

import (
	"context"
	"errors"
	"fmt"
	"time"
	"warehouse-route-service/internal/domain"
	"warehouse-route-service/internal/platform/metrics"
	"warehouse-route-service/internal/platform/obs"
	"warehouse-route-service/internal/ports"
	"warehouse-route-service/internal/solver"
)

// BranchProblem is the solver input derived from one branch's depot and
// orders. Location 0 is the depot; location i+1 is Orders[i].
type BranchProblem struct {
	Depot     domain.Depot
	Orders    []domain.WarehouseOrder
	Locations []string
	Request   solver.Request
	// EnforceBreaks is set when the fleet has a lunch break.
	EnforceBreaks bool
}

// BuildBranchProblem lays out locations, demands, service times and windows.
//
// Demand is the used desi of each pickup and service time grows with it.
// Every location, the depot included, shares the fleet's working window.
func BuildBranchProblem(depot domain.Depot, orders []domain.WarehouseOrder, fleet domain.Fleet) (BranchProblem, error) {
	if err := fleet.Validate(); err != nil {
		return BranchProblem{}, fmt.Errorf("build branch problem: %w", err)
	}
	if err := depot.Coordinates().Validate(); err != nil {
		return BranchProblem{}, fmt.Errorf("build branch problem: depot %q: %w", depot.Name, err)
	}

	n := len(orders) + 1
	p := BranchProblem{
		Depot:     depot,
		Orders:    orders,
		Locations: make([]string, 0, n),
		Request: solver.Request{
			Demands:      make([]float64, 0, n),
			ServiceTimes: make([]int64, 0, n),
			TimeWindows:  make([]solver.TimeWindow, 0, n),
			VehicleCount: fleet.Vehicles,
			Capacity:     fleet.Capacity,
			DepotIndex:   0,
		},
	}

	window := solver.TimeWindow{Earliest: fleet.WorkStart, Latest: fleet.WorkEnd}

	p.Locations = append(p.Locations, depot.Coordinates().String())
	p.Request.Demands = append(p.Request.Demands, 0)
	p.Request.ServiceTimes = append(p.Request.ServiceTimes, 0)
	p.Request.TimeWindows = append(p.Request.TimeWindows, window)

	for _, o := range orders {
		used := o.UsedDesi()
		p.Locations = append(p.Locations, o.Coordinates().String())
		p.Request.Demands = append(p.Request.Demands, used)
		p.Request.ServiceTimes = append(p.Request.ServiceTimes, fleet.ServiceSeconds(used))
		p.Request.TimeWindows = append(p.Request.TimeWindows, window)
	}

	if fleet.HasLunch() {
		p.EnforceBreaks = true
		p.Request.Breaks = make([]solver.Break, fleet.Vehicles)
		for v := range p.Request.Breaks {
			p.Request.Breaks[v] = solver.Break{Start: fleet.LunchStart, End: fleet.LunchEnd}
		}
	}

	return p, nil
}

// BranchPlanner runs the locations -> matrix -> solve pipeline for one branch.
type BranchPlanner struct {
	Provider ports.MatrixProvider
	// Options is the base solver configuration shared by every branch.
	Options     solver.Options
	Diagnostics ports.Diagnostics
}

func NewBranchPlanner(provider ports.MatrixProvider, opts solver.Options, diag ports.Diagnostics) (*BranchPlanner, error) {
	if provider == nil {
		return nil, errors.New("branch planner: provider is nil")
	}
	return &BranchPlanner{Provider: provider, Options: opts, Diagnostics: diag}, nil
}

// PlanOrders solves one branch. Provider and configuration failures are
// returned as errors; an infeasible instance yields a plan with
// StatusNoSolution and no routes.
func (p *BranchPlanner) PlanOrders(
	ctx context.Context,
	branch string,
	depot domain.Depot,
	orders []domain.WarehouseOrder,
	fleet domain.Fleet,
) (_ domain.BranchPlan, err error) {
	defer obs.Time(ctx, "PlanOrders")(&err)

	plan := domain.BranchPlan{Branch: branch, RunID: obs.RunID(ctx)}

	problem, err := BuildBranchProblem(depot, orders, fleet)
	if err != nil {
		return plan, fmt.Errorf("plan branch %s: %w", branch, err)
	}

	if len(orders) == 0 {
		plan.Status = domain.StatusOK
		return plan, nil
	}

	matrix, err := p.Provider.GetMatrix(ctx, problem.Locations, branch)
	if err != nil {
		return plan, fmt.Errorf("plan branch %s: get matrix: %w", branch, err)
	}
	problem.Request.Matrix = matrix

	opts := p.Options
	opts.EnforceBreaks = opts.EnforceBreaks || problem.EnforceBreaks
	opts.Diagnostics = withBranch(p.Diagnostics, branch)

	start := time.Now()
	sol, err := solver.Solve(ctx, problem.Request, opts)
	metrics.SolveDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.Solves.WithLabelValues("invalid").Inc()
		return plan, fmt.Errorf("plan branch %s: solve: %w", branch, err)
	}

	if !sol.Feasible() {
		metrics.Solves.WithLabelValues("infeasible").Inc()
		plan.Status = domain.StatusNoSolution
		return plan, nil
	}
	metrics.Solves.WithLabelValues("ok").Inc()

	plan.Status = domain.StatusOK
	plan.TotalCost = sol.TotalCost
	plan.Routes = toRoutePlans(branch, problem, sol)
	return plan, nil
}

func toRoutePlans(branch string, problem BranchProblem, sol *solver.Solution) []domain.RoutePlan {
	out := make([]domain.RoutePlan, 0, len(sol.Routes))
	for _, r := range sol.Routes {
		rp := domain.RoutePlan{
			Branch:    branch,
			VehicleID: r.Vehicle,
			Stops:     make([]domain.RouteStop, 0, len(r.Visits)),
			Load:      r.Load,
			Cost:      r.Cost,
		}
		for step, v := range r.Visits {
			stop := domain.RouteStop{
				Step:          step,
				LocationIndex: v.LocationIndex,
				ArrivalTime:   v.ArrivalTime,
			}
			if v.LocationIndex == 0 {
				stop.Coordinates = problem.Depot.Coordinates()
				stop.Address = problem.Depot.Name
			} else {
				o := problem.Orders[v.LocationIndex-1]
				stop.Coordinates = o.Coordinates()
				stop.Desi = o.UsedDesi()
				stop.OrderCount = o.OrderCount
				stop.Address = o.AddressLine1
			}
			rp.Stops = append(rp.Stops, stop)
		}
		out = append(out, rp)
	}
	return out
}

// branchDiagnostics tags every event with the branch it belongs to.
type branchDiagnostics struct {
	inner  ports.Diagnostics
	branch string
}

func withBranch(d ports.Diagnostics, branch string) ports.Diagnostics {
	if d == nil {
		return nil
	}
	return branchDiagnostics{inner: d, branch: branch}
}

func (b branchDiagnostics) Record(event string, fields map[string]any) {
	tagged := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		tagged[k] = v
	}
	tagged["branch"] = b.branch
	b.inner.Record(event, tagged)
}
