package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"
	"warehouse-route-service/internal/api/dto"
	"warehouse-route-service/internal/platform/metrics"
	"warehouse-route-service/internal/platform/obs"
	"warehouse-route-service/internal/ports"
	"warehouse-route-service/internal/solver"
)

// SolveHandler solves a raw matrix problem. Options holds the server-side
// defaults; requests may only tighten the time budget.
type SolveHandler struct {
	Options solver.Options
}

func (h *SolveHandler) Solve(w http.ResponseWriter, r *http.Request) {
	if !methodAllowed(w, r, http.MethodPost) {
		return
	}

	var req dto.SolveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	sreq := solver.Request{
		Matrix:       req.Matrix,
		Demands:      req.Demands,
		ServiceTimes: req.ServiceTimes,
		TimeWindows:  make([]solver.TimeWindow, len(req.TimeWindows)),
		VehicleCount: req.VehicleCount,
		Capacity:     req.VehicleCapacity,
		Capacities:   req.VehicleCapacities,
		DepotIndex:   req.DepotIndex,
	}
	for i, tw := range req.TimeWindows {
		sreq.TimeWindows[i] = solver.TimeWindow{Earliest: tw[0], Latest: tw[1]}
	}
	for _, b := range req.Breaks {
		sreq.Breaks = append(sreq.Breaks, solver.Break{Start: b[0], End: b[1]})
	}

	opts := h.Options
	opts.EnforceBreaks = req.EnforceBreaks
	opts.MaxWait = req.MaxWait
	opts.Seed = req.Seed
	if req.Objective == "distance" {
		opts.Objective = solver.ObjectiveDistance
	} else {
		opts.Objective = solver.ObjectiveTime
	}
	opts.TimeBudget = requestBudget(h.Options.TimeBudget, req.TimeBudgetMS)

	var rec *obs.Recorder
	if req.Debug {
		rec = &obs.Recorder{}
		opts.Diagnostics = rec
	}

	start := time.Now()
	sol, err := solver.Solve(r.Context(), sreq, opts)
	metrics.SolveDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.Solves.WithLabelValues("invalid").Inc()
		var cfgErr *solver.ModelConfigurationError
		if errors.As(err, &cfgErr) {
			writeError(w, r, http.StatusBadRequest, cfgErr.Error())
			return
		}
		log.Printf("solve failed: req_id=%s err=%v", obs.RequestID(r.Context()), err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	if sol.Feasible() {
		metrics.Solves.WithLabelValues("ok").Inc()
	} else {
		metrics.Solves.WithLabelValues("infeasible").Inc()
	}

	res := toSolveResponse(sol)
	if rec != nil {
		for _, ev := range rec.Events() {
			res.Events = append(res.Events, dto.EventResponse{Name: ev.Name, Fields: ev.Fields})
		}
	}
	writeJSON(w, r, http.StatusOK, res)
}

func toSolveResponse(sol *solver.Solution) dto.SolveResponse {
	res := dto.SolveResponse{
		Status:     string(sol.Status),
		Routes:     make([][]dto.VisitResponse, 0, len(sol.Routes)),
		TotalCost:  sol.TotalCost,
		Unassigned: sol.Unassigned,
		Stats: &dto.StatsResponse{
			InitialCost: sol.Stats.InitialCost,
			FinalCost:   sol.Stats.FinalCost,
			Passes:      sol.Stats.Passes,
			Evaluations: sol.Stats.Evaluations,
			Accepted:    sol.Stats.Accepted(),
			StopReason:  string(sol.Stats.StopReason),
		},
	}
	for _, route := range sol.Routes {
		visits := make([]dto.VisitResponse, 0, len(route.Visits))
		for _, v := range route.Visits {
			visits = append(visits, dto.VisitResponse{LocationIndex: v.LocationIndex, ArrivalTime: v.ArrivalTime})
		}
		res.Routes = append(res.Routes, visits)
	}
	return res
}

// requestBudget lets a request shorten, never extend, the configured budget.
func requestBudget(configured time.Duration, ms int) time.Duration {
	if configured == 0 {
		configured = solver.DefaultTimeBudget
	}
	if ms <= 0 {
		return configured
	}
	d := time.Duration(ms) * time.Millisecond
	if configured > 0 && d > configured {
		return configured
	}
	return d
}

// providerStatus maps matrix acquisition failures to 502.
func providerStatus(err error) (int, bool) {
	var pErr *ports.DistanceProviderError
	if errors.As(err, &pErr) {
		return http.StatusBadGateway, true
	}
	return 0, false
}
