package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"warehouse-route-service/internal/adapters/distance"
	"warehouse-route-service/internal/adapters/report"
	"warehouse-route-service/internal/api/dto"
	"warehouse-route-service/internal/config"
	"warehouse-route-service/internal/domain"
	"warehouse-route-service/internal/platform/obs"
	"warehouse-route-service/internal/ports"
	"warehouse-route-service/internal/services"
	"warehouse-route-service/internal/solver"
)

// PlanHandler plans one branch from a depot and its pickup orders.
// Provider may be nil, in which case every request must carry a matrix.
type PlanHandler struct {
	Provider ports.MatrixProvider
	Options  solver.Options
	Fleet    domain.Fleet
}

// Plan resolves the fleet, acquires the matrix and solves the branch.
func (h *PlanHandler) Plan(w http.ResponseWriter, r *http.Request) {
	if !methodAllowed(w, r, http.MethodPost) {
		return
	}

	var req dto.PlanRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	branch := strings.TrimSpace(req.Branch)
	fleet, err := h.fleetFor(req)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	provider := h.Provider
	if req.Matrix != nil {
		provider = distance.StaticMatrixProvider{Matrix: req.Matrix}
	}
	if provider == nil {
		writeError(w, r, http.StatusBadRequest, "matrix is required: no distance provider configured")
		return
	}

	opts := h.Options
	opts.TimeBudget = requestBudget(h.Options.TimeBudget, req.TimeBudgetMS)

	planner, err := services.NewBranchPlanner(provider, opts, h.Options.Diagnostics)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	depot := domain.Depot{Name: req.Depot.Name, Lat: req.Depot.Lat, Lon: req.Depot.Lon}
	orders := make([]domain.WarehouseOrder, 0, len(req.Orders))
	for _, o := range req.Orders {
		orders = append(orders, domain.WarehouseOrder{
			Latitude:      o.Latitude,
			Longitude:     o.Longitude,
			OrderCount:    o.OrderCount,
			TotalDesi:     o.TotalDesi,
			TotalUsedDesi: o.TotalUsedDesi,
			AddressLine1:  o.AddressLine1,
			Status:        o.Status,
		})
	}

	ctx := obs.WithRunID(r.Context(), obs.RequestID(r.Context()))
	plan, err := planner.PlanOrders(ctx, branch, depot, orders, fleet)
	if err != nil {
		if status, ok := providerStatus(err); ok {
			log.Printf("plan matrix failed: req_id=%s branch=%s err=%v", obs.RequestID(ctx), branch, err)
			writeError(w, r, status, "distance provider unavailable")
			return
		}
		var cfgErr *solver.ModelConfigurationError
		if errors.As(err, &cfgErr) {
			writeError(w, r, http.StatusBadRequest, cfgErr.Error())
			return
		}
		log.Printf("plan branch failed: req_id=%s branch=%s err=%v", obs.RequestID(ctx), branch, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, toPlanResponse(plan))
}

// fleetFor overlays request fields on the server's default fleet.
func (h *PlanHandler) fleetFor(req dto.PlanRequest) (domain.Fleet, error) {
	f := h.Fleet
	if req.Vehicles > 0 {
		f.Vehicles = req.Vehicles
	}
	if req.VehicleCapacity > 0 {
		f.Capacity = req.VehicleCapacity
	}
	if req.ServiceSecondsPerDesi != nil {
		f.ServicePerDesi = *req.ServiceSecondsPerDesi
	}

	clocks := []struct {
		name string
		raw  string
		dst  *int64
	}{
		{"work_start", req.WorkStart, &f.WorkStart},
		{"work_end", req.WorkEnd, &f.WorkEnd},
		{"lunch_start", req.LunchStart, &f.LunchStart},
		{"lunch_end", req.LunchEnd, &f.LunchEnd},
	}
	for _, c := range clocks {
		if c.raw == "" {
			continue
		}
		secs, err := config.ParseClock(c.raw)
		if err != nil {
			return domain.Fleet{}, fmt.Errorf("%s: %w", c.name, err)
		}
		*c.dst = secs
	}

	if err := f.Validate(); err != nil {
		return domain.Fleet{}, err
	}
	return f, nil
}

func toPlanResponse(plan domain.BranchPlan) dto.PlanResponse {
	res := dto.PlanResponse{
		Branch:    plan.Branch,
		RunID:     plan.RunID,
		Status:    plan.Status,
		TotalCost: plan.TotalCost,
		Routes:    make([]dto.PlanRouteResponse, 0, len(plan.Routes)),
	}
	for i, rp := range plan.Routes {
		route := dto.PlanRouteResponse{
			VehicleID: i,
			Load:      rp.Load,
			Cost:      rp.Cost,
			Stops:     make([]dto.PlanStopResponse, 0, len(rp.Stops)),
		}
		for _, s := range rp.Stops {
			route.Stops = append(route.Stops, dto.PlanStopResponse{
				Step:          s.Step,
				LocationIndex: s.LocationIndex,
				ArrivalTime:   s.ArrivalTime,
				ArrivalClock:  report.ClockString(s.ArrivalTime),
				Lat:           s.Coordinates.Lat,
				Lon:           s.Coordinates.Lon,
				Desi:          s.Desi,
				OrderCount:    s.OrderCount,
				Address:       s.Address,
			})
		}
		res.Routes = append(res.Routes, route)
	}
	return res
}
