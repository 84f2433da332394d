package api

import (
	"net/http"
	"warehouse-route-service/internal/api/handlers"
	"warehouse-route-service/internal/domain"
	"warehouse-route-service/internal/platform/metrics"
	"warehouse-route-service/internal/ports"
	"warehouse-route-service/internal/solver"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
// provider may be nil; /v1/plans then requires an inline matrix.
func NewRouter(provider ports.MatrixProvider, opts solver.Options, fleet domain.Fleet) http.Handler {
	metrics.RegisterDefault()

	mux := http.NewServeMux()

	solveHandler := &handlers.SolveHandler{Options: opts}
	planHandler := &handlers.PlanHandler{
		Provider: provider,
		Options:  opts,
		Fleet:    fleet,
	}

	routes := map[string]http.Handler{
		"/health":   http.HandlerFunc(handlers.Health),
		"/v1/solve": http.HandlerFunc(solveHandler.Solve),
		"/v1/plans": http.HandlerFunc(planHandler.Plan),
		"/metrics":  promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}),
	}
	known := make(map[string]bool, len(routes))
	for path, h := range routes {
		mux.Handle(path, h)
		known[path] = true
	}

	return requestIDMiddleware(loggingMiddleware(known, mux))
}
