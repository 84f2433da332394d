package main

import (
	"log"
	"net/http"
	"os"
	"time"
	"warehouse-route-service/internal/api"
	"warehouse-route-service/internal/bootstrap"
	"warehouse-route-service/internal/config"
	"warehouse-route-service/internal/platform/obs"
	"warehouse-route-service/internal/solver"

	"github.com/joho/godotenv"
)

// main is the application composition root.
// It wires the matrix provider and its cache behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	port := config.Get("PORT", "8080")

	cfg := config.DefaultPlannerConfig()
	if path := config.Get("PLANNER_CONFIG", ""); path != "" {
		var err error
		if cfg, err = config.LoadPlannerConfig(path); err != nil {
			log.Fatal(err)
		}
	}

	fleet, err := cfg.Fleet(config.BranchConfig{})
	if err != nil {
		log.Fatal(err)
	}

	// Without GOOGLE_API_KEY plans fall back to haversine estimates.
	provider, closeProvider, err := bootstrap.NewMatrixProvider(os.Getenv("GOOGLE_API_KEY"), cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer closeProvider()

	opts := solver.Options{
		MaxWait:     cfg.MaxWaitSeconds,
		TimeBudget:  cfg.TimeBudget,
		Diagnostics: obs.LogSink{Prefix: "component=api"},
	}
	router := api.NewRouter(provider, opts, fleet)

	// WriteTimeout leaves room for a full search budget plus a cold matrix fetch.
	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.TimeBudget + 2*time.Minute,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}
