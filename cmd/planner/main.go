package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"warehouse-route-service/internal/adapters/loader"
	"warehouse-route-service/internal/adapters/report"
	"warehouse-route-service/internal/bootstrap"
	"warehouse-route-service/internal/config"
	"warehouse-route-service/internal/platform/obs"
	"warehouse-route-service/internal/ports"
	"warehouse-route-service/internal/services"
	"warehouse-route-service/internal/solver"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// main is the batch composition root: it plans every configured branch,
// writes the reports and optionally repeats on a cron schedule.
func main() {
	configPath := flag.String("config", "", "planner YAML config (defaults are used when empty)")
	schedule := flag.String("schedule", "", "cron spec with seconds, e.g. \"0 0 6 * * *\"; overrides the config")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg := config.DefaultPlannerConfig()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadPlannerConfig(*configPath); err != nil {
			log.Fatal(err)
		}
	}
	if *schedule != "" {
		cfg.Schedule = *schedule
	}

	diag, flush, err := newDiagnostics(cfg.LogFormat)
	if err != nil {
		log.Fatal(err)
	}
	defer flush()

	provider, closeProvider, err := bootstrap.NewMatrixProvider(os.Getenv("GOOGLE_API_KEY"), cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer closeProvider()

	r, err := newRunner(cfg, provider, diag)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Schedule == "" {
		if err := r.run(ctx); err != nil {
			log.Fatal(err)
		}
		return
	}

	c := cron.New(cron.WithSeconds())
	if _, err := c.AddFunc(cfg.Schedule, func() {
		if err := r.run(ctx); err != nil {
			log.Printf("scheduled run failed: err=%v", err)
		}
	}); err != nil {
		log.Fatalf("invalid schedule %q: %v", cfg.Schedule, err)
	}
	log.Printf("planner scheduled spec=%q", cfg.Schedule)
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	log.Println("planner stopped")
}

func newDiagnostics(format string) (ports.Diagnostics, func(), error) {
	if format != "json" {
		return obs.LogSink{Prefix: "component=planner"}, func() {}, nil
	}
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, nil, fmt.Errorf("init zap logger: %w", err)
	}
	return obs.NewZapSink(logger), func() { _ = logger.Sync() }, nil
}

type runner struct {
	cfg     config.PlannerConfig
	planner *services.BranchPlanner
	source  ports.BranchSource
	reqs    []services.BranchRequest
	writer  report.Writer
}

func newRunner(cfg config.PlannerConfig, provider ports.MatrixProvider, diag ports.Diagnostics) (*runner, error) {
	opts := solver.Options{
		Objective:  solver.ObjectiveTime,
		MaxWait:    cfg.MaxWaitSeconds,
		TimeBudget: cfg.TimeBudget,
	}
	planner, err := services.NewBranchPlanner(provider, opts, diag)
	if err != nil {
		return nil, err
	}

	csvByBranch := make(map[string]string, len(cfg.Branches))
	reqs := make([]services.BranchRequest, 0, len(cfg.Branches))
	for _, b := range cfg.Branches {
		fleet, err := cfg.Fleet(b)
		if err != nil {
			return nil, fmt.Errorf("branch %s: %w", b.Name, err)
		}
		csvByBranch[b.Name] = b.OrdersCSV
		reqs = append(reqs, services.BranchRequest{Branch: b.Name, Fleet: fleet})
	}

	return &runner{
		cfg:     cfg,
		planner: planner,
		source:  loader.NewFileBranchSource(cfg.DepotsPath, csvByBranch),
		reqs:    reqs,
		writer:  report.Writer{Dir: cfg.OutputDir, XLSX: cfg.XLSX},
	}, nil
}

// run plans all branches once. Per-branch failures are reported in the
// outputs; only report writing errors fail the run.
func (r *runner) run(ctx context.Context) (err error) {
	defer obs.Time(ctx, "planner.run")(&err)

	plans := services.PlanBranches(ctx, r.planner, r.source, r.reqs, r.cfg.Concurrency)

	paths, err := r.writer.WriteAll(plans)
	if err != nil {
		return fmt.Errorf("planner run: %w", err)
	}
	for _, p := range paths {
		log.Printf("wrote path=%s", p)
	}

	for _, p := range plans {
		if p.Err != nil {
			log.Printf("branch=%s failed: %v", p.Branch, p.Err)
		}
	}
	return nil
}
