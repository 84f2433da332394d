package services

import (
	"context"
	"fmt"
	"log"
	"warehouse-route-service/internal/domain"
	"warehouse-route-service/internal/platform/obs"
	"warehouse-route-service/internal/ports"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// BranchRequest names a branch and the fleet that serves it.
type BranchRequest struct {
	Branch string
	Fleet  domain.Fleet
}

// PlanBranches plans every branch concurrently, at most concurrency at a time.
//
// Branches are independent: a failure is recorded on that branch's plan
// (BranchPlan.Err) and never cancels its siblings. Results keep the order
// of reqs. All plans of one call share a run ID.
func PlanBranches(
	ctx context.Context,
	planner *BranchPlanner,
	source ports.BranchSource,
	reqs []BranchRequest,
	concurrency int,
) []domain.BranchPlan {
	runID := obs.RunID(ctx)
	if runID == "" {
		runID = uuid.NewString()
		ctx = obs.WithRunID(ctx, runID)
	}
	if concurrency < 1 {
		concurrency = 1
	}

	plans := make([]domain.BranchPlan, len(reqs))

	var g errgroup.Group
	g.SetLimit(concurrency)

	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			plan, err := planBranch(ctx, planner, source, req)
			plan.Branch = req.Branch
			plan.RunID = runID
			if err != nil {
				plan.Err = err
				plan.Status = domain.StatusNoSolution
				log.Printf("run_id=%s branch=%s err=%v", runID, req.Branch, err)
			} else {
				log.Printf("run_id=%s branch=%s status=%q routes=%d total_cost=%d",
					runID, req.Branch, plan.Status, len(plan.Routes), plan.TotalCost)
			}
			plans[i] = plan
			return nil
		})
	}

	_ = g.Wait()
	return plans
}

func planBranch(ctx context.Context, planner *BranchPlanner, source ports.BranchSource, req BranchRequest) (domain.BranchPlan, error) {
	depot, err := source.Depot(ctx, req.Branch)
	if err != nil {
		return domain.BranchPlan{}, fmt.Errorf("plan branch %s: load depot: %w", req.Branch, err)
	}

	orders, err := source.Orders(ctx, req.Branch)
	if err != nil {
		return domain.BranchPlan{}, fmt.Errorf("plan branch %s: load orders: %w", req.Branch, err)
	}

	return planner.PlanOrders(ctx, req.Branch, depot, orders, req.Fleet)
}
