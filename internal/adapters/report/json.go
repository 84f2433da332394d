package report

import (
	"encoding/json"
	"fmt"
	"io"
	"warehouse-route-service/internal/domain"
)

type visitJSON struct {
	LocationIndex int   `json:"location_index"`
	ArrivalTime   int64 `json:"arrival_time"`
}

// SolutionJSON is the persisted form of a branch plan. Routes holds one
// array of visits per vehicle that serves at least one stop.
type SolutionJSON struct {
	Branch    string        `json:"branch"`
	RunID     string        `json:"run_id,omitempty"`
	Status    string        `json:"status"`
	TotalCost int64         `json:"total_cost"`
	Routes    [][]visitJSON `json:"routes"`
	Error     string        `json:"error,omitempty"`
}

func NewSolutionJSON(plan domain.BranchPlan) SolutionJSON {
	out := SolutionJSON{
		Branch:    plan.Branch,
		RunID:     plan.RunID,
		Status:    plan.Status,
		TotalCost: plan.TotalCost,
		Routes:    make([][]visitJSON, 0, len(plan.Routes)),
	}
	if plan.Err != nil {
		out.Error = plan.Err.Error()
	}
	for _, r := range plan.Routes {
		visits := make([]visitJSON, 0, len(r.Stops))
		for _, s := range r.Stops {
			visits = append(visits, visitJSON{LocationIndex: s.LocationIndex, ArrivalTime: s.ArrivalTime})
		}
		out.Routes = append(out.Routes, visits)
	}
	return out
}

func WriteSolutionJSON(w io.Writer, plan domain.BranchPlan) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewSolutionJSON(plan)); err != nil {
		return fmt.Errorf("write solution json: %w", err)
	}
	return nil
}
