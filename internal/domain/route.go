package domain

// Represents a single stop in a vehicle route.
// Step 0 and the last step are the depot.
type RouteStop struct {
	Step          int
	LocationIndex int
	ArrivalTime   int64
	Coordinates   Coordinates
	Desi          float64
	OrderCount    int
	Address       string
}

// Represents the planned route of a single vehicle of a branch.
// A RoutePlan is the output of the solver enriched with order data.
// It is immutable planning data and contains no side effects.
type RoutePlan struct {
	Branch    string
	VehicleID int
	Stops     []RouteStop
	Load      float64
	Cost      int64
}

// Plan status values, shared with the solve response.
const (
	StatusOK         = "OK"
	StatusNoSolution = "No solution found"
)

// Outcome of planning one branch.
type BranchPlan struct {
	Branch    string
	RunID     string
	Status    string
	Routes    []RoutePlan
	TotalCost int64
	// Err is set when the branch could not be solved at all.
	Err error
}

// Feasible reports whether the routes can be used.
func (b BranchPlan) Feasible() bool { return b.Err == nil && b.Status == StatusOK }
