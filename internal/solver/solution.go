package solver

// Status is the overall outcome of a solve.
type Status string

const (
	StatusFeasible   Status = "OK"
	StatusInfeasible Status = "No solution found"
)

// Visit is one stop of a route with its cumulative arrival time in seconds of day.
type Visit struct {
	LocationIndex int   `json:"location_index"`
	ArrivalTime   int64 `json:"arrival_time"`
}

// Route is the path of a single vehicle, from the depot back to the depot.
type Route struct {
	Vehicle int     `json:"vehicle"`
	Visits  []Visit `json:"visits"`
	Load    float64 `json:"load"`
	Cost    int64   `json:"cost"`
}

// Stops returns the visited location indexes without the depot at both ends.
func (r Route) Stops() []int {
	if len(r.Visits) <= 2 {
		return nil
	}
	out := make([]int, 0, len(r.Visits)-2)
	for _, v := range r.Visits[1 : len(r.Visits)-1] {
		out = append(out, v.LocationIndex)
	}
	return out
}

// Solution is the immutable result of one solve.
// Only vehicles that serve at least one stop appear in Routes.
type Solution struct {
	Status     Status      `json:"status"`
	Routes     []Route     `json:"routes,omitempty"`
	TotalCost  int64       `json:"total_cost"`
	Unassigned []int       `json:"unassigned,omitempty"`
	Stats      SearchStats `json:"-"`
}

// Feasible reports whether the routes can be used.
func (s *Solution) Feasible() bool { return s != nil && s.Status == StatusFeasible }

// Err returns ErrNoFeasibleSolution for an infeasible solution.
func (s *Solution) Err() error {
	if s.Feasible() {
		return nil
	}
	return ErrNoFeasibleSolution
}

func infeasible(unassigned []int, stats SearchStats) *Solution {
	return &Solution{Status: StatusInfeasible, Unassigned: unassigned, Stats: stats}
}

// extract walks every vehicle path, recomputes the minimum arrival times after
// window clamping and drops vehicles without stops. A path that no longer
// schedules makes the whole solution infeasible rather than partially trusted.
func (m *Model) extract(routes [][]int, stats SearchStats) *Solution {
	sol := &Solution{Status: StatusFeasible, Stats: stats}
	for v, stops := range routes {
		if len(stops) == 0 {
			continue
		}

		arrivals, load, ok := m.schedule(v, stops)
		if !ok {
			return infeasible(nil, stats)
		}

		visits := make([]Visit, 0, len(arrivals))
		visits = append(visits, Visit{LocationIndex: m.depot, ArrivalTime: arrivals[0]})
		for i, s := range stops {
			visits = append(visits, Visit{LocationIndex: s, ArrivalTime: arrivals[i+1]})
		}
		visits = append(visits, Visit{LocationIndex: m.depot, ArrivalTime: arrivals[len(arrivals)-1]})

		cost := m.routeCost(stops)
		sol.Routes = append(sol.Routes, Route{Vehicle: v, Visits: visits, Load: load, Cost: cost})
		sol.TotalCost += cost
	}
	return sol
}
