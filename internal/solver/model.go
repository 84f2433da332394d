package solver

import (
	"time"
	"warehouse-route-service/internal/ports"
)

// TimeWindow is the [Earliest, Latest] interval, in seconds of day, during
// which a location may be visited.
type TimeWindow struct {
	Earliest int64 `json:"earliest"`
	Latest   int64 `json:"latest"`
}

// Break is a per-vehicle rest interval. The break may start anywhere in
// [Start, End] and lasts End-Start seconds.
type Break struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

func (b Break) duration() int64 { return b.End - b.Start }

// Objective selects the arc cost driving the global objective.
type Objective int

const (
	// ObjectiveTime minimizes matrix[i][j] + service(i).
	ObjectiveTime Objective = iota
	// ObjectiveDistance minimizes matrix[i][j] only.
	ObjectiveDistance
)

func (o Objective) String() string {
	if o == ObjectiveDistance {
		return "distance"
	}
	return "time"
}

const (
	// DefaultHorizon caps every cumulative time value (20 hours).
	DefaultHorizon int64 = 72000
	// DefaultTimeBudget bounds the local-search phase.
	DefaultTimeBudget = 60 * time.Second
)

// Request carries the raw inputs of a single solve.
// Every per-location slice is indexed by location and must have len(Matrix) entries.
type Request struct {
	Matrix       [][]int64
	Demands      []float64
	ServiceTimes []int64
	TimeWindows  []TimeWindow
	VehicleCount int
	// Capacity is shared by the whole fleet unless Capacities is set.
	Capacity   float64
	Capacities []float64
	DepotIndex int
	// Breaks are only applied when Options.EnforceBreaks is set.
	Breaks []Break
}

// Options tunes model construction and search.
type Options struct {
	Objective Objective
	// Horizon is the safety ceiling on cumulative time. Zero means DefaultHorizon.
	Horizon int64
	// MaxWait limits waiting at a single location. Zero means unlimited.
	MaxWait       int64
	EnforceBreaks bool

	// TimeBudget bounds local search. Zero means DefaultTimeBudget, negative disables it.
	TimeBudget time.Duration
	// IterationLimit caps accepted improving moves. Zero means unlimited.
	IterationLimit int
	// Seed shuffles neighborhood order reproducibly. Zero keeps the natural order.
	Seed int64

	Diagnostics ports.Diagnostics
}

func (o Options) withDefaults() Options {
	if o.Horizon == 0 {
		o.Horizon = DefaultHorizon
	}
	if o.TimeBudget == 0 {
		o.TimeBudget = DefaultTimeBudget
	}
	if o.Diagnostics == nil {
		o.Diagnostics = nopDiagnostics{}
	}
	return o
}

type nopDiagnostics struct{}

func (nopDiagnostics) Record(string, map[string]any) {}

// Model is the internal constrained representation of one solve.
// Per-location data is stored as parallel arrays; arcs is the row-major travel matrix.
type Model struct {
	n        int
	vehicles int
	depot    int

	arcs     []int64
	demand   []float64
	service  []int64
	earliest []int64
	latest   []int64

	capacity []float64
	breaks   []Break

	horizon   int64
	maxWait   int64
	objective Objective
}

// NewModel validates req and builds the search model.
// Violations are reported as *ModelConfigurationError naming the offending field.
func NewModel(req Request, opts Options) (*Model, error) {
	opts = opts.withDefaults()

	n := len(req.Matrix)
	if n == 0 {
		return nil, configErrorf("matrix", "must contain at least the depot")
	}

	// Any route crosses at most 2n arcs, each costing travel plus service, so
	// capping both at maxArc keeps every cumulative sum below 2*unbounded.
	maxArc := unbounded / int64(2*n)

	arcs := make([]int64, n*n)
	for i, row := range req.Matrix {
		if len(row) != n {
			return nil, configErrorf("matrix", "row %d has %d entries, want %d", i, len(row), n)
		}
		for j, c := range row {
			if c < 0 {
				return nil, configErrorf("matrix", "cost [%d][%d] is negative (%d)", i, j, c)
			}
			if c > maxArc {
				return nil, configErrorf("matrix", "cost [%d][%d] exceeds %d", i, j, maxArc)
			}
			arcs[i*n+j] = c
		}
	}

	if len(req.Demands) != n {
		return nil, configErrorf("demands", "has %d entries, want %d", len(req.Demands), n)
	}
	if len(req.TimeWindows) != n {
		return nil, configErrorf("time_windows", "has %d entries, want %d", len(req.TimeWindows), n)
	}
	if len(req.ServiceTimes) != n {
		return nil, configErrorf("service_times", "has %d entries, want %d", len(req.ServiceTimes), n)
	}
	if req.DepotIndex < 0 || req.DepotIndex >= n {
		return nil, configErrorf("depot_index", "%d is outside [0, %d)", req.DepotIndex, n)
	}
	if req.VehicleCount < 1 {
		return nil, configErrorf("vehicle_count", "must be at least 1, got %d", req.VehicleCount)
	}
	if opts.Horizon < 0 || opts.Horizon > unbounded {
		return nil, configErrorf("horizon", "must be within [0, %d], got %d", int64(unbounded), opts.Horizon)
	}
	if opts.MaxWait < 0 {
		return nil, configErrorf("max_wait", "must be non-negative, got %d", opts.MaxWait)
	}

	earliest := make([]int64, n)
	latest := make([]int64, n)
	for i, tw := range req.TimeWindows {
		if !withinBounds(tw.Earliest) || !withinBounds(tw.Latest) {
			return nil, configErrorf("time_windows", "location %d window [%d, %d] is outside ±%d", i, tw.Earliest, tw.Latest, int64(unbounded))
		}
		if tw.Earliest > tw.Latest {
			return nil, configErrorf("time_windows", "location %d has earliest %d after latest %d", i, tw.Earliest, tw.Latest)
		}
		earliest[i] = tw.Earliest
		latest[i] = tw.Latest
	}

	service := make([]int64, n)
	for i, s := range req.ServiceTimes {
		if s < 0 {
			return nil, configErrorf("service_times", "location %d is negative (%d)", i, s)
		}
		if s > maxArc {
			return nil, configErrorf("service_times", "location %d exceeds %d", i, maxArc)
		}
		service[i] = s
	}

	capacity := make([]float64, req.VehicleCount)
	if len(req.Capacities) > 0 {
		if len(req.Capacities) != req.VehicleCount {
			return nil, configErrorf("capacities", "has %d entries, want %d", len(req.Capacities), req.VehicleCount)
		}
		for v, c := range req.Capacities {
			if c <= 0 {
				return nil, configErrorf("capacities", "vehicle %d capacity must be positive, got %g", v, c)
			}
			capacity[v] = c
		}
	} else {
		if req.Capacity <= 0 {
			return nil, configErrorf("capacity", "must be positive, got %g", req.Capacity)
		}
		for v := range capacity {
			capacity[v] = req.Capacity
		}
	}

	var breaks []Break
	if opts.EnforceBreaks && len(req.Breaks) > 0 {
		if len(req.Breaks) != req.VehicleCount {
			return nil, configErrorf("breaks", "has %d entries, want one per vehicle (%d)", len(req.Breaks), req.VehicleCount)
		}
		for v, b := range req.Breaks {
			if !withinBounds(b.Start) || !withinBounds(b.End) {
				return nil, configErrorf("breaks", "vehicle %d break [%d, %d] is outside ±%d", v, b.Start, b.End, int64(unbounded))
			}
			if b.End <= b.Start {
				return nil, configErrorf("breaks", "vehicle %d break ends at %d before it starts at %d", v, b.End, b.Start)
			}
		}
		breaks = append([]Break(nil), req.Breaks...)
	}

	return &Model{
		n:         n,
		vehicles:  req.VehicleCount,
		depot:     req.DepotIndex,
		arcs:      arcs,
		demand:    append([]float64(nil), req.Demands...),
		service:   service,
		earliest:  earliest,
		latest:    latest,
		capacity:  capacity,
		breaks:    breaks,
		horizon:   opts.Horizon,
		maxWait:   opts.MaxWait,
		objective: opts.Objective,
	}, nil
}

func withinBounds(t int64) bool { return t >= -unbounded && t <= unbounded }

// Size returns the number of locations, depot included.
func (m *Model) Size() int { return m.n }

// Vehicles returns the fleet size.
func (m *Model) Vehicles() int { return m.vehicles }

// Depot returns the depot location index.
func (m *Model) Depot() int { return m.depot }

func (m *Model) travel(i, j int) int64 { return m.arcs[i*m.n+j] }

// ArcCost is the objective contribution of traversing i -> j.
func (m *Model) ArcCost(i, j int) int64 {
	c := m.travel(i, j)
	if m.objective == ObjectiveTime {
		c += m.service[i]
	}
	return c
}
