package dto

// SolveRequest is the raw-matrix solve input. Time windows and breaks are
// [start, end] pairs in seconds of day.
type SolveRequest struct {
	Matrix            [][]int64  `json:"matrix" validate:"required,min=1"`
	Demands           []float64  `json:"demands" validate:"required"`
	ServiceTimes      []int64    `json:"service_times" validate:"required"`
	TimeWindows       [][2]int64 `json:"time_windows" validate:"required"`
	VehicleCount      int        `json:"vehicle_count" validate:"gte=1"`
	VehicleCapacity   float64    `json:"vehicle_capacity" validate:"gte=0"`
	VehicleCapacities []float64  `json:"vehicle_capacities,omitempty" validate:"omitempty,dive,gt=0"`
	DepotIndex        int        `json:"depot_index" validate:"gte=0"`
	Breaks            [][2]int64 `json:"breaks,omitempty"`
	EnforceBreaks     bool       `json:"enforce_breaks"`
	Objective         string     `json:"objective" validate:"omitempty,oneof=time distance"`
	MaxWait           int64      `json:"max_wait" validate:"gte=0"`
	TimeBudgetMS      int        `json:"time_budget_ms" validate:"gte=0"`
	Seed              int64      `json:"seed"`
	Debug             bool       `json:"debug"`
}

type VisitResponse struct {
	LocationIndex int   `json:"location_index"`
	ArrivalTime   int64 `json:"arrival_time"`
}

type StatsResponse struct {
	InitialCost int64  `json:"initial_cost"`
	FinalCost   int64  `json:"final_cost"`
	Passes      int    `json:"passes"`
	Evaluations int    `json:"evaluations"`
	Accepted    int    `json:"accepted_moves"`
	StopReason  string `json:"stop_reason"`
}

type EventResponse struct {
	Name   string         `json:"name"`
	Fields map[string]any `json:"fields,omitempty"`
}

// SolveResponse lists one array of visits per vehicle that served at least one stop.
type SolveResponse struct {
	Status     string            `json:"status"`
	Routes     [][]VisitResponse `json:"routes"`
	TotalCost  int64             `json:"total_cost"`
	Unassigned []int             `json:"unassigned,omitempty"`
	Stats      *StatsResponse    `json:"stats,omitempty"`
	Events     []EventResponse   `json:"events,omitempty"`
}
