package dto

type DepotRequest struct {
	Name string  `json:"name" validate:"required"`
	Lat  float64 `json:"lat" validate:"latitude"`
	Lon  float64 `json:"lon" validate:"longitude"`
}

type OrderRequest struct {
	Latitude      float64  `json:"latitude" validate:"latitude"`
	Longitude     float64  `json:"longitude" validate:"longitude"`
	OrderCount    int      `json:"order_count" validate:"gte=0"`
	TotalDesi     float64  `json:"total_desi" validate:"gte=0"`
	TotalUsedDesi *float64 `json:"total_used_desi,omitempty" validate:"omitempty,gte=0"`
	AddressLine1  string   `json:"address_line_1,omitempty"`
	Status        string   `json:"status,omitempty"`
}

// PlanRequest plans one branch from its depot and orders. Omitted fleet
// fields fall back to the server defaults. When Matrix is set it is used
// as-is instead of querying the distance provider; row 0 is the depot.
type PlanRequest struct {
	Branch                string         `json:"branch" validate:"required"`
	Depot                 DepotRequest   `json:"depot"`
	Orders                []OrderRequest `json:"orders" validate:"dive"`
	Vehicles              int            `json:"vehicles" validate:"gte=0,lte=1000"`
	VehicleCapacity       float64        `json:"vehicle_capacity" validate:"gte=0"`
	WorkStart             string         `json:"work_start,omitempty"`
	WorkEnd               string         `json:"work_end,omitempty"`
	LunchStart            string         `json:"lunch_start,omitempty"`
	LunchEnd              string         `json:"lunch_end,omitempty"`
	ServiceSecondsPerDesi *float64       `json:"service_seconds_per_desi,omitempty" validate:"omitempty,gte=0"`
	Matrix                [][]int64      `json:"matrix,omitempty"`
	TimeBudgetMS          int            `json:"time_budget_ms" validate:"gte=0"`
}

type PlanStopResponse struct {
	Step          int     `json:"step"`
	LocationIndex int     `json:"location_index"`
	ArrivalTime   int64   `json:"arrival_time"`
	ArrivalClock  string  `json:"arrival_clock"`
	Lat           float64 `json:"lat"`
	Lon           float64 `json:"lon"`
	Desi          float64 `json:"desi,omitempty"`
	OrderCount    int     `json:"order_count,omitempty"`
	Address       string  `json:"address,omitempty"`
}

type PlanRouteResponse struct {
	VehicleID int                `json:"vehicle_id"`
	Load      float64            `json:"load"`
	Cost      int64              `json:"cost"`
	Stops     []PlanStopResponse `json:"stops"`
}

type PlanResponse struct {
	Branch    string              `json:"branch"`
	RunID     string              `json:"run_id"`
	Status    string              `json:"status"`
	TotalCost int64               `json:"total_cost"`
	Routes    []PlanRouteResponse `json:"routes"`
}
