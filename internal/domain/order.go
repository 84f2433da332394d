package domain

// Represents a warehouse pickup location aggregating one or more orders.
// Desi is the volumetric weight unit used for vehicle load.
type WarehouseOrder struct {
	Latitude      float64  `json:"latitude" validate:"latitude"`
	Longitude     float64  `json:"longitude" validate:"longitude"`
	OrderCount    int      `json:"order_count" validate:"gte=0"`
	TotalDesi     float64  `json:"total_desi" validate:"gte=0"`
	TotalHJDesi   *float64 `json:"total_hj_desi,omitempty" validate:"omitempty,gte=0"`
	TotalUsedDesi *float64 `json:"total_used_desi,omitempty" validate:"omitempty,gte=0"`
	AddressLine1  string   `json:"address_line_1,omitempty"`
	Status        string   `json:"status,omitempty"`
}

func (o WarehouseOrder) Coordinates() Coordinates {
	return Coordinates{Lat: o.Latitude, Lon: o.Longitude}
}

// UsedDesi is the load the pickup occupies in a vehicle.
// A missing used value counts as zero; TotalDesi is never substituted.
func (o WarehouseOrder) UsedDesi() float64 {
	if o.TotalUsedDesi == nil {
		return 0
	}
	return *o.TotalUsedDesi
}
