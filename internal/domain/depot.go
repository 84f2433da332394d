package domain

// Depot is the starting and ending location of every vehicle of a branch.
type Depot struct {
	Name string  `json:"name" validate:"required"`
	Lat  float64 `json:"lat" validate:"latitude"`
	Lon  float64 `json:"lon" validate:"longitude"`
}

func (d Depot) Coordinates() Coordinates { return Coordinates{Lat: d.Lat, Lon: d.Lon} }
