package distance

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"warehouse-route-service/internal/ports"
)

// StaticMatrixProvider returns a fixed matrix. Used by tests and the
// /v1/plans endpoint when a caller supplies its own matrix.
type StaticMatrixProvider struct {
	Matrix [][]int64
}

func (p StaticMatrixProvider) GetMatrix(_ context.Context, locations []string, _ string) ([][]int64, error) {
	if !ValidShape(p.Matrix, len(locations)) {
		return nil, &ports.DistanceProviderError{
			Reason: fmt.Sprintf("static matrix has %d rows for %d locations", len(p.Matrix), len(locations)),
		}
	}
	out := make([][]int64, len(p.Matrix))
	for i, row := range p.Matrix {
		out[i] = append([]int64(nil), row...)
	}
	return out, nil
}

const earthRadiusKm = 6371.0

// HaversineProvider estimates driving times from great-circle distance at a
// constant speed. It lets the planner run without an API key.
type HaversineProvider struct {
	SpeedKmh float64
	// Detour scales straight-line distance to approximate the road network.
	Detour float64
}

func (p HaversineProvider) GetMatrix(_ context.Context, locations []string, _ string) ([][]int64, error) {
	speed := p.SpeedKmh
	if speed <= 0 {
		speed = 30
	}
	detour := p.Detour
	if detour <= 0 {
		detour = 1.3
	}

	pts := make([][2]float64, len(locations))
	for i, l := range locations {
		lat, lon, err := ParseLocation(l)
		if err != nil {
			return nil, &ports.DistanceProviderError{Reason: fmt.Sprintf("location %d", i), Err: err}
		}
		pts[i] = [2]float64{lat, lon}
	}

	out := make([][]int64, len(pts))
	for i := range pts {
		out[i] = make([]int64, len(pts))
		for j := range pts {
			if i == j {
				continue
			}
			km := haversineKm(pts[i], pts[j]) * detour
			out[i][j] = int64(math.Round(km / speed * 3600))
		}
	}
	return out, nil
}

// ParseLocation splits a "lat,lon" location key.
func ParseLocation(s string) (lat, lon float64, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("location %q: want \"lat,lon\"", s)
	}
	if lat, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64); err != nil {
		return 0, 0, fmt.Errorf("location %q: latitude: %w", s, err)
	}
	if lon, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64); err != nil {
		return 0, 0, fmt.Errorf("location %q: longitude: %w", s, err)
	}
	return lat, lon, nil
}

func haversineKm(a, b [2]float64) float64 {
	toRad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := toRad(b[0] - a[0])
	dLon := toRad(b[1] - a[1])
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a[0]))*math.Cos(toRad(b[0]))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}
