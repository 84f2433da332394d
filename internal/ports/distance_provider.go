package ports

import (
	"context"
	"fmt"
)

// Contract for retrieving a full travel-cost matrix between locations.
//
// Locations are "lat,lon" coordinate strings. The returned matrix is
// len(locations) x len(locations), costs in seconds. groupKey identifies the
// route group (branch) and scopes caching.
type MatrixProvider interface {
	GetMatrix(ctx context.Context, locations []string, groupKey string) ([][]int64, error)
}

// DistanceProviderError is returned when the matrix cannot be acquired from
// upstream. Solving must not proceed on a partial matrix.
type DistanceProviderError struct {
	Reason string
	Err    error
}

func (e *DistanceProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("distance provider: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("distance provider: %s", e.Reason)
}

func (e *DistanceProviderError) Unwrap() error { return e.Err }
