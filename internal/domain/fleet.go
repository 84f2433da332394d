package domain

import (
	"errors"
	"fmt"
)

// Hour in seconds, for seconds-of-day arithmetic.
const Hour int64 = 3600

// Fleet describes the vehicles and shift rules of a branch.
type Fleet struct {
	Vehicles int
	Capacity float64
	// WorkStart and WorkEnd bound every visit, in seconds of day.
	WorkStart int64
	WorkEnd   int64
	// LunchStart and LunchEnd describe the per-vehicle break. Zero values mean no break.
	LunchStart int64
	LunchEnd   int64
	// ServicePerDesi is the dwell time in seconds per unit of used desi.
	ServicePerDesi float64
}

// Validate checks the fleet invariants before any matrix is requested.
func (f Fleet) Validate() error {
	if f.Vehicles < 1 {
		return fmt.Errorf("fleet: vehicles must be at least 1, got %d", f.Vehicles)
	}
	if f.Capacity <= 0 {
		return fmt.Errorf("fleet: capacity must be positive, got %g", f.Capacity)
	}
	if f.WorkEnd <= f.WorkStart {
		return errors.New("fleet: work end must be after work start")
	}
	if f.HasLunch() && f.LunchEnd <= f.LunchStart {
		return errors.New("fleet: lunch end must be after lunch start")
	}
	if f.ServicePerDesi < 0 {
		return errors.New("fleet: service time per desi must be non-negative")
	}
	return nil
}

func (f Fleet) HasLunch() bool { return f.LunchStart != 0 || f.LunchEnd != 0 }

// ServiceSeconds is the dwell at a pickup carrying usedDesi.
func (f Fleet) ServiceSeconds(usedDesi float64) int64 {
	return int64(usedDesi * f.ServicePerDesi)
}
