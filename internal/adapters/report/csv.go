package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"warehouse-route-service/internal/domain"
)

var routeColumns = []string{"branch", "vehicle_id", "step_order", "location_index", "arrival_time (sec)"}

// WriteRoutesCSV writes one row per visit. vehicle_id numbers the routes of
// the branch from 0 in output order.
func WriteRoutesCSV(w io.Writer, plan domain.BranchPlan) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(routeColumns); err != nil {
		return fmt.Errorf("write routes csv: header: %w", err)
	}

	for vehicle, r := range plan.Routes {
		for _, s := range r.Stops {
			rec := []string{
				plan.Branch,
				strconv.Itoa(vehicle),
				strconv.Itoa(s.Step),
				strconv.Itoa(s.LocationIndex),
				strconv.FormatInt(s.ArrivalTime, 10),
			}
			if err := cw.Write(rec); err != nil {
				return fmt.Errorf("write routes csv: vehicle %d step %d: %w", vehicle, s.Step, err)
			}
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write routes csv: flush: %w", err)
	}
	return nil
}
