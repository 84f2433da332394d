package report

import (
	"fmt"
	"warehouse-route-service/internal/domain"

	"github.com/xuri/excelize/v2"
)

const summarySheet = "Summary"

var (
	summaryHeaders = []string{"Branch", "Status", "Vehicles Used", "Stops", "Total Cost (sec)", "Error"}
	routeHeaders   = []string{"Vehicle", "Step", "Location Index", "Arrival (sec)", "Arrival", "Latitude", "Longitude", "Desi", "Orders", "Address"}
)

// BuildWorkbook returns a workbook with a summary sheet and one sheet per branch.
func BuildWorkbook(plans []domain.BranchPlan) (*excelize.File, error) {
	f := excelize.NewFile()

	idx, err := f.NewSheet(summarySheet)
	if err != nil {
		return nil, fmt.Errorf("build workbook: create summary sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("build workbook: drop default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6E6FA"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("build workbook: header style: %w", err)
	}

	if err := writeRow(f, summarySheet, 1, toAny(summaryHeaders)); err != nil {
		return nil, err
	}
	_ = f.SetRowStyle(summarySheet, 1, 1, headerStyle)

	for i, p := range plans {
		stops := 0
		for _, r := range p.Routes {
			stops += len(r.Stops) - 2
		}
		errText := ""
		if p.Err != nil {
			errText = p.Err.Error()
		}
		row := []any{p.Branch, p.Status, len(p.Routes), stops, p.TotalCost, errText}
		if err := writeRow(f, summarySheet, i+2, row); err != nil {
			return nil, err
		}

		if err := addBranchSheet(f, p, headerStyle); err != nil {
			return nil, err
		}
	}

	return f, nil
}

// WriteWorkbook builds the workbook and saves it to path.
func WriteWorkbook(path string, plans []domain.BranchPlan) error {
	f, err := BuildWorkbook(plans)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("write workbook %q: %w", path, err)
	}
	return nil
}

func addBranchSheet(f *excelize.File, p domain.BranchPlan, headerStyle int) error {
	sheet := sheetName(p.Branch)
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("build workbook: create sheet %q: %w", sheet, err)
	}

	if err := writeRow(f, sheet, 1, toAny(routeHeaders)); err != nil {
		return err
	}
	_ = f.SetRowStyle(sheet, 1, 1, headerStyle)

	row := 2
	for vehicle, r := range p.Routes {
		for _, s := range r.Stops {
			values := []any{
				vehicle,
				s.Step,
				s.LocationIndex,
				s.ArrivalTime,
				ClockString(s.ArrivalTime),
				s.Coordinates.Lat,
				s.Coordinates.Lon,
				s.Desi,
				s.OrderCount,
				s.Address,
			}
			if err := writeRow(f, sheet, row, values); err != nil {
				return err
			}
			row++
		}
	}

	_ = f.SetColWidth(sheet, "A", "J", 15)
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("build workbook: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("build workbook: sheet %q row %d: %w", sheet, row, err)
	}
	return nil
}

// sheetName trims a branch name to the 31 characters a sheet name allows.
func sheetName(branch string) string {
	r := []rune(branch)
	if len(r) == 0 {
		return "Branch"
	}
	if len(r) > 31 {
		r = r[:31]
	}
	return string(r)
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// ClockString formats seconds of day as HH:MM:SS.
func ClockString(secs int64) string {
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, (secs%3600)/60, secs%60)
}
