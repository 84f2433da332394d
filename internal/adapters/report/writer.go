package report

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"warehouse-route-service/internal/domain"
)

// Writer saves branch plans under Dir:
// <branch>_routes.csv and <branch>_solution.json per branch, plus
// routes.xlsx when XLSX is set.
type Writer struct {
	Dir  string
	XLSX bool
}

// WriteAll writes every output and returns the created paths.
// Branches without a usable solution only get their solution JSON.
func (w Writer) WriteAll(plans []domain.BranchPlan) ([]string, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("write reports: create dir %q: %w", w.Dir, err)
	}

	var paths []string
	for _, p := range plans {
		base := fileBase(p.Branch)

		jsonPath := filepath.Join(w.Dir, base+"_solution.json")
		if err := writeFile(jsonPath, func(f *os.File) error { return WriteSolutionJSON(f, p) }); err != nil {
			return paths, err
		}
		paths = append(paths, jsonPath)

		if !p.Feasible() {
			log.Printf("branch=%s no solution found, skipping routes csv", p.Branch)
			continue
		}

		csvPath := filepath.Join(w.Dir, base+"_routes.csv")
		if err := writeFile(csvPath, func(f *os.File) error { return WriteRoutesCSV(f, p) }); err != nil {
			return paths, err
		}
		paths = append(paths, csvPath)
		log.Printf("branch=%s vehicles_used=%d saved=%s", p.Branch, len(p.Routes), csvPath)
	}

	if w.XLSX {
		xlsxPath := filepath.Join(w.Dir, "routes.xlsx")
		if err := WriteWorkbook(xlsxPath, plans); err != nil {
			return paths, err
		}
		paths = append(paths, xlsxPath)
	}

	return paths, nil
}

func writeFile(path string, fn func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write reports: create %q: %w", path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write reports: close %q: %w", path, err)
	}
	return nil
}

func fileBase(branch string) string {
	b := strings.ToLower(strings.TrimSpace(branch))
	b = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == ' ' {
			return '_'
		}
		return r
	}, b)
	if b == "" {
		return "branch"
	}
	return b
}
