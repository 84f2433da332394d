package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"warehouse-route-service/internal/domain"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// LoadDepots reads a JSON array of {"name", "lat", "lon"} objects.
func LoadDepots(path string) ([]domain.Depot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &DepotFileNotFoundError{Path: path, Err: err}
	}

	var depots []domain.Depot
	if err := json.Unmarshal(data, &depots); err != nil {
		return nil, fmt.Errorf("load depots: parse %q: %w", path, err)
	}

	for i := range depots {
		depots[i].Name = strings.TrimSpace(depots[i].Name)
		if err := validate.Struct(depots[i]); err != nil {
			return nil, fmt.Errorf("load depots: depot #%d: %w", i+1, err)
		}
	}

	return depots, nil
}

// FindDepot returns the depot whose name matches branch, ignoring case.
func FindDepot(depots []domain.Depot, branch string) (domain.Depot, bool) {
	for _, d := range depots {
		if strings.EqualFold(d.Name, strings.TrimSpace(branch)) {
			return d, true
		}
	}
	return domain.Depot{}, false
}
