package loader

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"warehouse-route-service/internal/domain"
)

// FileBranchSource implements ports.BranchSource over a depots JSON file and
// one orders CSV per branch. The depots file is read once.
type FileBranchSource struct {
	depotsPath string
	ordersCSV  map[string]string

	once   sync.Once
	depots []domain.Depot
	err    error
}

// NewFileBranchSource maps branch names (case-insensitive) to their orders CSV paths.
func NewFileBranchSource(depotsPath string, ordersCSV map[string]string) *FileBranchSource {
	m := make(map[string]string, len(ordersCSV))
	for k, v := range ordersCSV {
		m[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return &FileBranchSource{depotsPath: depotsPath, ordersCSV: m}
}

func (s *FileBranchSource) Depot(_ context.Context, branch string) (domain.Depot, error) {
	s.once.Do(func() {
		s.depots, s.err = LoadDepots(s.depotsPath)
	})
	if s.err != nil {
		return domain.Depot{}, s.err
	}

	d, ok := FindDepot(s.depots, branch)
	if !ok {
		return domain.Depot{}, fmt.Errorf("branch source: no depot named %q in %s", branch, s.depotsPath)
	}
	return d, nil
}

func (s *FileBranchSource) Orders(_ context.Context, branch string) ([]domain.WarehouseOrder, error) {
	path, ok := s.ordersCSV[strings.ToLower(strings.TrimSpace(branch))]
	if !ok {
		return nil, fmt.Errorf("branch source: no orders file configured for %q", branch)
	}
	return LoadWarehouseOrders(path)
}
