package ports

import (
	"context"
	"warehouse-route-service/internal/domain"
)

// Port: a boundary for retrieving the depot and pickup orders of a branch.
type BranchSource interface {
	Depot(ctx context.Context, branch string) (domain.Depot, error)
	Orders(ctx context.Context, branch string) ([]domain.WarehouseOrder, error)
}
