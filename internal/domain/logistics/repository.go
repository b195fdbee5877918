package logistics

import "context"

type Repository interface {
	CreateDepot(ctx context.Context, d *Depot) error
	FindDepotByID(ctx context.Context, id string) (*Depot, error)
	FindDepotByOwner(ctx context.Context, ownerID string) (*Depot, error)

	FindRouteByID(ctx context.Context, id string) (*Route, error)
	FindPathByID(ctx context.Context, id string) (*OptimizedRoutePath, error)
	ListRoutePaths(ctx context.Context, routeID string) ([]OptimizedRoutePath, error)

	// FindVehicleByID loads the vehicle with its driver joined in.
	FindVehicleByID(ctx context.Context, id string) (*Vehicle, error)
}
