package postgres

import (
	"context"
	"errors"
	"fmt"

	"artisanal-futures/internal/domain/logistics"
	xerrors "artisanal-futures/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pathColumns = `id, route_id, vehicle_id, status, distance, duration, geo_json, stops,
		       created_at, updated_at`

type LogisticsRepository struct {
	db *pgxpool.Pool
}

func NewLogisticsRepository(db *pgxpool.Pool) *LogisticsRepository {
	return &LogisticsRepository{db: db}
}

// CreateDepot inserts a depot. A unique violation on owner_id maps to
// ErrConflict.
func (r *LogisticsRepository) CreateDepot(ctx context.Context, d *logistics.Depot) error {
	query := `
		INSERT INTO depots (id, owner_id, name, magic_code)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query, d.ID, d.OwnerID, d.Name, d.MagicCode).
		Scan(&d.CreatedAt, &d.UpdatedAt)
	if isUniqueViolation(err) {
		return xerrors.Conflict("owner already has a depot")
	}
	if err != nil {
		return fmt.Errorf("failed to create depot: %w", err)
	}

	return nil
}

func (r *LogisticsRepository) FindDepotByID(ctx context.Context, id string) (*logistics.Depot, error) {
	query := `SELECT id, owner_id, name, magic_code, created_at, updated_at FROM depots WHERE id = $1`
	return r.findDepot(ctx, query, id)
}

func (r *LogisticsRepository) FindDepotByOwner(ctx context.Context, ownerID string) (*logistics.Depot, error) {
	query := `
		SELECT id, owner_id, name, magic_code, created_at, updated_at
		FROM depots
		WHERE owner_id = $1
		ORDER BY created_at ASC
		LIMIT 1
	`
	return r.findDepot(ctx, query, ownerID)
}

func (r *LogisticsRepository) findDepot(ctx context.Context, query string, arg string) (*logistics.Depot, error) {
	var d logistics.Depot
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&d.ID, &d.OwnerID, &d.Name, &d.MagicCode, &d.CreatedAt, &d.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find depot: %w", err)
	}
	return &d, nil
}

func (r *LogisticsRepository) FindRouteByID(ctx context.Context, id string) (*logistics.Route, error) {
	query := `SELECT id, depot_id, delivery_at, created_at FROM routes WHERE id = $1`

	var rt logistics.Route
	err := r.db.QueryRow(ctx, query, id).Scan(&rt.ID, &rt.DepotID, &rt.DeliveryAt, &rt.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find route: %w", err)
	}
	return &rt, nil
}

func (r *LogisticsRepository) FindPathByID(ctx context.Context, id string) (*logistics.OptimizedRoutePath, error) {
	query := `SELECT ` + pathColumns + ` FROM optimized_route_paths WHERE id = $1`

	p, err := scanPath(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find route path: %w", err)
	}
	return p, nil
}

func (r *LogisticsRepository) ListRoutePaths(ctx context.Context, routeID string) ([]logistics.OptimizedRoutePath, error) {
	query := `
		SELECT ` + pathColumns + `
		FROM optimized_route_paths
		WHERE route_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.Query(ctx, query, routeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list route paths: %w", err)
	}
	defer rows.Close()

	paths := []logistics.OptimizedRoutePath{}
	for rows.Next() {
		p, err := scanPath(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan route path: %w", err)
		}
		paths = append(paths, *p)
	}

	return paths, rows.Err()
}

// FindVehicleByID left-joins the assigned driver; a vehicle without a driver
// comes back with Driver nil.
func (r *LogisticsRepository) FindVehicleByID(ctx context.Context, id string) (*logistics.Vehicle, error) {
	query := `
		SELECT v.id, v.depot_id, v.driver_id,
		       d.id, d.depot_id, d.name, d.email, d.phone
		FROM vehicles v
		LEFT JOIN drivers d ON d.id = v.driver_id
		WHERE v.id = $1
	`

	var (
		v                                 logistics.Vehicle
		driverID, driverDepot, driverName *string
		driverEmail, driverPhone          *string
	)
	err := r.db.QueryRow(ctx, query, id).Scan(
		&v.ID, &v.DepotID, &v.DriverID,
		&driverID, &driverDepot, &driverName, &driverEmail, &driverPhone,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find vehicle: %w", err)
	}

	if driverID != nil {
		v.Driver = &logistics.Driver{
			ID:      *driverID,
			DepotID: deref(driverDepot),
			Name:    deref(driverName),
			Email:   deref(driverEmail),
			Phone:   driverPhone,
		}
	}

	return &v, nil
}

func scanPath(row pgx.Row) (*logistics.OptimizedRoutePath, error) {
	var p logistics.OptimizedRoutePath
	err := row.Scan(
		&p.ID, &p.RouteID, &p.VehicleID, &p.Status, &p.Distance, &p.Duration,
		&p.GeoJSON, &p.Stops, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
