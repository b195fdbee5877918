package logistics

import (
	"encoding/json"
	"time"
)

// Depot is an owner's logistics hub. MagicCode is a per-depot secret that
// only feeds the driver passcode derivation.
type Depot struct {
	ID        string    `json:"id" db:"id"`
	OwnerID   string    `json:"owner_id" db:"owner_id"`
	Name      string    `json:"name" db:"name"`
	MagicCode string    `json:"-" db:"magic_code"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type Driver struct {
	ID      string  `json:"id" db:"id"`
	DepotID string  `json:"depot_id" db:"depot_id"`
	Name    string  `json:"name" db:"name"`
	Email   string  `json:"email" db:"email"`
	Phone   *string `json:"phone,omitempty" db:"phone"`
}

// Vehicle pairs a depot vehicle with its assigned driver.
type Vehicle struct {
	ID       string  `json:"id" db:"id"`
	DepotID  string  `json:"depot_id" db:"depot_id"`
	DriverID *string `json:"driver_id,omitempty" db:"driver_id"`
	Driver   *Driver `json:"driver,omitempty"`
}

type Route struct {
	ID         string    `json:"id" db:"id"`
	DepotID    string    `json:"depot_id" db:"depot_id"`
	DeliveryAt time.Time `json:"delivery_at" db:"delivery_at"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

type PathStatus string

const (
	PathStatusPending    PathStatus = "PENDING"
	PathStatusInProgress PathStatus = "IN_PROGRESS"
	PathStatusCompleted  PathStatus = "COMPLETED"
	PathStatusFailed     PathStatus = "FAILED"
)

// OptimizedRoutePath is one vehicle's assigned stops for a route. It is the
// unit a driver passcode grants access to.
type OptimizedRoutePath struct {
	ID        string          `json:"id" db:"id"`
	RouteID   string          `json:"route_id" db:"route_id"`
	VehicleID string          `json:"vehicle_id" db:"vehicle_id"`
	Status    PathStatus      `json:"status" db:"status"`
	Distance  *float64        `json:"distance,omitempty" db:"distance"`
	Duration  *float64        `json:"duration,omitempty" db:"duration"`
	GeoJSON   json.RawMessage `json:"geo_json,omitempty" db:"geo_json"`
	Stops     json.RawMessage `json:"stops,omitempty" db:"stops"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// PathContext bundles a path with the entities the passcode is bound to.
type PathContext struct {
	Path    *OptimizedRoutePath `json:"path"`
	Route   *Route              `json:"route"`
	Depot   *Depot              `json:"depot"`
	Vehicle *Vehicle            `json:"vehicle"`
}
