package dispatch

import "time"

// Event names published on the map channel.
const (
	EventUpdateMessages  = "update-messages"
	EventUpdateLocation  = "evt::update-location"
	EventNotifyDispatch  = "evt::notify-dispatch"
	EventContactDispatch = "evt::contact-dispatch"
	EventTestMessage     = "evt::test-message"
)

// GlobalChannel is the single shared broadcast channel. Depot scoped
// channels are named GlobalChannel + "-" + depotID.
const GlobalChannel = "map"

// ChannelFor returns the channel an event for depotID is published on.
func ChannelFor(depotID string, scoped bool) string {
	if !scoped || depotID == "" {
		return GlobalChannel
	}
	return GlobalChannel + "-" + depotID
}

// Message is a transient dispatch chat/status entry.
type Message struct {
	ID        string    `json:"id"`
	DepotID   string    `json:"depot_id,omitempty"`
	RouteID   string    `json:"route_id,omitempty"`
	PathID    string    `json:"path_id,omitempty"`
	VehicleID string    `json:"vehicle_id,omitempty"`
	Sender    string    `json:"sender"`
	Role      string    `json:"role,omitempty"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// Location is the latest known position of one user or vehicle.
type Location struct {
	UserID    string    `json:"user_id"`
	DepotID   string    `json:"depot_id,omitempty"`
	VehicleID string    `json:"vehicle_id,omitempty"`
	PathID    string    `json:"path_id,omitempty"`
	Role      string    `json:"role,omitempty"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  *float64  `json:"accuracy,omitempty"`
	Heading   *float64  `json:"heading,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Event is a single driver-originated notification (stop status, contact
// request, test ping).
type Event struct {
	ID        string                 `json:"id"`
	DepotID   string                 `json:"depot_id,omitempty"`
	RouteID   string                 `json:"route_id,omitempty"`
	PathID    string                 `json:"path_id,omitempty"`
	VehicleID string                 `json:"vehicle_id,omitempty"`
	StopID    string                 `json:"stop_id,omitempty"`
	Status    string                 `json:"status,omitempty"`
	Message   string                 `json:"message,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// Ack is returned to the HTTP caller once an update was accepted.
type Ack struct {
	Status  string `json:"status"`
	Event   string `json:"event"`
	Channel string `json:"channel"`
	ID      string `json:"id,omitempty"`
	Queued  bool   `json:"queued"`
}
