package dispatch

type MessageRequest struct {
	DepotID   string `json:"depot_id"`
	RouteID   string `json:"route_id"`
	PathID    string `json:"path_id"`
	VehicleID string `json:"vehicle_id"`
	Sender    string `json:"sender" binding:"required,max=255"`
	Role      string `json:"role" binding:"omitempty,oneof=DRIVER DISPATCH"`
	Body      string `json:"body" binding:"required,max=2000"`
}

type LocationRequest struct {
	UserID    string   `json:"user_id" binding:"required"`
	DepotID   string   `json:"depot_id"`
	VehicleID string   `json:"vehicle_id"`
	PathID    string   `json:"path_id"`
	Role      string   `json:"role" binding:"omitempty,oneof=DRIVER DISPATCH"`
	Latitude  *float64 `json:"latitude" binding:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" binding:"required,gte=-180,lte=180"`
	Accuracy  *float64 `json:"accuracy" binding:"omitempty,gte=0"`
	Heading   *float64 `json:"heading" binding:"omitempty,gte=0,lte=360"`
}

type NotifyRequest struct {
	VehicleID string                 `json:"vehicle_id" binding:"required"`
	PathID    string                 `json:"path_id" binding:"required"`
	StopID    string                 `json:"stop_id"`
	Status    string                 `json:"status" binding:"required,oneof=COMPLETED FAILED PENDING IN_PROGRESS"`
	Message   string                 `json:"message" binding:"max=2000"`
	Metadata  map[string]interface{} `json:"metadata"`
}

type ContactRequest struct {
	VehicleID string `json:"vehicle_id" binding:"required"`
	PathID    string `json:"path_id"`
	Message   string `json:"message" binding:"required,max=2000"`
}

type TestRequest struct {
	DepotID string `json:"depot_id"`
	Message string `json:"message" binding:"max=2000"`
}

type ChannelAuthRequest struct {
	SocketID string `json:"socket_id" form:"socket_id" binding:"required"`
	Channel  string `json:"channel" form:"channel_name" binding:"required"`
	PathID   string `json:"path_id" form:"path_id"`
}

type ChannelAuthResponse struct {
	Auth string `json:"auth"`
}
