package logistics

type CreateDepotRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

type SendRouteLinkResponse struct {
	PathID  string `json:"path_id"`
	Email   string `json:"email"`
	SentURL string `json:"url"`
}

type ArchiveResult struct {
	RouteID string `json:"route_id"`
	Key     string `json:"key"`
	Paths   int    `json:"paths"`
	URL     string `json:"url,omitempty"`
}
