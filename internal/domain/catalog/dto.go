package catalog

import (
	"strings"

	"artisanal-futures/internal/domain/category"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
	MaxPage      = 100000
)

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ListingQuery is the public listing request. Results are ordered by
// created_at in Sort direction with id as tie-breaker.
type ListingQuery struct {
	CategoryName    string        `form:"category" binding:"required"`
	SubcategoryName string        `form:"subcategory"`
	Page            int           `form:"page" binding:"omitempty,min=1"`
	Limit           int           `form:"limit" binding:"omitempty,min=1"`
	Sort            SortDirection `form:"sort" binding:"omitempty,oneof=asc desc"`
	StoreID         string        `form:"store_id"`
	Search          string        `form:"search"`
	Attributes      []string      `form:"attributes"`
}

// Normalize applies pagination defaults and splits comma separated attributes.
func (q *ListingQuery) Normalize() {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Page > MaxPage {
		q.Page = MaxPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if q.Sort != SortAsc {
		q.Sort = SortDesc
	}
	q.Search = strings.TrimSpace(q.Search)

	var attrs []string
	seen := make(map[string]struct{})
	for _, raw := range q.Attributes {
		for _, a := range strings.Split(raw, ",") {
			a = strings.TrimSpace(a)
			if a == "" {
				continue
			}
			if _, ok := seen[a]; ok {
				continue
			}
			seen[a] = struct{}{}
			attrs = append(attrs, a)
		}
	}
	q.Attributes = attrs
}

// Offset is the number of rows skipped for the current page.
func (q *ListingQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// ItemFilter is the repository-level filter built from a ListingQuery.
type ItemFilter struct {
	Kind        Kind
	CategoryIDs []string
	ShopID      string
	Search      string
	Attributes  []string
	Sort        SortDirection
	Limit       int
	Offset      int
}

type ListingResponse struct {
	Items         []Item              `json:"items"`
	TotalCount    int64               `json:"total_count"`
	TotalPages    int                 `json:"total_pages"`
	Page          int                 `json:"page"`
	Limit         int                 `json:"limit"`
	Subcategories []category.Category `json:"subcategories"`
}
