package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"artisanal-futures/internal/domain/catalog"
	"artisanal-futures/internal/domain/category"
	"artisanal-futures/internal/metrics"
	xerrors "artisanal-futures/internal/pkg/errors"

	"go.uber.org/zap"
)

type CatalogService struct {
	items      catalog.Repository
	categories category.Repository
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

func NewCatalogService(items catalog.Repository, categories category.Repository, m *metrics.Metrics, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		items:      items,
		categories: categories,
		metrics:    m,
		logger:     logger,
	}
}

func (s *CatalogService) ListProducts(ctx context.Context, q catalog.ListingQuery) (*catalog.ListingResponse, error) {
	return s.list(ctx, catalog.KindProduct, q)
}

func (s *CatalogService) ListServices(ctx context.Context, q catalog.ListingQuery) (*catalog.ListingResponse, error) {
	return s.list(ctx, catalog.KindService, q)
}

func (s *CatalogService) GetItem(ctx context.Context, kind catalog.Kind, id string) (*catalog.Item, error) {
	item, err := s.items.FindByID(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if !item.IsPublic {
		return nil, xerrors.ErrNotFound
	}
	return item, nil
}

func (s *CatalogService) list(ctx context.Context, kind catalog.Kind, q catalog.ListingQuery) (*catalog.ListingResponse, error) {
	q.Normalize()
	s.metrics.CatalogListing(string(kind))

	resp := &catalog.ListingResponse{
		Items:         []catalog.Item{},
		Page:          q.Page,
		Limit:         q.Limit,
		Subcategories: []category.Category{},
	}

	if strings.TrimSpace(q.CategoryName) == "" {
		return nil, xerrors.Invalid("category is required")
	}

	parent, err := s.categories.FindTopLevelByName(ctx, strings.TrimSpace(q.CategoryName), kind.CategoryType())
	if errors.Is(err, xerrors.ErrNotFound) {
		return resp, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve category: %w", err)
	}

	children, err := s.categories.ListChildren(ctx, parent.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load subcategories: %w", err)
	}
	resp.Subcategories = children

	categoryIDs := []string{parent.ID}
	if sub := strings.TrimSpace(q.SubcategoryName); sub != "" {
		child, ok := findChild(children, sub)
		if !ok {
			return resp, nil
		}
		categoryIDs = []string{child.ID}
	} else {
		for _, c := range children {
			categoryIDs = append(categoryIDs, c.ID)
		}
	}

	items, total, err := s.items.List(ctx, &catalog.ItemFilter{
		Kind:        kind,
		CategoryIDs: categoryIDs,
		ShopID:      strings.TrimSpace(q.StoreID),
		Search:      q.Search,
		Attributes:  q.Attributes,
		Sort:        q.Sort,
		Limit:       q.Limit,
		Offset:      q.Offset(),
	})
	if err != nil {
		s.logger.Error("failed to list catalog items",
			zap.String("kind", string(kind)),
			zap.String("category", parent.ID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to list %ss: %w", kind, err)
	}

	resp.Items = items
	resp.TotalCount = total
	resp.TotalPages = TotalPages(total, q.Limit)

	return resp, nil
}

// TotalPages is ceil(total/limit), zero for an empty result.
func TotalPages(total int64, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

func findChild(children []category.Category, name string) (category.Category, bool) {
	for _, c := range children {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return category.Category{}, false
}
