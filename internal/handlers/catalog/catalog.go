package catalog

import (
	"context"
	"net/http"

	"artisanal-futures/internal/domain/catalog"
	"artisanal-futures/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Service interface {
	ListProducts(ctx context.Context, q catalog.ListingQuery) (*catalog.ListingResponse, error)
	ListServices(ctx context.Context, q catalog.ListingQuery) (*catalog.ListingResponse, error)
	GetItem(ctx context.Context, kind catalog.Kind, id string) (*catalog.Item, error)
}

type CatalogHandler struct {
	catalogService Service
}

func NewCatalogHandler(catalogService Service) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
	}
}

// ListProducts lists public products under a category.
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	h.list(c, h.catalogService.ListProducts)
}

// ListServices lists public services under a category.
func (h *CatalogHandler) ListServices(c *gin.Context) {
	h.list(c, h.catalogService.ListServices)
}

func (h *CatalogHandler) GetProduct(c *gin.Context) {
	h.get(c, catalog.KindProduct)
}

func (h *CatalogHandler) GetService(c *gin.Context) {
	h.get(c, catalog.KindService)
}

func (h *CatalogHandler) list(c *gin.Context, fn func(context.Context, catalog.ListingQuery) (*catalog.ListingResponse, error)) {
	var q catalog.ListingQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid query parameters", err)
		return
	}

	result, err := fn(c.Request.Context(), q)
	if err != nil {
		response.FromError(c, "failed to list items", err)
		return
	}

	response.Success(c, http.StatusOK, "items retrieved", result)
}

func (h *CatalogHandler) get(c *gin.Context, kind catalog.Kind) {
	item, err := h.catalogService.GetItem(c.Request.Context(), kind, c.Param("id"))
	if err != nil {
		response.FromError(c, "item not found", err)
		return
	}

	response.Success(c, http.StatusOK, "item retrieved", item)
}
