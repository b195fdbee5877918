package category

import (
	"context"
	"net/http"

	"artisanal-futures/internal/domain/category"
	"artisanal-futures/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// Service is the part of the category service the HTTP layer uses.
type Service interface {
	GetNavigationTree(ctx context.Context, t *category.Type) ([]category.Category, error)
	GetBySlug(ctx context.Context, slug string) (*category.Category, error)
	CreateCategory(ctx context.Context, req *category.CreateCategoryRequest) (*category.Category, error)
	UpdateCategory(ctx context.Context, id string, req *category.UpdateCategoryRequest) (*category.Category, error)
	DeleteCategory(ctx context.Context, id string) error
	DisassociateProducts(ctx context.Context, id string) (*category.DisassociateResult, error)
}

type CategoryHandler struct {
	categoryService Service
}

func NewCategoryHandler(categoryService Service) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
	}
}

// ========== Public Endpoints ==========

// GetTree returns top-level categories with their children.
func (h *CategoryHandler) GetTree(c *gin.Context) {
	var filters category.TreeFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid query parameters", err)
		return
	}

	var t *category.Type
	if filters.Type != "" {
		t = &filters.Type
	}

	tree, err := h.categoryService.GetNavigationTree(c.Request.Context(), t)
	if err != nil {
		response.FromError(c, "failed to load categories", err)
		return
	}

	response.Success(c, http.StatusOK, "categories retrieved", tree)
}

// GetBySlug resolves one category by its case-insensitive name.
func (h *CategoryHandler) GetBySlug(c *gin.Context) {
	result, err := h.categoryService.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.FromError(c, "category not found", err)
		return
	}

	response.Success(c, http.StatusOK, "category retrieved", result)
}

// ========== Admin Endpoints ==========

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req category.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.categoryService.CreateCategory(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, "failed to create category", err)
		return
	}

	response.Success(c, http.StatusCreated, "category created successfully", result)
}

func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	var req category.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.categoryService.UpdateCategory(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		response.FromError(c, "failed to update category", err)
		return
	}

	response.Success(c, http.StatusOK, "category updated successfully", result)
}

// DeleteCategory is refused while the category has children or linked items.
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	if err := h.categoryService.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		response.FromError(c, "failed to delete category", err)
		return
	}

	response.Success(c, http.StatusOK, "category deleted successfully", nil)
}

// DisassociateProducts unlinks every product and service from the category.
func (h *CategoryHandler) DisassociateProducts(c *gin.Context) {
	result, err := h.categoryService.DisassociateProducts(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, "failed to disassociate category", err)
		return
	}

	response.Success(c, http.StatusOK, "category disassociated", result)
}
