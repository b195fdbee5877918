package shop

import (
	"context"
	"net/http"

	"artisanal-futures/internal/domain/shop"
	"artisanal-futures/internal/middleware"
	"artisanal-futures/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Service interface {
	CreateShop(ctx context.Context, ownerID string, req *shop.CreateShopRequest) (*shop.Shop, error)
	GetCurrentUserShop(ctx context.Context, ownerID string) (*shop.Shop, error)
	GetShop(ctx context.Context, id, viewerID string) (*shop.Shop, error)
}

type ShopHandler struct {
	shopService Service
}

func NewShopHandler(shopService Service) *ShopHandler {
	return &ShopHandler{
		shopService: shopService,
	}
}

// CreateShop opens the caller's shop. An owner has at most one.
func (h *ShopHandler) CreateShop(c *gin.Context) {
	ownerID := middleware.MustGetUserID(c)

	var req shop.CreateShopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.shopService.CreateShop(c.Request.Context(), ownerID, &req)
	if err != nil {
		response.FromError(c, "failed to create shop", err)
		return
	}

	response.Success(c, http.StatusCreated, "shop created successfully", result)
}

func (h *ShopHandler) GetMyShop(c *gin.Context) {
	ownerID := middleware.MustGetUserID(c)

	result, err := h.shopService.GetCurrentUserShop(c.Request.Context(), ownerID)
	if err != nil {
		response.FromError(c, "shop not found", err)
		return
	}

	response.Success(c, http.StatusOK, "shop retrieved", result)
}

// GetShop returns a public shop, or a private one to its owner.
func (h *ShopHandler) GetShop(c *gin.Context) {
	viewerID, _ := middleware.GetUserID(c)

	result, err := h.shopService.GetShop(c.Request.Context(), c.Param("id"), viewerID)
	if err != nil {
		response.FromError(c, "shop not found", err)
		return
	}

	response.Success(c, http.StatusOK, "shop retrieved", result)
}
