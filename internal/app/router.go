package app

import (
	"net/http"

	catalogHandler "artisanal-futures/internal/handlers/catalog"
	categoryHandler "artisanal-futures/internal/handlers/category"
	dispatchHandler "artisanal-futures/internal/handlers/dispatch"
	pathwaysHandler "artisanal-futures/internal/handlers/pathways"
	shopHandler "artisanal-futures/internal/handlers/shop"
	wsHandler "artisanal-futures/internal/handlers/websocket"
	"artisanal-futures/internal/metrics"
	"artisanal-futures/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	CategoryHandler *categoryHandler.CategoryHandler
	CatalogHandler  *catalogHandler.CatalogHandler
	ShopHandler     *shopHandler.ShopHandler
	PathwaysHandler *pathwaysHandler.PathwaysHandler
	DispatchHandler *dispatchHandler.DispatchHandler
	WSHandler       *wsHandler.WebSocketHandler
	AuthMiddleware  *middleware.AuthMiddleware
	DriverAccess    gin.HandlerFunc
	DispatchLimit   gin.HandlerFunc
	Metrics         *metrics.Metrics
}

func SetupRouter(r *gin.Engine, h *Handlers) {
	// ==================== Health & Metrics ====================
	r.GET("/health", health)
	r.GET("/metrics", gin.WrapH(h.Metrics.Handler()))

	api := r.Group("/api/v1")
	api.GET("/health", health)

	// ==================== WebSocket ====================
	r.GET("/ws", h.WSHandler.HandleConnection)
	api.GET("/ws/stats", append(h.AuthMiddleware.AdminOnly(), h.WSHandler.GetStats)...)

	// ==================== Categories ====================
	categories := api.Group("/categories")
	{
		categories.GET("", h.CategoryHandler.GetTree)
		categories.GET("/slug/:slug", h.CategoryHandler.GetBySlug)

		admin := categories.Group("")
		admin.Use(h.AuthMiddleware.AdminOnly()...)
		{
			admin.POST("", h.CategoryHandler.CreateCategory)
			admin.PUT("/:id", h.CategoryHandler.UpdateCategory)
			admin.DELETE("/:id", h.CategoryHandler.DeleteCategory)
			admin.POST("/:id/disassociate", h.CategoryHandler.DisassociateProducts)
		}
	}

	// ==================== Catalog ====================
	api.GET("/products", h.CatalogHandler.ListProducts)
	api.GET("/products/:id", h.CatalogHandler.GetProduct)
	api.GET("/services", h.CatalogHandler.ListServices)
	api.GET("/services/:id", h.CatalogHandler.GetService)

	// ==================== Shops ====================
	shops := api.Group("/shops")
	{
		shops.GET("/:id", h.AuthMiddleware.OptionalAuth(), h.ShopHandler.GetShop)

		owner := shops.Group("")
		owner.Use(h.AuthMiddleware.Auth())
		{
			owner.POST("", h.ShopHandler.CreateShop)
			owner.GET("/me", h.ShopHandler.GetMyShop)
		}
	}

	// ==================== Solidarity Pathways ====================
	pathways := api.Group("/pathways")
	{
		pathways.GET("/paths/:path_id", h.DriverAccess, h.PathwaysHandler.GetPath)

		owner := pathways.Group("")
		owner.Use(h.AuthMiddleware.Auth())
		{
			owner.POST("/depots", h.PathwaysHandler.CreateDepot)
			owner.GET("/depots/me", h.PathwaysHandler.GetMyDepot)
			owner.POST("/paths/:path_id/passcode", h.PathwaysHandler.GeneratePasscode)
			owner.POST("/paths/:path_id/send-link", h.PathwaysHandler.SendRouteLink)
			owner.POST("/routes/:route_id/archive", h.PathwaysHandler.ArchiveRoute)
		}
	}

	// Driver route link.
	r.GET("/pathways/:depot_id/route/:route_id/path/:path_id", h.DriverAccess, h.PathwaysHandler.GetPath)

	// ==================== Dispatch ====================
	dispatch := api.Group("/dispatch")
	dispatch.Use(h.DispatchLimit, h.AuthMiddleware.OptionalAuth())
	{
		dispatch.POST("/messages", h.DispatchHandler.PostMessage)
		dispatch.POST("/location", h.DispatchHandler.UpdateLocation)
		dispatch.POST("/notify", h.DispatchHandler.NotifyDispatch)
		dispatch.POST("/contact", h.DispatchHandler.ContactDispatch)
		dispatch.POST("/test", h.DispatchHandler.SendTest)
		dispatch.POST("/auth", h.DispatchHandler.AuthorizeChannel)
	}
}

func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
