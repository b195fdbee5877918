package pathways

import (
	"context"
	"net/http"

	"artisanal-futures/internal/domain/logistics"
	"artisanal-futures/internal/middleware"
	"artisanal-futures/internal/pkg/response"
	service "artisanal-futures/internal/service/logistics"

	"github.com/gin-gonic/gin"
)

type Service interface {
	CreateDepot(ctx context.Context, ownerID string, req *logistics.CreateDepotRequest) (*logistics.Depot, error)
	GetMyDepot(ctx context.Context, ownerID string) (*logistics.Depot, error)
	GeneratePasscode(ctx context.Context, actor service.Actor, pathID string) (*logistics.PathContext, string, string, error)
	SendRouteLink(ctx context.Context, actor service.Actor, pathID string) (*logistics.SendRouteLinkResponse, error)
	ArchiveRoute(ctx context.Context, actor service.Actor, routeID string) (*logistics.ArchiveResult, error)
}

type PathwaysHandler struct {
	logisticsService Service
}

func NewPathwaysHandler(logisticsService Service) *PathwaysHandler {
	return &PathwaysHandler{
		logisticsService: logisticsService,
	}
}

// ========== Depot Owner Endpoints ==========

// CreateDepot opens the caller's depot. An owner has at most one.
func (h *PathwaysHandler) CreateDepot(c *gin.Context) {
	ownerID := middleware.MustGetUserID(c)

	var req logistics.CreateDepotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.logisticsService.CreateDepot(c.Request.Context(), ownerID, &req)
	if err != nil {
		response.FromError(c, "failed to create depot", err)
		return
	}

	response.Success(c, http.StatusCreated, "depot created successfully", result)
}

func (h *PathwaysHandler) GetMyDepot(c *gin.Context) {
	result, err := h.logisticsService.GetMyDepot(c.Request.Context(), middleware.MustGetUserID(c))
	if err != nil {
		response.FromError(c, "depot not found", err)
		return
	}

	response.Success(c, http.StatusOK, "depot retrieved", result)
}

// GeneratePasscode returns the driver link of a path without sending it.
func (h *PathwaysHandler) GeneratePasscode(c *gin.Context) {
	_, code, link, err := h.logisticsService.GeneratePasscode(c.Request.Context(), actorOf(c), c.Param("path_id"))
	if err != nil {
		response.FromError(c, "failed to generate passcode", err)
		return
	}

	response.Success(c, http.StatusOK, "passcode generated", gin.H{
		"path_id":  c.Param("path_id"),
		"passcode": code,
		"url":      link,
	})
}

// SendRouteLink emails the driver of a path their access link.
func (h *PathwaysHandler) SendRouteLink(c *gin.Context) {
	result, err := h.logisticsService.SendRouteLink(c.Request.Context(), actorOf(c), c.Param("path_id"))
	if err != nil {
		response.FromError(c, "failed to send route link", err)
		return
	}

	response.Success(c, http.StatusOK, "route link sent", result)
}

// ArchiveRoute exports a route's paths to object storage.
func (h *PathwaysHandler) ArchiveRoute(c *gin.Context) {
	result, err := h.logisticsService.ArchiveRoute(c.Request.Context(), actorOf(c), c.Param("route_id"))
	if err != nil {
		response.FromError(c, "failed to archive route", err)
		return
	}

	response.Success(c, http.StatusOK, "route archived", result)
}

// ========== Driver Endpoints ==========

// GetPath returns the path a verified driver has access to. DriverAccess
// has already resolved it.
func (h *PathwaysHandler) GetPath(c *gin.Context) {
	pc, ok := middleware.GetDriverPath(c)
	if !ok {
		response.Error(c, http.StatusInternalServerError, "path context missing", nil)
		return
	}

	response.Success(c, http.StatusOK, "path retrieved", gin.H{
		"path":       pc.Path,
		"route":      pc.Route,
		"vehicle_id": pc.Vehicle.ID,
		"depot_id":   pc.Depot.ID,
		"driver":     pc.Vehicle.Driver,
	})
}

func actorOf(c *gin.Context) service.Actor {
	return service.Actor{
		UserID: middleware.MustGetUserID(c),
		Admin:  middleware.IsAdmin(c),
	}
}
