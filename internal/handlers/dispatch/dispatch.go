package dispatch

import (
	"context"
	"net/http"
	"strings"

	"artisanal-futures/internal/domain/dispatch"
	"artisanal-futures/internal/domain/logistics"
	"artisanal-futures/internal/middleware"
	"artisanal-futures/internal/pkg/response"
	logisticsservice "artisanal-futures/internal/service/logistics"
	"artisanal-futures/internal/service/passcode"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Service interface {
	PostMessage(ctx context.Context, req *dispatch.MessageRequest) (*dispatch.Ack, error)
	UpdateLocation(ctx context.Context, req *dispatch.LocationRequest) (*dispatch.Ack, error)
	NotifyDispatch(ctx context.Context, req *dispatch.NotifyRequest) (*dispatch.Ack, error)
	ContactDispatch(ctx context.Context, req *dispatch.ContactRequest) (*dispatch.Ack, error)
	SendTest(ctx context.Context, req *dispatch.TestRequest) (*dispatch.Ack, error)
	ChannelForDepot(depotID string) string
	ChannelOf(ctx context.Context, depotID, vehicleID, pathID string) (string, string, error)
}

// Signer issues subscription tokens for private channels.
type Signer interface {
	Sign(socketID, channel string) string
}

// DepotAccess reports whether an actor administers a depot.
type DepotAccess interface {
	CheckDepotAccess(ctx context.Context, actor logisticsservice.Actor, depotID string) (*logistics.Depot, error)
}

type DispatchHandler struct {
	dispatchService Service
	signer          Signer
	depots          DepotAccess
	drivers         middleware.DriverVerifier
	logger          *zap.Logger
}

func NewDispatchHandler(
	dispatchService Service,
	signer Signer,
	depots DepotAccess,
	drivers middleware.DriverVerifier,
	logger *zap.Logger,
) *DispatchHandler {
	return &DispatchHandler{
		dispatchService: dispatchService,
		signer:          signer,
		depots:          depots,
		drivers:         drivers,
		logger:          logger,
	}
}

// PostMessage appends a message and republishes the channel's message log.
func (h *DispatchHandler) PostMessage(c *gin.Context) {
	var req dispatch.MessageRequest
	if !bind(c, &req) || !h.mayWrite(c, req.DepotID, req.VehicleID, req.PathID) {
		return
	}
	h.respond(c, func(ctx context.Context) (*dispatch.Ack, error) {
		return h.dispatchService.PostMessage(ctx, &req)
	})
}

// UpdateLocation records a position and republishes all latest locations.
func (h *DispatchHandler) UpdateLocation(c *gin.Context) {
	var req dispatch.LocationRequest
	if !bind(c, &req) || !h.mayWrite(c, req.DepotID, req.VehicleID, req.PathID) {
		return
	}
	h.respond(c, func(ctx context.Context) (*dispatch.Ack, error) {
		return h.dispatchService.UpdateLocation(ctx, &req)
	})
}

func (h *DispatchHandler) NotifyDispatch(c *gin.Context) {
	var req dispatch.NotifyRequest
	if !bind(c, &req) || !h.mayWrite(c, "", req.VehicleID, req.PathID) {
		return
	}
	h.respond(c, func(ctx context.Context) (*dispatch.Ack, error) {
		return h.dispatchService.NotifyDispatch(ctx, &req)
	})
}

func (h *DispatchHandler) ContactDispatch(c *gin.Context) {
	var req dispatch.ContactRequest
	if !bind(c, &req) || !h.mayWrite(c, "", req.VehicleID, req.PathID) {
		return
	}
	h.respond(c, func(ctx context.Context) (*dispatch.Ack, error) {
		return h.dispatchService.ContactDispatch(ctx, &req)
	})
}

func (h *DispatchHandler) SendTest(c *gin.Context) {
	var req dispatch.TestRequest
	if !bind(c, &req) || !h.mayWrite(c, req.DepotID, "", "") {
		return
	}
	h.respond(c, func(ctx context.Context) (*dispatch.Ack, error) {
		return h.dispatchService.SendTest(ctx, &req)
	})
}

// AuthorizeChannel signs a subscription to a map channel. Depot channels
// require the depot owner, an admin, or a driver holding a verified cookie
// for a path in that depot.
func (h *DispatchHandler) AuthorizeChannel(c *gin.Context) {
	var req dispatch.ChannelAuthRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	depotID, ok := depotOfChannel(req.Channel)
	if !ok {
		response.Error(c, http.StatusBadRequest, "unknown channel", nil)
		return
	}

	if depotID != "" && !h.mayJoin(c, depotID, req.PathID) {
		response.Forbidden(c, "not allowed to join channel")
		return
	}

	c.JSON(http.StatusOK, dispatch.ChannelAuthResponse{
		Auth: h.signer.Sign(req.SocketID, req.Channel),
	})
}

// mayWrite applies the channel join rules to publishing. Updates bound for
// the global channel stay open; a depot channel only accepts writers that
// could subscribe to it. It writes the error response itself.
func (h *DispatchHandler) mayWrite(c *gin.Context, depotID, vehicleID, pathID string) bool {
	channel, _, err := h.dispatchService.ChannelOf(c.Request.Context(), depotID, vehicleID, pathID)
	if err != nil {
		response.FromError(c, "failed to publish event", err)
		return false
	}

	depot, ok := depotOfChannel(channel)
	if !ok || depot == "" {
		return true
	}
	if !h.mayJoin(c, depot, pathID) {
		response.Forbidden(c, "not allowed to publish on channel")
		return false
	}
	return true
}

func (h *DispatchHandler) mayJoin(c *gin.Context, depotID, pathID string) bool {
	ctx := c.Request.Context()

	if userID, ok := middleware.GetUserID(c); ok {
		actor := logisticsservice.Actor{UserID: userID, Admin: middleware.IsAdmin(c)}
		if _, err := h.depots.CheckDepotAccess(ctx, actor, depotID); err == nil {
			return true
		}
	}

	cookie, err := c.Cookie(middleware.DriverCookieName)
	if err != nil || pathID == "" {
		return false
	}

	dec := h.drivers.Verify(ctx, passcode.Request{PathID: pathID, DepotID: depotID, Cookie: cookie})
	if !dec.Verified() {
		h.logger.Debug("channel auth refused for driver",
			zap.String("path_id", pathID),
			zap.String("depot_id", depotID),
		)
		return false
	}
	return true
}

func (h *DispatchHandler) respond(c *gin.Context, publish func(context.Context) (*dispatch.Ack, error)) {
	ack, err := publish(c.Request.Context())
	if err != nil {
		response.FromError(c, "failed to publish event", err)
		return
	}

	response.Success(c, http.StatusOK, "event published", ack)
}

func bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return false
	}
	return true
}

// depotOfChannel parses a map channel name. The global channel has no depot.
func depotOfChannel(channel string) (string, bool) {
	if channel == dispatch.GlobalChannel {
		return "", true
	}
	depotID, ok := strings.CutPrefix(channel, dispatch.GlobalChannel+"-")
	if !ok || depotID == "" {
		return "", false
	}
	return depotID, true
}
