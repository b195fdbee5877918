package pathways

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"artisanal-futures/internal/domain/logistics"
	"artisanal-futures/internal/middleware"
	xerrors "artisanal-futures/internal/pkg/errors"
	service "artisanal-futures/internal/service/logistics"
	"artisanal-futures/internal/service/passcode"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	actor service.Actor
}

func (s *stubService) CreateDepot(_ context.Context, ownerID string, req *logistics.CreateDepotRequest) (*logistics.Depot, error) {
	if ownerID == "has-depot" {
		return nil, xerrors.Conflict("owner already has a depot")
	}
	return &logistics.Depot{ID: "d1", OwnerID: ownerID, Name: req.Name}, nil
}

func (s *stubService) GetMyDepot(_ context.Context, ownerID string) (*logistics.Depot, error) {
	return nil, xerrors.ErrNotFound
}

func (s *stubService) GeneratePasscode(_ context.Context, actor service.Actor, pathID string) (*logistics.PathContext, string, string, error) {
	s.actor = actor
	return nil, "code", "https://example.org/pathways/d1/route/r1/path/" + pathID + "?pc=code", nil
}

func (s *stubService) SendRouteLink(_ context.Context, actor service.Actor, pathID string) (*logistics.SendRouteLinkResponse, error) {
	s.actor = actor
	if actor.UserID != "owner-1" && !actor.Admin {
		return nil, xerrors.ErrForbidden
	}
	return &logistics.SendRouteLinkResponse{PathID: pathID, Email: "driver@example.org"}, nil
}

func (s *stubService) ArchiveRoute(_ context.Context, actor service.Actor, routeID string) (*logistics.ArchiveResult, error) {
	return nil, xerrors.ErrUpstream
}

type pathVerifier struct{}

func (pathVerifier) Verify(_ context.Context, req passcode.Request) passcode.Decision {
	if req.Passcode != "ok" {
		return passcode.Decision{State: passcode.StateRejected}
	}
	return passcode.Decision{
		State:     passcode.StateVerified,
		SetCookie: req.Passcode,
		Path: &logistics.PathContext{
			Path:    &logistics.OptimizedRoutePath{ID: req.PathID, RouteID: "r1"},
			Route:   &logistics.Route{ID: "r1", DepotID: "d1", DeliveryAt: time.Now()},
			Depot:   &logistics.Depot{ID: "d1", MagicCode: "SECRET"},
			Vehicle: &logistics.Vehicle{ID: "v1", DepotID: "d1", Driver: &logistics.Driver{Name: "Ana"}},
		},
	}
}

func newRouter(svc Service, userID string, admin bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewPathwaysHandler(svc)

	r := gin.New()
	auth := func(c *gin.Context) {
		c.Set("user_id", userID)
		if admin {
			c.Set("roles", []string{"ADMIN"})
		}
		c.Next()
	}
	access := middleware.DriverAccess(pathVerifier{}, middleware.DriverAccessConfig{SandboxPath: "/sandbox", CookieTTL: time.Hour}, nil)

	r.POST("/depots", auth, h.CreateDepot)
	r.GET("/depots/me", auth, h.GetMyDepot)
	r.POST("/paths/:path_id/passcode", auth, h.GeneratePasscode)
	r.POST("/paths/:path_id/send-link", auth, h.SendRouteLink)
	r.POST("/routes/:route_id/archive", auth, h.ArchiveRoute)
	r.GET("/paths/:path_id", access, h.GetPath)
	return r
}

func serve(r *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateDepot(t *testing.T) {
	assert.Equal(t, http.StatusCreated, serve(newRouter(&stubService{}, "owner-1", false), http.MethodPost, "/depots", `{"name":"North"}`).Code)
	assert.Equal(t, http.StatusConflict, serve(newRouter(&stubService{}, "has-depot", false), http.MethodPost, "/depots", `{"name":"North"}`).Code)
	assert.Equal(t, http.StatusBadRequest, serve(newRouter(&stubService{}, "owner-1", false), http.MethodPost, "/depots", `{}`).Code)
	assert.Equal(t, http.StatusNotFound, serve(newRouter(&stubService{}, "owner-1", false), http.MethodGet, "/depots/me", "").Code)
}

func TestOwnerActionsCarryActor(t *testing.T) {
	svc := &stubService{}
	r := newRouter(svc, "admin-1", true)

	w := serve(r, http.MethodPost, "/paths/p1/passcode", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, service.Actor{UserID: "admin-1", Admin: true}, svc.actor)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/paths/p1/send-link", "").Code)
	assert.Equal(t, http.StatusForbidden, serve(newRouter(svc, "stranger", false), http.MethodPost, "/paths/p1/send-link", "").Code)
	assert.Equal(t, http.StatusInternalServerError, serve(r, http.MethodPost, "/routes/r1/archive", "").Code)
}

func TestGetPathForVerifiedDriver(t *testing.T) {
	r := newRouter(&stubService{}, "", false)

	w := serve(r, http.MethodGet, "/paths/p1?pc=ok", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "SECRET")

	var body struct {
		Data struct {
			DepotID   string `json:"depot_id"`
			VehicleID string `json:"vehicle_id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "d1", body.Data.DepotID)
	assert.Equal(t, "v1", body.Data.VehicleID)

	w = serve(r, http.MethodGet, "/paths/p1?pc=bad", "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/sandbox", w.Header().Get("Location"))
}
