package logistics

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"artisanal-futures/internal/domain/logistics"
	xerrors "artisanal-futures/internal/pkg/errors"
	"artisanal-futures/internal/service/email"
	"artisanal-futures/internal/service/passcode"
	"artisanal-futures/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	magicCodeLength   = 8
	magicCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// Mailer sends one transactional email.
type Mailer interface {
	Send(to, subject, bodyHTML string) error
}

// Actor is the authenticated caller of an owner-scoped operation.
type Actor struct {
	UserID string
	Admin  bool
}

type LogisticsService struct {
	repo    logistics.Repository
	deriver *passcode.Deriver
	mailer  Mailer
	store   storage.ObjectStore
	baseURL string
	logger  *zap.Logger
}

func NewLogisticsService(
	repo logistics.Repository,
	deriver *passcode.Deriver,
	mailer Mailer,
	store storage.ObjectStore,
	baseURL string,
	logger *zap.Logger,
) *LogisticsService {
	return &LogisticsService{
		repo:    repo,
		deriver: deriver,
		mailer:  mailer,
		store:   store,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// CreateDepot creates the owner's depot with a fresh magic code.
func (s *LogisticsService) CreateDepot(ctx context.Context, ownerID string, req *logistics.CreateDepotRequest) (*logistics.Depot, error) {
	if ownerID == "" {
		return nil, xerrors.ErrUnauthorized
	}

	existing, err := s.repo.FindDepotByOwner(ctx, ownerID)
	if err != nil && !errors.Is(err, xerrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing depot: %w", err)
	}
	if existing != nil {
		return nil, xerrors.Conflict("owner already has depot %s", existing.ID)
	}

	code, err := GenerateMagicCode()
	if err != nil {
		return nil, err
	}

	d := &logistics.Depot{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Name:      strings.TrimSpace(req.Name),
		MagicCode: code,
	}
	if d.Name == "" {
		return nil, xerrors.Invalid("name is required")
	}

	if err := s.repo.CreateDepot(ctx, d); err != nil {
		if errors.Is(err, xerrors.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create depot: %w", err)
	}

	s.logger.Info("depot created", zap.String("depot_id", d.ID), zap.String("owner_id", ownerID))
	return d, nil
}

func (s *LogisticsService) GetMyDepot(ctx context.Context, ownerID string) (*logistics.Depot, error) {
	return s.repo.FindDepotByOwner(ctx, ownerID)
}

// ResolvePathContext loads path, route, depot and vehicle. Any missing link
// surfaces as ErrNotFound.
func (s *LogisticsService) ResolvePathContext(ctx context.Context, pathID string) (*logistics.PathContext, error) {
	path, err := s.repo.FindPathByID(ctx, pathID)
	if err != nil {
		return nil, fmt.Errorf("path %s: %w", pathID, err)
	}

	route, err := s.repo.FindRouteByID(ctx, path.RouteID)
	if err != nil {
		return nil, fmt.Errorf("route %s: %w", path.RouteID, err)
	}

	depot, err := s.repo.FindDepotByID(ctx, route.DepotID)
	if err != nil {
		return nil, fmt.Errorf("depot %s: %w", route.DepotID, err)
	}

	vehicle, err := s.repo.FindVehicleByID(ctx, path.VehicleID)
	if err != nil {
		return nil, fmt.Errorf("vehicle %s: %w", path.VehicleID, err)
	}
	if vehicle.DepotID != depot.ID {
		return nil, fmt.Errorf("vehicle %s is not in depot %s: %w", vehicle.ID, depot.ID, xerrors.ErrNotFound)
	}

	return &logistics.PathContext{Path: path, Route: route, Depot: depot, Vehicle: vehicle}, nil
}

// DriverRouteURL is the link a driver opens to reach their path.
func (s *LogisticsService) DriverRouteURL(pc *logistics.PathContext, code string) string {
	q := url.Values{}
	q.Set("pc", code)
	q.Set("driverId", pc.Vehicle.ID)

	return fmt.Sprintf("%s/pathways/%s/route/%s/path/%s?%s",
		s.baseURL,
		url.PathEscape(pc.Depot.ID),
		url.PathEscape(pc.Route.ID),
		url.PathEscape(pc.Path.ID),
		q.Encode(),
	)
}

// GeneratePasscode returns the passcode and route URL of a path. Only the
// depot owner or an admin may mint one.
func (s *LogisticsService) GeneratePasscode(ctx context.Context, actor Actor, pathID string) (*logistics.PathContext, string, string, error) {
	pc, err := s.ResolvePathContext(ctx, pathID)
	if err != nil {
		return nil, "", "", err
	}
	if err := authorize(actor, pc.Depot); err != nil {
		return nil, "", "", err
	}
	if pc.Vehicle.Driver == nil || pc.Vehicle.Driver.Email == "" {
		return nil, "", "", xerrors.Invalid("vehicle %s has no driver email", pc.Vehicle.ID)
	}

	code := s.deriver.Derive(pc.Path.ID, pc.Depot.MagicCode, pc.Vehicle.Driver.Email)
	return pc, code, s.DriverRouteURL(pc, code), nil
}

// SendRouteLink emails the driver of a path their access link.
func (s *LogisticsService) SendRouteLink(ctx context.Context, actor Actor, pathID string) (*logistics.SendRouteLinkResponse, error) {
	pc, _, link, err := s.GeneratePasscode(ctx, actor, pathID)
	if err != nil {
		return nil, err
	}
	if s.mailer == nil {
		return nil, fmt.Errorf("mailer not configured: %w", xerrors.ErrUpstream)
	}

	driver := pc.Vehicle.Driver
	subject, body, err := email.RouteLinkEmail(driver.Name, link, pc.Route.DeliveryAt)
	if err != nil {
		return nil, err
	}

	if err := s.mailer.Send(driver.Email, subject, body); err != nil {
		s.logger.Error("failed to send route link",
			zap.String("path_id", pathID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("send route link: %w: %v", xerrors.ErrUpstream, err)
	}

	s.logger.Info("route link sent",
		zap.String("path_id", pathID),
		zap.String("vehicle_id", pc.Vehicle.ID),
	)

	return &logistics.SendRouteLinkResponse{PathID: pathID, Email: driver.Email, SentURL: link}, nil
}

// CheckDepotAccess reports whether actor administers the depot.
func (s *LogisticsService) CheckDepotAccess(ctx context.Context, actor Actor, depotID string) (*logistics.Depot, error) {
	d, err := s.repo.FindDepotByID(ctx, depotID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Exists checks referenced entities for dispatch validation. Empty ids are
// skipped.
func (s *LogisticsService) Exists(ctx context.Context, depotID, vehicleID, pathID string) error {
	if depotID != "" {
		if _, err := s.repo.FindDepotByID(ctx, depotID); err != nil {
			return referenceError("depot", depotID, err)
		}
	}
	if vehicleID != "" {
		if _, err := s.repo.FindVehicleByID(ctx, vehicleID); err != nil {
			return referenceError("vehicle", vehicleID, err)
		}
	}
	if pathID != "" {
		if _, err := s.repo.FindPathByID(ctx, pathID); err != nil {
			return referenceError("path", pathID, err)
		}
	}
	return nil
}

// DepotForPath returns the depot id owning a path.
func (s *LogisticsService) DepotForPath(ctx context.Context, pathID string) (string, error) {
	path, err := s.repo.FindPathByID(ctx, pathID)
	if err != nil {
		return "", referenceError("path", pathID, err)
	}
	route, err := s.repo.FindRouteByID(ctx, path.RouteID)
	if err != nil {
		return "", referenceError("route", path.RouteID, err)
	}
	return route.DepotID, nil
}

// VehicleForPath returns the vehicle assigned to a path, or "" when none is.
func (s *LogisticsService) VehicleForPath(ctx context.Context, pathID string) (string, error) {
	path, err := s.repo.FindPathByID(ctx, pathID)
	if err != nil {
		return "", referenceError("path", pathID, err)
	}
	return path.VehicleID, nil
}

// DepotForVehicle returns the depot id a vehicle belongs to.
func (s *LogisticsService) DepotForVehicle(ctx context.Context, vehicleID string) (string, error) {
	v, err := s.repo.FindVehicleByID(ctx, vehicleID)
	if err != nil {
		return "", referenceError("vehicle", vehicleID, err)
	}
	return v.DepotID, nil
}

func referenceError(kind, id string, err error) error {
	if errors.Is(err, xerrors.ErrNotFound) {
		return xerrors.Invalid("%s %s does not exist", kind, id)
	}
	return fmt.Errorf("failed to load %s %s: %w", kind, id, err)
}

func authorize(actor Actor, d *logistics.Depot) error {
	if actor.Admin || (actor.UserID != "" && actor.UserID == d.OwnerID) {
		return nil
	}
	return xerrors.ErrForbidden
}

// GenerateMagicCode returns a random depot code from an unambiguous alphabet.
func GenerateMagicCode() (string, error) {
	buf := make([]byte, magicCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate magic code: %w", err)
	}
	for i, b := range buf {
		buf[i] = magicCodeAlphabet[int(b)%len(magicCodeAlphabet)]
	}
	return string(buf), nil
}
