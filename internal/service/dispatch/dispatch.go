package dispatch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"artisanal-futures/internal/domain/dispatch"
	"artisanal-futures/internal/metrics"
	xerrors "artisanal-futures/internal/pkg/errors"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// Publisher queues an event on a broadcast channel without blocking.
type Publisher interface {
	Publish(channel, event string, data interface{}) bool
}

// References validates ids named by dispatch updates and resolves their depot.
type References interface {
	Exists(ctx context.Context, depotID, vehicleID, pathID string) error
	DepotForPath(ctx context.Context, pathID string) (string, error)
	DepotForVehicle(ctx context.Context, vehicleID string) (string, error)
	VehicleForPath(ctx context.Context, pathID string) (string, error)
}

type DispatchService struct {
	log     MessageLog
	pub     Publisher
	refs    References
	scoped  bool
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewDispatchService builds the relay. scoped selects one channel per depot
// instead of the single global channel.
func NewDispatchService(log MessageLog, pub Publisher, refs References, scoped bool, m *metrics.Metrics, logger *zap.Logger) *DispatchService {
	return &DispatchService{
		log:     log,
		pub:     pub,
		refs:    refs,
		scoped:  scoped,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// Scoped reports whether events are published per depot.
func (s *DispatchService) Scoped() bool {
	return s.scoped
}

// PostMessage appends to the scope's log and publishes the whole log.
func (s *DispatchService) PostMessage(ctx context.Context, req *dispatch.MessageRequest) (*dispatch.Ack, error) {
	event := dispatch.EventUpdateMessages

	if strings.TrimSpace(req.Sender) == "" || strings.TrimSpace(req.Body) == "" {
		return nil, s.reject(event, xerrors.Invalid("sender and body are required"))
	}

	channel, depotID, err := s.resolve(ctx, req.DepotID, req.VehicleID, req.PathID)
	if err != nil {
		return nil, s.reject(event, err)
	}

	msg := dispatch.Message{
		ID:        ulid.Make().String(),
		DepotID:   depotID,
		RouteID:   req.RouteID,
		PathID:    req.PathID,
		VehicleID: req.VehicleID,
		Sender:    strings.TrimSpace(req.Sender),
		Role:      req.Role,
		Body:      strings.TrimSpace(req.Body),
		CreatedAt: s.now().UTC(),
	}

	all, err := s.log.AppendMessage(ctx, channel, msg)
	if err != nil {
		return nil, fmt.Errorf("failed to store message: %w", err)
	}

	return s.publish(channel, event, msg.ID, all), nil
}

// UpdateLocation records a user's latest position and publishes every
// known position in the scope.
func (s *DispatchService) UpdateLocation(ctx context.Context, req *dispatch.LocationRequest) (*dispatch.Ack, error) {
	event := dispatch.EventUpdateLocation

	if strings.TrimSpace(req.UserID) == "" || req.Latitude == nil || req.Longitude == nil {
		return nil, s.reject(event, xerrors.Invalid("user_id, latitude and longitude are required"))
	}
	if *req.Latitude < -90 || *req.Latitude > 90 || *req.Longitude < -180 || *req.Longitude > 180 {
		return nil, s.reject(event, xerrors.Invalid("coordinates out of range"))
	}

	channel, depotID, err := s.resolve(ctx, req.DepotID, req.VehicleID, req.PathID)
	if err != nil {
		return nil, s.reject(event, err)
	}

	loc := dispatch.Location{
		UserID:    strings.TrimSpace(req.UserID),
		DepotID:   depotID,
		VehicleID: req.VehicleID,
		PathID:    req.PathID,
		Role:      req.Role,
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
		Accuracy:  req.Accuracy,
		Heading:   req.Heading,
		UpdatedAt: s.now().UTC(),
	}

	all, err := s.log.UpsertLocation(ctx, channel, loc)
	if err != nil {
		return nil, fmt.Errorf("failed to store location: %w", err)
	}

	return s.publish(channel, event, "", all), nil
}

// NotifyDispatch publishes a driver's stop status change.
func (s *DispatchService) NotifyDispatch(ctx context.Context, req *dispatch.NotifyRequest) (*dispatch.Ack, error) {
	event := dispatch.EventNotifyDispatch

	if req.VehicleID == "" || req.PathID == "" || req.Status == "" {
		return nil, s.reject(event, xerrors.Invalid("vehicle_id, path_id and status are required"))
	}

	channel, depotID, err := s.resolve(ctx, "", req.VehicleID, req.PathID)
	if err != nil {
		return nil, s.reject(event, err)
	}
	if err := s.assigned(ctx, req.VehicleID, req.PathID); err != nil {
		return nil, s.reject(event, err)
	}

	evt := dispatch.Event{
		ID:        ulid.Make().String(),
		DepotID:   depotID,
		PathID:    req.PathID,
		VehicleID: req.VehicleID,
		StopID:    req.StopID,
		Status:    req.Status,
		Message:   req.Message,
		Metadata:  req.Metadata,
		CreatedAt: s.now().UTC(),
	}

	return s.publish(channel, event, evt.ID, evt), nil
}

// ContactDispatch publishes a driver's request to be contacted.
func (s *DispatchService) ContactDispatch(ctx context.Context, req *dispatch.ContactRequest) (*dispatch.Ack, error) {
	event := dispatch.EventContactDispatch

	if req.VehicleID == "" || strings.TrimSpace(req.Message) == "" {
		return nil, s.reject(event, xerrors.Invalid("vehicle_id and message are required"))
	}

	channel, depotID, err := s.resolve(ctx, "", req.VehicleID, req.PathID)
	if err != nil {
		return nil, s.reject(event, err)
	}
	if err := s.assigned(ctx, req.VehicleID, req.PathID); err != nil {
		return nil, s.reject(event, err)
	}

	evt := dispatch.Event{
		ID:        ulid.Make().String(),
		DepotID:   depotID,
		PathID:    req.PathID,
		VehicleID: req.VehicleID,
		Message:   strings.TrimSpace(req.Message),
		CreatedAt: s.now().UTC(),
	}

	return s.publish(channel, event, evt.ID, evt), nil
}

// SendTest publishes a connectivity test message.
func (s *DispatchService) SendTest(ctx context.Context, req *dispatch.TestRequest) (*dispatch.Ack, error) {
	event := dispatch.EventTestMessage

	channel, depotID, err := s.resolve(ctx, req.DepotID, "", "")
	if err != nil {
		return nil, s.reject(event, err)
	}

	text := req.Message
	if text == "" {
		text = "test"
	}

	evt := dispatch.Event{
		ID:        ulid.Make().String(),
		DepotID:   depotID,
		Message:   text,
		CreatedAt: s.now().UTC(),
	}

	return s.publish(channel, event, evt.ID, evt), nil
}

// History returns the accumulated state of a channel.
func (s *DispatchService) History(ctx context.Context, channel string) ([]dispatch.Message, []dispatch.Location, error) {
	msgs, err := s.log.Messages(ctx, channel)
	if err != nil {
		return nil, nil, err
	}
	locs, err := s.log.Locations(ctx, channel)
	if err != nil {
		return nil, nil, err
	}
	return msgs, locs, nil
}

// ChannelForDepot is the channel a depot's events are published on.
func (s *DispatchService) ChannelForDepot(depotID string) string {
	return dispatch.ChannelFor(depotID, s.scoped)
}

// resolve validates the referenced ids and picks the channel. In scoped mode
// the depot comes from the request or from the path or vehicle.
// ChannelOf returns the channel and depot an update naming these ids would
// be published on, validating them the same way the publish calls do.
func (s *DispatchService) ChannelOf(ctx context.Context, depotID, vehicleID, pathID string) (string, string, error) {
	return s.resolve(ctx, depotID, vehicleID, pathID)
}

func (s *DispatchService) resolve(ctx context.Context, depotID, vehicleID, pathID string) (string, string, error) {
	if err := s.refs.Exists(ctx, depotID, vehicleID, pathID); err != nil {
		return "", "", err
	}

	for _, lookup := range []struct {
		id  string
		get func(context.Context, string) (string, error)
	}{
		{pathID, s.refs.DepotForPath},
		{vehicleID, s.refs.DepotForVehicle},
	} {
		if lookup.id == "" {
			continue
		}
		owner, err := lookup.get(ctx, lookup.id)
		if err != nil {
			return "", "", err
		}
		if depotID == "" {
			depotID = owner
		} else if owner != depotID {
			return "", "", xerrors.Invalid("%s does not belong to depot %s", lookup.id, depotID)
		}
	}

	if s.scoped && depotID == "" {
		return "", "", xerrors.Invalid("depot_id, path_id or vehicle_id is required")
	}

	return dispatch.ChannelFor(depotID, s.scoped), depotID, nil
}

// assigned rejects a vehicle that is not the one driving pathID. Paths
// without a vehicle accept any vehicle of the same depot.
func (s *DispatchService) assigned(ctx context.Context, vehicleID, pathID string) error {
	if vehicleID == "" || pathID == "" {
		return nil
	}
	onPath, err := s.refs.VehicleForPath(ctx, pathID)
	if err != nil {
		return err
	}
	if onPath != "" && onPath != vehicleID {
		return xerrors.Invalid("vehicle %s is not assigned to path %s", vehicleID, pathID)
	}
	return nil
}

func (s *DispatchService) publish(channel, event, id string, payload interface{}) *dispatch.Ack {
	queued := s.pub.Publish(channel, event, payload)
	return &dispatch.Ack{
		Status:  "accepted",
		Event:   event,
		Channel: channel,
		ID:      id,
		Queued:  queued,
	}
}

func (s *DispatchService) reject(event string, err error) error {
	s.metrics.EventRejected(event)
	s.logger.Debug("dispatch update rejected", zap.String("event", event), zap.Error(err))
	return err
}
