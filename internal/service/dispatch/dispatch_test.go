package dispatch

import (
	"context"
	"sync"
	"testing"

	"artisanal-futures/internal/domain/dispatch"
	xerrors "artisanal-futures/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type published struct {
	channel string
	event   string
	data    interface{}
}

type pubRecorder struct {
	mu     sync.Mutex
	events []published
}

func (p *pubRecorder) Publish(channel, event string, data interface{}) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{channel, event, data})
	return true
}

// refStub knows depot_1 with vehicle veh_1 on path_1 and idle veh_3, and
// depot_2 with veh_2.
type refStub struct{}

var (
	vehicleDepots = map[string]string{"veh_1": "depot_1", "veh_2": "depot_2", "veh_3": "depot_1"}
	pathDepots    = map[string]string{"path_1": "depot_1"}
	pathVehicles  = map[string]string{"path_1": "veh_1"}
	depots        = map[string]bool{"depot_1": true, "depot_2": true}
)

func (refStub) Exists(_ context.Context, depotID, vehicleID, pathID string) error {
	if depotID != "" && !depots[depotID] {
		return xerrors.Invalid("depot %s does not exist", depotID)
	}
	if _, ok := vehicleDepots[vehicleID]; vehicleID != "" && !ok {
		return xerrors.Invalid("vehicle %s does not exist", vehicleID)
	}
	if _, ok := pathDepots[pathID]; pathID != "" && !ok {
		return xerrors.Invalid("path %s does not exist", pathID)
	}
	return nil
}

func (refStub) DepotForPath(_ context.Context, pathID string) (string, error) {
	return pathDepots[pathID], nil
}

func (refStub) DepotForVehicle(_ context.Context, vehicleID string) (string, error) {
	return vehicleDepots[vehicleID], nil
}

func (refStub) VehicleForPath(_ context.Context, pathID string) (string, error) {
	return pathVehicles[pathID], nil
}

func newService(scoped bool) (*DispatchService, *pubRecorder) {
	pub := &pubRecorder{}
	return NewDispatchService(NewMemoryLog(10), pub, refStub{}, scoped, nil, zap.NewNop()), pub
}

func f(v float64) *float64 { return &v }

func TestPostMessage_PublishesWholeLog(t *testing.T) {
	svc, pub := newService(true)
	ctx := context.Background()

	_, err := svc.PostMessage(ctx, &dispatch.MessageRequest{DepotID: "depot_1", Sender: "dispatch", Body: "first"})
	require.NoError(t, err)
	ack, err := svc.PostMessage(ctx, &dispatch.MessageRequest{PathID: "path_1", Sender: "driver", Body: "second"})
	require.NoError(t, err)

	assert.Equal(t, "map-depot_1", ack.Channel)
	assert.Equal(t, dispatch.EventUpdateMessages, ack.Event)
	assert.True(t, ack.Queued)

	require.Len(t, pub.events, 2)
	last := pub.events[1]
	assert.Equal(t, "map-depot_1", last.channel)
	msgs := last.data.([]dispatch.Message)
	require.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].Body)
	assert.Equal(t, "second", msgs[1].Body)
	assert.Equal(t, "depot_1", msgs[1].DepotID)
}

func TestPostMessage_DepotsAreIsolated(t *testing.T) {
	svc, pub := newService(true)
	ctx := context.Background()

	_, err := svc.PostMessage(ctx, &dispatch.MessageRequest{DepotID: "depot_1", Sender: "a", Body: "one"})
	require.NoError(t, err)
	_, err = svc.PostMessage(ctx, &dispatch.MessageRequest{VehicleID: "veh_2", Sender: "b", Body: "two"})
	require.NoError(t, err)

	assert.Equal(t, "map-depot_2", pub.events[1].channel)
	assert.Len(t, pub.events[1].data.([]dispatch.Message), 1)
}

func TestPostMessage_GlobalScope(t *testing.T) {
	svc, pub := newService(false)

	ack, err := svc.PostMessage(context.Background(), &dispatch.MessageRequest{Sender: "dispatch", Body: "hello all"})
	require.NoError(t, err)
	assert.Equal(t, dispatch.GlobalChannel, ack.Channel)
	assert.Equal(t, dispatch.GlobalChannel, pub.events[0].channel)
}

func TestValidation_RejectsWithoutPublishing(t *testing.T) {
	svc, pub := newService(true)
	ctx := context.Background()

	cases := map[string]func() error{
		"missing body": func() error {
			_, err := svc.PostMessage(ctx, &dispatch.MessageRequest{DepotID: "depot_1", Sender: "x"})
			return err
		},
		"unknown vehicle": func() error {
			_, err := svc.NotifyDispatch(ctx, &dispatch.NotifyRequest{VehicleID: "veh_9", PathID: "path_1", Status: "COMPLETED"})
			return err
		},
		"unknown path": func() error {
			_, err := svc.ContactDispatch(ctx, &dispatch.ContactRequest{VehicleID: "veh_1", PathID: "path_9", Message: "call me"})
			return err
		},
		"unknown depot": func() error {
			_, err := svc.SendTest(ctx, &dispatch.TestRequest{DepotID: "depot_9"})
			return err
		},
		"vehicle from other depot": func() error {
			_, err := svc.NotifyDispatch(ctx, &dispatch.NotifyRequest{VehicleID: "veh_2", PathID: "path_1", Status: "FAILED"})
			return err
		},
		"notify from vehicle not on path": func() error {
			_, err := svc.NotifyDispatch(ctx, &dispatch.NotifyRequest{VehicleID: "veh_3", PathID: "path_1", Status: "COMPLETED"})
			return err
		},
		"contact from vehicle not on path": func() error {
			_, err := svc.ContactDispatch(ctx, &dispatch.ContactRequest{VehicleID: "veh_3", PathID: "path_1", Message: "call me"})
			return err
		},
		"no depot in scoped mode": func() error {
			_, err := svc.SendTest(ctx, &dispatch.TestRequest{})
			return err
		},
		"missing coordinates": func() error {
			_, err := svc.UpdateLocation(ctx, &dispatch.LocationRequest{UserID: "u1", DepotID: "depot_1", Latitude: f(1)})
			return err
		},
		"latitude out of range": func() error {
			_, err := svc.UpdateLocation(ctx, &dispatch.LocationRequest{UserID: "u1", DepotID: "depot_1", Latitude: f(91), Longitude: f(0)})
			return err
		},
	}

	for name, call := range cases {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, call(), xerrors.ErrInvalidInput)
		})
	}

	assert.Empty(t, pub.events)
}

func TestUpdateLocation_LatestPerUser(t *testing.T) {
	svc, pub := newService(true)
	ctx := context.Background()

	for _, req := range []dispatch.LocationRequest{
		{UserID: "u2", DepotID: "depot_1", Latitude: f(1), Longitude: f(1)},
		{UserID: "u1", DepotID: "depot_1", Latitude: f(2), Longitude: f(2)},
		{UserID: "u2", DepotID: "depot_1", Latitude: f(3), Longitude: f(3)},
	} {
		req := req
		_, err := svc.UpdateLocation(ctx, &req)
		require.NoError(t, err)
	}

	last := pub.events[len(pub.events)-1]
	assert.Equal(t, dispatch.EventUpdateLocation, last.event)
	locs := last.data.([]dispatch.Location)
	require.Len(t, locs, 2)
	assert.Equal(t, "u1", locs[0].UserID)
	assert.Equal(t, 3.0, locs[1].Latitude)
}

func TestSingleEventPayloads(t *testing.T) {
	svc, pub := newService(true)
	ctx := context.Background()

	_, err := svc.NotifyDispatch(ctx, &dispatch.NotifyRequest{VehicleID: "veh_1", PathID: "path_1", StopID: "stop_3", Status: "COMPLETED"})
	require.NoError(t, err)
	_, err = svc.ContactDispatch(ctx, &dispatch.ContactRequest{VehicleID: "veh_1", Message: "flat tire"})
	require.NoError(t, err)
	_, err = svc.SendTest(ctx, &dispatch.TestRequest{DepotID: "depot_2"})
	require.NoError(t, err)

	require.Len(t, pub.events, 3)

	notify := pub.events[0].data.(dispatch.Event)
	assert.Equal(t, dispatch.EventNotifyDispatch, pub.events[0].event)
	assert.Equal(t, "stop_3", notify.StopID)
	assert.Equal(t, "depot_1", notify.DepotID)

	assert.Equal(t, dispatch.EventContactDispatch, pub.events[1].event)
	assert.Equal(t, "flat tire", pub.events[1].data.(dispatch.Event).Message)

	assert.Equal(t, dispatch.EventTestMessage, pub.events[2].event)
	assert.Equal(t, "map-depot_2", pub.events[2].channel)
}

func TestChannelOf(t *testing.T) {
	svc, pub := newService(true)
	ctx := context.Background()

	channel, depot, err := svc.ChannelOf(ctx, "", "", "path_1")
	require.NoError(t, err)
	assert.Equal(t, "map-depot_1", channel)
	assert.Equal(t, "depot_1", depot)

	_, _, err = svc.ChannelOf(ctx, "depot_2", "", "path_1")
	assert.ErrorIs(t, err, xerrors.ErrInvalidInput)

	global, _ := newService(false)
	channel, depot, err = global.ChannelOf(ctx, "", "", "")
	require.NoError(t, err)
	assert.Equal(t, dispatch.GlobalChannel, channel)
	assert.Empty(t, depot)

	assert.Empty(t, pub.events)
}

func TestHistory(t *testing.T) {
	svc, _ := newService(true)
	ctx := context.Background()

	_, err := svc.PostMessage(ctx, &dispatch.MessageRequest{DepotID: "depot_1", Sender: "a", Body: "b"})
	require.NoError(t, err)

	msgs, locs, err := svc.History(ctx, svc.ChannelForDepot("depot_1"))
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
	assert.Empty(t, locs)
}
