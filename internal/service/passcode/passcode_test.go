package passcode

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"artisanal-futures/internal/domain/logistics"
	xerrors "artisanal-futures/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newDeriver(t *testing.T) *Deriver {
	t.Helper()
	d, err := NewDeriver("test-secret")
	require.NoError(t, err)
	return d
}

func TestDerive_Deterministic(t *testing.T) {
	d := newDeriver(t)

	a := d.Derive("path_1", "ABC123", "d@x.com")
	b := d.Derive("path_1", "ABC123", "d@x.com")
	assert.Equal(t, a, b)

	raw, err := base64.RawURLEncoding.DecodeString(a)
	require.NoError(t, err)
	assert.Len(t, raw, 32)
	assert.NotContains(t, a, "=")
}

func TestDerive_SensitiveToEveryInput(t *testing.T) {
	d := newDeriver(t)
	base := d.Derive("path_1", "ABC123", "d@x.com")

	assert.NotEqual(t, base, d.Derive("path_2", "ABC123", "d@x.com"))
	assert.NotEqual(t, base, d.Derive("path_1", "ABC124", "d@x.com"))
	assert.NotEqual(t, base, d.Derive("path_1", "ABC123", "e@x.com"))

	// Separator keeps shifted boundaries distinct.
	assert.NotEqual(t, d.Derive("ab", "c", "e"), d.Derive("a", "bc", "e"))
}

func TestDerive_EmailCaseInsensitive(t *testing.T) {
	d := newDeriver(t)
	assert.Equal(t, d.Derive("path_1", "ABC123", "d@x.com"), d.Derive("path_1", "ABC123", "D@X.COM"))
}

func TestDerive_SecretMatters(t *testing.T) {
	other, err := NewDeriver("other-secret")
	require.NoError(t, err)
	assert.NotEqual(t, newDeriver(t).Derive("path_1", "ABC123", "d@x.com"), other.Derive("path_1", "ABC123", "d@x.com"))

	_, err = NewDeriver("")
	assert.Error(t, err)
}

func TestMatches(t *testing.T) {
	d := newDeriver(t)
	pc := d.Derive("path_1", "ABC123", "d@x.com")

	assert.True(t, d.Matches(pc, "path_1", "ABC123", "d@x.com"))
	assert.False(t, d.Matches(pc, "path_1", "ABC123", "other@x.com"))
	assert.False(t, d.Matches("not base64 !!", "path_1", "ABC123", "d@x.com"))
	assert.False(t, d.Matches("", "path_1", "ABC123", "d@x.com"))
}

func TestMatches_RejectsLastCharacterChange(t *testing.T) {
	d := newDeriver(t)
	pc := d.Derive("path_1", "ABC123", "d@x.com")
	require.Len(t, pc, 43)

	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	prefix, last := pc[:len(pc)-1], pc[len(pc)-1]
	for i := 0; i < len(alphabet); i++ {
		if alphabet[i] == last {
			continue
		}
		variant := prefix + string(alphabet[i])
		assert.False(t, d.Matches(variant, "path_1", "ABC123", "d@x.com"), "variant %q accepted", variant)
	}
}

type resolverStub map[string]*logistics.PathContext

func (r resolverStub) ResolvePathContext(_ context.Context, pathID string) (*logistics.PathContext, error) {
	pc, ok := r[pathID]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return pc, nil
}

func fixture() resolverStub {
	driver := &logistics.Driver{ID: "drv_1", Email: "d@x.com", Name: "Dana"}
	return resolverStub{
		"path_1": {
			Path:    &logistics.OptimizedRoutePath{ID: "path_1", RouteID: "route_1", VehicleID: "veh_1"},
			Route:   &logistics.Route{ID: "route_1", DepotID: "depot_1"},
			Depot:   &logistics.Depot{ID: "depot_1", MagicCode: "ABC123"},
			Vehicle: &logistics.Vehicle{ID: "veh_1", DepotID: "depot_1", DriverID: &driver.ID, Driver: driver},
		},
		"path_nodriver": {
			Path:    &logistics.OptimizedRoutePath{ID: "path_nodriver", RouteID: "route_1", VehicleID: "veh_2"},
			Route:   &logistics.Route{ID: "route_1", DepotID: "depot_1"},
			Depot:   &logistics.Depot{ID: "depot_1", MagicCode: "ABC123"},
			Vehicle: &logistics.Vehicle{ID: "veh_2", DepotID: "depot_1"},
		},
	}
}

func TestVerify(t *testing.T) {
	d := newDeriver(t)
	v := NewVerifier(d, fixture(), zap.NewNop())
	good := d.Derive("path_1", "ABC123", "d@x.com")
	wrongEmail := d.Derive("path_1", "ABC123", "other@x.com")
	tampered := "A" + good[1:]
	if good[0] == 'A' {
		tampered = "B" + good[1:]
	}
	tailTampered := lastBitsFlipped(good)

	tests := []struct {
		name      string
		req       Request
		state     State
		setCookie string
	}{
		{
			name:  "nothing presented",
			req:   Request{PathID: "path_1"},
			state: StateRejected,
		},
		{
			name:      "valid query passcode",
			req:       Request{PathID: "path_1", Passcode: good},
			state:     StateVerified,
			setCookie: good,
		},
		{
			name:      "valid query with matching vehicle and route",
			req:       Request{PathID: "path_1", DepotID: "depot_1", RouteID: "route_1", VehicleID: "veh_1", Passcode: good},
			state:     StateVerified,
			setCookie: good,
		},
		{
			name:  "passcode for another email",
			req:   Request{PathID: "path_1", Passcode: wrongEmail},
			state: StateRejected,
		},
		{
			name:  "valid cookie",
			req:   Request{PathID: "path_1", Cookie: good},
			state: StateVerified,
		},
		{
			name:  "tampered cookie",
			req:   Request{PathID: "path_1", Cookie: tampered},
			state: StateRejected,
		},
		{
			name:  "last character changed in query passcode",
			req:   Request{PathID: "path_1", Passcode: tailTampered},
			state: StateRejected,
		},
		{
			name:  "last character changed in cookie",
			req:   Request{PathID: "path_1", Cookie: tailTampered},
			state: StateRejected,
		},
		{
			name:  "query passcode wins over cookie",
			req:   Request{PathID: "path_1", Passcode: wrongEmail, Cookie: good},
			state: StateRejected,
		},
		{
			name:  "unknown path",
			req:   Request{PathID: "path_9", Passcode: good},
			state: StateRejected,
		},
		{
			name:  "vehicle mismatch",
			req:   Request{PathID: "path_1", VehicleID: "veh_2", Passcode: good},
			state: StateRejected,
		},
		{
			name:  "route mismatch",
			req:   Request{PathID: "path_1", RouteID: "route_2", Passcode: good},
			state: StateRejected,
		},
		{
			name:  "depot mismatch",
			req:   Request{PathID: "path_1", DepotID: "depot_2", Passcode: good},
			state: StateRejected,
		},
		{
			name:  "vehicle without driver",
			req:   Request{PathID: "path_nodriver", Passcode: good},
			state: StateRejected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec := v.Verify(context.Background(), tt.req)
			assert.Equal(t, tt.state, dec.State, dec.Reason)
			assert.NotContains(t, []State{StateUnverified, StatePending}, dec.State)
			assert.Equal(t, tt.setCookie, dec.SetCookie)
			if tt.state == StateVerified {
				require.NotNil(t, dec.Path)
				assert.Equal(t, "path_1", dec.Path.Path.ID)
			}
		})
	}
}

// lastBitsFlipped changes only the unused low bits of the final character,
// leaving the decoded bytes identical under a lenient decoder.
func lastBitsFlipped(pc string) string {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	idx := strings.IndexByte(alphabet, pc[len(pc)-1])
	return pc[:len(pc)-1] + string(alphabet[idx^1])
}
