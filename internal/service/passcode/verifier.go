package passcode

import (
	"context"

	"artisanal-futures/internal/domain/logistics"

	"go.uber.org/zap"
)

// State is a step of driver verification. A request starts UNVERIFIED and
// is PENDING while its path is resolved; those two are never returned.
// Verify always ends in VERIFIED or REJECTED.
type State string

const (
	StateUnverified State = "UNVERIFIED"
	StatePending    State = "PENDING"
	StateVerified   State = "VERIFIED"
	StateRejected   State = "REJECTED"
)

// PathResolver loads a path together with its route, depot and vehicle.
type PathResolver interface {
	ResolvePathContext(ctx context.Context, pathID string) (*logistics.PathContext, error)
}

// Request carries what a driver presents for one path. VehicleID is the
// optional driverId query parameter; DepotID and RouteID come from the URL
// when the route link form is used.
type Request struct {
	PathID    string
	DepotID   string
	RouteID   string
	VehicleID string
	Passcode  string
	Cookie    string
}

// Decision is the outcome of a verification. SetCookie is non-empty when a
// freshly presented passcode was accepted and must be persisted.
type Decision struct {
	State     State
	SetCookie string
	Path      *logistics.PathContext
	Reason    string
}

func (d Decision) Verified() bool {
	return d.State == StateVerified
}

type Verifier struct {
	deriver  *Deriver
	resolver PathResolver
	logger   *zap.Logger
}

func NewVerifier(deriver *Deriver, resolver PathResolver, logger *zap.Logger) *Verifier {
	return &Verifier{
		deriver:  deriver,
		resolver: resolver,
		logger:   logger,
	}
}

// Verify walks UNVERIFIED -> PENDING -> VERIFIED | REJECTED and returns the
// terminal state. Every failure, including lookup errors, ends in REJECTED.
func (v *Verifier) Verify(ctx context.Context, req Request) Decision {
	if req.Passcode == "" && req.Cookie == "" {
		return v.reject(req, "no passcode presented")
	}
	if req.PathID == "" {
		return v.reject(req, "missing path id")
	}

	pc, err := v.resolver.ResolvePathContext(ctx, req.PathID)
	if err != nil {
		return v.reject(req, "path lookup failed: "+err.Error())
	}
	if req.RouteID != "" && req.RouteID != pc.Route.ID {
		return v.reject(req, "route does not own path")
	}
	if req.DepotID != "" && req.DepotID != pc.Depot.ID {
		return v.reject(req, "depot does not own route")
	}
	if req.VehicleID != "" && req.VehicleID != pc.Vehicle.ID {
		return v.reject(req, "vehicle is not assigned to path")
	}
	if pc.Vehicle.Driver == nil || pc.Vehicle.Driver.Email == "" {
		return v.reject(req, "vehicle has no driver")
	}

	email := pc.Vehicle.Driver.Email
	magic := pc.Depot.MagicCode

	if req.Passcode != "" {
		if !v.deriver.Matches(req.Passcode, pc.Path.ID, magic, email) {
			return v.reject(req, "passcode mismatch")
		}
		return Decision{State: StateVerified, SetCookie: req.Passcode, Path: pc}
	}

	if !v.deriver.Matches(req.Cookie, pc.Path.ID, magic, email) {
		return v.reject(req, "cookie mismatch")
	}

	return Decision{State: StateVerified, Path: pc}
}

func (v *Verifier) reject(req Request, reason string) Decision {
	v.logger.Debug("driver access rejected",
		zap.String("path_id", req.PathID),
		zap.String("reason", reason),
	)
	return Decision{State: StateRejected, Reason: reason}
}
