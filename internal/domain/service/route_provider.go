package service

import (
	"context"

	"dispatch/internal/errors"

	"github.com/paulmach/orb"
)

// Route lookup failure reasons. Every reason leads to the same fallback;
// they exist so callers and tests can tell which one happened.
var (
	ErrRoutingNotConfigured = errors.New("routing provider not configured")
	ErrRouteNotFound        = errors.New("routing provider returned no route")
	ErrMalformedRoute       = errors.New("routing provider returned a malformed response")
)

// Route is a well-formed answer from the routing provider.
type Route struct {
	DurationSeconds float64
	DistanceMeters  float64
	Polyline        string
}

// RouteProvider looks up a driving route between two points (lng, lat order).
// Implementations must bound their own latency and make a single attempt.
type RouteProvider interface {
	Route(ctx context.Context, origin, destination orb.Point) (*Route, error)
}
