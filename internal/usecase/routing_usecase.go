package usecase

import (
	"context"

	"dispatch/internal/domain/entity"

	"github.com/paulmach/orb"
)

// Coordinate represents a geographic coordinate
type Coordinate struct {
	Lat float64 `json:"lat" validate:"min=-90,max=90"`
	Lng float64 `json:"lng" validate:"min=-180,max=180"`
}

// Point converts the coordinate to an orb point (lng, lat order)
func (c Coordinate) Point() orb.Point {
	return orb.Point{c.Lng, c.Lat}
}

// RoutingUsecase defines distance and ETA estimation
type RoutingUsecase interface {
	// GetRoute asks the routing provider once and falls back to the haversine
	// estimate on any failure. It never returns an error.
	GetRoute(ctx context.Context, origin, destination Coordinate) *entity.ETAResult

	// GetOrderETA estimates the route from the order's current driver location
	// to destination. Returns ErrOrderNotTracked when no fresh location exists.
	GetOrderETA(ctx context.Context, orderID string, destination Coordinate) (*entity.ETAResult, error)

	// GetRoutes runs GetRoute from one origin to many destinations concurrently,
	// returning results in destination order
	GetRoutes(ctx context.Context, origin Coordinate, destinations []Coordinate) []*entity.ETAResult
}
