// Package entity contains the core business objects of the project.
package entity

import (
	"time"

	"github.com/paulmach/orb"
)

// DriverLocation is the latest known position of a driver.
// ObservedAt is always assigned by the server when the location is written.
type DriverLocation struct {
	DriverID   string    `json:"driver_id"`
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	Heading    *float64  `json:"heading,omitempty"` // Direction of travel (0-360 degrees)
	Speed      *float64  `json:"speed,omitempty"`
	ObservedAt time.Time `json:"observed_at"`
	OrderID    string    `json:"order_id,omitempty"`
}

// Point returns the location as an orb point (lng, lat order).
func (l *DriverLocation) Point() orb.Point {
	return orb.Point{l.Lng, l.Lat}
}

// Clone returns a deep copy so callers never share the registry's pointers.
func (l *DriverLocation) Clone() *DriverLocation {
	if l == nil {
		return nil
	}

	cloned := *l
	if l.Heading != nil {
		heading := *l.Heading
		cloned.Heading = &heading
	}
	if l.Speed != nil {
		speed := *l.Speed
		cloned.Speed = &speed
	}

	return &cloned
}

// IsStale reports whether the location is older than threshold at now.
func (l *DriverLocation) IsStale(now time.Time, threshold time.Duration) bool {
	return now.Sub(l.ObservedAt) > threshold
}

// LocationUpdate is the client-supplied part of a location report.
type LocationUpdate struct {
	Lat     float64
	Lng     float64
	Heading *float64
	Speed   *float64
	OrderID string
}

// ActiveDriver pairs a driver ID with its non-stale location.
type ActiveDriver struct {
	DriverID string          `json:"driver_id"`
	Location *DriverLocation `json:"location"`
}
