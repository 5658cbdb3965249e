package usecase

import (
	"dispatch/internal/domain/entity"
)

// TrackingUsecase is the live position registry. It holds the latest location
// per driver and the driver currently assigned to each order.
//
// Staleness is enforced lazily: Get and GetForOrder evict a stale entry as a
// side effect of reading it. ActiveCount is therefore an upper bound until the
// next evicting read or Sweep.
type TrackingUsecase interface {
	// Update replaces the driver's location, stamping ObservedAt with the server
	// clock, and assigns update.OrderID to the driver when it is set.
	Update(driverID string, update entity.LocationUpdate) *entity.DriverLocation

	// Get returns the driver's location. It MUTATES: a stale entry is deleted
	// and reported as absent.
	Get(driverID string) (*entity.DriverLocation, bool)

	// Peek is Get without eviction. Stale entries are still reported as absent.
	Peek(driverID string) (*entity.DriverLocation, bool)

	// GetForOrder resolves the order's driver and delegates to Get.
	GetForOrder(orderID string) (*entity.DriverLocation, bool)

	// Assign sets or overwrites the order's driver. No location is required.
	Assign(orderID, driverID string)

	// DriverForOrder returns the associated driver without touching locations.
	DriverForOrder(orderID string) (string, bool)

	// Remove deletes the driver's location and every association pointing at it.
	Remove(driverID string)

	// ActiveCount is the number of stored locations, stale ones included.
	ActiveCount() int

	// ListActive returns drivers whose location is within the threshold.
	ListActive() []entity.ActiveDriver

	// Sweep evicts every stale location and returns how many were removed.
	Sweep() int
}

// LocationPublisher writes a location and fans it out to the live subscribers
// of its driver and order, in registry write order.
type LocationPublisher interface {
	PublishLocation(driverID string, update entity.LocationUpdate) *entity.DriverLocation
}
