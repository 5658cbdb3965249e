package impl

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"dispatch/config"
	"dispatch/internal/domain/entity"
	"dispatch/internal/usecase"
)

// defaultStaleThreshold is used when the tracking config carries no threshold
const defaultStaleThreshold = 5 * time.Minute

// trackingService implements usecase.TrackingUsecase.
// One mutex guards both maps so that Update and Remove are single visible steps.
type trackingService struct {
	mu             sync.Mutex
	locations      map[string]*entity.DriverLocation // driverID -> latest location
	orderDrivers   map[string]string                 // orderID -> driverID
	staleThreshold time.Duration
	now            func() time.Time
	logger         *slog.Logger
}

// NewTrackingService creates the single in-process position registry
func NewTrackingService(cfg *config.Config, logger *slog.Logger) usecase.TrackingUsecase {
	threshold := defaultStaleThreshold
	if cfg.Tracking != nil && cfg.Tracking.StaleThreshold > 0 {
		threshold = cfg.Tracking.StaleThreshold
	}

	return newTrackingService(threshold, time.Now, logger)
}

func newTrackingService(threshold time.Duration, now func() time.Time, logger *slog.Logger) *trackingService {
	if logger == nil {
		logger = slog.Default()
	}

	return &trackingService{
		locations:      make(map[string]*entity.DriverLocation),
		orderDrivers:   make(map[string]string),
		staleThreshold: threshold,
		now:            now,
		logger:         logger,
	}
}

// Update replaces the driver's location and records the order association
func (s *trackingService) Update(driverID string, update entity.LocationUpdate) *entity.DriverLocation {
	location := &entity.DriverLocation{
		DriverID: driverID,
		Lat:      update.Lat,
		Lng:      update.Lng,
		Heading:  update.Heading,
		Speed:    update.Speed,
		OrderID:  update.OrderID,
	}
	// Copy the optional pointers so the caller cannot mutate stored state
	location = location.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	location.ObservedAt = s.now()
	s.locations[driverID] = location
	if update.OrderID != "" {
		s.orderDrivers[update.OrderID] = driverID
	}

	return location.Clone()
}

// Get returns the driver's location, evicting it when stale
func (s *trackingService) Get(driverID string) (*entity.DriverLocation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.getLocked(driverID)
}

func (s *trackingService) getLocked(driverID string) (*entity.DriverLocation, bool) {
	location, ok := s.locations[driverID]
	if !ok {
		return nil, false
	}

	if location.IsStale(s.now(), s.staleThreshold) {
		delete(s.locations, driverID)
		s.logger.Debug("Evicted stale driver location",
			slog.String("driver_id", driverID),
			slog.Time("observed_at", location.ObservedAt),
		)

		return nil, false
	}

	return location.Clone(), true
}

// Peek returns the driver's location without evicting anything
func (s *trackingService) Peek(driverID string) (*entity.DriverLocation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	location, ok := s.locations[driverID]
	if !ok || location.IsStale(s.now(), s.staleThreshold) {
		return nil, false
	}

	return location.Clone(), true
}

// GetForOrder returns the location of the driver assigned to the order
func (s *trackingService) GetForOrder(orderID string) (*entity.DriverLocation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	driverID, ok := s.orderDrivers[orderID]
	if !ok {
		return nil, false
	}

	return s.getLocked(driverID)
}

// Assign sets or overwrites the driver for an order
func (s *trackingService) Assign(orderID, driverID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if previous, ok := s.orderDrivers[orderID]; ok && previous != driverID {
		s.logger.Info("Order reassigned",
			slog.String("order_id", orderID),
			slog.String("previous_driver_id", previous),
			slog.String("driver_id", driverID),
		)
	}
	s.orderDrivers[orderID] = driverID
}

// DriverForOrder returns the driver currently associated with the order
func (s *trackingService) DriverForOrder(orderID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	driverID, ok := s.orderDrivers[orderID]

	return driverID, ok
}

// Remove deletes the driver's location and all associations pointing at it.
// The association map is scanned in full; there is no reverse index.
func (s *trackingService) Remove(driverID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.locations, driverID)
	for orderID, assigned := range s.orderDrivers {
		if assigned == driverID {
			delete(s.orderDrivers, orderID)
		}
	}
}

// ActiveCount returns the number of stored locations without filtering stale ones
func (s *trackingService) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.locations)
}

// ListActive returns non-stale locations sorted by driver ID
func (s *trackingService) ListActive() []entity.ActiveDriver {
	s.mu.Lock()
	now := s.now()
	active := make([]entity.ActiveDriver, 0, len(s.locations))
	for driverID, location := range s.locations {
		if location.IsStale(now, s.staleThreshold) {
			continue
		}
		active = append(active, entity.ActiveDriver{
			DriverID: driverID,
			Location: location.Clone(),
		})
	}
	s.mu.Unlock()

	sort.Slice(active, func(i, j int) bool {
		return active[i].DriverID < active[j].DriverID
	})

	return active
}

// Sweep evicts every stale location. Associations are left alone.
func (s *trackingService) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	evicted := 0
	for driverID, location := range s.locations {
		if location.IsStale(now, s.staleThreshold) {
			delete(s.locations, driverID)
			evicted++
		}
	}

	return evicted
}
