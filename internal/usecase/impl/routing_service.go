package impl

import (
	"context"
	"log/slog"
	"math"
	"sync"

	"dispatch/config"
	deliverycontext "dispatch/internal/delivery/context"
	"dispatch/internal/domain/entity"
	domainerrors "dispatch/internal/domain/errors"
	"dispatch/internal/domain/geo"
	"dispatch/internal/domain/service"
	"dispatch/internal/errors"
	"dispatch/internal/usecase"
)

// used when tracking.averageSpeedKmh is unset
const defaultSpeedKmh = geo.AverageSpeedKmh

// routeOutcome is the tagged result of one provider lookup: exactly one of
// route and err is set.
type routeOutcome struct {
	route *service.Route
	err   error
}

func (o routeOutcome) ok() bool {
	return o.err == nil && o.route != nil
}

// routingService implements the RoutingUsecase interface
type routingService struct {
	provider        service.RouteProvider
	tracking        usecase.TrackingUsecase
	defaultSpeedKmh float64
	logger          *slog.Logger
}

// NewRoutingService creates a new routing service instance
func NewRoutingService(cfg *config.Config, provider service.RouteProvider, tracking usecase.TrackingUsecase, logger *slog.Logger) usecase.RoutingUsecase {
	speedKmh := defaultSpeedKmh
	if cfg.Tracking != nil && cfg.Tracking.AverageSpeedKmh > 0 {
		speedKmh = cfg.Tracking.AverageSpeedKmh
	}

	return &routingService{
		provider:        provider,
		tracking:        tracking,
		defaultSpeedKmh: speedKmh,
		logger:          logger,
	}
}

// GetRoute asks the provider once, then falls back to the haversine estimate
func (s *routingService) GetRoute(ctx context.Context, origin, destination usecase.Coordinate) *entity.ETAResult {
	outcome := s.lookup(ctx, origin, destination)
	if outcome.ok() {
		return fromProviderRoute(outcome.route)
	}

	deliverycontext.GetLoggerOrDefault(ctx, s.logger).Warn("Routing lookup failed, using haversine fallback",
		slog.String("reason", outcome.err.Error()),
		slog.Bool("timeout", errors.IsTimeout(outcome.err)),
	)

	return s.estimate(origin, destination)
}

// GetOrderETA estimates the route from the order's driver to destination
func (s *routingService) GetOrderETA(ctx context.Context, orderID string, destination usecase.Coordinate) (*entity.ETAResult, error) {
	location, ok := s.tracking.GetForOrder(orderID)
	if !ok {
		return nil, domainerrors.ErrOrderNotTracked.WithDetails(orderID)
	}

	origin := usecase.Coordinate{Lat: location.Lat, Lng: location.Lng}

	return s.GetRoute(ctx, origin, destination), nil
}

// GetRoutes estimates routes from one origin to many destinations concurrently.
// Results keep the order of destinations.
func (s *routingService) GetRoutes(ctx context.Context, origin usecase.Coordinate, destinations []usecase.Coordinate) []*entity.ETAResult {
	results := make([]*entity.ETAResult, len(destinations))
	if len(destinations) == 0 {
		return results
	}

	targetCh := make(chan int, len(destinations))
	resultCh := make(chan routeResultWithIndex, len(destinations))

	workerGroup := s.spawnRouteWorkers(ctx, s.workerCount(len(destinations)), targetCh, resultCh, origin, destinations)

	go dispatchRouteWork(ctx, targetCh, len(destinations))
	collectRouteResults(resultCh, results, workerGroup)

	// Destinations skipped after cancellation still get the local estimate
	for i, result := range results {
		if result == nil {
			results[i] = s.estimate(origin, destinations[i])
		}
	}

	return results
}

func (s *routingService) lookup(ctx context.Context, origin, destination usecase.Coordinate) routeOutcome {
	if s.provider == nil {
		return routeOutcome{err: service.ErrRoutingNotConfigured}
	}

	route, err := s.provider.Route(ctx, origin.Point(), destination.Point())
	if err != nil {
		return routeOutcome{err: err}
	}
	if route == nil {
		return routeOutcome{err: service.ErrRouteNotFound}
	}

	return routeOutcome{route: route}
}

// estimate is the local haversine + flat speed computation
func (s *routingService) estimate(origin, destination usecase.Coordinate) *entity.ETAResult {
	distanceKm := geo.DistancePoints(origin.Point(), destination.Point())

	return &entity.ETAResult{
		DurationMinutes: geo.EstimateETAAtSpeed(distanceKm, s.defaultSpeedKmh),
		DistanceKm:      distanceKm,
		Source:          entity.RouteSourceFallback,
	}
}

func fromProviderRoute(route *service.Route) *entity.ETAResult {
	return &entity.ETAResult{
		DurationMinutes: int(math.Ceil(route.DurationSeconds / 60)),
		DistanceKm:      route.DistanceMeters / 1000,
		Polyline:        route.Polyline,
		Source:          entity.RouteSourceExternal,
	}
}

func (s *routingService) workerCount(targetCount int) int {
	const numWorkers = 10
	if targetCount < numWorkers {
		return targetCount
	}

	return numWorkers
}

type routeResultWithIndex struct {
	index  int
	result *entity.ETAResult
}

func (s *routingService) spawnRouteWorkers(
	ctx context.Context,
	workerCount int,
	targetCh <-chan int,
	resultCh chan<- routeResultWithIndex,
	origin usecase.Coordinate,
	destinations []usecase.Coordinate,
) *sync.WaitGroup {
	var workerGroup sync.WaitGroup

	for range workerCount {
		workerGroup.Add(1)
		go func() {
			defer workerGroup.Done()
			for idx := range targetCh {
				if ctx.Err() != nil {
					return
				}

				resultCh <- routeResultWithIndex{index: idx, result: s.GetRoute(ctx, origin, destinations[idx])}
			}
		}()
	}

	return &workerGroup
}

func dispatchRouteWork(ctx context.Context, targetCh chan<- int, targetCount int) {
	defer close(targetCh)

	for i := range targetCount {
		if ctx.Err() != nil {
			return
		}

		targetCh <- i
	}
}

func collectRouteResults(resultCh chan routeResultWithIndex, results []*entity.ETAResult, workerGroup *sync.WaitGroup) {
	go func() {
		workerGroup.Wait()
		close(resultCh)
	}()

	for res := range resultCh {
		results[res.index] = res.result
	}
}
