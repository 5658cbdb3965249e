package entity

// RouteSource tells which path produced an ETAResult.
type RouteSource string

const (
	// RouteSourceExternal means the external routing provider answered.
	RouteSourceExternal RouteSource = "external"
	// RouteSourceFallback means the haversine estimate was used.
	RouteSourceFallback RouteSource = "fallback"
)

// ETAResult is a route estimate. It is recomputed per request and never persisted.
type ETAResult struct {
	DurationMinutes int         `json:"duration_minutes"`
	DistanceKm      float64     `json:"distance_km"`
	Polyline        string      `json:"polyline,omitempty"`
	Source          RouteSource `json:"source"`
}
