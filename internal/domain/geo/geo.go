// Package geo holds the pure great-circle math used for tracking and ETA.
package geo

import (
	"math"

	"github.com/paulmach/orb"
)

const (
	// EarthRadiusKm is the mean Earth radius used by Distance.
	EarthRadiusKm = 6371.0

	// AverageSpeedKmh is the flat speed assumed by EstimateETA.
	AverageSpeedKmh = 30.0
)

// Distance returns the haversine great-circle distance in kilometers.
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	lat1Rad := toRadians(lat1)
	lat2Rad := toRadians(lat2)
	deltaLat := toRadians(lat2 - lat1)
	deltaLng := toRadians(lng2 - lng1)

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLng/2)*math.Sin(deltaLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// DistancePoints is Distance for orb points (lng, lat order).
func DistancePoints(a, b orb.Point) float64 {
	return Distance(a.Lat(), a.Lon(), b.Lat(), b.Lon())
}

// EstimateETA returns whole minutes at AverageSpeedKmh, rounded up.
func EstimateETA(distanceKm float64) int {
	return EstimateETAAtSpeed(distanceKm, AverageSpeedKmh)
}

// EstimateETAAtSpeed returns whole minutes at speedKmh, rounded up.
// Non-positive speeds fall back to AverageSpeedKmh.
func EstimateETAAtSpeed(distanceKm, speedKmh float64) int {
	if speedKmh <= 0 {
		speedKmh = AverageSpeedKmh
	}
	if distanceKm <= 0 || math.IsNaN(distanceKm) {
		return 0
	}

	return int(math.Ceil(distanceKm / speedKmh * 60))
}

// ValidCoordinate reports whether lat/lng are finite and within Earth bounds.
func ValidCoordinate(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return false
	}

	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
