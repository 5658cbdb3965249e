package geo

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func TestDistance_IdenticalPointsIsZero(t *testing.T) {
	points := [][2]float64{{0, 0}, {40.7128, -74.0060}, {-33.8688, 151.2093}, {89.9, 179.9}}

	for _, p := range points {
		assert.Zero(t, Distance(p[0], p[1], p[0], p[1]))
	}
}

func TestDistance_Symmetric(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lng1, lat2, lng2 float64
	}{
		{"Manhattan to Brooklyn", 40.7831, -73.9712, 40.6782, -73.9442},
		{"New York to London", 40.7128, -74.0060, 51.5074, -0.1278},
		{"Across antimeridian", 10, 179.5, 10, -179.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ab := Distance(tt.lat1, tt.lng1, tt.lat2, tt.lng2)
			ba := Distance(tt.lat2, tt.lng2, tt.lat1, tt.lng1)
			assert.InDelta(t, ab, ba, 1e-9)
		})
	}
}

func TestDistance_KnownValues(t *testing.T) {
	// One degree of longitude on the equator.
	assert.InDelta(t, 2*math.Pi*EarthRadiusKm/360, Distance(0, 0, 0, 1), 1e-6)

	// New York to London is roughly 5570 km.
	assert.InDelta(t, 5570, Distance(40.7128, -74.0060, 51.5074, -0.1278), 10)
}

func TestDistancePoints_MatchesDistance(t *testing.T) {
	a := orb.Point{-73.9712, 40.7831}
	b := orb.Point{-73.9442, 40.6782}

	assert.InDelta(t, Distance(40.7831, -73.9712, 40.6782, -73.9442), DistancePoints(a, b), 1e-9)
}

func TestEstimateETA(t *testing.T) {
	tests := []struct {
		distanceKm float64
		want       int
	}{
		{0, 0},
		{0.01, 1},
		{0.25, 1},
		{0.6, 2},
		{15, 30},
		{30, 60},
		{30.01, 61},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, EstimateETA(tt.distanceKm), "distance %v", tt.distanceKm)
	}
}

func TestEstimateETA_MonotonicNonDecreasing(t *testing.T) {
	prev := EstimateETA(0)
	for d := 0.0; d <= 100; d += 0.137 {
		got := EstimateETA(d)
		assert.GreaterOrEqual(t, got, prev, "distance %v", d)
		prev = got
	}
}

func TestEstimateETAAtSpeed(t *testing.T) {
	assert.Equal(t, 20, EstimateETAAtSpeed(15, 45))
	assert.Equal(t, EstimateETA(12), EstimateETAAtSpeed(12, 0))
}

func TestValidCoordinate(t *testing.T) {
	assert.True(t, ValidCoordinate(0, 0))
	assert.True(t, ValidCoordinate(-90, 180))
	assert.False(t, ValidCoordinate(91, 0))
	assert.False(t, ValidCoordinate(0, -181))
	assert.False(t, ValidCoordinate(math.NaN(), 0))
	assert.False(t, ValidCoordinate(0, math.Inf(1)))
}
