package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustPoint(t *testing.T, lat, lon float64) GeoPoint {
	t.Helper()
	p, err := NewGeoPoint(lat, lon)
	require.NoError(t, err)
	return p
}

func TestNewGeoPoint(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lon     float64
		wantErr bool
	}{
		{"seattle", 47.6062, -122.3321, false},
		{"north pole", 90, 0, false},
		{"antimeridian", 0, -180, false},
		{"latitude too large", 91, 0, true},
		{"latitude too small", -90.0001, 0, true},
		{"longitude too large", 0, 180.5, true},
		{"NaN", math.NaN(), 0, true},
		{"infinite", 0, math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewGeoPoint(tt.lat, tt.lon)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidCoordinate))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.lat, p.Lat)
			assert.Equal(t, tt.lon, p.Lon)
		})
	}
}

func TestGeoPoint_DistanceTo(t *testing.T) {
	seattle := mustPoint(t, 47.6062, -122.3321)
	portland := mustPoint(t, 45.5152, -122.6784)
	spokane := mustPoint(t, 47.6588, -117.4260)

	t.Run("zero for identical points", func(t *testing.T) {
		assert.Equal(t, 0.0, seattle.DistanceTo(seattle))
	})

	t.Run("symmetric", func(t *testing.T) {
		assert.InDelta(t, seattle.DistanceTo(portland), portland.DistanceTo(seattle), 1e-9)
	})

	t.Run("seattle to portland in miles", func(t *testing.T) {
		assert.InDelta(t, 145.0, seattle.DistanceTo(portland), 2.0)
	})

	t.Run("ordering follows great-circle distance", func(t *testing.T) {
		assert.Less(t, seattle.DistanceTo(portland), seattle.DistanceTo(spokane))
	})

	t.Run("one degree of latitude", func(t *testing.T) {
		a := mustPoint(t, 0, 0)
		b := mustPoint(t, 1, 0)
		assert.InDelta(t, 69.09, a.DistanceTo(b), 0.05)
		assert.InDelta(t, 111.19, a.DistanceKm(b), 0.05)
	})

	t.Run("antipodal points stay finite", func(t *testing.T) {
		a := mustPoint(t, 0, 0)
		b := mustPoint(t, 0, 180)
		d := a.DistanceKm(b)
		assert.False(t, math.IsNaN(d))
		assert.InDelta(t, math.Pi*earthRadiusKm, d, 1e-6)
	})
}

func TestGeoPoint_String(t *testing.T) {
	p := mustPoint(t, 47.6, -122.33)
	assert.Equal(t, "47.6,-122.33", p.String())
}
