package domain

import (
	"fmt"
	"math"
	"strconv"
)

const (
	earthRadiusKm = 6371.0
	milesPerKm    = 0.621371
)

// GeoPoint - WGS84 точка. Создаётся через NewGeoPoint, после чего неизменна.
type GeoPoint struct {
	Lat float64 `json:"lat" db:"lat"`
	Lon float64 `json:"lon" db:"lon"`
}

// NewGeoPoint validates lat/lon ranges and rejects NaN and infinities.
func NewGeoPoint(lat, lon float64) (GeoPoint, error) {
	if err := ValidateCoordinates(lat, lon); err != nil {
		return GeoPoint{}, err
	}
	return GeoPoint{Lat: lat, Lon: lon}, nil
}

// ValidateCoordinates returns ErrInvalidCoordinate for out-of-range input.
func ValidateCoordinates(lat, lon float64) error {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return fmt.Errorf("%w: lat=%v lon=%v", ErrInvalidCoordinate, lat, lon)
	}
	if lat < -90 || lat > 90 {
		return fmt.Errorf("%w: latitude %v outside [-90, 90]", ErrInvalidCoordinate, lat)
	}
	if lon < -180 || lon > 180 {
		return fmt.Errorf("%w: longitude %v outside [-180, 180]", ErrInvalidCoordinate, lon)
	}
	return nil
}

// Validate re-checks a point built as a struct literal (e.g. scanned from a DB row).
func (p GeoPoint) Validate() error {
	return ValidateCoordinates(p.Lat, p.Lon)
}

// DistanceTo - расстояние по большому кругу в милях (haversine).
func (p GeoPoint) DistanceTo(other GeoPoint) float64 {
	return p.DistanceKm(other) * milesPerKm
}

// DistanceKm - то же расстояние в километрах.
func (p GeoPoint) DistanceKm(other GeoPoint) float64 {
	dLat := (other.Lat - p.Lat) * math.Pi / 180.0
	dLon := (other.Lon - p.Lon) * math.Pi / 180.0

	lat1Rad := p.Lat * math.Pi / 180.0
	lat2Rad := other.Lat * math.Pi / 180.0

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)
	// clamp: rounding can push a slightly above 1 for antipodal points
	a = math.Min(1, math.Max(0, a))
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// String renders the point as "lat,lon", the form matrix providers expect.
func (p GeoPoint) String() string {
	return strconv.FormatFloat(p.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lon, 'f', -1, 64)
}
