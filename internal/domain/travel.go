package domain

import (
	"fmt"
	"strings"
)

// TravelMode - способ передвижения, от которого зависит запрос к провайдеру.
type TravelMode string

const (
	TravelModeCar     TravelMode = "car"
	TravelModeTransit TravelMode = "transit"
	TravelModeBike    TravelMode = "bike"
	TravelModeWalk    TravelMode = "walk"
)

// provider mode strings (Distance Matrix "mode" parameter)
var providerModes = map[TravelMode]string{
	TravelModeCar:     "driving",
	TravelModeTransit: "transit",
	TravelModeBike:    "bicycling",
	TravelModeWalk:    "walking",
}

// average door-to-door speeds in mph, used for geodesic duration estimates
var averageSpeedMph = map[TravelMode]float64{
	TravelModeCar:     25,
	TravelModeTransit: 12,
	TravelModeBike:    10,
	TravelModeWalk:    3,
}

func ParseTravelMode(s string) (TravelMode, error) {
	m := TravelMode(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := providerModes[m]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTravelMode, s)
	}
	return m, nil
}

// ProviderMode maps the mode to the remote provider's vocabulary.
func (m TravelMode) ProviderMode() string {
	return providerModes[m]
}

// AverageSpeedMph returns 0 for an unknown mode.
func (m TravelMode) AverageSpeedMph() float64 {
	return averageSpeedMph[m]
}

// UnitSystem - единицы, в которых провайдер возвращает расстояния.
type UnitSystem string

const (
	UnitsImperial UnitSystem = "imperial"
	UnitsMetric   UnitSystem = "metric"
)

func ParseUnitSystem(s string) (UnitSystem, error) {
	u := UnitSystem(strings.ToLower(strings.TrimSpace(s)))
	switch u {
	case UnitsImperial, UnitsMetric:
		return u, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownUnitSystem, s)
}

// FromMeters converts a provider distance (always meters on the wire) into the unit system.
func (u UnitSystem) FromMeters(m float64) float64 {
	km := m / 1000
	if u == UnitsMetric {
		return km
	}
	return km * milesPerKm
}
