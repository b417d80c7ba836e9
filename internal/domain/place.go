package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Origin - зона отправления (block group), ID - код block group.
type Origin struct {
	ID       string   `json:"origin_id" db:"origin_id"`
	Location GeoPoint `json:"location"`
}

// Destination - точка интереса из каталога.
type Destination struct {
	ID       string   `json:"place_id" db:"place_id"`
	Name     string   `json:"name" db:"name"`
	Location GeoPoint `json:"location"`
	Category Category `json:"category" db:"category"`
}

// ValidateOrigins checks coordinates and rejects repeated IDs.
func ValidateOrigins(origins []Origin) error {
	seen := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if _, ok := seen[o.ID]; ok {
			return fmt.Errorf("%w: origin %q", ErrDuplicateID, o.ID)
		}
		seen[o.ID] = struct{}{}
		if err := o.Location.Validate(); err != nil {
			return fmt.Errorf("origin %q: %w", o.ID, err)
		}
	}
	return nil
}

// ValidateDestinations checks coordinates and categories and rejects repeated IDs.
func ValidateDestinations(destinations []Destination) error {
	seen := make(map[string]struct{}, len(destinations))
	for _, d := range destinations {
		if _, ok := seen[d.ID]; ok {
			return fmt.Errorf("%w: destination %q", ErrDuplicateID, d.ID)
		}
		seen[d.ID] = struct{}{}
		if err := d.Location.Validate(); err != nil {
			return fmt.Errorf("destination %q: %w", d.ID, err)
		}
		if !d.Category.IsValid() {
			return fmt.Errorf("destination %q: %w: %q", d.ID, ErrUnknownCategory, d.Category)
		}
	}
	return nil
}

// GeoAttributes - атрибуты block group, в которую попадает точка.
type GeoAttributes struct {
	BlockGroup        string `json:"block_group" db:"block_group"`
	NeighborhoodLong  string `json:"neighborhood_long" db:"neighborhood_long"`
	NeighborhoodShort string `json:"neighborhood_short" db:"neighborhood_short"`
	CouncilDistrict   string `json:"council_district" db:"council_district"`
	UrbanVillage      string `json:"urban_village" db:"urban_village"`
	Zipcode           string `json:"zipcode" db:"zipcode"`
}

// Run - метаданные одного построения таблицы расстояний.
type Run struct {
	ID        uuid.UUID    `json:"run_id" db:"run_id"`
	Provider  string       `json:"provider" db:"provider"`
	Mode      TravelMode   `json:"mode" db:"mode"`
	Units     UnitSystem   `json:"units" db:"units"`
	Counts    StatusCounts `json:"counts"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
}
