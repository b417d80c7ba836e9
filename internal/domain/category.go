package domain

import (
	"fmt"
	"strings"
)

// Category - класс назначения (grocery, park, ...). Набор закрыт.
type Category string

const (
	CategoryGrocery         Category = "grocery"
	CategoryPark            Category = "park"
	CategorySchool          Category = "school"
	CategoryLibrary         Category = "library"
	CategoryHospital        Category = "hospital"
	CategoryPharmacy        Category = "pharmacy"
	CategoryCommunityCenter Category = "community_center"
	CategoryRestaurant      Category = "restaurant"
	CategoryTransitHub      Category = "transit_hub"
	CategoryUrbanVillage    Category = "urban_village"
	CategoryCitywide        Category = "citywide"
)

var categories = []Category{
	CategoryGrocery,
	CategoryPark,
	CategorySchool,
	CategoryLibrary,
	CategoryHospital,
	CategoryPharmacy,
	CategoryCommunityCenter,
	CategoryRestaurant,
	CategoryTransitHub,
	CategoryUrbanVillage,
	CategoryCitywide,
}

// ValidCategories returns the closed category set in declaration order.
func ValidCategories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// IsValid reports whether c belongs to the closed set.
func (c Category) IsValid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

// ParseCategory is case-insensitive and trims whitespace.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}
