package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestBuildRequestedEvent_Validate(t *testing.T) {
	tests := []struct {
		name        string
		event       BuildRequestedEvent
		wantErr     error
		description string
	}{
		{
			name:        "empty event builds the whole catalog",
			event:       BuildRequestedEvent{JobID: uuid.New()},
			description: "No filters and no quota is a valid request",
		},
		{
			name: "known categories and quota",
			event: BuildRequestedEvent{
				JobID:      uuid.New(),
				Categories: []Category{CategoryGrocery, CategoryPark},
				Quota:      Quota{CategoryGrocery: 3, CategoryPark: 0},
			},
			description: "Zero is a valid quota count",
		},
		{
			name: "unknown category filter",
			event: BuildRequestedEvent{
				JobID:      uuid.New(),
				Categories: []Category{"casino"},
			},
			wantErr:     ErrUnknownCategory,
			description: "Category filters must come from the closed set",
		},
		{
			name: "negative quota",
			event: BuildRequestedEvent{
				JobID: uuid.New(),
				Quota: Quota{CategoryGrocery: -1},
			},
			wantErr:     ErrInvalidQuota,
			description: "Negative counts are rejected",
		},
		{
			name:        "missing job id",
			event:       BuildRequestedEvent{},
			wantErr:     ErrInvalidEvent,
			description: "A done event could not be correlated without it",
		},
		{
			name: "point out of range",
			event: BuildRequestedEvent{
				JobID:  uuid.New(),
				Points: []GeoPoint{{Lat: 47.6, Lon: -122.3}, {Lat: 95, Lon: 0}},
			},
			wantErr:     ErrInvalidCoordinate,
			description: "Raw points are validated before geocoding",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.event.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err, tt.description)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), tt.description)
		})
	}
}
