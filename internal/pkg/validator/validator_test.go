package validator_test

import (
	"errors"
	"testing"

	"github.com/basket-ranking/internal/pkg/validator"
	"github.com/basket-ranking/internal/usecase/dto"
	gpvalidator "github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	t.Run("valid measure request", func(t *testing.T) {
		err := validator.Validate(&dto.MeasureRequest{
			Origin:      dto.Point{Lat: 47.6, Lon: -122.3},
			Destination: dto.Point{Lat: 0, Lon: 0},
		})
		assert.NoError(t, err)
	})

	t.Run("field names come from json tags", func(t *testing.T) {
		err := validator.Validate(&dto.LocateRequest{Lat: 91, Lon: -200})
		require.Error(t, err)

		var verrs gpvalidator.ValidationErrors
		require.True(t, errors.As(err, &verrs))
		fields := []string{}
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
		assert.ElementsMatch(t, []string{"lat", "lon"}, fields)
	})

	t.Run("negative quota count", func(t *testing.T) {
		err := validator.Validate(&dto.BasketRequest{Quota: map[string]int{"park": -1}})
		assert.Error(t, err)
	})

	t.Run("too many points", func(t *testing.T) {
		err := validator.Validate(&dto.BuildRunRequest{Points: make([]dto.Point, 1001)})
		assert.Error(t, err)
	})
}
