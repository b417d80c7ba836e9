package errors

import (
	"errors"
	"net/http"

	"github.com/basket-ranking/internal/domain"
	"github.com/go-playground/validator/v10"
)

var (
	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrInvalidCoordinates = New(
		"INVALID_COORDINATES",
		"Invalid coordinates provided",
		http.StatusBadRequest,
	)

	ErrInvalidQuota = New(
		"INVALID_QUOTA",
		"Invalid quota",
		http.StatusBadRequest,
	)

	ErrUnknownCategory = New(
		"UNKNOWN_CATEGORY",
		"Unknown destination category",
		http.StatusBadRequest,
	)

	ErrDuplicateID = New(
		"DUPLICATE_ID",
		"Duplicate origin or destination id",
		http.StatusBadRequest,
	)

	ErrNotFound = New(
		"NOT_FOUND",
		"Resource not found",
		http.StatusNotFound,
	)

	ErrProviderRejected = New(
		"PROVIDER_REJECTED",
		"Distance provider rejected the request",
		http.StatusBadGateway,
	)

	ErrProviderUnavailable = New(
		"PROVIDER_UNAVAILABLE",
		"Distance provider unavailable",
		http.StatusBadGateway,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)

// FromError переводит ошибку слоя usecase/domain в AppError для ответа API
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		fields := make(map[string]interface{}, len(validationErrs))
		for _, fe := range validationErrs {
			fields[fe.Namespace()] = fe.Tag()
		}
		return ErrInvalidRequest.WithDetails(map[string]interface{}{"fields": fields})
	}

	var rejected *domain.ProviderRejectedError
	if errors.As(err, &rejected) {
		return ErrProviderRejected.WithDetails(map[string]interface{}{
			"status":  rejected.Status,
			"message": rejected.Message,
		})
	}

	switch {
	case errors.Is(err, domain.ErrInvalidCoordinate):
		return ErrInvalidCoordinates.WithMessage(err.Error())
	case errors.Is(err, domain.ErrInvalidQuota):
		return ErrInvalidQuota.WithMessage(err.Error())
	case errors.Is(err, domain.ErrUnknownCategory),
		errors.Is(err, domain.ErrUnknownTravelMode),
		errors.Is(err, domain.ErrUnknownUnitSystem):
		return ErrUnknownCategory.WithMessage(err.Error())
	case errors.Is(err, domain.ErrDuplicateID):
		return ErrDuplicateID.WithMessage(err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, domain.ErrProviderRejected):
		return ErrProviderRejected
	case errors.Is(err, domain.ErrProviderUnavailable),
		errors.Is(err, domain.ErrMalformedResponse):
		return ErrProviderUnavailable
	}

	return ErrInternalServer
}
