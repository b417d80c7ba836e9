package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCoordinate   = errors.New("invalid coordinate")
	ErrProviderUnavailable = errors.New("distance provider unavailable")
	ErrProviderRejected    = errors.New("distance provider rejected request")
	ErrMalformedResponse   = errors.New("malformed provider response")
	ErrInvalidQuota        = errors.New("invalid quota")
	ErrUnknownCategory     = errors.New("unknown category")
	ErrUnknownTravelMode   = errors.New("unknown travel mode")
	ErrUnknownUnitSystem   = errors.New("unknown unit system")
	ErrDuplicateID         = errors.New("duplicate id")
	ErrNotFound            = errors.New("not found")
	ErrInvalidEvent        = errors.New("invalid stream event")
)

// ProviderRejectedError carries the provider's top-level status and its
// error_message verbatim.
type ProviderRejectedError struct {
	Status  string
	Message string
}

func (e *ProviderRejectedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: %s", ErrProviderRejected, e.Status)
	}
	return fmt.Sprintf("%s: %s: %s", ErrProviderRejected, e.Status, e.Message)
}

func (e *ProviderRejectedError) Unwrap() error {
	return ErrProviderRejected
}
