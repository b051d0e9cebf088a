package service

import (
	"errors"
	"fmt"

	"github.com/geocoder89/pupsorders/internal/domain/order"
	"github.com/geocoder89/pupsorders/internal/domain/user"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrAlreadyRegistered = errors.New("email already registered")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrNotFound          = errors.New("not found")
	// ErrUnsupportedVersion is the catalog miss; errors.Is matches order.ErrUnsupportedVersion too.
	ErrUnsupportedVersion = order.ErrUnsupportedVersion
	// ErrUnavailable marks store timeouts and transport failures. It is the only retryable error.
	ErrUnavailable = errors.New("store unavailable")
)

// storeErr translates a store error into the service taxonomy. Domain sentinels
// stay reachable through errors.Is so callers can tell a missing user from a missing order.
func storeErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, user.ErrNotFound), errors.Is(err, order.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, user.ErrEmailTaken):
		return fmt.Errorf("%w: %w", ErrAlreadyRegistered, err)
	default:
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
}

// IsRetryable reports whether the caller may retry the same request unchanged.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
