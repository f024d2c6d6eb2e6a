package services

import (
	"errors"
	"fmt"
)

// Error kinds returned by the services. Handlers map them to HTTP statuses
// with errors.Is.
var (
	ErrValidation               = errors.New("validation failed")
	ErrLimitReached             = errors.New("customer limit reached for plan")
	ErrNotificationLimitReached = errors.New("monthly notification limit reached for plan")
	ErrWalletProvider           = errors.New("wallet provider failed")
	ErrWalletSync               = errors.New("wallet sync failed")
	ErrMalformedPayload         = errors.New("malformed scan payload")
	ErrTenantMismatch           = errors.New("scan belongs to another tenant")
	ErrNotFound                 = errors.New("customer not found")
	ErrTenantNotFound           = errors.New("tenant not found")
	ErrInactive                 = errors.New("customer is inactive")
	ErrNoRewardsAvailable       = errors.New("no rewards available")
	ErrScanInProgress           = errors.New("another scan for this customer is in progress")
	ErrConcurrentModification   = errors.New("customer was modified concurrently")
)

// walletError keeps both the error kind and the provider's cause reachable
// through errors.Is and errors.As.
func walletError(kind error, op string, cause error) error {
	return errors.Join(kind, fmt.Errorf("%s: %w", op, cause))
}
