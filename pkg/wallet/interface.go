package wallet

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnsupported is returned for operations a provider's pass model does not
// have, such as a points delta on a pass that carries counters.
var ErrUnsupported = errors.New("operation not supported by wallet provider")

// Provider keeps a customer's digital wallet pass in step with the loyalty
// record. Every call is bounded by the provider's timeout and never retried.
type Provider interface {
	Name() string
	CreatePass(ctx context.Context, request *PassRequest) (*PassReference, error)
	UpdatePassCounters(ctx context.Context, update *CounterUpdate) error
	AdjustPoints(ctx context.Context, customerID string, delta int) error
	Notify(ctx context.Context, customerID, message string) error
}

type PassRequest struct {
	CustomerID string `json:"customer_id"`
	Name       string `json:"name"`
	Surname    string `json:"surname"`
}

// PassReference is where the customer installs the pass.
type PassReference struct {
	Provider string `json:"provider"`
	URL      string `json:"url"`
}

// CounterUpdate is the absolute state shown on a counter-carrying pass.
type CounterUpdate struct {
	CustomerID       string
	CycleVisits      int
	RewardsAvailable int64
}

// PassRefresher is implemented by providers whose passes are pulled again by
// the device after a push. RefreshPass is best effort and bounded by the
// provider's timeout; it returns the tokens reported as no longer registered.
type PassRefresher interface {
	RefreshPass(ctx context.Context, customerID string, pushTokens []string) (unregistered []string)
}

// APIError is a non-2xx answer from a wallet service.
type APIError struct {
	Provider string
	Endpoint string
	Status   int
	Body     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s wallet %s returned %d: %s", e.Provider, e.Endpoint, e.Status, e.Body)
}
