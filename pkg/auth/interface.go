package auth

import (
	"context"
	"errors"
)

// ErrInvalidToken is returned for any token that does not identify a tenant.
var ErrInvalidToken = errors.New("invalid tenant token")

// TenantVerifier resolves an operator's bearer token to the tenant it acts
// for.
type TenantVerifier interface {
	VerifyTenantToken(ctx context.Context, token string) (string, error)
}
