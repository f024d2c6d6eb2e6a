package auth

import (
	"context"
	"fmt"

	"loyaltycard/internal/utils"
)

// JWTVerifier accepts HS256 tokens carrying a tenant_id claim.
type JWTVerifier struct {
	secret string
	issuer string
}

func NewJWTVerifier(secret, issuer string) *JWTVerifier {
	return &JWTVerifier{secret: secret, issuer: issuer}
}

func (j *JWTVerifier) VerifyTenantToken(ctx context.Context, token string) (string, error) {
	claims, err := utils.ValidateTenantToken(token, j.issuer, j.secret)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims.TenantID, nil
}
