package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TenantClaims identify the business an operator token acts for.
type TenantClaims struct {
	TenantID string `json:"tenant_id"`
	jwt.RegisteredClaims
}

func GenerateTenantToken(tenantID, issuer, secretKey string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = TenantTokenTTL
	}
	now := time.Now()

	claims := &TenantClaims{
		TenantID: tenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   tenantID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secretKey))
}

func ValidateTenantToken(tokenString, issuer, secretKey string) (*TenantClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &TenantClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secretKey), nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*TenantClaims)
	if !ok || !token.Valid {
		return nil, errors.New(ErrInvalidToken)
	}
	if claims.TenantID == "" {
		claims.TenantID = claims.Subject
	}
	if claims.TenantID == "" {
		return nil, errors.New("token carries no tenant")
	}
	return claims, nil
}
