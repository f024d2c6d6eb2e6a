package auth

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// TenantClaim lets an ID token name its tenant explicitly. Without it the
// Firebase UID of the business account is the tenant ID.
const TenantClaim = "tenant_id"

type idTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

type FirebaseVerifier struct {
	client idTokenVerifier
}

func NewFirebaseVerifier(ctx context.Context, projectID, credentialsFile string) (*FirebaseVerifier, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get auth client: %w", err)
	}

	return &FirebaseVerifier{client: client}, nil
}

func (f *FirebaseVerifier) VerifyTenantToken(ctx context.Context, token string) (string, error) {
	decoded, err := f.client.VerifyIDToken(ctx, token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if tenantID, ok := decoded.Claims[TenantClaim].(string); ok && tenantID != "" {
		return tenantID, nil
	}
	if decoded.UID == "" {
		return "", ErrInvalidToken
	}
	return decoded.UID, nil
}
