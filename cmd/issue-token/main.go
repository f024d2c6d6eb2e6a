// Command issue-token prints an HS256 tenant token for AUTH_PROVIDER=jwt
// deployments and local testing.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"loyaltycard/internal/config"
	"loyaltycard/internal/utils"
)

func main() {
	tenantID := flag.String("tenant", "", "tenant ID to embed in the token")
	ttl := flag.Duration("ttl", utils.TenantTokenTTL, "token lifetime")
	flag.Parse()

	if *tenantID == "" {
		log.Fatal("-tenant is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Auth.Provider != config.AuthProviderJWT {
		log.Printf("warning: AUTH_PROVIDER is %q, the server will not accept this token", cfg.Auth.Provider)
	}

	token, err := utils.GenerateTenantToken(*tenantID, cfg.Auth.JWTIssuer, cfg.Auth.JWTSecret, *ttl)
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}

	fmt.Println(token)
	fmt.Printf("expires: %s\n", time.Now().Add(*ttl).UTC().Format(time.RFC3339))
}
