package config

const (
	AuthProviderFirebase = "firebase"
	AuthProviderJWT      = "jwt"
)

// AuthConfig selects how tenant (business) tokens are verified. Firebase is
// the production path; JWT is a shared-secret fallback for local setups.
type AuthConfig struct {
	Provider           string   `yaml:"provider"`
	FirebaseProjectID  string   `yaml:"firebase_project_id"`
	FirebaseCredFile   string   `yaml:"firebase_credentials_file"`
	JWTSecret          string   `yaml:"jwt_secret"`
	JWTIssuer          string   `yaml:"jwt_issuer"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
}

func loadAuthConfig() *AuthConfig {
	return &AuthConfig{
		Provider:           getEnv("AUTH_PROVIDER", AuthProviderJWT),
		FirebaseProjectID:  getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseCredFile:   getEnv("FIREBASE_CREDENTIALS_FILE", ""),
		JWTSecret:          getEnv("JWT_SECRET", "change-me"),
		JWTIssuer:          getEnv("JWT_ISSUER", ""),
		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}
}
