package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      *AppConfig      `yaml:"app"`
	Database *DatabaseConfig `yaml:"database"`
	Redis    *RedisConfig    `yaml:"redis"`
	Wallet   *WalletConfig   `yaml:"wallet"`
	Push     *PushConfig     `yaml:"push"`
	Auth     *AuthConfig     `yaml:"auth"`
	Scan     *ScanConfig     `yaml:"scan"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Environment string `yaml:"environment"`
	Port        int    `yaml:"port"`
	Host        string `yaml:"host"`
	PublicURL   string `yaml:"public_url"`
	Debug       bool   `yaml:"debug"`
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
}

// ScanConfig bounds the per-customer critical section of the accrual engine.
type ScanConfig struct {
	LockTTL      time.Duration `yaml:"lock_ttl"`
	LockWait     time.Duration `yaml:"lock_wait"`
	LockInterval time.Duration `yaml:"lock_interval"`
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	config := &Config{
		App:      loadAppConfig(),
		Database: loadDatabaseConfig(),
		Redis:    loadRedisConfig(),
		Wallet:   loadWalletConfig(),
		Push:     loadPushConfig(),
		Auth:     loadAuthConfig(),
		Scan:     loadScanConfig(),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Validate() error {
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("invalid APP_PORT %d", c.App.Port)
	}
	if c.Wallet.Timeout <= 0 {
		return fmt.Errorf("WALLET_TIMEOUT must be positive")
	}
	if c.Scan.LockTTL <= c.Wallet.Timeout {
		return fmt.Errorf("SCAN_LOCK_TTL (%s) must exceed WALLET_TIMEOUT (%s)", c.Scan.LockTTL, c.Wallet.Timeout)
	}
	switch c.Auth.Provider {
	case AuthProviderFirebase, AuthProviderJWT:
	default:
		return fmt.Errorf("unknown AUTH_PROVIDER %q", c.Auth.Provider)
	}
	switch c.Database.Driver {
	case DatabaseDriverMongo, DatabaseDriverMemory:
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.Database.Driver)
	}
	return nil
}

func loadAppConfig() *AppConfig {
	return &AppConfig{
		Name:        getEnv("APP_NAME", "LoyaltyCard"),
		Version:     getEnv("APP_VERSION", "1.0.0"),
		Environment: getEnv("APP_ENV", "development"),
		Port:        getEnvAsInt("APP_PORT", 8080),
		Host:        getEnv("APP_HOST", "localhost"),
		PublicURL:   strings.TrimRight(getEnv("APP_PUBLIC_URL", "http://localhost:8081"), "/"),
		Debug:       getEnvAsBool("APP_DEBUG", true),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "json"),
	}
}

func loadScanConfig() *ScanConfig {
	return &ScanConfig{
		LockTTL:      getEnvAsDuration("SCAN_LOCK_TTL", 30*time.Second),
		LockWait:     getEnvAsDuration("SCAN_LOCK_WAIT", 5*time.Second),
		LockInterval: getEnvAsDuration("SCAN_LOCK_INTERVAL", 50*time.Millisecond),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return defaultValue
}

func IsProduction() bool {
	return getEnv("APP_ENV", "development") == "production"
}

func IsDevelopment() bool {
	return getEnv("APP_ENV", "development") == "development"
}

func IsTest() bool {
	return getEnv("APP_ENV", "development") == "test"
}
