package config

import "time"

type WalletConfig struct {
	AppleBaseURL   string        `yaml:"apple_base_url"`
	AndroidBaseURL string        `yaml:"android_base_url"`
	ClassID        string        `yaml:"class_id"`
	Timeout        time.Duration `yaml:"timeout"`
}

func loadWalletConfig() *WalletConfig {
	return &WalletConfig{
		AppleBaseURL:   getEnv("WALLET_APPLE_API_BASE_URL", ""),
		AndroidBaseURL: getEnv("WALLET_ANDROID_API_BASE_URL", ""),
		ClassID:        getEnv("WALLET_CLASS_ID", ""),
		Timeout:        getEnvAsDuration("WALLET_TIMEOUT", 10*time.Second),
	}
}
