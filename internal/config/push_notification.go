package config

// PushConfig configures the APNs client used to tell Apple Wallet that a
// pass changed. The topic is the pass type identifier, not an app bundle ID.
type PushConfig struct {
	APNS *APNSConfig `yaml:"apns"`
}

type APNSConfig struct {
	Enabled      bool   `yaml:"enabled"`
	KeyID        string `yaml:"key_id"`
	TeamID       string `yaml:"team_id"`
	PassTypeID   string `yaml:"pass_type_id"`
	KeyFile      string `yaml:"key_file"`
	Production   bool   `yaml:"production"`
	PassKitToken string `yaml:"passkit_auth_token"`
}

func loadPushConfig() *PushConfig {
	return &PushConfig{
		APNS: &APNSConfig{
			Enabled:      getEnvAsBool("APNS_ENABLED", false),
			KeyID:        getEnv("APNS_KEY_ID", ""),
			TeamID:       getEnv("APNS_TEAM_ID", ""),
			PassTypeID:   getEnv("APNS_PASS_TYPE_ID", ""),
			KeyFile:      getEnv("APNS_KEY_FILE", ""),
			Production:   getEnvAsBool("APNS_PRODUCTION", false),
			PassKitToken: getEnv("PASSKIT_AUTH_TOKEN", ""),
		},
	}
}
