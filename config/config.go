package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. ZENDESK_ZENDESK_TOKEN
const EnvPrefix = "ZENDESK"

// Load loads the configuration from file, .env and the environment.
// A missing config file is not an error when configPath is empty.
func Load(configPath string) (*Config, error) {
	// Load .env if present
	_ = godotenv.Load()

	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Environment variables override file values

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Check current directory
		v.AddConfigPath(".")

		// Check home directory

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".zendesk"))
		}

		// Check system directory
		v.AddConfigPath("/etc/zendesk/")
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || configPath != "" {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	// Unmarshal config
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values. Every key is registered
// so AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("zendesk.subdomain", "")
	v.SetDefault("zendesk.api_url", "")
	v.SetDefault("zendesk.email", "")
	v.SetDefault("zendesk.token", "")
	v.SetDefault("zendesk.password", "")
	v.SetDefault("zendesk.oauth_token", "")

	v.SetDefault("oauth.client_id", "")
	v.SetDefault("oauth.client_secret", "")
	v.SetDefault("oauth.redirect_uri", "")
	v.SetDefault("oauth.token_url", "")

	v.SetDefault("http.timeout", 30)
	v.SetDefault("http.insecure_skip_verify", false)
	v.SetDefault("http.user_agent", "zendesk-go")
	v.SetDefault("http.concurrency", 5)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	// Validate Zendesk configuration
	if cfg.Zendesk.Subdomain == "" {
		return fmt.Errorf("zendesk.subdomain is required")
	}

	if cfg.Zendesk.Token != "" && cfg.Zendesk.Password != "" {
		return fmt.Errorf("zendesk.token and zendesk.password are mutually exclusive")
	}

	if (cfg.Zendesk.Token != "" || cfg.Zendesk.Password != "") && cfg.Zendesk.Email == "" {
		return fmt.Errorf("zendesk.email is required with token or password authentication")
	}

	// Validate HTTP configuration
	if cfg.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout must be positive seconds")
	}

	if cfg.HTTP.Concurrency <= 0 {
		return fmt.Errorf("http.concurrency must be positive")
	}

	// Validate logging configuration
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}
