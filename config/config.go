// Package config loads and validates the ctiscope service configuration.
package config

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// Config holds all configuration for the ctiscope service.
type Config struct {
	// DataDir is the base directory for the JSON document stores
	// (users.json, tickets.json, audit_log.json).
	DataDir string `mapstructure:"data_dir"`

	VirusTotal struct {
		APIKey  string        `mapstructure:"api_key"`
		BaseURL string        `mapstructure:"base_url"`
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"virustotal"`

	Feeds struct {
		// A feed source with an empty key is silently disabled.
		OTXAPIKey       string        `mapstructure:"otx_api_key"`
		AbuseIPDBAPIKey string        `mapstructure:"abuseipdb_api_key"`
		ShodanAPIKey    string        `mapstructure:"shodan_api_key"`
		Timeout         time.Duration `mapstructure:"timeout"`
	} `mapstructure:"feeds"`

	API struct {
		Host           string   `mapstructure:"host"`
		Port           int      `mapstructure:"port"`
		AllowedOrigins []string `mapstructure:"allowed_origins"`
	} `mapstructure:"api"`

	Auth struct {
		AdminUsername string `mapstructure:"admin_username"`
		AdminPassword string `mapstructure:"admin_password"`
		// AdminPasswordHash is derived from AdminPassword at load time and
		// is what the rest of the system compares against.
		AdminPasswordHash string
		BcryptCost        int           `mapstructure:"bcrypt_cost"`
		JWTSecret         string        `mapstructure:"jwt_secret"`
		JWTExpiry         time.Duration `mapstructure:"jwt_expiry"`
	} `mapstructure:"auth"`

	ThreatMap struct {
		ConfidenceMinimum int `mapstructure:"confidence_minimum"`
		Limit             int `mapstructure:"limit"`
	} `mapstructure:"threat_map"`
}

// LoadConfig loads configuration from config.yaml (if present), environment
// variables with the CTISCOPE prefix, and built-in defaults.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()
	loadFromEnv()

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found, will use defaults and env vars
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validateAndHash(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("data_dir", "./data")

	viper.SetDefault("virustotal.api_key", "")
	viper.SetDefault("virustotal.base_url", "https://www.virustotal.com/api/v3")
	viper.SetDefault("virustotal.timeout", 20*time.Second)

	viper.SetDefault("feeds.otx_api_key", "")
	viper.SetDefault("feeds.abuseipdb_api_key", "")
	viper.SetDefault("feeds.shodan_api_key", "")
	viper.SetDefault("feeds.timeout", 20*time.Second)

	viper.SetDefault("api.host", "0.0.0.0")
	viper.SetDefault("api.port", 8080)
	viper.SetDefault("api.allowed_origins", []string{"http://localhost:3000"})

	viper.SetDefault("auth.admin_username", "admin")
	viper.SetDefault("auth.admin_password", "")
	viper.SetDefault("auth.bcrypt_cost", bcrypt.DefaultCost)
	viper.SetDefault("auth.jwt_secret", "")
	viper.SetDefault("auth.jwt_expiry", 12*time.Hour)

	viper.SetDefault("threat_map.confidence_minimum", 85)
	viper.SetDefault("threat_map.limit", 20)
}

// loadFromEnv sets up environment variable loading
func loadFromEnv() {
	viper.SetEnvPrefix("CTISCOPE")
	viper.AutomaticEnv()

	// Explicit bindings so operators get the short, conventional names
	_ = viper.BindEnv("data_dir", "CTISCOPE_DATA_DIR")
	_ = viper.BindEnv("virustotal.api_key", "VT_API_KEY")
	_ = viper.BindEnv("feeds.otx_api_key", "OTX_API_KEY")
	_ = viper.BindEnv("feeds.abuseipdb_api_key", "ABUSEIPDB_API_KEY")
	_ = viper.BindEnv("feeds.shodan_api_key", "SHODAN_API_KEY")
	_ = viper.BindEnv("auth.jwt_secret", "CTISCOPE_JWT_SECRET")
	_ = viper.BindEnv("auth.admin_password", "CTISCOPE_ADMIN_PASSWORD")
}

// validateAndHash enforces startup invariants and hashes the admin password.
// The lookup pipeline cannot run without a VirusTotal key, so its absence is
// fatal. Feed source keys are optional; a missing key only disables that
// source.
func validateAndHash(config *Config) error {
	if config.VirusTotal.APIKey == "" {
		return fmt.Errorf("virustotal.api_key is required (set VT_API_KEY)")
	}

	if config.Auth.AdminPassword == "" {
		return fmt.Errorf("auth.admin_password is required (set CTISCOPE_ADMIN_PASSWORD)")
	}

	if config.Auth.BcryptCost < bcrypt.MinCost || config.Auth.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("auth.bcrypt_cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(config.Auth.AdminPassword), config.Auth.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	config.Auth.AdminPasswordHash = string(hashed)
	config.Auth.AdminPassword = ""

	// An ephemeral secret keeps single-instance deployments working;
	// sessions just don't survive a restart.
	if config.Auth.JWTSecret == "" {
		secret, err := generateSecret(32)
		if err != nil {
			return fmt.Errorf("failed to generate jwt secret: %w", err)
		}
		config.Auth.JWTSecret = secret
	}

	return nil
}

func generateSecret(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
