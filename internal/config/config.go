package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/intunedeck/intunedeck/internal/types"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment DeploymentConfig `validate:"required"`
	Server     ServerConfig     `validate:"required"`
	Logging    LoggingConfig    `validate:"required"`
	Auth       AuthConfig       `validate:"required"`
	Graph      GraphConfig      `validate:"required"`
	RateLimit  RateLimitConfig  `validate:"required"`
	Cache      CacheConfig
	Sentry     SentryConfig
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required"`
}

type ServerConfig struct {
	Address string `validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

// AuthConfig carries the Azure AD app registration used for the
// client-credentials token flow.
type AuthConfig struct {
	TenantID     string `mapstructure:"tenant_id"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	Scope        string `mapstructure:"scope"`
	TokenURL     string `mapstructure:"token_url"`
}

type GraphConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
	PageSize int           `mapstructure:"page_size"`
}

// RateLimitConfig bounds outbound Graph traffic. RequestsPerWindow calls are
// allowed per Window; Workers is the size of the assignment worker pool.
type RateLimitConfig struct {
	RequestsPerWindow int           `mapstructure:"requests_per_window"`
	Window            time.Duration `mapstructure:"window"`
	Burst             int           `mapstructure:"burst"`
	MaxRetries        int           `mapstructure:"max_retries"`
	MaxBackoff        time.Duration `mapstructure:"max_backoff"`
	Workers           int           `mapstructure:"workers"`
}

type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

func NewConfig() (*Configuration, error) {
	// Load .env for local development; missing file is fine
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/intunedeck")

	// Set up environment variables support
	v.SetEnvPrefix("INTUNEDECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file if exists
	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", types.ModeAPI)
	v.SetDefault("server.address", ":8080")
	v.SetDefault("logging.level", types.LogLevelInfo)
	v.SetDefault("auth.scope", "https://graph.microsoft.com/.default")
	v.SetDefault("graph.base_url", "https://graph.microsoft.com/beta")
	v.SetDefault("graph.timeout", 30*time.Second)
	v.SetDefault("graph.page_size", 100)
	v.SetDefault("ratelimit.requests_per_window", 100)
	v.SetDefault("ratelimit.window", 20*time.Second)
	v.SetDefault("ratelimit.burst", 10)
	v.SetDefault("ratelimit.max_retries", 3)
	v.SetDefault("ratelimit.max_backoff", 2*time.Minute)
	v.SetDefault("ratelimit.workers", 3)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", 15*time.Minute)
}

func (c Configuration) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// GetDefaultConfig returns a default configuration for local development
// This is useful for running scripts or other non-web applications
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		Graph: GraphConfig{
			BaseURL:  "https://graph.microsoft.com/beta",
			Timeout:  30 * time.Second,
			PageSize: 100,
		},
		RateLimit: RateLimitConfig{
			RequestsPerWindow: 100,
			Window:            20 * time.Second,
			Burst:             10,
			MaxRetries:        3,
			MaxBackoff:        2 * time.Minute,
			Workers:           3,
		},
		Cache: CacheConfig{Enabled: true, TTL: 15 * time.Minute},
	}
}

// TokenEndpoint returns the Azure AD v2 token endpoint for the tenant unless
// an explicit override is configured.
func (c AuthConfig) TokenEndpoint() string {
	if c.TokenURL != "" {
		return c.TokenURL
	}
	return fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", c.TenantID)
}
