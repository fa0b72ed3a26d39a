package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	API       APIConfig
	Log       LogConfig
	Telemetry TelemetryConfig
	Stub      StubConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
}

// APIConfig holds settings for the remote booking API
type APIConfig struct {
	// BaseURL is the root of the booking REST API, e.g. "http://localhost:3000"
	BaseURL string
	// IdentityURL is the root of the identity provider; defaults to BaseURL
	// so the bundled stub can serve both.
	IdentityURL string
	// Timeout bounds every outbound call
	Timeout time.Duration
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string  // OTLP gRPC endpoint, e.g. "localhost:4317"
	SamplingRatio     float64 // 0.0-1.0
	ServiceName       string
	Insecure          bool // non-TLS exporter connection (development only)
}

// StubConfig holds settings for the local stub API server
type StubConfig struct {
	Port         string
	JWTSecret    string
	CookieName   string
	CookieSecure bool
	Seed         bool // load the sample room inventory on startup
}

// Load loads configuration from a TOML file and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with BOOK_ prefix (e.g., BOOK_API_BASEURL)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.bookingkit")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Missing config file is fine, defaults and env vars apply.
	}

	v.SetEnvPrefix("BOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		API: APIConfig{
			BaseURL:     v.GetString("api.baseurl"),
			IdentityURL: v.GetString("api.identityurl"),
			Timeout:     v.GetDuration("api.timeout"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
		},
		Stub: StubConfig{
			Port:         v.GetString("stub.port"),
			JWTSecret:    v.GetString("stub.jwt_secret"),
			CookieName:   v.GetString("stub.cookie_name"),
			CookieSecure: v.GetBool("stub.cookie_secure"),
			Seed:         v.GetBool("stub.seed"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "bookingkit"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "http://localhost:3000"
	}
	if cfg.API.IdentityURL == "" {
		cfg.API.IdentityURL = cfg.API.BaseURL
	}
	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = 15 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Stub.Port == "" {
		cfg.Stub.Port = "3000"
	}
	if cfg.Stub.JWTSecret == "" && cfg.App.Env != "production" {
		cfg.Stub.JWTSecret = "development-only-secret-do-not-deploy"
	}
	if cfg.Stub.CookieName == "" {
		cfg.Stub.CookieName = "token"
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("api.baseurl must be an http(s) URL, got %q", c.API.BaseURL)
	}
	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}
	if c.App.Env == "production" {
		if c.Stub.JWTSecret == "" {
			return fmt.Errorf("stub.jwt_secret is required in production")
		}
		if len(c.Stub.JWTSecret) < 32 {
			return fmt.Errorf("stub.jwt_secret must be at least 32 characters in production")
		}
		if !c.Stub.CookieSecure {
			return fmt.Errorf("stub.cookie_secure must be true in production (HTTPS required)")
		}
	}
	return nil
}
