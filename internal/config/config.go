package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Port                             string `mapstructure:"PORT"`
	GinMode                          string `mapstructure:"GIN_MODE"`
	ClientURL                        string `mapstructure:"CLIENT_URL"`
	PublicBaseURL                    string `mapstructure:"PUBLIC_BASE_URL"` // Used to build Stripe return URLs
	StaticDir                        string `mapstructure:"STATIC_DIR"`      // Built SPA (index.html + assets)
	FirebaseProjectID                string `mapstructure:"FIREBASE_PROJECT_ID"`
	GoogleApplicationCredentials     string `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseServiceAccountJSONBase64 string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64"`
	AnthropicAPIKey                  string `mapstructure:"ANTHROPIC_API_KEY"`
	AnthropicModel                   string `mapstructure:"ANTHROPIC_MODEL"`
	StripeSecretKey                  string `mapstructure:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret              string `mapstructure:"STRIPE_WEBHOOK_SECRET"`
	RedisURL                         string `mapstructure:"REDIS_URL"` // Optional second tier for profiles

	ProfileCacheTTL       time.Duration `mapstructure:"PROFILE_CACHE_TTL"`
	SessionResolveTimeout time.Duration `mapstructure:"SESSION_RESOLVE_TIMEOUT"`
	SessionIdleTTL        time.Duration `mapstructure:"SESSION_IDLE_TTL"`
	SessionUnreportedTTL  time.Duration `mapstructure:"SESSION_UNREPORTED_TTL"`
	SessionCookieSecure   bool          `mapstructure:"SESSION_COOKIE_SECURE"`

	// Feedback notifications; disabled when SMTPHost is empty.
	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     string `mapstructure:"SMTP_PORT"`
	SMTPUser     string `mapstructure:"SMTP_USER"`
	SMTPPass     string `mapstructure:"SMTP_PASS"`
	SupportEmail string `mapstructure:"SUPPORT_EMAIL"`
	MailFrom     string `mapstructure:"MAIL_FROM"`
}

var appConfig *Config

var envKeys = []string{
	"PORT",
	"GIN_MODE",
	"CLIENT_URL",
	"PUBLIC_BASE_URL",
	"STATIC_DIR",
	"FIREBASE_PROJECT_ID",
	"GOOGLE_APPLICATION_CREDENTIALS",
	"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64",
	"ANTHROPIC_API_KEY",
	"ANTHROPIC_MODEL",
	"STRIPE_SECRET_KEY",
	"STRIPE_WEBHOOK_SECRET",
	"REDIS_URL",
	"PROFILE_CACHE_TTL",
	"SESSION_RESOLVE_TIMEOUT",
	"SESSION_IDLE_TTL",
	"SESSION_UNREPORTED_TTL",
	"SESSION_COOKIE_SECURE",
	"SMTP_HOST",
	"SMTP_PORT",
	"SMTP_USER",
	"SMTP_PASS",
	"SUPPORT_EMAIL",
	"MAIL_FROM",
}

// LoadConfig loads configuration from environment variables using Viper.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("STATIC_DIR", "dist")
	v.SetDefault("ANTHROPIC_MODEL", "claude-3-haiku-20240307")
	v.SetDefault("PROFILE_CACHE_TTL", "5m")
	v.SetDefault("SESSION_RESOLVE_TIMEOUT", "10s")
	v.SetDefault("SESSION_IDLE_TTL", "24h")
	v.SetDefault("SESSION_UNREPORTED_TTL", "5m")
	v.SetDefault("SESSION_COOKIE_SECURE", false)
	v.SetDefault("SMTP_PORT", "587")

	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, errors.New("failed to bind env " + key + ": " + err.Error())
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.New("failed to unmarshal config: " + err.Error())
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	appConfig = &cfg
	return appConfig, nil
}

// Validate checks that required settings are present and consistent.
func (c *Config) Validate() error {
	if c.FirebaseProjectID == "" {
		return errors.New("FIREBASE_PROJECT_ID is required")
	}
	if c.AnthropicAPIKey == "" {
		return errors.New("ANTHROPIC_API_KEY is required")
	}
	if c.StripeSecretKey == "" {
		return errors.New("STRIPE_SECRET_KEY is required")
	}
	if c.StripeWebhookSecret == "" {
		return errors.New("STRIPE_WEBHOOK_SECRET is required")
	}
	if c.PublicBaseURL == "" {
		return errors.New("PUBLIC_BASE_URL is required")
	}
	if c.SessionResolveTimeout <= 0 {
		return errors.New("SESSION_RESOLVE_TIMEOUT must be positive")
	}
	if c.SessionIdleTTL <= 0 {
		return errors.New("SESSION_IDLE_TTL must be positive")
	}
	if c.SMTPHost != "" && c.SupportEmail == "" {
		return errors.New("SUPPORT_EMAIL is required when SMTP_HOST is set")
	}
	return nil
}

// IsRelease reports whether gin should run in release mode.
func (c *Config) IsRelease() bool {
	return strings.EqualFold(c.GinMode, "release")
}

// GetConfig returns the loaded application configuration.
// It will panic if LoadConfig has not been called successfully.
func GetConfig() *Config {
	if appConfig == nil {
		panic("config not loaded; call LoadConfig first")
	}
	return appConfig
}
