package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	DatabaseURL string
	Port        string
	GoEnv       string
	LogLevel    string

	// Token signing. JWTSecret has no default on purpose.
	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
	TokenTTL    time.Duration
	OTPTTL      time.Duration
	AdminEmails []string

	// Origins used for CORS and OAuth redirects
	FrontendURL  string
	DashboardURL string

	AWSRegion          string
	AWSS3Bucket        string
	AWSAccessKeyID     string
	AWSSecretAccessKey string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	// Meta lead-ads provider
	MetaAccessToken string
	MetaVerifyToken string
	MetaGraphURL    string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	RedisURL     string
	RedisChannel string
}

// Load loads the configuration from environment variables
// It automatically determines which .env file to load based on GO_ENV
func Load() (*Config, error) {
	v := newViper()

	env := v.GetString("GO_ENV")

	// Try to load environment-specific file first
	envFile := fmt.Sprintf(".env.%s", env)
	if err := godotenv.Load(envFile); err != nil {
		if err := godotenv.Load(); err != nil {
			// In production environment variables are set directly
			log.Printf("No .env file found, using system environment variables")
		}
	} else {
		log.Printf("Loaded configuration from %s", envFile)
	}

	config := &Config{
		DatabaseURL: v.GetString("DATABASE_URL"),
		Port:        v.GetString("PORT"),
		GoEnv:       v.GetString("GO_ENV"),
		LogLevel:    v.GetString("LOG_LEVEL"),

		JWTSecret:   v.GetString("JWT_SECRET"),
		JWTIssuer:   v.GetString("JWT_ISSUER"),
		JWTAudience: v.GetString("JWT_AUDIENCE"),
		TokenTTL:    v.GetDuration("TOKEN_TTL"),
		OTPTTL:      v.GetDuration("OTP_TTL"),
		AdminEmails: splitList(v.GetString("ADMIN_EMAILS")),

		FrontendURL:  v.GetString("FRONTEND_URL"),
		DashboardURL: v.GetString("DASHBOARD_URL"),

		AWSRegion:          v.GetString("AWS_REGION"),
		AWSS3Bucket:        v.GetString("AWS_S3_BUCKET"),
		AWSAccessKeyID:     v.GetString("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey: v.GetString("AWS_SECRET_ACCESS_KEY"),

		SMTPHost:     v.GetString("SMTP_HOST"),
		SMTPPort:     v.GetInt("SMTP_PORT"),
		SMTPUsername: v.GetString("SMTP_USERNAME"),
		SMTPPassword: v.GetString("SMTP_PASSWORD"),
		SMTPFrom:     v.GetString("SMTP_FROM"),

		MetaAccessToken: v.GetString("META_ACCESS_TOKEN"),
		MetaVerifyToken: v.GetString("META_VERIFY_TOKEN"),
		MetaGraphURL:    strings.TrimSuffix(v.GetString("META_GRAPH_URL"), "/"),

		GoogleClientID:     v.GetString("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: v.GetString("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  v.GetString("GOOGLE_REDIRECT_URL"),

		RedisURL:     v.GetString("REDIS_URL"),
		RedisChannel: v.GetString("REDIS_CHANNEL"),
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// newViper builds a viper instance bound to the process environment.
// Values loaded by godotenv land in the environment, so they are visible
// here as well because AutomaticEnv reads lazily.
func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("GO_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("JWT_ISSUER", "autoparts-api")
	v.SetDefault("JWT_AUDIENCE", "autoparts-dashboard")
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("OTP_TTL", "10m")
	v.SetDefault("FRONTEND_URL", "http://localhost:3000")
	v.SetDefault("DASHBOARD_URL", "http://localhost:3001")
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("META_GRAPH_URL", "https://graph.facebook.com/v19.0")
	v.SetDefault("REDIS_CHANNEL", "dashboard-events")

	return v
}

// Validate checks that all required configuration values are set
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be a positive duration")
	}
	return nil
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// IsTest returns true if the application is running in test mode
func (c *Config) IsTest() bool {
	return c.GoEnv == "test"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// IsAdminEmail reports whether the address is listed in ADMIN_EMAILS
func (c *Config) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, admin := range c.AdminEmails {
		if admin == email {
			return true
		}
	}
	return false
}

// AllowedOrigins returns the browser origins allowed by CORS
func (c *Config) AllowedOrigins() []string {
	origins := make([]string, 0, 2)
	for _, o := range []string{c.FrontendURL, c.DashboardURL} {
		if o != "" {
			origins = append(origins, strings.TrimSuffix(o, "/"))
		}
	}
	return origins
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
