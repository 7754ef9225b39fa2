package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// MediaConfig selects and configures the thumbnail hosting backend.
type MediaConfig struct {
	Provider string
	Folder   string

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	S3Bucket          string
	S3Region          string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3PublicBaseURL   string

	GCSBucket          string
	GCSCredentialsFile string
}

// MailConfig selects and configures the OTP mail transport.
type MailConfig struct {
	Provider       string
	SMTPHost       string
	SMTPPort       int
	SMTPEmail      string
	SMTPPassword   string
	SendGridAPIKey string
	FromName       string
}

// DevJWTSecret signs tokens when JWT_SECRET is unset in development.
const DevJWTSecret = "dev-secret"

const envDevelopment = "development"

// Config aggregates application-wide configuration values.
type Config struct {
	Environment   string
	DatabaseURL   string
	JWTSecret     string
	Port          string
	TokenTTL      time.Duration
	AdminUsername string
	AdminPassword string
	CookieSecure  bool

	RateLimitOTP RateLimitConfig
	RedisURL     string

	OTPTTL             time.Duration
	OTPSingleUse       bool
	DefaultPhoneRegion string

	Media MediaConfig
	Mail  MailConfig

	SentryDSN         string
	SentryEnvironment string
	LogLevel          string
	LogFormat         string
}

// Load reads configuration from environment variables and applies sane defaults.
func Load() (*Config, error) {
	env := strings.ToLower(getEnv("APP_ENV", envDevelopment))
	cfg := &Config{
		Environment:        env,
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		Port:               getEnv("PORT", "8080"),
		TokenTTL:           parseDuration(getEnv("JWT_TTL", "12h"), 12*time.Hour),
		AdminUsername:      getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:      os.Getenv("ADMIN_PASSWORD"),
		CookieSecure:       parseBool(getEnv("COOKIE_SECURE", "false")),
		RedisURL:           os.Getenv("REDIS_URL"),
		OTPTTL:             parseDuration(getEnv("OTP_TTL", "5m"), 5*time.Minute),
		OTPSingleUse:       parseBool(getEnv("OTP_SINGLE_USE", "false")),
		DefaultPhoneRegion: strings.ToUpper(getEnv("DEFAULT_PHONE_REGION", "IN")),
		Media: MediaConfig{
			Provider:            strings.ToLower(getEnv("MEDIA_PROVIDER", "none")),
			Folder:              getEnv("MEDIA_FOLDER", getEnv("CLOUDINARY_FOLDER", "businesses")),
			CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
			CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
			CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),
			S3Bucket:            os.Getenv("S3_BUCKET"),
			S3Region:            getEnv("S3_REGION", "us-east-1"),
			S3AccessKeyID:       os.Getenv("S3_ACCESS_KEY_ID"),
			S3SecretAccessKey:   os.Getenv("S3_SECRET_ACCESS_KEY"),
			S3PublicBaseURL:     os.Getenv("S3_PUBLIC_BASE_URL"),
			GCSBucket:           os.Getenv("GCS_BUCKET"),
			GCSCredentialsFile:  os.Getenv("GCS_CREDENTIALS_FILE"),
		},
		Mail: MailConfig{
			Provider:       strings.ToLower(getEnv("MAIL_PROVIDER", "log")),
			SMTPHost:       getEnv("SMTP_HOST", "smtp.gmail.com"),
			SMTPEmail:      os.Getenv("SMTP_EMAIL"),
			SMTPPassword:   os.Getenv("SMTP_PASSWORD"),
			SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
			FromName:       getEnv("MAIL_FROM_NAME", "Business Directory"),
		},
		SentryDSN:         os.Getenv("SENTRY_DSN"),
		SentryEnvironment: getEnv("SENTRY_ENVIRONMENT", env),
		LogLevel:          strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:         strings.ToLower(getEnv("LOG_FORMAT", "json")),
	}

	if cfg.JWTSecret == "" {
		if cfg.Environment != envDevelopment {
			return nil, fmt.Errorf("JWT_SECRET is required when APP_ENV is %q", cfg.Environment)
		}
		cfg.JWTSecret = DevJWTSecret
	}

	port, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil || port <= 0 {
		return nil, fmt.Errorf("invalid SMTP_PORT value: %q", os.Getenv("SMTP_PORT"))
	}
	cfg.Mail.SMTPPort = port

	rl, err := parseRateLimit(getEnv("RATE_LIMIT_OTP", "5/min"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_OTP value: %w", err)
	}
	cfg.RateLimitOTP = rl

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Media.Provider {
	case "none":
	case "cloudinary":
		if c.Media.CloudinaryCloudName == "" || c.Media.CloudinaryAPIKey == "" || c.Media.CloudinaryAPISecret == "" {
			return fmt.Errorf("cloudinary media provider requires CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET")
		}
	case "s3":
		if c.Media.S3Bucket == "" {
			return fmt.Errorf("s3 media provider requires S3_BUCKET")
		}
	case "gcs":
		if c.Media.GCSBucket == "" {
			return fmt.Errorf("gcs media provider requires GCS_BUCKET")
		}
	default:
		return fmt.Errorf("unsupported MEDIA_PROVIDER: %s", c.Media.Provider)
	}

	switch c.Mail.Provider {
	case "log":
	case "smtp":
		if c.Mail.SMTPEmail == "" || c.Mail.SMTPPassword == "" {
			return fmt.Errorf("smtp mail provider requires SMTP_EMAIL and SMTP_PASSWORD")
		}
	case "sendgrid":
		if c.Mail.SendGridAPIKey == "" || c.Mail.SMTPEmail == "" {
			return fmt.Errorf("sendgrid mail provider requires SENDGRID_API_KEY and SMTP_EMAIL")
		}
	default:
		return fmt.Errorf("unsupported MAIL_PROVIDER: %s", c.Mail.Provider)
	}
	return nil
}

func parseRateLimit(value string) (RateLimitConfig, error) {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return RateLimitConfig{}, fmt.Errorf("expected format <requests>/<interval>, got %q", value)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || requests <= 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid request count: %v", parts[0])
	}

	unit := strings.ToLower(strings.TrimSpace(parts[1]))
	var interval time.Duration
	switch unit {
	case "s", "sec", "second", "seconds":
		interval = time.Second
	case "m", "min", "minute", "minutes":
		interval = time.Minute
	case "h", "hr", "hour", "hours":
		interval = time.Hour
	default:
		return RateLimitConfig{}, fmt.Errorf("unsupported interval unit: %s", unit)
	}

	return RateLimitConfig{Requests: requests, Interval: interval}, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseDuration(input string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(input)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parseBool(input string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(input))
	return err == nil && v
}
