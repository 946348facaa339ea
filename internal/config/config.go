// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// SMS providers accepted in SMS_PROVIDER.
const (
	SMSProviderTwilio   = "twilio"
	SMSProviderSMSLocal = "smslocal"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// GRPCAddr is the address the gRPC server listens on (e.g. :8080).
	GRPCAddr string `mapstructure:"GRPC_ADDR"`
	// DatabaseURL is the Postgres DSN. Empty selects in-memory repositories (local development only).
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// SessionSecret signs guest session tokens and the admin token. The server refuses to start without it.
	SessionSecret string `mapstructure:"SESSION_SECRET"`
	// AdminPassword is the plaintext admin password, compared in constant time.
	AdminPassword string `mapstructure:"ADMIN_PASSWORD"`
	// AdminPasswordHash is an optional bcrypt hash; when set it is used instead of AdminPassword.
	AdminPasswordHash string `mapstructure:"ADMIN_PASSWORD_HASH"`
	// AdminTokenTTLRaw is the admin token max age advertised to clients (e.g. "8h").
	AdminTokenTTLRaw string `mapstructure:"ADMIN_TOKEN_TTL"`
	// BcryptCost is the bcrypt cost factor (4–31) used when hashing the admin password; default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`

	// SMSProvider selects the code dispatch adapter: "twilio" or "smslocal".
	SMSProvider string `mapstructure:"SMS_PROVIDER"`
	// TwilioAccountSID, TwilioAuthToken and TwilioFrom are the Twilio Messages credentials.
	TwilioAccountSID string `mapstructure:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken  string `mapstructure:"TWILIO_AUTH_TOKEN"`
	TwilioFrom       string `mapstructure:"TWILIO_FROM"`
	// SMSLocalAPIKey is the API key for SMS Local.
	SMSLocalAPIKey string `mapstructure:"SMS_LOCAL_API_KEY"`
	// SMSLocalSender is the optional sender ID for SMS Local.
	SMSLocalSender string `mapstructure:"SMS_LOCAL_SENDER"`
	// SMSLocalBaseURL is the SMS Local API base URL.
	SMSLocalBaseURL string `mapstructure:"SMS_LOCAL_BASE_URL"`

	// OTPTTLRaw is the code lifetime (e.g. "5m").
	OTPTTLRaw string `mapstructure:"OTP_TTL"`
	// OTPReturnToClient when true enables dev OTP mode: no SMS, code readable via DevService.GetCode. Refused when Env is production.
	OTPReturnToClient bool `mapstructure:"OTP_RETURN_TO_CLIENT"`
	// OTPDemoCodes when true derives the code from the phone number instead of crypto/rand. Insecure; refused when Env is production.
	OTPDemoCodes bool `mapstructure:"OTP_DEMO_CODES"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`

	// RedisURL enables the Redis send-code limiter (e.g. redis://localhost:6379/0). Empty uses the in-process limiter.
	RedisURL string `mapstructure:"REDIS_URL"`
	// SendCodeLimit is the number of codes a (event, phone) pair may request per SendCodeWindow.
	SendCodeLimit int `mapstructure:"SEND_CODE_LIMIT"`
	// SendCodeWindowRaw is the rate-limit window (e.g. "10m").
	SendCodeWindowRaw string `mapstructure:"SEND_CODE_WINDOW"`

	// OTLPEndpoint is the OTLP gRPC collector endpoint. Empty installs no-op providers.
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	// OTLPInsecure forces a plaintext connection to the collector.
	OTLPInsecure bool `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`

	// TelemetryKafkaBrokers is a comma-separated list of Kafka broker addresses (e.g. "localhost:9092").
	TelemetryKafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// TelemetryKafkaTopic is the Kafka topic for auth and response events.
	TelemetryKafkaTopic string `mapstructure:"TELEMETRY_KAFKA_TOPIC"`
	// Worker-only: Loki URL for the telemetry worker to push logs (e.g. http://localhost:3100).
	LokiURL string `mapstructure:"LOKI_URL"`
	// KafkaGroupID is the consumer group ID for the telemetry worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`
	// OTPPurgeIntervalRaw is how often the worker deletes stale OTP records (e.g. "1h").
	OTPPurgeIntervalRaw string `mapstructure:"OTP_PURGE_INTERVAL"`
	// OTPRetentionRaw is how long used or expired OTP records are kept before purge (e.g. "24h").
	OTPRetentionRaw string `mapstructure:"OTP_RETENTION"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	// Every key needs a default so Unmarshal sees env-only values.
	v.SetDefault("GRPC_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("SESSION_SECRET", "")
	v.SetDefault("ADMIN_PASSWORD", "")
	v.SetDefault("ADMIN_PASSWORD_HASH", "")
	v.SetDefault("ADMIN_TOKEN_TTL", "8h")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("SMS_PROVIDER", SMSProviderTwilio)
	v.SetDefault("TWILIO_ACCOUNT_SID", "")
	v.SetDefault("TWILIO_AUTH_TOKEN", "")
	v.SetDefault("TWILIO_FROM", "")
	v.SetDefault("SMS_LOCAL_API_KEY", "")
	v.SetDefault("SMS_LOCAL_SENDER", "")
	v.SetDefault("SMS_LOCAL_BASE_URL", "https://www.smslocal.com/dev/bulkV2")
	v.SetDefault("OTP_TTL", "5m")
	v.SetDefault("OTP_RETURN_TO_CLIENT", false)
	v.SetDefault("OTP_DEMO_CODES", false)
	v.SetDefault("APP_ENV", "")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("SEND_CODE_LIMIT", 5)
	v.SetDefault("SEND_CODE_WINDOW", "10m")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("TELEMETRY_KAFKA_TOPIC", "rsvp-telemetry")
	v.SetDefault("LOKI_URL", "")
	v.SetDefault("KAFKA_GROUP_ID", "rsvp-telemetry-worker")
	v.SetDefault("OTP_PURGE_INTERVAL", "1h")
	v.SetDefault("OTP_RETENTION", "24h")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.GRPCAddr == "" {
		return nil, errors.New("config: GRPC_ADDR must be set")
	}

	if cfg.Env == "production" {
		if cfg.OTPReturnToClient {
			return nil, errors.New("config: OTP_RETURN_TO_CLIENT must not be true when APP_ENV=production")
		}
		if cfg.OTPDemoCodes {
			return nil, errors.New("config: OTP_DEMO_CODES must not be true when APP_ENV=production")
		}
	}

	cfg.SMSProvider = strings.ToLower(strings.TrimSpace(cfg.SMSProvider))
	if cfg.SMSProvider != SMSProviderTwilio && cfg.SMSProvider != SMSProviderSMSLocal {
		return nil, errors.New("config: SMS_PROVIDER must be twilio or smslocal")
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	if cfg.SendCodeLimit < 0 {
		return nil, errors.New("config: SEND_CODE_LIMIT must not be negative")
	}

	return &cfg, nil
}

// OTPTTL parses OTPTTLRaw. Returns 5m if unset or invalid.
func (c *Config) OTPTTL() time.Duration {
	return parseDuration(c.OTPTTLRaw, 5*time.Minute)
}

// AdminTokenTTL parses AdminTokenTTLRaw. Returns 8h if unset or invalid.
func (c *Config) AdminTokenTTL() time.Duration {
	return parseDuration(c.AdminTokenTTLRaw, 8*time.Hour)
}

// SendCodeWindow parses SendCodeWindowRaw. Returns 10m if unset or invalid.
func (c *Config) SendCodeWindow() time.Duration {
	return parseDuration(c.SendCodeWindowRaw, 10*time.Minute)
}

// OTPPurgeInterval parses OTPPurgeIntervalRaw. Returns 1h if unset or invalid.
func (c *Config) OTPPurgeInterval() time.Duration {
	return parseDuration(c.OTPPurgeIntervalRaw, time.Hour)
}

// OTPRetention parses OTPRetentionRaw. Returns 24h if unset or invalid.
func (c *Config) OTPRetention() time.Duration {
	return parseDuration(c.OTPRetentionRaw, 24*time.Hour)
}

// DevOTPEnabled reports whether plaintext codes are kept for DevService. Never true in production.
func (c *Config) DevOTPEnabled() bool {
	return c != nil && c.OTPReturnToClient && c.Env != "production"
}

// TelemetryKafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if the Kafka producer is enabled (non-empty list).
func (c *Config) TelemetryKafkaBrokersList() []string {
	if c == nil || c.TelemetryKafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.TelemetryKafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
