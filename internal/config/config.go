// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP API server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// JWTPrivateKey is the PEM-encoded private key (RSA or ECDSA) or path to file; used with JWT_PUBLIC_KEY for RS256/ES256.
	JWTPrivateKey string `mapstructure:"JWT_PRIVATE_KEY"`
	// JWTPublicKey is the PEM-encoded public key or path to file; used with JWT_PRIVATE_KEY.
	JWTPublicKey string `mapstructure:"JWT_PUBLIC_KEY"`
	// JWTIssuer is the iss claim (e.g. "clientflow-auth"); required when auth is enabled.
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// JWTAudience is the aud claim (e.g. "clientflow-api"); required when auth is enabled.
	JWTAudience string `mapstructure:"JWT_AUDIENCE"`
	// JWTAccessTTL is the access token lifetime (e.g. "15m").
	JWTAccessTTL string `mapstructure:"JWT_ACCESS_TTL"`
	// JWTRefreshTTL is the refresh token lifetime (e.g. "168h").
	JWTRefreshTTL string `mapstructure:"JWT_REFRESH_TTL"`
	// BcryptCost is the bcrypt cost factor (4 to 31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`

	// AIAPIKey is the API key for the OpenAI-compatible LLM endpoint. Required for follow-up, summary, and scoring features.
	AIAPIKey string `mapstructure:"AI_API_KEY"`
	// AIBaseURL is the base URL of the OpenAI-compatible API (default https://api.openai.com/v1).
	AIBaseURL string `mapstructure:"AI_BASE_URL"`
	// AIChatModel is the model for chat completions (follow-ups and summaries).
	AIChatModel string `mapstructure:"AI_CHAT_MODEL"`
	// AIVisionModel is the model for document/image scoring.
	AIVisionModel string `mapstructure:"AI_VISION_MODEL"`

	// MailAPIKey is the API key for the transactional mail provider. Required for email automations.
	MailAPIKey string `mapstructure:"MAIL_API_KEY"`
	// MailBaseURL is the mail provider send endpoint.
	MailBaseURL string `mapstructure:"MAIL_BASE_URL"`
	// MailFrom is the From address for outbound automation emails.
	MailFrom string `mapstructure:"MAIL_FROM"`

	// SchedulerInterval is how often the worker polls for due automations (e.g. "30s").
	SchedulerInterval string `mapstructure:"SCHEDULER_INTERVAL"`
	// AutomationPolicy is Rego source overriding the default run-eligibility policy; inline or a file path. Empty uses the built-in default.
	AutomationPolicy string `mapstructure:"AUTOMATION_POLICY"`

	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`

	// OTLPEndpoint enables OpenTelemetry export when set (e.g. http://localhost:4317).
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`
	// OTLPInsecure forces plaintext OTLP even for https endpoints (standard OTEL_EXPORTER_OTLP_INSECURE behavior).
	OTLPInsecure bool `mapstructure:"OTLP_INSECURE"`

	// Activity events (optional). When Kafka brokers are set, the API server emits activity events to Kafka.
	// ActivityKafkaBrokers is a comma-separated list of Kafka broker addresses (e.g. "localhost:9092").
	ActivityKafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// ActivityKafkaTopic is the Kafka topic for activity events (default clientflow-activity).
	ActivityKafkaTopic string `mapstructure:"ACTIVITY_KAFKA_TOPIC"`

	// Worker-only: Loki URL for the activity worker to push events (e.g. http://localhost:3100).
	LokiURL string `mapstructure:"LOKI_URL"`
	// KafkaGroupID is the consumer group ID for the activity worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_ISSUER", "clientflow-auth")
	v.SetDefault("JWT_AUDIENCE", "clientflow-api")
	v.SetDefault("JWT_ACCESS_TTL", "15m")
	v.SetDefault("JWT_REFRESH_TTL", "168h") // 7d
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("AI_BASE_URL", "https://api.openai.com/v1")
	v.SetDefault("AI_CHAT_MODEL", "gpt-4o-mini")
	v.SetDefault("AI_VISION_MODEL", "gpt-4o")
	v.SetDefault("MAIL_BASE_URL", "https://api.resend.com/emails")
	v.SetDefault("MAIL_FROM", "")
	v.SetDefault("SCHEDULER_INTERVAL", "30s")
	v.SetDefault("AUTOMATION_POLICY", "")
	v.SetDefault("APP_ENV", "")
	v.SetDefault("OTLP_ENDPOINT", "")
	v.SetDefault("OTLP_INSECURE", false)
	v.SetDefault("ACTIVITY_KAFKA_TOPIC", "clientflow-activity")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("LOKI_URL", "")
	v.SetDefault("KAFKA_GROUP_ID", "clientflow-activity-worker")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	return &cfg, nil
}

// AccessTTL parses JWTAccessTTL as a time.Duration. Returns 15m if unset or invalid.
func (c *Config) AccessTTL() time.Duration {
	d, err := time.ParseDuration(c.JWTAccessTTL)
	if err != nil || d <= 0 {
		return 15 * time.Minute
	}
	return d
}

// RefreshTTL parses JWTRefreshTTL as a time.Duration. Returns 168h if unset or invalid.
func (c *Config) RefreshTTL() time.Duration {
	d, err := time.ParseDuration(c.JWTRefreshTTL)
	if err != nil || d <= 0 {
		return 168 * time.Hour
	}
	return d
}

// SchedulerPollInterval parses SchedulerInterval as a time.Duration. Returns 30s if unset or invalid.
func (c *Config) SchedulerPollInterval() time.Duration {
	d, err := time.ParseDuration(c.SchedulerInterval)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// ActivityKafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if activity events are enabled (non-empty list) and to create the producer.
func (c *Config) ActivityKafkaBrokersList() []string {
	if c == nil || c.ActivityKafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.ActivityKafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
