package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// DefaultUpstreamURL is the production backend host used when
// UPSTREAM_BASE_URL is not set.
const DefaultUpstreamURL = "https://cabadmin-backend-production.up.railway.app"

// ServerConfig captures all tunable parameters for the dashboard gateway
// process. Values are primarily loaded from environment variables with sane
// defaults so the binary can run locally without excessive setup.
type ServerConfig struct {
	HTTPAddr        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	UpstreamBaseURL string
	UpstreamTimeout time.Duration

	PollInterval     time.Duration
	SaveQuietPeriod  time.Duration
	StatusResetDelay time.Duration

	RedisAddr     string
	RedisPassword string
	SessionTTL    time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	PGDSN     string
	StripeKey string

	LogLevel string
}

func defaultServerConfig() ServerConfig {
	return ServerConfig{
		HTTPAddr:         ":8080",
		ReadTimeout:      5 * time.Second,
		WriteTimeout:     10 * time.Second,
		IdleTimeout:      120 * time.Second,
		ShutdownTimeout:  15 * time.Second,
		UpstreamBaseURL:  DefaultUpstreamURL,
		UpstreamTimeout:  10 * time.Second,
		PollInterval:     5 * time.Second,
		SaveQuietPeriod:  500 * time.Millisecond,
		StatusResetDelay: 5 * time.Second,
		SessionTTL:       12 * time.Hour,
		KafkaTopic:       "booking-events",
		LogLevel:         "info",
	}
}

func LoadServerConfig() (ServerConfig, error) {
	cfg := defaultServerConfig()
	var errs []error

	setStringFromEnv(&cfg.HTTPAddr, "HTTP_ADDR")
	setDurationFromEnv(&cfg.ReadTimeout, "HTTP_READ_TIMEOUT", &errs)
	setDurationFromEnv(&cfg.WriteTimeout, "HTTP_WRITE_TIMEOUT", &errs)
	setDurationFromEnv(&cfg.IdleTimeout, "HTTP_IDLE_TIMEOUT", &errs)
	setDurationFromEnv(&cfg.ShutdownTimeout, "HTTP_SHUTDOWN_TIMEOUT", &errs)

	setStringFromEnv(&cfg.UpstreamBaseURL, "UPSTREAM_BASE_URL")
	setDurationFromEnv(&cfg.UpstreamTimeout, "UPSTREAM_TIMEOUT", &errs)

	setDurationFromEnv(&cfg.PollInterval, "NOTIFY_POLL_INTERVAL", &errs)
	setDurationFromEnv(&cfg.SaveQuietPeriod, "RATES_SAVE_QUIET_PERIOD", &errs)
	setDurationFromEnv(&cfg.StatusResetDelay, "RATES_STATUS_RESET_DELAY", &errs)

	cfg.RedisAddr = strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	setDurationFromEnv(&cfg.SessionTTL, "SESSION_TTL", &errs)

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = splitAndTrim(brokers)
	}
	setStringFromEnv(&cfg.KafkaTopic, "KAFKA_TOPIC")

	cfg.PGDSN = os.Getenv("PG_DSN")
	cfg.StripeKey = os.Getenv("STRIPE_API_KEY")

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}

	if cfg.UpstreamBaseURL = strings.TrimRight(cfg.UpstreamBaseURL, "/"); cfg.UpstreamBaseURL == "" {
		errs = append(errs, fmt.Errorf("UPSTREAM_BASE_URL must not be empty"))
	}
	if cfg.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("NOTIFY_POLL_INTERVAL must be > 0"))
	}
	if cfg.SaveQuietPeriod <= 0 {
		errs = append(errs, fmt.Errorf("RATES_SAVE_QUIET_PERIOD must be > 0"))
	}

	return cfg, errors.Join(errs...)
}

func setDurationFromEnv(target *time.Duration, key string, errs *[]error) {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
			return
		}
		*target = d
	}
}

func setStringFromEnv(target *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*target = v
	}
}

func splitAndTrim(v string) []string {
	raw := strings.Split(v, ",")
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		out = append(out, r)
	}
	return out
}
