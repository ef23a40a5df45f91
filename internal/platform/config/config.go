// Package config builds runtime configuration from environment variables so
// main stays lean.
package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures top-level runtime configuration.
type Server struct {
	Addr          string
	PostgresURL   string
	Redis         RedisConfig
	Kafka         KafkaConfig
	JWTSigningKey string
	TokenIssuer   string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	// CodeTTL bounds how long an email/phone verification code stays valid.
	CodeTTL time.Duration
	// ResendWindow suppresses duplicate verification sends inside the window,
	// making the repeated sends of the save path idempotent.
	ResendWindow time.Duration
}

// RedisConfig configures the optional Redis-backed verification code store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the optional onboarding audit event stream.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	cfg := Server{
		Addr:          envOr("ONBOARD_ADDR", ":8080"),
		PostgresURL:   os.Getenv("ONBOARD_POSTGRES_URL"),
		JWTSigningKey: envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		TokenIssuer:   envOr("JWT_ISSUER", "onboard"),
		AccessTTL:     durationOr("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTTL:    durationOr("REFRESH_TOKEN_TTL", 30*24*time.Hour),
		CodeTTL:       durationOr("VERIFICATION_CODE_TTL", 10*time.Minute),
		ResendWindow:  durationOr("VERIFICATION_RESEND_WINDOW", time.Minute),
		Redis: RedisConfig{
			URL:          os.Getenv("ONBOARD_REDIS_URL"),
			PoolSize:     intOr("REDIS_POOL_SIZE", 10),
			MinIdleConns: intOr("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  durationOr("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  durationOr("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: durationOr("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
	}

	if brokers := os.Getenv("ONBOARD_KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka = KafkaConfig{
			Brokers: splitCSV(brokers),
			Topic:   envOr("ONBOARD_KAFKA_TOPIC", "onboarding.audit"),
		}
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func intOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func splitCSV(s string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if part := s[start:i]; part != "" {
				out = append(out, part)
			}
			start = i + 1
		}
	}
	return out
}
