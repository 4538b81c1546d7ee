// Package config reads process configuration from the environment so main
// stays lean.
package config

import (
	"os"
	"strings"
	"time"
)

// Server captures everything the server binary needs to start.
type Server struct {
	Addr          string
	JWTSigningKey string

	// DatabaseURL selects the postgres backend; when empty the in-memory
	// stores are used (development and tests).
	DatabaseURL string

	// RedisURL enables the cohort-name cache; empty disables it.
	RedisURL string

	// KafkaBrokers enables the Kafka notifier and the audit relay; empty
	// falls back to the log notifier and sync audit writes.
	KafkaBrokers       []string
	NotificationsTopic string
	AuditTopic         string

	// VerificationCutoff grandfathers profiles created before the
	// email-verification feature shipped.
	VerificationCutoff time.Time

	// EnforceCohortCapacity turns seat limits from advisory into blocking.
	EnforceCohortCapacity bool

	ShutdownTimeout time.Duration
}

// defaultVerificationCutoff is the day email verification shipped. Override
// with ENROLLMENT_VERIFICATION_CUTOFF (RFC 3339) when backfilling.
const defaultVerificationCutoff = "2025-03-01T00:00:00Z"

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	cfg := Server{
		Addr:               envOr("ACADEMY_ADDR", ":8080"),
		JWTSigningKey:      envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisURL:           os.Getenv("REDIS_URL"),
		NotificationsTopic: envOr("KAFKA_NOTIFICATIONS_TOPIC", "academy.notifications"),
		AuditTopic:         envOr("KAFKA_AUDIT_TOPIC", "academy.audit"),
		ShutdownTimeout:    10 * time.Second,
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	cutoff := envOr("ENROLLMENT_VERIFICATION_CUTOFF", defaultVerificationCutoff)
	if t, err := time.Parse(time.RFC3339, cutoff); err == nil {
		cfg.VerificationCutoff = t
	}

	cfg.EnforceCohortCapacity = os.Getenv("ENROLLMENT_ENFORCE_COHORT_CAPACITY") == "true"

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
