package config

import (
	"os"
	"strings"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string

	// AuditWriteMode selects the ledger's persistence-failure policy:
	// "best-effort" (default) or "strict".
	AuditWriteMode string

	// PostgresDSN enables the durable audit store when set; empty keeps the
	// in-memory store (single-instance deployments, development).
	PostgresDSN string

	// KafkaBrokers enables the audit stream publisher when non-empty.
	KafkaBrokers []string
	AuditTopic   string

	Redis RedisConfig
}

// RedisConfig captures the shared Redis pool settings.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("MERIDIAN_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	writeMode := os.Getenv("MERIDIAN_AUDIT_WRITE_MODE")
	if writeMode == "" {
		writeMode = "best-effort"
	}

	var brokers []string
	if raw := os.Getenv("MERIDIAN_KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}
	topic := os.Getenv("MERIDIAN_AUDIT_TOPIC")
	if topic == "" {
		topic = "meridian.audit.events"
	}

	return Server{
		Addr:           addr,
		JWTSigningKey:  jwtSigningKey,
		AuditWriteMode: writeMode,
		PostgresDSN:    os.Getenv("MERIDIAN_POSTGRES_DSN"),
		KafkaBrokers:   brokers,
		AuditTopic:     topic,
		Redis: RedisConfig{
			URL:          os.Getenv("MERIDIAN_REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
	}
}
