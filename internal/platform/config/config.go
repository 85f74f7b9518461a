package config

import (
	"net/netip"
	"os"
	"strings"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr          string
	MasterKey     string
	JWTSigningKey string
	ViewTokenTTL  time.Duration

	// TrustedProxies lists the peers allowed to set forwarding headers.
	// Empty means forwarding headers are never trusted.
	TrustedProxies []netip.Prefix

	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
}

// DatabaseConfig holds PostgreSQL connection settings.
// An empty URL means in-memory stores are used instead.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds Redis connection settings.
// An empty URL means the in-memory revocation list is used instead.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds settings for the audit event stream.
// Empty brokers disable Kafka mirroring; the outbox still records entries.
type KafkaConfig struct {
	Brokers string
	Topic   string
}

// ViewTokenTTL is how long an issued one-time view token stays valid.
var ViewTokenTTL = 120 * time.Second

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("CASESEAL_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	masterKey := os.Getenv("CASESEAL_MASTER_KEY")
	if masterKey == "" {
		// Development default - must be overridden in production
		masterKey = "dev-master-key-change-in-production"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	viewTokenTTL := ViewTokenTTL
	if raw := os.Getenv("VIEW_TOKEN_TTL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			viewTokenTTL = d
		}
	}

	topic := os.Getenv("KAFKA_AUDIT_TOPIC")
	if topic == "" {
		topic = "caseseal.audit.events"
	}

	return Server{
		Addr:           addr,
		MasterKey:      masterKey,
		JWTSigningKey:  jwtSigningKey,
		ViewTokenTTL:   viewTokenTTL,
		TrustedProxies: ParseTrustedProxies(os.Getenv("TRUSTED_PROXIES")),
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers: os.Getenv("KAFKA_BROKERS"),
			Topic:   topic,
		},
	}
}

// ParseTrustedProxies parses a comma-separated list of CIDR prefixes or
// plain addresses. Entries that don't parse are skipped; a plain address
// becomes a single-host prefix.
func ParseTrustedProxies(raw string) []netip.Prefix {
	var out []netip.Prefix
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if prefix, err := netip.ParsePrefix(part); err == nil {
			out = append(out, prefix)
			continue
		}
		if addr, err := netip.ParseAddr(part); err == nil {
			out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
		}
	}
	return out
}
