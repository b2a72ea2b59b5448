package config

import (
	"os"
	"strconv"
	"time"
)

// Authorizer holds configuration for the saga worker process.
// Constructed once at startup and passed by reference; no package-level
// mutable state.
type Authorizer struct {
	Addr             string
	DatabaseURL      string
	RedisURL         string
	RightsURL        string
	LedgerURL        string
	CallTimeout      time.Duration
	Kafka            Kafka
	MaxAttempts      int
	ConflictCacheTTL time.Duration
}

// Rights holds configuration for the rights service process.
type Rights struct {
	Addr        string
	DatabaseURL string
}

// Ledger holds configuration for the request ledger process.
type Ledger struct {
	Addr        string
	DatabaseURL string
	RightsURL   string
	CallTimeout time.Duration
	Kafka       Kafka
}

// Kafka holds broker-level settings shared by consumer and producer.
type Kafka struct {
	Brokers       string
	GroupID       string
	RequestsTopic string
}

// AuthorizerFromEnv builds the authorizer config from environment variables
// so main stays lean.
func AuthorizerFromEnv() Authorizer {
	return Authorizer{
		Addr:             envOr("GRANTFLOW_ADDR", ":8082"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		RightsURL:        envOr("RIGHTS_SERVICE_URL", "http://localhost:8081"),
		LedgerURL:        envOr("LEDGER_SERVICE_URL", "http://localhost:8080"),
		CallTimeout:      envDuration("HTTP_CALL_TIMEOUT", 10*time.Second),
		Kafka:            kafkaFromEnv(),
		MaxAttempts:      envInt("CONSUMER_MAX_ATTEMPTS", 5),
		ConflictCacheTTL: envDuration("CONFLICT_CACHE_TTL", 30*time.Second),
	}
}

// RightsFromEnv builds the rights service config.
func RightsFromEnv() Rights {
	return Rights{
		Addr:        envOr("GRANTFLOW_ADDR", ":8081"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
	}
}

// LedgerFromEnv builds the request ledger config.
func LedgerFromEnv() Ledger {
	return Ledger{
		Addr:        envOr("GRANTFLOW_ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RightsURL:   envOr("RIGHTS_SERVICE_URL", "http://localhost:8081"),
		CallTimeout: envDuration("HTTP_CALL_TIMEOUT", 10*time.Second),
		Kafka:       kafkaFromEnv(),
	}
}

func kafkaFromEnv() Kafka {
	return Kafka{
		Brokers:       envOr("KAFKA_BROKERS", "localhost:9092"),
		GroupID:       envOr("KAFKA_GROUP_ID", "grantflow-authorizer"),
		RequestsTopic: envOr("REQUESTS_TOPIC", "grantflow.access.requests"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
