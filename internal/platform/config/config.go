package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Server captures process-level configuration so main stays lean. Every
// backend is optional: with nothing set the service runs fully in memory,
// which is the development and test default.
type Server struct {
	Addr string `env:"EBIRTH_ADDR" envDefault:":8080"`

	// DatabaseURL switches the registration store to postgres when set.
	DatabaseURL string `env:"EBIRTH_DATABASE_URL"`

	// RedisURL moves daily sequence allocation onto redis when set.
	RedisURL string `env:"EBIRTH_REDIS_URL"`

	// KafkaBrokers enables the Kafka audit sink when non-empty.
	KafkaBrokers []string `env:"EBIRTH_KAFKA_BROKERS"`
	AuditTopic   string   `env:"EBIRTH_AUDIT_TOPIC" envDefault:"ebirth.audit"`

	// SMSGatewayURL selects the HTTP SMS gateway; empty logs messages.
	SMSGatewayURL string `env:"EBIRTH_SMS_GATEWAY_URL"`

	ShutdownTimeout time.Duration `env:"EBIRTH_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// FromEnv builds a Server config from environment variables.
func FromEnv() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
