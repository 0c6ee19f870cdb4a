// Package config builds runtime configuration from environment variables
// so main stays lean.
package config

import (
	"os"
	"strings"
	"time"
)

// Server captures process level configuration.
type Server struct {
	Addr        string
	PostgresDSN string
	TxTimeout   time.Duration

	// Kafka settings for the audit outbox relay. An empty broker list
	// disables the relay; audit events stay queued in the outbox table.
	KafkaBrokers []string
	AuditTopic   string
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	addr := os.Getenv("DRAMCASK_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	txTimeout := 5 * time.Second
	if raw := os.Getenv("DRAMCASK_TX_TIMEOUT"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil {
			txTimeout = parsed
		}
	}

	var brokers []string
	if raw := os.Getenv("DRAMCASK_KAFKA_BROKERS"); raw != "" {
		for _, broker := range strings.Split(raw, ",") {
			if broker = strings.TrimSpace(broker); broker != "" {
				brokers = append(brokers, broker)
			}
		}
	}

	topic := os.Getenv("DRAMCASK_AUDIT_TOPIC")
	if topic == "" {
		topic = "dramcask.audit.v1"
	}

	return Server{
		Addr:         addr,
		PostgresDSN:  os.Getenv("DRAMCASK_POSTGRES_DSN"),
		TxTimeout:    txTimeout,
		KafkaBrokers: brokers,
		AuditTopic:   topic,
	}
}
