package config

import (
	"errors"
	"os"
	"time"

	env "github.com/caarlos0/env/v7"
	"github.com/joho/godotenv"
)

type Config struct {
	ServerAddr string `env:"SERVER_ADDR" envDefault:":8080"`

	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME" envDefault:"backoffice"`

	JWTSecret string `env:"JWT_SECRET"`

	// Interval for the scheduled denormalization sweep. Zero disables it.
	BackfillInterval time.Duration `env:"BACKFILL_INTERVAL" envDefault:"0"`

	// Kafka mirror for change events. Empty broker list disables it.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string   `env:"KAFKA_CHANGE_TOPIC" envDefault:"backoffice.changes"`

	// Audit archive export target. Empty bucket disables the endpoint.
	AuditBucket string `env:"AUDIT_S3_BUCKET"`
	AuditRegion string `env:"AUDIT_S3_REGION"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
