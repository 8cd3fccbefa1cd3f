// Package config loads the service configuration from a YAML file with
// environment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gartstein/jobboard/internal/jobboard/db"
	"github.com/gartstein/jobboard/internal/jobboard/events"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the service looks for its configuration file.
const DefaultPath = "internal/jobboard/config/config.yaml"

// Config struct for YAML configuration
type Config struct {
	GRPCPort       int           `yaml:"GRPC_PORT"`
	HTTPPort       int           `yaml:"HTTP_PORT"`
	RequestTimeout time.Duration `yaml:"REQUEST_TIMEOUT"`
	LogLevel       string        `yaml:"LOG_LEVEL"`

	DBHost            string        `yaml:"DB_HOST"`
	DBPort            int           `yaml:"DB_PORT"`
	DBUser            string        `yaml:"DB_USER"`
	DBPassword        string        `yaml:"DB_PASSWORD"`
	DBName            string        `yaml:"DB_NAME"`
	DBSSLMode         string        `yaml:"DB_SSLMODE"`
	DBMaxOpenConns    int           `yaml:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns    int           `yaml:"DB_MAX_IDLE_CONNS"`
	DBConnMaxLifetime time.Duration `yaml:"DB_CONN_MAX_LIFETIME"`
	DBConnectTimeout  time.Duration `yaml:"DB_CONNECT_TIMEOUT"`

	JWTSecret string `yaml:"JWT_SECRET"`

	KafkaBrokers      []string      `yaml:"KAFKA_BROKERS"`
	Topic             string        `yaml:"TOPIC"`
	TopicPartitions   int           `yaml:"TOPIC_PARTITIONS"`
	ProducerQueueSize int           `yaml:"PRODUCER_QUEUE_SIZE"`
	RelayGroupID      string        `yaml:"RELAY_GROUP_ID"`
	DispatchInterval  time.Duration `yaml:"DISPATCH_INTERVAL"`
	DispatchBatchSize int           `yaml:"DISPATCH_BATCH_SIZE"`
}

func defaults() *Config {
	return &Config{
		GRPCPort:          50051,
		HTTPPort:          8080,
		RequestTimeout:    15 * time.Second,
		LogLevel:          "info",
		DBHost:            "localhost",
		DBPort:            5432,
		DBSSLMode:         "disable",
		DBConnectTimeout:  30 * time.Second,
		Topic:             "notifications",
		TopicPartitions:   1,
		RelayGroupID:      "jobboard-relay",
		DispatchInterval:  5 * time.Second,
		DispatchBatchSize: 100,
	}
}

// Load reads the YAML file at path, then applies a .env file from the
// working directory (if any) and the process environment on top of it.
// A missing file is not an error; the defaults and environment are used.
func Load(path string) (*Config, error) {
	cfg := defaults()

	file, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	// .env is optional; variables already set in the environment win.
	_ = godotenv.Load()

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type lookupFunc func(key string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	strs := map[string]*string{
		"LOG_LEVEL":      &c.LogLevel,
		"DB_HOST":        &c.DBHost,
		"DB_USER":        &c.DBUser,
		"DB_PASSWORD":    &c.DBPassword,
		"DB_NAME":        &c.DBName,
		"DB_SSLMODE":     &c.DBSSLMode,
		"JWT_SECRET":     &c.JWTSecret,
		"TOPIC":          &c.Topic,
		"RELAY_GROUP_ID": &c.RelayGroupID,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"GRPC_PORT":           &c.GRPCPort,
		"HTTP_PORT":           &c.HTTPPort,
		"DB_PORT":             &c.DBPort,
		"DISPATCH_BATCH_SIZE": &c.DispatchBatchSize,
	}
	for key, dst := range ints {
		v, ok := lookup(key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = n
	}

	durations := map[string]*time.Duration{
		"REQUEST_TIMEOUT":   &c.RequestTimeout,
		"DISPATCH_INTERVAL": &c.DispatchInterval,
	}
	for key, dst := range durations {
		v, ok := lookup(key)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = d
	}

	if v, ok := lookup("KAFKA_BROKERS"); ok {
		c.KafkaBrokers = splitList(v)
	}
	return nil
}

// Validate reports the first setting the service cannot start with.
func (c *Config) Validate() error {
	switch {
	case c.HTTPPort <= 0 || c.HTTPPort > 65535:
		return fmt.Errorf("invalid HTTP_PORT %d", c.HTTPPort)
	case c.GRPCPort <= 0 || c.GRPCPort > 65535:
		return fmt.Errorf("invalid GRPC_PORT %d", c.GRPCPort)
	case c.GRPCPort == c.HTTPPort:
		return fmt.Errorf("GRPC_PORT and HTTP_PORT must differ")
	case strings.TrimSpace(c.JWTSecret) == "":
		return fmt.Errorf("JWT_SECRET is required")
	case c.DBName == "":
		return fmt.Errorf("DB_NAME is required")
	case len(c.KafkaBrokers) > 0 && c.Topic == "":
		return fmt.Errorf("TOPIC is required when KAFKA_BROKERS is set")
	case c.DispatchInterval < 0:
		return fmt.Errorf("DISPATCH_INTERVAL must not be negative")
	}
	return nil
}

// KafkaEnabled reports whether notifications are pushed to Kafka.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// Database returns the repository settings.
func (c *Config) Database() *db.Config {
	return &db.Config{
		Host:            c.DBHost,
		Port:            c.DBPort,
		User:            c.DBUser,
		Password:        c.DBPassword,
		DBName:          c.DBName,
		SSLMode:         c.DBSSLMode,
		MaxOpenConns:    c.DBMaxOpenConns,
		MaxIdleConns:    c.DBMaxIdleConns,
		ConnMaxLifetime: c.DBConnMaxLifetime,
	}
}

// Producer returns the Kafka producer settings.
func (c *Config) Producer() events.ProducerConfig {
	return events.ProducerConfig{
		Brokers:    c.KafkaBrokers,
		Topic:      c.Topic,
		Partitions: c.TopicPartitions,
		QueueSize:  c.ProducerQueueSize,
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
