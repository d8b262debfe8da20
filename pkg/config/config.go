// Package config loads and validates the reformulator configuration from a
// YAML file with environment-variable overrides. With no file the defaults
// reproduce the classic queries.txt -> queriesNew.txt run.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/Adithya-Monish-Kumar-K/query-reformulator/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Malformed-line policies.
const (
	OnMalformedFail = "fail"
	OnMalformedSkip = "skip"
)

// Empty-term policies.
const (
	EmptyTermsPreserve = "preserve"
	EmptyTermsCollapse = "collapse"
)

// DefaultWeights and DefaultFields are positionally paired.
var (
	DefaultWeights = []float64{0.1, 0.1, 0.1, 0.9, 0.1}
	DefaultFields  = []string{".url", ".keywords", ".title", ".body", ".inlink"}
)

// Config is the top-level application configuration.
type Config struct {
	Reformat ReformatConfig `yaml:"reformat"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
	Retry    RetryConfig    `yaml:"retry"`
}

// ReformatConfig controls the input/output files and the query template.
type ReformatConfig struct {
	InputPath   string    `yaml:"inputPath"`
	OutputPath  string    `yaml:"outputPath"`
	Weights     []float64 `yaml:"weights"`
	Fields      []string  `yaml:"fields"`
	OnMalformed string    `yaml:"onMalformed"`
	EmptyTerms  string    `yaml:"emptyTerms"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// KafkaConfig holds the broker list and topic for the Kafka mirror.
type KafkaConfig struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// RedisConfig holds Redis connection parameters for the Redis mirror.
type RedisConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Addr      string        `yaml:"addr"`
	Password  string        `yaml:"password"`
	DB        int           `yaml:"db"`
	PoolSize  int           `yaml:"poolSize"`
	KeyPrefix string        `yaml:"keyPrefix"`
	TTL       time.Duration `yaml:"ttl"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	Table           string        `yaml:"table"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// RetryConfig controls retries of mirror sink writes. AttemptTimeout bounds
// a single write or flush; zero disables it.
type RetryConfig struct {
	MaxAttempts    int           `yaml:"maxAttempts"`
	InitialDelay   time.Duration `yaml:"initialDelay"`
	MaxDelay       time.Duration `yaml:"maxDelay"`
	AttemptTimeout time.Duration `yaml:"attemptTimeout"`
}

// Load reads a YAML config file (if provided), applies environment-variable
// overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Reformat: ReformatConfig{
			InputPath:   "queries.txt",
			OutputPath:  "queriesNew.txt",
			Weights:     append([]float64(nil), DefaultWeights...),
			Fields:      append([]string(nil), DefaultFields...),
			OnMalformed: OnMalformedFail,
			EmptyTerms:  EmptyTermsPreserve,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
		},
		Kafka: KafkaConfig{
			Brokers: []string{"localhost:9092"},
			Topic:   "reformulated-queries",
		},
		Redis: RedisConfig{
			Addr:      "localhost:6379",
			PoolSize:  10,
			KeyPrefix: "query:",
			TTL:       24 * time.Hour,
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "queries",
			User:            "queries",
			Password:        "localdev",
			SSLMode:         "disable",
			Table:           "reformulated_queries",
			MaxOpenConns:    5,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Retry: RetryConfig{
			MaxAttempts:    3,
			InitialDelay:   100 * time.Millisecond,
			MaxDelay:       5 * time.Second,
			AttemptTimeout: 10 * time.Second,
		},
	}
}

// Validate checks policy names and the weight/field pairing.
func (c *Config) Validate() error {
	r := c.Reformat
	if r.InputPath == "" || r.OutputPath == "" {
		return apperrors.New(apperrors.ErrInvalidConfig, apperrors.ExitUsage, "input and output paths are required")
	}
	if len(r.Weights) != len(r.Fields) {
		return apperrors.Newf(apperrors.ErrFieldMismatch, apperrors.ExitUsage,
			"%d weights for %d fields", len(r.Weights), len(r.Fields))
	}
	if len(r.Fields) == 0 {
		return apperrors.New(apperrors.ErrInvalidConfig, apperrors.ExitUsage, "at least one field is required")
	}
	switch r.OnMalformed {
	case OnMalformedFail, OnMalformedSkip:
	default:
		return apperrors.Newf(apperrors.ErrInvalidConfig, apperrors.ExitUsage, "unknown onMalformed policy %q", r.OnMalformed)
	}
	switch r.EmptyTerms {
	case EmptyTermsPreserve, EmptyTermsCollapse:
	default:
		return apperrors.Newf(apperrors.ErrInvalidConfig, apperrors.ExitUsage, "unknown emptyTerms policy %q", r.EmptyTerms)
	}
	if c.Kafka.Enabled && (len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "") {
		return apperrors.New(apperrors.ErrInvalidConfig, apperrors.ExitUsage, "kafka mirror needs brokers and a topic")
	}
	if c.Postgres.Enabled && c.Postgres.Table == "" {
		return apperrors.New(apperrors.ErrInvalidConfig, apperrors.ExitUsage, "postgres mirror needs a table")
	}
	return nil
}

// applyEnvOverrides reads QR_* environment variables and overrides the
// corresponding config fields. Values that cannot be parsed as weights are
// rejected rather than ignored.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("QR_INPUT_PATH"); v != "" {
		cfg.Reformat.InputPath = v
	}
	if v := os.Getenv("QR_OUTPUT_PATH"); v != "" {
		cfg.Reformat.OutputPath = v
	}
	if v := os.Getenv("QR_WEIGHTS"); v != "" {
		weights, err := parseWeights(v)
		if err != nil {
			return apperrors.Newf(apperrors.ErrInvalidConfig, apperrors.ExitUsage, "QR_WEIGHTS: %v", err)
		}
		cfg.Reformat.Weights = weights
	}
	if v := os.Getenv("QR_ON_MALFORMED"); v != "" {
		cfg.Reformat.OnMalformed = v
	}
	if v := os.Getenv("QR_EMPTY_TERMS"); v != "" {
		cfg.Reformat.EmptyTerms = v
	}
	if v := os.Getenv("QR_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("QR_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("QR_METRICS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Metrics.Port = port
		}
	}
	if v := os.Getenv("QR_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("QR_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("QR_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("QR_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("QR_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	return nil
}

func parseWeights(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	weights := make([]float64, 0, len(parts))
	for _, p := range parts {
		w, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("parsing weight %q: %w", p, err)
		}
		weights = append(weights, w)
	}
	return weights, nil
}
