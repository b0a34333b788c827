package config

import (
	"time"

	"github.com/turtacn/riskscore360/pkg/constants"
	"github.com/turtacn/riskscore360/pkg/errors"
	"github.com/turtacn/riskscore360/pkg/utils"
)

// Config holds the application's configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	GRPC    GRPCConfig    `mapstructure:"grpc"`
	Log     LogConfig     `mapstructure:"log"`
	Tracing TracingConfig `mapstructure:"tracing"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Kafka   KafkaConfig   `mapstructure:"kafka"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Output  OutputConfig  `mapstructure:"output"`
	Batch   BatchConfig   `mapstructure:"batch"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port" validate:"min=1,max=65535"`
	Environment     string        `mapstructure:"environment" validate:"oneof=development staging production"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"gte=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gte=0"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes" validate:"min=1"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

type GRPCConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port" validate:"min=1,max=65535"`
}

type LogConfig struct {
	Level      string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format     string `mapstructure:"format" validate:"oneof=json console"`
	OutputPath string `mapstructure:"output_path"`
}

type TracingConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	JaegerEndpoint string  `mapstructure:"jaeger_endpoint" validate:"required_if=Enabled true"`
	ServiceName    string  `mapstructure:"service_name"`
	SampleRate     float64 `mapstructure:"sample_rate" validate:"gte=0,lte=1"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type KafkaConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Brokers      []string      `mapstructure:"brokers" validate:"required_if=Enabled true,dive,hostname_port"`
	Topic        string        `mapstructure:"topic" validate:"required_if=Enabled true"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	RequiredAcks int           `mapstructure:"required_acks" validate:"oneof=-1 0 1"`
}

type CacheConfig struct {
	TTL             time.Duration `mapstructure:"ttl" validate:"gt=0"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval" validate:"gt=0"`
}

type OutputConfig struct {
	Format    string `mapstructure:"format" validate:"oneof=json yaml"`
	Directory string `mapstructure:"directory"`
}

type BatchConfig struct {
	Concurrency int `mapstructure:"concurrency" validate:"min=1"`
	MaxItems    int `mapstructure:"max_items" validate:"min=1"`
}

// OutputFormat returns the configured report encoding.
func (c OutputConfig) OutputFormat() constants.OutputFormat {
	return constants.OutputFormat(c.Format)
}

// IsProduction reports whether the server runs in production mode.
func (c ServerConfig) IsProduction() bool {
	return c.Environment == "production"
}

// Validate checks every section against its struct tags.
func (c *Config) Validate() error {
	if appErr := utils.ValidateStruct(c); appErr != nil {
		return errors.ErrInvalidConfig(appErr.Error()).WithCause(appErr)
	}
	return nil
}
