package config

import (
	"context"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/turtacn/riskscore360/pkg/constants"
	"github.com/turtacn/riskscore360/pkg/errors"
	"github.com/turtacn/riskscore360/pkg/logger"
)

// EnvPrefix is the prefix of environment variable overrides, e.g. RISKSCORE_SERVER_PORT.
const EnvPrefix = "RISKSCORE"

// Loader reads configuration from defaults, an optional YAML file and the
// environment, in increasing order of precedence.
type Loader struct {
	v   *viper.Viper
	log logger.Logger

	mu      sync.Mutex
	current *Config
}

// NewLoader creates a Loader. An empty configFile searches for config.yaml in
// /etc/riskscore360/ and the working directory.
func NewLoader(configFile string, log logger.Logger) *Loader {
	if log == nil {
		log = logger.NewNoopLogger()
	}
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/riskscore360/")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Loader{v: v, log: log.WithComponent("config")}
}

// LoadConfig loads the configuration from file and environment variables.
func LoadConfig(configFile string, log logger.Logger) (*Config, error) {
	return NewLoader(configFile, log).Load()
}

// Load reads and validates the configuration.
func (l *Loader) Load() (*Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.ErrInvalidConfig("failed to read config file").WithCause(err)
		}
		l.log.Debug(context.Background(), "No config file found, using defaults and environment")
	}

	cfg, err := l.decode()
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.current = cfg
	l.mu.Unlock()

	if used := l.v.ConfigFileUsed(); used != "" {
		l.log.Info(context.Background(), "Configuration loaded", logger.Fields{"file": used})
	}
	return cfg, nil
}

// Watch reloads the configuration whenever the config file changes and passes
// every valid new configuration to onChange. Invalid edits are logged and
// ignored. Watch is a no-op when no config file is in use.
func (l *Loader) Watch(onChange func(*Config)) {
	if l.v.ConfigFileUsed() == "" {
		return
	}
	l.v.OnConfigChange(func(e fsnotify.Event) {
		ctx := context.Background()
		cfg, err := l.decode()
		if err != nil {
			l.log.Error(ctx, "Ignoring invalid configuration change", err, logger.Fields{"file": e.Name})
			return
		}
		l.mu.Lock()
		l.current = cfg
		l.mu.Unlock()
		l.log.Info(ctx, "Configuration reloaded", logger.Fields{"file": e.Name, "op": e.Op.String()})
		onChange(cfg)
	})
	l.v.WatchConfig()
}

// Current returns the most recently loaded configuration.
func (l *Loader) Current() *Config {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}

func (l *Loader) decode() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, errors.ErrInvalidConfig("failed to unmarshal config").WithCause(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", constants.DefaultServicePort)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.shutdown_timeout", constants.DefaultShutdownTimeout.String())
	v.SetDefault("server.max_body_bytes", constants.MaxDocumentBytes)
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("grpc.enabled", true)
	v.SetDefault("grpc.port", constants.DefaultGRPCPort)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output_path", "stdout")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.jaeger_endpoint", "")
	v.SetDefault("tracing.service_name", constants.ServiceName)
	v.SetDefault("tracing.sample_rate", 1.0)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "riskscore.reports")
	v.SetDefault("kafka.batch_timeout", "100ms")
	v.SetDefault("kafka.required_acks", -1)

	v.SetDefault("cache.ttl", constants.DefaultReportCacheTTL.String())
	v.SetDefault("cache.cleanup_interval", constants.DefaultReportCacheCleanup.String())

	v.SetDefault("output.format", string(constants.OutputFormatJSON))
	v.SetDefault("output.directory", "")

	v.SetDefault("batch.concurrency", constants.DefaultBatchConcurrency)
	v.SetDefault("batch.max_items", constants.MaxBatchSize)
}
