// Package config layers file-based (viper) and environment-variable
// (envconfig) configuration into the pool/collector/exporter knobs,
// adapted from the platform-wide config loader used across the rest
// of the stack.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

// Config holds all configuration for a threadmon process.
type Config struct {
	Service   ServiceConfig         `mapstructure:"service"`
	Pool      PoolConfig            `mapstructure:"pool"`
	Monitor   MonitoringConfig      `mapstructure:"monitor"`
	EventBus  EventBusConfig        `mapstructure:"event_bus"`
	Collector PluginCollectorConfig `mapstructure:"collector"`
	Exporter  ExporterConfig        `mapstructure:"exporter"`
	Redis     RedisConfig           `mapstructure:"redis"`
	Logger    LoggerConfig          `mapstructure:"logger"`
	Telemetry TelemetryConfig       `mapstructure:"telemetry"`
	HTTP      HTTPConfig            `mapstructure:"http"`
}

// ServiceConfig identifies the running process for logging/telemetry.
type ServiceConfig struct {
	Name        string `mapstructure:"name" envconfig:"SERVICE_NAME"`
	Environment string `mapstructure:"environment" envconfig:"ENVIRONMENT" default:"development"`
}

// PoolConfig configures a worker pool's size and scheduling policy.
type PoolConfig struct {
	WorkerCount             int           `mapstructure:"worker_count" envconfig:"POOL_WORKER_COUNT" default:"4"`
	MaxQueueSizePerPriority int           `mapstructure:"max_queue_size_per_priority" envconfig:"POOL_MAX_QUEUE_SIZE" default:"0"`
	IdleSleepDuration       time.Duration `mapstructure:"idle_sleep_duration" envconfig:"POOL_IDLE_SLEEP" default:"1ms"`
	MaxConsecutiveFailures  int           `mapstructure:"max_consecutive_failures" envconfig:"POOL_MAX_CONSECUTIVE_FAILURES" default:"5"`
	ContinueOnException     bool          `mapstructure:"continue_on_exception" envconfig:"POOL_CONTINUE_ON_EXCEPTION" default:"true"`
}

// MonitoringConfig configures the health monitor's cache window.
type MonitoringConfig struct {
	CacheDuration time.Duration `mapstructure:"cache_duration" envconfig:"MONITOR_CACHE_DURATION" default:"10s"`
}

// EventBusConfig configures the priority event bus.
type EventBusConfig struct {
	MaxQueueSize          int           `mapstructure:"max_queue_size" envconfig:"EVENTBUS_MAX_QUEUE_SIZE" default:"10000"`
	WorkerThreadCount     int           `mapstructure:"worker_thread_count" envconfig:"EVENTBUS_WORKER_THREADS" default:"2"`
	ProcessingInterval    time.Duration `mapstructure:"processing_interval" envconfig:"EVENTBUS_PROCESSING_INTERVAL" default:"10ms"`
	BackPressureThreshold int           `mapstructure:"back_pressure_threshold" envconfig:"EVENTBUS_BACKPRESSURE_THRESHOLD" default:"8000"`
}

// PluginCollectorConfig configures the collector hub's polling cadence.
type PluginCollectorConfig struct {
	CollectionInterval time.Duration `mapstructure:"collection_interval" envconfig:"COLLECTOR_INTERVAL" default:"5s"`
	WorkerThreads      int           `mapstructure:"worker_threads" envconfig:"COLLECTOR_WORKER_THREADS" default:"1"`
	CacheTTL           time.Duration `mapstructure:"cache_ttl" envconfig:"COLLECTOR_CACHE_TTL" default:"5m"`
	AggregationWindow  time.Duration `mapstructure:"aggregation_window" envconfig:"COLLECTOR_AGGREGATION_WINDOW" default:"1m"`
}

// ExporterConfig selects and tunes the metrics export format.
type ExporterConfig struct {
	Format  string        `mapstructure:"format" envconfig:"EXPORTER_FORMAT" default:"prometheus_text"`
	Timeout time.Duration `mapstructure:"timeout" envconfig:"EXPORTER_TIMEOUT" default:"5s"`
}

// RedisConfig configures the optional durable aggregate cache.
type RedisConfig struct {
	Host      string `mapstructure:"host" envconfig:"REDIS_HOST" default:"localhost"`
	Port      int    `mapstructure:"port" envconfig:"REDIS_PORT" default:"6379"`
	Password  string `mapstructure:"password" envconfig:"REDIS_PASSWORD"`
	DB        int    `mapstructure:"db" envconfig:"REDIS_DB" default:"0"`
	KeyPrefix string `mapstructure:"key_prefix" envconfig:"REDIS_KEY_PREFIX" default:"threadmon"`
}

// LoggerConfig configures the zap-backed structured logger.
type LoggerConfig struct {
	Level      string `mapstructure:"level" envconfig:"LOG_LEVEL" default:"info"`
	Format     string `mapstructure:"format" envconfig:"LOG_FORMAT" default:"json"`
	OutputPath string `mapstructure:"output_path" envconfig:"LOG_OUTPUT_PATH" default:"stdout"`
}

// TelemetryConfig configures the otel tracer provider and metrics registry.
type TelemetryConfig struct {
	MetricsEnabled bool   `mapstructure:"metrics_enabled" envconfig:"METRICS_ENABLED" default:"true"`
	TracingEnabled bool   `mapstructure:"tracing_enabled" envconfig:"TRACING_ENABLED" default:"true"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint" envconfig:"JAEGER_ENDPOINT" default:"http://localhost:14268/api/traces"`
	ServiceName    string `mapstructure:"service_name" envconfig:"TELEMETRY_SERVICE_NAME"`
}

// HTTPConfig configures the health/metrics HTTP facade.
type HTTPConfig struct {
	Port         int           `mapstructure:"port" envconfig:"HTTP_PORT" default:"8090"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" envconfig:"HTTP_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" envconfig:"HTTP_WRITE_TIMEOUT" default:"10s"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout" envconfig:"HTTP_IDLE_TIMEOUT" default:"60s"`
}

// Load reads ./configs/config.yaml (if present), then layers
// environment variables over it via envconfig, returning the merged
// Config.
func Load(serviceName string) (*Config, error) {
	var cfg Config
	cfg.Service.Name = serviceName
	cfg.Telemetry.ServiceName = serviceName

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: read config file: %w", err)
		}
	}

	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal config file: %w", err)
	}

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: process environment: %w", err)
	}

	return &cfg, nil
}
