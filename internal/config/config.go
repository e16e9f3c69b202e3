package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all configuration for AWO.
type Config struct {
	// Server configuration
	HTTPPort int    `env:"AWO_HTTP_PORT" envDefault:"8080"`
	GRPCPort int    `env:"AWO_GRPC_PORT" envDefault:"9090"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// PolicyFile is a JSON file with the gate's policy rules. Empty
	// means no rules: every request is denied by the default posture.
	PolicyFile string `env:"AWO_POLICY_FILE"`

	// Redis configuration
	Redis RedisConfig

	// Admission gate configuration
	Gate GateConfig

	// Task engine configuration
	Engine EngineConfig

	// LLM configuration (prompt steps)
	LLM LLMConfig

	// Timeouts
	Timeouts TimeoutConfig
}

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASS"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`

	// Connection pool settings
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	MaxRetries   int           `env:"REDIS_MAX_RETRIES" envDefault:"3"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// GateConfig holds admission gate thresholds.
type GateConfig struct {
	TripThreshold  int           `env:"GATE_TRIP_THRESHOLD" envDefault:"3"`
	Cooldown       time.Duration `env:"GATE_COOLDOWN" envDefault:"30s"`
	BucketCapacity float64       `env:"GATE_BUCKET_CAPACITY" envDefault:"10"`
	RefillRate     float64       `env:"GATE_REFILL_RATE" envDefault:"1"` // tokens per second
}

// EngineConfig holds task engine configuration.
type EngineConfig struct {
	MaxConcurrent   int           `env:"ENGINE_MAX_CONCURRENT" envDefault:"5"`
	MaxRetries      int           `env:"ENGINE_MAX_RETRIES" envDefault:"3"`
	RetryDelay      time.Duration `env:"ENGINE_RETRY_DELAY" envDefault:"1s"`
	MonitorInterval time.Duration `env:"ENGINE_MONITOR_INTERVAL" envDefault:"30s"`
}

// LLMConfig holds LLM provider configuration for prompt steps.
type LLMConfig struct {
	Enabled  bool   `env:"LLM_ENABLED" envDefault:"false"`
	Provider string `env:"LLM_PROVIDER" envDefault:"anthropic"`
	APIKey   string `env:"LLM_API_KEY"`

	// Default model settings
	DefaultModel       string  `env:"LLM_DEFAULT_MODEL" envDefault:"claude-3-5-sonnet-20241022"`
	DefaultTemperature float64 `env:"LLM_DEFAULT_TEMPERATURE" envDefault:"0.7"`
	DefaultMaxTokens   int     `env:"LLM_DEFAULT_MAX_TOKENS" envDefault:"4096"`
}

// TimeoutConfig holds various timeout configurations.
type TimeoutConfig struct {
	StepExecution   time.Duration `env:"TIMEOUT_STEP_EXECUTION" envDefault:"60s"`
	SummaryTTL      time.Duration `env:"TIMEOUT_SUMMARY_TTL" envDefault:"24h"`
	ShutdownTimeout time.Duration `env:"TIMEOUT_SHUTDOWN" envDefault:"30s"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.GRPCPort < 1 || c.GRPCPort > 65535 {
		return fmt.Errorf("invalid gRPC port: %d", c.GRPCPort)
	}

	if c.Redis.Addr == "" {
		return fmt.Errorf("redis address is required")
	}

	if c.Gate.TripThreshold < 1 {
		return fmt.Errorf("gate trip threshold must be at least 1")
	}
	if c.Gate.Cooldown <= 0 {
		return fmt.Errorf("gate cooldown must be positive")
	}
	if c.Gate.BucketCapacity < 1 {
		return fmt.Errorf("gate bucket capacity must be at least 1")
	}
	if c.Gate.RefillRate <= 0 {
		return fmt.Errorf("gate refill rate must be positive")
	}

	if c.Engine.MaxConcurrent < 1 {
		return fmt.Errorf("engine max concurrent must be at least 1")
	}
	if c.Engine.MaxRetries < 0 {
		return fmt.Errorf("engine max retries cannot be negative")
	}

	if c.LLM.Enabled {
		if c.LLM.APIKey == "" {
			return fmt.Errorf("LLM API key is required when LLM is enabled")
		}
		if c.LLM.Provider != "anthropic" {
			return fmt.Errorf("unsupported LLM provider: %s (only 'anthropic' is supported)", c.LLM.Provider)
		}
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// GetHTTPAddr returns the HTTP server address.
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// GetGRPCAddr returns the gRPC server address.
func (c *Config) GetGRPCAddr() string {
	return fmt.Sprintf(":%d", c.GRPCPort)
}
