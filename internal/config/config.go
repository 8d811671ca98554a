package config

import (
	"fmt"
	"time"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Cache     CacheConfig     `yaml:"cache"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
}

type ServerConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
}

type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Name            string        `yaml:"name"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

type RedisConfig struct {
	Addresses []string `yaml:"addresses"`
	Password  string   `yaml:"password"`
	DB        int      `yaml:"db"`
	PoolSize  int      `yaml:"pool_size"`
}

// CacheConfig selects the backend for the persistent file-summary cache.
type CacheConfig struct {
	// Backend is one of "memory", "redis", "postgres".
	Backend string `yaml:"backend"`
}

type TelemetryConfig struct {
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	MetricsPort int    `yaml:"metrics_port"`
}

type RateLimitConfig struct {
	Enabled           bool  `yaml:"enabled"`
	RequestsPerMinute int   `yaml:"requests_per_minute"`
	DailyTokenLimit   int64 `yaml:"daily_token_limit"`
}

// FileContentPlacement values.
const (
	PlacementAppend      = "append"
	PlacementAfterSystem = "after_system"
)

// FileContentMode values.
const (
	FileModeMerged   = "merged"
	FileModeSeparate = "separate"
)

// PipelineConfig is the tuning surface of the preprocessing pipeline.
type PipelineConfig struct {
	// Skip bypasses preprocessing entirely (testing/fast paths).
	Skip bool `yaml:"skip"`

	// HistoryLimit caps conversation history to the most recent N
	// messages; <= 0 means unlimited.
	HistoryLimit int `yaml:"history_limit"`

	FileContentPlacement string `yaml:"file_content_placement"`
	FileContentMode      string `yaml:"file_content_mode"`
	FileContentPriority  int    `yaml:"file_content_priority"`
	CardPriority         int    `yaml:"card_priority"`

	ParallelFiles  bool `yaml:"parallel_files"`
	MaxConcurrency int  `yaml:"max_concurrency"`

	// FileBypassChars: files shorter than this are never summarized.
	FileBypassChars int `yaml:"file_bypass_chars"`

	// Context summarization thresholds.
	MinMessageCount int `yaml:"min_message_count"`
	MinNewChars     int `yaml:"min_new_chars"`

	// Per-phase system prompt overrides; empty means built-in default.
	FileSummaryPrompt    string `yaml:"file_summary_prompt"`
	ContextSummaryPrompt string `yaml:"context_summary_prompt"`

	// Per-phase model routing (names from models.yaml).
	GenerateModel       string `yaml:"generate_model"`
	FileSummaryModel    string `yaml:"file_summary_model"`
	ContextSummaryModel string `yaml:"context_summary_model"`

	Routing RoutingConfig `yaml:"routing"`
}

type RoutingConfig struct {
	FailureThreshold      int           `yaml:"failure_threshold"`
	RecoveryProbeInterval time.Duration `yaml:"recovery_probe_interval"`
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             8080,
			ReadTimeout:      30 * time.Second,
			WriteTimeout:     120 * time.Second,
			IdleTimeout:      120 * time.Second,
			GracefulShutdown: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			Name:            "inkwell",
			User:            "inkwell",
			MaxOpenConns:    25,
			MaxIdleConns:    10,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Redis: RedisConfig{
			Addresses: []string{"localhost:6379"},
			DB:        0,
			PoolSize:  50,
		},
		Cache: CacheConfig{
			Backend: "memory",
		},
		Telemetry: TelemetryConfig{
			LogLevel:    "info",
			LogFormat:   "json",
			MetricsPort: 9090,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: 60,
			DailyTokenLimit:   2_000_000,
		},
		Pipeline: DefaultPipelineConfig(),
	}
}

func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		HistoryLimit:         0,
		FileContentPlacement: PlacementAfterSystem,
		FileContentMode:      FileModeMerged,
		FileContentPriority:  10,
		CardPriority:         50,
		ParallelFiles:        true,
		MaxConcurrency:       3,
		FileBypassChars:      1000,
		MinMessageCount:      4,
		MinNewChars:          2000,
		GenerateModel:        "writing-default",
		FileSummaryModel:     "writing-fast",
		ContextSummaryModel:  "writing-fast",
		Routing: RoutingConfig{
			FailureThreshold:      5,
			RecoveryProbeInterval: 15 * time.Second,
		},
	}
}
