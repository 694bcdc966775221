package model

import (
	"runtime"
	"time"
)

// Config is the complete runtime configuration, assembled from defaults,
// the config file, RELABEL_* environment variables, and CLI flags.
type Config struct {
	Storage      StorageConfig      `yaml:"storage" mapstructure:"storage"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
}

// StorageConfig configures the source and destination object stores.
type StorageConfig struct {
	SourceRoot      string `yaml:"source_root" mapstructure:"source_root"`
	DestinationRoot string `yaml:"destination_root" mapstructure:"destination_root"`
	Prefix          string `yaml:"prefix" mapstructure:"prefix"`
	LabelPattern    string `yaml:"label_pattern" mapstructure:"label_pattern"`
}

// CacheConfig configures the download cache.
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig controls the batch worker pool.
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// RateLimitingConfig limits storage requests per container root.
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// OutputConfig controls rendering of results.
type OutputConfig struct {
	Verbose      bool   `yaml:"verbose" mapstructure:"verbose"`
	ReportDir    string `yaml:"report_dir" mapstructure:"report_dir"`
	WriteReports bool   `yaml:"write_reports" mapstructure:"write_reports"`
}

// LLMConfig configures the optional run-summary generation. Disabled when
// Provider is empty. The summary never affects correction results.
type LLMConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"`
	Model     string `yaml:"model" mapstructure:"model"`
	APIKey    string `yaml:"-" mapstructure:"api_key"`
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			LabelPattern: "*.labels.json",
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".relabel-cache",
			MemoryTTL: 15 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: runtime.NumCPU(),
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 50,
			BurstSize:         10,
		},
		Output: OutputConfig{
			WriteReports: true,
		},
		LLM: LLMConfig{
			Timeout:   30,
			MaxTokens: 500,
		},
	}
}
