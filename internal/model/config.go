package model

import "time"

// Config is the complete runtime configuration
type Config struct {
	Scoring     ScoringConfig     `yaml:"scoring" mapstructure:"scoring"`
	Store       StoreConfig       `yaml:"store" mapstructure:"store"`
	Classifier  ClassifierConfig  `yaml:"classifier" mapstructure:"classifier"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Logging     LoggingConfig     `yaml:"logging" mapstructure:"logging"`
}

// ScoringConfig tunes the consensus blend and the evidence prior
type ScoringConfig struct {
	SigmoidFactor       float64 `yaml:"sigmoid_factor" mapstructure:"sigmoid_factor"`
	ConsensusWeight     float64 `yaml:"consensus_weight" mapstructure:"consensus_weight"`
	CorroborationWeight float64 `yaml:"corroboration_weight" mapstructure:"corroboration_weight"`
	Prior               float64 `yaml:"prior" mapstructure:"prior"` // hebbian score with zero evidence
}

// StoreConfig selects the persistence backend
type StoreConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"` // sqlite; memory is for tests
	Path   string `yaml:"path" mapstructure:"path"`
}

// ClassifierConfig configures the evidence classifier
type ClassifierConfig struct {
	Provider          string  `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama, "" (disabled)
	Model             string  `yaml:"model" mapstructure:"model"`
	APIKey            string  `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL           string  `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout           int     `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens         int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
}

// CacheConfig configures the classification cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig bounds parallel recalculation
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// LoggingConfig configures structured logging
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // auto, text, json
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Scoring: ScoringConfig{
			SigmoidFactor:       20,
			ConsensusWeight:     0.5,
			CorroborationWeight: 0.5,
			Prior:               0.6,
		},
		Store: StoreConfig{
			Driver: "sqlite",
			Path:   "consensus.db",
		},
		Classifier: ClassifierConfig{
			Provider:          "",
			Model:             "",
			Timeout:           30,
			MaxTokens:         300,
			RequestsPerSecond: 2,
			Burst:             4,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".consensus-cache",
			MemoryTTL: 1 * time.Hour,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 8,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}
