package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the message indexing engine.
type Config struct {
	Store     StoreConfig     `yaml:"store"`
	Indexing  IndexingConfig  `yaml:"indexing"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	AutoIndex AutoIndexConfig `yaml:"auto_index"`
	Backfill  BackfillConfig  `yaml:"backfill"`
	Search    SearchConfig    `yaml:"search"`
	Channels  ChannelConfig   `yaml:"channels"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// StoreConfig holds message store configuration.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// IndexingConfig holds live ingestion pipeline configuration.
type IndexingConfig struct {
	QueueSize     int `yaml:"queue_size"`
	BatchSize     int `yaml:"batch_size"`
	PullTimeoutMS int `yaml:"pull_timeout_ms"`
}

// PullTimeout is how long the worker waits on the queue before flushing
// a partial batch.
func (c IndexingConfig) PullTimeout() time.Duration {
	return time.Duration(c.PullTimeoutMS) * time.Millisecond
}

// EmbeddingConfig holds embedding provider configuration.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"`    // "gemini", "openai", "ollama"
	Model     string `yaml:"model"`       // e.g., "gemini-embedding-001"
	BaseURL   string `yaml:"base_url"`    // overrides the provider default
	APIKeyEnv string `yaml:"api_key_env"` // environment variable holding the API key
	Dimension int    `yaml:"dimension"`
	BatchSize int    `yaml:"batch_size"`
	PauseMS   int    `yaml:"pause_ms"` // pacing delay between provider calls

	// Retroactive backfill of rows stored without an embedding.
	UpdateChunkSize int `yaml:"update_chunk_size"`
	UpdatePauseMS   int `yaml:"update_pause_ms"`
}

func (c EmbeddingConfig) Pause() time.Duration {
	return time.Duration(c.PauseMS) * time.Millisecond
}

func (c EmbeddingConfig) UpdatePause() time.Duration {
	return time.Duration(c.UpdatePauseMS) * time.Millisecond
}

// AutoIndexConfig holds configuration for indexing a guild on first contact.
type AutoIndexConfig struct {
	TotalLimit     int `yaml:"total_limit"`   // cap shared across all channels of a guild
	ChannelFetch   int `yaml:"channel_fetch"` // newest messages fetched per channel
	ChannelPauseMS int `yaml:"channel_pause_ms"`
}

func (c AutoIndexConfig) ChannelPause() time.Duration {
	return time.Duration(c.ChannelPauseMS) * time.Millisecond
}

// BackfillConfig holds configuration for operator-invoked history backfills.
type BackfillConfig struct {
	ChannelPauseMS int `yaml:"channel_pause_ms"`
}

func (c BackfillConfig) ChannelPause() time.Duration {
	return time.Duration(c.ChannelPauseMS) * time.Millisecond
}

// SearchConfig holds similarity search configuration.
type SearchConfig struct {
	DefaultLimit int `yaml:"default_limit"`
	ContextLimit int `yaml:"context_limit"` // results used when building prompt context
	CacheSize    int `yaml:"cache_size"`
	CacheTTLMS   int `yaml:"cache_ttl_ms"`
}

func (c SearchConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMS) * time.Millisecond
}

// ChannelConfig holds channel name patterns for bulk indexing.
type ChannelConfig struct {
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Path: "data/messages.db",
		},
		Indexing: IndexingConfig{
			QueueSize:     1000,
			BatchSize:     10,
			PullTimeoutMS: 1000,
		},
		Embedding: EmbeddingConfig{
			Provider:        "gemini",
			Model:           "gemini-embedding-001",
			APIKeyEnv:       "GEMINI_API_KEY",
			Dimension:       3072,
			BatchSize:       50,
			PauseMS:         100,
			UpdateChunkSize: 50,
			UpdatePauseMS:   500,
		},
		AutoIndex: AutoIndexConfig{
			TotalLimit:     1000,
			ChannelFetch:   100,
			ChannelPauseMS: 300,
		},
		Backfill: BackfillConfig{
			ChannelPauseMS: 500,
		},
		Search: SearchConfig{
			DefaultLimit: 10,
			ContextLimit: 5,
			CacheSize:    100,
			CacheTTLMS:   300000,
		},
		Channels: ChannelConfig{
			Includes: []string{"*"},
			Excludes: []string{},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for junkie.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "junkie.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".junkie", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// EnsureStoreDir ensures the directory holding the store file exists.
func EnsureStoreDir(storePath string) error {
	dir := filepath.Dir(storePath)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0755)
}
