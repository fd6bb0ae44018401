// Package config loads plagiarismguard's runtime configuration from a
// config file and environment variables using viper.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	// Log configuration
	Log LogConfig `mapstructure:"log"`

	// Server configuration for the HTTP surface
	Server ServerConfig `mapstructure:"server"`

	// Corpus store configuration
	Corpus CorpusConfig `mapstructure:"corpus"`

	// MinHash configuration
	MinHash MinHashConfig `mapstructure:"minhash"`

	// LSH configuration
	LSH LSHConfig `mapstructure:"lsh"`

	// Shingle configuration
	Shingle ShingleConfig `mapstructure:"shingle"`

	// Limits holds the resource caps described in the spec's concurrency
	// and resource model.
	Limits LimitsConfig `mapstructure:"limits"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// CorpusConfig holds corpus store configuration.
type CorpusConfig struct {
	// Driver selects the backing key-value store. Only "badger" is
	// implemented; the field exists so an alternate KV adapter can be
	// swapped in without touching the orchestrator.
	Driver string `mapstructure:"driver"`
	// Path is the on-disk directory for the badger database.
	Path string `mapstructure:"path"`
}

// MinHashConfig holds MinHash tunables (spec §6 "Tunable parameters").
type MinHashConfig struct {
	Seed         uint64 `mapstructure:"seed"`
	Permutations int    `mapstructure:"permutations"`
}

// LSHConfig holds LSH banding tunables.
type LSHConfig struct {
	Threshold float64 `mapstructure:"threshold"`
	Bands     int     `mapstructure:"bands"`
	Rows      int     `mapstructure:"rows"`
}

// ShingleConfig holds shingling tunables.
type ShingleConfig struct {
	Size int `mapstructure:"size"`
}

// LimitsConfig holds the per-response and per-document resource caps from
// spec §5.
type LimitsConfig struct {
	MaxSegments         int `mapstructure:"max_segments"`
	MaxSegmentTextChars int `mapstructure:"max_segment_text_chars"`
	MaxShingleSetSize   int `mapstructure:"max_shingle_set_size"`
}

// Load loads configuration from file and environment variables, applying
// the documented defaults (spec §6) first.
func Load() (*Config, error) {
	setDefaults()

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	overrideWithEnv(cfg)

	return cfg, nil
}

func setDefaults() {
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)

	home, err := os.UserHomeDir()
	corpusPath := "./plagiarismguard_corpus"
	if err == nil {
		corpusPath = fmt.Sprintf("%s/.plagiarismguard/corpus", home)
	}
	viper.SetDefault("corpus.driver", "badger")
	viper.SetDefault("corpus.path", corpusPath)

	viper.SetDefault("minhash.seed", 42)
	viper.SetDefault("minhash.permutations", 128)

	viper.SetDefault("lsh.threshold", 0.35)
	viper.SetDefault("lsh.bands", 32)
	viper.SetDefault("lsh.rows", 4)

	viper.SetDefault("shingle.size", 7)

	viper.SetDefault("limits.max_segments", 100)
	viper.SetDefault("limits.max_segment_text_chars", 500)
	viper.SetDefault("limits.max_shingle_set_size", 1_000_000)
}

// overrideWithEnv applies the environment variable names spec §6 documents
// directly ("Tunable parameters (environment or config, with defaults)"),
// taking precedence over file/default values.
func overrideWithEnv(cfg *Config) {
	if v := os.Getenv("MINHASH_SEED"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.MinHash.Seed = n
		}
	}
	if v := os.Getenv("MINHASH_PERMUTATIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MinHash.Permutations = n
		}
	}
	if v := os.Getenv("LSH_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.LSH.Threshold = f
		}
	}
	if v := os.Getenv("LSH_BANDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.LSH.Bands = n
		}
	}
	if v := os.Getenv("LSH_ROWS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.LSH.Rows = n
		}
	}
	if v := os.Getenv("SHINGLE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Shingle.Size = n
		}
	}
	if v := os.Getenv("CORPUS_PATH"); v != "" {
		cfg.Corpus.Path = v
	}
	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
}
