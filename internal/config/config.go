// Package config holds the tunables every filecore subsystem reads at
// startup: chunk size, progress cadence, keystore location, FEC shard
// counts, and the search package's persistence paths and limits.
package config

import (
	"os"
	"path/filepath"

	"github.com/nimbusvault/filecore/internal/ferr"
	"gopkg.in/yaml.v3"
)

// Config holds the knobs shared across a host process's filecore sessions.
type Config struct {
	ChunkSize          int64  `yaml:"chunk_size"`
	ProgressIntervalMS int    `yaml:"progress_interval_ms"`
	KeystoreDir        string `yaml:"keystore_dir"`

	WorkerCount int `yaml:"worker_count"`
	QueueDepth  int `yaml:"queue_depth"`

	FECDefaultK int `yaml:"fec_default_k"`
	FECDefaultR int `yaml:"fec_default_r"`

	IndexPersistPath       string `yaml:"index_persist_path"`
	HistoryPersistPath     string `yaml:"history_persist_path"`
	MaxHistoryEntries      int    `yaml:"max_history_entries"`
	SuggestionMaxPrefixLen int    `yaml:"suggestion_max_prefix_len"`
	SuggestionMaxResults   int    `yaml:"suggestion_max_results"`
}

// Default returns the built-in configuration every field falls back to.
func Default() *Config {
	return &Config{
		ChunkSize:          1 << 20, // 1 MiB
		ProgressIntervalMS: 500,
		KeystoreDir:        defaultKeystoreDir(),

		WorkerCount: 8,
		QueueDepth:  32,

		FECDefaultK: 10,
		FECDefaultR: 2,

		IndexPersistPath:       "",
		HistoryPersistPath:     "",
		MaxHistoryEntries:      200,
		SuggestionMaxPrefixLen: 20,
		SuggestionMaxResults:   10,
	}
}

func defaultKeystoreDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "filecore", "keys")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".filecore", "keys")
	}
	return filepath.Join(home, ".local", "share", "filecore", "keys")
}

// Load reads a YAML file at path and overlays it on top of Default(). A
// field absent from the file keeps its default value since the defaults are
// the decode target, not a zero-value struct.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ferr.Wrap(ferr.FileNotFound, "read config file", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, ferr.Wrap(ferr.InvalidFormat, "parse config file", err)
	}
	return cfg, nil
}
