package charts

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/chartkeep/charts/internal/store"
)

// Config holds the full archive configuration. It is immutable once handed
// to New: retention knobs travel with the service instance, never through
// ambient global state, so tests can run several policies in one process.
type Config struct {
	// DataDir holds the per-week store databases.
	DataDir string `yaml:"data_dir"`
	// BackupDir holds point-in-time backup copies.
	BackupDir string `yaml:"backup_dir"`
	// LatestPath is the unconditionally overwritten "latest" CSV export.
	LatestPath string `yaml:"latest_path"`

	BackupRetentionDays    int `yaml:"backup_retention_days"`
	SnapshotRetentionWeeks int `yaml:"snapshot_retention_weeks"`

	// ProducerTimeoutMS bounds the external producer, not the core:
	// if no dataset arrives in time the cycle is skipped and no store
	// is touched.
	ProducerTimeoutMS int `yaml:"producer_timeout_ms"`

	// Unattended marks scheduled headless runs: longer producer timeouts
	// and more verbose diagnostics.
	Unattended bool `yaml:"unattended"`
}

// DefaultConfig returns sane defaults.
func DefaultConfig() *Config {
	return &Config{
		DataDir:                "data/databases",
		BackupDir:              "data/backup",
		LatestPath:             "data/latest_chart.csv",
		BackupRetentionDays:    7,
		SnapshotRetentionWeeks: 52,
		ProducerTimeoutMS:      120_000,
	}
}

// LoadConfig reads and parses a YAML config file, merged over DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.DataDir == "" {
		c.DataDir = d.DataDir
	}
	if c.BackupDir == "" {
		c.BackupDir = d.BackupDir
	}
	if c.LatestPath == "" {
		c.LatestPath = d.LatestPath
	}
	if c.BackupRetentionDays == 0 {
		c.BackupRetentionDays = d.BackupRetentionDays
	}
	if c.SnapshotRetentionWeeks == 0 {
		c.SnapshotRetentionWeeks = d.SnapshotRetentionWeeks
	}
	if c.ProducerTimeoutMS == 0 {
		c.ProducerTimeoutMS = d.ProducerTimeoutMS
	}
}

// Validate checks that required fields are present and values are sane.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if c.BackupDir == "" {
		return fmt.Errorf("backup_dir is required")
	}
	if c.BackupRetentionDays < 1 {
		return fmt.Errorf("backup_retention_days must be >= 1")
	}
	if c.SnapshotRetentionWeeks < 1 {
		return fmt.Errorf("snapshot_retention_weeks must be >= 1")
	}
	if c.ProducerTimeoutMS < 0 {
		return fmt.Errorf("producer_timeout_ms must be >= 0")
	}
	return nil
}

// Policy returns the retention policy this configuration describes.
func (c *Config) Policy() store.Policy {
	return store.Policy{
		BackupRetentionDays:    c.BackupRetentionDays,
		SnapshotRetentionWeeks: c.SnapshotRetentionWeeks,
	}
}

// ProducerTimeout returns the producer deadline. Unattended runs get twice
// the configured budget: nobody is watching, so waiting beats failing.
func (c *Config) ProducerTimeout() time.Duration {
	d := time.Duration(c.ProducerTimeoutMS) * time.Millisecond
	if c.Unattended {
		d *= 2
	}
	return d
}
