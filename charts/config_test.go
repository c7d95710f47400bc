package charts

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.BackupRetentionDays != 7 {
		t.Errorf("backup retention: got %d, want 7", cfg.BackupRetentionDays)
	}
	if cfg.SnapshotRetentionWeeks != 52 {
		t.Errorf("snapshot retention: got %d, want 52", cfg.SnapshotRetentionWeeks)
	}
	if cfg.ProducerTimeout() != 120*time.Second {
		t.Errorf("producer timeout: got %v, want 2m", cfg.ProducerTimeout())
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
data_dir: /var/lib/chartkeep/databases
backup_retention_days: 14
unattended: true
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DataDir != "/var/lib/chartkeep/databases" {
		t.Errorf("data_dir: got %q", cfg.DataDir)
	}
	if cfg.BackupRetentionDays != 14 {
		t.Errorf("backup_retention_days: got %d, want 14", cfg.BackupRetentionDays)
	}
	// Unset fields keep defaults.
	if cfg.SnapshotRetentionWeeks != 52 {
		t.Errorf("snapshot_retention_weeks default: got %d", cfg.SnapshotRetentionWeeks)
	}
	// Unattended runs get a doubled producer budget.
	if cfg.ProducerTimeout() != 240*time.Second {
		t.Errorf("unattended producer timeout: got %v, want 4m", cfg.ProducerTimeout())
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestConfigPolicy(t *testing.T) {
	cfg := &Config{BackupRetentionDays: 3, SnapshotRetentionWeeks: 10}
	p := cfg.Policy()
	if p.BackupRetentionDays != 3 || p.SnapshotRetentionWeeks != 10 {
		t.Errorf("policy: %+v", p)
	}
}
