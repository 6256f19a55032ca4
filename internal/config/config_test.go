package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultMatchesSpecDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Grid.RowsPerMonitor != 8 || cfg.Grid.ColsPerMonitor != 12 {
		t.Fatalf("grid dims = %dx%d, want 8x12", cfg.Grid.RowsPerMonitor, cfg.Grid.ColsPerMonitor)
	}
	if cfg.Grid.Threshold != 0.30 {
		t.Fatalf("threshold = %v, want 0.30", cfg.Grid.Threshold)
	}
	if cfg.Dispatcher.TickIntervalMS != 50 {
		t.Fatalf("tick interval = %dms, want 50ms", cfg.Dispatcher.TickIntervalMS)
	}
}

func TestLoadFromPathMissingFileReturnsDefault(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("missing file should yield Default()")
	}
}

func TestLoadFromPathOverridesGridDims(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlContent := "grid:\n  rows_per_monitor: 4\n  cols_per_monitor: 6\n  coverage_threshold: 0.5\n"
	if err := os.WriteFile(path, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("write test config: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Grid.RowsPerMonitor != 4 || cfg.Grid.ColsPerMonitor != 6 {
		t.Fatalf("grid dims = %dx%d, want 4x6", cfg.Grid.RowsPerMonitor, cfg.Grid.ColsPerMonitor)
	}
	if cfg.Dispatcher.TickIntervalMS != 50 {
		t.Fatalf("unset dispatcher fields should keep defaults, got %d", cfg.Dispatcher.TickIntervalMS)
	}
}
