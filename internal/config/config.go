// Package config loads the server's startup configuration from YAML,
// following the teacher's internal/config loader shape (DefaultConfigPath
// + Load/LoadFromPath, gopkg.in/yaml.v3) generalized from tiling-layout
// settings to the grid/dispatcher/IPC settings spec §6 negotiates at
// startup.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the effective, defaulted configuration for one server run.
type Config struct {
	Grid       Grid       `yaml:"grid"`
	Dispatcher Dispatcher `yaml:"dispatcher"`
	IPC        IPC        `yaml:"ipc"`
	Log        Log        `yaml:"log"`
}

// Grid mirrors spec §6's negotiated grid configuration.
type Grid struct {
	RowsPerMonitor int     `yaml:"rows_per_monitor"`
	ColsPerMonitor int     `yaml:"cols_per_monitor"`
	Threshold      float32 `yaml:"coverage_threshold"`
}

// Dispatcher mirrors spec §4.4's tick/batch/heartbeat cadences.
type Dispatcher struct {
	TickIntervalMS    int `yaml:"tick_interval_ms"`
	BatchSize         int `yaml:"batch_size"`
	RebuildIntervalMS int `yaml:"rebuild_interval_ms"`
	GridDumpEveryN    int `yaml:"grid_dump_every_n_ticks"`
	HeartbeatPeriodMS int `yaml:"heartbeat_period_ms"`
	CommandBatchSize  int `yaml:"command_batch_size"`
}

// IPC mirrors the queue capacity and client reconnection parameters (spec
// §4.3, §4.8).
type IPC struct {
	QueueCapacity        int `yaml:"queue_capacity"`
	ClientTimeoutMS      int `yaml:"client_timeout_ms"`
	ReconnectIntervalMS  int `yaml:"reconnect_interval_ms"`
	ReconnectMaxAttempts int `yaml:"reconnect_max_attempts"`
	PollIntervalMS       int `yaml:"poll_interval_ms"`
	EmptyCycleThreshold  int `yaml:"empty_cycle_threshold"`
	DiscoveryTimeoutMS   int `yaml:"discovery_timeout_ms"`
}

// Log controls the structured logger's verbosity (spec §6: "environment
// variable RUST_LOG or equivalent controls log verbosity").
type Log struct {
	Level string `yaml:"level"`
}

// Default returns the built-in configuration matching every default named
// across spec §3/§4/§6.
func Default() Config {
	return Config{
		Grid: Grid{RowsPerMonitor: 8, ColsPerMonitor: 12, Threshold: 0.30},
		Dispatcher: Dispatcher{
			TickIntervalMS:    50,
			BatchSize:         256,
			RebuildIntervalMS: 2000,
			GridDumpEveryN:    40,
			HeartbeatPeriodMS: 1000,
			CommandBatchSize:  64,
		},
		IPC: IPC{
			QueueCapacity:        4096,
			ClientTimeoutMS:      2000,
			ReconnectIntervalMS:  2000,
			ReconnectMaxAttempts: 10,
			PollIntervalMS:       500,
			EmptyCycleThreshold:  20,
			DiscoveryTimeoutMS:   5000,
		},
		Log: Log{Level: "info"},
	}
}

// DefaultConfigPath returns "$HOME/.config/e-grid/config.yaml", following
// the teacher's DefaultConfigPath convention.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "e-grid", "config.yaml"), nil
}

// Load reads configuration from the standard location, falling back to
// Default() entirely if no file exists there (unlike the teacher's loader,
// there is no project-scoped override tier here — the spec's config
// surface is flat).
func Load() (Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return Config{}, err
	}
	return LoadFromPath(path)
}

// LoadFromPath reads and merges YAML at path over Default(); a missing
// file is not an error.
func LoadFromPath(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("config: read %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

func (d Dispatcher) TickInterval() time.Duration     { return time.Duration(d.TickIntervalMS) * time.Millisecond }
func (d Dispatcher) RebuildInterval() time.Duration  { return time.Duration(d.RebuildIntervalMS) * time.Millisecond }
func (d Dispatcher) HeartbeatPeriod() time.Duration  { return time.Duration(d.HeartbeatPeriodMS) * time.Millisecond }
func (i IPC) ClientTimeout() time.Duration     { return time.Duration(i.ClientTimeoutMS) * time.Millisecond }
func (i IPC) ReconnectInterval() time.Duration { return time.Duration(i.ReconnectIntervalMS) * time.Millisecond }
func (i IPC) PollInterval() time.Duration      { return time.Duration(i.PollIntervalMS) * time.Millisecond }
func (i IPC) DiscoveryTimeout() time.Duration  { return time.Duration(i.DiscoveryTimeoutMS) * time.Millisecond }
