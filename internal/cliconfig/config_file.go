package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	Engine   string `toml:"engine"`
	StateDir string `toml:"state_dir"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
	Duration  string `toml:"duration"`
	Notes     *bool  `toml:"notes"`
	Watch     *bool  `toml:"watch"`

	Reconcile ReconcileSection `toml:"reconcile"`
	Sim       SimSection       `toml:"sim"`
}

// ReconcileSection is the [reconcile] table. It is the part of the file that
// is reloaded while running.
type ReconcileSection struct {
	Attempts      int    `toml:"attempts"`
	Interval      string `toml:"interval"`
	TimeoutPolicy string `toml:"timeout_policy"`
}

// SimSection is the [sim] table.
type SimSection struct {
	StartDelay     string  `toml:"start_delay"`
	ReadyDelay     string  `toml:"ready_delay"`
	SampleInterval string  `toml:"sample_interval"`
	BaseFrequency  float64 `toml:"base_frequency"`
	VibratoCents   float64 `toml:"vibrato_cents"`
	VibratoRate    float64 `toml:"vibrato_rate"`
	SilenceEvery   int     `toml:"silence_every"`
	FailStart      *bool   `toml:"fail_start"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.pitch/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if dir := DefaultStateDir(); dir != "" {
		return filepath.Join(dir, "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("engine", fc.Engine, &cfg.Engine)
	s.setString("state-dir", fc.StateDir, &cfg.StateDir)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("log-format", fc.LogFormat, &cfg.LogFormat)
	if err := s.setDuration("duration", fc.Duration, &cfg.Duration); err != nil {
		return err
	}
	s.setBool("notes", fc.Notes, &cfg.Notes)
	s.setBool("watch", fc.Watch, &cfg.Watch)

	if err := ApplyReconcileSection(cfg, fc.Reconcile, changed); err != nil {
		return err
	}

	if err := s.setDuration("sim-start-delay", fc.Sim.StartDelay, &cfg.SimStartDelay); err != nil {
		return err
	}
	if err := s.setDuration("sim-ready-delay", fc.Sim.ReadyDelay, &cfg.SimReadyDelay); err != nil {
		return err
	}
	if err := s.setDuration("sim-sample-interval", fc.Sim.SampleInterval, &cfg.SimSampleInterval); err != nil {
		return err
	}
	s.setFloat("sim-frequency", fc.Sim.BaseFrequency, &cfg.SimFrequency)
	s.setFloat("sim-vibrato", fc.Sim.VibratoCents, &cfg.SimVibratoCents)
	s.setFloat("sim-vibrato-rate", fc.Sim.VibratoRate, &cfg.SimVibratoRate)
	s.setInt("sim-silence-every", fc.Sim.SilenceEvery, &cfg.SimSilenceEvery)
	s.setBool("sim-fail-start", fc.Sim.FailStart, &cfg.SimFailStart)

	return nil
}

// ApplyReconcileSection applies the [reconcile] table only. The config
// watcher uses it to refresh settings without touching anything else.
func ApplyReconcileSection(cfg *Config, rs ReconcileSection, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setInt("reconcile-attempts", rs.Attempts, &cfg.ReconcileAttempts)
	if err := s.setDuration("reconcile-interval", rs.Interval, &cfg.ReconcileInterval); err != nil {
		return err
	}
	s.setString("timeout-policy", rs.TimeoutPolicy, &cfg.TimeoutPolicy)
	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
