package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/houvven/pitch/pkg/coordinator"
	"github.com/houvven/pitch/pkg/engine"
	"github.com/houvven/pitch/pkg/engine/sim"
)

// Log output formats.
const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// Config holds CLI configuration for pitch.
type Config struct {
	Engine   string
	StateDir string
	LogLevel string
	// LogFormat is "console" for human-readable output or "json".
	LogFormat string

	// Duration stops the run after the given time. Zero runs until a signal.
	Duration time.Duration
	Notes    bool
	Watch    bool

	ReconcileAttempts int
	ReconcileInterval time.Duration
	TimeoutPolicy     string

	SimStartDelay     time.Duration
	SimReadyDelay     time.Duration
	SimSampleInterval time.Duration
	SimFrequency      float64
	SimVibratoCents   float64
	SimVibratoRate    float64
	SimSilenceEvery   int
	SimFailStart      bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	rc := coordinator.DefaultReconcileConfig()
	sc := sim.DefaultConfig()
	return Config{
		Engine:            sim.DriverName,
		LogLevel:          "info",
		LogFormat:         LogFormatConsole,
		Notes:             true,
		Watch:             true,
		ReconcileAttempts: rc.Attempts,
		ReconcileInterval: rc.Interval,
		TimeoutPolicy:     rc.Policy.String(),
		SimStartDelay:     sc.StartDelay,
		SimReadyDelay:     sc.ReadyDelay,
		SimSampleInterval: sc.SampleInterval,
		SimFrequency:      sc.BaseFrequency,
		SimVibratoCents:   sc.VibratoCents,
		SimVibratoRate:    sc.VibratoRate,
		SimSilenceEvery:   sc.SilenceEvery,
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	if c.Engine == "" {
		return fmt.Errorf("engine is required")
	}

	if c.StateDir == "" {
		c.StateDir = DefaultStateDir()
		if c.StateDir == "" {
			return fmt.Errorf("state-dir is required (home directory unavailable)")
		}
	}

	if c.Duration < 0 {
		return fmt.Errorf("duration must not be negative")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	if c.LogFormat != LogFormatConsole && c.LogFormat != LogFormatJSON {
		return fmt.Errorf("log format %q: want %s or %s", c.LogFormat, LogFormatConsole, LogFormatJSON)
	}
	if _, err := c.Reconcile(); err != nil {
		return err
	}
	if c.SimSampleInterval <= 0 {
		return fmt.Errorf("sim sample interval must be positive")
	}
	return nil
}

// Reconcile returns the coordinator reconciliation settings.
func (c Config) Reconcile() (coordinator.ReconcileConfig, error) {
	policy, err := coordinator.ParsePolicy(c.TimeoutPolicy)
	if err != nil {
		return coordinator.ReconcileConfig{}, err
	}
	rc := coordinator.ReconcileConfig{
		Attempts: c.ReconcileAttempts,
		Interval: c.ReconcileInterval,
		Policy:   policy,
	}
	return rc, rc.Validate()
}

// EngineOptions returns the driver options for the configured engine.
func (c Config) EngineOptions() engine.Options {
	if c.Engine != sim.DriverName {
		return engine.Options{}
	}
	return engine.Options{
		"start_delay":     c.SimStartDelay.String(),
		"ready_delay":     c.SimReadyDelay.String(),
		"sample_interval": c.SimSampleInterval.String(),
		"base_frequency":  strconv.FormatFloat(c.SimFrequency, 'f', -1, 64),
		"vibrato_cents":   strconv.FormatFloat(c.SimVibratoCents, 'f', -1, 64),
		"vibrato_rate":    strconv.FormatFloat(c.SimVibratoRate, 'f', -1, 64),
		"silence_every":   strconv.Itoa(c.SimSilenceEvery),
		"fail_start":      strconv.FormatBool(c.SimFailStart),
	}
}

// DefaultStateDir returns ~/.pitch, or "" if the home directory is unknown.
func DefaultStateDir() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".pitch")
	}
	return ""
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setFloat sets a float64 value if positive and flag not changed.
func (s *configSetter) setFloat(flag string, value float64, dst *float64) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setFloatFromString parses a string to float64 and sets the destination if valid.
func (s *configSetter) setFloatFromString(flag, value string, dst *float64) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if f <= 0 {
		return nil
	}
	*dst = f
	return nil
}

// setBoolFromString accepts "true" and "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
