package cliconfig

import (
	"testing"
	"time"

	"github.com/houvven/pitch/pkg/coordinator"
	"github.com/houvven/pitch/pkg/engine/sim"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Engine != sim.DriverName {
		t.Errorf("Engine = %v, want %v", cfg.Engine, sim.DriverName)
	}
	if cfg.ReconcileAttempts != 5 {
		t.Errorf("ReconcileAttempts = %v, want 5", cfg.ReconcileAttempts)
	}
	if cfg.ReconcileInterval != 500*time.Millisecond {
		t.Errorf("ReconcileInterval = %v, want 500ms", cfg.ReconcileInterval)
	}
	if cfg.TimeoutPolicy != "reset" {
		t.Errorf("TimeoutPolicy = %v, want reset", cfg.TimeoutPolicy)
	}
	if cfg.Duration != 0 {
		t.Errorf("Duration = %v, want 0", cfg.Duration)
	}
	if cfg.LogFormat != LogFormatConsole {
		t.Errorf("LogFormat = %v, want console", cfg.LogFormat)
	}
	if cfg.SimVibratoRate != sim.DefaultConfig().VibratoRate {
		t.Errorf("SimVibratoRate = %v, want %v", cfg.SimVibratoRate, sim.DefaultConfig().VibratoRate)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func(mut func(*Config)) Config {
		cfg := DefaultConfig()
		cfg.StateDir = "/tmp/pitch"
		if mut != nil {
			mut(&cfg)
		}
		return cfg
	}

	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			config:  valid(nil),
			wantErr: false,
		},
		{
			name:    "missing engine",
			config:  valid(func(c *Config) { c.Engine = "" }),
			wantErr: true,
		},
		{
			name:    "negative duration",
			config:  valid(func(c *Config) { c.Duration = -time.Second }),
			wantErr: true,
		},
		{
			name:    "unknown log level",
			config:  valid(func(c *Config) { c.LogLevel = "loud" }),
			wantErr: true,
		},
		{
			name:    "json log format",
			config:  valid(func(c *Config) { c.LogFormat = LogFormatJSON }),
			wantErr: false,
		},
		{
			name:    "unknown log format",
			config:  valid(func(c *Config) { c.LogFormat = "xml" }),
			wantErr: true,
		},
		{
			name:    "zero reconcile attempts",
			config:  valid(func(c *Config) { c.ReconcileAttempts = 0 }),
			wantErr: true,
		},
		{
			name:    "zero reconcile interval",
			config:  valid(func(c *Config) { c.ReconcileInterval = 0 }),
			wantErr: true,
		},
		{
			name:    "unknown timeout policy",
			config:  valid(func(c *Config) { c.TimeoutPolicy = "retry" }),
			wantErr: true,
		},
		{
			name:    "assume-running policy",
			config:  valid(func(c *Config) { c.TimeoutPolicy = "assume-running" }),
			wantErr: false,
		},
		{
			name:    "zero sample interval",
			config:  valid(func(c *Config) { c.SimSampleInterval = 0 }),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateDerivesStateDir(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.StateDir != "/home/tester/.pitch" {
		t.Errorf("StateDir = %v, want /home/tester/.pitch", cfg.StateDir)
	}
}

func TestConfig_Reconcile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ReconcileAttempts = 8
	cfg.ReconcileInterval = 250 * time.Millisecond
	cfg.TimeoutPolicy = "assume-running"

	rc, err := cfg.Reconcile()
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	want := coordinator.ReconcileConfig{
		Attempts: 8,
		Interval: 250 * time.Millisecond,
		Policy:   coordinator.PolicyAssumeRunning,
	}
	if rc != want {
		t.Errorf("Reconcile() = %+v, want %+v", rc, want)
	}
}

func TestConfig_EngineOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SimFrequency = 261.63
	cfg.SimSilenceEvery = 4
	cfg.SimVibratoCents = 15
	cfg.SimVibratoRate = 6.5
	cfg.SimFailStart = true

	got, err := sim.ParseOptions(cfg.EngineOptions())
	if err != nil {
		t.Fatalf("ParseOptions() error = %v", err)
	}
	if got.BaseFrequency != 261.63 {
		t.Errorf("BaseFrequency = %v, want 261.63", got.BaseFrequency)
	}
	if got.VibratoCents != 15 || got.VibratoRate != 6.5 {
		t.Errorf("vibrato = %v cents at %v Hz, want 15 at 6.5", got.VibratoCents, got.VibratoRate)
	}
	if got.SilenceEvery != 4 {
		t.Errorf("SilenceEvery = %v, want 4", got.SilenceEvery)
	}
	if !got.FailStart {
		t.Error("FailStart = false, want true")
	}
	if got.SampleInterval != cfg.SimSampleInterval {
		t.Errorf("SampleInterval = %v, want %v", got.SampleInterval, cfg.SimSampleInterval)
	}

	cfg.Engine = "other"
	if opts := cfg.EngineOptions(); len(opts) != 0 {
		t.Errorf("EngineOptions() for other driver = %v, want empty", opts)
	}
}

func TestConfigSetter(t *testing.T) {
	s := newConfigSetter(map[string]bool{"locked": true})

	str := "orig"
	s.setString("locked", "new", &str)
	if str != "orig" {
		t.Errorf("changed flag overwritten: %v", str)
	}
	s.setString("free", "", &str)
	if str != "orig" {
		t.Errorf("empty value applied: %v", str)
	}
	s.setString("free", "new", &str)
	if str != "new" {
		t.Errorf("setString() = %v, want new", str)
	}

	n := 3
	if err := s.setIntFromString("free", "-1", &n); err != nil || n != 3 {
		t.Errorf("non-positive int applied: n=%v err=%v", n, err)
	}
	if err := s.setIntFromString("free", "x", &n); err == nil {
		t.Error("setIntFromString() expected error")
	}

	d := time.Second
	if err := s.setDuration("free", "soon", &d); err == nil {
		t.Error("setDuration() expected error")
	}
}
