package cliconfig

import (
	"testing"
	"time"
)

func TestApplyEnvConfig(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		changed  map[string]bool
		initial  Config
		expected Config
		wantErr  bool
	}{
		{
			name: "applies all valid env vars",
			envVars: map[string]string{
				"PITCH_ENGINE":              "sim",
				"PITCH_STATE_DIR":           "/env/state",
				"PITCH_LOG_LEVEL":           "warn",
				"PITCH_LOG_FORMAT":          "json",
				"PITCH_DURATION":            "10s",
				"PITCH_RECONCILE_ATTEMPTS":  "3",
				"PITCH_RECONCILE_INTERVAL":  "1s",
				"PITCH_TIMEOUT_POLICY":      "assume-running",
				"PITCH_SIM_SAMPLE_INTERVAL": "10ms",
				"PITCH_SIM_FREQUENCY":       "196",
				"PITCH_SIM_VIBRATO_RATE":    "4.5",
				"PITCH_SIM_SILENCE_EVERY":   "5",
				"PITCH_SIM_FAIL_START":      "1",
				"PITCH_WATCH":               "false",
			},
			changed: map[string]bool{},
			initial: Config{Watch: true},
			expected: Config{
				Engine:            "sim",
				StateDir:          "/env/state",
				LogLevel:          "warn",
				LogFormat:         "json",
				Duration:          10 * time.Second,
				ReconcileAttempts: 3,
				ReconcileInterval: time.Second,
				TimeoutPolicy:     "assume-running",
				SimSampleInterval: 10 * time.Millisecond,
				SimFrequency:      196,
				SimVibratoRate:    4.5,
				SimSilenceEvery:   5,
				SimFailStart:      true,
				Watch:             false,
			},
			wantErr: false,
		},
		{
			name: "respects changed flags",
			envVars: map[string]string{
				"PITCH_ENGINE":    "env-engine",
				"PITCH_LOG_LEVEL": "debug",
			},
			changed: map[string]bool{"engine": true},
			initial: Config{Engine: "flag-engine"},
			expected: Config{
				Engine:   "flag-engine",
				LogLevel: "debug",
			},
			wantErr: false,
		},
		{
			name: "returns error for invalid duration",
			envVars: map[string]string{
				"PITCH_RECONCILE_INTERVAL": "not-a-duration",
			},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name: "returns error for invalid int",
			envVars: map[string]string{
				"PITCH_RECONCILE_ATTEMPTS": "not-a-number",
			},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name: "returns error for invalid float",
			envVars: map[string]string{
				"PITCH_SIM_FREQUENCY": "not-a-float",
			},
			changed: map[string]bool{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg := tt.initial
			err := ApplyEnvConfig(&cfg, tt.changed)

			if (err != nil) != tt.wantErr {
				t.Fatalf("ApplyEnvConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if cfg != tt.expected {
				t.Errorf("ApplyEnvConfig() = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}

// Integration test: precedence order (CLI > Env > File)
func TestConfigPrecedence(t *testing.T) {
	fileConf := FileConfig{
		Engine:   "file-engine",
		LogLevel: "debug",
		Reconcile: ReconcileSection{
			Attempts: 9,
			Interval: "2s",
		},
	}

	t.Setenv("PITCH_ENGINE", "env-engine")
	t.Setenv("PITCH_RECONCILE_ATTEMPTS", "4")
	t.Setenv("PITCH_STATE_DIR", "/env/state")

	changed := map[string]bool{
		"engine": true,
	}

	cfg := Config{
		Engine: "cli-engine",
	}

	if err := ApplyFileConfig(&cfg, fileConf, changed); err != nil {
		t.Fatalf("ApplyFileConfig failed: %v", err)
	}
	if err := ApplyEnvConfig(&cfg, changed); err != nil {
		t.Fatalf("ApplyEnvConfig failed: %v", err)
	}

	if cfg.Engine != "cli-engine" {
		t.Errorf("Engine = %v, want cli-engine (CLI should win)", cfg.Engine)
	}
	if cfg.ReconcileAttempts != 4 {
		t.Errorf("ReconcileAttempts = %v, want 4 (env should override file)", cfg.ReconcileAttempts)
	}
	if cfg.StateDir != "/env/state" {
		t.Errorf("StateDir = %v, want /env/state (env should set)", cfg.StateDir)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %v, want debug (file should set)", cfg.LogLevel)
	}
	if cfg.ReconcileInterval != 2*time.Second {
		t.Errorf("ReconcileInterval = %v, want 2s (file should set)", cfg.ReconcileInterval)
	}
}
