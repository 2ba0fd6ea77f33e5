package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (PITCH_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("engine", os.Getenv("PITCH_ENGINE"), &cfg.Engine)
	s.setString("state-dir", os.Getenv("PITCH_STATE_DIR"), &cfg.StateDir)
	s.setString("log-level", os.Getenv("PITCH_LOG_LEVEL"), &cfg.LogLevel)
	s.setString("log-format", os.Getenv("PITCH_LOG_FORMAT"), &cfg.LogFormat)
	s.setString("timeout-policy", os.Getenv("PITCH_TIMEOUT_POLICY"), &cfg.TimeoutPolicy)

	if err := s.setDuration("duration", os.Getenv("PITCH_DURATION"), &cfg.Duration); err != nil {
		return err
	}
	if err := s.setDuration("reconcile-interval", os.Getenv("PITCH_RECONCILE_INTERVAL"), &cfg.ReconcileInterval); err != nil {
		return err
	}
	if err := s.setIntFromString("reconcile-attempts", os.Getenv("PITCH_RECONCILE_ATTEMPTS"), &cfg.ReconcileAttempts); err != nil {
		return err
	}

	if err := s.setDuration("sim-start-delay", os.Getenv("PITCH_SIM_START_DELAY"), &cfg.SimStartDelay); err != nil {
		return err
	}
	if err := s.setDuration("sim-ready-delay", os.Getenv("PITCH_SIM_READY_DELAY"), &cfg.SimReadyDelay); err != nil {
		return err
	}
	if err := s.setDuration("sim-sample-interval", os.Getenv("PITCH_SIM_SAMPLE_INTERVAL"), &cfg.SimSampleInterval); err != nil {
		return err
	}
	if err := s.setFloatFromString("sim-frequency", os.Getenv("PITCH_SIM_FREQUENCY"), &cfg.SimFrequency); err != nil {
		return err
	}
	if err := s.setFloatFromString("sim-vibrato", os.Getenv("PITCH_SIM_VIBRATO"), &cfg.SimVibratoCents); err != nil {
		return err
	}
	if err := s.setFloatFromString("sim-vibrato-rate", os.Getenv("PITCH_SIM_VIBRATO_RATE"), &cfg.SimVibratoRate); err != nil {
		return err
	}
	if err := s.setIntFromString("sim-silence-every", os.Getenv("PITCH_SIM_SILENCE_EVERY"), &cfg.SimSilenceEvery); err != nil {
		return err
	}

	s.setBoolFromString("notes", os.Getenv("PITCH_NOTES"), &cfg.Notes)
	s.setBoolFromString("watch", os.Getenv("PITCH_WATCH"), &cfg.Watch)
	s.setBoolFromString("sim-fail-start", os.Getenv("PITCH_SIM_FAIL_START"), &cfg.SimFailStart)

	return nil
}
