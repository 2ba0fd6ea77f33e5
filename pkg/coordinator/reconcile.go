package coordinator

import (
	"fmt"
	"time"

	"github.com/houvven/pitch/pkg/lifecycle"
)

// TimeoutPolicy decides the session outcome when reconciliation never sees
// the engine running.
type TimeoutPolicy int

const (
	// PolicyReset stops the engine and returns to Idle.
	PolicyReset TimeoutPolicy = iota

	// PolicyAssumeRunning enters Running anyway, trusting the successful
	// Start call.
	PolicyAssumeRunning
)

// String returns the configuration name of the policy.
func (p TimeoutPolicy) String() string {
	switch p {
	case PolicyReset:
		return "reset"
	case PolicyAssumeRunning:
		return "assume-running"
	default:
		return "unknown"
	}
}

// ParsePolicy parses "reset" or "assume-running". An empty string is reset.
func ParsePolicy(s string) (TimeoutPolicy, error) {
	switch s {
	case "", "reset":
		return PolicyReset, nil
	case "assume-running":
		return PolicyAssumeRunning, nil
	default:
		return PolicyReset, fmt.Errorf("%w: unknown timeout policy %q", ErrInvalidReconcile, s)
	}
}

// ReconcileConfig bounds the poll that follows an engine start.
type ReconcileConfig struct {
	Attempts int
	Interval time.Duration
	Policy   TimeoutPolicy
}

// DefaultReconcileConfig returns 5 attempts, 500ms apart, with PolicyReset.
func DefaultReconcileConfig() ReconcileConfig {
	return ReconcileConfig{
		Attempts: lifecycle.DefaultPollAttempts,
		Interval: lifecycle.DefaultPollInterval,
		Policy:   PolicyReset,
	}
}

// Validate checks the settings.
func (r ReconcileConfig) Validate() error {
	if r.Attempts < 1 {
		return fmt.Errorf("%w: attempts must be at least 1", ErrInvalidReconcile)
	}
	if r.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive", ErrInvalidReconcile)
	}
	if r.Policy != PolicyReset && r.Policy != PolicyAssumeRunning {
		return fmt.Errorf("%w: unknown timeout policy %d", ErrInvalidReconcile, r.Policy)
	}
	return nil
}

func (r ReconcileConfig) poller() lifecycle.Poller {
	return lifecycle.Poller{Attempts: r.Attempts, Interval: r.Interval}
}
