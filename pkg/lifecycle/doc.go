// Package lifecycle provides the run-state machine and the bounded polling
// used to reconcile it with an engine.
//
// # State Machine
//
// Valid state transitions:
//   - Idle -> Starting
//   - Starting -> Running, Idle
//   - Running -> Stopping
//   - Stopping -> Idle, Running
//
// Starting -> Idle is a failed start. Stopping -> Running is a stop that did
// not take effect and may be retried.
//
// # Usage
//
//	m := lifecycle.NewManager(logger, emitter)
//	if err := m.TransitionTo(lifecycle.Starting, "start requested"); err != nil {
//	    return err
//	}
//
//	p := lifecycle.Poller{Attempts: 5, Interval: 500 * time.Millisecond}
//	n, err := p.Poll(ctx, func(int) bool { return eng.IsRunning() })
package lifecycle
