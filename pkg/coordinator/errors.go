package coordinator

import "errors"

// Errors reported by the coordinator. Engine failures are wrapped, so use
// errors.Is to check for them.
var (
	// ErrNilObserver is returned by Start when no observer is given.
	ErrNilObserver = errors.New("coordinator: nil observer")

	// ErrNilHandle is returned by New when no engine handle is given.
	ErrNilHandle = errors.New("coordinator: nil engine handle")

	// ErrClosed is returned by Start after Close.
	ErrClosed = errors.New("coordinator: closed")

	// ErrEngineStart is reported to the event handler when the engine's
	// Start fails. The session goes back to Idle.
	ErrEngineStart = errors.New("coordinator: engine start failed")

	// ErrReconcileTimeout is reported to the event handler when every
	// reconciliation poll saw the engine not running.
	ErrReconcileTimeout = errors.New("coordinator: engine did not report running")

	// ErrStopFailed is returned by Stop when the engine failed to stop or
	// still reports running afterwards. The session stays Running.
	ErrStopFailed = errors.New("coordinator: engine stop failed")

	// ErrInvalidReconcile is returned for unusable reconciliation settings.
	ErrInvalidReconcile = errors.New("coordinator: invalid reconcile config")
)

var errStillRunning = errors.New("engine still running after stop")
