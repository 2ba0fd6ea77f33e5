package coordinator

import (
	"github.com/houvven/pitch/pkg/lifecycle"
	"github.com/houvven/pitch/pkg/pitch"
)

// Observer accepts the pitch samples of a session.
//
// OnPitch runs on the engine's goroutine, one call at a time. It may call
// Stop or Close on the coordinator that invoked it; the sample being handled
// is the last one it receives from that session.
type Observer interface {
	OnPitch(s pitch.Sample)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(s pitch.Sample)

// OnPitch calls f(s).
func (f ObserverFunc) OnPitch(s pitch.Sample) { f(s) }

// EventHandler receives lifecycle notifications.
type EventHandler interface {
	// OnStateChange is called after every RunState transition.
	OnStateChange(previous, current lifecycle.RunState, reason string)

	// OnError is called for engine start failures, reconciliation
	// timeouts and stop failures.
	OnError(err error)
}
