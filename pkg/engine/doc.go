// Package engine defines the boundary to a pitch-detection engine.
//
// An engine owns audio capture and pitch estimation. It is reached through
// three primitives (Start, Stop, IsRunning) and reports samples through a
// [Callback] invoked on a goroutine the caller does not control.
//
// Engines are provided by drivers. A driver is registered once, usually from
// an init function in its package, and turned into a [Handle] by an explicit
// call to [Init]:
//
//	import _ "github.com/houvven/pitch/pkg/engine/sim"
//
//	h, err := engine.Init("sim", nil)
//	if err != nil {
//	    return err
//	}
//
// Init is idempotent per driver name: every call returns the same handle, so
// the underlying engine is set up exactly once per process. A handle can be
// bound to a single owner at a time, see [Handle.Acquire].
package engine
