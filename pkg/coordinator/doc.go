// Package coordinator controls the lifecycle of a pitch engine session.
//
// A [Coordinator] is bound to one engine handle for its lifetime. It starts
// the engine off the caller's goroutine, reconciles its own run state with
// the engine through a bounded poll, stops the engine, and relays every
// sample of the active session to exactly one [Observer].
//
// # Basic Usage
//
//	h, err := engine.Init("sim", nil)
//	if err != nil {
//	    return err
//	}
//	c, err := coordinator.New(h, coordinator.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	_ = c.Start(coordinator.ObserverFunc(func(s pitch.Sample) {
//	    fmt.Println(s)
//	}))
//	// ...
//	if err := c.Stop(); err != nil {
//	    // the engine is still running; Stop may be retried
//	}
//
// # Concurrency
//
// Start, Stop, QueryRunning, State and Stats are safe to call from any
// goroutine. Start never blocks on the engine. Stop blocks while the engine
// halts, and, if called while a start is still being dispatched, until that
// dispatch resolves.
//
// Samples are delivered one at a time in emission order. A sample is handed
// over only while its session accepts samples, and Stop withdraws that before
// it touches the engine: samples racing a stop are dropped and counted in
// [Stats.Dropped]. Stop does not wait for an OnPitch call already running, so
// an observer may call Stop, Start or Close from inside OnPitch.
//
// # Reconciliation
//
// After the engine's Start returns successfully the coordinator polls
// IsRunning up to [ReconcileConfig.Attempts] times, [ReconcileConfig.Interval]
// apart, and enters Running on the first true result. What happens when every
// poll fails is decided by [ReconcileConfig.Policy].
//
// # Events
//
// An [EventHandler] passed through [WithEventHandler] receives state changes
// and errors in order, on a dedicated goroutine. It may call Start, Stop and
// the query methods, but not Close, which waits for that goroutine.
package coordinator
