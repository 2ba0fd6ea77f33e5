package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/houvven/pitch/pkg/engine"
	"github.com/houvven/pitch/pkg/lifecycle"
	"github.com/houvven/pitch/pkg/log"
	"github.com/houvven/pitch/pkg/pitch"
)

// Stats counts what the coordinator relayed.
type Stats struct {
	Sessions  uint64
	Delivered uint64
	Dropped   uint64
	Last      pitch.Sample
	LastAt    time.Time
}

// Coordinator is the single point of control for an engine.
type Coordinator struct {
	handle *engine.Handle
	engine engine.Engine
	logger log.Logger
	events *eventQueue

	// mu guards everything below and is the lock behind cond. The
	// lifecycle manager is only transitioned while mu is held.
	mu        sync.Mutex
	cond      *sync.Cond
	lifecycle *lifecycle.Manager
	reconcile ReconcileConfig
	observer  Observer
	session   uint64
	accepting bool
	closed    bool
	stats     Stats

	// stopRequested is set while a Stop waits for a start dispatch.
	stopRequested bool
	// pending is a Start queued behind an in-flight Stop.
	pending         Observer
	cancelReconcile context.CancelFunc

	// deliverMu serializes observer calls. Stop never takes it, so an
	// observer may call Stop or Close from OnPitch.
	deliverMu sync.Mutex
}

// New binds a coordinator to the engine behind h. The handle stays claimed
// until Close.
func New(h *engine.Handle, opts ...Option) (*Coordinator, error) {
	if h == nil {
		return nil, ErrNilHandle
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.reconcile.Validate(); err != nil {
		return nil, err
	}

	eng, err := h.Acquire()
	if err != nil {
		return nil, err
	}

	c := &Coordinator{
		handle:    h,
		engine:    eng,
		logger:    o.logger,
		events:    newEventQueue(o.eventHandler),
		reconcile: o.reconcile,
	}
	c.cond = sync.NewCond(&c.mu)
	c.lifecycle = lifecycle.NewManager(o.logger, c.events)

	return c, nil
}

// Start begins a session delivering samples to obs. It returns without
// waiting for the engine.
//
// Start is a no-op while a session is Starting or Running. While Stopping,
// the start is queued and begins once the stop succeeds.
func (c *Coordinator) Start(obs Observer) error {
	if obs == nil {
		return ErrNilObserver
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	switch st := c.lifecycle.State(); {
	case st == lifecycle.Stopping || (st == lifecycle.Starting && c.stopRequested):
		c.pending = obs
		c.logger.Debug("start queued behind stop", log.Stringer("state", st))
		return nil
	case st.Active():
		c.logger.Debug("start ignored, session already active", log.Stringer("state", st))
		return nil
	}

	return c.startLocked(obs, "start requested")
}

func (c *Coordinator) startLocked(obs Observer, reason string) error {
	if err := c.lifecycle.TransitionTo(lifecycle.Starting, reason); err != nil {
		return err
	}

	c.session++
	c.stats.Sessions++
	c.observer = obs
	c.accepting = true

	ctx, cancel := context.WithCancel(context.Background())
	c.cancelReconcile = cancel

	c.lifecycle.AddWorker()
	go c.dispatch(ctx, cancel, c.session, c.reconcile)

	return nil
}

// dispatch runs the engine start and the reconciliation poll off the
// caller's goroutine.
func (c *Coordinator) dispatch(ctx context.Context, cancel context.CancelFunc, id uint64, rc ReconcileConfig) {
	defer c.lifecycle.WorkerDone()
	defer cancel()

	if err := c.engine.Start(func(s pitch.Sample) { c.relay(id, s) }); err != nil {
		c.logger.Error("engine start failed", log.Err(err), log.Uint64("session", id))
		c.abortStart("engine start failed")
		c.events.reportError(fmt.Errorf("%w: %v", ErrEngineStart, err))
		return
	}

	n, err := rc.poller().Poll(ctx, func(attempt int) bool {
		running := c.engine.IsRunning()
		c.logger.Debug("reconcile poll",
			log.Int("attempt", attempt),
			log.Bool("running", running),
			log.Uint64("session", id),
		)
		return running
	})

	switch {
	case err == nil:
		c.finishStart(fmt.Sprintf("engine running after %d polls", n))

	case errors.Is(err, context.Canceled):
		// Stop is waiting for us and will tear the started engine down.
		c.finishStart("start interrupted by stop")

	case rc.Policy == PolicyAssumeRunning:
		c.logger.Warn("engine never reported running, assuming it is",
			log.Int("attempts", n),
			log.Duration("interval", rc.Interval),
		)
		c.finishStart("reconcile timed out, assuming running")
		c.events.reportError(ErrReconcileTimeout)

	default:
		c.logger.Warn("engine never reported running, resetting session",
			log.Int("attempts", n),
			log.Duration("interval", rc.Interval),
		)
		if err := c.stopEngine(); err != nil {
			// The engine may still be capturing. Keep the session so that a
			// later Stop can retry.
			c.logger.Error("engine stop after reconcile timeout failed", log.Err(err))
			c.finishStart("reconcile timed out, engine stop failed")
			c.events.reportError(ErrReconcileTimeout)
			c.events.reportError(fmt.Errorf("%w: %v", ErrStopFailed, err))
			return
		}
		c.abortStart("reconcile timed out")
		c.events.reportError(ErrReconcileTimeout)
	}
}

// stopEngine stops the engine and confirms it with one running query.
func (c *Coordinator) stopEngine() error {
	err := c.engine.Stop()
	if err == nil && c.engine.IsRunning() {
		err = errStillRunning
	}
	return err
}

func (c *Coordinator) finishStart(reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.lifecycle.TransitionTo(lifecycle.Running, reason); err != nil {
		c.logger.Error("failed to enter running", log.Err(err))
	}
	c.cond.Broadcast()
}

func (c *Coordinator) abortStart(reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.observer = nil
	c.accepting = false
	if err := c.lifecycle.TransitionTo(lifecycle.Idle, reason); err != nil {
		c.logger.Error("failed to return to idle", log.Err(err))
	}
	c.cond.Broadcast()
}

// relay forwards one sample of session id to the observer, or drops it if
// that session is no longer accepting samples. The sample is admitted under
// mu, so nothing is admitted once Stop has cut delivery off.
func (c *Coordinator) relay(id uint64, s pitch.Sample) {
	c.deliverMu.Lock()
	defer c.deliverMu.Unlock()

	c.mu.Lock()
	obs := c.observer
	ok := c.accepting && c.session == id && obs != nil
	if ok {
		c.stats.Delivered++
		c.stats.Last = s
		c.stats.LastAt = time.Now()
	} else {
		c.stats.Dropped++
	}
	c.mu.Unlock()

	if ok {
		obs.OnPitch(s)
	}
}

// Stop ends the active session. It is a no-op when Idle. A stop that the
// engine does not honour returns an error wrapping ErrStopFailed and leaves
// the session Running, so Stop can be retried.
//
// No sample is handed to the observer after Stop returns. Stop does not wait
// for an OnPitch call that was already under way, which lets the observer
// call Stop itself.
func (c *Coordinator) Stop() error {
	c.mu.Lock()

	for st := c.lifecycle.State(); st != lifecycle.Running; st = c.lifecycle.State() {
		switch st {
		case lifecycle.Idle:
			c.stopRequested = false
			c.launchPendingLocked()
			c.mu.Unlock()
			return nil

		case lifecycle.Starting:
			c.stopRequested = true
			c.accepting = false
			if c.cancelReconcile != nil {
				c.cancelReconcile()
			}
			c.cond.Wait()

		case lifecycle.Stopping:
			c.cond.Wait()
		}
	}

	c.stopRequested = false
	if err := c.lifecycle.TransitionTo(lifecycle.Stopping, "stop requested"); err != nil {
		c.mu.Unlock()
		return err
	}
	c.accepting = false
	c.mu.Unlock()

	err := c.stopEngine()

	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.cond.Broadcast()

	if err != nil {
		wrapped := fmt.Errorf("%w: %v", ErrStopFailed, err)
		c.logger.Error("engine stop failed", log.Err(err))
		if terr := c.lifecycle.TransitionTo(lifecycle.Running, "engine stop failed"); terr != nil {
			c.logger.Error("failed to return to running", log.Err(terr))
		}
		c.accepting = true
		if c.pending != nil {
			c.logger.Warn("dropping start queued behind failed stop")
			c.pending = nil
		}
		c.events.reportError(wrapped)
		return wrapped
	}

	c.observer = nil
	if terr := c.lifecycle.TransitionTo(lifecycle.Idle, "engine stopped"); terr != nil {
		c.logger.Error("failed to return to idle", log.Err(terr))
	}
	c.launchPendingLocked()

	return nil
}

func (c *Coordinator) launchPendingLocked() {
	obs := c.pending
	c.pending = nil
	if obs == nil || c.closed {
		return
	}
	if err := c.startLocked(obs, "queued start"); err != nil {
		c.logger.Error("queued start failed", log.Err(err))
	}
}

// QueryRunning asks the engine directly whether it is running. Use it to
// resynchronise when State alone cannot be trusted.
func (c *Coordinator) QueryRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	return c.engine.IsRunning()
}

// State returns the coordinator's RunState.
func (c *Coordinator) State() lifecycle.RunState {
	return c.lifecycle.State()
}

// Stats returns a snapshot of the relay counters.
func (c *Coordinator) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Reconcile returns the current reconciliation settings.
func (c *Coordinator) Reconcile() ReconcileConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reconcile
}

// SetReconcile replaces the reconciliation settings. A poll already in
// progress keeps the settings it started with.
func (c *Coordinator) SetReconcile(cfg ReconcileConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.reconcile = cfg
	c.logger.Info("reconcile settings updated",
		log.Int("attempts", cfg.Attempts),
		log.Duration("interval", cfg.Interval),
		log.Stringer("policy", cfg.Policy),
	)
	return nil
}

// Close stops any session, waits for background work and releases the
// engine handle. Start fails with ErrClosed afterwards.
func (c *Coordinator) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.pending = nil
	c.mu.Unlock()

	stopErr := c.Stop()
	waitErr := c.lifecycle.WaitWithTimeout(lifecycle.ShutdownTimeout)

	c.events.close()
	c.handle.Release()

	return errors.Join(stopErr, waitErr)
}
