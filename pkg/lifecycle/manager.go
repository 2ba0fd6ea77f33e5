package lifecycle

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/houvven/pitch/pkg/log"
)

// Common lifecycle errors.
var (
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrShutdownTimeout   = errors.New("shutdown timeout")
)

// ShutdownTimeout is the default maximum time to wait for background
// workers on shutdown.
const ShutdownTimeout = 10 * time.Second

// Manager holds the authoritative RunState and rejects invalid transitions.
type Manager struct {
	mu           sync.RWMutex
	state        RunState
	wg           sync.WaitGroup
	logger       log.Logger
	eventEmitter EventEmitter
}

// NewManager creates a manager in the Idle state. emitter may be nil.
func NewManager(logger log.Logger, emitter EventEmitter) *Manager {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Manager{
		state:        Idle,
		logger:       logger,
		eventEmitter: emitter,
	}
}

// State returns the current state.
func (m *Manager) State() RunState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// TransitionTo moves to newState, or returns ErrInvalidTransition and leaves
// the state untouched.
func (m *Manager) TransitionTo(newState RunState, reason string) error {
	m.mu.Lock()
	oldState := m.state

	if !CanTransition(oldState, newState) {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, oldState, newState)
	}

	m.state = newState
	m.mu.Unlock()

	if m.eventEmitter != nil {
		m.eventEmitter.OnStateChange(oldState, newState, reason)
	}

	m.logger.Info("state transition",
		log.Stringer("from", oldState),
		log.Stringer("to", newState),
		log.String("reason", reason),
	)

	return nil
}

// AddWorker increments the background worker count.
func (m *Manager) AddWorker() {
	m.wg.Add(1)
}

// WorkerDone decrements the background worker count.
func (m *Manager) WorkerDone() {
	m.wg.Done()
}

// WaitWithTimeout waits for all workers to finish.
// Returns ErrShutdownTimeout if the timeout expires first.
func (m *Manager) WaitWithTimeout(timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		m.logger.Warn("shutdown timeout, workers still running",
			log.Duration("timeout", timeout),
		)
		return ErrShutdownTimeout
	}
}
