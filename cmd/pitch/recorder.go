package main

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/houvven/pitch/pkg/coordinator"
	"github.com/houvven/pitch/pkg/lifecycle"
	"github.com/houvven/pitch/pkg/log"
	"github.com/houvven/pitch/pkg/pitch"
	"github.com/houvven/pitch/pkg/state"
)

// recorder prints samples, folds them into the session summary and reacts
// to coordinator events.
type recorder struct {
	out    io.Writer
	notes  bool
	logger log.Logger

	// state reports the coordinator's RunState. It is set before the first
	// Start.
	state func() lifecycle.RunState
	// fatal ends the run. It is called at most once per failure.
	fatal func(error)

	mu      sync.Mutex
	summary state.Session
	// done is set by finish. An OnPitch call the coordinator admitted just
	// before its stop may still arrive afterwards and is ignored.
	done bool
}

func newRecorder(out io.Writer, notes bool, logger log.Logger) *recorder {
	return &recorder{
		out:    out,
		notes:  notes,
		logger: logger,
		state:  func() lifecycle.RunState { return lifecycle.Idle },
		fatal:  func(error) {},
	}
}

func (r *recorder) OnPitch(s pitch.Sample) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done {
		return
	}
	r.summary.Observe(s.Hz())
	fmt.Fprintln(r.out, formatSample(s, r.notes))
}

func (r *recorder) OnStateChange(previous, current lifecycle.RunState, reason string) {
	r.logger.Info("session "+current.String(),
		log.Stringer("from", previous),
		log.String("reason", reason),
	)
}

func (r *recorder) OnError(err error) {
	switch {
	case errors.Is(err, coordinator.ErrEngineStart):
		r.fatal(err)
	case errors.Is(err, coordinator.ErrReconcileTimeout):
		// The session carries on if it is Running anyway: assumed running, or
		// kept alive because the reset could not stop the engine.
		if r.state() != lifecycle.Running {
			r.fatal(err)
			return
		}
		r.logger.Warn("engine unconfirmed, continuing", log.Err(err))
	default:
		r.logger.Error("session error", log.Err(err))
	}
}

// snapshot returns the pitch part of the summary.
func (r *recorder) snapshot() state.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.summary
}

// finish stops printing and returns the final pitch summary.
func (r *recorder) finish() state.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.done = true
	return r.summary
}

func formatSample(s pitch.Sample, notes bool) string {
	line := fmt.Sprintf("%.3f Hz", s.Hz())
	if !notes {
		return line
	}
	if n, ok := pitch.NoteOf(s); ok {
		return line + "  " + n.String()
	}
	return line + "  -"
}
