package coordinator

import (
	"sync"
	"testing"
	"time"

	"github.com/houvven/pitch/pkg/engine"
	"github.com/houvven/pitch/pkg/lifecycle"
	"github.com/houvven/pitch/pkg/pitch"
)

// fakeEngine is a scripted engine.Engine.
type fakeEngine struct {
	mu sync.Mutex

	startErr   error
	startBlock chan struct{}
	stopErr    error
	stopBlock  chan struct{}

	// runningSeq is consumed by IsRunning before falling back to running.
	runningSeq    []bool
	neverRunning  bool
	stickyRunning bool

	running bool
	cb      engine.Callback

	starts  int
	stops   int
	queries []time.Time
}

func (f *fakeEngine) Start(cb engine.Callback) error {
	f.mu.Lock()
	block := f.startBlock
	f.mu.Unlock()
	if block != nil {
		<-block
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts++
	if f.startErr != nil {
		return f.startErr
	}
	f.cb = cb
	f.running = true
	return nil
}

func (f *fakeEngine) Stop() error {
	f.mu.Lock()
	f.stops++
	block := f.stopBlock
	f.mu.Unlock()
	if block != nil {
		<-block
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stopErr != nil {
		return f.stopErr
	}
	f.cb = nil
	f.running = f.stickyRunning
	return nil
}

func (f *fakeEngine) IsRunning() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, time.Now())
	if len(f.runningSeq) > 0 {
		v := f.runningSeq[0]
		f.runningSeq = f.runningSeq[1:]
		return v
	}
	if f.neverRunning {
		return false
	}
	return f.running
}

func (f *fakeEngine) callback() engine.Callback {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cb
}

// emit invokes the current callback, as the engine's own goroutine would.
func (f *fakeEngine) emit(samples ...pitch.Sample) {
	cb := f.callback()
	if cb == nil {
		return
	}
	for _, s := range samples {
		cb(s)
	}
}

func (f *fakeEngine) set(fn func(f *fakeEngine)) {
	f.mu.Lock()
	fn(f)
	f.mu.Unlock()
}

func (f *fakeEngine) counts() (starts, stops, queries int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.starts, f.stops, len(f.queries)
}

// recordingObserver collects samples.
type recordingObserver struct {
	mu      sync.Mutex
	samples []pitch.Sample
}

func (o *recordingObserver) OnPitch(s pitch.Sample) {
	o.mu.Lock()
	o.samples = append(o.samples, s)
	o.mu.Unlock()
}

func (o *recordingObserver) Samples() []pitch.Sample {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]pitch.Sample(nil), o.samples...)
}

type transition struct {
	from, to lifecycle.RunState
	reason   string
}

// recordingHandler collects events.
type recordingHandler struct {
	mu          sync.Mutex
	transitions []transition
	errs        []error
}

func (h *recordingHandler) OnStateChange(previous, current lifecycle.RunState, reason string) {
	h.mu.Lock()
	h.transitions = append(h.transitions, transition{previous, current, reason})
	h.mu.Unlock()
}

func (h *recordingHandler) OnError(err error) {
	h.mu.Lock()
	h.errs = append(h.errs, err)
	h.mu.Unlock()
}

func (h *recordingHandler) Transitions() []transition {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]transition(nil), h.transitions...)
}

func (h *recordingHandler) Errors() []error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]error(nil), h.errs...)
}

func waitFor(t *testing.T, timeout time.Duration, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func waitState(t *testing.T, c *Coordinator, want lifecycle.RunState) {
	t.Helper()
	waitFor(t, 2*time.Second, "state "+want.String(), func() bool { return c.State() == want })
}

func fastReconcile() ReconcileConfig {
	return ReconcileConfig{Attempts: 5, Interval: 20 * time.Millisecond, Policy: PolicyReset}
}

func newTestCoordinator(t *testing.T, f *fakeEngine, opts ...Option) (*Coordinator, *recordingHandler) {
	t.Helper()
	h := &recordingHandler{}
	opts = append([]Option{WithReconcile(fastReconcile()), WithEventHandler(h)}, opts...)
	c, err := New(engine.NewHandle("fake", f), opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c, h
}
