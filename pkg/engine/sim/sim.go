// Package sim provides a simulated pitch engine registered as the "sim"
// driver. It behaves like a native engine: Start blocks while the device is
// set up, IsRunning lags Start, and samples arrive on the engine's own
// goroutine.
package sim

import (
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/houvven/pitch/pkg/engine"
	"github.com/houvven/pitch/pkg/pitch"
)

// DriverName is the name the simulator registers under.
const DriverName = "sim"

// Valid pitch range reported by the engine; anything outside is clamped.
const (
	MinValidPitch = 50.0
	MaxValidPitch = 2000.0
)

// Config controls the simulated engine.
type Config struct {
	// StartDelay is how long Start blocks, emulating device acquisition.
	StartDelay time.Duration

	// ReadyDelay is how long after Start returns IsRunning keeps reporting
	// false and no samples are emitted.
	ReadyDelay time.Duration

	// SampleInterval is the time between samples.
	SampleInterval time.Duration

	// BaseFrequency is the centre of the generated pitch, in Hz.
	BaseFrequency float64

	// VibratoCents and VibratoRate shape a sinusoidal deviation around
	// BaseFrequency.
	VibratoCents float64
	VibratoRate  float64

	// SilenceEvery makes every Nth sample unvoiced (0). Zero disables it.
	SilenceEvery int

	// FailStart makes Start report failure.
	FailStart bool
}

// DefaultConfig returns a Config producing an A4 with gentle vibrato,
// roughly matching a 1024-frame buffer at 22050 Hz.
func DefaultConfig() Config {
	return Config{
		StartDelay:     50 * time.Millisecond,
		ReadyDelay:     300 * time.Millisecond,
		SampleInterval: 46 * time.Millisecond,
		BaseFrequency:  440,
		VibratoCents:   30,
		VibratoRate:    5,
		SilenceEvery:   0,
	}
}

func init() {
	engine.Register(DriverName, engine.DriverFunc(func(opts engine.Options) (engine.Engine, error) {
		cfg, err := ParseOptions(opts)
		if err != nil {
			return nil, err
		}
		return New(cfg), nil
	}))
}

// ParseOptions builds a Config from driver options, starting from
// DefaultConfig. Recognised keys: start_delay, ready_delay, sample_interval,
// base_frequency, vibrato_cents, vibrato_rate, silence_every, fail_start.
func ParseOptions(opts engine.Options) (Config, error) {
	cfg := DefaultConfig()

	durations := map[string]*time.Duration{
		"start_delay":     &cfg.StartDelay,
		"ready_delay":     &cfg.ReadyDelay,
		"sample_interval": &cfg.SampleInterval,
	}
	for key, dst := range durations {
		if v, ok := opts[key]; ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return cfg, fmt.Errorf("parse %s: %w", key, err)
			}
			*dst = d
		}
	}

	floats := map[string]*float64{
		"base_frequency": &cfg.BaseFrequency,
		"vibrato_cents":  &cfg.VibratoCents,
		"vibrato_rate":   &cfg.VibratoRate,
	}
	for key, dst := range floats {
		if v, ok := opts[key]; ok && v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return cfg, fmt.Errorf("parse %s: %w", key, err)
			}
			*dst = f
		}
	}

	if v, ok := opts["silence_every"]; ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("parse silence_every: %w", err)
		}
		cfg.SilenceEvery = n
	}
	if v, ok := opts["fail_start"]; ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("parse fail_start: %w", err)
		}
		cfg.FailStart = b
	}

	if cfg.SampleInterval <= 0 {
		return cfg, fmt.Errorf("sample_interval must be positive")
	}
	return cfg, nil
}

// Engine is the simulated engine.
type Engine struct {
	cfg Config

	mu      sync.Mutex
	cb      engine.Callback
	active  bool
	readyAt time.Time
	done    chan struct{}
	// inCallback is set while the emitter is inside cb.
	inCallback bool
	wg         sync.WaitGroup
}

// New creates a simulated engine.
func New(cfg Config) *Engine {
	if cfg.SampleInterval <= 0 {
		cfg.SampleInterval = DefaultConfig().SampleInterval
	}
	return &Engine{cfg: cfg}
}

// Start blocks for StartDelay, then begins emitting samples to cb once
// ReadyDelay has passed. Starting an active engine only swaps the callback.
func (e *Engine) Start(cb engine.Callback) error {
	e.mu.Lock()
	if e.active {
		e.cb = cb
		e.mu.Unlock()
		return nil
	}
	e.mu.Unlock()

	time.Sleep(e.cfg.StartDelay)

	if e.cfg.FailStart {
		return engine.ErrStartFailed
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active {
		e.cb = cb
		return nil
	}

	e.cb = cb
	e.active = true
	e.readyAt = time.Now().Add(e.cfg.ReadyDelay)
	e.done = make(chan struct{})
	e.inCallback = false

	e.wg.Add(1)
	go e.emit(e.done, e.readyAt)

	return nil
}

// Stop halts emission. No callback starts after Stop returns. Stop waits for
// the emitting goroutine to exit unless a callback is running, which is the
// case when cb itself calls Stop.
func (e *Engine) Stop() error {
	e.mu.Lock()
	if !e.active {
		e.mu.Unlock()
		return nil
	}
	e.active = false
	e.cb = nil
	close(e.done)
	busy := e.inCallback
	e.mu.Unlock()

	if !busy {
		e.wg.Wait()
	}
	return nil
}

// IsRunning reports true once the engine is active and past its ready delay.
func (e *Engine) IsRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active && !time.Now().Before(e.readyAt)
}

func (e *Engine) emit(done <-chan struct{}, readyAt time.Time) {
	defer e.wg.Done()

	select {
	case <-done:
		return
	case <-time.After(time.Until(readyAt)):
	}

	ticker := time.NewTicker(e.cfg.SampleInterval)
	defer ticker.Stop()

	start := time.Now()
	var n int
	for {
		select {
		case <-done:
			return
		case now := <-ticker.C:
			n++

			e.mu.Lock()
			if e.done != done {
				e.mu.Unlock()
				return
			}
			cb := e.cb
			e.inCallback = cb != nil
			e.mu.Unlock()
			if cb == nil {
				continue
			}
			cb(e.sampleAt(n, now.Sub(start)))

			e.mu.Lock()
			if e.done == done {
				e.inCallback = false
			}
			e.mu.Unlock()
		}
	}
}

// sampleAt returns the n-th sample, taken elapsed after the first one.
func (e *Engine) sampleAt(n int, elapsed time.Duration) pitch.Sample {
	if e.cfg.SilenceEvery > 0 && n%e.cfg.SilenceEvery == 0 {
		return 0
	}

	cents := e.cfg.VibratoCents * math.Sin(2*math.Pi*e.cfg.VibratoRate*elapsed.Seconds())
	hz := e.cfg.BaseFrequency * math.Pow(2, cents/1200)
	hz = math.Max(MinValidPitch, math.Min(MaxValidPitch, hz))
	return pitch.Sample(hz)
}

var _ engine.Engine = (*Engine)(nil)
