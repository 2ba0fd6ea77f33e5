package coordinator_test

import (
	"fmt"
	"sync"
	"time"

	"github.com/houvven/pitch/pkg/coordinator"
	"github.com/houvven/pitch/pkg/engine"
	"github.com/houvven/pitch/pkg/engine/sim"
	"github.com/houvven/pitch/pkg/lifecycle"
	"github.com/houvven/pitch/pkg/pitch"
)

// ExampleNew runs one session against the simulated engine.
func ExampleNew() {
	cfg := sim.DefaultConfig()
	cfg.ReadyDelay = 20 * time.Millisecond
	cfg.SampleInterval = 5 * time.Millisecond

	c, err := coordinator.New(engine.NewHandle(sim.DriverName, sim.New(cfg)),
		coordinator.WithReconcile(coordinator.ReconcileConfig{
			Attempts: 10,
			Interval: 20 * time.Millisecond,
		}),
	)
	if err != nil {
		fmt.Printf("failed to create coordinator: %v\n", err)
		return
	}
	defer c.Close()

	var once sync.Once
	first := make(chan pitch.Sample, 1)

	// Start returns immediately; samples arrive on the engine's goroutine.
	_ = c.Start(coordinator.ObserverFunc(func(s pitch.Sample) {
		once.Do(func() { first <- s })
	}))

	s := <-first
	fmt.Println("voiced:", s.Voiced())

	if err := c.Stop(); err != nil {
		fmt.Printf("failed to stop: %v\n", err)
		return
	}
	fmt.Println(c.State())

	// Output:
	// voiced: true
	// Idle
}

// Example_withEventHandler prints every state transition of a session.
func Example_withEventHandler() {
	cfg := sim.DefaultConfig()
	cfg.StartDelay = 0
	cfg.ReadyDelay = 0

	transitions := make(chan string, 8)
	c, err := coordinator.New(engine.NewHandle(sim.DriverName, sim.New(cfg)),
		coordinator.WithEventHandler(&printHandler{out: transitions}),
	)
	if err != nil {
		fmt.Printf("failed to create coordinator: %v\n", err)
		return
	}

	_ = c.Start(coordinator.ObserverFunc(func(pitch.Sample) {}))
	for c.State() != lifecycle.Running {
		time.Sleep(5 * time.Millisecond)
	}
	_ = c.Close()
	close(transitions)

	for t := range transitions {
		fmt.Println(t)
	}

	// Output:
	// Idle -> Starting
	// Starting -> Running
	// Running -> Stopping
	// Stopping -> Idle
}

type printHandler struct {
	out chan<- string
}

func (h *printHandler) OnStateChange(previous, current lifecycle.RunState, reason string) {
	h.out <- fmt.Sprintf("%s -> %s", previous, current)
}

func (h *printHandler) OnError(err error) {
	h.out <- "error: " + err.Error()
}
