package engine

import (
	"errors"

	"github.com/houvven/pitch/pkg/pitch"
)

// Errors returned by engines and the driver registry.
var (
	// ErrStartFailed is returned by Start when the engine could not begin
	// capture.
	ErrStartFailed = errors.New("engine: start failed")

	// ErrStopFailed is returned by Stop when the engine could not halt.
	ErrStopFailed = errors.New("engine: stop failed")

	// ErrUnknownDriver is returned by Init for an unregistered driver name.
	ErrUnknownDriver = errors.New("engine: unknown driver")

	// ErrHandleInUse is returned by Acquire when the handle already has an
	// owner.
	ErrHandleInUse = errors.New("engine: handle already in use")
)

// Callback receives pitch samples. It is invoked zero or more times while
// the engine is active, on an engine-owned goroutine.
type Callback func(s pitch.Sample)

// Engine is the contract of an external pitch-detection engine.
type Engine interface {
	// Start begins capture and estimation, then invokes cb for every
	// detected sample until Stop. It may block until the audio device is
	// acquired. Calling Start again replaces the callback.
	Start(cb Callback) error

	// Stop halts capture and callback emission. It may block briefly.
	Stop() error

	// IsRunning is a non-blocking point-in-time query. It may lag behind
	// Start and Stop.
	IsRunning() bool
}
