package engine

import "sync"

// Handle is an opaque reference to an initialised engine. It has at most one
// owner at a time.
type Handle struct {
	name   string
	engine Engine

	mu    sync.Mutex
	owned bool
}

// NewHandle wraps an engine that was set up outside the registry, such as a
// test double.
func NewHandle(name string, e Engine) *Handle {
	return &Handle{name: name, engine: e}
}

// Name returns the driver name the handle was created for.
func (h *Handle) Name() string { return h.name }

// Acquire claims the handle and returns the engine behind it.
func (h *Handle) Acquire() (Engine, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.owned {
		return nil, ErrHandleInUse
	}
	h.owned = true
	return h.engine, nil
}

// Release gives the handle back so another owner may acquire it.
func (h *Handle) Release() {
	h.mu.Lock()
	h.owned = false
	h.mu.Unlock()
}

// InUse reports whether the handle currently has an owner.
func (h *Handle) InUse() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.owned
}
