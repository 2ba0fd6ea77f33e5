package engine

import (
	"fmt"
	"sort"
	"sync"
)

// Options carries driver-specific settings, typically taken from
// configuration.
type Options map[string]string

// Driver creates the engine for a registered name.
type Driver interface {
	Open(opts Options) (Engine, error)
}

// DriverFunc adapts a function to the Driver interface.
type DriverFunc func(opts Options) (Engine, error)

// Open calls f(opts).
func (f DriverFunc) Open(opts Options) (Engine, error) { return f(opts) }

type registration struct {
	driver Driver
	once   sync.Once
	handle *Handle
	err    error
}

var (
	registryMu sync.Mutex
	registry   = make(map[string]*registration)
)

// Register makes a driver available under name. It panics on a nil driver
// or a duplicate name, as database/sql does.
func Register(name string, d Driver) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if d == nil {
		panic("engine: Register driver is nil")
	}
	if _, dup := registry[name]; dup {
		panic("engine: Register called twice for driver " + name)
	}
	registry[name] = &registration{driver: d}
}

// Drivers returns the sorted names of the registered drivers.
func Drivers() []string {
	registryMu.Lock()
	defer registryMu.Unlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Init opens the named driver on first use and returns its handle. Later
// calls return the same handle and error, whatever the options.
func Init(name string, opts Options) (*Handle, error) {
	registryMu.Lock()
	reg, ok := registry[name]
	registryMu.Unlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, name)
	}

	reg.once.Do(func() {
		e, err := reg.driver.Open(opts)
		if err != nil {
			reg.err = fmt.Errorf("open driver %q: %w", name, err)
			return
		}
		reg.handle = NewHandle(name, e)
	})

	return reg.handle, reg.err
}
