package coordinator

import "github.com/houvven/pitch/pkg/log"

// Option configures optional behavior of a Coordinator.
type Option func(*options)

type options struct {
	logger       log.Logger
	eventHandler EventHandler
	reconcile    ReconcileConfig
}

func defaultOptions() options {
	return options{
		logger:    log.NewNoopLogger(),
		reconcile: DefaultReconcileConfig(),
	}
}

// WithLogger sets the logger. If not provided, nothing is logged.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithEventHandler sets a handler for state changes and errors.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithReconcile overrides the reconciliation bounds and timeout policy.
func WithReconcile(cfg ReconcileConfig) Option {
	return func(o *options) {
		o.reconcile = cfg
	}
}
