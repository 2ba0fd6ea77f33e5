// Package log provides the structured logging abstraction used across pitch.
//
// Components accept a [Logger] and never talk to a concrete logging library
// directly. [ZerologAdapter] is the production implementation and
// [NoopLogger] is the default when no logger is configured.
//
//	logger := log.NewZerologAdapter(os.Stderr, "debug")
//	logger.Info("state transition", log.String("from", "Idle"), log.String("to", "Starting"))
package log
