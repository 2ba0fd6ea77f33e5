package log

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// ZerologAdapter implements Logger on top of zerolog.
type ZerologAdapter struct {
	logger zerolog.Logger
}

// NewZerologAdapter creates an adapter writing human-readable console output
// to w. An unknown or empty level falls back to info.
func NewZerologAdapter(w io.Writer, level string) *ZerologAdapter {
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
	}
	logger := zerolog.New(output).Level(ParseLevel(level)).With().Timestamp().Logger()
	return &ZerologAdapter{logger: logger}
}

// NewZerologAdapterWithLogger wraps an existing zerolog.Logger.
func NewZerologAdapterWithLogger(logger zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{logger: logger}
}

// ParseLevel converts a textual level to a zerolog level.
func ParseLevel(level string) zerolog.Level {
	if level == "" {
		return zerolog.InfoLevel
	}
	l, err := zerolog.ParseLevel(level)
	if err != nil || l == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return l
}

func (z *ZerologAdapter) Debug(msg string, fields ...Field) {
	emit(z.logger.Debug(), msg, fields)
}

func (z *ZerologAdapter) Info(msg string, fields ...Field) {
	emit(z.logger.Info(), msg, fields)
}

func (z *ZerologAdapter) Warn(msg string, fields ...Field) {
	emit(z.logger.Warn(), msg, fields)
}

func (z *ZerologAdapter) Error(msg string, fields ...Field) {
	emit(z.logger.Error(), msg, fields)
}

// With returns an adapter whose entries all carry the given fields.
func (z *ZerologAdapter) With(fields ...Field) *ZerologAdapter {
	ctx := z.logger.With()
	for _, f := range fields {
		ctx = ctx.Interface(f.Key, f.Value)
	}
	return &ZerologAdapter{logger: ctx.Logger()}
}

// Logger returns the underlying zerolog.Logger.
func (z *ZerologAdapter) Logger() zerolog.Logger {
	return z.logger
}

// emit is a no-op for disabled levels, where zerolog hands back a nil event.
func emit(event *zerolog.Event, msg string, fields []Field) {
	if event == nil {
		return
	}
	for _, f := range fields {
		event = addField(event, f)
	}
	event.Msg(msg)
}

func addField(event *zerolog.Event, f Field) *zerolog.Event {
	switch v := f.Value.(type) {
	case string:
		return event.Str(f.Key, v)
	case int:
		return event.Int(f.Key, v)
	case uint64:
		return event.Uint64(f.Key, v)
	case float32:
		return event.Float32(f.Key, v)
	case bool:
		return event.Bool(f.Key, v)
	case time.Duration:
		return event.Dur(f.Key, v)
	case error:
		return event.Err(v)
	default:
		return event.Interface(f.Key, v)
	}
}
