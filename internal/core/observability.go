package core

import (
	"context"
	"time"
)

// Logger is the minimal structured logging surface the service depends on.
// Fields alternate key/value pairs.
type Logger interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Warn(msg string, fields ...any)
	Error(msg string, fields ...any)
}

// MetricsRecorder receives per-operation timing and outcome observations.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

// TraceSpan terminates a trace started by a Tracer.
type TraceSpan interface {
	End(err error)
}

// Tracer starts spans around service operations.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// NoopLogger returns a logger that discards everything.
func NoopLogger() Logger { return noopLogger{} }

type noopMetrics struct{}

func (noopMetrics) Observe(context.Context, string, bool, time.Duration) {}

type noopTracer struct{}

type noopSpan struct{}

func (noopSpan) End(error) {}

func (noopTracer) Start(ctx context.Context, _ string) (context.Context, TraceSpan) {
	return ctx, noopSpan{}
}

// instrument wraps one service operation: it opens a span, times the call,
// and reports the outcome to the logger and metrics recorder on completion.
func (s *Service) instrument(ctx context.Context, operation string) (context.Context, func(err error)) {
	started := s.nowFn()
	ctx, span := s.tracer.Start(ctx, operation)
	return ctx, func(err error) {
		duration := s.nowFn().Sub(started)
		span.End(err)
		s.metrics.Observe(ctx, operation, err == nil, duration)
		if err != nil {
			s.logger.Error(operation+" failed", "error", err.Error(), "duration_ms", float64(duration)/float64(time.Millisecond))
			return
		}
		s.logger.Debug(operation+" completed", "duration_ms", float64(duration)/float64(time.Millisecond))
	}
}
