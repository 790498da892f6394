// Package trace provides the tracing subsystem of erblint.
//
// It tracks lint runs, per-file processing and individual linters so that slow
// rules and hangs can be diagnosed.
//
// # Usage
//
// Enable tracing via command-line flags:
//
//	erblint lint --trace=- --trace-level=detail app/views
//
// # Architecture
//
//   - Nop: zero-overhead no-op tracer when disabled
//   - StreamTracer: immediate write to output (file/stderr)
//   - RingTracer: circular buffer for crash dumps
//   - MultiTracer: combines several tracers
//
// # Levels
//
//   - LevelOff: no tracing
//   - LevelError: only crash dumps
//   - LevelPhase: driver and pass boundaries
//   - LevelDetail: per-file events
//   - LevelDebug: per-rule spans as well
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopeFile, "file:"+path, trace.CurrentSpan(ctx).SpanID)
//	defer span.End("")
package trace
