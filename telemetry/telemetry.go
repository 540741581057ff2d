// Package telemetry records how long each stage of a validation run takes.
//
// A Collector travels in the context so validators can be instrumented
// without widening their signatures. When no collector is attached every call
// is a no-op.
//
//	collector := telemetry.NewTimingCollector()
//	ctx := telemetry.WithCollector(context.Background(), collector)
//
//	timer := telemetry.StartTimer(ctx, "validate.save")
//	// ... run checks ...
//	timer.End()
//
//	collector.Report(os.Stderr, output.NewStyles(os.Stderr))
package telemetry

import (
	"context"
	"io"
)

type collectorKey struct{}

type rootTimerKey struct{}

// Collector gathers timers for one run.
type Collector interface {
	// Start begins timing a stage nested under the currently open stage.
	Start(name string) Timer

	// Report writes the collected stages. styles may be nil or *output.Styles.
	Report(w io.Writer, styles interface{})
}

// Timer tracks one stage.
type Timer interface {
	End()
	Child(name string) Timer
}

// WithCollector attaches a collector to ctx.
func WithCollector(ctx context.Context, collector Collector) context.Context {
	return context.WithValue(ctx, collectorKey{}, collector)
}

// FromContext returns the attached collector, or a no-op one.
func FromContext(ctx context.Context) Collector {
	if collector, ok := ctx.Value(collectorKey{}).(Collector); ok {
		return collector
	}
	return noOpCollector{}
}

// WithRootTimer makes timer the parent of stages started with StartTimer.
func WithRootTimer(ctx context.Context, timer Timer) context.Context {
	return context.WithValue(ctx, rootTimerKey{}, timer)
}

// StartTimer starts a stage under the root timer if there is one, otherwise
// directly on the collector.
func StartTimer(ctx context.Context, name string) Timer {
	if root, ok := ctx.Value(rootTimerKey{}).(Timer); ok {
		return root.Child(name)
	}
	return FromContext(ctx).Start(name)
}
