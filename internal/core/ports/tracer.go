package ports

import "context"

// Span attributes shared by the phases of a run. A phase span is named after the phase
// ("synth", "store", "deploy", "diff") and carries the stage it works on.
const (
	StageAttribute = "stage"
	StackAttribute = "stack"
)

// Tracer starts spans around the phases of a run.
type Tracer interface {
	// Start creates a span named name as a child of the span in ctx.
	Start(ctx context.Context, name string, opts ...SpanOption) (context.Context, Span)
}

// Span is a single traced phase.
type Span interface {
	// End completes the span.
	End()
	// RecordError marks the span as failed.
	RecordError(err error)
	// SetAttribute adds a key-value pair to the span.
	SetAttribute(key string, value any)
}

// SpanConfig holds the options of a new span.
type SpanConfig struct {
	Attributes map[string]any
}

// SpanOption configures a new span.
type SpanOption func(*SpanConfig)

// WithAttribute sets an attribute when the span starts.
func WithAttribute(key string, value any) SpanOption {
	return func(c *SpanConfig) {
		if c.Attributes == nil {
			c.Attributes = make(map[string]any)
		}
		c.Attributes[key] = value
	}
}
