// Package telemetry implements tracing with OpenTelemetry and forwards spans to the renderer.
package telemetry

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/cicd/internal/core/ports"
)

var _ sdktrace.SpanProcessor = (*Bridge)(nil)

// Bridge is a span processor that reports phase spans to a Renderer. A phase is shown as
// its span name followed by its stage, so a "deploy" span for prod renders as "deploy prod".
type Bridge struct {
	renderer ports.Renderer
}

// NewBridge returns a Bridge reporting to renderer. A nil renderer drops every span.
func NewBridge(renderer ports.Renderer) *Bridge {
	return &Bridge{renderer: renderer}
}

// OnStart reports the start of a phase.
func (b *Bridge) OnStart(parent context.Context, s sdktrace.ReadWriteSpan) {
	if b.renderer == nil || !s.SpanContext().IsValid() {
		return
	}

	var parentID string
	if sc := trace.SpanContextFromContext(parent); sc.IsValid() {
		parentID = sc.SpanID().String()
	}

	b.renderer.OnPhaseStart(s.SpanContext().SpanID().String(), parentID, phaseLabel(s), s.StartTime())
}

// OnEnd reports the outcome of a phase.
func (b *Bridge) OnEnd(s sdktrace.ReadOnlySpan) {
	if b.renderer == nil || !s.SpanContext().IsValid() {
		return
	}

	var err error
	if s.Status().Code == codes.Error {
		err = phaseError(s)
	}
	b.renderer.OnPhaseComplete(s.SpanContext().SpanID().String(), s.EndTime(), err)
}

// ForceFlush does nothing; phases are reported synchronously.
func (b *Bridge) ForceFlush(_ context.Context) error {
	return nil
}

// Shutdown does nothing.
func (b *Bridge) Shutdown(_ context.Context) error {
	return nil
}

type attributed interface {
	Name() string
	Attributes() []attribute.KeyValue
}

func phaseLabel(s attributed) string {
	if stage := stringAttribute(s.Attributes(), ports.StageAttribute); stage != "" {
		return s.Name() + " " + stage
	}
	return s.Name()
}

// phaseError returns the recorded failure, or names the phase and its stack when the
// span failed without a description.
func phaseError(s sdktrace.ReadOnlySpan) error {
	if desc := s.Status().Description; desc != "" {
		return errors.New(desc)
	}
	if stack := stringAttribute(s.Attributes(), ports.StackAttribute); stack != "" {
		return errors.New(s.Name() + " of stack " + stack + " failed")
	}
	return errors.New(s.Name() + " failed")
}

func stringAttribute(attrs []attribute.KeyValue, key string) string {
	for _, kv := range attrs {
		if string(kv.Key) == key && kv.Value.Type() == attribute.STRING {
			return kv.Value.AsString()
		}
	}
	return ""
}
