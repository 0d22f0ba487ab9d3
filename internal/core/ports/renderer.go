package ports

import "time"

// Renderer presents the progress of synth and deploy phases.
// It decouples telemetry collection from presentation.
//
//go:generate mockgen -source=renderer.go -destination=mocks/mock_renderer.go -package=mocks
type Renderer interface {
	// OnPhaseStart is called when a phase begins.
	// spanID: unique identifier for this phase
	// parentID: spanID of the enclosing phase (empty if root)
	// name: human-readable phase name
	OnPhaseStart(spanID, parentID, name string, startTime time.Time)

	// OnPhaseComplete is called when a phase finishes.
	// err: nil if successful, error otherwise
	OnPhaseComplete(spanID string, endTime time.Time, err error)
}
