// Package linear renders progress and descriptions as plain sequential lines.
package linear

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/muesli/termenv"
	"go.trai.ch/cicd/internal/core/ports"
	"go.trai.ch/cicd/internal/ui/output"
	"go.trai.ch/cicd/internal/ui/style"
)

var _ ports.Renderer = (*Renderer)(nil)

// Renderer implements ports.Renderer with one line per phase start and end.
type Renderer struct {
	w      io.Writer
	output *termenv.Output

	mu     sync.Mutex
	phases map[string]phaseState
}

type phaseState struct {
	name      string
	startTime time.Time
}

// NewRenderer creates a Renderer writing to w, stderr when nil. profileFn picks the
// color profile, see output.ColorProfile and output.ColorProfileANSI.
func NewRenderer(w io.Writer, profileFn func() termenv.Profile) *Renderer {
	if w == nil {
		w = os.Stderr
	}
	if profileFn == nil {
		profileFn = output.ColorProfileANSI
	}
	return &Renderer{
		w:      w,
		output: output.NewWithProfile(w, profileFn),
		phases: make(map[string]phaseState),
	}
}

// OnPhaseStart prints a start line.
func (r *Renderer) OnPhaseStart(spanID, _ string, name string, startTime time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.phases[spanID] = phaseState{name: name, startTime: startTime}

	prefix := r.output.String(fmt.Sprintf("[%s]", name)).Faint().String()
	_, _ = fmt.Fprintf(r.w, "%s Starting...\n", prefix)
}

// OnPhaseComplete prints the outcome and duration of a phase.
func (r *Renderer) OnPhaseComplete(spanID string, endTime time.Time, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	phase, ok := r.phases[spanID]
	if !ok {
		return
	}
	delete(r.phases, spanID)

	prefix := fmt.Sprintf("[%s]", phase.name)
	duration := formatDuration(endTime.Sub(phase.startTime))

	if err != nil {
		symbol := r.output.String(style.Cross).Foreground(termenv.ANSIRed).String()
		_, _ = fmt.Fprintf(r.w, "%s %s Failed after %s: %v\n", prefix, symbol, duration, err)
		return
	}
	symbol := r.output.String(style.Check).Foreground(termenv.ANSIGreen).String()
	_, _ = fmt.Fprintf(r.w, "%s %s Completed in %s\n", prefix, symbol, duration)
}

// formatDuration rounds to milliseconds, or microseconds below one millisecond.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return d.Round(time.Microsecond).String()
	}
	return d.Round(time.Millisecond).String()
}
