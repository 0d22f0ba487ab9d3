// Package detector picks the output mode from the terminal and CI environment.
package detector

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// OutputMode represents how progress and logs are rendered.
type OutputMode int

const (
	// ModeAuto detects the appropriate mode.
	ModeAuto OutputMode = iota
	// ModeInteractive renders colored progress for a person at a terminal.
	ModeInteractive
	// ModeCI renders plain ANSI progress and JSON logs for build logs.
	ModeCI
)

// String returns the flag value of the mode.
func (m OutputMode) String() string {
	switch m {
	case ModeInteractive:
		return "interactive"
	case ModeCI:
		return "ci"
	default:
		return "auto"
	}
}

// ciVariables are set by common CI providers.
var ciVariables = []string{"CI", "CODEBUILD_BUILD_ID", "GITHUB_ACTIONS", "BUILDKITE"}

// DetectEnvironment returns ModeCI when stderr is not a terminal or a CI variable is set.
func DetectEnvironment() OutputMode {
	if !term.IsTerminal(int(os.Stderr.Fd())) || InCI() {
		return ModeCI
	}
	return ModeInteractive
}

// InCI reports whether a known CI environment variable is set to a truthy value.
func InCI() bool {
	for _, name := range ciVariables {
		v := strings.ToLower(strings.TrimSpace(os.Getenv(name)))
		if v != "" && v != "false" && v != "0" {
			return true
		}
	}
	return false
}

// ResolveMode applies the --output flag to the detected mode.
// userFlag should be one of "auto", "interactive", "ci" or empty.
func ResolveMode(autoDetected OutputMode, userFlag string) OutputMode {
	switch userFlag {
	case "interactive", "tty":
		return ModeInteractive
	case "ci", "plain":
		return ModeCI
	default:
		return autoDetected
	}
}
