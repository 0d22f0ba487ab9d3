// Package build holds build-time information.
package build

// Version information set by linker flags.
var (
	// Version is the application version. It defaults to "dev".
	Version = "dev"
	// Commit is the git commit the binary was built from.
	Commit = "none"
	// Date is the build date.
	Date = "unknown"
)
