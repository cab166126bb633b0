package version

import "fmt"

// Values to be injected during build (ldflags).
var (
	version   = "unreleased"
	commit    string
	buildTime string
)

// Version returns the semantic version, or 'unreleased' for unreleased code.
func Version() string {
	return version
}

// Commit returns the git commit SHA the binary was built from.
func Commit() string {
	return commit
}

// FullVersion constructs a string with full version information.
func FullVersion() string {
	return fmt.Sprintf("%s (commit: %s; build time: %s)", Version(), Commit(), buildTime)
}
