package version

import "fmt"

// Set at build time via -ldflags.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String renders the build identity on one line.
func String() string {
	return fmt.Sprintf("s7plan %s (commit %s, built %s)", Version, Commit, Date)
}
