// Package version holds askdb build metadata, overridden at link time with
// -ldflags "-X github.com/kailas-cloud/askdb/internal/version.Version=...".
package version

import "fmt"

//nolint:gochecknoglobals // set via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String renders the one-line build description printed by `askdb version`.
func String() string {
	return fmt.Sprintf("askdb version %s (commit %s, built %s)", Version, Commit, Date)
}
