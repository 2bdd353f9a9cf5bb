// Package version holds build information injected via -ldflags.
package version

import "fmt"

// Set at build time:
//
//	go build -ldflags "-X statuspact/internal/version.Version=v1.0.0 -X statuspact/internal/version.Commit=$(git rev-parse --short HEAD) -X statuspact/internal/version.Date=$(date -u +%FT%TZ)"
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info returns a one-line description of the build.
func Info() string {
	return fmt.Sprintf("statuspact %s (commit %s, built %s)", Version, Commit, Date)
}
