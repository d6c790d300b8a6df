// Package version exposes build metadata stamped by the release pipeline.
package version

//nolint:revive // Overwritten through -ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)
