// Package version exposes build-time version information.
package version

import "runtime"

// These are overridden at build time via -ldflags.
var (
	// Version is the semantic version.
	Version = "dev"

	// GitCommit is the git commit hash.
	GitCommit = "unknown"

	// BuildDate is the build timestamp.
	BuildDate = "unknown"

	// GoVersion is the Go toolchain that produced the binary.
	GoVersion = runtime.Version()
)
