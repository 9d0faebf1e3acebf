package version

import (
	"fmt"
	"runtime"
)

// Version information - these can be overridden at build time using ldflags
var (
	// Version is the semantic version of the workflow extractor
	Version = "v0.3.0"

	// GitCommit is the git commit hash (set at build time)
	GitCommit = "unknown"

	// BuildTime is when the binary was built (set at build time)
	BuildTime = "unknown"
)

// GetVersion returns the version string
func GetVersion() string {
	return Version
}

// GetVersionWithCommit returns the version with git commit and platform info
func GetVersionWithCommit() string {
	return fmt.Sprintf("workflow-extractor %s (commit %s, built %s, %s/%s)",
		Version, GitCommit, BuildTime, runtime.GOOS, runtime.GOARCH)
}
