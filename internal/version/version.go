// Package version exposes build information set with -ldflags.
//
//	go build -ldflags "-X github.com/longkey1/bookchat/internal/version.Version=v1.2.0 \
//	  -X github.com/longkey1/bookchat/internal/version.CommitSHA=$(git rev-parse --short HEAD) \
//	  -X github.com/longkey1/bookchat/internal/version.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package version

import (
	"fmt"
	"runtime"
)

var (
	Version   = "dev"
	CommitSHA = "unknown"
	BuildTime = "unknown"
)

// Short returns only the version number.
func Short() string {
	return Version
}

// Info returns the version, commit, build time and Go version.
func Info() string {
	return fmt.Sprintf("Version: %s\nCommit: %s\nBuilt: %s\nGo version: %s",
		Version, CommitSHA, BuildTime, runtime.Version())
}
