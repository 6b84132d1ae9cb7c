// Package version holds build metadata injected via -ldflags:
//
//	go build -ldflags "-X github.com/HerbHall/euserv-reboot/internal/version.Version=v1.2.0 \
//	  -X github.com/HerbHall/euserv-reboot/internal/version.Commit=$(git rev-parse --short HEAD)"
package version

import (
	"fmt"
	"runtime"
)

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Short returns the version string alone.
func Short() string {
	return Version
}

// Info returns a one-line description of the build.
func Info() string {
	return fmt.Sprintf("euserv-reboot %s (commit %s, built %s, %s/%s)",
		Version, Commit, BuildDate, runtime.GOOS, runtime.GOARCH)
}
