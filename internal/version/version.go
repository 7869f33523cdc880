// Package version reports what build of capnode is running.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Version is overridden via -ldflags at release time; otherwise the VCS
// revision from the embedded build info is used.
var Version = "dev"

// Info is the build fingerprint served by the API.
type Info struct {
	Version   string `json:"version"`
	Revision  string `json:"revision"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Get assembles the build fingerprint.
func Get() Info {
	info := Info{
		Version:   Version,
		Revision:  "unknown",
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				info.Revision = s.Value
				break
			}
		}
	}
	return info
}

// String returns the bare version.
func String() string { return Version }
