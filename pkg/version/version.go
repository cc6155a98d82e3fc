// Package version reports the build identity of the binary.
package version

import (
	"fmt"
	"runtime/debug"
)

// Set with -ldflags "-X github.com/samuelghellereTR/payroll-refactor-tool/pkg/version.Version=...".
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// InitBinaryVersion fills values left at their defaults from the module
// build info embedded by the go toolchain.
func InitBinaryVersion() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	apply(info)
}

func apply(info *debug.BuildInfo) {
	if Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}

	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if Commit == "unknown" {
				Commit = s.Value
			}
		case "vcs.time":
			if Date == "unknown" {
				Date = s.Value
			}
		}
	}
}

// String renders the version line printed by the version command.
func String() string {
	return fmt.Sprintf("payroll-refactor %s (commit: %s, built: %s)", Version, Commit, Date)
}
