// Package version reports the build of the formcraft binary.
package version

import (
	"fmt"
	"runtime/debug"
)

// Set at build time via -ldflags "-X". When left unset they are filled from
// the VCS stamp the Go toolchain embeds in the binary.
var (
	Commit    = "unknown"
	BuildTime = "unknown"
)

// String returns "formcraft dev (commit: <short>, built: <time>)".
func String() string {
	commit, built := Commit, BuildTime
	if info, ok := debug.ReadBuildInfo(); ok {
		commit, built = fromSettings(info.Settings, commit, built)
	}
	return fmt.Sprintf("formcraft dev (commit: %s, built: %s)", short(commit), built)
}

// fromSettings fills unset values from vcs.* build settings. A modified
// working tree is marked with a "-dirty" suffix.
func fromSettings(settings []debug.BuildSetting, commit, built string) (string, string) {
	var revision, modified, stamp string
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			modified = s.Value
		case "vcs.time":
			stamp = s.Value
		}
	}
	if commit == "unknown" && revision != "" {
		commit = short(revision)
		if modified == "true" {
			commit += "-dirty"
		}
	}
	if built == "unknown" && stamp != "" {
		built = stamp
	}
	return commit, built
}

func short(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}
	return commit
}
