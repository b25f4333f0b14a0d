// Package version reports which build of watchful is running.
package version

import (
	"fmt"
	"runtime/debug"
)

// Set at build time via -ldflags "-X". When left empty the VCS stamp the
// Go toolchain embeds is used instead.
var (
	Commit    = ""
	BuildTime = ""
)

const unknown = "unknown"

// Build identifies the running binary.
type Build struct {
	Commit    string
	BuildTime string
	Dirty     bool
}

// Current returns the build identity from ldflags, falling back to the
// embedded build info.
func Current() Build {
	info, _ := debug.ReadBuildInfo()
	return resolve(Commit, BuildTime, info)
}

// String returns the version line printed by `watchful version`.
func String() string {
	return Current().String()
}

func (b Build) String() string {
	commit := b.Commit
	if len(commit) > 7 {
		commit = commit[:7]
	}
	if b.Dirty {
		commit += "-dirty"
	}
	return fmt.Sprintf("watchful (commit %s, built %s)", commit, b.BuildTime)
}

func resolve(commit, buildTime string, info *debug.BuildInfo) Build {
	b := Build{Commit: commit, BuildTime: buildTime}
	if info != nil {
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if b.Commit == "" {
					b.Commit = s.Value
				}
			case "vcs.time":
				if b.BuildTime == "" {
					b.BuildTime = s.Value
				}
			case "vcs.modified":
				// The flag describes the vcs stamp, not an ldflags commit.
				b.Dirty = commit == "" && s.Value == "true"
			}
		}
	}
	if b.Commit == "" {
		b.Commit = unknown
	}
	if b.BuildTime == "" {
		b.BuildTime = unknown
	}
	return b
}
