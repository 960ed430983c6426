// Package buildinfo carries version stamps set with -ldflags, for example
//
//	-X 'github.com/m3rciful/pixelbot/core/buildinfo.Version=v1.2.3'
//	-X 'github.com/m3rciful/pixelbot/core/buildinfo.Commit=abcdef0'
//	-X 'github.com/m3rciful/pixelbot/core/buildinfo.Date=2026-10-14T12:00:00Z'
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

func init() {
	if Commit != "" {
		return
	}
	Commit = "local"
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			Commit = s.Value
		case "vcs.time":
			if Date == "" {
				Date = s.Value
			}
		}
	}
}

// String renders "version (commit, date)" for startup logs.
func String() string {
	commit := Commit
	if len(commit) > 7 {
		commit = commit[:7]
	}
	if Date == "" {
		return fmt.Sprintf("%s (%s)", Version, commit)
	}
	return fmt.Sprintf("%s (%s, %s)", Version, commit, Date)
}
