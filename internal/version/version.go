// Package version reports build information of the vtmsu binaries together
// with the schema level they migrate to.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/latoulicious/vtmsu/pkg/database"
	"github.com/latoulicious/vtmsu/pkg/database/migration"
)

var (
	// Version is the current release
	Version = "0.3.0"

	// GitCommit is the git commit hash (set during build)
	GitCommit = "unknown"

	// BuildTime is when the binary was built (set during build)
	BuildTime = "unknown"
)

// Info describes the running binary and the schema it expects
type Info struct {
	Version     string `json:"version"`
	GitCommit   string `json:"git_commit"`
	Modified    bool   `json:"modified,omitempty"`
	BuildTime   string `json:"build_time"`
	GoVersion   string `json:"go_version"`
	Schema      string `json:"schema"`
	TablePrefix string `json:"table_prefix"`
}

// Get returns version information. Commit and build time fall back to the
// VCS stamp of the Go toolchain when they were not set with -ldflags.
func Get() Info {
	info := Info{
		Version:     Version,
		GitCommit:   GitCommit,
		BuildTime:   BuildTime,
		GoVersion:   runtime.Version(),
		Schema:      migration.Latest(),
		TablePrefix: database.DefaultTablePrefix,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		applyBuildSettings(&info, bi.Settings)
	}
	return info
}

func applyBuildSettings(info *Info, settings []debug.BuildSetting) {
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			if info.GitCommit == "unknown" && s.Value != "" {
				info.GitCommit = s.Value
				if len(info.GitCommit) > 12 {
					info.GitCommit = info.GitCommit[:12]
				}
			}
		case "vcs.time":
			if info.BuildTime == "unknown" && s.Value != "" {
				info.BuildTime = s.Value
			}
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
}

// String returns a formatted version string
func (i Info) String() string {
	commit := i.GitCommit
	if i.Modified {
		commit += "+dirty"
	}
	return fmt.Sprintf("vtmsu v%s (commit: %s, built: %s, go: %s, schema: %s)",
		i.Version, commit, i.BuildTime, i.GoVersion, i.Schema)
}
