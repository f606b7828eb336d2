package version

import (
	"fmt"
	"runtime/debug"
	"strings"
)

// Set at build time with -ldflags.
var (
	Version   = "dev"
	GitCommit = ""
	BuildTime = ""
)

// Info is the build information of the running binary.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildTime string `json:"build_time,omitempty"`
	GoVersion string `json:"go_version"`
	IsRelease bool   `json:"is_release"`
	IsDirty   bool   `json:"is_dirty"`
}

var readBuildInfo = debug.ReadBuildInfo

// GetVersionInfo merges the link-time variables with the embedded build info.
func GetVersionInfo() Info {
	info := Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
		IsRelease: Version != "dev" && !strings.Contains(Version, "dirty"),
	}

	if bi, ok := readBuildInfo(); ok {
		info.GoVersion = bi.GoVersion
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.GitCommit == "" {
					info.GitCommit = s.Value
				}
			case "vcs.modified":
				info.IsDirty = s.Value == "true"
			case "vcs.time":
				if info.BuildTime == "" {
					info.BuildTime = s.Value
				}
			}
		}
	}
	if len(info.GitCommit) > 7 {
		info.GitCommit = info.GitCommit[:7]
	}
	return info
}

// GetShortVersion returns "<version>[-<commit>][-dirty]".
func GetShortVersion() string {
	info := GetVersionInfo()
	v := info.Version
	if info.GitCommit != "" {
		v += "-" + info.GitCommit
	}
	if info.IsDirty {
		v += "-dirty"
	}
	return v
}

// String renders the info on one line for the version command.
func (i Info) String() string {
	s := fmt.Sprintf("podscribe %s", i.Version)
	if i.GitCommit != "" {
		s += fmt.Sprintf(" (%s", i.GitCommit)
		if i.IsDirty {
			s += ", dirty"
		}
		s += ")"
	}
	if i.BuildTime != "" {
		s += " built " + i.BuildTime
	}
	if i.GoVersion != "" {
		s += " " + i.GoVersion
	}
	return s
}
