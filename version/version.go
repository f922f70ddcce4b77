package version

import (
	"runtime"
	"runtime/debug"
	"strconv"
)

// Populated at build time via -ldflags; debug.ReadBuildInfo fills the gaps
// for plain `go build` binaries.
var (
	BuildVersion = "dev"
	GitSHA       = ""
	BuildTime    = ""
)

// Info is the /version payload.
type Info struct {
	Service     string `json:"service"`
	Version     string `json:"version"`
	GitSHA      string `json:"git_sha,omitempty"`
	BuildTime   string `json:"build_time,omitempty"`
	VCSModified *bool  `json:"vcs_modified,omitempty"`
	GoVersion   string `json:"go_version"`
	GOOS        string `json:"go_os"`
	GOARCH      string `json:"go_arch"`
}

// Get reports the build identity of the running service binary.
func Get(service string) Info {
	info := Info{
		Service:   service,
		Version:   BuildVersion,
		GitSHA:    GitSHA,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		GOOS:      runtime.GOOS,
		GOARCH:    runtime.GOARCH,
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.GitSHA == "" {
					info.GitSHA = s.Value
				}
			case "vcs.time":
				if info.BuildTime == "" {
					info.BuildTime = s.Value
				}
			case "vcs.modified":
				if info.VCSModified == nil {
					if b, err := strconv.ParseBool(s.Value); err == nil {
						info.VCSModified = &b
					}
				}
			}
		}
	}

	return info
}
