// Package buildinfo provides build-time properties injected via ldflags:
//
//	go build -ldflags "-X github.com/nomis52/signup/buildinfo.version=v1.2.0 \
//	  -X github.com/nomis52/signup/buildinfo.gitCommit=$(git rev-parse --short HEAD) \
//	  -X github.com/nomis52/signup/buildinfo.buildTime=$(date -u +%FT%TZ)"
package buildinfo

import "fmt"

// Properties holds build-time properties injected via ldflags.
type Properties struct {
	Version   string `json:"version" yaml:"version"`
	BuildTime string `json:"build_time" yaml:"build_time"`
	GitCommit string `json:"git_commit" yaml:"git_commit"`
}

// Package-level variables for ldflags injection (unexported).
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// Get returns the current build properties.
func Get() Properties {
	return Properties{
		Version:   version,
		BuildTime: buildTime,
		GitCommit: gitCommit,
	}
}

// String formats the properties for a version banner.
func (p Properties) String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", p.Version, p.GitCommit, p.BuildTime)
}
