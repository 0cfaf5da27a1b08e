// Package types provides shared types for the server package and its subpackages.
package types

import (
	"time"

	"github.com/nomis52/signup/buildinfo"
)

// ServerProperties holds metadata about the running server instance.
type ServerProperties struct {
	Build     buildinfo.Properties `json:"build"`
	StartedAt time.Time            `json:"started_at"`
	Hostname  string               `json:"hostname"`
}

// Status is the server's view of itself, served as JSON.
type Status struct {
	Server ServerProperties `json:"server"`
	// APIBaseURL is the activities API the server talks to.
	APIBaseURL string `json:"api_base_url"`
	Sessions   int    `json:"sessions"`
	// NextRefresh is the next background metrics refresh, if one is scheduled.
	NextRefresh *time.Time `json:"next_refresh,omitempty"`
}

// ReloadResult describes a configuration reload.
type ReloadResult struct {
	APIBaseURL string `json:"api_base_url"`
	// RestartRequired lists changed config sections that are only read at
	// startup.
	RestartRequired []string `json:"restart_required,omitempty"`
}
