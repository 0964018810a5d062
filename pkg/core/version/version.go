// ============================================================================
// cstkit - grammar-driven language pipeline
// ============================================================================
//
// Package:     version
// Description: Central version constants for the library, CLI and RPC service
// Author:      msto63
// Created:     2026-10-16
// License:     MIT
// ============================================================================

package version

// Version constants
const (
	// Toolkit version
	Toolkit = "0.1.0"

	// Component versions
	Grammar = "0.1.0"
	CLI     = "0.1.0"
	Server  = "0.1.0"
	History = "0.1.0"

	// APIVersion is the RPC package version
	APIVersion = "v1"
)

// Build metadata, set with -ldflags "-X"
var (
	GitCommit = "development"
	BuildDate = "unknown"
)

// ComponentVersion returns the version for a given component name
func ComponentVersion(name string) string {
	switch name {
	case "grammar":
		return Grammar
	case "cli":
		return CLI
	case "server":
		return Server
	case "history":
		return History
	default:
		return Toolkit
	}
}
