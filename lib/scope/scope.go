// Copyright 2026 The Packrun Authors
// SPDX-License-Identifier: Apache-2.0

package scope

import "fmt"

// Kind discriminates the two scope variants.
type Kind string

const (
	// KindPath declares filesystem access: an access mode and a glob
	// pattern over workspace-relative or absolute paths.
	KindPath Kind = "path"

	// KindNetwork declares network access: a posture and, for the
	// allowlist posture, the permitted endpoints.
	KindNetwork Kind = "network"
)

// Access is the filesystem access mode of a path scope.
type Access string

const (
	AccessRead  Access = "read"
	AccessWrite Access = "write"
)

// Posture is the network access mode of a network scope.
type Posture string

const (
	// PostureOff denies all network access.
	PostureOff Posture = "off"

	// PostureAllowlist restricts network access to the listed
	// endpoints ("host:port" or CIDR entries).
	PostureAllowlist Posture = "allowlist"

	// PostureFull grants unrestricted network access.
	PostureFull Posture = "full"
)

// Scope is a single declared grant or requirement. It is a tagged union:
// Kind selects which of the remaining fields are meaningful. Path scopes
// use Access and Pattern; network scopes use Posture and, when the
// posture is allowlist, AllowlistEntries.
//
// Scopes appear in YAML configuration (workspace, lane, pack manifests)
// and in JSONC task specifications, so both tag sets are carried.
type Scope struct {
	Kind             Kind     `yaml:"kind" json:"kind"`
	Access           Access   `yaml:"access,omitempty" json:"access,omitempty"`
	Pattern          string   `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	Posture          Posture  `yaml:"posture,omitempty" json:"posture,omitempty"`
	AllowlistEntries []string `yaml:"allowlist_entries,omitempty" json:"allowlist_entries,omitempty"`
}

// Path constructs a filesystem scope.
func Path(access Access, pattern string) Scope {
	return Scope{Kind: KindPath, Access: access, Pattern: pattern}
}

// Network constructs a network scope.
func Network(posture Posture, entries ...string) Scope {
	return Scope{Kind: KindNetwork, Posture: posture, AllowlistEntries: entries}
}

// Validate checks the structural validity of a scope: a recognized kind,
// a recognized access mode and non-empty pattern for path scopes, a
// recognized posture for network scopes. It does not judge whether the
// scope is sensible — that is the intersection engine's concern.
func (s Scope) Validate() error {
	switch s.Kind {
	case KindPath:
		if s.Access != AccessRead && s.Access != AccessWrite {
			return fmt.Errorf("path scope: invalid access %q (must be read or write)", s.Access)
		}
		if s.Pattern == "" {
			return fmt.Errorf("path scope: pattern is required")
		}
	case KindNetwork:
		switch s.Posture {
		case PostureOff, PostureAllowlist, PostureFull:
		default:
			return fmt.Errorf("network scope: invalid posture %q (must be off, allowlist, or full)", s.Posture)
		}
	default:
		return fmt.Errorf("invalid scope kind %q (must be path or network)", s.Kind)
	}
	return nil
}

// Layers holds the four independent scope sources that must jointly
// agree before any access is granted. Each layer is supplied fresh per
// tool-invocation request.
type Layers struct {
	// WorkspaceAllowed is what the workspace configuration permits.
	WorkspaceAllowed []Scope

	// LaneAllowed is what the lane configuration permits.
	LaneAllowed []Scope

	// TaskDeclared is what the task specification asked for.
	TaskDeclared []Scope

	// ToolRequired is what the tool's manifest entry requires to run.
	ToolRequired []Scope
}
