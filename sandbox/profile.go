// Copyright 2026 The Packrun Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/packrun-dev/packrun/lib/scope"
)

// BindMount is a single bind-mount descriptor. Source and Target are
// always equal and absolute: the sandbox sees the granted paths where
// the host has them, so tool output referencing paths stays meaningful
// outside the sandbox.
type BindMount struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// DenyKind selects how a deny overlay hides a path.
type DenyKind string

const (
	// DenyFile masks a single file by binding the null device over it.
	DenyFile DenyKind = "file"

	// DenyDirectory masks a directory by overlaying an empty ephemeral
	// filesystem.
	DenyDirectory DenyKind = "directory"
)

// DenyOverlay hides a path that would otherwise be visible through a
// broader mount (credentials inside an otherwise-granted home
// directory, for example).
type DenyOverlay struct {
	Path string   `json:"path"`
	Kind DenyKind `json:"kind"`
}

// Profile is the declarative, OS-agnostic confinement description
// produced from an enforced scope set. It names what the sandbox may
// see and reach, not how any particular OS enforces that.
type Profile struct {
	ReadOnlyBindMounts []BindMount       `json:"readonly_bind_mounts,omitempty"`
	WritableBindMounts []BindMount       `json:"writable_bind_mounts,omitempty"`
	NetworkPosture     scope.Posture     `json:"network_posture"`
	NetworkAllowlist   []string          `json:"network_allowlist,omitempty"`
	DenyOverlays       []DenyOverlay     `json:"deny_overlays,omitempty"`
	Env                map[string]string `json:"env,omitempty"`
}

// Paths anchors relative and home-relative scope patterns to concrete
// locations on the host.
type Paths struct {
	// WorkspaceRoot is the absolute path relative patterns resolve
	// against.
	WorkspaceRoot string

	// HomeDir is the absolute path "~/"-prefixed patterns resolve
	// against.
	HomeDir string
}

// BuildProfile maps enforced scopes to a Profile. Path scopes become
// bind-mount descriptors anchored at the pattern's literal directory
// prefix (the part before the first wildcard), split into read-only
// and writable sets. Network scopes merge by union — the restrictive
// intersection already happened in scope.Intersect — so multiple
// allowlist scopes combine their entries, and any full scope upgrades
// the posture to full.
func BuildProfile(enforced []scope.Scope, paths Paths) Profile {
	profile := Profile{
		NetworkPosture: scope.PostureOff,
		Env: map[string]string{
			"HOME": paths.HomeDir,
			"PATH": "/usr/local/bin:/usr/bin:/bin",
		},
	}

	readonly := make(map[string]bool)
	writable := make(map[string]bool)
	allowlist := make(map[string]bool)

	for _, s := range enforced {
		switch s.Kind {
		case scope.KindPath:
			mount := resolveMountPath(s.Pattern, paths)
			if s.Access == scope.AccessWrite {
				writable[mount] = true
			} else {
				readonly[mount] = true
			}

		case scope.KindNetwork:
			switch s.Posture {
			case scope.PostureFull:
				profile.NetworkPosture = scope.PostureFull
			case scope.PostureAllowlist:
				if profile.NetworkPosture != scope.PostureFull {
					profile.NetworkPosture = scope.PostureAllowlist
				}
				for _, entry := range s.AllowlistEntries {
					allowlist[entry] = true
				}
			}
		}
	}

	profile.ReadOnlyBindMounts = sortedMounts(readonly)
	profile.WritableBindMounts = sortedMounts(writable)

	// Off and full postures carry no allowlist; the list only means
	// something when it is the enforcement boundary.
	if profile.NetworkPosture == scope.PostureAllowlist {
		entries := make([]string, 0, len(allowlist))
		for entry := range allowlist {
			entries = append(entries, entry)
		}
		sort.Strings(entries)
		profile.NetworkAllowlist = entries
	}

	return profile
}

// resolveMountPath converts a scope pattern to the absolute directory
// (or file) to bind-mount: the longest literal prefix of the pattern,
// anchored at the workspace root for relative patterns and at the home
// directory for "~/" patterns.
func resolveMountPath(pattern string, paths Paths) string {
	dir := literalPrefix(pattern)

	switch {
	case dir == "~" || strings.HasPrefix(dir, "~/"):
		dir = filepath.Join(paths.HomeDir, strings.TrimPrefix(dir[1:], "/"))
	case filepath.IsAbs(dir):
		dir = filepath.Clean(dir)
	default:
		dir = filepath.Join(paths.WorkspaceRoot, dir)
	}
	return dir
}

// literalPrefix returns the pattern's leading segments up to (not
// including) the first segment containing glob syntax. A pattern with
// no wildcards is returned whole. A pattern whose first segment is
// already a wildcard anchors at the resolution root.
func literalPrefix(pattern string) string {
	segments := strings.Split(pattern, "/")
	for i, segment := range segments {
		if strings.ContainsAny(segment, "*?[{") {
			return strings.Join(segments[:i], "/")
		}
	}
	return pattern
}

// sortedMounts converts a path set to a deterministic BindMount slice.
func sortedMounts(set map[string]bool) []BindMount {
	targets := make([]string, 0, len(set))
	for target := range set {
		targets = append(targets, target)
	}
	sort.Strings(targets)

	mounts := make([]BindMount, 0, len(targets))
	for _, target := range targets {
		mounts = append(mounts, BindMount{Source: target, Target: target})
	}
	return mounts
}
