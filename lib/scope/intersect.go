// Copyright 2026 The Packrun Authors
// SPDX-License-Identifier: Apache-2.0

package scope

import (
	"sort"
	"strings"
)

// Intersect computes the minimal enforced grant that all four layers
// agree on. The result is never broader than any single input layer.
//
// Path scopes are intersected independently for read and write access.
// A layer with no scopes of a given access mode denies that mode
// outright. Otherwise every (tool, workspace, lane, task) pattern
// combination is considered: the combination is admitted only when all
// six pattern pairs overlap, and the admitted combination contributes
// its most specific pattern that all four patterns still cover, so the
// grant is never broader than any single layer.
//
// Network scopes follow a deny-wins lattice: no scopes from any layer
// denies; an off-only layer against a non-off tool request denies; any
// allowlist layer restricts the grant to the entry intersection of all
// restricting layers; full is granted only when every layer declares
// exactly full.
//
// An empty result is a normal outcome meaning no access was granted —
// it is not an error, and callers must not substitute a permissive
// fallback.
func Intersect(layers Layers) []Scope {
	var enforced []Scope
	enforced = append(enforced, intersectPaths(layers, AccessRead)...)
	enforced = append(enforced, intersectPaths(layers, AccessWrite)...)
	if network, ok := intersectNetwork(layers); ok {
		enforced = append(enforced, network)
	}
	return enforced
}

// intersectPaths computes the granted path scopes for one access mode.
func intersectPaths(layers Layers, access Access) []Scope {
	tool := pathPatterns(layers.ToolRequired, access)
	workspace := pathPatterns(layers.WorkspaceAllowed, access)
	lane := pathPatterns(layers.LaneAllowed, access)
	task := pathPatterns(layers.TaskDeclared, access)

	// Deny-by-default: every layer must speak to this access mode.
	if len(tool) == 0 || len(workspace) == 0 || len(lane) == 0 || len(task) == 0 {
		return nil
	}

	var granted []Scope
	seen := make(map[string]bool)

	for _, t := range tool {
		for _, w := range workspace {
			for _, l := range lane {
				for _, k := range task {
					combination := [4]string{t, w, l, k}
					if !combinationOverlaps(combination) {
						continue
					}
					pattern, ok := mostSpecific(combination)
					if !ok || seen[pattern] {
						continue
					}
					seen[pattern] = true
					granted = append(granted, Path(access, pattern))
				}
			}
		}
	}
	return granted
}

// pathPatterns extracts the patterns of all path scopes with the given
// access mode.
func pathPatterns(scopes []Scope, access Access) []string {
	var patterns []string
	for _, s := range scopes {
		if s.Kind == KindPath && s.Access == access {
			patterns = append(patterns, s.Pattern)
		}
	}
	return patterns
}

// combinationOverlaps checks all six pairwise pattern pairs of a
// four-pattern combination.
func combinationOverlaps(patterns [4]string) bool {
	for i := 0; i < len(patterns); i++ {
		for j := i + 1; j < len(patterns); j++ {
			if !patternsOverlap(patterns[i], patterns[j]) {
				return false
			}
		}
	}
	return true
}

// patternsOverlap reports whether two patterns plausibly share matched
// paths: they are equal, one contains the other, or one directly
// matches the other as a concrete string under the reference matcher
// (which resolves the case of a literal path declared on one side and
// a pattern on the other).
func patternsOverlap(a, b string) bool {
	if a == b {
		return true
	}
	if Contains(a, b) || Contains(b, a) {
		return true
	}
	return Match(a, b) || Match(b, a)
}

// mostSpecific selects the grant pattern from an admitted combination:
// the highest-scoring candidate that every pattern in the combination
// covers. The raw score alone can prefer a short globstar pattern over
// a longer single-wildcard one ("pkg/**" outscores "pkg/a/*"), and
// granting it would hand out more than the narrow layer allowed;
// coverage filtering keeps the grant no broader than any single layer,
// which is the guarantee the score must never override. Ties keep the
// first-seen pattern, in tool, workspace, lane, task order. When no
// candidate is covered by all four patterns the combination yields no
// grant.
func mostSpecific(patterns [4]string) (string, bool) {
	order := []int{0, 1, 2, 3}
	sort.SliceStable(order, func(i, j int) bool {
		return specificity(patterns[order[i]]) > specificity(patterns[order[j]])
	})
	for _, idx := range order {
		if coveredByAll(patterns[idx], patterns) {
			return patterns[idx], true
		}
	}
	return "", false
}

// coveredByAll reports whether every pattern of the combination admits
// the candidate: equal to it, containing it, or matching it as a
// concrete path.
func coveredByAll(candidate string, patterns [4]string) bool {
	for _, pattern := range patterns {
		if pattern == candidate || Contains(pattern, candidate) || Match(pattern, candidate) {
			continue
		}
		return false
	}
	return true
}

// specificity scores a pattern as its literal character count minus
// five per single wildcard. Globstars cost nothing beyond their lack of
// literals: a globstar pattern is general, but a single wildcard
// actively hides a segment's identity. The constant predates this
// implementation and is preserved as-is; grants are selected with it,
// so changing it silently changes which pattern wins every admitted
// combination.
func specificity(pattern string) int {
	stars := strings.Count(pattern, "*")
	singles := stars - 2*strings.Count(pattern, "**")
	literals := len(pattern) - stars
	return literals - 5*singles
}

// intersectNetwork computes the granted network scope, if any.
func intersectNetwork(layers Layers) (Scope, bool) {
	tool := networkScopes(layers.ToolRequired)
	workspace := networkScopes(layers.WorkspaceAllowed)
	lane := networkScopes(layers.LaneAllowed)
	task := networkScopes(layers.TaskDeclared)

	// Deny-by-default: a layer that says nothing about the network
	// grants nothing.
	if len(tool) == 0 || len(workspace) == 0 || len(lane) == 0 || len(task) == 0 {
		return Scope{}, false
	}

	requested := strongestPosture(tool)
	allowing := [][]Scope{workspace, lane, task}

	// Off beats everything: an off-only layer denies any non-off
	// request outright.
	if requested != PostureOff {
		for _, layer := range allowing {
			if postureOnly(layer, PostureOff) {
				return Scope{}, false
			}
		}
	}

	// Any allowlist declaration restricts the grant to the entry
	// intersection of the restricting layers. Purely-full layers are
	// unrestricted and sit out of the intersection.
	all := [][]Scope{tool, workspace, lane, task}
	anyAllowlist := false
	for _, layer := range all {
		if declaresPosture(layer, PostureAllowlist) {
			anyAllowlist = true
			break
		}
	}
	if anyAllowlist {
		entries := intersectEntries(all)
		if len(entries) == 0 {
			return Scope{}, false
		}
		return Network(PostureAllowlist, entries...), true
	}

	// No layer restricts to an allowlist: grant the tool's requested
	// posture only when every layer declares exactly that posture.
	for _, layer := range all {
		if !postureOnly(layer, requested) {
			return Scope{}, false
		}
	}
	return Network(requested), true
}

// networkScopes extracts the network scopes from a layer.
func networkScopes(scopes []Scope) []Scope {
	var network []Scope
	for _, s := range scopes {
		if s.Kind == KindNetwork {
			network = append(network, s)
		}
	}
	return network
}

// strongestPosture returns the widest posture declared in a layer.
func strongestPosture(scopes []Scope) Posture {
	strongest := PostureOff
	for _, s := range scopes {
		switch s.Posture {
		case PostureFull:
			return PostureFull
		case PostureAllowlist:
			strongest = PostureAllowlist
		}
	}
	return strongest
}

// declaresPosture reports whether any network scope in the layer
// declares the given posture.
func declaresPosture(scopes []Scope, posture Posture) bool {
	for _, s := range scopes {
		if s.Posture == posture {
			return true
		}
	}
	return false
}

// postureOnly reports whether every network scope in the layer declares
// exactly the given posture.
func postureOnly(scopes []Scope, posture Posture) bool {
	for _, s := range scopes {
		if s.Posture != posture {
			return false
		}
	}
	return true
}

// intersectEntries computes the sorted set-intersection of allowlist
// entries across every layer that is not purely full.
func intersectEntries(layersScopes [][]Scope) []string {
	var counts map[string]int
	restricting := 0

	for _, layer := range layersScopes {
		if postureOnly(layer, PostureFull) {
			continue
		}
		restricting++
		entries := make(map[string]bool)
		for _, s := range layer {
			for _, entry := range s.AllowlistEntries {
				entries[entry] = true
			}
		}
		if counts == nil {
			counts = make(map[string]int)
		}
		for entry := range entries {
			counts[entry]++
		}
	}

	var intersection []string
	for entry, count := range counts {
		if count == restricting {
			intersection = append(intersection, entry)
		}
	}
	sort.Strings(intersection)
	return intersection
}
