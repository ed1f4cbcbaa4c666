// Copyright 2026 The Packrun Authors
// SPDX-License-Identifier: Apache-2.0

package scope

import "github.com/bmatcuk/doublestar/v4"

// Match checks whether a path matches a glob pattern:
//
//	"src/main.go"   matches "src/main.go" exactly
//	"src/*"         matches "src/main.go" but not "src/cmd/main.go"
//	"src/**"        matches "src/main.go", "src/cmd/main.go", and "src"
//	"**"            matches any path
//	"*.{go,md}"     matches "main.go" and "README.md"
//	"[ab]/out"      matches "a/out" and "b/out"
//
// The single-segment wildcard "*" does not cross "/" — the gitignore
// convention. Use "**" to match across hierarchy boundaries.
//
// Returns false for malformed patterns (unmatched brackets, unclosed
// braces) rather than propagating errors — a malformed pattern should
// never grant access.
func Match(pattern, path string) bool {
	matched, err := doublestar.Match(pattern, path)
	return err == nil && matched
}

// MatchAny checks whether a path matches any of the given patterns.
// Returns false for an empty pattern list (default-deny).
func MatchAny(patterns []string, path string) bool {
	for _, pattern := range patterns {
		if Match(pattern, path) {
			return true
		}
	}
	return false
}
