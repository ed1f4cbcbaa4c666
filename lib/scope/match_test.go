// Copyright 2026 The Packrun Authors
// SPDX-License-Identifier: Apache-2.0

package scope

import "testing"

func TestMatch(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		// Exact match.
		{"src/main.go", "src/main.go", true},
		{"src/main.go", "src/main_test.go", false},

		// Single-segment wildcard does not cross "/".
		{"src/*", "src/main.go", true},
		{"src/*", "src/cmd/main.go", false},
		{"*.go", "main.go", true},
		{"*.go", "src/main.go", false},

		// Recursive wildcard.
		{"src/**", "src/main.go", true},
		{"src/**", "src/cmd/main.go", true},
		{"src/**", "src", true},
		{"src/**", "vendor/main.go", false},
		{"**", "anything/at/all", true},

		// Interior recursive wildcard.
		{"a/**/z", "a/z", true},
		{"a/**/z", "a/b/c/z", true},
		{"a/**/z", "a/b/c", false},

		// Braces and character classes.
		{"*.{go,md}", "README.md", true},
		{"*.{go,md}", "main.go", true},
		{"*.{go,md}", "main.rs", false},
		{"[ab]/out", "a/out", true},
		{"[ab]/out", "c/out", false},

		// Malformed patterns deny.
		{"[unclosed", "u", false},
		{"{unclosed", "{unclosed", false},
	}

	for _, tt := range tests {
		if got := Match(tt.pattern, tt.path); got != tt.want {
			t.Errorf("Match(%q, %q) = %v, want %v", tt.pattern, tt.path, got, tt.want)
		}
	}
}

func TestMatchAny(t *testing.T) {
	patterns := []string{"src/**", "docs/*.md"}

	if !MatchAny(patterns, "src/a/b.go") {
		t.Error("MatchAny should match src/a/b.go against src/**")
	}
	if MatchAny(patterns, "vendor/x.go") {
		t.Error("MatchAny should not match vendor/x.go")
	}
	if MatchAny(nil, "anything") {
		t.Error("MatchAny with no patterns must default-deny")
	}
}
