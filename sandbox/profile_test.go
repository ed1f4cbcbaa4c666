// Copyright 2026 The Packrun Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import (
	"reflect"
	"testing"

	"github.com/packrun-dev/packrun/lib/scope"
	"github.com/packrun-dev/packrun/lib/testutil"
)

var testPaths = Paths{
	WorkspaceRoot: "/work/repo",
	HomeDir:       "/home/runner",
}

func TestBuildProfileSplitsReadAndWrite(t *testing.T) {
	profile := BuildProfile([]scope.Scope{
		testutil.Read("src/**"),
		testutil.Write("out/**"),
	}, testPaths)

	wantRO := []BindMount{{Source: "/work/repo/src", Target: "/work/repo/src"}}
	wantRW := []BindMount{{Source: "/work/repo/out", Target: "/work/repo/out"}}

	if !reflect.DeepEqual(profile.ReadOnlyBindMounts, wantRO) {
		t.Errorf("ReadOnlyBindMounts = %+v, want %+v", profile.ReadOnlyBindMounts, wantRO)
	}
	if !reflect.DeepEqual(profile.WritableBindMounts, wantRW) {
		t.Errorf("WritableBindMounts = %+v, want %+v", profile.WritableBindMounts, wantRW)
	}
}

func TestBuildProfilePathResolution(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{"src/**", "/work/repo/src"},
		{"src/a/*.go", "/work/repo/src/a"},
		{"docs/README.md", "/work/repo/docs/README.md"}, // literal file, no wildcard
		{"~/.cache/tool/**", "/home/runner/.cache/tool"},
		{"/opt/toolchain/**", "/opt/toolchain"},
		{"/opt//toolchain/./bin", "/opt/toolchain/bin"}, // absolute paths are cleaned
		{"**", "/work/repo"},                            // leading wildcard anchors at the root
	}

	for _, tt := range tests {
		profile := BuildProfile([]scope.Scope{testutil.Read(tt.pattern)}, testPaths)
		if len(profile.ReadOnlyBindMounts) != 1 {
			t.Errorf("pattern %q: got %d mounts, want 1", tt.pattern, len(profile.ReadOnlyBindMounts))
			continue
		}
		if got := profile.ReadOnlyBindMounts[0].Target; got != tt.want {
			t.Errorf("pattern %q resolved to %q, want %q", tt.pattern, got, tt.want)
		}
	}
}

func TestBuildProfileMountsAreDeterministic(t *testing.T) {
	scopes := []scope.Scope{
		testutil.Read("zeta/**"),
		testutil.Read("alpha/**"),
		testutil.Read("mid/**"),
	}
	profile := BuildProfile(scopes, testPaths)

	want := []BindMount{
		{Source: "/work/repo/alpha", Target: "/work/repo/alpha"},
		{Source: "/work/repo/mid", Target: "/work/repo/mid"},
		{Source: "/work/repo/zeta", Target: "/work/repo/zeta"},
	}
	if !reflect.DeepEqual(profile.ReadOnlyBindMounts, want) {
		t.Errorf("mounts not sorted: %+v", profile.ReadOnlyBindMounts)
	}
}

func TestBuildProfileDeduplicatesMountPaths(t *testing.T) {
	// Two patterns sharing a literal prefix collapse to one mount.
	profile := BuildProfile([]scope.Scope{
		testutil.Read("src/**/*.go"),
		testutil.Read("src/*.md"),
	}, testPaths)

	if len(profile.ReadOnlyBindMounts) != 1 {
		t.Fatalf("got %d mounts, want 1: %+v", len(profile.ReadOnlyBindMounts), profile.ReadOnlyBindMounts)
	}
}

func TestBuildProfileNetworkDefaultsOff(t *testing.T) {
	profile := BuildProfile([]scope.Scope{testutil.Read("src/**")}, testPaths)

	if profile.NetworkPosture != scope.PostureOff {
		t.Errorf("NetworkPosture = %s, want off", profile.NetworkPosture)
	}
	if profile.NetworkAllowlist != nil {
		t.Errorf("off posture must carry no allowlist, got %v", profile.NetworkAllowlist)
	}
}

func TestBuildProfileAllowlistUnion(t *testing.T) {
	profile := BuildProfile([]scope.Scope{
		testutil.Net(scope.PostureAllowlist, "b.example.com:443", "a.example.com:443"),
		testutil.Net(scope.PostureAllowlist, "a.example.com:443", "10.0.0.0/8"),
	}, testPaths)

	if profile.NetworkPosture != scope.PostureAllowlist {
		t.Fatalf("NetworkPosture = %s, want allowlist", profile.NetworkPosture)
	}
	want := []string{"10.0.0.0/8", "a.example.com:443", "b.example.com:443"}
	if !reflect.DeepEqual(profile.NetworkAllowlist, want) {
		t.Errorf("NetworkAllowlist = %v, want %v", profile.NetworkAllowlist, want)
	}
}

func TestBuildProfileFullUpgradesPosture(t *testing.T) {
	profile := BuildProfile([]scope.Scope{
		testutil.Net(scope.PostureAllowlist, "a.example.com:443"),
		testutil.Net(scope.PostureFull),
	}, testPaths)

	if profile.NetworkPosture != scope.PostureFull {
		t.Errorf("NetworkPosture = %s, want full", profile.NetworkPosture)
	}
	if profile.NetworkAllowlist != nil {
		t.Errorf("full posture must drop the allowlist, got %v", profile.NetworkAllowlist)
	}
}

func TestBuildProfileEnvironment(t *testing.T) {
	profile := BuildProfile(nil, testPaths)

	if got := profile.Env["HOME"]; got != "/home/runner" {
		t.Errorf("Env[HOME] = %q", got)
	}
	if got := profile.Env["PATH"]; got != "/usr/local/bin:/usr/bin:/bin" {
		t.Errorf("Env[PATH] = %q", got)
	}
}
