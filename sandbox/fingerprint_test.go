// Copyright 2026 The Packrun Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import (
	"testing"

	"github.com/packrun-dev/packrun/lib/scope"
)

func baselineProfile() Profile {
	return Profile{
		ReadOnlyBindMounts: []BindMount{
			{Source: "/work/repo/src", Target: "/work/repo/src"},
			{Source: "/work/repo/docs", Target: "/work/repo/docs"},
		},
		WritableBindMounts: []BindMount{
			{Source: "/work/repo/out", Target: "/work/repo/out"},
		},
		NetworkPosture:   scope.PostureAllowlist,
		NetworkAllowlist: []string{"b.example.com:443", "a.example.com:443"},
		DenyOverlays: []DenyOverlay{
			{Path: "/home/runner/.ssh", Kind: DenyDirectory},
		},
		Env: map[string]string{"HOME": "/home/runner", "PATH": "/bin"},
	}
}

func TestFingerprintStableUnderSliceOrder(t *testing.T) {
	first, err := Fingerprint(baselineProfile())
	if err != nil {
		t.Fatal(err)
	}

	shuffled := baselineProfile()
	shuffled.ReadOnlyBindMounts[0], shuffled.ReadOnlyBindMounts[1] =
		shuffled.ReadOnlyBindMounts[1], shuffled.ReadOnlyBindMounts[0]
	shuffled.NetworkAllowlist[0], shuffled.NetworkAllowlist[1] =
		shuffled.NetworkAllowlist[1], shuffled.NetworkAllowlist[0]

	second, err := Fingerprint(shuffled)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("fingerprint changed under slice reordering:\n%s\n%s", first, second)
	}
}

func TestFingerprintSensitivity(t *testing.T) {
	base, err := Fingerprint(baselineProfile())
	if err != nil {
		t.Fatal(err)
	}

	mutations := map[string]func(*Profile){
		"extra readonly mount": func(p *Profile) {
			p.ReadOnlyBindMounts = append(p.ReadOnlyBindMounts,
				BindMount{Source: "/etc/ssl", Target: "/etc/ssl"})
		},
		"write promoted": func(p *Profile) {
			p.WritableBindMounts = append(p.WritableBindMounts, p.ReadOnlyBindMounts[0])
		},
		"posture change": func(p *Profile) {
			p.NetworkPosture = scope.PostureFull
			p.NetworkAllowlist = nil
		},
		"allowlist entry added": func(p *Profile) {
			p.NetworkAllowlist = append(p.NetworkAllowlist, "c.example.com:443")
		},
		"deny overlay removed": func(p *Profile) {
			p.DenyOverlays = nil
		},
		"env change": func(p *Profile) {
			p.Env["PATH"] = "/usr/bin:/bin"
		},
	}

	for name, mutate := range mutations {
		profile := baselineProfile()
		mutate(&profile)
		got, err := Fingerprint(profile)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if got == base {
			t.Errorf("%s: fingerprint did not change", name)
		}
	}
}

func TestFingerprintIsHexDigest(t *testing.T) {
	digest, err := Fingerprint(Profile{NetworkPosture: scope.PostureOff})
	if err != nil {
		t.Fatal(err)
	}
	if len(digest) != 64 {
		t.Fatalf("digest length = %d, want 64 hex chars", len(digest))
	}
	for _, r := range digest {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'f') {
			t.Fatalf("digest %q contains non-hex rune %q", digest, r)
		}
	}
}

func TestFingerprintDoesNotMutateInput(t *testing.T) {
	profile := baselineProfile()
	if _, err := Fingerprint(profile); err != nil {
		t.Fatal(err)
	}
	if profile.NetworkAllowlist[0] != "b.example.com:443" {
		t.Error("normalization must operate on a copy, not the caller's slices")
	}
}
