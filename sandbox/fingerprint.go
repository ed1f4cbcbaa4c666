// Copyright 2026 The Packrun Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import (
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/zeebo/blake3"

	"github.com/packrun-dev/packrun/lib/codec"
)

// profileDomainKey is the BLAKE3 keyed-hash domain for profile
// fingerprints: the ASCII domain name zero-padded to 32 bytes. Fixed
// forever — changing it invalidates every stored fingerprint.
var profileDomainKey = [32]byte{
	'p', 'a', 'c', 'k', 'r', 'u', 'n', '.', 's', 'a', 'n', 'd', 'b', 'o', 'x', '.',
	'p', 'r', 'o', 'f', 'i', 'l', 'e', 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// Fingerprint returns a stable hex digest of a profile. Two profiles
// that grant the same thing produce the same fingerprint regardless of
// how their slices were assembled, so a dispatcher can compare the
// fingerprint of a running sandbox against a freshly computed grant
// and reuse the sandbox when they agree.
func Fingerprint(profile Profile) (string, error) {
	encoded, err := codec.Marshal(normalize(profile))
	if err != nil {
		return "", fmt.Errorf("encoding profile for fingerprint: %w", err)
	}

	hasher, err := blake3.NewKeyed(profileDomainKey[:])
	if err != nil {
		return "", fmt.Errorf("initializing profile fingerprint hash: %w", err)
	}
	hasher.Write(encoded)
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// normalize returns a copy of the profile with every slice in sorted
// order. The deterministic encoder fixes map ordering; slice order is
// the caller's and must be canonicalized here.
func normalize(profile Profile) Profile {
	normalized := profile

	normalized.ReadOnlyBindMounts = sortMountSlice(profile.ReadOnlyBindMounts)
	normalized.WritableBindMounts = sortMountSlice(profile.WritableBindMounts)

	normalized.NetworkAllowlist = append([]string(nil), profile.NetworkAllowlist...)
	sort.Strings(normalized.NetworkAllowlist)

	normalized.DenyOverlays = append([]DenyOverlay(nil), profile.DenyOverlays...)
	sort.Slice(normalized.DenyOverlays, func(i, j int) bool {
		return normalized.DenyOverlays[i].Path < normalized.DenyOverlays[j].Path
	})

	return normalized
}

func sortMountSlice(mounts []BindMount) []BindMount {
	sorted := append([]BindMount(nil), mounts...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Target < sorted[j].Target
	})
	return sorted
}
