// Copyright 2026 The Packrun Authors
// SPDX-License-Identifier: Apache-2.0

package scope

import "strings"

// wildcardProbe is the synthetic text substituted for wildcards when
// testing containment. NUL, SOH, and STX cannot appear in real paths or
// patterns, so the probe is only ever matched by a wildcard on the
// container side — never by literal text, brace alternatives, or the
// positive character classes the reference matcher supports. Three
// characters, so a single-character class cannot swallow it whole.
const wildcardProbe = "\x00\x01\x02"

// Contains reports whether the container pattern matches every path the
// nested pattern matches. It is a conservative oracle: a true result is
// a genuine language-inclusion guarantee (for the supported glob
// syntax), while a false result may just mean the heuristic could not
// prove inclusion. Callers must treat false as "not known to be
// contained", never as "known disjoint".
//
// The heuristic substitutes wildcards in the nested pattern with probe
// text that only container-side wildcards can match, then asks the
// reference matcher whether the container accepts the result:
//
//   - Negation ("!" prefix) on either side returns false. Negated
//     patterns invert their language; reasoning about their inclusion
//     is a different problem, and denying is the safe default.
//   - Without a globstar in the nested pattern, every "*" becomes probe
//     text and the single synthetic path is tested against container.
//   - With a globstar, candidates are synthesized for zero through
//     three segments of globstar expansion. Candidates the nested
//     pattern itself rejects are discarded; every survivor must match
//     the container, and no survivors at all means false.
//
// Braces and character classes in the nested pattern degrade to literal
// text, which can only cause false negatives. "?" is not modeled: a
// fixed-length probe cannot distinguish "?" runs from broader
// wildcards, so patterns using it only contain themselves.
func Contains(container, nested string) bool {
	if strings.HasPrefix(container, "!") || strings.HasPrefix(nested, "!") {
		return false
	}
	if container == nested {
		return true
	}
	if strings.Contains(container, "?") || strings.Contains(nested, "?") {
		return false
	}

	if !hasGlobstarSegment(nested) {
		synthetic := strings.ReplaceAll(nested, "*", wildcardProbe)
		return Match(container, synthetic)
	}

	candidates := globstarCandidates(nested)
	if len(candidates) == 0 {
		return false
	}
	for _, candidate := range candidates {
		if !Match(container, candidate) {
			return false
		}
	}
	return true
}

// hasGlobstarSegment reports whether any "/"-separated segment of the
// pattern is exactly "**". A "**" embedded inside a segment ("a**b") is
// two single wildcards under the reference matcher's rules and is
// handled by plain substitution.
func hasGlobstarSegment(pattern string) bool {
	for _, segment := range strings.Split(pattern, "/") {
		if segment == "**" {
			return true
		}
	}
	return false
}

// globstarCandidates synthesizes concrete paths representing zero
// through three segments of globstar expansion, with every remaining
// single wildcard replaced by probe text. Candidates the nested pattern
// itself would not match are dropped (the zero-segment collapse of an
// interior globstar can produce a path outside the pattern's language).
func globstarCandidates(nested string) []string {
	segments := strings.Split(nested, "/")

	var candidates []string
	for depth := 0; depth <= 3; depth++ {
		expanded := make([]string, 0, len(segments)+depth)
		for _, segment := range segments {
			if segment == "**" {
				for i := 0; i < depth; i++ {
					expanded = append(expanded, wildcardProbe)
				}
				continue
			}
			expanded = append(expanded, strings.ReplaceAll(segment, "*", wildcardProbe))
		}
		candidate := strings.Join(expanded, "/")
		if !Match(nested, candidate) {
			continue
		}
		candidates = append(candidates, candidate)
	}
	return candidates
}
