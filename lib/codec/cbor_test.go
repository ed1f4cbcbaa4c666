// Copyright 2026 The Packrun Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"testing"
)

func TestMarshalDeterministicMapOrder(t *testing.T) {
	// Go map iteration order is random; deterministic encoding must
	// erase it.
	value := map[string]int{"zulu": 1, "alpha": 2, "mike": 3, "bravo": 4}

	first, err := Marshal(value)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 50; i++ {
		again, err := Marshal(map[string]int{"mike": 3, "bravo": 4, "zulu": 1, "alpha": 2})
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("encoding is not deterministic:\n%x\n%x", first, again)
		}
	}
}

func TestRoundTripStruct(t *testing.T) {
	type inner struct {
		Entries []string `json:"entries"`
	}
	type outer struct {
		Name  string         `json:"name"`
		Count int            `json:"count"`
		Inner inner          `json:"inner"`
		Tags  map[string]any `json:"tags,omitempty"`
	}

	in := outer{
		Name:  "profile",
		Count: 3,
		Inner: inner{Entries: []string{"a", "b"}},
		Tags:  map[string]any{"pinned": true},
	}

	data, err := Marshal(in)
	if err != nil {
		t.Fatal(err)
	}

	var out outer
	if err := Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if out.Name != in.Name || out.Count != in.Count {
		t.Errorf("round trip mismatch: %+v", out)
	}
	if len(out.Inner.Entries) != 2 || out.Inner.Entries[1] != "b" {
		t.Errorf("nested slice mismatch: %+v", out.Inner)
	}
}

func TestUnmarshalIntoAnyUsesStringMaps(t *testing.T) {
	data, err := Marshal(map[string]any{"key": "value", "nested": map[string]any{"n": "v"}})
	if err != nil {
		t.Fatal(err)
	}

	var decoded any
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}

	top, ok := decoded.(map[string]any)
	if !ok {
		t.Fatalf("decoded type %T, want map[string]any", decoded)
	}
	if _, ok := top["nested"].(map[string]any); !ok {
		t.Fatalf("nested type %T, want map[string]any", top["nested"])
	}
}

func TestUnmarshalRejectsTruncatedInput(t *testing.T) {
	data, err := Marshal(map[string]string{"key": "value"})
	if err != nil {
		t.Fatal(err)
	}

	var out map[string]string
	if err := Unmarshal(data[:len(data)-2], &out); err == nil {
		t.Fatal("truncated input must fail to decode")
	}
}
