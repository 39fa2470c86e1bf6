package layering

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestMergeFromFixture(t *testing.T) {
	fx := loadLayeringFixture(t, "layering_merge.json")

	for _, tc := range fx.Cases {
		tc := tc
		t.Run(tc.Name, func(t *testing.T) {
			layers := make([]map[string]any, len(tc.Layers))
			for i := range tc.Layers {
				layers[i] = tc.Layers[i].Snapshot
			}

			got := Merge(layers...)
			if !reflect.DeepEqual(tc.Expect, got) {
				t.Errorf("merged snapshot mismatch:\nwant: %#v\n got: %#v", tc.Expect, got)
			}
		})
	}
}

func TestMergeZeroInput(t *testing.T) {
	got := Merge()
	if got == nil {
		t.Fatal("expected Merge() to return an empty map, got nil")
	}
	if len(got) != 0 {
		t.Fatalf("expected Merge() to return an empty map, got %#v", got)
	}
}

func TestMergeDoesNotAliasInputs(t *testing.T) {
	strong := map[string]any{"channel": map[string]any{"email": true}}
	weak := map[string]any{"channel": map[string]any{"sms": true}}

	got := Merge(strong, weak)
	got["channel"].(map[string]any)["email"] = false

	if strong["channel"].(map[string]any)["email"] != true {
		t.Fatal("mutating the merged map leaked into a source layer")
	}
}

func TestClone(t *testing.T) {
	if Clone(nil) != nil {
		t.Fatal("expected Clone(nil) to stay nil")
	}

	src := map[string]any{
		"tags":   []string{"a", "b"},
		"limits": map[string]any{"daily": 5},
	}
	dup := Clone(src)
	if !reflect.DeepEqual(src, dup) {
		t.Fatalf("clone mismatch:\nwant: %#v\n got: %#v", src, dup)
	}

	dup["limits"].(map[string]any)["daily"] = 9
	dup["tags"].([]string)[0] = "z"
	if src["limits"].(map[string]any)["daily"] != 5 {
		t.Fatal("nested map was shared between clone and source")
	}
	if src["tags"].([]string)[0] != "a" {
		t.Fatal("slice was shared between clone and source")
	}
}

func TestCloneValue(t *testing.T) {
	if CloneValue(nil) != nil {
		t.Fatal("expected CloneValue(nil) to stay nil")
	}

	src := []any{map[string]any{"k": 1}, "text"}
	dup := CloneValue(src).([]any)
	if !reflect.DeepEqual(src, dup) {
		t.Fatalf("clone mismatch:\nwant: %#v\n got: %#v", src, dup)
	}
	dup[0].(map[string]any)["k"] = 2
	if src[0].(map[string]any)["k"] != 1 {
		t.Fatal("nested value was shared between clone and source")
	}
}

type layeringFixture struct {
	Description string                `json:"description"`
	Cases       []layeringFixtureCase `json:"cases"`
}

type layeringFixtureCase struct {
	Name   string                 `json:"name"`
	Layers []layeringFixtureLayer `json:"layers"`
	Expect map[string]any         `json:"expect"`
	Notes  string                 `json:"notes"`
}

type layeringFixtureLayer struct {
	Scope    string         `json:"scope"`
	Snapshot map[string]any `json:"snapshot"`
}

func loadLayeringFixture(t *testing.T, name string) layeringFixture {
	t.Helper()
	path := filepath.Join("testdata", name)
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read layering fixture %q: %v", name, err)
	}
	var fx layeringFixture
	if err := json.Unmarshal(raw, &fx); err != nil {
		t.Fatalf("failed to unmarshal layering fixture %q: %v", name, err)
	}
	return fx
}
