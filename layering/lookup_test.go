package layering

import "testing"

func TestLookup(t *testing.T) {
	snapshot := map[string]any{
		"volume": 5,
		"channel": map[string]any{
			"email": map[string]any{"enabled": true},
		},
	}

	tests := []struct {
		name  string
		path  string
		want  any
		found bool
	}{
		{name: "top level", path: "volume", want: 5, found: true},
		{name: "nested", path: "channel.email.enabled", want: true, found: true},
		{name: "intermediate map", path: "channel.email", want: map[string]any{"enabled": true}, found: true},
		{name: "missing key", path: "channel.sms", want: nil, found: false},
		{name: "through scalar", path: "volume.high", want: nil, found: false},
		{name: "empty path", path: "", want: nil, found: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Lookup(snapshot, tc.path)
			if ok != tc.found {
				t.Fatalf("Lookup(%q) found=%v, want %v", tc.path, ok, tc.found)
			}
			if !tc.found {
				return
			}
			switch want := tc.want.(type) {
			case map[string]any:
				gotMap, ok := got.(map[string]any)
				if !ok || len(gotMap) != len(want) {
					t.Fatalf("Lookup(%q) = %#v, want %#v", tc.path, got, tc.want)
				}
				for k, v := range want {
					if gotMap[k] != v {
						t.Fatalf("Lookup(%q)[%s] = %#v, want %#v", tc.path, k, gotMap[k], v)
					}
				}
			default:
				if got != tc.want {
					t.Fatalf("Lookup(%q) = %#v, want %#v", tc.path, got, tc.want)
				}
			}
		})
	}
}

func TestLookupNilSnapshot(t *testing.T) {
	if _, ok := Lookup(nil, "anything"); ok {
		t.Fatal("expected lookup on nil snapshot to miss")
	}
}
