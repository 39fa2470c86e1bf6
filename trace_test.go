package props

import (
	"encoding/json"
	"testing"
)

func TestTraceReportsLayerProvenance(t *testing.T) {
	notify := notifyType(t)

	defaults := NewLayer(NewScope("defaults", 10), map[string]any{
		"env":    "prod",
		"limits": map[string]any{"daily": 100},
	}, WithSnapshotID("defaults/1"))
	user := NewLayer(NewScope("user", 20), map[string]any{
		"env":    "staging",
		"limits": map[string]any{"daily": 80},
	}, WithSnapshotID("user/5"))

	stack, err := NewStack(defaults, user)
	if err != nil {
		t.Fatalf("stack: %v", err)
	}
	container, err := stack.Build(notify)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	value, trace, err := container.Trace("env")
	if err != nil {
		t.Fatalf("trace: %v", err)
	}
	if value != "staging" {
		t.Fatalf("expected user override, got %v", value)
	}
	if len(trace.Layers) != 2 {
		t.Fatalf("expected 2 provenance entries, got %d", len(trace.Layers))
	}
	if !trace.Layers[0].Found || trace.Layers[0].Scope.Name != "user" {
		t.Fatalf("expected first layer to be user and found, got %+v", trace.Layers[0])
	}
	if trace.Layers[0].SnapshotID != "user/5" {
		t.Fatalf("expected snapshot id on provenance, got %+v", trace.Layers[0])
	}
	if !trace.Layers[1].Found || trace.Layers[1].Value != "prod" {
		t.Fatalf("expected defaults layer to provide fallback value, got %+v", trace.Layers[1])
	}

	// A path only the weaker layer provides resolves against it.
	value, trace, err = container.Trace("limits.daily")
	if err != nil {
		t.Fatalf("trace: %v", err)
	}
	if value != 80 {
		t.Fatalf("expected strongest hit, got %v", value)
	}
	if trace.Layers[1].Value != 100 {
		t.Fatalf("expected defaults snapshot value, got %+v", trace.Layers[1])
	}

	// Paths absent from every snapshot still produce one entry per layer.
	value, trace, err = container.Trace("limits.weekly")
	if err != nil {
		t.Fatalf("trace: %v", err)
	}
	if value != nil {
		t.Fatalf("registry defaults are not layer hits, got %v", value)
	}
	for _, layer := range trace.Layers {
		if layer.Found {
			t.Fatalf("expected no layer hit for limits.weekly, got %+v", layer)
		}
	}
}

func TestTraceWithoutStack(t *testing.T) {
	notify := notifyType(t)
	container := notify.MustNew(map[string]any{"env": "dev"})

	value, trace, err := container.Trace("env")
	if err != nil {
		t.Fatalf("trace: %v", err)
	}
	if value != "dev" {
		t.Fatalf("expected current value, got %v", value)
	}
	if len(trace.Layers) != 1 || !trace.Layers[0].Found {
		t.Fatalf("expected single synthetic layer, got %+v", trace.Layers)
	}

	// Nested values resolve through the exported snapshot.
	value, _, err = container.Trace("limits.daily")
	if err != nil {
		t.Fatalf("trace: %v", err)
	}
	if value != 100 {
		t.Fatalf("expected nested default, got %v", value)
	}

	if _, _, err := container.Trace(""); err == nil {
		t.Fatalf("expected empty path error")
	}
}

func TestTraceJSONRoundTrip(t *testing.T) {
	trace := Trace{
		Path: "feature.enabled",
		Layers: []Provenance{{
			Scope: Scope{Name: "user"},
			Path:  "feature.enabled",
			Value: true,
			Found: true,
		}},
	}
	raw, err := trace.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !json.Valid(raw) {
		t.Fatalf("expected valid json, got %s", raw)
	}
	restore, err := TraceFromJSON(raw)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if restore.Path != trace.Path || len(restore.Layers) != len(trace.Layers) {
		t.Fatalf("round trip mismatch: %+v vs %+v", restore, trace)
	}
	if restore.Layers[0].Scope.Name != "user" || restore.Layers[0].Value != true {
		t.Fatalf("round trip lost layer data: %+v", restore.Layers[0])
	}
}
