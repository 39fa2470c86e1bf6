package props

import (
	"encoding/json"
	"errors"

	"github.com/goliatone/go-props/layering"
)

// Trace captures provenance information for a given path lookup across the
// scoped layers that produced the effective value.
type Trace struct {
	Path   string       `json:"path"`
	Layers []Provenance `json:"layers"`
}

// Provenance details how a specific scope contributed to a traced path.
type Provenance struct {
	Scope      Scope  `json:"scope"`
	SnapshotID string `json:"snapshot_id,omitempty"`
	Path       string `json:"path"`
	Value      any    `json:"value,omitempty"`
	Found      bool   `json:"found"`
}

// ToJSON serialises the trace into JSON for logging or transport helpers.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON deserialises a JSON payload that was previously generated via
// ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}

// Trace reports, strongest layer first, where a dotted path comes from. A
// container built from a Stack probes every recorded layer snapshot; a
// container built directly from its type yields a single entry probing the
// current values. The effective value is the strongest hit.
func (c *Container) Trace(path string) (any, Trace, error) {
	if path == "" {
		return nil, Trace{}, errors.New("props: empty trace path")
	}
	trace := Trace{Path: path}

	if len(c.layers) == 0 {
		value, found := layering.Lookup(c.Export(), path)
		trace.Layers = []Provenance{{
			Scope: c.scope.clone(),
			Path:  path,
			Value: value,
			Found: found,
		}}
		return value, trace, nil
	}

	var effective any
	resolved := false
	trace.Layers = make([]Provenance, 0, len(c.layers))
	for _, layer := range c.layers {
		value, found := layering.Lookup(layer.Snapshot, path)
		if found && !resolved {
			effective = value
			resolved = true
		}
		trace.Layers = append(trace.Layers, Provenance{
			Scope:      layer.Scope.clone(),
			SnapshotID: layer.SnapshotID,
			Path:       path,
			Value:      value,
			Found:      found,
		})
	}
	return effective, trace, nil
}
