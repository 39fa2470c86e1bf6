// Package source loads option snapshots from external formats. Every source
// yields a plain map ready for a container type's validation pipeline; Read
// combines several sources with later ones overriding earlier ones.
package source

import (
	"fmt"

	"github.com/goliatone/go-props/layering"
)

// Source yields a raw option snapshot.
type Source interface {
	Load() (map[string]any, error)
}

// DecodeError reports a payload that could not be decoded. Format names the
// source kind (json, yaml, hcl).
type DecodeError struct {
	Format string
	Err    error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("source: invalid %s: %s", e.Format, e.Err)
}

// Unwrap supports errors.Is and errors.As.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Read loads every source in order and merges the snapshots, later sources
// overriding earlier ones. The first load failure aborts.
func Read(sources ...Source) (map[string]any, error) {
	if len(sources) == 0 {
		return map[string]any{}, nil
	}
	snapshots := make([]map[string]any, 0, len(sources))
	for _, src := range sources {
		if src == nil {
			continue
		}
		snapshot, err := src.Load()
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}
	// Merge wants strongest first; later sources are stronger here.
	for i, j := 0, len(snapshots)-1; i < j; i, j = i+1, j-1 {
		snapshots[i], snapshots[j] = snapshots[j], snapshots[i]
	}
	return layering.Merge(snapshots...), nil
}

// Map adapts an in-memory snapshot to the Source interface. The map is deep
// copied on every Load so callers can keep mutating their reference.
type Map map[string]any

// FromMap wraps an existing snapshot.
func FromMap(snapshot map[string]any) Map {
	return Map(snapshot)
}

// Load implements the Source interface.
func (m Map) Load() (map[string]any, error) {
	if m == nil {
		return map[string]any{}, nil
	}
	return layering.Clone(map[string]any(m)), nil
}
