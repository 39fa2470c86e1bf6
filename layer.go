package props

import (
	"errors"

	"github.com/goliatone/go-props/layering"
	"github.com/goliatone/go-props/source"
)

// BuildLayered merges raw snapshots ordered strongest to weakest and
// validates the result against t. Use a Stack when per-layer provenance or
// scope metadata matters.
func BuildLayered(t *Type, layers ...map[string]any) (*Container, error) {
	if t == nil {
		return nil, errors.New("props: container type is required")
	}
	return t.New(layering.Merge(layers...))
}

// BuildFrom loads every source in order, later sources overriding earlier
// ones, and validates the combined snapshot against t.
func BuildFrom(t *Type, sources ...source.Source) (*Container, error) {
	if t == nil {
		return nil, errors.New("props: container type is required")
	}
	merged, err := source.Read(sources...)
	if err != nil {
		return nil, err
	}
	return t.New(merged)
}
