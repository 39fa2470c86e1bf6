package source

import (
	"io"

	"gopkg.in/yaml.v3"
)

// YAML represents a Source whose underlying format is YAML.
type YAML struct {
	r io.Reader
}

// FromYAML returns a source that loads its snapshot from YAML read off r.
func FromYAML(r io.Reader) YAML {
	return YAML{r: r}
}

// Load implements the Source interface.
func (src YAML) Load() (map[string]any, error) {
	b, err := io.ReadAll(src.r)
	if err != nil {
		return nil, err
	}

	m := make(map[string]any)
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, &DecodeError{Format: "yaml", Err: err}
	}
	return m, nil
}
