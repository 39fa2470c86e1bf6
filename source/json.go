package source

import (
	"encoding/json"
	"io"
)

// JSON represents a Source whose underlying format is JSON.
type JSON struct {
	r io.Reader
}

// FromJSON returns a source that loads its snapshot from JSON read off r.
// Integral numbers decode as int64, fractional ones as float64.
func FromJSON(r io.Reader) JSON {
	return JSON{r: r}
}

// Load implements the Source interface.
func (src JSON) Load() (map[string]any, error) {
	dec := json.NewDecoder(src.r)
	dec.UseNumber()

	m := make(map[string]any)
	if err := dec.Decode(&m); err != nil {
		return nil, &DecodeError{Format: "json", Err: err}
	}
	normalizeNumbers(m)
	return m, nil
}

func normalizeNumbers(m map[string]any) {
	for key, value := range m {
		m[key] = normalizeNumberValue(value)
	}
}

func normalizeNumberValue(value any) any {
	switch v := value.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	case map[string]any:
		normalizeNumbers(v)
		return v
	case []any:
		for i := range v {
			v[i] = normalizeNumberValue(v[i])
		}
		return v
	default:
		return value
	}
}
