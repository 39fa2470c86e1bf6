package source

import (
	"os"
	"strings"
)

// Env represents a Source whose values come from environment variables.
type Env struct {
	prefix  string
	environ func() []string
}

// FromEnv returns a source over the process environment. Only variables
// carrying the prefix are read; the prefix is stripped, a double underscore
// nests keys, and key segments are lowercased. Values stay strings, so
// definitions fed from the environment want cleaners that coerce. An empty
// prefix reads nothing.
func FromEnv(prefix string) Env {
	return Env{
		prefix:  prefix,
		environ: os.Environ,
	}
}

// Load implements the Source interface.
func (src Env) Load() (map[string]any, error) {
	out := make(map[string]any)
	if src.prefix == "" {
		return out, nil
	}
	environ := src.environ
	if environ == nil {
		environ = os.Environ
	}
	for _, pair := range environ() {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		name, ok := strings.CutPrefix(k, src.prefix)
		if !ok || name == "" {
			continue
		}
		setEnvPath(out, strings.Split(strings.ToLower(name), "__"), v)
	}
	return out, nil
}

func setEnvPath(m map[string]any, path []string, value string) {
	for i, segment := range path {
		if segment == "" {
			return
		}
		if i == len(path)-1 {
			m[segment] = value
			return
		}
		next, ok := m[segment].(map[string]any)
		if !ok {
			next = make(map[string]any)
			m[segment] = next
		}
		m = next
	}
}
