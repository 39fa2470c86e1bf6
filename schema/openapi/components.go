package openapi

import (
	"fmt"
	"regexp"
)

// componentRegistry collects schema nodes by structural digest and decides
// which of them end up under components/schemas. Named container types are
// pinned and always referenced; anonymous shapes are promoted once a second
// occurrence of the same digest appears, leaving one-off schemas inline.
type componentRegistry struct {
	entries   map[string]*componentEntry
	usedNames map[string]struct{}
}

type componentEntry struct {
	name   string
	schema map[string]any
	count  int
	pinned bool
}

func newComponentRegistry() *componentRegistry {
	return &componentRegistry{
		entries:   map[string]*componentEntry{},
		usedNames: map[string]struct{}{},
	}
}

// register records one occurrence of the node. It returns a $ref once the
// node's digest has been seen often enough to justify a shared component, and
// an empty string while the schema should stay inline.
func (r *componentRegistry) register(nameHint string, node *schemaNode) string {
	return r.record(nameHint, node, false)
}

// forceReference records the node and always returns its $ref.
func (r *componentRegistry) forceReference(name string, node *schemaNode) string {
	return r.record(name, node, true)
}

func (r *componentRegistry) record(nameHint string, node *schemaNode, pinned bool) string {
	if node == nil {
		return ""
	}
	digest := node.Digest()
	if digest == "" {
		return ""
	}

	entry, ok := r.entries[digest]
	if !ok {
		entry = &componentEntry{
			name:   r.uniqueName(nameHint),
			count:  0,
			pinned: false,
		}
		r.entries[digest] = entry
	}

	entry.count++
	if pinned {
		entry.pinned = true
	}
	if !entry.pinned && entry.count < 2 {
		return ""
	}
	if entry.schema == nil {
		entry.schema = node.inlineOpenAPI()
	}
	return componentRef(entry.name)
}

func (r *componentRegistry) uniqueName(name string) string {
	safe := sanitizeComponentName(name)
	if safe == "" {
		safe = "Schema"
	}
	if _, exists := r.usedNames[safe]; !exists {
		r.usedNames[safe] = struct{}{}
		return safe
	}
	suffix := 1
	for {
		candidate := fmt.Sprintf("%s%d", safe, suffix)
		if _, exists := r.usedNames[candidate]; !exists {
			r.usedNames[candidate] = struct{}{}
			return candidate
		}
		suffix++
	}
}

// componentsMap renders the promoted entries, or nil when every schema stayed
// inline.
func (r *componentRegistry) componentsMap() map[string]any {
	out := make(map[string]any, len(r.entries))
	for _, entry := range r.entries {
		if !entry.pinned && entry.count < 2 {
			continue
		}
		if entry.schema == nil {
			entry.schema = map[string]any{}
		}
		out[entry.name] = entry.schema
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func componentRef(name string) string {
	return fmt.Sprintf("#/components/schemas/%s", name)
}

var componentNameRegexp = regexp.MustCompile(`[^a-zA-Z0-9_]+`)

func sanitizeComponentName(name string) string {
	name = componentNameRegexp.ReplaceAllString(name, "_")
	name = trimUnderscores(name)
	if name == "" {
		return ""
	}
	if name[0] >= '0' && name[0] <= '9' {
		name = "_" + name
	}
	return name
}

func trimUnderscores(input string) string {
	start := 0
	for start < len(input) && input[start] == '_' {
		start++
	}
	end := len(input)
	for end > start && input[end-1] == '_' {
		end--
	}
	return input[start:end]
}
