package props

import (
	"sort"
	"strings"
)

// FieldDescriptor describes one option path: the accepted type and the
// default used when the option is absent.
type FieldDescriptor struct {
	Path    string
	Type    string
	Default any
}

// DefaultSchemaGenerator returns the built-in descriptor-based schema generator.
func DefaultSchemaGenerator() SchemaGenerator {
	return descriptorGenerator{}
}

type descriptorGenerator struct{}

// Generate flattens a *Type or *Container into ordered field descriptors,
// recursing through nested container definitions. Any other value is walked
// structurally with map keys sorted.
func (descriptorGenerator) Generate(value any) (SchemaDocument, error) {
	var descriptors []FieldDescriptor
	switch typed := value.(type) {
	case *Type:
		descriptors = describeType(typed, "", nil)
	case *Container:
		if typed != nil {
			descriptors = describeType(typed.ctype, "", nil)
		}
	default:
		descriptors = deriveFieldDescriptors(value, "")
	}
	if descriptors == nil {
		descriptors = []FieldDescriptor{}
	}
	return SchemaDocument{
		Format:   SchemaFormatDescriptors,
		Document: descriptors,
	}, nil
}

func describeType(t *Type, prefix string, seen []*Type) []FieldDescriptor {
	if t == nil {
		return nil
	}
	for _, visited := range seen {
		if visited == t {
			return []FieldDescriptor{{Path: prefix, Type: t.name}}
		}
	}
	seen = append(seen, t)

	var fields []FieldDescriptor
	for _, def := range t.defs.Definitions() {
		path := joinPath(prefix, def.Name())
		if child := nestedContainerType(def); child != nil {
			nested := describeType(child, path, seen)
			if len(nested) == 0 {
				nested = []FieldDescriptor{{Path: path, Type: child.name}}
			}
			fields = append(fields, nested...)
			continue
		}
		fields = append(fields, FieldDescriptor{
			Path:    path,
			Type:    definitionTypeName(def),
			Default: def.Default(),
		})
	}
	return fields
}

// nestedContainerType reports the child type when def holds container
// instances.
func nestedContainerType(def *Definition) *Type {
	for _, cleaner := range def.Cleaners() {
		if cc, ok := cleaner.(*ContainerCleaner); ok {
			return cc.ContainerType()
		}
	}
	return nil
}

func definitionTypeName(def *Definition) string {
	for _, validator := range def.Validators() {
		if tv, ok := validator.(*TypeValidator); ok && tv.Expected != nil {
			return tv.Expected.TypeName()
		}
	}
	return "any"
}

func deriveFieldDescriptors(value any, prefix string) []FieldDescriptor {
	if value == nil {
		return nil
	}

	switch typed := value.(type) {
	case map[string]any:
		if len(typed) == 0 {
			return []FieldDescriptor{{
				Path: prefix,
				Type: "map[string]any",
			}}
		}
		keys := make([]string, 0, len(typed))
		for key := range typed {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		var fields []FieldDescriptor
		for _, key := range keys {
			nextPrefix := joinPath(prefix, key)
			fields = append(fields, deriveFieldDescriptors(typed[key], nextPrefix)...)
		}
		return fields
	case []any:
		elementType := "any"
		if len(typed) > 0 {
			elementType = typeNameOf(typed[0])
		}
		return []FieldDescriptor{{
			Path: prefix,
			Type: "[]" + elementType,
		}}
	default:
		if prefix == "" {
			return nil
		}
		return []FieldDescriptor{{
			Path: prefix,
			Type: typeNameOf(typed),
		}}
	}
}

func joinPath(prefix, segment string) string {
	if prefix == "" {
		return segment
	}
	return strings.Join([]string{prefix, segment}, ".")
}

// Schema generates the type-level schema document.
func (t *Type) Schema() (SchemaDocument, error) {
	return t.schemaGenerator().Generate(t)
}

// Schema generates the container's schema document using the type-configured
// generator, appending scope provenance when the type opts in.
func (c *Container) Schema() (SchemaDocument, error) {
	doc, err := c.ctype.schemaGenerator().Generate(c)
	if err != nil {
		return SchemaDocument{}, err
	}
	if c.ctype.cfg.scopeSchema {
		doc.Scopes = c.schemaScopes()
	}
	return doc, nil
}

func (c *Container) schemaScopes() []SchemaScope {
	if len(c.layers) > 0 {
		out := make([]SchemaScope, 0, len(c.layers))
		for _, layer := range c.layers {
			out = append(out, SchemaScope{
				Name:       layer.Scope.Name,
				Label:      layer.Scope.Label,
				Priority:   layer.Scope.Priority,
				Metadata:   copyMetadata(layer.Scope.Metadata),
				SnapshotID: layer.SnapshotID,
			})
		}
		return out
	}
	if c.scope.isZero() {
		return nil
	}
	return []SchemaScope{{
		Name:     c.scope.Name,
		Label:    c.scope.Label,
		Priority: c.scope.Priority,
		Metadata: copyMetadata(c.scope.Metadata),
	}}
}
