package openapi

import (
	props "github.com/goliatone/go-props"
)

type generator struct {
	config generatorConfig
}

// NewGenerator constructs an OpenAPI 3 schema generator. It accepts container
// types, container instances, decode target structs and raw snapshot values;
// the declared definitions drive the schema when a container type is in play.
func NewGenerator(options ...GeneratorOption) props.SchemaGenerator {
	return generator{config: newGeneratorConfig(options...)}
}

// Option wires the OpenAPI generator into a container type declaration.
func Option(options ...GeneratorOption) props.TypeOption {
	return props.WithSchemaGenerator(NewGenerator(options...))
}

func (g generator) Generate(value any) (props.SchemaDocument, error) {
	root, err := buildSchemaGraph(value)
	if err != nil {
		return props.SchemaDocument{}, err
	}

	registry := newComponentRegistry()
	document, err := newOpenAPIDocumentBuilder(g.config, registry, root).build()
	if err != nil {
		return props.SchemaDocument{}, err
	}

	return props.SchemaDocument{
		Format:   props.SchemaFormatOpenAPI,
		Document: document,
	}, nil
}
