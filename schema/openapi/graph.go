package openapi

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	props "github.com/goliatone/go-props"
)

// schemaNode is the intermediate schema representation shared by the
// definition walker and the reflect walker. The document builder decides per
// node whether it is inlined or published under components.
type schemaNode struct {
	Type             string
	Format           string
	Properties       map[string]*schemaNode
	Required         []string
	Items            *schemaNode
	Enum             []any
	Default          any
	Minimum          *float64
	Maximum          *float64
	ExclusiveMinimum *float64
	ExclusiveMaximum *float64
	MinLength        *int
	MaxLength        *int
	Pattern          string

	// component names nodes derived from a declared container type; the
	// document builder publishes them under components/schemas.
	component  string
	extensions map[string]any
}

func newObjectNode() *schemaNode {
	return &schemaNode{
		Type:       "object",
		Properties: map[string]*schemaNode{},
	}
}

func (n *schemaNode) setExtension(key string, value any) {
	if n.extensions == nil {
		n.extensions = map[string]any{}
	}
	n.extensions[key] = value
}

func (n *schemaNode) baseMap() map[string]any {
	result := map[string]any{}
	if n.Type != "" {
		result["type"] = n.Type
	}
	if n.Format != "" {
		result["format"] = n.Format
	}
	if n.Default != nil {
		result["default"] = n.Default
	}
	if len(n.Enum) > 0 {
		result["enum"] = n.Enum
	}
	if n.Minimum != nil {
		result["minimum"] = *n.Minimum
	}
	if n.Maximum != nil {
		result["maximum"] = *n.Maximum
	}
	if n.ExclusiveMinimum != nil {
		result["exclusiveMinimum"] = *n.ExclusiveMinimum
	}
	if n.ExclusiveMaximum != nil {
		result["exclusiveMaximum"] = *n.ExclusiveMaximum
	}
	if n.MinLength != nil {
		result["minLength"] = *n.MinLength
	}
	if n.MaxLength != nil {
		result["maxLength"] = *n.MaxLength
	}
	if n.Pattern != "" {
		result["pattern"] = n.Pattern
	}
	return result
}

func (n *schemaNode) inlineOpenAPI() map[string]any {
	result := n.baseMap()

	if len(n.Properties) > 0 || n.Type == "object" {
		properties := make(map[string]any, len(n.Properties))
		names := make([]string, 0, len(n.Properties))
		for name := range n.Properties {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			properties[name] = n.Properties[name].inlineOpenAPI()
		}
		result["properties"] = properties
	}

	if len(n.Required) > 0 {
		names := append([]string{}, n.Required...)
		sort.Strings(names)
		result["required"] = names
	}

	if n.Items != nil {
		result["items"] = n.Items.inlineOpenAPI()
	}

	for key, value := range n.extensions {
		result[key] = value
	}

	return result
}

// Digest fingerprints the rendered schema so structurally identical nodes
// collapse into one component regardless of where they were discovered.
func (n *schemaNode) Digest() string {
	payload := n.inlineOpenAPI()
	data, err := json.Marshal(payload)
	if err != nil {
		// The payload is built from marshal-safe values; an empty digest
		// keeps the node inline instead of panicking.
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// buildSchemaGraph turns the generator input into a schema node tree.
// Container types and container instances walk their declared definitions;
// anything else is walked reflectively so raw snapshots and decode target
// structs produce usable schemas too.
func buildSchemaGraph(value any) (*schemaNode, error) {
	switch typed := value.(type) {
	case *props.Type:
		return newTypeWalker().walkType(typed)
	case *props.Container:
		if typed == nil {
			return newObjectNode(), nil
		}
		return newTypeWalker().walkType(typed.Type())
	}

	builder := newSchemaBuilder()
	rv := reflect.ValueOf(value)
	var rt reflect.Type
	if rv.IsValid() {
		rt = rv.Type()
	}
	node, err := builder.build(rv, rt)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return newObjectNode(), nil
	}
	if node.Type == "" {
		node.Type = "object"
	}
	if node.Type == "object" && node.Properties == nil {
		node.Properties = map[string]*schemaNode{}
	}
	return node, nil
}

// typeWalker renders container type declarations. Each definition becomes a
// property: the lead type validator picks the JSON type, convenience
// validators map onto enum and minimum/maximum, rule expressions surface as
// the x-rule extension, and nested container types recurse into named
// component candidates.
type typeWalker struct {
	visited map[*props.Type]bool
}

func newTypeWalker() *typeWalker {
	return &typeWalker{
		visited: map[*props.Type]bool{},
	}
}

func (w *typeWalker) walkType(t *props.Type) (*schemaNode, error) {
	if t == nil {
		return newObjectNode(), nil
	}
	if w.visited[t] {
		return newObjectNode(), nil
	}
	w.visited[t] = true
	defer delete(w.visited, t)

	node := newObjectNode()
	for _, def := range t.Defs().Definitions() {
		child, err := w.walkDefinition(def)
		if err != nil {
			return nil, err
		}
		node.Properties[def.Name()] = child
	}
	return node, nil
}

func (w *typeWalker) walkDefinition(def *props.Definition) (*schemaNode, error) {
	if child := nestedContainerType(def); child != nil {
		node, err := w.walkType(child)
		if err != nil {
			return nil, err
		}
		node.component = child.Name()
		applyDefinitionMetadata(node, def)
		return node, nil
	}

	node, err := nodeForDefinition(def)
	if err != nil {
		return nil, err
	}
	applyDefinitionMetadata(node, def)
	return node, nil
}

// nestedContainerType reports the child container type when the definition
// coerces values through a container cleaner.
func nestedContainerType(def *props.Definition) *props.Type {
	for _, cleaner := range def.Cleaners() {
		if cc, ok := cleaner.(*props.ContainerCleaner); ok {
			return cc.ContainerType()
		}
	}
	return nil
}

// nodeForDefinition picks the property schema from the definition's lead type
// validator, falling back to the shape of the declared default. A definition
// with neither stays an unconstrained schema.
func nodeForDefinition(def *props.Definition) (*schemaNode, error) {
	for _, validator := range def.Validators() {
		if tv, ok := validator.(*props.TypeValidator); ok && tv.Expected != nil {
			return nodeForTypeName(tv.Expected.TypeName()), nil
		}
	}
	if def.Default() != nil {
		builder := newSchemaBuilder()
		rv := reflect.ValueOf(def.Default())
		return builder.build(rv, rv.Type())
	}
	return &schemaNode{}, nil
}

func nodeForTypeName(name string) *schemaNode {
	if strings.HasPrefix(name, "(") && strings.HasSuffix(name, ")") {
		return nodeForTypeUnion(name)
	}
	switch name {
	case "string":
		return &schemaNode{Type: "string"}
	case "bool":
		return &schemaNode{Type: "boolean"}
	case "float32", "float64":
		return &schemaNode{Type: "number"}
	case "time.Time":
		return &schemaNode{
			Type:   "string",
			Format: "date-time",
		}
	}
	if isIntegerTypeName(name) {
		return &schemaNode{Type: "integer"}
	}
	return &schemaNode{
		Type:   "string",
		Format: fmt.Sprintf("go:%s", name),
	}
}

// nodeForTypeUnion maps a union of type names onto one schema when every
// member renders identically, as with the (int, int64) integer union. Mixed
// unions stay unconstrained.
func nodeForTypeUnion(name string) *schemaNode {
	inner := strings.TrimSuffix(strings.TrimPrefix(name, "("), ")")
	var merged *schemaNode
	for _, part := range strings.Split(inner, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		node := nodeForTypeName(part)
		if merged == nil {
			merged = node
			continue
		}
		if merged.Type != node.Type || merged.Format != node.Format {
			return &schemaNode{}
		}
	}
	if merged == nil {
		return &schemaNode{}
	}
	return merged
}

func isIntegerTypeName(name string) bool {
	switch name {
	case "int", "int8", "int16", "int32", "int64",
		"uint", "uint8", "uint16", "uint32", "uint64", "uintptr":
		return true
	default:
		return false
	}
}

func applyDefinitionMetadata(node *schemaNode, def *props.Definition) {
	if def.Default() != nil {
		node.Default = def.Default()
	}

	var rules []string
	for _, validator := range def.Validators() {
		switch v := validator.(type) {
		case *props.ChoicesValidator:
			node.Enum = v.Choices()
		case *props.MinValueValidator:
			if value, ok := toFloat(v.Min); ok {
				node.Minimum = &value
			}
		case *props.MaxValueValidator:
			if value, ok := toFloat(v.Max); ok {
				node.Maximum = &value
			}
		case *props.RuleValidator:
			rules = append(rules, v.Rule())
		}
	}

	switch len(rules) {
	case 0:
	case 1:
		node.setExtension("x-rule", rules[0])
	default:
		node.setExtension("x-rule", rules)
	}
}

func toFloat(value any) (float64, bool) {
	switch rv := reflect.ValueOf(value); rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// schemaBuilder walks plain Go values and decode target structs. Struct
// fields honour json tags plus the scalar constraint tags default, enum,
// minimum, maximum, exclusiveMinimum, exclusiveMaximum, minLength, maxLength,
// pattern and format.
type schemaBuilder struct {
	visited map[reflect.Type]bool
}

func newSchemaBuilder() *schemaBuilder {
	return &schemaBuilder{
		visited: map[reflect.Type]bool{},
	}
}

func (b *schemaBuilder) build(rv reflect.Value, rt reflect.Type) (*schemaNode, error) {
	if rt == nil {
		if rv.IsValid() {
			rt = rv.Type()
		} else {
			return newObjectNode(), nil
		}
	}

	for rt.Kind() == reflect.Pointer {
		if rv.IsValid() {
			if rv.IsNil() {
				rv = reflect.Value{}
			} else {
				rv = rv.Elem()
			}
		}
		rt = rt.Elem()
	}

	if rt.Kind() == reflect.Interface {
		if rv.IsValid() && !rv.IsNil() {
			return b.build(rv.Elem(), rv.Elem().Type())
		}
		return newObjectNode(), nil
	}

	if rt == reflect.TypeOf(time.Time{}) {
		return &schemaNode{
			Type:   "string",
			Format: "date-time",
		}, nil
	}

	switch rt.Kind() {
	case reflect.Bool:
		return &schemaNode{Type: "boolean"}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return &schemaNode{Type: "integer"}, nil
	case reflect.Float32, reflect.Float64:
		return &schemaNode{Type: "number"}, nil
	case reflect.String:
		return &schemaNode{Type: "string"}, nil
	case reflect.Struct:
		return b.buildStruct(rv, rt)
	case reflect.Map:
		return b.buildMap(rv, rt)
	case reflect.Slice, reflect.Array:
		if rt.Kind() == reflect.Slice && rt.Elem().Kind() == reflect.Uint8 {
			return &schemaNode{
				Type:   "string",
				Format: "byte",
			}, nil
		}
		return b.buildSlice(rv, rt)
	default:
		return &schemaNode{
			Type:   "string",
			Format: fmt.Sprintf("go:%s", rt.String()),
		}, nil
	}
}

func (b *schemaBuilder) buildStruct(rv reflect.Value, rt reflect.Type) (*schemaNode, error) {
	if b.visited[rt] {
		return newObjectNode(), nil
	}
	b.visited[rt] = true
	defer delete(b.visited, rt)

	if !rv.IsValid() {
		rv = reflect.Zero(rt)
	}

	node := newObjectNode()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}

		name, omitEmpty, skip := parseJSONName(field)
		if skip {
			continue
		}
		fieldValue := reflect.Value{}
		if rv.IsValid() {
			fieldValue = rv.Field(i)
		}

		child, err := b.build(fieldValue, field.Type)
		if err != nil {
			return nil, err
		}

		if err := applyFieldMetadata(child, field); err != nil {
			return nil, err
		}

		node.Properties[name] = child

		if isFieldRequired(field, omitEmpty) {
			node.Required = append(node.Required, name)
		}
	}

	return node, nil
}

func (b *schemaBuilder) buildMap(rv reflect.Value, rt reflect.Type) (*schemaNode, error) {
	if rt.Key().Kind() != reflect.String {
		return nil, fmt.Errorf("openapi: map key type %s unsupported", rt.Key())
	}

	node := newObjectNode()
	if !rv.IsValid() || rv.Len() == 0 {
		return node, nil
	}

	keys := rv.MapKeys()
	names := make([]string, 0, len(keys))
	for _, key := range keys {
		if key.Kind() != reflect.String {
			return nil, fmt.Errorf("openapi: map key kind %s unsupported", key.Kind())
		}
		names = append(names, key.String())
	}
	sort.Strings(names)

	for _, name := range names {
		value := rv.MapIndex(reflect.ValueOf(name))
		child, err := b.build(value, value.Type())
		if err != nil {
			return nil, err
		}
		node.Properties[name] = child
	}

	return node, nil
}

func (b *schemaBuilder) buildSlice(rv reflect.Value, rt reflect.Type) (*schemaNode, error) {
	node := &schemaNode{
		Type: "array",
	}
	elemType := rt.Elem()
	var elemValue reflect.Value
	if rv.IsValid() && rv.Len() > 0 {
		elemValue = rv.Index(0)
	} else if elemType.Kind() != reflect.Invalid {
		elemValue = reflect.Zero(elemType)
	}

	child, err := b.build(elemValue, elemType)
	if err != nil {
		return nil, err
	}
	node.Items = child
	return node, nil
}

func parseJSONName(field reflect.StructField) (name string, omitEmpty bool, skip bool) {
	tag := field.Tag.Get("json")
	if tag == "" {
		return field.Name, false, false
	}

	segments := strings.Split(tag, ",")
	if segments[0] == "-" {
		return "", false, true
	}

	name = segments[0]
	if name == "" {
		name = field.Name
	}
	for _, segment := range segments[1:] {
		if segment == "omitempty" {
			omitEmpty = true
		}
	}
	return name, omitEmpty, false
}

func isFieldRequired(field reflect.StructField, omitEmpty bool) bool {
	if omitEmpty {
		return false
	}
	return field.Type.Kind() != reflect.Pointer
}

func applyFieldMetadata(node *schemaNode, field reflect.StructField) error {
	baseType := field.Type
	for baseType.Kind() == reflect.Pointer {
		baseType = baseType.Elem()
	}

	if format := field.Tag.Get("format"); format != "" {
		node.Format = format
	}

	if def := field.Tag.Get("default"); def != "" {
		value, err := parseScalar(baseType, def)
		if err != nil {
			return fmt.Errorf("openapi: parse default for field %s: %w", field.Name, err)
		}
		node.Default = value
	}

	if enum := field.Tag.Get("enum"); enum != "" {
		values, err := parseEnum(baseType, enum)
		if err != nil {
			return fmt.Errorf("openapi: parse enum for field %s: %w", field.Name, err)
		}
		node.Enum = values
	}

	if err := applyNumericConstraints(node, baseType, field); err != nil {
		return err
	}

	return applyStringConstraints(node, baseType, field)
}

func applyNumericConstraints(node *schemaNode, baseType reflect.Type, field reflect.StructField) error {
	if !isNumericKind(baseType.Kind()) {
		return nil
	}

	assign := func(target **float64, raw string) error {
		if raw == "" {
			return nil
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return err
		}
		*target = &value
		return nil
	}

	if err := assign(&node.Minimum, field.Tag.Get("minimum")); err != nil {
		return fmt.Errorf("openapi: parse minimum for field %s: %w", field.Name, err)
	}
	if err := assign(&node.Maximum, field.Tag.Get("maximum")); err != nil {
		return fmt.Errorf("openapi: parse maximum for field %s: %w", field.Name, err)
	}
	if err := assign(&node.ExclusiveMinimum, field.Tag.Get("exclusiveMinimum")); err != nil {
		return fmt.Errorf("openapi: parse exclusiveMinimum for field %s: %w", field.Name, err)
	}
	if err := assign(&node.ExclusiveMaximum, field.Tag.Get("exclusiveMaximum")); err != nil {
		return fmt.Errorf("openapi: parse exclusiveMaximum for field %s: %w", field.Name, err)
	}

	return nil
}

func applyStringConstraints(node *schemaNode, baseType reflect.Type, field reflect.StructField) error {
	if baseType.Kind() != reflect.String {
		return nil
	}

	assign := func(target **int, raw string) error {
		if raw == "" {
			return nil
		}
		value, err := strconv.Atoi(raw)
		if err != nil {
			return err
		}
		*target = &value
		return nil
	}

	if err := assign(&node.MinLength, field.Tag.Get("minLength")); err != nil {
		return fmt.Errorf("openapi: parse minLength for field %s: %w", field.Name, err)
	}
	if err := assign(&node.MaxLength, field.Tag.Get("maxLength")); err != nil {
		return fmt.Errorf("openapi: parse maxLength for field %s: %w", field.Name, err)
	}
	if pattern := field.Tag.Get("pattern"); pattern != "" {
		node.Pattern = pattern
	}

	return nil
}

func parseScalar(t reflect.Type, raw string) (any, error) {
	switch t.Kind() {
	case reflect.Bool:
		return strconv.ParseBool(raw)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		value, err := strconv.ParseInt(raw, 10, t.Bits())
		if err != nil {
			return nil, err
		}
		return value, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		value, err := strconv.ParseUint(raw, 10, t.Bits())
		if err != nil {
			return nil, err
		}
		return value, nil
	case reflect.Float32, reflect.Float64:
		return strconv.ParseFloat(raw, t.Bits())
	default:
		return raw, nil
	}
}

func parseEnum(t reflect.Type, raw string) ([]any, error) {
	parts := strings.Split(raw, ",")
	values := make([]any, 0, len(parts))
	base := t
	for base.Kind() == reflect.Pointer {
		base = base.Elem()
	}
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		value, err := parseScalar(base, part)
		if err != nil {
			return nil, err
		}
		values = append(values, value)
	}
	return values, nil
}

func isNumericKind(kind reflect.Kind) bool {
	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
