package props

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDiamondInheritance rejects container types declared with more than one
// parent.
var ErrDiamondInheritance = errors.New("props: option containers do not support diamond inheritance")

// ErrSetOnNested rejects direct writes to containers reached as nested
// values. Deep values are written through the root container's path set.
var ErrSetOnNested = errors.New("props: calling set on nested option containers is not allowed, please use set method of root container")

const (
	msgInvalidKey = "Invalid key {key} for {identifier}"
	msgNotNested  = "Key {key} for {identifier} is not a nested container"
	msgPathWrap   = "{key}:{inner}"
)

// Type describes a container class: its name, optional identifier override,
// single parent and the option registry resolved against that parent.
type Type struct {
	name       string
	identifier string
	override   string
	parent     *Type
	defs       *Registry
	cfg        *typeConfig
}

// Extends declares the parent type. Declaring more than one parent fails
// with ErrDiamondInheritance.
func Extends(parents ...*Type) TypeOption {
	return func(cfg *typeConfig) {
		cfg.parents = append(cfg.parents, parents...)
	}
}

// WithProps declares the type's own option definitions, in order.
func WithProps(defs ...*Definition) TypeOption {
	return func(cfg *typeConfig) {
		cfg.props = append(cfg.props, defs...)
	}
}

// WithIdentifier overrides the identifier used in validation messages.
// Subtypes inherit the override unless they declare their own.
func WithIdentifier(identifier string) TypeOption {
	return func(cfg *typeConfig) {
		cfg.identifier = identifier
	}
}

// Define declares a container type. The option registry starts from the
// parent's resolved registry: same-name definitions replace the parent's
// entry in place, new names append after the inherited ones.
func Define(name string, opts ...TypeOption) (*Type, error) {
	if name == "" {
		return nil, errors.New("props: container type name is required")
	}
	cfg := applyTypeOptions(opts)
	if len(cfg.parents) > 1 {
		return nil, ErrDiamondInheritance
	}

	var parent *Type
	var parentDefs *Registry
	if len(cfg.parents) == 1 {
		parent = cfg.parents[0]
		if parent == nil {
			return nil, fmt.Errorf("props: %s extends a nil container type", name)
		}
		parentDefs = parent.defs
		cfg.inherit(parent.cfg)
	}

	for i, def := range cfg.props {
		if def == nil {
			return nil, fmt.Errorf("props: %s.props[%d] is nil", name, i)
		}
	}

	override := cfg.identifier
	if override == "" && parent != nil {
		override = parent.override
	}
	identifier := override
	if identifier == "" {
		identifier = name
	}

	return &Type{
		name:       name,
		identifier: identifier,
		override:   override,
		parent:     parent,
		defs:       newRegistry(parentDefs, cfg.props),
		cfg:        cfg,
	}, nil
}

// MustDefine is Define, panicking on a broken declaration.
func MustDefine(name string, opts ...TypeOption) *Type {
	t, err := Define(name, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the declared type name.
func (t *Type) Name() string { return t.name }

// Identifier returns the identifier override, inherited or declared, falling
// back to the type name.
func (t *Type) Identifier() string { return t.identifier }

// Parent returns the single parent type, or nil for a base type.
func (t *Type) Parent() *Type { return t.parent }

// Defs returns the resolved option registry.
func (t *Type) Defs() *Registry { return t.defs }

// String renders the class description: the type name followed by one
// definition description per line.
func (t *Type) String() string {
	var b strings.Builder
	b.WriteString(t.name)
	for _, def := range t.defs.Definitions() {
		b.WriteString("\n\t")
		b.WriteString(def.String())
	}
	return b.String()
}

// Matches reports whether value is a container of this type or a subtype,
// making *Type usable as a TypeRef.
func (t *Type) Matches(value any) bool {
	c, ok := value.(*Container)
	if !ok {
		return false
	}
	return c.ctype.isSubtypeOf(t)
}

// TypeName returns the type name used in validation messages.
func (t *Type) TypeName() string { return t.name }

func (t *Type) isSubtypeOf(ancestor *Type) bool {
	for cur := t; cur != nil; cur = cur.parent {
		if cur == ancestor {
			return true
		}
	}
	return false
}

// New constructs a root container. Every declared option is seeded from
// values, or the Undefined sentinel when absent, through its definition's
// validate pipeline in declaration order; the first failure aborts
// construction. Keys in values without a matching definition are ignored.
func (t *Type) New(values map[string]any) (*Container, error) {
	return t.build(values, true)
}

// MustNew is New, panicking on a validation failure.
func (t *Type) MustNew(values map[string]any) *Container {
	c, err := t.New(values)
	if err != nil {
		panic(err)
	}
	return c
}

func newNested(t *Type, values map[string]any) (*Container, error) {
	return t.build(values, false)
}

func (t *Type) build(values map[string]any, root bool) (*Container, error) {
	c := &Container{
		ctype:  t,
		values: make(map[string]any, t.defs.Len()),
		root:   root,
	}
	for _, name := range t.defs.names {
		raw := any(Undefined)
		if values != nil {
			if provided, ok := values[name]; ok {
				raw = provided
			}
		}
		cleaned, err := t.defs.defs[name].Validate(raw)
		if err != nil {
			return nil, err
		}
		c.values[name] = cleaned
	}
	return c, nil
}

// Container holds the current values of one container type instance. Only
// root containers, built directly from their Type, accept writes; a
// container discovered as another container's value is read-only and is
// mutated through the root's path based Set.
type Container struct {
	ctype  *Type
	values map[string]any
	root   bool
	scope  Scope
	layers []layerSnapshot
}

// Type returns the container's type descriptor.
func (c *Container) Type() *Type { return c.ctype }

// Identifier returns the type identifier used in validation messages.
func (c *Container) Identifier() string { return c.ctype.identifier }

// Root reports whether the container accepts direct writes.
func (c *Container) Root() bool { return c.root }

// Get reads an option by name or dotted path. It mirrors Set's error
// semantics: an unknown name fails with an invalid-key error, traversing a
// non-container value fails with a not-a-nested-container error, and errors
// from nested containers are wrapped with the path segment they came
// through.
func (c *Container) Get(key string) (any, error) {
	return c.getAtPath(strings.Split(key, "."))
}

// GetPath is the structural form of Get.
func (c *Container) GetPath(path []string) (any, error) {
	if len(path) == 0 {
		return nil, errors.New("props: empty option path")
	}
	return c.getAtPath(path)
}

// MustGet is Get, panicking on error.
func (c *Container) MustGet(key string) any {
	value, err := c.Get(key)
	if err != nil {
		panic(err)
	}
	return value
}

func (c *Container) getAtPath(path []string) (any, error) {
	name := path[0]
	if _, ok := c.ctype.defs.Get(name); !ok {
		return nil, invalidKeyError(name, c.ctype.identifier)
	}
	value := c.values[name]
	if len(path) == 1 {
		if child, ok := value.(*Container); ok {
			return child.nestedHandle(), nil
		}
		return value, nil
	}
	child, ok := value.(*Container)
	if !ok {
		return nil, notNestedError(name, c.ctype.identifier)
	}
	out, err := child.getAtPath(path[1:])
	if err != nil {
		return nil, wrapPathError(name, err)
	}
	return out, nil
}

// Set validates and stores an option by name or dotted path. A plain name
// resolves against this container: unknown names fail with an invalid-key
// error and validation failures propagate unwrapped. For a path, the first
// segment must name an option currently holding a nested container; errors
// raised deeper are wrapped once per level as {key}:{inner}. A failed write
// leaves previously applied writes intact.
func (c *Container) Set(key string, value any) error {
	if !c.root {
		return ErrSetOnNested
	}
	return c.setAtPath(strings.Split(key, "."), value)
}

// SetPath is the structural form of Set.
func (c *Container) SetPath(path []string, value any) error {
	if !c.root {
		return ErrSetOnNested
	}
	if len(path) == 0 {
		return errors.New("props: empty option path")
	}
	return c.setAtPath(path, value)
}

func (c *Container) setAtPath(path []string, value any) error {
	name := path[0]
	if len(path) == 1 {
		return c.setLocal(name, value)
	}
	if _, ok := c.ctype.defs.Get(name); !ok {
		return invalidKeyError(name, c.ctype.identifier)
	}
	child, ok := c.values[name].(*Container)
	if !ok {
		return notNestedError(name, c.ctype.identifier)
	}
	if err := child.setAtPath(path[1:], value); err != nil {
		return wrapPathError(name, err)
	}
	return nil
}

func (c *Container) setLocal(name string, value any) error {
	def, ok := c.ctype.defs.Get(name)
	if !ok {
		return invalidKeyError(name, c.ctype.identifier)
	}
	cleaned, err := def.Validate(value)
	if err != nil {
		return err
	}
	c.values[name] = cleaned
	return nil
}

// nestedHandle returns the handle handed out when this container is
// discovered as another container's value. It shares the underlying values
// but never accepts direct writes.
func (c *Container) nestedHandle() *Container {
	if !c.root {
		return c
	}
	return &Container{ctype: c.ctype, values: c.values, root: false}
}

// Values returns a shallow copy of the current values. Nested containers
// are returned as read-only handles.
func (c *Container) Values() map[string]any {
	out := make(map[string]any, len(c.values))
	for name, value := range c.values {
		if child, ok := value.(*Container); ok {
			out[name] = child.nestedHandle()
			continue
		}
		out[name] = value
	}
	return out
}

// Export returns the current values as plain nested maps, recursing into
// nested containers. The result feeds evaluation, schema generation and
// persistence snapshots.
func (c *Container) Export() map[string]any {
	out := make(map[string]any, len(c.values))
	for name, value := range c.values {
		if child, ok := value.(*Container); ok {
			out[name] = child.Export()
			continue
		}
		out[name] = value
	}
	return out
}

// String renders the instance description: the type name, the identifier
// override when one is declared, then one name: value line per option in
// declaration order.
func (c *Container) String() string {
	var b strings.Builder
	b.WriteString("<")
	b.WriteString(c.ctype.name)
	if c.ctype.override != "" && c.ctype.override != c.ctype.name {
		b.WriteString(" ")
		b.WriteString(c.ctype.override)
	}
	b.WriteString(">:")
	for _, name := range c.ctype.defs.names {
		b.WriteString("\n\t")
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(formatParam(c.values[name]))
	}
	return b.String()
}

// Typedef returns the class description of the container's type.
func (c *Container) Typedef() string { return c.ctype.String() }

func invalidKeyError(key, identifier string) *InvalidOptionError {
	return NewInvalidOption(msgInvalidKey, map[string]any{
		"key":        key,
		"identifier": identifier,
	})
}

func notNestedError(key, identifier string) *InvalidOptionError {
	return NewInvalidOption(msgNotNested, map[string]any{
		"key":        key,
		"identifier": identifier,
	})
}

func wrapPathError(key string, err error) error {
	var inv *InvalidOptionError
	if !errors.As(err, &inv) {
		return err
	}
	return NewInvalidOption(msgPathWrap, map[string]any{
		"key":   key,
		"inner": inv.Error(),
	}).WithCause(inv)
}
