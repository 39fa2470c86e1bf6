package props

import (
	"errors"
	"fmt"
	"time"
)

// Undefined marks an option value that was never provided, distinguishing
// "absent" from an explicit nil.
var Undefined = undefinedValue{}

type undefinedValue struct{}

func (undefinedValue) String() string { return "<undefined>" }

// IsUndefined reports whether value is the Undefined sentinel.
func IsUndefined(value any) bool {
	_, ok := value.(undefinedValue)
	return ok
}

// Definition describes one named option: its default value, the cleaners
// that normalize raw input and the validators that guard it. Definitions are
// immutable once built and shared by every container of their type.
type Definition struct {
	name         string
	def          any
	cleaners     []Cleaner
	validators   []Validator
	nilToDefault bool
}

type definitionConfig struct {
	cleaners     []Cleaner
	validators   []Validator
	nilToDefault bool

	choices      []any
	hasChoices   bool
	expectedType TypeRef
	minValue     any
	hasMin       bool
	maxValue     any
	hasMax       bool
}

// DefinitionOption configures a Definition under construction.
type DefinitionOption func(*definitionConfig)

// WithClean appends cleaners run, in order, before any validator.
func WithClean(cleaners ...Cleaner) DefinitionOption {
	return func(cfg *definitionConfig) {
		cfg.cleaners = append(cfg.cleaners, cleaners...)
	}
}

// WithValidators appends validators run, in order, after all cleaners.
func WithValidators(validators ...Validator) DefinitionOption {
	return func(cfg *definitionConfig) {
		cfg.validators = append(cfg.validators, validators...)
	}
}

// WithNilToDefault makes an explicit nil behave like an absent value.
func WithNilToDefault() DefinitionOption {
	return func(cfg *definitionConfig) {
		cfg.nilToDefault = true
	}
}

// WithChoices installs a ChoicesValidator ahead of explicit validators.
func WithChoices(choices ...any) DefinitionOption {
	return func(cfg *definitionConfig) {
		cfg.choices = choices
		cfg.hasChoices = true
	}
}

// WithExpectedType installs a TypeValidator ahead of explicit validators.
func WithExpectedType(expected TypeRef) DefinitionOption {
	return func(cfg *definitionConfig) {
		cfg.expectedType = expected
	}
}

// WithMinValue installs a MinValueValidator ahead of explicit validators.
func WithMinValue(min any) DefinitionOption {
	return func(cfg *definitionConfig) {
		cfg.minValue = min
		cfg.hasMin = true
	}
}

// WithMaxValue installs a MaxValueValidator ahead of explicit validators.
func WithMaxValue(max any) DefinitionOption {
	return func(cfg *definitionConfig) {
		cfg.maxValue = max
		cfg.hasMax = true
	}
}

// NewDefinition builds a Definition. Convenience validators from WithChoices,
// WithExpectedType, WithMinValue and WithMaxValue are inserted in that fixed
// order ahead of explicitly supplied validators, regardless of option order.
// A malformed definition (empty name, nil cleaner or validator) panics, since
// it is a broken schema declaration rather than a runtime condition.
func NewDefinition(name string, def any, opts ...DefinitionOption) *Definition {
	return buildDefinition(name, def, opts, nil, nil)
}

func buildDefinition(name string, def any, opts []DefinitionOption, lead Validator, tail []Cleaner) *Definition {
	if name == "" {
		panic("props: definition name is required")
	}
	cfg := &definitionConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	cleaners := make([]Cleaner, 0, len(cfg.cleaners)+len(tail))
	cleaners = append(cleaners, cfg.cleaners...)
	cleaners = append(cleaners, tail...)
	for _, cleaner := range cleaners {
		if cleaner == nil {
			panic(fmt.Sprintf("props: definition %q has a nil cleaner", name))
		}
	}

	validators := make([]Validator, 0, len(cfg.validators)+5)
	if lead != nil {
		validators = append(validators, lead)
	}
	if cfg.hasChoices {
		validators = append(validators, NewChoicesValidator(cfg.choices...))
	}
	if cfg.expectedType != nil {
		validators = append(validators, NewTypeValidator(cfg.expectedType))
	}
	if cfg.hasMin {
		validators = append(validators, NewMinValueValidator(cfg.minValue))
	}
	if cfg.hasMax {
		validators = append(validators, NewMaxValueValidator(cfg.maxValue))
	}
	validators = append(validators, cfg.validators...)
	for _, validator := range validators {
		if validator == nil {
			panic(fmt.Sprintf("props: definition %q has a nil validator", name))
		}
	}

	return &Definition{
		name:         name,
		def:          def,
		cleaners:     cleaners,
		validators:   validators,
		nilToDefault: cfg.nilToDefault,
	}
}

// Name returns the option name.
func (d *Definition) Name() string { return d.name }

// Default returns the value used when the option is absent.
func (d *Definition) Default() any { return d.def }

// NilToDefault reports whether an explicit nil is replaced by the default.
func (d *Definition) NilToDefault() bool { return d.nilToDefault }

// Cleaners returns a copy of the cleaner pipeline.
func (d *Definition) Cleaners() []Cleaner {
	out := make([]Cleaner, len(d.cleaners))
	copy(out, d.cleaners)
	return out
}

// Validators returns a copy of the validator pipeline.
func (d *Definition) Validators() []Validator {
	out := make([]Validator, len(d.validators))
	copy(out, d.validators)
	return out
}

func (d *Definition) String() string {
	return fmt.Sprintf("<Definition name=%s default=%v>", d.name, d.def)
}

// Validate runs the pipeline: the Undefined sentinel, and nil when
// NilToDefault is set, are replaced by the default; cleaners transform the
// value in order, each feeding the next; validators run in order and the
// first failure aborts. Any InvalidOptionError leaving this method gains a
// key param holding the definition name.
func (d *Definition) Validate(raw any) (any, error) {
	value := raw
	if IsUndefined(value) || (value == nil && d.nilToDefault) {
		value = d.def
	}
	for _, cleaner := range d.cleaners {
		next, err := cleaner.Clean(value)
		if err != nil {
			return nil, d.annotate(err)
		}
		value = next
	}
	for _, validator := range d.validators {
		if err := validator.Validate(value); err != nil {
			return nil, d.annotate(err)
		}
	}
	return value, nil
}

func (d *Definition) annotate(err error) error {
	var inv *InvalidOptionError
	if errors.As(err, &inv) {
		return inv.WithParams(map[string]any{"key": d.name})
	}
	return err
}

// String builds a definition whose values must be strings.
func String(name string, def any, opts ...DefinitionOption) *Definition {
	return buildDefinition(name, def, opts, NewTypeValidator(TypeFor[string]()), nil)
}

// Integer builds a definition accepting int and int64 values.
func Integer(name string, def any, opts ...DefinitionOption) *Definition {
	return buildDefinition(name, def, opts, NewTypeValidator(OneOf(TypeFor[int](), TypeFor[int64]())), nil)
}

// Boolean builds a definition whose values must be bools.
func Boolean(name string, def any, opts ...DefinitionOption) *Definition {
	return buildDefinition(name, def, opts, NewTypeValidator(TypeFor[bool]()), nil)
}

// Float builds a definition whose values must be float64s.
func Float(name string, def any, opts ...DefinitionOption) *Definition {
	return buildDefinition(name, def, opts, NewTypeValidator(TypeFor[float64]()), nil)
}

// Timestamp builds a definition accepting time.Time values and ISO-8601
// strings. The parsing cleaner runs after any user supplied cleaners.
func Timestamp(name string, def any, opts ...DefinitionOption) *Definition {
	expected := NewTypeValidator(TypeFor[time.Time]())
	expected.Append = "Please use ISO_8601."
	return buildDefinition(name, def, opts, expected, []Cleaner{CleanerFunc(ParseTimestamp)})
}

// Nested builds a definition holding an instance of another container type.
// Raw maps and nil are coerced into fresh child instances by a cleaner that
// runs after any user supplied cleaners.
func Nested(name string, ctype *Type, opts ...DefinitionOption) *Definition {
	if ctype == nil {
		panic(fmt.Sprintf("props: nested definition %q requires a container type", name))
	}
	return buildDefinition(name, nil, opts, NewTypeValidator(ctype), []Cleaner{CleanContainer(ctype)})
}
