package props

import (
	"fmt"
	"reflect"
	"strings"
)

// Cleaner normalizes a raw option value before validation runs.
type Cleaner interface {
	Clean(value any) (any, error)
}

// CleanerFunc adapts a plain function to the Cleaner interface.
type CleanerFunc func(value any) (any, error)

func (f CleanerFunc) Clean(value any) (any, error) { return f(value) }

// Validator accepts or rejects a cleaned option value.
type Validator interface {
	Validate(value any) error
}

// ValidatorFunc adapts a plain function to the Validator interface.
type ValidatorFunc func(value any) error

func (f ValidatorFunc) Validate(value any) error { return f(value) }

// TypeRef names a set of Go types an option value may have.
type TypeRef interface {
	Matches(value any) bool
	TypeName() string
}

type goTypeRef struct {
	t reflect.Type
}

// GoType builds a TypeRef matching values assignable to t.
func GoType(t reflect.Type) TypeRef { return goTypeRef{t: t} }

// TypeFor builds a TypeRef for the static type T.
func TypeFor[T any]() TypeRef { return goTypeRef{t: reflect.TypeFor[T]()} }

func (r goTypeRef) Matches(value any) bool {
	if value == nil || r.t == nil {
		return false
	}
	vt := reflect.TypeOf(value)
	return vt == r.t || vt.AssignableTo(r.t)
}

func (r goTypeRef) TypeName() string {
	if r.t == nil {
		return "nil"
	}
	return r.t.String()
}

type unionTypeRef struct {
	refs []TypeRef
}

// OneOf builds a TypeRef matching any of the given refs.
func OneOf(refs ...TypeRef) TypeRef {
	out := make([]TypeRef, len(refs))
	copy(out, refs)
	return unionTypeRef{refs: out}
}

func (r unionTypeRef) Matches(value any) bool {
	for _, ref := range r.refs {
		if ref.Matches(value) {
			return true
		}
	}
	return false
}

func (r unionTypeRef) TypeName() string {
	names := make([]string, len(r.refs))
	for i, ref := range r.refs {
		names[i] = ref.TypeName()
	}
	return "(" + strings.Join(names, ", ") + ")"
}

func typeNameOf(value any) string {
	if value == nil {
		return "nil"
	}
	return reflect.TypeOf(value).String()
}

const msgExpectedType = "{prepend}Expected type {expected_type} for option `{key}`, provided type is {value_type}.{append}"

// TypeValidator rejects values whose type does not match Expected. Prepend
// and Append extend the failure message on either side.
type TypeValidator struct {
	Expected TypeRef
	Prepend  string
	Append   string
}

// NewTypeValidator builds a TypeValidator for the expected type.
func NewTypeValidator(expected TypeRef) *TypeValidator {
	return &TypeValidator{Expected: expected}
}

// Validate accepts nil values, so options with a nil default stay valid when
// never provided.
func (v *TypeValidator) Validate(value any) error {
	if value == nil {
		return nil
	}
	if v.Expected != nil && v.Expected.Matches(value) {
		return nil
	}
	expected := "nil"
	if v.Expected != nil {
		expected = v.Expected.TypeName()
	}
	var prepend, appended string
	if v.Prepend != "" {
		prepend = v.Prepend + " "
	}
	if v.Append != "" {
		appended = " " + v.Append
	}
	return NewInvalidOption(msgExpectedType, map[string]any{
		"expected_type": expected,
		"value_type":    typeNameOf(value),
		"prepend":       prepend,
		"append":        appended,
	})
}

func (v *TypeValidator) String() string {
	var b strings.Builder
	b.WriteString("<TypeValidator expected_type=")
	if v.Expected != nil {
		b.WriteString(v.Expected.TypeName())
	} else {
		b.WriteString("nil")
	}
	if v.Prepend != "" {
		b.WriteString(" prepend=")
		b.WriteString(v.Prepend)
	}
	if v.Append != "" {
		b.WriteString(" append=")
		b.WriteString(v.Append)
	}
	b.WriteString(">")
	return b.String()
}

const msgMinValue = "Value should be greater than or equal to {min_value}."

// MinValueValidator rejects numeric values below Min.
type MinValueValidator struct {
	Min any
}

// NewMinValueValidator builds a MinValueValidator with the inclusive lower bound.
func NewMinValueValidator(min any) *MinValueValidator {
	return &MinValueValidator{Min: min}
}

func (v *MinValueValidator) Validate(value any) error {
	got, okValue := asFloat(value)
	want, okMin := asFloat(v.Min)
	if okValue && okMin && got >= want {
		return nil
	}
	return NewInvalidOption(msgMinValue, map[string]any{"min_value": v.Min})
}

func (v *MinValueValidator) String() string {
	return fmt.Sprintf("<MinValueValidator min_value=%v>", v.Min)
}

const msgMaxValue = "Value should be less than or equal to {max_value}."

// MaxValueValidator rejects numeric values above Max.
type MaxValueValidator struct {
	Max any
}

// NewMaxValueValidator builds a MaxValueValidator with the inclusive upper bound.
func NewMaxValueValidator(max any) *MaxValueValidator {
	return &MaxValueValidator{Max: max}
}

func (v *MaxValueValidator) Validate(value any) error {
	got, okValue := asFloat(value)
	want, okMax := asFloat(v.Max)
	if okValue && okMax && got <= want {
		return nil
	}
	return NewInvalidOption(msgMaxValue, map[string]any{"max_value": v.Max})
}

func (v *MaxValueValidator) String() string {
	return fmt.Sprintf("<MaxValueValidator max_value=%v>", v.Max)
}

const msgChoices = "Value should be one of {choices}."

// ChoicesValidator rejects values outside a fixed set of allowed choices.
type ChoicesValidator struct {
	choices []any
}

// NewChoicesValidator builds a ChoicesValidator over the allowed values.
func NewChoicesValidator(choices ...any) *ChoicesValidator {
	out := make([]any, len(choices))
	copy(out, choices)
	return &ChoicesValidator{choices: out}
}

// Choices returns a copy of the allowed values.
func (v *ChoicesValidator) Choices() []any {
	out := make([]any, len(v.choices))
	copy(out, v.choices)
	return out
}

func (v *ChoicesValidator) Validate(value any) error {
	for _, choice := range v.choices {
		if reflect.DeepEqual(choice, value) {
			return nil
		}
	}
	return NewInvalidOption(msgChoices, map[string]any{"choices": v.Choices()})
}

func (v *ChoicesValidator) String() string {
	parts := make([]string, len(v.choices))
	for i, choice := range v.choices {
		parts[i] = formatParam(choice)
	}
	return "<ChoicesValidator choices=(" + strings.Join(parts, ", ") + ")>"
}

func asFloat(value any) (float64, bool) {
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
