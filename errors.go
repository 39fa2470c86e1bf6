package props

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidOption matches every option validation failure via errors.Is.
var ErrInvalidOption = errors.New("props: invalid option")

// TranslateFunc rewrites a message template before rendering. The default is
// the identity function; installations backed by a message catalog can swap
// in their own lookup.
type TranslateFunc func(template string) string

var translateTemplate TranslateFunc = func(template string) string { return template }

// SetTranslateFunc installs fn as the template lookup used when rendering
// option errors. Passing nil restores the identity lookup.
func SetTranslateFunc(fn TranslateFunc) {
	if fn == nil {
		fn = func(template string) string { return template }
	}
	translateTemplate = fn
}

// InvalidOptionError is a deferred-rendering validation failure. It carries a
// message template plus the named params collected so far; params grow as the
// error climbs out of nested containers.
type InvalidOptionError struct {
	template string
	params   map[string]any
	cause    error
}

// NewInvalidOption builds an InvalidOptionError from a template and its
// initial params. Construction never fails, even when params are incomplete.
func NewInvalidOption(template string, params map[string]any) *InvalidOptionError {
	return &InvalidOptionError{
		template: template,
		params:   copyParams(params),
	}
}

// WithParams returns a copy of the error with extra params merged in. Later
// keys overwrite earlier ones; the receiver is left untouched.
func (e *InvalidOptionError) WithParams(extra map[string]any) *InvalidOptionError {
	merged := copyParams(e.params)
	if merged == nil {
		merged = map[string]any{}
	}
	for k, v := range extra {
		merged[k] = v
	}
	return &InvalidOptionError{
		template: e.template,
		params:   merged,
		cause:    e.cause,
	}
}

// WithCause returns a copy of the error carrying err as its wrapped cause.
func (e *InvalidOptionError) WithCause(err error) *InvalidOptionError {
	return &InvalidOptionError{
		template: e.template,
		params:   copyParams(e.params),
		cause:    err,
	}
}

// Template returns the raw, untranslated message template.
func (e *InvalidOptionError) Template() string { return e.template }

// Params returns a copy of the params collected so far.
func (e *InvalidOptionError) Params() map[string]any { return copyParams(e.params) }

// Render resolves the template against the current params. With no params the
// raw template is returned verbatim. A placeholder that references a missing
// param fails with a *MissingParamError.
func (e *InvalidOptionError) Render() (string, error) {
	template := translateTemplate(e.template)
	if len(e.params) == 0 {
		return template, nil
	}
	return renderTemplate(template, e.params)
}

// Error renders the message, falling back to the incomplete-render
// description when a referenced param is still missing.
func (e *InvalidOptionError) Error() string {
	msg, err := e.Render()
	if err != nil {
		return err.Error()
	}
	return msg
}

// Is reports a match against the ErrInvalidOption sentinel.
func (e *InvalidOptionError) Is(target error) bool { return target == ErrInvalidOption }

// Unwrap returns the wrapped cause, if any.
func (e *InvalidOptionError) Unwrap() error { return e.cause }

// MissingParamError reports a template placeholder that had no matching param
// at render time. It signals a pipeline bug, not a bad option value, so it is
// deliberately not an InvalidOptionError.
type MissingParamError struct {
	Template string
	Param    string
}

func (e *MissingParamError) Error() string {
	return fmt.Sprintf("props: missing param %q rendering template %q", e.Param, e.Template)
}

func copyParams(params map[string]any) map[string]any {
	if params == nil {
		return nil
	}
	out := make(map[string]any, len(params))
	for k, v := range params {
		out[k] = v
	}
	return out
}

func renderTemplate(template string, params map[string]any) (string, error) {
	var b strings.Builder
	for i := 0; i < len(template); {
		if template[i] != '{' {
			b.WriteByte(template[i])
			i++
			continue
		}
		end := strings.IndexByte(template[i:], '}')
		if end < 0 {
			b.WriteString(template[i:])
			break
		}
		name := template[i+1 : i+end]
		value, ok := params[name]
		if !ok {
			return "", &MissingParamError{Template: template, Param: name}
		}
		b.WriteString(formatParam(value))
		i += end + 1
	}
	return b.String(), nil
}

func formatParam(value any) string {
	switch v := value.(type) {
	case nil:
		return "<nil>"
	case string:
		return v
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = formatParam(item)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case fmt.Stringer:
		return v.String()
	case error:
		return v.Error()
	}
	return fmt.Sprint(value)
}
