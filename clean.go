package props

import (
	"errors"
	"time"
)

var timestampLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05 Z07:00",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05 Z0700",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05 Z07:00",
	"2006-01-02 15:04:05Z0700",
	"2006-01-02 15:04:05 Z0700",
}

// ParseTimestamp converts ISO-8601 strings into time.Time values. The date
// and time may be separated by a space or a T, the zone offset may be Z,
// +HH:MM or +HHMM, optionally preceded by a space. Nil and time.Time values
// pass through, as does any string no layout accepts, leaving the rejection
// to the type validator that follows in the pipeline.
func ParseTimestamp(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return v, nil
	case string:
		for _, layout := range timestampLayouts {
			if ts, err := time.Parse(layout, v); err == nil {
				return ts, nil
			}
		}
	}
	return value, nil
}

const msgNotSubclass = "Provided OptionContainer instance {value} is not a subclass {container_cls}"

// ContainerCleaner coerces raw values into instances of a fixed container
// type. It tags the definition with the nested type so schema generation can
// recurse into it.
type ContainerCleaner struct {
	ctype *Type
}

// CleanContainer builds the coercion cleaner used by nested options.
func CleanContainer(ctype *Type) *ContainerCleaner {
	return &ContainerCleaner{ctype: ctype}
}

// ContainerType returns the container type values are coerced into.
func (c *ContainerCleaner) ContainerType() *Type { return c.ctype }

// Clean passes through instances of exactly the declared type, rejects
// instances of any other container type, and constructs a fresh instance
// from nil or a map. Both failure modes leave as a {key}:{inner} error with
// the inner message pre-rendered and the key filled in later by the owning
// definition. Anything else is returned unchanged for the type validator to
// reject.
func (c *ContainerCleaner) Clean(value any) (any, error) {
	switch v := value.(type) {
	case *Container:
		if v.ctype == c.ctype {
			return v, nil
		}
		return nil, wrapInnerError(NewInvalidOption(msgNotSubclass, map[string]any{
			"value":         v,
			"container_cls": c.ctype,
		}))
	case nil:
		return c.construct(nil)
	case map[string]any:
		return c.construct(v)
	}
	return value, nil
}

func (c *ContainerCleaner) construct(values map[string]any) (any, error) {
	child, err := newNested(c.ctype, values)
	if err == nil {
		return child, nil
	}
	var inv *InvalidOptionError
	if errors.As(err, &inv) {
		return nil, wrapInnerError(inv)
	}
	return nil, err
}

func wrapInnerError(inv *InvalidOptionError) *InvalidOptionError {
	return NewInvalidOption(msgPathWrap, map[string]any{
		"inner": inv.Error(),
	}).WithCause(inv)
}
