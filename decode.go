package props

import (
	"errors"

	"github.com/goliatone/go-props/internal/hydrate"
)

// DecodeAs hydrates the container's exported values into a fresh T. String
// timestamps are parsed with the same layouts the Timestamp definition
// accepts; field names resolve through json struct tags.
func DecodeAs[T any](c *Container) (T, error) {
	var zero T
	if c == nil {
		return zero, errors.New("props: container is required")
	}
	decoder := hydrate.NewDecoder[T](
		hydrate.WithDecodeHook[T](hydrate.StringToTimeHook(timestampLayouts...)),
	)
	return decoder.Decode(decodeContext(c), c.Export())
}

// Decode hydrates the container's exported values into target, which must be
// a non-nil struct pointer.
func (c *Container) Decode(target any) error {
	if c == nil {
		return errors.New("props: container is required")
	}
	return hydrate.DecodeInto(decodeContext(c), c.Export(), target, hydrate.StringToTimeHook(timestampLayouts...))
}

func decodeContext(c *Container) hydrate.Context {
	return hydrate.Context{
		Identifier: c.ctype.identifier,
		Scope:      c.scope.Name,
	}
}
