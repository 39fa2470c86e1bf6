package hydrate

import (
	"fmt"
	"reflect"
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/goliatone/go-props/layering"
)

// Context carries identifiers tied to the snapshot being hydrated.
type Context struct {
	Identifier string
	Scope      string
}

// PreHook lets callers mutate or normalise the payload before decoding.
type PreHook func(Context, map[string]any) (map[string]any, error)

// PostHook lets callers adjust or validate the hydrated struct after decoding.
type PostHook[T any] func(Context, *T) error

// CustomDecoder replaces the default mapstructure decoding when provided.
type CustomDecoder[T any] func(Context, map[string]any) (T, error)

// DecoderOption configures a Decoder instance.
type DecoderOption[T any] func(*Decoder[T])

// Decoder converts option snapshots into strongly typed structs.
type Decoder[T any] struct {
	preHooks    []PreHook
	postHooks   []PostHook[T]
	hooks       []mapstructure.DecodeHookFunc
	tagName     string
	errorUnused bool
	weaklyTyped bool
	custom      CustomDecoder[T]
}

// WithPreHook applies hook prior to decoding.
func WithPreHook[T any](hook PreHook) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.preHooks = append(d.preHooks, hook)
	}
}

// WithPostHook applies hook after decoding completes.
func WithPostHook[T any](hook PostHook[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.postHooks = append(d.postHooks, hook)
	}
}

// WithDecodeHook appends a mapstructure decode hook to the pipeline.
func WithDecodeHook[T any](hook mapstructure.DecodeHookFunc) DecoderOption[T] {
	return func(d *Decoder[T]) {
		if hook != nil {
			d.hooks = append(d.hooks, hook)
		}
	}
}

// WithErrorUnused fails decoding when the payload carries keys the target
// struct has no field for.
func WithErrorUnused[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.errorUnused = true
	}
}

// WithWeaklyTypedInput enables mapstructure's weak type coercion, e.g. "8"
// into an int field. Useful for snapshots sourced from environment variables.
func WithWeaklyTypedInput[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.weaklyTyped = true
	}
}

// WithTagName overrides the struct tag consulted for field names. The
// default is "json" so hydration targets share tags with their API types.
func WithTagName[T any](name string) DecoderOption[T] {
	return func(d *Decoder[T]) {
		if name != "" {
			d.tagName = name
		}
	}
}

// WithCustomDecoder replaces the default decoding path.
func WithCustomDecoder[T any](decoder CustomDecoder[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.custom = decoder
	}
}

func NewDecoder[T any](opts ...DecoderOption[T]) *Decoder[T] {
	d := &Decoder[T]{tagName: "json"}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Decode converts payload into the target struct T applying configured hooks.
// The payload is deep copied first, so pre-hooks never mutate the caller's
// snapshot.
func (d *Decoder[T]) Decode(ctx Context, payload map[string]any) (T, error) {
	var zero T

	if payload == nil {
		return zero, fmt.Errorf("hydrate: payload is nil for %q", ctx.Identifier)
	}

	current := layering.Clone(payload)

	for _, hook := range d.preHooks {
		if hook == nil {
			continue
		}
		next, err := hook(ctx, current)
		if err != nil {
			return zero, fmt.Errorf("hydrate: pre-hook for %q failed: %w", ctx.Identifier, err)
		}
		if next != nil {
			current = next
		}
	}

	var result T
	if d.custom != nil {
		decoded, err := d.custom(ctx, current)
		if err != nil {
			return zero, fmt.Errorf("hydrate: custom decoder for %q failed: %w", ctx.Identifier, err)
		}
		result = decoded
	} else if err := decodeInto(d.config(), ctx, current, &result); err != nil {
		return zero, err
	}

	for _, hook := range d.postHooks {
		if hook == nil {
			continue
		}
		if err := hook(ctx, &result); err != nil {
			return zero, fmt.Errorf("hydrate: post-hook for %q failed: %w", ctx.Identifier, err)
		}
	}

	return result, nil
}

func (d *Decoder[T]) config() coreConfig {
	return coreConfig{
		hooks:       d.hooks,
		tagName:     d.tagName,
		errorUnused: d.errorUnused,
		weaklyTyped: d.weaklyTyped,
	}
}

// DecodeInto hydrates payload into target, which must be a non-nil pointer.
// It is the non-generic entry used when the caller owns the destination.
func DecodeInto(ctx Context, payload map[string]any, target any, hooks ...mapstructure.DecodeHookFunc) error {
	if payload == nil {
		return fmt.Errorf("hydrate: payload is nil for %q", ctx.Identifier)
	}
	if target == nil {
		return fmt.Errorf("hydrate: target is nil for %q", ctx.Identifier)
	}
	return decodeInto(coreConfig{hooks: hooks, tagName: "json"}, ctx, payload, target)
}

type coreConfig struct {
	hooks       []mapstructure.DecodeHookFunc
	tagName     string
	errorUnused bool
	weaklyTyped bool
}

func decodeInto(cfg coreConfig, ctx Context, payload map[string]any, target any) error {
	config := &mapstructure.DecoderConfig{
		Result:           target,
		TagName:          cfg.tagName,
		ErrorUnused:      cfg.errorUnused,
		WeaklyTypedInput: cfg.weaklyTyped,
	}
	if len(cfg.hooks) > 0 {
		config.DecodeHook = mapstructure.ComposeDecodeHookFunc(cfg.hooks...)
	}
	decoder, err := mapstructure.NewDecoder(config)
	if err != nil {
		return fmt.Errorf("hydrate: decoder for %q: %w", ctx.Identifier, err)
	}
	if err := decoder.Decode(payload); err != nil {
		return fmt.Errorf("hydrate: decode %q: %w", ctx.Identifier, err)
	}
	return nil
}

// StringToTimeHook converts string payload values into time.Time fields,
// trying each layout in order.
func StringToTimeHook(layouts ...string) mapstructure.DecodeHookFunc {
	timeType := reflect.TypeOf(time.Time{})
	return mapstructure.DecodeHookFuncType(func(from, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String || to != timeType {
			return data, nil
		}
		raw := data.(string)
		for _, layout := range layouts {
			if parsed, err := time.Parse(layout, raw); err == nil {
				return parsed, nil
			}
		}
		return nil, fmt.Errorf("hydrate: cannot parse %q as a timestamp", raw)
	})
}
