package props

import "github.com/goliatone/go-props/pkg/activity"

// WithActivityHooks attaches activity hooks to the container type. Hooks are
// cloned and nil entries dropped to preserve immutability.
func WithActivityHooks(hooks activity.Hooks) TypeOption {
	normalized := cloneActivityHooks(hooks)
	return func(cfg *typeConfig) {
		cfg.activityHooks = normalized
	}
}

// ActivityHooks returns a cloned slice of the activity hooks configured on
// the type. The returned slice can be safely mutated by the caller.
func (t *Type) ActivityHooks() activity.Hooks {
	if t == nil {
		return nil
	}
	return cloneActivityHooks(t.cfg.activityHooks)
}

// ActivityHooks returns the hooks configured on the container's type.
func (c *Container) ActivityHooks() activity.Hooks {
	if c == nil {
		return nil
	}
	return c.ctype.ActivityHooks()
}

func cloneActivityHooks(hooks activity.Hooks) activity.Hooks {
	if len(hooks) == 0 {
		return nil
	}
	normalized := make([]activity.ActivityHook, 0, len(hooks))
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		normalized = append(normalized, hook)
	}
	if len(normalized) == 0 {
		return nil
	}
	return activity.Hooks(normalized)
}
