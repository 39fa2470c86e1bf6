package props

// Registry is the resolved name to definition mapping owned by a container
// type. Iteration order is declaration order; a child definition overriding
// a parent's name keeps the position the name was first declared at.
type Registry struct {
	names []string
	defs  map[string]*Definition
}

func newRegistry(parent *Registry, own []*Definition) *Registry {
	r := &Registry{defs: map[string]*Definition{}}
	if parent != nil {
		r.names = make([]string, len(parent.names))
		copy(r.names, parent.names)
		for name, def := range parent.defs {
			r.defs[name] = def
		}
	}
	for _, def := range own {
		if _, exists := r.defs[def.name]; !exists {
			r.names = append(r.names, def.name)
		}
		r.defs[def.name] = def
	}
	return r
}

// Get returns the definition registered under name.
func (r *Registry) Get(name string) (*Definition, bool) {
	def, ok := r.defs[name]
	return def, ok
}

// Names returns the option names in declaration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Definitions returns the definitions in declaration order.
func (r *Registry) Definitions() []*Definition {
	out := make([]*Definition, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, r.defs[name])
	}
	return out
}

// Len returns the number of declared options.
func (r *Registry) Len() int { return len(r.names) }
