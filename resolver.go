package typegraph

// Scope maps symbolic names to concrete descriptors, mirroring one lexical
// scope (innermost class body, defining scope, caller scope, ...).
type Scope map[string]Descriptor

// Resolver searches an ordered sequence of lexical scopes to resolve a
// forward reference. It is constructed per compilation entry point and is
// immutable during that pass; the engine only performs read lookups.
type Resolver struct {
	scopes []Scope
}

// NewResolver builds a resolver over the given scopes, innermost first.
func NewResolver(scopes ...Scope) *Resolver {
	return &Resolver{scopes: scopes}
}

// Lookup resolves name against the scopes in order. A miss is not an error
// at this layer; the caller decides whether the reference is required yet.
func (r *Resolver) Lookup(name string) (Descriptor, bool) {
	if r == nil {
		return nil, false
	}
	for _, s := range r.scopes {
		if d, ok := s[name]; ok {
			return d, true
		}
	}
	return nil, false
}

// With returns a new resolver whose scope list has extra prepended, leaving
// the receiver untouched.
func (r *Resolver) With(extra ...Scope) *Resolver {
	if len(extra) == 0 {
		return r
	}
	var base []Scope
	if r != nil {
		base = r.scopes
	}
	scopes := make([]Scope, 0, len(extra)+len(base))
	scopes = append(scopes, extra...)
	scopes = append(scopes, base...)
	return &Resolver{scopes: scopes}
}
