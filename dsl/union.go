package dsl

import (
	typegraph "github.com/typegraph/typegraph"
)

// UnionBuilder assembles a union of alternatives, optionally discriminated.
type UnionBuilder struct {
	u typegraph.Union
}

// Union starts a union over the given alternatives, in declaration order.
func Union(choices ...any) *UnionBuilder {
	b := &UnionBuilder{}
	for _, c := range choices {
		b.u.Choices = append(b.u.Choices, desc(c))
	}
	return b
}

// Discriminator names the literal-valued field that selects the
// alternative. Every alternative must expose it under one consistent
// external name; violations surface as configuration errors at generation
// time.
func (b *UnionBuilder) Discriminator(field string) *UnionBuilder {
	b.u.Discriminator = field
	return b
}

// Build finalizes the union.
func (b *UnionBuilder) Build() (typegraph.Union, error) {
	return b.u, nil
}

// MustBuild is Build for declaration-site usage.
func (b *UnionBuilder) MustBuild() typegraph.Union {
	return b.u
}

// Template declares a parametrizable descriptor. Instantiate it with
// concrete arguments before generating.
func Template(qualifiedName string, params []string, body any) *typegraph.Template {
	return &typegraph.Template{QualifiedName: qualifiedName, Params: params, Body: desc(body)}
}

// Instantiate binds concrete arguments to a template.
func Instantiate(t *typegraph.Template, args ...any) (*typegraph.Template, error) {
	ds := make([]typegraph.Descriptor, len(args))
	for i, a := range args {
		ds[i] = desc(a)
	}
	return t.Instantiate(ds...)
}
