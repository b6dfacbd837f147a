package dsl

import (
	"fmt"

	typegraph "github.com/typegraph/typegraph"
)

// desc coerces builder or descriptor arguments. Every dsl entry point that
// takes a schema argument accepts either a typegraph.Descriptor or a dsl
// builder.
func desc(v any) typegraph.Descriptor {
	switch t := v.(type) {
	case typegraph.Descriptor:
		return t
	case PrimitiveBuilder:
		return t.Desc()
	case ListBuilder:
		return t.Desc()
	case *RecordBuilder:
		return t.MustBuild()
	case *UnionBuilder:
		return t.MustBuild()
	default:
		panic(fmt.Sprintf("dsl: %T is not a descriptor or builder", v))
	}
}

// ListBuilder accumulates list bounds.
type ListBuilder struct {
	l typegraph.List
}

// List describes an ordered homogeneous container of item.
func List(item any) ListBuilder {
	return ListBuilder{l: typegraph.List{Item: desc(item)}}
}

// Min sets the minimum element count.
func (b ListBuilder) Min(n int) ListBuilder {
	b.l.MinItems = &n
	return b
}

// Max sets the maximum element count.
func (b ListBuilder) Max(n int) ListBuilder {
	b.l.MaxItems = &n
	return b
}

// Desc returns the built descriptor.
func (b ListBuilder) Desc() typegraph.Descriptor { return b.l }

// Set describes an unordered homogeneous container with unique members.
func Set(item any) typegraph.Descriptor {
	return typegraph.Set{Item: desc(item)}
}

// MapOf describes a homogeneous mapping.
func MapOf(key, value any) typegraph.Descriptor {
	return typegraph.Map{Key: desc(key), Value: desc(value)}
}

// Tuple describes a fixed-length positional container.
func Tuple(items ...any) typegraph.Descriptor {
	ds := make([]typegraph.Descriptor, len(items))
	for i, it := range items {
		ds[i] = desc(it)
	}
	return typegraph.Tuple{Items: ds}
}

// Nullable additionally accepts null.
func Nullable(inner any) typegraph.Descriptor {
	return typegraph.Nullable{Inner: desc(inner)}
}

// Default wraps inner with a constant default value; fields carrying it
// become optional on the read path.
func Default(inner any, value any) typegraph.Descriptor {
	return typegraph.Default{Inner: desc(inner), Value: value}
}

// DefaultFn wraps inner with a lazily produced default.
func DefaultFn(inner any, fn func() any) typegraph.Descriptor {
	return typegraph.Default{Inner: desc(inner), Fn: fn}
}

// Ref is a symbolic forward reference resolved at generation time.
func Ref(name string) typegraph.Descriptor {
	return typegraph.Ref{Name: name}
}

// RefIn is a forward reference carrying the lexical scopes it was declared
// in; they are searched before the resolver supplied to Generate.
func RefIn(name string, scopes ...typegraph.Scope) typegraph.Descriptor {
	return typegraph.Ref{Name: name, Scopes: scopes}
}

// TypeVar is a template type variable placeholder.
func TypeVar(name string) typegraph.Descriptor {
	return typegraph.TypeVar{Name: name}
}

// WithHook attaches customization hooks to a descriptor, outermost first.
func WithHook(d any, hooks ...typegraph.SchemaHook) typegraph.Descriptor {
	return typegraph.WithHook(desc(d), hooks...)
}
