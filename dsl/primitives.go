package dsl

import (
	typegraph "github.com/typegraph/typegraph"
)

// PrimitiveBuilder accumulates constraints for a leaf descriptor. The zero
// builder is not useful; start from Int, Float, Bool, String, Bytes, or None.
type PrimitiveBuilder struct {
	p typegraph.Primitive
}

// Int starts an integer descriptor.
func Int() PrimitiveBuilder {
	return PrimitiveBuilder{p: typegraph.Primitive{Name: typegraph.PrimInt}}
}

// Float starts a floating point descriptor.
func Float() PrimitiveBuilder {
	return PrimitiveBuilder{p: typegraph.Primitive{Name: typegraph.PrimFloat}}
}

// Bool starts a boolean descriptor.
func Bool() PrimitiveBuilder {
	return PrimitiveBuilder{p: typegraph.Primitive{Name: typegraph.PrimBool}}
}

// String starts a string descriptor.
func String() PrimitiveBuilder {
	return PrimitiveBuilder{p: typegraph.Primitive{Name: typegraph.PrimString}}
}

// Bytes starts a binary descriptor.
func Bytes() PrimitiveBuilder {
	return PrimitiveBuilder{p: typegraph.Primitive{Name: typegraph.PrimBytes}}
}

// None matches only null.
func None() PrimitiveBuilder {
	return PrimitiveBuilder{p: typegraph.Primitive{Name: typegraph.PrimNone}}
}

// Min sets the inclusive numeric minimum.
func (b PrimitiveBuilder) Min(n float64) PrimitiveBuilder {
	b.p.Constraint.Min = &n
	return b
}

// Max sets the inclusive numeric maximum.
func (b PrimitiveBuilder) Max(n float64) PrimitiveBuilder {
	b.p.Constraint.Max = &n
	return b
}

// MinLen sets the minimum length.
func (b PrimitiveBuilder) MinLen(n int) PrimitiveBuilder {
	b.p.Constraint.MinLen = &n
	return b
}

// MaxLen sets the maximum length.
func (b PrimitiveBuilder) MaxLen(n int) PrimitiveBuilder {
	b.p.Constraint.MaxLen = &n
	return b
}

// Pattern sets a regular expression the value must match.
func (b PrimitiveBuilder) Pattern(re string) PrimitiveBuilder {
	b.p.Constraint.Pattern = re
	return b
}

// Format sets a named format hint (e.g. "date-time").
func (b PrimitiveBuilder) Format(f string) PrimitiveBuilder {
	b.p.Constraint.Format = f
	return b
}

// Desc returns the built descriptor.
func (b PrimitiveBuilder) Desc() typegraph.Descriptor { return b.p }

// Any matches every instance.
func Any() typegraph.Descriptor { return typegraph.Any{} }

// Callable matches opaque native callables; it has no JSON Schema form.
func Callable(name string) typegraph.Descriptor { return typegraph.Callable{Name: name} }

// Literal matches exactly v.
func Literal(v any) typegraph.Descriptor { return typegraph.Literal{Value: v} }
