package dsl

import (
	"fmt"

	typegraph "github.com/typegraph/typegraph"
	"github.com/typegraph/typegraph/coreschema"
)

// RecordBuilder assembles a structured record declaration. Field order is
// the declaration order and is preserved all the way into JSON Schema
// properties.
type RecordBuilder struct {
	rec   typegraph.Record
	built *typegraph.Record
	err   error
}

// Record starts a record with its qualified declaration name, e.g.
// "app.models.Point".
func Record(qualifiedName string) *RecordBuilder {
	return &RecordBuilder{rec: typegraph.Record{QualifiedName: qualifiedName}}
}

// FieldOpt adjusts one declared field.
type FieldOpt func(*typegraph.Field)

// Alias sets the external name on the read path.
func Alias(name string) FieldOpt {
	return func(f *typegraph.Field) { f.Alias = name }
}

// SerAlias sets a divergent external name on the write path.
func SerAlias(name string) FieldOpt {
	return func(f *typegraph.Field) { f.SerAlias = name }
}

// Optional marks the field not required even without a default.
func Optional() FieldOpt {
	return func(f *typegraph.Field) { f.Optional = true }
}

// OutputOnly marks a field present only when serializing (e.g. computed).
func OutputOnly() FieldOpt {
	return func(f *typegraph.Field) { f.OutputOnly = true }
}

// InputOnly marks a field excluded from serialized output.
func InputOnly() FieldOpt {
	return func(f *typegraph.Field) { f.InputOnly = true }
}

// FieldTitle sets the field title carried into JSON Schema.
func FieldTitle(t string) FieldOpt {
	return func(f *typegraph.Field) { f.Title = t }
}

// FieldDoc sets the field description carried into JSON Schema.
func FieldDoc(d string) FieldOpt {
	return func(f *typegraph.Field) { f.Description = d }
}

// Field declares the next field in order.
func (b *RecordBuilder) Field(name string, schema any, opts ...FieldOpt) *RecordBuilder {
	if b.err != nil {
		return b
	}
	for _, f := range b.rec.Fields {
		if f.Name == name {
			b.err = &typegraph.ConfigError{Code: typegraph.CodeDuplicateField,
				Path: b.rec.QualifiedName + "." + name}
			return b
		}
	}
	f := typegraph.Field{Name: name, Desc: desc(schema)}
	for _, o := range opts {
		o(&f)
	}
	b.rec.Fields = append(b.rec.Fields, f)
	return b
}

// Strict overrides the ambient strictness for this record and its
// descendants.
func (b *RecordBuilder) Strict(v bool) *RecordBuilder {
	b.policy().Strict = &v
	return b
}

// Extra overrides the ambient undeclared-key policy.
func (b *RecordBuilder) Extra(p coreschema.ExtraPolicy) *RecordBuilder {
	b.policy().Extra = &p
	return b
}

func (b *RecordBuilder) policy() *typegraph.RecordPolicy {
	if b.rec.Policy == nil {
		b.rec.Policy = &typegraph.RecordPolicy{}
	}
	return b.rec.Policy
}

// Title sets the record title.
func (b *RecordBuilder) Title(t string) *RecordBuilder {
	b.rec.Title = t
	return b
}

// Doc sets the record description.
func (b *RecordBuilder) Doc(d string) *RecordBuilder {
	b.rec.Description = d
	return b
}

// Build finalizes the declaration. Repeated calls return the same
// *Record, so every use site shares one identity.
func (b *RecordBuilder) Build() (*typegraph.Record, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.built != nil {
		return b.built, nil
	}
	if b.rec.QualifiedName == "" {
		return nil, fmt.Errorf("dsl: record requires a qualified name")
	}
	out := b.rec
	b.built = &out
	return b.built, nil
}

// MustBuild is Build panicking on error, for declaration-site usage.
func (b *RecordBuilder) MustBuild() *typegraph.Record {
	r, err := b.Build()
	if err != nil {
		panic(err)
	}
	return r
}
