package typegraph

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/typegraph/typegraph/coreschema"
)

// DescriptorKind identifies a Descriptor variant.
type DescriptorKind int

const (
	DescPrimitive DescriptorKind = iota
	DescLiteral
	DescAny
	DescCallable
	DescList
	DescSet
	DescMap
	DescTuple
	DescRecord
	DescUnion
	DescTemplate
	DescTypeVar
	DescRef
	DescNullable
	DescDefault
	DescHooked
)

// Descriptor is an opaque handle to a shape declaration. Descriptors are
// immutable once attached to a declaration and may be shared freely; the
// generation engine never mutates them.
type Descriptor interface {
	DescKind() DescriptorKind
}

// PrimitiveName selects the leaf primitive family.
type PrimitiveName string

const (
	PrimInt    PrimitiveName = "int"
	PrimFloat  PrimitiveName = "float"
	PrimBool   PrimitiveName = "bool"
	PrimString PrimitiveName = "str"
	PrimBytes  PrimitiveName = "bytes"
	PrimNone   PrimitiveName = "none"
)

// Primitive is a leaf descriptor with optional validation constraints, which
// are copied verbatim into the core schema node.
type Primitive struct {
	Name       PrimitiveName
	Constraint coreschema.Constraint
}

func (Primitive) DescKind() DescriptorKind { return DescPrimitive }

// Literal matches exactly one value. Literal fields are what make
// discriminated unions checkable at generation time.
type Literal struct {
	Value any
}

func (Literal) DescKind() DescriptorKind { return DescLiteral }

// Any matches every instance.
type Any struct{}

func (Any) DescKind() DescriptorKind { return DescAny }

// Callable matches opaque native callables. It has no JSON Schema form.
type Callable struct {
	Name string
}

func (Callable) DescKind() DescriptorKind { return DescCallable }

// List is an ordered homogeneous container.
type List struct {
	Item     Descriptor
	MinItems *int
	MaxItems *int
}

func (List) DescKind() DescriptorKind { return DescList }

// Set is an unordered homogeneous container with unique members.
type Set struct {
	Item Descriptor
}

func (Set) DescKind() DescriptorKind { return DescSet }

// Map is a homogeneous mapping.
type Map struct {
	Key   Descriptor
	Value Descriptor
}

func (Map) DescKind() DescriptorKind { return DescMap }

// Tuple is a fixed-length positional container.
type Tuple struct {
	Items []Descriptor
}

func (Tuple) DescKind() DescriptorKind { return DescTuple }

// Field declares one record member. A field is required unless its
// descriptor is (or wraps) a Default, or Optional is set explicitly.
type Field struct {
	Name        string
	Desc        Descriptor
	Alias       string // external name on the read path
	SerAlias    string // external name on the write path when divergent
	Optional    bool
	OutputOnly  bool
	InputOnly   bool
	Title       string
	Description string
}

// RecordPolicy overrides ambient generation policy for one record and its
// descendants. Nil members inherit from the enclosing configuration frame.
type RecordPolicy struct {
	Strict *bool
	Extra  *coreschema.ExtraPolicy
}

// Record is a structured declaration: named ordered fields, an optional
// policy override, and a stable identity used for deduplication and naming.
type Record struct {
	QualifiedName string // dotted, e.g. "app.models.Point"
	Fields        []Field
	Policy        *RecordPolicy
	Title         string
	Description   string

	id      int
	argsSig string // set on clones made during template instantiation
}

func (*Record) DescKind() DescriptorKind { return DescRecord }

// Union is an ordered list of alternatives, optionally discriminated by the
// external name of a literal-valued field every alternative must expose.
type Union struct {
	Choices       []Descriptor
	Discriminator string
}

func (Union) DescKind() DescriptorKind { return DescUnion }

// Template is a parametrizable declaration plus a binding of its type
// variables to concrete argument descriptors. Each distinct binding is
// compiled once and cached.
type Template struct {
	QualifiedName string
	Params        []string
	Body          Descriptor
	Args          []Descriptor

	id int
}

func (*Template) DescKind() DescriptorKind { return DescTemplate }

// Instantiate binds concrete arguments to the template's parameters,
// returning a new descriptor sharing the template body and identity.
func (t *Template) Instantiate(args ...Descriptor) (*Template, error) {
	if len(args) != len(t.Params) {
		return nil, &ConfigError{Code: CodeTemplateArity, Path: t.QualifiedName,
			Message: fmt.Sprintf("template %s expects %d argument(s), got %d", t.QualifiedName, len(t.Params), len(args))}
	}
	return &Template{QualifiedName: t.QualifiedName, Params: t.Params, Body: t.Body, Args: args, id: t.ensureID()}, nil
}

// TypeVar is a placeholder inside a template body, replaced during
// instantiation by the bound concrete descriptor.
type TypeVar struct {
	Name string
}

func (TypeVar) DescKind() DescriptorKind { return DescTypeVar }

// Ref is a symbolic forward reference plus the lexical scopes it was
// declared in. Scopes, when set, are searched before the resolver supplied
// to the compilation entry point.
type Ref struct {
	Name   string
	Scopes []Scope
}

func (Ref) DescKind() DescriptorKind { return DescRef }

// Nullable additionally accepts null.
type Nullable struct {
	Inner Descriptor
}

func (Nullable) DescKind() DescriptorKind { return DescNullable }

// Default wraps a descriptor with a default-producing rule. Fields carrying
// a Default are optional on the read path.
type Default struct {
	Inner Descriptor
	Value any
	// Fn, when set, produces the default lazily and wins over Value.
	Fn func() any
}

func (Default) DescKind() DescriptorKind { return DescDefault }

// Hooked attaches an ordered handler chain to a descriptor. Hooks are
// declared outermost first and applied innermost first, onion style.
type Hooked struct {
	Inner Descriptor
	Hooks []SchemaHook
}

func (Hooked) DescKind() DescriptorKind { return DescHooked }

// ---- identity ----

var instanceSeq atomic.Int64

func nextInstanceID() int { return int(instanceSeq.Add(1)) }

func (r *Record) ensureID() int {
	if r.id == 0 {
		r.id = nextInstanceID()
	}
	return r.id
}

func (t *Template) ensureID() int {
	if t.id == 0 {
		t.id = nextInstanceID()
	}
	return t.id
}

// RefID returns the stable reference identity of the record.
func (r *Record) RefID() string {
	return coreschema.FormatRef(r.QualifiedName, r.argsSig, r.ensureID())
}

// RefID returns the stable reference identity of this parametrization.
func (t *Template) RefID() string {
	return coreschema.FormatRef(t.QualifiedName, argsSignature(t.Args), t.ensureID())
}

// argsSignature renders a deterministic signature for a tuple of concrete
// argument descriptors, e.g. "[int,str]".
func argsSignature(args []Descriptor) string {
	if len(args) == 0 {
		return ""
	}
	parts := make([]string, 0, len(args))
	for _, a := range args {
		parts = append(parts, describeArg(a))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func describeArg(d Descriptor) string {
	switch t := d.(type) {
	case Primitive:
		return string(t.Name)
	case Literal:
		return fmt.Sprintf("literal(%v)", t.Value)
	case Any:
		return "any"
	case Callable:
		return "callable"
	case List:
		return "list[" + describeArg(t.Item) + "]"
	case Set:
		return "set[" + describeArg(t.Item) + "]"
	case Map:
		return "map[" + describeArg(t.Key) + "," + describeArg(t.Value) + "]"
	case Tuple:
		parts := make([]string, 0, len(t.Items))
		for _, it := range t.Items {
			parts = append(parts, describeArg(it))
		}
		return "tuple[" + strings.Join(parts, ",") + "]"
	case *Record:
		return t.QualifiedName
	case *Template:
		return t.QualifiedName + argsSignature(t.Args)
	case Union:
		parts := make([]string, 0, len(t.Choices))
		for _, c := range t.Choices {
			parts = append(parts, describeArg(c))
		}
		return "union[" + strings.Join(parts, ",") + "]"
	case Ref:
		return "ref(" + t.Name + ")"
	case Nullable:
		return "nullable[" + describeArg(t.Inner) + "]"
	case Default:
		return describeArg(t.Inner)
	case Hooked:
		return describeArg(t.Inner)
	case TypeVar:
		return "$" + t.Name
	default:
		return "?"
	}
}
