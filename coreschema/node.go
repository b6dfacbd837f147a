// Package coreschema defines the tagged intermediate representation produced
// by schema generation and consumed by the native validation engine and by
// the JSON Schema compiler. A tree of Nodes is plain data: once built it is
// treated as immutable and may be read from multiple goroutines.
package coreschema

import (
	"fmt"
	"strings"
)

// Kind tags a Node. The string values are part of the wire contract with the
// native validation engine; its dispatch table matches these tags literally.
type Kind string

const (
	KindInt           Kind = "int"
	KindFloat         Kind = "float"
	KindBool          Kind = "bool"
	KindStr           Kind = "str"
	KindBytes         Kind = "bytes"
	KindNone          Kind = "none"
	KindAny           Kind = "any"
	KindCallable      Kind = "callable"
	KindLiteral       Kind = "literal"
	KindList          Kind = "list"
	KindSet           Kind = "set"
	KindDict          Kind = "dict"
	KindTuple         Kind = "tuple"
	KindRecord        Kind = "record"
	KindUnion         Kind = "union"
	KindTaggedUnion   Kind = "tagged-union"
	KindNullable      Kind = "nullable"
	KindDefault       Kind = "default"
	KindDefinitionRef Kind = "definition-ref"
	KindPlaceholder   Kind = "placeholder"
)

// ExtraPolicy mirrors the record-level policy for keys not declared as fields.
type ExtraPolicy int

const (
	ExtraIgnore ExtraPolicy = iota // Accept and drop undeclared keys.
	ExtraForbid                    // Reject undeclared keys.
	ExtraAllow                     // Accept and keep undeclared keys.
)

// Constraint carries value restrictions copied verbatim from the descriptor.
// Zero pointers mean "not constrained".
type Constraint struct {
	Min      *float64
	Max      *float64
	MinLen   *int
	MaxLen   *int
	Pattern  string
	Format   string
	MinItems *int
	MaxItems *int
}

// Empty reports whether no constraint is set.
func (c Constraint) Empty() bool {
	return c.Min == nil && c.Max == nil && c.MinLen == nil && c.MaxLen == nil &&
		c.Pattern == "" && c.Format == "" && c.MinItems == nil && c.MaxItems == nil
}

// Field is one declared record field. Declaration order is significant and
// preserved through the wire form and into JSON Schema properties.
type Field struct {
	Name        string
	Alias       string // external name on the read path; empty means Name
	SerAlias    string // external name on the write path; empty means Alias
	Schema      *Node
	Required    bool
	OutputOnly  bool // present only when serializing
	InputOnly   bool // excluded when serializing
	Title       string
	Description string
}

// WireName returns the external name of the field on the read path.
func (f Field) WireName() string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Name
}

// SerName returns the external name of the field on the write path.
func (f Field) SerName() string {
	if f.SerAlias != "" {
		return f.SerAlias
	}
	return f.WireName()
}

// JSONHook is a customization closure stored in a node's metadata bag and
// applied by the JSON Schema compiler around the per-kind handler. The next
// function produces the fragment the chain would otherwise emit; the value
// flowing through the chain is the compiler's fragment type, carried as any
// to keep this package free of a jsonschema dependency.
type JSONHook func(n *Node, next func(*Node) (any, error)) (any, error)

// Meta is the optional metadata bag attached to a node: customization-hook
// closures plus arbitrary side-channel data for later compilation stages.
type Meta struct {
	JSONHooks []JSONHook
	Extra     map[string]any
}

// Node is one tagged IR node. Exactly the fields relevant to Kind are set;
// the rest stay zero. Ref, when non-empty, is the stable identity used to
// deduplicate shared structure and break cycles: any two nodes carrying the
// same Ref are structurally interchangeable by construction.
type Node struct {
	Kind Kind
	Ref  string

	// Identity components behind Ref, used for human-readable $defs naming.
	Name       string // qualified declaration name, e.g. "app.models.Point"
	ArgsSig    string // generic argument signature, e.g. "[int,str]"
	InstanceID int

	Constraint Constraint

	Items   *Node   // list, set, nullable, default: the wrapped schema
	Key     *Node   // dict key schema
	Value   *Node   // dict value schema
	Tuple   []*Node // tuple member schemas, positional
	Fields  []Field // record fields, declaration order
	Choices []*Node // union alternatives, declaration order

	TagKey  string           // tagged-union discriminator field (external name)
	TagMap  map[string]*Node // discriminator literal value -> alternative
	Literal any              // literal: the expected value
	Default any              // default: the materialized default value
	Target  string           // definition-ref: target Ref; placeholder: symbolic name; callable: display name

	Strict *bool       // record: strict coercion override, nil inherits
	Extra  ExtraPolicy // record: undeclared-key policy

	Title       string
	Description string

	Meta *Meta

	// Incomplete is sticky: true on placeholder nodes and on every ancestor
	// of one, cleared only by a rebuild once the reference resolves.
	Incomplete bool
}

// FormatRef assembles the stable reference identity string for a declaration.
// The layout is "<qualified>[argsig]:<id>"; ParseRef is its inverse.
func FormatRef(name, argsSig string, id int) string {
	return fmt.Sprintf("%s%s:%d", name, argsSig, id)
}

// ParseRef splits a Ref produced by FormatRef into its components.
func ParseRef(ref string) (name, argsSig string, id int, err error) {
	i := strings.LastIndexByte(ref, ':')
	if i < 0 {
		return "", "", 0, fmt.Errorf("coreschema: malformed ref %q", ref)
	}
	if _, err := fmt.Sscanf(ref[i+1:], "%d", &id); err != nil {
		return "", "", 0, fmt.Errorf("coreschema: malformed ref id in %q", ref)
	}
	head := ref[:i]
	if j := strings.IndexByte(head, '['); j >= 0 {
		return head[:j], head[j:], id, nil
	}
	return head, "", id, nil
}

// Walk visits n and every reachable child in depth-first declaration order.
// Definition-ref nodes are leaves; Walk does not chase their targets, so it
// terminates on cyclic-but-ref-broken trees. Returning false from fn stops
// descent below the current node.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range children(n) {
		Walk(c, fn)
	}
}

func children(n *Node) []*Node {
	var out []*Node
	if n.Items != nil {
		out = append(out, n.Items)
	}
	if n.Key != nil {
		out = append(out, n.Key)
	}
	if n.Value != nil {
		out = append(out, n.Value)
	}
	out = append(out, n.Tuple...)
	for _, f := range n.Fields {
		if f.Schema != nil {
			out = append(out, f.Schema)
		}
	}
	out = append(out, n.Choices...)
	return out
}

// MarkIncomplete propagates the sticky incomplete flag up from any
// placeholder in the tree. It returns the final flag of the root.
func MarkIncomplete(n *Node) bool {
	if n == nil {
		return false
	}
	inc := n.Kind == KindPlaceholder
	for _, c := range children(n) {
		if MarkIncomplete(c) {
			inc = true
		}
	}
	if inc {
		n.Incomplete = true
	}
	return n.Incomplete
}
