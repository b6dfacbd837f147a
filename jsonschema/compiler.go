package jsonschema

import (
	"errors"
	"fmt"
	"sort"

	"github.com/goccy/go-json"

	typegraph "github.com/typegraph/typegraph"
	"github.com/typegraph/typegraph/coreschema"
	"github.com/typegraph/typegraph/i18n"
	"github.com/typegraph/typegraph/internal/refname"
)

// Mode selects which of the divergent read/write behaviors the document
// describes.
type Mode string

const (
	ModeValidation    Mode = "validation"
	ModeSerialization Mode = "serialization"
)

// ErrAlreadyUsed is returned when a Compiler instance is asked to generate a
// second time. A Compiler is single-use: create, generate once, discard.
var ErrAlreadyUsed = errors.New("jsonschema: compiler instance already used")

// UnrepresentableError reports a node kind with no JSON Schema equivalent
// outside a union (inside a union the alternative is dropped with a
// warning instead).
type UnrepresentableError struct {
	Kind coreschema.Kind
	Path string
}

func (e *UnrepresentableError) Error() string {
	return fmt.Sprintf("jsonschema: kind %q at %q has no JSON Schema form", e.Kind, e.Path)
}

// Compiler converts one core schema node tree into one Document. All of its
// state (definitions table, reference-key cache, naming counters) is scoped
// to that single generation and must not be shared across sessions.
type Compiler struct {
	used    bool
	mode    Mode
	defs    map[string]*Fragment // working key -> fragment
	defSeq  []string             // working keys in allocation order
	refKeys map[string]string    // ref + "|" + mode -> working key
	namer   *refname.Namer
	warn    typegraph.WarningPolicy
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithWarningPolicy routes skipped-choice and default-embedding warnings to
// p instead of dropping them.
func WithWarningPolicy(p typegraph.WarningPolicy) Option {
	return func(c *Compiler) { c.warn = p }
}

// NewCompiler builds a fresh single-use compiler.
func NewCompiler(opts ...Option) *Compiler {
	c := &Compiler{
		defs:    map[string]*Fragment{},
		refKeys: map[string]string{},
		namer:   refname.New(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Compile is the convenience one-shot entry point.
func Compile(root *coreschema.Node, mode Mode, opts ...Option) (*Document, error) {
	return NewCompiler(opts...).Generate(root, mode)
}

// Generate produces the document for root in the given mode. The second
// call on the same instance fails with ErrAlreadyUsed.
func (c *Compiler) Generate(root *coreschema.Node, mode Mode) (*Document, error) {
	if c.used {
		return nil, ErrAlreadyUsed
	}
	c.used = true
	if root == nil {
		return nil, errors.New("jsonschema: nil schema node")
	}
	if root.Incomplete {
		return nil, incompleteFrom(root)
	}
	c.mode = mode

	rootFrag, err := c.compile(root, "")
	if err != nil {
		return nil, err
	}

	counts := c.countRefs(rootFrag)
	rootFrag = c.inlineRoot(rootFrag, counts)
	c.collectGarbage(counts)
	defs := c.remap(rootFrag)

	rootFrag.normalize()
	for _, f := range defs {
		f.normalize()
	}
	return &Document{Root: rootFrag, Defs: defs}, nil
}

// incompleteFrom rebuilds the recoverable error from the placeholders still
// present in the tree.
func incompleteFrom(root *coreschema.Node) error {
	e := &typegraph.IncompleteError{}
	coreschema.Walk(root, func(n *coreschema.Node) bool {
		if n.Kind == coreschema.KindPlaceholder {
			e.Missing = append(e.Missing, n.Target)
		}
		return true
	})
	return e
}

// compile dispatches one node, routing ref-carrying nodes through the
// definitions table and applying any metadata hooks around the per-kind
// handler.
func (c *Compiler) compile(n *coreschema.Node, path string) (*Fragment, error) {
	if n.Ref != "" {
		return c.compileRef(n, path)
	}
	return c.compileInner(n, path)
}

func (c *Compiler) compileInner(n *coreschema.Node, path string) (*Fragment, error) {
	next := func(m *coreschema.Node) (*Fragment, error) { return c.compileKind(m, path) }
	if n.Meta != nil {
		for i := len(n.Meta.JSONHooks) - 1; i >= 0; i-- {
			h := n.Meta.JSONHooks[i]
			inner := next
			next = func(m *coreschema.Node) (*Fragment, error) {
				out, err := h(m, func(mm *coreschema.Node) (any, error) { return inner(mm) })
				if err != nil {
					return nil, err
				}
				frag, ok := out.(*Fragment)
				if !ok {
					return nil, fmt.Errorf("jsonschema: hook at %q returned %T, want *Fragment", path, out)
				}
				return frag, nil
			}
		}
	}
	return next(n)
}

// compileRef registers the node's fragment under a working definition key
// and returns a $ref pointer in its place. The key is computed once per
// (ref, mode) and reused.
func (c *Compiler) compileRef(n *coreschema.Node, path string) (*Fragment, error) {
	cacheKey := n.Ref + "|" + string(c.mode)
	if wk, ok := c.refKeys[cacheKey]; ok {
		return refFragment(wk), nil
	}
	wk := c.namer.WorkingKey(n.Name, n.ArgsSig, n.InstanceID)
	c.refKeys[cacheKey] = wk
	c.defSeq = append(c.defSeq, wk)

	frag, err := c.compileInner(n, path)
	if err != nil {
		return nil, err
	}
	c.defs[wk] = frag
	return refFragment(wk), nil
}

// keyForTarget resolves a definition-ref target to its working key,
// allocating one when the defining node has not been reached yet. The
// identity components are recovered from the ref string itself.
func (c *Compiler) keyForTarget(ref string) (string, error) {
	cacheKey := ref + "|" + string(c.mode)
	if wk, ok := c.refKeys[cacheKey]; ok {
		return wk, nil
	}
	name, argsSig, id, err := coreschema.ParseRef(ref)
	if err != nil {
		return "", err
	}
	wk := c.namer.WorkingKey(name, argsSig, id)
	c.refKeys[cacheKey] = wk
	c.defSeq = append(c.defSeq, wk)
	return wk, nil
}

func (c *Compiler) emit(w typegraph.Warning) {
	if c.warn != nil {
		c.warn.Emit(w)
	}
}

// ---- post-processing ----

// countRefs walks the whole document counting $ref occurrences, visiting
// each definition exactly once.
func (c *Compiler) countRefs(root *Fragment) map[string]int {
	counts := make(map[string]int, len(c.defs))
	count := func(f *Fragment) {
		f.walk(func(_ *Fragment, key string, value any) {
			if key != "$ref" {
				return
			}
			if s, ok := value.(string); ok && len(s) > len("#/$defs/") && s[:len("#/$defs/")] == "#/$defs/" {
				counts[s[len("#/$defs/"):]]++
			}
		})
	}
	count(root)
	for _, wk := range c.defSeq {
		if f, ok := c.defs[wk]; ok {
			count(f)
		}
	}
	return counts
}

// inlineRoot removes the indirection of a thin wrapper: when the root is a
// bare $ref whose definition is referenced exactly once in the whole
// document, the definition replaces the root.
func (c *Compiler) inlineRoot(root *Fragment, counts map[string]int) *Fragment {
	wk, ok := bareRefTarget(root)
	if !ok || counts[wk] != 1 {
		return root
	}
	def, ok := c.defs[wk]
	if !ok {
		return root
	}
	counts[wk]--
	return def
}

// collectGarbage drops definitions nothing points at anymore.
func (c *Compiler) collectGarbage(counts map[string]int) {
	for wk := range c.defs {
		if counts[wk] == 0 {
			delete(c.defs, wk)
		}
	}
}

// remap replaces every provisional working key with its most readable
// non-colliding candidate, rewriting both the definitions table and every
// $ref string in one pass over the document.
func (c *Compiler) remap(root *Fragment) map[string]*Fragment {
	mapping := c.namer.Remap()

	// Both $ref members and discriminator-mapping values point into $defs;
	// every such string is rewritten.
	rewrite := func(f *Fragment) {
		f.walk(func(frag *Fragment, key string, value any) {
			s, ok := value.(string)
			if !ok || len(s) <= len("#/$defs/") || s[:len("#/$defs/")] != "#/$defs/" {
				return
			}
			if final, ok := mapping[s[len("#/$defs/"):]]; ok {
				frag.Set(key, refTo(final))
			}
		})
	}

	out := make(map[string]*Fragment, len(c.defs))
	keys := make([]string, 0, len(c.defs))
	for wk := range c.defs {
		keys = append(keys, wk)
	}
	sort.Strings(keys)
	for _, wk := range keys {
		f := c.defs[wk]
		rewrite(f)
		final, ok := mapping[wk]
		if !ok {
			final = wk
		}
		out[final] = f
	}
	rewrite(root)
	return out
}

// ---- helpers shared by handlers ----

// embedDefault attaches the node's default value to frag, skipping with a
// warning when the value has no JSON representation.
func (c *Compiler) embedDefault(frag *Fragment, n *coreschema.Node, path string) {
	b, err := json.Marshal(n.Default)
	if err != nil {
		c.emit(typegraph.Warning{
			Category: typegraph.WarnNonSerializableDefault,
			Path:     path,
			Message:  i18n.T(string(typegraph.WarnNonSerializableDefault), nil),
		})
		return
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return
	}
	frag.Set("default", v)
}
