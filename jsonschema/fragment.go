// Package jsonschema converts a core schema node tree into a JSON-Schema-like
// document: a root fragment plus a $defs table, with reference naming,
// collision resolution, inlining, and garbage collection handled by a
// single-use Compiler.
package jsonschema

import (
	"sort"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Fragment is one plain key/value schema fragment. Insertion order is
// retained so substructures whose order is semantically significant
// (declared field order under properties) survive serialization; all other
// fragments are key-sorted by the final normalization pass.
type Fragment struct {
	m         *orderedmap.OrderedMap[string, any]
	keepOrder bool
}

// NewFragment returns an empty fragment subject to alphabetical key sorting.
func NewFragment() *Fragment {
	return &Fragment{m: orderedmap.New[string, any]()}
}

// newOrderedFragment returns a fragment whose insertion order is preserved
// through normalization.
func newOrderedFragment() *Fragment {
	return &Fragment{m: orderedmap.New[string, any](), keepOrder: true}
}

// Set stores v under k, keeping the first-insertion position on overwrite.
func (f *Fragment) Set(k string, v any) { f.m.Set(k, v) }

// Get returns the value stored under k.
func (f *Fragment) Get(k string) (any, bool) { return f.m.Get(k) }

// Delete removes k.
func (f *Fragment) Delete(k string) { _, _ = f.m.Delete(k) }

// Len reports the number of keys.
func (f *Fragment) Len() int { return f.m.Len() }

// Keys returns the keys in current order.
func (f *Fragment) Keys() []string {
	out := make([]string, 0, f.m.Len())
	for p := f.m.Oldest(); p != nil; p = p.Next() {
		out = append(out, p.Key)
	}
	return out
}

// MarshalJSON emits the fragment as a JSON object in current key order.
func (f *Fragment) MarshalJSON() ([]byte, error) { return f.m.MarshalJSON() }

// clone returns a shallow copy sharing child values.
func (f *Fragment) clone() *Fragment {
	out := &Fragment{m: orderedmap.New[string, any](), keepOrder: f.keepOrder}
	for p := f.m.Oldest(); p != nil; p = p.Next() {
		out.m.Set(p.Key, p.Value)
	}
	return out
}

// normalize sorts keys alphabetically unless the fragment is order
// preserving, then recurses into child fragments.
func (f *Fragment) normalize() {
	for p := f.m.Oldest(); p != nil; p = p.Next() {
		normalizeValue(p.Value)
	}
	if f.keepOrder {
		return
	}
	keys := f.Keys()
	sort.Strings(keys)
	nm := orderedmap.New[string, any]()
	for _, k := range keys {
		v, _ := f.m.Get(k)
		nm.Set(k, v)
	}
	f.m = nm
}

func normalizeValue(v any) {
	switch t := v.(type) {
	case *Fragment:
		t.normalize()
	case []any:
		for _, e := range t {
			normalizeValue(e)
		}
	case []*Fragment:
		for _, e := range t {
			e.normalize()
		}
	}
}

// walk visits the fragment and every nested fragment/key pair.
func (f *Fragment) walk(fn func(frag *Fragment, key string, value any)) {
	for p := f.m.Oldest(); p != nil; p = p.Next() {
		fn(f, p.Key, p.Value)
		walkValue(p.Value, fn)
	}
}

func walkValue(v any, fn func(*Fragment, string, any)) {
	switch t := v.(type) {
	case *Fragment:
		t.walk(fn)
	case []any:
		for _, e := range t {
			walkValue(e, fn)
		}
	case []*Fragment:
		for _, e := range t {
			e.walk(fn)
		}
	}
}
