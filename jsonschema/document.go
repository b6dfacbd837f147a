package jsonschema

import (
	"sort"

	"github.com/goccy/go-json"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Document is the finished JSON Schema output: a root fragment (possibly a
// bare $ref) plus the $defs table keyed by human-readable definition keys.
type Document struct {
	Root *Fragment
	Defs map[string]*Fragment
}

// MarshalJSON emits the root fragment with a "$defs" member injected when
// any definitions survived garbage collection. Definition keys are emitted
// in sorted order.
func (d *Document) MarshalJSON() ([]byte, error) {
	combined := orderedmap.New[string, any]()
	if len(d.Defs) > 0 {
		keys := make([]string, 0, len(d.Defs))
		for k := range d.Defs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		defs := orderedmap.New[string, any]()
		for _, k := range keys {
			defs.Set(k, d.Defs[k])
		}
		combined.Set("$defs", defs)
	}
	if d.Root != nil {
		for p := d.Root.m.Oldest(); p != nil; p = p.Next() {
			combined.Set(p.Key, p.Value)
		}
	}
	return combined.MarshalJSON()
}

// JSON renders the document as compact JSON bytes.
func (d *Document) JSON() ([]byte, error) {
	return json.Marshal(d)
}

// refTo renders the $ref pointer string for a definition key.
func refTo(key string) string { return "#/$defs/" + key }

// refFragment builds a bare {"$ref": "#/$defs/<key>"} fragment.
func refFragment(key string) *Fragment {
	f := NewFragment()
	f.Set("$ref", refTo(key))
	return f
}

// bareRefTarget reports the definition key when the fragment consists of a
// single $ref member and nothing else.
func bareRefTarget(f *Fragment) (string, bool) {
	if f == nil || f.Len() != 1 {
		return "", false
	}
	v, ok := f.Get("$ref")
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || len(s) <= len("#/$defs/") || s[:len("#/$defs/")] != "#/$defs/" {
		return "", false
	}
	return s[len("#/$defs/"):], true
}
