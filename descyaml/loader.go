// Package descyaml loads type descriptor declarations from YAML (or JSON,
// which YAML subsumes) documents. All declarations of one file share a
// single lexical scope, so forward references between them resolve during
// generation regardless of declaration order. Templates are the exception:
// an instantiation site needs the template declared earlier in the file.
package descyaml

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	typegraph "github.com/typegraph/typegraph"
	"github.com/typegraph/typegraph/coreschema"
)

// File is the loaded declaration set.
type File struct {
	// Types maps qualified names to descriptors, in declaration order
	// preserved by Order.
	Types map[string]typegraph.Descriptor
	Order []string
	// Scope resolves both qualified and trailing-segment names, for use as
	// the resolver scope of a generation pass.
	Scope typegraph.Scope
}

// Lookup returns a declared type by qualified or short name.
func (f *File) Lookup(name string) (typegraph.Descriptor, bool) {
	d, ok := f.Scope[name]
	return d, ok
}

type loader struct {
	file      *File
	templates map[string]*typegraph.Template
}

// Load parses one YAML document of the form:
//
//	types:
//	  - name: app.models.Node
//	    record:
//	      fields:
//	        - name: value
//	          type: int
//	        - name: children
//	          type: {list: {ref: Node}}
func Load(data []byte) (*File, error) {
	var doc struct {
		Types []yaml.Node `yaml:"types"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("descyaml: %w", err)
	}
	l := &loader{
		file: &File{
			Types: map[string]typegraph.Descriptor{},
			Scope: typegraph.Scope{},
		},
		templates: map[string]*typegraph.Template{},
	}
	for i := range doc.Types {
		if err := l.loadEntry(&doc.Types[i]); err != nil {
			return nil, err
		}
	}
	return l.file, nil
}

func (l *loader) loadEntry(node *yaml.Node) error {
	var raw map[string]any
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("descyaml: type entry: %w", err)
	}
	name, _ := raw["name"].(string)
	if name == "" {
		return fmt.Errorf("descyaml: type entry missing name")
	}
	var d typegraph.Descriptor
	var err error
	switch {
	case raw["record"] != nil:
		d, err = l.record(name, raw["record"])
	case raw["template"] != nil:
		d, err = l.template(name, raw["template"])
	case raw["type"] != nil:
		d, err = l.expr(name, raw["type"])
	default:
		err = fmt.Errorf("descyaml: %s: entry needs record, template, or type", name)
	}
	if err != nil {
		return err
	}
	l.declare(name, d)
	return nil
}

func (l *loader) declare(name string, d typegraph.Descriptor) {
	l.file.Types[name] = d
	l.file.Order = append(l.file.Order, name)
	l.file.Scope[name] = d
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		l.file.Scope[name[i+1:]] = d
	}
	if t, ok := d.(*typegraph.Template); ok {
		l.templates[name] = t
		if i := strings.LastIndexByte(name, '.'); i >= 0 {
			l.templates[name[i+1:]] = t
		}
	}
}

func (l *loader) record(name string, v any) (typegraph.Descriptor, error) {
	m, ok := asMap(v)
	if !ok {
		return nil, fmt.Errorf("descyaml: %s: record must be a mapping", name)
	}
	b := &typegraph.Record{QualifiedName: name}
	if t, ok := m["title"].(string); ok {
		b.Title = t
	}
	if d, ok := m["description"].(string); ok {
		b.Description = d
	}
	if s, ok := m["strict"].(bool); ok {
		p := s
		b.Policy = &typegraph.RecordPolicy{Strict: &p}
	}
	if e, ok := m["extra"].(string); ok {
		pol, err := extraPolicy(e)
		if err != nil {
			return nil, fmt.Errorf("descyaml: %s: %w", name, err)
		}
		if b.Policy == nil {
			b.Policy = &typegraph.RecordPolicy{}
		}
		b.Policy.Extra = &pol
	}
	fields, _ := m["fields"].([]any)
	for _, fv := range fields {
		f, err := l.field(name, fv)
		if err != nil {
			return nil, err
		}
		b.Fields = append(b.Fields, f)
	}
	return b, nil
}

func (l *loader) field(owner string, v any) (typegraph.Field, error) {
	m, ok := asMap(v)
	if !ok {
		return typegraph.Field{}, fmt.Errorf("descyaml: %s: field must be a mapping", owner)
	}
	name, _ := m["name"].(string)
	if name == "" {
		return typegraph.Field{}, fmt.Errorf("descyaml: %s: field missing name", owner)
	}
	d, err := l.expr(owner+"."+name, m["type"])
	if err != nil {
		return typegraph.Field{}, err
	}
	if dv, ok := m["default"]; ok {
		d = typegraph.Default{Inner: d, Value: dv}
	}
	f := typegraph.Field{Name: name, Desc: d}
	if a, ok := m["alias"].(string); ok {
		f.Alias = a
	}
	if a, ok := m["serialization_alias"].(string); ok {
		f.SerAlias = a
	}
	if b, ok := m["optional"].(bool); ok {
		f.Optional = b
	}
	if b, ok := m["output_only"].(bool); ok {
		f.OutputOnly = b
	}
	if b, ok := m["input_only"].(bool); ok {
		f.InputOnly = b
	}
	if t, ok := m["title"].(string); ok {
		f.Title = t
	}
	if s, ok := m["description"].(string); ok {
		f.Description = s
	}
	return f, nil
}

func (l *loader) template(name string, v any) (typegraph.Descriptor, error) {
	m, ok := asMap(v)
	if !ok {
		return nil, fmt.Errorf("descyaml: %s: template must be a mapping", name)
	}
	var params []string
	for _, p := range toSlice(m["params"]) {
		s, ok := p.(string)
		if !ok {
			return nil, fmt.Errorf("descyaml: %s: template params must be strings", name)
		}
		params = append(params, s)
	}
	body, err := l.expr(name, m["body"])
	if err != nil {
		return nil, err
	}
	return &typegraph.Template{QualifiedName: name, Params: params, Body: body}, nil
}

// expr parses one type expression. ctx names the declaration site and seeds
// qualified names of inline records.
func (l *loader) expr(ctx string, v any) (typegraph.Descriptor, error) {
	switch t := v.(type) {
	case nil:
		return nil, fmt.Errorf("descyaml: %s: missing type", ctx)
	case string:
		return primitive(ctx, t)
	case map[string]any:
		return l.exprMap(ctx, t)
	default:
		return nil, fmt.Errorf("descyaml: %s: unsupported type expression %T", ctx, v)
	}
}

func (l *loader) exprMap(ctx string, m map[string]any) (typegraph.Descriptor, error) {
	switch {
	case m["ref"] != nil:
		name, _ := m["ref"].(string)
		if name == "" {
			return nil, fmt.Errorf("descyaml: %s: ref needs a name", ctx)
		}
		return typegraph.Ref{Name: name, Scopes: []typegraph.Scope{l.file.Scope}}, nil
	case m["var"] != nil:
		name, _ := m["var"].(string)
		return typegraph.TypeVar{Name: name}, nil
	case m["list"] != nil:
		return l.container(ctx, m["list"], func(item typegraph.Descriptor, opts map[string]any) (typegraph.Descriptor, error) {
			out := typegraph.List{Item: item}
			if n, ok := asInt(opts["min"]); ok {
				out.MinItems = &n
			}
			if n, ok := asInt(opts["max"]); ok {
				out.MaxItems = &n
			}
			return out, nil
		})
	case m["set"] != nil:
		return l.container(ctx, m["set"], func(item typegraph.Descriptor, _ map[string]any) (typegraph.Descriptor, error) {
			return typegraph.Set{Item: item}, nil
		})
	case m["map"] != nil:
		mm, ok := asMap(m["map"])
		if !ok {
			return nil, fmt.Errorf("descyaml: %s: map needs keys/values", ctx)
		}
		key, err := l.expr(ctx+".keys", mm["keys"])
		if err != nil {
			return nil, err
		}
		val, err := l.expr(ctx+".values", mm["values"])
		if err != nil {
			return nil, err
		}
		return typegraph.Map{Key: key, Value: val}, nil
	case m["tuple"] != nil:
		var items []typegraph.Descriptor
		for i, e := range toSlice(m["tuple"]) {
			d, err := l.expr(fmt.Sprintf("%s.%d", ctx, i), e)
			if err != nil {
				return nil, err
			}
			items = append(items, d)
		}
		return typegraph.Tuple{Items: items}, nil
	case m["nullable"] != nil:
		inner, err := l.expr(ctx, m["nullable"])
		if err != nil {
			return nil, err
		}
		return typegraph.Nullable{Inner: inner}, nil
	case m["literal"] != nil:
		return typegraph.Literal{Value: m["literal"]}, nil
	case m["union"] != nil:
		return l.union(ctx, m["union"])
	case m["record"] != nil:
		return l.record(ctx, m["record"])
	case m["template"] != nil:
		return l.instantiate(ctx, m)
	default:
		// primitive with constraints, e.g. {int: {min: 0}}
		for _, prim := range []string{"int", "float", "bool", "str", "string", "bytes", "none", "null"} {
			if cv, ok := m[prim]; ok {
				d, err := primitive(ctx, prim)
				if err != nil {
					return nil, err
				}
				return constrain(d, cv)
			}
		}
		return nil, fmt.Errorf("descyaml: %s: unrecognized type expression", ctx)
	}
}

func (l *loader) container(ctx string, v any, build func(typegraph.Descriptor, map[string]any) (typegraph.Descriptor, error)) (typegraph.Descriptor, error) {
	if m, ok := asMap(v); ok && m["of"] != nil {
		item, err := l.expr(ctx, m["of"])
		if err != nil {
			return nil, err
		}
		return build(item, m)
	}
	item, err := l.expr(ctx, v)
	if err != nil {
		return nil, err
	}
	return build(item, nil)
}

func (l *loader) union(ctx string, v any) (typegraph.Descriptor, error) {
	var choices []any
	disc := ""
	if m, ok := asMap(v); ok && m["of"] != nil {
		choices = toSlice(m["of"])
		disc, _ = m["discriminator"].(string)
	} else {
		choices = toSlice(v)
	}
	u := typegraph.Union{Discriminator: disc}
	for i, c := range choices {
		d, err := l.expr(fmt.Sprintf("%s.%d", ctx, i), c)
		if err != nil {
			return nil, err
		}
		u.Choices = append(u.Choices, d)
	}
	return u, nil
}

func (l *loader) instantiate(ctx string, m map[string]any) (typegraph.Descriptor, error) {
	name, _ := m["template"].(string)
	t, ok := l.templates[name]
	if !ok {
		return nil, fmt.Errorf("descyaml: %s: template %q not declared yet", ctx, name)
	}
	var args []typegraph.Descriptor
	for i, a := range toSlice(m["args"]) {
		d, err := l.expr(fmt.Sprintf("%s.%d", ctx, i), a)
		if err != nil {
			return nil, err
		}
		args = append(args, d)
	}
	return t.Instantiate(args...)
}

func primitive(ctx, name string) (typegraph.Descriptor, error) {
	switch name {
	case "int", "integer":
		return typegraph.Primitive{Name: typegraph.PrimInt}, nil
	case "float", "number":
		return typegraph.Primitive{Name: typegraph.PrimFloat}, nil
	case "bool", "boolean":
		return typegraph.Primitive{Name: typegraph.PrimBool}, nil
	case "str", "string":
		return typegraph.Primitive{Name: typegraph.PrimString}, nil
	case "bytes":
		return typegraph.Primitive{Name: typegraph.PrimBytes}, nil
	case "none", "null":
		return typegraph.Primitive{Name: typegraph.PrimNone}, nil
	case "any":
		return typegraph.Any{}, nil
	default:
		return nil, fmt.Errorf("descyaml: %s: unknown primitive %q", ctx, name)
	}
}

func constrain(d typegraph.Descriptor, v any) (typegraph.Descriptor, error) {
	p, ok := d.(typegraph.Primitive)
	if !ok {
		return d, nil
	}
	m, ok := asMap(v)
	if !ok {
		return p, nil
	}
	if f, ok := asFloat(m["min"]); ok {
		p.Constraint.Min = &f
	}
	if f, ok := asFloat(m["max"]); ok {
		p.Constraint.Max = &f
	}
	if n, ok := asInt(m["min_length"]); ok {
		p.Constraint.MinLen = &n
	}
	if n, ok := asInt(m["max_length"]); ok {
		p.Constraint.MaxLen = &n
	}
	if s, ok := m["pattern"].(string); ok {
		p.Constraint.Pattern = s
	}
	if s, ok := m["format"].(string); ok {
		p.Constraint.Format = s
	}
	return p, nil
}

func extraPolicy(s string) (coreschema.ExtraPolicy, error) {
	switch s {
	case "ignore":
		return coreschema.ExtraIgnore, nil
	case "forbid":
		return coreschema.ExtraForbid, nil
	case "allow":
		return coreschema.ExtraAllow, nil
	default:
		return 0, fmt.Errorf("unknown extra policy %q", s)
	}
}

// ---- yaml plumbing ----

func asMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = val
		}
		return out, true
	default:
		return nil, false
	}
}

func toSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

func asInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	default:
		return 0, false
	}
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case float64:
		return t, true
	default:
		return 0, false
	}
}
