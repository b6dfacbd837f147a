package jsonschema

import (
	"errors"
	"fmt"
	"sort"

	typegraph "github.com/typegraph/typegraph"
	"github.com/typegraph/typegraph/coreschema"
	"github.com/typegraph/typegraph/i18n"
)

type handlerFn func(*Compiler, *coreschema.Node, string) (*Fragment, error)

// handlers is the fixed per-kind dispatch table. A kind missing here is a
// programming error, not a data error.
var handlers map[coreschema.Kind]handlerFn

func init() {
	handlers = map[coreschema.Kind]handlerFn{
		coreschema.KindInt:           (*Compiler).handleNumeric,
		coreschema.KindFloat:         (*Compiler).handleNumeric,
		coreschema.KindBool:          (*Compiler).handleBool,
		coreschema.KindStr:           (*Compiler).handleString,
		coreschema.KindBytes:         (*Compiler).handleBytes,
		coreschema.KindNone:          (*Compiler).handleNone,
		coreschema.KindAny:           (*Compiler).handleAny,
		coreschema.KindCallable:      (*Compiler).handleCallable,
		coreschema.KindLiteral:       (*Compiler).handleLiteral,
		coreschema.KindList:          (*Compiler).handleList,
		coreschema.KindSet:           (*Compiler).handleSet,
		coreschema.KindDict:          (*Compiler).handleDict,
		coreschema.KindTuple:         (*Compiler).handleTuple,
		coreschema.KindRecord:        (*Compiler).handleRecord,
		coreschema.KindUnion:         (*Compiler).handleUnion,
		coreschema.KindTaggedUnion:   (*Compiler).handleTaggedUnion,
		coreschema.KindNullable:      (*Compiler).handleNullable,
		coreschema.KindDefault:       (*Compiler).handleDefault,
		coreschema.KindDefinitionRef: (*Compiler).handleDefinitionRef,
		coreschema.KindPlaceholder:   (*Compiler).handlePlaceholder,
	}
}

func (c *Compiler) compileKind(n *coreschema.Node, path string) (*Fragment, error) {
	h, ok := handlers[n.Kind]
	if !ok {
		panic(fmt.Sprintf("jsonschema: no handler for kind %q", n.Kind))
	}
	frag, err := h(c, n, path)
	if err != nil {
		return nil, err
	}
	if n.Title != "" {
		frag.Set("title", n.Title)
	}
	if n.Description != "" {
		frag.Set("description", n.Description)
	}
	return frag, nil
}

func (c *Compiler) handleNumeric(n *coreschema.Node, _ string) (*Fragment, error) {
	f := NewFragment()
	if n.Kind == coreschema.KindInt {
		f.Set("type", "integer")
	} else {
		f.Set("type", "number")
	}
	if n.Constraint.Min != nil {
		f.Set("minimum", *n.Constraint.Min)
	}
	if n.Constraint.Max != nil {
		f.Set("maximum", *n.Constraint.Max)
	}
	return f, nil
}

func (c *Compiler) handleBool(_ *coreschema.Node, _ string) (*Fragment, error) {
	f := NewFragment()
	f.Set("type", "boolean")
	return f, nil
}

func (c *Compiler) handleString(n *coreschema.Node, _ string) (*Fragment, error) {
	f := NewFragment()
	f.Set("type", "string")
	if n.Constraint.MinLen != nil {
		f.Set("minLength", *n.Constraint.MinLen)
	}
	if n.Constraint.MaxLen != nil {
		f.Set("maxLength", *n.Constraint.MaxLen)
	}
	if n.Constraint.Pattern != "" {
		f.Set("pattern", n.Constraint.Pattern)
	}
	if n.Constraint.Format != "" {
		f.Set("format", n.Constraint.Format)
	}
	return f, nil
}

func (c *Compiler) handleBytes(_ *coreschema.Node, _ string) (*Fragment, error) {
	f := NewFragment()
	f.Set("type", "string")
	f.Set("format", "binary")
	return f, nil
}

func (c *Compiler) handleNone(_ *coreschema.Node, _ string) (*Fragment, error) {
	f := NewFragment()
	f.Set("type", "null")
	return f, nil
}

func (c *Compiler) handleAny(_ *coreschema.Node, _ string) (*Fragment, error) {
	// The empty schema accepts every instance.
	return NewFragment(), nil
}

func (c *Compiler) handleCallable(n *coreschema.Node, path string) (*Fragment, error) {
	return nil, &UnrepresentableError{Kind: n.Kind, Path: path}
}

func (c *Compiler) handleLiteral(n *coreschema.Node, _ string) (*Fragment, error) {
	f := NewFragment()
	f.Set("const", n.Literal)
	return f, nil
}

func (c *Compiler) handleList(n *coreschema.Node, path string) (*Fragment, error) {
	item, err := c.compile(n.Items, path+"/items")
	if err != nil {
		return nil, err
	}
	f := NewFragment()
	f.Set("type", "array")
	f.Set("items", item)
	if n.Constraint.MinItems != nil {
		f.Set("minItems", *n.Constraint.MinItems)
	}
	if n.Constraint.MaxItems != nil {
		f.Set("maxItems", *n.Constraint.MaxItems)
	}
	return f, nil
}

func (c *Compiler) handleSet(n *coreschema.Node, path string) (*Fragment, error) {
	item, err := c.compile(n.Items, path+"/items")
	if err != nil {
		return nil, err
	}
	f := NewFragment()
	f.Set("type", "array")
	f.Set("items", item)
	f.Set("uniqueItems", true)
	return f, nil
}

func (c *Compiler) handleDict(n *coreschema.Node, path string) (*Fragment, error) {
	f := NewFragment()
	f.Set("type", "object")
	if n.Value != nil {
		val, err := c.compile(n.Value, path+"/values")
		if err != nil {
			return nil, err
		}
		f.Set("additionalProperties", val)
	}
	if n.Key != nil && n.Key.Kind == coreschema.KindStr && n.Key.Constraint.Pattern != "" {
		names := NewFragment()
		names.Set("pattern", n.Key.Constraint.Pattern)
		f.Set("propertyNames", names)
	}
	return f, nil
}

func (c *Compiler) handleTuple(n *coreschema.Node, path string) (*Fragment, error) {
	items := make([]any, 0, len(n.Tuple))
	for i, t := range n.Tuple {
		frag, err := c.compile(t, fmt.Sprintf("%s/%d", path, i))
		if err != nil {
			return nil, err
		}
		items = append(items, frag)
	}
	f := NewFragment()
	f.Set("type", "array")
	f.Set("prefixItems", items)
	f.Set("minItems", len(n.Tuple))
	f.Set("maxItems", len(n.Tuple))
	return f, nil
}

func (c *Compiler) handleRecord(n *coreschema.Node, path string) (*Fragment, error) {
	props := newOrderedFragment()
	var required []string
	for _, fd := range n.Fields {
		if c.mode == ModeValidation && fd.OutputOnly {
			continue
		}
		if c.mode == ModeSerialization && fd.InputOnly {
			continue
		}
		name := fd.WireName()
		if c.mode == ModeSerialization {
			name = fd.SerName()
		}
		frag, err := c.compile(fd.Schema, path+"/"+name)
		if err != nil {
			return nil, err
		}
		if fd.Title != "" {
			frag.Set("title", fd.Title)
		}
		if fd.Description != "" {
			frag.Set("description", fd.Description)
		}
		props.Set(name, frag)
		if c.fieldRequired(fd) {
			required = append(required, name)
		}
	}
	f := NewFragment()
	f.Set("type", "object")
	f.Set("properties", props)
	if len(required) > 0 {
		sort.Strings(required)
		f.Set("required", required)
	}
	switch n.Extra {
	case coreschema.ExtraForbid:
		f.Set("additionalProperties", false)
	case coreschema.ExtraAllow:
		f.Set("additionalProperties", true)
	}
	return f, nil
}

// fieldRequired diverges by mode: on the read path a field is required when
// declared so; on the write path every field that is always present in the
// output (required, defaulted, or output-only) is required.
func (c *Compiler) fieldRequired(fd coreschema.Field) bool {
	if c.mode == ModeSerialization {
		return fd.Required || fd.OutputOnly || fd.Schema.Kind == coreschema.KindDefault
	}
	return fd.Required
}

func (c *Compiler) handleUnion(n *coreschema.Node, path string) (*Fragment, error) {
	choices := make([]any, 0, len(n.Choices))
	for i, ch := range n.Choices {
		frag, err := c.compile(ch, fmt.Sprintf("%s/anyOf/%d", path, i))
		if err != nil {
			var ue *UnrepresentableError
			if errors.As(err, &ue) {
				c.emit(typegraph.Warning{
					Category: typegraph.WarnUnionChoiceSkipped,
					Path:     ue.Path,
					Message:  i18n.T(string(typegraph.WarnUnionChoiceSkipped), nil),
				})
				continue
			}
			return nil, err
		}
		choices = append(choices, frag)
	}
	switch len(choices) {
	case 0:
		return nil, &UnrepresentableError{Kind: n.Kind, Path: path}
	case 1:
		return choices[0].(*Fragment), nil
	}
	f := NewFragment()
	f.Set("anyOf", choices)
	return f, nil
}

func (c *Compiler) handleTaggedUnion(n *coreschema.Node, path string) (*Fragment, error) {
	choices := make([]any, 0, len(n.Choices))
	frags := make(map[*coreschema.Node]*Fragment, len(n.Choices))
	for i, ch := range n.Choices {
		frag, err := c.compile(ch, fmt.Sprintf("%s/oneOf/%d", path, i))
		if err != nil {
			return nil, err
		}
		choices = append(choices, frag)
		frags[ch] = frag
	}
	f := NewFragment()
	f.Set("oneOf", choices)
	disc := NewFragment()
	disc.Set("propertyName", n.TagKey)
	if mapping := tagMapping(n, frags); mapping != nil {
		disc.Set("mapping", mapping)
	}
	f.Set("discriminator", disc)
	return f, nil
}

// tagMapping emits discriminator-value -> $ref mapping when every
// alternative compiled to a bare reference.
func tagMapping(n *coreschema.Node, frags map[*coreschema.Node]*Fragment) *Fragment {
	tags := make([]string, 0, len(n.TagMap))
	for tag := range n.TagMap {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	m := NewFragment()
	for _, tag := range tags {
		frag, ok := frags[n.TagMap[tag]]
		if !ok {
			return nil
		}
		target, ok := bareRefTarget(frag)
		if !ok {
			return nil
		}
		m.Set(tag, refTo(target))
	}
	return m
}

func (c *Compiler) handleNullable(n *coreschema.Node, path string) (*Fragment, error) {
	inner, err := c.compile(n.Items, path)
	if err != nil {
		return nil, err
	}
	null := NewFragment()
	null.Set("type", "null")
	f := NewFragment()
	f.Set("anyOf", []any{inner, null})
	return f, nil
}

func (c *Compiler) handleDefault(n *coreschema.Node, path string) (*Fragment, error) {
	inner, err := c.compile(n.Items, path)
	if err != nil {
		return nil, err
	}
	c.embedDefault(inner, n, path)
	return inner, nil
}

func (c *Compiler) handleDefinitionRef(n *coreschema.Node, _ string) (*Fragment, error) {
	wk, err := c.keyForTarget(n.Target)
	if err != nil {
		return nil, err
	}
	return refFragment(wk), nil
}

func (c *Compiler) handlePlaceholder(n *coreschema.Node, _ string) (*Fragment, error) {
	return nil, &typegraph.IncompleteError{Missing: []string{n.Target}}
}
