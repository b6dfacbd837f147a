package coreschema

// Clone returns a deep copy of the tree. Aliasing inside the tree is
// preserved (a node reachable twice clones once), and definition references
// stay symbolic; their targets are not chased or duplicated. Hooks in a
// metadata bag are closures and are shared, not copied.
func Clone(n *Node) *Node {
	return cloneNode(n, map[*Node]*Node{})
}

func cloneNode(n *Node, seen map[*Node]*Node) *Node {
	if n == nil {
		return nil
	}
	if c, ok := seen[n]; ok {
		return c
	}
	out := &Node{}
	seen[n] = out
	*out = *n

	out.Constraint = cloneConstraint(n.Constraint)
	out.Items = cloneNode(n.Items, seen)
	out.Key = cloneNode(n.Key, seen)
	out.Value = cloneNode(n.Value, seen)
	if n.Tuple != nil {
		out.Tuple = make([]*Node, len(n.Tuple))
		for i, t := range n.Tuple {
			out.Tuple[i] = cloneNode(t, seen)
		}
	}
	if n.Fields != nil {
		out.Fields = make([]Field, len(n.Fields))
		for i, f := range n.Fields {
			nf := f
			nf.Schema = cloneNode(f.Schema, seen)
			out.Fields[i] = nf
		}
	}
	if n.Choices != nil {
		out.Choices = make([]*Node, len(n.Choices))
		for i, c := range n.Choices {
			out.Choices[i] = cloneNode(c, seen)
		}
	}
	if n.TagMap != nil {
		out.TagMap = make(map[string]*Node, len(n.TagMap))
		for tag, c := range n.TagMap {
			out.TagMap[tag] = cloneNode(c, seen)
		}
	}
	if n.Strict != nil {
		s := *n.Strict
		out.Strict = &s
	}
	if n.Meta != nil {
		m := Meta{JSONHooks: append([]JSONHook(nil), n.Meta.JSONHooks...)}
		if n.Meta.Extra != nil {
			m.Extra = make(map[string]any, len(n.Meta.Extra))
			for k, v := range n.Meta.Extra {
				m.Extra[k] = v
			}
		}
		out.Meta = &m
	}
	return out
}

func cloneConstraint(c Constraint) Constraint {
	if c.Min != nil {
		v := *c.Min
		c.Min = &v
	}
	if c.Max != nil {
		v := *c.Max
		c.Max = &v
	}
	if c.MinLen != nil {
		v := *c.MinLen
		c.MinLen = &v
	}
	if c.MaxLen != nil {
		v := *c.MaxLen
		c.MaxLen = &v
	}
	if c.MinItems != nil {
		v := *c.MinItems
		c.MinItems = &v
	}
	if c.MaxItems != nil {
		v := *c.MaxItems
		c.MaxItems = &v
	}
	return c
}
