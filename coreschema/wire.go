package coreschema

// Wire projects the node tree into the plain nested key/value structure the
// native validation engine dispatches on. Key names and tag values are part
// of the engine contract; do not rename them.
func (n *Node) Wire() map[string]any {
	if n == nil {
		return nil
	}
	m := map[string]any{"type": string(n.Kind)}
	if n.Ref != "" {
		m["ref"] = n.Ref
	}
	putConstraint(m, n.Constraint)
	if n.Title != "" {
		m["title"] = n.Title
	}
	if n.Description != "" {
		m["description"] = n.Description
	}

	switch n.Kind {
	case KindList, KindSet:
		if n.Items != nil {
			m["items"] = n.Items.Wire()
		}
	case KindDict:
		if n.Key != nil {
			m["keys"] = n.Key.Wire()
		}
		if n.Value != nil {
			m["values"] = n.Value.Wire()
		}
	case KindTuple:
		items := make([]any, 0, len(n.Tuple))
		for _, t := range n.Tuple {
			items = append(items, t.Wire())
		}
		m["items"] = items
	case KindRecord:
		fields := make([]any, 0, len(n.Fields))
		for _, f := range n.Fields {
			fm := map[string]any{
				"name":   f.Name,
				"schema": f.Schema.Wire(),
			}
			if f.Required {
				fm["required"] = true
			}
			if f.Alias != "" {
				fm["alias"] = f.Alias
			}
			if f.SerAlias != "" {
				fm["serialization_alias"] = f.SerAlias
			}
			if f.OutputOnly {
				fm["output_only"] = true
			}
			if f.InputOnly {
				fm["input_only"] = true
			}
			fields = append(fields, fm)
		}
		m["fields"] = fields
		if n.Strict != nil {
			m["strict"] = *n.Strict
		}
		switch n.Extra {
		case ExtraForbid:
			m["extra"] = "forbid"
		case ExtraAllow:
			m["extra"] = "allow"
		}
	case KindUnion:
		choices := make([]any, 0, len(n.Choices))
		for _, c := range n.Choices {
			choices = append(choices, c.Wire())
		}
		m["choices"] = choices
	case KindTaggedUnion:
		m["discriminator"] = n.TagKey
		mapping := make(map[string]any, len(n.TagMap))
		for tag, c := range n.TagMap {
			mapping[tag] = c.Wire()
		}
		m["mapping"] = mapping
	case KindNullable:
		if n.Items != nil {
			m["schema"] = n.Items.Wire()
		}
	case KindDefault:
		if n.Items != nil {
			m["schema"] = n.Items.Wire()
		}
		m["default"] = n.Default
	case KindLiteral:
		m["value"] = n.Literal
	case KindDefinitionRef:
		m["schema_ref"] = n.Target
	case KindPlaceholder:
		m["name"] = n.Target
	case KindCallable:
		if n.Target != "" {
			m["name"] = n.Target
		}
	}
	return m
}

func putConstraint(m map[string]any, c Constraint) {
	if c.Min != nil {
		m["ge"] = *c.Min
	}
	if c.Max != nil {
		m["le"] = *c.Max
	}
	if c.MinLen != nil {
		m["min_length"] = *c.MinLen
	}
	if c.MaxLen != nil {
		m["max_length"] = *c.MaxLen
	}
	if c.Pattern != "" {
		m["pattern"] = c.Pattern
	}
	if c.Format != "" {
		m["format"] = c.Format
	}
	if c.MinItems != nil {
		m["min_items"] = *c.MinItems
	}
	if c.MaxItems != nil {
		m["max_items"] = *c.MaxItems
	}
}
