package typegraph

import (
	"fmt"

	"github.com/typegraph/typegraph/coreschema"
)

// buildUnion generates every alternative and, when a discriminator is
// declared, checks the discriminated-union contract: each alternative must
// be a record exposing the discriminator as a literal-valued field under one
// consistent external name. Violations are configuration errors — defects in
// the graph, never instance-level failures.
func (g *generator) buildUnion(u Union) (*coreschema.Node, error) {
	choices := make([]*coreschema.Node, 0, len(u.Choices))
	for _, c := range u.Choices {
		n, err := g.build(c)
		if err != nil {
			return nil, err
		}
		choices = append(choices, n)
	}
	if u.Discriminator == "" {
		return &coreschema.Node{Kind: coreschema.KindUnion, Choices: choices}, nil
	}

	tagMap := make(map[string]*coreschema.Node, len(choices))
	wireName := ""
	for _, n := range choices {
		if n.Kind == coreschema.KindPlaceholder {
			// Unresolved alternative: keep the placeholder among the
			// choices and defer its contract check to the rebuild that
			// resolves it.
			continue
		}
		rec := g.resolveRecord(n)
		if rec == nil {
			return nil, &ConfigError{Code: CodeDiscriminatorNotRecord, Path: u.Discriminator}
		}
		f, ok := discriminatorField(rec, u.Discriminator)
		if !ok {
			return nil, &ConfigError{Code: CodeDiscriminatorMissing,
				Path: rec.Name + "." + u.Discriminator}
		}
		lit, ok := literalOf(f.Schema)
		if !ok {
			return nil, &ConfigError{Code: CodeDiscriminatorNotLiteral,
				Path: rec.Name + "." + f.Name}
		}
		ext := f.WireName()
		if wireName == "" {
			wireName = ext
		} else if ext != wireName {
			return nil, &ConfigError{Code: CodeDiscriminatorAliasMismatch,
				Path:    rec.Name + "." + f.Name,
				Message: fmt.Sprintf("discriminator exposed as %q, expected %q", ext, wireName)}
		}
		tag := fmt.Sprintf("%v", lit)
		if _, dup := tagMap[tag]; dup {
			return nil, &ConfigError{Code: CodeDiscriminatorAmbiguous,
				Path:    rec.Name + "." + f.Name,
				Message: fmt.Sprintf("discriminator value %q used by more than one alternative", tag)}
		}
		tagMap[tag] = n
	}
	return &coreschema.Node{
		Kind:    coreschema.KindTaggedUnion,
		TagKey:  wireName,
		TagMap:  tagMap,
		Choices: choices,
	}, nil
}

// resolveRecord follows a definition reference back through the session
// registry and returns the underlying record node, or nil.
func (g *generator) resolveRecord(n *coreschema.Node) *coreschema.Node {
	if n.Kind == coreschema.KindDefinitionRef {
		if t, ok := g.reg.lookup(n.Target); ok {
			n = t
		}
	}
	if n.Kind == coreschema.KindRecord {
		return n
	}
	return nil
}

func discriminatorField(rec *coreschema.Node, disc string) (coreschema.Field, bool) {
	for _, f := range rec.Fields {
		if f.Name == disc || f.WireName() == disc {
			return f, true
		}
	}
	return coreschema.Field{}, false
}

// literalOf unwraps a default wrapper and reports the literal value behind
// the field schema, if any.
func literalOf(n *coreschema.Node) (any, bool) {
	if n == nil {
		return nil, false
	}
	if n.Kind == coreschema.KindDefault && n.Items != nil {
		n = n.Items
	}
	if n.Kind == coreschema.KindLiteral {
		return n.Literal, true
	}
	return nil, false
}
