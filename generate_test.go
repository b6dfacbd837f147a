package typegraph_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	typegraph "github.com/typegraph/typegraph"
	"github.com/typegraph/typegraph/coreschema"
	"github.com/typegraph/typegraph/dsl"
)

func emptyResolver() *typegraph.Resolver { return typegraph.NewResolver() }

func TestGeneratePrimitiveConstraints(t *testing.T) {
	n, err := typegraph.Generate(dsl.Int().Min(0).Max(10).Desc(), emptyResolver(), typegraph.GenerateOpt{})
	require.NoError(t, err)
	require.Equal(t, coreschema.KindInt, n.Kind)
	require.NotNil(t, n.Constraint.Min)
	require.Equal(t, 0.0, *n.Constraint.Min)
	require.NotNil(t, n.Constraint.Max)
	require.Equal(t, 10.0, *n.Constraint.Max)
}

func TestGenerateContainers(t *testing.T) {
	d := dsl.MapOf(dsl.String(), dsl.List(dsl.Tuple(dsl.Int(), dsl.String())).Min(1))
	n, err := typegraph.Generate(d, emptyResolver(), typegraph.GenerateOpt{})
	require.NoError(t, err)
	require.Equal(t, coreschema.KindDict, n.Kind)
	require.Equal(t, coreschema.KindList, n.Value.Kind)
	require.Equal(t, coreschema.KindTuple, n.Value.Items.Kind)
	require.Len(t, n.Value.Items.Tuple, 2)
	require.NotNil(t, n.Value.Constraint.MinItems)
}

func TestGenerateRecordRequired(t *testing.T) {
	rec := dsl.Record("app.models.User").
		Field("id", dsl.Int()).
		Field("name", dsl.Default(dsl.String(), "anon")).
		Field("nick", dsl.String(), dsl.Optional()).
		Field("age", dsl.Int(), dsl.OutputOnly()).
		MustBuild()

	n, err := typegraph.Generate(rec, emptyResolver(), typegraph.GenerateOpt{})
	require.NoError(t, err)
	require.Equal(t, coreschema.KindRecord, n.Kind)
	require.Len(t, n.Fields, 4)

	byName := map[string]coreschema.Field{}
	for _, f := range n.Fields {
		byName[f.Name] = f
	}
	require.True(t, byName["id"].Required)
	require.False(t, byName["name"].Required, "defaulted field must not be required")
	require.False(t, byName["nick"].Required)
	require.False(t, byName["age"].Required)
	require.Equal(t, coreschema.KindDefault, byName["name"].Schema.Kind)
}

func TestGenerateRecordAliases(t *testing.T) {
	rec := dsl.Record("app.models.Doc").
		Field("body", dsl.String(), dsl.Alias("content"), dsl.SerAlias("rendered")).
		MustBuild()
	n, err := typegraph.Generate(rec, emptyResolver(), typegraph.GenerateOpt{})
	require.NoError(t, err)
	require.Equal(t, "content", n.Fields[0].WireName())
	require.Equal(t, "rendered", n.Fields[0].SerName())
}

func TestGenerateCycleTerminates(t *testing.T) {
	node := dsl.Record("app.tree.Node").
		Field("value", dsl.Int()).
		Field("children", dsl.List(dsl.Ref("Node"))).
		MustBuild()
	scope := typegraph.Scope{"Node": node}

	n, err := typegraph.Generate(node, typegraph.NewResolver(scope), typegraph.GenerateOpt{})
	require.NoError(t, err)
	require.Equal(t, coreschema.KindRecord, n.Kind)

	child := n.Fields[1].Schema.Items
	require.Equal(t, coreschema.KindDefinitionRef, child.Kind)
	require.Equal(t, node.RefID(), child.Target)
	require.False(t, n.Incomplete)
}

func TestGenerateMutualRecursion(t *testing.T) {
	a := dsl.Record("app.graph.A").Field("b", dsl.Ref("B")).MustBuild()
	b := dsl.Record("app.graph.B").Field("a", dsl.List(dsl.Ref("A"))).MustBuild()
	scope := typegraph.Scope{"A": a, "B": b}

	n, err := typegraph.Generate(a, typegraph.NewResolver(scope), typegraph.GenerateOpt{})
	require.NoError(t, err)
	inner := n.Fields[0].Schema
	require.Equal(t, coreschema.KindRecord, inner.Kind)
	back := inner.Fields[0].Schema.Items
	require.Equal(t, coreschema.KindDefinitionRef, back.Kind)
	require.Equal(t, a.RefID(), back.Target)
}

func TestGenerateIncompleteAndRebuild(t *testing.T) {
	rec := dsl.Record("app.fwd.Holder").
		Field("item", dsl.Ref("Item")).
		MustBuild()

	n, err := typegraph.Generate(rec, emptyResolver(), typegraph.GenerateOpt{})
	require.Error(t, err)
	var inc *typegraph.IncompleteError
	require.ErrorAs(t, err, &inc)
	require.Equal(t, []string{"Item"}, inc.Missing)
	require.NotNil(t, n, "partial tree must still be returned")
	require.True(t, n.Incomplete)
	require.Equal(t, coreschema.KindPlaceholder, n.Fields[0].Schema.Kind)

	// Declare the missing type and rebuild.
	item := dsl.Record("app.fwd.Item").Field("sku", dsl.String()).MustBuild()
	scope := typegraph.Scope{"Item": item}
	n2, rebuilt, err := typegraph.Rebuild(rec, typegraph.NewResolver(scope), typegraph.GenerateOpt{}, false)
	require.NoError(t, err)
	require.True(t, rebuilt)
	require.False(t, n2.Incomplete)
	require.Equal(t, coreschema.KindRecord, n2.Fields[0].Schema.Kind)

	// A second rebuild is a no-op on the now-complete cached tree.
	n3, rebuilt, err := typegraph.Rebuild(rec, typegraph.NewResolver(scope), typegraph.GenerateOpt{}, false)
	require.NoError(t, err)
	require.False(t, rebuilt)
	require.Same(t, n2, n3)

	// force always rebuilds.
	_, rebuilt, err = typegraph.Rebuild(rec, typegraph.NewResolver(scope), typegraph.GenerateOpt{}, true)
	require.NoError(t, err)
	require.True(t, rebuilt)
}

func TestGenerateUnresolvedRefWarning(t *testing.T) {
	warns := &typegraph.Warnings{}
	_, err := typegraph.Generate(dsl.Ref("Nowhere"), emptyResolver(), typegraph.GenerateOpt{Warnings: warns})
	var inc *typegraph.IncompleteError
	require.ErrorAs(t, err, &inc)
	require.Len(t, warns.Collected, 1)
	require.Equal(t, typegraph.WarnUnresolvedRefPlaceholder, warns.Collected[0].Category)
	require.Equal(t, "Nowhere", warns.Collected[0].Path)
}

func TestWarningSuppression(t *testing.T) {
	warns := &typegraph.Warnings{Ignore: []typegraph.WarningCategory{typegraph.WarnUnresolvedRefPlaceholder}}
	_, err := typegraph.Generate(dsl.Ref("Nowhere"), emptyResolver(), typegraph.GenerateOpt{Warnings: warns})
	require.Error(t, err)
	require.Empty(t, warns.Collected)
}

func TestGenerateDuplicateField(t *testing.T) {
	rec := &typegraph.Record{
		QualifiedName: "app.bad.Twice",
		Fields: []typegraph.Field{
			{Name: "x", Desc: typegraph.Primitive{Name: typegraph.PrimInt}},
			{Name: "x", Desc: typegraph.Primitive{Name: typegraph.PrimString}},
		},
	}
	_, err := typegraph.Generate(rec, emptyResolver(), typegraph.GenerateOpt{})
	var ce *typegraph.ConfigError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, typegraph.CodeDuplicateField, ce.Code)
	require.Equal(t, "app.bad.Twice.x", ce.Path)
}

func TestGenerateUnboundTypeVar(t *testing.T) {
	_, err := typegraph.Generate(dsl.TypeVar("T"), emptyResolver(), typegraph.GenerateOpt{})
	var ce *typegraph.ConfigError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, typegraph.CodeUnboundTypeVar, ce.Code)
}

func TestTemplateArity(t *testing.T) {
	box := dsl.Template("app.generic.Box", []string{"T"},
		dsl.Record("app.generic.Box").Field("content", dsl.TypeVar("T")))

	_, err := dsl.Instantiate(box, dsl.Int(), dsl.String())
	var ce *typegraph.ConfigError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, typegraph.CodeTemplateArity, ce.Code)

	// Generating the raw template without arguments is an arity defect too.
	_, err = typegraph.Generate(box, emptyResolver(), typegraph.GenerateOpt{})
	require.ErrorAs(t, err, &ce)
	require.Equal(t, typegraph.CodeTemplateArity, ce.Code)
}

func TestTemplateInstantiationDistinct(t *testing.T) {
	box := dsl.Template("app.generic.Box", []string{"T"},
		dsl.Record("app.generic.Box").Field("content", dsl.TypeVar("T")))

	boxInt, err := dsl.Instantiate(box, dsl.Int())
	require.NoError(t, err)
	boxStr, err := dsl.Instantiate(box, dsl.String())
	require.NoError(t, err)
	require.NotEqual(t, boxInt.RefID(), boxStr.RefID())

	ni, err := typegraph.Generate(boxInt, emptyResolver(), typegraph.GenerateOpt{})
	require.NoError(t, err)
	ns, err := typegraph.Generate(boxStr, emptyResolver(), typegraph.GenerateOpt{})
	require.NoError(t, err)

	require.Equal(t, coreschema.KindInt, ni.Fields[0].Schema.Kind)
	require.Equal(t, coreschema.KindStr, ns.Fields[0].Schema.Kind)
	require.NotEqual(t, ni.Ref, ns.Ref)
}

func TestTemplateInstantiationStable(t *testing.T) {
	box := dsl.Template("app.generic.Box", []string{"T"},
		dsl.Record("app.generic.Box").Field("content", dsl.TypeVar("T")))

	a, err := dsl.Instantiate(box, dsl.Int())
	require.NoError(t, err)
	b, err := dsl.Instantiate(box, dsl.Int())
	require.NoError(t, err)
	require.Equal(t, a.RefID(), b.RefID(), "same arguments must share one identity")
}

func TestDiscriminatedUnion(t *testing.T) {
	cat := dsl.Record("app.pets.Cat").
		Field("kind", dsl.Literal("cat")).
		Field("lives", dsl.Int()).
		MustBuild()
	dog := dsl.Record("app.pets.Dog").
		Field("kind", dsl.Literal("dog")).
		Field("barks", dsl.Bool()).
		MustBuild()

	u := dsl.Union(cat, dog).Discriminator("kind").MustBuild()
	n, err := typegraph.Generate(u, emptyResolver(), typegraph.GenerateOpt{})
	require.NoError(t, err)
	require.Equal(t, coreschema.KindTaggedUnion, n.Kind)
	require.Equal(t, "kind", n.TagKey)
	require.Len(t, n.TagMap, 2)
	require.Contains(t, n.TagMap, "cat")
	require.Contains(t, n.TagMap, "dog")
}

func TestDiscriminatorDefaultWrapped(t *testing.T) {
	// A defaulted literal still counts as a literal-valued discriminator.
	cat := dsl.Record("app.pets2.Cat").
		Field("kind", dsl.Default(dsl.Literal("cat"), "cat")).
		MustBuild()
	dog := dsl.Record("app.pets2.Dog").
		Field("kind", dsl.Literal("dog")).
		MustBuild()
	n, err := typegraph.Generate(dsl.Union(cat, dog).Discriminator("kind").MustBuild(),
		emptyResolver(), typegraph.GenerateOpt{})
	require.NoError(t, err)
	require.Contains(t, n.TagMap, "cat")
}

func TestDiscriminatorErrors(t *testing.T) {
	lit := func(name, v string) *typegraph.Record {
		return dsl.Record(name).Field("kind", dsl.Literal(v)).MustBuild()
	}

	t.Run("missing field", func(t *testing.T) {
		bare := dsl.Record("app.dx.Bare").Field("x", dsl.Int()).MustBuild()
		_, err := typegraph.Generate(
			dsl.Union(lit("app.dx.A", "a"), bare).Discriminator("kind").MustBuild(),
			emptyResolver(), typegraph.GenerateOpt{})
		var ce *typegraph.ConfigError
		require.ErrorAs(t, err, &ce)
		require.Equal(t, typegraph.CodeDiscriminatorMissing, ce.Code)
	})

	t.Run("not literal", func(t *testing.T) {
		loose := dsl.Record("app.dx.Loose").Field("kind", dsl.String()).MustBuild()
		_, err := typegraph.Generate(
			dsl.Union(lit("app.dx.B", "b"), loose).Discriminator("kind").MustBuild(),
			emptyResolver(), typegraph.GenerateOpt{})
		var ce *typegraph.ConfigError
		require.ErrorAs(t, err, &ce)
		require.Equal(t, typegraph.CodeDiscriminatorNotLiteral, ce.Code)
	})

	t.Run("not a record", func(t *testing.T) {
		_, err := typegraph.Generate(
			dsl.Union(lit("app.dx.C", "c"), dsl.Int()).Discriminator("kind").MustBuild(),
			emptyResolver(), typegraph.GenerateOpt{})
		var ce *typegraph.ConfigError
		require.ErrorAs(t, err, &ce)
		require.Equal(t, typegraph.CodeDiscriminatorNotRecord, ce.Code)
	})

	t.Run("alias mismatch", func(t *testing.T) {
		aliased := dsl.Record("app.dx.Aliased").
			Field("kind", dsl.Literal("d"), dsl.Alias("type")).
			MustBuild()
		_, err := typegraph.Generate(
			dsl.Union(lit("app.dx.D", "d2"), aliased).Discriminator("kind").MustBuild(),
			emptyResolver(), typegraph.GenerateOpt{})
		var ce *typegraph.ConfigError
		require.ErrorAs(t, err, &ce)
		require.Equal(t, typegraph.CodeDiscriminatorAliasMismatch, ce.Code)
	})

	t.Run("ambiguous value", func(t *testing.T) {
		_, err := typegraph.Generate(
			dsl.Union(lit("app.dx.E1", "same"), lit("app.dx.E2", "same")).Discriminator("kind").MustBuild(),
			emptyResolver(), typegraph.GenerateOpt{})
		var ce *typegraph.ConfigError
		require.ErrorAs(t, err, &ce)
		require.Equal(t, typegraph.CodeDiscriminatorAmbiguous, ce.Code)
	})
}

func TestConfigFrames(t *testing.T) {
	inner := dsl.Record("app.cfg.Inner").
		Field("x", dsl.Int()).
		Extra(coreschema.ExtraAllow).
		MustBuild()
	sibling := dsl.Record("app.cfg.Sibling").
		Field("y", dsl.Int()).
		MustBuild()
	outer := dsl.Record("app.cfg.Outer").
		Field("a", inner).
		Field("b", sibling).
		MustBuild()

	n, err := typegraph.Generate(outer, emptyResolver(), typegraph.GenerateOpt{
		Strict: true,
		Extra:  coreschema.ExtraForbid,
	})
	require.NoError(t, err)
	require.Equal(t, coreschema.ExtraForbid, n.Extra)
	require.NotNil(t, n.Strict)
	require.True(t, *n.Strict)

	// The override applies to the inner record only; the sibling inherits
	// the ambient policy.
	require.Equal(t, coreschema.ExtraAllow, n.Fields[0].Schema.Extra)
	require.Equal(t, coreschema.ExtraForbid, n.Fields[1].Schema.Extra)
}

func TestSharedCacheReuse(t *testing.T) {
	rec := dsl.Record("app.cache.Item").Field("x", dsl.Int()).MustBuild()

	n1, err := typegraph.Generate(rec, emptyResolver(), typegraph.GenerateOpt{})
	require.NoError(t, err)
	n2, err := typegraph.Generate(rec, emptyResolver(), typegraph.GenerateOpt{})
	require.NoError(t, err)
	require.Same(t, n1, n2, "complete trees are served from the cache")

	// A different configuration frame is a different cache entry.
	n3, err := typegraph.Generate(rec, emptyResolver(), typegraph.GenerateOpt{Strict: true})
	require.NoError(t, err)
	require.NotSame(t, n1, n3)

	typegraph.Invalidate(rec.RefID())
	n4, err := typegraph.Generate(rec, emptyResolver(), typegraph.GenerateOpt{})
	require.NoError(t, err)
	require.NotSame(t, n1, n4)
}

func TestIncompleteTreesNotCached(t *testing.T) {
	rec := dsl.Record("app.cache.Pending").Field("item", dsl.Ref("Gone")).MustBuild()
	n1, err := typegraph.Generate(rec, emptyResolver(), typegraph.GenerateOpt{})
	require.Error(t, err)
	n2, err := typegraph.Generate(rec, emptyResolver(), typegraph.GenerateOpt{})
	require.Error(t, err)
	require.NotSame(t, n1, n2, "incomplete trees must be rebuilt every pass")
}

func TestCanonicalDeterminism(t *testing.T) {
	node := dsl.Record("app.det.Node").
		Field("value", dsl.Int()).
		Field("children", dsl.List(dsl.Ref("Node"))).
		MustBuild()
	scope := typegraph.Scope{"Node": node}

	gen := func() []byte {
		n, err := typegraph.Generate(node, typegraph.NewResolver(scope), typegraph.GenerateOpt{})
		require.NoError(t, err)
		b, err := coreschema.Canonical(n)
		require.NoError(t, err)
		return b
	}
	first := gen()
	typegraph.Invalidate(node.RefID())
	second := gen()
	require.True(t, bytes.Equal(first, second), "canonical bytes must not depend on cache state")
}

func TestSchemaHookOrdering(t *testing.T) {
	var order []string
	outer := func(d typegraph.Descriptor, next typegraph.BuildNext) (*coreschema.Node, error) {
		order = append(order, "outer")
		return next(d)
	}
	inner := func(d typegraph.Descriptor, next typegraph.BuildNext) (*coreschema.Node, error) {
		order = append(order, "inner")
		n, err := next(d)
		if err != nil {
			return nil, err
		}
		n.Title = "hooked"
		return n, nil
	}

	n, err := typegraph.Generate(dsl.WithHook(dsl.Int(), outer, inner), emptyResolver(), typegraph.GenerateOpt{})
	require.NoError(t, err)
	require.Equal(t, []string{"outer", "inner"}, order)
	require.Equal(t, "hooked", n.Title)
}

func TestResolverScopeOrder(t *testing.T) {
	near := typegraph.Scope{"X": typegraph.Primitive{Name: typegraph.PrimInt}}
	far := typegraph.Scope{"X": typegraph.Primitive{Name: typegraph.PrimString}}

	n, err := typegraph.Generate(dsl.RefIn("X", near), typegraph.NewResolver(far), typegraph.GenerateOpt{})
	require.NoError(t, err)
	require.Equal(t, coreschema.KindInt, n.Kind, "declaration-site scopes win over the session resolver")

	n, err = typegraph.Generate(dsl.Ref("X"), typegraph.NewResolver(far), typegraph.GenerateOpt{})
	require.NoError(t, err)
	require.Equal(t, coreschema.KindStr, n.Kind)
}

func TestConfigErrorMessage(t *testing.T) {
	err := &typegraph.ConfigError{Code: typegraph.CodeDuplicateField, Path: "a.B.x"}
	require.Contains(t, err.Error(), "duplicate_field")
	require.Contains(t, err.Error(), "a.B.x")
}

func TestHookLeavesSharedTreeUntouched(t *testing.T) {
	rec := dsl.Record("app.hookiso.Widget").
		Field("label", dsl.String()).
		MustBuild()
	retitle := func(d typegraph.Descriptor, next typegraph.BuildNext) (*coreschema.Node, error) {
		n, err := next(d)
		if err != nil {
			return nil, err
		}
		n.Title = "customized"
		n.Fields[0].Schema.Title = "customized-field"
		return n, nil
	}

	hooked, err := typegraph.Generate(dsl.WithHook(rec, retitle), emptyResolver(), typegraph.GenerateOpt{})
	require.NoError(t, err)
	require.Equal(t, "customized", hooked.Title)
	require.Equal(t, "customized-field", hooked.Fields[0].Schema.Title)

	// A later generation of the bare declaration must serve the pristine
	// cached tree, not the one the hook rewrote.
	plain, err := typegraph.Generate(rec, emptyResolver(), typegraph.GenerateOpt{})
	require.NoError(t, err)
	require.NotSame(t, hooked, plain)
	require.Empty(t, plain.Title)
	require.Empty(t, plain.Fields[0].Schema.Title)
}

func TestDiscriminatedUnionForwardRef(t *testing.T) {
	cat := dsl.Record("app.fwdu.Cat").
		Field("kind", dsl.Literal("cat")).
		MustBuild()
	u := dsl.Union(cat, dsl.Ref("Dog")).Discriminator("kind").MustBuild()

	// The dangling alternative is recoverable, not a graph defect.
	n, err := typegraph.Generate(u, emptyResolver(), typegraph.GenerateOpt{})
	var inc *typegraph.IncompleteError
	require.ErrorAs(t, err, &inc)
	require.Equal(t, []string{"Dog"}, inc.Missing)
	require.NotNil(t, n)
	require.True(t, n.Incomplete)
	require.Equal(t, coreschema.KindTaggedUnion, n.Kind)
	require.Equal(t, "kind", n.TagKey)
	require.Len(t, n.Choices, 2)
	require.Equal(t, coreschema.KindPlaceholder, n.Choices[1].Kind)
	require.Contains(t, n.TagMap, "cat")

	dog := dsl.Record("app.fwdu.Dog").
		Field("kind", dsl.Literal("dog")).
		MustBuild()
	scope := typegraph.Scope{"Dog": dog}
	n2, rebuilt, err := typegraph.Rebuild(u, typegraph.NewResolver(scope), typegraph.GenerateOpt{}, false)
	require.NoError(t, err)
	require.True(t, rebuilt)
	require.False(t, n2.Incomplete)
	require.Contains(t, n2.TagMap, "cat")
	require.Contains(t, n2.TagMap, "dog")
}
