package typegraph

import (
	"fmt"

	"github.com/typegraph/typegraph/coreschema"
	"github.com/typegraph/typegraph/i18n"
)

// Generate compiles a type descriptor into a core schema node tree.
//
// Unresolvable forward references do not abort the pass: the affected spots
// become placeholder nodes, the tree is marked incomplete, and the returned
// error is an *IncompleteError alongside the (still usable) partial tree.
// Defects in the graph itself surface as *ConfigError with a nil tree.
func Generate(d Descriptor, r *Resolver, opt GenerateOpt) (*coreschema.Node, error) {
	g := &generator{
		res:    r,
		opt:    opt,
		reg:    newDefRegistry(),
		inc:    &IncompleteError{},
		frames: []frame{opt.rootFrame()},
	}
	n, err := g.build(d)
	if err != nil {
		return nil, err
	}
	coreschema.MarkIncomplete(n)
	if len(g.inc.Missing) > 0 {
		return n, g.inc
	}
	return n, nil
}

// Rebuild re-runs generation for a descriptor whose previous tree was
// incomplete. When the cached tree is already complete and force is false it
// is a no-op and returns the cached tree with rebuilt=false. Rebuild is
// idempotent: running it twice in a row yields the same tree.
func Rebuild(d Descriptor, r *Resolver, opt GenerateOpt, force bool) (n *coreschema.Node, rebuilt bool, err error) {
	if key, ok := cacheKeyFor(d, opt); ok {
		if cached, complete := sharedCache.lookup(key); cached != nil && complete && !force {
			return cached, false, nil
		}
		sharedCache.drop(key)
	}
	n, err = Generate(d, r, opt)
	return n, true, err
}

// generator holds the state of exactly one generation session. It is not
// safe for concurrent use; concurrent sessions must own independent
// instances (there is no shared mutable session state between them).
type generator struct {
	res    *Resolver
	opt    GenerateOpt
	reg    *defRegistry
	inc    *IncompleteError
	frames []frame
}

func (g *generator) frame() frame { return g.frames[len(g.frames)-1] }

func (g *generator) build(d Descriptor) (*coreschema.Node, error) {
	switch t := d.(type) {
	case Primitive:
		return &coreschema.Node{Kind: primitiveKind(t.Name), Constraint: t.Constraint}, nil
	case Literal:
		return &coreschema.Node{Kind: coreschema.KindLiteral, Literal: t.Value}, nil
	case Any:
		return &coreschema.Node{Kind: coreschema.KindAny}, nil
	case Callable:
		return &coreschema.Node{Kind: coreschema.KindCallable, Target: t.Name}, nil
	case List:
		item, err := g.build(t.Item)
		if err != nil {
			return nil, err
		}
		n := &coreschema.Node{Kind: coreschema.KindList, Items: item}
		n.Constraint.MinItems = t.MinItems
		n.Constraint.MaxItems = t.MaxItems
		return n, nil
	case Set:
		item, err := g.build(t.Item)
		if err != nil {
			return nil, err
		}
		return &coreschema.Node{Kind: coreschema.KindSet, Items: item}, nil
	case Map:
		key, err := g.build(t.Key)
		if err != nil {
			return nil, err
		}
		val, err := g.build(t.Value)
		if err != nil {
			return nil, err
		}
		return &coreschema.Node{Kind: coreschema.KindDict, Key: key, Value: val}, nil
	case Tuple:
		items := make([]*coreschema.Node, 0, len(t.Items))
		for _, it := range t.Items {
			n, err := g.build(it)
			if err != nil {
				return nil, err
			}
			items = append(items, n)
		}
		return &coreschema.Node{Kind: coreschema.KindTuple, Tuple: items}, nil
	case Nullable:
		inner, err := g.build(t.Inner)
		if err != nil {
			return nil, err
		}
		return &coreschema.Node{Kind: coreschema.KindNullable, Items: inner}, nil
	case Default:
		inner, err := g.build(t.Inner)
		if err != nil {
			return nil, err
		}
		dv := t.Value
		if t.Fn != nil {
			dv = t.Fn()
		}
		return &coreschema.Node{Kind: coreschema.KindDefault, Items: inner, Default: dv}, nil
	case Hooked:
		// Hooks mutate the node they receive, and ref-carrying trees may
		// be served from the shared cache, so the chain works on a
		// private deep copy.
		base := func(d Descriptor) (*coreschema.Node, error) {
			n, err := g.build(d)
			if err != nil || n == nil || n.Ref == "" {
				return n, err
			}
			return coreschema.Clone(n), nil
		}
		chain := composeHooks(t.Hooks, base)
		n, err := chain(t.Inner)
		if err != nil {
			return nil, err
		}
		// A hook may have replaced the node wholesale; re-register so
		// siblings referencing the same ref see the final shape.
		if n != nil && n.Ref != "" {
			g.reg.register(n.Ref, n)
		}
		return n, nil
	case Union:
		return g.buildUnion(t)
	case Ref:
		return g.buildRef(t)
	case *Record:
		return g.buildRecord(t)
	case *Template:
		return g.buildTemplate(t)
	case TypeVar:
		return nil, &ConfigError{Code: CodeUnboundTypeVar, Path: t.Name,
			Message: fmt.Sprintf("type variable %q used outside an instantiated template", t.Name)}
	default:
		return nil, &ConfigError{Code: CodeUnknownDescriptor,
			Message: fmt.Sprintf("unknown descriptor %T", d)}
	}
}

func primitiveKind(n PrimitiveName) coreschema.Kind {
	switch n {
	case PrimInt:
		return coreschema.KindInt
	case PrimFloat:
		return coreschema.KindFloat
	case PrimBool:
		return coreschema.KindBool
	case PrimBytes:
		return coreschema.KindBytes
	case PrimNone:
		return coreschema.KindNone
	default:
		return coreschema.KindStr
	}
}

func (g *generator) buildRef(r Ref) (*coreschema.Node, error) {
	res := g.res.With(r.Scopes...)
	if d, ok := res.Lookup(r.Name); ok {
		return g.build(d)
	}
	g.inc.addMissing(r.Name)
	emitWarning(g.opt.Warnings, Warning{
		Category: WarnUnresolvedRefPlaceholder,
		Path:     r.Name,
		Message:  i18n.T(string(WarnUnresolvedRefPlaceholder), nil),
	})
	return &coreschema.Node{Kind: coreschema.KindPlaceholder, Target: r.Name, Incomplete: true}, nil
}

func (g *generator) buildRecord(rec *Record) (*coreschema.Node, error) {
	ref := rec.RefID()
	if g.reg.seen(ref) {
		return &coreschema.Node{Kind: coreschema.KindDefinitionRef, Target: ref}, nil
	}

	eff := g.frame().apply(rec.Policy)
	key := cacheKey(ref, eff)
	if cached, complete := sharedCache.lookup(key); cached != nil && complete {
		g.reg.registerTree(cached)
		return cached, nil
	}

	node := &coreschema.Node{
		Kind:        coreschema.KindRecord,
		Ref:         ref,
		Name:        rec.QualifiedName,
		ArgsSig:     rec.argsSig,
		InstanceID:  rec.id,
		Title:       rec.Title,
		Description: rec.Description,
	}
	// Registered before descending so self references become definition-ref
	// nodes instead of re-entering the generator.
	g.reg.register(ref, node)

	g.frames = append(g.frames, eff)
	defer func() { g.frames = g.frames[:len(g.frames)-1] }()

	seenNames := make(map[string]struct{}, len(rec.Fields))
	fields := make([]coreschema.Field, 0, len(rec.Fields))
	for _, f := range rec.Fields {
		if _, dup := seenNames[f.Name]; dup {
			return nil, &ConfigError{Code: CodeDuplicateField,
				Path: rec.QualifiedName + "." + f.Name}
		}
		seenNames[f.Name] = struct{}{}
		fs, err := g.build(f.Desc)
		if err != nil {
			return nil, err
		}
		fields = append(fields, coreschema.Field{
			Name:        f.Name,
			Alias:       f.Alias,
			SerAlias:    f.SerAlias,
			Schema:      fs,
			Required:    fieldRequired(f, fs),
			OutputOnly:  f.OutputOnly,
			InputOnly:   f.InputOnly,
			Title:       f.Title,
			Description: f.Description,
		})
	}
	node.Fields = fields
	strict := eff.strict
	node.Strict = &strict
	node.Extra = eff.extra

	if !coreschema.MarkIncomplete(node) {
		sharedCache.publish(key, node)
	}
	return node, nil
}

// fieldRequired applies the presence rule: a field is required unless it
// carries a default-producing wrapper or was declared optional.
func fieldRequired(f Field, schema *coreschema.Node) bool {
	if f.Optional || f.OutputOnly {
		return false
	}
	return schema.Kind != coreschema.KindDefault
}

func (g *generator) buildTemplate(t *Template) (*coreschema.Node, error) {
	if len(t.Args) != len(t.Params) {
		return nil, &ConfigError{Code: CodeTemplateArity, Path: t.QualifiedName,
			Message: fmt.Sprintf("template %s expects %d argument(s), got %d", t.QualifiedName, len(t.Params), len(t.Args))}
	}
	ref := t.RefID()
	if g.reg.seen(ref) {
		return &coreschema.Node{Kind: coreschema.KindDefinitionRef, Target: ref}, nil
	}

	key := cacheKey(ref, g.frame())
	if cached, complete := sharedCache.lookup(key); cached != nil && complete {
		g.reg.registerTree(cached)
		return cached, nil
	}

	binding := make(map[string]Descriptor, len(t.Params))
	for i, p := range t.Params {
		binding[p] = t.Args[i]
	}
	body, err := substitute(t.Body, binding, argsSignature(t.Args))
	if err != nil {
		return nil, err
	}

	// Shell registered up front so recursive template bodies close the loop
	// through a definition-ref.
	node := &coreschema.Node{Kind: coreschema.KindAny, Ref: ref}
	g.reg.register(ref, node)

	built, err := g.build(body)
	if err != nil {
		return nil, err
	}
	*node = *built
	node.Ref = ref
	node.Name = t.QualifiedName
	node.ArgsSig = argsSignature(t.Args)
	node.InstanceID = t.id
	g.reg.register(ref, node)

	if !coreschema.MarkIncomplete(node) {
		sharedCache.publish(key, node)
	}
	return node, nil
}
