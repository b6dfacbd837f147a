package typegraph

import (
	"fmt"
	"sync"
)

// substitute walks a template body replacing type variables with the bound
// concrete descriptors. Subtrees that mention no type variable are shared
// as-is; records that do mention one are cloned with a per-parametrization
// identity, so Box[int] and Box[string] never share schema nodes. Forward
// references are leaves here; their targets are resolved at generation time,
// after substitution.
func substitute(d Descriptor, binding map[string]Descriptor, argsSig string) (Descriptor, error) {
	if !mentionsTypeVar(d) {
		return d, nil
	}
	switch t := d.(type) {
	case TypeVar:
		if a, ok := binding[t.Name]; ok {
			return a, nil
		}
		return nil, &ConfigError{Code: CodeUnboundTypeVar, Path: t.Name,
			Message: fmt.Sprintf("type variable %q has no binding", t.Name)}
	case List:
		item, err := substitute(t.Item, binding, argsSig)
		if err != nil {
			return nil, err
		}
		return List{Item: item, MinItems: t.MinItems, MaxItems: t.MaxItems}, nil
	case Set:
		item, err := substitute(t.Item, binding, argsSig)
		if err != nil {
			return nil, err
		}
		return Set{Item: item}, nil
	case Map:
		key, err := substitute(t.Key, binding, argsSig)
		if err != nil {
			return nil, err
		}
		val, err := substitute(t.Value, binding, argsSig)
		if err != nil {
			return nil, err
		}
		return Map{Key: key, Value: val}, nil
	case Tuple:
		items := make([]Descriptor, len(t.Items))
		for i, it := range t.Items {
			s, err := substitute(it, binding, argsSig)
			if err != nil {
				return nil, err
			}
			items[i] = s
		}
		return Tuple{Items: items}, nil
	case Nullable:
		inner, err := substitute(t.Inner, binding, argsSig)
		if err != nil {
			return nil, err
		}
		return Nullable{Inner: inner}, nil
	case Default:
		inner, err := substitute(t.Inner, binding, argsSig)
		if err != nil {
			return nil, err
		}
		return Default{Inner: inner, Value: t.Value, Fn: t.Fn}, nil
	case Hooked:
		inner, err := substitute(t.Inner, binding, argsSig)
		if err != nil {
			return nil, err
		}
		return Hooked{Inner: inner, Hooks: t.Hooks}, nil
	case Union:
		choices := make([]Descriptor, len(t.Choices))
		for i, c := range t.Choices {
			s, err := substitute(c, binding, argsSig)
			if err != nil {
				return nil, err
			}
			choices[i] = s
		}
		return Union{Choices: choices, Discriminator: t.Discriminator}, nil
	case *Record:
		fields := make([]Field, len(t.Fields))
		for i, f := range t.Fields {
			s, err := substitute(f.Desc, binding, argsSig)
			if err != nil {
				return nil, err
			}
			nf := f
			nf.Desc = s
			fields[i] = nf
		}
		return &Record{
			QualifiedName: t.QualifiedName,
			Fields:        fields,
			Policy:        t.Policy,
			Title:         t.Title,
			Description:   t.Description,
			id:            cloneID(t.ensureID(), argsSig),
			argsSig:       argsSig,
		}, nil
	case *Template:
		args := make([]Descriptor, len(t.Args))
		for i, a := range t.Args {
			s, err := substitute(a, binding, argsSig)
			if err != nil {
				return nil, err
			}
			args[i] = s
		}
		return &Template{QualifiedName: t.QualifiedName, Params: t.Params, Body: t.Body, Args: args, id: t.ensureID()}, nil
	default:
		// No type variable can hide below the remaining leaf kinds.
		return d, nil
	}
}

func mentionsTypeVar(d Descriptor) bool {
	switch t := d.(type) {
	case TypeVar:
		return true
	case List:
		return mentionsTypeVar(t.Item)
	case Set:
		return mentionsTypeVar(t.Item)
	case Map:
		return mentionsTypeVar(t.Key) || mentionsTypeVar(t.Value)
	case Tuple:
		for _, it := range t.Items {
			if mentionsTypeVar(it) {
				return true
			}
		}
	case Nullable:
		return mentionsTypeVar(t.Inner)
	case Default:
		return mentionsTypeVar(t.Inner)
	case Hooked:
		return mentionsTypeVar(t.Inner)
	case Union:
		for _, c := range t.Choices {
			if mentionsTypeVar(c) {
				return true
			}
		}
	case *Record:
		for _, f := range t.Fields {
			if mentionsTypeVar(f.Desc) {
				return true
			}
		}
	case *Template:
		for _, a := range t.Args {
			if mentionsTypeVar(a) {
				return true
			}
		}
	}
	return false
}

// cloneIDs keeps clone identity stable: the same source record parametrized
// with the same argument signature always receives the same instance id, so
// independent sessions produce byte-identical trees.
var (
	cloneIDMu sync.Mutex
	cloneIDs  = map[string]int{}
)

func cloneID(origID int, argsSig string) int {
	key := fmt.Sprintf("%d%s", origID, argsSig)
	cloneIDMu.Lock()
	defer cloneIDMu.Unlock()
	if id, ok := cloneIDs[key]; ok {
		return id
	}
	id := nextInstanceID()
	cloneIDs[key] = id
	return id
}
