package typegraph

import "github.com/typegraph/typegraph/coreschema"

// BuildNext invokes the next-inner step of a handler chain for a descriptor
// and yields the core schema node it produced.
type BuildNext func(d Descriptor) (*coreschema.Node, error)

// SchemaHook is a customization hook wrapping core schema generation for one
// descriptor. A hook may call next to obtain the node the inner chain
// produces and replace it wholesale, merge extra data into it, or skip next
// entirely and synthesize its own node.
type SchemaHook func(d Descriptor, next BuildNext) (*coreschema.Node, error)

// composeHooks folds an ordered hook list (outermost declared first) around
// base so that the innermost hook runs closest to the generator.
func composeHooks(hooks []SchemaHook, base BuildNext) BuildNext {
	next := base
	for i := len(hooks) - 1; i >= 0; i-- {
		h := hooks[i]
		inner := next
		next = func(d Descriptor) (*coreschema.Node, error) {
			return h(d, inner)
		}
	}
	return next
}

// WithHook attaches hooks to d, outermost first. Attaching to an already
// hooked descriptor prepends, keeping the declared order.
func WithHook(d Descriptor, hooks ...SchemaHook) Descriptor {
	if len(hooks) == 0 {
		return d
	}
	if h, ok := d.(Hooked); ok {
		merged := make([]SchemaHook, 0, len(hooks)+len(h.Hooks))
		merged = append(merged, hooks...)
		merged = append(merged, h.Hooks...)
		return Hooked{Inner: h.Inner, Hooks: merged}
	}
	return Hooked{Inner: d, Hooks: hooks}
}
