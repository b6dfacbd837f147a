package typegraph

import "github.com/typegraph/typegraph/coreschema"

// defRegistry maps stable reference identifiers to already-built schema
// nodes. It is scoped to one generation pass of one top-level type: once a
// ref is registered, walking into the same declaration again yields a
// definition-reference node instead of re-entering the generator, which is
// what breaks infinite recursion on cyclic graphs and deduplicates shared
// substructure.
type defRegistry struct {
	nodes map[string]*coreschema.Node
}

func newDefRegistry() *defRegistry {
	return &defRegistry{nodes: make(map[string]*coreschema.Node)}
}

func (r *defRegistry) seen(ref string) bool {
	_, ok := r.nodes[ref]
	return ok
}

func (r *defRegistry) lookup(ref string) (*coreschema.Node, bool) {
	n, ok := r.nodes[ref]
	return n, ok
}

func (r *defRegistry) register(ref string, n *coreschema.Node) {
	r.nodes[ref] = n
}

// registerTree registers every ref-carrying node of a subtree adopted from
// the process-wide cache, so later walks into the same declarations reuse
// the adopted nodes.
func (r *defRegistry) registerTree(root *coreschema.Node) {
	coreschema.Walk(root, func(n *coreschema.Node) bool {
		if n.Ref != "" {
			if _, ok := r.nodes[n.Ref]; !ok {
				r.nodes[n.Ref] = n
			}
		}
		return true
	})
}
