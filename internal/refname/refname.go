// Package refname turns stable reference identities into human-usable
// definition keys. Generation allocates guaranteed-unique working keys; a
// final remapping pass picks, for each working key, the shortest candidate
// name that collides with no other key's choice, in a stable global order.
package refname

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var nonKeyChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// normalize strips punctuation that has no place in a definition key.
func normalize(s string) string {
	return nonKeyChars.ReplaceAllString(s, "_")
}

type identity struct {
	name    string // qualified dotted name
	argsSig string // raw generic argument signature, may be empty
	counter int
}

// Namer allocates working keys and computes the final remapping. One Namer
// serves exactly one compilation session.
type Namer struct {
	// counters is the per-"qualified, no-id" occurrence counter.
	counters map[string]int
	// assigned pins the counter chosen for a given instance id the first
	// time it is seen, so the same underlying type keeps its counter for
	// the life of the pass.
	assigned map[string]int
	working  map[string]identity
}

func New() *Namer {
	return &Namer{
		counters: map[string]int{},
		assigned: map[string]int{},
		working:  map[string]identity{},
	}
}

// WorkingKey returns the guaranteed-unique key used during generation for
// the identity (name, argsSig, id): the fully qualified, counter-suffixed
// candidate. Calling it again with the same identity returns the same key.
func (n *Namer) WorkingKey(name, argsSig string, id int) string {
	qual := normalize(name + argsSig)
	instKey := fmt.Sprintf("%s#%d", qual, id)
	counter, ok := n.assigned[instKey]
	if !ok {
		n.counters[qual]++
		counter = n.counters[qual]
		n.assigned[instKey] = counter
	}
	wk := fmt.Sprintf("%s-%d", qual, counter)
	n.working[wk] = identity{name: name, argsSig: argsSig, counter: counter}
	return wk
}

// candidates lists key choices from most preferred (shortest trailing
// segment) to least (fully qualified with the occurrence counter). The last
// entry equals the working key and is unique by construction.
func (id identity) candidates() []string {
	segs := strings.Split(id.name, ".")
	args := normalize(id.argsSig)
	out := make([]string, 0, len(segs)+1)
	for i := len(segs) - 1; i >= 0; i-- {
		out = append(out, normalize(strings.Join(segs[i:], "."))+args)
	}
	out = append(out, fmt.Sprintf("%s-%d", normalize(id.name)+args, id.counter))
	return out
}

// Remap chooses the final key for every working key: the shortest candidate
// not claimed by any other working key, scanning working keys in sorted
// order so the outcome is independent of traversal order.
func (n *Namer) Remap() map[string]string {
	keys := make([]string, 0, len(n.working))
	for k := range n.working {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	claimed := map[string]string{}
	out := make(map[string]string, len(keys))
	for _, wk := range keys {
		for _, cand := range n.working[wk].candidates() {
			if owner, taken := claimed[cand]; !taken || owner == wk {
				claimed[cand] = wk
				out[wk] = cand
				break
			}
		}
	}
	return out
}
