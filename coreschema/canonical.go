package coreschema

import (
	"github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"
	"github.com/goccy/go-json"
)

// Canonical returns RFC 8785 canonical JSON bytes of the wire form. Two
// structurally identical trees canonicalize to identical bytes regardless of
// map iteration order, which makes the result usable as a determinism check
// and as a cache fingerprint.
func Canonical(n *Node) ([]byte, error) {
	b, err := json.Marshal(n.Wire())
	if err != nil {
		return nil, err
	}
	return jsoncanonicalizer.Transform(b)
}
