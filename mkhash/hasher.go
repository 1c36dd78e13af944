// Package mkhash defines the hashing contract used by the merkly tree engine,
// and an adapter for plugging in a single digest callback.
//
// Concrete implementations live in the subpackages
// (for example [github.com/olivmath/merkly/mkhash/mkkeccak]),
// and every implementation should pass
// [github.com/olivmath/merkly/mkhash/mkhashtest.TestHasherCompliance].
package mkhash

// HashSize is the size in bytes of every leaf and node hash.
const HashSize = 32

// Hasher is the interface for hashing leaves and nodes.
//
// Leaf hashes raw user content into a tree leaf.
// The tree engine itself never calls Leaf;
// it only exists so that callers can turn arbitrary content
// into leaves with the same function that combines nodes.
//
// Node combines two child hashes into their parent.
// Node must be order sensitive:
// in general Node(a, b) and Node(b, a) must produce different output,
// otherwise the sides recorded in a proof are meaningless.
//
// To be allocation-efficient, the Hasher implementation
// must append exactly [HashSize] bytes of output to dst,
// instead of creating a new byte slice.
// Hasher must not retain references to the dst slice.
//
// Furthermore, Hasher methods must be safe to call concurrently.
type Hasher interface {
	Leaf(in []byte, dst []byte)
	Node(left, right []byte, dst []byte)
}

// HasherFunc adapts a single digest function to the [Hasher] interface.
//
// The function must append a [HashSize]-byte digest of in to dst.
// Leaf passes the raw input straight through,
// and Node passes the concatenation of left and right.
// This matches a host-supplied callback that only knows how to digest
// one contiguous input buffer.
type HasherFunc func(in []byte, dst []byte)

func (f HasherFunc) Leaf(in []byte, dst []byte) {
	f(in, dst)
}

func (f HasherFunc) Node(left, right []byte, dst []byte) {
	// Two hashes fit on the stack in the common case.
	var buf [2 * HashSize]byte
	in := buf[:0]
	if len(left)+len(right) > len(buf) {
		in = make([]byte, 0, len(left)+len(right))
	}
	in = append(in, left...)
	in = append(in, right...)
	f(in, dst)
}
