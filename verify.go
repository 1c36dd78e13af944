package merkly

import (
	"github.com/olivmath/merkly/mkhash"
)

// IncludedRoot replays proof starting from leaf and returns the resulting root.
//
// For each step, a [Left] sibling is combined as Node(sibling, current)
// and a [Right] sibling as Node(current, sibling).
// An empty proof returns leaf unchanged.
func IncludedRoot(h mkhash.Hasher, leaf Hash, proof Proof) Hash {
	cur := leaf
	for _, s := range proof {
		if s.Side == Left {
			cur = Combine(h, s.Sibling, cur)
		} else {
			cur = Combine(h, cur, s.Sibling)
		}
	}
	return cur
}

// Verify reports whether replaying proof from leaf reproduces root.
func Verify(h mkhash.Hasher, proof Proof, leaf, root Hash) bool {
	return IncludedRoot(h, leaf, proof) == root
}

// VerifyData is like [Verify], but first hashes raw content into a leaf
// with h's Leaf method.
func VerifyData(h mkhash.Hasher, proof Proof, data []byte, root Hash) bool {
	var leaf Hash
	h.Leaf(data, leaf[:0])
	return Verify(h, proof, leaf, root)
}
