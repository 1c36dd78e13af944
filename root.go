package merkly

import (
	"github.com/olivmath/merkly/mkhash"
)

// Root reduces leaves to the tree's root hash.
//
// Each level is built by combining adjacent pairs
// (0 with 1, 2 with 3, and so on) with h's Node method.
// If a level has odd width, its last element is carried up unchanged.
// The reduction repeats until one value remains.
//
// A single leaf is its own root, without any hashing.
// An empty sequence has no root, and Root returns an error
// wrapping [ErrInvalidInput].
//
// Root does not modify leaves.
func Root(h mkhash.Hasher, leaves []Hash) (Hash, error) {
	if len(leaves) == 0 {
		return Hash{}, errEmptyTree
	}
	return reduce(h, leaves), nil
}

// RootBytes is like [Root] but accepts raw leaf buffers,
// each of which must be exactly [HashSize] bytes.
func RootBytes(h mkhash.Hasher, raw [][]byte) (Hash, error) {
	leaves, err := LeavesFromBytes(raw)
	if err != nil {
		return Hash{}, err
	}
	return Root(h, leaves)
}

// Combine returns h's Node hash of left and right.
func Combine(h mkhash.Hasher, left, right Hash) Hash {
	var out Hash
	h.Node(left[:], right[:], out[:0])
	return out
}

// reduce is the allocation-aware core of Root.
// The caller must ensure leaves is not empty.
func reduce(h mkhash.Hasher, leaves []Hash) Hash {
	if len(leaves) == 1 {
		return leaves[0]
	}

	// The first level is written into a new slice
	// so that leaves are never modified.
	// Every later level is written in place over the previous one.
	level := make([]Hash, (len(leaves)+1)/2)
	n := pairLevel(h, leaves, level)
	for n > 1 {
		n = pairLevel(h, level[:n], level)
	}
	return level[0]
}

// pairLevel writes the level above src into dst, returning its width.
//
// dst may be the same slice as src:
// output i is only written after reading inputs 2i and 2i+1,
// and later iterations only read inputs beyond those.
func pairLevel(h mkhash.Hasher, src, dst []Hash) int {
	n := 0
	for i := 0; i+1 < len(src); i += 2 {
		dst[n] = Combine(h, src[i], src[i+1])
		n++
	}
	if len(src)&1 == 1 {
		// Odd node is promoted as-is.
		dst[n] = src[len(src)-1]
		n++
	}
	return n
}
