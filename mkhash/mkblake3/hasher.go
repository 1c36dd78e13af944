// Package mkblake3 contains a BLAKE3 [mkhash.Hasher].
package mkblake3

import (
	"github.com/zeebo/blake3"

	"github.com/olivmath/merkly/mkhash"
)

const HashSize = 32

// Hasher is a [mkhash.Hasher] backed by 256-bit BLAKE3 hashes.
type Hasher struct{}

func (Hasher) Leaf(in []byte, dst []byte) {
	h := blake3.New()
	_, _ = h.Write(in)
	h.Sum(dst)
}

func (Hasher) Node(left, right []byte, dst []byte) {
	h := blake3.New()
	_, _ = h.Write(left)
	_, _ = h.Write(right)
	h.Sum(dst)
}

var _ mkhash.Hasher = Hasher{}
