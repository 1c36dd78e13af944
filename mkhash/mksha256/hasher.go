package mksha256

import (
	"crypto/sha256"

	"github.com/olivmath/merkly/mkhash"
)

const HashSize = sha256.Size

// Hasher is a [mkhash.Hasher] backed by SHA256 hashes.
//
// There is no domain separation between leaves and nodes,
// so that roots match other plain sha256(left || right) Merkle implementations.
type Hasher struct{}

func (Hasher) Leaf(in []byte, dst []byte) {
	h := sha256.New()
	_, _ = h.Write(in)
	h.Sum(dst)
}

func (Hasher) Node(left, right []byte, dst []byte) {
	h := sha256.New()
	_, _ = h.Write(left)
	_, _ = h.Write(right)
	h.Sum(dst)
}

var _ mkhash.Hasher = Hasher{}
