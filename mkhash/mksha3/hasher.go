// Package mksha3 contains [mkhash.Hasher] implementations
// from the FIPS 202 SHA-3 family.
package mksha3

import (
	"golang.org/x/crypto/sha3"

	"github.com/olivmath/merkly/mkhash"
)

const HashSize = 32

// Hasher is a [mkhash.Hasher] backed by SHA3-256.
type Hasher struct{}

func (Hasher) Leaf(in []byte, dst []byte) {
	h := sha3.New256()
	_, _ = h.Write(in)
	h.Sum(dst)
}

func (Hasher) Node(left, right []byte, dst []byte) {
	h := sha3.New256()
	_, _ = h.Write(left)
	_, _ = h.Write(right)
	h.Sum(dst)
}

// ShakeHasher is a [mkhash.Hasher] backed by SHAKE256,
// squeezing exactly [HashSize] bytes of output.
type ShakeHasher struct{}

func (ShakeHasher) Leaf(in []byte, dst []byte) {
	h := sha3.NewShake256()
	_, _ = h.Write(in)
	squeeze(h, dst)
}

func (ShakeHasher) Node(left, right []byte, dst []byte) {
	h := sha3.NewShake256()
	_, _ = h.Write(left)
	_, _ = h.Write(right)
	squeeze(h, dst)
}

// squeeze appends HashSize bytes read from h to dst.
// The caller owns dst's backing array, so we only write into its spare capacity.
func squeeze(h sha3.ShakeHash, dst []byte) {
	var out [HashSize]byte
	_, _ = h.Read(out[:])
	_ = append(dst, out[:]...)
}

var (
	_ mkhash.Hasher = Hasher{}
	_ mkhash.Hasher = ShakeHasher{}
)
