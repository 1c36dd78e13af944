// Package mkkeccak contains the reference Keccak-256 [mkhash.Hasher].
//
// This is the legacy Keccak padding used by Ethereum,
// not the finalized SHA3-256 from FIPS 202;
// see [github.com/olivmath/merkly/mkhash/mksha3] for the latter.
package mkkeccak

import (
	"golang.org/x/crypto/sha3"

	"github.com/olivmath/merkly/mkhash"
)

const HashSize = 32

// Hasher is a [mkhash.Hasher] backed by Keccak-256 hashes.
//
// Leaf is keccak256(in), and Node is keccak256(left || right).
type Hasher struct{}

func (Hasher) Leaf(in []byte, dst []byte) {
	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write(in)
	h.Sum(dst)
}

func (Hasher) Node(left, right []byte, dst []byte) {
	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write(left)
	_, _ = h.Write(right)
	h.Sum(dst)
}

// Sum returns the Keccak-256 digest of in.
func Sum(in []byte) [HashSize]byte {
	var out [HashSize]byte
	Hasher{}.Leaf(in, out[:0])
	return out
}

var _ mkhash.Hasher = Hasher{}
