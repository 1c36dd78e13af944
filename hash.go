package merkly

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/olivmath/merkly/mkhash"
)

// HashSize is the size in bytes of every leaf and node.
const HashSize = mkhash.HashSize

// Hash is a leaf or node value.
// Leaves and interior nodes share the same representation.
type Hash [HashSize]byte

// HashFromBytes copies b into a Hash.
// It returns an error wrapping [ErrInvalidInput]
// if b is not exactly [HashSize] bytes.
func HashFromBytes(b []byte) (Hash, error) {
	var h Hash
	if len(b) != HashSize {
		return h, fmt.Errorf(
			"%w: hash must be %d bytes (got %d)", ErrInvalidInput, HashSize, len(b),
		)
	}
	copy(h[:], b)
	return h, nil
}

// ParseHash decodes a hex string, with or without a 0x prefix, into a Hash.
func ParseHash(s string) (Hash, error) {
	var h Hash
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s) != 2*HashSize {
		return h, fmt.Errorf(
			"%w: hex hash must be %d characters (got %d)", ErrInvalidInput, 2*HashSize, len(s),
		)
	}
	if _, err := hex.Decode(h[:], []byte(s)); err != nil {
		return h, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return h, nil
}

// String returns the lowercase hex encoding of h, without a prefix.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

func (h Hash) MarshalText() ([]byte, error) {
	out := make([]byte, 2*HashSize)
	hex.Encode(out, h[:])
	return out, nil
}

func (h *Hash) UnmarshalText(text []byte) error {
	parsed, err := ParseHash(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// LeavesFromBytes converts raw leaf buffers into Hash values.
// Every buffer must be exactly [HashSize] bytes;
// otherwise a [LeafSizeError] is returned for the first offender.
func LeavesFromBytes(raw [][]byte) ([]Hash, error) {
	leaves := make([]Hash, len(raw))
	for i, b := range raw {
		if len(b) != HashSize {
			return nil, LeafSizeError{Index: i, Size: len(b)}
		}
		copy(leaves[i][:], b)
	}
	return leaves, nil
}

// LeavesFromData hashes each element of data with h's Leaf method.
// This is the usual way to build leaves from arbitrary user content.
func LeavesFromData(h mkhash.Hasher, data [][]byte) []Hash {
	leaves := make([]Hash, len(data))
	for i, d := range data {
		h.Leaf(d, leaves[i][:0])
	}
	return leaves
}
