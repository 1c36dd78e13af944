package mkkeccak_test

import (
	"encoding/hex"
	"testing"

	"github.com/olivmath/merkly/mkhash"
	"github.com/olivmath/merkly/mkhash/mkkeccak"
	"github.com/olivmath/merkly/mkhash/mkhashtest"
	"github.com/stretchr/testify/require"
)

func TestCompliance(t *testing.T) {
	t.Parallel()

	mkhashtest.TestHasherCompliance(t, func() mkhash.Hasher {
		return mkkeccak.Hasher{}
	})
}

func TestHasher_Leaf_knownValues(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]string{
		"a":        "3ac225168df54212a25c1c01fd35bebfea408fdac2e31ddd6f80a4bbf9a5f1cb",
		"b":        "b5553de315e0edf504d9150af82dafa5c4667fa618ed0a6f19c69b41166c5510",
		"merkle":   "326fe0d8a70ab934a7bf9d1323c6d87ee37bbe70079f82e72203b1e07c0c185c",
		"ethereum": "541111248b45b7a8dc3f5579f630e74cb01456ea6ac067d3f4d793245a255155",
	} {
		got := mkkeccak.Sum([]byte(in))
		require.Equal(t, want, hex.EncodeToString(got[:]), "input %q", in)
	}
}

func TestHasher_Node_concatenates(t *testing.T) {
	t.Parallel()

	// keccak(c) || keccak(d) from the "a", "b", "c", "d" fixture.
	c := mkkeccak.Sum([]byte("c"))
	d := mkkeccak.Sum([]byte("d"))

	var got [mkkeccak.HashSize]byte
	mkkeccak.Hasher{}.Node(c[:], d[:], got[:0])
	require.Equal(
		t,
		"d253a52d4cb00de2895e85f2529e2976e6aaaa5c18106b68ab66813e14415669",
		hex.EncodeToString(got[:]),
	)

	want := mkkeccak.Sum(append(c[:], d[:]...))
	require.Equal(t, want, got)
}
