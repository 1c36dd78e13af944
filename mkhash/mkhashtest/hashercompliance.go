package mkhashtest

import (
	"testing"

	"github.com/olivmath/merkly/mkhash"
	"github.com/stretchr/testify/require"
)

type HasherFactory func() mkhash.Hasher

// TestHasherCompliance runs the behaviors every [mkhash.Hasher]
// must satisfy for use in a merkly tree.
func TestHasherCompliance(t *testing.T, f HasherFactory) {
	t.Run("leaf is deterministic", func(t *testing.T) {
		t.Parallel()

		h := f()

		var dst01, dst02 [mkhash.HashSize]byte
		h.Leaf([]byte("deterministic_data"), dst01[:0])
		h.Leaf([]byte("deterministic_data"), dst02[:0])

		require.Equal(t, dst01, dst02)
		require.NotZero(t, dst01)
	})

	t.Run("leaf respects input", func(t *testing.T) {
		t.Parallel()

		h := f()

		var dst01, dst02 [mkhash.HashSize]byte
		h.Leaf([]byte("hello"), dst01[:0])
		h.Leaf([]byte("world"), dst02[:0])

		require.NotEqual(t, dst01, dst02)
	})

	t.Run("node is deterministic", func(t *testing.T) {
		t.Parallel()

		h := f()
		left, right := leafPair(h)

		var dst01, dst02 [mkhash.HashSize]byte
		h.Node(left[:], right[:], dst01[:0])
		h.Node(left[:], right[:], dst02[:0])

		require.Equal(t, dst01, dst02)
	})

	t.Run("node respects order", func(t *testing.T) {
		t.Parallel()

		h := f()
		left, right := leafPair(h)

		var lr, rl [mkhash.HashSize]byte
		h.Node(left[:], right[:], lr[:0])
		h.Node(right[:], left[:], rl[:0])

		require.NotEqual(t, lr, rl)
	})

	t.Run("output is appended to dst", func(t *testing.T) {
		t.Parallel()

		h := f()
		left, right := leafPair(h)

		// A prefix in dst must be preserved,
		// and exactly HashSize bytes must follow it.
		dst := make([]byte, 3, 3+mkhash.HashSize+8)
		copy(dst, "pre")
		h.Node(left[:], right[:], dst)

		got := dst[:3+mkhash.HashSize]
		require.Equal(t, "pre", string(got[:3]))

		var want [mkhash.HashSize]byte
		h.Node(left[:], right[:], want[:0])
		require.Equal(t, want[:], got[3:])

		// Nothing past HashSize was written.
		require.Equal(t, make([]byte, 8), dst[:cap(dst)][3+mkhash.HashSize:])
	})

	t.Run("safe for concurrent use", func(t *testing.T) {
		t.Parallel()

		h := f()
		left, right := leafPair(h)

		var want [mkhash.HashSize]byte
		h.Node(left[:], right[:], want[:0])

		const n = 16
		results := make(chan [mkhash.HashSize]byte, n)
		for range n {
			go func() {
				var got [mkhash.HashSize]byte
				h.Node(left[:], right[:], got[:0])
				results <- got
			}()
		}
		for range n {
			require.Equal(t, want, <-results)
		}
	})
}

func leafPair(h mkhash.Hasher) (left, right [mkhash.HashSize]byte) {
	h.Leaf([]byte("left"), left[:0])
	h.Leaf([]byte("right"), right[:0])
	return left, right
}
