package merkly_test

import (
	"fmt"
	"testing"

	"github.com/olivmath/merkly"
	"github.com/olivmath/merkly/mkhash/mkkeccak"
	"github.com/stretchr/testify/require"
)

func TestEngine_Prove_fourLeaves(t *testing.T) {
	t.Parallel()

	e := newEngine(t, merkly.EngineConfig{})
	leaves := keccakLeaves("a", "b", "c", "d")

	proof, err := e.Prove(leaves, leaves[0])
	require.NoError(t, err)

	require.Equal(t, merkly.Proof{
		{
			Sibling: mustParseHash(t, "b5553de315e0edf504d9150af82dafa5c4667fa618ed0a6f19c69b41166c5510"),
			Side:    merkly.Right,
		},
		{
			Sibling: mustParseHash(t, "d253a52d4cb00de2895e85f2529e2976e6aaaa5c18106b68ab66813e14415669"),
			Side:    merkly.Right,
		},
	}, proof)

	root, err := e.Root(leaves)
	require.NoError(t, err)
	require.True(t, e.Verify(proof, leaves[0], root))
}

func TestEngine_Prove_eightLeaves(t *testing.T) {
	t.Parallel()

	e := newEngine(t, merkly.EngineConfig{})
	leaves := keccakLeaves(stringsAtoH()...)

	// "f" is at index 5: right half, then left quarter, then right leaf.
	proof, err := e.Prove(leaves, leaves[5])
	require.NoError(t, err)

	require.Equal(t, merkly.Proof{
		{
			Sibling: mustParseHash(t, "a8982c89d80987fb9a510e25981ee9170206be21af3c8e0eb312ef1d3382e761"),
			Side:    merkly.Left,
		},
		{
			Sibling: mustParseHash(t, "e18a5c2ee5202ecdefed683f03145b1343304dbed01aecb94032b7f801844f0a"),
			Side:    merkly.Right,
		},
		{
			Sibling: mustParseHash(t, "68203f90e9d07dc5859259d7536e87a6ba9d345f2552b5b9de2999ddce9ce1bf"),
			Side:    merkly.Left,
		},
	}, proof)
	require.Equal(t, leaves[4], proof[0].Sibling)
}

func TestEngine_Prove_sixteenLeavesAllVerify(t *testing.T) {
	t.Parallel()

	e := newEngine(t, merkly.EngineConfig{})
	leaves := keccakLeaves(
		"a", "b", "c", "d", "e", "f", "g", "h",
		"1", "2", "3", "4", "5", "6", "7", "8",
	)
	root, err := e.Root(leaves)
	require.NoError(t, err)

	for i, leaf := range leaves {
		proof, err := e.Prove(leaves, leaf)
		require.NoError(t, err)
		require.Len(t, proof, 4)
		require.True(t, e.Verify(proof, leaf, root), "leaf %d", i)
	}
}

func TestEngine_Prove_powersOfTwoReplay(t *testing.T) {
	t.Parallel()

	for _, strategy := range []merkly.ProofStrategy{merkly.HalvingProofs, merkly.LevelProofs} {
		t.Run(strategy.String(), func(t *testing.T) {
			t.Parallel()

			e := newEngine(t, merkly.EngineConfig{ProofStrategy: strategy})
			leaves := randomLeaves(t, 64)

			for n := 2; n <= len(leaves); n *= 2 {
				root, err := e.Root(leaves[:n])
				require.NoError(t, err)

				for i := range n {
					proof, err := e.ProveIndex(leaves[:n], i)
					require.NoError(t, err)
					require.True(t, e.Verify(proof, leaves[i], root), "n=%d i=%d", n, i)
				}
			}
		})
	}
}

func TestEngine_Prove_halvingSplitsContiguousRanges(t *testing.T) {
	t.Parallel()

	// With five leaves the halves are [0,2) and [2,5),
	// so the first sibling of leaf 0 is the root of c, d, e.
	h := mkkeccak.Hasher{}
	e := newEngine(t, merkly.EngineConfig{Hasher: h})
	leaves := keccakLeaves("a", "b", "c", "d", "e")

	proof, err := e.Prove(leaves, leaves[0])
	require.NoError(t, err)

	cde, err := merkly.Root(h, leaves[2:])
	require.NoError(t, err)
	require.Equal(t, merkly.Proof{
		{Sibling: leaves[1], Side: merkly.Right},
		{Sibling: cde, Side: merkly.Right},
	}, proof)

	// That grouping differs from the pairwise reduction.
	root, err := e.Root(leaves)
	require.NoError(t, err)
	require.False(t, e.Verify(proof, leaves[0], root))
}

func TestEngine_Prove_indexResolvedWithinRange(t *testing.T) {
	t.Parallel()

	// Leaf 4 of 5 falls in the right half [2,5),
	// then the right half [3,5) of that range,
	// then the right half of the final pair.
	e := newEngine(t, merkly.EngineConfig{})
	leaves := keccakLeaves("a", "b", "c", "d", "e")

	proof, err := e.ProveIndex(leaves, 4)
	require.NoError(t, err)

	ab, err := e.Root(leaves[:2])
	require.NoError(t, err)
	require.Equal(t, merkly.Proof{
		{Sibling: leaves[3], Side: merkly.Left},
		{Sibling: leaves[2], Side: merkly.Left},
		{Sibling: ab, Side: merkly.Left},
	}, proof)
}

func TestEngine_Prove_levelAlwaysReplays(t *testing.T) {
	t.Parallel()

	e := newEngine(t, merkly.EngineConfig{ProofStrategy: merkly.LevelProofs})
	leaves := randomLeaves(t, 40)

	for n := 2; n <= len(leaves); n++ {
		root, err := e.Root(leaves[:n])
		require.NoError(t, err)

		for i := range n {
			proof, err := e.ProveIndex(leaves[:n], i)
			require.NoError(t, err)
			require.True(t, e.Verify(proof, leaves[i], root), "n=%d i=%d", n, i)
		}
	}
}

func TestEngine_Prove_levelCarriedNodeHasNoStep(t *testing.T) {
	t.Parallel()

	h := mkkeccak.Hasher{}
	e := newEngine(t, merkly.EngineConfig{Hasher: h, ProofStrategy: merkly.LevelProofs})
	leaves := keccakLeaves("a", "b", "c")

	proof, err := e.ProveIndex(leaves, 2)
	require.NoError(t, err)
	require.Equal(t, merkly.Proof{
		{Sibling: merkly.Combine(h, leaves[0], leaves[1]), Side: merkly.Left},
	}, proof)
}

func TestEngine_Prove_levelMatchesHalvingForPowersOfTwo(t *testing.T) {
	t.Parallel()

	halving := newEngine(t, merkly.EngineConfig{ProofStrategy: merkly.HalvingProofs})
	level := newEngine(t, merkly.EngineConfig{ProofStrategy: merkly.LevelProofs})
	leaves := randomLeaves(t, 32)

	for n := 2; n <= len(leaves); n *= 2 {
		for i := range n {
			hp, err := halving.ProveIndex(leaves[:n], i)
			require.NoError(t, err)
			lp, err := level.ProveIndex(leaves[:n], i)
			require.NoError(t, err)
			require.Equal(t, hp, lp, "n=%d i=%d", n, i)
		}
	}
}

func TestEngine_Prove_parallelMatchesSequential(t *testing.T) {
	t.Parallel()

	seq := newEngine(t, merkly.EngineConfig{})
	par := newEngine(t, merkly.EngineConfig{ParallelThreshold: 2, MaxWorkers: 4})
	leaves := randomLeaves(t, 300)

	for _, i := range []int{0, 1, 149, 150, 298, 299} {
		want, err := seq.ProveIndex(leaves, i)
		require.NoError(t, err)
		got, err := par.ProveIndex(leaves, i)
		require.NoError(t, err)
		require.Equal(t, want, got, "index %d", i)
	}
}

func TestEngine_Prove_duplicateUsesFirstOccurrence(t *testing.T) {
	t.Parallel()

	e := newEngine(t, merkly.EngineConfig{})
	leaves := keccakLeaves("a", "b", "a", "d")

	proof, err := e.Prove(leaves, leaves[0])
	require.NoError(t, err)

	want, err := e.ProveIndex(leaves, 0)
	require.NoError(t, err)
	require.Equal(t, want, proof)

	other, err := e.ProveIndex(leaves, 2)
	require.NoError(t, err)
	require.NotEqual(t, want, other)
}

func TestEngine_Prove_errors(t *testing.T) {
	t.Parallel()

	e := newEngine(t, merkly.EngineConfig{})

	t.Run("leaf not found", func(t *testing.T) {
		t.Parallel()

		leaves := keccakLeaves("a", "b", "c", "d")
		missing := keccakLeaves("x")[0]

		_, err := e.Prove(leaves, missing)
		require.ErrorIs(t, err, merkly.ErrLeafNotFound)
		require.NotErrorIs(t, err, merkly.ErrInvalidInput)

		var lnf merkly.LeafNotFoundError
		require.ErrorAs(t, err, &lnf)
		require.Equal(t, missing, lnf.Leaf)
		require.ErrorContains(t, err, "does not exist in the tree")
	})

	for n := range 2 {
		t.Run(fmt.Sprintf("%d leaves", n), func(t *testing.T) {
			t.Parallel()

			leaves := keccakLeaves("a")[:n]
			_, err := e.Prove(leaves, keccakLeaves("a")[0])
			require.ErrorIs(t, err, merkly.ErrInvalidInput)

			_, err = e.ProveIndex(leaves, 0)
			require.ErrorIs(t, err, merkly.ErrInvalidInput)
		})
	}

	t.Run("1 leaf, absent target", func(t *testing.T) {
		t.Parallel()

		_, err := e.Prove(keccakLeaves("a"), keccakLeaves("z")[0])
		require.ErrorIs(t, err, merkly.ErrLeafNotFound)
		require.NotErrorIs(t, err, merkly.ErrInvalidInput)
	})

	t.Run("index out of range", func(t *testing.T) {
		t.Parallel()

		leaves := keccakLeaves("a", "b")
		_, err := e.ProveIndex(leaves, 2)
		require.ErrorIs(t, err, merkly.ErrInvalidInput)

		_, err = e.ProveIndex(leaves, -1)
		require.ErrorIs(t, err, merkly.ErrInvalidInput)
	})
}

func TestNewEngine_invalidConfig(t *testing.T) {
	t.Parallel()

	t.Run("nil logger", func(t *testing.T) {
		t.Parallel()

		require.PanicsWithError(t, "BUG: NewEngine requires a non-nil logger", func() {
			_ = merkly.NewEngine(nil, merkly.EngineConfig{})
		})
	})

	for name, cfg := range map[string]merkly.EngineConfig{
		"strategy":           {ProofStrategy: 9},
		"parallel threshold": {ParallelThreshold: -1},
		"max workers":        {MaxWorkers: -1},
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			require.Panics(t, func() {
				_ = newEngine(t, cfg)
			})
		})
	}
}

func TestParseProofStrategy(t *testing.T) {
	t.Parallel()

	for _, s := range []merkly.ProofStrategy{merkly.HalvingProofs, merkly.LevelProofs} {
		got, err := merkly.ParseProofStrategy(s.String())
		require.NoError(t, err)
		require.Equal(t, s, got)
	}

	_, err := merkly.ParseProofStrategy("bogus")
	require.Error(t, err)
}
