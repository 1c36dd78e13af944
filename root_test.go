package merkly_test

import (
	"crypto/sha256"
	"testing"

	"github.com/olivmath/merkly"
	"github.com/olivmath/merkly/mkhash"
	"github.com/olivmath/merkly/mkhash/mkkeccak"
	"github.com/olivmath/merkly/mkhash/mksha256"
	"github.com/olivmath/merkly/mkhash/mksha3"
	"github.com/stretchr/testify/require"
)

func TestRoot_keccak(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name   string
		leaves []string
		want   string
	}{
		{
			name:   "two leaves",
			leaves: []string{"a", "b"},
			want:   "805b21d846b189efaeb0377d6bb0d201b3872a363e607c25088f025b0c6ae1f8",
		},
		{
			name:   "four leaves",
			leaves: []string{"a", "b", "c", "d"},
			want:   "68203f90e9d07dc5859259d7536e87a6ba9d345f2552b5b9de2999ddce9ce1bf",
		},
		{
			name:   "five leaves",
			leaves: []string{"a", "b", "c", "d", "e"},
			want:   "1dd0d2a6ae466d665cb26e1a31f07c57ae5df7d2bc559cd5826d417be9141a5d",
		},
		{
			name:   "eight leaves",
			leaves: stringsAtoH(),
			want:   "cd07272f4955ddcfdac38ff36dff9d3e4353498923679ab548ba87e34648e4a3",
		},
		{
			name:   "nine leaves",
			leaves: append(stringsAtoH(), "1"),
			want:   "85d75312120b9d7cc325fef61d5c3b5de921a77f11049b187ddc5b90a3172c6d",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := merkly.Root(mkkeccak.Hasher{}, keccakLeaves(tc.leaves...))
			require.NoError(t, err)
			require.Equal(t, tc.want, got.String())
		})
	}
}

func TestRoot_otherHashers(t *testing.T) {
	t.Parallel()

	nine := append(stringsAtoH(), "1")

	for _, tc := range []struct {
		name  string
		h     mkhash.Hasher
		roots map[int]string
	}{
		{
			name: "sha256",
			h:    mksha256.Hasher{},
			roots: map[int]string{
				9: "44611cac12a28960fa9f8d8bf93d9d73944b1425f3ba41d9cffe45c3aa3403d6",
				8: "bd7c8a900be9b67ba7df5c78a652a8474aedd78adb5083e80e49d9479138a23f",
				5: "d71f8983ad4ee170f8129f1ebcdd7440be7798d8e1c80420bf11f1eced610dba",
				4: "14ede5e8e97ad9372327728f5099b95604a39593cac3bd38a343ad76205213e7",
				2: "e5a01fee14e0ed5c48714f22180f25ad8365b53f9779f79dc4a3d7e93963f94a",
			},
		},
		{
			name: "sha3",
			h:    mksha3.Hasher{},
			roots: map[int]string{
				9: "8e106437be21dfca61170ed413a185a73cd081a4a5760a95df4ccc5488874260",
				8: "463baccb1666a42a1156e67f5961be418728a5bd80a97fda6d5054496d7646dc",
				5: "b8efa384f64647583db7ea069c46ec746d4d8c0c1815040431db4134bc0b41fd",
				4: "5267fec4a5327f9d287233f95213afa39d3aad2fee1fa1384b032b79fb3441e8",
				2: "29df505440ebe180c00857e92b0694c56a33762b08944472492b0cbf6ec607e3",
			},
		},
		{
			name: "shake256",
			h:    mksha3.ShakeHasher{},
			roots: map[int]string{
				9: "bf4835202b9091df8d6e44c0e36094fc5dee200ef2aeb385299e0e73d289947a",
				8: "c82d4fe15c85db42ec73121b5c482d86b95b78e05db8f707cde754e2bde30195",
				5: "c79cb7cae8eeca849c11c804ccfde50216bbe143cd557cc0a8bb877c66496e4e",
				4: "565a2fdea5772b9dffdbb0081beeee36b2e9b952a8ef34fc5a58653fe4f9bd3d",
				2: "fb53027dcbe9bb65748239cf200d4512367aafe81c683d0584491bfe7b644279",
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			for n, want := range tc.roots {
				data := make([][]byte, n)
				for i, s := range nine[:n] {
					data[i] = []byte(s)
				}
				leaves := merkly.LeavesFromData(tc.h, data)

				got, err := merkly.Root(tc.h, leaves)
				require.NoError(t, err)
				require.Equal(t, want, got.String(), "%d leaves", n)
			}
		})
	}
}

func TestRoot_singleLeafIsItsOwnRoot(t *testing.T) {
	t.Parallel()

	leaves := keccakLeaves("a")
	got, err := merkly.Root(mkkeccak.Hasher{}, leaves)
	require.NoError(t, err)
	require.Equal(t, leaves[0], got)
}

func TestRoot_empty(t *testing.T) {
	t.Parallel()

	_, err := merkly.Root(mkkeccak.Hasher{}, nil)
	require.ErrorIs(t, err, merkly.ErrInvalidInput)
	require.ErrorContains(t, err, "empty tree")
}

func TestRoot_oddNodeCarriedUnchanged(t *testing.T) {
	t.Parallel()

	h := mkkeccak.Hasher{}
	leaves := keccakLeaves("a", "b", "c")

	got, err := merkly.Root(h, leaves)
	require.NoError(t, err)

	// c is not hashed with itself or rehashed alone.
	want := merkly.Combine(h, merkly.Combine(h, leaves[0], leaves[1]), leaves[2])
	require.Equal(t, want, got)
}

func TestRoot_doesNotModifyLeaves(t *testing.T) {
	t.Parallel()

	leaves := randomLeaves(t, 37)
	orig := append([]merkly.Hash(nil), leaves...)

	first, err := merkly.Root(mkkeccak.Hasher{}, leaves)
	require.NoError(t, err)
	require.Equal(t, orig, leaves)

	second, err := merkly.Root(mkkeccak.Hasher{}, leaves)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestRoot_orderMatters(t *testing.T) {
	t.Parallel()

	h := mkkeccak.Hasher{}
	ab, err := merkly.Root(h, keccakLeaves("a", "b"))
	require.NoError(t, err)
	ba, err := merkly.Root(h, keccakLeaves("b", "a"))
	require.NoError(t, err)

	require.NotEqual(t, ab, ba)
}

func TestRootBytes(t *testing.T) {
	t.Parallel()

	t.Run("matches Root", func(t *testing.T) {
		t.Parallel()

		leaves := keccakLeaves("a", "b", "c", "d")
		raw := make([][]byte, len(leaves))
		for i := range leaves {
			raw[i] = leaves[i][:]
		}

		got, err := merkly.RootBytes(mkkeccak.Hasher{}, raw)
		require.NoError(t, err)
		require.Equal(t, "68203f90e9d07dc5859259d7536e87a6ba9d345f2552b5b9de2999ddce9ce1bf", got.String())
	})

	t.Run("wrong leaf size", func(t *testing.T) {
		t.Parallel()

		_, err := merkly.RootBytes(mkkeccak.Hasher{}, [][]byte{make([]byte, 32), make([]byte, 31)})
		require.ErrorIs(t, err, merkly.ErrInvalidInput)

		var lse merkly.LeafSizeError
		require.ErrorAs(t, err, &lse)
		require.Equal(t, 1, lse.Index)
		require.Equal(t, 31, lse.Size)
	})
}

func TestCombine(t *testing.T) {
	t.Parallel()

	c, d := keccakLeaves("c", "d")[0], keccakLeaves("d")[0]
	got := merkly.Combine(mkkeccak.Hasher{}, c, d)
	require.Equal(t, "d253a52d4cb00de2895e85f2529e2976e6aaaa5c18106b68ab66813e14415669", got.String())

	// Combine is Node over the concatenation.
	s := mksha256.Hasher{}
	want := sha256.Sum256(append(c[:], d[:]...))
	require.Equal(t, merkly.Hash(want), merkly.Combine(s, c, d))
}
