package merkly_test

import (
	"testing"

	"github.com/olivmath/merkly"
	"github.com/olivmath/merkly/internal/mtest"
	"github.com/olivmath/merkly/mkhash/mkkeccak"
	"github.com/stretchr/testify/require"
)

// keccakLeaves returns the Keccak-256 leaf hash of each string.
func keccakLeaves(in ...string) []merkly.Hash {
	data := make([][]byte, len(in))
	for i, s := range in {
		data[i] = []byte(s)
	}
	return merkly.LeavesFromData(mkkeccak.Hasher{}, data)
}

func mustParseHash(t *testing.T, s string) merkly.Hash {
	t.Helper()

	h, err := merkly.ParseHash(s)
	require.NoError(t, err)
	return h
}

func randomLeaves(t *testing.T, n int) []merkly.Hash {
	raw := mtest.RandomLeavesForTest(t, n)
	out := make([]merkly.Hash, n)
	for i, r := range raw {
		out[i] = merkly.Hash(r)
	}
	return out
}

func newEngine(t *testing.T, cfg merkly.EngineConfig) *merkly.Engine {
	t.Helper()

	return merkly.NewEngine(mtest.NewLogger(t), cfg)
}

func stringsAtoH() []string {
	return []string{"a", "b", "c", "d", "e", "f", "g", "h"}
}

