// Package merkly builds binary Merkle trees over fixed-size leaf hashes,
// and derives authentication paths (proofs) for individual leaves.
//
// The leaves are an ordered sequence of 32-byte [Hash] values.
// [Root] reduces them level by level,
// combining adjacent pairs left to right.
// When a level has an odd width, its last element is carried up unchanged:
// it is neither duplicated nor hashed with itself.
//
// A [Proof] is an ordered sequence of [ProofStep] values,
// nearest the leaf first.
// Each step holds a sibling hash and the [Side] that sibling occupies
// when it is combined with the running value.
// [IncludedRoot] replays a proof from a leaf.
//
// The [Engine] type ties a [mkhash.Hasher] to a [ProofStrategy].
// The default strategy, [HalvingProofs], recursively splits the leaves
// into two contiguous halves and summarizes the half not containing the target
// with [Root].
// That grouping matches the pairwise reduction only when the leaf count
// is a power of two.
// The [LevelProofs] strategy follows the reduction exactly,
// so its proofs always replay to the root.
//
// Hashing is pluggable through [mkhash.Hasher].
// Keccak-256 ([mkkeccak.Hasher]) is used when no hasher is configured.
//
// [mkkeccak.Hasher]: https://pkg.go.dev/github.com/olivmath/merkly/mkhash/mkkeccak#Hasher
package merkly
