package merkly

import (
	"fmt"
	"math/bits"
	"slices"

	"golang.org/x/sync/errgroup"
)

// Prove returns the proof for target within leaves.
//
// If target is not one of the leaves, the error is a [LeafNotFoundError],
// for any non-empty leaves.
// If target is present but leaves has fewer than two elements,
// or if leaves is empty, Prove returns an error wrapping [ErrInvalidInput],
// since no proof is meaningful for such a tree.
//
// When target occurs more than once, the first occurrence is proven.
// Use [*Engine.ProveIndex] to choose a specific position.
func (e *Engine) Prove(leaves []Hash, target Hash) (Proof, error) {
	if len(leaves) == 0 {
		return nil, checkProvable(leaves)
	}

	idx := slices.Index(leaves, target)
	if idx < 0 {
		return nil, LeafNotFoundError{Leaf: target}
	}
	if err := checkProvable(leaves); err != nil {
		return nil, err
	}

	e.warnUnbalanced(len(leaves))
	return e.proveIndex(leaves, idx, true), nil
}

// ProveIndex returns the proof for the leaf at position idx.
func (e *Engine) ProveIndex(leaves []Hash, idx int) (Proof, error) {
	if err := checkProvable(leaves); err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(leaves) {
		return nil, fmt.Errorf(
			"%w: leaf index %d out of range [0, %d)", ErrInvalidInput, idx, len(leaves),
		)
	}

	e.warnUnbalanced(len(leaves))
	return e.proveIndex(leaves, idx, true), nil
}

func checkProvable(leaves []Hash) error {
	if len(leaves) < 2 {
		return fmt.Errorf(
			"%w: proof requires at least 2 leaves (got %d)", ErrInvalidInput, len(leaves),
		)
	}
	return nil
}

// warnUnbalanced logs when a halving proof is requested over a leaf count
// whose halves do not line up with the pairwise reduction.
func (e *Engine) warnUnbalanced(nLeaves int) {
	if e.strategy != HalvingProofs || nLeaves&(nLeaves-1) == 0 {
		return
	}
	e.log.Warn(
		"Halving proof over non-power-of-two leaf count may not replay to the root",
		"n_leaves", nLeaves,
	)
}

func (e *Engine) proveIndex(leaves []Hash, idx int, allowParallel bool) Proof {
	if e.strategy == LevelProofs {
		return e.levelProof(leaves, idx)
	}

	parallel := allowParallel &&
		e.parallelThreshold > 0 &&
		len(leaves) >= e.parallelThreshold
	return e.halvingProof(leaves, idx, parallel)
}

// siblingRange is the half of a working range that does not contain the target,
// as half-open indices into the full leaf sequence.
type siblingRange struct {
	Start, End int
	Side       Side
}

// halvingRanges returns the sibling ranges for the leaf at idx,
// in root-to-leaf order.
//
// The target's position is tracked relative to the current working range
// at every step, so the branch decision is always made within that range.
func halvingRanges(nLeaves, idx int) []siblingRange {
	// The depth is at most ceil(log2(n)).
	ranges := make([]siblingRange, 0, bits.Len(uint(nLeaves)))

	lo, hi := 0, nLeaves
	for hi-lo > 1 {
		// A two-element range needs no special case:
		// the sibling half is a single leaf, which is its own root.
		mid := lo + (hi-lo)/2
		if idx < mid {
			ranges = append(ranges, siblingRange{Start: mid, End: hi, Side: Right})
			hi = mid
		} else {
			ranges = append(ranges, siblingRange{Start: lo, End: mid, Side: Left})
			lo = mid
		}
	}
	return ranges
}

func (e *Engine) halvingProof(leaves []Hash, idx int, parallel bool) Proof {
	ranges := halvingRanges(len(leaves), idx)

	// Ranges are root-to-leaf, and the proof is leaf-to-root,
	// so fill the proof from the back.
	proof := make(Proof, len(ranges))
	last := len(ranges) - 1

	if !parallel {
		for i, r := range ranges {
			proof[last-i] = ProofStep{
				Sibling: reduce(e.hasher, leaves[r.Start:r.End]),
				Side:    r.Side,
			}
		}
		return proof
	}

	// Every sibling range is independent,
	// and each goroutine writes to its own proof index.
	var g errgroup.Group
	g.SetLimit(e.maxWorkers)
	for i, r := range ranges {
		g.Go(func() error {
			proof[last-i] = ProofStep{
				Sibling: reduce(e.hasher, leaves[r.Start:r.End]),
				Side:    r.Side,
			}
			return nil
		})
	}
	_ = g.Wait() // Nothing returns an error.

	return proof
}

// levelProof derives a proof from the same level structure that [Root] builds.
func (e *Engine) levelProof(leaves []Hash, idx int) Proof {
	proof := make(Proof, 0, bits.Len(uint(len(leaves))))

	// Like reduce, the first level above the leaves goes in a new slice,
	// and every later level is computed in place.
	level := leaves
	buf := make([]Hash, (len(leaves)+1)/2)
	for len(level) > 1 {
		sibling := idx ^ 1
		if sibling < len(level) {
			side := Right
			if idx&1 == 1 {
				side = Left
			}
			proof = append(proof, ProofStep{Sibling: level[sibling], Side: side})
		}
		// Otherwise idx is the odd node being carried up, with no step.

		n := pairLevel(e.hasher, level, buf)
		level = buf[:n]
		idx >>= 1
	}

	return proof
}
