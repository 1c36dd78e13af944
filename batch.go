package merkly

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// ProveAll returns the proof for every leaf position,
// aligned one-to-one with leaves.
//
// Work is spread over at most [EngineConfig.MaxWorkers] goroutines.
// If ctx is canceled before all proofs are built,
// ProveAll returns the context's error and no proofs.
func (e *Engine) ProveAll(ctx context.Context, leaves []Hash) ([]Proof, error) {
	if err := checkProvable(leaves); err != nil {
		return nil, err
	}

	idxs := make([]int, len(leaves))
	for i := range idxs {
		idxs[i] = i
	}
	return e.proveIndexes(ctx, leaves, idxs)
}

// ProveBatch returns one proof per target, in the same order as targets.
// Each target resolves to its first occurrence in leaves.
// If any target is missing, ProveBatch returns a [LeafNotFoundError]
// before doing any hashing,
// and it checks for missing targets before rejecting a single-leaf tree.
func (e *Engine) ProveBatch(ctx context.Context, leaves []Hash, targets []Hash) ([]Proof, error) {
	if len(leaves) == 0 {
		return nil, checkProvable(leaves)
	}

	first := make(map[Hash]int, len(leaves))
	for i := len(leaves) - 1; i >= 0; i-- {
		first[leaves[i]] = i
	}

	idxs := make([]int, len(targets))
	for i, t := range targets {
		idx, ok := first[t]
		if !ok {
			return nil, fmt.Errorf("target %d: %w", i, LeafNotFoundError{Leaf: t})
		}
		idxs[i] = idx
	}
	if err := checkProvable(leaves); err != nil {
		return nil, err
	}

	return e.proveIndexes(ctx, leaves, idxs)
}

func (e *Engine) proveIndexes(ctx context.Context, leaves []Hash, idxs []int) ([]Proof, error) {
	e.warnUnbalanced(len(leaves))

	proofs := make([]Proof, len(idxs))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.maxWorkers)
	for i, idx := range idxs {
		if gCtx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			// Proofs are already spread across workers,
			// so don't fan out again for the siblings.
			proofs[i] = e.proveIndex(leaves, idx, false)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// The loop may have stopped early without any goroutine observing the cancellation.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.log.Debug("Built batch proofs", "n_leaves", len(leaves), "n_proofs", len(proofs))
	return proofs, nil
}
