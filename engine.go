package merkly

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/olivmath/merkly/mkhash"
	"github.com/olivmath/merkly/mkhash/mkkeccak"
)

// ProofStrategy selects how [*Engine.Prove] derives a proof.
type ProofStrategy uint8

const (
	// HalvingProofs recursively splits the working range into two contiguous halves,
	// summarizing the half without the target through [Root].
	//
	// This grouping matches [Root] only when the leaf count is a power of two.
	// For other counts, the proof follows the halving algorithm exactly,
	// but replaying it may not reproduce the tree's root.
	HalvingProofs ProofStrategy = iota

	// LevelProofs walks the same level-by-level pairing as [Root].
	// A node carried up on an odd-width level contributes no step.
	// These proofs always replay to the root,
	// and they are identical to HalvingProofs for power-of-two leaf counts.
	LevelProofs
)

func (s ProofStrategy) String() string {
	switch s {
	case HalvingProofs:
		return "halving"
	case LevelProofs:
		return "level"
	default:
		return fmt.Sprintf("ProofStrategy(%d)", uint8(s))
	}
}

// ParseProofStrategy is the inverse of [ProofStrategy.String].
func ParseProofStrategy(s string) (ProofStrategy, error) {
	switch s {
	case "halving":
		return HalvingProofs, nil
	case "level":
		return LevelProofs, nil
	default:
		return 0, fmt.Errorf("unknown proof strategy %q", s)
	}
}

// EngineConfig is the configuration passed to [NewEngine].
type EngineConfig struct {
	// How to hash nodes.
	// Defaults to Keccak-256 if nil.
	Hasher mkhash.Hasher

	ProofStrategy ProofStrategy

	// When positive, halving proofs over at least this many leaves
	// compute their sibling subtree roots concurrently.
	// The output is identical either way.
	// Zero disables concurrent sibling computation.
	ParallelThreshold int

	// Upper bound on concurrent work in [*Engine.ProveAll] and [*Engine.ProveBatch],
	// and in parallel sibling computation.
	// Defaults to GOMAXPROCS when zero.
	MaxWorkers int
}

// Engine computes roots and proofs with a fixed hasher and proof strategy.
//
// An Engine holds no mutable state,
// so its methods are safe to call concurrently.
type Engine struct {
	log *slog.Logger

	hasher   mkhash.Hasher
	strategy ProofStrategy

	parallelThreshold int
	maxWorkers        int
}

// NewEngine returns a new Engine with the given configuration.
// The logger is required.
func NewEngine(log *slog.Logger, cfg EngineConfig) *Engine {
	if log == nil {
		panic(errors.New("BUG: NewEngine requires a non-nil logger"))
	}
	if cfg.ProofStrategy > LevelProofs {
		panic(fmt.Errorf(
			"BUG: invalid proof strategy %d", cfg.ProofStrategy,
		))
	}
	if cfg.ParallelThreshold < 0 {
		panic(fmt.Errorf(
			"BUG: ParallelThreshold must be non-negative (got %d)", cfg.ParallelThreshold,
		))
	}
	if cfg.MaxWorkers < 0 {
		panic(fmt.Errorf(
			"BUG: MaxWorkers must be non-negative (got %d)", cfg.MaxWorkers,
		))
	}

	h := cfg.Hasher
	if h == nil {
		h = mkkeccak.Hasher{}
	}

	maxWorkers := cfg.MaxWorkers
	if maxWorkers == 0 {
		maxWorkers = runtime.GOMAXPROCS(0)
	}

	return &Engine{
		log: log,

		hasher:   h,
		strategy: cfg.ProofStrategy,

		parallelThreshold: cfg.ParallelThreshold,
		maxWorkers:        maxWorkers,
	}
}

// Hasher returns the hasher used by e.
func (e *Engine) Hasher() mkhash.Hasher {
	return e.hasher
}

// Strategy returns the proof strategy used by e.
func (e *Engine) Strategy() ProofStrategy {
	return e.strategy
}

// Root is shorthand for [Root] with e's hasher.
func (e *Engine) Root(leaves []Hash) (Hash, error) {
	return Root(e.hasher, leaves)
}

// Combine is shorthand for [Combine] with e's hasher.
func (e *Engine) Combine(left, right Hash) Hash {
	return Combine(e.hasher, left, right)
}

// Verify is shorthand for [Verify] with e's hasher.
func (e *Engine) Verify(proof Proof, leaf, root Hash) bool {
	return Verify(e.hasher, proof, leaf, root)
}
