package mkffi

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bits-and-blooms/bitset"
	"github.com/olivmath/merkly"
	"github.com/olivmath/merkly/mkhash"
)

// Handle is an opaque reference to a buffer owned by a [Registry].
// The zero Handle is never issued.
type Handle uint64

func (h Handle) String() string {
	return fmt.Sprintf("handle#%d", uint64(h))
}

type handleKind uint8

const (
	rootKind handleKind = iota + 1
	proofKind
)

func (k handleKind) String() string {
	switch k {
	case rootKind:
		return "root"
	case proofKind:
		return "proof"
	default:
		return fmt.Sprintf("handleKind(%d)", uint8(k))
	}
}

// entry is one live allocation.
// Exactly one of root or proof is set, according to kind.
type entry struct {
	kind  handleKind
	root  *[merkly.HashSize]byte
	proof [][merkly.ProofStepSize]byte
}

// RegistryConfig is the configuration passed to [NewRegistry].
type RegistryConfig struct {
	// Hasher for ComputeRoot and ComputeProof.
	// Defaults to Keccak-256 if nil.
	Hasher mkhash.Hasher

	ProofStrategy merkly.ProofStrategy
}

// Registry owns every buffer returned across the boundary.
// It is safe for concurrent use.
type Registry struct {
	log *slog.Logger

	e *merkly.Engine

	mu   sync.Mutex
	next Handle
	live map[Handle]*entry

	// Bit i is set once handle i has been released.
	// Handles are never reused, so this tells a double release
	// apart from a handle that was never issued.
	released *bitset.BitSet
}

// NewRegistry returns a new, empty Registry.
// The logger is required.
func NewRegistry(log *slog.Logger, cfg RegistryConfig) *Registry {
	if log == nil {
		panic(errors.New("BUG: NewRegistry requires a non-nil logger"))
	}

	return &Registry{
		log: log,

		e: merkly.NewEngine(log.With("sys", "engine"), merkly.EngineConfig{
			Hasher:        cfg.Hasher,
			ProofStrategy: cfg.ProofStrategy,
		}),

		next: 1,
		live: make(map[Handle]*entry),

		released: bitset.New(64),
	}
}

// ComputeRoot computes the root of leaves,
// each of which must be exactly [merkly.HashSize] bytes.
// The returned handle must be released with [*Registry.FreeRoot].
func (r *Registry) ComputeRoot(leaves [][]byte) (Handle, error) {
	return r.computeRoot(r.e.Hasher(), leaves)
}

// ComputeRootWithCallback is like [*Registry.ComputeRoot],
// but combines nodes with the host-supplied digest callback
// instead of the registry's hasher.
func (r *Registry) ComputeRootWithCallback(cb mkhash.HasherFunc, leaves [][]byte) (Handle, error) {
	if cb == nil {
		return 0, fmt.Errorf("%w: nil hash callback", merkly.ErrInvalidInput)
	}
	return r.computeRoot(cb, leaves)
}

func (r *Registry) computeRoot(h mkhash.Hasher, leaves [][]byte) (Handle, error) {
	root, err := merkly.RootBytes(h, leaves)
	if err != nil {
		return 0, err
	}

	buf := new([merkly.HashSize]byte)
	*buf = root

	return r.add(&entry{kind: rootKind, root: buf}), nil
}

// ComputeProof computes the proof for target within leaves.
// The returned handle must be released with [*Registry.FreeProof].
func (r *Registry) ComputeProof(leaves [][]byte, target []byte) (Handle, error) {
	ls, err := merkly.LeavesFromBytes(leaves)
	if err != nil {
		return 0, err
	}
	t, err := merkly.HashFromBytes(target)
	if err != nil {
		return 0, fmt.Errorf("invalid target: %w", err)
	}

	proof, err := r.e.Prove(ls, t)
	if err != nil {
		return 0, err
	}

	steps := make([][merkly.ProofStepSize]byte, len(proof))
	for i, s := range proof {
		steps[i] = s.Bytes()
	}

	return r.add(&entry{kind: proofKind, proof: steps}), nil
}

func (r *Registry) add(e *entry) Handle {
	r.mu.Lock()
	h := r.next
	r.next++
	r.live[h] = e
	r.mu.Unlock()

	r.log.Debug("Allocated buffer", "handle", uint64(h), "kind", e.kind)
	return h
}

// lookup returns the live entry for h, which must be of kind want.
// The caller must hold r.mu.
func (r *Registry) lookup(op string, h Handle, want handleKind) (*entry, error) {
	e, ok := r.live[h]
	if !ok {
		if h != 0 && h < r.next && r.released.Test(uint(h)) {
			return nil, HandleError{Handle: h, Op: op, Err: ErrAlreadyReleased}
		}
		return nil, HandleError{Handle: h, Op: op, Err: ErrUnknownHandle}
	}
	if e.kind != want {
		return nil, HandleError{
			Handle: h,
			Op:     op,
			Err:    fmt.Errorf("%w: have %s, want %s", ErrWrongHandleKind, e.kind, want),
		}
	}
	return e, nil
}

// RootBytes returns a copy of the 32-byte root held by h.
func (r *Registry) RootBytes(h Handle) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, err := r.lookup("read root", h, rootKind)
	if err != nil {
		return nil, err
	}
	out := make([]byte, merkly.HashSize)
	copy(out, e.root[:])
	return out, nil
}

// ProofBytes returns a copy of the 33-byte steps held by h,
// ordered from the leaf toward the root.
func (r *Registry) ProofBytes(h Handle) ([][]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, err := r.lookup("read proof", h, proofKind)
	if err != nil {
		return nil, err
	}

	// One backing allocation for every step.
	flat := make([]byte, len(e.proof)*merkly.ProofStepSize)
	out := make([][]byte, len(e.proof))
	for i, s := range e.proof {
		step := flat[i*merkly.ProofStepSize : (i+1)*merkly.ProofStepSize : (i+1)*merkly.ProofStepSize]
		copy(step, s[:])
		out[i] = step
	}
	return out, nil
}

// FreeRoot releases a handle returned from ComputeRoot.
func (r *Registry) FreeRoot(h Handle) error {
	return r.free("free root", h, rootKind)
}

// FreeProof releases a handle returned from ComputeProof,
// including every step it holds.
func (r *Registry) FreeProof(h Handle) error {
	return r.free("free proof", h, proofKind)
}

func (r *Registry) free(op string, h Handle, want handleKind) error {
	r.mu.Lock()
	e, err := r.lookup(op, h, want)
	if err != nil {
		r.mu.Unlock()

		if isAlreadyReleased(err) {
			r.log.Warn("Double release of buffer", "handle", uint64(h), "op", op)
		}
		return err
	}

	delete(r.live, h)
	r.released.Set(uint(h))
	r.mu.Unlock()

	// Zero released contents so nothing lingers in retained memory.
	if e.root != nil {
		clear(e.root[:])
	}
	for i := range e.proof {
		clear(e.proof[i][:])
	}

	r.log.Debug("Released buffer", "handle", uint64(h), "kind", e.kind)
	return nil
}

// Live reports how many handles have not yet been released.
func (r *Registry) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}

func isAlreadyReleased(err error) bool {
	return errors.Is(err, ErrAlreadyReleased)
}
