package mkffi

import (
	"errors"
	"fmt"

	"github.com/olivmath/merkly"
)

// SplitLeaves splits a contiguous buffer of n 32-byte leaves into n slices
// that share flat's memory.
func SplitLeaves(flat []byte) ([][]byte, error) {
	const sz = merkly.HashSize
	if len(flat)%sz != 0 {
		return nil, fmt.Errorf(
			"%w: leaf buffer length %d is not a multiple of %d", merkly.ErrInvalidInput, len(flat), sz,
		)
	}

	out := make([][]byte, len(flat)/sz)
	for i := range out {
		out[i] = flat[i*sz : (i+1)*sz : (i+1)*sz]
	}
	return out, nil
}

// WithRoot computes the root of leaves, passes it to fn,
// and releases it once fn returns.
func (r *Registry) WithRoot(leaves [][]byte, fn func(root []byte) error) error {
	h, err := r.ComputeRoot(leaves)
	if err != nil {
		return err
	}

	root, err := r.RootBytes(h)
	if err == nil {
		err = fn(root)
	}
	return errors.Join(err, r.FreeRoot(h))
}

// WithProof computes the proof for target, passes its steps to fn,
// and releases it once fn returns.
func (r *Registry) WithProof(leaves [][]byte, target []byte, fn func(steps [][]byte) error) error {
	h, err := r.ComputeProof(leaves, target)
	if err != nil {
		return err
	}

	steps, err := r.ProofBytes(h)
	if err == nil {
		err = fn(steps)
	}
	return errors.Join(err, r.FreeProof(h))
}
