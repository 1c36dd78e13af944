package merkly

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is the error kind for malformed arguments:
// wrongly sized buffers, an empty leaf sequence,
// or a proof requested for a tree with fewer than two leaves.
//
// Use [errors.Is] to check for it;
// the returned errors usually wrap it with more detail.
var ErrInvalidInput = errors.New("invalid input")

// ErrLeafNotFound is the error kind returned when a proof target
// is not one of the tree's leaves.
var ErrLeafNotFound = errors.New("leaf not found")

var errEmptyTree = fmt.Errorf("%w: cannot get root of an empty tree", ErrInvalidInput)

// LeafSizeError is returned when a raw leaf buffer is not exactly [HashSize] bytes.
// It matches [ErrInvalidInput] with [errors.Is].
type LeafSizeError struct {
	// Position of the offending leaf in its sequence.
	Index int

	// Actual length of the leaf.
	Size int
}

func (e LeafSizeError) Error() string {
	return fmt.Sprintf(
		"leaf %d has %d bytes; leaves must be %d bytes", e.Index, e.Size, HashSize,
	)
}

func (e LeafSizeError) Is(target error) bool {
	return target == ErrInvalidInput
}

// LeafNotFoundError is returned from proof derivation
// when the target leaf does not exist in the tree.
// It matches [ErrLeafNotFound] with [errors.Is].
type LeafNotFoundError struct {
	Leaf Hash
}

func (e LeafNotFoundError) Error() string {
	return "leaf " + e.Leaf.String() + " does not exist in the tree"
}

func (e LeafNotFoundError) Is(target error) bool {
	return target == ErrLeafNotFound
}
