// Package proofset stores every leaf's proof for one tree in a single stream.
//
// The stream is snappy-framed. Inside the frame:
//
//	magic "MKPS" | version byte | uvarint leaf count | root |
//	leaves... | proofs...
//
// and each proof is a uvarint step count,
// the step sides as an adaptive bitset (bit set means RIGHT),
// then the sibling hashes.
package proofset

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/bits-and-blooms/bitset"
	"github.com/golang/snappy"
	"github.com/olivmath/merkly"
	"github.com/olivmath/merkly/internal/mbitset"
	"github.com/olivmath/merkly/mkhash"
)

const (
	magic   = "MKPS"
	version = 1

	// Bounds on header values.
	maxLeaves = 1 << 24
	maxSteps  = 64

	// Slices grow as leaves and proofs are actually read,
	// starting from at most this capacity,
	// so a forged leaf count alone cannot force a large allocation.
	initialCap = 1024
)

// ErrMalformed is wrapped by every decoding error from [Read].
var ErrMalformed = errors.New("malformed proof set")

// Set is a tree's root, its leaves,
// and one proof per leaf aligned with Leaves.
type Set struct {
	Root   merkly.Hash
	Leaves []merkly.Hash
	Proofs []merkly.Proof
}

// Build proves every leaf with e and returns the resulting Set.
func Build(ctx context.Context, e *merkly.Engine, leaves []merkly.Hash) (Set, error) {
	root, err := e.Root(leaves)
	if err != nil {
		return Set{}, fmt.Errorf("failed to compute root: %w", err)
	}

	proofs, err := e.ProveAll(ctx, leaves)
	if err != nil {
		return Set{}, fmt.Errorf("failed to prove leaves: %w", err)
	}

	return Set{Root: root, Leaves: leaves, Proofs: proofs}, nil
}

// Verify checks that every proof replays from its leaf to s.Root.
// It returns an error identifying the first proof that does not.
func (s Set) Verify(h mkhash.Hasher) error {
	if len(s.Proofs) != len(s.Leaves) {
		return fmt.Errorf(
			"proof set has %d leaves but %d proofs", len(s.Leaves), len(s.Proofs),
		)
	}
	for i, p := range s.Proofs {
		if !merkly.Verify(h, p, s.Leaves[i], s.Root) {
			return fmt.Errorf("proof %d does not replay to root %s", i, s.Root)
		}
	}
	return nil
}

// Write encodes s to w.
func Write(w io.Writer, s Set) error {
	if len(s.Proofs) != len(s.Leaves) {
		panic(fmt.Errorf(
			"BUG: proof set has %d leaves but %d proofs", len(s.Leaves), len(s.Proofs),
		))
	}

	sw := snappy.NewBufferedWriter(w)

	var hdr [len(magic) + 1 + binary.MaxVarintLen64]byte
	n := copy(hdr[:], magic)
	hdr[n] = version
	n++
	n += binary.PutUvarint(hdr[n:], uint64(len(s.Leaves)))
	if _, err := sw.Write(hdr[:n]); err != nil {
		return fmt.Errorf("failed to write proof set header: %w", err)
	}

	if _, err := sw.Write(s.Root[:]); err != nil {
		return fmt.Errorf("failed to write root: %w", err)
	}
	for i := range s.Leaves {
		if _, err := sw.Write(s.Leaves[i][:]); err != nil {
			return fmt.Errorf("failed to write leaf %d: %w", i, err)
		}
	}

	var enc mbitset.AdaptiveEncoder
	for i, p := range s.Proofs {
		if err := writeProof(sw, &enc, p); err != nil {
			return fmt.Errorf("failed to write proof %d: %w", i, err)
		}
	}

	if err := sw.Close(); err != nil {
		return fmt.Errorf("failed to flush proof set: %w", err)
	}
	return nil
}

func writeProof(w io.Writer, enc *mbitset.AdaptiveEncoder, p merkly.Proof) error {
	if len(p) > maxSteps {
		return fmt.Errorf("proof has %d steps (max %d)", len(p), maxSteps)
	}

	var cnt [binary.MaxVarintLen64]byte
	if _, err := w.Write(cnt[:binary.PutUvarint(cnt[:], uint64(len(p)))]); err != nil {
		return err
	}

	sides := bitset.New(uint(len(p)))
	for i, s := range p {
		switch s.Side {
		case merkly.Left:
		case merkly.Right:
			sides.Set(uint(i))
		default:
			return fmt.Errorf("%w: step %d has side code %d", merkly.ErrInvalidInput, i, uint8(s.Side))
		}
	}
	if err := enc.WriteBitset(w, sides); err != nil {
		return err
	}

	for _, s := range p {
		if _, err := w.Write(s.Sibling[:]); err != nil {
			return err
		}
	}
	return nil
}

// Read decodes a Set written by [Write].
func Read(r io.Reader) (Set, error) {
	br := bufio.NewReader(snappy.NewReader(r))

	var hdr [len(magic) + 1]byte
	if _, err := io.ReadFull(br, hdr[:]); err != nil {
		return Set{}, fmt.Errorf("%w: failed to read header: %w", ErrMalformed, err)
	}
	if !bytes.Equal(hdr[:len(magic)], []byte(magic)) {
		return Set{}, fmt.Errorf("%w: bad magic %q", ErrMalformed, hdr[:len(magic)])
	}
	if v := hdr[len(magic)]; v != version {
		return Set{}, fmt.Errorf("%w: unsupported version %d", ErrMalformed, v)
	}

	nLeaves, err := binary.ReadUvarint(br)
	if err != nil {
		return Set{}, fmt.Errorf("%w: failed to read leaf count: %w", ErrMalformed, err)
	}
	if nLeaves > maxLeaves {
		return Set{}, fmt.Errorf("%w: %d leaves exceeds limit %d", ErrMalformed, nLeaves, maxLeaves)
	}

	var s Set
	if _, err := io.ReadFull(br, s.Root[:]); err != nil {
		return Set{}, fmt.Errorf("%w: failed to read root: %w", ErrMalformed, err)
	}

	n := int(nLeaves)
	s.Leaves = make([]merkly.Hash, 0, min(n, initialCap))
	for i := range n {
		var l merkly.Hash
		if _, err := io.ReadFull(br, l[:]); err != nil {
			return Set{}, fmt.Errorf("%w: failed to read leaf %d: %w", ErrMalformed, i, err)
		}
		s.Leaves = append(s.Leaves, l)
	}

	// Every leaf has been read by now, so the count is backed by real data.
	var dec mbitset.AdaptiveDecoder
	s.Proofs = make([]merkly.Proof, 0, n)
	for i := range n {
		p, err := readProof(br, &dec)
		if err != nil {
			return Set{}, fmt.Errorf("%w: failed to read proof %d: %w", ErrMalformed, i, err)
		}
		s.Proofs = append(s.Proofs, p)
	}

	if _, err := br.ReadByte(); err != io.EOF {
		return Set{}, fmt.Errorf("%w: trailing data after last proof", ErrMalformed)
	}

	return s, nil
}

func readProof(br *bufio.Reader, dec *mbitset.AdaptiveDecoder) (merkly.Proof, error) {
	n, err := binary.ReadUvarint(br)
	if err != nil {
		return nil, err
	}
	if n > maxSteps {
		return nil, fmt.Errorf("%d steps exceeds limit %d", n, maxSteps)
	}

	sides := bitset.New(uint(n))
	if err := dec.ReadBitset(br, sides); err != nil {
		return nil, err
	}
	// Bits beyond the step count must be clear.
	if words := sides.Words(); n%64 != 0 && words[len(words)-1]>>(n%64) != 0 {
		return nil, fmt.Errorf("side bits set beyond %d steps", n)
	}

	p := make(merkly.Proof, n)
	for i := range p {
		if _, err := io.ReadFull(br, p[i].Sibling[:]); err != nil {
			return nil, err
		}
		if sides.Test(uint(i)) {
			p[i].Side = merkly.Right
		}
	}
	return p, nil
}
