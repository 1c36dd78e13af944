package merkly

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/bits-and-blooms/bitset"
	"github.com/olivmath/merkly/internal/mbitset"
)

// maxCompactSteps bounds the step count accepted by [ReadCompactProof],
// so a corrupt header cannot force a huge allocation.
// No tree that fits in memory has a deeper proof.
const maxCompactSteps = 256

// WriteCompact writes p to w in the compact encoding:
// a uvarint step count,
// then the side of every step packed into little endian 64-bit words
// (bit i set means step i is [Right]),
// then the sibling hashes in order.
//
// Compared to [Proof.MarshalBinary],
// this spends one bit per step on sides instead of one byte.
func (p Proof) WriteCompact(w io.Writer) error {
	sides := bitset.New(uint(len(p)))
	for i, s := range p {
		switch s.Side {
		case Left:
		case Right:
			sides.Set(uint(i))
		default:
			return fmt.Errorf(
				"%w: proof step %d has invalid side code %d", ErrInvalidInput, i, uint8(s.Side),
			)
		}
	}

	var hdr [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(hdr[:], uint64(len(p)))
	if _, err := w.Write(hdr[:n]); err != nil {
		return fmt.Errorf("failed to write compact proof length: %w", err)
	}

	var enc mbitset.RawEncoder
	if err := enc.WriteBitset(w, sides); err != nil {
		return fmt.Errorf("failed to write compact proof sides: %w", err)
	}

	for i, s := range p {
		if _, err := w.Write(s.Sibling[:]); err != nil {
			return fmt.Errorf("failed to write compact proof sibling %d: %w", i, err)
		}
	}
	return nil
}

// MarshalCompact returns the [Proof.WriteCompact] encoding of p.
func (p Proof) MarshalCompact() ([]byte, error) {
	var buf bytes.Buffer
	if err := p.WriteCompact(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadCompactProof reads one proof written by [Proof.WriteCompact].
func ReadCompactProof(r io.Reader) (Proof, error) {
	br, ok := r.(io.ByteReader)
	if !ok {
		br = byteReader{r: r}
	}
	count, err := binary.ReadUvarint(br)
	if err != nil {
		return nil, fmt.Errorf("failed to read compact proof length: %w", err)
	}
	if count > maxCompactSteps {
		return nil, fmt.Errorf(
			"%w: compact proof has %d steps (max %d)", ErrInvalidInput, count, maxCompactSteps,
		)
	}

	sides := bitset.New(uint(count))
	var dec mbitset.RawDecoder
	if err := dec.ReadBitset(r, sides); err != nil {
		return nil, fmt.Errorf("failed to read compact proof sides: %w", err)
	}
	// Bits beyond count must be clear so that every proof
	// has exactly one compact encoding.
	if words := sides.Words(); count%64 != 0 && words[len(words)-1]>>(count%64) != 0 {
		return nil, fmt.Errorf(
			"%w: compact proof has side bits set beyond its %d steps", ErrInvalidInput, count,
		)
	}

	p := make(Proof, count)
	for i := range p {
		if _, err := io.ReadFull(r, p[i].Sibling[:]); err != nil {
			return nil, fmt.Errorf("failed to read compact proof sibling %d: %w", i, err)
		}
		if sides.Test(uint(i)) {
			p[i].Side = Right
		}
	}
	return p, nil
}

// ParseCompactProof decodes the output of [Proof.MarshalCompact].
// Trailing bytes are an error.
func ParseCompactProof(b []byte) (Proof, error) {
	r := bytes.NewReader(b)
	p, err := ReadCompactProof(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf(
			"%w: %d trailing bytes after compact proof", ErrInvalidInput, r.Len(),
		)
	}
	return p, nil
}

// byteReader adapts an io.Reader for binary.ReadUvarint
// without any read-ahead,
// so r is positioned exactly after the varint.
type byteReader struct {
	r io.Reader
}

func (b byteReader) ReadByte() (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(b.r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}
