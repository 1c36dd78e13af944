package mbitset

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/bits-and-blooms/bitset"
)

// RawEncoder writes a bitset's words directly, with no length header.
// The reader must already know the bitset's length.
type RawEncoder struct {
	buf []byte
}

func (e *RawEncoder) encode(
	bs *bitset.BitSet,
	adaptive bool,
) {
	words := bs.Words()
	nBytes := 8 * len(words)
	if adaptive {
		nBytes++
	}

	if cap(e.buf) < nBytes {
		e.buf = make([]byte, nBytes)
	} else {
		e.buf = e.buf[:nBytes]
	}

	buf := e.buf
	if adaptive {
		buf[0] = rawEncoding
		buf = buf[1:]
	}

	for i, w := range words {
		// Little endian, since it is more likely to match a modern machine's endianness.
		binary.LittleEndian.PutUint64(buf[i*8:], w)
	}
}

func (e *RawEncoder) WriteBitset(w io.Writer, bs *bitset.BitSet) error {
	e.encode(bs, false)

	return e.write(w)
}

func (e *RawEncoder) write(w io.Writer) error {
	if _, err := w.Write(e.buf); err != nil {
		return fmt.Errorf("failed to write raw bitset: %w", err)
	}

	return nil
}

// RawDecoder reads the output of [RawEncoder].
type RawDecoder struct {
	buf []byte
}

// ReadBitset fills bs from r.
// bs must already be sized to the expected length,
// as that determines how many words are read.
func (d *RawDecoder) ReadBitset(r io.Reader, bs *bitset.BitSet) error {
	words := bs.Words()
	nBytes := len(words) * 8
	if cap(d.buf) < nBytes {
		d.buf = make([]byte, nBytes)
	} else {
		d.buf = d.buf[:nBytes]
	}

	if _, err := io.ReadFull(r, d.buf); err != nil {
		return fmt.Errorf("failed to read raw bitset data: %w", err)
	}
	for i := range words {
		words[i] = binary.LittleEndian.Uint64(d.buf[i*8:])
	}

	return nil
}
