// Package mbitset encodes fixed-length [bitset.BitSet] values to byte streams.
//
// None of the encodings carry the bit length:
// the reader must size the destination bitset before decoding.
package mbitset

import (
	"fmt"
	"io"

	"github.com/bits-and-blooms/bitset"
)

const (
	rawEncoding    byte = 0
	snappyEncoding byte = 1
)

// AdaptiveEncoder writes a one-byte header followed by
// whichever of the raw or snappy encodings is smaller.
type AdaptiveEncoder struct {
	se SnappyEncoder
}

func (e *AdaptiveEncoder) WriteBitset(w io.Writer, bs *bitset.BitSet) error {
	if err := e.se.encode(bs, true); err != nil {
		// Too large for the snappy length header;
		// the raw encoding has no such limit.
		re := RawEncoder{buf: e.se.wordBuf}
		re.encode(bs, true)
		e.se.wordBuf = re.buf
		return re.write(w)
	}

	// The reader knows the size of the bitset up front,
	// so raw bytes can be written directly.
	// But we have a two-byte size overhead for snappy encoding,
	// since the reader cannot know the encoded size.
	if len(e.se.wordBuf) < len(e.se.encBuf)+2 {
		// The wordBuf we allocated in the snappy encoder
		// can be dropped directly into a raw encoder,
		// since we used the "adaptive" encoding.
		re := RawEncoder{buf: e.se.wordBuf}
		return re.write(w)
	}

	return e.se.write(w)
}

// AdaptiveDecoder reads the output of [AdaptiveEncoder].
type AdaptiveDecoder struct {
	sd SnappyDecoder
	rd RawDecoder
}

func (d *AdaptiveDecoder) ReadBitset(r io.Reader, bs *bitset.BitSet) error {
	var h [1]byte
	if _, err := io.ReadFull(r, h[:]); err != nil {
		return fmt.Errorf("failed to read type header for adaptive bitset: %w", err)
	}

	switch h[0] {
	case rawEncoding:
		// Always borrow the snappy decoder's word buffer.
		d.rd.buf = d.sd.wordBuf
		err := d.rd.ReadBitset(r, bs)
		d.sd.wordBuf = d.rd.buf
		return err
	case snappyEncoding:
		return d.sd.ReadBitset(r, bs)
	default:
		return fmt.Errorf(
			"unknown adaptive header byte 0x%x", h[0],
		)
	}
}
