package merkly

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// cborStep is the CBOR shape of a [ProofStep]:
// a two-element array of the sibling bytes and the side code.
type cborStep struct {
	_ struct{} `cbor:",toarray"`

	Sibling []byte
	Side    uint8
}

// MarshalCBOR encodes p as a CBOR array of [sibling, side] arrays.
func (p Proof) MarshalCBOR() ([]byte, error) {
	steps := make([]cborStep, len(p))
	for i, s := range p {
		if s.Side > Right {
			return nil, fmt.Errorf(
				"%w: proof step %d has invalid side code %d", ErrInvalidInput, i, uint8(s.Side),
			)
		}
		steps[i] = cborStep{Sibling: s.Sibling[:], Side: uint8(s.Side)}
	}
	return cbor.Marshal(steps)
}

// UnmarshalCBOR decodes the output of [Proof.MarshalCBOR],
// validating every sibling length and side code.
func (p *Proof) UnmarshalCBOR(b []byte) error {
	var steps []cborStep
	if err := cbor.Unmarshal(b, &steps); err != nil {
		return fmt.Errorf("%w: failed to decode CBOR proof: %w", ErrInvalidInput, err)
	}

	out := make(Proof, len(steps))
	for i, s := range steps {
		if len(s.Sibling) != HashSize {
			return fmt.Errorf(
				"%w: proof step %d sibling must be %d bytes (got %d)",
				ErrInvalidInput, i, HashSize, len(s.Sibling),
			)
		}
		if Side(s.Side) > Right {
			return fmt.Errorf(
				"%w: proof step %d has invalid side code %d", ErrInvalidInput, i, s.Side,
			)
		}
		copy(out[i].Sibling[:], s.Sibling)
		out[i].Side = Side(s.Side)
	}

	*p = out
	return nil
}
