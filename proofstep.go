package merkly

import (
	"fmt"
)

// Side is the operand position a sibling hash occupies
// when it is combined with the running value during proof replay.
type Side uint8

const (
	// Left means the sibling is the left operand: Node(sibling, current).
	Left Side = 0

	// Right means the sibling is the right operand: Node(current, sibling).
	Right Side = 1
)

func (s Side) String() string {
	switch s {
	case Left:
		return "LEFT"
	case Right:
		return "RIGHT"
	default:
		return fmt.Sprintf("Side(%d)", uint8(s))
	}
}

// ParseSide is the inverse of [Side.String].
func ParseSide(s string) (Side, error) {
	switch s {
	case "LEFT", "left":
		return Left, nil
	case "RIGHT", "right":
		return Right, nil
	default:
		return 0, fmt.Errorf("%w: unknown side %q", ErrInvalidInput, s)
	}
}

func (s Side) MarshalText() ([]byte, error) {
	if s > Right {
		return nil, fmt.Errorf("%w: invalid side code %d", ErrInvalidInput, uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *Side) UnmarshalText(text []byte) error {
	parsed, err := ParseSide(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ProofStepSize is the size of the binary encoding of a [ProofStep]:
// the sibling hash followed by a single side byte.
const ProofStepSize = HashSize + 1

// ProofStep is one element of a [Proof].
type ProofStep struct {
	Sibling Hash `json:"sibling"`
	Side    Side `json:"side"`
}

// Bytes returns the fixed-size binary encoding of s.
// The side byte is written as-is, without validation.
func (s ProofStep) Bytes() [ProofStepSize]byte {
	var out [ProofStepSize]byte
	copy(out[:HashSize], s.Sibling[:])
	out[HashSize] = byte(s.Side)
	return out
}

// AppendBinary appends the [ProofStepSize]-byte encoding of s to dst.
func (s ProofStep) AppendBinary(dst []byte) ([]byte, error) {
	if s.Side > Right {
		return dst, fmt.Errorf("%w: invalid side code %d", ErrInvalidInput, uint8(s.Side))
	}
	dst = append(dst, s.Sibling[:]...)
	return append(dst, byte(s.Side)), nil
}

func (s ProofStep) MarshalBinary() ([]byte, error) {
	return s.AppendBinary(make([]byte, 0, ProofStepSize))
}

func (s *ProofStep) UnmarshalBinary(b []byte) error {
	if len(b) != ProofStepSize {
		return fmt.Errorf(
			"%w: proof step must be %d bytes (got %d)", ErrInvalidInput, ProofStepSize, len(b),
		)
	}
	side := Side(b[HashSize])
	if side > Right {
		return fmt.Errorf("%w: invalid side code %d", ErrInvalidInput, b[HashSize])
	}

	copy(s.Sibling[:], b[:HashSize])
	s.Side = side
	return nil
}

// Proof is an authentication path for one leaf,
// ordered from the step nearest the leaf to the step nearest the root.
type Proof []ProofStep

// MarshalBinary returns the concatenated [ProofStepSize]-byte encodings of each step.
func (p Proof) MarshalBinary() ([]byte, error) {
	out := make([]byte, 0, len(p)*ProofStepSize)
	for i, s := range p {
		var err error
		out, err = s.AppendBinary(out)
		if err != nil {
			return nil, fmt.Errorf("failed to encode proof step %d: %w", i, err)
		}
	}
	return out, nil
}

// ParseProof decodes the output of [Proof.MarshalBinary].
func ParseProof(b []byte) (Proof, error) {
	if len(b)%ProofStepSize != 0 {
		return nil, fmt.Errorf(
			"%w: proof length %d is not a multiple of %d", ErrInvalidInput, len(b), ProofStepSize,
		)
	}

	p := make(Proof, len(b)/ProofStepSize)
	for i := range p {
		start := i * ProofStepSize
		if err := p[i].UnmarshalBinary(b[start : start+ProofStepSize]); err != nil {
			return nil, fmt.Errorf("failed to decode proof step %d: %w", i, err)
		}
	}
	return p, nil
}
