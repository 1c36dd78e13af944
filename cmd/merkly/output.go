package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olivmath/merkly"
)

func writeProof(w io.Writer, format string, proof merkly.Proof) error {
	switch format {
	case "hex":
		b, err := proof.MarshalBinary()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, hex.EncodeToString(b))
		return err

	case "compact":
		b, err := proof.MarshalCompact()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, hex.EncodeToString(b))
		return err

	case "cbor":
		b, err := proof.MarshalCBOR()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, hex.EncodeToString(b))
		return err

	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(proof)

	case "table":
		rows := make([][]string, len(proof))
		for i, s := range proof {
			rows[i] = []string{strconv.Itoa(i), s.Side.String(), s.Sibling.String()}
		}

		table := tablewriter.NewWriter(w)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		table.SetHeader([]string{"Step", "Side", "Sibling"})
		table.AppendBulk(rows)
		table.Render()
		return nil

	default:
		return fmt.Errorf("unknown proof format %q", format)
	}
}

// parseProof is the inverse of writeProof for the machine-readable formats.
func parseProof(format, s string) (merkly.Proof, error) {
	if format == "json" {
		var p merkly.Proof
		if err := json.Unmarshal([]byte(s), &p); err != nil {
			return nil, err
		}
		return p, nil
	}

	b, err := decodeHex(s)
	if err != nil {
		return nil, err
	}

	switch format {
	case "hex":
		return merkly.ParseProof(b)
	case "compact":
		return merkly.ParseCompactProof(b)
	case "cbor":
		var p merkly.Proof
		if err := p.UnmarshalCBOR(b); err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("cannot read proofs in format %q", format)
	}
}
