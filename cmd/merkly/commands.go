package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"github.com/olivmath/merkly"
	"github.com/olivmath/merkly/proofset"
	cli "github.com/urfave/cli/v2"
)

func strategyFlagDef(def merkly.ProofStrategy) cli.Flag {
	return &cli.StringFlag{
		Name:  strategyFlag,
		Usage: "proof derivation: halving or level",
		Value: def.String(),
	}
}

func formatFlagDef() cli.Flag {
	return &cli.StringFlag{
		Name:  formatFlag,
		Usage: "proof encoding: hex, compact, cbor, json, or table (output only)",
		Value: "hex",
	}
}

var errProofMismatch = errors.New("proof does not replay to root")

func rootCommand() *cli.Command {
	return &cli.Command{
		Name:      "root",
		Usage:     "print the Merkle root of the given leaves",
		ArgsUsage: "<leaf> [<leaf>...]",
		Action: func(ctx *cli.Context) error {
			e, err := newEngine(ctx)
			if err != nil {
				return err
			}
			leaves, err := parseLeaves(ctx, e.Hasher(), ctx.Args().Slice())
			if err != nil {
				return err
			}

			root, err := e.Root(leaves)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(ctx.App.Writer, root)
			return err
		},
	}
}

func leavesCommand() *cli.Command {
	return &cli.Command{
		Name:      "leaves",
		Usage:     "print the leaf hash of each argument",
		ArgsUsage: "<data> [<data>...]",
		Action: func(ctx *cli.Context) error {
			e, err := newEngine(ctx)
			if err != nil {
				return err
			}
			leaves, err := parseLeaves(ctx, e.Hasher(), ctx.Args().Slice())
			if err != nil {
				return err
			}

			for _, l := range leaves {
				if _, err := fmt.Fprintln(ctx.App.Writer, l); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func proofCommand() *cli.Command {
	return &cli.Command{
		Name:      "proof",
		Usage:     "print the inclusion proof of --target",
		ArgsUsage: "<leaf> [<leaf>...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     targetFlag,
				Usage:    "leaf to prove, interpreted like the leaf arguments",
				Required: true,
			},
			strategyFlagDef(merkly.HalvingProofs),
			formatFlagDef(),
		},
		Action: func(ctx *cli.Context) error {
			e, err := newEngine(ctx)
			if err != nil {
				return err
			}
			leaves, err := parseLeaves(ctx, e.Hasher(), ctx.Args().Slice())
			if err != nil {
				return err
			}
			target, err := parseLeaf(ctx, e.Hasher(), ctx.String(targetFlag))
			if err != nil {
				return fmt.Errorf("invalid --%s: %w", targetFlag, err)
			}

			proof, err := e.Prove(leaves, target)
			if err != nil {
				return err
			}
			return writeProof(ctx.App.Writer, ctx.String(formatFlag), proof)
		},
	}
}

func verifyCommand() *cli.Command {
	return &cli.Command{
		Name:  "verify",
		Usage: "check that --proof replays from --leaf to --root",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     rootFlag,
				Usage:    "expected root, as hex",
				Required: true,
			},
			&cli.StringFlag{
				Name:     leafFlag,
				Usage:    "leaf to verify, interpreted like the leaf arguments",
				Required: true,
			},
			&cli.StringFlag{
				Name:     proofFlag,
				Usage:    "proof in the encoding given by --format",
				Required: true,
			},
			formatFlagDef(),
		},
		Action: func(ctx *cli.Context) error {
			e, err := newEngine(ctx)
			if err != nil {
				return err
			}
			root, err := merkly.ParseHash(ctx.String(rootFlag))
			if err != nil {
				return fmt.Errorf("invalid --%s: %w", rootFlag, err)
			}
			leaf, err := parseLeaf(ctx, e.Hasher(), ctx.String(leafFlag))
			if err != nil {
				return fmt.Errorf("invalid --%s: %w", leafFlag, err)
			}
			proof, err := parseProof(ctx.String(formatFlag), ctx.String(proofFlag))
			if err != nil {
				return fmt.Errorf("invalid --%s: %w", proofFlag, err)
			}

			if !e.Verify(proof, leaf, root) {
				return errProofMismatch
			}
			_, err = fmt.Fprintln(ctx.App.Writer, "valid")
			return err
		},
	}
}

func proveAllCommand() *cli.Command {
	return &cli.Command{
		Name:      "prove-all",
		Usage:     "write a proof set file with the proof of every leaf",
		ArgsUsage: "<leaf> [<leaf>...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     outFlag,
				Usage:    "path of the proof set file to write",
				Required: true,
			},
			// Level proofs replay for every leaf count;
			// halving proofs only for powers of two.
			strategyFlagDef(merkly.LevelProofs),
		},
		Action: func(ctx *cli.Context) error {
			e, err := newEngine(ctx)
			if err != nil {
				return err
			}
			leaves, err := parseLeaves(ctx, e.Hasher(), ctx.Args().Slice())
			if err != nil {
				return err
			}

			if n := len(leaves); e.Strategy() == merkly.HalvingProofs && n&(n-1) != 0 {
				return fmt.Errorf(
					"halving proofs over %d leaves do not replay to the root; use --%s level",
					n, strategyFlag,
				)
			}

			set, err := proofset.Build(ctx.Context, e, leaves)
			if err != nil {
				return err
			}

			f, err := os.Create(ctx.String(outFlag))
			if err != nil {
				return err
			}
			if err := proofset.Write(f, set); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}

			_, err = fmt.Fprintf(ctx.App.Writer, "wrote %d proofs for root %s\n", len(set.Proofs), set.Root)
			return err
		},
	}
}

func verifyAllCommand() *cli.Command {
	return &cli.Command{
		Name:      "verify-all",
		Usage:     "check every proof in a proof set file",
		ArgsUsage: "<file>",
		Action: func(ctx *cli.Context) error {
			if ctx.NArg() != 1 {
				return fmt.Errorf("expected exactly one file argument (got %d)", ctx.NArg())
			}

			e, err := newEngine(ctx)
			if err != nil {
				return err
			}

			f, err := os.Open(ctx.Args().First())
			if err != nil {
				return err
			}
			defer f.Close()

			set, err := proofset.Read(f)
			if err != nil {
				return err
			}
			if err := set.Verify(e.Hasher()); err != nil {
				return err
			}

			_, err = fmt.Fprintf(ctx.App.Writer, "verified %d proofs for root %s\n", len(set.Proofs), set.Root)
			return err
		},
	}
}

// decodeHex accepts hex with or without a 0x prefix.
func decodeHex(s string) ([]byte, error) {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	return hex.DecodeString(s)
}
