package main

import (
	"fmt"
	"log/slog"

	"github.com/olivmath/merkly"
	"github.com/olivmath/merkly/mkhash"
	"github.com/olivmath/merkly/mkhash/mkblake3"
	"github.com/olivmath/merkly/mkhash/mkkeccak"
	"github.com/olivmath/merkly/mkhash/mksha256"
	"github.com/olivmath/merkly/mkhash/mksha3"
	cli "github.com/urfave/cli/v2"
)

// Flag names shared by the commands.
// The flags themselves are built per app, since parsing mutates them.
const (
	hashFlag     = "hash"
	logLevelFlag = "log-level"
	hexFlag      = "hex"
	workersFlag  = "workers"
	strategyFlag = "strategy"
	targetFlag   = "target"
	formatFlag   = "format"
	rootFlag     = "root"
	leafFlag     = "leaf"
	proofFlag    = "proof"
	outFlag      = "out"
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "merkly",
		Usage: "compute Merkle roots and inclusion proofs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  hashFlag,
				Usage: "hash function: keccak, sha256, sha3, shake256, or blake3",
				Value: "keccak",
			},
			&cli.StringFlag{
				Name:  logLevelFlag,
				Usage: "minimum level of log lines written to stderr",
				Value: "warn",
			},
			&cli.BoolFlag{
				Name:  hexFlag,
				Usage: "treat leaf arguments as 32-byte hex hashes instead of raw data to hash",
			},
			&cli.IntFlag{
				Name:  workersFlag,
				Usage: "maximum concurrent proof workers (0 means GOMAXPROCS)",
			},
		},
		Commands: []*cli.Command{
			rootCommand(),
			leavesCommand(),
			proofCommand(),
			verifyCommand(),
			proveAllCommand(),
			verifyAllCommand(),
		},
	}
}

// newLogger returns a text logger on the app's error writer.
func newLogger(ctx *cli.Context) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(ctx.String(logLevelFlag))); err != nil {
		return nil, fmt.Errorf("invalid --%s: %w", logLevelFlag, err)
	}

	return slog.New(slog.NewTextHandler(ctx.App.ErrWriter, &slog.HandlerOptions{
		Level: lvl,
	})), nil
}

func hasherByName(name string) (mkhash.Hasher, error) {
	switch name {
	case "keccak", "keccak256":
		return mkkeccak.Hasher{}, nil
	case "sha256":
		return mksha256.Hasher{}, nil
	case "sha3", "sha3-256":
		return mksha3.Hasher{}, nil
	case "shake256":
		return mksha3.ShakeHasher{}, nil
	case "blake3":
		return mkblake3.Hasher{}, nil
	default:
		return nil, fmt.Errorf("unknown hash function %q", name)
	}
}

// newEngine builds an engine from the global flags
// and the command's --strategy flag, if it has one,
// including that flag's per-command default.
func newEngine(ctx *cli.Context) (*merkly.Engine, error) {
	log, err := newLogger(ctx)
	if err != nil {
		return nil, err
	}

	h, err := hasherByName(ctx.String(hashFlag))
	if err != nil {
		return nil, err
	}

	// Commands without a --strategy flag read it as empty.
	strategy := merkly.HalvingProofs
	if name := ctx.String(strategyFlag); name != "" {
		strategy, err = merkly.ParseProofStrategy(name)
		if err != nil {
			return nil, err
		}
	}

	workers := ctx.Int(workersFlag)
	if workers < 0 {
		return nil, fmt.Errorf("--%s must not be negative", workersFlag)
	}

	return merkly.NewEngine(log, merkly.EngineConfig{
		Hasher:        h,
		ProofStrategy: strategy,
		MaxWorkers:    workers,
	}), nil
}

// parseLeaves interprets args as leaves, according to the --hex flag.
func parseLeaves(ctx *cli.Context, h mkhash.Hasher, args []string) ([]merkly.Hash, error) {
	if ctx.Bool(hexFlag) {
		leaves := make([]merkly.Hash, len(args))
		for i, a := range args {
			l, err := merkly.ParseHash(a)
			if err != nil {
				return nil, fmt.Errorf("leaf %d: %w", i, err)
			}
			leaves[i] = l
		}
		return leaves, nil
	}

	data := make([][]byte, len(args))
	for i, a := range args {
		data[i] = []byte(a)
	}
	return merkly.LeavesFromData(h, data), nil
}

func parseLeaf(ctx *cli.Context, h mkhash.Hasher, arg string) (merkly.Hash, error) {
	leaves, err := parseLeaves(ctx, h, []string{arg})
	if err != nil {
		return merkly.Hash{}, err
	}
	return leaves[0], nil
}
