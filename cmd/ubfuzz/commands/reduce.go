package commands

import (
	"flag"
	"fmt"
	"time"

	"ubfuzz/internal/config"
	"ubfuzz/internal/generator"
	"ubfuzz/internal/program"
	"ubfuzz/internal/rng"
	"ubfuzz/internal/scheduler"
)

// ReduceCommand grows a seed program and shrinks it against an external
// oracle command until it stops getting smaller (spec.md §4.H). The seed
// program is generated, then mutated -scale times to give the reducer
// something non-trivial to shrink, matching how a real finding would have
// accumulated decisions before it was flagged.
func ReduceCommand(args []string) error {
	fs := flag.NewFlagSet("reduce", flag.ContinueOnError)
	seed := fs.Int64("seed", 1, "RNG seed")
	scale := fs.Uint("scale", 20, "number of mutate passes used to grow the seed program before reducing")
	oracleSpec := fs.String("oracle", "", "external oracle command, e.g. \"clang -fsyntax-only -xc++\" (required)")
	timeout := fs.Duration("timeout", 5*time.Second, "per-run oracle timeout")
	tries := fs.Int("tries", 0, "consecutive failed shrink attempts before stopping (0 = config default)")
	out := fs.String("o", "", "output file (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *oracleSpec == "" {
		return fmt.Errorf("commands: -oracle is required")
	}

	orc, err := newOracle(*oracleSpec, *timeout)
	if err != nil {
		return err
	}

	isInteresting := func(candidate *program.Program) bool {
		hit, runErr := orc.run(candidate)
		return runErr == nil && hit
	}

	source := rng.New(*seed)
	p := generator.Generate(source, config.DefaultLangOpts())
	for i := uint(0); i < *scale; i++ {
		generator.Mutate(p, source, namedStrategy("default"), 1)
	}

	if !isInteresting(p) {
		return fmt.Errorf("commands: seed program is not interesting under the given oracle, nothing to reduce")
	}

	opts := config.DefaultSchedulerOptions()
	opts.Seed = *seed
	if *tries > 0 {
		opts.ReducerTries = *tries
	}

	red := scheduler.NewReducer(p, opts, isInteresting)
	for {
		_, done := red.Step()
		if done {
			break
		}
	}
	return printTo(red.Current(), *out)
}
