package commands

import (
	"flag"

	"ubfuzz/internal/config"
	"ubfuzz/internal/generator"
	"ubfuzz/internal/rng"
)

// MutateCommand generates a fresh program and runs one Mutate call against
// it under the named strategy (spec.md §4.F, §4.G), then prints the
// result.
func MutateCommand(args []string) error {
	fs := flag.NewFlagSet("mutate", flag.ContinueOnError)
	seed := fs.Int64("seed", 1, "RNG seed")
	scale := fs.Uint("scale", 1, "scale multiplier applied on top of the strategy's own Scale")
	stratName := fs.String("strategy", "default", "named strategy preset (see internal/strategy/presets.go)")
	out := fs.String("o", "", "output file (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	source := rng.New(*seed)
	p := generator.Generate(source, config.DefaultLangOpts())
	generator.Mutate(p, source, namedStrategy(*stratName), *scale)
	return printTo(p, *out)
}
