package commands

import (
	"flag"

	"ubfuzz/internal/config"
	"ubfuzz/internal/generator"
	"ubfuzz/internal/rng"
)

// GenerateCommand builds one fresh program from a seed (spec.md §4.G.10)
// and prints it.
func GenerateCommand(args []string) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	seed := fs.Int64("seed", 1, "RNG seed")
	out := fs.String("o", "", "output file (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p := generator.Generate(rng.New(*seed), config.DefaultLangOpts())
	return printTo(p, *out)
}
