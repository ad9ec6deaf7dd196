// Package commands holds one file per cmd/ubfuzz subcommand, mirroring
// the teacher's cmd/sentra/commands package layout.
package commands

import (
	"fmt"
	"os"

	"ubfuzz/internal/printer"
	"ubfuzz/internal/program"
	"ubfuzz/internal/strategy"
)

// printTo prints p to path, or to stdout when path is empty.
func printTo(p *program.Program, path string) error {
	if path == "" {
		return printer.Print(p, os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("commands: failed to create %s: %w", path, err)
	}
	defer f.Close()
	return printer.Print(p, f)
}

// namedStrategy looks up one of the named mutate-strategy presets (spec.md
// §4.F), falling back to a flat default-weight Strategy under that name if
// it isn't one of the presets.
func namedStrategy(name string) *strategy.Strategy {
	for _, s := range strategy.MakeMutateStrategies() {
		if s.Name == name {
			return s
		}
	}
	return strategy.New(name)
}
