package commands

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ubfuzz/internal/config"
	"ubfuzz/internal/generator"
	"ubfuzz/internal/rng"
	"ubfuzz/internal/strategy"
)

func TestNamedStrategyReturnsAKnownPreset(t *testing.T) {
	presets := strategy.MakeMutateStrategies()
	if len(presets) == 0 {
		t.Fatal("expected at least one preset strategy")
	}
	got := namedStrategy(presets[0].Name)
	if got.Name != presets[0].Name {
		t.Fatalf("namedStrategy(%q) = %q, want the matching preset", presets[0].Name, got.Name)
	}
}

func TestNamedStrategyFallsBackToFlatDefault(t *testing.T) {
	got := namedStrategy("not-a-real-preset")
	if got.Name != "not-a-real-preset" {
		t.Fatalf("expected fallback Strategy to keep the requested name, got %q", got.Name)
	}
	if got.Get(strategy.Site(0)) != strategy.DefaultWeight {
		t.Fatalf("expected fallback Strategy to use DefaultWeight, got %v", got.Get(strategy.Site(0)))
	}
}

func TestPrintToWritesAProgramToAFile(t *testing.T) {
	p := generator.Generate(rng.New(1), config.DefaultLangOpts())
	path := filepath.Join(t.TempDir(), "out.cpp")
	if err := printTo(p, path); err != nil {
		t.Fatalf("printTo: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty program output")
	}
}

func TestNewOracleSplitsCommandAndArgs(t *testing.T) {
	o, err := newOracle("/bin/echo -n hello", time.Second)
	if err != nil {
		t.Fatalf("newOracle: %v", err)
	}
	if o.cmd != "/bin/echo" || len(o.args) != 2 || o.args[0] != "-n" || o.args[1] != "hello" {
		t.Fatalf("unexpected split: cmd=%q args=%v", o.cmd, o.args)
	}
}

func TestNewOracleRejectsEmptySpec(t *testing.T) {
	if _, err := newOracle("   ", time.Second); err == nil {
		t.Fatal("expected an error for an empty oracle spec")
	}
}

func TestOracleRunTreatsNonZeroExitAsInteresting(t *testing.T) {
	o, err := newOracle("/bin/false", time.Second)
	if err != nil {
		t.Fatalf("newOracle: %v", err)
	}
	p := generator.Generate(rng.New(1), config.DefaultLangOpts())
	hit, err := o.run(p)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !hit {
		t.Fatal("expected /bin/false to be treated as interesting")
	}
}

func TestOracleRunTreatsZeroExitAsNotInteresting(t *testing.T) {
	o, err := newOracle("/bin/true", time.Second)
	if err != nil {
		t.Fatalf("newOracle: %v", err)
	}
	p := generator.Generate(rng.New(1), config.DefaultLangOpts())
	hit, err := o.run(p)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if hit {
		t.Fatal("expected /bin/true to be treated as not interesting")
	}
}

func TestGenerateCommandWritesAProgram(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gen.cpp")
	if err := GenerateCommand([]string{"-seed", "7", "-o", path}); err != nil {
		t.Fatalf("GenerateCommand: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "int") && len(data) == 0 {
		t.Fatal("expected non-empty generated program")
	}
}

func TestMutateCommandWritesAProgram(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mut.cpp")
	if err := MutateCommand([]string{"-seed", "7", "-scale", "2", "-o", path}); err != nil {
		t.Fatalf("MutateCommand: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty mutated program")
	}
}

func TestReduceCommandRequiresOracleFlag(t *testing.T) {
	if err := ReduceCommand([]string{}); err == nil {
		t.Fatal("expected an error when -oracle is not supplied")
	}
}

func TestReduceCommandErrorsWhenSeedIsNotInteresting(t *testing.T) {
	err := ReduceCommand([]string{"-seed", "1", "-scale", "1", "-oracle", "/bin/true"})
	if err == nil {
		t.Fatal("expected an error since /bin/true never reports the seed as interesting")
	}
}

func TestFuzzCommandRequiresOracleFlag(t *testing.T) {
	if err := FuzzCommand([]string{}); err == nil {
		t.Fatal("expected an error when -oracle is not supplied")
	}
}
