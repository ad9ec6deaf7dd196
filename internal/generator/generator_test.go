package generator

import (
	"strings"
	"testing"

	"ubfuzz/internal/config"
	"ubfuzz/internal/program"
	"ubfuzz/internal/rng"
	"ubfuzz/internal/strategy"
	"ubfuzz/internal/types"
)

func TestGenerateSeedsMain(t *testing.T) {
	p := Generate(rng.New(1), config.DefaultLangOpts())
	main := p.MainFunction()
	if main == nil {
		t.Fatal("Generate did not seed a main function")
	}
	if main.Body == nil {
		t.Fatal("main has a nil body")
	}
	if !p.Opts.IsCxx() {
		t.Fatal("Generate should always force a Cxx dialect")
	}
}

func TestMutateGrowsTheProgram(t *testing.T) {
	source := rng.New(7)
	p := Generate(source, config.DefaultLangOpts())
	before := p.CountNodes()

	strat := strategy.New("test")
	strat.Scale = 20
	for i := 0; i < 10; i++ {
		Mutate(p, source, strat, 1)
	}

	if p.CountNodes() <= before {
		t.Fatalf("expected mutation to grow the program past %d nodes, got %d", before, p.CountNodes())
	}
	if err := p.VerifySelf(); err != nil {
		t.Fatalf("program failed self-verification after mutation: %v", err)
	}
}

func TestMutateRecordsDecisions(t *testing.T) {
	source := rng.New(3)
	p := Generate(source, config.DefaultLangOpts())
	strat := strategy.New("test")
	strat.Scale = 5

	decisions := Mutate(p, source, strat, 1)
	if len(decisions) == 0 {
		t.Fatal("expected Mutate to record at least one decision")
	}
}

func TestMutatePanicsOnZeroScaleMul(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected Mutate to panic on scaleMul == 0")
		}
	}()
	p := Generate(rng.New(1), config.DefaultLangOpts())
	Mutate(p, rng.New(1), strategy.New("test"), 0)
}

func TestReduceNeverGrowsNodeCountUnbounded(t *testing.T) {
	source := rng.New(11)
	p := Generate(source, config.DefaultLangOpts())
	grow := strategy.New("grow")
	grow.Scale = 30
	Mutate(p, source, grow, 1)

	reduceStrat := strategy.MakeReductionStrategies()[0]
	for i := 0; i < 5; i++ {
		Reduce(p, source, reduceStrat)
	}
	if err := p.VerifySelf(); err != nil {
		t.Fatalf("program failed self-verification after reduce: %v", err)
	}
}

func TestGetProgramPrefixAndSuffixWrapMain(t *testing.T) {
	p := Generate(rng.New(1), config.DefaultLangOpts())
	if GetProgramPrefix(p) != "#define main wrap_main\n" {
		t.Fatalf("unexpected prefix: %q", GetProgramPrefix(p))
	}
	suffix := GetProgramSuffix(p)
	if !strings.Contains(suffix, "wrap_main") || !strings.Contains(suffix, "int main(") {
		t.Fatalf("suffix doesn't wrap main: %q", suffix)
	}
}

func TestChangeIdentifierProducesAValidUnusedName(t *testing.T) {
	source := rng.New(42)
	p := Generate(source, config.DefaultLangOpts())
	strat := strategy.New("test")
	md := NewMutatorData(p, strat, source)

	// Seed a renamable identifier: main is fixed, so give the program a
	// second function to rename.
	if err := md.Program.Add(&program.Decl{
		Kind:    program.FunctionDecl,
		Name:    p.Ident.MakeNewID("helper"),
		RetType: p.Types.Builtin(types.I32),
		Body:    nil,
	}); err != nil {
		t.Fatalf("setup: %v", err)
	}

	impl := newGeneratorImpl(md)
	changed := false
	for i := 0; i < 50; i++ {
		if impl.changeIdentifier() {
			changed = true
			break
		}
	}
	if !changed {
		t.Fatal("expected changeIdentifier to rename something within 50 tries")
	}
}

func TestMutateStepNeverRemovesMain(t *testing.T) {
	source := rng.New(1)
	p := Generate(source, config.DefaultLangOpts())
	md := NewMutatorData(p, strategy.New("test"), source)
	impl := newGeneratorImpl(md)

	// main is never referenced elsewhere, so couldBeSafeToRemove alone
	// would call it removable; mutateStep's isMain check must route it
	// through mutateFunction instead of the delete branch every time.
	for i := 0; i < 100; i++ {
		impl.mutateStep()
		if p.MainFunction() == nil {
			t.Fatal("mutateStep removed main")
		}
	}
}

func TestReorderDeclMovesWithinItsBucket(t *testing.T) {
	source := rng.New(5)
	p := Generate(source, config.DefaultLangOpts())
	md := NewMutatorData(p, strategy.New("test"), source)
	impl := newGeneratorImpl(md)

	second := &program.Decl{Kind: program.FunctionDecl, Name: p.Ident.MakeNewID("second"), RetType: p.Types.Builtin(types.I32), Body: nil}
	if err := p.Add(second); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if !impl.reorderDecl(second) {
		t.Fatal("expected reorderDecl to succeed with two functions in the bucket")
	}
	if len(p.Decls.Functions) != 2 {
		t.Fatalf("reorderDecl changed the bucket's size: got %d", len(p.Decls.Functions))
	}
}
