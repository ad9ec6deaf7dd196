// Package generator implements the program model's random generator,
// mutator, and reducer core (spec.md §4, §9): building fresh programs from
// nothing, rewriting existing ones under a Strategy, and shrinking a
// reproducer down for the reducer. Ported from
// original_source/mutator/src/UnsafeGenerator.cpp and the sibling mutator
// headers it orchestrates, generalized per spec.md §9's note to favor a
// shared-context value (MutatorData) over the original's class hierarchy.
package generator

import (
	"fmt"

	"ubfuzz/internal/ast"
	"ubfuzz/internal/config"
	"ubfuzz/internal/errors"
	"ubfuzz/internal/ident"
	"ubfuzz/internal/program"
	"ubfuzz/internal/rng"
	"ubfuzz/internal/strategy"
	"ubfuzz/internal/types"
)

// Generate returns a fresh, minimal Cxx11 program: just a "main" function
// with an empty body. Mutate is what grows it (spec.md §4.G.10).
func Generate(source *rng.Source, opts config.LangOpts) *program.Program {
	opts.Standard = config.Cxx11
	p := program.New(opts)
	addMain(p)
	return p
}

// addMain seeds p with a fixed-name "main" function returning int, so it
// can never be renamed by changeIdentifier or deleted by the mutate-step
// dispatcher (isMain always routes it through mutateFunction instead).
func addMain(p *program.Program) {
	mainID := p.Ident.AddFixed("main")
	intT := p.Types.Builtin(types.I32)
	f := &program.Decl{
		Kind:    program.FunctionDecl,
		Name:    mainID,
		RetType: intT,
		Body:    ast.NewCompound(nil),
	}
	if err := p.Add(f); err != nil {
		panic("generator: " + err.Error())
	}
}

// Mutate runs strat.Scale*scaleMul independent mutation steps against p in
// place, each with its own child RNG spawned off source, and returns every
// decision site consulted across the whole call (spec.md §9 "Strategy
// recording"). scaleMul must be nonzero or no work would happen.
func Mutate(p *program.Program, source *rng.Source, strat *strategy.Strategy, scaleMul uint) []strategy.Decision {
	if scaleMul == 0 {
		panic("generator: scaleMul must be nonzero")
	}
	inst := strategy.NewInstance(strat, source)

	if inst.Decision(strategy.RegenerateProgram) {
		*p = *Generate(source, p.Opts)
	}

	cursor := source
	iterations := uint(strat.Scale) * scaleMul
	for i := uint(0); i < iterations; i++ {
		cursor = cursor.SpawnChild()
		md := newMutatorDataWithInstance(p, inst, cursor)
		newGeneratorImpl(md).mutate()
	}
	return inst.Decisions
}

// Reduce runs a single mutation step against p, biased toward the
// simplifier/shrinking side of the mutator (spec.md §4.I), and returns the
// decisions consulted.
func Reduce(p *program.Program, source *rng.Source, strat *strategy.Strategy) []strategy.Decision {
	inst := strategy.NewInstance(strat, source)
	md := newMutatorDataWithInstance(p, inst, source)
	newGeneratorImpl(md).mutate()
	return inst.Decisions
}

// GenerateFromEntropy builds a program from a fixed entropy buffer (spec.md
// §4.G.11): generate, then mutate once per scale unit of remaining entropy,
// consuming the buffer deterministically so the same bytes always produce
// the same program.
func GenerateFromEntropy(entropy []byte, strat *strategy.Strategy, opts config.LangOpts) *program.Program {
	source := rng.NewFromEntropy(entropy)
	p := Generate(source, opts)
	for !source.ExhaustedEntropy() {
		Mutate(p, source, strat, 1)
	}
	return p
}

// GetProgramPrefix returns the text the printer must emit before a
// program's declarations, so the fuzzed "main" can coexist with the
// harness's own entry point (spec.md §6.1).
func GetProgramPrefix(p *program.Program) string {
	return "#define main wrap_main\n"
}

// GetProgramSuffix returns the text the printer must emit after a
// program's declarations: it undoes the macro above and supplies the real
// main, which forwards to the fuzzed one and always exits zero when run
// with no arguments (spec.md §6.1 — keeps libFuzzer/driver harnesses from
// treating a nonzero fuzzed exit code as a crash when replaying argv[0]
// alone).
func GetProgramSuffix(p *program.Program) string {
	return "#undef main\n" +
		"int main(int argc, char **argv) {\n" +
		"  int res = wrap_main(argc, argv);\n" +
		"  return argc == 0 ? res : 0;\n" +
		"}\n"
}

// newMutatorDataWithInstance builds a context sharing an already-bound
// strategy.Instance, for Mutate's per-substep RNG spawning.
func newMutatorDataWithInstance(p *program.Program, inst *strategy.Instance, source *rng.Source) *MutatorData {
	return &MutatorData{
		Program:  p,
		Strategy: inst,
		Rng:      source,
		Limiters: NewLimiters(config.DefaultExprLimit, config.DefaultStmtLimit, config.DefaultFuncLimit, config.DefaultTypeLimit, config.DefaultRecordLimit),
	}
}

// generatorImpl bundles one mutation step's sub-engines around a single
// MutatorData, ported from UnsafeGenerator.cpp's anonymous GeneratorImpl
// struct (there, a class deriving from every mutator base; here, a plain
// struct holding each engine as a field, per spec.md §9).
type generatorImpl struct {
	md       *MutatorData
	builtins *builtinRegistry
	literals *literalMaker
	fm       *functionMutator
	sm       *statementMutator
	sc       *statementCreator
}

func newGeneratorImpl(md *MutatorData) *generatorImpl {
	builtins := newBuiltinRegistry(md)
	return &generatorImpl{
		md:       md,
		builtins: builtins,
		literals: newLiteralMaker(md),
		fm:       newFunctionMutator(md),
		sm:       newStatementMutator(md, builtins),
		sc:       newStatementCreator(md, builtins),
	}
}

// couldBeSafeToRemove reports whether d's identifier is referenced nowhere
// else in the program, making it eligible for outright removal.
func (g *generatorImpl) couldBeSafeToRemove(d *program.Decl) bool {
	switch d.Kind {
	case program.GlobalVarDecl, program.FunctionDecl:
		return !g.md.Program.IsIDUsed(d.Name)
	default:
		return false
	}
}

// deleteType mirrors the original's always-"return Modified::No" short
// circuit: UnsafeGenerator.cpp's deleteType() returns unconditionally
// before ever reaching its type-sweep loop, so in practice it never deletes
// a type. Preserved as a no-op rather than "fixed", matching the dead code
// in the source it's ported from.
func (g *generatorImpl) deleteType() bool {
	return false
}

// mutateType picks a random derived (Pointer/Const/Volatile/Array) type and,
// if it turns out to be an Array, either repoints its element type at
// another random derived type or redraws its size. The repoint is skipped
// when the other type is itself an Array or its type graph reaches the
// array, so no array of arrays and no cycle is created.
func (g *generatorImpl) mutateType() bool {
	pool := g.md.Program.Types
	var derived []types.Ref
	n := pool.Count()
	for i := 0; i < n; i++ {
		r := types.Ref(i)
		if !pool.IsValid(r) {
			continue
		}
		switch pool.Get(r).Kind {
		case types.Pointer, types.Const, types.Volatile, types.Array:
			derived = append(derived, r)
		}
	}
	if len(derived) == 0 {
		return false
	}

	other := rng.PickOne(g.md.Rng, derived)
	t := rng.PickOne(g.md.Rng, derived)
	if pool.Get(t).Kind != types.Array {
		return false
	}

	// MutateTypeBase/MutateTypeArraySize never appeared in the ported
	// weight table; drawn as plain coin flips like the generator's other
	// untabulated sites.
	acyclic := pool.Get(other).Kind != types.Array
	for stack := []types.Ref{other}; acyclic && len(stack) > 0; {
		r := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if r == t {
			acyclic = false
		}
		stack = append(stack, pool.Children(r)...)
	}
	if other != t && acyclic && g.md.Rng.FlipCoin() {
		pool.Get(t).Base = other
		return true
	}
	if g.md.Rng.FlipCoin() {
		pool.Get(t).ArraySize = 1 + int(g.md.Rng.Below(16))
		return true
	}
	return false
}

func (g *generatorImpl) isMain(d *program.Decl) bool {
	if d.Kind != program.FunctionDecl {
		return false
	}
	mainID, ok := g.md.Program.Ident.Lookup("main")
	return ok && d.Name == mainID
}

func (g *generatorImpl) mutateFunction(f *program.Decl) bool {
	if g.md.decision(strategy.MutateFuncAttrs) {
		g.fm.randomizeFuncAttrs(f)
	}
	g.sm.mutateFunctionBody(f)
	return true
}

func (g *generatorImpl) mutateGlobalVar(d *program.Decl) bool {
	// SwitchLinkageGlobalVar never appeared in the ported weight table;
	// drawn as a plain coin flip like the generator's other untabulated
	// sites.
	if g.md.Rng.FlipCoin() {
		d.Static = !d.Static
		return true
	}
	if g.md.Program.Types.Get(d.VarType).Kind != types.Array {
		d.Init = g.sc.makeConstant(d.VarType)
	}
	return true
}

// changeIdentifierChars is the alphabet changeIdentifier draws single-
// character insertions from.
const changeIdentifierChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_"

// changeIdentifier tries up to 100 times to rename a random non-fixed
// identifier: pick one, apply 1-10 random single-character insertions or
// deletions, and commit the result if it's still a valid, unused name.
func (g *generatorImpl) changeIdentifier() bool {
	idt := g.md.Program.Ident
	total := idt.Count()
	if total == 0 {
		return false
	}

	const tries = 100
	for attempt := 0; attempt < tries; attempt++ {
		id := ident.ID(g.md.Rng.Below(uint32(total)))
		if idt.IsFixed(id) {
			continue
		}
		before := idt.Name(id)
		n := before

		edits := 1 + int(g.md.Rng.Below(10))
		for e := 0; e < edits; e++ {
			if len(n) == 0 {
				break
			}
			pos := int(g.md.Rng.Below(uint32(len(n))))
			orig := n
			if g.md.Rng.FlipCoin() && len(n) < ident.MaxNameLength {
				ch := changeIdentifierChars[g.md.Rng.Below(uint32(len(changeIdentifierChars)))]
				n = n[:pos] + string(ch) + n[pos:]
			} else if len(n) > 1 && pos < len(n) {
				n = n[:pos] + n[pos+1:]
			}
			if orig == n {
				continue
			}
			if !ident.IsValidName(n) {
				n = orig
			}
		}

		if n == before || !ident.IsValidName(n) {
			continue
		}
		if _, taken := idt.Lookup(n); taken {
			continue
		}
		if idt.TryChangeID(id, n) {
			return true
		}
	}
	return false
}

// bucketFor returns the Decls slice matching kind, so mutateStep's reorder
// path can relocate a decl within its own bucket.
func bucketFor(p *program.Program, kind program.DeclKind) *[]*program.Decl {
	switch kind {
	case program.FunctionDecl:
		return &p.Decls.Functions
	case program.GlobalVarDecl:
		return &p.Decls.Globals
	case program.RecordDecl:
		return &p.Decls.Records
	default:
		panic(fmt.Sprintf("generator: unknown DeclKind %d", kind))
	}
}

// reorderDecl moves toMod to a random new position within its own bucket.
// The original clones toMod into a possibly different DeclStorage (its
// model keeps one generic, kind-agnostic storage per program); this port's
// Program splits storage by DeclKind up front; since toMod's Kind can't
// change, relocating within its own bucket is the faithful analog —
// reordering emission position, which is the only thing that mutation is
// actually for (spec.md's DESIGN.md records this adaptation).
func (g *generatorImpl) reorderDecl(toMod *program.Decl) bool {
	bucket := bucketFor(g.md.Program, toMod.Kind)
	if len(*bucket) < 2 {
		return false
	}
	idx := -1
	for i, d := range *bucket {
		if d == toMod {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	rest := make([]*program.Decl, 0, len(*bucket)-1)
	rest = append(rest, (*bucket)[:idx]...)
	rest = append(rest, (*bucket)[idx+1:]...)

	newIdx := g.md.Rng.PickIndex(len(rest) + 1)
	out := make([]*program.Decl, 0, len(rest)+1)
	out = append(out, rest[:newIdx]...)
	out = append(out, toMod)
	out = append(out, rest[newIdx:]...)
	*bucket = out
	return true
}

// mutateStep picks one random declaration and applies exactly one mutation
// to it (or to the type pool), reporting whether anything actually
// changed. Ported from UnsafeGenerator.cpp's GeneratorImpl::mutateStep.
func (g *generatorImpl) mutateStep() bool {
	release := g.md.Program.QueueVerify()
	defer func() { _ = release() }()

	all := g.md.Program.Decls.All()
	if len(all) == 0 {
		return false
	}
	toMod := rng.PickOne(g.md.Rng, all)

	if g.md.decision(strategy.MutateOverDelete) || g.isMain(toMod) {
		switch toMod.Kind {
		case program.FunctionDecl:
			if !g.md.decision(strategy.MutateFunction) {
				return false
			}
			return g.mutateFunction(toMod)
		case program.GlobalVarDecl:
			if !g.md.decision(strategy.MutateGlobal) {
				return false
			}
			return g.mutateGlobalVar(toMod)
		case program.RecordDecl:
			// Record-field mutation is unimplemented upstream too — kept
			// as a TODO in original_source/mutator/src/UnsafeGenerator.cpp.
		}
		return false
	}

	if g.md.decision(strategy.ReorderOverDelete) {
		original := rng.PickOne(g.md.Rng, all)
		if g.reorderDecl(original) {
			return true
		}
	}

	if g.md.decision(strategy.DeleteTypes) {
		return g.deleteType()
	}
	if g.md.decision(strategy.MutateTypes) {
		return g.mutateType()
	}
	if g.couldBeSafeToRemove(toMod) {
		if err := g.md.Program.RemoveDecl(toMod); err != nil {
			return false
		}
		return true
	}
	return false
}

// fixMainReturn appends a return statement to main's body if it doesn't
// already have one — every generated/mutated program must remain a valid
// translation unit even after simplification strips statements out from
// under it (spec.md §4.G.9).
func (g *generatorImpl) fixMainReturn() {
	main := g.md.Program.MainFunction()
	if main == nil || main.Body == nil {
		return
	}

	hasReturn := false
	main.Body.ForAllChildren(func(n *ast.Statement) bool {
		if n.Kind == ast.Return {
			hasReturn = true
		}
		return !hasReturn
	})
	if hasReturn {
		return
	}

	c := newFunctionContext(main)
	returnExpr := g.sc.makeExpr(c, main.RetType)
	newBody := ast.NewCompound([]*ast.Statement{main.Body, ast.NewReturn(returnExpr)})
	main.Body = canonicalizeStmt(newBody)
}

// mutate is one full mutation step: up to config.MaxMutateStepAttempts
// attempts at mutateStep (stopping at the first success), then an optional
// main-return fixup and type garbage collection.
func (g *generatorImpl) mutate() {
	release := g.md.Program.QueueVerify()
	defer func() {
		if err := release(); err != nil {
			panic(errors.New(errors.InvariantViolation, err.Error()))
		}
	}()

	for i := 0; i < config.MaxMutateStepAttempts; i++ {
		if g.mutateStep() {
			break
		}
	}

	if g.md.decision(strategy.FixMainReturn) {
		g.fixMainReturn()
	}
	if g.md.decision(strategy.GarbageCollectTypes) {
		g.md.Program.GCTypes()
		if err := g.md.Program.VerifySelf(); err != nil {
			panic(errors.New(errors.InvariantViolation, err.Error()))
		}
	}
}
