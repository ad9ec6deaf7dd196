package generator

import (
	"strconv"

	"ubfuzz/internal/ast"
	"ubfuzz/internal/rng"
	"ubfuzz/internal/types"
)

// snippetOption enumerates the predefined code shapes createSnippet can
// produce, ported from original_source/mutator/src/Snippets.cpp.
type snippetOption int

const (
	snippetForwardJump snippetOption = iota
	snippetBackwardsJump
	snippetMallocFree
	snippetCounterLoop
	snippetInfLoop
	snippetNoLoop
	snippetArrayWithUse
	snippetUseAfterReturn
)

// snippets generates one of a fixed set of idiomatic-bug-bait code shapes:
// jumps across a label, a malloc/free pair, a bounded counting loop, a
// trivially-true or trivially-false loop, an array with subscript writes,
// and (when the enclosing function returns a pointer to a definable,
// non-aggregate-initializer type) a use-after-return.
type snippets struct {
	md       *MutatorData
	literals *literalMaker
	tc       *typeCreator
	builtins *builtinRegistry
}

func newSnippets(md *MutatorData, builtins *builtinRegistry) *snippets {
	return &snippets{
		md:       md,
		literals: newLiteralMaker(md),
		tc:       newTypeCreator(md),
		builtins: builtins,
	}
}

// CreateSnippet produces a snippet valid inside a function whose return
// type is returnType, then releases a deferred verification pass.
func (sn *snippets) CreateSnippet(returnType types.Ref) *ast.Statement {
	release := sn.md.Program.QueueVerify()
	defer func() { _ = release() }()
	return sn.createSnippetImpl(returnType)
}

func (sn *snippets) createSnippetImpl(returnType types.Ref) *ast.Statement {
	pool := sn.md.Program.Types

	options := []snippetOption{
		snippetForwardJump, snippetBackwardsJump, snippetMallocFree,
		snippetInfLoop, snippetNoLoop, snippetCounterLoop, snippetArrayWithUse,
	}

	rt := pool.Get(returnType)
	if rt.Kind == types.Pointer && rt.Base != pool.Builtin(types.Void) {
		base := pool.Get(rt.Base)
		if base.Kind != types.Array && base.Kind != types.Record {
			options = append(options, snippetUseAfterReturn)
		}
	}

	switch rng.PickOne(sn.md.Rng, options) {
	case snippetForwardJump:
		l := sn.md.newID("lbl")
		return ast.NewCompound([]*ast.Statement{ast.NewGoto(l), ast.NewEmpty(), ast.NewGotoLabel(l)})

	case snippetBackwardsJump:
		l := sn.md.newID("lbl")
		return ast.NewCompound([]*ast.Statement{ast.NewGotoLabel(l), ast.NewEmpty(), ast.NewGoto(l)})

	case snippetMallocFree:
		return sn.mallocFree()

	case snippetArrayWithUse:
		return sn.arrayWithUse()

	case snippetCounterLoop:
		return sn.counterLoop()

	case snippetInfLoop:
		intT := pool.Builtin(types.I32)
		return ast.NewWhile(ast.NewConstant("1", intT), ast.NewCompound([]*ast.Statement{ast.NewBreak()}))

	case snippetNoLoop:
		intT := pool.Builtin(types.I32)
		return ast.NewWhile(ast.NewConstant("0", intT), ast.NewCompound([]*ast.Statement{ast.NewBreak()}))

	case snippetUseAfterReturn:
		return sn.useAfterReturn(returnType)
	}

	panic("generator: missing snippet case")
}

func (sn *snippets) mallocFree() *ast.Statement {
	pool := sn.md.Program.Types
	t := sn.tc.GetPtrType()
	l := sn.md.newID("var")
	varRef := ast.NewLocalVarRef(ast.Variable{Type: t, Name: l})

	mallocID := sn.builtins.get(builtinMalloc)
	mallocCall := ast.NewCall(sn.builtins.voidPtrType(), mallocID,
		[]*ast.Statement{ast.NewConstant("128", sn.builtins.sizeTType())})
	alloc := ast.NewVarDef(t, l, ast.NewCast(t, mallocCall))

	freeID := sn.builtins.get(builtinFree)
	voidT := pool.Builtin(types.Void)
	dealloc := ast.NewStmtExpr(ast.NewCall(voidT, freeID,
		[]*ast.Statement{ast.NewCast(sn.builtins.voidPtrType(), varRef)}))

	return ast.NewCompound([]*ast.Statement{alloc, dealloc})
}

func (sn *snippets) arrayWithUse() *ast.Statement {
	pool := sn.md.Program.Types
	arrayType := sn.tc.MakeNewArrayType()
	arr := pool.Get(arrayType)
	base := arr.Base
	baseT := pool.Get(base)
	if pool.IsConst(base) || baseT.Kind == types.Array {
		return ast.NewEmpty()
	}

	l := sn.md.newID("localArray")
	varDecl := ast.NewVarDecl(arrayType, l)
	varRef := ast.NewLocalVarRef(ast.Variable{Type: arrayType, Name: l})

	uintT := pool.Builtin(types.U32)
	makeSubscript := func() *ast.Statement {
		index := strconv.FormatUint(uint64(sn.md.Rng.Below(uint32(arr.ArraySize))), 10)
		return ast.NewSubscript(base, varRef, ast.NewConstant(index, uintT))
	}

	children := []*ast.Statement{varDecl}
	n := int(sn.md.Rng.Below(10))
	for i := 0; i < n; i++ {
		assign := ast.NewStmtExpr(ast.NewBinaryOp("=", makeSubscript(), makeSubscript(), base))
		children = append(children, assign)
	}
	return ast.NewCompound(children)
}

func (sn *snippets) counterLoop() *ast.Statement {
	t := sn.tc.GetAnyIntType(false)
	l := sn.md.newID("var")
	varRef := ast.NewLocalVarRef(ast.Variable{Type: t, Name: l})

	bodyFirst := ast.NewEmpty()
	if !sn.md.Rng.SuccessChance(0.2) {
		bodyFirst = ast.NewBreak()
	}
	bodyLast := ast.NewEmpty()
	if !sn.md.Rng.SuccessChance(0.2) {
		bodyLast = ast.NewBreak()
	}

	incr := ast.NewStmtExpr(ast.NewBinaryOp("=", varRef,
		ast.NewBinaryOp("+", varRef, ast.NewConstant("1", t), t), t))
	cond := ast.NewBinaryOp("<", varRef, ast.NewConstant("10", t), sn.tc.GetBoolType())

	return ast.NewCompound([]*ast.Statement{
		ast.NewVarDef(t, l, ast.NewConstant("0", t)),
		ast.NewWhile(cond, ast.NewCompound([]*ast.Statement{bodyFirst, incr, bodyLast})),
	})
}

func (sn *snippets) useAfterReturn(returnType types.Ref) *ast.Statement {
	pool := sn.md.Program.Types
	underlying := pool.Get(returnType).Base
	l := sn.md.newID("var")
	v := ast.Variable{Type: underlying, Name: l}
	varRef := ast.NewLocalVarRef(v)

	return ast.NewCompound([]*ast.Statement{
		ast.NewVarDecl(underlying, l),
		ast.NewReturn(ast.NewAddrOf(returnType, varRef)),
	})
}
