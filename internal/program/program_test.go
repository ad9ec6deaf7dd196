package program

import (
	"testing"

	"ubfuzz/internal/ast"
	"ubfuzz/internal/config"
	"ubfuzz/internal/types"
)

func newTestProgram() *Program {
	return New(config.DefaultLangOpts())
}

func TestAddRejectsDuplicateNameInSameBucket(t *testing.T) {
	p := newTestProgram()
	id := p.Ident.MakeNewID("f")
	intT := p.Types.Builtin(types.I32)

	d1 := &Decl{Kind: FunctionDecl, Name: id, RetType: intT, Body: ast.NewCompound(nil)}
	d2 := &Decl{Kind: FunctionDecl, Name: id, RetType: intT, Body: ast.NewCompound(nil)}

	if err := p.Add(d1); err != nil {
		t.Fatalf("first add should succeed: %v", err)
	}
	if err := p.Add(d2); err == nil {
		t.Fatal("expected duplicate-name error on second add")
	}
}

func TestRemoveDeclRefusesWhenReferenced(t *testing.T) {
	p := newTestProgram()
	intT := p.Types.Builtin(types.I32)

	calleeID := p.Ident.MakeNewID("callee")
	callee := &Decl{Kind: FunctionDecl, Name: calleeID, RetType: intT, Body: ast.NewReturn(ast.NewConstant("0", intT))}
	if err := p.Add(callee); err != nil {
		t.Fatal(err)
	}

	callerID := p.Ident.MakeNewID("caller")
	callBody := ast.NewReturn(ast.NewCall(intT, calleeID, nil))
	caller := &Decl{Kind: FunctionDecl, Name: callerID, RetType: intT, Body: callBody}
	if err := p.Add(caller); err != nil {
		t.Fatal(err)
	}

	if err := p.RemoveDecl(callee); err == nil {
		t.Fatal("expected RemoveDecl to refuse removing a referenced function")
	}

	if err := p.RemoveDecl(caller); err != nil {
		t.Fatalf("removing the unreferenced caller should succeed: %v", err)
	}
	if err := p.RemoveDecl(callee); err != nil {
		t.Fatalf("callee should now be removable: %v", err)
	}
}

func TestCountNodesSumsFunctionsAndGlobals(t *testing.T) {
	p := newTestProgram()
	intT := p.Types.Builtin(types.I32)

	fID := p.Ident.MakeNewID("f")
	p.Add(&Decl{Kind: FunctionDecl, Name: fID, RetType: intT, Body: ast.NewCompound([]*ast.Statement{ast.NewBreak(), ast.NewBreak()})})

	gID := p.Ident.MakeNewID("g")
	p.Add(&Decl{Kind: GlobalVarDecl, Name: gID, VarType: intT, Init: ast.NewConstant("1", intT)})

	// function body: Compound(1) + Break(1) + Break(1) = 3
	// global init: Constant(1) = 1
	if n := p.CountNodes(); n != 4 {
		t.Fatalf("expected 4 total nodes, got %d", n)
	}
}

func TestQueueVerifyCoalescesNestedScopes(t *testing.T) {
	p := newTestProgram()
	intT := p.Types.Builtin(types.I32)
	fID := p.Ident.MakeNewID("f")
	p.Add(&Decl{Kind: FunctionDecl, Name: fID, RetType: intT, Body: ast.NewCompound(nil)})

	outer := p.QueueVerify()
	inner := p.QueueVerify()

	if err := inner(); err != nil {
		t.Fatalf("inner release should be a no-op, got error: %v", err)
	}
	if err := outer(); err != nil {
		t.Fatalf("outer release should succeed on a valid program: %v", err)
	}
}

func TestQueueVerifyOutermostCatchesInvariantViolation(t *testing.T) {
	p := newTestProgram()
	intT := p.Types.Builtin(types.I32)
	fID := p.Ident.MakeNewID("f")
	// Goto with no matching label — invariant violation.
	badGoto := p.Ident.MakeNewID("nowhere")
	body := ast.NewCompound([]*ast.Statement{ast.NewGoto(badGoto)})
	p.Add(&Decl{Kind: FunctionDecl, Name: fID, RetType: intT, Body: body})

	release := p.QueueVerify()
	if err := release(); err == nil {
		t.Fatal("expected VerifySelf to catch the dangling goto")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	p := newTestProgram()
	intT := p.Types.Builtin(types.I32)
	fID := p.Ident.MakeNewID("f")
	p.Add(&Decl{Kind: FunctionDecl, Name: fID, RetType: intT, Body: ast.NewCompound([]*ast.Statement{ast.NewBreak()})})

	clone := p.Clone()
	clone.Decls.Functions[0].Body.Children[0].Kind = ast.Empty

	if p.Decls.Functions[0].Body.Children[0].Kind != ast.Break {
		t.Fatal("mutating the clone's body affected the original program")
	}

	clone.Ident.MakeNewID("new_in_clone")
	if _, ok := p.Ident.Lookup("new_in_clone"); ok {
		t.Fatal("mutating the clone's identifier table affected the original")
	}
}

func TestGCTypesKeepsReachableSweepsRest(t *testing.T) {
	p := newTestProgram()
	intT := p.Types.Builtin(types.I32)
	usedPtr := p.Types.GetOrCreateDerived(types.Pointer, intT)
	unusedPtr := p.Types.GetOrCreateDerived(types.Pointer, p.Types.Builtin(types.F64))

	fID := p.Ident.MakeNewID("f")
	p.Add(&Decl{Kind: FunctionDecl, Name: fID, RetType: usedPtr, Body: ast.NewCompound(nil)})

	p.GCTypes()

	if !p.Types.IsValid(usedPtr) {
		t.Fatal("reachable return type should survive GC")
	}
	if p.Types.IsValid(unusedPtr) {
		t.Fatal("unreachable type should be swept")
	}
}
