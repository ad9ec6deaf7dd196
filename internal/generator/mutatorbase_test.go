package generator

import (
	"testing"

	"ubfuzz/internal/ast"
	"ubfuzz/internal/config"
	"ubfuzz/internal/program"
	"ubfuzz/internal/rng"
	"ubfuzz/internal/strategy"
	"ubfuzz/internal/types"
)

func newTestMutatorData() (*MutatorData, *program.Program) {
	p := Generate(rng.New(3), config.DefaultLangOpts())
	md := NewMutatorData(p, strategy.New("default"), rng.New(3))
	return md, p
}

func TestCanAllocateTypeCapsAtMaxNewTypesPerMutation(t *testing.T) {
	md, _ := newTestMutatorData()
	for i := 0; i < config.MaxNewTypesPerMutation; i++ {
		if !md.canAllocateType() {
			t.Fatalf("expected room for allocation %d of %d", i, config.MaxNewTypesPerMutation)
		}
		md.chargeTypeAllocation()
	}
	if md.canAllocateType() {
		t.Fatal("expected canAllocateType to be false once the per-step cap is reached")
	}
}

func TestNewIDAllocatesDistinctIdentifiers(t *testing.T) {
	md, _ := newTestMutatorData()
	a := md.newID("v")
	b := md.newID("v")
	if a == b {
		t.Fatal("expected two calls to newID to return distinct identifiers")
	}
}

func TestIsVarUsedFindsAReferencedVariable(t *testing.T) {
	md, p := newTestMutatorData()
	intType := p.Types.Builtin(types.I32)
	id := md.newID("x")
	v := ast.Variable{Type: intType, Name: id}

	decl := ast.NewVarDecl(intType, id)
	ref := ast.NewLocalVarRef(v)
	body := ast.NewCompound([]*ast.Statement{decl, ast.NewStmtExpr(ref)})

	if !isVarUsed(body, decl) {
		t.Fatal("expected isVarUsed to find the LocalVarRef referencing decl")
	}
}

func TestIsVarUsedReportsFalseWhenUnreferenced(t *testing.T) {
	md, p := newTestMutatorData()
	intType := p.Types.Builtin(types.I32)
	id := md.newID("y")
	decl := ast.NewVarDecl(intType, id)
	body := ast.NewCompound([]*ast.Statement{decl, ast.NewEmpty()})

	if isVarUsed(body, decl) {
		t.Fatal("expected isVarUsed to report false with no referencing statement")
	}
}

func TestCanMutateRefusesConstantArrays(t *testing.T) {
	arr := ast.NewConstantArray(nil, types.Ref(0))
	parent := ast.NewCompound([]*ast.Statement{arr})
	if canMutate(parent, parent, arr) {
		t.Fatal("expected canMutate to refuse a ConstantArray statement")
	}
}

func TestCanMutateRefusesCatchDirectlyUnderTry(t *testing.T) {
	body := ast.NewEmpty()
	catch := ast.NewCatch(types.Ref(0), 1, body)
	tryStmt := ast.NewTry(ast.NewEmpty(), []*ast.Statement{catch})
	if canMutate(tryStmt, tryStmt, catch) {
		t.Fatal("expected canMutate to refuse removing a Catch directly under its Try")
	}
}

func TestCanMutateAllowsAnOrdinaryStatement(t *testing.T) {
	empty := ast.NewEmpty()
	parent := ast.NewCompound([]*ast.Statement{empty})
	if !canMutate(parent, parent, empty) {
		t.Fatal("expected canMutate to allow an ordinary Empty statement")
	}
}

func TestWrapExprInStmtPanicsOnNonExpression(t *testing.T) {
	md, _ := newTestMutatorData()
	defer func() {
		if recover() == nil {
			t.Fatal("expected wrapExprInStmt to panic on a non-expression statement")
		}
	}()
	md.wrapExprInStmt(ast.NewEmpty())
}
