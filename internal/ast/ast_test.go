package ast

import (
	"testing"

	"ubfuzz/internal/ident"
	"ubfuzz/internal/types"
)

func TestForAllChildrenShortCircuits(t *testing.T) {
	leaf1 := NewBreak()
	leaf2 := NewBreak()
	body := NewCompound([]*Statement{leaf1, leaf2})

	visited := 0
	body.ForAllChildren(func(s *Statement) bool {
		visited++
		return visited < 2
	})
	if visited != 2 {
		t.Fatalf("expected short-circuit after 2 visits, got %d", visited)
	}
}

func TestGetAllChildrenExcludesRoot(t *testing.T) {
	cond := NewConstant("1", 0)
	thenBranch := NewBreak()
	ifStmt := NewIf(cond, thenBranch, nil)

	all := ifStmt.GetAllChildren()
	for _, cp := range all {
		if cp.Child == ifStmt {
			t.Fatal("root should never appear as a child")
		}
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 descendants (cond, then), got %d", len(all))
	}
}

func TestCanonicalChildOrderForIf(t *testing.T) {
	cond := NewConstant("1", 0)
	then := NewBreak()
	els := NewBreak()
	ifStmt := NewIf(cond, then, els)

	children := ifStmt.ChildrenOf()
	if len(children) != 3 || children[0] != cond || children[1] != then || children[2] != els {
		t.Fatalf("unexpected child order: %#v", children)
	}
}

func TestCountNodes(t *testing.T) {
	inner := NewCompound([]*Statement{NewBreak(), NewBreak()})
	outer := NewCompound([]*Statement{inner, NewBreak()})
	// outer(1) + inner(1) + break(1) + break(1) + break(1) = 5
	if n := outer.CountNodes(); n != 5 {
		t.Fatalf("expected 5 nodes, got %d", n)
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := NewCompound([]*Statement{NewBreak()})
	clone := orig.Clone()
	clone.Children[0].Kind = Empty

	if orig.Children[0].Kind != Break {
		t.Fatal("mutating the clone affected the original")
	}
}

func TestVerifySelfCatchOutsideTry(t *testing.T) {
	pool := types.NewPool()
	idt := ident.NewTable()

	body := NewCompound([]*Statement{NewCatchAll(NewCompound(nil))})
	if err := VerifySelf(body, pool, idt); err != nil {
		t.Fatalf("CatchAll outside Try is not restricted by spec, got error: %v", err)
	}

	catchVar := idt.MakeNewID("e")
	bad := NewCompound([]*Statement{NewCatch(pool.Builtin(types.I32), catchVar, NewCompound(nil))})
	if err := VerifySelf(bad, pool, idt); err == nil {
		t.Fatal("expected error for Catch outside Try")
	}
}

func TestVerifySelfConstantArrayOutsideInit(t *testing.T) {
	pool := types.NewPool()
	idt := ident.NewTable()
	arrType, _ := pool.GetOrCreateArray(pool.Builtin(types.I32), 4)

	constArr := NewConstantArray([]*Statement{NewConstant("1", pool.Builtin(types.I32))}, arrType)
	bad := NewCompound([]*Statement{NewStmtExpr(constArr)})
	if err := VerifySelf(bad, pool, idt); err == nil {
		t.Fatal("expected error for ConstantArray outside a VarDef initializer")
	}

	id := idt.MakeNewID("arr")
	good := NewCompound([]*Statement{NewVarDef(arrType, id, constArr)})
	if err := VerifySelf(good, pool, idt); err != nil {
		t.Fatalf("ConstantArray as VarDef init should be legal: %v", err)
	}
}

func TestVerifySelfGotoRequiresLabel(t *testing.T) {
	pool := types.NewPool()
	idt := ident.NewTable()
	label := idt.MakeNewID("L")

	withLabel := NewCompound([]*Statement{NewGoto(label), NewGotoLabel(label)})
	if err := VerifySelf(withLabel, pool, idt); err != nil {
		t.Fatalf("goto with matching label should verify: %v", err)
	}

	missing := idt.MakeNewID("M")
	withoutLabel := NewCompound([]*Statement{NewGoto(missing)})
	if err := VerifySelf(withoutLabel, pool, idt); err == nil {
		t.Fatal("expected error for goto with no matching label")
	}
}

func TestVerifySelfDerefTypeMismatch(t *testing.T) {
	pool := types.NewPool()
	idt := ident.NewTable()
	intT := pool.Builtin(types.I32)
	ptrT := pool.GetOrCreateDerived(types.Pointer, intT)

	ptrExpr := NewConstant("0", ptrT)
	good := NewCompound([]*Statement{NewStmtExpr(NewDeref(intT, ptrExpr))})
	if err := VerifySelf(good, pool, idt); err != nil {
		t.Fatalf("legal deref should verify: %v", err)
	}

	bad := NewCompound([]*Statement{NewStmtExpr(NewDeref(pool.Builtin(types.F64), ptrExpr))})
	if err := VerifySelf(bad, pool, idt); err == nil {
		t.Fatal("expected error for deref result type mismatch")
	}
}
