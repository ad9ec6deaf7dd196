package types

import (
	"testing"

	"ubfuzz/internal/ident"
)

func TestDerivedTypesAreMemoized(t *testing.T) {
	p := NewPool()
	intT := p.Builtin(I32)

	p1 := p.GetOrCreateDerived(Pointer, intT)
	p2 := p.GetOrCreateDerived(Pointer, intT)
	if p1 != p2 {
		t.Fatalf("expected memoized pointer ref, got %d and %d", p1, p2)
	}
}

func TestCVQualifiersDoNotNest(t *testing.T) {
	p := NewPool()
	intT := p.Builtin(I32)

	constInt := p.GetOrCreateDerived(Const, intT)
	doubleConst := p.GetOrCreateDerived(Const, constInt)
	if doubleConst != constInt {
		t.Fatalf("const-of-const should collapse to the same ref, got %d vs %d", doubleConst, constInt)
	}

	volOfConst := p.GetOrCreateDerived(Volatile, constInt)
	if volOfConst != constInt {
		t.Fatalf("volatile-of-const should refuse to nest, got new ref %d", volOfConst)
	}
}

func TestCVNeverWrapsArray(t *testing.T) {
	p := NewPool()
	intT := p.Builtin(I32)
	arr, err := p.GetOrCreateArray(intT, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	constArr := p.GetOrCreateDerived(Const, arr)
	if constArr != arr {
		t.Fatalf("const should refuse to wrap an array, got new ref %d", constArr)
	}
}

func TestArrayOfArrayRejected(t *testing.T) {
	p := NewPool()
	intT := p.Builtin(I32)
	arr, err := p.GetOrCreateArray(intT, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := p.GetOrCreateArray(arr, 4); err == nil {
		t.Fatal("expected error creating an array of an array")
	}
}

func TestArraysAreMemoizedBySize(t *testing.T) {
	p := NewPool()
	intT := p.Builtin(I32)
	a1, _ := p.GetOrCreateArray(intT, 8)
	a2, _ := p.GetOrCreateArray(intT, 8)
	a3, _ := p.GetOrCreateArray(intT, 9)
	if a1 != a2 {
		t.Fatalf("same-size arrays should memoize, got %d vs %d", a1, a2)
	}
	if a1 == a3 {
		t.Fatal("different-size arrays should not collide")
	}
}

func TestSweepInvalidatesUnreachableKeepsReachable(t *testing.T) {
	p := NewPool()
	intT := p.Builtin(I32)
	keep := p.GetOrCreateDerived(Pointer, intT)
	drop := p.GetOrCreateDerived(Pointer, p.Builtin(F64))

	p.Sweep([]Ref{keep})

	if !p.IsValid(keep) {
		t.Fatal("reachable type was swept")
	}
	if p.IsValid(drop) {
		t.Fatal("unreachable type survived sweep")
	}
	// Builtins always survive regardless of roots.
	if !p.IsValid(intT) {
		t.Fatal("builtin type was swept")
	}
}

func TestSweepIDsAreStableAndNotReassigned(t *testing.T) {
	p := NewPool()
	intT := p.Builtin(I32)
	ptr := p.GetOrCreateDerived(Pointer, intT)
	before := p.Count()

	p.Sweep(nil) // nothing but builtins reachable
	if p.IsValid(ptr) {
		t.Fatal("expected pointer to be swept when unreferenced")
	}
	if p.Count() != before {
		t.Fatalf("sweep must not change slot count: before=%d after=%d", before, p.Count())
	}

	// Re-deriving the same pointer after a sweep must allocate a fresh ref,
	// not resurrect the swept one under stale memoization.
	ptr2 := p.GetOrCreateDerived(Pointer, intT)
	if ptr2 == ptr {
		t.Fatal("expected a fresh ref after sweep purged the memo entry")
	}
	if !p.IsValid(ptr2) {
		t.Fatal("freshly created ref should be valid")
	}
}

func TestRecordRefersBySelfByNameIDNotTypeRef(t *testing.T) {
	p := NewPool()
	intT := p.Builtin(I32)
	recName := ident.ID(7)
	selfPtr := p.GetOrCreateDerived(Pointer, p.Builtin(Void))
	rec := p.AddRecord(recName, []RecordField{
		{Name: ident.ID(1), Type: intT},
		{Name: ident.ID(2), Type: selfPtr},
	}, "Node")
	got := p.Get(rec)
	if got.RecordName != recName {
		t.Fatalf("expected record name id %d, got %d", recName, got.RecordName)
	}
	if len(got.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(got.Fields))
	}
}
