package generator

import "testing"

func TestLimiterReachedAfterLimitHits(t *testing.T) {
	l := NewLimiter(2)
	if l.Reached() {
		t.Fatal("a fresh Limiter should not be reached")
	}

	child1, release1 := l.Enter()
	if child1.Reached() {
		t.Fatal("depth 1 of limit 2 should not be reached")
	}

	child2, release2 := child1.Enter()
	if !child2.Reached() {
		t.Fatal("depth 2 of limit 2 should be reached")
	}

	release2()
	if child1.Reached() {
		t.Fatal("releasing the inner scope should restore the outer depth")
	}
	release1()
	if l.Reached() {
		t.Fatal("releasing every scope should return to depth 0")
	}
}

func TestLimiterSharesCounterAcrossCopies(t *testing.T) {
	l := NewLimiter(1)
	child, release := l.Enter()
	defer release()

	// l and child share the same backing counter: entering via child
	// should be visible through l too, since Limiter is a scoped view
	// over one counter, not an independent copy.
	if !l.Reached() {
		t.Fatal("expected the shared counter to report Reached through the original Limiter")
	}
	_ = child
}

func TestNewLimitersBuildsFiveIndependentLimiters(t *testing.T) {
	ls := NewLimiters(1, 2, 3, 4, 5)
	cases := []struct {
		name string
		l    Limiter
	}{
		{"Expr", ls.Expr},
		{"Stmt", ls.Stmt},
		{"Func", ls.Func},
		{"Type", ls.Type},
		{"Record", ls.Record},
	}
	for _, c := range cases {
		if c.l.Reached() {
			t.Fatalf("%s limiter should start unreached", c.name)
		}
	}

	// Entering Expr's limiter should not affect Stmt's independent counter.
	_, release := ls.Expr.Enter()
	defer release()
	if ls.Stmt.Reached() {
		t.Fatal("Stmt limiter should be independent of Expr's depth")
	}
}
