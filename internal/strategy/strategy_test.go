package strategy

import (
	"testing"

	"ubfuzz/internal/rng"
)

func TestDefaultWeightIsHalf(t *testing.T) {
	s := New("test")
	if s.Get(CallBuiltin) != DefaultWeight {
		t.Fatalf("expected default weight %v, got %v", DefaultWeight, s.Get(CallBuiltin))
	}
}

func TestInstanceRecordsDecisions(t *testing.T) {
	s := New("test")
	s.Set(UseSnippet, 1) // always taken
	inst := NewInstance(s, rng.New(1))

	if !inst.Decision(UseSnippet) {
		t.Fatal("expected UseSnippet to always be taken at weight 1")
	}
	if len(inst.Decisions) != 1 || inst.Decisions[0].Site != UseSnippet || !inst.Decisions[0].Taken {
		t.Fatalf("unexpected decision log: %#v", inst.Decisions)
	}
}

func TestInstanceDecisionNeverAtZero(t *testing.T) {
	s := New("test")
	s.Set(UseSnippet, 0)
	inst := NewInstance(s, rng.New(1))
	for i := 0; i < 20; i++ {
		if inst.Decision(UseSnippet) {
			t.Fatal("weight-0 decision should never be taken")
		}
	}
}

func TestReductionStrategyWeightsAreLow(t *testing.T) {
	reduce := baseReductionStrategy()
	for _, site := range AllSites() {
		if site == MutateOverDelete || site == DeleteFuncAttrs {
			continue
		}
		allowed := map[Site]bool{
			CleanupCompound: true, DeleteStmtInCompound: true, DeleteTypes: true,
			SimplifyStmt: true, EmptyCompound: true, DeleteCompoundStmts: true,
		}
		w := reduce.Get(site)
		if allowed[site] {
			if w != 0.2 {
				t.Errorf("site %v: expected elevated weight 0.2, got %v", site, w)
			}
			continue
		}
		if w > 0.05 {
			t.Errorf("site %v: expected clamped weight <= 0.05, got %v", site, w)
		}
	}
	if reduce.Get(MutateOverDelete) != 0.8 {
		t.Errorf("expected MutateOverDelete=0.8, got %v", reduce.Get(MutateOverDelete))
	}
}

func TestMakeMutateStrategiesNamesAreDistinctAndBiased(t *testing.T) {
	strats := MakeMutateStrategies()
	if len(strats) != 8 {
		t.Fatalf("expected 8 strategies (7 named mutate variants plus the reduction strategy), got %d", len(strats))
	}
	seen := map[string]bool{}
	for _, s := range strats {
		if seen[s.Name] {
			t.Fatalf("duplicate strategy name %q", s.Name)
		}
		seen[s.Name] = true
	}

	var stmtFocused *Strategy
	for _, s := range strats {
		if s.Name == "mutate stmt" {
			stmtFocused = s
		}
	}
	if stmtFocused == nil {
		t.Fatal("expected a 'mutate stmt' strategy")
	}
	if stmtFocused.Get(PreferModifyingStmtsOverExprs) != nearlyAlways {
		t.Fatalf("stmt-focused strategy should bias PreferModifyingStmtsOverExprs high, got %v",
			stmtFocused.Get(PreferModifyingStmtsOverExprs))
	}
}

func TestSiteStringRoundTrips(t *testing.T) {
	for _, s := range AllSites() {
		if s.String() == "INVALID" {
			t.Fatalf("site %d has no name", s)
		}
	}
}
