package generator

import (
	"ubfuzz/internal/ast"
	"ubfuzz/internal/strategy"
)

// simplifier shrinks code in place without changing the set of
// identifiers in scope — every rewrite replaces a subtree with a simpler
// shape (an empty or thinned compound, an Empty statement, or a cast
// constant). A rewrite does not always lower the node count: a one-node
// expression replaced by its two-node Cast(Constant) grows by one. Ported from
// original_source/mutator/src/Simplifier.cpp.
type simplifier struct {
	md       *MutatorData
	literals *literalMaker
}

func newSimplifier(md *MutatorData) *simplifier {
	return &simplifier{md: md, literals: newLiteralMaker(md)}
}

// SimplifyStmt tries to shrink s (a direct child of parent, within
// funcBody) in place. Reports whether it changed anything.
func (sp *simplifier) SimplifyStmt(funcBody, parent, s *ast.Statement) bool {
	if !canMutate(funcBody, parent, s) {
		return false
	}
	if s.Kind == ast.Compound && sp.md.decision(strategy.EmptyCompound) {
		*s = *ast.NewCompound(nil)
		return true
	}

	if sp.SimplifyCompound(s) {
		return true
	}

	// A statement Kind's EvalType is conceptually void (spec.md §3.4); the
	// Empty rewrite below is this function's analog of the original's
	// `s.getEvalType() == Void()` check.
	if s.IsStmt() {
		*s = *ast.NewEmpty()
		return true
	}
	*s = *sp.literals.MakeConstant(s.EvalTypeOf())
	return true
}

// SimplifyCompound tries to shrink a Compound node in place: either drop
// every Empty child, or (failing that / when DeleteCompoundStmts fires)
// drop a random subset of children outright.
func (sp *simplifier) SimplifyCompound(s *ast.Statement) bool {
	if s.Kind != ast.Compound {
		return false
	}
	if sp.md.decision(strategy.CleanupCompound) {
		var clean []*ast.Statement
		for _, c := range s.Children {
			if c.Kind != ast.Empty {
				clean = append(clean, c)
			}
		}
		if len(clean) == len(s.Children) {
			return false
		}
		*s = *ast.NewCompound(clean)
		return true
	}

	if !sp.md.decision(strategy.DeleteCompoundStmts) {
		return false
	}

	var clean []*ast.Statement
	for _, c := range s.Children {
		if !sp.md.decision(strategy.DeleteStmtInCompound) {
			clean = append(clean, c)
		}
	}
	if len(clean) == 0 {
		clean = []*ast.Statement{ast.NewEmpty()}
	}
	if len(clean) == len(s.Children) {
		return false
	}
	*s = *ast.NewCompound(clean)
	return true
}
