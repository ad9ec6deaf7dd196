package generator

import (
	"ubfuzz/internal/ast"
	"ubfuzz/internal/config"
	"ubfuzz/internal/ident"
	"ubfuzz/internal/program"
	"ubfuzz/internal/rng"
	"ubfuzz/internal/strategy"
	"ubfuzz/internal/types"
)

// MutatorData is the single context value every generator sub-engine
// shares: the program being edited, the bound strategy instance, the RNG,
// and a handful of scratch stacks. spec.md §9 models the original's
// base-class-with-shared-state mutator hierarchy as a collection of
// stateful engines passed this context explicitly, rather than as a class
// hierarchy.
type MutatorData struct {
	Program  *program.Program
	Strategy *strategy.Instance
	Rng      *rng.Source

	Limiters Limiters

	// ReuseStack holds statements the mutator has displaced, for the
	// "regenerate" mutation to draw a replacement of matching kind class
	// from (spec.md §4.G.6 step 5 "regenerate").
	ReuseStack []*ast.Statement

	// NewTypesThisStep counts type-pool allocations made during the
	// current mutation step, capped by config.MaxNewTypesPerMutation
	// (spec.md §4.C).
	NewTypesThisStep int
}

// NewMutatorData builds a fresh context for one generate/mutate/reduce call.
func NewMutatorData(p *program.Program, strat *strategy.Strategy, source *rng.Source) *MutatorData {
	return &MutatorData{
		Program:  p,
		Strategy: strategy.NewInstance(strat, source),
		Rng:      source,
		Limiters: NewLimiters(config.DefaultExprLimit, config.DefaultStmtLimit, config.DefaultFuncLimit, config.DefaultTypeLimit, config.DefaultRecordLimit),
	}
}

// decision is shorthand for md.Strategy.Decision.
func (md *MutatorData) decision(site strategy.Site) bool {
	return md.Strategy.Decision(site)
}

// newID allocates a fresh identifier with the given prefix.
func (md *MutatorData) newID(prefix string) ident.ID {
	return md.Program.Ident.MakeNewID(prefix)
}

// canAllocateType reports whether the per-step new-type cap still has room
// (spec.md §4.C: "recursion limiter caps new-type creation per mutation
// step to at most 3").
func (md *MutatorData) canAllocateType() bool {
	return md.NewTypesThisStep < config.MaxNewTypesPerMutation
}

func (md *MutatorData) chargeTypeAllocation() {
	md.NewTypesThisStep++
}

// isVarUsed reports whether varDecl's declared variable is referenced
// anywhere in parent — ported from UnsafeMutatorBase::isVarUsed.
func isVarUsed(parent, varDecl *ast.Statement) bool {
	id := varDecl.DeclaredVarID()
	found := false
	parent.ForAllChildren(func(n *ast.Statement) bool {
		if n.Kind == ast.LocalVarRef && n.ReferencedVarID() == id {
			found = true
		}
		return !found
	})
	return found
}

// canMutate reports whether s (a direct child of parent) may be directly
// modified/removed — ported from UnsafeMutatorBase::canMutate.
func canMutate(funcBody *ast.Statement, parent, s *ast.Statement) bool {
	// Don't remove catch statements directly; they must go via the Try.
	if parent.Kind == ast.Try && s.Kind == ast.Catch {
		return false
	}
	if s.Kind == ast.GotoLabel {
		// Refuse if some Goto in the function still targets this label.
		stillTargeted := false
		funcBody.ForAllChildren(func(n *ast.Statement) bool {
			if n.Kind == ast.Goto && n.JumpTarget() == s.JumpTarget() {
				stillTargeted = true
			}
			return !stillTargeted
		})
		if stillTargeted {
			return false
		}
	}
	// Array constants have weird placement rules; never touch them
	// directly (only via their owning VarDef).
	if s.Kind == ast.ConstantArray {
		return false
	}
	return true
}

// wrapExprInStmt probabilistically assigns a fresh expression to a new
// local variable rather than discarding its value as a bare expression
// statement, so the result is less likely to be optimized away by the
// oracle before it can do anything interesting (spec.md SPEC_FULL
// "wrapExprInStmt").
func (md *MutatorData) wrapExprInStmt(c *ast.Statement) *ast.Statement {
	if !c.IsExpr() {
		panic("generator: wrapExprInStmt called on a non-expression")
	}
	voidType := md.Program.Types.Builtin(types.Void)
	if c.EvalTypeOf() != voidType && md.decision(strategy.AssignExprToVar) {
		id := md.newID("v")
		return ast.NewVarDef(c.EvalTypeOf(), id, c)
	}
	return ast.NewStmtExpr(c)
}
