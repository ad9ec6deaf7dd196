package generator

import (
	"ubfuzz/internal/ast"
	"ubfuzz/internal/program"
	"ubfuzz/internal/types"
)

// codeMover implements the two code-relocation mutations the original
// marks "unused"/TODO (outlineStatement, inlineCall): they're fully
// implemented here but not wired into any default mutate-strategy dispatch,
// matching the conservative capture-semantics decision recorded in
// DESIGN.md — a moved statement that still references a not-yet-visible
// variable would silently break scoping, and neither engine tracks free
// variables yet.
type codeMover struct {
	md       *MutatorData
	builtins *builtinRegistry
}

func newCodeMover(md *MutatorData, builtins *builtinRegistry) *codeMover {
	return &codeMover{md: md, builtins: builtins}
}

// outlineStatement moves s into a freshly created zero-argument function
// and replaces s with a call to it.
func (cm *codeMover) outlineStatement(s *ast.Statement) bool {
	pool := cm.md.Program.Types
	returnT := pool.Builtin(types.Void)
	if s.IsExpr() {
		returnT = s.EvalTypeOf()
	}

	name := cm.md.newID("outlined")
	newBody := s.Clone()
	if s.IsExpr() {
		newBody = ast.NewReturn(newBody)
	} else {
		newBody = ast.NewCompound([]*ast.Statement{newBody})
	}

	f := &program.Decl{Kind: program.FunctionDecl, Name: name, RetType: returnT, Body: newBody}
	if err := cm.md.Program.Add(f); err != nil {
		return false
	}

	isStmt := s.IsStmt()
	call := ast.NewCall(returnT, name, nil)
	if isStmt {
		*s = *ast.NewStmtExpr(call)
	} else {
		*s = *call
	}
	return true
}

// inlineCall replaces a Call expression/statement with the called
// function's own body, when that function isn't a builtin declaration
// (which has no body to inline).
func (cm *codeMover) inlineCall(call *ast.Statement) bool {
	if call.Kind != ast.Call {
		return false
	}
	f := cm.md.Program.FindFunction(call.JumpTarget())
	if f == nil || f.Body == nil {
		return false
	}
	*call = *f.Body.Clone()
	return true
}
