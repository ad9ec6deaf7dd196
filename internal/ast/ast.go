// Package ast implements the unified statement/expression tree from
// spec.md §3.4 and the structural queries/invariants of spec.md §4.D.
package ast

import (
	"fmt"

	"ubfuzz/internal/ident"
	"ubfuzz/internal/types"
)

// Kind discriminates the tagged Statement variant. Statements (eval type
// void) and expressions (eval type carried in Statement.EvalType) share one
// enumeration, per spec.md §3.4.
type Kind int

const (
	// Statements.
	Empty Kind = iota
	Compound
	If
	While
	Return
	VoidReturn
	Break
	VarDecl
	VarDef
	Asm
	Try
	Catch
	CatchAll
	Throw
	Goto
	GotoLabel
	StmtExpr
	Delete
	CommentStmt

	// Expressions.
	Constant
	ConstantArray
	Cast
	BinaryOp
	Call
	IndirectCall
	New
	Deref
	AddrOf
	AddrOfFunc
	Subscript
	LocalVarRef
	GlobalVarRef
)

var exprKinds = map[Kind]bool{
	Constant: true, ConstantArray: true, Cast: true, BinaryOp: true,
	Call: true, IndirectCall: true, New: true, Deref: true, AddrOf: true,
	AddrOfFunc: true, Subscript: true, LocalVarRef: true, GlobalVarRef: true,
}

var kindNames = map[Kind]string{
	Empty: "Empty", Compound: "Compound", If: "If", While: "While",
	Return: "Return", VoidReturn: "VoidReturn", Break: "Break",
	VarDecl: "VarDecl", VarDef: "VarDef", Asm: "Asm", Try: "Try",
	Catch: "Catch", CatchAll: "CatchAll", Throw: "Throw", Goto: "Goto",
	GotoLabel: "GotoLabel", StmtExpr: "StmtExpr", Delete: "Delete",
	CommentStmt: "CommentStmt", Constant: "Constant",
	ConstantArray: "ConstantArray", Cast: "Cast", BinaryOp: "BinaryOp",
	Call: "Call", IndirectCall: "IndirectCall", New: "New", Deref: "Deref",
	AddrOf: "AddrOf", AddrOfFunc: "AddrOfFunc", Subscript: "Subscript",
	LocalVarRef: "LocalVarRef", GlobalVarRef: "GlobalVarRef",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Variable is (TypeRef, NameID), per spec.md §3.3.
type Variable struct {
	Type types.Ref
	Name ident.ID
}

// BinaryOpKind classifies the legal operators for BinaryOp, per spec.md
// §3.4. Which category a given op belongs to governs which eval types the
// generator may draw for its operands.
type BinaryOpKind int

const (
	OpInteger BinaryOpKind = iota
	OpFloat
	OpPointer
)

// IntegerOps, FloatOps, and PointerOps are the closed operator vocabularies
// spec.md §3.4 assigns to each BinaryOp category.
var IntegerOps = []string{"+", "-", "*", "/", "%", "&", "|", "^", "<<", ">>", "<", ">", "<=", ">=", "==", "!=", "&&", "||", "="}
var FloatOps = []string{"+", "-", "*", "/", "<", ">", "<=", ">=", "==", "!=", "&&", "||", "="}
var PointerOps = []string{"+", "-", "<", ">", "<=", ">=", "==", "!=", "="}

// Statement is the unified tagged-variant tree node for both statements and
// expressions. Which fields are meaningful is determined by Kind; see the
// per-Kind comments on the fields below and the constructors further down.
type Statement struct {
	Kind Kind

	// EvalType is meaningful for expression Kinds only; statements carry
	// the zero Ref (conceptually "void" — never dereferenced via EvalType).
	EvalType types.Ref

	// Children holds ordered sub-statements/sub-expressions. The order is
	// canonical: it is the order used both for printing and for
	// ForAllChildren/GetAllChildren traversal. Per-Kind meaning:
	//   Compound:      every statement in the block
	//   If:            [cond, then] or [cond, then, else]
	//   While:         [cond, body]
	//   Return:        [expr]
	//   VarDef:        [init]
	//   Try:           [body, catch..., catchAll?]
	//   Catch/CatchAll:[body]
	//   Throw:         [expr]
	//   StmtExpr:      [expr]
	//   Delete:        [expr]
	//   ConstantArray: [values...]
	//   Cast:          [inner]
	//   BinaryOp:      [lhs, rhs]
	//   Call:          [args...]
	//   IndirectCall:  [target, args...]
	//   New:           [args...]
	//   Deref:         [ptrExpr]
	//   AddrOf:        [lvalueExpr]
	//   Subscript:     [base, index]
	Children []*Statement

	// Var carries the declared/referenced variable for VarDecl, VarDef,
	// LocalVarRef, and GlobalVarRef.
	Var Variable

	// NameRef carries a referenced NameID for Kinds that don't own a full
	// Variable: Call/AddrOfFunc (the called/addressed function), and
	// Goto/GotoLabel (the jump target / this label's own id).
	NameRef ident.ID

	// Op carries the operator token for BinaryOp.
	Op string

	// Text carries literal source text: Constant's literal spelling, Asm's
	// assembly string, CommentStmt's comment body.
	Text string
}

// IsExpr reports whether s is an expression Kind (carries an EvalType).
func (s *Statement) IsExpr() bool { return exprKinds[s.Kind] }

// IsStmt reports whether s is a statement Kind (eval type void).
func (s *Statement) IsStmt() bool { return !exprKinds[s.Kind] }

// EvalTypeOf returns s.EvalType; meaningful only when IsExpr() is true.
func (s *Statement) EvalTypeOf() types.Ref { return s.EvalType }

// ChildrenOf returns s's ordered child list — the canonical order used for
// both printing and traversal (spec.md §4.D).
func (s *Statement) ChildrenOf() []*Statement { return s.Children }

// ForAllChildren runs a pre-order traversal over s and its descendants,
// short-circuiting as soon as pred returns false.
func (s *Statement) ForAllChildren(pred func(*Statement) bool) bool {
	if !pred(s) {
		return false
	}
	for _, c := range s.Children {
		if !c.ForAllChildren(pred) {
			return false
		}
	}
	return true
}

// ChildParent pairs a node with its direct parent, used by
// GetAllChildren for flat random-child selection.
type ChildParent struct {
	Child  *Statement
	Parent *Statement
}

// GetAllChildren returns every descendant of s (excluding s itself) paired
// with its direct parent, in pre-order.
func (s *Statement) GetAllChildren() []ChildParent {
	var out []ChildParent
	var walk func(parent *Statement)
	walk = func(parent *Statement) {
		for _, c := range parent.Children {
			out = append(out, ChildParent{Child: c, Parent: parent})
			walk(c)
		}
	}
	walk(s)
	return out
}

// UsesID reports whether any LocalVarRef/GlobalVarRef/Call/AddrOfFunc/Goto
// in the subtree rooted at s references id, and whether any VarDecl/VarDef/
// GotoLabel in it declares id.
func (s *Statement) UsesID(id ident.ID) bool {
	found := false
	s.ForAllChildren(func(n *Statement) bool {
		switch n.Kind {
		case LocalVarRef, GlobalVarRef:
			if n.Var.Name == id {
				found = true
			}
		case Call, AddrOfFunc, Goto, GotoLabel:
			if n.NameRef == id {
				found = true
			}
		case VarDecl, VarDef:
			if n.Var.Name == id {
				found = true
			}
		}
		return !found
	})
	return found
}

// DeclaredVarID returns the NameID a VarDecl/VarDef declares.
func (s *Statement) DeclaredVarID() ident.ID { return s.Var.Name }

// ReferencedVarID returns the NameID a LocalVarRef/GlobalVarRef names.
func (s *Statement) ReferencedVarID() ident.ID { return s.Var.Name }

// JumpTarget returns the NameID a Goto targets or a GotoLabel names.
func (s *Statement) JumpTarget() ident.ID { return s.NameRef }

// --- Constructors. One per Kind, matching spec.md §3.4's list exactly. ---

func NewEmpty() *Statement { return &Statement{Kind: Empty} }

func NewCompound(stmts []*Statement) *Statement {
	return &Statement{Kind: Compound, Children: stmts}
}

func NewIf(cond, then *Statement, els *Statement) *Statement {
	children := []*Statement{cond, then}
	if els != nil {
		children = append(children, els)
	}
	return &Statement{Kind: If, Children: children}
}

func NewWhile(cond, body *Statement) *Statement {
	return &Statement{Kind: While, Children: []*Statement{cond, body}}
}

func NewReturn(expr *Statement) *Statement {
	return &Statement{Kind: Return, Children: []*Statement{expr}}
}

func NewVoidReturn() *Statement { return &Statement{Kind: VoidReturn} }

func NewBreak() *Statement { return &Statement{Kind: Break} }

func NewVarDecl(t types.Ref, id ident.ID) *Statement {
	return &Statement{Kind: VarDecl, Var: Variable{Type: t, Name: id}}
}

func NewVarDef(t types.Ref, id ident.ID, init *Statement) *Statement {
	return &Statement{Kind: VarDef, Var: Variable{Type: t, Name: id}, Children: []*Statement{init}}
}

func NewAsm(text string) *Statement { return &Statement{Kind: Asm, Text: text} }

func NewTry(body *Statement, catches []*Statement) *Statement {
	return &Statement{Kind: Try, Children: append([]*Statement{body}, catches...)}
}

func NewCatch(t types.Ref, id ident.ID, body *Statement) *Statement {
	return &Statement{Kind: Catch, Var: Variable{Type: t, Name: id}, Children: []*Statement{body}}
}

func NewCatchAll(body *Statement) *Statement {
	return &Statement{Kind: CatchAll, Children: []*Statement{body}}
}

func NewThrow(expr *Statement) *Statement {
	return &Statement{Kind: Throw, Children: []*Statement{expr}}
}

func NewGoto(target ident.ID) *Statement { return &Statement{Kind: Goto, NameRef: target} }

func NewGotoLabel(id ident.ID) *Statement { return &Statement{Kind: GotoLabel, NameRef: id} }

func NewStmtExpr(expr *Statement) *Statement {
	return &Statement{Kind: StmtExpr, Children: []*Statement{expr}}
}

func NewDelete(expr *Statement) *Statement {
	return &Statement{Kind: Delete, Children: []*Statement{expr}}
}

func NewCommentStmt(text string) *Statement { return &Statement{Kind: CommentStmt, Text: text} }

func NewConstant(text string, t types.Ref) *Statement {
	return &Statement{Kind: Constant, Text: text, EvalType: t}
}

func NewConstantArray(values []*Statement, t types.Ref) *Statement {
	return &Statement{Kind: ConstantArray, Children: values, EvalType: t}
}

func NewCast(t types.Ref, inner *Statement) *Statement {
	return &Statement{Kind: Cast, EvalType: t, Children: []*Statement{inner}}
}

func NewBinaryOp(op string, lhs, rhs *Statement, t types.Ref) *Statement {
	return &Statement{Kind: BinaryOp, Op: op, EvalType: t, Children: []*Statement{lhs, rhs}}
}

func NewCall(t types.Ref, funcID ident.ID, args []*Statement) *Statement {
	return &Statement{Kind: Call, NameRef: funcID, EvalType: t, Children: args}
}

func NewIndirectCall(t types.Ref, target *Statement, args []*Statement) *Statement {
	return &Statement{Kind: IndirectCall, EvalType: t, Children: append([]*Statement{target}, args...)}
}

func NewNew(t types.Ref, args []*Statement) *Statement {
	return &Statement{Kind: New, EvalType: t, Children: args}
}

func NewDeref(t types.Ref, ptrExpr *Statement) *Statement {
	return &Statement{Kind: Deref, EvalType: t, Children: []*Statement{ptrExpr}}
}

func NewAddrOf(t types.Ref, lvalueExpr *Statement) *Statement {
	return &Statement{Kind: AddrOf, EvalType: t, Children: []*Statement{lvalueExpr}}
}

func NewAddrOfFunc(t types.Ref, funcID ident.ID) *Statement {
	return &Statement{Kind: AddrOfFunc, EvalType: t, NameRef: funcID}
}

func NewSubscript(t types.Ref, base, index *Statement) *Statement {
	return &Statement{Kind: Subscript, EvalType: t, Children: []*Statement{base, index}}
}

func NewLocalVarRef(v Variable) *Statement {
	return &Statement{Kind: LocalVarRef, Var: v, EvalType: v.Type}
}

func NewGlobalVarRef(v Variable) *Statement {
	return &Statement{Kind: GlobalVarRef, Var: v, EvalType: v.Type}
}

// Clone deep-copies s and its entire subtree, used by Program's clone
// (spec.md §3.6) and by the statement mutator's reuse stack.
func (s *Statement) Clone() *Statement {
	if s == nil {
		return nil
	}
	clone := *s
	if s.Children != nil {
		clone.Children = make([]*Statement, len(s.Children))
		for i, c := range s.Children {
			clone.Children[i] = c.Clone()
		}
	}
	return &clone
}

// CountNodes returns the number of nodes in the subtree rooted at s
// (inclusive), used as Program's size score (spec.md §4.E count_nodes).
func (s *Statement) CountNodes() int {
	n := 1
	for _, c := range s.Children {
		n += c.CountNodes()
	}
	return n
}
