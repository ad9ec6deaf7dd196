package ast

import (
	"fmt"

	"ubfuzz/internal/ident"
	"ubfuzz/internal/types"
)

// VerifySelf runs the structural invariants spec.md §3.4 assigns to a
// function body (or any standalone statement tree, such as a global
// initializer): type-legality of expression children, identifier
// resolution, Goto/GotoLabel consistency, Catch nesting, and ConstantArray
// placement. A non-nil error here signals a generator bug — the caller is
// expected to treat it as fatal (spec.md §7 InvariantViolation) and discard
// the mutation that produced it.
func VerifySelf(root *Statement, pool *types.Pool, idt *ident.Table) error {
	labels := map[ident.ID]bool{}
	root.ForAllChildren(func(n *Statement) bool {
		if n.Kind == GotoLabel {
			labels[n.NameRef] = true
		}
		return true
	})

	var err error
	record := func(e error) bool {
		if err == nil {
			err = e
		}
		return err == nil
	}

	root.ForAllChildren(func(n *Statement) bool {
		switch n.Kind {
		case LocalVarRef, GlobalVarRef:
			if !idt.Resolves(n.Var.Name) {
				return record(fmt.Errorf("ast: VarRef to unresolved NameID %d", n.Var.Name))
			}
		case VarDecl, VarDef:
			if !idt.Resolves(n.Var.Name) {
				return record(fmt.Errorf("ast: VarDecl/VarDef of unresolved NameID %d", n.Var.Name))
			}
		case Call, AddrOfFunc:
			if !idt.Resolves(n.NameRef) {
				return record(fmt.Errorf("ast: %v references unresolved NameID %d", n.Kind, n.NameRef))
			}
		case Goto:
			if !labels[n.NameRef] {
				return record(fmt.Errorf("ast: Goto target %d has no enclosing GotoLabel", n.NameRef))
			}
		case Deref:
			ptr := n.Children[0]
			strippedPtrType := pool.StripCV(ptr.EvalType)
			pt := pool.Get(strippedPtrType)
			if pt.Kind != types.Pointer {
				return record(fmt.Errorf("ast: Deref operand is not a pointer type"))
			}
			if pool.StripCV(pt.Base) != pool.StripCV(n.EvalType) {
				return record(fmt.Errorf("ast: Deref result type does not match pointer base"))
			}
		case AddrOf:
			lvalue := n.Children[0]
			strippedResult := pool.StripCV(n.EvalType)
			rt := pool.Get(strippedResult)
			if rt.Kind != types.Pointer {
				return record(fmt.Errorf("ast: AddrOf result is not a pointer type"))
			}
			if pool.StripCV(rt.Base) != pool.StripCV(lvalue.EvalType) {
				return record(fmt.Errorf("ast: AddrOf result does not point to operand's type"))
			}
		}
		return err == nil
	})
	if err != nil {
		return err
	}

	for _, cp := range root.GetAllChildren() {
		if cp.Child.Kind == Catch && cp.Parent.Kind != Try {
			return fmt.Errorf("ast: Catch appears outside a Try")
		}
		if cp.Child.Kind == ConstantArray && cp.Parent.Kind != VarDef {
			return fmt.Errorf("ast: ConstantArray used outside a variable initializer")
		}
	}

	return nil
}
