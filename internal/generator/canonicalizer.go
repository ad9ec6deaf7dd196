package generator

import "ubfuzz/internal/ast"

// canonicalizeStmt rewrites s into its canonical form: Empty statements
// drop out of compounds, and a nested `{{code}}` block flattens into
// `{code}` whenever the enclosing block itself declares no locals (so
// flattening can't let a nested declaration escape into a scope where a
// same-named sibling is already live). Ported from
// original_source/mutator/src/Canonicalizer.cpp. Idempotent: re-running it
// on its own output is a no-op, since a fully canonicalized tree reports no
// further changes at every node.
func canonicalizeStmt(s *ast.Statement) *ast.Statement {
	if out, changed := canonicalize(s); changed {
		return out
	}
	return s
}

func hasVarDecls(s *ast.Statement) bool {
	for _, c := range s.Children {
		if c.Kind == ast.VarDecl || c.Kind == ast.VarDef {
			return true
		}
	}
	return false
}

func canonicalize(s *ast.Statement) (*ast.Statement, bool) {
	switch s.Kind {
	case ast.Compound:
		hasChanges := false
		var newChildren []*ast.Statement
		for _, child := range s.Children {
			if child.Kind == ast.Empty {
				hasChanges = true
				continue
			}
			newChild := child
			if canon, changed := canonicalize(child); changed {
				newChild = canon
				hasChanges = true
			}
			if newChild.Kind == ast.Compound && !hasVarDecls(s) {
				newChildren = append(newChildren, newChild.Children...)
				hasChanges = true
			} else {
				newChildren = append(newChildren, newChild)
			}
		}
		if !hasChanges {
			return nil, false
		}
		return ast.NewCompound(newChildren), true

	case ast.If:
		newThen, changed := canonicalize(s.Children[1])
		if !changed {
			return nil, false
		}
		var els *ast.Statement
		if len(s.Children) > 2 {
			els = s.Children[2]
		}
		return ast.NewIf(s.Children[0], newThen, els), true

	case ast.While:
		newBody, changed := canonicalize(s.Children[1])
		if !changed {
			return nil, false
		}
		return ast.NewWhile(s.Children[0], newBody), true

	case ast.Try:
		hasChanges := false
		newChildren := make([]*ast.Statement, len(s.Children))
		for i, child := range s.Children {
			newChildren[i] = child
			if canon, changed := canonicalize(child); changed {
				newChildren[i] = canon
				hasChanges = true
			}
		}
		if !hasChanges {
			return nil, false
		}
		return ast.NewTry(newChildren[0], newChildren[1:]), true

	case ast.Catch:
		newBody, changed := canonicalize(s.Children[0])
		if !changed {
			return nil, false
		}
		return ast.NewCatch(s.Var.Type, s.Var.Name, newBody), true

	default:
		return nil, false
	}
}
