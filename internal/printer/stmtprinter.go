package printer

import (
	"strings"

	"ubfuzz/internal/ast"
)

// printStmt emits s (a statement Kind) at the printer's current indent,
// including its own trailing newline. Compound is the only Kind that
// changes pr.indent for its children.
func (pr *printer) printStmt(s *ast.Statement) {
	switch s.Kind {
	case ast.Empty:
		pr.writeIndent()
		pr.write(";\n")

	case ast.Compound:
		pr.writeIndent()
		pr.write("{\n")
		pr.indent++
		for _, c := range s.Children {
			pr.printStmt(c)
		}
		pr.indent--
		pr.writeIndent()
		pr.write("}\n")

	case ast.If:
		pr.writeIndent()
		pr.write("if (" + pr.printExpr(s.Children[0]) + ") ")
		pr.printInlineOrBlock(s.Children[1])
		if len(s.Children) == 3 {
			pr.writeIndent()
			pr.write("else ")
			pr.printInlineOrBlock(s.Children[2])
		}

	case ast.While:
		pr.writeIndent()
		pr.write("while (" + pr.printExpr(s.Children[0]) + ") ")
		pr.printInlineOrBlock(s.Children[1])

	case ast.Return:
		pr.writeIndent()
		pr.write("return " + pr.printExpr(s.Children[0]) + ";\n")

	case ast.VoidReturn:
		pr.writeIndent()
		pr.write("return;\n")

	case ast.Break:
		pr.writeIndent()
		pr.write("break;\n")

	case ast.VarDecl:
		pr.writeIndent()
		pr.write(pr.declare(s.Var.Type, pr.idt.Name(s.Var.Name)) + ";\n")

	case ast.VarDef:
		pr.writeIndent()
		pr.write(pr.declare(s.Var.Type, pr.idt.Name(s.Var.Name)) + " = " + pr.printExpr(s.Children[0]) + ";\n")

	case ast.Asm:
		pr.writeIndent()
		pr.write("__asm__(\"" + s.Text + "\");\n")

	case ast.Try:
		pr.writeIndent()
		pr.write("try ")
		pr.printInlineOrBlock(s.Children[0])
		for _, c := range s.Children[1:] {
			pr.printStmt(c)
		}

	case ast.Catch:
		pr.writeIndent()
		pr.write("catch (" + pr.declare(s.Var.Type, pr.idt.Name(s.Var.Name)) + ") ")
		pr.printInlineOrBlock(s.Children[0])

	case ast.CatchAll:
		pr.writeIndent()
		pr.write("catch (...) ")
		pr.printInlineOrBlock(s.Children[0])

	case ast.Throw:
		pr.writeIndent()
		pr.write("throw " + pr.printExpr(s.Children[0]) + ";\n")

	case ast.Goto:
		pr.writeIndent()
		pr.write("goto " + pr.idt.Name(s.NameRef) + ";\n")

	case ast.GotoLabel:
		pr.write(pr.idt.Name(s.NameRef) + ":\n")

	case ast.StmtExpr:
		pr.writeIndent()
		pr.write(pr.printExpr(s.Children[0]) + ";\n")

	case ast.Delete:
		pr.writeIndent()
		pr.write("delete " + pr.printExpr(s.Children[0]) + ";\n")

	case ast.CommentStmt:
		pr.writeIndent()
		pr.write("// " + s.Text + "\n")

	default:
		pr.fail("printStmt: %v is not a statement Kind", s.Kind)
	}
}

// printInlineOrBlock prints body as a Compound as-is, or wraps a single
// non-Compound statement in braces so every if/while/try arm is always
// brace-delimited — one fewer dangling-else hazard for the generator to
// worry about.
func (pr *printer) printInlineOrBlock(body *ast.Statement) {
	if body.Kind == ast.Compound {
		pr.printStmt(body)
		return
	}
	pr.write("{\n")
	pr.indent++
	pr.printStmt(body)
	pr.indent--
	pr.writeIndent()
	pr.write("}\n")
}

// printExpr renders an expression Kind inline, with no trailing newline or
// indentation — it's composed into whatever statement or outer expression
// called it.
func (pr *printer) printExpr(s *ast.Statement) string {
	switch s.Kind {
	case ast.Constant:
		return s.Text

	case ast.ConstantArray:
		parts := make([]string, len(s.Children))
		for i, c := range s.Children {
			parts[i] = pr.printExpr(c)
		}
		return "{" + strings.Join(parts, ", ") + "}"

	case ast.Cast:
		return "((" + pr.declare(s.EvalType, "") + ")" + pr.printExpr(s.Children[0]) + ")"

	case ast.BinaryOp:
		return "(" + pr.printExpr(s.Children[0]) + " " + s.Op + " " + pr.printExpr(s.Children[1]) + ")"

	case ast.Call:
		args := make([]string, len(s.Children))
		for i, c := range s.Children {
			args[i] = pr.printExpr(c)
		}
		return pr.idt.Name(s.NameRef) + "(" + strings.Join(args, ", ") + ")"

	case ast.IndirectCall:
		args := make([]string, len(s.Children)-1)
		for i, c := range s.Children[1:] {
			args[i] = pr.printExpr(c)
		}
		return "(" + pr.printExpr(s.Children[0]) + ")(" + strings.Join(args, ", ") + ")"

	case ast.New:
		args := make([]string, len(s.Children))
		for i, c := range s.Children {
			args[i] = pr.printExpr(c)
		}
		return "new " + pr.declare(s.EvalType, "") + "(" + strings.Join(args, ", ") + ")"

	case ast.Deref:
		return "(*" + pr.printExpr(s.Children[0]) + ")"

	case ast.AddrOf:
		return "(&" + pr.printExpr(s.Children[0]) + ")"

	case ast.AddrOfFunc:
		return "(&" + pr.idt.Name(s.NameRef) + ")"

	case ast.Subscript:
		return pr.printExpr(s.Children[0]) + "[" + pr.printExpr(s.Children[1]) + "]"

	case ast.LocalVarRef, ast.GlobalVarRef:
		return pr.idt.Name(s.Var.Name)

	default:
		pr.fail("printExpr: %v is not an expression Kind", s.Kind)
		return ""
	}
}
