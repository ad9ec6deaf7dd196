// Package printer implements the pretty-printer boundary of spec.md §6.1,
// §6.2: a one-way Program -> C/C++ source text walk. It is deliberately
// thin — the oracle contract (spec.md §6.1) treats everything past
// Print as the surrounding driver's concern, not the core's.
//
// Structurally this follows the teacher's internal/formatter package: a
// strings.Builder accumulator, an indent counter, and one switch arm per
// tagged-variant Kind, rather than a visitor hierarchy.
package printer

import (
	"fmt"
	"io"
	"strings"

	"ubfuzz/internal/errors"
	"ubfuzz/internal/generator"
	"ubfuzz/internal/ident"
	"ubfuzz/internal/program"
	"ubfuzz/internal/types"
)

type printer struct {
	prog   *program.Program
	types  *types.Pool
	idt    *ident.Table
	out    strings.Builder
	indent int
	err    error
}

const indentUnit = "    "

// Print emits p as C/C++ source text to w, wrapped per spec.md §6.1's
// oracle contract (the wrap_main prefix/suffix). It returns a non-nil
// error (spec.md §7's PrintError) the first time an invalid type
// reference is encountered, without writing a partial, uncompilable
// document to w.
func Print(p *program.Program, w io.Writer) error {
	pr := &printer{prog: p, types: p.Types, idt: p.Ident}
	pr.printProgram()
	if pr.err != nil {
		return pr.err
	}
	if _, err := io.WriteString(w, generator.GetProgramPrefix(p)); err != nil {
		return err
	}
	if _, err := io.WriteString(w, pr.out.String()); err != nil {
		return err
	}
	_, err := io.WriteString(w, generator.GetProgramSuffix(p))
	return err
}

func (pr *printer) fail(format string, args ...any) {
	if pr.err == nil {
		pr.err = errors.New(errors.PrintError, fmt.Sprintf(format, args...))
	}
}

func (pr *printer) write(s string) { pr.out.WriteString(s) }

func (pr *printer) writeIndent() {
	for i := 0; i < pr.indent; i++ {
		pr.out.WriteString(indentUnit)
	}
}

func (pr *printer) printProgram() {
	pr.write("#include <stdint.h>\n")
	pr.write("#include <stdbool.h>\n")
	pr.write("#include <new>\n\n")

	for _, r := range pr.liveRecords() {
		pr.printRecordDef(r)
	}
	for _, r := range pr.liveFunctionPointers() {
		pr.printFuncPtrTypedef(r)
	}
	pr.write("\n")

	for _, d := range pr.prog.Decls.Globals {
		pr.printGlobal(d)
	}
	if len(pr.prog.Decls.Globals) > 0 {
		pr.write("\n")
	}
	for _, d := range pr.prog.Decls.Functions {
		pr.printFunctionProto(d)
	}
	pr.write("\n")
	for _, d := range pr.prog.Decls.Functions {
		pr.printFunctionDef(d)
		pr.write("\n")
	}
}

// liveRecords and liveFunctionPointers walk the whole type pool rather than
// just the Decls.Records bucket, since a FunctionPointer or Record type can
// be reachable only through a field, parameter, or local variable type and
// never have its own top-level Decl.
func (pr *printer) liveRecords() []types.Ref {
	var out []types.Ref
	for i := 0; i < pr.types.Count(); i++ {
		r := types.Ref(i)
		if pr.types.IsValid(r) && pr.types.Get(r).Kind == types.Record {
			out = append(out, r)
		}
	}
	return out
}

func (pr *printer) liveFunctionPointers() []types.Ref {
	var out []types.Ref
	for i := 0; i < pr.types.Count(); i++ {
		r := types.Ref(i)
		if pr.types.IsValid(r) && pr.types.Get(r).Kind == types.FunctionPointer {
			out = append(out, r)
		}
	}
	return out
}

func (pr *printer) printRecordDef(r types.Ref) {
	t := pr.types.Get(r)
	pr.write("struct " + pr.types.Name(r) + " {\n")
	for _, f := range t.Fields {
		pr.write("  " + pr.declare(f.Type, pr.idt.Name(f.Name)) + ";\n")
	}
	pr.write("};\n\n")
}

func (pr *printer) printFuncPtrTypedef(r types.Ref) {
	t := pr.types.Get(r)
	params := make([]string, len(t.Params))
	for i, p := range t.Params {
		params[i] = pr.declare(p, "")
	}
	if len(params) == 0 {
		params = []string{"void"}
	}
	pr.write("typedef " + pr.baseSpelling(t.Ret) + " (*" + pr.types.Name(r) + ")(" + strings.Join(params, ", ") + ");\n")
}

func (pr *printer) printGlobal(d *program.Decl) {
	if d.Static {
		pr.write("static ")
	}
	pr.write(pr.declare(d.VarType, pr.idt.Name(d.Name)))
	if d.Init != nil {
		pr.write(" = " + pr.printExpr(d.Init))
	}
	pr.write(";\n")
}

func (pr *printer) funcAttrsAndConv(d *program.Decl) string {
	var parts []string
	if d.CallingConv != "" {
		parts = append(parts, d.CallingConv)
	}
	parts = append(parts, d.Attrs...)
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, " ")
}

func (pr *printer) paramList(d *program.Decl) string {
	if len(d.Params) == 0 {
		return "void"
	}
	parts := make([]string, len(d.Params))
	for i, p := range d.Params {
		parts[i] = pr.declare(p.Type, pr.idt.Name(p.Name))
	}
	return strings.Join(parts, ", ")
}

func (pr *printer) printFunctionProto(d *program.Decl) {
	if d.Static {
		pr.write("static ")
	}
	pr.write(pr.baseSpelling(d.RetType) + " " + pr.idt.Name(d.Name) + "(" + pr.paramList(d) + ")")
	if d.Noexcept {
		pr.write(" noexcept")
	}
	pr.write(pr.funcAttrsAndConv(d))
	pr.write(";\n")
}

func (pr *printer) printFunctionDef(d *program.Decl) {
	if d.Static {
		pr.write("static ")
	}
	pr.write(pr.baseSpelling(d.RetType) + " " + pr.idt.Name(d.Name) + "(" + pr.paramList(d) + ")")
	if d.Noexcept {
		pr.write(" noexcept")
	}
	pr.write(pr.funcAttrsAndConv(d))
	pr.write(" ")
	if d.Body == nil {
		pr.write("{}\n")
		return
	}
	pr.printStmt(d.Body)
	pr.write("\n")
}
