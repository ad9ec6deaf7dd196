// Package program implements the Program model of spec.md §3.6 and §4.E:
// the identifier table, type pool, ordered declaration storage, and the
// deferred-verification ("queue verify") mechanism that batches invariant
// checks across bulk rewrites.
package program

import (
	"fmt"

	"ubfuzz/internal/ast"
	"ubfuzz/internal/config"
	"ubfuzz/internal/ident"
	"ubfuzz/internal/types"
)

// WeightHint is a scheduling hint a Function carries (spec.md §3.5).
type WeightHint int

const (
	WeightNone WeightHint = iota
	WeightHot
	WeightCold
)

// DeclKind discriminates the Decl tagged variant (spec.md §3.5).
type DeclKind int

const (
	FunctionDecl DeclKind = iota
	GlobalVarDecl
	RecordDecl
)

func (k DeclKind) String() string {
	switch k {
	case FunctionDecl:
		return "Function"
	case GlobalVarDecl:
		return "GlobalVar"
	case RecordDecl:
		return "Record"
	default:
		return fmt.Sprintf("DeclKind(%d)", int(k))
	}
}

// Decl is the tagged variant for Function, GlobalVar, and Record
// declarations.
type Decl struct {
	Kind DeclKind
	Name ident.ID

	// Function fields.
	RetType     types.Ref
	Params      []ast.Variable
	Body        *ast.Statement
	Attrs       []string
	CallingConv string
	Static      bool
	Noexcept    bool
	Weight      WeightHint

	// GlobalVar fields.
	VarType types.Ref
	Init    *ast.Statement // nil for a tentative declaration with no initializer

	// Record fields.
	RecordType types.Ref // the types.Pool Record Ref for this declaration
}

// FuncPointerType derives the FunctionPointer types.Ref matching this
// Function's signature — used when another part of the program needs to
// take this function's address.
func (d *Decl) FuncPointerType(pool *types.Pool, name string) types.Ref {
	params := make([]types.Ref, len(d.Params))
	for i, p := range d.Params {
		params[i] = p.Type
	}
	return pool.AddFunctionPointer(d.RetType, params, name)
}

// DeclStorage holds ordered per-kind buckets of declarations, preserving
// identifier scope and emission order (spec.md §3.5).
type DeclStorage struct {
	Functions []*Decl
	Globals   []*Decl
	Records   []*Decl
}

func (s *DeclStorage) bucket(kind DeclKind) *[]*Decl {
	switch kind {
	case FunctionDecl:
		return &s.Functions
	case GlobalVarDecl:
		return &s.Globals
	case RecordDecl:
		return &s.Records
	default:
		panic(fmt.Sprintf("program: unknown DeclKind %d", kind))
	}
}

// All returns every declaration across all buckets, functions first, then
// globals, then records — the canonical emission order.
func (s *DeclStorage) All() []*Decl {
	out := make([]*Decl, 0, len(s.Functions)+len(s.Globals)+len(s.Records))
	out = append(out, s.Functions...)
	out = append(out, s.Globals...)
	out = append(out, s.Records...)
	return out
}

// Program owns the identifier table, type pool, ordered declarations, and
// language options, plus the deferred-verification scope counter
// (spec.md §3.6).
type Program struct {
	Ident *ident.Table
	Types *types.Pool
	Decls DeclStorage
	Opts  config.LangOpts

	verifyDepth int
}

// New returns an empty Program seeded with the language options given, with
// its identifier table and type pool initialized but no "main" function yet
// — Generator.Generate is what seeds main (spec.md §3.6, §4.G.10).
func New(opts config.LangOpts) *Program {
	return &Program{
		Ident: ident.NewTable(),
		Types: types.NewPool(),
		Opts:  opts,
	}
}

// Add appends decl to the appropriate bucket. Ids are validated unique
// among same-kind decls (spec.md §4.E).
func (p *Program) Add(decl *Decl) error {
	bucket := p.Decls.bucket(decl.Kind)
	for _, existing := range *bucket {
		if existing.Name == decl.Name {
			return fmt.Errorf("program: duplicate %v declaration for NameID %d", decl.Kind, decl.Name)
		}
	}
	*bucket = append(*bucket, decl)
	return nil
}

// IsIDUsed scans every function body and global initializer in the program
// for id (spec.md §4.E), via ast.Statement.UsesID. A decl's own Name and its
// parameters are not scanned; inside bodies and initializers, Call/
// AddrOfFunc/Goto/VarRef nodes referencing id count as a use, and so does a
// VarDecl, VarDef or GotoLabel that declares id.
func (p *Program) IsIDUsed(id ident.ID) bool {
	for _, d := range p.Decls.All() {
		if d.Body != nil && d.Body.UsesID(id) {
			return true
		}
		if d.Init != nil && d.Init.UsesID(id) {
			return true
		}
	}
	return false
}

// RemoveDecl removes decl from its bucket. The caller must have already
// checked IsIDUsed(decl.Name); RemoveDecl itself re-checks and refuses to
// remove a decl whose id is still referenced elsewhere (spec.md §4.E).
func (p *Program) RemoveDecl(decl *Decl) error {
	if p.isIDUsedExcluding(decl.Name, decl) {
		return fmt.Errorf("program: NameID %d is still referenced; refusing to remove", decl.Name)
	}
	bucket := p.Decls.bucket(decl.Kind)
	for i, d := range *bucket {
		if d == decl {
			*bucket = append((*bucket)[:i], (*bucket)[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("program: decl not found in its bucket")
}

func (p *Program) isIDUsedExcluding(id ident.ID, exclude *Decl) bool {
	for _, d := range p.Decls.All() {
		if d == exclude {
			continue
		}
		if d.Body != nil && d.Body.UsesID(id) {
			return true
		}
		if d.Init != nil && d.Init.UsesID(id) {
			return true
		}
	}
	return false
}

// CountNodes sums statement-node counts across every function body and
// global initializer — the Program's size score (spec.md §4.E).
func (p *Program) CountNodes() int {
	n := 0
	for _, d := range p.Decls.Functions {
		if d.Body != nil {
			n += d.Body.CountNodes()
		}
	}
	for _, d := range p.Decls.Globals {
		if d.Init != nil {
			n += d.Init.CountNodes()
		}
	}
	return n
}

// QueueVerify returns a release func establishing one level of a deferred-
// verification scope (spec.md §4.E, §9). Nested scopes coalesce: only the
// outermost release runs VerifySelf and returns its result; inner releases
// are no-ops returning nil. Usage:
//
//	release := p.QueueVerify()
//	... bulk rewrite ...
//	if err := release(); err != nil { /* discard the mutated clone */ }
func (p *Program) QueueVerify() func() error {
	p.verifyDepth++
	outermost := p.verifyDepth == 1
	return func() error {
		p.verifyDepth--
		if outermost {
			return p.VerifySelf()
		}
		return nil
	}
}

// VerifySelf runs every structural invariant over the whole program: each
// function body and global initializer via ast.VerifySelf, plus decl-level
// type validity. A non-nil result is a generator bug (spec.md §7
// InvariantViolation).
func (p *Program) VerifySelf() error {
	for _, d := range p.Decls.Functions {
		if !p.Types.IsValid(d.RetType) {
			return fmt.Errorf("program: function %d has invalid return type", d.Name)
		}
		for _, param := range d.Params {
			if !p.Types.IsValid(param.Type) {
				return fmt.Errorf("program: function %d has invalid parameter type", d.Name)
			}
		}
		if d.Body != nil {
			if err := ast.VerifySelf(d.Body, p.Types, p.Ident); err != nil {
				return fmt.Errorf("program: function %d: %w", d.Name, err)
			}
		}
	}
	for _, d := range p.Decls.Globals {
		if !p.Types.IsValid(d.VarType) {
			return fmt.Errorf("program: global %d has invalid type", d.Name)
		}
		if d.Init != nil {
			if err := ast.VerifySelf(d.Init, p.Types, p.Ident); err != nil {
				return fmt.Errorf("program: global %d initializer: %w", d.Name, err)
			}
		}
	}
	for _, d := range p.Decls.Records {
		if !p.Types.IsValid(d.RecordType) {
			return fmt.Errorf("program: record %d has invalid type", d.Name)
		}
	}
	return nil
}

// GCTypes sweeps the type pool, keeping every type reachable from a live
// declaration (spec.md §4.C). TypeRef ids are not reassigned across a
// sweep.
func (p *Program) GCTypes() {
	var roots []types.Ref
	for _, d := range p.Decls.Functions {
		roots = append(roots, d.RetType)
		for _, param := range d.Params {
			roots = append(roots, param.Type)
		}
		if d.Body != nil {
			roots = append(roots, collectTypeRefs(d.Body)...)
		}
	}
	for _, d := range p.Decls.Globals {
		roots = append(roots, d.VarType)
		if d.Init != nil {
			roots = append(roots, collectTypeRefs(d.Init)...)
		}
	}
	for _, d := range p.Decls.Records {
		roots = append(roots, d.RecordType)
	}
	p.Types.Sweep(roots)
}

func collectTypeRefs(s *ast.Statement) []types.Ref {
	var out []types.Ref
	s.ForAllChildren(func(n *ast.Statement) bool {
		if n.IsExpr() {
			out = append(out, n.EvalTypeOf())
		}
		if n.Var.Type != 0 {
			out = append(out, n.Var.Type)
		}
		return true
	})
	return out
}

// FindFunction looks up a Function decl by NameID.
func (p *Program) FindFunction(id ident.ID) *Decl {
	for _, d := range p.Decls.Functions {
		if d.Name == id {
			return d
		}
	}
	return nil
}

// FindGlobal looks up a GlobalVar decl by NameID.
func (p *Program) FindGlobal(id ident.ID) *Decl {
	for _, d := range p.Decls.Globals {
		if d.Name == id {
			return d
		}
	}
	return nil
}

// MainFunction returns the program's "main" function, if present.
func (p *Program) MainFunction() *Decl {
	mainID, ok := p.Ident.Lookup("main")
	if !ok {
		return nil
	}
	return p.FindFunction(mainID)
}

// Clone deep-copies the whole program — its identifier table, type pool,
// and every declaration's statement tree — for the scheduler's population
// (spec.md §3.6).
func (p *Program) Clone() *Program {
	clone := &Program{
		Ident: p.Ident.Clone(),
		Types: p.Types.Clone(),
		Opts:  p.Opts,
	}
	cloneDecl := func(d *Decl) *Decl {
		nd := *d
		nd.Params = append([]ast.Variable(nil), d.Params...)
		nd.Attrs = append([]string(nil), d.Attrs...)
		nd.Body = d.Body.Clone()
		nd.Init = d.Init.Clone()
		return &nd
	}
	for _, d := range p.Decls.Functions {
		clone.Decls.Functions = append(clone.Decls.Functions, cloneDecl(d))
	}
	for _, d := range p.Decls.Globals {
		clone.Decls.Globals = append(clone.Decls.Globals, cloneDecl(d))
	}
	for _, d := range p.Decls.Records {
		clone.Decls.Records = append(clone.Decls.Records, cloneDecl(d))
	}
	return clone
}
