package generator

import (
	"ubfuzz/internal/ast"
	"ubfuzz/internal/ident"
	"ubfuzz/internal/program"
	"ubfuzz/internal/rng"
	"ubfuzz/internal/types"
)

// builtinKind enumerates the fixed library functions the generator may
// call via CallBuiltin (spec.md §8 scenario S3's exact function list,
// ported from original_source/mutator/include/LookUB/mutator/BuiltinFunctions.h
// style declare-once-call-everywhere registry — that header isn't itself
// in the retrieval pack, but every mutator file that calls a builtin names
// it from this closed set).
type builtinKind int

const (
	builtinPrintf builtinKind = iota
	builtinMalloc
	builtinCalloc
	builtinRealloc
	builtinFree
	builtinAbort
	builtinExit
	builtinStrlen
	builtinStrstr
	builtinMemcmp
	builtinMemcpy
	builtinMemset
	builtinStrcpy
)

var builtinNames = map[builtinKind]string{
	builtinPrintf:  "printf",
	builtinMalloc:  "malloc",
	builtinCalloc:  "calloc",
	builtinRealloc: "realloc",
	builtinFree:    "free",
	builtinAbort:   "abort",
	builtinExit:    "exit",
	builtinStrlen:  "strlen",
	builtinStrstr:  "strstr",
	builtinMemcmp:  "memcmp",
	builtinMemcpy:  "memcpy",
	builtinMemset:  "memset",
	builtinStrcpy:  "strcpy",
}

var allBuiltinKinds = []builtinKind{
	builtinPrintf, builtinMalloc, builtinCalloc, builtinRealloc, builtinFree,
	builtinAbort, builtinExit, builtinStrlen, builtinStrstr, builtinMemcmp,
	builtinMemcpy, builtinMemset, builtinStrcpy,
}

// attributeTokens are the function attribute spellings the mutator may
// attach via DeleteFuncAttrs/MutateFuncAttrs/InitWithFuncAttrs (spec.md §8
// scenario S4).
var attributeTokens = []string{"pure", "const", "always_inline", "no_builtin"}

// builtinRegistry lazily declares the library functions a program's
// builtins need, body-less Decls the printer emits as a bare prototype.
type builtinRegistry struct {
	md    *MutatorData
	ids   map[builtinKind]ident.ID
	sizeT types.Ref
}

func newBuiltinRegistry(md *MutatorData) *builtinRegistry {
	return &builtinRegistry{md: md, ids: map[builtinKind]ident.ID{}}
}

// get returns the ident.ID for a builtin, declaring it in the program on
// first use.
func (br *builtinRegistry) get(b builtinKind) ident.ID {
	if id, ok := br.ids[b]; ok {
		return id
	}
	id := br.declare(b)
	br.ids[b] = id
	return id
}

func (br *builtinRegistry) declare(b builtinKind) ident.ID {
	pool := br.md.Program.Types
	// A registry lives for one mutation step, so an earlier step may already
	// have registered this builtin's fixed name and Decl in the program.
	id, ok := br.md.Program.Ident.Lookup(builtinNames[b])
	if !ok {
		id = br.md.Program.Ident.AddFixed(builtinNames[b])
	}
	if br.md.Program.FindFunction(id) != nil {
		return id
	}

	voidT := pool.Builtin(types.Void)
	voidPtr := pool.GetOrCreateDerived(types.Pointer, voidT)
	charPtr := pool.GetOrCreateDerived(types.Pointer, pool.Builtin(types.I8))
	constCharPtr := pool.GetOrCreateDerived(types.Pointer,
		pool.GetOrCreateDerived(types.Const, pool.Builtin(types.I8)))
	sizeT := pool.Builtin(types.U64)
	intT := pool.Builtin(types.I32)

	decl := &program.Decl{Kind: program.FunctionDecl, Name: id}

	switch b {
	case builtinPrintf:
		decl.RetType = intT
		decl.Params = []ast.Variable{{Type: constCharPtr}}
	case builtinMalloc:
		decl.RetType = voidPtr
		decl.Params = []ast.Variable{{Type: sizeT}}
	case builtinCalloc:
		decl.RetType = voidPtr
		decl.Params = []ast.Variable{{Type: sizeT}, {Type: sizeT}}
	case builtinRealloc:
		decl.RetType = voidPtr
		decl.Params = []ast.Variable{{Type: voidPtr}, {Type: sizeT}}
	case builtinFree:
		decl.RetType = voidT
		decl.Params = []ast.Variable{{Type: voidPtr}}
	case builtinAbort:
		decl.RetType = voidT
		decl.Noexcept = true
	case builtinExit:
		decl.RetType = voidT
		decl.Params = []ast.Variable{{Type: intT}}
	case builtinStrlen:
		decl.RetType = sizeT
		decl.Params = []ast.Variable{{Type: constCharPtr}}
	case builtinStrstr:
		decl.RetType = charPtr
		decl.Params = []ast.Variable{{Type: constCharPtr}, {Type: constCharPtr}}
	case builtinMemcmp:
		decl.RetType = intT
		decl.Params = []ast.Variable{{Type: constCharPtr}, {Type: constCharPtr}, {Type: sizeT}}
	case builtinMemcpy:
		decl.RetType = voidPtr
		decl.Params = []ast.Variable{{Type: voidPtr}, {Type: constCharPtr}, {Type: sizeT}}
	case builtinMemset:
		decl.RetType = voidPtr
		decl.Params = []ast.Variable{{Type: voidPtr}, {Type: intT}, {Type: sizeT}}
	case builtinStrcpy:
		decl.RetType = charPtr
		decl.Params = []ast.Variable{{Type: charPtr}, {Type: constCharPtr}}
	}

	if err := br.md.Program.Add(decl); err != nil {
		// declare returns early above when the program already holds a
		// function Decl under this builtin's fixed id, so each builtin is
		// declared once per program; a collision here means the fixed name
		// was already taken by something else entirely.
		panic("generator: builtin name collision: " + err.Error())
	}
	return id
}

func (br *builtinRegistry) sizeTType() types.Ref {
	return br.md.Program.Types.Builtin(types.U64)
}

func (br *builtinRegistry) voidPtrType() types.Ref {
	pool := br.md.Program.Types
	return pool.GetOrCreateDerived(types.Pointer, pool.Builtin(types.Void))
}

// pickKind returns a uniformly chosen builtin kind. It does not consult
// CallBuiltin or build the call; the caller (statement creator) does both,
// since argument shapes differ per builtin signature.
func (br *builtinRegistry) pickKind() builtinKind {
	return rng.PickOne(br.md.Rng, allBuiltinKinds)
}
