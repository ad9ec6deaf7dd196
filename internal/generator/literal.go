package generator

import (
	"strconv"
	"strings"

	"ubfuzz/internal/ast"
	"ubfuzz/internal/rng"
	"ubfuzz/internal/strategy"
	"ubfuzz/internal/types"
)

// literalMaker builds constant literal strings for a given type, ported
// from original_source/mutator/src/LiteralMaker.cpp. The "special integer"
// and "special float" tables are powers of two and their neighbors, the
// values most likely to trip overflow/boundary bugs in the code under
// test.
type literalMaker struct {
	md *MutatorData

	specialIntegers []string
	specialFloats   []string
}

func newLiteralMaker(md *MutatorData) *literalMaker {
	lm := &literalMaker{md: md}
	lm.setupIntegers()
	lm.setupFloats()
	return lm
}

func (lm *literalMaker) setupIntegers() {
	lm.specialIntegers = append(lm.specialIntegers, "0")

	specialUint := uint64(1)
	for i := 0; i <= 64; i++ {
		lm.specialIntegers = append(lm.specialIntegers,
			strconv.FormatUint(specialUint, 10)+"ULL",
			strconv.FormatUint(specialUint+1, 10)+"ULL",
			strconv.FormatUint(specialUint-1, 10)+"ULL",
		)
		specialUint *= 2
	}

	specialInt := int64(-1)
	for i := 0; i <= 62; i++ {
		lm.specialIntegers = append(lm.specialIntegers,
			"("+strconv.FormatInt(specialInt, 10)+"LL)",
			"("+strconv.FormatInt(specialInt+1, 10)+"LL)",
			"("+strconv.FormatInt(specialInt-1, 10)+"LL)",
		)
		specialInt *= 2
	}
}

func (lm *literalMaker) setupFloats() {
	lm.specialFloats = append(lm.specialFloats, "0.0")
	specialUint := uint64(1)
	for i := 0; i <= 64; i++ {
		lm.specialFloats = append(lm.specialFloats,
			strconv.FormatUint(specialUint, 10)+".0",
			strconv.FormatUint(specialUint+1, 10)+".0",
			strconv.FormatUint(specialUint-1, 10)+".0",
		)
		specialUint *= 2
	}
}

// MakeConstant returns a constant expression of type t, wrapped in a Cast
// back to t (the original casts every constant literal so array-decayed
// pointer constants still carry their declared type through printing).
func (lm *literalMaker) MakeConstant(t types.Ref) *ast.Statement {
	release := lm.md.Program.QueueVerify()
	defer func() { _ = release() }()

	pool := lm.md.Program.Types
	if pool.Get(t).Kind == types.Array {
		t = pool.GetOrCreateDerived(types.Pointer, pool.Get(t).Base)
	}
	str := lm.makeConstantStr(t)
	return ast.NewCast(t, ast.NewConstant(str, t))
}

func (lm *literalMaker) makeConstantStr(tref types.Ref) string {
	pool := lm.md.Program.Types
	tref = pool.StripCV(tref)
	t := pool.Get(tref)

	switch {
	case t.Kind.IsInteger():
		return rng.PickOne(lm.md.Rng, lm.specialIntegers)
	case t.Kind.IsFloat():
		return rng.PickOne(lm.md.Rng, lm.specialFloats)
	}

	switch t.Kind {
	case types.Pointer:
		if lm.isConstCharPtr(tref) && lm.md.decision(strategy.EmitStringLiteral) {
			var sb strings.Builder
			sb.WriteByte('"')
			if !lm.md.Rng.FlipCoin() {
				const alphabet = "abcdefghZSDF0123456789$&^()"
				n := int(lm.md.Rng.Below(10))
				for i := 0; i < n; i++ {
					sb.WriteByte(alphabet[lm.md.Rng.PickIndex(len(alphabet))])
				}
			}
			sb.WriteByte('"')
			return sb.String()
		}
		return rng.PickOne(lm.md.Rng, []string{"0", "-1", "1"})

	case types.FunctionPointer:
		return rng.PickOne(lm.md.Rng, []string{"0", "-1"})

	case types.Array:
		return rng.PickOne(lm.md.Rng, []string{"{0}", "{1, 2}", "{}", "{1}"})

	case types.Record:
		return rng.PickOne(lm.md.Rng, []string{"{0}", "{}"})

	case types.Invalid:
		return "INVALID_TYPE_REQUESTED"
	}

	return "ERR"
}

// isConstCharPtr reports whether tref is "const char *", the only pointer
// type string-literal emission targets.
func (lm *literalMaker) isConstCharPtr(tref types.Ref) bool {
	pool := lm.md.Program.Types
	t := pool.Get(tref)
	if t.Kind != types.Pointer {
		return false
	}
	base := pool.Get(t.Base)
	if base.Kind != types.Const {
		return false
	}
	return pool.Get(base.Base).Kind == types.U8 || pool.Get(base.Base).Kind == types.I8
}
