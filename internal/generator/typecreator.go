package generator

import (
	"ubfuzz/internal/rng"
	"ubfuzz/internal/strategy"
	"ubfuzz/internal/types"
)

// typeCreator builds new types in the program's type pool, ported from
// original_source/mutator/src/TypeCreator.cpp. Its budget of
// config.MaxNewTypesPerMutation fresh allocations per mutation step lives in
// MutatorData.canAllocateType/chargeTypeAllocation, the Go equivalent of
// TypeCreator's own maxCreatedTypesPerRun counter — shared across a whole
// mutation step here rather than per-TypeCreator-instance, since a step may
// construct several typeCreator values in sequence. Only GetDefinedType and
// MakeNewType check the budget before creating a type:
// MakeNewFuncPtrTypeWithResult (also reached directly from the statement
// creator's indirect-call path) charges it without checking, and MakeRecord
// neither checks nor charges it, so a step can create more types than the
// budget.
type typeCreator struct {
	md *MutatorData
}

func newTypeCreator(md *MutatorData) *typeCreator {
	return &typeCreator{md: md}
}

// PickVoidForAny and PickFloatOverInt never appeared in UnsafeStrategy.cpp's
// weight table (only named, never assigned, in the surrounding headers), so
// they're drawn as a plain coin flip rather than added to the closed Site
// enum.
func (tc *typeCreator) pickVoidForAny() bool   { return tc.md.Rng.FlipCoin() }
func (tc *typeCreator) pickFloatOverInt() bool { return tc.md.Rng.FlipCoin() }

// GetAnyType returns a random valid type, sometimes void.
func (tc *typeCreator) GetAnyType() types.Ref {
	if tc.pickVoidForAny() {
		return tc.voidType()
	}
	return tc.GetDefinedType()
}

func (tc *typeCreator) voidType() types.Ref {
	return tc.md.Program.Types.Builtin(types.Void)
}

// GetPtrTypeOf returns the pointer type pointing to t.
func (tc *typeCreator) GetPtrTypeOf(t types.Ref) types.Ref {
	return tc.md.Program.Types.GetOrCreateDerived(types.Pointer, t)
}

// GetPtrType returns a pointer to a random defined type.
func (tc *typeCreator) GetPtrType() types.Ref {
	return tc.GetPtrTypeOf(tc.GetDefinedType())
}

func (tc *typeCreator) floatKinds() []types.Kind {
	return []types.Kind{types.F32, types.F64}
}

func (tc *typeCreator) intKinds() []types.Kind {
	return []types.Kind{
		types.Bool, types.I8, types.U8, types.I16, types.U16,
		types.I32, types.U32, types.I64, types.U64,
	}
}

// GetAnyFloatType returns a random builtin float type.
func (tc *typeCreator) GetAnyFloatType() types.Ref {
	kind := rng.PickOne(tc.md.Rng, tc.floatKinds())
	return tc.md.Program.Types.Builtin(kind)
}

// GetAnyIntType returns a random builtin integer type, optionally
// const-qualified.
func (tc *typeCreator) GetAnyIntType(allowConst bool) types.Ref {
	kind := rng.PickOne(tc.md.Rng, tc.intKinds())
	t := tc.md.Program.Types.Builtin(kind)
	if allowConst && tc.md.Rng.FlipCoin() {
		t = tc.md.Program.Types.GetOrCreateDerived(types.Const, t)
	}
	return t
}

// GetAnyIntOrFloatType picks between an int and a float builtin type.
func (tc *typeCreator) GetAnyIntOrFloatType() types.Ref {
	if tc.pickFloatOverInt() {
		return tc.GetAnyFloatType()
	}
	return tc.GetAnyIntType(false)
}

// GetAnyIntOrPtrType picks between an int and a pointer type.
func (tc *typeCreator) GetAnyIntOrPtrType() types.Ref {
	if tc.md.decision(strategy.PickPtrOverInt) {
		return tc.GetPtrType()
	}
	return tc.GetAnyIntType(false)
}

// GetAnyIntOrPtrOrFloatType picks among int, pointer, and float types.
func (tc *typeCreator) GetAnyIntOrPtrOrFloatType() types.Ref {
	if tc.md.decision(strategy.PickPtrOverInt) {
		return tc.GetPtrType()
	}
	if tc.pickFloatOverInt() {
		return tc.GetAnyFloatType()
	}
	return tc.GetAnyIntType(false)
}

// existingTypes returns every currently live type ref in the pool matching
// pred.
func (tc *typeCreator) existingTypes(pred func(*types.Type) bool) []types.Ref {
	pool := tc.md.Program.Types
	var out []types.Ref
	n := pool.Count()
	for i := 0; i < n; i++ {
		r := types.Ref(i)
		if !pool.IsValid(r) {
			continue
		}
		if pred(pool.Get(r)) {
			out = append(out, r)
		}
	}
	return out
}

// GetExistingDefinedType returns an existing non-void type.
func (tc *typeCreator) GetExistingDefinedType() types.Ref {
	options := tc.existingTypes(func(t *types.Type) bool { return t.Kind != types.Void })
	return rng.PickOne(tc.md.Rng, options)
}

// GetExistingNonArrayDefinedType returns an existing non-void, non-array
// type.
func (tc *typeCreator) GetExistingNonArrayDefinedType() types.Ref {
	options := tc.existingTypes(func(t *types.Type) bool {
		return t.Kind != types.Void && t.Kind != types.Array
	})
	return rng.PickOne(tc.md.Rng, options)
}

// MakeNewFuncPtrTypeWithResult allocates a fresh function pointer type
// returning ret, with 0-4 parameters drawn from existing defined types.
func (tc *typeCreator) MakeNewFuncPtrTypeWithResult(ret types.Ref) types.Ref {
	release := tc.md.Program.QueueVerify()
	defer func() { _ = release() }()

	var args []types.Ref
	n := int(tc.md.Rng.Below(5))
	for i := 0; i < n; i++ {
		args = append(args, tc.GetExistingDefinedType())
	}
	name := tc.md.newID("funcPtrT")
	tc.md.chargeTypeAllocation()
	return tc.md.Program.Types.AddFunctionPointer(ret, args, tc.md.Program.Ident.Name(name))
}

// MakeNewFuncPtrType allocates a fresh function pointer type with a random
// valid return type.
func (tc *typeCreator) MakeNewFuncPtrType() types.Ref {
	return tc.MakeNewFuncPtrTypeWithResult(tc.GetReturnType())
}

// MakeNewArrayType allocates a fresh array type of a random defined
// non-array element type and a size in [1, 128].
func (tc *typeCreator) MakeNewArrayType() types.Ref {
	for {
		elem := tc.GetDefinedType()
		if tc.md.Program.Types.Get(elem).Kind == types.Array {
			continue
		}
		size := 1 + int(tc.md.Rng.Below(128))
		tc.md.chargeTypeAllocation()
		r, err := tc.md.Program.Types.GetOrCreateArray(elem, size)
		if err != nil {
			continue
		}
		return r
	}
}

// MakeNewType returns a function pointer type when CreateFuncPtrType fires,
// otherwise an array, pointer, or record type picked uniformly when
// CreateNewType fires. When neither fires, or the per-step allocation budget
// is already spent, it returns GetDefinedType's result instead.
func (tc *typeCreator) MakeNewType() types.Ref {
	if !tc.md.canAllocateType() {
		return tc.GetDefinedType()
	}
	if tc.md.decision(strategy.CreateFuncPtrType) {
		return tc.MakeNewFuncPtrType()
	}
	if tc.md.decision(strategy.CreateNewType) {
		switch tc.md.Rng.PickIndex(3) {
		case 0:
			return tc.MakeNewArrayType()
		case 1:
			return tc.GetPtrType()
		default:
			return tc.MakeRecordType(types.Ref(0))
		}
	}
	return tc.GetDefinedType()
}

// GetReturnType returns a type valid as a function return type (any
// defined type or void, but never a bare array).
func (tc *typeCreator) GetReturnType() types.Ref {
	for {
		t := tc.GetAnyType()
		if tc.md.Program.Types.Get(t).Kind == types.Array {
			continue
		}
		return t
	}
}

// GetDefinedNonConstType returns a defined type with no top-level const
// qualifier.
func (tc *typeCreator) GetDefinedNonConstType() types.Ref {
	for {
		t := tc.GetDefinedType()
		if tc.md.Program.Types.IsConst(t) {
			continue
		}
		return t
	}
}

// GetDefinedType returns a complete, already-defined type: existing
// builtin, existing derived/record type, or (per CreateNewType's decision)
// a freshly minted one.
func (tc *typeCreator) GetDefinedType() types.Ref {
	if tc.md.canAllocateType() && tc.md.decision(strategy.CreateNewType) {
		tc.md.chargeTypeAllocation()
		switch tc.md.Rng.PickIndex(3) {
		case 0:
			return tc.MakeNewArrayType()
		case 1:
			return tc.GetPtrTypeOf(tc.GetExistingNonArrayDefinedType())
		default:
			return tc.MakeRecordType(tc.voidType())
		}
	}
	return tc.GetExistingDefinedType()
}

// GetBoolType returns the type used for boolean-ish results (a plain
// signed int, matching C's lack of a first-class bool in the targeted
// dialects).
func (tc *typeCreator) GetBoolType() types.Ref {
	return tc.md.Program.Types.Builtin(types.I32)
}

// MakeField creates a random field of type t (or a defined non-const type
// if t is the zero Ref / void).
func (tc *typeCreator) MakeField(t types.Ref) types.RecordField {
	if t == types.Ref(0) || tc.md.Program.Types.Get(t).Kind == types.Void {
		t = tc.GetDefinedNonConstType()
	}
	return types.RecordField{Name: tc.md.newID("field"), Type: t}
}

// MakeRecord creates a new record decl with at least one field of type
// expectedMember, plus 0-9 extra fields before and after it, bounded by the
// record recursion limiter (spec.md §4.G.1).
func (tc *typeCreator) MakeRecord(expectedMember types.Ref) types.Ref {
	release := tc.md.Program.QueueVerify()
	defer func() { _ = release() }()

	if expectedMember == types.Ref(0) || tc.md.Program.Types.Get(expectedMember).Kind == types.Void {
		expectedMember = tc.GetAnyIntOrFloatType()
	}

	child, exit := tc.md.Limiters.Record.Enter()
	defer exit()
	fieldLimit := 10
	if child.Reached() {
		fieldLimit = 0
	}

	var fields []types.RecordField
	if fieldLimit > 0 {
		for i := 0; i < int(tc.md.Rng.Below(uint32(fieldLimit))); i++ {
			fields = append(fields, tc.MakeField(types.Ref(0)))
		}
	}
	fields = append(fields, tc.MakeField(expectedMember))
	if fieldLimit > 0 {
		for i := 0; i < int(tc.md.Rng.Below(uint32(fieldLimit))); i++ {
			fields = append(fields, tc.MakeField(types.Ref(0)))
		}
	}

	recordName := tc.md.newID("record")
	return tc.md.Program.Types.AddRecord(recordName, fields, tc.md.Program.Ident.Name(recordName))
}

// MakeRecordType is MakeRecord, returning only the resulting type ref.
func (tc *typeCreator) MakeRecordType(expectedMember types.Ref) types.Ref {
	return tc.MakeRecord(expectedMember)
}
