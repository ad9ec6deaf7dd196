package generator

import (
	"strconv"

	"ubfuzz/internal/program"
	"ubfuzz/internal/rng"
	"ubfuzz/internal/strategy"
)

// functionMutator mutates a function's declaration-level data — attributes,
// calling convention, scheduling weight — without touching its body. Ported
// from original_source/mutator/include/LookUB/mutator/FunctionMutator.h.
type functionMutator struct {
	md *MutatorData
}

func newFunctionMutator(md *MutatorData) *functionMutator {
	return &functionMutator{md: md}
}

// callingConvNames lists calling conventions Clang/GCC claim to support at
// random call sites.
var callingConvNames = []string{"stdcall", "regcall", "pascal", "ms_abi", "sysv_abi", "vectorcall"}

func (fm *functionMutator) randomCallingConv() string {
	return "__attribute__((" + rng.PickOne(fm.md.Rng, callingConvNames) + "))"
}

func (fm *functionMutator) uintStr(limit uint32) string {
	return strconv.FormatUint(uint64(fm.md.Rng.Below(limit)), 10)
}

// randomFuncAttr returns a random Clang attribute spelling, some
// parameterized with a random small integer.
func (fm *functionMutator) randomFuncAttr() string {
	options := []string{
		"__attribute__((alloc_size(" + fm.uintStr(4) + ")))",
		"__attribute__((alloc_size(" + fm.uintStr(4) + ", " + fm.uintStr(4) + ")))",
		"__attribute__((always_inline))",
		"__attribute__((assume_aligned(" + fm.uintStr(4) + ")))",
		"__attribute__((const))",
		"__attribute__((disable_tail_calls))",
		"__attribute__((flatten))",
		"__attribute__((malloc))",
		"__attribute__((no_builtin))",
		"__attribute__((noinline))",
		"__attribute__((pure))",
		"__attribute__((no_caller_saved_registers, " + rng.PickOne(fm.md.Rng, callingConvNames) + "))",
	}
	return rng.PickOne(fm.md.Rng, options)
}

// randomizeFuncAttrs mutates f's calling convention, attribute list, or
// scheduling weight hint — the first of its waterfall of independent
// decisions to fire wins.
func (fm *functionMutator) randomizeFuncAttrs(f *program.Decl) bool {
	if fm.md.decision(strategy.UseNonStdCallingConv) {
		f.CallingConv = fm.randomCallingConv()
		return true
	}

	// UseFunctionAttr/UseSecondFunctionAttr never appeared as distinct
	// sites in the ported weight table (only InitWithFuncAttrs, consulted
	// by statementCreator.finishFunctionCreation, did); drawn as plain
	// coin flips here like the generator's other untabulated sites.
	if fm.md.Rng.FlipCoin() {
		f.Attrs = append(f.Attrs, fm.randomFuncAttr())
		return true
	}
	if fm.md.Rng.FlipCoin() {
		f.Attrs = append(f.Attrs, fm.randomFuncAttr())
		return true
	}

	if fm.md.decision(strategy.DeleteFuncAttrs) {
		if len(f.Attrs) == 0 {
			return false
		}
		idx := fm.md.Rng.PickIndex(len(f.Attrs))
		f.Attrs = append(f.Attrs[:idx], f.Attrs[idx+1:]...)
		return true
	}

	weights := []program.WeightHint{program.WeightNone, program.WeightHot, program.WeightCold}
	newWeight := rng.PickOne(fm.md.Rng, weights)
	if newWeight != f.Weight {
		f.Weight = newWeight
		return true
	}
	return false
}
