package strategy

// baseMutateStrategy reproduces getBaseUnsafeStrat from
// original_source/mutator/src/UnsafeStrategy.cpp: the shared weight table
// every named mutate strategy starts from before biasing a handful of
// sites toward its own focus.
func baseMutateStrategy(name string) *Strategy {
	s := New(name)
	s.Set(CallBuiltin, 0.2)
	s.Set(CatchAll, 0.2)
	s.Set(CleanupCompound, 0.2)
	s.Set(CreateFuncPtrType, 0.05)
	s.Set(CreateNewType, 0.5)
	s.Set(DeleteFuncAttrs, 0.4)
	s.Set(DeleteStmtInCompound, 0.3)
	s.Set(DeleteTypes, 0.2)
	s.Set(DontFillArrayConstant, 0.5)
	s.Set(EmitStringLiteral, 0.5)
	s.Set(EmptyCompound, 0.02)
	s.Set(EnsureReturnInFunc, 0.96)
	s.Set(MutateCompound, 0.5)
	s.Set(PromoteChild, 0.1)
	s.Set(PromoteChildren, 0.1)
	s.Set(WrapInCompound, 0.1)
	s.Set(MutateFuncAttrs, 0.005)
	s.Set(UseNonStdCallingConv, 0.4)
	s.Set(InitWithFuncAttrs, 0.01)
	s.Set(DeleteCompoundStmts, 0.01)
	s.Set(SimplifyStmt, 0.02)
	s.Set(PickPtrOverInt, 0.8)
	s.Set(UseSnippet, 0.03)
	s.Set(AssignExprToVar, 0.9)
	s.Set(InitGlobal, 0.8)
	s.Set(MutateFunction, 1)
	s.Set(MutateGlobal, 0.05)
	s.Set(ChangeIdentifier, 0.001)
	s.Set(RegenerateProgram, 0.02)
	s.Set(FixMainReturn, 0.9)
	return s
}

// baseReductionStrategy reproduces getBaseReductionStrat: every weight
// clamped to 0.05 except MutateOverDelete and a small allow-list of
// "shrinking" sites elevated to 0.2–0.3 (spec.md §4.F).
func baseReductionStrategy() *Strategy {
	s := New("reduce")
	for site := Site(0); site < numSites; site++ {
		s.Set(site, 0.05)
	}
	s.Set(MutateOverDelete, 0.8)
	s.Set(MutateFuncAttrs, 0.003)
	s.Set(DeleteFuncAttrs, 0.3)
	for _, site := range []Site{
		CleanupCompound, DeleteStmtInCompound, DeleteTypes,
		SimplifyStmt, EmptyCompound, DeleteCompoundStmts,
	} {
		s.Set(site, 0.2)
	}
	return s
}

// nearlyAlways and never match the literal constants makeMutateStrategies
// uses in the original to bias a named strategy toward or away from a
// decision without fully pinning it to 0/1.
const (
	nearlyAlways float32 = 0.96
	never        float32 = 0.01
)

// MakeMutateStrategies reproduces UnsafeStrategy::makeMutateStrategies:
// eight entries, the seven named mutate strategies (the generic base table
// and six biased copies of it, spec.md §4.F "Mutate strategies") plus the
// base reduction strategy, which sits second in the list.
func MakeMutateStrategies() []*Strategy {
	result := []*Strategy{
		baseMutateStrategy("generic mutate"),
		baseReductionStrategy(),
	}

	funcAttr := baseMutateStrategy("mutate function attributes")
	funcAttr.Set(MutateFunction, nearlyAlways)
	funcAttr.Set(MutateGlobal, never)
	funcAttr.Set(MutateFuncAttrs, nearlyAlways)
	result = append(result, funcAttr)

	global := baseMutateStrategy("mutate global variable")
	global.Set(MutateGlobal, nearlyAlways)
	global.Set(MutateFunction, never)
	result = append(result, global)

	stmt := baseMutateStrategy("mutate stmt")
	stmt.Set(MutateFunction, nearlyAlways)
	stmt.Set(MutateGlobal, never)
	stmt.Set(MutateFuncAttrs, never)
	stmt.Set(PreferModifyingStmtsOverExprs, nearlyAlways)
	result = append(result, stmt)

	expr := baseMutateStrategy("mutate expr")
	expr.Set(MutateFunction, nearlyAlways)
	expr.Set(MutateGlobal, never)
	expr.Set(MutateFuncAttrs, never)
	expr.Set(PreferModifyingStmtsOverExprs, never)
	result = append(result, expr)

	typ := baseMutateStrategy("mutate types")
	typ.Set(MutateOverDelete, never)
	typ.Set(ReorderOverDelete, never)
	typ.Set(MutateTypes, nearlyAlways)
	result = append(result, typ)

	reorder := baseMutateStrategy("reorder types")
	reorder.Set(ReorderOverDelete, nearlyAlways)
	result = append(result, reorder)

	return result
}

// MakeReductionStrategies reproduces
// UnsafeStrategy::makeReductionStrategies.
func MakeReductionStrategies() []*Strategy {
	return []*Strategy{baseReductionStrategy()}
}
