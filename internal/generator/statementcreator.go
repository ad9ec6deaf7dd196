package generator

import (
	"sort"

	"ubfuzz/internal/ast"
	"ubfuzz/internal/ident"
	"ubfuzz/internal/program"
	"ubfuzz/internal/rng"
	"ubfuzz/internal/strategy"
	"ubfuzz/internal/types"
)

// stmtContext tracks what's in scope while generating one function body (or
// the global-initializer context, which has no function/variables), ported
// from StatementCreator.h's StatementContext.
type stmtContext struct {
	function   *program.Decl
	returnType types.Ref
	variables  map[ident.ID]ast.Variable
	inLoop     bool
}

func newGlobalContext() *stmtContext {
	return &stmtContext{variables: map[ident.ID]ast.Variable{}}
}

func newFunctionContext(f *program.Decl) *stmtContext {
	c := &stmtContext{function: f, returnType: f.RetType, variables: map[ident.ID]ast.Variable{}}
	for _, arg := range f.Params {
		c.variables[arg.Name] = arg
		// Don't thread argv into scope for main — its variable contents
		// make test cases unstable across runs.
	}
	return c
}

// clone returns a context with an independent copy of the variable scope,
// so statements generated inside a nested block don't leak their locals
// back out to the enclosing one.
func (c *stmtContext) clone() *stmtContext {
	vars := make(map[ident.ID]ast.Variable, len(c.variables))
	for k, v := range c.variables {
		vars[k] = v
	}
	return &stmtContext{function: c.function, returnType: c.returnType, variables: vars, inLoop: c.inLoop}
}

func (c *stmtContext) addVariable(v ast.Variable) { c.variables[v.Name] = v }

// statementCreator is the largest generator sub-engine: it builds new
// expressions and statements from scratch for a given target type or
// statement context, ported from
// original_source/mutator/src/StatementCreator.cpp /
// include/LookUB/mutator/StatementCreator.h.
type statementCreator struct {
	md       *MutatorData
	tc       *typeCreator
	literals *literalMaker
	snippets *snippets
	builtins *builtinRegistry
}

func newStatementCreator(md *MutatorData, builtins *builtinRegistry) *statementCreator {
	return &statementCreator{
		md:       md,
		tc:       newTypeCreator(md),
		literals: newLiteralMaker(md),
		snippets: newSnippets(md, builtins),
		builtins: builtins,
	}
}

// --- Initializers ---

func (sc *statementCreator) makeArrayInit(t types.Ref) *ast.Statement {
	release := sc.md.Program.QueueVerify()
	defer func() { _ = release() }()

	pool := sc.md.Program.Types
	t = pool.StripCV(t)
	base := pool.Get(t).Base

	var values []*ast.Statement
	n := pool.Get(t).ArraySize
	for i := 0; i < n; i++ {
		values = append(values, sc.literals.MakeConstant(base))
		if sc.md.decision(strategy.DontFillArrayConstant) {
			break
		}
	}
	return ast.NewConstantArray(values, t)
}

func (sc *statementCreator) makeVarInit(t types.Ref) *ast.Statement {
	release := sc.md.Program.QueueVerify()
	defer func() { _ = release() }()

	if sc.md.Program.Types.Get(t).Kind == types.Array {
		return sc.makeArrayInit(t)
	}
	return sc.literals.MakeConstant(t)
}

// --- Functions ---

func (sc *statementCreator) finishFunctionCreation(f *program.Decl) *program.Decl {
	release := sc.md.Program.QueueVerify()
	defer func() { _ = release() }()

	if sc.md.decision(strategy.InitWithFuncAttrs) {
		f.Attrs = append(f.Attrs, rng.PickOne(sc.md.Rng, attributeTokens))
	}

	child, exit := sc.md.Limiters.Func.Enter()
	defer exit()
	if child.Reached() {
		f.Body = ast.NewCompound(nil)
	} else {
		f.Body = sc.makeFunctionBody(f)
	}

	f.Static = sc.md.Rng.FlipCoin()
	if sc.md.Program.Opts.IsCxx() {
		f.Noexcept = sc.md.Rng.FlipCoin()
	}

	if err := sc.md.Program.Add(f); err != nil {
		panic("generator: " + err.Error())
	}
	return f
}

func (sc *statementCreator) createFunctionWithType(tref types.Ref) *program.Decl {
	release := sc.md.Program.QueueVerify()
	defer func() { _ = release() }()

	t := sc.md.Program.Types.Get(tref)
	var args []ast.Variable
	for _, arg := range t.Params {
		args = append(args, ast.Variable{Type: arg, Name: sc.md.newID("arg")})
	}
	name := sc.md.newID("func")
	f := &program.Decl{Kind: program.FunctionDecl, Name: name, RetType: t.Ret, Params: args}
	return sc.finishFunctionCreation(f)
}

func (sc *statementCreator) createFunctionWithReturnType(t types.Ref) *program.Decl {
	release := sc.md.Program.QueueVerify()
	defer func() { _ = release() }()

	var args []ast.Variable
	n := int(sc.md.Rng.Below(8))
	for i := 0; i < n; i++ {
		args = append(args, ast.Variable{Type: sc.tc.GetExistingDefinedType(), Name: sc.md.newID("arg")})
	}
	name := sc.md.newID("func")
	f := &program.Decl{Kind: program.FunctionDecl, Name: name, RetType: t, Params: args}
	return sc.finishFunctionCreation(f)
}

func (sc *statementCreator) getAnyFunction() *program.Decl {
	options := sc.md.Program.Decls.Functions
	if len(options) == 0 {
		return sc.createFunctionWithReturnType(sc.tc.GetReturnType())
	}
	return rng.PickOne(sc.md.Rng, options)
}

// --- Exception handling, asm, calls ---

func (sc *statementCreator) makeGoto(c *stmtContext) *ast.Statement {
	if c.function == nil {
		return sc.makeStmt(c)
	}
	labels := getAllLabels(c.function.Body)
	if len(labels) == 0 {
		return sc.makeStmt(c)
	}
	return ast.NewGoto(rng.PickOne(sc.md.Rng, labels))
}

func getAllLabels(body *ast.Statement) []ident.ID {
	if body == nil {
		return nil
	}
	var labels []ident.ID
	for _, cp := range body.GetAllChildren() {
		if cp.Child.Kind == ast.GotoLabel {
			labels = append(labels, cp.Child.JumpTarget())
		}
	}
	return labels
}

func (sc *statementCreator) makeThrow(c *stmtContext) *ast.Statement {
	release := sc.md.Program.QueueVerify()
	defer func() { _ = release() }()
	return ast.NewThrow(sc.makeExpr(c, sc.tc.GetDefinedType()))
}

func (sc *statementCreator) makeCatch(c *stmtContext) *ast.Statement {
	return ast.NewCatch(sc.tc.GetDefinedType(), sc.md.newID("c"), sc.makeStmt(c))
}

func (sc *statementCreator) makeCatchAll(c *stmtContext) *ast.Statement {
	return ast.NewCatchAll(sc.makeStmt(c))
}

func (sc *statementCreator) makeTry(c *stmtContext) *ast.Statement {
	release := sc.md.Program.QueueVerify()
	defer func() { _ = release() }()

	var catches []*ast.Statement
	n := int(sc.md.Rng.Below(4))
	for i := 0; i < n; i++ {
		catches = append(catches, sc.makeCatch(c))
	}
	if sc.md.decision(strategy.CatchAll) {
		catches = append(catches, sc.makeCatchAll(c))
	}
	return ast.NewTry(sc.makeStmt(c), catches)
}

func (sc *statementCreator) makeAsm() *ast.Statement {
	return ast.NewAsm("nop")
}

func (sc *statementCreator) makeCallToFunc(c *stmtContext, f *program.Decl) *ast.Statement {
	release := sc.md.Program.QueueVerify()
	defer func() { _ = release() }()

	var args []*ast.Statement
	for _, arg := range f.Params {
		args = append(args, sc.makeExpr(c, arg.Type))
	}
	return ast.NewCall(f.RetType, f.Name, args)
}

func (sc *statementCreator) makeCall(c *stmtContext, t types.Ref) *ast.Statement {
	release := sc.md.Program.QueueVerify()
	defer func() { _ = release() }()

	// CallFuncPtr never appeared in the ported weight table; drawn as a
	// plain coin flip, same rationale as typeCreator's pickVoidForAny.
	if sc.md.Rng.FlipCoin() {
		funcPtrT := sc.tc.MakeNewFuncPtrTypeWithResult(t)
		funcPtr := sc.makeExpr(c, funcPtrT)
		var args []*ast.Statement
		for _, arg := range sc.md.Program.Types.Get(funcPtrT).Params {
			args = append(args, sc.makeExpr(c, arg))
		}
		return ast.NewIndirectCall(t, funcPtr, args)
	}
	f := sc.createFunctionWithReturnType(t)
	var args []*ast.Statement
	for _, arg := range f.Params {
		args = append(args, sc.makeExpr(c, arg.Type))
	}
	return ast.NewCall(t, f.Name, args)
}

func (sc *statementCreator) makeConstant(t types.Ref) *ast.Statement {
	release := sc.md.Program.QueueVerify()
	defer func() { _ = release() }()
	return sc.literals.MakeConstant(t)
}

// --- Globals ---

func (sc *statementCreator) makeGlobal(t types.Ref) *program.Decl {
	name := sc.md.newID("global")
	g := &program.Decl{Kind: program.GlobalVarDecl, Name: name, VarType: t, Static: sc.md.Rng.FlipCoin()}
	if expectsVarInitializer(sc.md.Program.Types, t) || sc.md.decision(strategy.InitGlobal) {
		if sc.md.Program.Types.Get(t).Kind == types.Array {
			g.Init = sc.makeArrayInit(t)
		} else {
			g.Init = sc.makeConstant(t)
		}
	}
	if err := sc.md.Program.Add(g); err != nil {
		panic("generator: " + err.Error())
	}
	return g
}

// expectsVarInitializer reports whether t's kind requires a var to carry an
// initializer rather than a bare tentative declaration (arrays and records
// in the targeted C/C++ dialects always do).
func expectsVarInitializer(pool *types.Pool, t types.Ref) bool {
	k := pool.Get(t).Kind
	return k == types.Array || k == types.Record
}

func (sc *statementCreator) makeOrFindGlobal(t types.Ref) *program.Decl {
	for _, d := range sc.md.Program.Decls.Globals {
		if d.VarType == t && sc.md.Rng.FlipCoin() {
			return d
		}
	}
	return sc.makeGlobal(t)
}

// --- Expressions ---

func (sc *statementCreator) makeLValue(c *stmtContext, t types.Ref) *ast.Statement {
	pool := sc.md.Program.Types
	if pool.Get(t).Kind == types.Pointer && sc.md.Rng.FlipCoin() {
		return ast.NewDeref(t, sc.makeLValue(c, sc.tc.GetPtrTypeOf(t)))
	}
	return sc.makeVarRef(c, t)
}

func (sc *statementCreator) makeBinary(c *stmtContext, t types.Ref) *ast.Statement {
	pool := sc.md.Program.Types
	kind := pool.Get(t).Kind

	var op string
	var lhsT, rhsT types.Ref
	switch {
	case kind.IsInteger():
		op = rng.PickOne(sc.md.Rng, ast.IntegerOps)
		lhsT = sc.tc.GetAnyIntType(op != "=")
		rhsT = sc.tc.GetAnyIntType(true)
	case kind.IsFloat():
		lhsT = sc.tc.GetAnyIntOrFloatType()
		rhsT = sc.tc.GetAnyIntOrFloatType()
		op = rng.PickOne(sc.md.Rng, ast.FloatOps)
	case kind == types.Pointer:
		lhsT = t
		rhsT = sc.tc.GetAnyIntType(true)
		op = rng.PickOne(sc.md.Rng, ast.PointerOps)
	default:
		return sc.makeConstant(t)
	}

	if op == "=" {
		return ast.NewBinaryOp(op, sc.makeLValue(c, lhsT), sc.makeExpr(c, rhsT), t)
	}
	return ast.NewBinaryOp(op, sc.makeExpr(c, lhsT), sc.makeExpr(c, rhsT), t)
}

func (sc *statementCreator) makeCxxNewExpr(t types.Ref) *ast.Statement {
	return ast.NewNew(t, nil)
}

func (sc *statementCreator) makeDelete(c *stmtContext) *ast.Statement {
	return ast.NewDelete(sc.makeExpr(c, sc.tc.GetPtrType()))
}

func (sc *statementCreator) makeDeref(c *stmtContext, t types.Ref) *ast.Statement {
	ptrT := sc.md.Program.Types.GetOrCreateDerived(types.Pointer, t)
	return ast.NewDeref(t, sc.makeExpr(c, ptrT))
}

func (sc *statementCreator) makeSubscript(c *stmtContext, t types.Ref) *ast.Statement {
	ptrT := sc.md.Program.Types.GetOrCreateDerived(types.Pointer, t)
	base := sc.makeExpr(c, ptrT)
	index := sc.makeExpr(c, sc.tc.GetAnyIntType(true))
	return ast.NewSubscript(t, base, index)
}

// canTypeConvertTo reports whether an lvalue of type from is usable where a
// to-typed value is expected: identical types, array-to-pointer decay, or
// adding a CV qualifier.
func canTypeConvertTo(pool *types.Pool, from, to types.Ref) bool {
	if from == to {
		return true
	}
	fromT := pool.Get(from)
	toT := pool.Get(to)
	if fromT.Kind == types.Array && toT.Kind == types.Pointer {
		return canTypeConvertTo(pool, fromT.Base, toT.Base)
	}
	if toT.Kind == types.Const || toT.Kind == types.Volatile {
		return canTypeConvertTo(pool, from, toT.Base)
	}
	return false
}

func (sc *statementCreator) makeVarRef(c *stmtContext, t types.Ref) *ast.Statement {
	if sc.md.Rng.FlipCoin() {
		if v, ok := sc.pickConvertibleVar(c, t); ok {
			return ast.NewLocalVarRef(v)
		}
	}
	g := sc.makeOrFindGlobal(t)
	return ast.NewGlobalVarRef(ast.Variable{Type: g.VarType, Name: g.Name})
}

// pickConvertibleVar collects every in-scope variable usable where a
// t-typed lvalue is expected and draws one via the RNG. Candidates are
// sorted by NameID first: c.variables is a Go map, whose iteration order
// is randomized per-process, so picking the first range hit (as opposed
// to drawing from a stably-ordered slice) would make variable selection
// depend on map iteration rather than on the RNG stream alone, breaking
// generate/mutate's determinism guarantee (spec.md §8 property 1).
func (sc *statementCreator) pickConvertibleVar(c *stmtContext, t types.Ref) (ast.Variable, bool) {
	pool := sc.md.Program.Types
	var candidates []ast.Variable
	for _, v := range c.variables {
		if canTypeConvertTo(pool, v.Type, t) {
			candidates = append(candidates, v)
		}
	}
	if len(candidates) == 0 {
		return ast.Variable{}, false
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Name < candidates[j].Name })
	return rng.PickOne(sc.md.Rng, candidates), true
}

// makeExpr is the public recursive-expression entry point: it checks the
// IsExpr() postcondition around makeExprImpl, which itself enforces the expr
// recursion limiter.
func (sc *statementCreator) makeExpr(c *stmtContext, t types.Ref) *ast.Statement {
	s := sc.makeExprImpl(c, t)
	if !s.IsExpr() {
		panic("generator: makeExpr produced a non-expression")
	}
	return s
}

func (sc *statementCreator) makeExprImpl(c *stmtContext, t types.Ref) *ast.Statement {
	release := sc.md.Program.QueueVerify()
	defer func() { _ = release() }()

	child, exit := sc.md.Limiters.Expr.Enter()
	defer exit()
	if child.Reached() {
		return sc.makeConstant(t)
	}

	pool := sc.md.Program.Types
	t = pool.StripCV(t)
	isPointer := pool.Get(t).Kind == types.Pointer

	if sc.md.decision(strategy.CallBuiltin) {
		for attempt := 0; attempt < 10; attempt++ {
			kind := sc.builtins.pickKind()
			f := sc.builtinDecl(kind)
			if f.RetType == t {
				return sc.makeCallToFunc(c, f)
			}
			if pool.Get(f.RetType).Kind == types.Pointer && isPointer {
				return ast.NewCast(t, sc.makeCallToFunc(c, f))
			}
		}
	}

	voidT := pool.Builtin(types.Void)
	voidPtr := pool.GetOrCreateDerived(types.Pointer, voidT)
	if t == voidPtr {
		return ast.NewCast(t, sc.makeExprImpl(c, sc.tc.GetAnyIntOrPtrType()))
	}

	kind := pool.Get(t).Kind
	if kind.IsFloat() || kind.IsInteger() || isPointer {
		type option int
		const (
			optConstant option = iota
			optBin
			optCall
			optVar
			optCast
			optDeref
			optSubscript
			optAddrOf
			optNew
		)
		options := []option{optConstant, optSubscript, optBin, optCall, optVar, optVar, optVar, optCast, optDeref}
		if isPointer {
			options = append(options, optAddrOf)
			if sc.md.Program.Opts.IsCxx() {
				options = append(options, optNew)
			}
		}
		switch rng.PickOne(sc.md.Rng, options) {
		case optConstant:
			return sc.makeConstant(t)
		case optBin:
			return sc.makeBinary(c, t)
		case optDeref:
			return sc.makeDeref(c, t)
		case optSubscript:
			return sc.makeSubscript(c, t)
		case optNew:
			return sc.makeCxxNewExpr(t)
		case optCall:
			if pool.Get(t).Kind == types.Array {
				return sc.makeExprImpl(c, t)
			}
			return sc.makeCall(c, t)
		case optVar:
			return sc.makeVarRef(c, t)
		case optCast:
			if isPointer {
				return ast.NewCast(t, sc.makeExprImpl(c, sc.tc.GetAnyIntOrPtrType()))
			}
			return ast.NewCast(t, sc.makeExprImpl(c, sc.tc.GetAnyIntType(true)))
		case optAddrOf:
			return ast.NewAddrOf(t, sc.makeLValue(c, pool.Get(t).Base))
		}
	}

	switch kind {
	case types.Array:
		return sc.makeVarRef(c, t)
	case types.FunctionPointer:
		if sc.md.Rng.FlipCoin() {
			return sc.makeConstant(t)
		}
		f := sc.createFunctionWithType(t)
		return ast.NewAddrOfFunc(t, f.Name)
	case types.Record:
		return sc.makeConstant(t)
	case types.Void:
		return sc.makeCall(c, t)
	}

	return sc.makeConstant(t)
}

func (sc *statementCreator) builtinDecl(kind builtinKind) *program.Decl {
	id := sc.builtins.get(kind)
	return sc.md.Program.FindFunction(id)
}

// --- Statements ---

func (sc *statementCreator) makeReturn(c *stmtContext) *ast.Statement {
	release := sc.md.Program.QueueVerify()
	defer func() { _ = release() }()

	if c.returnType == sc.md.Program.Types.Builtin(types.Void) {
		return ast.NewVoidReturn()
	}
	return ast.NewReturn(sc.makeExpr(c, c.returnType))
}

func (sc *statementCreator) makeIf(c *stmtContext) *ast.Statement {
	release := sc.md.Program.QueueVerify()
	defer func() { _ = release() }()

	cond := sc.makeExpr(c, sc.tc.GetBoolType())
	return ast.NewIf(cond, sc.makeCompoundStmt(c.clone()), nil)
}

func (sc *statementCreator) makeWhile(c *stmtContext) *ast.Statement {
	release := sc.md.Program.QueueVerify()
	defer func() { _ = release() }()

	cond := sc.makeExpr(c, sc.tc.GetBoolType())
	loopCtx := c.clone()
	loopCtx.inLoop = true
	return ast.NewWhile(cond, sc.makeCompoundStmt(loopCtx))
}

func (sc *statementCreator) makeVarDecl(c *stmtContext, isDefinition bool) *ast.Statement {
	release := sc.md.Program.QueueVerify()
	defer func() { _ = release() }()

	var t types.Ref
	for attempt := 0; attempt < 1000; attempt++ {
		if isDefinition {
			t = sc.tc.GetDefinedType()
			break
		}
		t = sc.tc.GetDefinedNonConstType()
		if expectsVarInitializer(sc.md.Program.Types, t) {
			continue
		}
		break
	}

	id := sc.md.newID("var")
	v := ast.Variable{Type: t, Name: id}

	if isDefinition {
		var res *ast.Statement
		if sc.md.Program.Types.Get(t).Kind == types.Array {
			res = ast.NewVarDef(t, id, sc.makeArrayInit(t))
		} else {
			res = ast.NewVarDef(t, id, sc.makeExpr(c, t))
		}
		c.addVariable(v)
		return res
	}
	c.addVariable(v)
	return ast.NewVarDecl(t, id)
}

func (sc *statementCreator) makeBuiltinCallStmt(c *stmtContext) *ast.Statement {
	kind := sc.builtins.pickKind()
	f := sc.builtinDecl(kind)
	return sc.md.wrapExprInStmt(sc.makeCallToFunc(c, f))
}

// makeStmt is the public recursive-statement entry point: it enforces the
// IsStmt() postcondition around makeStmtImpl.
func (sc *statementCreator) makeStmt(c *stmtContext) *ast.Statement {
	return sc.makeStmtWithOpts(c, false)
}

func (sc *statementCreator) makeStmtWithOpts(c *stmtContext, avoidDecl bool) *ast.Statement {
	s := sc.makeStmtImpl(c, avoidDecl)
	if !s.IsStmt() {
		panic("generator: makeStmt produced an expression")
	}
	return s
}

func (sc *statementCreator) makeStmtImpl(c *stmtContext, avoidDecl bool) *ast.Statement {
	release := sc.md.Program.QueueVerify()
	defer func() { _ = release() }()

	if sc.md.decision(strategy.UseSnippet) {
		return sc.snippets.CreateSnippet(c.returnType)
	}

	if len(sc.md.ReuseStack) > 0 && sc.md.Rng.FlipCoin() {
		n := len(sc.md.ReuseStack) - 1
		s := sc.md.ReuseStack[n]
		sc.md.ReuseStack = sc.md.ReuseStack[:n]
		return s
	}

	if sc.md.Rng.SuccessChance(0.05) {
		return sc.makeBuiltinCallStmt(c)
	}

	child, exit := sc.md.Limiters.Stmt.Enter()
	defer exit()
	if child.Reached() {
		return ast.NewEmpty()
	}

	type opt int
	const (
		optReturn opt = iota
		optExpr
		optIf
		optWhile
		optVarDecl
		optVarDef
		optBreak
		optAsm
		optCall
		optDelete
		optGoto
		optLabel
		optCompound
	)
	toPick := []opt{
		optReturn, optExpr, optIf, optWhile, optVarDecl, optCall, optVarDef,
		optAsm, optBreak, optGoto, optLabel, optCompound, optCompound, optCompound,
	}
	if sc.md.Program.Opts.IsCxx() {
		toPick = append(toPick, optDelete)
	}

	switch rng.PickOne(sc.md.Rng, toPick) {
	case optReturn:
		return sc.makeReturn(c)
	case optCompound:
		return sc.makeCompoundStmt(c.clone())
	case optIf:
		return sc.makeIf(c)
	case optBreak:
		if c.inLoop {
			return ast.NewBreak()
		}
		return sc.makeStmt(c)
	case optWhile:
		return sc.makeWhile(c)
	case optDelete:
		return sc.makeDelete(c)
	case optAsm:
		return sc.makeAsm()
	case optGoto:
		s := sc.makeGoto(c)
		if s.Kind == ast.Empty {
			return sc.makeStmtWithOpts(c, avoidDecl)
		}
		return s
	case optLabel:
		return ast.NewGotoLabel(sc.md.newID("rngLbl"))
	case optVarDecl:
		if avoidDecl {
			return sc.makeStmtWithOpts(c, avoidDecl)
		}
		return sc.makeVarDecl(c, false)
	case optVarDef:
		if avoidDecl {
			return sc.makeStmtWithOpts(c, avoidDecl)
		}
		return sc.makeVarDecl(c, true)
	case optCall:
		return sc.md.wrapExprInStmt(sc.makeCallToFunc(c, sc.getAnyFunction()))
	case optExpr:
		return sc.md.wrapExprInStmt(sc.makeExpr(c, sc.tc.GetDefinedType()))
	}
	return ast.NewEmpty()
}

// makeCompoundStmt builds a block of 0-15 statements, stopping early on the
// first Empty (mirrors the original's early break — an Empty signals
// "nothing more worth generating here").
func (sc *statementCreator) makeCompoundStmt(c *stmtContext) *ast.Statement {
	var children []*ast.Statement
	n := int(sc.md.Rng.Below(16))
	for i := 0; i < n; i++ {
		s := sc.makeStmt(c)
		if s.Kind == ast.Empty {
			break
		}
		if s.Kind == ast.VarDecl || s.Kind == ast.VarDef {
			c.addVariable(ast.Variable{Type: s.Var.Type, Name: s.Var.Name})
		}
		children = append(children, s)
	}
	return ast.NewCompound(children)
}

// makeFunctionBody generates 1-16 statements, optionally forces a trailing
// return, and runs the canonicalizer before handing the body back.
func (sc *statementCreator) makeFunctionBody(f *program.Decl) *ast.Statement {
	release := sc.md.Program.QueueVerify()
	defer func() { _ = release() }()

	c := newFunctionContext(f)
	var children []*ast.Statement
	n := 1 + int(sc.md.Rng.Below(16))
	for i := 0; i < n; i++ {
		children = append(children, sc.makeStmt(c))
	}
	if sc.md.decision(strategy.EnsureReturnInFunc) {
		children = append(children, sc.makeReturn(c))
	}

	body := ast.NewCompound(children)
	return canonicalizeStmt(body)
}
