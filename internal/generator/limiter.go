package generator

// Limiter is a scoped recursion depth counter (spec.md §4.G.1, §9). Every
// recursive generator entry point takes its token by value at the top of
// the body; Reached() returns true once Limit has been hit, at which point
// the generator is expected to return the simplest legal placeholder
// instead of recursing further. This is a normal control-flow signal
// (spec.md §7 OutOfBudget), never an error.
type Limiter struct {
	limit int
	depth *int
}

// NewLimiter returns a Limiter with the given max depth, backed by its own
// counter.
func NewLimiter(limit int) Limiter {
	depth := 0
	return Limiter{limit: limit, depth: &depth}
}

// Enter increments the counter and returns a release func that decrements
// it on scope exit, plus the child Limiter a recursive call should use.
// Usage:
//
//	child, release := l.Enter()
//	defer release()
//	if child.Reached() { return placeholder }
func (l Limiter) Enter() (Limiter, func()) {
	*l.depth++
	return l, func() { *l.depth-- }
}

// Reached reports whether the current depth has hit the limit.
func (l Limiter) Reached() bool {
	return *l.depth >= l.limit
}

// Limiters bundles the five independent recursion limiters the generator
// uses (spec.md §4.G.1): expr, stmt, func, type, record.
type Limiters struct {
	Expr   Limiter
	Stmt   Limiter
	Func   Limiter
	Type   Limiter
	Record Limiter
}

// NewLimiters returns a fresh Limiters set at the documented defaults
// (spec.md §4.G.1 / internal/config defaults).
func NewLimiters(exprLimit, stmtLimit, funcLimit, typeLimit, recordLimit int) Limiters {
	return Limiters{
		Expr:   NewLimiter(exprLimit),
		Stmt:   NewLimiter(stmtLimit),
		Func:   NewLimiter(funcLimit),
		Type:   NewLimiter(typeLimit),
		Record: NewLimiter(recordLimit),
	}
}
