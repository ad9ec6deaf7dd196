// Package errors carries the error taxonomy of spec.md §7: a single typed
// error with structured context, in the style of the teacher's
// internal/errors.SentraError (Type + Message + builder methods), but
// without a SourceLocation/CallStack — a generated program has no source
// positions until internal/printer renders it, so there is nothing to
// point a column/line at.
package errors

import "fmt"

// Kind is one of the five taxonomy entries from spec.md §7.
type Kind string

const (
	// InvariantViolation means VerifySelf failed: a generator bug, fatal
	// to the mutation that produced it. The scheduler discards the
	// mutation and skips the step; it never recovers inside mutate_step.
	InvariantViolation Kind = "InvariantViolation"

	// TypeError means the interner was asked to construct a type
	// combination it disallows (e.g. array-of-array). Recoverable: the
	// generator retries with a different draw.
	TypeError Kind = "TypeError"

	// OutOfBudget means a recursion limit was reached. Per spec.md §7
	// this is a normal control-flow signal, not a failure — callers that
	// construct a FuzzError with this Kind still get a legal placeholder
	// alongside it, and should not log it as an error.
	OutOfBudget Kind = "OutOfBudget"

	// RenameConflict means ident.Table.TryChangeID rejected a name.
	// Recoverable: the caller retries with a different name or abandons
	// the mutation.
	RenameConflict Kind = "RenameConflict"

	// PrintError means internal/printer could not serialize a program,
	// e.g. an invalid type reference slipped past verification. Reported
	// to the scheduler; the candidate is dropped without counting as a
	// hit.
	PrintError Kind = "PrintError"
)

// Context is optional structured detail about what the error concerns —
// the generated-program analog of the teacher's SourceLocation, naming
// decl/type/statement identity instead of file/line/column.
type Context struct {
	DeclName string
	TypeName string
	Site     string
}

// FuzzError is the one error type spanning the taxonomy above.
type FuzzError struct {
	Kind    Kind
	Message string
	Context Context
}

// Error implements the error interface.
func (e *FuzzError) Error() string {
	if e.Context == (Context{}) {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s (%+v)", e.Kind, e.Message, e.Context)
}

// New builds a FuzzError with no context.
func New(kind Kind, message string) *FuzzError {
	return &FuzzError{Kind: kind, Message: message}
}

// Newf builds a FuzzError with a formatted message.
func Newf(kind Kind, format string, args ...any) *FuzzError {
	return &FuzzError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithContext attaches structured context and returns e for chaining,
// mirroring the teacher's WithSource/WithStack builder style.
func (e *FuzzError) WithContext(ctx Context) *FuzzError {
	e.Context = ctx
	return e
}

// Is reports whether err is a *FuzzError of the given kind.
func Is(err error, kind Kind) bool {
	fe, ok := err.(*FuzzError)
	return ok && fe.Kind == kind
}
