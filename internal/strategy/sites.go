package strategy

// Site is a decision site: a named Bernoulli draw inside the generator
// (spec.md §4.F, GLOSSARY). The enumeration is closed — every site the
// mutator ever consults is declared here once, reproducing in full the
// original implementation's decision-site x-macro (original_source's
// UnsafeDecisions.def, referenced but not itself kept in the retrieval
// pack — reconstructed from every fragment named across UnsafeStrategy.cpp
// and the mutator headers).
type Site int

const (
	CallBuiltin Site = iota
	CatchAll
	CleanupCompound
	CreateFuncPtrType
	CreateNewType
	DeleteFuncAttrs
	DeleteStmtInCompound
	DeleteTypes
	DontFillArrayConstant
	EmitStringLiteral
	EmptyCompound
	EnsureReturnInFunc
	MutateCompound
	PromoteChild
	PromoteChildren
	WrapInCompound
	MutateFuncAttrs
	UseNonStdCallingConv
	InitWithFuncAttrs
	DeleteCompoundStmts
	SimplifyStmt
	PickPtrOverInt
	UseSnippet
	AssignExprToVar
	InitGlobal
	MutateFunction
	MutateGlobal
	ChangeIdentifier
	RegenerateProgram
	FixMainReturn
	MutateOverDelete
	ReorderOverDelete
	MutateTypes
	PreferModifyingStmtsOverExprs
	GarbageCollectTypes

	numSites // sentinel; not a real decision site
)

var siteNames = map[Site]string{
	CallBuiltin:                   "CallBuiltin",
	CatchAll:                      "CatchAll",
	CleanupCompound:               "CleanupCompound",
	CreateFuncPtrType:             "CreateFuncPtrType",
	CreateNewType:                 "CreateNewType",
	DeleteFuncAttrs:               "DeleteFuncAttrs",
	DeleteStmtInCompound:          "DeleteStmtInCompound",
	DeleteTypes:                   "DeleteTypes",
	DontFillArrayConstant:         "DontFillArrayConstant",
	EmitStringLiteral:             "EmitStringLiteral",
	EmptyCompound:                 "EmptyCompound",
	EnsureReturnInFunc:            "EnsureReturnInFunc",
	MutateCompound:                "MutateCompound",
	PromoteChild:                  "PromoteChild",
	PromoteChildren:               "PromoteChildren",
	WrapInCompound:                "WrapInCompound",
	MutateFuncAttrs:               "MutateFuncAttrs",
	UseNonStdCallingConv:          "UseNonStdCallingConv",
	InitWithFuncAttrs:             "InitWithFuncAttrs",
	DeleteCompoundStmts:           "DeleteCompoundStmts",
	SimplifyStmt:                  "SimplifyStmt",
	PickPtrOverInt:                "PickPtrOverInt",
	UseSnippet:                    "UseSnippet",
	AssignExprToVar:               "AssignExprToVar",
	InitGlobal:                    "InitGlobal",
	MutateFunction:                "MutateFunction",
	MutateGlobal:                  "MutateGlobal",
	ChangeIdentifier:              "ChangeIdentifier",
	RegenerateProgram:             "RegenerateProgram",
	FixMainReturn:                 "FixMainReturn",
	MutateOverDelete:              "MutateOverDelete",
	ReorderOverDelete:             "ReorderOverDelete",
	MutateTypes:                   "MutateTypes",
	PreferModifyingStmtsOverExprs: "PreferModifyingStmtsOverExprs",
	GarbageCollectTypes:           "GarbageCollectTypes",
}

// String returns the user-readable name for a decision site (spec.md
// §4.F's getFragName).
func (s Site) String() string {
	if n, ok := siteNames[s]; ok {
		return n
	}
	return "INVALID"
}

// AllSites returns every declared decision site, in declaration order.
func AllSites() []Site {
	out := make([]Site, 0, numSites)
	for s := Site(0); s < numSites; s++ {
		out = append(out, s)
	}
	return out
}
