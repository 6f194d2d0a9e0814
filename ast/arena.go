package ast

// Arena owns every node allocated while parsing a single compilation. The
// AST is a tree by construction (child references never cycle back to an
// ancestor), so the whole arena can be dropped in one operation once the
// code generator has consumed it; see spec.md §9 "AST ownership".
//
// A bump allocator is unnecessary ceremony on top of a garbage-collected
// runtime (see DESIGN.md), so Arena's job here is simply to hand out
// pointers with a stable address across the lifetime of the parse, and to
// track how many nodes of each kind were allocated for diagnostics/tests.
type Arena struct {
	exprNodes int
	stmtNodes int
}

// NewArena creates an empty Arena for a single compilation.
func NewArena() *Arena { return &Arena{} }

// Nodes reports how many expression and statement nodes were allocated.
func (a *Arena) Nodes() (exprs, stmts int) { return a.exprNodes, a.stmtNodes }

// AllocExpr allocates an expression node from the arena.
func AllocExpr[T Expr](a *Arena, v T) T {
	a.exprNodes++
	return v
}

// AllocStmt allocates a statement node from the arena.
func AllocStmt[T Stmt](a *Arena, v T) T {
	a.stmtNodes++
	return v
}
