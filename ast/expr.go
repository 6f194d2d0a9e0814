// Package ast defines the tagged AST node variants of spec.md §3 using the
// visitor pattern from informatter-nilan's ast package (Accept(visitor) any
// dispatching to one Visit method per node shape), generalized from Nilan's
// small expression grammar to the full HolyC-dialect grammar.
package ast

import "holybpf/diag"

// Expr is the interface every expression node implements.
type Expr interface {
	Range() diag.Range
	Accept(v ExprVisitor) any
}

// ExprVisitor operates on every Expr variant; the JSON printer implements
// it (codegen walks expressions with its own type switch instead).
type ExprVisitor interface {
	VisitBinary(*Binary) any
	VisitUnary(*Unary) any
	VisitAssign(*Assign) any
	VisitCall(*Call) any
	VisitIndex(*Index) any
	VisitMember(*Member) any
	VisitIdentifier(*Identifier) any
	VisitIntLit(*IntLit) any
	VisitStringLit(*StringLit) any
	VisitCharLit(*CharLit) any
	VisitBoolLit(*BoolLit) any
}

// Binary represents a binary operation expression, e.g. "a + b".
type Binary struct {
	Op       string
	Lhs, Rhs Expr
	Src      diag.Range
}

func (n *Binary) Range() diag.Range      { return n.Src }
func (n *Binary) Accept(v ExprVisitor) any { return v.VisitBinary(n) }

// Unary represents a prefix or postfix unary operation, e.g. "!a", "-b",
// "x++". Prefix covers "! ~ - + ++ -- * &"; Postfix covers "++ --".
type Unary struct {
	Op      string
	Operand Expr
	Postfix bool
	Src     diag.Range
}

func (n *Unary) Range() diag.Range      { return n.Src }
func (n *Unary) Accept(v ExprVisitor) any { return v.VisitUnary(n) }

// Assign represents an assignment expression, e.g. "x = 10" or "x += 1".
type Assign struct {
	Target Expr
	Op     string // "=", "+=", "-=", "*=", "/="
	Value  Expr
	Src    diag.Range
}

func (n *Assign) Range() diag.Range      { return n.Src }
func (n *Assign) Accept(v ExprVisitor) any { return v.VisitAssign(n) }

// Call represents a call to a built-in function by name (user-defined calls
// are out of scope, spec.md §1/§4.4).
type Call struct {
	Callee string
	Args   []Expr
	Src    diag.Range
}

func (n *Call) Range() diag.Range      { return n.Src }
func (n *Call) Accept(v ExprVisitor) any { return v.VisitCall(n) }

// Index represents an array subscript, e.g. "a[i]".
type Index struct {
	Array    Expr
	Subscript Expr
	Src      diag.Range
}

func (n *Index) Range() diag.Range      { return n.Src }
func (n *Index) Accept(v ExprVisitor) any { return v.VisitIndex(n) }

// Member represents a field access, e.g. "s.field" or "p->field".
type Member struct {
	Object Expr
	Field  string
	Arrow  bool
	Src    diag.Range
}

func (n *Member) Range() diag.Range      { return n.Src }
func (n *Member) Accept(v ExprVisitor) any { return v.VisitMember(n) }

// Identifier references a previously declared name.
type Identifier struct {
	Name string
	Src  diag.Range
}

func (n *Identifier) Range() diag.Range      { return n.Src }
func (n *Identifier) Accept(v ExprVisitor) any { return v.VisitIdentifier(n) }

// IntLit is an integer literal. A nonzero WidthHint gives the integer width
// codegen types the literal with; the parser leaves it 0, which codegen
// treats as 64 bits.
type IntLit struct {
	Value     uint64
	WidthHint int
	Src       diag.Range
}

func (n *IntLit) Range() diag.Range      { return n.Src }
func (n *IntLit) Accept(v ExprVisitor) any { return v.VisitIntLit(n) }

// StringLit is a string literal; Bytes are the raw decoded bytes, not
// null-terminated.
type StringLit struct {
	Bytes []byte
	Src   diag.Range
}

func (n *StringLit) Range() diag.Range      { return n.Src }
func (n *StringLit) Accept(v ExprVisitor) any { return v.VisitStringLit(n) }

// CharLit is a character literal.
type CharLit struct {
	Value byte
	Src   diag.Range
}

func (n *CharLit) Range() diag.Range      { return n.Src }
func (n *CharLit) Accept(v ExprVisitor) any { return v.VisitCharLit(n) }

// BoolLit is True/False.
type BoolLit struct {
	Value bool
	Src   diag.Range
}

func (n *BoolLit) Range() diag.Range      { return n.Src }
func (n *BoolLit) Accept(v ExprVisitor) any { return v.VisitBoolLit(n) }
