package ast

import "encoding/json"

// jsonPrinter implements ExprVisitor and StmtVisitor and builds a
// JSON-friendly representation of the AST out of maps and slices. Each
// Visit method returns a value that can be marshaled directly; grounded in
// informatter-nilan's parser/printer.go astPrinter, generalized to the full
// node set of this package.
type jsonPrinter struct{}

func nilOrAcceptExpr(e Expr, p ExprVisitor) any {
	if e == nil {
		return nil
	}
	return e.Accept(p)
}

func nilOrAcceptStmt(s Stmt, p StmtVisitor) any {
	if s == nil {
		return nil
	}
	return s.Accept(p)
}

func (p jsonPrinter) VisitBinary(n *Binary) any {
	return map[string]any{"type": "Binary", "op": n.Op, "lhs": n.Lhs.Accept(p), "rhs": n.Rhs.Accept(p)}
}

func (p jsonPrinter) VisitUnary(n *Unary) any {
	return map[string]any{"type": "Unary", "op": n.Op, "postfix": n.Postfix, "operand": n.Operand.Accept(p)}
}

func (p jsonPrinter) VisitAssign(n *Assign) any {
	return map[string]any{"type": "Assign", "op": n.Op, "target": n.Target.Accept(p), "value": n.Value.Accept(p)}
}

func (p jsonPrinter) VisitCall(n *Call) any {
	args := make([]any, 0, len(n.Args))
	for _, a := range n.Args {
		args = append(args, a.Accept(p))
	}
	return map[string]any{"type": "Call", "callee": n.Callee, "args": args}
}

func (p jsonPrinter) VisitIndex(n *Index) any {
	return map[string]any{"type": "Index", "array": n.Array.Accept(p), "subscript": n.Subscript.Accept(p)}
}

func (p jsonPrinter) VisitMember(n *Member) any {
	return map[string]any{"type": "Member", "field": n.Field, "arrow": n.Arrow, "object": n.Object.Accept(p)}
}

func (p jsonPrinter) VisitIdentifier(n *Identifier) any {
	return map[string]any{"type": "Identifier", "name": n.Name}
}

func (p jsonPrinter) VisitIntLit(n *IntLit) any {
	return map[string]any{"type": "IntLit", "value": n.Value}
}

func (p jsonPrinter) VisitStringLit(n *StringLit) any {
	return map[string]any{"type": "StringLit", "value": string(n.Bytes)}
}

func (p jsonPrinter) VisitCharLit(n *CharLit) any {
	return map[string]any{"type": "CharLit", "value": n.Value}
}

func (p jsonPrinter) VisitBoolLit(n *BoolLit) any {
	return map[string]any{"type": "BoolLit", "value": n.Value}
}

func (p jsonPrinter) VisitProgram(n *Program) any {
	decls := make([]any, 0, len(n.Decls))
	for _, d := range n.Decls {
		decls = append(decls, d.Accept(p))
	}
	return map[string]any{"type": "Program", "decls": decls}
}

func (p jsonPrinter) VisitFunctionDecl(n *FunctionDecl) any {
	params := make([]any, 0, len(n.Params))
	for _, prm := range n.Params {
		params = append(params, map[string]any{"name": prm.Name, "type": prm.Type.String()})
	}
	return map[string]any{
		"type":     "FunctionDecl",
		"name":     n.Name,
		"exported": n.Exported,
		"params":   params,
		"return":   n.Return.String(),
		"body":     n.Body.Accept(p),
	}
}

func (p jsonPrinter) VisitVarDecl(n *VarDecl) any {
	return map[string]any{
		"type": "VarDecl", "name": n.Name, "vartype": n.Type.String(),
		"init": nilOrAcceptExpr(n.Init, p),
	}
}

func (p jsonPrinter) VisitStructDecl(n *StructDecl) any {
	fields := make([]any, 0, len(n.Fields))
	for _, f := range n.Fields {
		fields = append(fields, map[string]any{"name": f.Name, "type": f.Type.String()})
	}
	return map[string]any{"type": "StructDecl", "name": n.Name, "fields": fields}
}

func (p jsonPrinter) VisitBlock(n *Block) any {
	stmts := make([]any, 0, len(n.Stmts))
	for _, s := range n.Stmts {
		stmts = append(stmts, s.Accept(p))
	}
	return map[string]any{"type": "Block", "stmts": stmts}
}

func (p jsonPrinter) VisitIf(n *If) any {
	return map[string]any{
		"type": "If", "cond": n.Cond.Accept(p), "then": n.Then.Accept(p),
		"else": nilOrAcceptStmt(n.Else, p),
	}
}

func (p jsonPrinter) VisitWhile(n *While) any {
	return map[string]any{"type": "While", "cond": n.Cond.Accept(p), "body": n.Body.Accept(p)}
}

func (p jsonPrinter) VisitFor(n *For) any {
	return map[string]any{
		"type": "For",
		"init": nilOrAcceptStmt(n.Init, p),
		"cond": nilOrAcceptExpr(n.Cond, p),
		"post": nilOrAcceptExpr(n.Post, p),
		"body": n.Body.Accept(p),
	}
}

func (p jsonPrinter) VisitReturn(n *Return) any {
	return map[string]any{"type": "Return", "value": nilOrAcceptExpr(n.Value, p)}
}

func (p jsonPrinter) VisitBreak(n *Break) any { return map[string]any{"type": "Break"} }

func (p jsonPrinter) VisitContinue(n *Continue) any { return map[string]any{"type": "Continue"} }

func (p jsonPrinter) VisitExprStmt(n *ExprStmt) any {
	return map[string]any{"type": "ExprStmt", "expr": n.Expr.Accept(p)}
}

// PrintJSON renders a Program as indented JSON, mirroring
// informatter-nilan's PrintASTJSON but returning the string directly
// instead of also writing it to stdout, since its caller here is the
// compile subcommand's --dump-ast flag rather than an interactive REPL.
func PrintJSON(prog *Program) (string, error) {
	printer := jsonPrinter{}
	out, err := json.MarshalIndent(prog.Accept(printer), "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}
