package codegen

import (
	"holybpf/ast"
	"holybpf/bpf"
	"holybpf/diag"
)

// genStmt lowers a single statement. Unlike expr.go's evalExpr, statements
// leave nothing behind in any register.
func (g *Generator) genStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.Block:
		g.fn.BeginScope()
		for _, inner := range n.Stmts {
			g.genStmt(inner)
		}
		g.fn.EndScope()

	case *ast.VarDecl:
		g.genLocalVarDecl(n)

	case *ast.If:
		g.genIf(n)

	case *ast.While:
		g.genWhile(n)

	case *ast.For:
		g.genFor(n)

	case *ast.Return:
		if n.Value != nil {
			g.evalExpr(n.Value)
			g.emit(bpf.Mov64(bpf.R0, bpf.R1, 0, true))
		} else {
			g.emit(bpf.Mov64(bpf.R0, 0, 0, false))
		}
		g.emit(bpf.Exit())

	case *ast.Break:
		if len(g.breakTargets) == 0 {
			g.fail(diag.KindCodegenTypeMismatch, n.Range(), "break outside of a loop")
		}
		pos := g.emitJump(bpf.JmpJa, 0, 0, false)
		top := len(g.breakTargets) - 1
		g.breakTargets[top] = append(g.breakTargets[top], pos)

	case *ast.Continue:
		if len(g.continueTargets) == 0 {
			g.fail(diag.KindCodegenTypeMismatch, n.Range(), "continue outside of a loop")
		}
		pos := g.emitJump(bpf.JmpJa, 0, 0, false)
		top := len(g.continueTargets) - 1
		g.continueTargets[top] = append(g.continueTargets[top], pos)

	case *ast.ExprStmt:
		g.evalExpr(n.Expr)

	case *ast.StructDecl, *ast.FunctionDecl:
		g.fail(diag.KindCodegenTypeMismatch, s.Range(), "declaration is only valid at the top level")

	default:
		g.fail(diag.KindCodegenTypeMismatch, s.Range(), "unsupported statement")
	}
}

func (g *Generator) genLocalVarDecl(n *ast.VarDecl) {
	sym, err := g.fn.DeclareLocal(n.Name, n.Type)
	if err != nil {
		g.fail(diag.KindCodegenStackOverflow, n.Range(), "%s", err.Error())
	}
	g.fn.Define()
	if n.Init != nil {
		g.evalExpr(n.Init)
		g.emit(bpf.Mem(bpf.ClassStx, sizeCodeFor(n.Type), bpf.R10, bpf.R1, g.frameAddr(sym.StackOffset), 0))
	}
}

func (g *Generator) genIf(n *ast.If) {
	g.evalExpr(n.Cond)
	elseJump := g.emitJump(bpf.JmpJeq, bpf.R1, 0, false)
	g.genStmt(n.Then)

	if n.Else != nil {
		endJump := g.emitJump(bpf.JmpJa, 0, 0, false)
		g.patch(elseJump, g.prog.Len(), n.Range())
		g.genStmt(n.Else)
		g.patch(endJump, g.prog.Len(), n.Range())
		return
	}
	g.patch(elseJump, g.prog.Len(), n.Range())
}

func (g *Generator) genWhile(n *ast.While) {
	condStart := g.prog.Len()
	g.evalExpr(n.Cond)
	exitJump := g.emitJump(bpf.JmpJeq, bpf.R1, 0, false)

	g.breakTargets = append(g.breakTargets, nil)
	g.continueTargets = append(g.continueTargets, nil)

	g.genStmt(n.Body)

	backJump := g.emitJump(bpf.JmpJa, 0, 0, false)
	g.patch(backJump, condStart, n.Range())

	endPos := g.prog.Len()
	g.patch(exitJump, endPos, n.Range())

	breaks := g.breakTargets[len(g.breakTargets)-1]
	continues := g.continueTargets[len(g.continueTargets)-1]
	g.breakTargets = g.breakTargets[:len(g.breakTargets)-1]
	g.continueTargets = g.continueTargets[:len(g.continueTargets)-1]
	for _, pos := range breaks {
		g.patch(pos, endPos, n.Range())
	}
	for _, pos := range continues {
		// continue in a while loop re-checks the condition directly.
		g.patch(pos, condStart, n.Range())
	}
}

func (g *Generator) genFor(n *ast.For) {
	g.fn.BeginScope()
	if n.Init != nil {
		g.genStmt(n.Init)
	}

	condStart := g.prog.Len()
	exitJump := -1
	if n.Cond != nil {
		g.evalExpr(n.Cond)
		exitJump = g.emitJump(bpf.JmpJeq, bpf.R1, 0, false)
	}

	g.breakTargets = append(g.breakTargets, nil)
	g.continueTargets = append(g.continueTargets, nil)

	g.genStmt(n.Body)

	postStart := g.prog.Len()
	continues := g.continueTargets[len(g.continueTargets)-1]
	for _, pos := range continues {
		g.patch(pos, postStart, n.Range())
	}

	if n.Post != nil {
		g.evalExpr(n.Post)
	}

	backJump := g.emitJump(bpf.JmpJa, 0, 0, false)
	g.patch(backJump, condStart, n.Range())

	endPos := g.prog.Len()
	if exitJump >= 0 {
		g.patch(exitJump, endPos, n.Range())
	}

	breaks := g.breakTargets[len(g.breakTargets)-1]
	g.breakTargets = g.breakTargets[:len(g.breakTargets)-1]
	g.continueTargets = g.continueTargets[:len(g.continueTargets)-1]
	for _, pos := range breaks {
		g.patch(pos, endPos, n.Range())
	}

	g.fn.EndScope()
}
