package codegen

import (
	"holybpf/ast"
	"holybpf/bpf"
	"holybpf/diag"
	"holybpf/types"
)

// typeOf performs the ad hoc, on-the-fly type inference codegen needs to
// pick load/store widths and addressing modes, in lieu of a separate
// type-checking pass over the AST (spec.md §3 says nothing requires one,
// and the teacher's interpreter never type-checks either).
func (g *Generator) typeOf(e ast.Expr) types.Type {
	switch n := e.(type) {
	case *ast.Identifier:
		if sym, ok := g.fn.ResolveLocal(n.Name); ok {
			return sym.Type
		}
		if sym, ok := g.mod.ResolveFunction(n.Name); ok {
			return sym.Type
		}
		g.fail(diag.KindCodegenUndefinedSymbol, n.Range(), "undefined symbol %q", n.Name)
	case *ast.IntLit:
		width := 64
		if n.WidthHint != 0 {
			width = n.WidthHint
		}
		return types.Int(false, width)
	case *ast.BoolLit:
		return types.BoolType
	case *ast.CharLit:
		return types.U8Type
	case *ast.StringLit:
		return types.PointerTo(types.U8Type)
	case *ast.Unary:
		switch n.Op {
		case "&":
			t := g.typeOf(n.Operand)
			return types.PointerTo(t)
		case "*":
			t := g.typeOf(n.Operand)
			if t.To != nil {
				return *t.To
			}
			return types.U64Type
		default:
			return g.typeOf(n.Operand)
		}
	case *ast.Binary:
		if isComparisonOp(n.Op) || n.Op == "&&" || n.Op == "||" {
			return types.BoolType
		}
		return types.Widen(g.typeOf(n.Lhs), g.typeOf(n.Rhs))
	case *ast.Assign:
		return g.typeOf(n.Target)
	case *ast.Index:
		bt := g.typeOf(n.Array)
		if bt.To != nil {
			return *bt.To
		}
		return types.U64Type
	case *ast.Member:
		bt := g.typeOf(n.Object)
		name := bt.Name
		if n.Arrow && bt.To != nil {
			name = bt.To.Name
		}
		if ft, _, ok := g.mod.ResolveStructField(name, n.Field); ok {
			return ft
		}
		return types.U64Type
	case *ast.Call:
		if sym, ok := g.mod.ResolveFunction(n.Callee); ok {
			return sym.Type
		}
		return types.U64Type
	}
	return types.U64Type
}

var comparisonOps = map[string]byte{
	"==": bpf.JmpJeq, "!=": bpf.JmpJne,
	"<": bpf.JmpJlt, "<=": bpf.JmpJle,
	">": bpf.JmpJgt, ">=": bpf.JmpJge,
}

func isComparisonOp(op string) bool { _, ok := comparisonOps[op]; return ok }

// arithmeticOps are always evaluated as unsigned 64-bit register values:
// this generator does not carry a signed/unsigned tag through every
// register the way a full type-checker would, so signed comparisons and
// arithmetic on negative I8/I16/I32/I64 values use the same unsigned BPF
// opcodes as their unsigned counterparts (documented as an open-question
// decision, not a spec requirement).
var arithmeticOps = map[string]byte{
	"+": bpf.AluAdd, "-": bpf.AluSub, "*": bpf.AluMul, "/": bpf.AluDiv,
	"%": bpf.AluMod, "&": bpf.AluAnd, "|": bpf.AluOr, "^": bpf.AluXor,
	"<<": bpf.AluLsh, ">>": bpf.AluRsh,
}

var compoundAluOps = map[string]byte{
	"+=": bpf.AluAdd, "-=": bpf.AluSub, "*=": bpf.AluMul, "/=": bpf.AluDiv,
}

// spill stores reg into a freshly pushed temp slot and returns its offset.
func (g *Generator) spill(r diag.Range, reg uint8) int {
	off := g.pushTemp(r)
	g.emit(bpf.Mem(bpf.ClassStx, bpf.SizeDW, bpf.R10, reg, g.frameAddr(off), 0))
	return off
}

// reload loads the most recently spilled temp slot into reg and releases it.
func (g *Generator) reload(reg uint8, off int) {
	g.emit(bpf.Mem(bpf.ClassLdx, bpf.SizeDW, reg, bpf.R10, g.frameAddr(off), 0))
	g.popTemp()
}

// normalizeBool collapses any nonzero value in reg down to exactly 1,
// leaving zero as zero.
func (g *Generator) normalizeBool(reg uint8, r diag.Range) {
	j := g.emitJump(bpf.JmpJeq, reg, 0, false)
	g.emit(bpf.Mov64(reg, 0, 1, false))
	g.patch(j, g.prog.Len(), r)
}

// addressOf computes the storage location of an lvalue expression, returning
// either (R10, constant-frame-offset) when the address is known entirely at
// compile time, or (R2, constant offset) when the base address had to be
// computed into R2 at runtime (pointer dereference, subscript, or
// arrow/member access chained off either); that offset is 0 except for a
// struct field reached through such a runtime address. Every Mem access in
// this package is built from one of these two shapes.
func (g *Generator) addressOf(e ast.Expr) (baseReg uint8, offset int16, elemType types.Type) {
	switch n := e.(type) {
	case *ast.Identifier:
		sym, ok := g.fn.ResolveLocal(n.Name)
		if !ok {
			g.fail(diag.KindCodegenUndefinedSymbol, n.Range(), "undefined symbol %q", n.Name)
		}
		return bpf.R10, g.frameAddr(sym.StackOffset), sym.Type

	case *ast.Unary:
		if n.Op != "*" {
			g.fail(diag.KindCodegenTypeMismatch, n.Range(), "operator %q does not produce an lvalue", n.Op)
		}
		g.evalExpr(n.Operand)
		g.emit(bpf.Mov64(bpf.R2, bpf.R1, 0, true))
		pt := g.typeOf(n.Operand)
		if pt.To == nil {
			g.fail(diag.KindCodegenTypeMismatch, n.Range(), "cannot dereference a non-pointer value")
		}
		return bpf.R2, 0, *pt.To

	case *ast.Index:
		baseType := g.typeOf(n.Array)
		elem := types.U64Type
		if baseType.To != nil {
			elem = *baseType.To
		}
		if baseType.Kind == types.Array {
			bReg, bOff, _ := g.addressOf(n.Array)
			g.emit(bpf.Mov64(bpf.R2, bReg, 0, true))
			if bOff != 0 {
				g.emit(bpf.Alu(bpf.AluAdd, bpf.R2, 0, int32(bOff), false))
			}
		} else {
			g.evalExpr(n.Array)
			g.emit(bpf.Mov64(bpf.R2, bpf.R1, 0, true))
		}
		g.evalExpr(n.Subscript)
		if sz := elem.Size(); sz > 1 {
			g.emit(bpf.Alu(bpf.AluMul, bpf.R1, 0, int32(sz), false))
		}
		g.emit(bpf.Alu(bpf.AluAdd, bpf.R2, bpf.R1, 0, true))
		return bpf.R2, 0, elem

	case *ast.Member:
		if n.Arrow {
			g.evalExpr(n.Object)
			g.emit(bpf.Mov64(bpf.R2, bpf.R1, 0, true))
			pt := g.typeOf(n.Object)
			structName := ""
			if pt.To != nil {
				structName = pt.To.Name
			}
			fieldType, fieldOff, ok := g.mod.ResolveStructField(structName, n.Field)
			if !ok {
				g.fail(diag.KindCodegenUndefinedSymbol, n.Range(), "unknown field %q on %q", n.Field, structName)
			}
			return bpf.R2, int16(fieldOff), fieldType
		}
		bReg, bOff, baseType := g.addressOf(n.Object)
		fieldType, fieldOff, ok := g.mod.ResolveStructField(baseType.Name, n.Field)
		if !ok {
			g.fail(diag.KindCodegenUndefinedSymbol, n.Range(), "unknown field %q on %q", n.Field, baseType.Name)
		}
		return bReg, bOff + int16(fieldOff), fieldType

	default:
		g.fail(diag.KindCodegenTypeMismatch, e.Range(), "expression is not assignable")
	}
	return 0, 0, types.Type{}
}

// evalExpr lowers e, leaving its scalar result in R1 by convention.
func (g *Generator) evalExpr(e ast.Expr) {
	switch n := e.(type) {
	case *ast.IntLit:
		if n.Value <= uint64(1<<31-1) {
			g.emit(bpf.Mov64(bpf.R1, 0, int32(n.Value), false))
		} else {
			words := bpf.LoadImm64(bpf.R1, n.Value)
			g.emit(words[0])
			g.emit(words[1])
		}

	case *ast.BoolLit:
		v := int32(0)
		if n.Value {
			v = 1
		}
		g.emit(bpf.Mov64(bpf.R1, 0, v, false))

	case *ast.CharLit:
		g.emit(bpf.Mov64(bpf.R1, 0, int32(n.Value), false))

	case *ast.StringLit:
		id := g.prog.InternString(string(n.Bytes))
		g.emit(bpf.Mov64(bpf.R1, 0, id, false))

	case *ast.Identifier:
		sym, ok := g.fn.ResolveLocal(n.Name)
		if !ok {
			g.fail(diag.KindCodegenUndefinedSymbol, n.Range(), "undefined symbol %q", n.Name)
		}
		if sym.Type.Kind == types.Array {
			// Bare array identifiers decay to the address of their first
			// element (spec.md §3 "arrays decay to pointers").
			g.emit(bpf.Mov64(bpf.R1, bpf.R10, 0, true))
			g.emit(bpf.Alu(bpf.AluAdd, bpf.R1, 0, int32(g.frameAddr(sym.StackOffset)), false))
			return
		}
		g.emit(bpf.Mem(bpf.ClassLdx, sizeCodeFor(sym.Type), bpf.R1, bpf.R10, g.frameAddr(sym.StackOffset), 0))

	case *ast.Unary:
		g.evalUnary(n)

	case *ast.Binary:
		g.evalBinary(n)

	case *ast.Assign:
		g.evalAssign(n)

	case *ast.Index, *ast.Member:
		baseReg, offset, elemType := g.addressOf(n)
		g.emit(bpf.Mem(bpf.ClassLdx, sizeCodeFor(elemType), bpf.R1, baseReg, offset, 0))

	case *ast.Call:
		g.evalCall(n)

	default:
		g.fail(diag.KindCodegenTypeMismatch, e.Range(), "unsupported expression")
	}
}

func (g *Generator) evalUnary(n *ast.Unary) {
	switch n.Op {
	case "&":
		baseReg, offset, _ := g.addressOf(n.Operand)
		g.emit(bpf.Mov64(bpf.R1, baseReg, 0, true))
		if offset != 0 {
			g.emit(bpf.Alu(bpf.AluAdd, bpf.R1, 0, int32(offset), false))
		}
		return

	case "*":
		baseReg, offset, elemType := g.addressOf(n)
		g.emit(bpf.Mem(bpf.ClassLdx, sizeCodeFor(elemType), bpf.R1, baseReg, offset, 0))
		return

	case "-":
		g.evalExpr(n.Operand)
		g.emit(bpf.Mov64(bpf.R2, 0, 0, false))
		g.emit(bpf.Alu(bpf.AluSub, bpf.R2, bpf.R1, 0, true))
		g.emit(bpf.Mov64(bpf.R1, bpf.R2, 0, true))
		return

	case "+":
		g.evalExpr(n.Operand)
		return

	case "!":
		g.evalExpr(n.Operand)
		g.normalizeBool(bpf.R1, n.Range())
		g.emit(bpf.Alu(bpf.AluXor, bpf.R1, 0, 1, false))
		return

	case "~":
		g.evalExpr(n.Operand)
		g.emit(bpf.Alu(bpf.AluXor, bpf.R1, 0, -1, false))
		return

	case "++", "--":
		g.evalIncDec(n)
		return
	}
	g.fail(diag.KindCodegenTypeMismatch, n.Range(), "unsupported unary operator %q", n.Op)
}

func (g *Generator) evalIncDec(n *ast.Unary) {
	baseReg, offset, elemType := g.addressOf(n.Operand)
	size := sizeCodeFor(elemType)
	g.emit(bpf.Mem(bpf.ClassLdx, size, bpf.R1, baseReg, offset, 0))
	if n.Postfix {
		g.emit(bpf.Mov64(bpf.R2, bpf.R1, 0, true))
	}
	delta := int32(1)
	if n.Op == "--" {
		delta = -1
	}
	g.emit(bpf.Alu(bpf.AluAdd, bpf.R1, 0, delta, false))
	g.emit(bpf.Mem(bpf.ClassStx, size, baseReg, bpf.R1, offset, 0))
	if n.Postfix {
		g.emit(bpf.Mov64(bpf.R1, bpf.R2, 0, true))
	}
}

func (g *Generator) evalBinary(n *ast.Binary) {
	if n.Op == "&&" || n.Op == "||" {
		g.evalExpr(n.Lhs)
		g.normalizeBool(bpf.R1, n.Range())
		var short int
		if n.Op == "&&" {
			short = g.emitJump(bpf.JmpJeq, bpf.R1, 0, false)
		} else {
			short = g.emitJump(bpf.JmpJne, bpf.R1, 0, false)
		}
		g.evalExpr(n.Rhs)
		g.normalizeBool(bpf.R1, n.Range())
		g.patch(short, g.prog.Len(), n.Range())
		return
	}

	g.evalExpr(n.Lhs)
	lhsOff := g.spill(n.Range(), bpf.R1)
	g.evalExpr(n.Rhs)
	g.reload(bpf.R2, lhsOff) // R2 = lhs, R1 = rhs

	if cmpOp, ok := comparisonOps[n.Op]; ok {
		trueJump := g.emitJump(cmpOp, bpf.R2, bpf.R1, true)
		g.emit(bpf.Mov64(bpf.R1, 0, 0, false))
		doneJump := g.emitJump(bpf.JmpJa, 0, 0, false)
		g.patch(trueJump, g.prog.Len(), n.Range())
		g.emit(bpf.Mov64(bpf.R1, 0, 1, false))
		g.patch(doneJump, g.prog.Len(), n.Range())
		return
	}

	aluOp, ok := arithmeticOps[n.Op]
	if !ok {
		g.fail(diag.KindCodegenTypeMismatch, n.Range(), "unsupported binary operator %q", n.Op)
	}
	g.emit(bpf.Alu(aluOp, bpf.R2, bpf.R1, 0, true))
	g.emit(bpf.Mov64(bpf.R1, bpf.R2, 0, true))
}

// evalAssign lowers both plain ("=") and compound ("+=" etc.) assignment,
// leaving the assigned value in R1 (the value of a C-style assignment
// expression is the value assigned).
func (g *Generator) evalAssign(n *ast.Assign) {
	baseReg, offset, elemType := g.addressOf(n.Target)
	size := sizeCodeFor(elemType)
	dynamic := baseReg != bpf.R10

	if n.Op == "=" {
		var addrTmp int
		if dynamic {
			addrTmp = g.spill(n.Range(), baseReg)
		}
		g.evalExpr(n.Value)
		if dynamic {
			g.reload(bpf.R2, addrTmp)
			baseReg = bpf.R2
		}
		g.emit(bpf.Mem(bpf.ClassStx, size, baseReg, bpf.R1, offset, 0))
		return
	}

	aluOp, ok := compoundAluOps[n.Op]
	if !ok {
		g.fail(diag.KindCodegenTypeMismatch, n.Range(), "unsupported assignment operator %q", n.Op)
	}

	var addrTmp int
	if dynamic {
		addrTmp = g.spill(n.Range(), baseReg)
	}
	g.emit(bpf.Mem(bpf.ClassLdx, size, bpf.R1, baseReg, offset, 0))
	oldTmp := g.spill(n.Range(), bpf.R1)
	g.evalExpr(n.Value)
	g.reload(bpf.R2, oldTmp)
	g.emit(bpf.Alu(aluOp, bpf.R2, bpf.R1, 0, true))
	g.emit(bpf.Mov64(bpf.R1, bpf.R2, 0, true))
	if dynamic {
		g.reload(bpf.R2, addrTmp)
		baseReg = bpf.R2
	}
	g.emit(bpf.Mem(bpf.ClassStx, size, baseReg, bpf.R1, offset, 0))
}

// evalCall lowers a call to one of the fixed builtin helpers (spec.md §4.7);
// calling a user-defined function is not supported, matching classic BPF's
// helper-only call model.
func (g *Generator) evalCall(n *ast.Call) {
	helperID, ok := builtinHelpers[n.Callee]
	if !ok {
		g.fail(diag.KindCodegenUnsupportedCall, n.Range(), "unknown function %q", n.Callee)
	}
	if len(n.Args) > 5 {
		g.fail(diag.KindCodegenUnsupportedCall, n.Range(), "%q takes at most 5 arguments", n.Callee)
	}

	argOffsets := make([]int, len(n.Args))
	for i, a := range n.Args {
		g.evalExpr(a)
		argOffsets[i] = g.spill(n.Range(), bpf.R1)
	}
	for i := len(n.Args) - 1; i >= 0; i-- {
		g.reload(uint8(bpf.R1+i), argOffsets[i])
	}

	g.emit(bpf.Call(helperID))
	g.emit(bpf.Mov64(bpf.R1, bpf.R0, 0, true))
}
