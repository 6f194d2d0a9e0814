// Package codegen lowers an AST (package ast) directly to BPF instructions
// (package bpf), in the shape of informatter-nilan's ASTCompiler: a single
// walk over statements and expressions (a type switch here, not visitor
// double dispatch) that panics with a typed error on
// anything it cannot compile, recovered once at the top of the public
// entry point. Generalized from Nilan's stack-machine bytecode (OP_CONSTANT,
// OP_ADD, OP_GET_LOCAL, ...) to BPF's fixed register machine: every
// expression leaves its scalar result in R1 by convention, R2 is the
// standing scratch register for the right-hand operand of a binary op or
// an index/member address computation, and R10 is the read-only frame
// pointer locals and globals are addressed relative to (spec.md §4.4/§4.7).
package codegen

import (
	"holybpf/ast"
	"holybpf/bpf"
	"holybpf/diag"
	"holybpf/symtab"
	"holybpf/types"
)

// Options configures a single Generate call, mirroring the relevant fields
// of the root CompileOptions (spec.md §6).
type Options struct {
	MaxInstructions int // default 100000
	StackBytes      int // default symtab.FrameBytes (512)
}

const defaultMaxInstructions = 100_000

// builtinHelpers maps a recognized call name to its VM helper id
// (spec.md §4.7): PrintF=6, MemoryRead=1, MemoryWrite=2.
var builtinHelpers = map[string]int32{
	"PrintF":      6,
	"MemoryRead":  1,
	"MemoryWrite": 2,
}

// Generator walks a Program and emits a bpf.Program.
type Generator struct {
	prog *bpf.Program
	mod  *symtab.Table // global functions/structs/vars, never reset
	fn   *symtab.Table // current function's frame, reset per function

	globalSeed []symtab.Symbol // ordered global list, re-seeded into every fn table

	maxInstructions int
	frameBytes      int

	breakTargets    [][]int // stack of one slice per enclosing loop
	continueTargets [][]int
}

// abort is the panic payload a failing Visit/helper method raises; Generate
// recovers it once at the top, mirroring ASTCompiler.CompileAST's
// recover()-at-the-boundary style.
type abort struct{ d *diag.Diagnostic }

func (g *Generator) fail(kind diag.Kind, r diag.Range, format string, args ...any) {
	panic(abort{diag.New(kind, r, format, args...)})
}

// Generate compiles an entire Program into a bpf.Program: one pass to
// collect globals/structs/function signatures, then one pass per function
// body.
func Generate(prog *ast.Program, opts Options) (out *bpf.Program, result *diag.Diagnostic) {
	maxInsns := opts.MaxInstructions
	if maxInsns <= 0 {
		maxInsns = defaultMaxInstructions
	}
	frameBytes := opts.StackBytes
	if frameBytes <= 0 {
		frameBytes = symtab.FrameBytes
	}

	g := &Generator{
		prog:            bpf.NewProgram(),
		mod:             symtab.NewTable(),
		maxInstructions: maxInsns,
		frameBytes:      frameBytes,
	}

	defer func() {
		if r := recover(); r != nil {
			if ab, ok := r.(abort); ok {
				result = ab.d
				return
			}
			panic(r)
		}
	}()

	g.collectTopLevel(prog)

	for _, d := range prog.Decls {
		if fn, ok := d.(*ast.FunctionDecl); ok {
			g.generateFunction(fn)
		}
	}

	return g.prog, nil
}

// collectTopLevel registers every struct, global and function signature up
// front, so a function may reference a struct or sibling function declared
// later in the source (spec.md §4.4 "declaration order is not evaluation
// order" for top-level items).
func (g *Generator) collectTopLevel(prog *ast.Program) {
	for _, d := range prog.Decls {
		switch n := d.(type) {
		case *ast.StructDecl:
			names := make([]string, len(n.Fields))
			fieldTypes := make([]types.Type, len(n.Fields))
			for i, f := range n.Fields {
				names[i] = f.Name
				fieldTypes[i] = f.Type
			}
			g.mod.DeclareStruct(n.Name, names, fieldTypes)
		case *ast.VarDecl:
			sym := g.mod.DeclareGlobal(n.Name, n.Type)
			g.globalSeed = append(g.globalSeed, sym)
		case *ast.FunctionDecl:
			g.mod.DeclareFunction(n.Name, n.Return)
		}
	}
}

// paramRegisters maps a parameter's position (0-4) to the argument register
// it arrives in, per spec.md §4.4/§4.7 (P1..P5 <- R1..R5); generateFunction
// fails with CodegenUnsupportedCall when a signature declares more params
// than this covers.
var paramRegisters = [5]uint8{bpf.R1, bpf.R2, bpf.R3, bpf.R4, bpf.R5}

func (g *Generator) generateFunction(fn *ast.FunctionDecl) {
	g.fn = symtab.NewTableWithFrame(g.frameBytes)
	if err := g.fn.SeedGlobals(g.globalSeed); err != nil {
		g.fail(diag.KindCodegenStackOverflow, fn.Range(), "%s", err.Error())
	}
	g.fn.BeginScope()

	g.prog.MarkEntry(fn.Name)

	// Prologue: spill each incoming argument register into its parameter's
	// stack slot (spec.md §4.4) before the body can read it.
	for i, p := range fn.Params {
		sym, err := g.fn.DeclareParam(p.Name, p.Type)
		if err != nil {
			g.fail(diag.KindCodegenStackOverflow, fn.Range(), "parameter %q: %s", p.Name, err.Error())
		}
		g.fn.Define()

		if i >= len(paramRegisters) {
			g.fail(diag.KindCodegenUnsupportedCall, fn.Range(), "function %q declares more than %d parameters", fn.Name, len(paramRegisters))
		}
		g.emit(bpf.Mem(bpf.ClassStx, sizeCodeFor(p.Type), bpf.R10, paramRegisters[i], g.frameAddr(sym.StackOffset), 0))
	}

	g.genStmt(fn.Body)

	// Every function falls through to an EXIT, whether or not the source
	// ended in an explicit return (spec.md §4.4).
	g.emit(bpf.Mov64(bpf.R0, 0, 0, false))
	g.emit(bpf.Exit())

	g.fn.EndScope()
}

// emit appends an instruction, enforcing the instruction-count cap.
func (g *Generator) emit(ins bpf.Instruction) int {
	pos := g.prog.Emit(ins)
	if g.prog.Len() > g.maxInstructions {
		g.fail(diag.KindCodegenTooManyInsns, diag.Range{}, "program exceeds the configured %d instruction cap", g.maxInstructions)
	}
	return pos
}

func (g *Generator) emitJump(op byte, dst, src uint8, useSrc bool) int {
	pos := g.prog.EmitPlaceholderJump(op, dst, src, useSrc)
	if g.prog.Len() > g.maxInstructions {
		g.fail(diag.KindCodegenTooManyInsns, diag.Range{}, "program exceeds the configured %d instruction cap", g.maxInstructions)
	}
	return pos
}

func (g *Generator) patch(jumpPos, targetPos int, r diag.Range) {
	if err := g.prog.PatchJump(jumpPos, targetPos); err != nil {
		g.fail(diag.KindCodegenJumpOutOfRange, r, "%s", err.Error())
	}
}

func sizeCodeFor(t types.Type) byte {
	switch t.Size() {
	case 1:
		return bpf.SizeB
	case 2:
		return bpf.SizeH
	case 4:
		return bpf.SizeW
	default:
		return bpf.SizeDW
	}
}

// pushTemp/popTemp wrap symtab's spill-slot allocator, converting overflow
// into a CodegenStackOverflow diagnostic.
func (g *Generator) pushTemp(r diag.Range) int {
	off, err := g.fn.PushTemp(types.U64Type)
	if err != nil {
		g.fail(diag.KindCodegenStackOverflow, r, "%s", err.Error())
	}
	return off
}

func (g *Generator) popTemp() { g.fn.PopTemp() }

func (g *Generator) frameAddr(offset int) int16 { return g.fn.FrameOffsetToR10(offset) }
