// Package pible is the module root: a single Compile entry point that
// wires the lexer, parser, code generator, IDL builder and emitter into
// one call, mirroring informatter-nilan's main.go/cmd_run.go pipeline
// (CreateLexer -> Scan -> parser.Make -> Parse -> interpreter.Interpret)
// but lowering to a bpf.Program and wire bytes instead of interpreting
// directly.
package pible

import (
	"holybpf/ast"
	"holybpf/bpf"
	"holybpf/codegen"
	"holybpf/diag"
	"holybpf/emitter"
	"holybpf/idl"
	"holybpf/lexer"
	"holybpf/parser"
)

// Target selects the output wire format; re-exported so callers never need
// to import package emitter just to pick one.
type Target = emitter.Target

const (
	TargetLinux  = emitter.TargetLinux
	TargetSolana = emitter.TargetSolana
	TargetVM     = emitter.TargetVM
)

// CompileOptions configures a single Compile call (spec.md §6, "CompileCtx"
// design note §9): explicit, no package-level flags or global state.
type CompileOptions struct {
	Target          Target
	GenerateIDL     bool
	MaxInstructions int // forwarded to codegen.Options, default 100000
	StackBytes      int // forwarded to codegen.Options, default 512
}

// CompileResult is everything a successful Compile call produces.
type CompileResult struct {
	Program *bpf.Program
	Bytes   []byte
	IDL     *idl.Document // nil unless GenerateIDL was set
	AST     *ast.Program
}

// Compile lexes, parses and lowers source, then emits it for options.Target.
// It returns on the first diagnostic raised by any phase: lexing, parsing,
// code generation, or (when requested) IDL construction.
func Compile(source []byte, options CompileOptions) (CompileResult, *diag.Diagnostic) {
	toks, lexErr := lexer.New(source).Scan()
	if lexErr != nil {
		return CompileResult{}, lexErr
	}

	arena := ast.NewArena()
	prog, parseErrs := parser.New(toks, arena).Parse()
	if len(parseErrs) > 0 {
		return CompileResult{}, parseErrs[0]
	}

	out, codegenErr := codegen.Generate(prog, codegen.Options{
		MaxInstructions: options.MaxInstructions,
		StackBytes:      options.StackBytes,
	})
	if codegenErr != nil {
		return CompileResult{}, codegenErr
	}

	result := CompileResult{Program: out, Bytes: emitter.Emit(out, options.Target), AST: prog}

	if options.GenerateIDL {
		doc, idlErr := idl.Build(prog)
		if idlErr != nil {
			return CompileResult{}, idlErr
		}
		result.IDL = &doc
	}

	return result, nil
}
