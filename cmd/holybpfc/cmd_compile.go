package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	pible "holybpf"
	"holybpf/ast"
	"holybpf/diag"
	"holybpf/emitter"
	"holybpf/idl"
)

// compileCmd implements the "compile" subcommand: source file in, wire
// bytes (and optionally a disassembly, AST dump, or IDL) out, mirroring
// the flag set emitBytecodeCmd registers in the teacher's cmd_emit_bytecode.go.
type compileCmd struct {
	target          string
	output          string
	generateIDL     bool
	disassemble     bool
	dumpAST         bool
	maxInstructions int
	stackBytes      int
}

func (*compileCmd) Name() string     { return "compile" }
func (*compileCmd) Synopsis() string { return "Compile a HolyC-dialect source file to BPF bytecode" }
func (*compileCmd) Usage() string {
	return `compile [flags] <file>:
  Compile a source file and write the resulting bytecode to --output.
`
}

func (cmd *compileCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&cmd.target, "target", "linux", "output target: linux, solana, or vm")
	f.StringVar(&cmd.output, "output", "", "output file path (defaults to <input>.bpf)")
	f.BoolVar(&cmd.generateIDL, "generate-idl", false, "also emit a <input>.idl.json interface description")
	f.BoolVar(&cmd.disassemble, "disassemble", false, "print a disassembly to stdout instead of writing bytes")
	f.BoolVar(&cmd.dumpAST, "dump-ast", false, "print the parsed AST as JSON to stdout")
	f.IntVar(&cmd.maxInstructions, "max-instructions", 0, "instruction cap (0 uses the compiler default)")
	f.IntVar(&cmd.stackBytes, "stack-bytes", 0, "stack frame size in bytes (0 uses the compiler default)")
}

func (cmd *compileCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 file not provided\n")
		return subcommands.ExitUsageError
	}
	path := args[0]

	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to read file: %v\n", err)
		return subcommands.ExitFailure
	}

	target, ok := parseTarget(cmd.target)
	if !ok {
		fmt.Fprintf(os.Stderr, "💥 unrecognized target %q (want linux, solana, or vm)\n", cmd.target)
		return subcommands.ExitUsageError
	}

	result, d := pible.Compile(source, pible.CompileOptions{
		Target:          target,
		GenerateIDL:     cmd.generateIDL,
		MaxInstructions: cmd.maxInstructions,
		StackBytes:      cmd.stackBytes,
	})
	if d != nil {
		reportDiagnostic(d, source)
		return subcommands.ExitFailure
	}

	if cmd.dumpAST {
		out, err := ast.PrintJSON(result.AST)
		if err != nil {
			fmt.Fprintf(os.Stderr, "💥 AST dump error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Println(out)
	}

	if cmd.disassemble {
		fmt.Print(emitter.Disassemble(result.Program))
		return subcommands.ExitSuccess
	}

	outputPath := cmd.output
	if outputPath == "" {
		outputPath = strings.TrimSuffix(path, ".hc") + ".bpf"
	}
	if err := os.WriteFile(outputPath, result.Bytes, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to write output: %v\n", err)
		return subcommands.ExitFailure
	}

	if cmd.generateIDL && result.IDL != nil {
		idlPath := strings.TrimSuffix(outputPath, ".bpf") + ".idl.json"
		if err := writeIDL(idlPath, result.IDL); err != nil {
			fmt.Fprintf(os.Stderr, "💥 failed to write IDL: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	return subcommands.ExitSuccess
}

func parseTarget(name string) (pible.Target, bool) {
	switch name {
	case "linux":
		return pible.TargetLinux, true
	case "solana":
		return pible.TargetSolana, true
	case "vm":
		return pible.TargetVM, true
	default:
		return 0, false
	}
}

func reportDiagnostic(d *diag.Diagnostic, source []byte) {
	idx := diag.NewLineIndex(source)
	fmt.Fprintln(os.Stderr, diag.Format(d, idx))
}

func writeIDL(path string, doc *idl.Document) error {
	bytes, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, bytes, 0o644)
}
