package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	pible "holybpf"
	"holybpf/diag"
	"holybpf/vm"
)

// runCmd implements the "run" subcommand: compile a source file for the
// in-process VM and execute its named entry point, mirroring the
// compile-then-interpret shape of the teacher's cmd_run.go, generalized
// from interpreter.Interpret to vm.Run.
type runCmd struct {
	entry      string
	stepLimit  int
	stackBytes int
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "Compile and execute a source file against the built-in VM" }
func (*runCmd) Usage() string {
	return `run [flags] <file>:
  Compile and execute a source file's exported entry point.
`
}

func (cmd *runCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&cmd.entry, "entry", "Main", "exported function to execute")
	f.IntVar(&cmd.stepLimit, "step-limit", 0, "VM step limit (0 uses the VM default)")
	f.IntVar(&cmd.stackBytes, "stack-bytes", 0, "VM stack size in bytes (0 uses the VM default)")
}

func (cmd *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 file not provided\n")
		return subcommands.ExitUsageError
	}

	source, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to read file: %v\n", err)
		return subcommands.ExitFailure
	}

	result, d := pible.Compile(source, pible.CompileOptions{Target: pible.TargetVM})
	if d != nil {
		reportDiagnostic(d, source)
		return subcommands.ExitFailure
	}

	runResult := vm.Run(result.Program, cmd.entry, vm.Options{
		StepLimit:  cmd.stepLimit,
		StackBytes: cmd.stackBytes,
	})
	if runResult.Output != "" {
		fmt.Print(runResult.Output)
	}
	if runResult.Trap != nil {
		reportRuntimeTrap(runResult.Trap)
		return subcommands.ExitFailure
	}

	fmt.Fprintf(os.Stderr, "exit code: %d (%d steps)\n", runResult.ExitCode, runResult.Steps)
	return subcommands.ExitSuccess
}

func reportRuntimeTrap(d *diag.Diagnostic) {
	fmt.Fprintf(os.Stderr, "💥 %s: %s\n", d.Kind, d.Message)
}
