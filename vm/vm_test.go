package vm

import (
	"strings"
	"testing"

	"holybpf/bpf"
)

func TestRunArithmeticReturnsComputedValue(t *testing.T) {
	p := bpf.NewProgram()
	p.MarkEntry("Main")
	p.Emit(bpf.Alu(bpf.AluMov, bpf.R1, 0, 2, false))
	p.Emit(bpf.Alu(bpf.AluMov, bpf.R2, 0, 3, false))
	p.Emit(bpf.Alu(bpf.AluMul, bpf.R2, 0, 4, false))
	p.Emit(bpf.Alu(bpf.AluAdd, bpf.R1, bpf.R2, 0, true))
	p.Emit(bpf.Alu(bpf.AluMov, bpf.R0, bpf.R1, 0, true))
	p.Emit(bpf.Exit())

	result := Run(p, "Main", Options{})
	if result.Trap != nil {
		t.Fatalf("unexpected trap: %s", result.Trap.Error())
	}
	if result.ExitCode != 14 {
		t.Errorf("exit code = %d, want 14", result.ExitCode)
	}
}

func TestRunConditionalJumpSkipsFalseBranch(t *testing.T) {
	p := bpf.NewProgram()
	p.MarkEntry("Main")
	p.Emit(bpf.Alu(bpf.AluMov, bpf.R1, 0, 1, false))
	// if R1 != 1, jump over the "then" assignment
	jmp := p.EmitPlaceholderJump(bpf.JmpJne, bpf.R1, 0, false)
	p.Instructions[jmp].Imm = 1
	p.Emit(bpf.Alu(bpf.AluMov, bpf.R0, 0, 99, false))
	if err := p.PatchJump(jmp, p.Len()); err != nil {
		t.Fatalf("patch failed: %v", err)
	}
	p.Emit(bpf.Exit())

	result := Run(p, "Main", Options{})
	if result.Trap != nil {
		t.Fatalf("unexpected trap: %s", result.Trap.Error())
	}
	if result.ExitCode != 99 {
		t.Errorf("exit code = %d, want 99", result.ExitCode)
	}
}

func TestRunDivideByZeroTraps(t *testing.T) {
	p := bpf.NewProgram()
	p.MarkEntry("Main")
	p.Emit(bpf.Alu(bpf.AluMov, bpf.R1, 0, 10, false))
	p.Emit(bpf.Alu(bpf.AluDiv, bpf.R1, 0, 0, false))
	p.Emit(bpf.Exit())

	result := Run(p, "Main", Options{})
	if result.Trap == nil {
		t.Fatal("expected a trap, got none")
	}
	if result.Trap.Kind != "VmDivideByZero" {
		t.Errorf("trap kind = %s, want VmDivideByZero", result.Trap.Kind)
	}
}

func TestRunStepLimitTraps(t *testing.T) {
	p := bpf.NewProgram()
	p.MarkEntry("Main")
	loopStart := p.Len()
	p.Emit(bpf.Jmp(bpf.JmpJa, 0, 0, 0, int16(loopStart-p.Len()-1), false))

	result := Run(p, "Main", Options{StepLimit: 100})
	if result.Trap == nil {
		t.Fatal("expected a step limit trap, got none")
	}
	if result.Trap.Kind != "VmStepLimit" {
		t.Errorf("trap kind = %s, want VmStepLimit", result.Trap.Kind)
	}
	if result.Steps != 100 {
		t.Errorf("steps = %d, want 100", result.Steps)
	}
}

func TestRunMemoryFaultOnOutOfRangeAddress(t *testing.T) {
	p := bpf.NewProgram()
	p.MarkEntry("Main")
	p.Emit(bpf.Alu(bpf.AluMov, bpf.R1, 0, 100000, false))
	p.Emit(bpf.Mem(bpf.ClassLdx, bpf.SizeDW, bpf.R2, bpf.R1, 0, 0))
	p.Emit(bpf.Exit())

	result := Run(p, "Main", Options{StackBytes: 64})
	if result.Trap == nil {
		t.Fatal("expected a memory fault, got none")
	}
	if result.Trap.Kind != "VmMemoryFault" {
		t.Errorf("trap kind = %s, want VmMemoryFault", result.Trap.Kind)
	}
}

func TestRunPrintFHelperProducesOutput(t *testing.T) {
	p := bpf.NewProgram()
	p.MarkEntry("Main")
	id := p.InternString("count=%d")
	p.Emit(bpf.Alu(bpf.AluMov, bpf.R1, 0, id, false))
	p.Emit(bpf.Alu(bpf.AluMov, bpf.R2, 0, 7, false))
	p.Emit(bpf.Call(HelperPrintF))
	p.Emit(bpf.Exit())

	result := Run(p, "Main", Options{})
	if result.Trap != nil {
		t.Fatalf("unexpected trap: %s", result.Trap.Error())
	}
	if !strings.Contains(result.Output, "count=7") {
		t.Errorf("output = %q, want it to contain count=7", result.Output)
	}
}

func TestRunMemoryWriteThenReadRoundTrips(t *testing.T) {
	p := bpf.NewProgram()
	p.MarkEntry("Main")
	p.Emit(bpf.Alu(bpf.AluMov, bpf.R1, bpf.R10, 0, true))
	p.Emit(bpf.Alu(bpf.AluSub, bpf.R1, 0, 8, false))
	p.Emit(bpf.Alu(bpf.AluMov, bpf.R2, 0, 123, false))
	p.Emit(bpf.Alu(bpf.AluMov, bpf.R3, 0, 8, false))
	p.Emit(bpf.Call(HelperMemoryWrite))

	p.Emit(bpf.Alu(bpf.AluMov, bpf.R1, bpf.R10, 0, true))
	p.Emit(bpf.Alu(bpf.AluSub, bpf.R1, 0, 8, false))
	p.Emit(bpf.Alu(bpf.AluMov, bpf.R2, 0, 8, false))
	p.Emit(bpf.Call(HelperMemoryRead))
	p.Emit(bpf.Exit())

	result := Run(p, "Main", Options{})
	if result.Trap != nil {
		t.Fatalf("unexpected trap: %s", result.Trap.Error())
	}
	if result.ExitCode != 123 {
		t.Errorf("exit code = %d, want 123", result.ExitCode)
	}
}

func TestRunUnknownEntryStartsAtInstructionZero(t *testing.T) {
	p := bpf.NewProgram()
	p.Emit(bpf.Alu(bpf.AluMov, bpf.R0, 0, 7, false))
	p.Emit(bpf.Exit())

	result := Run(p, "DoesNotExist", Options{})
	if result.Trap != nil {
		t.Fatalf("unexpected trap: %s", result.Trap.Error())
	}
	if result.ExitCode != 7 {
		t.Errorf("exit code = %d, want 7", result.ExitCode)
	}
}
