package emitter

import (
	"encoding/binary"
	"strings"
	"testing"

	"holybpf/bpf"
)

func sampleProgram() *bpf.Program {
	p := bpf.NewProgram()
	p.Emit(bpf.Alu(bpf.AluMov, bpf.R1, 0, 42, false))
	p.MarkEntry("Main")
	p.Emit(bpf.Exit())
	return p
}

func TestEmitVMIsBareInstructions(t *testing.T) {
	p := sampleProgram()
	out := Emit(p, TargetVM)
	if len(out) != len(p.Instructions)*8 {
		t.Fatalf("got %d bytes, want %d", len(out), len(p.Instructions)*8)
	}
}

func TestEmitLinuxHasHeaderAndMagic(t *testing.T) {
	p := sampleProgram()
	out := Emit(p, TargetLinux)
	if len(out) != HeaderSize+len(p.Instructions)*8 {
		t.Fatalf("got %d bytes, want %d", len(out), HeaderSize+len(p.Instructions)*8)
	}
	if string(out[0:8]) != Magic {
		t.Errorf("magic = %q, want %q", out[0:8], Magic)
	}
	gotTarget := binary.LittleEndian.Uint16(out[10:12])
	if Target(gotTarget) != TargetLinux {
		t.Errorf("target tag = %d, want %d", gotTarget, TargetLinux)
	}
	gotCount := binary.LittleEndian.Uint64(out[16:24])
	if gotCount != uint64(len(p.Instructions)) {
		t.Errorf("instruction count = %d, want %d", gotCount, len(p.Instructions))
	}
}

func TestEmitSolanaAppendsSymbolTable(t *testing.T) {
	p := sampleProgram()
	out := Emit(p, TargetSolana)
	body := out[HeaderSize+len(p.Instructions)*8:]
	count := binary.LittleEndian.Uint32(body[0:4])
	if count != 1 {
		t.Fatalf("symbol count = %d, want 1", count)
	}
	nameLen := binary.LittleEndian.Uint32(body[4:8])
	name := string(body[8 : 8+nameLen])
	if name != "Main" {
		t.Errorf("symbol name = %q, want Main", name)
	}
	entryPC := binary.LittleEndian.Uint32(body[8+nameLen : 12+nameLen])
	if entryPC != 1 {
		t.Errorf("entry pc = %d, want 1", entryPC)
	}
}

func TestDisassembleRendersEntryLabelAndExit(t *testing.T) {
	p := sampleProgram()
	out := Disassemble(p)
	if !strings.Contains(out, "Main:") {
		t.Errorf("expected a Main: label, got:\n%s", out)
	}
	if !strings.Contains(out, "EXIT") {
		t.Errorf("expected an EXIT line, got:\n%s", out)
	}
	if !strings.Contains(out, "MOV") {
		t.Errorf("expected a MOV line, got:\n%s", out)
	}
}
