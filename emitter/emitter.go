// Package emitter turns a finished bpf.Program into bytes for one of the
// three targets spec.md §6 names (raw Linux BPF, Solana-flavored BPF with a
// trailing symbol table, or this repository's own VM), plus a disassembler
// for all three. Grounded in informatter-nilan's ASTCompiler.DumpBytecode/
// DiassembleBytecode (ast_compiler.go): a file-writing dump of the raw
// encoding, and a second pass that walks the instruction stream producing
// one human-readable line per instruction.
package emitter

import (
	"encoding/binary"
	"fmt"
	"sort"
	"strings"

	"holybpf/bpf"
)

// Target selects which of the three wire formats Emit produces.
type Target uint16

const (
	TargetLinux Target = iota
	TargetSolana
	TargetVM
)

func (t Target) String() string {
	switch t {
	case TargetLinux:
		return "linux"
	case TargetSolana:
		return "solana"
	case TargetVM:
		return "vm"
	default:
		return "unknown"
	}
}

// Magic identifies the raw/solana header; always exactly 8 bytes.
const Magic = "PIBLE\x00\x00\x00"

// HeaderSize is the fixed size, in bytes, of the raw/solana header.
const HeaderSize = 64

// FormatVersion is bumped whenever the wire layout changes incompatibly.
const FormatVersion uint16 = 1

// Emit produces the wire bytes for prog under target. TargetVM produces a
// bare instruction vector with no header or symbol table, matching this
// repository's own VM loader; the other two targets share a 64-byte header,
// and TargetSolana additionally appends a symbol table.
func Emit(prog *bpf.Program, target Target) []byte {
	if target == TargetVM {
		return prog.Encode()
	}

	out := make([]byte, HeaderSize)
	copy(out[0:8], Magic)
	binary.LittleEndian.PutUint16(out[8:10], FormatVersion)
	binary.LittleEndian.PutUint16(out[10:12], uint16(target))
	// out[12:16] stays reserved/zero.
	binary.LittleEndian.PutUint64(out[16:24], uint64(len(prog.Instructions)))
	// out[24:64] stays reserved/zero.

	out = append(out, prog.Encode()...)

	if target == TargetSolana {
		out = append(out, encodeSymbolTable(prog)...)
	}
	return out
}

// encodeSymbolTable lays out {uint32 count; {uint32 name_length; name bytes;
// uint32 entry_pc}*}, in ascending name order for a deterministic encoding.
func encodeSymbolTable(prog *bpf.Program) []byte {
	names := make([]string, 0, len(prog.Entries))
	for name := range prog.Entries {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf []byte
	count := make([]byte, 4)
	binary.LittleEndian.PutUint32(count, uint32(len(names)))
	buf = append(buf, count...)

	for _, name := range names {
		nameLen := make([]byte, 4)
		binary.LittleEndian.PutUint32(nameLen, uint32(len(name)))
		buf = append(buf, nameLen...)
		buf = append(buf, name...)

		entryPC := make([]byte, 4)
		binary.LittleEndian.PutUint32(entryPC, uint32(prog.Entries[name]))
		buf = append(buf, entryPC...)
	}
	return buf
}

var aluMnemonics = map[byte]string{
	bpf.AluAdd: "ADD", bpf.AluSub: "SUB", bpf.AluMul: "MUL", bpf.AluDiv: "DIV",
	bpf.AluOr: "OR", bpf.AluAnd: "AND", bpf.AluLsh: "LSH", bpf.AluRsh: "RSH",
	bpf.AluMod: "MOD", bpf.AluXor: "XOR", bpf.AluMov: "MOV",
}

var jmpMnemonics = map[byte]string{
	bpf.JmpJa: "JA", bpf.JmpJeq: "JEQ", bpf.JmpJgt: "JGT", bpf.JmpJge: "JGE",
	bpf.JmpJset: "JSET", bpf.JmpJne: "JNE", bpf.JmpJsgt: "JSGT", bpf.JmpJsge: "JSGE",
	bpf.JmpCall: "CALL", bpf.JmpExit: "EXIT", bpf.JmpJlt: "JLT", bpf.JmpJle: "JLE",
	bpf.JmpJslt: "JSLT", bpf.JmpJsle: "JSLE",
}

var sizeMnemonics = map[byte]string{
	bpf.SizeW: "W", bpf.SizeH: "H", bpf.SizeB: "B", bpf.SizeDW: "DW",
}

// Disassemble renders one line per instruction, in the style of
// "0003: ALU64 ADD dst=r2 src=r1". Function entry points recorded in
// prog.Entries are rendered as labels before the instruction they mark.
func Disassemble(prog *bpf.Program) string {
	entryAt := make(map[int][]string)
	for name, pc := range prog.Entries {
		entryAt[pc] = append(entryAt[pc], name)
	}

	var b strings.Builder
	for ip, ins := range prog.Instructions {
		for _, name := range entryAt[ip] {
			fmt.Fprintf(&b, "%s:\n", name)
		}
		fmt.Fprintf(&b, "%04d: %s\n", ip, disassembleOne(ins))
	}
	return b.String()
}

func disassembleOne(ins bpf.Instruction) string {
	op := byte(ins.Op)
	class := op & 0x07
	useSrc := op&bpf.SrcReg != 0
	opBits := op &^ (bpf.SrcReg | 0x07)

	switch class {
	case bpf.ClassALU64:
		mnemonic := aluMnemonics[opBits]
		if mnemonic == "" {
			mnemonic = fmt.Sprintf("ALU(%#02x)", opBits)
		}
		if useSrc {
			return fmt.Sprintf("ALU64 %s dst=r%d src=r%d", mnemonic, ins.Dst, ins.Src)
		}
		return fmt.Sprintf("ALU64 %s dst=r%d imm=%d", mnemonic, ins.Dst, ins.Imm)

	case bpf.ClassJmp:
		mnemonic := jmpMnemonics[opBits]
		if mnemonic == "" {
			mnemonic = fmt.Sprintf("JMP(%#02x)", opBits)
		}
		switch opBits {
		case bpf.JmpExit:
			return "EXIT"
		case bpf.JmpCall:
			return fmt.Sprintf("CALL helper=%d", ins.Imm)
		case bpf.JmpJa:
			return fmt.Sprintf("JA off=%+d", ins.Offset)
		default:
			if useSrc {
				return fmt.Sprintf("JMP %s dst=r%d src=r%d off=%+d", mnemonic, ins.Dst, ins.Src, ins.Offset)
			}
			return fmt.Sprintf("JMP %s dst=r%d imm=%d off=%+d", mnemonic, ins.Dst, ins.Imm, ins.Offset)
		}

	case bpf.ClassLdx, bpf.ClassStx:
		size := sizeMnemonics[op&0x18]
		verb := "LDX"
		if class == bpf.ClassStx {
			verb = "STX"
		}
		return fmt.Sprintf("%s%s dst=r%d src=r%d off=%+d", verb, size, ins.Dst, ins.Src, ins.Offset)

	case bpf.ClassLd, bpf.ClassSt:
		size := sizeMnemonics[op&0x18]
		verb := "LD"
		if class == bpf.ClassSt {
			verb = "ST"
		}
		return fmt.Sprintf("%s%s dst=r%d imm=%d", verb, size, ins.Dst, ins.Imm)

	default:
		return fmt.Sprintf("??? op=%#02x dst=r%d src=r%d off=%d imm=%d", op, ins.Dst, ins.Src, ins.Offset, ins.Imm)
	}
}
