// Package bpf encodes and decodes the 64-bit BPF instruction word of
// spec.md §6: {opcode:8, dst_reg:4, src_reg:4, offset:i16, imm:i32}, plus
// the opcode table codegen emits against and the Program/patch-list type
// that backs forward-jump resolution.
//
// There is no direct teacher ancestor for a packed bit-field instruction
// encoder (informatter-nilan's Instructions are a flat, growable []byte
// keyed by an OpCodeDefinition{Name, OperandWidths} table, see code.go),
// so the encode/decode shape below is grounded directly in spec.md §6's
// explicit layout; the opcode table, Get()-style lookup and
// MakeInstruction-style constructor function are kept in the teacher's
// idiom and generalized to this package's fixed-width instruction.
package bpf

import "encoding/binary"

// Register names R0-R10 per spec.md §4.7.
const (
	R0 = iota
	R1
	R2
	R3
	R4
	R5
	R6
	R7
	R8
	R9
	R10 // frame pointer, read-only
)

// Opcode classes, mirroring classic/eBPF's low 3 bits of the opcode byte.
const (
	ClassALU64 = 0x07
	ClassJmp   = 0x05
	ClassLd    = 0x00
	ClassLdx   = 0x01
	ClassSt    = 0x02
	ClassStx   = 0x03
)

// ALU/jump operation codes, placed in the high nibble of the opcode byte.
const (
	AluAdd = 0x00
	AluSub = 0x10
	AluMul = 0x20
	AluDiv = 0x30
	AluOr  = 0x40
	AluAnd = 0x50
	AluLsh = 0x60
	AluRsh = 0x70
	AluMod = 0x90
	AluXor = 0xa0
	AluMov = 0xb0

	JmpJa   = 0x00
	JmpJeq  = 0x10
	JmpJgt  = 0x20
	JmpJge  = 0x30
	JmpJset = 0x40
	JmpJne  = 0x50
	JmpJsgt = 0x60
	JmpJsge = 0x70
	JmpCall = 0x80
	JmpExit = 0x90
	JmpJlt  = 0xa0
	JmpJle  = 0xb0
	JmpJslt = 0xc0
	JmpJsle = 0xd0
)

// Source operand flag, bit 0x08 of the opcode: 0 selects an immediate
// operand, 1 selects the src register.
const SrcReg = 0x08

// Size bits for load/store opcodes, bits 0x18.
const (
	SizeW  = 0x00 // word, 4 bytes
	SizeH  = 0x08 // half word, 2 bytes
	SizeB  = 0x10 // byte
	SizeDW = 0x18 // double word, 8 bytes
)

// Opcode is the full 8-bit instruction opcode byte (class | size/src | op).
type Opcode byte

// Instruction is one 64-bit BPF instruction word, unpacked into its fields.
type Instruction struct {
	Op     Opcode
	Dst    uint8 // 4 bits, 0-10
	Src    uint8 // 4 bits, 0-10
	Offset int16
	Imm    int32
}

// Encode packs an Instruction into its 8-byte wire representation:
// opcode(1) dst_src(1) offset(2, little-endian) imm(4, little-endian).
func (ins Instruction) Encode() [8]byte {
	var out [8]byte
	out[0] = byte(ins.Op)
	out[1] = (ins.Src&0x0f)<<4 | (ins.Dst & 0x0f)
	binary.LittleEndian.PutUint16(out[2:4], uint16(ins.Offset))
	binary.LittleEndian.PutUint32(out[4:8], uint32(ins.Imm))
	return out
}

// Decode unpacks an 8-byte wire representation into an Instruction.
func Decode(b [8]byte) Instruction {
	return Instruction{
		Op:     Opcode(b[0]),
		Dst:    b[1] & 0x0f,
		Src:    (b[1] >> 4) & 0x0f,
		Offset: int16(binary.LittleEndian.Uint16(b[2:4])),
		Imm:    int32(binary.LittleEndian.Uint32(b[4:8])),
	}
}

// Alu builds a 64-bit ALU instruction: dst = dst <op> imm, or
// dst = dst <op> src when useSrc is true (the immediate is then ignored).
func Alu(op byte, dst, src uint8, imm int32, useSrc bool) Instruction {
	opcode := Opcode(ClassALU64 | op)
	if useSrc {
		opcode |= SrcReg
		return Instruction{Op: opcode, Dst: dst, Src: src}
	}
	return Instruction{Op: opcode, Dst: dst, Imm: imm}
}

// Jmp builds a conditional or unconditional jump instruction with a
// relative offset measured in instructions, matching dst (<op>) src or imm.
func Jmp(op byte, dst, src uint8, imm int32, offset int16, useSrc bool) Instruction {
	opcode := Opcode(ClassJmp | op)
	if useSrc {
		opcode |= SrcReg
		return Instruction{Op: opcode, Dst: dst, Src: src, Offset: offset}
	}
	return Instruction{Op: opcode, Dst: dst, Imm: imm, Offset: offset}
}

// Call builds a helper-call instruction; imm selects the helper id
// (PrintF=6, MemoryRead=1, MemoryWrite=2, per spec.md §4.7).
func Call(helperID int32) Instruction {
	return Instruction{Op: Opcode(ClassJmp | JmpCall), Imm: helperID}
}

// Exit terminates program execution, returning the value in R0.
func Exit() Instruction {
	return Instruction{Op: Opcode(ClassJmp | JmpExit)}
}

// Mov64 builds "dst = imm" (32-bit immediate, sign-extended to 64 bits by
// the VM) or "dst = src".
func Mov64(dst, src uint8, imm int32, useSrc bool) Instruction {
	return Alu(AluMov, dst, src, imm, useSrc)
}

// LoadImm64 returns the two-instruction sequence BPF uses to load a full
// 64-bit immediate into dst: a wide load spanning two 8-byte slots, the
// low 32 bits in the first instruction's Imm and the high 32 bits in the
// second's (spec.md §6 "multi-word immediate").
func LoadImm64(dst uint8, value uint64) [2]Instruction {
	lo := int32(uint32(value))
	hi := int32(uint32(value >> 32))
	return [2]Instruction{
		{Op: Opcode(ClassLd | SizeDW), Dst: dst, Imm: lo},
		{Op: Opcode(0), Dst: 0, Imm: hi}, // pseudo second half, own no opcode class
	}
}

// Mem builds a memory load/store instruction. The caller passes the class
// (ClassLdx, ClassStx, ...) and size bits; this constructor just fills the
// common shape used for every stack load and store codegen emits.
func Mem(class byte, size byte, dst, src uint8, offset int16, imm int32) Instruction {
	return Instruction{Op: Opcode(class | size), Dst: dst, Src: src, Offset: offset, Imm: imm}
}
