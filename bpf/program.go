package bpf

import "fmt"

// MaxJumpOffset is the largest relative jump distance (in instructions)
// that fits in an Instruction's signed 16-bit Offset field; codegen must
// reject anything wider with CodegenJumpOutOfRange (spec.md §6).
const MaxJumpOffset = 1<<15 - 1

// MinJumpOffset is the most negative representable relative jump.
const MinJumpOffset = -(1 << 15)

// Program is the growing instruction stream codegen emits into. It tracks
// named function entry points and supports placeholder-then-patch jump
// resolution, generalizing informatter-nilan's
// emitPlaceholderJump/patchJump pair (ast_compiler.go) from a byte-indexed,
// variable-width instruction stream to this package's fixed-width
// Instruction slice.
type Program struct {
	Instructions []Instruction
	Entries      map[string]int // function name -> instruction index

	// Strings holds format/string literals in declaration order; codegen
	// lowers every ast.StringLit to its index here (an integer the VM's
	// PrintF helper resolves back to text), since this VM has no
	// addressable read-only data segment to place string bytes in.
	Strings []string
}

// NewProgram creates an empty Program.
func NewProgram() *Program {
	return &Program{Entries: make(map[string]int)}
}

// InternString records s (if not already present) and returns its id.
func (p *Program) InternString(s string) int32 {
	for i, existing := range p.Strings {
		if existing == s {
			return int32(i)
		}
	}
	p.Strings = append(p.Strings, s)
	return int32(len(p.Strings) - 1)
}

// Emit appends an instruction and returns its index.
func (p *Program) Emit(ins Instruction) int {
	p.Instructions = append(p.Instructions, ins)
	return len(p.Instructions) - 1
}

// EmitPlaceholderJump appends a jump instruction with a zero offset and
// returns its index, to be fixed up later by PatchJump once the jump
// target is known.
func (p *Program) EmitPlaceholderJump(op byte, dst, src uint8, useSrc bool) int {
	return p.Emit(Jmp(op, dst, src, 0, 0, useSrc))
}

// PatchJump overwrites the Offset operand of the jump instruction at
// jumpPos so that it lands on targetPos. BPF jump offsets are relative to
// the instruction immediately following the jump, matching spec.md §6 and
// real BPF semantics.
//
// It reports an error (CodegenJumpOutOfRange, mapped by the caller) when
// the resulting displacement does not fit in a signed 16-bit field.
func (p *Program) PatchJump(jumpPos, targetPos int) error {
	delta := targetPos - (jumpPos + 1)
	if delta < MinJumpOffset || delta > MaxJumpOffset {
		return fmt.Errorf("jump displacement %d out of range [%d, %d]", delta, MinJumpOffset, MaxJumpOffset)
	}
	p.Instructions[jumpPos].Offset = int16(delta)
	return nil
}

// Len reports how many instructions have been emitted so far; used both as
// the next jump target and against a codegen-configured instruction cap.
func (p *Program) Len() int { return len(p.Instructions) }

// MarkEntry records the instruction index a named function begins at.
func (p *Program) MarkEntry(name string) {
	p.Entries[name] = p.Len()
}

// Encode flattens every instruction into its 8-byte wire form, in order.
func (p *Program) Encode() []byte {
	out := make([]byte, 0, len(p.Instructions)*8)
	for _, ins := range p.Instructions {
		enc := ins.Encode()
		out = append(out, enc[:]...)
	}
	return out
}
