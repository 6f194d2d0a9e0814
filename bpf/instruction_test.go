package bpf

import "testing"

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []Instruction{
		Alu(AluAdd, R1, R2, 0, true),
		Alu(AluMov, R0, 0, 42, false),
		Jmp(JmpJeq, R1, R2, 0, -5, true),
		Call(6),
		Exit(),
		Mem(ClassLdx, SizeDW, R1, R10, -8, 0),
	}
	for _, want := range tests {
		got := Decode(want.Encode())
		if got != want {
			t.Errorf("round trip mismatch: got %+v, want %+v", got, want)
		}
	}
}

func TestEncodeByteLayout(t *testing.T) {
	ins := Instruction{Op: 0x07, Dst: 1, Src: 2, Offset: -1, Imm: 10}
	enc := ins.Encode()
	if enc[0] != 0x07 {
		t.Errorf("opcode byte = %#x, want 0x07", enc[0])
	}
	if enc[1] != 0x21 { // src=2 in high nibble, dst=1 in low nibble
		t.Errorf("dst/src byte = %#x, want 0x21", enc[1])
	}
}

func TestDstSrcRegistersFitInNibbles(t *testing.T) {
	ins := Instruction{Op: 0, Dst: R10, Src: R9}
	dec := Decode(ins.Encode())
	if dec.Dst != R10 || dec.Src != R9 {
		t.Errorf("got dst=%d src=%d", dec.Dst, dec.Src)
	}
}
