package symtab

import (
	"testing"

	"holybpf/types"
)

func TestDeclareAndResolveLocal(t *testing.T) {
	tab := NewTable()
	tab.BeginScope()
	if _, err := tab.DeclareLocal("a", types.U64Type); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sym, ok := tab.ResolveLocal("a")
	if !ok || sym.Kind != Local || sym.StackOffset != 0 {
		t.Fatalf("got %+v, ok=%v", sym, ok)
	}
	if _, err := tab.DeclareLocal("b", types.U8Type); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	symB, _ := tab.ResolveLocal("b")
	if symB.StackOffset != 8 {
		t.Errorf("expected second local at offset 8 (8-byte aligned), got %d", symB.StackOffset)
	}
}

func TestRedeclarationInSameScopeFails(t *testing.T) {
	tab := NewTable()
	tab.BeginScope()
	if _, err := tab.DeclareLocal("a", types.U64Type); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := tab.DeclareLocal("a", types.U64Type); err == nil {
		t.Fatal("expected a redeclaration error")
	}
}

func TestSameNameAllowedInNestedScope(t *testing.T) {
	tab := NewTable()
	tab.BeginScope()
	tab.DeclareLocal("a", types.U64Type)
	tab.BeginScope()
	if _, err := tab.DeclareLocal("a", types.U64Type); err != nil {
		t.Fatalf("shadowing in a nested scope should be allowed: %v", err)
	}
	if n := tab.EndScope(); n != 1 {
		t.Errorf("expected 1 local dropped leaving inner scope, got %d", n)
	}
	sym, ok := tab.ResolveLocal("a")
	if !ok || sym.StackOffset != 0 {
		t.Errorf("expected outer 'a' visible again at offset 0, got %+v ok=%v", sym, ok)
	}
}

func TestFrameOverflow(t *testing.T) {
	tab := NewTable()
	tab.BeginScope()
	big := types.ArrayOf(types.U64Type, 100) // 800 bytes, over the 512 byte frame cap
	if _, err := tab.DeclareLocal("buf", big); err == nil {
		t.Fatal("expected a frame-overflow error")
	}
}

func TestGlobalsAndFunctions(t *testing.T) {
	tab := NewTable()
	tab.DeclareGlobal("counter", types.I32Type)
	if _, ok := tab.ResolveGlobal("counter"); !ok {
		t.Fatal("expected to resolve the declared global")
	}
	if _, ok := tab.ResolveGlobal("missing"); ok {
		t.Fatal("did not expect to resolve an undeclared global")
	}
	tab.DeclareFunction("main", types.VoidType)
	if _, ok := tab.ResolveFunction("main"); !ok {
		t.Fatal("expected to resolve the declared function")
	}
}

func TestStructFieldLayout(t *testing.T) {
	tab := NewTable()
	tab.DeclareStruct("Point", []string{"x", "y"}, []types.Type{types.I32Type, types.I32Type})
	typ, offset, ok := tab.ResolveStructField("Point", "y")
	if !ok || typ != types.I32Type || offset != 4 {
		t.Fatalf("got type=%v offset=%d ok=%v", typ, offset, ok)
	}
	if _, _, ok := tab.ResolveStructField("Point", "z"); ok {
		t.Fatal("did not expect to resolve an unknown field")
	}
}
