package idl

import (
	"testing"

	"holybpf/ast"
	"holybpf/lexer"
	"holybpf/parser"
)

func parseSource(t *testing.T, src string) *ast.Program {
	t.Helper()
	toks, lexErr := lexer.New([]byte(src)).Scan()
	if lexErr != nil {
		t.Fatalf("lexing failed: %s", lexErr.Error())
	}
	prog, parseErrs := parser.New(toks, ast.NewArena()).Parse()
	if len(parseErrs) != 0 {
		t.Fatalf("parsing failed: %v", parseErrs)
	}
	return prog
}

func TestBuildSkipsNonExportedFunctions(t *testing.T) {
	prog := parseSource(t, `
		U0 Helper() { return; }
		export U0 Main() { return; }
	`)
	doc, diagnostic := Build(prog)
	if diagnostic != nil {
		t.Fatalf("unexpected diagnostic: %s", diagnostic.Error())
	}
	if len(doc.Functions) != 1 || doc.Functions[0].Name != "Main" {
		t.Fatalf("expected exactly one exported function Main, got %+v", doc.Functions)
	}
}

func TestBuildRendersParameterAndReturnTags(t *testing.T) {
	prog := parseSource(t, `export I64 Add(I64 a, U8 b) { return a; }`)
	doc, diagnostic := Build(prog)
	if diagnostic != nil {
		t.Fatalf("unexpected diagnostic: %s", diagnostic.Error())
	}
	fn := doc.Functions[0]
	if fn.Return != "i64" {
		t.Errorf("return tag = %q, want i64", fn.Return)
	}
	if len(fn.Parameters) != 2 || fn.Parameters[0].Tag != "i64" || fn.Parameters[1].Tag != "u8" {
		t.Errorf("unexpected parameters: %+v", fn.Parameters)
	}
}

func TestBuildVoidReturnIsSupported(t *testing.T) {
	prog := parseSource(t, `export U0 Main() { return; }`)
	doc, diagnostic := Build(prog)
	if diagnostic != nil {
		t.Fatalf("unexpected diagnostic: %s", diagnostic.Error())
	}
	if doc.Functions[0].Return != "void" {
		t.Errorf("return tag = %q, want void", doc.Functions[0].Return)
	}
}
