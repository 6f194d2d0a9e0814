package parser

import (
	"testing"

	"holybpf/ast"
	"holybpf/diag"
	"holybpf/lexer"
)

func parseSource(t *testing.T, src string) (*ast.Program, []error) {
	t.Helper()
	toks, lexErr := lexer.New([]byte(src)).Scan()
	if lexErr != nil {
		t.Fatalf("lexer error: %v", lexErr)
	}
	prog, diags := New(toks, ast.NewArena()).Parse()
	var errs []error
	for _, d := range diags {
		errs = append(errs, d)
	}
	return prog, errs
}

func TestParseSimpleFunction(t *testing.T) {
	prog, errs := parseSource(t, "U0 main() { return; }")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(prog.Decls) != 1 {
		t.Fatalf("expected 1 declaration, got %d", len(prog.Decls))
	}
	fn, ok := prog.Decls[0].(*ast.FunctionDecl)
	if !ok {
		t.Fatalf("expected a FunctionDecl, got %T", prog.Decls[0])
	}
	if fn.Name != "main" || fn.Exported {
		t.Errorf("got name=%q exported=%v", fn.Name, fn.Exported)
	}
}

func TestParseExportedFunctionWithParams(t *testing.T) {
	prog, errs := parseSource(t, "export U64 add(U64 a, U64 b) { return a + b; }")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	fn := prog.Decls[0].(*ast.FunctionDecl)
	if !fn.Exported || len(fn.Params) != 2 {
		t.Fatalf("got exported=%v params=%v", fn.Exported, fn.Params)
	}
	ret := fn.Body.Stmts[0].(*ast.Return)
	bin, ok := ret.Value.(*ast.Binary)
	if !ok || bin.Op != "+" {
		t.Fatalf("expected a '+' Binary return value, got %#v", ret.Value)
	}
}

func TestDanglingElseBindsToNearestIf(t *testing.T) {
	prog, errs := parseSource(t, "U0 main() { if (a) if (b) x = 1; else x = 2; }")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	fn := prog.Decls[0].(*ast.FunctionDecl)
	outer := fn.Body.Stmts[0].(*ast.If)
	inner, ok := outer.Then.(*ast.If)
	if !ok {
		t.Fatalf("expected the outer if's then-branch to be another If, got %T", outer.Then)
	}
	if inner.Else == nil {
		t.Fatal("expected the dangling else to bind to the inner if")
	}
	if outer.Else != nil {
		t.Fatal("the outer if must not receive the else clause")
	}
}

func TestForLoopWithAllClausesOptional(t *testing.T) {
	prog, errs := parseSource(t, "U0 main() { for (;;) { break; } }")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	fn := prog.Decls[0].(*ast.FunctionDecl)
	f := fn.Body.Stmts[0].(*ast.For)
	if f.Init != nil || f.Cond != nil || f.Post != nil {
		t.Errorf("expected all for-clauses to be nil, got %+v", f)
	}
}

func TestOperatorPrecedence(t *testing.T) {
	prog, errs := parseSource(t, "U0 main() { x = 1 + 2 * 3; }")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	fn := prog.Decls[0].(*ast.FunctionDecl)
	assign := fn.Body.Stmts[0].(*ast.ExprStmt).Expr.(*ast.Assign)
	top := assign.Value.(*ast.Binary)
	if top.Op != "+" {
		t.Fatalf("expected '+' at the top, got %q", top.Op)
	}
	if _, ok := top.Rhs.(*ast.Binary); !ok {
		t.Fatalf("expected '2 * 3' to bind tighter than '+', got %#v", top.Rhs)
	}
}

func TestStructDeclaration(t *testing.T) {
	prog, errs := parseSource(t, "struct Point { I32 x; I32 y; }")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	sd := prog.Decls[0].(*ast.StructDecl)
	if sd.Name != "Point" || len(sd.Fields) != 2 {
		t.Fatalf("got %+v", sd)
	}
}

func TestMissingSemicolonReportsParseUnexpectedToken(t *testing.T) {
	_, errs := parseSource(t, "U0 main() { return 0 }")
	if len(errs) != 1 {
		t.Fatalf("expected exactly 1 error, got %d: %v", len(errs), errs)
	}
	if d, ok := errs[0].(*diag.Diagnostic); !ok || d.Kind != diag.KindParseUnexpectedToken {
		t.Errorf("expected a ParseUnexpectedToken diagnostic, got %v", errs[0])
	}
}

func TestErrorRecoveryContinuesToNextDeclaration(t *testing.T) {
	prog, errs := parseSource(t, "U0 broken( { } U0 main() { return; }")
	if len(errs) == 0 {
		t.Fatal("expected at least one error from the malformed first declaration")
	}
	found := false
	for _, d := range prog.Decls {
		if fn, ok := d.(*ast.FunctionDecl); ok && fn.Name == "main" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected recovery to still parse the well-formed 'main' declaration")
	}
}

func TestPointerAndArrayTypes(t *testing.T) {
	prog, errs := parseSource(t, "U0 main() { U8* p; U32[4] buf; }")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	fn := prog.Decls[0].(*ast.FunctionDecl)
	p := fn.Body.Stmts[0].(*ast.VarDecl)
	if p.Type.String() != "U8*" {
		t.Errorf("got type %q", p.Type.String())
	}
	buf := fn.Body.Stmts[1].(*ast.VarDecl)
	if buf.Type.String() != "U32[4]" {
		t.Errorf("got type %q", buf.Type.String())
	}
}
