// Package parser implements a recursive-descent, precedence-climbing
// parser for the HolyC-dialect grammar of spec.md §4.3, in the shape of
// informatter-nilan's parser.Parser: a flat token slice plus a position
// cursor, peek/previous/advance/check/isMatch/consume helpers, and one
// method per grammar production returning (node, error). Generalized from
// Nilan's single expression-statement-and-print grammar to the full
// function/struct/control-flow grammar spec.md §4 describes, and from
// Nilan's "error, keep parsing the next top-level statement" recovery to
// skip-to-next-";"-or-"}" recovery (spec.md §4.3's "minimal recovery").
package parser

import (
	"fmt"

	"holybpf/ast"
	"holybpf/diag"
	"holybpf/token"
	"holybpf/types"
)

// Parser holds the token stream and the arena new AST nodes are allocated
// from.
type Parser struct {
	toks  []token.Token
	pos   int
	arena *ast.Arena
}

// New creates a Parser over a token stream produced by lexer.Scan.
func New(toks []token.Token, arena *ast.Arena) *Parser {
	return &Parser{toks: toks, arena: arena}
}

// Parse parses the full token stream into a Program, collecting every
// diagnostic encountered rather than stopping at the first one. Parsing
// resumes after a diagnostic by skipping to the next ";" or "}", so later,
// independent declarations still get a chance to parse cleanly.
func (p *Parser) Parse() (*ast.Program, []*diag.Diagnostic) {
	var decls []ast.Stmt
	var diags []*diag.Diagnostic
	start := 0

	for !p.atEnd() {
		decl, err := p.topLevelDecl()
		if err != nil {
			diags = append(diags, err)
			p.recover()
			continue
		}
		decls = append(decls, decl)
	}

	end := 0
	if len(p.toks) > 0 {
		last := p.toks[len(p.toks)-1]
		end = last.Offset + last.Length
	}
	prog := ast.AllocStmt(p.arena, &ast.Program{Decls: decls, Src: diag.Range{Offset: start, Length: end - start}})
	return prog, diags
}

// recover discards tokens up to and including the next ";" or "}", or EOF,
// whichever comes first.
func (p *Parser) recover() {
	for !p.atEnd() {
		if p.previousSafe().Kind == token.SEMI {
			return
		}
		switch p.peek().Kind {
		case token.RBRACE:
			p.advance()
			return
		case token.EOF:
			return
		}
		p.advance()
	}
}

func (p *Parser) previousSafe() token.Token {
	if p.pos == 0 {
		return p.toks[0]
	}
	return p.toks[p.pos-1]
}

func (p *Parser) peek() token.Token     { return p.toks[p.pos] }
func (p *Parser) previous() token.Token { return p.toks[p.pos-1] }
func (p *Parser) atEnd() bool           { return p.peek().Kind == token.EOF }

func (p *Parser) advance() token.Token {
	if !p.atEnd() {
		p.pos++
	}
	return p.previous()
}

func (p *Parser) check(k token.Kind) bool {
	if p.atEnd() {
		return k == token.EOF
	}
	return p.peek().Kind == k
}

func (p *Parser) isMatch(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) consume(k token.Kind, format string, args ...any) (token.Token, *diag.Diagnostic) {
	if p.check(k) {
		return p.advance(), nil
	}
	tok := p.peek()
	return token.Token{}, p.errAt(tok, format, args...)
}

func (p *Parser) errAt(tok token.Token, format string, args ...any) *diag.Diagnostic {
	msg := fmt.Sprintf(format, args...)
	return diag.New(diag.KindParseUnexpectedToken, diag.Range{Offset: tok.Offset, Length: tok.Length}, "%s (got %s %q)", msg, tok.Kind, tok.Lexeme)
}

var typeKeywords = map[token.Kind]types.Type{
	token.U0:   types.VoidType,
	token.U8:   types.U8Type,
	token.U16:  types.U16Type,
	token.U32:  types.U32Type,
	token.U64:  types.U64Type,
	token.I8:   types.I8Type,
	token.I16:  types.I16Type,
	token.I32:  types.I32Type,
	token.I64:  types.I64Type,
	token.F64K: types.F64Type,
	token.BOOL: types.BoolType,
}

func (p *Parser) atTypeStart() bool {
	if _, ok := typeKeywords[p.peek().Kind]; ok {
		return true
	}
	return p.check(token.STRUCT)
}

// parseType parses a base type keyword or "struct Name", followed by any
// number of pointer "*" suffixes, followed by any number of array "[N]"
// suffixes (spec.md §3's type grammar).
func (p *Parser) parseType() (types.Type, *diag.Diagnostic) {
	var base types.Type
	if p.check(token.STRUCT) {
		p.advance()
		name, err := p.consume(token.IDENTIFIER, "expected a struct name")
		if err != nil {
			return types.Type{}, err
		}
		base = types.Struct(name.Lexeme)
	} else if t, ok := typeKeywords[p.peek().Kind]; ok {
		p.advance()
		base = t
	} else {
		return types.Type{}, p.errAt(p.peek(), "expected a type")
	}

	for p.isMatch(token.STAR) {
		base = types.PointerTo(base)
	}
	for p.isMatch(token.LBRACKET) {
		lenTok, err := p.consume(token.INT, "expected an array length")
		if err != nil {
			return types.Type{}, err
		}
		if _, err := p.consume(token.RBRACKET, "expected ']' after array length"); err != nil {
			return types.Type{}, err
		}
		base = types.ArrayOf(base, int(lenTok.Literal.(uint64)))
	}
	return base, nil
}

// topLevelDecl parses one top-level item: an optional "export" prefix, a
// struct declaration, or a type-led function/variable declaration.
func (p *Parser) topLevelDecl() (ast.Stmt, *diag.Diagnostic) {
	start := p.peek()
	exported := p.isMatch(token.EXPORT)

	if p.check(token.STRUCT) && p.toks[p.pos+1].Kind == token.IDENTIFIER && p.toks[p.pos+2].Kind == token.LBRACE {
		return p.structDecl(start)
	}

	if !p.atTypeStart() {
		return nil, p.errAt(p.peek(), "expected a top-level declaration")
	}
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	name, err := p.consume(token.IDENTIFIER, "expected a name")
	if err != nil {
		return nil, err
	}
	if p.check(token.LPAREN) {
		return p.functionDecl(start, name.Lexeme, typ, exported)
	}
	return p.varDeclTail(start, name.Lexeme, typ)
}

func (p *Parser) structDecl(start token.Token) (ast.Stmt, *diag.Diagnostic) {
	p.advance() // "struct"
	name, err := p.consume(token.IDENTIFIER, "expected a struct name")
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.LBRACE, "expected '{' to begin a struct body"); err != nil {
		return nil, err
	}
	var fields []ast.Field
	for !p.check(token.RBRACE) && !p.atEnd() {
		ftyp, err := p.parseType()
		if err != nil {
			return nil, err
		}
		fname, err := p.consume(token.IDENTIFIER, "expected a field name")
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.SEMI, "expected ';' after a struct field"); err != nil {
			return nil, err
		}
		fields = append(fields, ast.Field{Name: fname.Lexeme, Type: ftyp})
	}
	end, err := p.consume(token.RBRACE, "expected '}' to close a struct body")
	if err != nil {
		return nil, err
	}
	return ast.AllocStmt(p.arena, &ast.StructDecl{Name: name.Lexeme, Fields: fields, Src: spanTo(start, end)}), nil
}

func (p *Parser) functionDecl(start token.Token, name string, ret types.Type, exported bool) (ast.Stmt, *diag.Diagnostic) {
	if _, err := p.consume(token.LPAREN, "expected '(' after a function name"); err != nil {
		return nil, err
	}
	var params []ast.Param
	if !p.check(token.RPAREN) {
		for {
			ptyp, err := p.parseType()
			if err != nil {
				return nil, err
			}
			pname, err := p.consume(token.IDENTIFIER, "expected a parameter name")
			if err != nil {
				return nil, err
			}
			params = append(params, ast.Param{Name: pname.Lexeme, Type: ptyp})
			if !p.isMatch(token.COMMA) {
				break
			}
		}
	}
	if _, err := p.consume(token.RPAREN, "expected ')' after parameters"); err != nil {
		return nil, err
	}
	if _, err := p.consume(token.LBRACE, "expected '{' to begin a function body"); err != nil {
		return nil, err
	}
	body, end, err := p.blockBody()
	if err != nil {
		return nil, err
	}
	return ast.AllocStmt(p.arena, &ast.FunctionDecl{
		Name: name, Params: params, Return: ret, Body: body, Exported: exported, Src: spanTo(start, end),
	}), nil
}

func (p *Parser) varDeclTail(start token.Token, name string, typ types.Type) (ast.Stmt, *diag.Diagnostic) {
	var init ast.Expr
	if p.isMatch(token.ASSIGN) {
		e, err := p.expression()
		if err != nil {
			return nil, err
		}
		init = e
	}
	end, err := p.consume(token.SEMI, "expected ';' after a variable declaration")
	if err != nil {
		return nil, err
	}
	return ast.AllocStmt(p.arena, &ast.VarDecl{Name: name, Type: typ, Init: init, Src: spanTo(start, end)}), nil
}

func spanTo(start, end token.Token) diag.Range {
	return diag.Range{Offset: start.Offset, Length: end.Offset + end.Length - start.Offset}
}

// --- statements ---

func (p *Parser) statement() (ast.Stmt, *diag.Diagnostic) {
	start := p.peek()
	switch {
	case p.check(token.LBRACE):
		p.advance()
		return p.block(start)
	case p.isMatch(token.IF):
		return p.ifStmt(start)
	case p.isMatch(token.WHILE):
		return p.whileStmt(start)
	case p.isMatch(token.FOR):
		return p.forStmt(start)
	case p.isMatch(token.RETURN):
		return p.returnStmt(start)
	case p.isMatch(token.BREAK):
		end, err := p.consume(token.SEMI, "expected ';' after 'break'")
		if err != nil {
			return nil, err
		}
		return ast.AllocStmt(p.arena, &ast.Break{Src: spanTo(start, end)}), nil
	case p.isMatch(token.CONTINUE):
		end, err := p.consume(token.SEMI, "expected ';' after 'continue'")
		if err != nil {
			return nil, err
		}
		return ast.AllocStmt(p.arena, &ast.Continue{Src: spanTo(start, end)}), nil
	case p.atTypeStart():
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		name, err := p.consume(token.IDENTIFIER, "expected a variable name")
		if err != nil {
			return nil, err
		}
		return p.varDeclTail(start, name.Lexeme, typ)
	default:
		e, err := p.expression()
		if err != nil {
			return nil, err
		}
		end, err := p.consume(token.SEMI, "expected ';' after an expression statement")
		if err != nil {
			return nil, err
		}
		return ast.AllocStmt(p.arena, &ast.ExprStmt{Expr: e, Src: spanTo(start, end)}), nil
	}
}

func (p *Parser) block(start token.Token) (ast.Stmt, *diag.Diagnostic) {
	b, _, err := p.blockBody()
	_ = start
	return b, err
}

// blockBody consumes statements up to (and including) the closing "}";
// the opening "{" must already have been consumed by the caller.
func (p *Parser) blockBody() (*ast.Block, token.Token, *diag.Diagnostic) {
	start := p.previous()
	var stmts []ast.Stmt
	for !p.check(token.RBRACE) && !p.atEnd() {
		s, err := p.statement()
		if err != nil {
			return nil, token.Token{}, err
		}
		stmts = append(stmts, s)
	}
	end, err := p.consume(token.RBRACE, "expected '}' to close a block")
	if err != nil {
		return nil, token.Token{}, err
	}
	return ast.AllocStmt(p.arena, &ast.Block{Stmts: stmts, Src: spanTo(start, end)}), end, nil
}

func (p *Parser) ifStmt(start token.Token) (ast.Stmt, *diag.Diagnostic) {
	if _, err := p.consume(token.LPAREN, "expected '(' after 'if'"); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.RPAREN, "expected ')' after an if condition"); err != nil {
		return nil, err
	}
	then, err := p.statement()
	if err != nil {
		return nil, err
	}
	var elseStmt ast.Stmt
	end := p.previous()
	if p.isMatch(token.ELSE) {
		elseStmt, err = p.statement()
		if err != nil {
			return nil, err
		}
		end = p.previous()
	}
	return ast.AllocStmt(p.arena, &ast.If{Cond: cond, Then: then, Else: elseStmt, Src: spanTo(start, end)}), nil
}

func (p *Parser) whileStmt(start token.Token) (ast.Stmt, *diag.Diagnostic) {
	if _, err := p.consume(token.LPAREN, "expected '(' after 'while'"); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.RPAREN, "expected ')' after a while condition"); err != nil {
		return nil, err
	}
	body, err := p.statement()
	if err != nil {
		return nil, err
	}
	return ast.AllocStmt(p.arena, &ast.While{Cond: cond, Body: body, Src: spanTo(start, p.previous())}), nil
}

func (p *Parser) forStmt(start token.Token) (ast.Stmt, *diag.Diagnostic) {
	if _, err := p.consume(token.LPAREN, "expected '(' after 'for'"); err != nil {
		return nil, err
	}

	var init ast.Stmt
	if !p.check(token.SEMI) {
		initStart := p.peek()
		if p.atTypeStart() {
			typ, err := p.parseType()
			if err != nil {
				return nil, err
			}
			name, err := p.consume(token.IDENTIFIER, "expected a variable name")
			if err != nil {
				return nil, err
			}
			init, err = p.varDeclTail(initStart, name.Lexeme, typ)
			if err != nil {
				return nil, err
			}
		} else {
			e, err := p.expression()
			if err != nil {
				return nil, err
			}
			semi, err := p.consume(token.SEMI, "expected ';' after a for-loop initializer")
			if err != nil {
				return nil, err
			}
			init = ast.AllocStmt(p.arena, &ast.ExprStmt{Expr: e, Src: spanTo(initStart, semi)})
		}
	} else {
		p.advance() // bare ";"
	}

	var cond ast.Expr
	if !p.check(token.SEMI) {
		c, err := p.expression()
		if err != nil {
			return nil, err
		}
		cond = c
	}
	if _, err := p.consume(token.SEMI, "expected ';' after a for-loop condition"); err != nil {
		return nil, err
	}

	var post ast.Expr
	if !p.check(token.RPAREN) {
		e, err := p.expression()
		if err != nil {
			return nil, err
		}
		post = e
	}
	if _, err := p.consume(token.RPAREN, "expected ')' after for-loop clauses"); err != nil {
		return nil, err
	}

	body, err := p.statement()
	if err != nil {
		return nil, err
	}
	return ast.AllocStmt(p.arena, &ast.For{Init: init, Cond: cond, Post: post, Body: body, Src: spanTo(start, p.previous())}), nil
}

func (p *Parser) returnStmt(start token.Token) (ast.Stmt, *diag.Diagnostic) {
	var value ast.Expr
	if !p.check(token.SEMI) {
		e, err := p.expression()
		if err != nil {
			return nil, err
		}
		value = e
	}
	end, err := p.consume(token.SEMI, "expected ';' after a return statement")
	if err != nil {
		return nil, err
	}
	return ast.AllocStmt(p.arena, &ast.Return{Value: value, Src: spanTo(start, end)}), nil
}

// --- expressions: precedence climbing per spec.md §4.3 ---
//
// assignment > logicalOr > logicalAnd > bitwiseOr > bitwiseXor > bitwiseAnd
// > equality > relational > shift > additive > multiplicative > unary
// > postfix > primary

func (p *Parser) expression() (ast.Expr, *diag.Diagnostic) { return p.assignment() }

var assignOps = map[token.Kind]string{
	token.ASSIGN: "=", token.PLUS_EQ: "+=", token.MINUS_EQ: "-=",
	token.STAR_EQ: "*=", token.SLASH_EQ: "/=",
}

func (p *Parser) assignment() (ast.Expr, *diag.Diagnostic) {
	target, err := p.logicalOr()
	if err != nil {
		return nil, err
	}
	if op, ok := assignOps[p.peek().Kind]; ok {
		opTok := p.advance()
		value, err := p.assignment()
		if err != nil {
			return nil, err
		}
		switch target.(type) {
		case *ast.Identifier, *ast.Index, *ast.Member:
		default:
			return nil, p.errAt(opTok, "invalid assignment target")
		}
		return ast.AllocExpr(p.arena, &ast.Assign{Target: target, Op: op, Value: value, Src: spanExpr(target, value)}), nil
	}
	return target, nil
}

func spanExpr(a, b ast.Expr) diag.Range {
	ar, br := a.Range(), b.Range()
	end := br.Offset + br.Length
	return diag.Range{Offset: ar.Offset, Length: end - ar.Offset}
}

// binaryLevel parses one precedence level: next() parses the level below,
// ops maps a matching token kind to its operator spelling.
func (p *Parser) binaryLevel(ops map[token.Kind]string, next func() (ast.Expr, *diag.Diagnostic)) (ast.Expr, *diag.Diagnostic) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := ops[p.peek().Kind]
		if !ok {
			return left, nil
		}
		p.advance()
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = ast.AllocExpr(p.arena, &ast.Binary{Op: op, Lhs: left, Rhs: right, Src: spanExpr(left, right)})
	}
}

func (p *Parser) logicalOr() (ast.Expr, *diag.Diagnostic) {
	return p.binaryLevel(map[token.Kind]string{token.OR_OR: "||"}, p.logicalAnd)
}
func (p *Parser) logicalAnd() (ast.Expr, *diag.Diagnostic) {
	return p.binaryLevel(map[token.Kind]string{token.AND_AND: "&&"}, p.bitwiseOr)
}
func (p *Parser) bitwiseOr() (ast.Expr, *diag.Diagnostic) {
	return p.binaryLevel(map[token.Kind]string{token.PIPE: "|"}, p.bitwiseXor)
}
func (p *Parser) bitwiseXor() (ast.Expr, *diag.Diagnostic) {
	return p.binaryLevel(map[token.Kind]string{token.CARET: "^"}, p.bitwiseAnd)
}
func (p *Parser) bitwiseAnd() (ast.Expr, *diag.Diagnostic) {
	return p.binaryLevel(map[token.Kind]string{token.AMP: "&"}, p.equality)
}
func (p *Parser) equality() (ast.Expr, *diag.Diagnostic) {
	return p.binaryLevel(map[token.Kind]string{token.EQ_EQ: "==", token.NOT_EQ: "!="}, p.relational)
}
func (p *Parser) relational() (ast.Expr, *diag.Diagnostic) {
	return p.binaryLevel(map[token.Kind]string{
		token.LT: "<", token.LT_EQ: "<=", token.GT: ">", token.GT_EQ: ">=",
	}, p.shift)
}
func (p *Parser) shift() (ast.Expr, *diag.Diagnostic) {
	return p.binaryLevel(map[token.Kind]string{token.SHL: "<<", token.SHR: ">>"}, p.additive)
}
func (p *Parser) additive() (ast.Expr, *diag.Diagnostic) {
	return p.binaryLevel(map[token.Kind]string{token.PLUS: "+", token.MINUS: "-"}, p.multiplicative)
}
func (p *Parser) multiplicative() (ast.Expr, *diag.Diagnostic) {
	return p.binaryLevel(map[token.Kind]string{
		token.STAR: "*", token.SLASH: "/", token.PERCENT: "%",
	}, p.unary)
}

var prefixOps = map[token.Kind]string{
	token.BANG: "!", token.TILDE: "~", token.MINUS: "-", token.PLUS: "+",
	token.PLUS_PLUS: "++", token.MINUS_MINUS: "--", token.STAR: "*", token.AMP: "&",
}

func (p *Parser) unary() (ast.Expr, *diag.Diagnostic) {
	if op, ok := prefixOps[p.peek().Kind]; ok {
		start := p.advance()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return ast.AllocExpr(p.arena, &ast.Unary{Op: op, Operand: operand, Src: spanTokExpr(start, operand)}), nil
	}
	return p.postfix()
}

func spanTokExpr(t token.Token, e ast.Expr) diag.Range {
	r := e.Range()
	end := r.Offset + r.Length
	return diag.Range{Offset: t.Offset, Length: end - t.Offset}
}

func (p *Parser) postfix() (ast.Expr, *diag.Diagnostic) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.check(token.LPAREN):
			expr, err = p.finishCall(expr)
		case p.isMatch(token.LBRACKET):
			var idx ast.Expr
			idx, err = p.expression()
			if err == nil {
				var end token.Token
				end, err = p.consume(token.RBRACKET, "expected ']' after an array subscript")
				if err == nil {
					expr = ast.AllocExpr(p.arena, &ast.Index{Array: expr, Subscript: idx, Src: spanExprTok(expr, end)})
				}
			}
		case p.isMatch(token.DOT):
			var name token.Token
			name, err = p.consume(token.IDENTIFIER, "expected a field name after '.'")
			if err == nil {
				expr = ast.AllocExpr(p.arena, &ast.Member{Object: expr, Field: name.Lexeme, Src: spanExprTok(expr, name)})
			}
		case p.isMatch(token.ARROW):
			var name token.Token
			name, err = p.consume(token.IDENTIFIER, "expected a field name after '->'")
			if err == nil {
				expr = ast.AllocExpr(p.arena, &ast.Member{Object: expr, Field: name.Lexeme, Arrow: true, Src: spanExprTok(expr, name)})
			}
		case p.check(token.PLUS_PLUS) || p.check(token.MINUS_MINUS):
			opTok := p.advance()
			expr = ast.AllocExpr(p.arena, &ast.Unary{Op: string(opTok.Kind), Operand: expr, Postfix: true, Src: spanExprTok(expr, opTok)})
		default:
			return expr, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

func spanExprTok(e ast.Expr, t token.Token) diag.Range {
	r := e.Range()
	end := t.Offset + t.Length
	return diag.Range{Offset: r.Offset, Length: end - r.Offset}
}

func (p *Parser) finishCall(callee ast.Expr) (ast.Expr, *diag.Diagnostic) {
	ident, ok := callee.(*ast.Identifier)
	if !ok {
		return nil, p.errAt(p.peek(), "only a plain name may be called")
	}
	p.advance() // "("
	var args []ast.Expr
	if !p.check(token.RPAREN) {
		for {
			a, err := p.expression()
			if err != nil {
				return nil, err
			}
			args = append(args, a)
			if !p.isMatch(token.COMMA) {
				break
			}
		}
	}
	end, err := p.consume(token.RPAREN, "expected ')' after call arguments")
	if err != nil {
		return nil, err
	}
	return ast.AllocExpr(p.arena, &ast.Call{Callee: ident.Name, Args: args, Src: spanExprTok(callee, end)}), nil
}

func (p *Parser) primary() (ast.Expr, *diag.Diagnostic) {
	tok := p.peek()
	switch tok.Kind {
	case token.INT:
		p.advance()
		return ast.AllocExpr(p.arena, &ast.IntLit{Value: tok.Literal.(uint64), Src: rangeOf(tok)}), nil
	case token.STRING:
		p.advance()
		return ast.AllocExpr(p.arena, &ast.StringLit{Bytes: []byte(tok.Literal.(string)), Src: rangeOf(tok)}), nil
	case token.CHAR:
		p.advance()
		return ast.AllocExpr(p.arena, &ast.CharLit{Value: byte(tok.Literal.(uint64)), Src: rangeOf(tok)}), nil
	case token.TRUE:
		p.advance()
		return ast.AllocExpr(p.arena, &ast.BoolLit{Value: true, Src: rangeOf(tok)}), nil
	case token.FALSE:
		p.advance()
		return ast.AllocExpr(p.arena, &ast.BoolLit{Value: false, Src: rangeOf(tok)}), nil
	case token.NULLK:
		p.advance()
		return ast.AllocExpr(p.arena, &ast.IntLit{Value: 0, Src: rangeOf(tok)}), nil
	case token.IDENTIFIER, token.PRINTF:
		p.advance()
		return ast.AllocExpr(p.arena, &ast.Identifier{Name: tok.Lexeme, Src: rangeOf(tok)}), nil
	case token.LPAREN:
		p.advance()
		e, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.RPAREN, "expected ')' to close a parenthesized expression"); err != nil {
			return nil, err
		}
		return e, nil
	default:
		return nil, p.errAt(tok, "expected an expression")
	}
}

func rangeOf(t token.Token) diag.Range { return diag.Range{Offset: t.Offset, Length: t.Length} }
