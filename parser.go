// parser.go — recursive-descent parser for StarLang.
//
// Consumes the indentation-aware token stream from lexer.go and produces the
// immutable syntax tree in ast.go. Fails on the first unexpected token with a
// location-annotated *ParseError; there is no error recovery.
//
// Precedence, lowest to highest:
//
//	if … then … else …   (conditional expression)
//	or
//	and
//	== !=
//	< <= > >=
//	+ -
//	* / %
//	not, unary -
//	postfix: .name  [expr]  (args)
//	primary: literals, identifier, $path, fn(...), ( … ), [ … ], { … }
//
// Context-sensitive constructs resolved by lookahead:
//   - `ID ID :` at statement start is an instance declaration.
//   - `( … )` is a vector literal iff it contains a top-level comma.
package starlang

import "fmt"

// ParseError is a fatal parse failure at file:line:col.
type ParseError struct {
	File string
	Line int
	Col  int
	Msg  string

	// Incomplete marks failures at end of input, where more source could
	// still complete the construct. The REPL uses it to prompt for
	// continuation lines.
	Incomplete bool
}

// IsIncomplete reports whether err is a parse error that more input might
// resolve.
func IsIncomplete(err error) bool {
	pe, ok := err.(*ParseError)
	return ok && pe.Incomplete
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Col, e.Msg)
}

// Parse tokenizes and parses a complete source file.
func Parse(src, file string) (*Program, error) {
	toks, err := NewLexer(src, file).Scan()
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, file: file}
	return p.program()
}

type parser struct {
	toks []Token
	i    int
	file string
}

// ----- token plumbing -----

func (p *parser) peek() Token {
	if p.i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.i]
}

func (p *parser) peekN(n int) Token {
	idx := p.i + n
	if idx >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[idx]
}

func (p *parser) prev() Token { return p.toks[p.i-1] }

func (p *parser) atEnd() bool { return p.peek().Type == EOF }

func (p *parser) check(tt TokenType) bool { return p.peek().Type == tt }

func (p *parser) match(tt ...TokenType) bool {
	for _, t := range tt {
		if p.peek().Type == t {
			p.i++
			return true
		}
	}
	return false
}

func (p *parser) need(tt TokenType, msg string) (Token, error) {
	if p.match(tt) {
		return p.prev(), nil
	}
	return Token{}, p.errAt(p.peek(), msg)
}

func (p *parser) errAt(t Token, msg string) error {
	what := t.Lexeme
	if t.Type == EOF {
		what = "end of input"
	} else if t.Type == NEWLINE {
		what = "end of line"
	} else if t.Type == INDENT {
		what = "indent"
	} else if t.Type == DEDENT {
		what = "dedent"
	}
	return &ParseError{File: p.file, Line: t.Line, Col: t.Col,
		Msg:        fmt.Sprintf("%s, got %q", msg, what),
		Incomplete: p.atTrailer()}
}

// atTrailer reports whether only synthesized end-of-input tokens remain
// (NEWLINE/DEDENT/EOF). A failure there may just mean truncated input.
func (p *parser) atTrailer() bool {
	for i := p.i; i < len(p.toks); i++ {
		switch p.toks[i].Type {
		case NEWLINE, DEDENT, EOF:
		default:
			return false
		}
	}
	return true
}

func (p *parser) pos() Pos { return Pos{Line: p.peek().Line, Col: p.peek().Col} }

func (p *parser) skipNewlines() {
	for p.check(NEWLINE) {
		p.i++
	}
}

// matchClause consumes tt, also across a single NEWLINE, so that `elif`/
// `else` clauses are found both after inline blocks and after dedents.
func (p *parser) matchClause(tt TokenType) bool {
	if p.match(tt) {
		return true
	}
	if p.check(NEWLINE) && p.peekN(1).Type == tt {
		p.i += 2
		return true
	}
	return false
}

// ----- program & statements -----

func (p *parser) program() (*Program, error) {
	prog := &Program{File: p.file}
	p.skipNewlines()
	for p.check(IMPORT) {
		st, err := p.importStmt()
		if err != nil {
			return nil, err
		}
		prog.Imports = append(prog.Imports, st)
		p.skipNewlines()
	}
	for !p.atEnd() {
		st, err := p.statement()
		if err != nil {
			return nil, err
		}
		prog.Body = append(prog.Body, st)
		p.skipNewlines()
	}
	return prog, nil
}

func (p *parser) importStmt() (*ImportStmt, error) {
	pos := p.pos()
	p.match(IMPORT)
	t := p.peek()
	switch t.Type {
	case ID, STRING:
		p.i++
		path := t.Lexeme
		if s, ok := t.Literal.(string); ok {
			path = s
		}
		return &ImportStmt{Pos_: pos, Path: path}, nil
	}
	return nil, p.errAt(t, "expected module name after 'import'")
}

func (p *parser) statement() (Stmt, error) {
	switch p.peek().Type {
	case LET:
		return p.letStmt()
	case SET:
		return p.setStmt()
	case FN:
		return p.fnStmt()
	case IF:
		return p.ifStmt()
	case FOR:
		return p.forStmt()
	case WHILE:
		return p.whileStmt()
	case MATCH:
		return p.matchStmt()
	case RETURN:
		return p.returnStmt()
	case ON:
		return p.onStmt()
	case EMIT:
		return p.emitStmt()
	case IMPORT:
		return nil, p.errAt(p.peek(), "imports must precede all other statements")
	case SCHEMA:
		return p.schemaStmt()
	case ID:
		// `ID ID :` at statement start is an instance declaration.
		if p.peekN(1).Type == ID && p.peekN(2).Type == COLON {
			return p.instanceStmt()
		}
	}
	pos := p.pos()
	x, err := p.expression()
	if err != nil {
		return nil, err
	}
	return &ExprStmt{Pos_: pos, X: x}, nil
}

func (p *parser) letStmt() (Stmt, error) {
	pos := p.pos()
	p.match(LET)
	name, err := p.need(ID, "expected name after 'let'")
	if err != nil {
		return nil, err
	}
	if _, err := p.need(ASSIGN, "expected '=' in let binding"); err != nil {
		return nil, err
	}
	v, err := p.expression()
	if err != nil {
		return nil, err
	}
	return &LetStmt{Pos_: pos, Name: name.Literal.(string), Value: v}, nil
}

func (p *parser) setStmt() (Stmt, error) {
	pos := p.pos()
	p.match(SET)
	target, err := p.expression()
	if err != nil {
		return nil, err
	}
	switch target.(type) {
	case *IdentExpr, *MemberExpr, *IndexExpr, *ReactiveExpr:
	default:
		return nil, &ParseError{File: p.file, Line: pos.Line, Col: pos.Col,
			Msg: "invalid assignment target"}
	}
	if _, err := p.need(COLON, "expected ':' after assignment target"); err != nil {
		return nil, err
	}
	v, err := p.expression()
	if err != nil {
		return nil, err
	}
	return &SetStmt{Pos_: pos, Target: target, Value: v}, nil
}

func (p *parser) params() ([]Param, error) {
	if _, err := p.need(LPAREN, "expected '(' before parameter list"); err != nil {
		return nil, err
	}
	var out []Param
	if !p.check(RPAREN) {
		for {
			name, err := p.need(ID, "expected parameter name")
			if err != nil {
				return nil, err
			}
			prm := Param{Name: name.Literal.(string)}
			if p.match(ASSIGN) {
				d, err := p.expression()
				if err != nil {
					return nil, err
				}
				prm.Default = d
			}
			out = append(out, prm)
			if !p.match(COMMA) {
				break
			}
		}
	}
	if _, err := p.need(RPAREN, "expected ')' after parameters"); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *parser) fnStmt() (Stmt, error) {
	pos := p.pos()
	p.match(FN)
	name, err := p.need(ID, "expected function name after 'fn'")
	if err != nil {
		return nil, err
	}
	ps, err := p.params()
	if err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return &FnStmt{Pos_: pos, Name: name.Literal.(string), Params: ps, Body: body}, nil
}

// block parses `: <stmt>` (inline) or `:` NEWLINE INDENT … DEDENT.
func (p *parser) block() (*BlockStmt, error) {
	if _, err := p.need(COLON, "expected ':' before block"); err != nil {
		return nil, err
	}
	return p.blockAfterColon()
}

func (p *parser) blockAfterColon() (*BlockStmt, error) {
	pos := p.pos()
	if !p.check(NEWLINE) {
		st, err := p.statement()
		if err != nil {
			return nil, err
		}
		return &BlockStmt{Pos_: pos, Stmts: []Stmt{st}}, nil
	}
	p.match(NEWLINE)
	if _, err := p.need(INDENT, "expected an indented block"); err != nil {
		return nil, err
	}
	blk := &BlockStmt{Pos_: pos}
	p.skipNewlines()
	for !p.check(DEDENT) && !p.atEnd() {
		st, err := p.statement()
		if err != nil {
			return nil, err
		}
		blk.Stmts = append(blk.Stmts, st)
		p.skipNewlines()
	}
	if _, err := p.need(DEDENT, "expected dedent to close block"); err != nil {
		return nil, err
	}
	return blk, nil
}

func (p *parser) ifStmt() (Stmt, error) {
	pos := p.pos()
	p.match(IF)
	return p.ifTail(pos)
}

// ifTail parses the condition/branches shared by `if` and `elif`.
func (p *parser) ifTail(pos Pos) (Stmt, error) {
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	then, err := p.block()
	if err != nil {
		return nil, err
	}
	st := &IfStmt{Pos_: pos, Cond: cond, Then: then}
	if p.matchClause(ELIF) {
		nested, err := p.ifTail(Pos{Line: p.prev().Line, Col: p.prev().Col})
		if err != nil {
			return nil, err
		}
		st.Else = nested
	} else if p.matchClause(ELSE) {
		blk, err := p.block()
		if err != nil {
			return nil, err
		}
		st.Else = blk
	}
	return st, nil
}

func (p *parser) forStmt() (Stmt, error) {
	pos := p.pos()
	p.match(FOR)
	name, err := p.need(ID, "expected loop variable after 'for'")
	if err != nil {
		return nil, err
	}
	if _, err := p.need(IN, "expected 'in' in for loop"); err != nil {
		return nil, err
	}
	iter, err := p.expression()
	if err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return &ForStmt{Pos_: pos, Name: name.Literal.(string), Iter: iter, Body: body}, nil
}

func (p *parser) whileStmt() (Stmt, error) {
	pos := p.pos()
	p.match(WHILE)
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return &WhileStmt{Pos_: pos, Cond: cond, Body: body}, nil
}

func (p *parser) matchStmt() (Stmt, error) {
	pos := p.pos()
	p.match(MATCH)
	subj, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.need(COLON, "expected ':' after match subject"); err != nil {
		return nil, err
	}
	if _, err := p.need(NEWLINE, "expected newline before match cases"); err != nil {
		return nil, err
	}
	if _, err := p.need(INDENT, "expected indented match cases"); err != nil {
		return nil, err
	}
	st := &MatchStmt{Pos_: pos, Subject: subj}
	p.skipNewlines()
	for !p.check(DEDENT) && !p.atEnd() {
		pat, err := p.pattern()
		if err != nil {
			return nil, err
		}
		var guard Expr
		if p.match(WHEN) {
			guard, err = p.expression()
			if err != nil {
				return nil, err
			}
		}
		body, err := p.block()
		if err != nil {
			return nil, err
		}
		st.Cases = append(st.Cases, MatchCase{Pattern: pat, Guard: guard, Body: body})
		p.skipNewlines()
	}
	if _, err := p.need(DEDENT, "expected dedent to close match"); err != nil {
		return nil, err
	}
	return st, nil
}

func (p *parser) pattern() (Pattern, error) {
	pos := p.pos()
	t := p.peek()
	switch t.Type {
	case ID:
		p.i++
		name := t.Literal.(string)
		if name == "_" {
			return &WildcardPattern{Pos_: pos}, nil
		}
		return &BindPattern{Pos_: pos, Name: name}, nil
	case NUMBER:
		p.i++
		return &LiteralPattern{Pos_: pos, Value: &NumberLit{Pos_: pos, Value: t.Literal.(float64)}}, nil
	case STRING, COLOR:
		p.i++
		return &LiteralPattern{Pos_: pos, Value: &StringLit{Pos_: pos, Value: t.Literal.(string)}}, nil
	case TRUE, FALSE:
		p.i++
		return &LiteralPattern{Pos_: pos, Value: &BoolLit{Pos_: pos, Value: t.Type == TRUE}}, nil
	case NULL:
		p.i++
		return &LiteralPattern{Pos_: pos, Value: &NullLit{Pos_: pos}}, nil
	case LSQUARE:
		p.i++
		lp := &ListPattern{Pos_: pos}
		if !p.check(RSQUARE) {
			for {
				sub, err := p.pattern()
				if err != nil {
					return nil, err
				}
				lp.Elems = append(lp.Elems, sub)
				if !p.match(COMMA) {
					break
				}
			}
		}
		if _, err := p.need(RSQUARE, "expected ']' to close list pattern"); err != nil {
			return nil, err
		}
		return lp, nil
	}
	return nil, p.errAt(t, "expected a pattern")
}

func (p *parser) returnStmt() (Stmt, error) {
	pos := p.pos()
	p.match(RETURN)
	st := &ReturnStmt{Pos_: pos}
	switch p.peek().Type {
	case NEWLINE, DEDENT, EOF:
	default:
		v, err := p.expression()
		if err != nil {
			return nil, err
		}
		st.Value = v
	}
	return st, nil
}

func (p *parser) onStmt() (Stmt, error) {
	pos := p.pos()
	p.match(ON)
	ev, err := p.expression()
	if err != nil {
		return nil, err
	}
	st := &OnStmt{Pos_: pos, Event: ev}
	if p.match(WHEN) {
		g, err := p.expression()
		if err != nil {
			return nil, err
		}
		st.Guard = g
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	st.Body = body
	return st, nil
}

func (p *parser) emitStmt() (Stmt, error) {
	pos := p.pos()
	p.match(EMIT)
	ev, err := p.expression()
	if err != nil {
		return nil, err
	}
	st := &EmitStmt{Pos_: pos, Event: ev}
	if p.check(LCURLY) {
		data, err := p.mapLit()
		if err != nil {
			return nil, err
		}
		st.Data = data
	}
	return st, nil
}

// ----- schema & instance declarations -----

func (p *parser) schemaStmt() (Stmt, error) {
	pos := p.pos()
	p.match(SCHEMA)
	name, err := p.need(ID, "expected schema name")
	if err != nil {
		return nil, err
	}
	st := &SchemaStmt{Pos_: pos, Name: name.Literal.(string)}
	if p.match(EXTENDS) {
		parent, err := p.need(ID, "expected parent schema name after 'extends'")
		if err != nil {
			return nil, err
		}
		st.Parent = parent.Literal.(string)
	}
	if _, err := p.need(COLON, "expected ':' after schema header"); err != nil {
		return nil, err
	}
	if _, err := p.need(NEWLINE, "expected newline before schema body"); err != nil {
		return nil, err
	}
	if _, err := p.need(INDENT, "expected indented schema body"); err != nil {
		return nil, err
	}
	p.skipNewlines()
	for !p.check(DEDENT) && !p.atEnd() {
		switch p.peek().Type {
		case REQUIRED:
			p.i++
			if err := p.fieldSection(st, true); err != nil {
				return nil, err
			}
		case OPTIONAL:
			p.i++
			if err := p.fieldSection(st, false); err != nil {
				return nil, err
			}
		case FN:
			p.i++
			mname, err := p.need(ID, "expected method name after 'fn'")
			if err != nil {
				return nil, err
			}
			ps, err := p.params()
			if err != nil {
				return nil, err
			}
			body, err := p.block()
			if err != nil {
				return nil, err
			}
			st.Methods = append(st.Methods, SchemaMethod{Name: mname.Literal.(string), Params: ps, Body: body})
		case ID:
			// `name: fn(...): block` method form
			mname := p.peek()
			if p.peekN(1).Type != COLON || p.peekN(2).Type != FN {
				return nil, p.errAt(mname, "expected 'required:', 'optional:' or a method in schema body")
			}
			p.i += 3
			ps, err := p.params()
			if err != nil {
				return nil, err
			}
			body, err := p.block()
			if err != nil {
				return nil, err
			}
			st.Methods = append(st.Methods, SchemaMethod{Name: mname.Literal.(string), Params: ps, Body: body})
		default:
			return nil, p.errAt(p.peek(), "expected 'required:', 'optional:' or a method in schema body")
		}
		p.skipNewlines()
	}
	if _, err := p.need(DEDENT, "expected dedent to close schema body"); err != nil {
		return nil, err
	}
	return st, nil
}

// fieldSection parses a required:/optional: field list, inline `{ ... }` or
// an indented block of `name: type [= default]` lines.
func (p *parser) fieldSection(st *SchemaStmt, required bool) error {
	if _, err := p.need(COLON, "expected ':' after field section keyword"); err != nil {
		return err
	}
	if p.match(LCURLY) {
		if !p.check(RCURLY) {
			for {
				f, err := p.schemaField(required)
				if err != nil {
					return err
				}
				st.Fields = append(st.Fields, f)
				if !p.match(COMMA) {
					break
				}
			}
		}
		_, err := p.need(RCURLY, "expected '}' to close field list")
		return err
	}
	if _, err := p.need(NEWLINE, "expected newline or '{' after field section"); err != nil {
		return err
	}
	if _, err := p.need(INDENT, "expected indented field list"); err != nil {
		return err
	}
	p.skipNewlines()
	for !p.check(DEDENT) && !p.atEnd() {
		f, err := p.schemaField(required)
		if err != nil {
			return err
		}
		st.Fields = append(st.Fields, f)
		p.skipNewlines()
	}
	_, err := p.need(DEDENT, "expected dedent to close field list")
	return err
}

func (p *parser) schemaField(required bool) (SchemaField, error) {
	pos := p.pos()
	name, err := p.need(ID, "expected field name")
	if err != nil {
		return SchemaField{}, err
	}
	if _, err := p.need(COLON, "expected ':' after field name"); err != nil {
		return SchemaField{}, err
	}
	tr, err := p.typeRef()
	if err != nil {
		return SchemaField{}, err
	}
	f := SchemaField{Pos_: pos, Name: name.Literal.(string), Type: tr, Required: required}
	if p.match(ASSIGN) {
		d, err := p.expression()
		if err != nil {
			return SchemaField{}, err
		}
		f.Default = d
	}
	return f, nil
}

// typeRef parses a type annotation: simple name, list<T>, map<K,V>,
// enum("a","b",...), or vecN.
func (p *parser) typeRef() (*TypeRef, error) {
	pos := p.pos()
	name, err := p.need(ID, "expected type name")
	if err != nil {
		return nil, err
	}
	tr := &TypeRef{Pos_: pos, Name: name.Literal.(string)}
	switch tr.Name {
	case "list":
		if _, err := p.need(LESS, "expected '<' after 'list'"); err != nil {
			return nil, err
		}
		elem, err := p.typeRef()
		if err != nil {
			return nil, err
		}
		tr.Args = []*TypeRef{elem}
		if _, err := p.need(GREATER, "expected '>' to close list type"); err != nil {
			return nil, err
		}
	case "map":
		if _, err := p.need(LESS, "expected '<' after 'map'"); err != nil {
			return nil, err
		}
		k, err := p.typeRef()
		if err != nil {
			return nil, err
		}
		if _, err := p.need(COMMA, "expected ',' in map type"); err != nil {
			return nil, err
		}
		v, err := p.typeRef()
		if err != nil {
			return nil, err
		}
		tr.Args = []*TypeRef{k, v}
		if _, err := p.need(GREATER, "expected '>' to close map type"); err != nil {
			return nil, err
		}
	case "enum":
		if _, err := p.need(LPAREN, "expected '(' after 'enum'"); err != nil {
			return nil, err
		}
		for {
			s, err := p.need(STRING, "expected string in enum type")
			if err != nil {
				return nil, err
			}
			tr.Enum = append(tr.Enum, s.Literal.(string))
			if !p.match(COMMA) {
				break
			}
		}
		if _, err := p.need(RPAREN, "expected ')' to close enum type"); err != nil {
			return nil, err
		}
	}
	return tr, nil
}

func (p *parser) instanceStmt() (Stmt, error) {
	pos := p.pos()
	schema := p.peek().Literal.(string)
	name := p.peekN(1).Literal.(string)
	p.i += 3 // ID ID COLON
	st := &InstanceStmt{Pos_: pos, Schema: schema, Name: name}

	if p.match(LCURLY) {
		// Inline form: `S inst: { v: 5 }`
		if !p.check(RCURLY) {
			for {
				f, err := p.instanceField()
				if err != nil {
					return nil, err
				}
				st.Fields = append(st.Fields, f)
				if !p.match(COMMA) {
					break
				}
			}
		}
		if _, err := p.need(RCURLY, "expected '}' to close instance fields"); err != nil {
			return nil, err
		}
		return st, nil
	}

	if _, err := p.need(NEWLINE, "expected '{' or newline after instance header"); err != nil {
		return nil, err
	}
	if _, err := p.need(INDENT, "expected indented instance fields"); err != nil {
		return nil, err
	}
	p.skipNewlines()
	for !p.check(DEDENT) && !p.atEnd() {
		f, err := p.instanceField()
		if err != nil {
			return nil, err
		}
		st.Fields = append(st.Fields, f)
		p.skipNewlines()
	}
	if _, err := p.need(DEDENT, "expected dedent to close instance fields"); err != nil {
		return nil, err
	}
	return st, nil
}

func (p *parser) instanceField() (InstanceField, error) {
	name := p.peek()
	if name.Type != ID && name.Type != STRING {
		return InstanceField{}, p.errAt(name, "expected field name")
	}
	p.i++
	if _, err := p.need(COLON, "expected ':' after field name"); err != nil {
		return InstanceField{}, err
	}
	v, err := p.expression()
	if err != nil {
		return InstanceField{}, err
	}
	return InstanceField{Name: name.Literal.(string), Value: v}, nil
}

// ----- expressions -----

func (p *parser) expression() (Expr, error) { return p.conditional() }

func (p *parser) conditional() (Expr, error) {
	if p.check(IF) {
		pos := p.pos()
		p.match(IF)
		cond, err := p.logicalOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.need(THEN, "expected 'then' in conditional expression"); err != nil {
			return nil, err
		}
		thenV, err := p.conditional()
		if err != nil {
			return nil, err
		}
		if _, err := p.need(ELSE, "expected 'else' in conditional expression"); err != nil {
			return nil, err
		}
		elseV, err := p.conditional()
		if err != nil {
			return nil, err
		}
		return &CondExpr{Pos_: pos, Cond: cond, Then: thenV, Else: elseV}, nil
	}
	return p.logicalOr()
}

func (p *parser) logicalOr() (Expr, error) {
	left, err := p.logicalAnd()
	if err != nil {
		return nil, err
	}
	for p.check(OR) {
		pos := p.pos()
		p.match(OR)
		right, err := p.logicalAnd()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Pos_: pos, Op: OR, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) logicalAnd() (Expr, error) {
	left, err := p.equality()
	if err != nil {
		return nil, err
	}
	for p.check(AND) {
		pos := p.pos()
		p.match(AND)
		right, err := p.equality()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Pos_: pos, Op: AND, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) equality() (Expr, error) {
	left, err := p.relational()
	if err != nil {
		return nil, err
	}
	for p.check(EQ) || p.check(NEQ) {
		op := p.peek().Type
		pos := p.pos()
		p.i++
		right, err := p.relational()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Pos_: pos, Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) relational() (Expr, error) {
	left, err := p.additive()
	if err != nil {
		return nil, err
	}
	for p.check(LESS) || p.check(LESS_EQ) || p.check(GREATER) || p.check(GREATER_EQ) {
		op := p.peek().Type
		pos := p.pos()
		p.i++
		right, err := p.additive()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Pos_: pos, Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) additive() (Expr, error) {
	left, err := p.multiplicative()
	if err != nil {
		return nil, err
	}
	for p.check(PLUS) || p.check(MINUS) {
		op := p.peek().Type
		pos := p.pos()
		p.i++
		right, err := p.multiplicative()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Pos_: pos, Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) multiplicative() (Expr, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.check(MULT) || p.check(DIV) || p.check(MOD) {
		op := p.peek().Type
		pos := p.pos()
		p.i++
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Pos_: pos, Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) unary() (Expr, error) {
	if p.check(NOT) || p.check(MINUS) {
		op := p.peek().Type
		pos := p.pos()
		p.i++
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Pos_: pos, Op: op, Operand: operand}, nil
	}
	return p.postfix()
}

func (p *parser) postfix() (Expr, error) {
	x, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().Type {
		case PERIOD:
			pos := p.pos()
			p.i++
			name, err := p.need(ID, "expected member name after '.'")
			if err != nil {
				return nil, err
			}
			x = &MemberExpr{Pos_: pos, Obj: x, Name: name.Literal.(string)}
		case LSQUARE:
			pos := p.pos()
			p.i++
			idx, err := p.expression()
			if err != nil {
				return nil, err
			}
			if _, err := p.need(RSQUARE, "expected ']' to close index"); err != nil {
				return nil, err
			}
			x = &IndexExpr{Pos_: pos, Obj: x, Index: idx}
		case LPAREN:
			pos := p.pos()
			p.i++
			var args []Expr
			if !p.check(RPAREN) {
				for {
					a, err := p.expression()
					if err != nil {
						return nil, err
					}
					args = append(args, a)
					if !p.match(COMMA) {
						break
					}
				}
			}
			if _, err := p.need(RPAREN, "expected ')' to close call"); err != nil {
				return nil, err
			}
			x = &CallExpr{Pos_: pos, Callee: x, Args: args}
		default:
			return x, nil
		}
	}
}

func (p *parser) primary() (Expr, error) {
	t := p.peek()
	pos := Pos{Line: t.Line, Col: t.Col}
	switch t.Type {
	case NUMBER:
		p.i++
		return &NumberLit{Pos_: pos, Value: t.Literal.(float64)}, nil
	case STRING, COLOR:
		p.i++
		return &StringLit{Pos_: pos, Value: t.Literal.(string)}, nil
	case TRUE, FALSE:
		p.i++
		return &BoolLit{Pos_: pos, Value: t.Type == TRUE}, nil
	case NULL:
		p.i++
		return &NullLit{Pos_: pos}, nil
	case ID:
		p.i++
		return &IdentExpr{Pos_: pos, Name: t.Literal.(string)}, nil
	case DOLLAR:
		return p.reactiveRef()
	case FN:
		return p.lambda()
	case LPAREN:
		return p.parenOrVector()
	case LSQUARE:
		return p.listLit()
	case LCURLY:
		return p.mapLit()
	}
	return nil, p.errAt(t, "expected an expression")
}

func (p *parser) reactiveRef() (Expr, error) {
	pos := p.pos()
	p.match(DOLLAR)
	first, err := p.need(ID, "expected name after '$'")
	if err != nil {
		return nil, err
	}
	path := []string{first.Literal.(string)}
	for p.check(PERIOD) && p.peekN(1).Type == ID {
		p.i += 2
		path = append(path, p.prev().Literal.(string))
	}
	return &ReactiveExpr{Pos_: pos, Path: path}, nil
}

func (p *parser) lambda() (Expr, error) {
	pos := p.pos()
	p.match(FN)
	ps, err := p.params()
	if err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return &LambdaExpr{Pos_: pos, Params: ps, Body: body}, nil
}

// parenOrVector parses `( … )`: a vector literal when a top-level comma is
// present, otherwise a parenthesized expression.
func (p *parser) parenOrVector() (Expr, error) {
	pos := p.pos()
	p.match(LPAREN)
	first, err := p.expression()
	if err != nil {
		return nil, err
	}
	if !p.check(COMMA) {
		if _, err := p.need(RPAREN, "expected ')' to close expression"); err != nil {
			return nil, err
		}
		return first, nil
	}
	vec := &VectorLit{Pos_: pos, Elems: []Expr{first}}
	for p.match(COMMA) {
		if p.check(RPAREN) {
			break // allow a trailing comma
		}
		e, err := p.expression()
		if err != nil {
			return nil, err
		}
		vec.Elems = append(vec.Elems, e)
	}
	if _, err := p.need(RPAREN, "expected ')' to close vector literal"); err != nil {
		return nil, err
	}
	return vec, nil
}

func (p *parser) listLit() (Expr, error) {
	pos := p.pos()
	p.match(LSQUARE)
	lst := &ListLit{Pos_: pos}
	if !p.check(RSQUARE) {
		for {
			e, err := p.expression()
			if err != nil {
				return nil, err
			}
			lst.Elems = append(lst.Elems, e)
			if !p.match(COMMA) {
				break
			}
		}
	}
	if _, err := p.need(RSQUARE, "expected ']' to close list literal"); err != nil {
		return nil, err
	}
	return lst, nil
}

func (p *parser) mapLit() (Expr, error) {
	pos := p.pos()
	if _, err := p.need(LCURLY, "expected '{'"); err != nil {
		return nil, err
	}
	m := &MapLit{Pos_: pos}
	if !p.check(RCURLY) {
		for {
			k := p.peek()
			if k.Type != ID && k.Type != STRING {
				return nil, p.errAt(k, "expected map key")
			}
			p.i++
			if _, err := p.need(COLON, "expected ':' after map key"); err != nil {
				return nil, err
			}
			v, err := p.expression()
			if err != nil {
				return nil, err
			}
			m.Keys = append(m.Keys, k.Literal.(string))
			m.Vals = append(m.Vals, v)
			if !p.match(COMMA) {
				break
			}
		}
	}
	if _, err := p.need(RCURLY, "expected '}' to close map literal"); err != nil {
		return nil, err
	}
	return m, nil
}
