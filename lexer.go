// lexer.go — whitespace-sensitive tokenizer for StarLang.
//
// StarLang is indentation-structured: the lexer synthesizes INDENT/DEDENT
// tokens from leading whitespace (a tab counts as two spaces) and NEWLINE
// tokens at the end of every logical line. Blank lines and comment-only lines
// never touch the indentation stack. At end of input all open indents are
// closed with trailing DEDENTs before EOF.
//
// Other lexical rules:
//   - '#' followed by a hex digit starts a color literal (kept as a string
//     token carrying the leading '#'); any other '#' starts a line comment.
//   - Strings use double or single quotes, support \n \t \r \\ \" \' escapes,
//     and may not contain a raw newline.
//   - Numbers: optional leading '-' (only where a number can start), digits,
//     optional '.' + digits.
//   - Identifiers [A-Za-z_][A-Za-z0-9_]*; a fixed keyword table reclassifies.
//   - Two-char operators (== != <= >=) match greedily before single-char ones.
package starlang

import "fmt"

// TokenType represents the kind of token.
type TokenType int

const (
	// Special
	EOF TokenType = iota
	NEWLINE
	INDENT
	DEDENT

	// Punctuation
	LPAREN   // "("
	RPAREN   // ")"
	LSQUARE  // "["
	RSQUARE  // "]"
	LCURLY   // "{"
	RCURLY   // "}"
	COLON    // ":"
	COMMA    // ","
	PERIOD   // "."
	DOLLAR   // "$"
	ASSIGN   // "="

	// Operators
	PLUS
	MINUS
	MULT
	DIV
	MOD
	EQ         // "=="
	NEQ        // "!="
	LESS       // "<"
	LESS_EQ    // "<="
	GREATER    // ">"
	GREATER_EQ // ">="

	// Literals & identifiers
	ID
	STRING
	NUMBER
	COLOR // "#ff8800" — string-like, keeps the leading '#'

	// Keywords
	LET
	SET
	FN
	IF
	ELIF
	ELSE
	THEN
	FOR
	IN
	WHILE
	MATCH
	WHEN
	RETURN
	ON
	EMIT
	IMPORT
	SCHEMA
	EXTENDS
	REQUIRED
	OPTIONAL
	AND
	OR
	NOT
	TRUE
	FALSE
	NULL
)

// Token is a lexical token with an optional decoded literal value.
type Token struct {
	Type      TokenType
	Lexeme    string
	Literal   interface{} // string for STRING/COLOR, float64 for NUMBER
	Line      int         // 1-based
	Col       int         // 1-based
	StartByte int
	EndByte   int
}

var keywords = map[string]TokenType{
	"let":      LET,
	"set":      SET,
	"fn":       FN,
	"if":       IF,
	"elif":     ELIF,
	"else":     ELSE,
	"then":     THEN,
	"for":      FOR,
	"in":       IN,
	"while":    WHILE,
	"match":    MATCH,
	"when":     WHEN,
	"return":   RETURN,
	"on":       ON,
	"emit":     EMIT,
	"import":   IMPORT,
	"schema":   SCHEMA,
	"extends":  EXTENDS,
	"required": REQUIRED,
	"optional": OPTIONAL,
	"and":      AND,
	"or":       OR,
	"not":      NOT,
	"true":     TRUE,
	"false":    FALSE,
	"null":     NULL,
}

// LexError is a fatal tokenization failure at file:line:col.
type LexError struct {
	File string
	Line int
	Col  int
	Msg  string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Col, e.Msg)
}

// Lexer scans StarLang source into tokens.
type Lexer struct {
	src  string
	file string

	start int // start index of the current token
	cur   int // current index
	line  int // 1-based
	col   int // 1-based column of cur

	tokens      []Token
	indents     []int // stack of indent widths, bottom is always 0
	atLineStart bool
	parenDepth  int // '(' '[' '{' nesting; newlines inside brackets are ignored

	tokStartLine int
	tokStartCol  int
}

// NewLexer creates a lexer for the given source text and file identifier.
func NewLexer(src, file string) *Lexer {
	return &Lexer{
		src:         src,
		file:        file,
		line:        1,
		col:         1,
		indents:     []int{0},
		atLineStart: true,
	}
}

func (l *Lexer) isAtEnd() bool { return l.cur >= len(l.src) }

func (l *Lexer) peek() (byte, bool) {
	if l.isAtEnd() {
		return 0, false
	}
	return l.src[l.cur], true
}

func (l *Lexer) peekN(n int) (byte, bool) {
	idx := l.cur + n
	if idx >= len(l.src) {
		return 0, false
	}
	return l.src[idx], true
}

func (l *Lexer) advance() (byte, bool) {
	if l.isAtEnd() {
		return 0, false
	}
	ch := l.src[l.cur]
	l.cur++
	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return ch, true
}

func (l *Lexer) err(msg string) error {
	return &LexError{File: l.file, Line: l.line, Col: l.col, Msg: msg}
}

func (l *Lexer) add(tt TokenType, lit interface{}) {
	l.tokens = append(l.tokens, Token{
		Type:      tt,
		Lexeme:    l.src[l.start:l.cur],
		Literal:   lit,
		Line:      l.tokStartLine,
		Col:       l.tokStartCol,
		StartByte: l.start,
		EndByte:   l.cur,
	})
	l.start = l.cur
}

// addSynthetic emits a zero-width structural token (NEWLINE/INDENT/DEDENT/EOF).
func (l *Lexer) addSynthetic(tt TokenType) {
	l.tokens = append(l.tokens, Token{
		Type:      tt,
		Line:      l.line,
		Col:       l.col,
		StartByte: l.cur,
		EndByte:   l.cur,
	})
}

func (l *Lexer) previousToken() *Token {
	if len(l.tokens) == 0 {
		return nil
	}
	return &l.tokens[len(l.tokens)-1]
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}
func isAlpha(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_' }
func isAlphaNum(b byte) bool {
	return (b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9') ||
		b == '_'
}

// canEndOperand reports whether the previous token can terminate an operand,
// which makes a following '-' a binary operator rather than a numeric sign.
func canEndOperand(t TokenType) bool {
	switch t {
	case ID, STRING, NUMBER, COLOR, TRUE, FALSE, NULL, RPAREN, RSQUARE, RCURLY:
		return true
	default:
		return false
	}
}

// ----- indentation -----

// handleLineStart measures leading whitespace of the next logical line and
// emits INDENT/DEDENT tokens. Blank and comment-only lines are consumed
// entirely without touching the stack.
func (l *Lexer) handleLineStart() error {
	for {
		width := 0
		for {
			b, ok := l.peek()
			if !ok {
				break
			}
			if b == ' ' {
				width++
				l.advance()
				continue
			}
			if b == '\t' {
				width += 2 // a tab counts as two spaces
				l.advance()
				continue
			}
			break
		}
		b, ok := l.peek()
		if !ok {
			return nil // EOF; Scan emits trailing dedents
		}
		if b == '\n' || b == '\r' {
			l.advance()
			if b == '\r' {
				if b2, ok2 := l.peek(); ok2 && b2 == '\n' {
					l.advance()
				}
			}
			continue // blank line: does not affect the stack
		}
		if b == '#' {
			// A color literal can never start a statement; any line whose
			// first non-blank char is '#' is a comment-only line.
			if b2, ok2 := l.peekN(1); !ok2 || !isHexDigit(b2) {
				for {
					c, ok3 := l.peek()
					if !ok3 || c == '\n' {
						break
					}
					l.advance()
				}
				continue
			}
		}

		top := l.indents[len(l.indents)-1]
		switch {
		case width > top:
			l.indents = append(l.indents, width)
			l.addSynthetic(INDENT)
		case width < top:
			for len(l.indents) > 1 && l.indents[len(l.indents)-1] > width {
				l.indents = l.indents[:len(l.indents)-1]
				l.addSynthetic(DEDENT)
			}
			if l.indents[len(l.indents)-1] != width {
				return l.err(fmt.Sprintf("unindent does not match any outer indentation level (width %d)", width))
			}
		}
		l.start = l.cur
		return nil
	}
}

// ----- scanners -----

func (l *Lexer) scanString(delim byte) (string, error) {
	var out []byte
	for {
		ch, ok := l.advance()
		if !ok {
			return "", l.err("unterminated string")
		}
		if ch == delim {
			return string(out), nil
		}
		if ch == '\n' {
			return "", l.err("unterminated string")
		}
		if ch == '\\' {
			esc, ok2 := l.advance()
			if !ok2 {
				return "", l.err("unterminated string")
			}
			switch esc {
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			case 'r':
				out = append(out, '\r')
			case '\\':
				out = append(out, '\\')
			case '"':
				out = append(out, '"')
			case '\'':
				out = append(out, '\'')
			default:
				return "", l.err(fmt.Sprintf("invalid escape sequence: \\%c", esc))
			}
			continue
		}
		out = append(out, ch)
	}
}

// scanNumber scans digits [. digits]; the caller has consumed any sign.
func (l *Lexer) scanNumber() {
	for {
		b, ok := l.peek()
		if !ok || !isDigit(b) {
			break
		}
		l.advance()
	}
	if b, ok := l.peek(); ok && b == '.' {
		if b2, ok2 := l.peekN(1); ok2 && isDigit(b2) {
			l.advance()
			for {
				b3, ok3 := l.peek()
				if !ok3 || !isDigit(b3) {
					break
				}
				l.advance()
			}
		}
	}
}

func (l *Lexer) scanIdentifier() string {
	for {
		b, ok := l.peek()
		if !ok || !isAlphaNum(b) {
			break
		}
		l.advance()
	}
	return l.src[l.start:l.cur]
}

func (l *Lexer) numberToken() {
	l.scanNumber()
	lex := l.src[l.start:l.cur]
	v := parseFloat(lex)
	l.add(NUMBER, v)
}

// skipInlineSpace consumes spaces/tabs (never newlines) between tokens.
func (l *Lexer) skipInlineSpace() {
	for {
		b, ok := l.peek()
		if !ok || (b != ' ' && b != '\t' && b != '\r') {
			return
		}
		// A '\r' not followed by '\n' is treated as plain whitespace.
		if b == '\r' {
			if b2, ok2 := l.peekN(1); ok2 && b2 == '\n' {
				return
			}
		}
		l.advance()
		l.start = l.cur
	}
}

// scanToken scans the next token(s) within a logical line.
func (l *Lexer) scanToken() error {
	l.skipInlineSpace()
	l.tokStartLine = l.line
	l.tokStartCol = l.col
	l.start = l.cur

	if l.isAtEnd() {
		return nil
	}

	ch, _ := l.advance()

	switch ch {
	case '\r':
		// CRLF line ending; fall through to newline handling.
		if b, ok := l.peek(); ok && b == '\n' {
			l.advance()
		}
		fallthrough
	case '\n':
		if l.parenDepth > 0 {
			l.start = l.cur
			return nil // newlines inside brackets are insignificant
		}
		l.addSynthetic(NEWLINE)
		l.atLineStart = true
		return nil
	case '(':
		l.parenDepth++
		l.add(LPAREN, nil)
		return nil
	case ')':
		if l.parenDepth > 0 {
			l.parenDepth--
		}
		l.add(RPAREN, nil)
		return nil
	case '[':
		l.parenDepth++
		l.add(LSQUARE, nil)
		return nil
	case ']':
		if l.parenDepth > 0 {
			l.parenDepth--
		}
		l.add(RSQUARE, nil)
		return nil
	case '{':
		l.parenDepth++
		l.add(LCURLY, nil)
		return nil
	case '}':
		if l.parenDepth > 0 {
			l.parenDepth--
		}
		l.add(RCURLY, nil)
		return nil
	case ':':
		l.add(COLON, nil)
		return nil
	case ',':
		l.add(COMMA, nil)
		return nil
	case '.':
		l.add(PERIOD, nil)
		return nil
	case '$':
		l.add(DOLLAR, nil)
		return nil
	case '+':
		l.add(PLUS, nil)
		return nil
	case '*':
		l.add(MULT, nil)
		return nil
	case '/':
		l.add(DIV, nil)
		return nil
	case '%':
		l.add(MOD, nil)
		return nil
	}

	// Two-char operators before their single-char fallbacks.
	switch ch {
	case '=':
		if b, ok := l.peek(); ok && b == '=' {
			l.advance()
			l.add(EQ, nil)
			return nil
		}
		l.add(ASSIGN, nil)
		return nil
	case '!':
		if b, ok := l.peek(); ok && b == '=' {
			l.advance()
			l.add(NEQ, nil)
			return nil
		}
		return l.err("unexpected character: '!'")
	case '<':
		if b, ok := l.peek(); ok && b == '=' {
			l.advance()
			l.add(LESS_EQ, nil)
			return nil
		}
		l.add(LESS, nil)
		return nil
	case '>':
		if b, ok := l.peek(); ok && b == '=' {
			l.advance()
			l.add(GREATER_EQ, nil)
			return nil
		}
		l.add(GREATER, nil)
		return nil
	case '-':
		// '-' starts a negative number literal only where an operand can begin.
		if b, ok := l.peek(); ok && isDigit(b) {
			prev := l.previousToken()
			if prev == nil || !canEndOperand(prev.Type) {
				l.numberToken()
				return nil
			}
		}
		l.add(MINUS, nil)
		return nil
	}

	// '#' + hex digit: color literal. Otherwise a comment to end of line.
	if ch == '#' {
		if b, ok := l.peek(); ok && isHexDigit(b) {
			for {
				b2, ok2 := l.peek()
				if !ok2 || !isHexDigit(b2) {
					break
				}
				l.advance()
			}
			l.add(COLOR, l.src[l.start:l.cur]) // keeps the leading '#'
			return nil
		}
		for {
			b, ok := l.peek()
			if !ok || b == '\n' {
				break
			}
			l.advance()
		}
		l.start = l.cur
		return nil
	}

	if ch == '"' || ch == '\'' {
		s, err := l.scanString(ch)
		if err != nil {
			return err
		}
		l.add(STRING, s)
		return nil
	}

	if isDigit(ch) {
		l.numberToken()
		return nil
	}

	if isAlpha(ch) {
		lex := l.scanIdentifier()
		if tt, ok := keywords[lex]; ok {
			l.add(tt, nil)
			return nil
		}
		l.add(ID, lex)
		return nil
	}

	return l.err(fmt.Sprintf("unexpected character: %q", ch))
}

// Scan tokenizes the entire source and returns tokens (EOF included).
func (l *Lexer) Scan() ([]Token, error) {
	for !l.isAtEnd() {
		if l.atLineStart && l.parenDepth == 0 {
			l.atLineStart = false
			if err := l.handleLineStart(); err != nil {
				return nil, err
			}
			continue
		}
		if err := l.scanToken(); err != nil {
			return nil, err
		}
	}
	// Close the last logical line if the file does not end with a newline.
	if last := l.previousToken(); last != nil && last.Type != NEWLINE {
		l.addSynthetic(NEWLINE)
	}
	for len(l.indents) > 1 {
		l.indents = l.indents[:len(l.indents)-1]
		l.addSynthetic(DEDENT)
	}
	l.addSynthetic(EOF)
	return l.tokens, nil
}
