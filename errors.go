// errors.go — user-facing error rendering.
//
// Turns lex/parse/runtime diagnostics into plain-text snippets with a caret
// under the offending column:
//
//	parse error in game.star at 3:14: expected ')' to close call
//
//	   2 | fn hit(dmg):
//	   3 |   print(dmg
//	     |              ^
//	   4 |   set hp: hp - dmg
//
// The renderer is independent of the interpreter and clamps out-of-range
// coordinates, so it is safe on any source text.
package starlang

import (
	"fmt"
	"strings"
)

// RuntimeError is a fatal execution fault at a source position.
type RuntimeError struct {
	File string
	Line int
	Col  int
	Msg  string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Col, e.Msg)
}

// WrapErrorWithSource augments recognized diagnostics with a caret snippet
// of src. Other errors pass through unchanged.
func WrapErrorWithSource(err error, src string) error {
	switch e := err.(type) {
	case *LexError:
		return fmt.Errorf("%s", snippet(src, "lex error", e.File, e.Line, e.Col, e.Msg))
	case *ParseError:
		return fmt.Errorf("%s", snippet(src, "parse error", e.File, e.Line, e.Col, e.Msg))
	case *RuntimeError:
		return fmt.Errorf("%s", snippet(src, "runtime error", e.File, e.Line, e.Col, e.Msg))
	}
	return err
}

// snippet renders the header, one line of context on each side, and a caret
// under the 1-based column.
func snippet(src, kind, name string, line, col int, msg string) string {
	lines := strings.Split(src, "\n")
	if len(lines) == 0 {
		lines = []string{""}
	}
	if line < 1 {
		line = 1
	}
	if line > len(lines) {
		line = len(lines)
	}
	if col < 1 {
		col = 1
	}

	var b strings.Builder
	if name != "" {
		fmt.Fprintf(&b, "%s in %s at %d:%d: %s\n\n", kind, name, line, col, msg)
	} else {
		fmt.Fprintf(&b, "%s at %d:%d: %s\n\n", kind, line, col, msg)
	}
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lines[line-1])
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", col-1))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}
