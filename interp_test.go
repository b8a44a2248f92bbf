package starlang

import (
	"bytes"
	"strings"
	"testing"
)

// loadSrc runs a script and returns the interpreter, failing the test on
// any error.
func loadSrc(t *testing.T, src string, opts ...Option) *Interp {
	t.Helper()
	in := New(opts...)
	if err := in.Load(src, "test.star"); err != nil {
		t.Fatalf("load: %v", err)
	}
	return in
}

func getVal(t *testing.T, in *Interp, name string) Value {
	t.Helper()
	v, ok := in.Get(name)
	if !ok {
		t.Fatalf("global %q is not defined", name)
	}
	return v
}

func wantNum(t *testing.T, in *Interp, name string, want float64) {
	t.Helper()
	v := getVal(t, in, name)
	if v.Tag != VTNum || v.Num() != want {
		t.Fatalf("%s = %s, want %v", name, v, want)
	}
}

func wantStr(t *testing.T, in *Interp, name, want string) {
	t.Helper()
	v := getVal(t, in, name)
	if v.Tag != VTStr || v.Str() != want {
		t.Fatalf("%s = %s, want %q", name, v, want)
	}
}

func wantBool(t *testing.T, in *Interp, name string, want bool) {
	t.Helper()
	v := getVal(t, in, name)
	if v.Tag != VTBool || v.Bool() != want {
		t.Fatalf("%s = %s, want %v", name, v, want)
	}
}

func wantNull(t *testing.T, in *Interp, name string) {
	t.Helper()
	if v := getVal(t, in, name); v.Tag != VTNull {
		t.Fatalf("%s = %s, want null", name, v)
	}
}

func wantRuntimeError(t *testing.T, src, fragment string) {
	t.Helper()
	err := New().Load(src, "test.star")
	if err == nil {
		t.Fatalf("script %q: expected a runtime error", src)
	}
	re, ok := err.(*RuntimeError)
	if !ok {
		t.Fatalf("script %q: error type %T, want *RuntimeError", src, err)
	}
	if !strings.Contains(re.Msg, fragment) {
		t.Fatalf("error %q does not contain %q", re.Msg, fragment)
	}
}

func TestLetAndSetScoping(t *testing.T) {
	in := loadSrc(t, `let x = 1
fn bump():
  set x: x + 1
bump()
bump()
let shadowed = 0
fn inner():
  let shadowed = 99
inner()
`)
	wantNum(t, in, "x", 3)
	wantNum(t, in, "shadowed", 0)
}

func TestSetCreatesWhenUnbound(t *testing.T) {
	in := loadSrc(t, "set fresh: 42\n")
	wantNum(t, in, "fresh", 42)
}

func TestClosuresCaptureEnvironment(t *testing.T) {
	in := loadSrc(t, `fn counter():
  let n = 0
  return fn():
    set n: n + 1
    return n
let c = counter()
c()
c()
let got = c()
let other = counter()()
`)
	wantNum(t, in, "got", 3)
	wantNum(t, in, "other", 1)
}

func TestDefaultParameters(t *testing.T) {
	in := loadSrc(t, `let base = 10
fn add(a, b = base * 2):
  return a + b
let full = add(1, 2)
let defaulted = add(1)
fn noargs(x):
  return x
let missing = noargs()
`)
	wantNum(t, in, "full", 3)
	wantNum(t, in, "defaulted", 21)
	wantNull(t, in, "missing")
}

func TestRecursion(t *testing.T) {
	in := loadSrc(t, `fn fib(n):
  if n < 2:
    return n
  return fib(n - 1) + fib(n - 2)
let r = fib(10)
`)
	wantNum(t, in, "r", 55)
}

func TestCallWithoutReturnYieldsNull(t *testing.T) {
	in := loadSrc(t, `fn f():
  let x = 1
let r = f()
`)
	wantNull(t, in, "r")
}

func TestConditionalExpressionAndElif(t *testing.T) {
	in := loadSrc(t, `let a = if 2 > 1 then "yes" else "no"
let n = 15
let sizeClass = ""
if n < 10:
  set sizeClass: "small"
elif n < 20:
  set sizeClass: "medium"
else:
  set sizeClass: "large"
`)
	wantStr(t, in, "a", "yes")
	wantStr(t, in, "sizeClass", "medium")
}

func TestForLoops(t *testing.T) {
	in := loadSrc(t, `let sum = 0
for x in [1, 2, 3, 4]:
  set sum: sum + x
let chars = ""
for c in "abc":
  set chars: chars + c
let m = { one: 1, two: 2 }
let keyCount = 0
for k in m:
  set keyCount: keyCount + 1
`)
	wantNum(t, in, "sum", 10)
	wantStr(t, in, "chars", "abc")
	wantNum(t, in, "keyCount", 2)
}

func TestWhileLoop(t *testing.T) {
	in := loadSrc(t, `let n = 0
while n < 5:
  set n: n + 1
`)
	wantNum(t, in, "n", 5)
}

func TestLoopCeiling(t *testing.T) {
	in := New(WithMaxLoopIterations(100))
	err := in.Load("while true:\n  let x = 1\n", "test.star")
	if err == nil {
		t.Fatal("expected the iteration ceiling to fire")
	}
	re, ok := err.(*RuntimeError)
	if !ok || !strings.Contains(re.Msg, "100 iterations") {
		t.Fatalf("error = %v, want iteration ceiling fault", err)
	}
}

func TestMatchStatement(t *testing.T) {
	in := loadSrc(t, `fn classify(v):
  match v:
    0: return "zero"
    [x, y]: return "pair starting " + x
    n when typeof(n) == "number" and n > 100: return "big"
    _: return "other"
let a = classify(0)
let b = classify([7, 8])
let c = classify(500)
let d = classify("hm")
`)
	wantStr(t, in, "a", "zero")
	wantStr(t, in, "b", "pair starting 7")
	wantStr(t, in, "c", "big")
	wantStr(t, in, "d", "other")
}

func TestStringConcatCoercion(t *testing.T) {
	in := loadSrc(t, `let a = "n=" + 3
let b = 3 + "=n"
let c = "v:" + [1, 2]
`)
	wantStr(t, in, "a", "n=3")
	wantStr(t, in, "b", "3=n")
	wantStr(t, in, "c", "v:[1, 2]")
}

func TestListAndMapReferenceSemantics(t *testing.T) {
	in := loadSrc(t, `let a = [1, 2]
let b = a
b.push(3)
let n = length(a)
let m = { x: 1 }
fn poke(target):
  set target.x: 99
poke(m)
let mx = m.x
`)
	wantNum(t, in, "n", 3)
	wantNum(t, in, "mx", 99)
}

func TestIndexing(t *testing.T) {
	in := loadSrc(t, `let l = [10, 20, 30]
set l[1]: 25
let second = l[1]
let m = { a: 1 }
let missing = m["nope"]
let ch = "hello"[1]
`)
	wantNum(t, in, "second", 25)
	wantNull(t, in, "missing")
	wantStr(t, in, "ch", "e")
}

func TestVectorLiteral(t *testing.T) {
	in := loadSrc(t, `let v = (3, 4)
let len = vec.length(v)
let grouped = (3)
`)
	wantNum(t, in, "len", 5)
	wantNum(t, in, "grouped", 3)
}

func TestColorLiteralValue(t *testing.T) {
	in := loadSrc(t, "let c = #ff8800\n")
	wantStr(t, in, "c", "#ff8800")
}

func TestReactiveReferences(t *testing.T) {
	in := loadSrc(t, `let state = { pos: { x: 1 } }
set $state.pos.x: 5
let got = $state.pos.x
fn deep():
  let state = "shadow does not matter"
  return $state.pos.x
let fromFn = deep()
`)
	wantNum(t, in, "got", 5)
	wantNum(t, in, "fromFn", 5)
}

func TestLogicalOperatorsYieldOperands(t *testing.T) {
	in := loadSrc(t, `let a = null or "fallback"
let b = "x" and 7
let c = 0 and crash_never_evaluated
let d = not ""
`)
	wantStr(t, in, "a", "fallback")
	wantNum(t, in, "b", 7)
	wantNum(t, in, "c", 0)
	wantBool(t, in, "d", true)
}

func TestPrintOutput(t *testing.T) {
	in := New()
	var buf bytes.Buffer
	in.Stdout = &buf
	if err := in.Load(`print("hi", 1 + 2, [1, "a"])`+"\n", "test.star"); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.String(), "hi 3 [1, \"a\"]\n"; got != want {
		t.Errorf("print output = %q, want %q", got, want)
	}
}

func TestGetSetFromHost(t *testing.T) {
	in := New()
	in.Set("speed", Num(12))
	if err := in.Load("let doubled = speed * 2\n", "test.star"); err != nil {
		t.Fatal(err)
	}
	wantNum(t, in, "doubled", 24)
	if _, ok := in.Get("no_such"); ok {
		t.Error("Get reported a missing global as present")
	}
}

func TestEvalEchoesLastExpression(t *testing.T) {
	in := New()
	v, err := in.Eval("let x = 2\nx * 3\n", "repl")
	if err != nil {
		t.Fatal(err)
	}
	if v.Tag != VTNum || v.Num() != 6 {
		t.Fatalf("Eval = %s, want 6", v)
	}
	v, err = in.Eval("let y = 1\n", "repl")
	if err != nil {
		t.Fatal(err)
	}
	if v.Tag != VTNull {
		t.Fatalf("Eval of a non-expression = %s, want null", v)
	}
}

func TestRuntimeFaults(t *testing.T) {
	wantRuntimeError(t, "let x = missing\n", "undefined variable")
	wantRuntimeError(t, "let x = 3()\n", "not callable")
	wantRuntimeError(t, "let n = null\nlet x = n.field\n", "null")
	wantRuntimeError(t, "let x = 1 / 0\n", "division by zero")
	wantRuntimeError(t, "let l = [1]\nlet x = l[5]\n", "out of range")
	wantRuntimeError(t, "return 1\n", "outside function")
	wantRuntimeError(t, `let x = "a" - 1`+"\n", "needs numbers")
}

func TestRuntimeErrorPosition(t *testing.T) {
	err := New().Load("let a = 1\nlet b = boom\n", "game.star")
	re, ok := err.(*RuntimeError)
	if !ok {
		t.Fatalf("error = %v, want *RuntimeError", err)
	}
	if re.File != "game.star" || re.Line != 2 {
		t.Errorf("position = %s:%d, want game.star:2", re.File, re.Line)
	}
}

func TestImportIsInert(t *testing.T) {
	in := loadSrc(t, "import physics\nlet ok = true\n")
	wantBool(t, in, "ok", true)
}
