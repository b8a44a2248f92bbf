package starlang

import (
	"math"
	"testing"
)

func TestCoreBuiltins(t *testing.T) {
	in := loadSrc(t, `let lenStr = length("héllo")
let lenList = length([1, 2, 3])
let lenMap = length({ a: 1 })
let ty = typeof([1])
let ks = keys({ b: 1, a: 2 })
let vs = values({ b: 1, a: 2 })
let clamped = clamp(15, 0, 10)
let mid = lerp(0, 10, 0.5)
let lo = min(3, 1, 2)
let hi = max(3, 1, 2)
let r = round(2.5)
`)
	wantNum(t, in, "lenStr", 5)
	wantNum(t, in, "lenList", 3)
	wantNum(t, in, "lenMap", 1)
	wantStr(t, in, "ty", "list")
	wantNum(t, in, "clamped", 10)
	wantNum(t, in, "mid", 5)
	wantNum(t, in, "lo", 1)
	wantNum(t, in, "hi", 3)
	wantNum(t, in, "r", 3)

	ks := getVal(t, in, "ks")
	if got := ks.String(); got != `["b", "a"]` {
		t.Errorf("keys = %s, want insertion order [b, a]", got)
	}
	vs := getVal(t, in, "vs")
	if got := vs.String(); got != "[1, 2]" {
		t.Errorf("values = %s, want [1, 2]", got)
	}
}

func TestMathNamespace(t *testing.T) {
	in := loadSrc(t, `let s = math.sin(0)
let pi = math.pi
let sg = math.sign(-3)
let m = math.mod(7, 3)
`)
	wantNum(t, in, "s", 0)
	wantNum(t, in, "pi", math.Pi)
	wantNum(t, in, "sg", -1)
	wantNum(t, in, "m", 1)
}

func TestVecNamespace(t *testing.T) {
	in := loadSrc(t, `let a = (1, 2, 3)
let b = (4, 5, 6)
let sum = vec.add(a, b)
let d = vec.dot(a, b)
let c = vec.cross((1, 0, 0), (0, 1, 0))
let n = vec.normalize((3, 4))
let dist = vec.dist((0, 0), (3, 4))
`)
	wantNum(t, in, "d", 32)
	wantNum(t, in, "dist", 5)
	if got := getVal(t, in, "sum").String(); got != "[5, 7, 9]" {
		t.Errorf("vec.add = %s", got)
	}
	if got := getVal(t, in, "c").String(); got != "[0, 0, 1]" {
		t.Errorf("vec.cross = %s", got)
	}
	if got := getVal(t, in, "n").String(); got != "[0.6, 0.8]" {
		t.Errorf("vec.normalize = %s", got)
	}
}

func TestListNamespace(t *testing.T) {
	in := loadSrc(t, `let r = list.range(3)
let r2 = list.range(2, 8, 2)
let doubled = list.map([1, 2, 3], fn(x): return x * 2)
let odds = list.filter(list.range(6), fn(x): return math.mod(x, 2) == 1)
let total = list.reduce([1, 2, 3], fn(acc, x): return acc + x, 10)
let s = list.sum([1.5, 2.5])
let sorted = list.sort([3, 1, 2])
let rev = list.reverse([1, 2, 3])
let joined = list.join(["a", "b"], "-")
let cat = list.concat([1], [2, 3])
`)
	if got := getVal(t, in, "r").String(); got != "[0, 1, 2]" {
		t.Errorf("range = %s", got)
	}
	if got := getVal(t, in, "r2").String(); got != "[2, 4, 6]" {
		t.Errorf("stepped range = %s", got)
	}
	if got := getVal(t, in, "doubled").String(); got != "[2, 4, 6]" {
		t.Errorf("map = %s", got)
	}
	if got := getVal(t, in, "odds").String(); got != "[1, 3, 5]" {
		t.Errorf("filter = %s", got)
	}
	wantNum(t, in, "total", 16)
	wantNum(t, in, "s", 4)
	if got := getVal(t, in, "sorted").String(); got != "[1, 2, 3]" {
		t.Errorf("sort = %s", got)
	}
	if got := getVal(t, in, "rev").String(); got != "[3, 2, 1]" {
		t.Errorf("reverse = %s", got)
	}
	wantStr(t, in, "joined", "a-b")
	if got := getVal(t, in, "cat").String(); got != "[1, 2, 3]" {
		t.Errorf("concat = %s", got)
	}
}

func TestStrNamespace(t *testing.T) {
	in := loadSrc(t, `let up = str.upper("abc")
let tr = str.trim("  x  ")
let parts = str.split("a,b,c", ",")
let rep = str.replace("aaa", "a", "b")
let has = str.contains("hello", "ell")
let pre = str.starts_with("hello", "he")
let rpt = str.repeat("ab", 3)
`)
	wantStr(t, in, "up", "ABC")
	wantStr(t, in, "tr", "x")
	wantStr(t, in, "rep", "bbb")
	wantBool(t, in, "has", true)
	wantBool(t, in, "pre", true)
	wantStr(t, in, "rpt", "ababab")
	if got := getVal(t, in, "parts").String(); got != `["a", "b", "c"]` {
		t.Errorf("split = %s", got)
	}
}

func TestRandomNamespaceDeterministicWithSeed(t *testing.T) {
	run := func() (float64, float64, Value) {
		in := loadSrc(t, `random.seed(42)
let a = random.random()
let b = random.int(0, 100)
let p = random.pick(["x", "y", "z"])
`, WithRandomSeed(1))
		return getVal(t, in, "a").Num(), getVal(t, in, "b").Num(), getVal(t, in, "p")
	}
	a1, b1, p1 := run()
	a2, b2, p2 := run()
	if a1 != a2 || b1 != b2 || !p1.Equal(p2) {
		t.Error("seeded random sequences differ between runs")
	}
	if a1 < 0 || a1 >= 1 {
		t.Errorf("random.random() = %v, want [0,1)", a1)
	}
	if b1 < 0 || b1 >= 100 {
		t.Errorf("random.int(0, 100) = %v, want [0,100)", b1)
	}
}

func TestListMemberMethods(t *testing.T) {
	in := loadSrc(t, `let l = [1, 2, 3]
l.push(4)
let popped = l.pop()
let has = l.contains(2)
let idx = l.index_of(3)
let missing = l.index_of(99)
let joined = l.join(",")
let part = l.slice(1, 3)
let tail = l.slice(-2)
`)
	wantNum(t, in, "popped", 4)
	wantBool(t, in, "has", true)
	wantNum(t, in, "idx", 2)
	wantNum(t, in, "missing", -1)
	wantStr(t, in, "joined", "1,2,3")
	if got := getVal(t, in, "part").String(); got != "[2, 3]" {
		t.Errorf("slice = %s", got)
	}
	if got := getVal(t, in, "tail").String(); got != "[2, 3]" {
		t.Errorf("negative slice = %s", got)
	}
}

func TestStringMemberMethods(t *testing.T) {
	in := loadSrc(t, `let s = " Hello "
let up = s.trim().upper()
let words = "a b".split(" ")
let ok = "hello".ends_with("lo")
`)
	wantStr(t, in, "up", "HELLO")
	wantBool(t, in, "ok", true)
	if got := getVal(t, in, "words").String(); got != `["a", "b"]` {
		t.Errorf("split = %s", got)
	}
}

func TestBuiltinArityFault(t *testing.T) {
	wantRuntimeError(t, "sqrt()\n", "argument")
	wantRuntimeError(t, "sqrt(-1)\n", "negative")
	wantRuntimeError(t, "vec.add((1, 2), (1, 2, 3))\n", "dimensions")
}
