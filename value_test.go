package starlang

import "testing"

func TestTruthinessTable(t *testing.T) {
	falsy := []Value{Null, Bool(false), Num(0), Str(""), List()}
	for _, v := range falsy {
		if v.Truthy() {
			t.Errorf("%s %s should be falsy", v.TypeName(), v)
		}
	}
	emptyMap := MapOf(NewMapObject())
	truthy := []Value{Str("0"), List(Num(0)), emptyMap, Bool(true), Num(-1)}
	for _, v := range truthy {
		if !v.Truthy() {
			t.Errorf("%s %s should be truthy", v.TypeName(), v)
		}
	}
}

func TestDeepEquality(t *testing.T) {
	a := List(Num(1), List(Num(2), Str("x")))
	b := List(Num(1), List(Num(2), Str("x")))
	if !a.Equal(b) {
		t.Error("structurally equal lists compare unequal")
	}

	m1, m2 := NewMapObject(), NewMapObject()
	m1.Set("a", Num(1))
	m1.Set("b", List(Num(2)))
	// Different insertion order must not matter.
	m2.Set("b", List(Num(2)))
	m2.Set("a", Num(1))
	if !MapOf(m1).Equal(MapOf(m2)) {
		t.Error("structurally equal maps compare unequal")
	}

	if Num(1).Equal(Str("1")) {
		t.Error("number equals string")
	}
	if List(Num(1)).Equal(List(Num(1), Num(2))) {
		t.Error("lists of different lengths compare equal")
	}
}

func TestNumberFormatting(t *testing.T) {
	cases := map[float64]string{
		3:     "3",
		3.5:   "3.5",
		-0.25: "-0.25",
		100:   "100",
	}
	for f, want := range cases {
		if got := Num(f).String(); got != want {
			t.Errorf("Num(%v).String() = %q, want %q", f, got, want)
		}
	}
}

func TestValueRendering(t *testing.T) {
	m := NewMapObject()
	m.Set("name", Str("zed"))
	m.Set("tags", List(Str("a"), Num(2)))
	if got, want := MapOf(m).String(), `{name: "zed", tags: ["a", 2]}`; got != want {
		t.Errorf("map rendering = %q, want %q", got, want)
	}
	// Top-level strings print raw.
	if got := Str("hi").String(); got != "hi" {
		t.Errorf("string rendering = %q, want %q", got, "hi")
	}
}

func TestMapObjectOrder(t *testing.T) {
	m := NewMapObject()
	m.Set("b", Num(1))
	m.Set("a", Num(2))
	m.Set("b", Num(3)) // overwrite keeps position
	if len(m.Keys) != 2 || m.Keys[0] != "b" || m.Keys[1] != "a" {
		t.Fatalf("keys = %v, want [b a]", m.Keys)
	}
	m.Delete("b")
	if len(m.Keys) != 1 || m.Keys[0] != "a" {
		t.Fatalf("keys after delete = %v, want [a]", m.Keys)
	}
}
