// builtins.go — native functions.
//
// Builtins are grouped by concern and installed into the global scope by
// New. Namespaces (vec, math, list, str, random) are ordinary map values
// whose entries are natives, so scripts can pass e.g. `math.sin` around
// like any other function.
package starlang

import (
	"math"
	"sort"
	"strings"
)

func native(name string, arity int, fn func(*Interp, []Value) Value) Value {
	return NativeOf(&Native{Name: name, Arity: arity, Fn: fn})
}

// ----- argument helpers -----

func argNum(in *Interp, name string, args []Value, i int) float64 {
	if i >= len(args) || args[i].Tag != VTNum {
		in.failHere("%s: argument %d must be a number", name, i+1)
	}
	return args[i].Num()
}

func argStr(in *Interp, name string, args []Value, i int) string {
	if i >= len(args) || args[i].Tag != VTStr {
		in.failHere("%s: argument %d must be a string", name, i+1)
	}
	return args[i].Str()
}

func argList(in *Interp, name string, args []Value, i int) *ListObject {
	if i >= len(args) || args[i].Tag != VTList {
		in.failHere("%s: argument %d must be a list", name, i+1)
	}
	return args[i].List()
}

func argCallable(in *Interp, name string, args []Value, i int) Value {
	if i >= len(args) || (args[i].Tag != VTFun && args[i].Tag != VTNative) {
		in.failHere("%s: argument %d must be a function", name, i+1)
	}
	return args[i]
}

func optNum(args []Value, i int, def float64) float64 {
	if i < len(args) && args[i].Tag == VTNum {
		return args[i].Num()
	}
	return def
}

// ----- core -----

func registerCoreBuiltins(in *Interp) {
	g := in.Global

	g.Define("print", native("print", -1, func(in *Interp, args []Value) Value {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = a.String()
		}
		in.Stdout.Write([]byte(strings.Join(parts, " ") + "\n"))
		return Null
	}))

	g.Define("length", native("length", 1, func(in *Interp, args []Value) Value {
		switch args[0].Tag {
		case VTStr:
			return Num(float64(len([]rune(args[0].Str()))))
		case VTList:
			return Num(float64(len(args[0].List().Elems)))
		case VTMap:
			return Num(float64(len(args[0].Map().Keys)))
		}
		in.failHere("length: argument must be a string, list, or map")
		return Null
	}))

	g.Define("typeof", native("typeof", 1, func(in *Interp, args []Value) Value {
		return Str(args[0].TypeName())
	}))

	g.Define("keys", native("keys", 1, func(in *Interp, args []Value) Value {
		switch args[0].Tag {
		case VTMap:
			keys := args[0].Map().Keys
			out := make([]Value, len(keys))
			for i, k := range keys {
				out[i] = Str(k)
			}
			return List(out...)
		case VTInstance:
			keys := args[0].Instance().Fields.Keys
			out := make([]Value, len(keys))
			for i, k := range keys {
				out[i] = Str(k)
			}
			return List(out...)
		}
		in.failHere("keys: argument must be a map or instance")
		return Null
	}))

	g.Define("values", native("values", 1, func(in *Interp, args []Value) Value {
		var m *MapObject
		switch args[0].Tag {
		case VTMap:
			m = args[0].Map()
		case VTInstance:
			m = args[0].Instance().Fields
		default:
			in.failHere("values: argument must be a map or instance")
		}
		out := make([]Value, len(m.Keys))
		for i, k := range m.Keys {
			out[i] = m.Entries[k]
		}
		return List(out...)
	}))

	g.Define("abs", native("abs", 1, func(in *Interp, args []Value) Value {
		return Num(math.Abs(argNum(in, "abs", args, 0)))
	}))
	g.Define("min", native("min", 2, func(in *Interp, args []Value) Value {
		out := argNum(in, "min", args, 0)
		for i := 1; i < len(args); i++ {
			out = math.Min(out, argNum(in, "min", args, i))
		}
		return Num(out)
	}))
	g.Define("max", native("max", 2, func(in *Interp, args []Value) Value {
		out := argNum(in, "max", args, 0)
		for i := 1; i < len(args); i++ {
			out = math.Max(out, argNum(in, "max", args, i))
		}
		return Num(out)
	}))
	g.Define("floor", native("floor", 1, func(in *Interp, args []Value) Value {
		return Num(math.Floor(argNum(in, "floor", args, 0)))
	}))
	g.Define("ceil", native("ceil", 1, func(in *Interp, args []Value) Value {
		return Num(math.Ceil(argNum(in, "ceil", args, 0)))
	}))
	g.Define("round", native("round", 1, func(in *Interp, args []Value) Value {
		return Num(math.Round(argNum(in, "round", args, 0)))
	}))
	g.Define("sqrt", native("sqrt", 1, func(in *Interp, args []Value) Value {
		f := argNum(in, "sqrt", args, 0)
		if f < 0 {
			in.failHere("sqrt: negative argument")
		}
		return Num(math.Sqrt(f))
	}))
	g.Define("pow", native("pow", 2, func(in *Interp, args []Value) Value {
		return Num(math.Pow(argNum(in, "pow", args, 0), argNum(in, "pow", args, 1)))
	}))
	g.Define("clamp", native("clamp", 3, func(in *Interp, args []Value) Value {
		v := argNum(in, "clamp", args, 0)
		lo := argNum(in, "clamp", args, 1)
		hi := argNum(in, "clamp", args, 2)
		return Num(math.Max(lo, math.Min(hi, v)))
	}))
	g.Define("lerp", native("lerp", 3, func(in *Interp, args []Value) Value {
		a := argNum(in, "lerp", args, 0)
		b := argNum(in, "lerp", args, 1)
		t := argNum(in, "lerp", args, 2)
		return Num(a + (b-a)*t)
	}))
}

// ----- math namespace -----

func modNumber(a, b float64) float64 {
	return math.Mod(a, b)
}

func registerMathBuiltins(in *Interp) {
	ns := NewMapObject()
	ns.Set("pi", Num(math.Pi))
	ns.Set("tau", Num(2*math.Pi))

	unary := func(name string, fn func(float64) float64) {
		ns.Set(name, native("math."+name, 1, func(in *Interp, args []Value) Value {
			return Num(fn(argNum(in, "math."+name, args, 0)))
		}))
	}
	unary("sin", math.Sin)
	unary("cos", math.Cos)
	unary("tan", math.Tan)
	unary("exp", math.Exp)
	unary("log", math.Log)
	unary("sign", func(f float64) float64 {
		if f > 0 {
			return 1
		}
		if f < 0 {
			return -1
		}
		return 0
	})

	ns.Set("atan2", native("math.atan2", 2, func(in *Interp, args []Value) Value {
		return Num(math.Atan2(argNum(in, "math.atan2", args, 0), argNum(in, "math.atan2", args, 1)))
	}))
	ns.Set("mod", native("math.mod", 2, func(in *Interp, args []Value) Value {
		return Num(modNumber(argNum(in, "math.mod", args, 0), argNum(in, "math.mod", args, 1)))
	}))

	in.Global.Define("math", MapOf(ns))
}

// ----- vec namespace -----

// vecNums asserts a list of numbers and returns its components.
func vecNums(in *Interp, name string, v Value) []float64 {
	if v.Tag != VTList {
		in.failHere("%s: expected a vector (list of numbers)", name)
	}
	elems := v.List().Elems
	out := make([]float64, len(elems))
	for i, e := range elems {
		if e.Tag != VTNum {
			in.failHere("%s: vector component %d is %s, not a number", name, i, e.TypeName())
		}
		out[i] = e.Num()
	}
	return out
}

func vecValue(comps []float64) Value {
	out := make([]Value, len(comps))
	for i, c := range comps {
		out[i] = Num(c)
	}
	return List(out...)
}

func sameDim(in *Interp, name string, a, b []float64) {
	if len(a) != len(b) {
		in.failHere("%s: vectors have different dimensions (%d and %d)", name, len(a), len(b))
	}
}

func registerVecBuiltins(in *Interp) {
	ns := NewMapObject()

	binOp := func(name string, fn func(a, b float64) float64) {
		full := "vec." + name
		ns.Set(name, native(full, 2, func(in *Interp, args []Value) Value {
			a := vecNums(in, full, args[0])
			b := vecNums(in, full, args[1])
			sameDim(in, full, a, b)
			out := make([]float64, len(a))
			for i := range a {
				out[i] = fn(a[i], b[i])
			}
			return vecValue(out)
		}))
	}
	binOp("add", func(a, b float64) float64 { return a + b })
	binOp("sub", func(a, b float64) float64 { return a - b })

	ns.Set("scale", native("vec.scale", 2, func(in *Interp, args []Value) Value {
		a := vecNums(in, "vec.scale", args[0])
		k := argNum(in, "vec.scale", args, 1)
		out := make([]float64, len(a))
		for i := range a {
			out[i] = a[i] * k
		}
		return vecValue(out)
	}))
	ns.Set("dot", native("vec.dot", 2, func(in *Interp, args []Value) Value {
		a := vecNums(in, "vec.dot", args[0])
		b := vecNums(in, "vec.dot", args[1])
		sameDim(in, "vec.dot", a, b)
		sum := 0.0
		for i := range a {
			sum += a[i] * b[i]
		}
		return Num(sum)
	}))
	ns.Set("cross", native("vec.cross", 2, func(in *Interp, args []Value) Value {
		a := vecNums(in, "vec.cross", args[0])
		b := vecNums(in, "vec.cross", args[1])
		if len(a) != 3 || len(b) != 3 {
			in.failHere("vec.cross: needs two 3-component vectors")
		}
		return vecValue([]float64{
			a[1]*b[2] - a[2]*b[1],
			a[2]*b[0] - a[0]*b[2],
			a[0]*b[1] - a[1]*b[0],
		})
	}))
	ns.Set("length", native("vec.length", 1, func(in *Interp, args []Value) Value {
		a := vecNums(in, "vec.length", args[0])
		sum := 0.0
		for _, c := range a {
			sum += c * c
		}
		return Num(math.Sqrt(sum))
	}))
	ns.Set("normalize", native("vec.normalize", 1, func(in *Interp, args []Value) Value {
		a := vecNums(in, "vec.normalize", args[0])
		sum := 0.0
		for _, c := range a {
			sum += c * c
		}
		n := math.Sqrt(sum)
		if n == 0 {
			in.failHere("vec.normalize: zero vector")
		}
		out := make([]float64, len(a))
		for i := range a {
			out[i] = a[i] / n
		}
		return vecValue(out)
	}))
	ns.Set("dist", native("vec.dist", 2, func(in *Interp, args []Value) Value {
		a := vecNums(in, "vec.dist", args[0])
		b := vecNums(in, "vec.dist", args[1])
		sameDim(in, "vec.dist", a, b)
		sum := 0.0
		for i := range a {
			d := a[i] - b[i]
			sum += d * d
		}
		return Num(math.Sqrt(sum))
	}))

	in.Global.Define("vec", MapOf(ns))
}

// ----- list namespace -----

func registerListBuiltins(in *Interp) {
	ns := NewMapObject()

	ns.Set("range", native("list.range", 1, func(in *Interp, args []Value) Value {
		// range(n), range(start, stop), range(start, stop, step)
		start, stop := 0.0, argNum(in, "list.range", args, 0)
		step := 1.0
		if len(args) >= 2 {
			start, stop = stop, argNum(in, "list.range", args, 1)
		}
		if len(args) >= 3 {
			step = argNum(in, "list.range", args, 2)
			if step == 0 {
				in.failHere("list.range: step must not be zero")
			}
		}
		var out []Value
		if step > 0 {
			for v := start; v < stop; v += step {
				out = append(out, Num(v))
			}
		} else {
			for v := start; v > stop; v += step {
				out = append(out, Num(v))
			}
		}
		return List(out...)
	}))

	ns.Set("map", native("list.map", 2, func(in *Interp, args []Value) Value {
		src := argList(in, "list.map", args, 0)
		fn := argCallable(in, "list.map", args, 1)
		out := make([]Value, len(src.Elems))
		for i, e := range src.Elems {
			out[i] = in.call(in.at, fn, []Value{e})
		}
		return List(out...)
	}))
	ns.Set("filter", native("list.filter", 2, func(in *Interp, args []Value) Value {
		src := argList(in, "list.filter", args, 0)
		fn := argCallable(in, "list.filter", args, 1)
		var out []Value
		for _, e := range src.Elems {
			if in.call(in.at, fn, []Value{e}).Truthy() {
				out = append(out, e)
			}
		}
		return List(out...)
	}))
	ns.Set("reduce", native("list.reduce", 3, func(in *Interp, args []Value) Value {
		src := argList(in, "list.reduce", args, 0)
		fn := argCallable(in, "list.reduce", args, 1)
		acc := args[2]
		for _, e := range src.Elems {
			acc = in.call(in.at, fn, []Value{acc, e})
		}
		return acc
	}))
	ns.Set("sum", native("list.sum", 1, func(in *Interp, args []Value) Value {
		src := argList(in, "list.sum", args, 0)
		sum := 0.0
		for i, e := range src.Elems {
			if e.Tag != VTNum {
				in.failHere("list.sum: element %d is %s, not a number", i, e.TypeName())
			}
			sum += e.Num()
		}
		return Num(sum)
	}))
	ns.Set("sort", native("list.sort", 1, func(in *Interp, args []Value) Value {
		src := argList(in, "list.sort", args, 0)
		out := append([]Value(nil), src.Elems...)
		bad := false
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i], out[j]
			switch {
			case a.Tag == VTNum && b.Tag == VTNum:
				return a.Num() < b.Num()
			case a.Tag == VTStr && b.Tag == VTStr:
				return a.Str() < b.Str()
			}
			bad = true
			return false
		})
		if bad {
			in.failHere("list.sort: elements must be all numbers or all strings")
		}
		return List(out...)
	}))
	ns.Set("reverse", native("list.reverse", 1, func(in *Interp, args []Value) Value {
		src := argList(in, "list.reverse", args, 0)
		out := make([]Value, len(src.Elems))
		for i, e := range src.Elems {
			out[len(out)-1-i] = e
		}
		return List(out...)
	}))
	ns.Set("join", native("list.join", 2, func(in *Interp, args []Value) Value {
		src := argList(in, "list.join", args, 0)
		sep := argStr(in, "list.join", args, 1)
		return Str(joinList(src, sep))
	}))
	ns.Set("concat", native("list.concat", 2, func(in *Interp, args []Value) Value {
		a := argList(in, "list.concat", args, 0)
		b := argList(in, "list.concat", args, 1)
		elems := append(append([]Value(nil), a.Elems...), b.Elems...)
		return ListOf(&ListObject{Elems: elems})
	}))

	in.Global.Define("list", MapOf(ns))
}

func joinList(lo *ListObject, sep string) string {
	parts := make([]string, len(lo.Elems))
	for i, e := range lo.Elems {
		parts[i] = e.String()
	}
	return strings.Join(parts, sep)
}

// ----- str namespace -----

func registerStrBuiltins(in *Interp) {
	ns := NewMapObject()

	str1 := func(name string, fn func(string) string) {
		ns.Set(name, native("str."+name, 1, func(in *Interp, args []Value) Value {
			return Str(fn(argStr(in, "str."+name, args, 0)))
		}))
	}
	str1("upper", strings.ToUpper)
	str1("lower", strings.ToLower)
	str1("trim", strings.TrimSpace)

	ns.Set("split", native("str.split", 2, func(in *Interp, args []Value) Value {
		return splitString(argStr(in, "str.split", args, 0), argStr(in, "str.split", args, 1))
	}))
	ns.Set("replace", native("str.replace", 3, func(in *Interp, args []Value) Value {
		return Str(strings.ReplaceAll(
			argStr(in, "str.replace", args, 0),
			argStr(in, "str.replace", args, 1),
			argStr(in, "str.replace", args, 2)))
	}))
	ns.Set("contains", native("str.contains", 2, func(in *Interp, args []Value) Value {
		return Bool(strings.Contains(argStr(in, "str.contains", args, 0), argStr(in, "str.contains", args, 1)))
	}))
	ns.Set("starts_with", native("str.starts_with", 2, func(in *Interp, args []Value) Value {
		return Bool(strings.HasPrefix(argStr(in, "str.starts_with", args, 0), argStr(in, "str.starts_with", args, 1)))
	}))
	ns.Set("ends_with", native("str.ends_with", 2, func(in *Interp, args []Value) Value {
		return Bool(strings.HasSuffix(argStr(in, "str.ends_with", args, 0), argStr(in, "str.ends_with", args, 1)))
	}))
	ns.Set("repeat", native("str.repeat", 2, func(in *Interp, args []Value) Value {
		n := int(argNum(in, "str.repeat", args, 1))
		if n < 0 {
			in.failHere("str.repeat: negative count")
		}
		return Str(strings.Repeat(argStr(in, "str.repeat", args, 0), n))
	}))

	in.Global.Define("str", MapOf(ns))
}

func splitString(s, sep string) Value {
	var parts []string
	if sep == "" {
		for _, r := range s {
			parts = append(parts, string(r))
		}
	} else {
		parts = strings.Split(s, sep)
	}
	out := make([]Value, len(parts))
	for i, p := range parts {
		out[i] = Str(p)
	}
	return List(out...)
}

// ----- random namespace -----

func registerRandomBuiltins(in *Interp) {
	ns := NewMapObject()

	ns.Set("seed", native("random.seed", 1, func(in *Interp, args []Value) Value {
		in.rng.Seed(int64(argNum(in, "random.seed", args, 0)))
		return Null
	}))
	ns.Set("random", native("random.random", 0, func(in *Interp, args []Value) Value {
		return Num(in.rng.Float64())
	}))
	ns.Set("range", native("random.range", 2, func(in *Interp, args []Value) Value {
		lo := argNum(in, "random.range", args, 0)
		hi := argNum(in, "random.range", args, 1)
		if hi < lo {
			in.failHere("random.range: upper bound below lower bound")
		}
		return Num(lo + in.rng.Float64()*(hi-lo))
	}))
	ns.Set("int", native("random.int", 2, func(in *Interp, args []Value) Value {
		lo := int(argNum(in, "random.int", args, 0))
		hi := int(argNum(in, "random.int", args, 1))
		if hi <= lo {
			in.failHere("random.int: upper bound must exceed lower bound")
		}
		return Num(float64(lo + in.rng.Intn(hi-lo)))
	}))
	ns.Set("pick", native("random.pick", 1, func(in *Interp, args []Value) Value {
		src := argList(in, "random.pick", args, 0)
		if len(src.Elems) == 0 {
			in.failHere("random.pick: empty list")
		}
		return src.Elems[in.rng.Intn(len(src.Elems))]
	}))

	in.Global.Define("random", MapOf(ns))
}

// ----- list member methods -----

// listMethod resolves `someList.name` to a native bound to that list.
func listMethod(in *Interp, lo *ListObject, name string) *Native {
	switch name {
	case "push":
		return &Native{Name: "push", Arity: 1, Fn: func(in *Interp, args []Value) Value {
			lo.Elems = append(lo.Elems, args...)
			return Num(float64(len(lo.Elems)))
		}}
	case "pop":
		return &Native{Name: "pop", Arity: 0, Fn: func(in *Interp, args []Value) Value {
			if len(lo.Elems) == 0 {
				in.failHere("pop: empty list")
			}
			last := lo.Elems[len(lo.Elems)-1]
			lo.Elems = lo.Elems[:len(lo.Elems)-1]
			return last
		}}
	case "contains":
		return &Native{Name: "contains", Arity: 1, Fn: func(in *Interp, args []Value) Value {
			for _, e := range lo.Elems {
				if e.Equal(args[0]) {
					return Bool(true)
				}
			}
			return Bool(false)
		}}
	case "index_of":
		return &Native{Name: "index_of", Arity: 1, Fn: func(in *Interp, args []Value) Value {
			for i, e := range lo.Elems {
				if e.Equal(args[0]) {
					return Num(float64(i))
				}
			}
			return Num(-1)
		}}
	case "join":
		return &Native{Name: "join", Arity: 1, Fn: func(in *Interp, args []Value) Value {
			return Str(joinList(lo, argStr(in, "join", args, 0)))
		}}
	case "slice":
		return &Native{Name: "slice", Arity: 1, Fn: func(in *Interp, args []Value) Value {
			start := int(argNum(in, "slice", args, 0))
			stop := int(optNum(args, 1, float64(len(lo.Elems))))
			n := len(lo.Elems)
			if start < 0 {
				start += n
			}
			if stop < 0 {
				stop += n
			}
			if start < 0 {
				start = 0
			}
			if stop > n {
				stop = n
			}
			if start > stop {
				start = stop
			}
			return List(append([]Value(nil), lo.Elems[start:stop]...)...)
		}}
	}
	return nil
}

// stringMethod resolves `someString.name` to a native bound to that string.
func stringMethod(in *Interp, s, name string) *Native {
	switch name {
	case "upper":
		return &Native{Name: "upper", Arity: 0, Fn: func(in *Interp, args []Value) Value {
			return Str(strings.ToUpper(s))
		}}
	case "lower":
		return &Native{Name: "lower", Arity: 0, Fn: func(in *Interp, args []Value) Value {
			return Str(strings.ToLower(s))
		}}
	case "trim":
		return &Native{Name: "trim", Arity: 0, Fn: func(in *Interp, args []Value) Value {
			return Str(strings.TrimSpace(s))
		}}
	case "split":
		return &Native{Name: "split", Arity: 1, Fn: func(in *Interp, args []Value) Value {
			return splitString(s, argStr(in, "split", args, 0))
		}}
	case "contains":
		return &Native{Name: "contains", Arity: 1, Fn: func(in *Interp, args []Value) Value {
			return Bool(strings.Contains(s, argStr(in, "contains", args, 0)))
		}}
	case "replace":
		return &Native{Name: "replace", Arity: 2, Fn: func(in *Interp, args []Value) Value {
			return Str(strings.ReplaceAll(s, argStr(in, "replace", args, 0), argStr(in, "replace", args, 1)))
		}}
	case "starts_with":
		return &Native{Name: "starts_with", Arity: 1, Fn: func(in *Interp, args []Value) Value {
			return Bool(strings.HasPrefix(s, argStr(in, "starts_with", args, 0)))
		}}
	case "ends_with":
		return &Native{Name: "ends_with", Arity: 1, Fn: func(in *Interp, args []Value) Value {
			return Bool(strings.HasSuffix(s, argStr(in, "ends_with", args, 0)))
		}}
	}
	return nil
}
