// interp.go — the tree-walking interpreter.
//
// Execution discipline: internal faults are raised with panic(rtErr{...})
// and recovered exactly once, at the public API boundary (Load, Reload,
// Emit, Tick), where they surface as *RuntimeError. Control flow inside a
// function body travels as an explicit execResult; the return signal is
// absorbed at every call and handler boundary and never crosses it.
package starlang

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"
)

// Version of the language implementation.
const Version = "0.1.0"

// Interp is one interpreter instance. All registries live on the struct;
// two interpreters never share state.
type Interp struct {
	Global *Env

	opts      Options
	handlers  []*handler
	listeners map[string][]listenerEntry
	queue     []queuedEvent
	draining  bool
	instances []*Instance

	file string // file id of the source currently executing
	at   Pos    // position of the node currently evaluating
	rng  *rand.Rand

	// Stdout receives print() output. Defaults to os.Stdout.
	Stdout io.Writer
}

// New builds an interpreter with builtins installed.
func New(opts ...Option) *Interp {
	o := DefaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	seed := o.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	in := &Interp{
		Global:    NewEnv(nil),
		opts:      o,
		listeners: map[string][]listenerEntry{},
		rng:       rand.New(rand.NewSource(seed)),
		Stdout:    os.Stdout,
	}
	registerCoreBuiltins(in)
	registerMathBuiltins(in)
	registerVecBuiltins(in)
	registerListBuiltins(in)
	registerStrBuiltins(in)
	registerRandomBuiltins(in)
	return in
}

// Load parses src and executes it under the given file id, then drains any
// events the script emitted.
func (in *Interp) Load(src, file string) (err error) {
	prog, perr := Parse(src, file)
	if perr != nil {
		return perr
	}
	defer in.capture(&err)
	in.runProgram(prog, file)
	in.drain()
	return nil
}

// Eval is Load plus the value of the final expression statement, for REPL
// echo. Non-expression endings yield null.
func (in *Interp) Eval(src, file string) (v Value, err error) {
	v = Null
	prog, perr := Parse(src, file)
	if perr != nil {
		return Null, perr
	}
	defer in.capture(&err)

	prevFile := in.file
	in.file = file
	defer func() { in.file = prevFile }()
	for _, st := range prog.Body {
		if es, ok := st.(*ExprStmt); ok {
			v = in.eval(es.X, in.Global)
			continue
		}
		v = Null
		if res := in.execStmt(st, in.Global); res.ctrl == ctrlReturn {
			in.fail(st.Position(), "'return' outside function")
		}
	}
	in.drain()
	return v, nil
}

// Get reads a global binding.
func (in *Interp) Get(name string) (Value, bool) {
	return in.Global.Get(name)
}

// Set writes a global binding.
func (in *Interp) Set(name string, v Value) {
	in.Global.Define(name, v)
}

// Tick emits the frame event (default "tick") with {dt: dt}.
func (in *Interp) Tick(dt float64) error {
	data := NewMapObject()
	data.Set("dt", Num(dt))
	return in.Emit(in.opts.TickEvent, MapOf(data))
}

// runProgram executes a parsed file body in the global scope.
func (in *Interp) runProgram(prog *Program, file string) {
	prevFile := in.file
	in.file = file
	defer func() { in.file = prevFile }()
	for _, st := range prog.Body {
		res := in.execStmt(st, in.Global)
		if res.ctrl == ctrlReturn {
			in.fail(st.Position(), "'return' outside function")
		}
	}
}

// ----- fault plumbing -----

// rtErr wraps a RuntimeError for transport by panic.
type rtErr struct{ err *RuntimeError }

func (in *Interp) fail(pos Pos, format string, args ...interface{}) {
	panic(rtErr{&RuntimeError{
		File: in.file,
		Line: pos.Line,
		Col:  pos.Col,
		Msg:  fmt.Sprintf(format, args...),
	}})
}

// failHere raises a fault at the position of the node currently evaluating.
// Natives use it since they have no syntax node of their own.
func (in *Interp) failHere(format string, args ...interface{}) {
	in.fail(in.at, format, args...)
}

// capture converts an in-flight rtErr panic into the returned error.
// Foreign panics pass through.
func (in *Interp) capture(err *error) {
	if r := recover(); r != nil {
		re, ok := r.(rtErr)
		if !ok {
			panic(r)
		}
		*err = re.err
	}
}

// ----- statement execution -----

type ctrlKind uint8

const (
	ctrlNormal ctrlKind = iota
	ctrlReturn
)

// execResult is the completion of a statement: either normal, or a return
// carrying its value up to the nearest call boundary.
type execResult struct {
	ctrl  ctrlKind
	value Value
}

var normal = execResult{ctrl: ctrlNormal, value: Null}

func (in *Interp) execBlock(b *BlockStmt, env *Env) execResult {
	for _, st := range b.Stmts {
		if res := in.execStmt(st, env); res.ctrl != ctrlNormal {
			return res
		}
	}
	return normal
}

func (in *Interp) execStmt(st Stmt, env *Env) execResult {
	in.at = st.Position()
	switch s := st.(type) {
	case *LetStmt:
		env.Define(s.Name, in.eval(s.Value, env))
	case *SetStmt:
		in.assign(s.Target, in.eval(s.Value, env), env)
	case *FnStmt:
		env.Define(s.Name, FunOf(&Function{Name: s.Name, Params: s.Params, Body: s.Body, Env: env}))
	case *IfStmt:
		if in.eval(s.Cond, env).Truthy() {
			return in.execBlock(s.Then, NewEnv(env))
		}
		switch alt := s.Else.(type) {
		case nil:
		case *BlockStmt:
			return in.execBlock(alt, NewEnv(env))
		default:
			return in.execStmt(alt, env)
		}
	case *ForStmt:
		return in.execFor(s, env)
	case *WhileStmt:
		return in.execWhile(s, env)
	case *MatchStmt:
		return in.execMatch(s, env)
	case *ReturnStmt:
		v := Null
		if s.Value != nil {
			v = in.eval(s.Value, env)
		}
		return execResult{ctrl: ctrlReturn, value: v}
	case *OnStmt:
		in.registerHandler(s, env)
	case *EmitStmt:
		name := in.evalEventName(s.Event, env)
		data := Null
		if s.Data != nil {
			data = in.eval(s.Data, env)
		}
		in.enqueue(name, data)
	case *SchemaStmt:
		in.execSchema(s, env)
	case *InstanceStmt:
		in.execInstance(s, env)
	case *ImportStmt:
		// Recognized, never executed.
	case *ExprStmt:
		in.eval(s.X, env)
	case *BlockStmt:
		return in.execBlock(s, NewEnv(env))
	default:
		in.fail(st.Position(), "internal: unhandled statement node %T", st)
	}
	return normal
}

func (in *Interp) checkLoop(pos Pos, iterations int) {
	if max := in.opts.MaxLoopIterations; max > 0 && iterations > max {
		in.fail(pos, "loop exceeded %d iterations", max)
	}
}

func (in *Interp) execFor(s *ForStmt, env *Env) execResult {
	iter := in.eval(s.Iter, env)
	scope := NewEnv(env)
	n := 0
	step := func(v Value) (execResult, bool) {
		n++
		in.checkLoop(s.Pos_, n)
		scope.Define(s.Name, v)
		res := in.execBlock(s.Body, NewEnv(scope))
		return res, res.ctrl != ctrlNormal
	}
	switch iter.Tag {
	case VTList:
		for _, e := range iter.List().Elems {
			if res, stop := step(e); stop {
				return res
			}
		}
	case VTMap:
		for _, k := range iter.Map().Keys {
			if res, stop := step(Str(k)); stop {
				return res
			}
		}
	case VTStr:
		for _, r := range iter.Str() {
			if res, stop := step(Str(string(r))); stop {
				return res
			}
		}
	default:
		in.fail(s.Pos_, "cannot iterate over %s", iter.TypeName())
	}
	return normal
}

func (in *Interp) execWhile(s *WhileStmt, env *Env) execResult {
	n := 0
	for in.eval(s.Cond, env).Truthy() {
		n++
		in.checkLoop(s.Pos_, n)
		if res := in.execBlock(s.Body, NewEnv(env)); res.ctrl != ctrlNormal {
			return res
		}
	}
	return normal
}

func (in *Interp) execMatch(s *MatchStmt, env *Env) execResult {
	subject := in.eval(s.Subject, env)
	for i := range s.Cases {
		c := &s.Cases[i]
		scope := NewEnv(env)
		if !in.matchPattern(c.Pattern, subject, scope) {
			continue
		}
		if c.Guard != nil && !in.eval(c.Guard, scope).Truthy() {
			continue
		}
		return in.execBlock(c.Body, scope)
	}
	return normal
}

// matchPattern reports whether pat matches v, binding names into env.
// Bindings from a failed list sub-match may remain; the case is skipped
// and its scope discarded, so they are never observable.
func (in *Interp) matchPattern(pat Pattern, v Value, env *Env) bool {
	switch p := pat.(type) {
	case *WildcardPattern:
		return true
	case *BindPattern:
		env.Define(p.Name, v)
		return true
	case *LiteralPattern:
		return in.eval(p.Value, env).Equal(v)
	case *ListPattern:
		if v.Tag != VTList {
			return false
		}
		elems := v.List().Elems
		if len(elems) != len(p.Elems) {
			return false
		}
		for i, sub := range p.Elems {
			if !in.matchPattern(sub, elems[i], env) {
				return false
			}
		}
		return true
	}
	return false
}

// ----- assignment -----

func (in *Interp) assign(target Expr, v Value, env *Env) {
	switch t := target.(type) {
	case *IdentExpr:
		env.Assign(t.Name, v)
	case *MemberExpr:
		in.assignMember(t.Pos_, in.eval(t.Obj, env), t.Name, v)
	case *IndexExpr:
		in.assignIndex(t.Pos_, in.eval(t.Obj, env), in.eval(t.Index, env), v)
	case *ReactiveExpr:
		in.assignPath(t, v)
	default:
		in.fail(target.Position(), "invalid assignment target")
	}
}

func (in *Interp) assignMember(pos Pos, obj Value, name string, v Value) {
	switch obj.Tag {
	case VTInstance:
		inst := obj.Instance()
		inst.Fields.Set(name, v)
		inst.Dirty[name] = true
	case VTMap:
		obj.Map().Set(name, v)
	case VTNull:
		in.fail(pos, "cannot set member %q on null", name)
	default:
		in.fail(pos, "cannot set member %q on %s", name, obj.TypeName())
	}
}

func (in *Interp) assignIndex(pos Pos, obj, idx, v Value) {
	switch obj.Tag {
	case VTList:
		if idx.Tag != VTNum {
			in.fail(pos, "list index must be a number, got %s", idx.TypeName())
		}
		lo := obj.List()
		i := int(idx.Num())
		if i < 0 || i >= len(lo.Elems) {
			in.fail(pos, "list index %d out of range (length %d)", i, len(lo.Elems))
		}
		lo.Elems[i] = v
	case VTMap:
		if idx.Tag != VTStr {
			in.fail(pos, "map key must be a string, got %s", idx.TypeName())
		}
		obj.Map().Set(idx.Str(), v)
	case VTInstance:
		if idx.Tag != VTStr {
			in.fail(pos, "instance field name must be a string, got %s", idx.TypeName())
		}
		in.assignMember(pos, obj, idx.Str(), v)
	case VTNull:
		in.fail(pos, "cannot index null")
	default:
		in.fail(pos, "cannot index %s", obj.TypeName())
	}
}

// assignPath writes through a $a.b.c reference rooted at the global scope.
func (in *Interp) assignPath(t *ReactiveExpr, v Value) {
	if len(t.Path) == 1 {
		in.Global.Assign(t.Path[0], v)
		return
	}
	cur, ok := in.Global.Get(t.Path[0])
	if !ok {
		in.fail(t.Pos_, "undefined variable %q", t.Path[0])
	}
	for _, name := range t.Path[1 : len(t.Path)-1] {
		cur = in.member(t.Pos_, cur, name)
	}
	in.assignMember(t.Pos_, cur, t.Path[len(t.Path)-1], v)
}

// ----- expression evaluation -----

func (in *Interp) eval(e Expr, env *Env) Value {
	in.at = e.Position()
	switch x := e.(type) {
	case *NumberLit:
		return Num(x.Value)
	case *StringLit:
		return Str(x.Value)
	case *BoolLit:
		return Bool(x.Value)
	case *NullLit:
		return Null
	case *IdentExpr:
		v, ok := env.Get(x.Name)
		if !ok {
			in.fail(x.Pos_, "undefined variable %q", x.Name)
		}
		return v
	case *VectorLit:
		return in.evalList(x.Elems, env)
	case *ListLit:
		return in.evalList(x.Elems, env)
	case *MapLit:
		m := NewMapObject()
		for i, k := range x.Keys {
			m.Set(k, in.eval(x.Vals[i], env))
		}
		return MapOf(m)
	case *MemberExpr:
		return in.member(x.Pos_, in.eval(x.Obj, env), x.Name)
	case *IndexExpr:
		return in.index(x.Pos_, in.eval(x.Obj, env), in.eval(x.Index, env))
	case *CallExpr:
		return in.evalCall(x, env)
	case *BinaryExpr:
		return in.evalBinary(x, env)
	case *UnaryExpr:
		return in.evalUnary(x, env)
	case *CondExpr:
		if in.eval(x.Cond, env).Truthy() {
			return in.eval(x.Then, env)
		}
		return in.eval(x.Else, env)
	case *LambdaExpr:
		return FunOf(&Function{Params: x.Params, Body: x.Body, Env: env})
	case *ReactiveExpr:
		return in.evalPath(x)
	}
	in.fail(e.Position(), "internal: unhandled expression node %T", e)
	return Null
}

func (in *Interp) evalList(elems []Expr, env *Env) Value {
	lo := &ListObject{Elems: make([]Value, len(elems))}
	for i, e := range elems {
		lo.Elems[i] = in.eval(e, env)
	}
	return ListOf(lo)
}

func (in *Interp) evalPath(x *ReactiveExpr) Value {
	cur, ok := in.Global.Get(x.Path[0])
	if !ok {
		in.fail(x.Pos_, "undefined variable %q", x.Path[0])
	}
	for _, name := range x.Path[1:] {
		cur = in.member(x.Pos_, cur, name)
	}
	return cur
}

// member resolves obj.name. Instances expose fields then methods; maps
// yield null for missing keys; lists and strings expose their method sets.
func (in *Interp) member(pos Pos, obj Value, name string) Value {
	switch obj.Tag {
	case VTInstance:
		inst := obj.Instance()
		if v, ok := inst.Fields.Get(name); ok {
			return v
		}
		if m, ok := inst.Schema.Methods[name]; ok {
			return bindMethod(m, inst)
		}
		in.fail(pos, "%s has no field or method %q", inst.Schema.Name, name)
	case VTMap:
		if v, ok := obj.Map().Get(name); ok {
			return v
		}
		return Null
	case VTList:
		if m := listMethod(in, obj.List(), name); m != nil {
			return NativeOf(m)
		}
		in.fail(pos, "list has no method %q", name)
	case VTStr:
		if m := stringMethod(in, obj.Str(), name); m != nil {
			return NativeOf(m)
		}
		in.fail(pos, "string has no method %q", name)
	case VTNull:
		in.fail(pos, "cannot access member %q of null", name)
	}
	in.fail(pos, "cannot access member %q of %s", name, obj.TypeName())
	return Null
}

func (in *Interp) index(pos Pos, obj, idx Value) Value {
	switch obj.Tag {
	case VTList:
		if idx.Tag != VTNum {
			in.fail(pos, "list index must be a number, got %s", idx.TypeName())
		}
		elems := obj.List().Elems
		i := int(idx.Num())
		if i < 0 || i >= len(elems) {
			in.fail(pos, "list index %d out of range (length %d)", i, len(elems))
		}
		return elems[i]
	case VTMap:
		if idx.Tag != VTStr {
			in.fail(pos, "map key must be a string, got %s", idx.TypeName())
		}
		if v, ok := obj.Map().Get(idx.Str()); ok {
			return v
		}
		return Null
	case VTStr:
		if idx.Tag != VTNum {
			in.fail(pos, "string index must be a number, got %s", idx.TypeName())
		}
		runes := []rune(obj.Str())
		i := int(idx.Num())
		if i < 0 || i >= len(runes) {
			in.fail(pos, "string index %d out of range (length %d)", i, len(runes))
		}
		return Str(string(runes[i]))
	case VTInstance:
		if idx.Tag != VTStr {
			in.fail(pos, "instance field name must be a string, got %s", idx.TypeName())
		}
		return in.member(pos, obj, idx.Str())
	case VTNull:
		in.fail(pos, "cannot index null")
	}
	in.fail(pos, "cannot index %s", obj.TypeName())
	return Null
}

func (in *Interp) evalCall(x *CallExpr, env *Env) Value {
	callee := in.eval(x.Callee, env)
	args := make([]Value, len(x.Args))
	for i, a := range x.Args {
		args[i] = in.eval(a, env)
	}
	in.at = x.Pos_
	return in.call(x.Pos_, callee, args)
}

// call invokes a function or native value.
func (in *Interp) call(pos Pos, callee Value, args []Value) Value {
	switch callee.Tag {
	case VTFun:
		return in.callFunction(callee.Fun(), args)
	case VTNative:
		n := callee.Native()
		if n.Arity >= 0 && len(args) < n.Arity {
			in.fail(pos, "%s expects %d argument(s), got %d", n.Name, n.Arity, len(args))
		}
		return n.Fn(in, args)
	}
	in.fail(pos, "value of type %s is not callable", callee.TypeName())
	return Null
}

// callFunction runs f in a fresh frame chained to its closure environment.
// Missing arguments take declared defaults (evaluated in the closure env)
// or null; extra arguments are dropped. A return statement anywhere in the
// body completes the call; with no return the call yields null.
func (in *Interp) callFunction(f *Function, args []Value) Value {
	frame := NewEnv(f.Env)
	for i, p := range f.Params {
		switch {
		case i < len(args):
			frame.Define(p.Name, args[i])
		case p.Default != nil:
			frame.Define(p.Name, in.eval(p.Default, f.Env))
		default:
			frame.Define(p.Name, Null)
		}
	}
	res := in.execBlock(f.Body, frame)
	if res.ctrl == ctrlReturn {
		return res.value
	}
	return Null
}

func (in *Interp) evalUnary(x *UnaryExpr, env *Env) Value {
	v := in.eval(x.Operand, env)
	switch x.Op {
	case NOT:
		return Bool(!v.Truthy())
	case MINUS:
		if v.Tag != VTNum {
			in.fail(x.Pos_, "cannot negate %s", v.TypeName())
		}
		return Num(-v.Num())
	}
	in.fail(x.Pos_, "internal: unhandled unary operator")
	return Null
}

func (in *Interp) evalBinary(x *BinaryExpr, env *Env) Value {
	// and/or short-circuit and yield the deciding operand.
	if x.Op == AND {
		left := in.eval(x.Left, env)
		if !left.Truthy() {
			return left
		}
		return in.eval(x.Right, env)
	}
	if x.Op == OR {
		left := in.eval(x.Left, env)
		if left.Truthy() {
			return left
		}
		return in.eval(x.Right, env)
	}

	left := in.eval(x.Left, env)
	right := in.eval(x.Right, env)
	switch x.Op {
	case EQ:
		return Bool(left.Equal(right))
	case NEQ:
		return Bool(!left.Equal(right))
	case PLUS:
		if left.Tag == VTStr || right.Tag == VTStr {
			return Str(left.String() + right.String())
		}
		if left.Tag == VTList && right.Tag == VTList {
			elems := append(append([]Value(nil), left.List().Elems...), right.List().Elems...)
			return ListOf(&ListObject{Elems: elems})
		}
		return Num(in.numOperand(x.Pos_, "+", left) + in.numOperand(x.Pos_, "+", right))
	case MINUS:
		return Num(in.numOperand(x.Pos_, "-", left) - in.numOperand(x.Pos_, "-", right))
	case MULT:
		return Num(in.numOperand(x.Pos_, "*", left) * in.numOperand(x.Pos_, "*", right))
	case DIV:
		l, r := in.numOperand(x.Pos_, "/", left), in.numOperand(x.Pos_, "/", right)
		if r == 0 {
			in.fail(x.Pos_, "division by zero")
		}
		return Num(l / r)
	case MOD:
		l, r := in.numOperand(x.Pos_, "%", left), in.numOperand(x.Pos_, "%", right)
		if r == 0 {
			in.fail(x.Pos_, "division by zero")
		}
		return Num(modNumber(l, r))
	case LESS, LESS_EQ, GREATER, GREATER_EQ:
		return in.compare(x.Pos_, x.Op, left, right)
	}
	in.fail(x.Pos_, "internal: unhandled binary operator")
	return Null
}

func (in *Interp) numOperand(pos Pos, op string, v Value) float64 {
	if v.Tag != VTNum {
		in.fail(pos, "operator %q needs numbers, got %s", op, v.TypeName())
	}
	return v.Num()
}

// compare orders two numbers or two strings.
func (in *Interp) compare(pos Pos, op TokenType, left, right Value) Value {
	var lt, eq bool
	switch {
	case left.Tag == VTNum && right.Tag == VTNum:
		lt, eq = left.Num() < right.Num(), left.Num() == right.Num()
	case left.Tag == VTStr && right.Tag == VTStr:
		lt, eq = left.Str() < right.Str(), left.Str() == right.Str()
	default:
		in.fail(pos, "cannot compare %s with %s", left.TypeName(), right.TypeName())
	}
	switch op {
	case LESS:
		return Bool(lt)
	case LESS_EQ:
		return Bool(lt || eq)
	case GREATER:
		return Bool(!lt && !eq)
	default:
		return Bool(!lt)
	}
}
