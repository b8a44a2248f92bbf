// value.go — runtime values for StarLang.
//
// Value is a small tagged union. Scalars (null, bool, number, string) are
// immutable and compared by content. Lists and maps are heap objects shared
// by reference, so passing one into a function lets the callee mutate it.
package starlang

import (
	"strconv"
	"strings"
)

// ValueTag discriminates the variants of Value.
type ValueTag uint8

const (
	VTNull ValueTag = iota
	VTBool
	VTNum
	VTStr
	VTList
	VTMap
	VTFun
	VTNative
	VTSchema
	VTInstance
)

// Value is one runtime value. Data holds the variant payload:
// bool, float64, string, *ListObject, *MapObject, *Function, *Native,
// *Schema, or *Instance. Null carries nil.
type Value struct {
	Tag  ValueTag
	Data interface{}
}

// ListObject is a mutable, shared list.
type ListObject struct {
	Elems []Value
}

// MapObject is a mutable, shared map that remembers insertion order.
type MapObject struct {
	Keys    []string
	Entries map[string]Value
}

// NewMapObject returns an empty ordered map.
func NewMapObject() *MapObject {
	return &MapObject{Entries: map[string]Value{}}
}

// Get looks up a key.
func (m *MapObject) Get(key string) (Value, bool) {
	v, ok := m.Entries[key]
	return v, ok
}

// Set inserts or overwrites a key, preserving first-insertion order.
func (m *MapObject) Set(key string, v Value) {
	if _, ok := m.Entries[key]; !ok {
		m.Keys = append(m.Keys, key)
	}
	m.Entries[key] = v
}

// Delete removes a key if present.
func (m *MapObject) Delete(key string) {
	if _, ok := m.Entries[key]; !ok {
		return
	}
	delete(m.Entries, key)
	for i, k := range m.Keys {
		if k == key {
			m.Keys = append(m.Keys[:i], m.Keys[i+1:]...)
			break
		}
	}
}

// Function is a user-defined function or schema method closing over Env.
type Function struct {
	Name   string // "" for lambdas
	Params []Param
	Body   *BlockStmt
	Env    *Env
}

// Native is a function implemented in Go. Arity < 0 means variadic;
// otherwise the minimum argument count (missing slots are not padded).
type Native struct {
	Name  string
	Arity int
	Fn    func(in *Interp, args []Value) Value
}

// ----- constructors -----

// Null is the null value.
var Null = Value{Tag: VTNull}

func Bool(b bool) Value            { return Value{Tag: VTBool, Data: b} }
func Num(f float64) Value          { return Value{Tag: VTNum, Data: f} }
func Str(s string) Value           { return Value{Tag: VTStr, Data: s} }
func List(elems ...Value) Value    { return Value{Tag: VTList, Data: &ListObject{Elems: elems}} }
func ListOf(lo *ListObject) Value  { return Value{Tag: VTList, Data: lo} }
func MapOf(mo *MapObject) Value    { return Value{Tag: VTMap, Data: mo} }
func FunOf(f *Function) Value      { return Value{Tag: VTFun, Data: f} }
func NativeOf(n *Native) Value     { return Value{Tag: VTNative, Data: n} }
func SchemaOf(s *Schema) Value     { return Value{Tag: VTSchema, Data: s} }
func InstanceOf(i *Instance) Value { return Value{Tag: VTInstance, Data: i} }

// ----- payload accessors (caller checks Tag first) -----

func (v Value) Bool() bool          { return v.Data.(bool) }
func (v Value) Num() float64        { return v.Data.(float64) }
func (v Value) Str() string         { return v.Data.(string) }
func (v Value) List() *ListObject   { return v.Data.(*ListObject) }
func (v Value) Map() *MapObject     { return v.Data.(*MapObject) }
func (v Value) Fun() *Function      { return v.Data.(*Function) }
func (v Value) Native() *Native     { return v.Data.(*Native) }
func (v Value) Schema() *Schema     { return v.Data.(*Schema) }
func (v Value) Instance() *Instance { return v.Data.(*Instance) }

// TypeName is the name reported by typeof().
func (v Value) TypeName() string {
	switch v.Tag {
	case VTNull:
		return "null"
	case VTBool:
		return "bool"
	case VTNum:
		return "number"
	case VTStr:
		return "string"
	case VTList:
		return "list"
	case VTMap:
		return "map"
	case VTFun, VTNative:
		return "function"
	case VTSchema:
		return "schema"
	case VTInstance:
		return "instance"
	}
	return "unknown"
}

// Truthy reports the boolean coercion of v: null, false, 0, "" and the
// empty list are false; everything else, including an empty map, is true.
func (v Value) Truthy() bool {
	switch v.Tag {
	case VTNull:
		return false
	case VTBool:
		return v.Bool()
	case VTNum:
		return v.Num() != 0
	case VTStr:
		return v.Str() != ""
	case VTList:
		return len(v.List().Elems) > 0
	}
	return true
}

// Equal is deep structural equality. Lists and maps compare elementwise;
// functions, schemas and instances compare by identity.
func (a Value) Equal(b Value) bool {
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case VTNull:
		return true
	case VTBool:
		return a.Bool() == b.Bool()
	case VTNum:
		return a.Num() == b.Num()
	case VTStr:
		return a.Str() == b.Str()
	case VTList:
		la, lb := a.List(), b.List()
		if la == lb {
			return true
		}
		if len(la.Elems) != len(lb.Elems) {
			return false
		}
		for i := range la.Elems {
			if !la.Elems[i].Equal(lb.Elems[i]) {
				return false
			}
		}
		return true
	case VTMap:
		ma, mb := a.Map(), b.Map()
		if ma == mb {
			return true
		}
		if len(ma.Entries) != len(mb.Entries) {
			return false
		}
		for k, va := range ma.Entries {
			vb, ok := mb.Entries[k]
			if !ok || !va.Equal(vb) {
				return false
			}
		}
		return true
	}
	return a.Data == b.Data
}

// String renders v for print() and the REPL. Top-level strings are raw;
// strings nested in lists and maps are quoted.
func (v Value) String() string {
	var sb strings.Builder
	writeValue(&sb, v, false)
	return sb.String()
}

func writeValue(sb *strings.Builder, v Value, quoted bool) {
	switch v.Tag {
	case VTNull:
		sb.WriteString("null")
	case VTBool:
		sb.WriteString(strconv.FormatBool(v.Bool()))
	case VTNum:
		sb.WriteString(formatNumber(v.Num()))
	case VTStr:
		if quoted {
			sb.WriteString(strconv.Quote(v.Str()))
		} else {
			sb.WriteString(v.Str())
		}
	case VTList:
		sb.WriteByte('[')
		for i, e := range v.List().Elems {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeValue(sb, e, true)
		}
		sb.WriteByte(']')
	case VTMap:
		m := v.Map()
		sb.WriteByte('{')
		for i, k := range m.Keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(k)
			sb.WriteString(": ")
			writeValue(sb, m.Entries[k], true)
		}
		sb.WriteByte('}')
	case VTFun:
		f := v.Fun()
		if f.Name != "" {
			sb.WriteString("<fn " + f.Name + ">")
		} else {
			sb.WriteString("<fn>")
		}
	case VTNative:
		sb.WriteString("<native " + v.Native().Name + ">")
	case VTSchema:
		sb.WriteString("<schema " + v.Schema().Name + ">")
	case VTInstance:
		inst := v.Instance()
		sb.WriteString(inst.Schema.Name)
		sb.WriteByte(' ')
		writeValue(sb, MapOf(inst.Fields), quoted)
	}
}

// formatNumber prints integers without a fractional part.
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// parseFloat converts a scanned number lexeme. The lexer guarantees the
// lexeme is well-formed, so the error path is unreachable.
func parseFloat(lex string) float64 {
	f, _ := strconv.ParseFloat(lex, 64)
	return f
}
