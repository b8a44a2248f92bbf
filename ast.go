// ast.go — syntax tree for StarLang.
//
// The tree is a closed set of statement and expression variants. Nodes are
// immutable after parsing and each node exclusively owns its children. Every
// node carries the position of its first token for error reporting.
package starlang

// Pos is a 1-based source position.
type Pos struct {
	Line int
	Col  int
}

// Node is the common interface of all syntax tree nodes.
type Node interface {
	Position() Pos
}

// Stmt is implemented by all statement variants.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is implemented by all expression variants.
type Expr interface {
	Node
	exprNode()
}

// Program is one parsed source file: imports first, then body statements.
type Program struct {
	File    string
	Imports []*ImportStmt
	Body    []Stmt
}

// ----- statements -----

// LetStmt binds a new name in the current scope: `let name = expr`.
type LetStmt struct {
	Pos_  Pos
	Name  string
	Value Expr
}

// SetStmt assigns to an identifier, member expression, or reactive reference:
// `set target: expr`. Assignment to an existing name mutates the nearest
// scope holding it, otherwise the current scope gains the binding.
type SetStmt struct {
	Pos_   Pos
	Target Expr // *IdentExpr, *MemberExpr, *IndexExpr, or *ReactiveExpr
	Value  Expr
}

// FnStmt declares a named function: `fn name(params): block`.
type FnStmt struct {
	Pos_   Pos
	Name   string
	Params []Param
	Body   *BlockStmt
}

// Param is a function parameter with an optional default-value expression.
type Param struct {
	Name    string
	Default Expr // nil when absent
}

// IfStmt is `if cond: block` with an optional else branch; `elif` chains are
// parsed as a nested IfStmt in the Else slot.
type IfStmt struct {
	Pos_ Pos
	Cond Expr
	Then *BlockStmt
	Else Stmt // *BlockStmt, *IfStmt, or nil
}

// ForStmt is `for name in expr: block`.
type ForStmt struct {
	Pos_ Pos
	Name string
	Iter Expr
	Body *BlockStmt
}

// WhileStmt is `while cond: block`.
type WhileStmt struct {
	Pos_ Pos
	Cond Expr
	Body *BlockStmt
}

// MatchStmt is `match expr:` followed by indented cases.
type MatchStmt struct {
	Pos_    Pos
	Subject Expr
	Cases   []MatchCase
}

// MatchCase is `pattern [when guard]: block`.
type MatchCase struct {
	Pattern Pattern
	Guard   Expr // nil when absent
	Body    *BlockStmt
}

// Pattern is one of the four parseable match patterns.
type Pattern interface {
	Node
	patternNode()
}

// WildcardPattern matches anything without binding: `_`.
type WildcardPattern struct{ Pos_ Pos }

// BindPattern matches anything and binds it to a name.
type BindPattern struct {
	Pos_ Pos
	Name string
}

// LiteralPattern matches by deep equality against a literal value.
type LiteralPattern struct {
	Pos_  Pos
	Value Expr // *NumberLit, *StringLit, *BoolLit, or *NullLit
}

// ListPattern matches a list elementwise: `[p1, p2, ...]`.
type ListPattern struct {
	Pos_  Pos
	Elems []Pattern
}

// ReturnStmt is `return [expr]`.
type ReturnStmt struct {
	Pos_  Pos
	Value Expr // nil for a bare return
}

// OnStmt registers an event handler: `on event [when guard]: block`.
type OnStmt struct {
	Pos_  Pos
	Event Expr
	Guard Expr // nil when absent
	Body  *BlockStmt
}

// EmitStmt enqueues an event: `emit event [map-literal]`.
type EmitStmt struct {
	Pos_  Pos
	Event Expr
	Data  Expr // *MapLit or nil
}

// ImportStmt is recognized but never executed.
type ImportStmt struct {
	Pos_ Pos
	Path string
}

// SchemaStmt declares a structural schema.
type SchemaStmt struct {
	Pos_    Pos
	Name    string
	Parent  string // from `extends`; recorded, never merged
	Fields  []SchemaField
	Methods []SchemaMethod
}

// SchemaField is one declared field of a schema.
type SchemaField struct {
	Pos_     Pos
	Name     string
	Type     *TypeRef
	Required bool
	Default  Expr // nil when absent
}

// SchemaMethod is a named function bound to every instance of the schema.
type SchemaMethod struct {
	Name   string
	Params []Param
	Body   *BlockStmt
}

// TypeRef is a parsed type annotation: a simple name, list<T>, map<K,V>,
// enum("a","b",...), or vecN.
type TypeRef struct {
	Pos_  Pos
	Name  string     // "number", "string", "list", "map", "enum", "vec3", ...
	Args  []*TypeRef // list/map element types
	Enum  []string   // enum member literals
}

// InstanceStmt constructs a named instance of a schema:
// `SchemaName instName:` followed by field values.
type InstanceStmt struct {
	Pos_   Pos
	Schema string
	Name   string
	Fields []InstanceField
}

// InstanceField is one explicitly supplied field value.
type InstanceField struct {
	Name  string
	Value Expr
}

// ExprStmt evaluates an expression for its effects.
type ExprStmt struct {
	Pos_ Pos
	X    Expr
}

// BlockStmt is a sequence of statements executed in a child environment.
type BlockStmt struct {
	Pos_  Pos
	Stmts []Stmt
}

// ----- expressions -----

// NumberLit is a numeric literal.
type NumberLit struct {
	Pos_  Pos
	Value float64
}

// StringLit is a string literal (color literals included, '#' retained).
type StringLit struct {
	Pos_  Pos
	Value string
}

// BoolLit is true/false.
type BoolLit struct {
	Pos_  Pos
	Value bool
}

// NullLit is null.
type NullLit struct{ Pos_ Pos }

// IdentExpr references a name in the environment chain.
type IdentExpr struct {
	Pos_ Pos
	Name string
}

// VectorLit is `(a, b, ...)` — parenthesized with at least one comma.
type VectorLit struct {
	Pos_  Pos
	Elems []Expr
}

// ListLit is `[a, b, ...]`.
type ListLit struct {
	Pos_  Pos
	Elems []Expr
}

// MapLit is `{ k: v, ... }` with identifier or string keys.
type MapLit struct {
	Pos_ Pos
	Keys []string
	Vals []Expr
}

// MemberExpr is `obj.name`.
type MemberExpr struct {
	Pos_ Pos
	Obj  Expr
	Name string
}

// IndexExpr is `obj[expr]`.
type IndexExpr struct {
	Pos_  Pos
	Obj   Expr
	Index Expr
}

// CallExpr is `callee(args...)`.
type CallExpr struct {
	Pos_   Pos
	Callee Expr
	Args   []Expr
}

// BinaryExpr is a binary operation; Op is the operator token type.
type BinaryExpr struct {
	Pos_  Pos
	Op    TokenType
	Left  Expr
	Right Expr
}

// UnaryExpr is `not x` or numeric negation.
type UnaryExpr struct {
	Pos_    Pos
	Op      TokenType
	Operand Expr
}

// CondExpr is the conditional expression `if c then a else b`.
type CondExpr struct {
	Pos_ Pos
	Cond Expr
	Then Expr
	Else Expr
}

// LambdaExpr is an anonymous function value.
type LambdaExpr struct {
	Pos_   Pos
	Params []Param
	Body   *BlockStmt
}

// ReactiveExpr is a `$a.b.c` path rooted at the global environment. It is
// valid both as an expression and as a `set` target.
type ReactiveExpr struct {
	Pos_ Pos
	Path []string
}

func (s *LetStmt) Position() Pos      { return s.Pos_ }
func (s *SetStmt) Position() Pos      { return s.Pos_ }
func (s *FnStmt) Position() Pos       { return s.Pos_ }
func (s *IfStmt) Position() Pos       { return s.Pos_ }
func (s *ForStmt) Position() Pos      { return s.Pos_ }
func (s *WhileStmt) Position() Pos    { return s.Pos_ }
func (s *MatchStmt) Position() Pos    { return s.Pos_ }
func (s *ReturnStmt) Position() Pos   { return s.Pos_ }
func (s *OnStmt) Position() Pos       { return s.Pos_ }
func (s *EmitStmt) Position() Pos     { return s.Pos_ }
func (s *ImportStmt) Position() Pos   { return s.Pos_ }
func (s *SchemaStmt) Position() Pos   { return s.Pos_ }
func (s *InstanceStmt) Position() Pos { return s.Pos_ }
func (s *ExprStmt) Position() Pos     { return s.Pos_ }
func (s *BlockStmt) Position() Pos    { return s.Pos_ }

func (*LetStmt) stmtNode()      {}
func (*SetStmt) stmtNode()      {}
func (*FnStmt) stmtNode()       {}
func (*IfStmt) stmtNode()       {}
func (*ForStmt) stmtNode()      {}
func (*WhileStmt) stmtNode()    {}
func (*MatchStmt) stmtNode()    {}
func (*ReturnStmt) stmtNode()   {}
func (*OnStmt) stmtNode()       {}
func (*EmitStmt) stmtNode()     {}
func (*ImportStmt) stmtNode()   {}
func (*SchemaStmt) stmtNode()   {}
func (*InstanceStmt) stmtNode() {}
func (*ExprStmt) stmtNode()     {}
func (*BlockStmt) stmtNode()    {}

func (e *NumberLit) Position() Pos    { return e.Pos_ }
func (e *StringLit) Position() Pos    { return e.Pos_ }
func (e *BoolLit) Position() Pos      { return e.Pos_ }
func (e *NullLit) Position() Pos      { return e.Pos_ }
func (e *IdentExpr) Position() Pos    { return e.Pos_ }
func (e *VectorLit) Position() Pos    { return e.Pos_ }
func (e *ListLit) Position() Pos      { return e.Pos_ }
func (e *MapLit) Position() Pos       { return e.Pos_ }
func (e *MemberExpr) Position() Pos   { return e.Pos_ }
func (e *IndexExpr) Position() Pos    { return e.Pos_ }
func (e *CallExpr) Position() Pos     { return e.Pos_ }
func (e *BinaryExpr) Position() Pos   { return e.Pos_ }
func (e *UnaryExpr) Position() Pos    { return e.Pos_ }
func (e *CondExpr) Position() Pos     { return e.Pos_ }
func (e *LambdaExpr) Position() Pos   { return e.Pos_ }
func (e *ReactiveExpr) Position() Pos { return e.Pos_ }

func (*NumberLit) exprNode()    {}
func (*StringLit) exprNode()    {}
func (*BoolLit) exprNode()      {}
func (*NullLit) exprNode()      {}
func (*IdentExpr) exprNode()    {}
func (*VectorLit) exprNode()    {}
func (*ListLit) exprNode()      {}
func (*MapLit) exprNode()       {}
func (*MemberExpr) exprNode()   {}
func (*IndexExpr) exprNode()    {}
func (*CallExpr) exprNode()     {}
func (*BinaryExpr) exprNode()   {}
func (*UnaryExpr) exprNode()    {}
func (*CondExpr) exprNode()     {}
func (*LambdaExpr) exprNode()   {}
func (*ReactiveExpr) exprNode() {}

func (p *WildcardPattern) Position() Pos { return p.Pos_ }
func (p *BindPattern) Position() Pos     { return p.Pos_ }
func (p *LiteralPattern) Position() Pos  { return p.Pos_ }
func (p *ListPattern) Position() Pos     { return p.Pos_ }

func (*WildcardPattern) patternNode() {}
func (*BindPattern) patternNode()     {}
func (*LiteralPattern) patternNode()  {}
func (*ListPattern) patternNode()     {}
