// env.go — lexical environments.
package starlang

// Env is one scope in the lexical chain. The root env has a nil parent.
type Env struct {
	parent *Env
	table  map[string]Value
}

// NewEnv returns a fresh scope chained to parent (nil for the root).
func NewEnv(parent *Env) *Env {
	return &Env{parent: parent, table: map[string]Value{}}
}

// Define creates or overwrites a binding in this scope. `let` semantics.
func (e *Env) Define(name string, v Value) {
	e.table[name] = v
}

// Assign mutates the nearest enclosing scope that holds name. If no scope
// does, the binding is created in this scope. `set` semantics.
func (e *Env) Assign(name string, v Value) {
	for scope := e; scope != nil; scope = scope.parent {
		if _, ok := scope.table[name]; ok {
			scope.table[name] = v
			return
		}
	}
	e.table[name] = v
}

// Get resolves name through the chain.
func (e *Env) Get(name string) (Value, bool) {
	for scope := e; scope != nil; scope = scope.parent {
		if v, ok := scope.table[name]; ok {
			return v, true
		}
	}
	return Value{}, false
}

// Delete removes a binding from this scope only. Used by hot reload to
// drop a file's instance bindings before re-execution.
func (e *Env) Delete(name string) {
	delete(e.table, name)
}
