// schema.go — structural schemas and their instances.
//
// A schema declaration produces a first-class Schema value bound to its
// name. An instance declaration constructs a field map in three steps:
// declared defaults (evaluated in the schema's defining environment), then
// the explicitly supplied values, then required-field validation. Methods
// are closures over the defining environment; member access binds `self`
// on top at lookup time.
package starlang

// Schema is a declared structural type.
type Schema struct {
	Name    string
	Parent  string // from `extends`; recorded for tooling, fields are not merged
	Fields  []SchemaField
	Methods map[string]*Function
	Env     *Env // defining environment, used for default expressions
	File    string
}

// Instance is one constructed value of a schema. Dirty tracks fields
// mutated after construction so hot reload can carry them over.
type Instance struct {
	Schema *Schema
	Name   string // global binding name
	File   string
	Fields *MapObject
	Dirty  map[string]bool
}

func (in *Interp) execSchema(s *SchemaStmt, env *Env) {
	sch := &Schema{
		Name:    s.Name,
		Parent:  s.Parent,
		Fields:  s.Fields,
		Methods: map[string]*Function{},
		Env:     env,
		File:    in.file,
	}
	if s.Parent != "" {
		if p, ok := env.Get(s.Parent); !ok || p.Tag != VTSchema {
			in.fail(s.Pos_, "unknown parent schema %q", s.Parent)
		}
	}
	for _, m := range s.Methods {
		sch.Methods[m.Name] = &Function{Name: m.Name, Params: m.Params, Body: m.Body, Env: env}
	}
	env.Define(s.Name, SchemaOf(sch))
}

func (in *Interp) execInstance(s *InstanceStmt, env *Env) {
	sv, ok := env.Get(s.Schema)
	if !ok || sv.Tag != VTSchema {
		in.fail(s.Pos_, "unknown schema %q", s.Schema)
	}
	sch := sv.Schema()

	inst := &Instance{
		Schema: sch,
		Name:   s.Name,
		File:   in.file,
		Fields: NewMapObject(),
		Dirty:  map[string]bool{},
	}

	for _, f := range sch.Fields {
		if f.Default != nil {
			inst.Fields.Set(f.Name, in.eval(f.Default, sch.Env))
		}
	}
	for _, f := range s.Fields {
		inst.Fields.Set(f.Name, in.eval(f.Value, env))
	}
	for _, f := range sch.Fields {
		if !f.Required {
			continue
		}
		if _, ok := inst.Fields.Get(f.Name); !ok {
			in.fail(s.Pos_, "instance %q of %s is missing required field %q",
				s.Name, sch.Name, f.Name)
		}
	}

	env.Define(s.Name, InstanceOf(inst))
	in.instances = append(in.instances, inst)
}

// bindMethod layers `self` over the method's closure environment.
func bindMethod(m *Function, inst *Instance) Value {
	bound := NewEnv(m.Env)
	bound.Define("self", InstanceOf(inst))
	return FunOf(&Function{Name: m.Name, Params: m.Params, Body: m.Body, Env: bound})
}
