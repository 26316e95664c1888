package cppdata

import "sort"

// Instantiation is one concrete use of a template class
type Instantiation struct {
	Template  string
	Arguments []Type
}

// Name returns the instantiated class name, e.g. "QVector<int>"
func (i Instantiation) Name() string {
	return InstantiatedName(i.Template, i.Arguments)
}

// Type returns the class value type of the instantiation
func (i Instantiation) Type() Type {
	return ClassType(i.Template, i.Arguments...)
}

// Instantiations lists the registry entries in a stable order
func (d *Data) Instantiations() []Instantiation {
	names := make([]string, 0, len(d.TemplateInstantiations))
	for name := range d.TemplateInstantiations {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []Instantiation
	for _, name := range names {
		for _, args := range d.TemplateInstantiations[name] {
			out = append(out, Instantiation{Template: name, Arguments: args})
		}
	}
	return out
}

// InstantiatedMethods returns one copy of every method of a template class
// per registered instantiation, with template parameters substituted and
// the scope set to the instantiated class name. Free functions and methods
// of ordinary classes are not included.
func (d *Data) InstantiatedMethods() []Method {
	var out []Method
	for _, ins := range d.Instantiations() {
		for _, m := range d.Methods {
			if m.Scope != ins.Template {
				continue
			}
			out = append(out, m.instantiate(ins))
		}
	}
	return out
}

func (m Method) instantiate(ins Instantiation) Method {
	m.Scope = ins.Name()
	args := make([]Argument, len(m.Arguments))
	for i, arg := range m.Arguments {
		arg.Type = substituteSelf(arg.Type.Substitute(ins.Arguments), ins)
		args[i] = arg
	}
	m.Arguments = args
	if m.ReturnType != nil {
		ret := substituteSelf(m.ReturnType.Substitute(ins.Arguments), ins)
		m.ReturnType = &ret
	}
	if m.IsConstructor || m.IsDestructor {
		_, base := SplitQualified(ins.Template)
		if m.IsDestructor {
			m.Name = "~" + base
		} else {
			m.Name = base
		}
	}
	return m
}

// substituteSelf turns a bare reference to the template ("QVector" inside
// its own methods) into the instantiated class.
func substituteSelf(t Type, ins Instantiation) Type {
	if t.IsClass() && t.Base.Name == ins.Template && len(t.Base.TemplateArguments) == 0 {
		t.Base.TemplateArguments = ins.Arguments
	}
	return t
}
