package cppdata

import "strings"

// Resolver answers type lookups across the current model and the models of
// the libraries it depends on. It never mutates any of them.
type Resolver struct {
	current *Data
	deps    []*Data
	// dependency owning each type, keyed by type name; empty for current
	owners map[string]string
	graph  *InheritanceGraph
}

// Dependency is a named model exported by a previous generation run
type Dependency struct {
	Name string
	Data *Data
}

// NewResolver creates a resolver over current and the given dependencies
func NewResolver(current *Data, deps ...Dependency) *Resolver {
	r := &Resolver{
		current: current,
		owners:  make(map[string]string),
		graph:   NewInheritanceGraph(),
	}
	if current != nil {
		r.graph.addClasses(current)
	}
	for _, dep := range deps {
		r.deps = append(r.deps, dep.Data)
		r.graph.addClasses(dep.Data)
		for _, td := range dep.Data.Types {
			if _, seen := r.owners[td.Name]; !seen {
				r.owners[td.Name] = dep.Name
			}
		}
	}
	return r
}

// FindType looks a type up in the current model first, then in dependencies
// in declaration order.
func (r *Resolver) FindType(name string) (*TypeData, bool) {
	if r.current != nil {
		if td, ok := r.current.FindType(name); ok {
			return td, true
		}
	}
	for _, dep := range r.deps {
		if td, ok := dep.FindType(name); ok {
			return td, true
		}
	}
	return nil, false
}

// Owner returns the dependency that declares the type. The second result is
// false when the type belongs to the current model or is unknown.
func (r *Resolver) Owner(name string) (string, bool) {
	if r.current != nil {
		if _, ok := r.current.FindType(name); ok {
			return "", false
		}
	}
	owner, ok := r.owners[name]
	return owner, ok
}

// IsAbstract reports whether a class cannot be instantiated: it declares a
// pure virtual method itself, or inherits one that neither it nor another
// class of its hierarchy implements.
func (r *Resolver) IsAbstract(className string) bool {
	pure := make(map[string]bool)
	implemented := make(map[string]bool)

	for _, m := range r.methodsOf(className) {
		if m.IsPureVirtual {
			return true
		}
		if !m.IsStatic && !m.IsConstructor {
			implemented[overrideKey(&m)] = true
		}
	}
	for _, base := range r.graph.AllBases(className) {
		for _, m := range r.methodsOf(base) {
			switch {
			case m.IsDestructor || m.IsConstructor || m.IsStatic:
			case m.IsPureVirtual:
				pure[overrideKey(&m)] = true
			default:
				implemented[overrideKey(&m)] = true
			}
		}
	}

	for key := range pure {
		if !implemented[key] {
			return true
		}
	}
	return false
}

func (r *Resolver) methodsOf(className string) []Method {
	var out []Method
	if r.current != nil {
		out = append(out, r.current.MethodsOf(className)...)
	}
	for _, dep := range r.deps {
		out = append(out, dep.MethodsOf(className)...)
	}
	return out
}

// overrideKey identifies a method signature independent of its class
func overrideKey(m *Method) string {
	return strings.TrimPrefix(m.Key(), m.Scope+"::")
}
