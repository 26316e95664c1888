package cppffi

import (
	"fmt"
	"sort"

	"github.com/conduit-lang/cppbind/internal/cppdata"
	"github.com/conduit-lang/cppbind/internal/errors"
)

// Options configures ABI synthesis
type Options struct {
	// LibName prefixes every exported symbol
	LibName string
	// Strict turns every diagnostic into a fatal error
	Strict bool
}

// Result holds the synthesized functions and the methods that were left out
type Result struct {
	Functions   []Function
	Diagnostics errors.ErrorList
}

// Find returns the function with the given symbol
func (r *Result) Find(name string) (*Function, bool) {
	for i := range r.Functions {
		if r.Functions[i].Name == name {
			return &r.Functions[i], true
		}
	}
	return nil, false
}

// Retain drops every function whose symbol is not in keep
func (r *Result) Retain(keep map[string]bool) {
	kept := r.Functions[:0]
	for _, f := range r.Functions {
		if keep[f.Name] {
			kept = append(kept, f)
		}
	}
	r.Functions = kept
}

// unsupported explains why a type cannot cross the boundary
type unsupported struct {
	typ    cppdata.Type
	reason string
}

type generator struct {
	resolver       *cppdata.Resolver
	opts           Options
	instantiations map[string]cppdata.Type
	diagnostics    errors.ErrorList
}

// Generate synthesizes an ABI function for every eligible public method of
// data, including methods of registered template instantiations. Methods
// that cannot be wrapped are reported as diagnostics; in strict mode any
// diagnostic makes Generate fail.
func Generate(data *cppdata.Data, resolver *cppdata.Resolver, opts Options) (*Result, error) {
	if opts.LibName == "" {
		return nil, fmt.Errorf("library name is required")
	}
	if resolver == nil {
		resolver = cppdata.NewResolver(data)
	}

	g := &generator{
		resolver:       resolver,
		opts:           opts,
		instantiations: make(map[string]cppdata.Type),
	}
	for _, ins := range data.Instantiations() {
		g.instantiations[ins.Name()] = ins.Type()
	}

	methods := append(append([]cppdata.Method(nil), data.Methods...), data.InstantiatedMethods()...)

	var functions []Function
	for i := range methods {
		m := &methods[i]
		if f, ok := g.function(data, m); ok {
			functions = append(functions, f)
		}
	}

	assignNames(opts.LibName, functions)

	result := &Result{Functions: functions, Diagnostics: g.diagnostics}
	if opts.Strict && len(g.diagnostics) > 0 {
		fatal := make(errors.ErrorList, len(g.diagnostics))
		for i, d := range g.diagnostics {
			fatal[i] = d.AsFatal()
		}
		return nil, fatal
	}
	return result, nil
}

func (g *generator) report(err *errors.BindError, m *cppdata.Method) {
	g.diagnostics = append(g.diagnostics, err.WithHeader(m.Origin.IncludeFile))
}

// function builds the ABI function for m, or reports why it cannot
func (g *generator) function(data *cppdata.Data, m *cppdata.Method) (Function, bool) {
	if m.Visibility != cppdata.VisibilityPublic {
		return Function{}, false
	}
	if m.AllowsVariadicArguments {
		g.report(errors.NewVariadicMethod(m.FullName()), m)
		return Function{}, false
	}

	var class cppdata.Type
	if !m.IsFree() {
		var ok bool
		class, ok = g.scopeType(m.Scope)
		if !ok {
			if td, known := g.resolver.FindType(m.Scope); known && td.IsTemplate() {
				// Instantiated copies are wrapped instead. An unused template
				// only reports its declared methods.
				if len(data.TemplateInstantiations[m.Scope]) == 0 && !m.IsSynthesizedDestructor() {
					g.report(errors.NewUninstantiatedTemplate(m.FullName()), m)
				}
				return Function{}, false
			}
			g.report(errors.NewUnknownScope(m.FullName(), m.Scope), m)
			return Function{}, false
		}
	}

	if hasTemplateResidue(m) {
		g.report(errors.NewUninstantiatedTemplate(m.FullName()), m)
		return Function{}, false
	}

	if m.IsConstructor && g.resolver.IsAbstract(class.Base.Name) {
		g.report(errors.NewAbstractConstructor(m.FullName(), m.Scope), m)
		return Function{}, false
	}

	f := Function{
		Kind:     KindMethod,
		Dispatch: m.Dispatch(),
		Class:    class,
		Method:   m,
	}

	if m.IsDestructor {
		f.Kind = KindDestructor
		f.InPlace = g.isMovable(class)
		f.Arguments = []Argument{{
			Name:    "self",
			Type:    Type{Original: class.PtrTo(), FFI: class.PtrTo()},
			Meaning: ArgumentMeaning{Kind: MeaningThis},
		}}
		f.ReturnType = Type{Original: cppdata.Void(), FFI: cppdata.Void()}
		return f, true
	}

	if m.HasReceiver() {
		this := class.PtrTo()
		if m.IsConst {
			this = class.Const().PtrTo()
		}
		f.Arguments = append(f.Arguments, Argument{
			Name:    "self",
			Type:    Type{Original: this, FFI: this},
			Meaning: ArgumentMeaning{Kind: MeaningThis},
		})
	}

	names := argumentNames(m.Arguments)
	for i, arg := range m.Arguments {
		t, bad := g.argumentType(arg.Type)
		if bad != nil {
			g.report(errors.NewUnsupportedType(m.FullName(), bad.typ.ToCppCode(), bad.reason), m)
			return Function{}, false
		}
		f.Arguments = append(f.Arguments, Argument{
			Name:    names[i],
			Type:    t,
			Meaning: ArgumentMeaning{Kind: MeaningArgument, Index: i},
		})
	}

	ret := m.Return()
	if m.IsConstructor {
		ret = class
	}
	if bad := g.setReturn(&f, ret); bad != nil {
		g.report(errors.NewUnsupportedType(m.FullName(), bad.typ.ToCppCode(), bad.reason), m)
		return Function{}, false
	}
	return f, true
}

// scopeType resolves a method scope to the class type it names
func (g *generator) scopeType(scope string) (cppdata.Type, bool) {
	if t, ok := g.instantiations[scope]; ok {
		return t, true
	}
	td, ok := g.resolver.FindType(scope)
	if !ok || !td.IsClass() || td.IsTemplate() {
		return cppdata.Type{}, false
	}
	return cppdata.ClassType(scope), true
}

func hasTemplateResidue(m *cppdata.Method) bool {
	for _, arg := range m.Arguments {
		if arg.Type.HasTemplateParameters() {
			return true
		}
	}
	return m.Return().HasTemplateParameters()
}

// shimParameters are the parameters a shim adds around the native ones
var shimParameters = map[string]bool{"self": true, "output": true}

// argumentNames names the native arguments of a shim. Unnamed arguments
// become argN and names taken by shim parameters or by an earlier
// argument get a trailing underscore.
func argumentNames(args []cppdata.Argument) []string {
	names := make([]string, len(args))
	declared := make(map[string]bool, len(args))
	for _, arg := range args {
		declared[arg.Name] = true
	}
	used := make(map[string]bool, len(args))
	for i, arg := range args {
		name := arg.Name
		if name == "" {
			name = fmt.Sprintf("arg%d", i)
		}
		if shimParameters[name] || used[name] {
			name += "_"
			for shimParameters[name] || used[name] || declared[name] {
				name += "_"
			}
		}
		used[name] = true
		names[i] = name
	}
	return names
}

func (g *generator) isMovable(class cppdata.Type) bool {
	if len(class.Base.TemplateArguments) > 0 {
		return false
	}
	td, ok := g.resolver.FindType(class.Base.Name)
	return ok && td.IsMovable()
}

// checkKnown verifies that enum and class bases exist in the model
func (g *generator) checkKnown(t cppdata.Type) *unsupported {
	switch t.Base.Kind {
	case cppdata.BaseEnum:
		td, ok := g.resolver.FindType(t.Base.Name)
		if !ok || !td.IsEnum() {
			return &unsupported{t, "unknown enum"}
		}
	case cppdata.BaseClass:
		td, ok := g.resolver.FindType(t.Base.Name)
		if !ok || !td.IsClass() {
			return &unsupported{t, "unknown class"}
		}
		if td.IsTemplate() {
			if _, ok := g.instantiations[t.ClassName()]; !ok {
				return &unsupported{t, "template class without a registered instantiation"}
			}
		}
	case cppdata.BaseTemplateParameter:
		return &unsupported{t, "template parameter"}
	}
	return nil
}

// argumentType converts a native argument type to its boundary form
func (g *generator) argumentType(t cppdata.Type) (Type, *unsupported) {
	switch t.Indirection {
	case cppdata.IndirectionRValueRef:
		return Type{}, &unsupported{t, "rvalue reference"}
	case cppdata.IndirectionPtrPtr:
		return Type{}, &unsupported{t, "pointer to pointer"}
	}
	if bad := g.checkKnown(t); bad != nil {
		return Type{}, bad
	}

	switch t.Base.Kind {
	case cppdata.BaseVoid:
		if t.Indirection != cppdata.IndirectionPtr {
			return Type{}, &unsupported{t, "void value"}
		}
		return Type{Original: t, FFI: t}, nil
	case cppdata.BaseEnum:
		if t.Indirection != cppdata.IndirectionNone {
			return Type{}, &unsupported{t, "enum by pointer or reference"}
		}
		return Type{Original: t, FFI: cppdata.BuiltIn("int"), Conversion: EnumToInt}, nil
	}

	switch t.Indirection {
	case cppdata.IndirectionRef:
		ffi := t
		ffi.Indirection = cppdata.IndirectionPtr
		return Type{Original: t, FFI: ffi, Conversion: RefToPtr}, nil
	case cppdata.IndirectionNone:
		if t.IsClass() {
			ffi := t.Const().PtrTo()
			return Type{Original: t, FFI: ffi, Conversion: ValueToPtr}, nil
		}
	}
	return Type{Original: t, FFI: t}, nil
}

// setReturn fills in the return convention of f for the native type t
func (g *generator) setReturn(f *Function, t cppdata.Type) *unsupported {
	if t.IsVoid() {
		f.Return = ReturnNone
		f.ReturnType = Type{Original: t, FFI: t}
		return nil
	}

	if t.IsClassValue() {
		if bad := g.checkKnown(t); bad != nil {
			return bad
		}
		value := t
		value.IsConst = false
		if g.isMovable(value) {
			idx := len(f.Arguments)
			f.Arguments = append(f.Arguments, Argument{
				Name:    "output",
				Type:    Type{Original: value, FFI: value.PtrTo(), Conversion: ValueToPtr},
				Meaning: ArgumentMeaning{Kind: MeaningReturnValue},
			})
			f.ReturnArgIndex = &idx
			f.Return = ReturnOutputArgument
			f.ReturnType = Type{Original: cppdata.Void(), FFI: cppdata.Void()}
			return nil
		}
		f.Return = ReturnOwnedPointer
		f.ReturnType = Type{Original: value, FFI: value.PtrTo(), Conversion: ValueToPtr}
		return nil
	}

	rt, bad := g.argumentType(t)
	if bad != nil {
		return bad
	}
	f.Return = ReturnDirect
	f.ReturnType = rt
	return nil
}

// assignNames gives every function a unique symbol. Overloads sharing a
// base symbol are numbered by the native declaration order.
func assignNames(lib string, functions []Function) {
	groups := make(map[string][]int)
	var order []string
	for i := range functions {
		base := baseSymbol(lib, functions[i].Method)
		if _, seen := groups[base]; !seen {
			order = append(order, base)
		}
		groups[base] = append(groups[base], i)
	}

	symbols := newSymbolTable()
	for _, base := range order {
		idx := groups[base]
		sort.SliceStable(idx, func(a, b int) bool {
			return functions[idx[a]].Method.OriginalIndex < functions[idx[b]].Method.OriginalIndex
		})
		for _, i := range idx {
			functions[i].Name = symbols.next(base)
		}
	}
}
