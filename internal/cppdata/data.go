package cppdata

import (
	"fmt"
	"strings"
)

// Visibility of a method or field
type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityProtected Visibility = "protected"
	VisibilityPrivate   Visibility = "private"
)

// EnumValue is one variant of a native enum
type EnumValue struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// ClassField is a data member of a native class
type ClassField struct {
	Name       string     `json:"name"`
	Type       Type       `json:"type"`
	Visibility Visibility `json:"visibility"`
}

// EnumKind carries enum-specific data
type EnumKind struct {
	Values []EnumValue `json:"values"`
}

// ClassKind carries class-specific data
type ClassKind struct {
	// Size is nil when the class is opaque to the front-end.
	Size              *int         `json:"size,omitempty"`
	Bases             []Type       `json:"bases,omitempty"`
	Fields            []ClassField `json:"fields,omitempty"`
	TemplateArguments []string     `json:"template_arguments,omitempty"`
}

// TypeData is a native type entity. Exactly one of Enum and Class is set.
type TypeData struct {
	Name   string     `json:"name"`
	Header string     `json:"header"`
	Enum   *EnumKind  `json:"enum,omitempty"`
	Class  *ClassKind `json:"class,omitempty"`
	Doc    string     `json:"doc,omitempty"`
}

// IsClass reports whether the type is a class
func (td *TypeData) IsClass() bool {
	return td.Class != nil
}

// IsEnum reports whether the type is an enum
func (td *TypeData) IsEnum() bool {
	return td.Enum != nil
}

// IsTemplate reports whether the type is a template class
func (td *TypeData) IsTemplate() bool {
	return td.Class != nil && len(td.Class.TemplateArguments) > 0
}

// IsMovable reports whether instances can be relocated by the wrapper: the
// class has a known size and a single layout.
func (td *TypeData) IsMovable() bool {
	return td.Class != nil && td.Class.Size != nil && !td.IsTemplate()
}

// Inherits reports whether className is a direct base of the type
func (td *TypeData) Inherits(className string) bool {
	if td.Class == nil {
		return false
	}
	for _, base := range td.Class.Bases {
		if base.IsClass() && base.Base.Name == className {
			return true
		}
	}
	return false
}

// Location is a position in a header file
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Origin records where a method was declared
type Origin struct {
	IncludeFile string    `json:"include_file"`
	Location    *Location `json:"location,omitempty"`
}

// Argument is a method argument
type Argument struct {
	Name            string `json:"name"`
	Type            Type   `json:"type"`
	HasDefaultValue bool   `json:"has_default_value,omitempty"`
}

// DispatchKind tells the shim how to reach a method
type DispatchKind int

const (
	// DispatchStaticSymbol calls the method by its qualified name.
	DispatchStaticSymbol DispatchKind = iota
	// DispatchVTableSlot calls the method through the object's vtable.
	DispatchVTableSlot
)

func (d DispatchKind) String() string {
	if d == DispatchVTableSlot {
		return "vtable"
	}
	return "static"
}

// Method is a native method entity. Scope is empty for free functions.
type Method struct {
	Name                    string     `json:"name"`
	Scope                   string     `json:"scope,omitempty"`
	Arguments               []Argument `json:"arguments,omitempty"`
	ReturnType              *Type      `json:"return_type,omitempty"`
	AllowsVariadicArguments bool       `json:"allows_variadic_arguments,omitempty"`

	IsVirtual     bool       `json:"is_virtual,omitempty"`
	IsPureVirtual bool       `json:"is_pure_virtual,omitempty"`
	IsConst       bool       `json:"is_const,omitempty"`
	IsStatic      bool       `json:"is_static,omitempty"`
	Visibility    Visibility `json:"visibility"`

	IsConstructor      bool   `json:"is_constructor,omitempty"`
	IsDestructor       bool   `json:"is_destructor,omitempty"`
	Operator           string `json:"operator,omitempty"`
	ConversionOperator *Type  `json:"conversion_operator,omitempty"`
	IsSignal           bool   `json:"is_signal,omitempty"`
	IsSlot             bool   `json:"is_slot,omitempty"`

	Origin        Origin `json:"origin"`
	OriginalIndex int    `json:"original_index"`
	Doc           string `json:"doc,omitempty"`
}

// IsFree reports whether the method is a free function
func (m *Method) IsFree() bool {
	return m.Scope == ""
}

// HasReceiver reports whether the method takes an implicit this pointer
func (m *Method) HasReceiver() bool {
	return !m.IsFree() && !m.IsStatic && !m.IsConstructor
}

// Dispatch returns how the shim must call the method
func (m *Method) Dispatch() DispatchKind {
	if m.IsVirtual || m.IsPureVirtual {
		return DispatchVTableSlot
	}
	return DispatchStaticSymbol
}

// Return returns the return type, substituting void when absent
func (m *Method) Return() Type {
	if m.ReturnType == nil {
		return Void()
	}
	return *m.ReturnType
}

// FullName returns "Scope::name" or just the name for free functions
func (m *Method) FullName() string {
	if m.IsFree() {
		return m.Name
	}
	return m.Scope + "::" + m.Name
}

// Key returns a stable identity for the method, independent of slice
// position. Overloads differ in argument types or constness.
func (m *Method) Key() string {
	args := make([]string, len(m.Arguments))
	for i, arg := range m.Arguments {
		args[i] = arg.Type.ToCppCode()
	}
	key := fmt.Sprintf("%s(%s)", m.FullName(), strings.Join(args, ", "))
	if m.IsConst {
		key += " const"
	}
	if m.AllowsVariadicArguments {
		key += " ..."
	}
	return key
}

// ShortText renders a declaration-like summary used in documentation
func (m *Method) ShortText() string {
	var b strings.Builder
	if m.IsStatic {
		b.WriteString("static ")
	}
	if m.IsVirtual || m.IsPureVirtual {
		b.WriteString("virtual ")
	}
	if !m.IsConstructor && !m.IsDestructor {
		b.WriteString(m.Return().ToCppCode())
		b.WriteString(" ")
	}
	b.WriteString(m.FullName())
	b.WriteString("(")
	for i, arg := range m.Arguments {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(arg.Type.ToCppCode())
		if arg.Name != "" {
			b.WriteString(" ")
			b.WriteString(arg.Name)
		}
	}
	if m.AllowsVariadicArguments {
		if len(m.Arguments) > 0 {
			b.WriteString(", ")
		}
		b.WriteString("...")
	}
	b.WriteString(")")
	if m.IsConst {
		b.WriteString(" const")
	}
	if m.IsPureVirtual {
		b.WriteString(" = 0")
	}
	return b.String()
}

// Data is the aggregate model of one generation unit
type Data struct {
	Types                  []TypeData          `json:"types"`
	Methods                []Method            `json:"methods"`
	TemplateInstantiations map[string][][]Type `json:"template_instantiations,omitempty"`
}

// NewData creates an empty model
func NewData() *Data {
	return &Data{
		TemplateInstantiations: make(map[string][][]Type),
	}
}

// FindType returns the type entity with the given name
func (d *Data) FindType(name string) (*TypeData, bool) {
	for i := range d.Types {
		if d.Types[i].Name == name {
			return &d.Types[i], true
		}
	}
	return nil, false
}

// MethodsOf returns the methods scoped to the given class
func (d *Data) MethodsOf(className string) []Method {
	var out []Method
	for _, m := range d.Methods {
		if m.Scope == className {
			out = append(out, m)
		}
	}
	return out
}

// synthesizedDestructorIndex marks destructors added by the enrichment pass
const synthesizedDestructorIndex = 1000

// IsSynthesizedDestructor reports whether m was added by
// EnsureExplicitDestructors rather than declared in a header
func (m *Method) IsSynthesizedDestructor() bool {
	return m.IsDestructor && m.OriginalIndex == synthesizedDestructorIndex
}

// EnsureExplicitDestructors adds a public destructor to every class that
// does not declare one, so every class can be destroyed through the shim.
// Running it again adds nothing.
func (d *Data) EnsureExplicitDestructors() {
	hasDestructor := make(map[string]bool)
	for _, m := range d.Methods {
		if m.IsDestructor && !m.IsFree() {
			hasDestructor[m.Scope] = true
		}
	}

	for _, td := range d.Types {
		if !td.IsClass() || hasDestructor[td.Name] {
			continue
		}
		d.Methods = append(d.Methods, Method{
			Name:          "~" + unqualified(td.Name),
			Scope:         td.Name,
			Visibility:    VisibilityPublic,
			IsDestructor:  true,
			OriginalIndex: synthesizedDestructorIndex,
			Origin:        Origin{IncludeFile: td.Header},
		})
		hasDestructor[td.Name] = true
	}
}

// SplitByHeaders partitions the model by declaring header. Methods land in
// the partition of their origin header and types in the partition of their
// own header. A class type's instantiation registry entry travels with it;
// entries naming a type from a dependency land in the "" partition.
func (d *Data) SplitByHeaders() map[string]*Data {
	result := make(map[string]*Data)
	partition := func(header string) *Data {
		p, ok := result[header]
		if !ok {
			p = NewData()
			result[header] = p
		}
		return p
	}

	for _, m := range d.Methods {
		p := partition(m.Origin.IncludeFile)
		p.Methods = append(p.Methods, m)
	}
	placed := make(map[string]bool)
	for _, td := range d.Types {
		p := partition(td.Header)
		p.Types = append(p.Types, td)
		if td.IsClass() {
			if ins, ok := d.TemplateInstantiations[td.Name]; ok {
				p.TemplateInstantiations[td.Name] = ins
				placed[td.Name] = true
			}
		}
	}
	for name, ins := range d.TemplateInstantiations {
		if !placed[name] {
			partition("").TemplateInstantiations[name] = ins
		}
	}
	return result
}

// Clone returns a deep enough copy that enrichment on the copy does not
// affect d.
func (d *Data) Clone() *Data {
	out := &Data{
		Types:                  append([]TypeData(nil), d.Types...),
		Methods:                append([]Method(nil), d.Methods...),
		TemplateInstantiations: make(map[string][][]Type, len(d.TemplateInstantiations)),
	}
	for k, v := range d.TemplateInstantiations {
		out.TemplateInstantiations[k] = v
	}
	return out
}

// unqualified strips namespaces from a C++ name
func unqualified(name string) string {
	if i := strings.LastIndex(name, "::"); i >= 0 {
		return name[i+2:]
	}
	return name
}

// SplitQualified returns the namespace components and the last name
func SplitQualified(name string) ([]string, string) {
	parts := strings.Split(name, "::")
	return parts[:len(parts)-1], parts[len(parts)-1]
}
