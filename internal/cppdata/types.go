// Package cppdata holds the in-memory model of a C++ library's API surface:
// types, methods, fields, enums and template instantiations, plus the
// enrichment passes that run over it before ABI synthesis.
package cppdata

import (
	"fmt"
	"strings"
)

// BaseKind identifies the kind of a type's base
type BaseKind string

const (
	BaseVoid              BaseKind = "void"
	BaseBuiltIn           BaseKind = "builtin"
	BaseEnum              BaseKind = "enum"
	BaseClass             BaseKind = "class"
	BaseTemplateParameter BaseKind = "template_parameter"
)

// Indirection describes how a type refers to its base
type Indirection string

const (
	IndirectionNone      Indirection = ""
	IndirectionPtr       Indirection = "ptr"
	IndirectionRef       Indirection = "ref"
	IndirectionPtrPtr    Indirection = "ptr_ptr"
	IndirectionRValueRef Indirection = "rvalue_ref"
)

// TypeBase is the underlying entity of a type reference
type TypeBase struct {
	Kind BaseKind `json:"kind"`
	// Name is the builtin spelling ("unsigned int") or the fully qualified
	// enum/class name ("gfx::Widget").
	Name string `json:"name,omitempty"`
	// TemplateArguments is set for instantiated template classes.
	TemplateArguments []Type `json:"template_arguments,omitempty"`
	// Index is the position of a template parameter.
	Index int `json:"index,omitempty"`
}

// Type is a reference to a native type as it appears in a signature
type Type struct {
	Base        TypeBase    `json:"base"`
	Indirection Indirection `json:"indirection,omitempty"`
	IsConst     bool        `json:"is_const,omitempty"`
}

// Void returns the void type
func Void() Type {
	return Type{Base: TypeBase{Kind: BaseVoid}}
}

// BuiltIn returns a builtin value type such as "int"
func BuiltIn(name string) Type {
	return Type{Base: TypeBase{Kind: BaseBuiltIn, Name: name}}
}

// ClassType returns a class value type
func ClassType(name string, templateArgs ...Type) Type {
	return Type{Base: TypeBase{Kind: BaseClass, Name: name, TemplateArguments: templateArgs}}
}

// EnumType returns an enum value type
func EnumType(name string) Type {
	return Type{Base: TypeBase{Kind: BaseEnum, Name: name}}
}

// TemplateParameter returns a reference to the template parameter at index
func TemplateParameter(index int, name string) Type {
	return Type{Base: TypeBase{Kind: BaseTemplateParameter, Index: index, Name: name}}
}

// PtrTo returns a pointer to t
func (t Type) PtrTo() Type {
	t.Indirection = IndirectionPtr
	return t
}

// RefTo returns a reference to t
func (t Type) RefTo() Type {
	t.Indirection = IndirectionRef
	return t
}

// Const returns t with const qualification
func (t Type) Const() Type {
	t.IsConst = true
	return t
}

// IsVoid reports whether t is plain void (not a void pointer)
func (t Type) IsVoid() bool {
	return t.Base.Kind == BaseVoid && t.Indirection == IndirectionNone
}

// IsClass reports whether the base of t is a class
func (t Type) IsClass() bool {
	return t.Base.Kind == BaseClass
}

// IsClassValue reports whether t is a class passed by value
func (t Type) IsClassValue() bool {
	return t.IsClass() && t.Indirection == IndirectionNone
}

// ClassName returns the instantiated class name ("QVector<int>") for class
// bases and the plain name otherwise.
func (t Type) ClassName() string {
	if t.Base.Kind != BaseClass || len(t.Base.TemplateArguments) == 0 {
		return t.Base.Name
	}
	return InstantiatedName(t.Base.Name, t.Base.TemplateArguments)
}

// InstantiatedName renders "name<args...>"
func InstantiatedName(name string, args []Type) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = arg.ToCppCode()
	}
	return fmt.Sprintf("%s<%s>", name, strings.Join(parts, ", "))
}

// HasTemplateParameters reports whether t mentions a template parameter
func (t Type) HasTemplateParameters() bool {
	if t.Base.Kind == BaseTemplateParameter {
		return true
	}
	for _, arg := range t.Base.TemplateArguments {
		if arg.HasTemplateParameters() {
			return true
		}
	}
	return false
}

// Substitute replaces template parameters with the given arguments
func (t Type) Substitute(args []Type) Type {
	if t.Base.Kind == BaseTemplateParameter {
		if t.Base.Index < 0 || t.Base.Index >= len(args) {
			return t
		}
		out := args[t.Base.Index]
		if t.Indirection != IndirectionNone {
			out.Indirection = t.Indirection
		}
		out.IsConst = out.IsConst || t.IsConst
		return out
	}
	if len(t.Base.TemplateArguments) > 0 {
		subst := make([]Type, len(t.Base.TemplateArguments))
		for i, arg := range t.Base.TemplateArguments {
			subst[i] = arg.Substitute(args)
		}
		t.Base.TemplateArguments = subst
	}
	return t
}

// ToCppCode renders t in C++ syntax
func (t Type) ToCppCode() string {
	var base string
	switch t.Base.Kind {
	case BaseVoid:
		base = "void"
	case BaseClass:
		base = t.ClassName()
	case BaseTemplateParameter:
		if t.Base.Name != "" {
			base = t.Base.Name
		} else {
			base = fmt.Sprintf("T%d", t.Base.Index)
		}
	default:
		base = t.Base.Name
	}
	if t.IsConst {
		base = "const " + base
	}
	switch t.Indirection {
	case IndirectionPtr:
		return base + "*"
	case IndirectionRef:
		return base + "&"
	case IndirectionPtrPtr:
		return base + "**"
	case IndirectionRValueRef:
		return base + "&&"
	}
	return base
}

// String implements fmt.Stringer
func (t Type) String() string {
	return t.ToCppCode()
}

// Equal reports structural equality of two type references
func (t Type) Equal(other Type) bool {
	if t.Indirection != other.Indirection || t.IsConst != other.IsConst {
		return false
	}
	if t.Base.Kind != other.Base.Kind || t.Base.Name != other.Base.Name || t.Base.Index != other.Base.Index {
		return false
	}
	if len(t.Base.TemplateArguments) != len(other.Base.TemplateArguments) {
		return false
	}
	for i := range t.Base.TemplateArguments {
		if !t.Base.TemplateArguments[i].Equal(other.Base.TemplateArguments[i]) {
			return false
		}
	}
	return true
}
