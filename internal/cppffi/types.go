// Package cppffi turns native methods into free functions with a stable C
// ABI. Every function it produces can be declared in an extern "C" block
// and called from cgo: receivers become explicit pointers, class values
// travel by pointer and ownership of returned objects is spelled out by a
// return convention.
package cppffi

import (
	"fmt"

	"github.com/conduit-lang/cppbind/internal/cppdata"
)

// Conversion describes how a native type is adjusted to cross the boundary
type Conversion int

const (
	// NoChange passes the value as is
	NoChange Conversion = iota
	// RefToPtr passes a reference as a pointer
	RefToPtr
	// ValueToPtr passes a class value as a pointer to it
	ValueToPtr
	// EnumToInt passes an enum as its integer value
	EnumToInt
)

func (c Conversion) String() string {
	switch c {
	case RefToPtr:
		return "ref_to_ptr"
	case ValueToPtr:
		return "value_to_ptr"
	case EnumToInt:
		return "enum_to_int"
	default:
		return "no_change"
	}
}

// Type pairs a native type with its boundary representation
type Type struct {
	Original   cppdata.Type
	FFI        cppdata.Type
	Conversion Conversion
}

// MeaningKind says what an ABI argument stands for
type MeaningKind int

const (
	// MeaningThis is the receiver
	MeaningThis MeaningKind = iota
	// MeaningArgument is an argument of the native method
	MeaningArgument
	// MeaningReturnValue is the output slot of a returned value
	MeaningReturnValue
)

// ArgumentMeaning links an ABI argument to the native signature
type ArgumentMeaning struct {
	Kind MeaningKind
	// Index of the native argument for MeaningArgument
	Index int
}

func (m ArgumentMeaning) String() string {
	switch m.Kind {
	case MeaningThis:
		return "this"
	case MeaningReturnValue:
		return "return"
	default:
		return fmt.Sprintf("arg%d", m.Index)
	}
}

// Argument is one parameter of an ABI function
type Argument struct {
	Name    string
	Type    Type
	Meaning ArgumentMeaning
}

// ReturnConvention describes how a result leaves the ABI function
type ReturnConvention int

const (
	// ReturnNone returns nothing
	ReturnNone ReturnConvention = iota
	// ReturnDirect returns the value itself
	ReturnDirect
	// ReturnOutputArgument constructs the result into caller-provided storage
	ReturnOutputArgument
	// ReturnOwnedPointer allocates the result and transfers ownership
	ReturnOwnedPointer
)

func (r ReturnConvention) String() string {
	switch r {
	case ReturnDirect:
		return "direct"
	case ReturnOutputArgument:
		return "output_argument"
	case ReturnOwnedPointer:
		return "owned_pointer"
	default:
		return "none"
	}
}

// FunctionKind distinguishes ordinary wrappers from destructor wrappers
type FunctionKind int

const (
	// KindMethod wraps a method, constructor or free function
	KindMethod FunctionKind = iota
	// KindDestructor destroys an object
	KindDestructor
)

// Function is an ABI-stable free function wrapping one native method
type Function struct {
	// Name is the exported C symbol
	Name      string
	Kind      FunctionKind
	Arguments []Argument
	// ReturnType is the boundary return type; void for output arguments
	ReturnType Type
	Return     ReturnConvention
	// ReturnArgIndex is set for ReturnOutputArgument
	ReturnArgIndex *int
	Dispatch       cppdata.DispatchKind
	// Class is the receiver or constructed class; zero for free functions
	Class cppdata.Type
	// InPlace is set for destructors of movable classes, whose storage is
	// owned by the caller.
	InPlace bool
	Method  *cppdata.Method
}

// HasThis reports whether the first argument is the receiver
func (f *Function) HasThis() bool {
	return len(f.Arguments) > 0 && f.Arguments[0].Meaning.Kind == MeaningThis
}

// ArgumentFor returns the index of the ABI argument carrying the native
// argument i, or -1.
func (f *Function) ArgumentFor(i int) int {
	for idx, arg := range f.Arguments {
		if arg.Meaning.Kind == MeaningArgument && arg.Meaning.Index == i {
			return idx
		}
	}
	return -1
}

// Header returns the header that declares the wrapped method
func (f *Function) Header() string {
	if f.Method == nil {
		return ""
	}
	return f.Method.Origin.IncludeFile
}
