// Package goinfo describes the Go side of a binding: which wrapper types
// exist, which functions and methods call which ABI functions, and which
// cppcore interfaces each wrapper implements. Code emission reads this
// model; it does not make decisions of its own.
package goinfo

import (
	"strings"

	"github.com/conduit-lang/cppbind/internal/cppdata"
	"github.com/conduit-lang/cppbind/internal/cppffi"
	"github.com/conduit-lang/cppbind/internal/errors"
)

// Path locates a Go identifier in the generated package tree
type Path struct {
	// Dependency is the name of the dependency that generated the package;
	// empty for the package tree being generated.
	Dependency string
	// Package is the package path relative to the module root; empty for
	// the root package.
	Package []string
	Name    string
}

// PackageKey identifies the package of the path
func (p Path) PackageKey() string {
	key := strings.Join(p.Package, "/")
	if p.Dependency != "" {
		return p.Dependency + ":" + key
	}
	return key
}

// String renders the path as pkg/sub.Name
func (p Path) String() string {
	if len(p.Package) == 0 {
		return p.Name
	}
	return strings.Join(p.Package, "/") + "." + p.Name
}

// WrapperKind tells how a native type is mirrored in Go
type WrapperKind int

const (
	// EnumWrapper is a named integer type with constants
	EnumWrapper WrapperKind = iota
	// ImmovableClassWrapper is an opaque type only handled through pointers
	ImmovableClassWrapper
	// MovableClassWrapper has the native layout size and may live in
	// storage allocated by Go-side code
	MovableClassWrapper
)

func (k WrapperKind) String() string {
	switch k {
	case EnumWrapper:
		return "enum"
	case ImmovableClassWrapper:
		return "immovable"
	default:
		return "movable"
	}
}

// EnumValue is a Go constant of an enum wrapper
type EnumValue struct {
	Name  string
	Value int64
	// CppName is the native spelling of the variant
	CppName string
}

// WrapperType is the Go mirror of one native type
type WrapperType struct {
	CppName string
	// CppType is the native type the wrapper stands for
	CppType    cppdata.Type
	Path       Path
	Kind       WrapperKind
	Size       int
	EnumValues []EnumValue
	Doc        string
}

// GoTypeKind classifies Go-side types in wrapper signatures
type GoTypeKind int

const (
	GoVoid GoTypeKind = iota
	// GoBuiltIn is a Go numeric or bool type
	GoBuiltIn
	// GoEnum is an enum wrapper passed by value
	GoEnum
	// GoClassPtrArg is a *T argument for a class passed by value, reference
	// or pointer
	GoClassPtrArg
	// GoPtr is a nullable non-owning cppcore.Ptr[*T]
	GoPtr
	// GoRef is a non-null non-owning cppcore.Ref[*T]
	GoRef
	// GoBox is an owning *cppcore.Box[*T]
	GoBox
	// GoBuiltInPtr is a *int32 style pointer, or unsafe.Pointer for void*
	GoBuiltInPtr
	// GoReceiver is a cppcore.Receiver
	GoReceiver
)

// GoType is a type as it appears in a generated Go signature
type GoType struct {
	Kind GoTypeKind
	// Builtin names the Go and C spellings for GoBuiltIn and GoBuiltInPtr
	Builtin Builtin
	// Path is the wrapper type for enum and class kinds
	Path Path
	// Movable is set for class kinds whose wrapper is movable
	Movable bool
}

// String renders the Go spelling of the type with unqualified wrapper names
func (t GoType) String() string {
	switch t.Kind {
	case GoVoid:
		return ""
	case GoBuiltIn:
		return t.Builtin.Go
	case GoBuiltInPtr:
		if t.Builtin.IsVoid() {
			return "unsafe.Pointer"
		}
		return "*" + t.Builtin.Go
	case GoEnum:
		return t.Path.Name
	case GoClassPtrArg:
		return "*" + t.Path.Name
	case GoPtr:
		return "cppcore.Ptr[*" + t.Path.Name + "]"
	case GoRef:
		return "cppcore.Ref[*" + t.Path.Name + "]"
	case GoBox:
		return "*cppcore.Box[*" + t.Path.Name + "]"
	case GoReceiver:
		return "cppcore.Receiver"
	}
	return "?"
}

// CompleteType layers the native, boundary and Go views of one type
type CompleteType struct {
	Cpp cppdata.Type
	Ffi cppffi.Type
	Go  GoType
}

// SelfArg describes the receiver of a wrapper function
type SelfArg int

const (
	SelfNone SelfArg = iota
	SelfConstRef
	SelfMutRef
	// SelfValue consumes the receiver
	SelfValue
)

// ScopeKind tells where a wrapper function lives
type ScopeKind int

const (
	// ScopeImpl attaches the function to a wrapper type
	ScopeImpl ScopeKind = iota
	// ScopeTraitImpl makes the function part of an interface implementation
	ScopeTraitImpl
	// ScopeFree is a package-level function
	ScopeFree
)

// Scope of a wrapper function
type Scope struct {
	Kind ScopeKind
	// Target is the wrapper type for ScopeImpl and ScopeTraitImpl
	Target Path
}

// FunctionArgument is one Go parameter
type FunctionArgument struct {
	Name string
	Type CompleteType
	// FfiIndex is the position of the matching ABI argument
	FfiIndex int
}

// FunctionKind distinguishes call wrappers from deleters
type FunctionKind int

const (
	// FfiWrapper calls one ABI function
	FfiWrapper FunctionKind = iota
	// DeletableImpl destroys the receiver and releases its storage
	DeletableImpl
	// ReceiverGetter returns the connection id of a signal or slot
	ReceiverGetter
)

// Function is one generated Go function or method
type Function struct {
	Scope    Scope
	SelfArg  SelfArg
	IsUnsafe bool
	Name     string
	// Module is the package the function is emitted into
	Module     []string
	Arguments  []FunctionArgument
	ReturnType CompleteType
	Kind       FunctionKind

	// Ffi is the called ABI function for FfiWrapper and the ABI function
	// of the signal or slot for ReceiverGetter
	Ffi *cppffi.Function
	// ReturnTypeFfiIndex is the output argument index, when there is one
	ReturnTypeFfiIndex *int

	// Receiver is the signal or slot returned by a ReceiverGetter
	Receiver *Receiver

	// Deleter is the destructor ABI symbol for DeletableImpl
	Deleter string
	// FreeStorage is set when the deleter must also release storage
	// allocated by generated Go code
	FreeStorage bool

	Doc string
}

// IsMethod reports whether the function renders with a Go receiver
func (f *Function) IsMethod() bool {
	return f.SelfArg != SelfNone && f.Scope.Kind != ScopeFree
}

// TraitType names a cppcore interface and its type arguments
type TraitType struct {
	Name string
	Args []GoType
}

// AssociatedType binds a named type of an interface implementation
type AssociatedType struct {
	Name  string
	Value GoType
}

// TraitImpl records that a wrapper implements a cppcore interface
type TraitImpl struct {
	Target          Path
	Trait           TraitType
	AssociatedTypes []AssociatedType
	Functions       []Function
}

// Module is a generated Go package
type Module struct {
	Path []string
	// CppNamespace is the native namespace the package mirrors
	CppNamespace string
	Doc          string
}

// Name returns the package name
func (m Module) Name(root string) string {
	if len(m.Path) == 0 {
		return root
	}
	return m.Path[len(m.Path)-1]
}

// Database is the complete Go-side model of a binding
type Database struct {
	Types       []WrapperType
	Functions   []Function
	TraitImpls  []TraitImpl
	Modules     []Module
	Diagnostics errors.ErrorList
}

// FfiNames returns the ABI symbols that generated Go code calls
func (db *Database) FfiNames() map[string]bool {
	used := make(map[string]bool)
	collect := func(f *Function) {
		switch f.Kind {
		case FfiWrapper:
			used[f.Ffi.Name] = true
		case DeletableImpl:
			used[f.Deleter] = true
		}
	}
	for i := range db.Functions {
		collect(&db.Functions[i])
	}
	for _, impl := range db.TraitImpls {
		for i := range impl.Functions {
			collect(&impl.Functions[i])
		}
	}
	return used
}

// FindType returns the wrapper for a native type name
func (db *Database) FindType(cppName string) (*WrapperType, bool) {
	for i := range db.Types {
		if db.Types[i].CppName == cppName {
			return &db.Types[i], true
		}
	}
	return nil, false
}

// FunctionsIn returns the functions emitted into the given module
func (db *Database) FunctionsIn(module []string) []Function {
	key := strings.Join(module, "/")
	var out []Function
	for _, f := range db.Functions {
		if strings.Join(f.Module, "/") == key {
			out = append(out, f)
		}
	}
	return out
}

// TypesIn returns the wrapper types declared in the given module
func (db *Database) TypesIn(module []string) []WrapperType {
	key := strings.Join(module, "/")
	var out []WrapperType
	for _, t := range db.Types {
		if strings.Join(t.Path.Package, "/") == key {
			out = append(out, t)
		}
	}
	return out
}

// TraitImplsIn returns the interface implementations for types of a module
func (db *Database) TraitImplsIn(module []string) []TraitImpl {
	key := strings.Join(module, "/")
	var out []TraitImpl
	for _, impl := range db.TraitImpls {
		if strings.Join(impl.Target.Package, "/") == key {
			out = append(out, impl)
		}
	}
	return out
}

// ReceiverKind tells signal getters from slot getters
type ReceiverKind int

const (
	ReceiverSignal ReceiverKind = iota
	ReceiverSlot
)

func (k ReceiverKind) String() string {
	if k == ReceiverSlot {
		return "Slot"
	}
	return "Signal"
}

// Receiver is a signal or slot as seen by a connection call
type Receiver struct {
	Kind ReceiverKind
	// ID is the normalized signature with the SIGNAL (2) or SLOT (1)
	// prefix, e.g. 2valueChanged(int)
	ID string
}
