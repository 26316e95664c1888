package codegen

import (
	"fmt"
	"strings"

	"github.com/conduit-lang/cppbind/internal/cppdata"
	"github.com/conduit-lang/cppbind/internal/cppffi"
)

// cppDecl renders a boundary type for the C++ side of the shim, where
// classes keep their real names
func cppDecl(t cppdata.Type) string {
	return t.ToCppCode()
}

// cDecl renders a boundary type for a cgo preamble. C cannot name C++
// classes, so class pointers are declared as void pointers. The symbol is
// extern "C" and carries no type information, so both declarations link to
// the same function.
func cDecl(t cppdata.Type) string {
	if t.IsClass() {
		if t.IsConst {
			return "const void*"
		}
		return "void*"
	}
	return t.ToCppCode()
}

// prototype renders "ret name(type arg, ...)" with the given type spelling
func prototype(f *cppffi.Function, decl func(cppdata.Type) string) string {
	args := make([]string, len(f.Arguments))
	for i, arg := range f.Arguments {
		args[i] = fmt.Sprintf("%s %s", decl(arg.Type.FFI), arg.Name)
	}
	params := strings.Join(args, ", ")
	if params == "" {
		params = "void"
	}
	return fmt.Sprintf("%s %s(%s)", decl(f.ReturnType.FFI), f.Name, params)
}

// CPrototype renders the declaration of f for a cgo preamble
func CPrototype(f *cppffi.Function) string {
	return prototype(f, cDecl) + ";"
}

// destructorPrototype declares a deleter when only its symbol is known
func destructorPrototype(name string) string {
	return fmt.Sprintf("void %s(void* self);", name)
}
