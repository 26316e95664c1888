// Package codegen renders the generated sources of a binding: the C++ shim
// library that exports the ABI functions, and the Go package tree that
// calls them through cgo.
package codegen

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/conduit-lang/cppbind/internal/cppdata"
	"github.com/conduit-lang/cppbind/internal/cppffi"
	"github.com/conduit-lang/cppbind/internal/goinfo"
	utilstrings "github.com/conduit-lang/cppbind/internal/util/strings"
)

// CppOptions configures the C++ shim library
type CppOptions struct {
	LibName string
	// Includes are the library headers the shim includes
	Includes []string
	// IncludeDirs are passed to the compiler of the shim
	IncludeDirs []string
	// LinkLibs and Frameworks are linked into the shim library
	LinkLibs   []string
	Frameworks []string
	LibDirs    []string
	// PerHeader emits one source file per declaring header
	PerHeader bool
}

// CppGenerator renders the c_lib directory of a binding
type CppGenerator struct {
	opts   CppOptions
	buf    *bytes.Buffer
	indent int
}

// NewCppGenerator creates a C++ shim generator
func NewCppGenerator(opts CppOptions) *CppGenerator {
	return &CppGenerator{
		opts: opts,
		buf:  &bytes.Buffer{},
	}
}

// GlobalHeader returns the name of the header that includes the library
func (g *CppGenerator) GlobalHeader() string {
	return g.opts.LibName + "_c_global.h"
}

// Generate renders the shim library for the given ABI functions. The
// result maps file names relative to the c_lib directory to contents.
func (g *CppGenerator) Generate(ctx context.Context, functions []cppffi.Function, types []goinfo.WrapperType) (map[string]string, error) {
	if g.opts.LibName == "" {
		return nil, fmt.Errorf("library name is required")
	}
	files := make(map[string]string)
	files[g.GlobalHeader()] = g.renderGlobalHeader()
	files["sized_types.cxx"] = g.renderSizedTypes(types)

	var sources []string
	if g.opts.PerHeader {
		perHeader, err := g.renderPerHeader(ctx, functions)
		if err != nil {
			return nil, err
		}
		for name, content := range perHeader {
			files[name] = content
			sources = append(sources, name)
		}
		sort.Strings(sources)
	} else {
		name := g.opts.LibName + "_c.cpp"
		files[name] = g.renderSource(functions)
		sources = []string{name}
	}

	files["CMakeLists.txt"] = g.renderCMake(sources)
	return files, nil
}

// fork returns a generator with the same options and its own buffer
func (g *CppGenerator) fork() *CppGenerator {
	return NewCppGenerator(g.opts)
}

// renderPerHeader renders one source per declaring header. Partitions are
// disjoint, so they render concurrently.
func (g *CppGenerator) renderPerHeader(ctx context.Context, functions []cppffi.Function) (map[string]string, error) {
	groups := make(map[string][]cppffi.Function)
	var headers []string
	for _, f := range functions {
		h := f.Header()
		if _, ok := groups[h]; !ok {
			headers = append(headers, h)
		}
		groups[h] = append(groups[h], f)
	}
	sort.Strings(headers)

	rendered := make([]string, len(headers))
	eg, ctx := errgroup.WithContext(ctx)
	for i, h := range headers {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rendered[i] = g.fork().renderSource(groups[h])
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	names := g.sourceNames(headers)
	out := make(map[string]string, len(headers))
	for i := range headers {
		out[names[i]] = rendered[i]
	}
	return out, nil
}

// sourceNames names the source of each header after its full path.
// Headers whose paths map to the same identifier get numbered names.
func (g *CppGenerator) sourceNames(headers []string) []string {
	ids := make([]string, len(headers))
	for i, h := range headers {
		ids[i] = utilstrings.ToIdentifier(h)
		if ids[i] == "" {
			ids[i] = "global"
		}
	}
	ids = utilstrings.Disambiguate(ids)
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = fmt.Sprintf("%s_c_%s.cpp", g.opts.LibName, id)
	}
	return names
}

func (g *CppGenerator) reset() {
	g.buf.Reset()
	g.indent = 0
}

func (g *CppGenerator) writeLine(format string, args ...interface{}) {
	if format == "" {
		g.buf.WriteString("\n")
		return
	}
	for i := 0; i < g.indent; i++ {
		g.buf.WriteString("  ")
	}
	if len(args) > 0 {
		g.buf.WriteString(fmt.Sprintf(format, args...))
	} else {
		g.buf.WriteString(format)
	}
	g.buf.WriteString("\n")
}

func (g *CppGenerator) renderGlobalHeader() string {
	g.reset()
	guard := strings.ToUpper(g.opts.LibName) + "_C_GLOBAL_H"
	g.writeLine("// Code generated by cppbind. DO NOT EDIT.")
	g.writeLine("#ifndef %s", guard)
	g.writeLine("#define %s", guard)
	g.writeLine("")
	g.writeLine("#include <new>")
	g.writeLine("#include <stddef.h>")
	g.writeLine("#include <stdint.h>")
	g.writeLine("")
	for _, inc := range g.opts.Includes {
		g.writeLine("#include \"%s\"", inc)
	}
	g.writeLine("")
	g.writeLine("#endif")
	return g.buf.String()
}

func (g *CppGenerator) renderSource(functions []cppffi.Function) string {
	g.reset()
	g.writeLine("// Code generated by cppbind. DO NOT EDIT.")
	g.writeLine("#include \"%s\"", g.GlobalHeader())
	g.writeLine("")
	g.writeLine("extern \"C\" {")
	for i := range functions {
		g.writeLine("")
		g.writeFunction(&functions[i])
	}
	g.writeLine("")
	g.writeLine("} // extern \"C\"")
	return g.buf.String()
}

func (g *CppGenerator) writeFunction(f *cppffi.Function) {
	if f.Method != nil {
		g.writeLine("// %s", f.Method.ShortText())
	}
	g.writeLine("%s {", prototype(f, cppDecl))
	g.indent++
	g.writeLine("%s", functionBody(f))
	g.indent--
	g.writeLine("}")
}

// functionBody renders the single statement of an ABI function
func functionBody(f *cppffi.Function) string {
	if f.Kind == cppffi.KindDestructor {
		if f.InPlace {
			_, name := cppdata.SplitQualified(cppdata.TemplateName(f.Class.Base.Name))
			return fmt.Sprintf("self->~%s();", name)
		}
		return "delete self;"
	}

	m := f.Method
	var args []string
	for _, arg := range f.Arguments {
		if arg.Meaning.Kind == cppffi.MeaningArgument {
			args = append(args, argumentExpr(arg))
		}
	}
	argList := strings.Join(args, ", ")

	var call string
	switch {
	case m.IsConstructor:
		class := f.Class.ToCppCode()
		if f.Return == cppffi.ReturnOutputArgument {
			return fmt.Sprintf("new (output) %s(%s);", class, argList)
		}
		return fmt.Sprintf("return new %s(%s);", class, argList)
	case m.ConversionOperator != nil:
		call = fmt.Sprintf("static_cast<%s>(*self)", m.ConversionOperator.ToCppCode())
	case m.HasReceiver() && f.Dispatch == cppdata.DispatchVTableSlot:
		call = fmt.Sprintf("self->%s(%s)", m.Name, argList)
	case m.HasReceiver():
		call = fmt.Sprintf("self->%s::%s(%s)", m.Scope, m.Name, argList)
	case m.IsStatic:
		call = fmt.Sprintf("%s::%s(%s)", m.Scope, m.Name, argList)
	default:
		call = fmt.Sprintf("%s(%s)", m.Name, argList)
	}

	switch f.Return {
	case cppffi.ReturnNone:
		return call + ";"
	case cppffi.ReturnOutputArgument:
		value := f.Arguments[*f.ReturnArgIndex].Type.Original
		return fmt.Sprintf("new (output) %s(%s);", value.ToCppCode(), call)
	case cppffi.ReturnOwnedPointer:
		return fmt.Sprintf("return new %s(%s);", f.ReturnType.Original.ToCppCode(), call)
	}
	switch f.ReturnType.Conversion {
	case cppffi.RefToPtr:
		return fmt.Sprintf("return &%s;", call)
	case cppffi.EnumToInt:
		return fmt.Sprintf("return static_cast<int>(%s);", call)
	}
	return fmt.Sprintf("return %s;", call)
}

// argumentExpr converts an ABI argument back to the native argument
func argumentExpr(arg cppffi.Argument) string {
	switch arg.Type.Conversion {
	case cppffi.ValueToPtr, cppffi.RefToPtr:
		return "*" + arg.Name
	case cppffi.EnumToInt:
		return fmt.Sprintf("static_cast<%s>(%s)", arg.Type.Original.ToCppCode(), arg.Name)
	}
	return arg.Name
}

// renderSizedTypes renders the size checks. The build fails when a movable
// class no longer has the size its Go mirror was generated with.
func (g *CppGenerator) renderSizedTypes(types []goinfo.WrapperType) string {
	g.reset()
	g.writeLine("// Code generated by cppbind. DO NOT EDIT.")
	g.writeLine("#include \"%s\"", g.GlobalHeader())
	g.writeLine("")
	for _, t := range types {
		if t.Kind != goinfo.MovableClassWrapper || t.Path.Dependency != "" {
			continue
		}
		g.writeLine("static_assert(sizeof(%s) == %d, \"size of %s changed, regenerate the binding\");",
			t.CppName, t.Size, t.CppName)
	}
	return g.buf.String()
}

func (g *CppGenerator) renderCMake(sources []string) string {
	g.reset()
	lib := g.opts.LibName + "_c"
	g.writeLine("# Code generated by cppbind. DO NOT EDIT.")
	g.writeLine("cmake_minimum_required(VERSION 3.5)")
	g.writeLine("project(%s CXX)", lib)
	g.writeLine("set(CMAKE_CXX_STANDARD 11)")
	g.writeLine("set(CMAKE_POSITION_INDEPENDENT_CODE ON)")
	g.writeLine("")
	g.writeLine("include_directories(${CMAKE_CURRENT_SOURCE_DIR})")
	for _, dir := range g.opts.IncludeDirs {
		g.writeLine("include_directories(\"%s\")", dir)
	}
	for _, dir := range g.opts.LibDirs {
		g.writeLine("link_directories(\"%s\")", dir)
	}
	g.writeLine("")
	g.writeLine("add_library(%s STATIC %s)", lib, strings.Join(sources, " "))
	for _, l := range g.opts.LinkLibs {
		g.writeLine("target_link_libraries(%s %s)", lib, l)
	}
	for _, fw := range g.opts.Frameworks {
		g.writeLine("target_link_libraries(%s \"-framework %s\")", lib, fw)
	}
	g.writeLine("add_library(%s_sized_types OBJECT sized_types.cxx)", g.opts.LibName)
	g.writeLine("add_dependencies(%s %s_sized_types)", lib, g.opts.LibName)
	g.writeLine("install(TARGETS %s DESTINATION lib)", lib)
	return g.buf.String()
}
