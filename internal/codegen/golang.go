package codegen

import (
	"bytes"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/conduit-lang/cppbind/internal/cppffi"
	"github.com/conduit-lang/cppbind/internal/errors"
	"github.com/conduit-lang/cppbind/internal/goinfo"
)

// CppcorePath is the import path of the runtime used by generated code
const CppcorePath = "github.com/conduit-lang/cppbind/pkg/cppcore"

const generatedHeader = "Code generated by cppbind. DO NOT EDIT."

const preambleIncludes = `#include <stdbool.h>
#include <stddef.h>
#include <stdint.h>
#include <stdlib.h>`

// GoDependency locates the package tree generated for a dependency
type GoDependency struct {
	ModulePath  string
	PackageName string
}

// GoOptions configures the generated Go package tree
type GoOptions struct {
	ModulePath string
	// PackageName names the root package
	PackageName string
	LibName     string
	// Dependencies maps dependency names to their generated modules
	Dependencies map[string]GoDependency

	LinkLibs   []string
	Frameworks []string
	LibDirs    []string
}

// GoGenerator renders the Go side of a binding from a goinfo database
type GoGenerator struct {
	opts GoOptions
}

// NewGoGenerator creates a Go package tree generator
func NewGoGenerator(opts GoOptions) *GoGenerator {
	return &GoGenerator{opts: opts}
}

// Generate renders every module of db. The result maps slash-separated
// paths relative to the module root to file contents.
func (g *GoGenerator) Generate(db *goinfo.Database) (map[string]string, error) {
	if g.opts.ModulePath == "" || g.opts.PackageName == "" {
		return nil, fmt.Errorf("module path and package name are required")
	}
	if err := CheckCollisions(db); err != nil {
		return nil, err
	}

	files := make(map[string]string)
	for _, m := range db.Modules {
		name := m.Name(g.opts.PackageName)
		dir := strings.Join(m.Path, "/")
		base := name
		if base == "ffi" {
			base = "ffi_wrappers"
		}
		file := path.Join(dir, base+".go")

		code, callsC, err := g.renderModule(db, m, name)
		if err != nil {
			return nil, errors.NewRenderFailed(file, err.Error())
		}
		files[file] = code
		if callsC {
			files[path.Join(dir, "ffi.go")] = g.renderDirectives(m, name)
		}
	}
	return files, nil
}

func (g *GoGenerator) importPath(pkg []string) string {
	if len(pkg) == 0 {
		return g.opts.ModulePath
	}
	return g.opts.ModulePath + "/" + strings.Join(pkg, "/")
}

// qual names a wrapper type, importing its package when needed
func (g *GoGenerator) qual(p goinfo.Path) *jen.Statement {
	if p.Dependency == "" {
		return jen.Qual(g.importPath(p.Package), p.Name)
	}
	dep := g.opts.Dependencies[p.Dependency]
	importPath := dep.ModulePath
	if len(p.Package) > 0 {
		importPath += "/" + strings.Join(p.Package, "/")
	}
	return jen.Qual(importPath, p.Name)
}

// moduleFile holds the state of one rendered package file
type moduleFile struct {
	*jen.File
	prototypes map[string]string
}

func (g *GoGenerator) newFile(m goinfo.Module, name string) *moduleFile {
	f := jen.NewFilePathName(g.importPath(m.Path), name)
	f.HeaderComment(generatedHeader)
	if m.Doc != "" {
		f.PackageComment(m.Doc)
	}
	f.ImportName(CppcorePath, "cppcore")
	f.ImportName(g.opts.ModulePath, g.opts.PackageName)
	for _, dep := range g.opts.Dependencies {
		f.ImportName(dep.ModulePath, dep.PackageName)
	}
	return &moduleFile{File: f, prototypes: make(map[string]string)}
}

func (g *GoGenerator) renderModule(db *goinfo.Database, m goinfo.Module, name string) (string, bool, error) {
	f := g.newFile(m, name)

	for _, t := range db.TypesIn(m.Path) {
		g.renderType(f, t)
	}
	for _, fn := range db.FunctionsIn(m.Path) {
		g.renderFunction(f, &fn)
	}
	for _, impl := range db.TraitImplsIn(m.Path) {
		g.renderTraitImpl(f, impl)
	}

	if len(f.prototypes) > 0 {
		names := make([]string, 0, len(f.prototypes))
		for n := range f.prototypes {
			names = append(names, n)
		}
		sort.Strings(names)
		lines := []string{preambleIncludes, ""}
		for _, n := range names {
			lines = append(lines, f.prototypes[n])
		}
		f.CgoPreamble(strings.Join(lines, "\n"))
	}

	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return "", false, err
	}
	return buf.String(), len(f.prototypes) > 0, nil
}

// renderDirectives renders the file carrying the package's link flags
func (g *GoGenerator) renderDirectives(m goinfo.Module, name string) string {
	rel := strings.Repeat("../", len(m.Path))
	flags := []string{
		fmt.Sprintf("-L${SRCDIR}/%sc_lib/install/lib", rel),
		"-l" + g.opts.LibName + "_c",
	}
	for _, dir := range g.opts.LibDirs {
		flags = append(flags, "-L"+dir)
	}
	for _, lib := range g.opts.LinkLibs {
		flags = append(flags, "-l"+lib)
	}
	for _, fw := range g.opts.Frameworks {
		flags = append(flags, "-framework "+fw)
	}
	flags = append(flags, "-lstdc++")

	var b bytes.Buffer
	fmt.Fprintf(&b, "// %s\n\n", generatedHeader)
	fmt.Fprintf(&b, "package %s\n\n", name)
	fmt.Fprintf(&b, "// #cgo LDFLAGS: %s\n", strings.Join(flags, " "))
	b.WriteString("import \"C\"\n")
	return b.String()
}

func comment(f *moduleFile, text string) {
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		f.Comment(line)
	}
}

func (g *GoGenerator) renderType(f *moduleFile, t goinfo.WrapperType) {
	switch t.Kind {
	case goinfo.EnumWrapper:
		comment(f, fmt.Sprintf("%s mirrors the C++ enum %s.", t.Path.Name, t.CppName))
	case goinfo.MovableClassWrapper:
		comment(f, fmt.Sprintf("%s mirrors the C++ class %s. Values live in C memory and are\nowned through cppcore.Box.", t.Path.Name, t.CppName))
	default:
		comment(f, fmt.Sprintf("%s mirrors the C++ class %s. It is only handled through pointers.", t.Path.Name, t.CppName))
	}
	if t.Doc != "" {
		f.Comment("")
		comment(f, t.Doc)
	}

	switch t.Kind {
	case goinfo.EnumWrapper:
		f.Type().Id(t.Path.Name).Int32()
		if len(t.EnumValues) > 0 {
			defs := make([]jen.Code, len(t.EnumValues))
			for i, v := range t.EnumValues {
				defs[i] = jen.Id(v.Name).Id(t.Path.Name).Op("=").Lit(int(v.Value))
			}
			f.Const().Defs(defs...)
		}
	case goinfo.MovableClassWrapper:
		f.Type().Id(t.Path.Name).Struct(
			jen.Id("storage").Index(jen.Lit(t.Size)).Byte(),
		)
	default:
		f.Type().Id(t.Path.Name).Struct(
			jen.Id("_").Index(jen.Lit(0)).Byte(),
		)
	}
	f.Line()
}

// goType renders the Go spelling of a signature type
func (g *GoGenerator) goType(t goinfo.GoType) *jen.Statement {
	switch t.Kind {
	case goinfo.GoBuiltIn:
		return builtinType(t.Builtin)
	case goinfo.GoBuiltInPtr:
		if t.Builtin.IsVoid() {
			return jen.Qual("unsafe", "Pointer")
		}
		return jen.Op("*").Add(builtinType(t.Builtin))
	case goinfo.GoEnum:
		return g.qual(t.Path)
	case goinfo.GoClassPtrArg:
		return jen.Op("*").Add(g.qual(t.Path))
	case goinfo.GoPtr:
		return jen.Qual(CppcorePath, "Ptr").Types(jen.Op("*").Add(g.qual(t.Path)))
	case goinfo.GoRef:
		return jen.Qual(CppcorePath, "Ref").Types(jen.Op("*").Add(g.qual(t.Path)))
	case goinfo.GoBox:
		return jen.Op("*").Qual(CppcorePath, "Box").Types(jen.Op("*").Add(g.qual(t.Path)))
	case goinfo.GoReceiver:
		return jen.Qual(CppcorePath, "Receiver")
	}
	return jen.Null()
}

func builtinType(b goinfo.Builtin) *jen.Statement {
	if name, ok := b.RuntimeName(); ok {
		return jen.Qual(CppcorePath, name)
	}
	return jen.Id(b.Go)
}

func unsafePointer(c jen.Code) *jen.Statement {
	return jen.Qual("unsafe", "Pointer").Call(c)
}

// toC converts a Go argument to the cgo type of its ABI parameter
func toC(arg goinfo.FunctionArgument) *jen.Statement {
	name := jen.Id(arg.Name)
	t := arg.Type.Go
	switch t.Kind {
	case goinfo.GoBuiltIn:
		return jen.Qual("C", t.Builtin.C).Call(name)
	case goinfo.GoBuiltInPtr:
		if t.Builtin.IsVoid() {
			return name
		}
		return jen.Parens(jen.Op("*").Qual("C", t.Builtin.C)).Call(unsafePointer(name))
	case goinfo.GoEnum:
		return jen.Qual("C", "int").Call(name)
	}
	return unsafePointer(name)
}

func (g *GoGenerator) signature(f *moduleFile, fn *goinfo.Function) *jen.Statement {
	stmt := f.Func()
	if fn.IsMethod() {
		stmt.Params(jen.Id("self").Op("*").Add(g.qual(fn.Scope.Target)))
	}
	params := make([]jen.Code, len(fn.Arguments))
	for i, arg := range fn.Arguments {
		params[i] = jen.Id(arg.Name).Add(g.goType(arg.Type.Go))
	}
	stmt.Id(fn.Name).Params(params...)
	if fn.ReturnType.Go.Kind != goinfo.GoVoid {
		stmt.Add(g.goType(fn.ReturnType.Go))
	}
	return stmt
}

func (g *GoGenerator) renderFunction(f *moduleFile, fn *goinfo.Function) {
	switch fn.Kind {
	case goinfo.DeletableImpl:
		if fn.FreeStorage {
			comment(f, fmt.Sprintf("%s destroys the object and releases its storage.", fn.Name))
		} else {
			comment(f, fmt.Sprintf("%s destroys the object.", fn.Name))
		}
		f.prototypes[fn.Deleter] = destructorPrototype(fn.Deleter)
		body := []jen.Code{jen.Qual("C", fn.Deleter).Call(unsafePointer(jen.Id("self")))}
		if fn.FreeStorage {
			body = append(body, jen.Qual("C", "free").Call(unsafePointer(jen.Id("self"))))
		}
		g.signature(f, fn).Block(body...)
		f.Line()
		return
	case goinfo.ReceiverGetter:
		r := fn.Receiver
		comment(f, fmt.Sprintf("%s returns the %s %s for connection calls.",
			fn.Name, strings.ToLower(r.Kind.String()), r.ID[1:]))
		kind := "ReceiverSignal"
		if r.Kind == goinfo.ReceiverSlot {
			kind = "ReceiverSlot"
		}
		g.signature(f, fn).Block(
			jen.Return(jen.Qual(CppcorePath, "Receiver").Values(jen.Dict{
				jen.Id("Object"): unsafePointer(jen.Id("self")),
				jen.Id("Kind"):   jen.Qual(CppcorePath, kind),
				jen.Id("ID"):     jen.Lit(r.ID),
			})),
		)
		f.Line()
		return
	}

	ffi := fn.Ffi
	comment(f, fmt.Sprintf("%s wraps %s.", fn.Name, ffi.Method.ShortText()))
	if fn.Doc != "" {
		f.Comment("")
		comment(f, fn.Doc)
	}
	if fn.IsUnsafe {
		f.Comment("")
		comment(f, "Raw pointers passed to or returned from this function are not checked.")
	}
	f.prototypes[ffi.Name] = CPrototype(ffi)
	g.signature(f, fn).Block(g.body(fn)...)
	f.Line()
}

// body calls the ABI function and converts its result
func (g *GoGenerator) body(fn *goinfo.Function) []jen.Code {
	ffi := fn.Ffi
	byIndex := make(map[int]goinfo.FunctionArgument, len(fn.Arguments))
	for _, arg := range fn.Arguments {
		byIndex[arg.FfiIndex] = arg
	}
	args := make([]jen.Code, len(ffi.Arguments))
	for idx, a := range ffi.Arguments {
		switch a.Meaning.Kind {
		case cppffi.MeaningThis:
			args[idx] = unsafePointer(jen.Id("self"))
		case cppffi.MeaningReturnValue:
			args[idx] = unsafePointer(jen.Id("out"))
		default:
			args[idx] = toC(byIndex[idx])
		}
	}
	call := jen.Qual("C", ffi.Name).Call(args...)

	ret := fn.ReturnType.Go
	switch ret.Kind {
	case goinfo.GoVoid:
		return []jen.Code{call}
	case goinfo.GoBuiltIn:
		return []jen.Code{jen.Return(builtinType(ret.Builtin).Call(call))}
	case goinfo.GoBuiltInPtr:
		if ret.Builtin.IsVoid() {
			return []jen.Code{jen.Return(call)}
		}
		return []jen.Code{jen.Return(jen.Parens(jen.Op("*").Add(builtinType(ret.Builtin))).Call(unsafePointer(call)))}
	case goinfo.GoEnum:
		return []jen.Code{jen.Return(g.qual(ret.Path).Call(call))}
	case goinfo.GoPtr:
		return []jen.Code{jen.Return(jen.Qual(CppcorePath, "NewPtr").Call(g.classPtr(ret.Path, call)))}
	case goinfo.GoRef:
		return []jen.Code{jen.Return(jen.Qual(CppcorePath, "NewRef").Call(g.classPtr(ret.Path, call)))}
	case goinfo.GoBox:
		if fn.ReturnTypeFfiIndex == nil {
			return []jen.Code{jen.Return(jen.Qual(CppcorePath, "NewBox").Call(g.classPtr(ret.Path, call)))}
		}
		size := jen.Qual("unsafe", "Sizeof").Call(g.qual(ret.Path).Values())
		alloc := jen.Qual("C", "malloc").Call(jen.Qual("C", "size_t").Call(size))
		return []jen.Code{
			jen.Id("out").Op(":=").Add(g.classPtr(ret.Path, alloc)),
			call,
			jen.Return(jen.Qual(CppcorePath, "NewBox").Call(jen.Id("out"))),
		}
	}
	return []jen.Code{call}
}

// classPtr converts a C pointer to a wrapper pointer
func (g *GoGenerator) classPtr(p goinfo.Path, value jen.Code) *jen.Statement {
	return jen.Parens(jen.Op("*").Add(g.qual(p))).Call(value)
}

func (g *GoGenerator) traitType(t goinfo.TraitType) *jen.Statement {
	trait := jen.Qual(CppcorePath, t.Name)
	if len(t.Args) == 0 {
		return trait
	}
	args := make([]jen.Code, len(t.Args))
	for i, a := range t.Args {
		args[i] = g.goType(a)
	}
	return trait.Types(args...)
}

func (g *GoGenerator) renderTraitImpl(f *moduleFile, impl goinfo.TraitImpl) {
	for i := range impl.Functions {
		g.renderFunction(f, &impl.Functions[i])
	}
	f.Var().Id("_").Add(g.traitType(impl.Trait)).Op("=").
		Parens(jen.Op("*").Add(g.qual(impl.Target))).Call(jen.Nil())
	f.Line()
}
