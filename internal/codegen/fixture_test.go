package codegen

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/cppbind/internal/cppdata"
	"github.com/conduit-lang/cppbind/internal/cppffi"
	"github.com/conduit-lang/cppbind/internal/goinfo"
)

func intPtr(v int) *int { return &v }

func typePtr(t cppdata.Type) *cppdata.Type { return &t }

func method(scope, name string, index int) cppdata.Method {
	return cppdata.Method{
		Name:          name,
		Scope:         scope,
		Visibility:    cppdata.VisibilityPublic,
		OriginalIndex: index,
		Origin:        cppdata.Origin{IncludeFile: "gfx/widget.h"},
	}
}

// widgetModel has a movable gfx::Widget, an immovable gfx::Window, a
// gfx::Color enum and a free function declared in another header.
func widgetModel() *cppdata.Data {
	d := cppdata.NewData()
	d.Types = []cppdata.TypeData{
		{Name: "gfx::Widget", Header: "gfx/widget.h", Class: &cppdata.ClassKind{Size: intPtr(16)}},
		{Name: "gfx::Window", Header: "gfx/window.h", Class: &cppdata.ClassKind{}},
		{Name: "gfx::Color", Header: "gfx/widget.h", Enum: &cppdata.EnumKind{Values: []cppdata.EnumValue{
			{Name: "Red", Value: 0}, {Name: "Green", Value: 1},
		}}},
	}

	ctor := method("gfx::Widget", "Widget", 0)
	ctor.IsConstructor = true

	resize := method("gfx::Widget", "resize", 1)
	resize.Arguments = []cppdata.Argument{
		{Name: "w", Type: cppdata.BuiltIn("int")},
		{Name: "h", Type: cppdata.BuiltIn("int")},
	}

	draw := method("gfx::Widget", "draw", 2)
	draw.IsVirtual = true

	color := method("gfx::Widget", "color", 3)
	color.IsConst = true
	color.ReturnType = typePtr(cppdata.EnumType("gfx::Color"))

	setColor := method("gfx::Widget", "setColor", 4)
	setColor.Arguments = []cppdata.Argument{{Name: "c", Type: cppdata.EnumType("gfx::Color")}}

	window := method("gfx::Widget", "window", 5)
	window.ReturnType = typePtr(cppdata.ClassType("gfx::Window"))

	clone := method("gfx::Widget", "clone", 6)
	clone.IsConst = true
	clone.ReturnType = typePtr(cppdata.ClassType("gfx::Widget"))

	parent := method("gfx::Widget", "parent", 7)
	parent.ReturnType = typePtr(cppdata.ClassType("gfx::Widget").RefTo())

	winCtor := method("gfx::Window", "Window", 8)
	winCtor.IsConstructor = true
	winCtor.Origin.IncludeFile = "gfx/window.h"

	version := method("", "gfx::version", 9)
	version.ReturnType = typePtr(cppdata.BuiltIn("int"))
	version.Origin.IncludeFile = "gfx/version.h"

	d.Methods = []cppdata.Method{ctor, resize, draw, color, setColor, window, clone, parent, winCtor, version}
	d.EnsureExplicitDestructors()
	return d
}

func generateModel(t *testing.T, d *cppdata.Data) (*cppffi.Result, *goinfo.Database) {
	t.Helper()
	resolver := cppdata.NewResolver(d)
	ffi, err := cppffi.Generate(d, resolver, cppffi.Options{LibName: "gfx"})
	require.NoError(t, err)
	db, err := goinfo.Generate(d, ffi, resolver, goinfo.Options{})
	require.NoError(t, err)
	return ffi, db
}

func findFfi(t *testing.T, r *cppffi.Result, name string) *cppffi.Function {
	t.Helper()
	f, ok := r.Find(name)
	require.True(t, ok, "ABI function %s not generated", name)
	return f
}
