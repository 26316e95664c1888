package codegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/cppbind/internal/cppdata"
	"github.com/conduit-lang/cppbind/internal/cppffi"
	"github.com/conduit-lang/cppbind/internal/errors"
	"github.com/conduit-lang/cppbind/internal/goinfo"
)

func goOptions() GoOptions {
	return GoOptions{
		ModulePath:  "example.com/gfxgo",
		PackageName: "gfxgo",
		LibName:     "gfx",
		LinkLibs:    []string{"gfx"},
	}
}

func TestGoGenerateWidget(t *testing.T) {
	_, db := generateModel(t, widgetModel())

	files, err := NewGoGenerator(goOptions()).Generate(db)
	require.NoError(t, err)

	require.Contains(t, files, "gfxgo.go")
	assert.NotContains(t, files, "ffi.go")
	assert.Contains(t, files["gfxgo.go"], "package gfxgo")

	code := files["gfx/gfx.go"]
	require.NotEmpty(t, code)

	assert.Contains(t, code, "// Code generated by cppbind. DO NOT EDIT.")
	assert.Contains(t, code, "package gfx")
	assert.Contains(t, code, "import \"C\"")
	assert.Contains(t, code, "void gfx_gfx_Widget_resize(void* self, int w, int h);")
	assert.Contains(t, code, "void gfx_gfx_Widget_destructor(void* self);")
	assert.Contains(t, code, "#include <stdlib.h>")

	assert.Contains(t, code, "storage [16]byte")
	assert.Contains(t, code, "ColorGreen Color = 1")

	assert.Contains(t, code, "func (self *Widget) Resize(w int32, h int32) {")
	assert.Contains(t, code, "C.gfx_gfx_Widget_resize(unsafe.Pointer(self), C.int(w), C.int(h))")

	assert.Contains(t, code, "func NewWidget() *cppcore.Box[*Widget] {")
	assert.Contains(t, code, "out := (*Widget)(C.malloc(C.size_t(unsafe.Sizeof(Widget{}))))")
	assert.Contains(t, code, "C.gfx_gfx_Widget_constructor(unsafe.Pointer(out))")
	assert.Contains(t, code, "return cppcore.NewBox(out)")

	assert.Contains(t, code, "return Color(C.gfx_gfx_Widget_color(unsafe.Pointer(self)))")
	assert.Contains(t, code, "C.gfx_gfx_Widget_setColor(unsafe.Pointer(self), C.int(c))")
	assert.Contains(t, code, "return cppcore.NewBox((*Window)(C.gfx_gfx_Widget_window(unsafe.Pointer(self))))")
	assert.Contains(t, code, "return cppcore.NewRef((*Widget)(C.gfx_gfx_Widget_parent(unsafe.Pointer(self))))")
	assert.Contains(t, code, "func Version() int32 {")
	assert.Contains(t, code, "return int32(C.gfx_gfx_version())")

	assert.Contains(t, code, "C.free(unsafe.Pointer(self))")
	assert.Contains(t, code, "var _ cppcore.Deletable = (*Widget)(nil)")
	assert.Contains(t, code, "var _ cppcore.Deletable = (*Window)(nil)")

	ffiFile := files["gfx/ffi.go"]
	assert.Contains(t, ffiFile, "package gfx")
	assert.Contains(t, ffiFile, "// #cgo LDFLAGS: -L${SRCDIR}/../c_lib/install/lib -lgfx_c -lgfx -lstdc++")
	assert.Contains(t, ffiFile, "import \"C\"")
}

func TestGoGenerateOnlyDeclaresCalledPrototypes(t *testing.T) {
	d := widgetModel()
	resolver := cppdata.NewResolver(d)
	ffi, err := cppffi.Generate(d, resolver, cppffi.Options{LibName: "gfx"})
	require.NoError(t, err)
	db, err := goinfo.Generate(d, ffi, resolver, goinfo.Options{NameBlacklist: []string{"gfx::Widget::resize"}})
	require.NoError(t, err)

	files, err := NewGoGenerator(goOptions()).Generate(db)
	require.NoError(t, err)
	code := files["gfx/gfx.go"]

	used := db.FfiNames()
	assert.False(t, used["gfx_gfx_Widget_resize"])
	assert.NotContains(t, code, "gfx_gfx_Widget_resize")
	for name := range used {
		assert.Contains(t, code, name+"(", name)
	}
}

func TestGoGenerateRequiresModule(t *testing.T) {
	_, err := NewGoGenerator(GoOptions{}).Generate(&goinfo.Database{})
	assert.Error(t, err)
}

func TestCheckCollisions(t *testing.T) {
	widget := goinfo.Path{Package: []string{"gfx"}, Name: "Widget"}
	db := &goinfo.Database{
		Types: []goinfo.WrapperType{
			{CppName: "gfx::Widget", Path: widget, Kind: goinfo.ImmovableClassWrapper},
			{CppName: "gfx::widget", Path: widget, Kind: goinfo.ImmovableClassWrapper},
		},
		Functions: []goinfo.Function{
			{Name: "Draw", Scope: goinfo.Scope{Kind: goinfo.ScopeImpl, Target: widget}, SelfArg: goinfo.SelfMutRef, Module: widget.Package},
			{Name: "Draw", Scope: goinfo.Scope{Kind: goinfo.ScopeImpl, Target: widget}, SelfArg: goinfo.SelfConstRef, Module: widget.Package},
			{Name: "Draw", Scope: goinfo.Scope{Kind: goinfo.ScopeFree}, Module: widget.Package},
		},
	}

	err := CheckCollisions(db)
	require.Error(t, err)
	list, ok := err.(errors.ErrorList)
	require.True(t, ok)
	require.Len(t, list, 2)
	assert.Equal(t, errors.ErrIdentifierCollision, list[0].Code)
	assert.Equal(t, "gfx.Widget", list[0].Subject)
	assert.Equal(t, "gfx.Widget.Draw", list[1].Subject)
}

func TestCheckCollisionsAcceptsGeneratedModel(t *testing.T) {
	_, db := generateModel(t, widgetModel())
	assert.NoError(t, CheckCollisions(db))
}

func TestGoGenerateIteratorTraits(t *testing.T) {
	d := cppdata.NewData()
	d.Types = []cppdata.TypeData{
		{Name: "gfx::Iter", Header: "gfx/iter.h", Class: &cppdata.ClassKind{Size: intPtr(8)}},
	}
	inc := method("gfx::Iter", "operator++", 0)
	inc.Operator = "++"
	inc.ReturnType = typePtr(cppdata.ClassType("gfx::Iter").RefTo())
	dec := method("gfx::Iter", "operator--", 1)
	dec.Operator = "--"
	dec.ReturnType = typePtr(cppdata.ClassType("gfx::Iter").RefTo())
	deref := method("gfx::Iter", "operator*", 2)
	deref.Operator = "*"
	deref.IsConst = true
	deref.ReturnType = typePtr(cppdata.BuiltIn("int"))
	d.Methods = []cppdata.Method{inc, dec, deref}
	d.EnsureExplicitDestructors()

	_, db := generateModel(t, d)
	files, err := NewGoGenerator(goOptions()).Generate(db)
	require.NoError(t, err)

	code := files["gfx/gfx.go"]
	require.NotEmpty(t, code)
	assert.Contains(t, code, "func (self *Iter) Inc() {")
	assert.Contains(t, code, "func (self *Iter) Dec() {")
	assert.NotContains(t, code, "Inc() cppcore.Ref")
	assert.NotContains(t, code, "Dec() cppcore.Ref")
	assert.Contains(t, code, "var _ cppcore.Incrementer = (*Iter)(nil)")
	assert.Contains(t, code, "var _ cppcore.Decrementer = (*Iter)(nil)")
	assert.Contains(t, code, "func (self *Iter) Indirection() int32 {")
	assert.Contains(t, code, "var _ cppcore.Indirection[int32] = (*Iter)(nil)")
}

func TestGoGenerateReceiverGetters(t *testing.T) {
	d := cppdata.NewData()
	d.Types = []cppdata.TypeData{
		{Name: "gfx::Button", Header: "gfx/button.h", Class: &cppdata.ClassKind{Size: intPtr(8)}},
	}
	clicked := method("gfx::Button", "clicked", 0)
	clicked.IsSignal = true
	clicked.Arguments = []cppdata.Argument{{Name: "checked", Type: cppdata.BuiltIn("bool")}}
	click := method("gfx::Button", "click", 1)
	click.IsSlot = true
	d.Methods = []cppdata.Method{clicked, click}
	d.EnsureExplicitDestructors()

	_, db := generateModel(t, d)
	require.NoError(t, CheckCollisions(db))
	files, err := NewGoGenerator(goOptions()).Generate(db)
	require.NoError(t, err)

	code := files["gfx/gfx.go"]
	require.NotEmpty(t, code)
	assert.Contains(t, code, "func (self *Button) ClickedSignal() cppcore.Receiver {")
	assert.Contains(t, code, `"2clicked(bool)"`)
	assert.Contains(t, code, "cppcore.ReceiverSignal")
	assert.Contains(t, code, "func (self *Button) ClickSlot() cppcore.Receiver {")
	assert.Contains(t, code, `"1click()"`)
	assert.Contains(t, code, "cppcore.ReceiverSlot")
	// the signal stays callable
	assert.Contains(t, code, "func (self *Button) Clicked(checked bool) {")
}

func TestGoGenerateLongUsesRuntimeWidth(t *testing.T) {
	d := cppdata.NewData()
	d.Types = []cppdata.TypeData{
		{Name: "gfx::File", Header: "gfx/file.h", Class: &cppdata.ClassKind{Size: intPtr(8)}},
	}
	seek := method("gfx::File", "seek", 0)
	seek.Arguments = []cppdata.Argument{{Name: "offset", Type: cppdata.BuiltIn("long")}}
	seek.ReturnType = typePtr(cppdata.BuiltIn("unsigned long"))
	d.Methods = []cppdata.Method{seek}
	d.EnsureExplicitDestructors()

	_, db := generateModel(t, d)
	files, err := NewGoGenerator(goOptions()).Generate(db)
	require.NoError(t, err)

	code := files["gfx/gfx.go"]
	require.NotEmpty(t, code)
	assert.Contains(t, code, "func (self *File) Seek(offset cppcore.Long) cppcore.ULong {")
	assert.Contains(t, code, "return cppcore.ULong(C.gfx_gfx_File_seek(unsafe.Pointer(self), C.long(offset)))")
	assert.NotContains(t, code, "int64")
}
