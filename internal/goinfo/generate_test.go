package goinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/cppbind/internal/cppdata"
	"github.com/conduit-lang/cppbind/internal/cppffi"
	"github.com/conduit-lang/cppbind/internal/errors"
)

func intPtr(v int) *int { return &v }

func typePtr(t cppdata.Type) *cppdata.Type { return &t }

func method(scope, name string, index int) cppdata.Method {
	return cppdata.Method{
		Name:          name,
		Scope:         scope,
		Visibility:    cppdata.VisibilityPublic,
		OriginalIndex: index,
		Origin:        cppdata.Origin{IncludeFile: "widget.h"},
	}
}

func build(t *testing.T, d *cppdata.Data, opts Options) *Database {
	t.Helper()
	db, err := tryBuild(d, opts)
	require.NoError(t, err)
	return db
}

func tryBuild(d *cppdata.Data, opts Options) (*Database, error) {
	d.EnsureExplicitDestructors()
	resolver := cppdata.NewResolver(d)
	ffi, err := cppffi.Generate(d, resolver, cppffi.Options{LibName: "gfx"})
	if err != nil {
		return nil, err
	}
	return Generate(d, ffi, resolver, opts)
}

func findFunction(db *Database, name string) (*Function, bool) {
	for i := range db.Functions {
		if db.Functions[i].Name == name {
			return &db.Functions[i], true
		}
	}
	return nil, false
}

func findTrait(db *Database, target, trait string) (*TraitImpl, bool) {
	for i := range db.TraitImpls {
		if db.TraitImpls[i].Target.Name == target && db.TraitImpls[i].Trait.Name == trait {
			return &db.TraitImpls[i], true
		}
	}
	return nil, false
}

func TestWidgetScenario(t *testing.T) {
	d := cppdata.NewData()
	d.Types = []cppdata.TypeData{
		{Name: "Widget", Header: "widget.h", Class: &cppdata.ClassKind{Size: intPtr(16)}},
	}
	resize := method("Widget", "resize", 0)
	resize.Arguments = []cppdata.Argument{
		{Name: "w", Type: cppdata.BuiltIn("int")},
		{Name: "h", Type: cppdata.BuiltIn("int")},
	}
	d.Methods = []cppdata.Method{resize}

	db := build(t, d, Options{})

	require.Len(t, db.Types, 1)
	assert.Equal(t, MovableClassWrapper, db.Types[0].Kind)
	assert.Equal(t, "Widget", db.Types[0].Path.Name)
	assert.Equal(t, 16, db.Types[0].Size)

	fn, ok := findFunction(db, "Resize")
	require.True(t, ok)
	assert.Equal(t, ScopeImpl, fn.Scope.Kind)
	assert.Equal(t, "Widget", fn.Scope.Target.Name)
	assert.Equal(t, SelfMutRef, fn.SelfArg)
	require.Len(t, fn.Arguments, 2)
	assert.Equal(t, "int32", fn.Arguments[0].Type.Go.String())
	assert.Equal(t, 1, fn.Arguments[0].FfiIndex)

	impl, ok := findTrait(db, "Widget", TraitDeletable)
	require.True(t, ok)
	require.Len(t, impl.Functions, 1)
	del := impl.Functions[0]
	assert.Equal(t, DeletableImpl, del.Kind)
	assert.Equal(t, SelfValue, del.SelfArg)
	assert.Equal(t, "gfx_Widget_destructor", del.Deleter)
	assert.True(t, del.FreeStorage)

	used := db.FfiNames()
	assert.True(t, used["gfx_Widget_resize"])
	assert.True(t, used["gfx_Widget_destructor"])
}

func TestDrawOverloads(t *testing.T) {
	d := cppdata.NewData()
	d.Types = []cppdata.TypeData{
		{Name: "Widget", Header: "widget.h", Class: &cppdata.ClassKind{Size: intPtr(16)}},
	}
	drawInt := method("Widget", "draw", 1)
	drawInt.Arguments = []cppdata.Argument{{Name: "layer", Type: cppdata.BuiltIn("int")}}
	d.Methods = []cppdata.Method{method("Widget", "draw", 0), drawInt}

	db := build(t, d, Options{})

	draw, ok := findFunction(db, "Draw")
	require.True(t, ok)
	assert.Empty(t, draw.Arguments)

	withInt, ok := findFunction(db, "DrawInt")
	require.True(t, ok)
	assert.Len(t, withInt.Arguments, 1)
}

func TestCaptionsBySelf(t *testing.T) {
	d := cppdata.NewData()
	d.Types = []cppdata.TypeData{
		{Name: "List", Header: "list.h", Class: &cppdata.ClassKind{}},
	}
	atConst := method("List", "at", 0)
	atConst.IsConst = true
	atConst.ReturnType = typePtr(cppdata.BuiltIn("int").Const().RefTo())
	atMut := method("List", "at", 1)
	atMut.ReturnType = typePtr(cppdata.BuiltIn("int").RefTo())
	d.Methods = []cppdata.Method{atConst, atMut}

	db := build(t, d, Options{})

	_, ok := findFunction(db, "At")
	assert.True(t, ok)
	_, ok = findFunction(db, "AtMut")
	assert.True(t, ok)
}

func TestConstructorsAndStatics(t *testing.T) {
	d := cppdata.NewData()
	d.Types = []cppdata.TypeData{
		{Name: "gfx::Widget", Header: "widget.h", Class: &cppdata.ClassKind{Size: intPtr(16)}},
		{Name: "gfx::Window", Header: "window.h", Class: &cppdata.ClassKind{}},
	}
	ctor := method("gfx::Widget", "Widget", 0)
	ctor.IsConstructor = true
	ctorSized := method("gfx::Widget", "Widget", 1)
	ctorSized.IsConstructor = true
	ctorSized.Arguments = []cppdata.Argument{{Name: "width", Type: cppdata.BuiltIn("int")}}
	create := method("gfx::Widget", "create", 2)
	create.IsStatic = true
	create.ReturnType = typePtr(cppdata.ClassType("gfx::Window"))
	version := cppdata.Method{Name: "gfx::version", Visibility: cppdata.VisibilityPublic, OriginalIndex: 3,
		ReturnType: typePtr(cppdata.BuiltIn("int"))}
	d.Methods = []cppdata.Method{ctor, ctorSized, create, version}

	db := build(t, d, Options{})

	newWidget, ok := findFunction(db, "NewWidget")
	require.True(t, ok)
	assert.Equal(t, SelfNone, newWidget.SelfArg)
	assert.Equal(t, GoBox, newWidget.ReturnType.Go.Kind)
	assert.True(t, newWidget.ReturnType.Go.Movable)
	assert.Equal(t, []string{"gfx"}, newWidget.Module)
	require.NotNil(t, newWidget.ReturnTypeFfiIndex)

	_, ok = findFunction(db, "NewWidgetInt")
	assert.True(t, ok)

	createFn, ok := findFunction(db, "WidgetCreate")
	require.True(t, ok)
	assert.Equal(t, GoBox, createFn.ReturnType.Go.Kind)
	assert.False(t, createFn.ReturnType.Go.Movable)
	assert.Nil(t, createFn.ReturnTypeFfiIndex)

	versionFn, ok := findFunction(db, "Version")
	require.True(t, ok)
	assert.Equal(t, ScopeFree, versionFn.Scope.Kind)
	assert.Equal(t, []string{"gfx"}, versionFn.Module)

	require.Len(t, db.Modules, 2)
	assert.Empty(t, db.Modules[0].Path)
	assert.Equal(t, []string{"gfx"}, db.Modules[1].Path)
	assert.Equal(t, "gfx", db.Modules[1].CppNamespace)
}

func TestTraitImpls(t *testing.T) {
	d := cppdata.NewData()
	d.Types = []cppdata.TypeData{
		{Name: "Iter", Header: "iter.h", Class: &cppdata.ClassKind{Size: intPtr(8)}},
	}
	inc := method("Iter", "operator++", 0)
	inc.Operator = "++"
	inc.ReturnType = typePtr(cppdata.ClassType("Iter").RefTo())
	dec := method("Iter", "operator--", 1)
	dec.Operator = "--"
	dec.ReturnType = typePtr(cppdata.ClassType("Iter").RefTo())
	deref := method("Iter", "operator*", 2)
	deref.Operator = "*"
	deref.IsConst = true
	deref.ReturnType = typePtr(cppdata.BuiltIn("int"))
	eq := method("Iter", "operator==", 3)
	eq.Operator = "=="
	eq.IsConst = true
	eq.ReturnType = typePtr(cppdata.BuiltIn("bool"))
	eq.Arguments = []cppdata.Argument{{Name: "other", Type: cppdata.ClassType("Iter").Const().RefTo()}}
	eqInt := method("Iter", "operator==", 4)
	eqInt.Operator = "=="
	eqInt.IsConst = true
	eqInt.ReturnType = typePtr(cppdata.BuiltIn("bool"))
	eqInt.Arguments = []cppdata.Argument{{Name: "value", Type: cppdata.BuiltIn("int")}}
	d.Methods = []cppdata.Method{inc, dec, deref, eq, eqInt}

	db := build(t, d, Options{})

	for trait, method := range map[string]string{
		TraitIncrementer: "Inc",
		TraitDecrementer: "Dec",
		TraitIndirection: "Indirection",
		TraitEqualer:     "EqualTo",
		TraitDeletable:   "Delete",
	} {
		impl, ok := findTrait(db, "Iter", trait)
		require.True(t, ok, trait)
		require.Len(t, impl.Functions, 1)
		assert.Equal(t, method, impl.Functions[0].Name)
		assert.Equal(t, ScopeTraitImpl, impl.Functions[0].Scope.Kind)
	}

	// the reference returned by the operators is dropped
	for _, trait := range []string{TraitIncrementer, TraitDecrementer} {
		impl, _ := findTrait(db, "Iter", trait)
		assert.Equal(t, GoVoid, impl.Functions[0].ReturnType.Go.Kind, trait)
	}

	indirection, _ := findTrait(db, "Iter", TraitIndirection)
	require.Len(t, indirection.AssociatedTypes, 1)
	assert.Equal(t, "Output", indirection.AssociatedTypes[0].Name)
	assert.Equal(t, "int32", indirection.AssociatedTypes[0].Value.String())

	equaler, _ := findTrait(db, "Iter", TraitEqualer)
	require.Len(t, equaler.Trait.Args, 1)
	assert.Equal(t, "*Iter", equaler.Trait.Args[0].String())

	// The int comparison stays an ordinary method.
	other, ok := findFunction(db, "OperatorEq")
	require.True(t, ok)
	assert.Equal(t, ScopeImpl, other.Scope.Kind)
}

func TestIncrementByValueStaysMethod(t *testing.T) {
	d := cppdata.NewData()
	d.Types = []cppdata.TypeData{
		{Name: "Counter", Header: "counter.h", Class: &cppdata.ClassKind{Size: intPtr(8)}},
	}
	inc := method("Counter", "operator++", 0)
	inc.Operator = "++"
	inc.ReturnType = typePtr(cppdata.ClassType("Counter"))
	d.Methods = []cppdata.Method{inc}

	db := build(t, d, Options{})

	_, ok := findTrait(db, "Counter", TraitIncrementer)
	assert.False(t, ok)
	fn, ok := findFunction(db, "OperatorInc")
	require.True(t, ok)
	assert.Equal(t, GoBox, fn.ReturnType.Go.Kind)
}

func TestUnsafeFlag(t *testing.T) {
	d := cppdata.NewData()
	d.Types = []cppdata.TypeData{
		{Name: "Widget", Header: "widget.h", Class: &cppdata.ClassKind{}},
	}
	parent := method("Widget", "parent", 0)
	parent.ReturnType = typePtr(cppdata.ClassType("Widget").PtrTo())
	self := method("Widget", "self", 1)
	self.ReturnType = typePtr(cppdata.ClassType("Widget").RefTo())
	d.Methods = []cppdata.Method{parent, self}

	db := build(t, d, Options{})

	p, ok := findFunction(db, "Parent")
	require.True(t, ok)
	assert.True(t, p.IsUnsafe)
	assert.Equal(t, GoPtr, p.ReturnType.Go.Kind)
	assert.Equal(t, "cppcore.Ptr[*Widget]", p.ReturnType.Go.String())

	s, ok := findFunction(db, "Self")
	require.True(t, ok)
	assert.False(t, s.IsUnsafe)
	assert.Equal(t, "cppcore.Ref[*Widget]", s.ReturnType.Go.String())
}

func TestUnsupportedBuiltin(t *testing.T) {
	d := cppdata.NewData()
	d.Types = []cppdata.TypeData{
		{Name: "Widget", Header: "widget.h", Class: &cppdata.ClassKind{}},
	}
	wide := method("Widget", "wide", 0)
	wide.ReturnType = typePtr(cppdata.BuiltIn("wchar_t"))
	d.Methods = []cppdata.Method{wide}

	db := build(t, d, Options{})

	_, ok := findFunction(db, "Wide")
	assert.False(t, ok)
	require.Len(t, db.Diagnostics, 1)
	assert.Equal(t, errors.ErrUnsupportedType, db.Diagnostics[0].Code)
	assert.False(t, db.FfiNames()["gfx_Widget_wide"])
}

func TestBlacklists(t *testing.T) {
	d := cppdata.NewData()
	d.Types = []cppdata.TypeData{
		{Name: "gfx::Widget", Header: "widget.h", Class: &cppdata.ClassKind{}},
		{Name: "detail::Impl", Header: "impl.h", Class: &cppdata.ClassKind{}},
	}
	d.Methods = []cppdata.Method{
		method("gfx::Widget", "show", 0),
		method("gfx::Widget", "hide", 1),
		method("detail::Impl", "run", 2),
	}

	db := build(t, d, Options{
		NameBlacklist:   []string{"gfx::Widget::hide"},
		ModuleBlacklist: []string{"detail"},
	})

	_, ok := findFunction(db, "Show")
	assert.True(t, ok)
	_, ok = findFunction(db, "Hide")
	assert.False(t, ok)
	_, ok = findFunction(db, "Run")
	assert.False(t, ok)
}

func TestTemplateInstantiationWrappers(t *testing.T) {
	d := cppdata.NewData()
	d.Types = []cppdata.TypeData{
		{Name: "QVector", Header: "qvector.h", Class: &cppdata.ClassKind{TemplateArguments: []string{"T"}}},
	}
	size := method("QVector", "size", 0)
	size.IsConst = true
	size.ReturnType = typePtr(cppdata.BuiltIn("int"))
	d.Methods = []cppdata.Method{size}
	d.TemplateInstantiations["QVector"] = [][]cppdata.Type{{cppdata.BuiltIn("int")}}

	db := build(t, d, Options{})

	w, ok := db.FindType("QVector<int>")
	require.True(t, ok)
	assert.Equal(t, "QVectorInt", w.Path.Name)
	assert.Equal(t, ImmovableClassWrapper, w.Kind)

	fn, ok := findFunction(db, "Size")
	require.True(t, ok)
	assert.Equal(t, "QVectorInt", fn.Scope.Target.Name)

	_, ok = findTrait(db, "QVectorInt", TraitDeletable)
	assert.True(t, ok)
}

func TestEnumWrapper(t *testing.T) {
	d := cppdata.NewData()
	d.Types = []cppdata.TypeData{
		{Name: "gfx::Color", Header: "color.h", Enum: &cppdata.EnumKind{Values: []cppdata.EnumValue{
			{Name: "Red", Value: 0}, {Name: "dark_blue", Value: 7},
		}}},
	}
	db := build(t, d, Options{})

	require.Len(t, db.Types, 1)
	w := db.Types[0]
	assert.Equal(t, EnumWrapper, w.Kind)
	assert.Equal(t, []string{"gfx"}, w.Path.Package)
	assert.Equal(t, []EnumValue{
		{Name: "ColorRed", Value: 0, CppName: "Red"},
		{Name: "ColorDarkBlue", Value: 7, CppName: "dark_blue"},
	}, w.EnumValues)
}

func TestNestedClassPath(t *testing.T) {
	d := cppdata.NewData()
	d.Types = []cppdata.TypeData{
		{Name: "ui::Widget", Header: "widget.h", Class: &cppdata.ClassKind{}},
		{Name: "ui::Widget::Part", Header: "widget.h", Class: &cppdata.ClassKind{}},
	}
	db := build(t, d, Options{})

	w, ok := db.FindType("ui::Widget::Part")
	require.True(t, ok)
	assert.Equal(t, []string{"ui"}, w.Path.Package)
	assert.Equal(t, "WidgetPart", w.Path.Name)
}

func TestDependencyTypes(t *testing.T) {
	dep := cppdata.NewData()
	dep.Types = []cppdata.TypeData{
		{Name: "core::Object", Header: "object.h", Class: &cppdata.ClassKind{Size: intPtr(8)}},
	}

	d := cppdata.NewData()
	d.Types = []cppdata.TypeData{
		{Name: "Widget", Header: "widget.h", Class: &cppdata.ClassKind{}},
	}
	obj := method("Widget", "object", 0)
	obj.ReturnType = typePtr(cppdata.ClassType("core::Object"))
	d.Methods = []cppdata.Method{obj}
	d.EnsureExplicitDestructors()

	resolver := cppdata.NewResolver(d, cppdata.Dependency{Name: "core", Data: dep})
	ffi, err := cppffi.Generate(d, resolver, cppffi.Options{LibName: "gfx"})
	require.NoError(t, err)
	db, err := Generate(d, ffi, resolver, Options{})
	require.NoError(t, err)

	fn, ok := findFunction(db, "Object")
	require.True(t, ok)
	assert.Equal(t, GoBox, fn.ReturnType.Go.Kind)
	assert.Equal(t, "core", fn.ReturnType.Go.Path.Dependency)
	assert.True(t, fn.ReturnType.Go.Movable)
}

func TestSignalAndSlotGetters(t *testing.T) {
	d := cppdata.NewData()
	d.Types = []cppdata.TypeData{
		{Name: "Slider", Header: "slider.h", Class: &cppdata.ClassKind{Size: intPtr(16)}},
		{Name: "Range", Header: "slider.h", Class: &cppdata.ClassKind{Size: intPtr(8)}},
	}
	changedInt := method("Slider", "valueChanged", 0)
	changedInt.IsSignal = true
	changedInt.Arguments = []cppdata.Argument{{Name: "value", Type: cppdata.BuiltIn("int")}}
	changedDouble := method("Slider", "valueChanged", 1)
	changedDouble.IsSignal = true
	changedDouble.Arguments = []cppdata.Argument{{Name: "value", Type: cppdata.BuiltIn("double")}}
	setRange := method("Slider", "setRange", 2)
	setRange.IsSlot = true
	setRange.Arguments = []cppdata.Argument{{Name: "r", Type: cppdata.ClassType("Range").Const().RefTo()}}
	d.Methods = []cppdata.Method{changedInt, changedDouble, setRange}

	db := build(t, d, Options{})

	var ids []string
	names := make(map[string]bool)
	for _, f := range db.Functions {
		if f.Kind != ReceiverGetter {
			continue
		}
		assert.Equal(t, SelfConstRef, f.SelfArg)
		assert.Equal(t, GoReceiver, f.ReturnType.Go.Kind)
		ids = append(ids, f.Receiver.ID)
		names[f.Name] = true
	}
	assert.ElementsMatch(t, []string{"2valueChanged(int)", "2valueChanged(double)", "1setRange(Range)"}, ids)
	assert.Len(t, names, 3)
	assert.True(t, names["SetRangeSlot"])

	// the callable wrappers stay
	_, ok := findFunction(db, "SetRange")
	assert.True(t, ok)

	// receiver getters call no ABI function of their own
	used := db.FfiNames()
	assert.True(t, used["gfx_Slider_setRange"])
}

func TestReceiverSignature(t *testing.T) {
	m := cppdata.Method{
		Name: "textChanged",
		Arguments: []cppdata.Argument{
			{Name: "text", Type: cppdata.ClassType("QString").Const().RefTo()},
			{Name: "data", Type: cppdata.BuiltIn("char").Const().PtrTo()},
		},
	}
	assert.Equal(t, "textChanged(QString,const char*)", ReceiverSignature(&m))
}

func TestLongBuiltinsFollowPlatformWidth(t *testing.T) {
	for _, name := range []string{"long", "unsigned long"} {
		b, ok := LookupBuiltin(name)
		require.True(t, ok, name)
		_, runtime := b.RuntimeName()
		assert.True(t, runtime, name)
	}

	b, ok := LookupBuiltin("long long")
	require.True(t, ok)
	assert.Equal(t, "int64", b.Go)
	_, runtime := b.RuntimeName()
	assert.False(t, runtime)

	assert.Equal(t, "cppcore.ULong", GoType{Kind: GoBuiltIn, Builtin: builtins["unsigned long"]}.String())
}
