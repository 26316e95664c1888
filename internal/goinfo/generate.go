package goinfo

import (
	"fmt"
	"sort"
	"strings"

	"github.com/conduit-lang/cppbind/internal/cppdata"
	"github.com/conduit-lang/cppbind/internal/cppffi"
	"github.com/conduit-lang/cppbind/internal/errors"
	utilstrings "github.com/conduit-lang/cppbind/internal/util/strings"
)

// Options filters what gets wrapped
type Options struct {
	// ModuleBlacklist lists native namespaces whose functions are skipped
	ModuleBlacklist []string
	// NameBlacklist lists qualified native names ("gfx::Widget::draw") or
	// plain method names that are skipped
	NameBlacklist []string
}

// Interface names from pkg/cppcore
const (
	TraitDeletable   = "Deletable"
	TraitIncrementer = "Incrementer"
	TraitDecrementer = "Decrementer"
	TraitIndirection = "Indirection"
	TraitEqualer     = "Equaler"
)

var traitMethods = map[string]string{
	TraitDeletable:   "Delete",
	TraitIncrementer: "Inc",
	TraitDecrementer: "Dec",
	TraitIndirection: "Indirection",
	TraitEqualer:     "EqualTo",
}

// TraitMethod returns the Go method implementing an interface
func TraitMethod(trait string) string {
	return traitMethods[trait]
}

type unsupported struct {
	typ    cppdata.Type
	reason string
}

type builder struct {
	data     *cppdata.Data
	resolver *cppdata.Resolver
	opts     Options
	db       *Database

	paths      map[string]Path
	namespaces map[string]string
	wrappers   map[string]*WrapperType
	deletable  map[string]bool
	traits     map[string]map[string]bool
}

// Generate builds the Go-side model for the ABI functions in ffi. Functions
// whose types have no Go mirror are dropped with a diagnostic; overloads
// that cannot be given unique names make Generate fail.
func Generate(data *cppdata.Data, ffi *cppffi.Result, resolver *cppdata.Resolver, opts Options) (*Database, error) {
	if resolver == nil {
		resolver = cppdata.NewResolver(data)
	}
	b := &builder{
		data:       data,
		resolver:   resolver,
		opts:       opts,
		db:         &Database{},
		paths:      make(map[string]Path),
		namespaces: map[string]string{"": ""},
		wrappers:   make(map[string]*WrapperType),
		deletable:  make(map[string]bool),
		traits:     make(map[string]map[string]bool),
	}

	b.wrapperTypes()

	for i := range ffi.Functions {
		if ffi.Functions[i].Kind == cppffi.KindDestructor {
			b.deletableImpl(&ffi.Functions[i])
		}
	}
	for i := range ffi.Functions {
		if ffi.Functions[i].Kind == cppffi.KindMethod {
			b.function(&ffi.Functions[i])
		}
	}

	if err := b.assignNames(); err != nil {
		return nil, err
	}
	b.modules()
	return b.db, nil
}

func (b *builder) report(err *errors.BindError, header string) {
	b.db.Diagnostics = append(b.db.Diagnostics, err.WithHeader(header))
}

// wrapperTypes creates a wrapper for every enum, non-template class and
// template instantiation of the model
func (b *builder) wrapperTypes() {
	for _, td := range b.data.Types {
		if td.IsTemplate() {
			continue
		}
		w := WrapperType{
			CppName: td.Name,
			Path:    b.pathFor(td.Name, nil),
			Doc:     td.Doc,
		}
		switch {
		case td.IsEnum():
			w.Kind = EnumWrapper
			w.CppType = cppdata.EnumType(td.Name)
			for _, v := range td.Enum.Values {
				w.EnumValues = append(w.EnumValues, EnumValue{
					Name:    w.Path.Name + utilstrings.ToPascalCase(utilstrings.ToIdentifier(v.Name)),
					Value:   v.Value,
					CppName: v.Name,
				})
			}
		case td.IsMovable():
			w.Kind = MovableClassWrapper
			w.CppType = cppdata.ClassType(td.Name)
			w.Size = *td.Class.Size
		default:
			w.Kind = ImmovableClassWrapper
			w.CppType = cppdata.ClassType(td.Name)
		}
		b.db.Types = append(b.db.Types, w)
	}

	for _, ins := range b.data.Instantiations() {
		b.db.Types = append(b.db.Types, WrapperType{
			CppName: ins.Name(),
			CppType: ins.Type(),
			Path:    b.pathFor(ins.Template, ins.Arguments),
			Kind:    ImmovableClassWrapper,
		})
	}

	for i := range b.db.Types {
		b.wrappers[b.db.Types[i].CppName] = &b.db.Types[i]
	}
}

// pathFor maps a native type name to its Go location. Namespaces become
// packages; enclosing classes fold into the type name.
func (b *builder) pathFor(name string, templateArgs []cppdata.Type) Path {
	key := name
	if len(templateArgs) > 0 {
		key = cppdata.InstantiatedName(name, templateArgs)
	}
	if p, ok := b.paths[key]; ok {
		return p
	}

	components := strings.Split(name, "::")
	split := len(components) - 1
	for i := 1; i < len(components); i++ {
		if td, ok := b.resolver.FindType(strings.Join(components[:i], "::")); ok && td.IsClass() {
			split = i
			break
		}
	}

	var p Path
	namespace := components[:split]
	for _, ns := range namespace {
		p.Package = append(p.Package, utilstrings.ToPackageName(ns))
	}
	for _, c := range components[split:] {
		p.Name += utilstrings.ToPascalCase(utilstrings.ToIdentifier(c))
	}
	for _, arg := range templateArgs {
		p.Name += ArgTypeCaption(arg)
	}
	if len(templateArgs) == 0 {
		if owner, ok := b.resolver.Owner(name); ok {
			p.Dependency = owner
		}
	}

	b.paths[key] = p
	if p.Dependency == "" {
		b.namespaces[strings.Join(p.Package, "/")] = strings.Join(namespace, "::")
	}
	return p
}

// classPath returns the wrapper path of a class type reference
func (b *builder) classPath(t cppdata.Type) Path {
	return b.pathFor(t.Base.Name, t.Base.TemplateArguments)
}

// isMovable answers for wrappers of this model and for dependency classes
func (b *builder) isMovable(t cppdata.Type) bool {
	if w, ok := b.wrappers[t.ClassName()]; ok {
		return w.Kind == MovableClassWrapper
	}
	if len(t.Base.TemplateArguments) > 0 {
		return false
	}
	td, ok := b.resolver.FindType(t.Base.Name)
	return ok && td.IsMovable()
}

// canDelete reports whether a Box of the class can be created
func (b *builder) canDelete(t cppdata.Type) bool {
	if _, ok := b.wrappers[t.ClassName()]; ok {
		return b.deletable[t.ClassName()]
	}
	// Dependency packages implement Deletable for all of their classes.
	return true
}

func (b *builder) addTrait(target Path, trait string) bool {
	key := target.String()
	if b.traits[key] == nil {
		b.traits[key] = make(map[string]bool)
	}
	if b.traits[key][trait] {
		return false
	}
	b.traits[key][trait] = true
	return true
}

// deletableImpl implements cppcore.Deletable through a destructor function
func (b *builder) deletableImpl(f *cppffi.Function) {
	name := f.Class.ClassName()
	w, ok := b.wrappers[name]
	if !ok || !b.addTrait(w.Path, TraitDeletable) {
		return
	}
	b.deletable[name] = true

	b.db.TraitImpls = append(b.db.TraitImpls, TraitImpl{
		Target: w.Path,
		Trait:  TraitType{Name: TraitDeletable},
		Functions: []Function{{
			Scope:       Scope{Kind: ScopeTraitImpl, Target: w.Path},
			SelfArg:     SelfValue,
			Name:        TraitMethod(TraitDeletable),
			Module:      w.Path.Package,
			ReturnType:  voidType(),
			Kind:        DeletableImpl,
			Deleter:     f.Name,
			FreeStorage: f.InPlace,
			Doc:         f.Method.Doc,
		}},
	})
}

func voidType() CompleteType {
	return CompleteType{
		Cpp: cppdata.Void(),
		Ffi: cppffi.Type{Original: cppdata.Void(), FFI: cppdata.Void()},
		Go:  GoType{Kind: GoVoid},
	}
}

// goType maps a boundary type to Go. isReturn selects ownership-aware
// handles for classes. The second result reports a raw pointer.
func (b *builder) goType(t cppffi.Type, isReturn bool) (GoType, bool, *unsupported) {
	orig := t.Original
	raw := orig.Indirection == cppdata.IndirectionPtr

	switch orig.Base.Kind {
	case cppdata.BaseVoid:
		if orig.Indirection == cppdata.IndirectionNone {
			return GoType{Kind: GoVoid}, false, nil
		}
		return GoType{Kind: GoBuiltInPtr, Builtin: voidBuiltin}, raw, nil

	case cppdata.BaseBuiltIn:
		bi, ok := LookupBuiltin(orig.Base.Name)
		if !ok {
			return GoType{}, false, &unsupported{orig, "builtin type has no Go equivalent"}
		}
		if orig.Indirection == cppdata.IndirectionNone {
			return GoType{Kind: GoBuiltIn, Builtin: bi}, false, nil
		}
		return GoType{Kind: GoBuiltInPtr, Builtin: bi}, raw, nil

	case cppdata.BaseEnum:
		return GoType{Kind: GoEnum, Path: b.pathFor(orig.Base.Name, nil)}, false, nil

	case cppdata.BaseClass:
		path := b.classPath(orig)
		gt := GoType{Path: path, Movable: b.isMovable(orig)}
		if !isReturn {
			gt.Kind = GoClassPtrArg
			return gt, raw, nil
		}
		switch orig.Indirection {
		case cppdata.IndirectionNone:
			if !b.canDelete(orig) {
				return GoType{}, false, &unsupported{orig, "class has no public destructor"}
			}
			gt.Kind = GoBox
		case cppdata.IndirectionRef:
			gt.Kind = GoRef
		default:
			gt.Kind = GoPtr
		}
		return gt, raw, nil
	}
	return GoType{}, false, &unsupported{orig, "no Go mirror"}
}

func (b *builder) blacklisted(m *cppdata.Method) bool {
	full := m.FullName()
	for _, name := range b.opts.NameBlacklist {
		if name == full || name == m.Name {
			return true
		}
	}

	owner := m.Scope
	if m.IsFree() {
		owner = m.Name
	}
	namespace, _ := cppdata.SplitQualified(cppdata.TemplateName(owner))
	ns := strings.Join(namespace, "::")
	for _, blocked := range b.opts.ModuleBlacklist {
		if ns == blocked || strings.HasPrefix(ns, blocked+"::") {
			return true
		}
	}
	return false
}

// function wraps one ABI function as a method, package-level function or
// interface implementation
func (b *builder) function(f *cppffi.Function) {
	m := f.Method
	if b.blacklisted(m) {
		return
	}

	gf := Function{
		Kind:               FfiWrapper,
		Ffi:                f,
		ReturnTypeFfiIndex: f.ReturnArgIndex,
		Doc:                m.Doc,
	}

	var target Path
	if m.IsFree() {
		namespace, _ := cppdata.SplitQualified(m.Name)
		gf.Scope = Scope{Kind: ScopeFree}
		for _, ns := range namespace {
			gf.Module = append(gf.Module, utilstrings.ToPackageName(ns))
		}
		b.namespaces[strings.Join(gf.Module, "/")] = strings.Join(namespace, "::")
	} else {
		w, ok := b.wrappers[f.Class.ClassName()]
		if !ok {
			b.report(errors.NewUnsupportedType(m.FullName(), f.Class.ToCppCode(), "class is declared by a dependency"), m.Origin.IncludeFile)
			return
		}
		target = w.Path
		gf.Scope = Scope{Kind: ScopeImpl, Target: target}
		gf.Module = target.Package
		switch {
		case m.IsConstructor || m.IsStatic:
			gf.SelfArg = SelfNone
		case m.IsConst:
			gf.SelfArg = SelfConstRef
		default:
			gf.SelfArg = SelfMutRef
		}
	}

	for idx, arg := range f.Arguments {
		if arg.Meaning.Kind != cppffi.MeaningArgument {
			continue
		}
		gt, raw, bad := b.goType(arg.Type, false)
		if bad != nil {
			b.report(errors.NewUnsupportedType(m.FullName(), bad.typ.ToCppCode(), bad.reason), m.Origin.IncludeFile)
			return
		}
		gf.IsUnsafe = gf.IsUnsafe || raw
		gf.Arguments = append(gf.Arguments, FunctionArgument{
			Name:     argumentName(arg.Name),
			Type:     CompleteType{Cpp: arg.Type.Original, Ffi: arg.Type, Go: gt},
			FfiIndex: idx,
		})
	}

	retFfi := f.ReturnType
	if f.ReturnArgIndex != nil {
		retFfi = f.Arguments[*f.ReturnArgIndex].Type
	}
	gt, raw, bad := b.goType(retFfi, true)
	if bad != nil {
		b.report(errors.NewUnsupportedType(m.FullName(), bad.typ.ToCppCode(), bad.reason), m.Origin.IncludeFile)
		return
	}
	gf.IsUnsafe = gf.IsUnsafe || raw
	gf.ReturnType = CompleteType{Cpp: retFfi.Original, Ffi: retFfi, Go: gt}

	if gf.SelfArg != SelfNone && b.traitImpl(target, &gf) {
		return
	}
	b.db.Functions = append(b.db.Functions, gf)
	if (m.IsSignal || m.IsSlot) && gf.SelfArg != SelfNone {
		b.db.Functions = append(b.db.Functions, receiverGetter(&gf))
	}
}

// receiverGetter returns the method that hands out the connection id of
// the signal or slot wrapped by gf
func receiverGetter(gf *Function) Function {
	m := gf.Ffi.Method
	kind, prefix := ReceiverSignal, "2"
	if !m.IsSignal {
		kind, prefix = ReceiverSlot, "1"
	}
	ret := voidType()
	ret.Go = GoType{Kind: GoReceiver}
	return Function{
		Kind:       ReceiverGetter,
		Scope:      gf.Scope,
		SelfArg:    SelfConstRef,
		Module:     gf.Module,
		Ffi:        gf.Ffi,
		ReturnType: ret,
		Receiver:   &Receiver{Kind: kind, ID: prefix + ReceiverSignature(m)},
	}
}

// ReceiverSignature is the normalized signature Qt uses to look up a
// signal or slot: the unqualified name and the argument types, with
// const references reduced to values
func ReceiverSignature(m *cppdata.Method) string {
	_, name := cppdata.SplitQualified(m.Name)
	args := make([]string, len(m.Arguments))
	for i, arg := range m.Arguments {
		t := arg.Type
		if t.Indirection == cppdata.IndirectionRef && t.IsConst {
			t.Indirection = cppdata.IndirectionNone
			t.IsConst = false
		}
		args[i] = t.ToCppCode()
	}
	return name + "(" + strings.Join(args, ",") + ")"
}

// traitImpl turns operator methods into cppcore interface implementations.
// Only the first match per interface and class is used.
func (b *builder) traitImpl(target Path, gf *Function) bool {
	m := gf.Ffi.Method
	var trait TraitType
	var assoc []AssociatedType

	switch {
	case m.Operator == "++" && len(m.Arguments) == 0 && discardable(gf.ReturnType.Go):
		trait = TraitType{Name: TraitIncrementer}
	case m.Operator == "--" && len(m.Arguments) == 0 && discardable(gf.ReturnType.Go):
		trait = TraitType{Name: TraitDecrementer}
	case m.Operator == "*" && len(m.Arguments) == 0 && gf.ReturnType.Go.Kind != GoVoid:
		out := gf.ReturnType.Go
		trait = TraitType{Name: TraitIndirection, Args: []GoType{out}}
		assoc = []AssociatedType{{Name: "Output", Value: out}}
	case m.Operator == "==" && len(gf.Arguments) == 1 && b.sameClassOperand(gf) &&
		gf.ReturnType.Go.Kind == GoBuiltIn && gf.ReturnType.Go.Builtin.Go == "bool":
		trait = TraitType{Name: TraitEqualer, Args: []GoType{gf.Arguments[0].Type.Go}}
	default:
		return false
	}

	if !b.addTrait(target, trait.Name) {
		return false
	}
	gf.Scope = Scope{Kind: ScopeTraitImpl, Target: target}
	gf.Name = TraitMethod(trait.Name)
	if trait.Name == TraitIncrementer || trait.Name == TraitDecrementer {
		// Inc and Dec return nothing; the operator's result is the receiver
		gf.ReturnType = voidType()
	}
	b.db.TraitImpls = append(b.db.TraitImpls, TraitImpl{
		Target:          target,
		Trait:           trait,
		AssociatedTypes: assoc,
		Functions:       []Function{*gf},
	})
	return true
}

// discardable reports whether a call result can be dropped without
// leaking. An owned value cannot.
func discardable(t GoType) bool {
	return t.Kind != GoBox
}

func (b *builder) sameClassOperand(gf *Function) bool {
	arg := gf.Arguments[0].Type.Cpp
	if !arg.IsClass() || arg.ClassName() != gf.Ffi.Class.ClassName() {
		return false
	}
	return arg.Indirection == cppdata.IndirectionNone ||
		(arg.Indirection == cppdata.IndirectionRef && arg.IsConst)
}

// reservedLocals are names used by generated function bodies
var reservedLocals = map[string]bool{
	"self": true, "out": true, "ret": true,
	"C": true, "unsafe": true, "cppcore": true,
}

func argumentName(name string) string {
	id := utilstrings.ToIdentifier(name)
	if reservedLocals[id] {
		return id + "_"
	}
	return utilstrings.SafeIdentifier(id)
}

// baseName is the Go name of a function before overload captions
func baseName(f *Function) string {
	m := f.Ffi.Method
	switch {
	case f.Kind == ReceiverGetter:
		_, last := cppdata.SplitQualified(m.Name)
		return utilstrings.ToPascalCase(utilstrings.ToIdentifier(last)) + f.Receiver.Kind.String()
	case m.IsConstructor:
		return "New" + f.Scope.Target.Name
	case m.IsFree():
		_, last := cppdata.SplitQualified(m.Name)
		if m.Operator != "" {
			return utilstrings.ToPascalCase(cppffi.MangledName(m))
		}
		return utilstrings.ToPascalCase(utilstrings.ToIdentifier(last))
	case m.IsStatic:
		return f.Scope.Target.Name + utilstrings.ToPascalCase(utilstrings.ToIdentifier(m.Name))
	case m.Operator != "" || m.ConversionOperator != nil:
		return utilstrings.ToPascalCase(cppffi.MangledName(m))
	}
	return utilstrings.ToPascalCase(utilstrings.ToIdentifier(m.Name))
}

// namespaceOf returns the naming scope of a function: the method set of its
// receiver type or its package
func namespaceOf(f *Function) string {
	if f.IsMethod() {
		return "type:" + f.Scope.Target.String()
	}
	return "pkg:" + strings.Join(f.Module, "/")
}

// assignNames resolves overload captions for every non-interface function
func (b *builder) assignNames() error {
	taken := make(map[string]map[string]bool)
	reserve := func(ns, name string) {
		if taken[ns] == nil {
			taken[ns] = make(map[string]bool)
		}
		taken[ns][name] = true
	}

	for _, w := range b.db.Types {
		pkg := "pkg:" + strings.Join(w.Path.Package, "/")
		reserve(pkg, w.Path.Name)
		for _, v := range w.EnumValues {
			reserve(pkg, v.Name)
		}
	}
	for _, impl := range b.db.TraitImpls {
		for _, f := range impl.Functions {
			reserve("type:"+impl.Target.String(), f.Name)
		}
	}

	type groupKey struct{ ns, base string }
	groups := make(map[groupKey][]*Function)
	var keys []groupKey
	for i := range b.db.Functions {
		f := &b.db.Functions[i]
		key := groupKey{namespaceOf(f), baseName(f)}
		if _, ok := groups[key]; !ok {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], f)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].ns != keys[j].ns {
			return keys[i].ns < keys[j].ns
		}
		return keys[i].base < keys[j].base
	})

	var errs errors.ErrorList
	for _, key := range keys {
		fns := groups[key]
		sort.SliceStable(fns, func(i, j int) bool {
			return fns[i].Ffi.Method.OriginalIndex < fns[j].Ffi.Method.OriginalIndex
		})
		if taken[key.ns] == nil {
			taken[key.ns] = make(map[string]bool)
		}
		if _, err := ResolveCaptions(key.base, fns, taken[key.ns]); err != nil {
			if be, ok := err.(*errors.BindError); ok {
				errs = append(errs, be)
			} else {
				return err
			}
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// modules lists every package that receives a type or function
func (b *builder) modules() {
	seen := map[string]bool{"": true}
	paths := [][]string{nil}
	add := func(p []string) {
		key := strings.Join(p, "/")
		if seen[key] {
			return
		}
		seen[key] = true
		paths = append(paths, p)
		// Parent packages exist even when empty.
		if len(p) > 1 {
			for i := 1; i < len(p); i++ {
				parent := strings.Join(p[:i], "/")
				if !seen[parent] {
					seen[parent] = true
					paths = append(paths, append([]string(nil), p[:i]...))
				}
			}
		}
	}
	for _, t := range b.db.Types {
		add(t.Path.Package)
	}
	for _, f := range b.db.Functions {
		add(f.Module)
	}

	sort.Slice(paths, func(i, j int) bool {
		return strings.Join(paths[i], "/") < strings.Join(paths[j], "/")
	})
	for _, p := range paths {
		ns := b.namespaces[strings.Join(p, "/")]
		doc := "wraps the global C++ namespace"
		if ns != "" {
			doc = fmt.Sprintf("wraps the C++ namespace %s", ns)
		}
		b.db.Modules = append(b.db.Modules, Module{Path: p, CppNamespace: ns, Doc: doc})
	}
}
