package goinfo

import (
	"fmt"
	"strconv"

	"github.com/conduit-lang/cppbind/internal/cppdata"
	"github.com/conduit-lang/cppbind/internal/errors"
	utilstrings "github.com/conduit-lang/cppbind/internal/util/strings"
)

// CaptionStrategy derives a name suffix that tells overloads apart
type CaptionStrategy int

const (
	// SelfOnly captions by receiver kind
	SelfOnly CaptionStrategy = iota
	// UnsafeOnly captions unsafe functions
	UnsafeOnly
	// SelfAndArgTypes captions by receiver kind and argument types
	SelfAndArgTypes
	// SelfAndArgNames captions by receiver kind and argument names
	SelfAndArgNames
	// SelfAndIndex captions by receiver kind and position in the group
	SelfAndIndex
)

// CaptionStrategies lists the strategies in the order they are tried
var CaptionStrategies = []CaptionStrategy{
	SelfOnly,
	UnsafeOnly,
	SelfAndArgTypes,
	SelfAndArgNames,
	SelfAndIndex,
}

func (s CaptionStrategy) String() string {
	switch s {
	case SelfOnly:
		return "self_only"
	case UnsafeOnly:
		return "unsafe_only"
	case SelfAndArgTypes:
		return "self_and_arg_types"
	case SelfAndArgNames:
		return "self_and_arg_names"
	default:
		return "self_and_index"
	}
}

// selfCaption is the receiver part of a caption
func selfCaption(self SelfArg) string {
	switch self {
	case SelfNone:
		return "static"
	case SelfMutRef:
		return "mut"
	case SelfValue:
		return "value"
	default:
		return ""
	}
}

// ArgTypeCaption is the caption contributed by one argument type
func ArgTypeCaption(t cppdata.Type) string {
	var name string
	switch t.Base.Kind {
	case cppdata.BaseBuiltIn:
		name = utilstrings.ToPascalCase(t.Base.Name)
	case cppdata.BaseVoid:
		name = "Void"
	default:
		_, last := cppdata.SplitQualified(cppdata.TemplateName(t.Base.Name))
		name = utilstrings.ToPascalCase(last)
		for _, arg := range t.Base.TemplateArguments {
			name += ArgTypeCaption(arg)
		}
	}

	switch t.Indirection {
	case cppdata.IndirectionPtr:
		name += "Ptr"
	case cppdata.IndirectionPtrPtr:
		name += "PtrPtr"
	case cppdata.IndirectionRef:
		if !t.IsConst {
			name = "Mut" + name
		}
	}
	return name
}

// caption returns the suffix of f under strategy s. index is the position
// of f in its overload group. The combined strategies only mention the
// receiver when withSelf is set.
func caption(s CaptionStrategy, f *Function, native []cppdata.Argument, index int, withSelf bool) string {
	self := ""
	if withSelf {
		self = utilstrings.ToPascalCase(selfCaption(f.SelfArg))
	}
	switch s {
	case SelfOnly:
		return utilstrings.ToPascalCase(selfCaption(f.SelfArg))
	case UnsafeOnly:
		if f.IsUnsafe {
			return "Unsafe"
		}
		return ""
	case SelfAndArgTypes:
		out := self
		for _, arg := range native {
			out += ArgTypeCaption(arg.Type)
		}
		return out
	case SelfAndArgNames:
		out := self
		for _, arg := range native {
			out += utilstrings.ToPascalCase(utilstrings.ToIdentifier(arg.Name))
		}
		return out
	default:
		out := self
		if index > 0 {
			out += strconv.Itoa(index)
		}
		return out
	}
}

func nativeArguments(f *Function) []cppdata.Argument {
	if f.Ffi == nil || f.Ffi.Method == nil {
		return nil
	}
	return f.Ffi.Method.Arguments
}

// ResolveCaptions names the functions of one overload group. Names must be
// unique within the group and must not be in taken. On success the chosen
// names are added to taken.
func ResolveCaptions(base string, functions []*Function, taken map[string]bool) (CaptionStrategy, error) {
	if len(functions) == 1 && !taken[base] {
		functions[0].Name = base
		taken[base] = true
		return SelfOnly, nil
	}

	withSelf := false
	for _, f := range functions[1:] {
		if f.SelfArg != functions[0].SelfArg {
			withSelf = true
		}
	}

	for _, strategy := range CaptionStrategies {
		names := make([]string, len(functions))
		seen := make(map[string]bool, len(functions))
		ok := true
		for i, f := range functions {
			index := i
			if taken[base] {
				index++
			}
			name := base + caption(strategy, f, nativeArguments(f), index, withSelf)
			if seen[name] || taken[name] {
				ok = false
				break
			}
			seen[name] = true
			names[i] = name
		}
		if !ok {
			continue
		}
		for i, f := range functions {
			f.Name = names[i]
			taken[names[i]] = true
		}
		return strategy, nil
	}

	return 0, errors.NewCaptionsExhausted(scopeName(functions[0]), base, len(functions))
}

func scopeName(f *Function) string {
	if f.Scope.Kind == ScopeFree || f.SelfArg == SelfNone {
		if len(f.Module) == 0 {
			return "package root"
		}
		return fmt.Sprintf("package %s", f.Module[len(f.Module)-1])
	}
	return f.Scope.Target.Name
}
