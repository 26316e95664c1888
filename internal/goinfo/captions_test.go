package goinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/cppbind/internal/cppdata"
	"github.com/conduit-lang/cppbind/internal/cppffi"
	"github.com/conduit-lang/cppbind/internal/errors"
)

func overload(self SelfArg, unsafe bool, args ...cppdata.Argument) *Function {
	m := &cppdata.Method{Name: "draw", Scope: "Widget", Arguments: args}
	return &Function{
		Scope:    Scope{Kind: ScopeImpl, Target: Path{Name: "Widget"}},
		SelfArg:  self,
		IsUnsafe: unsafe,
		Ffi:      &cppffi.Function{Method: m},
	}
}

func names(fns []*Function) []string {
	out := make([]string, len(fns))
	for i, f := range fns {
		out[i] = f.Name
	}
	return out
}

func TestResolveCaptionsStrategyOrder(t *testing.T) {
	intArg := cppdata.Argument{Name: "layer", Type: cppdata.BuiltIn("int")}
	floatArg := cppdata.Argument{Name: "layer", Type: cppdata.BuiltIn("float")}
	ptrArg := cppdata.Argument{Name: "target", Type: cppdata.ClassType("Widget").PtrTo()}

	tests := []struct {
		name     string
		fns      []*Function
		strategy CaptionStrategy
		want     []string
	}{
		{
			name:     "single",
			fns:      []*Function{overload(SelfMutRef, false)},
			strategy: SelfOnly,
			want:     []string{"Draw"},
		},
		{
			name:     "self only",
			fns:      []*Function{overload(SelfConstRef, false), overload(SelfMutRef, false)},
			strategy: SelfOnly,
			want:     []string{"Draw", "DrawMut"},
		},
		{
			name:     "static and receiver",
			fns:      []*Function{overload(SelfNone, false), overload(SelfConstRef, false)},
			strategy: SelfOnly,
			want:     []string{"DrawStatic", "Draw"},
		},
		{
			name:     "unsafe only",
			fns:      []*Function{overload(SelfMutRef, false), overload(SelfMutRef, true, ptrArg)},
			strategy: UnsafeOnly,
			want:     []string{"Draw", "DrawUnsafe"},
		},
		{
			name:     "arg types",
			fns:      []*Function{overload(SelfMutRef, false), overload(SelfMutRef, false, intArg)},
			strategy: SelfAndArgTypes,
			want:     []string{"Draw", "DrawInt"},
		},
		{
			name: "arg names",
			fns: []*Function{
				overload(SelfMutRef, false, intArg),
				overload(SelfMutRef, false, cppdata.Argument{Name: "depth", Type: cppdata.BuiltIn("int")}),
			},
			strategy: SelfAndArgNames,
			want:     []string{"DrawLayer", "DrawDepth"},
		},
		{
			name:     "index",
			fns:      []*Function{overload(SelfMutRef, false, intArg), overload(SelfMutRef, false, intArg)},
			strategy: SelfAndIndex,
			want:     []string{"Draw", "Draw1"},
		},
		{
			name:     "arg types beat names",
			fns:      []*Function{overload(SelfMutRef, false, intArg), overload(SelfMutRef, false, floatArg)},
			strategy: SelfAndArgTypes,
			want:     []string{"DrawInt", "DrawFloat"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			taken := make(map[string]bool)
			strategy, err := ResolveCaptions("Draw", tt.fns, taken)
			require.NoError(t, err)
			assert.Equal(t, tt.strategy, strategy)
			assert.Equal(t, tt.want, names(tt.fns))
			for _, n := range tt.want {
				assert.True(t, taken[n])
			}
		})
	}
}

func TestResolveCaptionsAvoidsOutsideNames(t *testing.T) {
	taken := map[string]bool{"DrawMut": true}
	fns := []*Function{overload(SelfConstRef, false), overload(SelfMutRef, false, cppdata.Argument{
		Name: "layer", Type: cppdata.BuiltIn("int"),
	})}

	strategy, err := ResolveCaptions("Draw", fns, taken)
	require.NoError(t, err)
	assert.Equal(t, SelfAndArgTypes, strategy)
	assert.Equal(t, []string{"Draw", "DrawMutInt"}, names(fns))
}

func TestResolveCaptionsSingleTakenName(t *testing.T) {
	taken := map[string]bool{"Delete": true}
	fns := []*Function{overload(SelfMutRef, false)}

	_, err := ResolveCaptions("Delete", fns, taken)
	require.NoError(t, err)
	assert.Equal(t, "DeleteMut", fns[0].Name)
}

func TestResolveCaptionsExhausted(t *testing.T) {
	taken := map[string]bool{"Draw": true, "Draw1": true, "Draw2": true}
	arg := cppdata.Argument{Name: "", Type: cppdata.BuiltIn("int")}
	fns := []*Function{overload(SelfConstRef, false, arg), overload(SelfConstRef, false, arg)}

	_, err := ResolveCaptions("Draw", fns, taken)
	require.Error(t, err)
	be, ok := err.(*errors.BindError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCaptionsExhausted, be.Code)
	assert.True(t, be.IsFatal())
	assert.Equal(t, "Widget.Draw", be.Subject)
}

func TestResolveCaptionsDeterministic(t *testing.T) {
	intArg := cppdata.Argument{Name: "layer", Type: cppdata.BuiltIn("int")}
	for i := 0; i < 5; i++ {
		fns := []*Function{overload(SelfMutRef, false), overload(SelfMutRef, false, intArg)}
		_, err := ResolveCaptions("Draw", fns, map[string]bool{})
		require.NoError(t, err)
		assert.Equal(t, []string{"Draw", "DrawInt"}, names(fns))
	}
}

func TestArgTypeCaption(t *testing.T) {
	tests := []struct {
		typ  cppdata.Type
		want string
	}{
		{cppdata.BuiltIn("unsigned int"), "UnsignedInt"},
		{cppdata.ClassType("gfx::Widget"), "Widget"},
		{cppdata.ClassType("Widget").PtrTo(), "WidgetPtr"},
		{cppdata.ClassType("Widget").RefTo(), "MutWidget"},
		{cppdata.ClassType("Widget").Const().RefTo(), "Widget"},
		{cppdata.ClassType("QVector", cppdata.BuiltIn("int")), "QVectorInt"},
		{cppdata.EnumType("gfx::Color"), "Color"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, ArgTypeCaption(tt.typ))
		})
	}
}
