package writer

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/cppbind/internal/cppdata"
	"github.com/conduit-lang/cppbind/internal/errors"
)

func intPtr(v int) *int { return &v }

func typePtr(t cppdata.Type) *cppdata.Type { return &t }

func method(scope, name, header string, index int) cppdata.Method {
	return cppdata.Method{
		Name:          name,
		Scope:         scope,
		Visibility:    cppdata.VisibilityPublic,
		OriginalIndex: index,
		Origin:        cppdata.Origin{IncludeFile: header},
	}
}

// writeModel stores a small gfx model in the front-end format
func writeModel(t *testing.T, dir string) string {
	t.Helper()
	d := cppdata.NewData()
	d.Types = []cppdata.TypeData{
		{Name: "gfx::Widget", Header: "gfx/widget.h", Class: &cppdata.ClassKind{Size: intPtr(8)}},
	}

	ctor := method("gfx::Widget", "Widget", "gfx/widget.h", 0)
	ctor.IsConstructor = true

	resize := method("gfx::Widget", "resize", "gfx/widget.h", 1)
	resize.Arguments = []cppdata.Argument{
		{Name: "w", Type: cppdata.BuiltIn("int")},
		{Name: "h", Type: cppdata.BuiltIn("int")},
	}

	width := method("gfx::Widget", "width", "gfx/widget.h", 2)
	width.IsConst = true
	width.ReturnType = typePtr(cppdata.BuiltIn("int"))

	version := method("", "gfx::version", "gfx/version.h", 3)
	version.ReturnType = typePtr(cppdata.BuiltIn("int"))

	d.Methods = []cppdata.Method{ctor, resize, width, version}

	path := filepath.Join(dir, "gfx.json")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, d.Write(f))
	return path
}

func baseOptions(t *testing.T) Options {
	t.Helper()
	root := t.TempDir()
	return Options{
		Name:       "gfx",
		ModulePath: "example.com/gfxgo",
		Input:      writeModel(t, root),
		OutputDir:  filepath.Join(root, "out", "gfx"),
		Includes:   []string{"gfx/widget.h", "gfx/version.h"},
		LinkLibs:   []string{"gfx"},
	}
}

func readOutput(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
	require.NoError(t, err)
	return string(data)
}

func TestRunWritesTree(t *testing.T) {
	opts := baseOptions(t)

	result, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, opts.OutputDir, result.OutputDir)
	assert.False(t, result.CacheHit)
	assert.Positive(t, result.FfiFunctions)

	out := opts.OutputDir
	for _, name := range []string{
		"go.mod",
		ManifestFile,
		MetadataFile,
		ExportFile,
		"gfxgo.go",
		"gfx/gfx.go",
		"gfx/ffi.go",
		"c_lib/gfx_c.cpp",
		"c_lib/gfx_c_global.h",
		"c_lib/sized_types.cxx",
		"c_lib/CMakeLists.txt",
	} {
		assert.FileExists(t, filepath.Join(out, filepath.FromSlash(name)))
	}
	assert.NoDirExists(t, out+".tmp")

	gomod := readOutput(t, out, "go.mod")
	assert.Contains(t, gomod, "module example.com/gfxgo")
	assert.Contains(t, gomod, RuntimeModule)

	manifest := readOutput(t, out, ManifestFile)
	assert.Contains(t, manifest, `name = "gfx"`)
	assert.Contains(t, manifest, `version = "0.1.0"`)

	metadata := readOutput(t, out, MetadataFile)
	assert.Contains(t, metadata, `"cpp_wrapper_lib_name": "gfx_c"`)
	assert.Contains(t, metadata, `"gfx/version.h"`)

	assert.Contains(t, readOutput(t, out, "gfx/gfx.go"), "func (self *Widget) Resize(w int32, h int32) {")
}

var (
	goCall  = regexp.MustCompile(`C\.(gfx_\w+)\(`)
	shimDef = regexp.MustCompile(`(?m)^[^\s/].*\b(gfx_\w+)\(.*\) \{$`)
)

func matches(re *regexp.Regexp, text string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}
	sort.Strings(out)
	return out
}

func TestRunShimMatchesWrapperCalls(t *testing.T) {
	opts := baseOptions(t)
	opts.NameBlacklist = []string{"gfx::Widget::resize"}

	result, err := Run(context.Background(), opts)
	require.NoError(t, err)

	goCode := readOutput(t, opts.OutputDir, "gfx/gfx.go") + readOutput(t, opts.OutputDir, "gfxgo.go")
	shim := readOutput(t, opts.OutputDir, "c_lib/gfx_c.cpp")

	called := matches(goCall, goCode)
	defined := matches(shimDef, shim)
	require.NotEmpty(t, called)
	assert.Equal(t, called, defined)
	assert.Len(t, defined, result.FfiFunctions)

	assert.NotContains(t, shim, "gfx_gfx_Widget_resize")
	assert.NotContains(t, goCode, "Resize")
}

func TestRunUsesCache(t *testing.T) {
	opts := baseOptions(t)
	opts.CacheDir = filepath.Join(t.TempDir(), "cache")

	first, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.False(t, first.CacheHit)
	assert.FileExists(t, filepath.Join(opts.CacheDir, "gfx.cbor"))

	second, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Equal(t, first.FfiFunctions, second.FfiFunctions)
}

func TestRunRecoversFromCorruptCache(t *testing.T) {
	opts := baseOptions(t)
	opts.CacheDir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(opts.CacheDir, "gfx.cbor"), []byte("not cbor"), 0644))

	result, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.False(t, result.CacheHit)
	require.NotEmpty(t, result.Diagnostics)
	assert.Equal(t, errors.ErrStaleSnapshot, result.Diagnostics[0].Code)
}

func TestRunRunsPostCommandsInNewTree(t *testing.T) {
	opts := baseOptions(t)
	opts.PostCommands = [][]string{{"sh", "-c", "test -f go.mod && touch built.txt"}}

	_, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(opts.OutputDir, "built.txt"))
}

func TestRunFailureKeepsPreviousOutput(t *testing.T) {
	opts := baseOptions(t)
	_, err := Run(context.Background(), opts)
	require.NoError(t, err)
	before := readOutput(t, opts.OutputDir, "gfx/gfx.go")

	opts.NameBlacklist = []string{"gfx::Widget::resize"}
	opts.PostCommands = [][]string{{"sh", "-c", "exit 3"}}
	_, err = Run(context.Background(), opts)
	require.Error(t, err)

	bindErr, ok := err.(*errors.BindError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCommandFailed, bindErr.Code)

	assert.Equal(t, before, readOutput(t, opts.OutputDir, "gfx/gfx.go"))
	assert.NoDirExists(t, opts.OutputDir+".tmp")
}

func TestRunStrictUnresolvedIncludeDir(t *testing.T) {
	opts := baseOptions(t)
	opts.IncludeDirs = []string{filepath.Join(t.TempDir(), "missing")}

	result, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Len(t, result.UnresolvedIncludeDirs, 1)
	assert.Contains(t, readOutput(t, opts.OutputDir, MetadataFile), "unresolved_include_dirs")

	opts.Strict = true
	opts.OutputDir = opts.OutputDir + "-strict"
	_, err = Run(context.Background(), opts)
	require.Error(t, err)
	list, ok := err.(errors.ErrorList)
	require.True(t, ok)
	assert.Equal(t, errors.ErrUnresolvedIncludeDir, list[0].Code)
	assert.True(t, list[0].IsFatal())
	assert.NoDirExists(t, opts.OutputDir)
}

func TestRunWithDependency(t *testing.T) {
	core := baseOptions(t)
	core.Name = "core"
	core.ModulePath = "example.com/corego"
	core.Version = "1.4.0"
	_, err := Run(context.Background(), core)
	require.NoError(t, err)

	exports, err := LoadDependencies([]string{core.OutputDir})
	require.NoError(t, err)
	require.Len(t, exports, 1)
	assert.Equal(t, "core", exports[0].Name)
	assert.Equal(t, "corego", exports[0].PackageName)
	assert.NotEmpty(t, exports[0].Data.Types)

	opts := baseOptions(t)
	opts.Dependencies = []string{core.OutputDir}
	opts.WriteDependenciesLocalPaths = true
	_, err = Run(context.Background(), opts)
	require.NoError(t, err)

	manifest := readOutput(t, opts.OutputDir, ManifestFile)
	assert.Contains(t, manifest, "[dependencies.core]")
	assert.Contains(t, manifest, `module = "example.com/corego"`)

	gomod := readOutput(t, opts.OutputDir, "go.mod")
	assert.Contains(t, gomod, "example.com/corego")
	assert.Contains(t, gomod, "=> ")
}

func TestRunRejectsIncompleteOptions(t *testing.T) {
	_, err := Run(context.Background(), Options{})
	require.Error(t, err)
	list, ok := err.(errors.ErrorList)
	require.True(t, ok)

	var keys []string
	for _, e := range list {
		assert.Equal(t, errors.ErrInvalidConfig, e.Code)
		keys = append(keys, e.Subject)
	}
	assert.Equal(t, "name,input,output_dir,module", strings.Join(keys, ","))
}

func TestLoadDependenciesMissingExport(t *testing.T) {
	_, err := LoadDependencies([]string{t.TempDir()})
	assert.Error(t, err)
}
