package writer

import (
	"fmt"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/conduit-lang/cppbind/internal/errors"
	utilstrings "github.com/conduit-lang/cppbind/internal/util/strings"
)

// Options configures one generation run
type Options struct {
	// Name is the library name. It prefixes every shim symbol.
	Name    string
	Version string
	// ModulePath and PackageName identify the generated Go module
	ModulePath  string
	PackageName string

	// Input is the front-end's JSON model of the library
	Input string
	// OutputDir receives the generated tree; it is replaced as a whole
	OutputDir string
	// CacheDir holds model snapshots; empty disables the cache
	CacheDir string

	Includes    []string
	IncludeDirs []string
	LibDirs     []string
	LinkLibs    []string
	Frameworks  []string

	// Dependencies are output dirs of previous runs this library uses
	Dependencies                []string
	WriteDependenciesLocalPaths bool

	// Manifest is an optional user TOML fragment merged into cppbind.toml
	Manifest string

	// PostCommands run inside the fresh tree before it is swapped in
	PostCommands [][]string

	ModuleBlacklist []string
	NameBlacklist   []string

	PerHeader bool
	Strict    bool

	GoVersion      string
	RuntimeVersion string

	Logger *zap.Logger
}

// Result summarizes a generation run
type Result struct {
	OutputDir             string
	Files                 int
	FfiFunctions          int
	WrapperFunctions      int
	CacheHit              bool
	UnresolvedIncludeDirs []string
	Diagnostics           errors.ErrorList
}

// Default values applied by applyDefaults
const (
	DefaultVersion        = "0.1.0"
	DefaultGoVersion      = "1.23"
	DefaultRuntimeVersion = "v0.1.0"
)

func (o *Options) applyDefaults() {
	if o.Version == "" {
		o.Version = DefaultVersion
	}
	if o.GoVersion == "" {
		o.GoVersion = DefaultGoVersion
	}
	if o.RuntimeVersion == "" {
		o.RuntimeVersion = DefaultRuntimeVersion
	}
	if o.PackageName == "" && o.ModulePath != "" {
		o.PackageName = packageNameFor(o.ModulePath)
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
}

// Validate checks the options a run cannot do without
func (o *Options) Validate() error {
	var list errors.ErrorList
	if o.Name == "" {
		list = append(list, errors.NewInvalidConfig("name", "library name is required"))
	}
	if o.Input == "" {
		list = append(list, errors.NewInvalidConfig("input", "model input file is required"))
	}
	if o.OutputDir == "" {
		list = append(list, errors.NewInvalidConfig("output_dir", "output directory is required"))
	}
	if o.ModulePath == "" {
		list = append(list, errors.NewInvalidConfig("module", "Go module path is required"))
	}
	for i, cmd := range o.PostCommands {
		if len(cmd) == 0 {
			list = append(list, errors.NewInvalidConfig(fmt.Sprintf("post_commands[%d]", i), "command is empty"))
		}
	}
	if len(list) > 0 {
		return list
	}
	return nil
}

// packageNameFor derives a package name from the last module path element
func packageNameFor(modulePath string) string {
	base := path.Base(modulePath)
	// drop a major version suffix
	if strings.HasPrefix(base, "v") && len(base) > 1 && strings.Trim(base[1:], "0123456789") == "" {
		base = path.Base(path.Dir(modulePath))
	}
	return utilstrings.SafeIdentifier(utilstrings.ToPackageName(base))
}
