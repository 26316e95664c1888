// Package writer runs a complete binding generation: it loads the model,
// synthesizes the shim and the Go wrappers, and writes the output tree.
package writer

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/conduit-lang/cppbind/internal/cache"
	"github.com/conduit-lang/cppbind/internal/codegen"
	"github.com/conduit-lang/cppbind/internal/cppdata"
	"github.com/conduit-lang/cppbind/internal/cppffi"
	"github.com/conduit-lang/cppbind/internal/errors"
	"github.com/conduit-lang/cppbind/internal/goinfo"
)

// CLibDir holds the shim sources inside the output tree
const CLibDir = "c_lib"

// Run generates the binding described by opts. Output is built in a
// sibling temp dir and only replaces OutputDir once everything, including
// the post-generation commands, has succeeded.
func Run(ctx context.Context, opts Options) (*Result, error) {
	opts.applyDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger.With(zap.String("unit", opts.Name))
	result := &Result{OutputDir: opts.OutputDir}

	exports, err := LoadDependencies(opts.Dependencies)
	if err != nil {
		return nil, err
	}
	deps := resolverDependencies(exports)
	logger.Debug("loaded dependencies", zap.Int("count", len(exports)))

	data, cached, err := loadModel(&opts, deps, logger)
	if err != nil {
		return nil, err
	}
	result.CacheHit = cached.hit
	result.Diagnostics = append(result.Diagnostics, cached.diagnostics...)

	resolver := cppdata.NewResolver(data, deps...)
	ffi, err := cppffi.Generate(data, resolver, cppffi.Options{LibName: opts.Name, Strict: opts.Strict})
	if err != nil {
		return nil, err
	}
	result.Diagnostics = append(result.Diagnostics, ffi.Diagnostics...)

	db, err := goinfo.Generate(data, ffi, resolver, goinfo.Options{
		ModuleBlacklist: opts.ModuleBlacklist,
		NameBlacklist:   opts.NameBlacklist,
	})
	if err != nil {
		return nil, err
	}
	if opts.Strict && len(db.Diagnostics) > 0 {
		return nil, promote(db.Diagnostics)
	}
	result.Diagnostics = append(result.Diagnostics, db.Diagnostics...)

	// Shim functions no wrapper calls are dropped.
	before := len(ffi.Functions)
	ffi.Retain(db.FfiNames())
	logger.Debug("filtered shim functions", zap.Int("before", before), zap.Int("after", len(ffi.Functions)))
	result.FfiFunctions = len(ffi.Functions)
	result.WrapperFunctions = len(db.Functions)

	inc := ResolveIncludeDirs(opts.IncludeDirs, opts.LibDirs, logger)
	if opts.Strict && len(inc.Diagnostics) > 0 {
		return nil, promote(inc.Diagnostics)
	}
	result.Diagnostics = append(result.Diagnostics, inc.Diagnostics...)
	result.UnresolvedIncludeDirs = inc.Unresolved

	files, err := render(ctx, &opts, exports, data, ffi, db, inc)
	if err != nil {
		return nil, err
	}
	result.Files = len(files)

	outDir := filepath.Clean(opts.OutputDir)
	tmpDir := outDir + ".tmp"
	if err := writeTree(tmpDir, files); err != nil {
		os.RemoveAll(tmpDir)
		return nil, err
	}
	if err := RunCommands(ctx, tmpDir, opts.PostCommands, logger); err != nil {
		os.RemoveAll(tmpDir)
		return nil, err
	}
	if err := swapTree(tmpDir, outDir); err != nil {
		os.RemoveAll(tmpDir)
		return nil, err
	}

	logger.Info("binding generated",
		zap.String("output", outDir),
		zap.Int("files", result.Files),
		zap.Int("ffi_functions", result.FfiFunctions),
		zap.Int("diagnostics", len(result.Diagnostics)),
	)
	return result, nil
}

type cacheOutcome struct {
	hit         bool
	diagnostics errors.ErrorList
}

// loadModel returns the validated, completed model of the library,
// reusing the cached snapshot when the input has not changed
func loadModel(opts *Options, deps []cppdata.Dependency, logger *zap.Logger) (*cppdata.Data, cacheOutcome, error) {
	var outcome cacheOutcome

	var store *cache.Store
	var inputHash string
	if opts.CacheDir != "" {
		store = cache.NewStore(opts.CacheDir, logger)
		h, err := cache.NewFileHasher().HashInputs([]string{opts.Input}, opts.Name)
		if err != nil {
			return nil, outcome, fmt.Errorf("failed to hash model input: %w", err)
		}
		inputHash = h
	}

	var data *cppdata.Data
	if store != nil {
		data, outcome.hit = store.Load(opts.Name, inputHash)
		outcome.diagnostics = store.Diagnostics()
	}
	if data == nil {
		loaded, err := cppdata.LoadFile(opts.Input)
		if err != nil {
			return nil, outcome, err
		}
		data = loaded
	}

	if err := data.Validate(deps...); err != nil {
		return nil, outcome, err
	}
	data.EnsureExplicitDestructors()

	if store != nil && !outcome.hit {
		if err := store.Save(opts.Name, inputHash, data); err != nil {
			// the run does not depend on the snapshot
			logger.Warn("failed to save model snapshot", zap.Error(err))
		}
	}
	return data, outcome, nil
}

// render produces every file of the output tree keyed by slash path
func render(ctx context.Context, opts *Options, exports []*Export, data *cppdata.Data, ffi *cppffi.Result, db *goinfo.Database, inc IncludeResolution) (map[string]string, error) {
	manifestDeps, err := dependencyEntries(opts, exports)
	if err != nil {
		return nil, err
	}
	linkOpts := *opts
	linkOpts.Frameworks = append(append([]string(nil), opts.Frameworks...), inc.Frameworks...)
	manifest := BaseManifest(&linkOpts, manifestDeps)

	if opts.Manifest != "" {
		raw, err := os.ReadFile(opts.Manifest)
		if err != nil {
			return nil, fmt.Errorf("failed to read manifest fragment: %w", err)
		}
		user, err := DecodeManifest(raw)
		if err != nil {
			return nil, err
		}
		manifest = MergeManifest(manifest, user)
	}

	link := table(manifest, "link")
	libs := stringList(link, "libs")
	frameworks := stringList(link, "frameworks")
	libDirs := append(append([]string(nil), opts.LibDirs...), inc.FrameworkDirs...)

	files := make(map[string]string)

	cppFiles, err := codegen.NewCppGenerator(codegen.CppOptions{
		LibName:     opts.Name,
		Includes:    opts.Includes,
		IncludeDirs: inc.Dirs,
		LinkLibs:    libs,
		Frameworks:  frameworks,
		LibDirs:     libDirs,
		PerHeader:   opts.PerHeader,
	}).Generate(ctx, ffi.Functions, db.Types)
	if err != nil {
		return nil, err
	}
	for name, content := range cppFiles {
		files[path.Join(CLibDir, name)] = content
	}

	goFiles, err := codegen.NewGoGenerator(codegen.GoOptions{
		ModulePath:   opts.ModulePath,
		PackageName:  opts.PackageName,
		LibName:      opts.Name,
		Dependencies: goDependencies(exports),
		LinkLibs:     libs,
		Frameworks:   frameworks,
		LibDirs:      libDirs,
	}).Generate(db)
	if err != nil {
		return nil, err
	}
	for name, content := range goFiles {
		files[name] = content
	}

	encoded, err := EncodeManifest(manifest)
	if err != nil {
		return nil, err
	}
	files[ManifestFile] = string(encoded)

	gomod, err := RenderGoMod(manifest, opts.GoVersion, opts.RuntimeVersion)
	if err != nil {
		return nil, err
	}
	files["go.mod"] = string(gomod)

	metadata, err := NewBuildScriptData(opts, inc, libs, frameworks, ffi.Functions).Encode()
	if err != nil {
		return nil, err
	}
	files[MetadataFile] = metadata

	export := &Export{
		Schema:      cache.SchemaVersion,
		Name:        opts.Name,
		Version:     opts.Version,
		ModulePath:  opts.ModulePath,
		PackageName: opts.PackageName,
		Data:        data,
	}
	raw, err := export.Encode()
	if err != nil {
		return nil, err
	}
	files[ExportFile] = string(raw)

	return files, nil
}

// dependencyEntries describes the dependencies for the manifest. Local
// paths are relative to the output dir.
func dependencyEntries(opts *Options, exports []*Export) ([]ManifestDependency, error) {
	absOut, err := filepath.Abs(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output directory: %w", err)
	}
	entries := make([]ManifestDependency, len(exports))
	for i, e := range exports {
		entries[i] = ManifestDependency{Name: e.Name, Version: e.Version, ModulePath: e.ModulePath}
		if !opts.WriteDependenciesLocalPaths {
			continue
		}
		absDep, err := filepath.Abs(opts.Dependencies[i])
		if err != nil {
			return nil, fmt.Errorf("failed to resolve dependency directory: %w", err)
		}
		rel, err := filepath.Rel(absOut, absDep)
		if err != nil {
			rel = absDep
		}
		rel = filepath.ToSlash(rel)
		if !path.IsAbs(rel) && rel[0] != '.' {
			rel = "./" + rel
		}
		entries[i].Path = rel
	}
	return entries, nil
}

// promote turns diagnostics into fatal errors
func promote(list errors.ErrorList) errors.ErrorList {
	out := make(errors.ErrorList, len(list))
	for i, e := range list {
		out[i] = e.AsFatal()
	}
	return out
}
