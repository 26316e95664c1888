package writer

import (
	"fmt"
	"strings"

	"golang.org/x/mod/modfile"

	"github.com/conduit-lang/cppbind/internal/codegen"
)

// RuntimeModule is the module providing pkg/cppcore
const RuntimeModule = "github.com/conduit-lang/cppbind"

// RenderGoMod renders the go.mod of a binding from its merged manifest.
// Every manifest dependency with a module path becomes a requirement; a
// dependency with a local path is also replaced by that path.
func RenderGoMod(manifest map[string]interface{}, goVersion, runtimeVersion string) ([]byte, error) {
	pkg := table(manifest, "package")
	modulePath := stringValue(pkg, "module")
	if modulePath == "" {
		return nil, fmt.Errorf("manifest has no package.module")
	}

	f := new(modfile.File)
	if err := f.AddModuleStmt(modulePath); err != nil {
		return nil, fmt.Errorf("invalid module path: %w", err)
	}
	if err := f.AddGoStmt(goVersion); err != nil {
		return nil, fmt.Errorf("invalid go version: %w", err)
	}
	f.AddNewRequire(RuntimeModule, runtimeVersion, false)

	for _, dep := range manifestDependencies(manifest) {
		if dep.ModulePath == "" {
			continue
		}
		version := moduleVersion(dep.Version)
		if dep.Path != "" {
			// a local replacement needs no published version
			version = "v0.0.0"
		}
		f.AddNewRequire(dep.ModulePath, version, false)
		if dep.Path != "" {
			if err := f.AddReplace(dep.ModulePath, "", dep.Path, ""); err != nil {
				return nil, fmt.Errorf("invalid replacement for %s: %w", dep.ModulePath, err)
			}
		}
	}

	f.Cleanup()
	out, err := f.Format()
	if err != nil {
		return nil, fmt.Errorf("failed to format go.mod: %w", err)
	}
	return out, nil
}

// moduleVersion turns a manifest version into a module version
func moduleVersion(v string) string {
	if v == "" {
		return "v0.0.0"
	}
	if !strings.HasPrefix(v, "v") {
		return "v" + v
	}
	return v
}

// goDependencies maps library names to the Go modules of their bindings
func goDependencies(exports []*Export) map[string]codegen.GoDependency {
	deps := make(map[string]codegen.GoDependency, len(exports))
	for _, e := range exports {
		deps[e.Name] = codegen.GoDependency{ModulePath: e.ModulePath, PackageName: e.PackageName}
	}
	return deps
}
