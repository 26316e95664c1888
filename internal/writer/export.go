package writer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/conduit-lang/cppbind/internal/cache"
	"github.com/conduit-lang/cppbind/internal/cppdata"
)

// ExportFile is written to every output dir so later runs can depend on it
const ExportFile = "cppbind_export.cbor"

// Export is what a binding publishes to bindings that depend on it
type Export struct {
	Schema      int           `cbor:"schema"`
	Name        string        `cbor:"name"`
	Version     string        `cbor:"version"`
	ModulePath  string        `cbor:"module_path"`
	PackageName string        `cbor:"package_name"`
	Data        *cppdata.Data `cbor:"data"`
}

// Encode renders the export as canonical CBOR
func (e *Export) Encode() ([]byte, error) {
	raw, err := cache.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to encode export of %s: %w", e.Name, err)
	}
	return raw, nil
}

// LoadExport reads the export of the binding generated into dir
func LoadExport(dir string) (*Export, error) {
	path := filepath.Join(dir, ExportFile)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dependency export: %w", err)
	}

	var e Export
	if err := cache.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if e.Schema != cache.SchemaVersion {
		return nil, fmt.Errorf("%s has schema version %d, want %d; regenerate the dependency", path, e.Schema, cache.SchemaVersion)
	}
	if e.Name == "" || e.Data == nil {
		return nil, fmt.Errorf("%s is incomplete", path)
	}
	if e.Data.TemplateInstantiations == nil {
		e.Data.TemplateInstantiations = make(map[string][][]cppdata.Type)
	}
	return &e, nil
}

// LoadDependencies reads the exports of all dependency dirs in order
func LoadDependencies(dirs []string) ([]*Export, error) {
	exports := make([]*Export, 0, len(dirs))
	seen := make(map[string]string)
	for _, dir := range dirs {
		e, err := LoadExport(dir)
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[e.Name]; ok {
			return nil, fmt.Errorf("dependency %s is exported by both %s and %s", e.Name, prev, dir)
		}
		seen[e.Name] = dir
		exports = append(exports, e)
	}
	return exports, nil
}

// resolverDependencies converts exports for the type resolver
func resolverDependencies(exports []*Export) []cppdata.Dependency {
	deps := make([]cppdata.Dependency, len(exports))
	for i, e := range exports {
		deps[i] = cppdata.Dependency{Name: e.Name, Data: e.Data}
	}
	return deps
}
