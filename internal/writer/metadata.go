package writer

import (
	"encoding/json"
	"fmt"
	"runtime"
	"sort"

	"github.com/conduit-lang/cppbind/internal/cppffi"
)

// MetadataFile is the build metadata consumed by downstream build steps
const MetadataFile = "build_script_data.json"

// BuildScriptData describes how to build and link the shim library
type BuildScriptData struct {
	CppWrapperLibName     string   `json:"cpp_wrapper_lib_name"`
	CppLibs               []string `json:"cpp_libs"`
	Frameworks            []string `json:"frameworks,omitempty"`
	FrameworkDirs         []string `json:"framework_dirs,omitempty"`
	IncludeDirs           []string `json:"include_dirs"`
	LibDirs               []string `json:"lib_dirs"`
	UnresolvedIncludeDirs []string `json:"unresolved_include_dirs,omitempty"`
	Headers               []string `json:"headers"`
	KnownTargets          []string `json:"known_targets"`
}

// NewBuildScriptData collects the metadata of a run
func NewBuildScriptData(opts *Options, inc IncludeResolution, libs, frameworks []string, functions []cppffi.Function) BuildScriptData {
	seen := make(map[string]bool)
	var headers []string
	for i := range functions {
		h := functions[i].Header()
		if h != "" && !seen[h] {
			seen[h] = true
			headers = append(headers, h)
		}
	}
	sort.Strings(headers)

	return BuildScriptData{
		CppWrapperLibName:     opts.Name + "_c",
		CppLibs:               nonNil(libs),
		Frameworks:            frameworks,
		FrameworkDirs:         inc.FrameworkDirs,
		IncludeDirs:           nonNil(inc.Dirs),
		LibDirs:               nonNil(opts.LibDirs),
		UnresolvedIncludeDirs: inc.Unresolved,
		Headers:               nonNil(headers),
		KnownTargets:          []string{runtime.GOOS + "/" + runtime.GOARCH},
	}
}

// Encode renders the metadata as indented JSON
func (b BuildScriptData) Encode() (string, error) {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode build metadata: %w", err)
	}
	return string(data) + "\n", nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
