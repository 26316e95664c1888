package writer

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/conduit-lang/cppbind/internal/errors"
)

// IncludeResolution is the outcome of locating the configured header dirs
type IncludeResolution struct {
	Dirs []string
	// FrameworkDirs and Frameworks are filled when a header dir was found
	// inside a framework bundle
	FrameworkDirs []string
	Frameworks    []string
	Unresolved    []string
	Diagnostics   errors.ErrorList
}

// ResolveIncludeDirs checks every configured header dir. A missing dir
// named Name is looked up as <lib dir>/Name.framework/Headers, in which
// case the framework is linked too. Dirs that cannot be found are
// recorded as unresolved.
func ResolveIncludeDirs(dirs, libDirs []string, logger *zap.Logger) IncludeResolution {
	if logger == nil {
		logger = zap.NewNop()
	}
	var res IncludeResolution
	seenFrameworkDir := make(map[string]bool)

	for _, dir := range dirs {
		if isDir(dir) {
			res.Dirs = append(res.Dirs, dir)
			continue
		}

		name := filepath.Base(dir)
		tried := []string{dir}
		found := false
		for _, libDir := range libDirs {
			candidate := filepath.Join(libDir, name+".framework", "Headers")
			tried = append(tried, candidate)
			if !isDir(candidate) {
				continue
			}
			res.Dirs = append(res.Dirs, candidate)
			if !seenFrameworkDir[libDir] {
				seenFrameworkDir[libDir] = true
				res.FrameworkDirs = append(res.FrameworkDirs, libDir)
			}
			res.Frameworks = append(res.Frameworks, name)
			found = true
			break
		}
		if found {
			continue
		}

		diag := errors.NewUnresolvedIncludeDir(tried)
		logger.Warn(diag.Message, zap.Strings("tried", tried))
		res.Unresolved = append(res.Unresolved, dir)
		res.Diagnostics = append(res.Diagnostics, diag)
	}
	return res
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
