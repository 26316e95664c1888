package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/mod/module"

	"github.com/conduit-lang/cppbind/internal/errors"
	utilstrings "github.com/conduit-lang/cppbind/internal/util/strings"
	"github.com/conduit-lang/cppbind/internal/writer"
)

// FileName is the config file looked up in the working directory
const FileName = "cppbind"

// EnvPrefix prefixes environment overrides (CPPBIND_OUTPUT_DIR)
const EnvPrefix = "CPPBIND"

// Config represents a cppbind.yml file
type Config struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Module      string `mapstructure:"module"`
	PackageName string `mapstructure:"package"`

	Input     string `mapstructure:"input"`
	OutputDir string `mapstructure:"output_dir"`
	CacheDir  string `mapstructure:"cache_dir"`

	Includes    []string `mapstructure:"includes"`
	IncludeDirs []string `mapstructure:"include_dirs"`
	LibDirs     []string `mapstructure:"lib_dirs"`
	LinkLibs    []string `mapstructure:"link_libs"`
	Frameworks  []string `mapstructure:"frameworks"`

	Dependencies                []string `mapstructure:"dependencies"`
	WriteDependenciesLocalPaths bool     `mapstructure:"write_dependencies_local_paths"`

	Manifest     string     `mapstructure:"manifest"`
	PostCommands [][]string `mapstructure:"post_commands"`

	ModuleBlacklist []string `mapstructure:"module_blacklist"`
	NameBlacklist   []string `mapstructure:"name_blacklist"`

	PerHeader bool   `mapstructure:"per_header"`
	Strict    bool   `mapstructure:"strict"`
	GoVersion string `mapstructure:"go_version"`

	// dir is the directory relative paths are resolved against
	dir string
	// file is the config file that was read, empty when none was found
	file string
}

// Load reads the config. An empty path looks for cppbind.yml in the
// working directory; a missing file leaves the defaults in place.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("version", writer.DefaultVersion)
	v.SetDefault("output_dir", "out")
	v.SetDefault("cache_dir", ".cppbind/cache")
	v.SetDefault("go_version", writer.DefaultGoVersion)
	v.SetDefault("strict", false)
	v.SetDefault("per_header", false)
	v.SetDefault("write_dependencies_local_paths", false)
	// registered so the environment can override them
	for _, key := range []string{"name", "module", "package", "input", "manifest"} {
		v.SetDefault(key, "")
	}

	if path != "" {
		// an explicitly named file must exist
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.dir = "."
	if used := v.ConfigFileUsed(); used != "" {
		cfg.dir = filepath.Dir(used)
		cfg.file = used
	}
	return &cfg, nil
}

// Validate checks the values a generation run needs
func (c *Config) Validate() error {
	var list errors.ErrorList
	if c.Name == "" {
		list = append(list, errors.NewInvalidConfig("name", "library name is required"))
	} else if utilstrings.ToIdentifier(c.Name) != c.Name {
		list = append(list, errors.NewInvalidConfig("name", "must be a valid C identifier"))
	}
	if c.Module == "" {
		list = append(list, errors.NewInvalidConfig("module", "Go module path is required"))
	} else if err := module.CheckPath(c.Module); err != nil {
		list = append(list, errors.NewInvalidConfig("module", err.Error()))
	}
	if c.Input == "" {
		list = append(list, errors.NewInvalidConfig("input", "model input file is required"))
	}
	if c.OutputDir == "" {
		list = append(list, errors.NewInvalidConfig("output_dir", "output directory is required"))
	}
	if c.PackageName != "" && utilstrings.SafeIdentifier(c.PackageName) != c.PackageName {
		list = append(list, errors.NewInvalidConfig("package", "must be a valid Go package name"))
	}
	for i, cmd := range c.PostCommands {
		if len(cmd) == 0 {
			list = append(list, errors.NewInvalidConfig(fmt.Sprintf("post_commands[%d]", i), "command is empty"))
		}
	}
	if len(list) > 0 {
		return list
	}
	return nil
}

// WriterOptions converts the config into generation options. Relative
// paths are resolved against the config file's directory.
func (c *Config) WriterOptions(logger *zap.Logger) writer.Options {
	return writer.Options{
		Name:                        c.Name,
		Version:                     c.Version,
		ModulePath:                  c.Module,
		PackageName:                 c.PackageName,
		Input:                       c.resolve(c.Input),
		OutputDir:                   c.resolve(c.OutputDir),
		CacheDir:                    c.resolve(c.CacheDir),
		Includes:                    c.Includes,
		IncludeDirs:                 c.resolveAll(c.IncludeDirs),
		LibDirs:                     c.resolveAll(c.LibDirs),
		LinkLibs:                    c.LinkLibs,
		Frameworks:                  c.Frameworks,
		Dependencies:                c.resolveAll(c.Dependencies),
		WriteDependenciesLocalPaths: c.WriteDependenciesLocalPaths,
		Manifest:                    c.resolve(c.Manifest),
		PostCommands:                c.PostCommands,
		ModuleBlacklist:             c.ModuleBlacklist,
		NameBlacklist:               c.NameBlacklist,
		PerHeader:                   c.PerHeader,
		Strict:                      c.Strict,
		GoVersion:                   c.GoVersion,
		Logger:                      logger,
	}
}

// File returns the path of the config file that was read
func (c *Config) File() string {
	return c.file
}

// Resolve makes a config-relative path usable from the working directory
func (c *Config) Resolve(path string) string {
	return c.resolve(path)
}

func (c *Config) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || c.dir == "" || c.dir == "." {
		return path
	}
	return filepath.Join(c.dir, path)
}

func (c *Config) resolveAll(paths []string) []string {
	if paths == nil {
		return nil
	}
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = c.resolve(p)
	}
	return out
}
