package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/cppbind/internal/errors"
)

const sample = `
name: gfx
version: 1.2.0
module: example.com/gfxgo
input: model/gfx.json
output_dir: out/gfx
includes:
  - gfx/widget.h
include_dirs:
  - include
  - /opt/gfx/include
link_libs: [gfx]
name_blacklist:
  - gfx::Widget::draw
post_commands:
  - [cmake, -S, c_lib, -B, c_lib/build]
  - [cmake, --build, c_lib/build]
strict: true
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "cppbind.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tmpDir))
	defer os.Chdir(oldWd)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.1.0", cfg.Version)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, ".cppbind/cache", cfg.CacheDir)
	assert.Equal(t, "1.23", cfg.GoVersion)
	assert.False(t, cfg.Strict)
	assert.Empty(t, cfg.File())
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, sample)
	dir := filepath.Dir(path)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, path, cfg.File())
	assert.Equal(t, "gfx", cfg.Name)
	assert.Equal(t, "1.2.0", cfg.Version)
	assert.Equal(t, []string{"gfx::Widget::draw"}, cfg.NameBlacklist)
	assert.Equal(t, [][]string{
		{"cmake", "-S", "c_lib", "-B", "c_lib/build"},
		{"cmake", "--build", "c_lib/build"},
	}, cfg.PostCommands)
	assert.True(t, cfg.Strict)

	opts := cfg.WriterOptions(nil)
	assert.Equal(t, filepath.Join(dir, "model/gfx.json"), opts.Input)
	assert.Equal(t, filepath.Join(dir, "out/gfx"), opts.OutputDir)
	assert.Equal(t, []string{filepath.Join(dir, "include"), "/opt/gfx/include"}, opts.IncludeDirs)
	assert.Equal(t, "example.com/gfxgo", opts.ModulePath)
	assert.Equal(t, "", opts.Manifest)
	assert.True(t, opts.Strict)
}

func TestLoadEnvironmentOverride(t *testing.T) {
	path := writeConfig(t, sample)
	t.Setenv("CPPBIND_OUTPUT_DIR", "/tmp/elsewhere")
	t.Setenv("CPPBIND_STRICT", "false")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/elsewhere", cfg.OutputDir)
	assert.False(t, cfg.Strict)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Name:         "gfx-lib",
		Module:       "gfx go",
		OutputDir:    "out",
		PackageName:  "type",
		PostCommands: [][]string{{}},
	}

	err := cfg.Validate()
	require.Error(t, err)
	list, ok := err.(errors.ErrorList)
	require.True(t, ok)

	var keys []string
	for _, e := range list {
		assert.Equal(t, errors.ErrInvalidConfig, e.Code)
		keys = append(keys, e.Subject)
	}
	assert.Equal(t, []string{"name", "module", "input", "package", "post_commands[0]"}, keys)
}
