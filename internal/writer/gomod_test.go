package writer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderGoMod(t *testing.T) {
	opts := &Options{Name: "gfx", Version: "0.1.0", ModulePath: "example.com/gfxgo", WriteDependenciesLocalPaths: true}
	manifest := BaseManifest(opts, []ManifestDependency{
		{Name: "core", Version: "1.2.0", ModulePath: "example.com/core", Path: "../core"},
		{Name: "text", Version: "v0.3.0", ModulePath: "example.com/text"},
	})

	out, err := RenderGoMod(manifest, "1.23", "v0.1.0")
	require.NoError(t, err)
	gomod := string(out)

	assert.Contains(t, gomod, "module example.com/gfxgo")
	assert.Contains(t, gomod, "go 1.23")
	assert.Contains(t, gomod, RuntimeModule+" v0.1.0")
	assert.Contains(t, gomod, "example.com/core v0.0.0")
	assert.Contains(t, gomod, "example.com/core => ../core")
	assert.Contains(t, gomod, "example.com/text v0.3.0")
	assert.NotContains(t, gomod, "example.com/text =>")
}

func TestRenderGoModRequiresModule(t *testing.T) {
	_, err := RenderGoMod(map[string]interface{}{}, "1.23", "v0.1.0")
	assert.Error(t, err)
}

func TestModuleVersion(t *testing.T) {
	assert.Equal(t, "v1.0.0", moduleVersion("1.0.0"))
	assert.Equal(t, "v2.1.0", moduleVersion("v2.1.0"))
	assert.Equal(t, "v0.0.0", moduleVersion(""))
}

func TestPackageNameFor(t *testing.T) {
	assert.Equal(t, "gfxgo", packageNameFor("example.com/gfxgo"))
	assert.Equal(t, "gfxgo", packageNameFor("example.com/gfx-go/v2"))
	assert.Equal(t, "qtcore", packageNameFor("example.com/QtCore"))
}
