package writer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/cppbind/internal/errors"
)

func TestRunCommands(t *testing.T) {
	dir := t.TempDir()
	err := RunCommands(context.Background(), dir, [][]string{
		{"sh", "-c", "echo one > first.txt"},
		{"sh", "-c", "echo two > second.txt"},
	}, nil)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "first.txt"))
	assert.FileExists(t, filepath.Join(dir, "second.txt"))
}

func TestRunCommandsStopsAtFirstFailure(t *testing.T) {
	dir := t.TempDir()
	err := RunCommands(context.Background(), dir, [][]string{
		{"sh", "-c", "echo broken build; exit 3"},
		{"sh", "-c", "touch after.txt"},
	}, nil)
	require.Error(t, err)

	bindErr, ok := err.(*errors.BindError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCommandFailed, bindErr.Code)
	assert.Equal(t, "sh -c echo broken build; exit 3", bindErr.Subject)
	assert.Contains(t, bindErr.Output, "broken build")

	_, statErr := os.Stat(filepath.Join(dir, "after.txt"))
	assert.True(t, os.IsNotExist(statErr))
}
