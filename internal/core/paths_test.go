package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathsHonorTarsHome(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	t.Setenv("TARS_HOME", dir)
	ResetPaths()
	t.Cleanup(ResetPaths)

	assert.Equal(t, filepath.Join(dir, "tars.log"), LogFile())
	assert.Equal(t, filepath.Join(dir, "journal.db"), JournalFile())
	assert.Equal(t, filepath.Join(dir, "config.yaml"), ConfigFile())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
