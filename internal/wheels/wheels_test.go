package wheels

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectNameFromProjectTable(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pyproject.toml"),
		[]byte("[project]\nname = \"apache-superset\"\nversion = \"4.0.0\"\n"), 0o644))
	assert.Equal(t, "apache-superset", ProjectName(dir))
}

func TestProjectNameFromPoetryTable(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pyproject.toml"),
		[]byte("[tool.poetry]\nname = \"superset-core\"\n"), 0o644))
	assert.Equal(t, "superset-core", ProjectName(dir))
}

func TestProjectNameFallsBackToDirname(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "superset-extensions-cli")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	assert.Equal(t, "superset-extensions-cli", ProjectName(dir))
}

func TestHasBuildMetadata(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, hasBuildMetadata(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "setup.py"), []byte("from setuptools import setup\n"), 0o644))
	assert.True(t, hasBuildMetadata(dir))
}

func TestNewWheelsSetDifference(t *testing.T) {
	before := map[string]bool{"old-1.0-py3-none-any.whl": true}
	after := map[string]bool{
		"old-1.0-py3-none-any.whl":   true,
		"fresh-2.0-py3-none-any.whl": true,
		"extra-2.0-py3-none-any.whl": true,
	}
	assert.Equal(t, []string{"extra-2.0-py3-none-any.whl", "fresh-2.0-py3-none-any.whl"}, newWheels(before, after))
}

func TestCleanResidue(t *testing.T) {
	dir := t.TempDir()
	for _, sub := range []string{"build", "dist", "apache_superset.egg-info"} {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, sub), 0o755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pyproject.toml"), []byte("[project]\nname = \"x\"\n"), 0o644))

	cleanResidue(dir)

	for _, sub := range []string{"build", "dist", "apache_superset.egg-info"} {
		_, err := os.Stat(filepath.Join(dir, sub))
		assert.True(t, os.IsNotExist(err), "%s should be removed", sub)
	}
	_, err := os.Stat(filepath.Join(dir, "pyproject.toml"))
	assert.NoError(t, err)
}

func TestWheelsForProjectMatchesNormalizedName(t *testing.T) {
	outDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(outDir, "apache_superset-4.0.0-py3-none-any.whl"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(outDir, "other_pkg-1.0-py3-none-any.whl"), []byte("x"), 0o644))

	found := wheelsForProject(outDir, "apache-superset")
	assert.Equal(t, []string{"apache_superset-4.0.0-py3-none-any.whl"}, found)

	assert.Empty(t, wheelsForProject(outDir, "superset-core"))
}

func TestListWheelsIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pkg-1.0-py3-none-any.whl"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pkg-1.0.tar.gz"), []byte("x"), 0o644))

	found, err := listWheels(dir)
	require.NoError(t, err)
	assert.Len(t, found, 1)
	assert.True(t, found["pkg-1.0-py3-none-any.whl"])
}
