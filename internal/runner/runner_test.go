package runner

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envValue(env []string, key string) (string, bool) {
	prefix := key + "="
	for _, kv := range env {
		if strings.HasPrefix(kv, prefix) {
			return strings.TrimPrefix(kv, prefix), true
		}
	}
	return "", false
}

func TestEnvSetsApplicationVariables(t *testing.T) {
	home := t.TempDir()
	configPath := filepath.Join(home, "superset_config.py")

	env := Env(home, configPath, false)

	v, ok := envValue(env, "SUPERSET_HOME")
	require.True(t, ok)
	assert.Equal(t, home, v)

	v, ok = envValue(env, "SUPERSET_CONFIG_PATH")
	require.True(t, ok)
	assert.Equal(t, configPath, v)

	v, ok = envValue(env, "FLASK_ENV")
	require.True(t, ok)
	assert.Equal(t, "production", v)
}

func TestEnvDebugMode(t *testing.T) {
	env := Env(t.TempDir(), "config.py", true)

	v, _ := envValue(env, "FLASK_ENV")
	assert.Equal(t, "development", v)
	v, _ = envValue(env, "FLASK_DEBUG")
	assert.Equal(t, "1", v)
}

func TestEnvKeepsExistingFlaskEnv(t *testing.T) {
	t.Setenv("FLASK_ENV", "staging")
	env := Env(t.TempDir(), "config.py", false)

	v, _ := envValue(env, "FLASK_ENV")
	assert.Equal(t, "staging", v)
}

func TestEnvNoDuplicateKeys(t *testing.T) {
	t.Setenv("SUPERSET_HOME", "/stale")
	home := t.TempDir()
	env := Env(home, "config.py", false)

	count := 0
	for _, kv := range env {
		if strings.HasPrefix(kv, "SUPERSET_HOME=") {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestEnvPortablePrefersBundledInterpreter(t *testing.T) {
	t.Setenv(PortableEnvVar, "1")
	exe, err := os.Executable()
	require.NoError(t, err)

	env := Env(t.TempDir(), "config.py", false)
	path, ok := envValue(env, "PATH")
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(path, filepath.Join(filepath.Dir(exe), "python")),
		"PATH should start with the bundled runtime dir, got %s", path)
}

func TestEnvNormalModeKeepsVenvFirst(t *testing.T) {
	t.Setenv(PortableEnvVar, "")
	if IsPortable() {
		t.Skip("portable marker present next to test binary")
	}
	exe, err := os.Executable()
	require.NoError(t, err)

	env := Env(t.TempDir(), "config.py", false)
	path, ok := envValue(env, "PATH")
	require.True(t, ok)
	assert.False(t, strings.HasPrefix(path, filepath.Join(filepath.Dir(exe), "python")))
}

func TestIsPortableFromEnv(t *testing.T) {
	t.Setenv(PortableEnvVar, "1")
	assert.True(t, IsPortable())
}

func TestResourceDirDefaultsToHome(t *testing.T) {
	t.Setenv(PortableEnvVar, "")
	home := t.TempDir()
	if IsPortable() {
		t.Skip("portable marker present next to test binary")
	}
	assert.Equal(t, home, ResourceDir(home))
}

func TestResourceDirPortable(t *testing.T) {
	t.Setenv(PortableEnvVar, "1")
	exe, err := os.Executable()
	require.NoError(t, err)
	assert.Equal(t, filepath.Dir(exe), ResourceDir(t.TempDir()))
}

func TestDuckDBURI(t *testing.T) {
	assert.Equal(t, "duckdb:///data/sales.duckdb", DuckDBURI("data/sales.duckdb", false))
	assert.Equal(t, "duckdb:///data/sales.duckdb?read_only=true", DuckDBURI("data/sales.duckdb", true))
	assert.Equal(t, "duckdb:///C:/data/sales.duckdb", DuckDBURI(`C:\data\sales.duckdb`, false))
}
