package appcfg

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigbatmanorg/pasreporter/pkg/config"
)

func TestGenerateSecretKeyLength(t *testing.T) {
	key, err := GenerateSecretKey()
	require.NoError(t, err)
	assert.Len(t, key, 64)
}

func TestResolveSecretKeyEnvWins(t *testing.T) {
	t.Setenv(config.SecretKeyEnvVar, "from-env")
	key, err := ResolveSecretKey(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "from-env", key)
}

func TestResolveSecretKeyPersists(t *testing.T) {
	t.Setenv(config.SecretKeyEnvVar, "")
	home := t.TempDir()

	first, err := ResolveSecretKey(home)
	require.NoError(t, err)
	second, err := ResolveSecretKey(home)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	raw, err := os.ReadFile(filepath.Join(home, secretKeyFileName))
	require.NoError(t, err)
	assert.Equal(t, first, strings.TrimSpace(string(raw)))
}

func TestGenerateWritesConfigAndDirs(t *testing.T) {
	t.Setenv(config.SecretKeyEnvVar, "test-secret")
	home := t.TempDir()

	path, err := Generate(home, "/opt/pasreporter/static", false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "superset_config.py"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(raw)
	assert.Contains(t, content, `APP_NAME = "PASreporter"`)
	assert.Contains(t, content, `SECRET_KEY = "test-secret"`)
	assert.Contains(t, content, "sqlite:///"+strings.ReplaceAll(home, "\\", "/")+"/superset.db")
	assert.Contains(t, content, config.PortEnvVar)
	assert.Contains(t, content, StaticPrefix)

	for _, name := range config.RuntimeDirNames {
		info, err := os.Stat(filepath.Join(home, name))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestGenerateKeepsExistingWithoutForce(t *testing.T) {
	t.Setenv(config.SecretKeyEnvVar, "test-secret")
	home := t.TempDir()
	path := filepath.Join(home, "superset_config.py")
	require.NoError(t, os.WriteFile(path, []byte("# custom"), 0o644))

	got, err := Generate(home, "/static", false)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# custom", string(raw))
}

func TestGenerateForceOverwrites(t *testing.T) {
	t.Setenv(config.SecretKeyEnvVar, "test-secret")
	home := t.TempDir()
	path := filepath.Join(home, "superset_config.py")
	require.NoError(t, os.WriteFile(path, []byte("# custom"), 0o644))

	_, err := Generate(home, "/static", true)
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "SECRET_KEY")
}

func TestLoadBrandDefaults(t *testing.T) {
	brand, err := LoadBrand(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultBrand(), brand)
}

func TestLoadBrandOverrides(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(home, BrandFileName),
		[]byte("app_name: Acme Reports\napp_icon: /pasreporter_static/acme.png\n"), 0o644))

	brand, err := LoadBrand(home)
	require.NoError(t, err)
	assert.Equal(t, "Acme Reports", brand.AppName)
	assert.Equal(t, "/pasreporter_static/acme.png", brand.AppIcon)
	assert.Equal(t, DefaultBrand().Favicon, brand.Favicon)
}

func TestLoadBrandInvalidYAML(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(home, BrandFileName), []byte(":\n bad"), 0o644))

	_, err := LoadBrand(home)
	assert.Error(t, err)
}
