// Package appcfg generates the runtime configuration consumed by the
// wrapped application: the superset_config.py file, the Flask secret key,
// and the branding overrides that feed into it.
package appcfg

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bigbatmanorg/pasreporter/pkg/buildinfo"
	"github.com/bigbatmanorg/pasreporter/pkg/config"
	"github.com/bigbatmanorg/pasreporter/pkg/safeio"
)

const secretKeyFileName = ".secret_key"

// GenerateSecretKey returns a fresh 32-byte hex secret.
func GenerateSecretKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating secret key: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// ResolveSecretKey returns the Flask secret key for a home directory. The
// environment wins, then the persisted key file, then a freshly generated
// key which is persisted for later runs.
func ResolveSecretKey(homeDir string) (string, error) {
	if key := os.Getenv(config.SecretKeyEnvVar); key != "" {
		return key, nil
	}
	keyPath := filepath.Join(homeDir, secretKeyFileName)
	if raw, err := os.ReadFile(keyPath); err == nil {
		if key := strings.TrimSpace(string(raw)); key != "" {
			return key, nil
		}
	}
	key, err := GenerateSecretKey()
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(keyPath, []byte(key), 0o600); err != nil {
		return "", fmt.Errorf("persisting secret key: %w", err)
	}
	return key, nil
}

// forwardSlashes normalizes a path for embedding in a Python string literal.
func forwardSlashes(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

// Generate writes superset_config.py into homeDir. An existing file is left
// untouched unless force is set. The runtime directories the generated
// config points at are created alongside it.
func Generate(homeDir, staticDir string, force bool) (string, error) {
	configPath := filepath.Join(homeDir, "superset_config.py")
	if _, err := os.Stat(configPath); err == nil && !force {
		return configPath, nil
	}

	secretKey, err := ResolveSecretKey(homeDir)
	if err != nil {
		return "", err
	}
	brand, err := LoadBrand(homeDir)
	if err != nil {
		return "", err
	}

	content, err := renderConfig(configParams{
		Version:      buildinfo.BinaryVersion,
		AppName:      brand.AppName,
		AppIcon:      brand.AppIcon,
		Favicon:      brand.Favicon,
		SecretKey:    secretKey,
		HomeDir:      forwardSlashes(homeDir),
		BrandingDir:  forwardSlashes(staticDir),
		PortEnvVar:   config.PortEnvVar,
		StaticPrefix: StaticPrefix,
	})
	if err != nil {
		return "", err
	}

	if err := safeio.WriteFilePreservePerms(configPath, []byte(content)); err != nil {
		return "", fmt.Errorf("writing %s: %w", configPath, err)
	}

	for _, name := range config.RuntimeDirNames {
		if err := os.MkdirAll(filepath.Join(homeDir, name), 0o755); err != nil {
			return "", fmt.Errorf("creating runtime dir %s: %w", name, err)
		}
	}
	return configPath, nil
}
