package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Environment variables honored by pasreporter.
const (
	HomeEnvVar      = "PASREPORTER_HOME"
	SecretKeyEnvVar = "SUPERSET_SECRET_KEY"
	PortEnvVar      = "PASREPORTER_PORT"
)

// Settings holds user-tunable configuration for pasreporter.
type Settings struct {
	RepoURL string         `mapstructure:"repo_url"`
	RepoDir string         `mapstructure:"repo_dir"`
	Server  ServerSettings `mapstructure:"server"`
	Admin   AdminSettings  `mapstructure:"admin"`
}

// ServerSettings configures where the wrapped application listens.
type ServerSettings struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// AdminSettings is the bootstrap admin identity for the wrapped application.
type AdminSettings struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Email    string `mapstructure:"email"`
}

var defaultSettings = Settings{
	RepoURL: "https://github.com/apache/superset.git",
	RepoDir: "superset-src",
	Server: ServerSettings{
		Host: "127.0.0.1",
		Port: 8088,
	},
	Admin: AdminSettings{
		Username: "admin",
		Password: "admin",
		Email:    "admin@pasreporter.local",
	},
}

// LoadSettings reads settings from config.yaml in the pasreporter home,
// falling back to defaults when the file is absent. Admin credentials may be
// overridden via SUPERSET_ADMIN_* environment variables.
func LoadSettings() (*Settings, error) {
	v := viper.New()

	v.SetDefault("repo_url", defaultSettings.RepoURL)
	v.SetDefault("repo_dir", defaultSettings.RepoDir)
	v.SetDefault("server.host", defaultSettings.Server.Host)
	v.SetDefault("server.port", defaultSettings.Server.Port)
	v.SetDefault("admin.username", defaultSettings.Admin.Username)
	v.SetDefault("admin.password", defaultSettings.Admin.Password)
	v.SetDefault("admin.email", defaultSettings.Admin.Email)

	home, err := GetHome()
	if err == nil {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(home)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	if u := os.Getenv("SUPERSET_ADMIN_USERNAME"); u != "" {
		v.Set("admin.username", u)
	}
	if p := os.Getenv("SUPERSET_ADMIN_PASSWORD"); p != "" {
		v.Set("admin.password", p)
	}
	if e := os.Getenv("SUPERSET_ADMIN_EMAIL"); e != "" {
		v.Set("admin.email", e)
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	return &settings, nil
}

// GetHome returns the pasreporter home directory
func GetHome() (string, error) {
	if home := os.Getenv(HomeEnvVar); home != "" {
		return home, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %v", err)
	}
	return filepath.Join(homeDir, ".pasreporter"), nil
}

// EnsureHome creates the pasreporter home directory if it doesn't exist
func EnsureHome() (string, error) {
	homeDir, err := GetHome()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(homeDir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create pasreporter home directory: %v", err)
	}
	return homeDir, nil
}

// RuntimeDirNames are the subdirectories the wrapped application expects
// under the pasreporter home.
var RuntimeDirNames = []string{
	"cache",
	"data_cache",
	"filter_cache",
	"explore_cache",
	"uploads",
	"logs",
}

// EnsureRuntimeDirs creates the cache, upload and log directories the
// generated configuration points at. Returns the home directory.
func EnsureRuntimeDirs() (string, error) {
	homeDir, err := EnsureHome()
	if err != nil {
		return "", err
	}
	for _, name := range RuntimeDirNames {
		if err := os.MkdirAll(filepath.Join(homeDir, name), 0o750); err != nil {
			return "", fmt.Errorf("failed to create %s directory: %v", name, err)
		}
	}
	return homeDir, nil
}

// GetServersDir returns the directory where branding server metadata lives.
func GetServersDir() (string, error) {
	homeDir, err := EnsureHome()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(homeDir, "servers")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create servers directory: %v", err)
	}
	return dir, nil
}

// ConfigFilePath returns the path of the generated wrapped-framework config.
func ConfigFilePath() (string, error) {
	homeDir, err := GetHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, "superset_config.py"), nil
}

// DatabasePath returns the path of the wrapped framework's SQLite database.
func DatabasePath() (string, error) {
	homeDir, err := GetHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, "superset.db"), nil
}
