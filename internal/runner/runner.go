// Package runner launches the wrapped application: database migrations,
// admin bootstrap, and the development server, all through the python
// interpreter in the project virtualenv.
package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/bigbatmanorg/pasreporter/internal/builder"
	"github.com/bigbatmanorg/pasreporter/pkg/config"
	"github.com/bigbatmanorg/pasreporter/pkg/logger"
)

// PortableEnvVar switches resource resolution to the executable's
// directory, for unpacked standalone distributions.
const PortableEnvVar = "PASREPORTER_PORTABLE"

const portableMarker = "portable"

// cliModule is the wrapped application's CLI entry module.
const cliModule = "superset.cli.main"

// IsPortable reports whether the process runs as an unpacked standalone
// distribution. Either the environment variable or a marker file next to
// the executable enables it.
func IsPortable() bool {
	if os.Getenv(PortableEnvVar) != "" {
		return true
	}
	exe, err := os.Executable()
	if err != nil {
		return false
	}
	_, err = os.Stat(filepath.Join(filepath.Dir(exe), portableMarker))
	return err == nil
}

// ResourceDir returns the directory bundled resources are resolved
// against. In portable mode that is the executable's directory, otherwise
// the home directory.
func ResourceDir(homeDir string) string {
	if !IsPortable() {
		return homeDir
	}
	exe, err := os.Executable()
	if err != nil {
		return homeDir
	}
	return filepath.Dir(exe)
}

// portablePythonDir returns the bundled interpreter directory of an
// unpacked standalone distribution, or "" outside portable mode. Windows
// bundles carry python.exe at the runtime root, other platforms under bin.
func portablePythonDir() string {
	if !IsPortable() {
		return ""
	}
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	dir := filepath.Join(filepath.Dir(exe), "python")
	if runtime.GOOS == "windows" {
		return dir
	}
	return filepath.Join(dir, "bin")
}

// Env builds the process environment for wrapped-application commands:
// the virtualenv under homeDir activated, the bundled interpreter first on
// PATH in portable mode, SUPERSET_HOME and SUPERSET_CONFIG_PATH pointing
// at the home, and FLASK_ENV defaulted to production.
func Env(homeDir, configPath string, debug bool) []string {
	env := builder.VenvEnv(homeDir)
	if dir := portablePythonDir(); dir != "" {
		env = prependPath(env, dir)
	}
	env = setEnv(env, "SUPERSET_HOME", homeDir)
	env = setEnv(env, "SUPERSET_CONFIG_PATH", configPath)
	if debug {
		env = setEnv(env, "FLASK_ENV", "development")
		env = setEnv(env, "FLASK_DEBUG", "1")
	} else if !hasEnv(env, "FLASK_ENV") {
		env = setEnv(env, "FLASK_ENV", "production")
	}
	return env
}

func hasEnv(env []string, key string) bool {
	prefix := key + "="
	for _, kv := range env {
		if strings.HasPrefix(kv, prefix) {
			return true
		}
	}
	return false
}

func prependPath(env []string, dir string) []string {
	const prefix = "PATH="
	for i, kv := range env {
		if strings.HasPrefix(kv, prefix) {
			env[i] = prefix + dir + string(os.PathListSeparator) + strings.TrimPrefix(kv, prefix)
			return env
		}
	}
	return append(env, prefix+dir)
}

func setEnv(env []string, key, value string) []string {
	prefix := key + "="
	for i, kv := range env {
		if strings.HasPrefix(kv, prefix) {
			env[i] = prefix + value
			return env
		}
	}
	return append(env, prefix+value)
}

// Command runs one wrapped-application CLI command.
func Command(ctx context.Context, env []string, args ...string) error {
	full := append([]string{"-m", cliModule}, args...)
	return builder.Run(ctx, "", env, "python", full...)
}

// InitDatabase runs the schema migrations and the post-migration
// initialization.
func InitDatabase(ctx context.Context, env []string) error {
	if err := Command(ctx, env, "db", "upgrade"); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}
	if err := Command(ctx, env, "init"); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	return nil
}

// CreateAdmin creates the bootstrap admin user. An existing user makes the
// underlying command fail, which is tolerated.
func CreateAdmin(ctx context.Context, env []string, admin config.AdminSettings) {
	err := Command(ctx, env,
		"fab", "create-admin",
		"--username", admin.Username,
		"--firstname", "PASreporter",
		"--lastname", "Admin",
		"--email", admin.Email,
		"--password", admin.Password,
	)
	if err != nil {
		logger.Warn("admin user may already exist or creation failed, continuing",
			logger.String("username", admin.Username))
	}
}

// Serve starts the wrapped application's server and blocks until it exits.
func Serve(ctx context.Context, env []string, host string, port int, reload, debug bool) error {
	args := []string{"run", "-h", host, "-p", strconv.Itoa(port), "--with-threads"}
	if reload {
		args = append(args, "--reload")
	}
	if debug {
		args = append(args, "--debugger")
	}
	return Command(ctx, env, args...)
}

// DuckDBURI builds the SQLAlchemy connection URI for a DuckDB file.
func DuckDBURI(path string, readOnly bool) string {
	uri := "duckdb:///" + strings.ReplaceAll(path, "\\", "/")
	if readOnly {
		uri += "?read_only=true"
	}
	return uri
}
