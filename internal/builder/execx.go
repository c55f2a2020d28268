package builder

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/bigbatmanorg/pasreporter/pkg/logger"
)

// nodeTools are dispatched through the shell on Windows, where they are
// .cmd shims rather than executables.
var nodeTools = map[string]bool{
	"npm":  true,
	"npx":  true,
	"node": true,
}

func command(ctx context.Context, dir string, env []string, name string, args ...string) *exec.Cmd {
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" && nodeTools[name] {
		shellArgs := append([]string{"/C", name}, args...)
		cmd = exec.CommandContext(ctx, "cmd", shellArgs...)
	} else {
		cmd = exec.CommandContext(ctx, name, args...)
	}
	cmd.Dir = dir
	if env != nil {
		cmd.Env = env
	}
	return cmd
}

// Run executes a command with output streamed to the console.
func Run(ctx context.Context, dir string, env []string, name string, args ...string) error {
	logger.Info("+ " + name + " " + strings.Join(args, " "))
	cmd := command(ctx, dir, env, name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %s failed: %w", name, strings.Join(args, " "), err)
	}
	return nil
}

// output executes a command and returns its trimmed stdout.
func output(ctx context.Context, dir string, name string, args ...string) (string, error) {
	cmd := command(ctx, dir, nil, name, args...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &bytes.Buffer{}
	if err := cmd.Run(); err != nil {
		return "", err
	}
	return strings.TrimSpace(stdout.String()), nil
}

// ToolVersion returns the version string reported by a tool, with common
// prefixes ("Python ") stripped. Empty when the tool is missing or fails.
func ToolVersion(ctx context.Context, name string, args ...string) string {
	out, err := output(ctx, "", name, args...)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(out, "Python "))
}

// HasTool reports whether a tool is runnable.
func HasTool(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// VenvEnv returns the process environment with the project virtualenv
// activated when `.venv` exists under baseDir.
func VenvEnv(baseDir string) []string {
	env := os.Environ()
	venvRoot := filepath.Join(baseDir, ".venv")
	if _, err := os.Stat(venvRoot); err != nil {
		return env
	}

	binDir := filepath.Join(venvRoot, "bin")
	if runtime.GOOS == "windows" {
		binDir = filepath.Join(venvRoot, "Scripts")
	}

	out := make([]string, 0, len(env)+1)
	pathSet := false
	for _, kv := range env {
		if strings.HasPrefix(kv, "PATH=") {
			out = append(out, "PATH="+binDir+string(os.PathListSeparator)+strings.TrimPrefix(kv, "PATH="))
			pathSet = true
			continue
		}
		if strings.HasPrefix(kv, "VIRTUAL_ENV=") {
			continue
		}
		out = append(out, kv)
	}
	if !pathSet {
		out = append(out, "PATH="+binDir)
	}
	out = append(out, "VIRTUAL_ENV="+venvRoot)
	return out
}
