package builder

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bigbatmanorg/pasreporter/internal/manifest"
	"github.com/bigbatmanorg/pasreporter/internal/pin"
	"github.com/bigbatmanorg/pasreporter/pkg/logger"
)

// preferredBuildScripts are tried in order before falling back to any
// script whose name contains "build".
var preferredBuildScripts = []string{"build", "build-prod", "build:prod", "build:production"}

// Options control a full source build.
type Options struct {
	BaseDir      string // distribution home, hosts the virtualenv
	RepoDir      string // pinned source checkout
	VerifySHA    bool   // require checkout HEAD to match the version manifest
	SkipNPM      bool
	SkipPip      bool
	SkipPackages bool // skip the extra Python packages
}

type packageJSON struct {
	Scripts map[string]string `json:"scripts"`
}

// PickBuildScript selects the npm script to run from a package.json file.
func PickBuildScript(packageJSONPath string) (string, error) {
	raw, err := os.ReadFile(packageJSONPath)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", packageJSONPath, err)
	}
	var pkg packageJSON
	if err := json.Unmarshal(raw, &pkg); err != nil {
		return "", fmt.Errorf("parsing %s: %w", packageJSONPath, err)
	}

	for _, name := range preferredBuildScripts {
		if _, ok := pkg.Scripts[name]; ok {
			return name, nil
		}
	}

	var candidates []string
	for name := range pkg.Scripts {
		if strings.Contains(name, "build") {
			candidates = append(candidates, name)
		}
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("no build script found in %s", packageJSONPath)
	}
	sort.Strings(candidates)
	return candidates[0], nil
}

// Frontend installs node dependencies and runs the asset build under
// superset-frontend.
func Frontend(ctx context.Context, repoDir string) error {
	frontendDir := filepath.Join(repoDir, "superset-frontend")
	if _, err := os.Stat(filepath.Join(frontendDir, "package.json")); err != nil {
		return fmt.Errorf("frontend sources not found under %s: %w", frontendDir, err)
	}

	script, err := PickBuildScript(filepath.Join(frontendDir, "package.json"))
	if err != nil {
		return err
	}
	logger.Info("building frontend assets", logger.String("script", script))

	if err := Run(ctx, frontendDir, nil, "npm", "ci"); err != nil {
		return err
	}
	return Run(ctx, frontendDir, nil, "npm", "run", script)
}

// Backend installs the pinned source into the project virtualenv as an
// editable package. uv is preferred when present.
func Backend(ctx context.Context, baseDir, repoDir string) error {
	env := VenvEnv(baseDir)
	logger.Info("installing backend package", logger.String("repo", repoDir))
	if HasTool("uv") {
		return Run(ctx, repoDir, env, "uv", "pip", "install", "-e", ".")
	}
	return Run(ctx, repoDir, env, "python", "-m", "pip", "install", "-e", ".")
}

// extraPackages are installed into the virtualenv after the backend so
// the bundled DuckDB support has its SQLAlchemy driver available.
var extraPackages = []string{"duckdb>=0.10.0", "duckdb-engine>=0.10.0"}

// extrasInstall picks the frontend and argument list used to install the
// extra packages.
func extrasInstall() (string, []string) {
	if HasTool("uv") {
		return "uv", append([]string{"pip", "install"}, extraPackages...)
	}
	return "python", append([]string{"-m", "pip", "install"}, extraPackages...)
}

// ExtraPackages installs the additional Python packages into the project
// virtualenv.
func ExtraPackages(ctx context.Context, baseDir string) error {
	name, args := extrasInstall()
	logger.Info("installing extra packages", logger.String("packages", strings.Join(extraPackages, " ")))
	return Run(ctx, baseDir, VenvEnv(baseDir), name, args...)
}

// VerifyPinnedSHA compares the checkout HEAD against the recorded version
// manifest and fails when they diverge.
func VerifyPinnedSHA(baseDir, repoDir string) error {
	m, err := manifest.Load(baseDir)
	if err != nil {
		return err
	}
	if m == nil {
		return fmt.Errorf("no version manifest found under %s, run pin first", baseDir)
	}
	head, err := pin.HeadSHA(repoDir)
	if err != nil {
		return err
	}
	if head != m.SupersetSHA {
		return fmt.Errorf("checkout HEAD %s does not match pinned revision %s", head, m.SupersetSHA)
	}
	return nil
}

// Build runs the full source build: optional manifest verification, the
// frontend asset build, the backend install, and the extra packages.
func Build(ctx context.Context, opts Options) error {
	if opts.VerifySHA {
		if err := VerifyPinnedSHA(opts.BaseDir, opts.RepoDir); err != nil {
			return err
		}
	}
	if !opts.SkipNPM {
		if err := Frontend(ctx, opts.RepoDir); err != nil {
			return err
		}
	}
	if !opts.SkipPip {
		if err := Backend(ctx, opts.BaseDir, opts.RepoDir); err != nil {
			return err
		}
	}
	if !opts.SkipPackages {
		if err := ExtraPackages(ctx, opts.BaseDir); err != nil {
			return err
		}
	}
	logger.Info("build complete", logger.String("repo", opts.RepoDir))
	return nil
}

// Report summarizes the toolchain available for a build. Empty fields mean
// the tool was not found.
type Report struct {
	Python string `json:"python"`
	Node   string `json:"node"`
	NPM    string `json:"npm"`
	UV     string `json:"uv"`
	Git    string `json:"git"`
}

// Toolchain probes the build toolchain versions.
func Toolchain(ctx context.Context) Report {
	return Report{
		Python: ToolVersion(ctx, "python", "--version"),
		Node:   ToolVersion(ctx, "node", "--version"),
		NPM:    ToolVersion(ctx, "npm", "--version"),
		UV:     ToolVersion(ctx, "uv", "--version"),
		Git:    ToolVersion(ctx, "git", "--version"),
	}
}
