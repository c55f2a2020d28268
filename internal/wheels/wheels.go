package wheels

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pelletier/go-toml/v2"

	"github.com/bigbatmanorg/pasreporter/internal/builder"
	"github.com/bigbatmanorg/pasreporter/pkg/logger"
)

// subPackageDirs are additional wheel-producing packages that live inside
// the wrapped source tree, relative to the repository root.
var subPackageDirs = []string{
	"superset-core",
	"superset-extensions-cli",
}

// Options control a wheel build.
type Options struct {
	BaseDir     string // distribution home, hosts the virtualenv
	RepoDir     string // pinned source checkout
	OutDir      string // destination for built wheels
	SubPackages bool   // also build the sub-packages under the repo
}

// Result reports the wheels produced by one build run.
type Result struct {
	Packages []Package `json:"packages"`
}

// Package names one built project and the wheel files it produced.
type Package struct {
	Name   string   `json:"name"`
	Dir    string   `json:"dir"`
	Wheels []string `json:"wheels"`
}

type pyprojectFile struct {
	Project struct {
		Name string `toml:"name"`
	} `toml:"project"`
	Tool struct {
		Poetry struct {
			Name string `toml:"name"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

// ProjectName reads the package name from a pyproject.toml, or the
// directory basename when no name is declared.
func ProjectName(dir string) string {
	raw, err := os.ReadFile(filepath.Join(dir, "pyproject.toml"))
	if err != nil {
		return filepath.Base(dir)
	}
	var pp pyprojectFile
	if err := toml.Unmarshal(raw, &pp); err != nil {
		return filepath.Base(dir)
	}
	if pp.Project.Name != "" {
		return pp.Project.Name
	}
	if pp.Tool.Poetry.Name != "" {
		return pp.Tool.Poetry.Name
	}
	return filepath.Base(dir)
}

// listWheels returns the wheel files currently present under dir.
func listWheels(dir string) (map[string]bool, error) {
	matches, err := doublestar.FilepathGlob(filepath.Join(dir, "*.whl"))
	if err != nil {
		return nil, err
	}
	found := make(map[string]bool, len(matches))
	for _, m := range matches {
		found[filepath.Base(m)] = true
	}
	return found, nil
}

// newWheels returns the wheel names in after that were absent in before.
func newWheels(before, after map[string]bool) []string {
	var fresh []string
	for name := range after {
		if !before[name] {
			fresh = append(fresh, name)
		}
	}
	sort.Strings(fresh)
	return fresh
}

func hasBuildMetadata(dir string) bool {
	for _, name := range []string{"pyproject.toml", "setup.py"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// cleanResidue removes stale build artifacts from the package dir so a
// previous run cannot leak into the wheel.
func cleanResidue(dir string) {
	for _, pattern := range []string{"build", "dist", "*.egg-info"} {
		matches, err := doublestar.FilepathGlob(filepath.Join(dir, pattern))
		if err != nil {
			continue
		}
		for _, m := range matches {
			if err := os.RemoveAll(m); err != nil {
				logger.Warn("could not remove build residue", logger.String("path", m))
			}
		}
	}
}

// wheelsForProject lists wheels in outDir belonging to the named project.
// Wheel filenames normalize dashes in the project name to underscores.
func wheelsForProject(outDir, name string) []string {
	normalized := strings.ReplaceAll(name, "-", "_")
	matches, err := doublestar.FilepathGlob(filepath.Join(outDir, normalized+"-*.whl"))
	if err != nil {
		return nil
	}
	found := make([]string, 0, len(matches))
	for _, m := range matches {
		found = append(found, filepath.Base(m))
	}
	sort.Strings(found)
	return found
}

// buildOne builds a single project into outDir and returns the wheels the
// run produced. When the build yields no new files, for instance a rebuild
// of the same version, the existing wheels for the project are reused.
func buildOne(ctx context.Context, env []string, name, projectDir, outDir string) ([]string, error) {
	cleanResidue(projectDir)

	before, err := listWheels(outDir)
	if err != nil {
		return nil, err
	}

	if builder.HasTool("uv") {
		err = builder.Run(ctx, projectDir, env, "uv", "build", "--wheel", "--out-dir", outDir)
	} else {
		err = builder.Run(ctx, projectDir, env, "python", "-m", "build", "--wheel", "--outdir", outDir)
	}
	if err != nil {
		return nil, err
	}

	after, err := listWheels(outDir)
	if err != nil {
		return nil, err
	}
	fresh := newWheels(before, after)
	if len(fresh) == 0 {
		if existing := wheelsForProject(outDir, name); len(existing) > 0 {
			logger.Warn("build produced no new wheels, reusing existing ones",
				logger.String("package", name))
			return existing, nil
		}
		return nil, fmt.Errorf("build of %s produced no new wheels in %s", projectDir, outDir)
	}
	return fresh, nil
}

// Build produces wheels for the wrapped source and, when requested, its
// sub-packages.
func Build(ctx context.Context, opts Options) (*Result, error) {
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating wheel output dir: %w", err)
	}
	env := builder.VenvEnv(opts.BaseDir)

	dirs := []string{opts.RepoDir}
	if opts.SubPackages {
		for _, sub := range subPackageDirs {
			dirs = append(dirs, filepath.Join(opts.RepoDir, sub))
		}
	}

	result := &Result{}
	for _, dir := range dirs {
		if !hasBuildMetadata(dir) {
			logger.Warn("skipping package without pyproject.toml or setup.py",
				logger.String("dir", dir))
			continue
		}
		name := ProjectName(dir)
		logger.Info("building wheel", logger.String("package", name))
		fresh, err := buildOne(ctx, env, name, dir, opts.OutDir)
		if err != nil {
			return nil, err
		}
		result.Packages = append(result.Packages, Package{Name: name, Dir: dir, Wheels: fresh})
	}
	return result, nil
}
