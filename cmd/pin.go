/*
Copyright © 2026 bigbatmanorg
*/
package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/bigbatmanorg/pasreporter/internal/builder"
	"github.com/bigbatmanorg/pasreporter/internal/detect"
	"github.com/bigbatmanorg/pasreporter/internal/manifest"
	"github.com/bigbatmanorg/pasreporter/internal/ops"
	"github.com/bigbatmanorg/pasreporter/internal/pin"
	"github.com/bigbatmanorg/pasreporter/pkg/buildinfo"
	"github.com/bigbatmanorg/pasreporter/pkg/config"
	"github.com/bigbatmanorg/pasreporter/pkg/exitcode"
	"github.com/bigbatmanorg/pasreporter/pkg/logger"
)

var pinCmd = &cobra.Command{
	Use:   "pin",
	Short: "Pin the upstream source to a known revision",
	Long: `Pin clones or updates the upstream source checkout and moves it to a
specific revision: an explicit commit, the newest release tag, or the tip
of a branch (optionally scanned backwards for a compatible commit). The
resolved revision is recorded in the version manifest.`,
	RunE: runPin,
}

func init() {
	if err := ops.RegisterCommand("pin", ops.GroupWorkflow, pinCmd, "Pin the upstream source revision"); err != nil {
		panic(fmt.Sprintf("Failed to register pin command: %v", err))
	}

	pinCmd.Flags().String("repo-url", "", "Upstream repository URL (defaults to configured value)")
	pinCmd.Flags().String("repo-dir", "", "Checkout directory (defaults to configured value, relative to home)")
	pinCmd.Flags().String("sha", "", "Pin to an explicit commit or tag")
	pinCmd.Flags().Bool("latest-tag", false, "Pin to the newest release tag")
	pinCmd.Flags().String("branch", "", "Pin to the tip of a branch")
	pinCmd.Flags().Int("scan-limit", 0, "Scan up to N commits back from the branch tip for a compatible one")
}

// resolveRepoDir anchors a relative checkout directory under the home dir.
func resolveRepoDir(home, repoDir string) string {
	if filepath.IsAbs(repoDir) {
		return repoDir
	}
	return filepath.Join(home, repoDir)
}

func runPin(cmd *cobra.Command, _ []string) error {
	repoURL, _ := cmd.Flags().GetString("repo-url")
	repoDir, _ := cmd.Flags().GetString("repo-dir")
	sha, _ := cmd.Flags().GetString("sha")
	latestTag, _ := cmd.Flags().GetBool("latest-tag")
	branch, _ := cmd.Flags().GetString("branch")
	scanLimit, _ := cmd.Flags().GetInt("scan-limit")

	settings, err := config.LoadSettings()
	if err != nil {
		return withExitCode(exitcode.ConfigError, err)
	}
	home, err := config.EnsureHome()
	if err != nil {
		return withExitCode(exitcode.FileSystemError, err)
	}
	if repoURL == "" {
		repoURL = settings.RepoURL
	}
	if repoDir == "" {
		repoDir = settings.RepoDir
	}
	repoDir = resolveRepoDir(home, repoDir)

	ctx := cmd.Context()
	resolution, err := pin.Resolve(ctx, pin.Options{
		RepoURL:   repoURL,
		RepoDir:   repoDir,
		SHA:       sha,
		LatestTag: latestTag,
		Branch:    branch,
		ScanLimit: scanLimit,
		Compat: func(dir string) error {
			if detect.IsCompatible(ctx, dir) {
				return nil
			}
			return fmt.Errorf("tree at %s is not compatible", dir)
		},
	})
	if err != nil {
		return withExitCode(exitcode.GitError, err)
	}

	tools := builder.Toolchain(ctx)
	m := manifest.Matrix{
		SupersetSHA:     resolution.SHA,
		SupersetVersion: resolution.WrappedVersion,
		SupersetBranch:  resolution.RefLabel,
		PythonVersion:   tools.Python,
		NodeVersion:     tools.Node,
		NpmVersion:      tools.NPM,
		AppVersion:      buildinfo.BinaryVersion,
	}
	m.Stamp(time.Now())
	if err := manifest.Write(home, m); err != nil {
		return withExitCode(exitcode.FileSystemError, err)
	}

	logger.Info("pinned upstream source",
		logger.String("sha", resolution.SHA),
		logger.String("ref", resolution.RefLabel),
		logger.String("version", resolution.WrappedVersion))

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Pinned %s\n", resolution.SHA)
	fmt.Fprintf(out, "  ref:     %s\n", resolution.RefLabel)
	fmt.Fprintf(out, "  version: %s\n", resolution.WrappedVersion)
	fmt.Fprintf(out, "  matrix:  %s\n", filepath.Join(home, manifest.JSONFileName))
	return nil
}
