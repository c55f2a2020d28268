/*
Copyright © 2026 bigbatmanorg
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bigbatmanorg/pasreporter/internal/builder"
	"github.com/bigbatmanorg/pasreporter/internal/ops"
	"github.com/bigbatmanorg/pasreporter/pkg/config"
	"github.com/bigbatmanorg/pasreporter/pkg/exitcode"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build frontend assets and install the backend",
	Long: `Build runs the upstream asset build (npm ci plus the build script) and
installs the backend package into the project virtualenv. With --verify-sha
the checkout must match the revision recorded in the version manifest.`,
	RunE: runBuild,
}

func init() {
	if err := ops.RegisterCommand("build", ops.GroupWorkflow, buildCmd, "Build frontend assets and install the backend"); err != nil {
		panic(fmt.Sprintf("Failed to register build command: %v", err))
	}

	buildCmd.Flags().String("repo-dir", "", "Checkout directory (defaults to configured value, relative to home)")
	buildCmd.Flags().Bool("skip-npm", false, "Skip the frontend asset build")
	buildCmd.Flags().Bool("skip-pip", false, "Skip the backend install")
	buildCmd.Flags().Bool("skip-packages", false, "Skip installing the extra Python packages (duckdb drivers)")
	buildCmd.Flags().Bool("verify-sha", false, "Require the checkout to match the version manifest")
}

func runBuild(cmd *cobra.Command, _ []string) error {
	repoDir, _ := cmd.Flags().GetString("repo-dir")
	skipNPM, _ := cmd.Flags().GetBool("skip-npm")
	skipPip, _ := cmd.Flags().GetBool("skip-pip")
	skipPackages, _ := cmd.Flags().GetBool("skip-packages")
	verifySHA, _ := cmd.Flags().GetBool("verify-sha")

	settings, err := config.LoadSettings()
	if err != nil {
		return withExitCode(exitcode.ConfigError, err)
	}
	home, err := config.EnsureHome()
	if err != nil {
		return withExitCode(exitcode.FileSystemError, err)
	}
	if repoDir == "" {
		repoDir = settings.RepoDir
	}

	err = builder.Build(cmd.Context(), builder.Options{
		BaseDir:      home,
		RepoDir:      resolveRepoDir(home, repoDir),
		VerifySHA:    verifySHA,
		SkipNPM:      skipNPM,
		SkipPip:      skipPip,
		SkipPackages: skipPackages,
	})
	return withExitCode(exitcode.BuildError, err)
}
