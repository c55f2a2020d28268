/*
Copyright © 2026 bigbatmanorg
*/
package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bigbatmanorg/pasreporter/internal/builder"
	"github.com/bigbatmanorg/pasreporter/internal/manifest"
	"github.com/bigbatmanorg/pasreporter/internal/ops"
	"github.com/bigbatmanorg/pasreporter/internal/wheels"
	"github.com/bigbatmanorg/pasreporter/pkg/config"
	"github.com/bigbatmanorg/pasreporter/pkg/exitcode"
	"github.com/bigbatmanorg/pasreporter/pkg/logger"
)

var distCmd = &cobra.Command{
	Use:   "dist",
	Short: "Run the full distribution pipeline",
	Long: `Dist runs the full pipeline against a pinned checkout: toolchain
prerequisite checks, manifest verification, the source build, and wheel
packaging. Run pin first to record the revision.`,
	RunE: runDist,
}

func init() {
	if err := ops.RegisterCommand("dist", ops.GroupWorkflow, distCmd, "Run the full distribution pipeline"); err != nil {
		panic(fmt.Sprintf("Failed to register dist command: %v", err))
	}

	distCmd.Flags().String("repo-dir", "", "Checkout directory (defaults to configured value, relative to home)")
	distCmd.Flags().String("out-dir", "", "Wheel output directory (default <home>/wheels)")
	distCmd.Flags().Bool("skip-verify", false, "Skip manifest verification of the checkout")
	distCmd.Flags().Bool("skip-packages", false, "Skip installing the extra Python packages (duckdb drivers)")
	distCmd.Flags().Bool("sub-packages", false, "Also build nested wheel-producing packages")
}

// checkPrerequisites verifies the external toolchain needed by the pipeline.
func checkPrerequisites() error {
	var missing []string
	for _, tool := range []string{"git", "npm", "python"} {
		if !builder.HasTool(tool) {
			missing = append(missing, tool)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("required tools not found: %s", strings.Join(missing, ", "))
	}
	return nil
}

func runDist(cmd *cobra.Command, _ []string) error {
	repoDir, _ := cmd.Flags().GetString("repo-dir")
	outDir, _ := cmd.Flags().GetString("out-dir")
	skipVerify, _ := cmd.Flags().GetBool("skip-verify")
	skipPackages, _ := cmd.Flags().GetBool("skip-packages")
	subPackages, _ := cmd.Flags().GetBool("sub-packages")

	if err := checkPrerequisites(); err != nil {
		return withExitCode(exitcode.ToolNotFound, err)
	}

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
	repoDirAbs := resolveRepoDir(home, repoDir)
	if outDir == "" {
		outDir = resolveRepoDir(home, "wheels")
	}

	m, err := manifest.Load(home)
	if err != nil {
		return withExitCode(exitcode.ConfigError, err)
	}
	if m == nil {
		return withExitCode(exitcode.ConfigError,
			fmt.Errorf("no version manifest found under %s, run pin first", home))
	}
	logger.Info("building distribution",
		logger.String("sha", m.SupersetSHA),
		logger.String("version", m.SupersetVersion))

	ctx := cmd.Context()
	err = builder.Build(ctx, builder.Options{
		BaseDir:      home,
		RepoDir:      repoDirAbs,
		VerifySHA:    !skipVerify,
		SkipPackages: skipPackages,
	})
	if err != nil {
		return withExitCode(exitcode.BuildError, err)
	}

	result, err := wheels.Build(ctx, wheels.Options{
		BaseDir:     home,
		RepoDir:     repoDirAbs,
		OutDir:      outDir,
		SubPackages: subPackages,
	})
	if err != nil {
		return withExitCode(exitcode.BuildError, err)
	}

	printDistSummary(cmd.OutOrStdout(), m, result, outDir)
	return nil
}

func printDistSummary(out io.Writer, m *manifest.Matrix, result *wheels.Result, outDir string) {
	fmt.Fprintf(out, "Distribution built for %s (%s)\n", m.SupersetVersion, m.SupersetSHA)
	for _, pkg := range result.Packages {
		fmt.Fprintf(out, "  %s: %s\n", pkg.Name, strings.Join(pkg.Wheels, ", "))
	}
	fmt.Fprintf(out, "Wheels: %s\n", outDir)
	fmt.Fprintln(out, "Next step: package the wheels into a standalone executable with your platform tooling.")
}
