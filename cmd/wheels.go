/*
Copyright © 2026 bigbatmanorg
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bigbatmanorg/pasreporter/internal/ops"
	"github.com/bigbatmanorg/pasreporter/internal/wheels"
	"github.com/bigbatmanorg/pasreporter/pkg/config"
	"github.com/bigbatmanorg/pasreporter/pkg/exitcode"
)

var wheelsCmd = &cobra.Command{
	Use:   "wheels",
	Short: "Package the pinned source into wheel files",
	Long: `Wheels builds distributable wheel files from the pinned checkout. With
--sub-packages the wheel-producing packages nested inside the source tree
are built as well.`,
	RunE: runWheels,
}

func init() {
	if err := ops.RegisterCommand("wheels", ops.GroupWorkflow, wheelsCmd, "Package the pinned source into wheels"); err != nil {
		panic(fmt.Sprintf("Failed to register wheels command: %v", err))
	}

	wheelsCmd.Flags().String("repo-dir", "", "Checkout directory (defaults to configured value, relative to home)")
	wheelsCmd.Flags().String("out-dir", "", "Wheel output directory (default <home>/wheels)")
	wheelsCmd.Flags().Bool("sub-packages", false, "Also build nested wheel-producing packages")
	wheelsCmd.Flags().Bool("json", false, "Output results in JSON format")
}

func runWheels(cmd *cobra.Command, _ []string) error {
	repoDir, _ := cmd.Flags().GetString("repo-dir")
	outDir, _ := cmd.Flags().GetString("out-dir")
	subPackages, _ := cmd.Flags().GetBool("sub-packages")
	jsonOutput, _ := cmd.Flags().GetBool("json")

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
	if outDir == "" {
		outDir = resolveRepoDir(home, "wheels")
	}

	result, err := wheels.Build(cmd.Context(), wheels.Options{
		BaseDir:     home,
		RepoDir:     resolveRepoDir(home, repoDir),
		OutDir:      outDir,
		SubPackages: subPackages,
	})
	if err != nil {
		return withExitCode(exitcode.BuildError, err)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format JSON output: %v", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	for _, pkg := range result.Packages {
		fmt.Fprintf(out, "%s: %s\n", pkg.Name, strings.Join(pkg.Wheels, ", "))
	}
	fmt.Fprintf(out, "Wheels written to %s\n", outDir)
	return nil
}
