/*
Copyright © 2026 bigbatmanorg
*/
package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bigbatmanorg/pasreporter/internal/detect"
	"github.com/bigbatmanorg/pasreporter/internal/ops"
	"github.com/bigbatmanorg/pasreporter/pkg/config"
	"github.com/bigbatmanorg/pasreporter/pkg/exitcode"
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Scan the checkout for required features and flags",
	Long: `Detect scans the pinned checkout for the code signals the distribution
depends on and lists the feature flags it found. The pin scan uses the
same checks to judge commit compatibility.`,
	RunE: runDetect,
}

func init() {
	if err := ops.RegisterCommand("detect", ops.GroupSupport, detectCmd, "Scan the checkout for required features"); err != nil {
		panic(fmt.Sprintf("Failed to register detect command: %v", err))
	}

	detectCmd.Flags().String("repo-dir", "", "Checkout directory (defaults to configured value, relative to home)")
	detectCmd.Flags().Bool("json", false, "Output results in JSON format")
}

func runDetect(cmd *cobra.Command, _ []string) error {
	repoDir, _ := cmd.Flags().GetString("repo-dir")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	settings, err := config.LoadSettings()
	if err != nil {
		return withExitCode(exitcode.ConfigError, err)
	}
	home, err := config.GetHome()
	if err != nil {
		return withExitCode(exitcode.ConfigError, err)
	}
	if repoDir == "" {
		repoDir = settings.RepoDir
	}

	report, err := detect.Scan(cmd.Context(), resolveRepoDir(home, repoDir))
	if err != nil {
		return withExitCode(exitcode.FileSystemError, err)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format JSON output: %v", err)
		}
		fmt.Fprintln(out, string(data))
	} else {
		report.WriteText(out)
	}

	if !report.Compatible() {
		return withExitCode(exitcode.GeneralError, fmt.Errorf("checkout is missing required signals (missing: %v)", report.Missing))
	}
	return nil
}
