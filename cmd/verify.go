/*
Copyright © 2026 bigbatmanorg
*/
package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bigbatmanorg/pasreporter/internal/ops"
	"github.com/bigbatmanorg/pasreporter/internal/verify"
	"github.com/bigbatmanorg/pasreporter/pkg/config"
	"github.com/bigbatmanorg/pasreporter/pkg/exitcode"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Run smoke checks against a running server",
	Long: `Verify probes a running instance: the health and login pages, the
branding assets, the ping endpoint, and a handful of authenticated API
calls. It exits non-zero when a required check fails.`,
	RunE: runVerify,
}

func init() {
	if err := ops.RegisterCommand("verify", ops.GroupRuntime, verifyCmd, "Run smoke checks against a running server"); err != nil {
		panic(fmt.Sprintf("Failed to register verify command: %v", err))
	}

	verifyCmd.Flags().String("base-url", "", "Base URL of the server (default http://127.0.0.1:8088)")
	verifyCmd.Flags().String("username", "", "Admin username (defaults to configured value)")
	verifyCmd.Flags().String("password", "", "Admin password (defaults to configured value)")
	verifyCmd.Flags().Bool("skip-auth", false, "Skip authenticated endpoint checks")
	verifyCmd.Flags().Bool("json", false, "Output results in JSON format")
}

func runVerify(cmd *cobra.Command, _ []string) error {
	baseURL, _ := cmd.Flags().GetString("base-url")
	username, _ := cmd.Flags().GetString("username")
	password, _ := cmd.Flags().GetString("password")
	skipAuth, _ := cmd.Flags().GetBool("skip-auth")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	settings, err := config.LoadSettings()
	if err != nil {
		return withExitCode(exitcode.ConfigError, err)
	}
	if username == "" {
		username = settings.Admin.Username
	}
	if password == "" {
		password = settings.Admin.Password
	}

	result, err := verify.Run(cmd.Context(), verify.Options{
		BaseURL:  baseURL,
		Username: username,
		Password: password,
		SkipAuth: skipAuth,
	})
	if err != nil {
		return withExitCode(exitcode.NetworkError, err)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format JSON output: %v", err)
		}
		fmt.Fprintln(out, string(data))
	} else {
		fmt.Fprintf(out, "Smoke checks against %s\n", result.BaseURL)
		for _, check := range result.Checks {
			mark := "ok"
			if !check.Passed {
				mark = "FAIL"
				if check.Optional {
					mark = "skip"
				}
			}
			if check.Detail != "" {
				fmt.Fprintf(out, "  [%s] %s: %s\n", mark, check.Name, check.Detail)
			} else {
				fmt.Fprintf(out, "  [%s] %s\n", mark, check.Name)
			}
		}
	}

	if !result.Passed {
		return withExitCode(exitcode.VerifyError, errors.New("some smoke checks failed"))
	}
	if !jsonOutput {
		fmt.Fprintln(out, "All smoke checks passed.")
	}
	return nil
}
