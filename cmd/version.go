/*
Copyright © 2026 bigbatmanorg
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/bigbatmanorg/pasreporter/internal/manifest"
	"github.com/bigbatmanorg/pasreporter/internal/ops"
	"github.com/bigbatmanorg/pasreporter/pkg/buildinfo"
	"github.com/bigbatmanorg/pasreporter/pkg/config"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Show the application version. With --extended the build environment and
the pinned upstream revision from the version manifest are included.`,
	RunE: runVersion,
}

func init() {
	if err := ops.RegisterCommand("version", ops.GroupSupport, versionCmd, "Show version information"); err != nil {
		panic(fmt.Sprintf("Failed to register version command: %v", err))
	}

	versionCmd.Flags().Bool("extended", false, "Show detailed build and pin information")
	versionCmd.Flags().Bool("json", false, "Output version information in JSON format")
}

type versionInfo struct {
	App        string `json:"app"`
	Version    string `json:"version"`
	Module     string `json:"module_version,omitempty"`
	GoVersion  string `json:"go_version,omitempty"`
	Platform   string `json:"platform,omitempty"`
	Arch       string `json:"arch,omitempty"`
	PinnedSHA  string `json:"pinned_sha,omitempty"`
	PinnedFrom string `json:"pinned_version,omitempty"`
}

func runVersion(cmd *cobra.Command, _ []string) error {
	extended, _ := cmd.Flags().GetBool("extended")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	info := versionInfo{App: buildinfo.AppName, Version: buildinfo.BinaryVersion}
	if extended {
		info.Module = buildinfo.ModuleVersion()
		info.GoVersion = runtime.Version()
		info.Platform = runtime.GOOS
		info.Arch = runtime.GOARCH
		if home, err := config.GetHome(); err == nil {
			if m, err := manifest.Load(home); err == nil && m != nil {
				info.PinnedSHA = m.SupersetSHA
				info.PinnedFrom = m.SupersetVersion
			}
		}
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format JSON output: %v", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	fmt.Fprintf(out, "%s %s\n", info.App, info.Version)
	if extended {
		fmt.Fprintf(out, "  module:   %s\n", info.Module)
		fmt.Fprintf(out, "  go:       %s\n", info.GoVersion)
		fmt.Fprintf(out, "  platform: %s/%s\n", info.Platform, info.Arch)
		if info.PinnedSHA != "" {
			fmt.Fprintf(out, "  pinned:   %s (%s)\n", info.PinnedSHA, info.PinnedFrom)
		}
	}
	return nil
}
