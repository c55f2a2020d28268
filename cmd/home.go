/*
Copyright © 2026 bigbatmanorg
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bigbatmanorg/pasreporter/internal/ops"
	"github.com/bigbatmanorg/pasreporter/pkg/config"
	"github.com/bigbatmanorg/pasreporter/pkg/exitcode"
)

var homeCmd = &cobra.Command{
	Use:   "home",
	Short: "Show or create the pasreporter home directory",
	Long: `Home prints the resolved home directory and the runtime paths inside
it. With --create the directory tree is created.`,
	RunE: runHome,
}

func init() {
	if err := ops.RegisterCommand("home", ops.GroupSupport, homeCmd, "Show the home directory"); err != nil {
		panic(fmt.Sprintf("Failed to register home command: %v", err))
	}

	homeCmd.Flags().Bool("create", false, "Create the home directory tree")
}

func runHome(cmd *cobra.Command, _ []string) error {
	create, _ := cmd.Flags().GetBool("create")

	var home string
	var err error
	if create {
		home, err = config.EnsureRuntimeDirs()
	} else {
		home, err = config.GetHome()
	}
	if err != nil {
		return withExitCode(exitcode.FileSystemError, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, home)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, name := range config.RuntimeDirNames {
		path := filepath.Join(home, name)
		fmt.Fprintf(tw, "  %s\t%s\n", path, pathStatus(path, "missing"))
	}
	configPath, _ := config.ConfigFilePath()
	fmt.Fprintf(tw, "  %s\t%s\n", configPath, pathStatus(configPath, "missing"))
	tw.Flush()

	if src := os.Getenv(config.HomeEnvVar); src != "" {
		fmt.Fprintf(out, "(from %s)\n", config.HomeEnvVar)
	}
	return nil
}
