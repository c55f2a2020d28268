/*
Copyright © 2026 bigbatmanorg
*/
package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bigbatmanorg/pasreporter/internal/appcfg"
	"github.com/bigbatmanorg/pasreporter/internal/ops"
	"github.com/bigbatmanorg/pasreporter/internal/runner"
	"github.com/bigbatmanorg/pasreporter/pkg/config"
	"github.com/bigbatmanorg/pasreporter/pkg/exitcode"
	"github.com/bigbatmanorg/pasreporter/pkg/logger"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Initialize the database if needed and start the server",
	Long: `Run generates the runtime configuration, initializes the database unless
--no-init is given, and starts the wrapped application's server with the
distribution's branding.`,
	RunE: runRun,
}

func init() {
	if err := ops.RegisterCommand("run", ops.GroupRuntime, runCmd, "Start the server"); err != nil {
		panic(fmt.Sprintf("Failed to register run command: %v", err))
	}

	runCmd.Flags().StringP("host", "H", "", "Host to bind to (defaults to configured value)")
	runCmd.Flags().IntP("port", "p", 0, "Port to run the server on (defaults to configured value)")
	runCmd.Flags().BoolP("reload", "r", false, "Enable auto-reload for development")
	runCmd.Flags().BoolP("debug", "d", false, "Enable debug mode")
	runCmd.Flags().Bool("no-init", false, "Skip database initialization")
}

// staticAssetsDir locates the branding assets for a home directory. In
// portable mode they live next to the executable.
func staticAssetsDir(home string) string {
	return filepath.Join(runner.ResourceDir(home), "static")
}

func runRun(cmd *cobra.Command, _ []string) error {
	host, _ := cmd.Flags().GetString("host")
	port, _ := cmd.Flags().GetInt("port")
	reload, _ := cmd.Flags().GetBool("reload")
	debug, _ := cmd.Flags().GetBool("debug")
	noInit, _ := cmd.Flags().GetBool("no-init")

	settings, err := config.LoadSettings()
	if err != nil {
		return withExitCode(exitcode.ConfigError, err)
	}
	if host == "" {
		host = settings.Server.Host
	}
	if port == 0 {
		port = settings.Server.Port
	}

	home, err := config.EnsureRuntimeDirs()
	if err != nil {
		return withExitCode(exitcode.FileSystemError, err)
	}
	configPath, err := appcfg.Generate(home, staticAssetsDir(home), false)
	if err != nil {
		return withExitCode(exitcode.ConfigError, err)
	}

	ctx := cmd.Context()
	env := runner.Env(home, configPath, debug)

	if !noInit {
		logger.Info("initializing database")
		if err := runner.InitDatabase(ctx, env); err != nil {
			return withExitCode(exitcode.GeneralError, err)
		}
		runner.CreateAdmin(ctx, env, settings.Admin)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Server starting at http://%s:%d\n", host, port)
	fmt.Fprintf(out, "Config: %s\n", configPath)
	fmt.Fprintf(out, "Home:   %s\n", home)

	return withExitCode(exitcode.GeneralError, runner.Serve(ctx, env, host, port, reload, debug))
}
