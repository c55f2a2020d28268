/*
Copyright © 2026 bigbatmanorg
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bigbatmanorg/pasreporter/internal/appcfg"
	"github.com/bigbatmanorg/pasreporter/internal/ops"
	"github.com/bigbatmanorg/pasreporter/internal/runner"
	"github.com/bigbatmanorg/pasreporter/pkg/config"
	"github.com/bigbatmanorg/pasreporter/pkg/exitcode"
	"github.com/bigbatmanorg/pasreporter/pkg/logger"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the database and create the admin user",
	Long: `Init runs the database migrations and creates the bootstrap admin user
without starting the server. With --force the runtime configuration is
regenerated even when one already exists.`,
	RunE: runInit,
}

func init() {
	if err := ops.RegisterCommand("init", ops.GroupRuntime, initCmd, "Initialize the database and admin user"); err != nil {
		panic(fmt.Sprintf("Failed to register init command: %v", err))
	}

	initCmd.Flags().String("admin-username", "", "Admin username (defaults to configured value)")
	initCmd.Flags().String("admin-password", "", "Admin password (defaults to configured value)")
	initCmd.Flags().String("admin-email", "", "Admin email (defaults to configured value)")
	initCmd.Flags().BoolP("force", "f", false, "Regenerate the runtime configuration")
}

func runInit(cmd *cobra.Command, _ []string) error {
	username, _ := cmd.Flags().GetString("admin-username")
	password, _ := cmd.Flags().GetString("admin-password")
	email, _ := cmd.Flags().GetString("admin-email")
	force, _ := cmd.Flags().GetBool("force")

	settings, err := config.LoadSettings()
	if err != nil {
		return withExitCode(exitcode.ConfigError, err)
	}
	admin := settings.Admin
	if username != "" {
		admin.Username = username
	}
	if password != "" {
		admin.Password = password
	}
	if email != "" {
		admin.Email = email
	}

	home, err := config.EnsureRuntimeDirs()
	if err != nil {
		return withExitCode(exitcode.FileSystemError, err)
	}
	configPath, err := appcfg.Generate(home, staticAssetsDir(home), force)
	if err != nil {
		return withExitCode(exitcode.ConfigError, err)
	}

	ctx := cmd.Context()
	env := runner.Env(home, configPath, false)

	logger.Info("running database migrations")
	if err := runner.InitDatabase(ctx, env); err != nil {
		return withExitCode(exitcode.GeneralError, err)
	}
	logger.Info("creating admin user", logger.String("username", admin.Username))
	runner.CreateAdmin(ctx, env, admin)

	dbPath, _ := config.DatabasePath()
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Initialized successfully")
	fmt.Fprintf(out, "Config:   %s\n", configPath)
	fmt.Fprintf(out, "Database: %s\n", dbPath)
	return nil
}
