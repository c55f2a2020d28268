/*
Copyright © 2026 bigbatmanorg
*/
package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/bigbatmanorg/pasreporter/internal/ops"
	"github.com/bigbatmanorg/pasreporter/pkg/buildinfo"
	"github.com/bigbatmanorg/pasreporter/pkg/exitcode"
	"github.com/bigbatmanorg/pasreporter/pkg/logger"
)

// newRootCommand creates a fresh root command instance.
// This factory pattern allows tests to create isolated command trees without shared state.
func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pasreporter",
		Short: "Branded analytics distribution built on Apache Superset",
		Long: `PASreporter packages Apache Superset as a branded, standalone analytics
distribution with DuckDB support. It pins the upstream source to a known
revision, builds the frontend and backend, packages wheels, and runs the
configured server.

Examples:
   pasreporter pin --latest-tag   # Pin upstream to the newest release tag
   pasreporter build              # Build frontend assets and install the backend
   pasreporter run                # Initialize and start the server
   pasreporter doctor             # Diagnose the installation`,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			initializeLogger(cmd)
		},
	}

	cmd.PersistentFlags().String("log-level", "info", "Set log level (debug|info|warn|error)")
	cmd.PersistentFlags().Bool("json", false, "Output logs in JSON format")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	cmd.Version = buildinfo.BinaryVersion
	cmd.SetVersionTemplate("pasreporter {{.Version}}\n")

	// Grouped help (Workflow → Runtime → Support)
	cmd.SetHelpFunc(func(cmd *cobra.Command, _ []string) {
		reg := ops.GetRegistry()
		cmd.Println(cmd.Long)
		cmd.Println()
		cmd.Println("Workflow Commands:")
		for _, c := range reg.GetCommandsByGroup(ops.GroupWorkflow) {
			cmd.Printf("  %-12s %s\n", c.Name, c.Description)
		}
		cmd.Println()
		cmd.Println("Runtime Commands:")
		for _, c := range reg.GetCommandsByGroup(ops.GroupRuntime) {
			cmd.Printf("  %-12s %s\n", c.Name, c.Description)
		}
		cmd.Println()
		cmd.Println("Support Commands:")
		for _, c := range reg.GetCommandsByGroup(ops.GroupSupport) {
			cmd.Printf("  %-12s %s\n", c.Name, c.Description)
		}
		cmd.Println()
		cmd.Println("Flags:")
		cmd.Print(cmd.UsageString())
	})

	return cmd
}

// registerSubcommands adds all subcommands to the root command.
// This is called from init() for production and can be called explicitly in tests.
func registerSubcommands(cmd *cobra.Command) {
	cmd.AddCommand(pinCmd)
	cmd.AddCommand(buildCmd)
	cmd.AddCommand(wheelsCmd)
	cmd.AddCommand(distCmd)
	cmd.AddCommand(runCmd)
	cmd.AddCommand(initCmd)
	cmd.AddCommand(addDuckDBCmd)
	cmd.AddCommand(brandingCmd)
	cmd.AddCommand(verifyCmd)
	cmd.AddCommand(detectCmd)
	cmd.AddCommand(doctorCmd)
	cmd.AddCommand(versionCmd)
	cmd.AddCommand(envinfoCmd)
	cmd.AddCommand(homeCmd)
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCommand()

// codedError carries a process exit code alongside the error.
type codedError struct {
	code int
	err  error
}

func (e *codedError) Error() string { return e.err.Error() }
func (e *codedError) Unwrap() error { return e.err }

func withExitCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &codedError{code: code, err: err}
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error("Command execution failed", logger.Err(err))
		var coded *codedError
		if errors.As(err, &coded) {
			os.Exit(coded.code)
		}
		os.Exit(exitcode.GeneralError)
	}
}

func init() {
	registerSubcommands(rootCmd)
}

// initializeLogger sets up the logger based on command flags
func initializeLogger(cmd *cobra.Command) {
	logLevelStr, _ := cmd.Flags().GetString("log-level")
	jsonLogs, _ := cmd.Flags().GetBool("json")
	noColor, _ := cmd.Flags().GetBool("no-color")

	config := logger.Config{
		Level:     logger.ParseLevel(logLevelStr),
		UseColor:  !noColor,
		JSON:      jsonLogs,
		Component: "pasreporter",
	}

	if err := logger.Initialize(config); err != nil {
		if _, writeErr := os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n"); writeErr != nil {
			_ = writeErr
		}
		os.Exit(exitcode.ConfigError)
	}
}
