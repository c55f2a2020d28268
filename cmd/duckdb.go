/*
Copyright © 2026 bigbatmanorg
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bigbatmanorg/pasreporter/internal/ops"
	"github.com/bigbatmanorg/pasreporter/internal/runner"
	"github.com/bigbatmanorg/pasreporter/pkg/config"
	"github.com/bigbatmanorg/pasreporter/pkg/exitcode"
	"github.com/bigbatmanorg/pasreporter/pkg/logger"
)

var addDuckDBCmd = &cobra.Command{
	Use:   "add-duckdb",
	Short: "Register a DuckDB database connection",
	Long: `Add-duckdb prints the SQLAlchemy connection details for a DuckDB file so
it can be registered as a database connection in the UI.`,
	RunE: runAddDuckDB,
}

func init() {
	if err := ops.RegisterCommand("add-duckdb", ops.GroupRuntime, addDuckDBCmd, "Register a DuckDB database connection"); err != nil {
		panic(fmt.Sprintf("Failed to register add-duckdb command: %v", err))
	}

	addDuckDBCmd.Flags().StringP("path", "p", "", "Path to the DuckDB file")
	addDuckDBCmd.Flags().StringP("name", "n", "", "Database display name (defaults to the file name)")
	addDuckDBCmd.Flags().BoolP("read-only", "r", false, "Open in read-only mode")
	_ = addDuckDBCmd.MarkFlagRequired("path")
}

func runAddDuckDB(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("path")
	name, _ := cmd.Flags().GetString("name")
	readOnly, _ := cmd.Flags().GetBool("read-only")

	abs, err := filepath.Abs(path)
	if err != nil {
		return withExitCode(exitcode.FileSystemError, err)
	}
	if _, err := os.Stat(abs); err != nil {
		logger.Warn("file does not exist yet, it will be created on first write",
			logger.String("path", abs))
	}
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs))
	}
	uri := runner.DuckDBURI(abs, readOnly)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "DuckDB Connection Details")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Name: %s\n", name)
	fmt.Fprintf(out, "Path: %s\n", abs)
	fmt.Fprintf(out, "SQLAlchemy URI: %s\n", uri)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "To add this database in the UI:")
	fmt.Fprintln(out, "1. Go to Data > Databases > + Database")
	fmt.Fprintln(out, "2. Select 'Other' under supported databases")
	fmt.Fprintln(out, "3. Enter the display name and paste the SQLAlchemy URI above")
	fmt.Fprintln(out, "4. Test the connection, then connect")

	configPath, err := config.ConfigFilePath()
	if err == nil {
		if _, statErr := os.Stat(configPath); statErr != nil {
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Run 'pasreporter init' first, then add the database via the UI.")
		}
	}
	return nil
}
