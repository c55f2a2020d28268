/*
Copyright © 2026 bigbatmanorg
*/
package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bigbatmanorg/pasreporter/internal/builder"
	"github.com/bigbatmanorg/pasreporter/internal/manifest"
	"github.com/bigbatmanorg/pasreporter/internal/ops"
	"github.com/bigbatmanorg/pasreporter/internal/runner"
	"github.com/bigbatmanorg/pasreporter/pkg/buildinfo"
	"github.com/bigbatmanorg/pasreporter/pkg/config"
	"github.com/bigbatmanorg/pasreporter/pkg/exitcode"
	"github.com/bigbatmanorg/pasreporter/pkg/versioning"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Print version info, paths, and run sanity checks",
	Long: `Doctor diagnoses installation issues: it prints the execution mode, the
relevant environment, toolchain versions, resolved paths, and runs sanity
checks against the installation. A failing check makes the command exit
non-zero.`,
	RunE: runDoctor,
}

func init() {
	if err := ops.RegisterCommand("doctor", ops.GroupSupport, doctorCmd, "Diagnose the installation"); err != nil {
		panic(fmt.Sprintf("Failed to register doctor command: %v", err))
	}
}

// toolMinimums are the floor versions for the build toolchain. Tools absent
// from the map are only checked for presence.
var toolMinimums = map[string]string{
	"python": "3.9.0",
	"node":   "18.0.0",
	"npm":    "9.0.0",
}

// versionSatisfies checks an installed tool version against its minimum.
// Unknown tools and unparseable versions pass.
func versionSatisfies(name, version string) (bool, string) {
	minimum, known := toolMinimums[name]
	if !known || version == "" {
		return true, ""
	}
	ok, err := versioning.AtLeast(version, minimum)
	if err != nil {
		return true, ""
	}
	if !ok {
		return false, "below minimum " + minimum
	}
	return true, ""
}

func pathStatus(path string, missingLabel string) string {
	if _, err := os.Stat(path); err == nil {
		return "exists"
	}
	return missingLabel
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	allOK := true

	mode := "normal"
	if runner.IsPortable() {
		mode = "portable"
	}
	fmt.Fprintf(out, "%s doctor\n\n", buildinfo.AppName)
	fmt.Fprintf(out, "Execution mode: %s\n\n", mode)

	// Environment
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Environment\t")
	for _, key := range []string{config.HomeEnvVar, config.PortEnvVar, runner.PortableEnvVar} {
		value := os.Getenv(key)
		if value == "" {
			value = "(not set)"
		}
		fmt.Fprintf(tw, "  %s\t%s\n", key, value)
	}
	secret := "(not set)"
	if os.Getenv(config.SecretKeyEnvVar) != "" {
		secret = "(set)"
	}
	fmt.Fprintf(tw, "  %s\t%s\n", config.SecretKeyEnvVar, secret)
	fmt.Fprintf(tw, "  PATH\t%s\n", truncate(os.Getenv("PATH"), 80))
	tw.Flush()
	fmt.Fprintln(out)

	// Toolchain versions
	tools := builder.Toolchain(cmd.Context())
	tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Component\tVersion")
	fmt.Fprintf(tw, "%s\t%s\n", buildinfo.AppName, buildinfo.BinaryVersion)
	for _, row := range []struct{ name, version string }{
		{"python", tools.Python},
		{"node", tools.Node},
		{"npm", tools.NPM},
		{"uv", tools.UV},
		{"git", tools.Git},
	} {
		version := row.version
		if version == "" {
			version = "NOT INSTALLED"
			if row.name != "uv" { // uv is optional, pip is the fallback
				allOK = false
			}
		} else if ok, detail := versionSatisfies(row.name, version); !ok {
			version = fmt.Sprintf("%s (%s)", version, detail)
			allOK = false
		}
		fmt.Fprintf(tw, "%s\t%s\n", row.name, version)
	}
	tw.Flush()
	fmt.Fprintln(out)

	// Paths
	home, err := config.GetHome()
	if err != nil {
		return withExitCode(exitcode.ConfigError, err)
	}
	configPath, _ := config.ConfigFilePath()
	dbPath, _ := config.DatabasePath()

	tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Path\tLocation\tStatus")
	fmt.Fprintf(tw, "%s\t%s\t%s\n", config.HomeEnvVar, home, pathStatus(home, "will be created"))
	fmt.Fprintf(tw, "Config file\t%s\t%s\n", configPath, pathStatus(configPath, "will be generated"))
	fmt.Fprintf(tw, "SQLite database\t%s\t%s\n", dbPath, pathStatus(dbPath, "will be created"))
	fmt.Fprintf(tw, "Version matrix\t%s\t%s\n",
		filepath.Join(home, manifest.JSONFileName),
		pathStatus(filepath.Join(home, manifest.JSONFileName), "run pin"))
	tw.Flush()
	fmt.Fprintln(out)

	// Sanity checks
	fmt.Fprintln(out, "Sanity checks:")
	checkLine := func(label string, ok bool, detail string) {
		mark := "ok"
		if !ok {
			mark = "FAIL"
			allOK = false
		}
		if detail != "" {
			fmt.Fprintf(out, "  [%s] %s (%s)\n", mark, label, detail)
		} else {
			fmt.Fprintf(out, "  [%s] %s\n", mark, label)
		}
	}

	m, merr := manifest.Load(home)
	switch {
	case merr != nil:
		checkLine("version matrix valid", false, merr.Error())
	case m == nil:
		fmt.Fprintln(out, "  [--] version matrix not present yet, run pin")
	default:
		checkLine("version matrix valid", true, m.SupersetSHA)
	}

	venvDir := filepath.Join(home, ".venv")
	if _, err := os.Stat(venvDir); err == nil {
		checkLine("project virtualenv present", true, venvDir)
	} else {
		fmt.Fprintln(out, "  [--] virtualenv not present yet, run build")
	}

	staticDir := staticAssetsDir(home)
	if _, err := os.Stat(staticDir); err == nil {
		checkLine("branding assets present", true, staticDir)
	} else {
		checkLine("branding assets present", false, staticDir)
	}

	fmt.Fprintln(out)
	if !allOK {
		fmt.Fprintln(out, "Some checks failed. See above for details.")
		return withExitCode(exitcode.GeneralError, errors.New("doctor found problems"))
	}
	fmt.Fprintln(out, "All checks passed.")
	return nil
}
