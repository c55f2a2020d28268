/*
Copyright © 2026 bigbatmanorg
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/bigbatmanorg/pasreporter/internal/ops"
	"github.com/bigbatmanorg/pasreporter/internal/runner"
	"github.com/bigbatmanorg/pasreporter/pkg/buildinfo"
	"github.com/bigbatmanorg/pasreporter/pkg/config"
)

var envinfoCmd = &cobra.Command{
	Use:   "envinfo",
	Short: "Show system and environment information",
	Long: `Show information about the system and the environment variables that
affect the behavior of pasreporter.`,
	RunE: runEnvinfo,
}

func init() {
	if err := ops.RegisterCommand("envinfo", ops.GroupSupport, envinfoCmd, "Show system information"); err != nil {
		panic(fmt.Sprintf("Failed to register envinfo command: %v", err))
	}

	envinfoCmd.Flags().Bool("json", false, "Output in JSON format")
}

// EnvData represents the structured data for environment information.
type EnvData struct {
	System    SystemInfo        `json:"system"`
	Variables map[string]string `json:"variables"`
}

// SystemInfo holds basic system facts.
type SystemInfo struct {
	OS           string    `json:"os"`
	Architecture string    `json:"architecture"`
	GoVersion    string    `json:"goVersion"`
	NumCPU       int       `json:"numCPU"`
	Hostname     string    `json:"hostname"`
	WorkingDir   string    `json:"workingDir"`
	Timestamp    time.Time `json:"timestamp"`
	Version      string    `json:"version"`
}

func collectEnvironmentData() EnvData {
	hostname, _ := os.Hostname()
	wd, _ := os.Getwd()

	variables := make(map[string]string)
	for _, key := range []string{
		config.HomeEnvVar,
		config.PortEnvVar,
		runner.PortableEnvVar,
		"SUPERSET_ADMIN_USERNAME",
		"SUPERSET_BASE_URL",
	} {
		if value := os.Getenv(key); value != "" {
			variables[key] = value
		}
	}
	// Never echo secrets, only whether they are present.
	if os.Getenv(config.SecretKeyEnvVar) != "" {
		variables[config.SecretKeyEnvVar] = "(set)"
	}
	if os.Getenv("SUPERSET_ADMIN_PASSWORD") != "" {
		variables["SUPERSET_ADMIN_PASSWORD"] = "(set)"
	}

	return EnvData{
		System: SystemInfo{
			OS:           runtime.GOOS,
			Architecture: runtime.GOARCH,
			GoVersion:    runtime.Version(),
			NumCPU:       runtime.NumCPU(),
			Hostname:     hostname,
			WorkingDir:   wd,
			Timestamp:    time.Now().UTC(),
			Version:      buildinfo.BinaryVersion,
		},
		Variables: variables,
	}
}

func runEnvinfo(cmd *cobra.Command, _ []string) error {
	jsonFormat, _ := cmd.Flags().GetBool("json")

	envData := collectEnvironmentData()
	out := cmd.OutOrStdout()

	if jsonFormat {
		data, err := json.MarshalIndent(envData, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format JSON output: %v", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	fmt.Fprintln(out, "System Information")
	fmt.Fprintln(out, "==================================================")
	fmt.Fprintf(out, "%-16s | %s\n", "OS", envData.System.OS)
	fmt.Fprintf(out, "%-16s | %s\n", "Architecture", envData.System.Architecture)
	fmt.Fprintf(out, "%-16s | %s\n", "Go Version", envData.System.GoVersion)
	fmt.Fprintf(out, "%-16s | %d\n", "CPU Cores", envData.System.NumCPU)
	fmt.Fprintf(out, "%-16s | %s\n", "Hostname", envData.System.Hostname)
	fmt.Fprintf(out, "%-16s | %s\n", "Working Dir", envData.System.WorkingDir)
	fmt.Fprintf(out, "%-16s | %s\n", "Version", envData.System.Version)

	if len(envData.Variables) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Environment Variables")
		fmt.Fprintln(out, "==================================================")
		keys := make([]string, 0, len(envData.Variables))
		for key := range envData.Variables {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			fmt.Fprintf(out, "%-24s | %s\n", key, envData.Variables[key])
		}
	}
	return nil
}
