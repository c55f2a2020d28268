/*
Copyright © 2026 bigbatmanorg
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/bigbatmanorg/pasreporter/internal/branding"
	"github.com/bigbatmanorg/pasreporter/internal/ops"
	"github.com/bigbatmanorg/pasreporter/pkg/buildinfo"
	"github.com/bigbatmanorg/pasreporter/pkg/config"
	"github.com/bigbatmanorg/pasreporter/pkg/exitcode"
)

var brandingCmd = &cobra.Command{
	Use:   "branding",
	Short: "Serve and inspect the standalone branding server",
	Long: `Branding manages the standalone HTTP server that exposes the
distribution's static assets and probe endpoints independently of the
wrapped application.`,
}

var brandingServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the standalone branding server",
	RunE:  runBrandingServe,
}

var brandingStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recorded branding server instances",
	RunE:  runBrandingStatus,
}

func init() {
	if err := ops.RegisterCommand("branding", ops.GroupRuntime, brandingCmd, "Serve and inspect the branding server"); err != nil {
		panic(fmt.Sprintf("Failed to register branding command: %v", err))
	}

	brandingCmd.AddCommand(brandingServeCmd)
	brandingCmd.AddCommand(brandingStatusCmd)

	brandingServeCmd.Flags().IntP("port", "p", 0, "Port to listen on (0 picks a free ephemeral port)")
	brandingServeCmd.Flags().String("static-dir", "", "Static asset directory (default <home>/static)")
	brandingStatusCmd.Flags().Bool("json", false, "Output in JSON format")
}

func runBrandingServe(cmd *cobra.Command, _ []string) error {
	port, _ := cmd.Flags().GetInt("port")
	staticDir, _ := cmd.Flags().GetString("static-dir")

	home, err := config.EnsureHome()
	if err != nil {
		return withExitCode(exitcode.FileSystemError, err)
	}
	if staticDir == "" {
		staticDir = staticAssetsDir(home)
	}
	if port == 0 {
		port = pickFreePort()
	}
	if !branding.IsPortAvailable(port) {
		return withExitCode(exitcode.NetworkError, fmt.Errorf("port %d is not available", port))
	}

	info := branding.Info{
		Name:      "branding",
		Port:      port,
		PID:       os.Getpid(),
		Version:   buildinfo.BinaryVersion,
		StartedAt: time.Now().UTC(),
	}
	if err := branding.Save(info); err != nil {
		return withExitCode(exitcode.FileSystemError, err)
	}
	defer func() { _ = branding.Remove(info.Name) }()

	srv := branding.NewServer(home, staticDir)
	fmt.Fprintf(cmd.OutOrStdout(), "Branding server on http://127.0.0.1:%d (assets: %s)\n", port, staticDir)
	return withExitCode(exitcode.NetworkError, srv.ListenAndServe(fmt.Sprintf("127.0.0.1:%d", port)))
}

// pickFreePort scans the ephemeral range for an open port.
func pickFreePort() int {
	for port := 49152; port <= 65535; port++ {
		if branding.IsPortAvailable(port) {
			return port
		}
	}
	return 0
}

func runBrandingStatus(cmd *cobra.Command, _ []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	infos, err := branding.List()
	if err != nil {
		return withExitCode(exitcode.FileSystemError, err)
	}

	type status struct {
		branding.Info
		Reachable bool `json:"reachable"`
	}
	statuses := make([]status, 0, len(infos))
	for _, info := range infos {
		_, probeErr := branding.ProbePing(info, nil)
		statuses = append(statuses, status{Info: info, Reachable: probeErr == nil})
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		data, err := json.MarshalIndent(statuses, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format JSON output: %v", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	if len(statuses) == 0 {
		fmt.Fprintln(out, "No branding servers recorded.")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tPORT\tPID\tVERSION\tSTARTED\tREACHABLE")
	for _, s := range statuses {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\t%t\n",
			s.Name, s.Port, s.PID, s.Version, s.StartedAt.Format(time.RFC3339), s.Reachable)
	}
	tw.Flush()
	return nil
}
