package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// resetFlags restores every flag in the command tree to its default so
// values set by one test's invocation do not leak into the next: the
// tests share the package-level rootCmd rather than a fresh process.
func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
	})
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func execRoot(t *testing.T, args []string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	// Reduce log noise to capture clean command output for JSON parsing
	full := append([]string{"--log-level", "error"}, args...)
	rootCmd.SetArgs(full)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestEnvinfo_JSON(t *testing.T) {
	out, err := execRoot(t, []string{"envinfo", "--json"})
	if err != nil {
		t.Fatalf("envinfo --json failed: %v\n%s", err, out)
	}
	var v map[string]interface{}
	if json.Unmarshal([]byte(out), &v) != nil {
		t.Fatalf("envinfo output is not valid JSON: %s", out)
	}
	system, ok := v["system"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected system section in JSON")
	}
	if _, ok := system["os"].(string); !ok {
		t.Errorf("expected system.os field in JSON")
	}
	if _, ok := system["goVersion"].(string); !ok {
		t.Errorf("expected system.goVersion field in JSON")
	}
}

func TestEnvinfo_TextOutputSortsVariables(t *testing.T) {
	t.Setenv("SUPERSET_BASE_URL", "http://127.0.0.1:8088")
	t.Setenv("PASREPORTER_HOME", t.TempDir())

	out, err := execRoot(t, []string{"envinfo"})
	if err != nil {
		t.Fatalf("envinfo failed: %v\n%s", err, out)
	}
	home := strings.Index(out, "PASREPORTER_HOME")
	base := strings.Index(out, "SUPERSET_BASE_URL")
	if home < 0 || base < 0 {
		t.Fatalf("expected both variables in output:\n%s", out)
	}
	if home > base {
		t.Errorf("variables not sorted: PASREPORTER_HOME at %d after SUPERSET_BASE_URL at %d", home, base)
	}
}

func TestEnvinfo_RedactsSecrets(t *testing.T) {
	t.Setenv("SUPERSET_SECRET_KEY", "super-secret-value")

	out, err := execRoot(t, []string{"envinfo", "--json"})
	if err != nil {
		t.Fatalf("envinfo --json failed: %v\n%s", err, out)
	}
	if bytes.Contains([]byte(out), []byte("super-secret-value")) {
		t.Errorf("secret value leaked into envinfo output")
	}
}
