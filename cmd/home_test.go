package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestHome_PrintsResolvedPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("PASREPORTER_HOME", home)

	out, err := execRoot(t, []string{"home"})
	if err != nil {
		t.Fatalf("home failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, home) {
		t.Errorf("expected output to contain %q, got %q", home, out)
	}
	if !strings.Contains(out, "PASREPORTER_HOME") {
		t.Errorf("expected output to mention the env override")
	}
}

func TestHome_CreateBuildsTree(t *testing.T) {
	home := filepath.Join(t.TempDir(), "prhome")
	t.Setenv("PASREPORTER_HOME", home)

	out, err := execRoot(t, []string{"home", "--create"})
	if err != nil {
		t.Fatalf("home --create failed: %v\n%s", err, out)
	}
	for _, name := range []string{"cache", "uploads", "logs"} {
		if _, err := os.Stat(filepath.Join(home, name)); err != nil {
			t.Errorf("expected %s to be created: %v", name, err)
		}
	}
}
