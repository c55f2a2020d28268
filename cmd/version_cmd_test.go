package cmd

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestVersion_JSON(t *testing.T) {
	out, err := execRoot(t, []string{"version", "--json"})
	if err != nil {
		t.Fatalf("version --json failed: %v\n%s", err, out)
	}
	var v map[string]any
	if json.Unmarshal([]byte(out), &v) != nil {
		t.Fatalf("version output is not valid JSON: %s", out)
	}
	if _, ok := v["version"].(string); !ok {
		t.Errorf("expected version field in JSON")
	}
	if v["app"] != "pasreporter" {
		t.Errorf("expected app field to be pasreporter, got %v", v["app"])
	}
}

func TestVersion_ExtendedJSON(t *testing.T) {
	t.Setenv("PASREPORTER_HOME", t.TempDir())

	out, err := execRoot(t, []string{"version", "--extended", "--json"})
	if err != nil {
		t.Fatalf("version --extended --json failed: %v\n%s", err, out)
	}
	var v map[string]any
	if json.Unmarshal([]byte(out), &v) != nil {
		t.Fatalf("version output is not valid JSON: %s", out)
	}
	if _, ok := v["go_version"].(string); !ok {
		t.Errorf("expected go_version field in JSON")
	}
	if _, ok := v["platform"].(string); !ok {
		t.Errorf("expected platform field in JSON")
	}
}

func TestVersion_Plain(t *testing.T) {
	out, err := execRoot(t, []string{"version"})
	if err != nil {
		t.Fatalf("version failed: %v\n%s", err, out)
	}
	if !strings.HasPrefix(out, "pasreporter ") {
		t.Errorf("expected output to start with app name, got %q", out)
	}
}
