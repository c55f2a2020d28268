package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/bigbatmanorg/pasreporter/internal/manifest"
	"github.com/bigbatmanorg/pasreporter/internal/wheels"
)

func TestPrintDistSummary(t *testing.T) {
	m := &manifest.Matrix{
		SupersetSHA:     "0123456789abcdef0123456789abcdef01234567",
		SupersetVersion: "4.1.2",
	}
	result := &wheels.Result{Packages: []wheels.Package{
		{Name: "apache-superset", Wheels: []string{"apache_superset-4.1.2-py3-none-any.whl"}},
	}}

	var buf bytes.Buffer
	printDistSummary(&buf, m, result, "/tmp/wheels")
	out := buf.String()

	if !strings.Contains(out, "Distribution built for 4.1.2") {
		t.Errorf("missing version line:\n%s", out)
	}
	if !strings.Contains(out, "apache_superset-4.1.2-py3-none-any.whl") {
		t.Errorf("missing wheel listing:\n%s", out)
	}
	if !strings.Contains(out, "standalone executable") {
		t.Errorf("missing executable packaging note:\n%s", out)
	}
}
