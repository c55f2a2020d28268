// Package manifest records the pinned wrapped-framework revision and the
// toolchain versions used for a build, enabling reproducible rebuilds.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/bigbatmanorg/pasreporter/pkg/safeio"
)

const (
	// JSONFileName is the machine-readable manifest at the project root.
	JSONFileName = "VERSION_MATRIX.json"
	// MarkdownRelPath is the human-readable rendering under docs/.
	MarkdownRelPath = "docs/VERSION_MATRIX.md"
)

// Matrix pins the exact upstream revision and toolchain versions of a build.
// Field names match the wire format consumed by rebuild tooling.
type Matrix struct {
	SupersetSHA     string `json:"superset_sha"`
	SupersetVersion string `json:"superset_version"`
	SupersetBranch  string `json:"superset_branch"`
	PythonVersion   string `json:"python_version"`
	NodeVersion     string `json:"node_version"`
	NpmVersion      string `json:"npm_version"`
	AppVersion      string `json:"app_version"`
	BuildTimestamp  string `json:"build_timestamp"`
	BuildHost       string `json:"build_host"`
}

// Stamp fills the build timestamp (UTC, Z suffix) and host fields.
func (m *Matrix) Stamp(now time.Time) {
	m.BuildTimestamp = now.UTC().Format("2006-01-02T15:04:05Z")
	if host, err := os.Hostname(); err == nil {
		m.BuildHost = host
	}
}

// Write persists the manifest as JSON at the project root and regenerates
// the Markdown rendering under docs/.
func Write(baseDir string, m Matrix) error {
	jsonPath := filepath.Join(baseDir, JSONFileName)
	mdPath := filepath.Join(baseDir, filepath.FromSlash(MarkdownRelPath))

	if err := os.MkdirAll(filepath.Dir(mdPath), 0o750); err != nil {
		return fmt.Errorf("failed to create docs directory: %w", err)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal version matrix: %w", err)
	}
	if err := safeio.WriteFilePreservePerms(jsonPath, append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write %s: %w", JSONFileName, err)
	}

	md, err := renderMarkdown(m)
	if err != nil {
		return err
	}
	if err := safeio.WriteFilePreservePerms(mdPath, md); err != nil {
		return fmt.Errorf("failed to write %s: %w", MarkdownRelPath, err)
	}
	return nil
}

// Load reads and schema-validates the manifest at the project root.
// Returns nil without error when no manifest exists.
func Load(baseDir string) (*Matrix, error) {
	raw, err := os.ReadFile(filepath.Join(baseDir, JSONFileName)) // #nosec G304 -- path rooted at the project directory
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", JSONFileName, err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(matrixSchema),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to validate version matrix: %w", err)
	}
	if !result.Valid() {
		first := result.Errors()[0]
		return nil, fmt.Errorf("invalid version matrix: %s", first)
	}

	var m Matrix
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", JSONFileName, err)
	}
	return &m, nil
}
