// Package detect scans a wrapped source checkout for the code signals and
// feature flags the distribution depends on. The pin workflow uses it to
// judge whether a candidate revision is compatible.
package detect

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"
)

const scanWorkers = 8

var pythonGlobs = []string{"superset/**/*.py"}

var codeGlobs = []string{
	"superset/**/*.py",
	"superset_core/**/*.py",
	"superset-frontend/**/*.ts",
	"superset-frontend/**/*.tsx",
	"superset-frontend/**/*.js",
	"superset-frontend/**/*.jsx",
}

type signalDef struct {
	name     string
	patterns []*regexp.Regexp
	globs    []string
}

func compile(ignoreCase bool, patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		if ignoreCase {
			p = "(?i)" + p
		}
		out = append(out, regexp.MustCompile(p))
	}
	return out
}

var signals = []signalDef{
	{"flask_app", compile(false, `create_app`, `Flask\(`), pythonGlobs},
	{"sqlalchemy", compile(false, `SQLAlchemy`, `SQLALCHEMY_DATABASE_URI`), pythonGlobs},
	{"duckdb_mentions", compile(true, `duckdb`), codeGlobs},
	{"extensions_path", compile(false, `EXTENSIONS_PATH`), codeGlobs},
	{"extension_registry", compile(false, `ExtensionRegistry`, `ExtensionsRegistry`, `extensionsRegistry`), codeGlobs},
	{"app_name_config", compile(false, `APP_NAME\s*=`), pythonGlobs},
	{"app_icon_config", compile(false, `APP_ICON\s*=`), pythonGlobs},
	{"favicons_config", compile(false, `FAVICONS\s*=`), pythonGlobs},
}

// requiredSignals must all be present for a revision to count as compatible.
var requiredSignals = []string{"flask_app", "sqlalchemy", "extensions_path", "extension_registry"}

// Report is the outcome of one checkout scan.
type Report struct {
	Signals      map[string][]string `json:"signals"`
	Missing      []string            `json:"missing"`
	FeatureFlags []string            `json:"feature_flags"`
}

// Compatible reports whether every required signal was found.
func (r *Report) Compatible() bool {
	for _, name := range requiredSignals {
		if len(r.Signals[name]) == 0 {
			return false
		}
	}
	return true
}

// WriteText renders the report for console output.
func (r *Report) WriteText(w io.Writer) {
	fmt.Fprintln(w, "Compatibility Check")
	fmt.Fprintln(w, strings.Repeat("=", 40))
	names := make([]string, 0, len(r.Signals))
	for name := range r.Signals {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		status := "found"
		if len(r.Signals[name]) == 0 {
			status = "missing"
		}
		fmt.Fprintf(w, "  %s: %s\n", name, status)
	}
	if len(r.FeatureFlags) > 0 {
		fmt.Fprintln(w, "\nFeature flags:")
		for _, flag := range r.FeatureFlags {
			fmt.Fprintf(w, "  - %s\n", flag)
		}
	}
	if len(r.Missing) > 0 {
		fmt.Fprintf(w, "\nMissing signals: %s\n", strings.Join(r.Missing, ", "))
	}
}

// Scan analyzes a checkout and reports which signals are present.
func Scan(ctx context.Context, root string) (*Report, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("repo root not found: %w", err)
	}
	fsys := os.DirFS(root)

	// Resolve every glob once, then map each file to the signals that
	// should inspect it.
	globFiles := make(map[string][]string)
	for _, pattern := range codeGlobs {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", pattern, err)
		}
		globFiles[pattern] = matches
	}

	fileSignals := make(map[string][]int)
	for i, sig := range signals {
		for _, pattern := range sig.globs {
			for _, file := range globFiles[pattern] {
				fileSignals[file] = append(fileSignals[file], i)
			}
		}
	}

	var mu sync.Mutex
	matches := make(map[string]map[string]bool, len(signals))
	for _, sig := range signals {
		matches[sig.name] = make(map[string]bool)
	}

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(scanWorkers)
	for file, idxs := range fileSignals {
		file, idxs := file, idxs
		g.Go(func() error {
			data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(file)))
			if err != nil {
				return nil // unreadable files are skipped, not fatal
			}
			for _, i := range idxs {
				sig := signals[i]
				if matchesAny(sig.patterns, data) {
					mu.Lock()
					matches[sig.name][file] = true
					mu.Unlock()
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{Signals: make(map[string][]string, len(signals))}
	for _, sig := range signals {
		files := make([]string, 0, len(matches[sig.name]))
		for file := range matches[sig.name] {
			files = append(files, file)
		}
		sort.Strings(files)
		report.Signals[sig.name] = files
		if len(files) == 0 {
			report.Missing = append(report.Missing, sig.name)
		}
	}
	report.FeatureFlags = extractFeatureFlags(root)
	return report, nil
}

func matchesAny(patterns []*regexp.Regexp, data []byte) bool {
	for _, re := range patterns {
		if re.Match(data) {
			return true
		}
	}
	return false
}

// IsCompatible is the pin scan predicate: it scans a checkout and reports
// whether the required signals are all present.
func IsCompatible(ctx context.Context, root string) bool {
	report, err := Scan(ctx, root)
	if err != nil {
		return false
	}
	return report.Compatible()
}
