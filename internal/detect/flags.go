package detect

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
)

var flagConfigFiles = []string{
	"superset/config.py",
	"superset/constants.py",
	"superset/default_config.py",
}

var flagPatterns = []*regexp.Regexp{
	regexp.MustCompile(`['"]([A-Z0-9_]*EXTENSION[A-Z0-9_]*)['"]`),
	regexp.MustCompile(`['"]([A-Z0-9_]*DUCKDB[A-Z0-9_]*)['"]`),
	regexp.MustCompile(`['"]([A-Z_]*ENABLE_[A-Z_]+)['"]`),
}

// extractFeatureFlags pulls feature flag names out of the wrapped source
// config modules.
func extractFeatureFlags(root string) []string {
	seen := make(map[string]bool)
	for _, rel := range flagConfigFiles {
		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			continue
		}
		for _, re := range flagPatterns {
			for _, m := range re.FindAllSubmatch(data, -1) {
				seen[string(m[1])] = true
			}
		}
	}
	flags := make([]string, 0, len(seen))
	for flag := range seen {
		flags = append(flags, flag)
	}
	sort.Strings(flags)
	return flags
}
