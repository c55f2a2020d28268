package versioning

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Comparison is the result of ordering two versions.
type Comparison int

const (
	ComparisonUnknown Comparison = iota
	ComparisonLess
	ComparisonEqual
	ComparisonGreater
)

var semverPattern = regexp.MustCompile(`^(?:[vV])?(\d+)\.(\d+)\.(\d+)(?:-([0-9A-Za-z.-]+))?(?:\+([0-9A-Za-z.-]+))?$`)

type identifier struct {
	raw     string
	numeric bool
	num     int
}

// Version is a parsed semantic version. An optional leading "v" is accepted
// and preserved in String().
type Version struct {
	major int
	minor int
	patch int
	pre   []identifier
	build string
	raw   string
}

// Parse parses a semver string, accepting an optional v prefix.
func Parse(input string) (*Version, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil, errors.New("empty version")
	}

	matches := semverPattern.FindStringSubmatch(trimmed)
	if len(matches) == 0 {
		return nil, fmt.Errorf("invalid format")
	}

	major, err := parseSegment(matches[1])
	if err != nil {
		return nil, fmt.Errorf("invalid major segment: %w", err)
	}
	minor, err := parseSegment(matches[2])
	if err != nil {
		return nil, fmt.Errorf("invalid minor segment: %w", err)
	}
	patch, err := parseSegment(matches[3])
	if err != nil {
		return nil, fmt.Errorf("invalid patch segment: %w", err)
	}

	v := &Version{major: major, minor: minor, patch: patch, raw: trimmed}

	if prerelease := matches[4]; prerelease != "" {
		parts := strings.Split(prerelease, ".")
		v.pre = make([]identifier, len(parts))
		for i, part := range parts {
			if part == "" {
				return nil, fmt.Errorf("invalid prerelease identifier: empty segment")
			}
			if isNumeric(part) {
				if len(part) > 1 && strings.HasPrefix(part, "0") {
					return nil, fmt.Errorf("invalid prerelease identifier: leading zeros not allowed")
				}
				num, err := strconv.Atoi(part)
				if err != nil {
					return nil, fmt.Errorf("invalid prerelease identifier '%s': %w", part, err)
				}
				v.pre[i] = identifier{raw: part, numeric: true, num: num}
			} else {
				v.pre[i] = identifier{raw: part}
			}
		}
	}

	if build := matches[5]; build != "" {
		v.build = build
	}

	return v, nil
}

func parseSegment(s string) (int, error) {
	if len(s) > 1 && strings.HasPrefix(s, "0") {
		return 0, errors.New("leading zeros not allowed")
	}
	return strconv.Atoi(s)
}

// String returns the original string representation.
func (v *Version) String() string {
	if v == nil {
		return ""
	}
	return v.raw
}

// IsRelease reports whether the version carries neither prerelease nor build metadata.
func (v *Version) IsRelease() bool {
	return v != nil && len(v.pre) == 0 && v.build == ""
}

// Compare orders a against b per SemVer 2.0.0.
func Compare(a, b string) (Comparison, error) {
	av, err := Parse(a)
	if err != nil {
		return ComparisonUnknown, fmt.Errorf("invalid semver '%s': %w", a, err)
	}
	bv, err := Parse(b)
	if err != nil {
		return ComparisonUnknown, fmt.Errorf("invalid semver '%s': %w", b, err)
	}
	return compareVersions(av, bv), nil
}

// AtLeast reports whether actual satisfies the minimum version. Both must parse.
func AtLeast(actual, minimum string) (bool, error) {
	cmp, err := Compare(actual, minimum)
	if err != nil {
		return false, err
	}
	return cmp == ComparisonGreater || cmp == ComparisonEqual, nil
}

// LatestRelease selects the highest plain MAJOR.MINOR.PATCH tag from the
// list. Prerelease, build-metadata and non-semver tags are ignored. Returns
// an error when no release tag is present.
func LatestRelease(tags []string) (string, error) {
	var best *Version
	for _, tag := range tags {
		v, err := Parse(strings.TrimSpace(tag))
		if err != nil || !v.IsRelease() {
			continue
		}
		if best == nil || compareVersions(v, best) == ComparisonGreater {
			best = v
		}
	}
	if best == nil {
		return "", errors.New("no valid release tag found")
	}
	return best.String(), nil
}

func compareVersions(a, b *Version) Comparison {
	if a.major != b.major {
		return orderInt(a.major, b.major)
	}
	if a.minor != b.minor {
		return orderInt(a.minor, b.minor)
	}
	if a.patch != b.patch {
		return orderInt(a.patch, b.patch)
	}

	if len(a.pre) == 0 && len(b.pre) == 0 {
		return ComparisonEqual
	}
	if len(a.pre) == 0 {
		return ComparisonGreater
	}
	if len(b.pre) == 0 {
		return ComparisonLess
	}

	limit := len(a.pre)
	if len(b.pre) < limit {
		limit = len(b.pre)
	}
	for i := 0; i < limit; i++ {
		ai := a.pre[i]
		bi := b.pre[i]
		if ai.numeric && bi.numeric {
			if ai.num != bi.num {
				return orderInt(ai.num, bi.num)
			}
			continue
		}
		if ai.numeric {
			return ComparisonLess
		}
		if bi.numeric {
			return ComparisonGreater
		}
		if cmp := strings.Compare(ai.raw, bi.raw); cmp != 0 {
			if cmp < 0 {
				return ComparisonLess
			}
			return ComparisonGreater
		}
	}
	if len(a.pre) != len(b.pre) {
		return orderInt(len(a.pre), len(b.pre))
	}
	return ComparisonEqual
}

func orderInt(a, b int) Comparison {
	if a < b {
		return ComparisonLess
	}
	return ComparisonGreater
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
