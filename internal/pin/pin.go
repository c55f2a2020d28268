// Package pin resolves and checks out a specific revision of the wrapped
// framework's source tree. A resolution follows exactly one policy: an
// explicit SHA/tag/ref, the latest release tag, or the tip of a branch
// (optionally scanned backwards for a compatible commit).
package pin

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/bigbatmanorg/pasreporter/pkg/logger"
	"github.com/bigbatmanorg/pasreporter/pkg/versioning"
)

// CompatFunc reports whether the tree at dir is usable. A nil CompatFunc
// accepts every tree.
type CompatFunc func(dir string) error

// Options selects the revision to pin.
type Options struct {
	RepoURL string
	RepoDir string

	// Exactly one of SHA, LatestTag, or Branch drives resolution. When all
	// are zero, the remote default branch is used.
	SHA       string
	LatestTag bool
	Branch    string

	// ScanLimit bounds the backwards commit walk used with Branch when a
	// compatibility check is supplied.
	ScanLimit int
	Compat    CompatFunc
}

// Resolution records the pinned revision.
type Resolution struct {
	SHA            string
	RefLabel       string // branch name, tag, or abbreviated SHA
	WrappedVersion string
}

// ErrConflictingPolicies is returned when more than one ref policy is set.
var ErrConflictingPolicies = errors.New("specify at most one of --sha, --latest-tag, --branch")

const defaultScanLimit = 100

// Resolve clones or updates the checkout and pins it per the options.
func Resolve(ctx context.Context, opts Options) (*Resolution, error) {
	if err := validate(opts); err != nil {
		return nil, err
	}
	if opts.ScanLimit <= 0 {
		opts.ScanLimit = defaultScanLimit
	}

	if _, err := EnsureRepo(ctx, opts.RepoDir, opts.RepoURL); err != nil {
		return nil, err
	}

	var label string
	switch {
	case opts.SHA != "":
		logger.Info("Pinning to ref", logger.String("ref", opts.SHA))
		FetchAll(ctx, opts.RepoDir)
		Unshallow(ctx, opts.RepoDir)
		if err := CheckoutRef(ctx, opts.RepoDir, opts.SHA); err != nil {
			return nil, err
		}
		label = abbreviate(opts.SHA)

	case opts.LatestTag:
		FetchAll(ctx, opts.RepoDir)
		Unshallow(ctx, opts.RepoDir)
		tags, err := ListTags(opts.RepoDir)
		if err != nil {
			return nil, err
		}
		tag, err := versioning.LatestRelease(tags)
		if err != nil {
			return nil, err
		}
		logger.Info("Pinning to latest release tag", logger.String("tag", tag))
		if err := CheckoutRef(ctx, opts.RepoDir, tag); err != nil {
			return nil, err
		}
		label = tag

	default:
		branch := opts.Branch
		if branch == "" {
			detected, err := DefaultBranch(ctx, opts.RepoDir)
			if err != nil {
				return nil, err
			}
			branch = detected
		}
		if err := CheckoutBranch(ctx, opts.RepoDir, branch); err != nil {
			return nil, err
		}
		if opts.Compat != nil {
			if err := scanForCompatible(ctx, opts, branch); err != nil {
				return nil, err
			}
		}
		label = branch
	}

	sha, err := HeadSHA(opts.RepoDir)
	if err != nil {
		return nil, err
	}

	return &Resolution{
		SHA:            sha,
		RefLabel:       label,
		WrappedVersion: WrappedVersion(opts.RepoDir),
	}, nil
}

// scanForCompatible walks backwards from the branch tip, checking out each
// commit until one passes the compatibility check. The walk is bounded by
// ScanLimit; HEAD ends on the first passing commit.
func scanForCompatible(ctx context.Context, opts Options, branch string) error {
	shas, err := RecentCommits(opts.RepoDir, opts.ScanLimit)
	if err != nil {
		return err
	}
	for i, sha := range shas {
		if i > 0 {
			if err := CheckoutRef(ctx, opts.RepoDir, sha); err != nil {
				return err
			}
		}
		if err := opts.Compat(opts.RepoDir); err == nil {
			if i > 0 {
				logger.Info("Pinned to newest compatible commit",
					logger.String("sha", abbreviate(sha)), logger.Int("commits_back", i))
			}
			return nil
		}
		logger.Debug("Commit failed compatibility check", logger.String("sha", abbreviate(sha)))
	}
	// Leave the tree on the branch tip rather than an arbitrary old commit.
	if err := CheckoutBranch(ctx, opts.RepoDir, branch); err != nil {
		return err
	}
	return fmt.Errorf("no compatible commit found in the last %d commits of %s", opts.ScanLimit, branch)
}

func validate(opts Options) error {
	set := 0
	if opts.SHA != "" {
		set++
	}
	if opts.LatestTag {
		set++
	}
	if opts.Branch != "" {
		set++
	}
	if set > 1 {
		return ErrConflictingPolicies
	}
	if opts.RepoDir == "" {
		return errors.New("checkout directory is required")
	}
	if opts.RepoURL == "" {
		return errors.New("repository URL is required")
	}
	return nil
}

var versionAssignPattern = regexp.MustCompile(`VERSION\s*=\s*["']([^"']+)["']`)

// WrappedVersion extracts the wrapped framework's own version string from
// the checkout: superset/version.py first, then pyproject.toml. Returns
// "unknown" when neither yields one.
func WrappedVersion(dir string) string {
	if data, err := os.ReadFile(filepath.Join(dir, "superset", "version.py")); err == nil {
		if m := versionAssignPattern.FindSubmatch(data); m != nil {
			return string(m[1])
		}
	}

	if data, err := os.ReadFile(filepath.Join(dir, "pyproject.toml")); err == nil {
		var doc struct {
			Project struct {
				Version string `toml:"version"`
			} `toml:"project"`
			Tool struct {
				Poetry struct {
					Version string `toml:"version"`
				} `toml:"poetry"`
			} `toml:"tool"`
		}
		if err := toml.Unmarshal(data, &doc); err == nil {
			if doc.Project.Version != "" {
				return doc.Project.Version
			}
			if doc.Tool.Poetry.Version != "" {
				return doc.Tool.Poetry.Version
			}
		}
	}

	return "unknown"
}

func abbreviate(sha string) string {
	if len(sha) > 12 {
		return sha[:12]
	}
	return sha
}
