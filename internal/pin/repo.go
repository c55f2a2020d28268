package pin

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/bigbatmanorg/pasreporter/pkg/logger"
)

// cloneDepth keeps initial clones shallow for speed; history is deepened
// only when a ref cannot be resolved.
const cloneDepth = 100

// gitResult captures the outcome of a git CLI invocation.
type gitResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

func (r gitResult) ok() bool { return r.ExitCode == 0 }

// runGit executes the git CLI in dir, capturing output. The CLI is used for
// operations go-git does not cover (unshallow, ff-only pull) and to enrich
// errors with git's own diagnostics.
func runGit(ctx context.Context, dir string, args ...string) gitResult {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	res := gitResult{
		Stdout: strings.TrimSpace(stdout.String()),
		Stderr: strings.TrimSpace(stderr.String()),
	}
	if err != nil {
		res.ExitCode = 1
		if exitErr, okCast := err.(*exec.ExitError); okCast {
			res.ExitCode = exitErr.ExitCode()
		}
	}
	return res
}

// EnsureRepo opens the checkout at dir, cloning it from url when absent.
// Clones are shallow; Unshallow deepens them on demand.
func EnsureRepo(ctx context.Context, dir, url string) (*git.Repository, error) {
	if repo, err := git.PlainOpen(dir); err == nil {
		return repo, nil
	}

	if err := os.MkdirAll(filepath.Dir(dir), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create checkout parent directory: %w", err)
	}

	logger.Info("Cloning wrapped framework", logger.String("url", url), logger.String("dir", dir))
	repo, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:   url,
		Depth: cloneDepth,
		Tags:  git.AllTags,
	})
	if err != nil {
		// go-git clone can fail on servers with unusual capability
		// advertisements; the CLI is more forgiving.
		res := runGit(ctx, filepath.Dir(dir), "clone", "--depth", fmt.Sprint(cloneDepth), url, dir)
		if !res.ok() {
			return nil, fmt.Errorf("failed to clone %s: %v\n%s", url, err, res.Stderr)
		}
		return git.PlainOpen(dir)
	}
	return repo, nil
}

// IsShallow reports whether the checkout has truncated history.
func IsShallow(ctx context.Context, dir string) bool {
	if _, err := os.Stat(filepath.Join(dir, ".git", "shallow")); err == nil {
		return true
	}
	res := runGit(ctx, dir, "rev-parse", "--is-shallow-repository")
	return res.ok() && strings.EqualFold(res.Stdout, "true")
}

// Unshallow converts a shallow checkout into a full clone, best-effort.
// Falls back to a deep fetch when --unshallow is unavailable.
func Unshallow(ctx context.Context, dir string) {
	if !IsShallow(ctx, dir) {
		return
	}
	logger.Info("Checkout is shallow; deepening history")
	runGit(ctx, dir, "fetch", "--unshallow", "--tags", "--prune")
	if IsShallow(ctx, dir) {
		runGit(ctx, dir, "fetch", "--depth", "1000000", "--tags", "--prune")
	}
}

// FetchAll refreshes remote refs and tags, tolerating failures (offline use).
func FetchAll(ctx context.Context, dir string) {
	runGit(ctx, dir, "fetch", "--all", "--tags", "--prune")
}

// HeadSHA returns the SHA of the current HEAD.
func HeadSHA(dir string) (string, error) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return "", fmt.Errorf("failed to open checkout: %w", err)
	}
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	return head.Hash().String(), nil
}

// ListTags returns all tag names in the checkout.
func ListTags(dir string) ([]string, error) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open checkout: %w", err)
	}
	iter, err := repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	var tags []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		tags = append(tags, ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tags, nil
}

// DefaultBranch determines the remote default branch: origin/HEAD symref
// first, then well-known branch names.
func DefaultBranch(ctx context.Context, dir string) (string, error) {
	res := runGit(ctx, dir, "symbolic-ref", "refs/remotes/origin/HEAD")
	if res.ok() && res.Stdout != "" {
		parts := strings.Split(res.Stdout, "/")
		return parts[len(parts)-1], nil
	}

	for _, candidate := range []string{"main", "master", "next"} {
		check := runGit(ctx, dir, "show-ref", "--verify", "refs/remotes/origin/"+candidate)
		if check.ok() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("unable to determine default branch")
}

// CheckoutRef checks out a SHA, tag, or branch. Shallow clones often lack
// the ref on the first attempt, so failures walk a ladder: fetch tags,
// deepen history, fetch the ref explicitly, retry. The final error carries
// git's captured output.
func CheckoutRef(ctx context.Context, dir, ref string) error {
	if res := runGit(ctx, dir, "checkout", ref); res.ok() {
		return nil
	}

	FetchAll(ctx, dir)
	Unshallow(ctx, dir)
	runGit(ctx, dir, "fetch", "origin", ref)

	if res := runGit(ctx, dir, "checkout", ref); !res.ok() {
		return fmt.Errorf("failed to checkout ref %q:\nstdout:\n%s\nstderr:\n%s", ref, res.Stdout, res.Stderr)
	}
	return nil
}

// CheckoutBranch updates dir to the tip of branch, creating a local branch
// tracking origin/<branch> when needed, then fast-forwarding.
func CheckoutBranch(ctx context.Context, dir, branch string) error {
	logger.Info("Updating checkout", logger.String("branch", branch))
	FetchAll(ctx, dir)
	Unshallow(ctx, dir)

	if res := runGit(ctx, dir, "checkout", branch); !res.ok() {
		if res := runGit(ctx, dir, "checkout", "-B", branch, "origin/"+branch); !res.ok() {
			return fmt.Errorf("failed to checkout branch %q:\nstdout:\n%s\nstderr:\n%s", branch, res.Stdout, res.Stderr)
		}
	}
	runGit(ctx, dir, "pull", "--ff-only")
	return nil
}

// RecentCommits lists up to limit commit SHAs reachable from HEAD, newest first.
func RecentCommits(dir string, limit int) ([]string, error) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open checkout: %w", err)
	}
	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	iter, err := repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return nil, fmt.Errorf("failed to walk history: %w", err)
	}
	defer iter.Close()

	var shas []string
	for len(shas) < limit {
		commit, err := iter.Next()
		if err != nil {
			break
		}
		shas = append(shas, commit.Hash.String())
	}
	return shas, nil
}
