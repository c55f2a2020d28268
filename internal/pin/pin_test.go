package pin

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

// newTestRepo creates a local repository with a few commits and tags.
func newTestRepo(t *testing.T) (string, []string) {
	t.Helper()
	dir := t.TempDir()

	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	sig := &object.Signature{
		Name:  "test",
		Email: "test@example.com",
		When:  time.Now(),
	}

	var shas []string
	for i, content := range []string{"one", "two", "three"} {
		path := filepath.Join(dir, "file.txt")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		_, err = wt.Add("file.txt")
		require.NoError(t, err)
		hash, err := wt.Commit("commit "+content, &git.CommitOptions{Author: sig})
		require.NoError(t, err)
		shas = append(shas, hash.String())

		if i == 1 {
			_, err = repo.CreateTag("3.0.0", hash, nil)
			require.NoError(t, err)
		}
		if i == 2 {
			_, err = repo.CreateTag("3.1.0", hash, nil)
			require.NoError(t, err)
			_, err = repo.CreateTag("4.0.0-rc.1", hash, nil)
			require.NoError(t, err)
		}
	}
	return dir, shas
}

func TestHeadSHA(t *testing.T) {
	dir, shas := newTestRepo(t)

	sha, err := HeadSHA(dir)
	require.NoError(t, err)
	require.Equal(t, shas[len(shas)-1], sha)
}

func TestListTags(t *testing.T) {
	dir, _ := newTestRepo(t)

	tags, err := ListTags(dir)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"3.0.0", "3.1.0", "4.0.0-rc.1"}, tags)
}

func TestRecentCommits(t *testing.T) {
	dir, shas := newTestRepo(t)

	got, err := RecentCommits(dir, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Newest first
	require.Equal(t, shas[2], got[0])
	require.Equal(t, shas[1], got[1])
}

func TestEnsureRepoOpensExisting(t *testing.T) {
	dir, _ := newTestRepo(t)

	repo, err := EnsureRepo(context.Background(), dir, "https://example.invalid/repo.git")
	require.NoError(t, err)
	require.NotNil(t, repo)
}

func TestCheckoutRefByTag(t *testing.T) {
	dir, shas := newTestRepo(t)

	require.NoError(t, CheckoutRef(context.Background(), dir, "3.0.0"))
	sha, err := HeadSHA(dir)
	require.NoError(t, err)
	require.Equal(t, shas[1], sha)
}

func TestValidateConflictingPolicies(t *testing.T) {
	_, err := Resolve(context.Background(), Options{
		RepoURL:   "https://example.invalid/repo.git",
		RepoDir:   t.TempDir(),
		SHA:       "abc123",
		LatestTag: true,
	})
	require.ErrorIs(t, err, ErrConflictingPolicies)
}

func TestWrappedVersionFromVersionFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "superset"), 0o755))
	content := `VERSION = "4.1.2"` + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "superset", "version.py"), []byte(content), 0o644))

	require.Equal(t, "4.1.2", WrappedVersion(dir))
}

func TestWrappedVersionFromPyproject(t *testing.T) {
	dir := t.TempDir()
	content := "[project]\nname = \"apache-superset\"\nversion = \"5.0.0\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pyproject.toml"), []byte(content), 0o644))

	require.Equal(t, "5.0.0", WrappedVersion(dir))
}

func TestWrappedVersionUnknown(t *testing.T) {
	require.Equal(t, "unknown", WrappedVersion(t.TempDir()))
}

func TestIsShallowOnFullRepo(t *testing.T) {
	dir, _ := newTestRepo(t)
	require.False(t, IsShallow(context.Background(), dir))
}
