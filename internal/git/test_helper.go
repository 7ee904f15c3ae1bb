//go:build !prod

package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// TestRepo is a throwaway repository rooted in t.TempDir.
type TestRepo struct {
	t   *testing.T
	Dir string
}

// RequireGit skips the test when no git binary is on PATH.
func RequireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
}

// IsolateGitEnv points git at empty global/system configuration so the
// developer's hooks, signing keys and templates cannot leak into tests.
func IsolateGitEnv(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("GIT_CONFIG_NOSYSTEM", "1")
	t.Setenv("GIT_CONFIG_GLOBAL", filepath.Join(home, ".gitconfig"))
	t.Setenv("GIT_TERMINAL_PROMPT", "0")
	t.Setenv("LC_ALL", "C")
}

// NewTempDir returns an empty directory that is guaranteed not to sit inside
// a git working tree.
func NewTempDir(t *testing.T) string {
	t.Helper()
	RequireGit(t)
	dir := t.TempDir()
	if NewClient(Options{Dir: dir}).IsGitRepository(context.Background()) {
		t.Skipf("SAFETY: temp dir %s is inside a git working tree", dir)
	}
	return dir
}

// NewTestRepo initializes an isolated repository with a configured identity.
func NewTestRepo(t *testing.T) *TestRepo {
	t.Helper()
	IsolateGitEnv(t)
	dir := NewTempDir(t)

	repo := &TestRepo{t: t, Dir: dir}
	repo.Git("init", "-q")
	repo.Git("config", "user.name", "Test")
	repo.Git("config", "user.email", "test@test.com")
	repo.Git("config", "commit.gpgsign", "false")
	return repo
}

// Git runs git in the repository and fails the test on error.
func (r *TestRepo) Git(args ...string) string {
	r.t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = r.Dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		r.t.Fatalf("git %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return strings.TrimSpace(string(out))
}

// WriteFile writes content to a path relative to the repository root.
func (r *TestRepo) WriteFile(rel, content string) {
	r.t.Helper()
	path := filepath.Join(r.Dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		r.t.Fatalf("mkdir %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		r.t.Fatalf("write %s: %v", rel, err)
	}
}

// CommitAll stages everything and commits it with message.
func (r *TestRepo) CommitAll(message string) {
	r.t.Helper()
	r.Git("add", "-A")
	r.Git("commit", "-q", "-m", message)
}

// CommitCount returns the number of commits reachable from HEAD.
func (r *TestRepo) CommitCount() int {
	r.t.Helper()
	cmd := exec.Command("git", "rev-list", "--count", "HEAD")
	cmd.Dir = r.Dir
	out, err := cmd.Output()
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(out)))
	if err != nil {
		r.t.Fatalf("rev-list --count: %v", err)
	}
	return n
}

// HeadMessage returns the full message of HEAD.
func (r *TestRepo) HeadMessage() string {
	r.t.Helper()
	return r.Git("log", "-1", "--format=%B")
}
