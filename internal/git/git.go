// Package git is the version-control side of the hook: repository detection,
// change collection and the single stage-and-commit.
package git

import (
	"context"
	"strings"

	"github.com/samzong/autocommit/internal/gitcmd"
	"github.com/samzong/autocommit/internal/gitutil"
	"go.uber.org/zap"
)

// Options configures a Client.
type Options struct {
	Dir    string
	Env    []string
	Logger *zap.Logger
}

// Client runs git in one working directory.
type Client struct {
	runner gitcmd.Runner
	dir    string
	logger *zap.Logger
}

// RepositoryContext describes the directory the hook was pointed at.
type RepositoryContext struct {
	Path         string
	Root         string
	IsRepository bool
}

func NewClient(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	// Status and diff must not refresh .git/index behind the user's back.
	env := append([]string{"GIT_OPTIONAL_LOCKS=0"}, opts.Env...)
	return &Client{
		runner: gitcmd.Runner{Dir: opts.Dir, Env: env, Logger: logger},
		dir:    opts.Dir,
		logger: logger,
	}
}

// Detect reports whether the client's directory is inside a git working tree.
// It never mutates the repository.
func (c *Client) Detect(ctx context.Context) RepositoryContext {
	repo := RepositoryContext{Path: c.dir}
	if repo.Path == "" {
		repo.Path = "."
	}

	result, err := c.runner.Run(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		c.logger.Debug("not a git working tree",
			zap.String("dir", repo.Path),
			zap.String("stderr", result.StderrString(true)))
		return repo
	}

	repo.Root = result.StdoutString(true)
	repo.IsRepository = repo.Root != ""
	return repo
}

// IsGitRepository is a convenience wrapper around Detect.
func (c *Client) IsGitRepository(ctx context.Context) bool {
	return c.Detect(ctx).IsRepository
}

// HasChanges reports whether the working tree has modified, added, deleted or
// untracked files.
func (c *Client) HasChanges(ctx context.Context) (bool, error) {
	entries, err := c.Status(ctx)
	if err != nil {
		return false, err
	}
	return len(entries) > 0, nil
}

// AddAll stages every working-tree change, including deletions and untracked files.
func (c *Client) AddAll(ctx context.Context) error {
	result, err := c.runner.Run(ctx, "add", "-A")
	if err != nil {
		return gitutil.WrapGitError("git add -A failed", result, err)
	}
	return nil
}

// Commit creates a commit with message stored byte for byte: the message is
// read from stdin and no cleanup mode (commit.cleanup included) applies.
func (c *Client) Commit(ctx context.Context, message string, args ...string) error {
	commitArgs := append([]string{"commit", "--cleanup=verbatim", "-F", "-"}, args...)
	result, err := c.runner.RunWithStdin(ctx, strings.NewReader(message), commitArgs...)
	if err != nil {
		return gitutil.WrapGitError("git commit failed", result, err)
	}
	return nil
}

// LastCommitSummary returns `git log -1 --oneline`.
func (c *Client) LastCommitSummary(ctx context.Context) (string, error) {
	result, err := c.runner.Run(ctx, "log", "-1", "--oneline", "--no-decorate")
	if err != nil {
		return "", gitutil.WrapGitError("git log failed", result, err)
	}
	return result.StdoutString(true), nil
}

func (c *Client) hasHead(ctx context.Context) bool {
	_, err := c.runner.Run(ctx, "rev-parse", "--verify", "--quiet", "HEAD")
	return err == nil
}
