package git

import (
	"context"
	"errors"
	"strings"

	"github.com/samzong/autocommit/internal/gitcmd"
	"github.com/samzong/autocommit/internal/gitutil"
	"go.uber.org/zap"
)

// ChangeSet is every uncommitted change in the working tree, staged, unstaged
// and untracked alike, rendered as text.
type ChangeSet struct {
	HasChanges bool
	Status     string
	Stat       string
	Diff       string
	Files      []string
}

var diffFlags = []string{"--no-color", "--no-ext-diff"}

// CollectChanges gathers status, stat and diff text for all uncommitted
// changes without touching the index. Tracked changes come first in git's own
// path order, then one diff per untracked file in lexical order.
//
// A failing step does not abort collection: the partial ChangeSet is returned
// together with the joined errors.
func (c *Client) CollectChanges(ctx context.Context) (ChangeSet, error) {
	entries, err := c.Status(ctx)
	if err != nil {
		return ChangeSet{}, err
	}

	set := ChangeSet{
		HasChanges: len(entries) > 0,
		Status:     formatStatus(entries),
		Files:      statusPaths(entries),
	}

	var errs []error
	var diff strings.Builder

	if c.hasHead(ctx) {
		stat, err := c.diffText(ctx, "diff", "HEAD", "--stat")
		errs = appendErr(errs, err)
		set.Stat = strings.TrimRight(stat, "\n")

		tracked, err := c.diffText(ctx, "diff", "HEAD")
		errs = appendErr(errs, err)
		diff.WriteString(tracked)
	} else {
		// Unborn branch: nothing to diff against, so show index then worktree.
		stat, err := c.diffText(ctx, "diff", "--cached", "--stat")
		errs = appendErr(errs, err)
		set.Stat = strings.TrimRight(stat, "\n")

		staged, err := c.diffText(ctx, "diff", "--cached")
		errs = appendErr(errs, err)
		diff.WriteString(staged)

		unstaged, err := c.diffText(ctx, "diff")
		errs = appendErr(errs, err)
		diff.WriteString(unstaged)
	}

	// Porcelain paths are relative to the top level, not to c.dir.
	rootRunner := c.runner
	if root := c.Detect(ctx).Root; root != "" {
		rootRunner.Dir = root
	}
	for _, e := range entries {
		if !e.Untracked() {
			continue
		}
		text, err := untrackedDiff(ctx, rootRunner, e.Path)
		errs = appendErr(errs, err)
		diff.WriteString(text)
	}

	set.Diff = diff.String()
	c.logger.Debug("collected changes",
		zap.Int("files", len(set.Files)),
		zap.Int("diff_bytes", len(set.Diff)))

	return set, errors.Join(errs...)
}

func (c *Client) diffText(ctx context.Context, args ...string) (string, error) {
	full := append(append([]string{}, args...), diffFlags...)
	result, err := c.runner.Run(ctx, full...)
	if err != nil {
		return "", gitutil.WrapGitError("git "+strings.Join(args, " ")+" failed", result, err)
	}
	return result.StdoutString(false), nil
}

// untrackedDiff renders a new file as a diff against /dev/null. With
// --no-index git exits 1 when the inputs differ, which is always the case here.
func untrackedDiff(ctx context.Context, runner gitcmd.Runner, path string) (string, error) {
	args := append([]string{"diff", "--no-index"}, diffFlags...)
	args = append(args, "--", "/dev/null", path)
	result, err := runner.Run(ctx, args...)
	if err != nil && gitcmd.ExitCode(err) != 1 {
		return "", gitutil.WrapGitError("git diff --no-index "+path+" failed", result, err)
	}
	return result.StdoutString(false), nil
}

func appendErr(errs []error, err error) []error {
	if err != nil {
		return append(errs, err)
	}
	return errs
}
