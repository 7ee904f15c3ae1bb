// Package workflow sequences the stop hook: detect, collect, generate, commit.
package workflow

import (
	"context"

	"github.com/samzong/autocommit/internal/git"
	"github.com/samzong/autocommit/internal/llm"
)

// Repository abstracts git operations for testability.
type Repository interface {
	Detect(ctx context.Context) git.RepositoryContext
	HasChanges(ctx context.Context) (bool, error)
	CollectChanges(ctx context.Context) (git.ChangeSet, error)
	AddAll(ctx context.Context) error
	Commit(ctx context.Context, message string, args ...string) error
	LastCommitSummary(ctx context.Context) (string, error)
}

// MessageGenerator abstracts commit message generation for testability.
type MessageGenerator interface {
	Generate(ctx context.Context, req llm.Request) llm.Result
}
