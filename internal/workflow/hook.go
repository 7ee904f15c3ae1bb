package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/samzong/autocommit/internal/config"
	"github.com/samzong/autocommit/internal/formatter"
	"github.com/samzong/autocommit/internal/git"
	"github.com/samzong/autocommit/internal/llm"
	"github.com/samzong/autocommit/internal/ui"
	"go.uber.org/zap"
)

var (
	ErrNotRepository = errors.New("not a git repository")
	ErrCommitFailed  = errors.New("commit failed")
)

// HookOptions configures a HookFlow.
type HookOptions struct {
	DefaultMessage string
	Language       string
	NoVerify       bool
	// DryRun stops after message generation and prints the message instead
	// of staging and committing.
	DryRun bool
	// FailOnFallback makes a commit with the default message exit 1.
	FailOnFallback bool
	Logger         *zap.Logger
	OutWriter      io.Writer
	ErrWriter      io.Writer
}

// Report is everything a run decided.
type Report struct {
	Outcome        Outcome
	Repository     git.RepositoryContext
	Changes        git.ChangeSet
	Generation     llm.Result
	Message        string
	CommitSummary  string
	DryRun         bool
	FailOnFallback bool
	Transitions    []State
	Err            error
}

// ExitCode is the process exit status for the run.
func (r Report) ExitCode() int {
	if r.FailOnFallback && r.Outcome == OutcomeCommittedDefault && !r.DryRun {
		return 1
	}
	return r.Outcome.ExitCode()
}

// HookFlow runs the stop-hook state machine once.
type HookFlow struct {
	repo      Repository
	generator MessageGenerator
	opts      HookOptions
	logger    *zap.Logger

	report    Report
	committed bool
}

func NewHookFlow(repo Repository, generator MessageGenerator, opts HookOptions) *HookFlow {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(opts.DefaultMessage) == "" {
		opts.DefaultMessage = config.DefaultCommitMessage
	}
	if opts.OutWriter == nil {
		opts.OutWriter = io.Discard
	}
	if opts.ErrWriter == nil {
		opts.ErrWriter = io.Discard
	}
	return &HookFlow{repo: repo, generator: generator, opts: opts, logger: logger}
}

// Run drives the flow from Start to a terminal state. The returned error is
// non-nil only when ctx was canceled before the run could finish; every
// other failure is classified in Report.Outcome.
func (f *HookFlow) Run(ctx context.Context) (Report, error) {
	f.report = Report{DryRun: f.opts.DryRun, FailOnFallback: f.opts.FailOnFallback}
	f.committed = false

	state := StateStart
	f.report.Transitions = append(f.report.Transitions, state)
	for !state.Terminal() {
		if err := ctx.Err(); err != nil {
			f.logger.Warn("hook interrupted", zap.Stringer("state", state), zap.Error(err))
			f.report.Err = err
			return f.report, err
		}

		next := f.step(ctx, state)
		f.logger.Debug("transition", zap.Stringer("from", state), zap.Stringer("to", next))
		f.report.Transitions = append(f.report.Transitions, next)
		state = next
	}

	f.report.Outcome = f.outcome(state)
	return f.report, nil
}

func (f *HookFlow) step(ctx context.Context, state State) State {
	switch state {
	case StateStart:
		return StateCheckRepo
	case StateCheckRepo:
		return f.checkRepo(ctx)
	case StateCheckChanges:
		return f.checkChanges(ctx)
	case StateCollectDiff:
		return f.collectDiff(ctx)
	case StateGenerateMessage:
		return f.generateMessage(ctx)
	case StateCommit:
		return f.commit(ctx)
	default:
		panic(fmt.Sprintf("workflow: no transition from %s", state))
	}
}

func (f *HookFlow) checkRepo(ctx context.Context) State {
	f.report.Repository = f.repo.Detect(ctx)
	if !f.report.Repository.IsRepository {
		f.report.Err = fmt.Errorf("%w: %s", ErrNotRepository, f.report.Repository.Path)
		f.logger.Error("not a git repository, skipping commit", zap.String("dir", f.report.Repository.Path))
		return StateNoRepository
	}
	f.logger.Debug("repository detected", zap.String("root", f.report.Repository.Root))
	return StateCheckChanges
}

func (f *HookFlow) checkChanges(ctx context.Context) State {
	has, err := f.repo.HasChanges(ctx)
	if err != nil {
		f.report.Err = fmt.Errorf("%w: failed to read status: %w", ErrNotRepository, err)
		f.logger.Error("failed to read repository status", zap.Error(err))
		return StateNoRepository
	}
	if !has {
		f.logger.Info("no changes to commit")
		return StateNoChanges
	}
	return StateCollectDiff
}

func (f *HookFlow) collectDiff(ctx context.Context) State {
	set, err := f.repo.CollectChanges(ctx)
	if err != nil {
		f.logger.Warn("diff collection incomplete, continuing", zap.Error(err))
	}
	set.HasChanges = true
	f.report.Changes = set
	f.logger.Info("changes detected", zap.Int("files", len(set.Files)))
	return StateGenerateMessage
}

func (f *HookFlow) generateMessage(ctx context.Context) State {
	sp := ui.NewSpinner(f.opts.ErrWriter, "Generating commit message...")
	sp.Start()
	result := f.generator.Generate(ctx, llm.Request{
		Diff:     f.report.Changes.Diff,
		Stat:     f.report.Changes.Stat,
		Status:   f.report.Changes.Status,
		Files:    f.report.Changes.Files,
		Language: f.opts.Language,
	})
	sp.Stop()

	f.report.Generation = result
	if result.OK() {
		f.report.Message = result.Message
		f.logger.Info("commit message generated", zap.Duration("elapsed", result.Elapsed))
		if !formatter.IsConventional(result.Message) {
			f.logger.Warn("generated message is not in Conventional Commits form, using it as is",
				zap.String("subject", firstLine(result.Message)))
		}
	} else {
		f.report.Message = f.opts.DefaultMessage
		f.logger.Warn("message generation failed, using default message",
			zap.Stringer("reason", result.Reason),
			zap.Error(result.Err),
			zap.String("message", f.opts.DefaultMessage))
	}

	if f.opts.DryRun {
		fmt.Fprintln(f.opts.OutWriter, f.report.Message)
		f.logger.Info("dry run, nothing staged or committed")
		return StateDone
	}
	return StateCommit
}

func (f *HookFlow) commit(ctx context.Context) State {
	if f.committed {
		panic("workflow: commit attempted twice")
	}
	f.committed = true

	if err := f.repo.AddAll(ctx); err != nil {
		f.report.Err = fmt.Errorf("%w: %w", ErrCommitFailed, err)
		f.logger.Error("failed to stage changes", zap.Error(err))
		return StateCommitFailed
	}

	var args []string
	if f.opts.NoVerify {
		args = append(args, "--no-verify")
	}
	if err := f.repo.Commit(ctx, f.report.Message, args...); err != nil {
		f.report.Err = fmt.Errorf("%w: %w", ErrCommitFailed, err)
		f.logger.Error("commit failed", zap.Error(err))
		return StateCommitFailed
	}

	summary, err := f.repo.LastCommitSummary(ctx)
	if err != nil {
		f.logger.Warn("failed to read new commit", zap.Error(err))
	}
	f.report.CommitSummary = summary
	if summary != "" {
		fmt.Fprintln(f.opts.OutWriter, summary)
	}

	if dirty, err := f.repo.HasChanges(ctx); err == nil && dirty {
		f.logger.Warn("working tree still has changes after commit")
	}
	f.logger.Info("committed", zap.String("subject", firstLine(f.report.Message)))
	return StateDone
}

func (f *HookFlow) outcome(state State) Outcome {
	switch state {
	case StateNoRepository:
		return OutcomeNoRepository
	case StateNoChanges:
		return OutcomeNoChanges
	case StateCommitFailed:
		return OutcomeCommitFailed
	case StateDone:
		if f.report.Generation.OK() {
			return OutcomeCommittedGenerated
		}
		return OutcomeCommittedDefault
	default:
		return OutcomeUnknown
	}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
