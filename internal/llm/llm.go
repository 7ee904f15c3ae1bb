// Package llm turns a change set into a commit message through an external
// text-generation backend under a hard deadline.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samzong/autocommit/internal/formatter"
	"go.uber.org/zap"
)

var (
	ErrToolNotFound = errors.New("generation tool not found")
	ErrTimeout      = errors.New("generation timed out")
	ErrEmptyOutput  = errors.New("generation returned empty output")
)

// ExitError is a generation tool that ran and exited non-zero.
type ExitError struct {
	Tool   string
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s exited with status %d", e.Tool, e.Code)
	}
	return fmt.Sprintf("%s exited with status %d: %s", e.Tool, e.Code, e.Stderr)
}

// Reason classifies why generation produced no message.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonTimeout
	ReasonNonZeroExit
	ReasonEmptyOutput
	ReasonToolNotFound
	ReasonCanceled
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonTimeout:
		return "timeout"
	case ReasonNonZeroExit:
		return "non-zero exit"
	case ReasonEmptyOutput:
		return "empty output"
	case ReasonToolNotFound:
		return "tool not found"
	case ReasonCanceled:
		return "canceled"
	default:
		return fmt.Sprintf("Reason(%d)", int(r))
	}
}

// Result is the outcome of one Generate call. Message is set exactly when
// Reason is ReasonNone.
type Result struct {
	Message string
	Reason  Reason
	Err     error
	Elapsed time.Duration
}

// OK reports whether a message was generated.
func (r Result) OK() bool {
	return r.Reason == ReasonNone
}

// Backend produces text for a prompt. Implementations must return promptly
// once ctx is done.
type Backend interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}

// Request is the change description handed to the generator.
type Request struct {
	Diff     string
	Stat     string
	Status   string
	Files    []string
	Language string
}

// Options configures a Generator.
type Options struct {
	Language     string
	Timeout      time.Duration
	MaxDiffChars int
	// MaxContextChars caps Status, Stat and Files each; zero means MaxDiffChars.
	MaxContextChars int
	// Template is prompt template text; empty means the builtin default.
	Template string
	Logger   *zap.Logger
}

// Generator runs a Backend once per Generate call.
type Generator struct {
	backend Backend
	opts    Options
	logger  *zap.Logger
}

func NewGenerator(backend Backend, opts Options) *Generator {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Template == "" {
		opts.Template = formatter.DefaultTemplate()
	}
	return &Generator{backend: backend, opts: opts, logger: logger}
}

// Generate asks the backend for a commit message. It never retries and never
// returns an error: every failure is reported through Result.Reason.
func (g *Generator) Generate(ctx context.Context, req Request) Result {
	prompt := g.BuildPrompt(req)

	callCtx := ctx
	if g.opts.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, g.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := g.backend.Complete(callCtx, prompt)
	elapsed := time.Since(start)

	if err == nil {
		if message := strings.TrimSpace(text); message != "" {
			return Result{Message: message, Elapsed: elapsed}
		}
		err = ErrEmptyOutput
	}

	reason := classify(ctx, err)
	g.logger.Debug("generation failed",
		zap.String("backend", g.backend.Name()),
		zap.Stringer("reason", reason),
		zap.Duration("elapsed", elapsed),
		zap.Error(err))
	return Result{Reason: reason, Err: err, Elapsed: elapsed}
}

// BuildPrompt renders the configured template for req, truncating the diff to
// the size budget.
func (g *Generator) BuildPrompt(req Request) string {
	diff, truncated := formatter.TruncateDiff(req.Diff, g.opts.MaxDiffChars)
	if truncated {
		g.logger.Warn("diff truncated for generation",
			zap.Int("limit", g.opts.MaxDiffChars),
			zap.Int("bytes", len(req.Diff)))
	}

	language := req.Language
	if language == "" {
		language = g.opts.Language
	}

	data := formatter.TemplateData{
		Language: language,
		Types:    formatter.TypeList(),
		Status:   g.capContext("status", req.Status),
		Stat:     g.capContext("stat", req.Stat),
		Files:    g.capContext("files", strings.Join(req.Files, "\n")),
		Diff:     diff,
	}

	prompt, err := formatter.RenderTemplate(g.opts.Template, data)
	if err != nil {
		g.logger.Warn("prompt template failed, using simple prompt", zap.Error(err))
		return formatter.BuildSimplePrompt(data)
	}
	return prompt
}

func (g *Generator) capContext(field, text string) string {
	limit := g.opts.MaxContextChars
	if limit <= 0 {
		limit = g.opts.MaxDiffChars
	}
	capped, truncated := formatter.TruncateDiff(text, limit)
	if truncated {
		g.logger.Debug("prompt context truncated",
			zap.String("field", field),
			zap.Int("limit", limit),
			zap.Int("bytes", len(text)))
	}
	return capped
}

func classify(parent context.Context, err error) Reason {
	var exitErr *ExitError
	switch {
	case errors.Is(err, ErrToolNotFound):
		return ReasonToolNotFound
	case parent.Err() != nil && errors.Is(parent.Err(), context.Canceled):
		return ReasonCanceled
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout
	case errors.Is(err, ErrEmptyOutput):
		return ReasonEmptyOutput
	case errors.As(err, &exitErr):
		return ReasonNonZeroExit
	default:
		// Transport and API failures count as the tool failing.
		return ReasonNonZeroExit
	}
}
