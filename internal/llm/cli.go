package llm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// killGrace bounds how long Complete waits for output pipes after the tool
// has been killed.
const killGrace = 500 * time.Millisecond

// MaxArgPromptBytes is the largest prompt passed as an argument. Linux rejects
// any single argv string over 128 KiB, so longer prompts go to stdin.
const MaxArgPromptBytes = 96 * 1024

// CLIOptions configures a CLIBackend.
type CLIOptions struct {
	Tool  string
	Args  []string
	Model string
	// PromptStdin writes the prompt to the tool's stdin instead of passing it
	// as the last argument.
	PromptStdin bool
	Dir         string
	Env         []string
	LookPath    func(file string) (string, error)
	Logger      *zap.Logger
}

// CLIBackend runs an external command such as `gemini -m <model> -p <prompt>`.
type CLIBackend struct {
	opts     CLIOptions
	lookPath func(string) (string, error)
	logger   *zap.Logger
}

func NewCLIBackend(opts CLIOptions) *CLIBackend {
	lookPath := opts.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CLIBackend{opts: opts, lookPath: lookPath, logger: logger}
}

func (b *CLIBackend) Name() string {
	return b.opts.Tool
}

// Command returns the argument list passed to the tool for prompt.
func (b *CLIBackend) Command(prompt string) []string {
	var args []string
	if b.opts.Model != "" {
		args = append(args, "-m", b.opts.Model)
	}
	args = append(args, b.opts.Args...)
	if !b.promptOnStdin(prompt) {
		args = append(args, prompt)
	}
	return args
}

func (b *CLIBackend) promptOnStdin(prompt string) bool {
	return b.opts.PromptStdin || len(prompt) > MaxArgPromptBytes
}

// Complete runs the tool once. The whole process group is killed when ctx
// is done.
func (b *CLIBackend) Complete(ctx context.Context, prompt string) (string, error) {
	path, err := b.lookPath(b.opts.Tool)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrToolNotFound, b.opts.Tool, err)
	}

	cmd := exec.CommandContext(ctx, path, b.Command(prompt)...)
	cmd.Dir = b.opts.Dir
	if len(b.opts.Env) > 0 {
		cmd.Env = b.opts.Env
	}
	stdin := b.promptOnStdin(prompt)
	if stdin {
		cmd.Stdin = strings.NewReader(prompt)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	configureKill(cmd)
	cmd.WaitDelay = killGrace

	start := time.Now()
	runErr := cmd.Run()
	b.logger.Debug("generation tool finished",
		zap.String("tool", path),
		zap.Bool("stdin", stdin),
		zap.Int("prompt_bytes", len(prompt)),
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(runErr))

	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w after %s", ErrTimeout, time.Since(start).Round(time.Millisecond))
		}
		return "", ctxErr
	}
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			return "", &ExitError{
				Tool:   b.opts.Tool,
				Code:   exitErr.ExitCode(),
				Stderr: strings.TrimSpace(stderr.String()),
			}
		}
		return "", fmt.Errorf("failed to run %s: %w", b.opts.Tool, runErr)
	}

	out := strings.TrimSpace(stdout.String())
	if out == "" {
		return "", ErrEmptyOutput
	}
	return out, nil
}
