package gitcmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Runner executes git commands with shared logging and output handling.
type Runner struct {
	Dir    string
	Env    []string
	Logger *zap.Logger
}

// Result contains captured stdout/stderr for a git command.
type Result struct {
	Stdout []byte
	Stderr []byte
}

func (r Result) StdoutString(trim bool) string {
	output := string(r.Stdout)
	if trim {
		return strings.TrimSpace(output)
	}
	return output
}

func (r Result) StderrString(trim bool) string {
	output := string(r.Stderr)
	if trim {
		return strings.TrimSpace(output)
	}
	return output
}

func (r Runner) withDefaults() Runner {
	if r.Logger == nil {
		r.Logger = zap.NewNop()
	}
	return r
}

func (r Runner) command(ctx context.Context, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, "git", args...)
	if r.Dir != "" {
		cmd.Dir = r.Dir
	}
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}
	return cmd
}

// Run executes a git command and captures stdout/stderr.
func (r Runner) Run(ctx context.Context, args ...string) (Result, error) {
	return r.run(ctx, nil, args)
}

// RunWithStdin executes a git command feeding stdin and captures stdout/stderr.
func (r Runner) RunWithStdin(ctx context.Context, stdin io.Reader, args ...string) (Result, error) {
	return r.run(ctx, stdin, args)
}

func (r Runner) run(ctx context.Context, stdin io.Reader, args []string) (Result, error) {
	r = r.withDefaults()
	cmd := r.command(ctx, args...)
	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.Stdin = stdin
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	start := time.Now()
	err := cmd.Run()
	r.Logger.Debug("git",
		zap.String("args", strings.Join(args, " ")),
		zap.String("dir", r.Dir),
		zap.Int("exit", ExitCode(err)),
		zap.Duration("elapsed", time.Since(start)))

	return Result{Stdout: outBuf.Bytes(), Stderr: errBuf.Bytes()}, err
}

// ExitCode reports the process exit status carried by err: 0 for nil, the
// status for an *exec.ExitError, and -1 when the process never ran.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
