package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/samzong/autocommit/internal/config"
	"github.com/samzong/autocommit/internal/git"
	"github.com/samzong/autocommit/internal/hook"
	"github.com/samzong/autocommit/internal/llm"
	"github.com/samzong/autocommit/internal/logger"
	"github.com/samzong/autocommit/internal/ui"
	"github.com/samzong/autocommit/internal/workflow"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// exitCodeError carries a non-zero exit status for an outcome that has
// already been logged.
type exitCodeError struct {
	code int
	err  error
}

func (e *exitCodeError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return fmt.Sprintf("exit status %d", e.code)
}

func (e *exitCodeError) Unwrap() error {
	return e.err
}

type rootOptions struct {
	cfgFile string
	dir     string
	verbose bool
	stdin   io.Reader
	v       *viper.Viper
}

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"language":          "language",
	"default-message":   "default_message",
	"timeout":           "timeout_seconds",
	"max-diff-chars":    "max_diff_chars",
	"max-context-chars": "max_context_chars",
	"provider":          "provider",
	"tool":              "tool",
	"model":             "model",
	"prompt-template":   "prompt_template",
	"prompt-stdin":      "prompt_stdin",
	"no-verify":         "no_verify",
	"dry-run":           "dry_run",
	"fail-on-fallback":  "fail_on_fallback",
}

// NewRootCmd builds the command tree reading the hook payload from stdin.
func NewRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{stdin: stdin, v: config.New()}

	rootCmd := &cobra.Command{
		Use:   "autocommit",
		Short: "autocommit - commit session changes with a generated message",
		Long: `autocommit runs as a session-stop hook. When the working directory has ` +
			`uncommitted changes it asks a text-generation tool for a Conventional Commits ` +
			`message and commits everything, falling back to a default message when ` +
			`generation fails.`,
		Version:       fmt.Sprintf("%s (built at %s)", Version, BuildTime),
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHook(cmd, opts)
		},
	}
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.cfgFile, "config", "",
		"Configuration file path (default is $XDG_CONFIG_HOME/autocommit/config.yaml)")
	pf.BoolVarP(&opts.verbose, "verbose", "V", false, "Log every git command and generation detail")

	rootCmd.Flags().StringVarP(&opts.dir, "dir", "C", "", "Working directory (default is the hook payload cwd, then .)")

	pf.String("language", config.DefaultLanguage, "Language of the generated commit message")
	pf.String("default-message", config.DefaultCommitMessage, "Commit message used when generation fails")
	pf.Int("timeout", config.DefaultTimeoutSeconds, "Generation timeout in seconds")
	pf.Int("max-diff-chars", config.DefaultMaxDiffChars, "Maximum diff characters sent for generation")
	pf.Int("max-context-chars", config.DefaultMaxContextChars, "Maximum characters of status, stat and file list each sent for generation")
	pf.String("provider", config.DefaultProvider, "Generation backend: cli or openai")
	pf.String("tool", config.DefaultTool, "Generation command for the cli provider")
	pf.String("model", "", "Model name (default depends on provider and tool)")
	pf.String("prompt-template", config.DefaultPromptTemplate, "Builtin template name or template file path")
	pf.Bool("prompt-stdin", false, "Send the prompt on stdin instead of as an argument")
	pf.Bool("no-verify", false, "Skip pre-commit and commit-msg hooks")
	pf.Bool("dry-run", false, "Generate the message only, do not stage or commit")
	pf.Bool("fail-on-fallback", false, "Exit 1 when the default message had to be used")

	for flag, key := range flagKeys {
		_ = opts.v.BindPFlag(key, pf.Lookup(flag))
	}

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(opts))
	rootCmd.AddCommand(newCompletionCmd(rootCmd))
	return rootCmd
}

// RootCmd returns the command tree bound to the process streams.
func RootCmd() *cobra.Command {
	return NewRootCmd(os.Stdin, os.Stdout, os.Stderr)
}

// Execute runs the command line and returns the process exit status.
func Execute(ctx context.Context) int {
	return execute(ctx, RootCmd())
}

func execute(ctx context.Context, rootCmd *cobra.Command) int {
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	if ctx.Err() != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "\nOperation cancelled")
		return 130
	}

	var exitErr *exitCodeError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
	return 1
}

func loadConfig(opts *rootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.v, opts.cfgFile)
	if err != nil {
		return nil, err
	}
	if opts.verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

func runHook(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	log := logger.New(cmd.ErrOrStderr(), cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	payload := readPayload(opts.stdin, log)
	dir := opts.dir
	if dir == "" {
		dir = payload.WorkDir(".")
	}
	log.Debug("hook started",
		zap.String("dir", dir),
		zap.String("event", payload.HookEventName),
		zap.String("session", payload.SessionID),
		zap.Bool("stop_hook_active", payload.StopHookActive))

	generator, err := llm.NewGeneratorFromConfig(cfg, dir, log)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	flow := workflow.NewHookFlow(git.NewClient(git.Options{Dir: dir, Logger: log}), generator, workflow.HookOptions{
		DefaultMessage: cfg.DefaultMessage,
		Language:       cfg.Language,
		NoVerify:       cfg.NoVerify,
		DryRun:         cfg.DryRun,
		FailOnFallback: cfg.FailOnFallback,
		Logger:         log,
		OutWriter:      cmd.OutOrStdout(),
		ErrWriter:      cmd.ErrOrStderr(),
	})

	report, err := flow.Run(cmd.Context())
	if err != nil {
		return err
	}

	code := report.ExitCode()
	log.Debug("hook finished",
		zap.Stringer("outcome", report.Outcome),
		zap.Int("exit_code", code))
	if code != 0 {
		return &exitCodeError{code: code, err: report.Err}
	}
	return nil
}

// readPayload parses the hook event from stdin unless stdin is a terminal.
func readPayload(stdin io.Reader, log *zap.Logger) hook.Payload {
	if stdin == nil || ui.IsTerminal(stdin) {
		return hook.Payload{}
	}
	payload, err := hook.Parse(stdin)
	if err != nil {
		log.Warn("ignoring hook payload", zap.Error(err))
	}
	return payload
}
