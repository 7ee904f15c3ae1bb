package llm

import (
	"fmt"

	"github.com/samzong/autocommit/internal/config"
	"github.com/samzong/autocommit/internal/formatter"
	"go.uber.org/zap"
)

// NewBackend builds the backend selected by cfg.Provider.
func NewBackend(cfg *config.Config, dir string, logger *zap.Logger) (Backend, error) {
	switch cfg.Provider {
	case config.ProviderCLI:
		return NewCLIBackend(CLIOptions{
			Tool:        cfg.Tool,
			Args:        cfg.ToolArgs,
			Model:       cfg.ResolvedModel(),
			PromptStdin: cfg.PromptStdin,
			Dir:         dir,
			Logger:      logger,
		}), nil
	case config.ProviderOpenAI:
		return NewOpenAIBackend(OpenAIOptions{
			APIKey:  cfg.APIKey,
			APIBase: cfg.APIBase,
			Model:   cfg.ResolvedModel(),
		}), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

// NewGeneratorFromConfig wires a Generator for cfg, resolving the prompt
// template by name or path.
func NewGeneratorFromConfig(cfg *config.Config, dir string, logger *zap.Logger) (*Generator, error) {
	backend, err := NewBackend(cfg, dir, logger)
	if err != nil {
		return nil, err
	}
	tpl, err := formatter.GetPromptTemplate(cfg.PromptTemplate)
	if err != nil {
		return nil, err
	}
	return NewGenerator(backend, Options{
		Language:        cfg.Language,
		Timeout:         cfg.Timeout(),
		MaxDiffChars:    cfg.MaxDiffChars,
		MaxContextChars: cfg.MaxContextChars,
		Template:        tpl,
		Logger:          logger,
	}), nil
}
