package llm

import (
	"testing"

	"github.com/samzong/autocommit/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBackend(t *testing.T) {
	cli, err := NewBackend(&config.Config{Provider: config.ProviderCLI, Tool: "gemini", ToolArgs: []string{"-p"}}, ".", nil)
	require.NoError(t, err)
	require.IsType(t, &CLIBackend{}, cli)
	assert.Equal(t, []string{"-m", config.DefaultCLIModel, "-p", "x"}, cli.(*CLIBackend).Command("x"))

	api, err := NewBackend(&config.Config{Provider: config.ProviderOpenAI}, ".", nil)
	require.NoError(t, err)
	assert.Equal(t, "openai:"+config.DefaultOpenAIModel, api.Name())

	_, err = NewBackend(&config.Config{Provider: "smoke-signals"}, ".", nil)
	assert.Error(t, err)
}

func TestNewGeneratorFromConfig(t *testing.T) {
	cfg := &config.Config{
		Language:       "English",
		Provider:       config.ProviderCLI,
		Tool:           "gemini",
		TimeoutSeconds: 20,
		MaxDiffChars:   5000,
		PromptTemplate: "detailed",
	}
	g, err := NewGeneratorFromConfig(cfg, ".", nil)
	require.NoError(t, err)
	assert.Contains(t, g.BuildPrompt(Request{Diff: "+x"}), "Changed files:")

	cfg.PromptTemplate = "/nonexistent/template.yaml"
	_, err = NewGeneratorFromConfig(cfg, ".", nil)
	assert.Error(t, err)
}
